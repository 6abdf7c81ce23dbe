// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biothings/bte/results"
	docopt "github.com/docopt/docopt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	queryFile    = "../../fixtures/testdata/query.json"
	fixturesFile = "../../fixtures/testdata/fixtures.yaml"
)

func Test_parseArgs(t *testing.T) {
	var tests = []struct {
		name         string
		inputArgv    []string
		expValidArgs bool
		expOpts      options
	}{
		{
			name:         "plan",
			inputArgv:    []string{"plan", "q.json"},
			expValidArgs: true,
			expOpts:      options{Plan: true, Query: "q.json"},
		}, {
			name:         "plan_dot",
			inputArgv:    []string{"plan", "--cfg", "c.json", "--dot", "plan.svg", "q.json"},
			expValidArgs: true,
			expOpts: options{
				Plan:   true,
				Config: "c.json",
				Dot:    "plan.svg",
				Query:  "q.json",
			},
		}, {
			name:         "run",
			inputArgv:    []string{"run", "--debug", "q.json", "f.yaml"},
			expValidArgs: true,
			expOpts: options{
				Run:      true,
				Debug:    true,
				Query:    "q.json",
				Fixtures: "f.yaml",
			},
		}, {
			name:         "run_trace",
			inputArgv:    []string{"run", "--trace", "localhost:14268", "q.json", "f.yaml"},
			expValidArgs: true,
			expOpts: options{
				Run:      true,
				Trace:    "localhost:14268",
				Query:    "q.json",
				Fixtures: "f.yaml",
			},
		}, {
			name:         "plan_trace",
			inputArgv:    []string{"plan", "--trace", "localhost:14268", "q.json"},
			expValidArgs: false,
		}, {
			name:         "run_no_fixtures",
			inputArgv:    []string{"run", "q.json"},
			expValidArgs: false,
		}, {
			name:         "plan_debug",
			inputArgv:    []string{"plan", "--debug", "q.json"},
			expValidArgs: false,
		}, {
			name:         "unknown_command",
			inputArgv:    []string{"unknown"},
			expValidArgs: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var parseErr error
			docopt.DefaultParser.HelpHandler = func(err error, usage string) {
				parseErr = err
			}
			opts, err := parseArgs(test.inputArgv)
			if !test.expValidArgs {
				assert.Error(t, err)
				assert.Error(t, parseErr)
				return
			}
			assert.NoError(t, err)
			assert.NoError(t, parseErr)
			if assert.NotNil(t, opts) {
				assert.Equal(t, test.expOpts, *opts)
			}
		})
	}
}

func Test_plan(t *testing.T) {
	dir := t.TempDir()
	dot := filepath.Join(dir, "plan.dot")
	var out bytes.Buffer
	err := plan(&options{Plan: true, Query: queryFile, Dot: dot}, &out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.String(), "layer 0\n"), out.String())
	assert.Contains(t, out.String(), "[0] e0: n0 -> n1")
	assert.Contains(t, out.String(), "[1] e1: n1 -> n2 reversed")
	assert.Contains(t, out.String(), "2 edges in 2 layers\n")
	written, err := os.ReadFile(dot)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(written), "digraph {"))
}

func Test_plan_config(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "cfg.json")
	require.NoError(t, os.WriteFile(cfg, []byte(`{"planner": {"maxDepth": 1}}`), 0644))
	var out bytes.Buffer
	err := plan(&options{Plan: true, Config: cfg, Query: queryFile}, &out)
	assert.NoError(t, err)

	require.NoError(t, os.WriteFile(cfg, []byte(`{"planner": {"hops": 1}}`), 0644))
	err = plan(&options{Plan: true, Config: cfg, Query: queryFile}, &out)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "cfg.json")
	}
}

func Test_plan_missingQuery(t *testing.T) {
	var out bytes.Buffer
	err := plan(&options{Plan: true, Query: "testdata/404.json"}, &out)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "404.json")
	}
	assert.Empty(t, out.String())
}

func Test_run(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), &options{
		Run:      true,
		Query:    queryFile,
		Fixtures: fixturesFile,
	}, &out)
	require.NoError(t, err)
	header, body, found := strings.Cut(out.String(), "\n")
	require.True(t, found)
	assert.Regexp(t, `^Run [0-9a-f-]{36}: 3 results from \d+ records$`, header)
	var res []results.Result
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	assert.Len(t, res, 3)
	for _, r := range res {
		assert.Len(t, r.NodeBindings, 3)
	}
}

func Test_run_debug(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), &options{
		Run:      true,
		Debug:    true,
		Query:    queryFile,
		Fixtures: fixturesFile,
	}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "node n0:\n")
	assert.Contains(t, out.String(), "node n2:\n")
	assert.Contains(t, out.String(), "PrimaryID")
}
