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

// Command bte-query plans and runs query graphs against a local fixture set.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/biothings/bte/biolink"
	"github.com/biothings/bte/config"
	"github.com/biothings/bte/fixtures"
	"github.com/biothings/bte/query"
	"github.com/biothings/bte/querygraph"
	"github.com/biothings/bte/util/debuglog"
	"github.com/biothings/bte/util/graphviz"
	"github.com/biothings/bte/util/tracing"
	"github.com/davecgh/go-spew/spew"
	docopt "github.com/docopt/docopt-go"
	opentracing "github.com/opentracing/opentracing-go"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var fmtr = message.NewPrinter(language.English)

const usage = `bte-query is a command-line tool for planning and running query graphs.

Usage:
  bte-query plan [--cfg=FILE] [--dot=FILE] QUERY
  bte-query run [--cfg=FILE] [--debug] [--trace=HOST] QUERY FIXTURES

Options:
  --cfg=FILE    JSON configuration file. Defaults apply when omitted.
  --dot=FILE    Also render the plan with Graphviz (.dot, .gv, .pdf, .png, .svg).
  --debug       Log at debug level and dump the final node states.
  --trace=HOST  Send OpenTracing traces to this Jaeger collector.

Examples:
  # Show the execution order for a query graph.
  bte-query plan query.json

  # Run a query graph against records and identifiers in a fixtures file.
  bte-query run query.json fixtures.yaml

  # Same, reporting spans to a local Jaeger collector.
  bte-query run --trace=localhost:14268 query.json fixtures.yaml
`

type options struct {
	Plan     bool   `docopt:"plan"`
	Run      bool   `docopt:"run"`
	Config   string `docopt:"--cfg"`
	Dot      string `docopt:"--dot"`
	Debug    bool   `docopt:"--debug"`
	Trace    string `docopt:"--trace"`
	Query    string `docopt:"QUERY"`
	Fixtures string `docopt:"FIXTURES"`
}

func parseArgs(args []string) (*options, error) {
	opts, err := docopt.ParseArgs(usage, args, "")
	if err != nil {
		return nil, fmt.Errorf("error parsing command-line arguments: %v", err)
	}
	var options options
	err = opts.Bind(&options)
	if err != nil {
		return nil, fmt.Errorf("error binding command-line arguments: %v\nfrom: %+v", err, opts)
	}
	return &options, nil
}

func main() {
	options, err := parseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("Command failure: %v", err)
	}
	logOpts := debuglog.Options{}
	if options.Debug {
		logOpts.Level = log.DebugLevel
	}
	debuglog.Configure(logOpts)

	switch {
	case options.Plan:
		err := plan(options, os.Stdout)
		if err != nil {
			log.Fatalf("Error executing plan: %v", err)
		}
	case options.Run:
		err := run(context.Background(), options, os.Stdout)
		if err != nil {
			log.Fatalf("Error executing run: %v", err)
		}
	}
}

// setup loads the configuration, the ontology, and the query graph named in
// the options.
func setup(options *options) (*config.BTE, biolink.Ontology, *querygraph.Graph, error) {
	cfg := config.Default()
	if options.Config != "" {
		var err error
		cfg, err = config.Load(options.Config)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	var ontology biolink.Ontology = biolink.Default()
	if cfg.Ontology.Path != "" {
		model, err := biolink.LoadFile(cfg.Ontology.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		ontology = model
	}
	f, err := os.Open(options.Query)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()
	g, err := querygraph.Parse(f)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%v: %w", options.Query, err)
	}
	return cfg, ontology, g, nil
}

func plan(options *options, w io.Writer) error {
	cfg, ontology, g, err := setup(options)
	if err != nil {
		return err
	}
	planner := querygraph.Planner{
		MaxDepth: cfg.Planner.MaxDepth,
		Ontology: ontology,
	}
	p, err := planner.Plan(g)
	if err != nil {
		return err
	}
	fmt.Fprint(w, p.String())
	fmtr.Fprintf(w, "%d edges in %d layers\n", len(p.Edges()), len(p.Layers()))
	if options.Dot != "" {
		err := graphviz.Create(options.Dot, p.Graphviz, graphviz.Options{})
		if err != nil {
			return err
		}
		log.Infof("Wrote plan to %v", options.Dot)
	}
	return nil
}

func run(ctx context.Context, options *options, w io.Writer) error {
	cfg, ontology, g, err := setup(options)
	if err != nil {
		return err
	}
	if options.Trace != "" {
		cfg.Tracing = &config.Tracing{
			Type:      "jaeger",
			Addresses: []string{options.Trace},
		}
	}
	if cfg.Tracing != nil {
		tracer, err := tracing.New("bte-query", cfg.Tracing)
		if err != nil {
			log.WithError(err).Warn("Could not initialize OpenTracing tracer")
		} else {
			defer tracer.Close()
		}
	}
	span, ctx := opentracing.StartSpanFromContext(ctx, "bte-query run")
	defer span.Finish()

	set, err := fixtures.LoadFile(options.Fixtures)
	if err != nil {
		return err
	}
	engine := query.New(query.Options{
		Ontology:    ontology,
		IDs:         set.IDs(),
		Edges:       set.Edges(ontology, cfg.Fixtures.BatchSize),
		MaxDepth:    cfg.Planner.MaxDepth,
		SortByScore: cfg.Results.SortByScore,
	})
	res, err := engine.Query(ctx, g)
	if err != nil {
		return err
	}
	records := 0
	for _, edge := range res.Plan.Edges() {
		records += len(edge.Records())
	}
	fmtr.Fprintf(w, "Run %v: %d results from %d records\n",
		res.RunID, len(res.Results), records)
	if options.Debug {
		for _, n := range res.Plan.Graph().Nodes() {
			fmt.Fprintf(w, "node %v:\n", n.ID)
			spew.Fdump(w, res.Plan.Node(n.ID).Entities())
		}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(res.Results)
}
