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

package querygraph

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// layerIDs describes each layer as a list of "edge:input->output".
func layerIDs(plan *Plan) [][]string {
	res := make([][]string, len(plan.Layers()))
	for i, layer := range plan.Layers() {
		for _, e := range layer {
			res[i] = append(res[i], fmt.Sprintf("%v:%v->%v", e.ID(), e.InputNode().ID(), e.OutputNode().ID()))
		}
	}
	return res
}

// chain returns a query graph of 'n' edges in a line, e0 from n0 to n1 and so
// on, with only n0 seeded.
func chain(n int) string {
	var nodes, edges []string
	nodes = append(nodes, `"n0": {"ids": ["X:1"]}`)
	for i := 0; i < n; i++ {
		nodes = append(nodes, fmt.Sprintf(`"n%d": {}`, i+1))
		edges = append(edges, fmt.Sprintf(`"e%d": {"subject": "n%d", "object": "n%d"}`, i, i, i+1))
	}
	return fmt.Sprintf(`{"nodes": {%v}, "edges": {%v}}`,
		strings.Join(nodes, ", "), strings.Join(edges, ", "))
}

func Test_Plan_chain(t *testing.T) {
	plan := planGraph(t, chainGraph)
	assert.Equal(t, [][]string{{"e0:n0->n1"}, {"e1:n1->n2"}}, layerIDs(plan))
	e0, e1 := plan.Edge("e0"), plan.Edge("e1")
	assert.False(t, e0.IsReversed())
	assert.Nil(t, e0.Prev())
	assert.True(t, e1.IsReversed())
	assert.Equal(t, e0, e1.Prev())
	assert.Equal(t, []*ExecutionEdge{e0, e1}, plan.Edges())
	assert.Equal(t, 1, e1.Index())
	assert.Nil(t, plan.Edge("e9"))
	assert.Equal(t, "n2", plan.Node("n2").ID())
	assert.Nil(t, plan.Node("n9"))
	assert.Same(t, e1.InputNode(), e0.OutputNode())

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "chain_plan", []byte(plan.String()))
}

func Test_Plan_directions(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		layers [][]string
	}{
		{
			name: "object seeded",
			doc: `{"nodes": {"n0": {}, "n1": {"ids": ["X:1"]}},
				"edges": {"e0": {"subject": "n0", "object": "n1"}}}`,
			layers: [][]string{{"e0:n1->n0"}},
		},
		{
			name: "both seeded",
			doc: `{"nodes": {"n0": {"ids": ["X:1"]}, "n1": {"ids": ["X:2"]}},
				"edges": {"e0": {"subject": "n0", "object": "n1"}}}`,
			layers: [][]string{{"e0:n0->n1"}},
		},
		{
			name: "star around seed",
			doc: `{"nodes": {"n0": {"ids": ["X:1"]}, "n1": {}, "n2": {}, "n3": {}},
				"edges": {
					"e0": {"subject": "n0", "object": "n1"},
					"e1": {"subject": "n2", "object": "n0"},
					"e2": {"subject": "n0", "object": "n3"}}}`,
			layers: [][]string{{"e0:n0->n1", "e1:n0->n2", "e2:n0->n3"}},
		},
		{
			name: "seed in the middle",
			doc: `{"nodes": {"n0": {}, "n1": {"ids": ["X:1"]}, "n2": {}, "n3": {}},
				"edges": {
					"e0": {"subject": "n0", "object": "n1"},
					"e1": {"subject": "n1", "object": "n2"},
					"e2": {"subject": "n2", "object": "n3"}}}`,
			layers: [][]string{{"e0:n1->n0", "e1:n1->n2"}, {"e2:n2->n3"}},
		},
		{
			name: "branching",
			doc: `{"nodes": {"n0": {"ids": ["X:1"]}, "n1": {}, "n2": {}, "n3": {}, "n4": {}},
				"edges": {
					"e0": {"subject": "n0", "object": "n1"},
					"e1": {"subject": "n1", "object": "n2"},
					"e2": {"subject": "n3", "object": "n1"},
					"e3": {"subject": "n2", "object": "n4"}}}`,
			layers: [][]string{{"e0:n0->n1"}, {"e1:n1->n2", "e2:n1->n3"}, {"e3:n2->n4"}},
		},
		{
			name: "two seeds",
			doc: `{"nodes": {"n0": {"ids": ["X:1"]}, "n1": {}, "n2": {"ids": ["X:2"]}},
				"edges": {
					"e0": {"subject": "n0", "object": "n1"},
					"e1": {"subject": "n1", "object": "n2"}}}`,
			layers: [][]string{{"e0:n0->n1", "e1:n2->n1"}},
		},
		{
			name:   "max depth",
			doc:    chain(4),
			layers: [][]string{{"e0:n0->n1"}, {"e1:n1->n2"}, {"e2:n2->n3"}, {"e3:n3->n4"}},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.layers, layerIDs(planGraph(t, test.doc)))
		})
	}
}

func Test_Plan_errors(t *testing.T) {
	p := Planner{Ontology: testOntology(t)}
	_, err := p.Plan(parseGraph(t, chain(5)))
	assert.Equal(t, MaxDepthExceeded, ReasonOf(err), "error: %v", err)
	assert.EqualError(t, err,
		"invalid query graph: query graph needs more than 3 hops from its seeded nodes (reaching edge e4)")

	p.MaxDepth = 4
	plan, err := p.Plan(parseGraph(t, chain(5)))
	require.NoError(t, err)
	assert.Len(t, plan.Layers(), 5)

	p.MaxDepth = 1
	_, err = p.Plan(parseGraph(t, chain(3)))
	assert.Equal(t, MaxDepthExceeded, ReasonOf(err))

	_, err = p.Plan(parseGraph(t, `{"nodes": {"n0": {"ids": ["X:1"]}, "n1": {}, "n2": {}, "n3": {}},
		"edges": {
			"e0": {"subject": "n0", "object": "n1"},
			"e1": {"subject": "n2", "object": "n3"}}}`))
	assert.EqualError(t, err, "invalid query graph: edge e1 can't be reached from any seeded node")
	assert.Equal(t, Unseeded, ReasonOf(err))

	_, err = p.Plan(parseGraph(t, `{"nodes": {"n0": {"ids": ["X:1"]}, "n1": {}, "n2": {}},
		"edges": {
			"e0": {"subject": "n0", "object": "n1"},
			"e1": {"subject": "n1", "object": "n2"},
			"e2": {"subject": "n2", "object": "n0"}}}`))
	assert.Equal(t, Cycle, ReasonOf(err))
}

func Test_Plan_unconstrained(t *testing.T) {
	plan := planGraph(t, `{"nodes": {
			"n0": {"categories": null, "ids": ["X:1"]},
			"n1": {"categories": null, "ids": null}},
		"edges": {"e0": {"subject": "n0", "object": "n1", "predicates": null}}}`)
	e0 := plan.Edge("e0")
	predicates, ok := e0.Predicates()
	assert.False(t, ok)
	assert.Nil(t, predicates)
	assert.Contains(t, e0.OutputNode().Categories(), "NamedThing")
}

func Test_Plan_freshState(t *testing.T) {
	g := parseGraph(t, chainGraph)
	p := Planner{Ontology: testOntology(t)}
	first, err := p.Plan(g)
	require.NoError(t, err)
	first.Node("n0").HoldCurie()
	second, err := p.Plan(g)
	require.NoError(t, err)
	assert.True(t, first.Node("n0").Held())
	assert.False(t, second.Node("n0").Held())
	assert.Equal(t, []string{"NCBIGene:1017"}, second.Node("n0").Curies())
}

func Test_Plan_Graphviz(t *testing.T) {
	plan := planGraph(t, chainGraph)
	var buf bytes.Buffer
	plan.Graphviz(&buf)
	assert.Equal(t, `digraph {
  node [shape=box];
  "n0" [label="n0\nbiolink:Gene", style=filled, fillcolor=lightgrey];
  "n1" [label="n1\nbiolink:Disease"];
  "n2" [label="n2\nbiolink:SmallMolecule"];
  "n0" -> "n1" [label="e0 [0]"];
  "n2" -> "n1" [label="e1 [1]", style=dashed];
}
`, buf.String())
}
