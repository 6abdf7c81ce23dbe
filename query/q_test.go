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

package query

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/biothings/bte/biolink"
	"github.com/biothings/bte/querygraph"
	"github.com/biothings/bte/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type idsFunc func(context.Context, map[string][]string) (map[string][]querygraph.Entity, error)

func (f idsFunc) ResolveIDs(ctx context.Context, byCategory map[string][]string) (map[string][]querygraph.Entity, error) {
	return f(ctx, byCategory)
}

type edgesFunc func(context.Context, *querygraph.ExecutionEdge) ([]record.Record, error)

func (f edgesFunc) ResolveEdge(ctx context.Context, edge *querygraph.ExecutionEdge) ([]record.Record, error) {
	return f(ctx, edge)
}

func node(qNode, curie string) *record.Node {
	return &record.Node{QNodeID: qNode, Curie: curie}
}

func rec(qEdge string, subject, object *record.Node) record.Record {
	return record.MustNew(record.Raw{
		QEdgeID:   qEdge,
		Subject:   subject,
		Object:    object,
		Predicate: "biolink:related_to",
		API:       "test",
	})
}

// knownRecords is an edge resolver over a fixed set of records. It returns the
// records of the edge whose input end is one of the edge's input candidates,
// and logs the input candidates it was called with.
type knownRecords struct {
	records []record.Record
	calls   map[string][]string
}

func (k *knownRecords) ResolveEdge(ctx context.Context, edge *querygraph.ExecutionEdge) ([]record.Record, error) {
	if k.calls == nil {
		k.calls = make(map[string][]string)
	}
	inputs := edge.InputCuries()
	k.calls[edge.ID()] = inputs
	input := edge.InputNode().ID()
	var res []record.Record
	for _, r := range k.records {
		if r.QEdgeID != edge.ID() {
			continue
		}
		n, ok := r.NodeFor(input)
		if !ok {
			continue
		}
		for _, c := range inputs {
			if c == n.Original {
				res = append(res, r)
				break
			}
		}
	}
	return res, nil
}

func parse(t *testing.T, doc string) *querygraph.Graph {
	g, err := querygraph.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return g
}

const chainGraph = `{
	"nodes": {
		"n0": {"categories": ["biolink:Gene"], "ids": ["NCBIGene:1017"]},
		"n1": {"categories": ["biolink:Disease"]},
		"n2": {"categories": ["biolink:SmallMolecule"]}
	},
	"edges": {
		"e0": {"subject": "n0", "object": "n1"},
		"e1": {"subject": "n2", "object": "n1"}
	}
}`

func Test_Query_chain(t *testing.T) {
	resolver := &knownRecords{records: []record.Record{
		rec("e0", node("n0", "NCBIGene:1017"), node("n1", "MONDO:1")),
		rec("e0", node("n0", "NCBIGene:1017"), node("n1", "MONDO:2")),
		rec("e0", node("n0", "NCBIGene:7157"), node("n1", "MONDO:3")),
		rec("e1", node("n2", "CHEBI:1"), node("n1", "MONDO:1")),
		rec("e1", node("n2", "CHEBI:2"), node("n1", "MONDO:1")),
		rec("e1", node("n2", "CHEBI:3"), node("n1", "MONDO:3")),
	}}
	var seen map[string][]string
	engine := New(Options{
		IDs: idsFunc(func(ctx context.Context, byCategory map[string][]string) (map[string][]querygraph.Entity, error) {
			seen = byCategory
			return map[string][]querygraph.Entity{
				"NCBIGene:1017": {{PrimaryID: "NCBIGene:1017", Label: "CDK2", SemanticTypes: []string{"biolink:Gene"}}},
			}, nil
		}),
		Edges:       resolver,
		SortByScore: true,
	})
	res, err := engine.Query(context.Background(), parse(t, chainGraph))
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, map[string][]string{"Gene": {"NCBIGene:1017"}}, seen)
	assert.Equal(t, []string{"NCBIGene:1017"}, res.Plan.Node("n0").PrimaryIDs())
	assert.Equal(t, map[string][]string{
		"e0": {"NCBIGene:1017"},
		"e1": {"MONDO:1", "MONDO:2"},
	}, resolver.calls)
	assert.Equal(t, []string{"MONDO:1"}, res.Plan.Node("n1").Curies())
	assert.Equal(t, []string{"CHEBI:1", "CHEBI:2"}, res.Plan.Node("n2").Curies())

	require.Len(t, res.Results, 2)
	for i, want := range []string{"CHEBI:1", "CHEBI:2"} {
		r := res.Results[i]
		assert.Equal(t, "NCBIGene:1017", r.NodeBindings["n0"][0].ID)
		assert.Equal(t, "MONDO:1", r.NodeBindings["n1"][0].ID)
		assert.Equal(t, want, r.NodeBindings["n2"][0].ID)
	}
}

func Test_Query_invalid(t *testing.T) {
	called := false
	engine := New(Options{
		Edges: edgesFunc(func(context.Context, *querygraph.ExecutionEdge) ([]record.Record, error) {
			called = true
			return nil, nil
		}),
	})
	_, err := engine.Query(context.Background(), parse(t, `{
		"nodes": {"n0": {"ids": []}, "n1": {}},
		"edges": {"e0": {"subject": "n0", "object": "n1"}}}`))
	require.Error(t, err)
	assert.Equal(t, querygraph.Unseeded, querygraph.ReasonOf(err))
	assert.False(t, called)
}

func Test_Query_resolverError(t *testing.T) {
	engine := New(Options{
		Edges: edgesFunc(func(context.Context, *querygraph.ExecutionEdge) ([]record.Record, error) {
			return nil, errors.New("source unavailable")
		}),
	})
	_, err := engine.Query(context.Background(), parse(t, chainGraph))
	assert.EqualError(t, err, "error resolving edge e0: source unavailable")

	engine = New(Options{
		IDs: idsFunc(func(context.Context, map[string][]string) (map[string][]querygraph.Entity, error) {
			return nil, errors.New("normalizer down")
		}),
		Edges: &knownRecords{},
	})
	_, err = engine.Query(context.Background(), parse(t, chainGraph))
	assert.EqualError(t, err, "error resolving seed identifiers: normalizer down")
}

func Test_Query_noRecords(t *testing.T) {
	resolver := &knownRecords{}
	engine := New(Options{Edges: resolver})
	res, err := engine.Query(context.Background(), parse(t, chainGraph))
	require.NoError(t, err)
	assert.NotNil(t, res.Results)
	assert.Len(t, res.Results, 0)
	// e1's input node ended up with no candidates, so it was never resolved.
	assert.Contains(t, resolver.calls, "e0")
	assert.NotContains(t, resolver.calls, "e1")
	assert.True(t, res.Plan.Edge("e1").Executed())
}

func Test_Query_lowerEntityCount(t *testing.T) {
	resolver := &knownRecords{records: []record.Record{
		rec("e0", node("n0", "X:1"), node("n1", "Y:1")),
		rec("e0", node("n0", "X:2"), node("n1", "Y:1")),
		rec("e0", node("n0", "X:3"), node("n1", "Y:2")),
	}}
	engine := New(Options{Edges: resolver, Ontology: biolink.Default()})
	res, err := engine.Query(context.Background(), parse(t, `{
		"nodes": {"n0": {"ids": ["X:1", "X:2", "X:3"]}, "n1": {"ids": ["Y:1"]}},
		"edges": {"e0": {"subject": "n0", "object": "n1"}}}`))
	require.NoError(t, err)
	e0 := res.Plan.Edge("e0")
	assert.True(t, e0.IsReversed())
	assert.Equal(t, []string{"Y:1"}, resolver.calls["e0"])
	assert.False(t, e0.Subject().Held())
	assert.Equal(t, []string{"X:1", "X:2"}, e0.Subject().Curies())
	assert.Len(t, res.Results, 2)
}

func Test_New_requiresEdges(t *testing.T) {
	assert.Panics(t, func() {
		New(Options{})
	})
}
