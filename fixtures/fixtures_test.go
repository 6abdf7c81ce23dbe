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

package fixtures

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/biothings/bte/biolink"
	"github.com/biothings/bte/query"
	"github.com/biothings/bte/querygraph"
	"github.com/biothings/bte/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestdata(t *testing.T) (*Set, *querygraph.Graph) {
	set, err := LoadFile("testdata/fixtures.yaml")
	require.NoError(t, err)
	f, err := os.Open("testdata/query.json")
	require.NoError(t, err)
	defer f.Close()
	g, err := querygraph.Parse(f)
	require.NoError(t, err)
	return set, g
}

func strs(records []record.Record) []string {
	res := make([]string, len(records))
	for i, r := range records {
		res[i] = r.String()
	}
	return res
}

func Test_Load(t *testing.T) {
	set, _ := loadTestdata(t)
	assert.Len(t, set.Records(), 9)
	first := set.Records()[0]
	assert.Equal(t, "Fixture API", first.Provenance.API)
	assert.Equal(t, "infores:fixture", first.Provenance.Source)
	assert.Equal(t, []record.Attribute{{TypeID: "biolink:p_value", Value: 0.003}}, first.Attributes)
	assert.Equal(t, "CDK2", set.ids["HGNC:1771"][0].Label)

	empty, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Records())
}

func Test_Load_errors(t *testing.T) {
	_, err := Load(strings.NewReader("recordz: []\n"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "error decoding fixtures")

	_, err = Load(strings.NewReader(`
records:
  - qedge: e0
    subject:
      qnode: n0
      curie: X:1
`))
	assert.EqualError(t, err, "fixture record 0: invalid record: edge e0: missing object")
	assert.ErrorIs(t, err, record.ErrInvalid)

	_, err = LoadFile("testdata/missing.yaml")
	assert.Error(t, err)
}

func Test_IDs_ResolveIDs(t *testing.T) {
	set, _ := loadTestdata(t)
	res, err := set.IDs().ResolveIDs(context.Background(), map[string][]string{
		"Gene":    {"NCBIGene:1017", "HGNC:1771", "NCBIGene:7157"},
		"Disease": {"MONDO:0005148"},
	})
	require.NoError(t, err)
	assert.Len(t, res, 4)
	assert.Equal(t, "CDK2", res["NCBIGene:1017"][0].Label)
	assert.Equal(t, "NCBIGene:1017", res["HGNC:1771"][0].PrimaryID)
	assert.Equal(t, []querygraph.Entity{{
		PrimaryID:     "MONDO:0005148",
		Curies:        []string{"MONDO:0005148"},
		SemanticTypes: []string{"biolink:Disease"},
	}}, res["MONDO:0005148"])
}

func Test_Edges_ResolveEdge(t *testing.T) {
	set, _ := loadTestdata(t)
	g, err := querygraph.Parse(strings.NewReader(`{
		"nodes": {
			"n0": {"categories": ["biolink:Gene"], "ids": ["NCBIGene:7", "NCBIGene:1017", "NCBIGene:672"]},
			"n1": {"categories": ["biolink:Disease"]}
		},
		"edges": {
			"e0": {"subject": "n0", "object": "n1", "predicates": ["biolink:gene_associated_with_condition"]}
		}
	}`))
	require.NoError(t, err)
	for _, batchSize := range []int{0, 1, 2} {
		p := querygraph.Planner{Ontology: biolink.Default()}
		plan, err := p.Plan(g)
		require.NoError(t, err)
		records, err := set.Edges(biolink.Default(), batchSize).ResolveEdge(context.Background(), plan.Edge("e0"))
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			"e0(NCBIGene:1017 biolink:gene_associated_with_condition MONDO:0005148)",
			"e0(NCBIGene:1017 biolink:gene_associated_with_condition MONDO:0004975)",
			"e0(MONDO:0007254 biolink:condition_associated_with_gene NCBIGene:1017)",
		}, strs(records), "batch size %v", batchSize)
	}
}

func Test_Edges_ResolveEdge_reversed(t *testing.T) {
	set, g := loadTestdata(t)
	p := querygraph.Planner{Ontology: biolink.Default()}
	plan, err := p.Plan(g)
	require.NoError(t, err)
	e1 := plan.Edge("e1")
	require.True(t, e1.IsReversed())
	e1.InputNode().UpdateCuries(map[string][]string{
		"MONDO:0005148": {"MONDO:0005148"},
	})
	records, err := set.Edges(biolink.Default(), 10).ResolveEdge(context.Background(), e1)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"e1(CHEBI:6801 biolink:treats MONDO:0005148)",
		"e1(CHEBI:4031 biolink:treats MONDO:0005148)",
	}, strs(records))
}

func Test_Query_endToEnd(t *testing.T) {
	set, g := loadTestdata(t)
	engine := query.New(query.Options{
		IDs:         set.IDs(),
		Edges:       set.Edges(biolink.Default(), 2),
		SortByScore: true,
	})
	res, err := engine.Query(context.Background(), g)
	require.NoError(t, err)
	type binding struct{ n1, n2 string }
	var got []binding
	for _, r := range res.Results {
		assert.Equal(t, "NCBIGene:1017", r.NodeBindings["n0"][0].ID)
		got = append(got, binding{r.NodeBindings["n1"][0].ID, r.NodeBindings["n2"][0].ID})
	}
	assert.Equal(t, []binding{
		{"MONDO:0005148", "CHEBI:4031"},
		{"MONDO:0005148", "CHEBI:6801"},
		{"MONDO:0007254", "CHEBI:28748"},
	}, got)
	assert.Equal(t, []string{"MONDO:0004975", "MONDO:0005148", "MONDO:0007254"},
		res.Plan.Edge("e0").OutputNode().PrimaryIDs())
}
