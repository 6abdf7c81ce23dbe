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
	"strings"
	"testing"

	"github.com/biothings/bte/biolink"
	"github.com/stretchr/testify/require"
)

const testModel = `
classes:
  named thing: {}
  biological entity:
    is_a: named thing
  gene:
    is_a: biological entity
  protein:
    is_a: biological entity
  disease:
    is_a: biological entity
  small molecule:
    is_a: named thing
slots:
  related to:
    symmetric: true
  affects:
    is_a: related to
    inverse: affected by
  affected by:
    is_a: related to
  regulates:
    is_a: affects
  treats:
    is_a: related to
    inverse: treated by
  treated by:
    is_a: related to
  located in:
    is_a: related to
`

func testOntology(t *testing.T) *biolink.Model {
	m, err := biolink.Load(strings.NewReader(testModel))
	require.NoError(t, err)
	return m
}

func parseGraph(t *testing.T, doc string) *Graph {
	g, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return g
}

func planGraph(t *testing.T, doc string) *Plan {
	p := Planner{Ontology: testOntology(t)}
	plan, err := p.Plan(parseGraph(t, doc))
	require.NoError(t, err)
	return plan
}

// A seeded gene, through e0 to a disease, through e1 to a small molecule.
const chainGraph = `{
	"nodes": {
		"n0": {"categories": ["biolink:Gene"], "ids": ["NCBIGene:1017"]},
		"n1": {"categories": ["biolink:Disease"]},
		"n2": {"categories": ["biolink:SmallMolecule"]}
	},
	"edges": {
		"e0": {"subject": "n0", "object": "n1", "predicates": ["biolink:affects"]},
		"e1": {"subject": "n2", "object": "n1", "predicates": ["biolink:treats"]}
	}
}`
