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
	"sort"
	"strings"
)

// EdgeSpan is an edge viewed as an undirected connection between two nodes.
type EdgeSpan struct {
	ID string
	A  string
	B  string
}

// FindCycle looks for a cycle in the undirected multigraph formed by 'spans'.
// Spans are considered in order of ID. It returns the ID of the first span that
// closes a cycle, with DuplicateEdge if that span connects the same unordered
// pair of nodes as an earlier one, or Cycle otherwise (including self-loops).
// It returns false if the spans form a forest.
func FindCycle(spans []EdgeSpan) (edgeID string, reason Reason, found bool) {
	sorted := append([]EdgeSpan(nil), spans...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})
	parent := make(map[string]string)
	var find func(n string) string
	find = func(n string) string {
		p, ok := parent[n]
		if !ok || p == n {
			parent[n] = n
			return n
		}
		root := find(p)
		parent[n] = root
		return root
	}
	pairs := make(map[[2]string]struct{}, len(sorted))
	for _, span := range sorted {
		if span.A == span.B {
			return span.ID, Cycle, true
		}
		pair := [2]string{span.A, span.B}
		if pair[1] < pair[0] {
			pair[0], pair[1] = pair[1], pair[0]
		}
		if _, dup := pairs[pair]; dup {
			return span.ID, DuplicateEdge, true
		}
		pairs[pair] = struct{}{}
		rootA, rootB := find(span.A), find(span.B)
		if rootA == rootB {
			return span.ID, Cycle, true
		}
		parent[rootA] = rootB
	}
	return "", 0, false
}

// Validate checks that the graph can be planned. It returns an
// InvalidQueryGraphError if the graph has no nodes or no edges, if an edge
// refers to an undefined node, if the edges contain a cycle or connect the same
// pair of nodes twice, or if no node has any seed identifiers.
func Validate(g *Graph) error {
	if len(g.nodes) == 0 {
		return invalidf(EmptyNodes, "query graph has no nodes")
	}
	if len(g.edges) == 0 {
		return invalidf(EmptyEdges, "query graph has no edges")
	}
	spans := make([]EdgeSpan, 0, len(g.edges))
	for _, e := range g.Edges() {
		for _, end := range []string{e.Subject, e.Object} {
			if g.Node(end) == nil {
				return invalidf(DanglingEdge, "edge %v refers to undefined node %v", e.ID, end)
			}
		}
		spans = append(spans, EdgeSpan{ID: e.ID, A: e.Subject, B: e.Object})
	}
	if id, reason, found := FindCycle(spans); found {
		e := g.Edge(id)
		if reason == DuplicateEdge {
			return invalidf(reason, "edge %v duplicates another edge between %v and %v", id, e.Subject, e.Object)
		}
		return invalidf(reason, "edge %v (%v to %v) forms a cycle", id, e.Subject, e.Object)
	}
	var empty []string
	for _, n := range g.Nodes() {
		if n.Seeded() {
			return nil
		}
		if n.HasIDs() {
			empty = append(empty, n.ID)
		}
	}
	if len(empty) > 0 {
		return invalidf(Unseeded, "no node has any seed identifiers (empty ids on %v)",
			strings.Join(empty, ", "))
	}
	return invalidf(Unseeded, "no node has any seed identifiers")
}
