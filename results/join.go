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

package results

import (
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// topology is the query graph as seen through the edges given to the
// assembler.
type topology struct {
	edges     map[string]*edgeIndex
	edgeIDs   []string
	edgeIndex map[string]int
	nodeIDs   []string
	nodeIndex map[string]int
	isSet     map[string]bool
	// Node ID -> sorted IDs of the edges touching it.
	incident map[string][]string
}

func newTopology(edges map[string]*edgeIndex) *topology {
	t := &topology{
		edges:     edges,
		edgeIndex: make(map[string]int, len(edges)),
		nodeIndex: make(map[string]int),
		isSet:     make(map[string]bool),
		incident:  make(map[string][]string),
	}
	for id := range edges {
		t.edgeIDs = append(t.edgeIDs, id)
	}
	sort.Strings(t.edgeIDs)
	for i, id := range t.edgeIDs {
		t.edgeIndex[id] = i
		e := edges[id]
		for _, n := range []NodeRef{e.subject, e.object} {
			t.incident[n.ID] = append(t.incident[n.ID], id)
			if n.IsSet {
				t.isSet[n.ID] = true
			}
		}
		for _, other := range e.connectedTo {
			if _, ok := edges[other]; !ok {
				log.WithFields(log.Fields{
					"edge":      id,
					"connected": other,
				}).Warn("No records were given for a connected query edge")
			}
		}
	}
	for n := range t.incident {
		t.nodeIDs = append(t.nodeIDs, n)
	}
	sort.Strings(t.nodeIDs)
	for i, n := range t.nodeIDs {
		t.nodeIndex[n] = i
	}
	return t
}

// seed returns the edge to start joining from: the edge touching a leaf node
// that has the fewest records, with ties broken by node ID. If there are no
// leaves, it's the edge with the fewest records, with ties broken by edge ID.
func (t *topology) seed() *edgeIndex {
	var best *edgeIndex
	for _, n := range t.nodeIDs {
		incident := t.incident[n]
		if len(incident) != 1 {
			continue
		}
		e := t.edges[incident[0]]
		if best == nil || len(e.bindings) < len(best.bindings) {
			best = e
		}
	}
	if best != nil {
		return best
	}
	for _, id := range t.edgeIDs {
		e := t.edges[id]
		if best == nil || len(e.bindings) < len(best.bindings) {
			best = e
		}
	}
	return best
}

// step is one edge in join order, joined on the already bound node 'shared'.
// The first step has no shared node.
type step struct {
	edge   *edgeIndex
	shared string
}

// joinOrder returns the order in which to join the edges: from the seed edge,
// repeatedly the unvisited edge touching a bound node with the fewest records,
// with ties broken by edge ID. It returns false if some edges can't be
// reached from the seed.
func (t *topology) joinOrder() ([]step, bool) {
	first := t.seed()
	order := []step{{edge: first}}
	visited := map[string]bool{first.id: true}
	bound := map[string]bool{first.subject.ID: true, first.object.ID: true}
	for len(order) < len(t.edgeIDs) {
		var next step
		for _, id := range t.edgeIDs {
			e := t.edges[id]
			if visited[id] {
				continue
			}
			shared := ""
			switch {
			case bound[e.subject.ID]:
				shared = e.subject.ID
			case bound[e.object.ID]:
				shared = e.object.ID
			default:
				continue
			}
			if next.edge == nil || len(e.bindings) < len(next.edge.bindings) {
				next = step{edge: e, shared: shared}
			}
		}
		if next.edge == nil {
			return order, false
		}
		order = append(order, next)
		visited[next.edge.id] = true
		bound[next.edge.subject.ID] = true
		bound[next.edge.object.ID] = true
	}
	return order, true
}

// partial is a result under construction: one identifier per node and one
// binding position per edge, indexed like topology.nodeIDs and
// topology.edgeIDs.
type partial struct {
	nodes []string
	edges []int
}

func (t *topology) newPartial() partial {
	p := partial{
		nodes: make([]string, len(t.nodeIDs)),
		edges: make([]int, len(t.edgeIDs)),
	}
	for i := range p.edges {
		p.edges[i] = -1
	}
	return p
}

func (p partial) clone() partial {
	return partial{
		nodes: append([]string(nil), p.nodes...),
		edges: append([]int(nil), p.edges...),
	}
}

// start returns one partial per binding of the first edge.
func (t *topology) start(e *edgeIndex) []partial {
	si, oi := t.nodeIndex[e.subject.ID], t.nodeIndex[e.object.ID]
	ei := t.edgeIndex[e.id]
	res := make([]partial, 0, len(e.bindings))
	for pos, b := range e.bindings {
		p := t.newPartial()
		p.nodes[si] = b.subject
		p.nodes[oi] = b.object
		p.edges[ei] = pos
		res = append(res, p)
	}
	return res
}

// extend joins each partial with the bindings of the step's edge that agree on
// the shared node. Partials with no such binding are dropped.
func (t *topology) extend(partials []partial, s step) []partial {
	e := s.edge
	shared := t.nodeIndex[s.shared]
	otherID := e.other(s.shared)
	other := t.nodeIndex[otherID]
	ei := t.edgeIndex[e.id]
	var res []partial
	for _, p := range partials {
		for _, pos := range e.lookup(s.shared, p.nodes[shared]) {
			b := &e.bindings[pos]
			v := b.bound(e, otherID)
			if p.nodes[other] != "" && p.nodes[other] != v {
				continue
			}
			np := p.clone()
			np.nodes[other] = v
			np.edges[ei] = pos
			res = append(res, np)
		}
	}
	return res
}

// group is a set of partials that become a single result.
type group struct {
	nodes []map[string]struct{}
	edges []map[int]struct{}
}

// groupKey identifies the result a partial belongs to: its bound identifiers,
// except at is_set nodes, which are merged.
func (t *topology) groupKey(b *strings.Builder, p partial) {
	for i, id := range t.nodeIDs {
		if t.isSet[id] {
			b.WriteByte('*')
		} else {
			b.WriteString(p.nodes[i])
		}
		b.WriteByte(0)
	}
}

// merge collapses partials into groups, preserving the order in which groups
// were first seen.
func (t *topology) merge(partials []partial) []*group {
	byKey := make(map[string]*group)
	var groups []*group
	var b strings.Builder
	for _, p := range partials {
		b.Reset()
		t.groupKey(&b, p)
		g, ok := byKey[b.String()]
		if !ok {
			g = &group{
				nodes: make([]map[string]struct{}, len(t.nodeIDs)),
				edges: make([]map[int]struct{}, len(t.edgeIDs)),
			}
			for i := range g.nodes {
				g.nodes[i] = make(map[string]struct{}, 1)
			}
			for i := range g.edges {
				g.edges[i] = make(map[int]struct{}, 1)
			}
			byKey[b.String()] = g
			groups = append(groups, g)
		}
		for i, v := range p.nodes {
			g.nodes[i][v] = struct{}{}
		}
		for i, pos := range p.edges {
			g.edges[i][pos] = struct{}{}
		}
	}
	return groups
}

// result converts a group into a Result with sorted bindings.
func (t *topology) result(g *group) Result {
	r := Result{
		NodeBindings: make(map[string][]NodeBinding, len(t.nodeIDs)),
	}
	for i, id := range t.nodeIDs {
		ids := make([]string, 0, len(g.nodes[i]))
		for v := range g.nodes[i] {
			ids = append(ids, v)
		}
		sort.Strings(ids)
		bindings := make([]NodeBinding, len(ids))
		for j, v := range ids {
			bindings[j] = NodeBinding{ID: v}
		}
		r.NodeBindings[id] = bindings
	}
	analysis := Analysis{
		EdgeBindings: make(map[string][]EdgeBinding, len(t.edgeIDs)),
	}
	total := 0.0
	for i, id := range t.edgeIDs {
		e := t.edges[id]
		ids := make([]string, 0, len(g.edges[i]))
		for pos := range g.edges[i] {
			ids = append(ids, e.bindings[pos].record.ID())
		}
		sort.Strings(ids)
		bindings := make([]EdgeBinding, len(ids))
		for j, v := range ids {
			bindings[j] = EdgeBinding{ID: v}
		}
		analysis.EdgeBindings[id] = bindings
		total += edgeScore(len(ids))
	}
	analysis.Score = total / float64(len(t.edgeIDs))
	r.Analyses = []Analysis{analysis}
	return r
}
