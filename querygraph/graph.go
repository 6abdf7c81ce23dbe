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
)

// QNode is a query node as declared in the query graph. It's immutable; the
// state that changes while a query runs lives in NodeState.
type QNode struct {
	ID string
	// Declared categories, as given. nil means unconstrained.
	Categories []string
	// Declared seed identifiers. nil means the node is unbound; an empty,
	// non-nil list means it has zero candidates.
	IDs         []string
	IsSet       bool
	Constraints []AttributeConstraint
}

// HasIDs returns true if the node declared an ids list, even an empty one.
func (n *QNode) HasIDs() bool {
	return n.IDs != nil
}

// Seeded returns true if the node declared at least one seed identifier.
func (n *QNode) Seeded() bool {
	return len(n.IDs) > 0
}

// QEdge is a query edge as declared in the query graph. It's immutable.
type QEdge struct {
	ID      string
	Subject string
	Object  string
	// Declared predicates, as given. nil means unconstrained.
	Predicates           []string
	QualifierConstraints []QualifierConstraint
	AttributeConstraints []AttributeConstraint
}

// Touches returns true if 'nodeID' is one of the edge's endpoints.
func (e *QEdge) Touches(nodeID string) bool {
	return e.Subject == nodeID || e.Object == nodeID
}

// Other returns the endpoint of the edge that isn't 'nodeID'.
func (e *QEdge) Other(nodeID string) string {
	if e.Subject == nodeID {
		return e.Object
	}
	return e.Subject
}

// Graph is a parsed query graph. Its nodes and edges are immutable once built.
type Graph struct {
	nodes   map[string]*QNode
	edges   map[string]*QEdge
	nodeIDs []string
	edgeIDs []string
	// node ID -> sorted IDs of the edges touching it.
	incident map[string][]string
}

// NewGraph checks the shape of the fields in 'doc' and builds a Graph from it.
// It returns an InvalidQueryGraphError for malformed nodes, edges or
// constraints. Topology problems, such as dangling edges or cycles, are left
// to Validate.
func NewGraph(doc *Document) (*Graph, error) {
	g := &Graph{
		nodes:    make(map[string]*QNode, len(doc.Nodes)),
		edges:    make(map[string]*QEdge, len(doc.Edges)),
		incident: make(map[string][]string),
	}
	for id, n := range doc.Nodes {
		owner := "node " + id
		if id == "" {
			return nil, invalidf(MalformedNode, "node with empty ID")
		}
		if err := checkNames("categories", owner, n.Categories); err != nil {
			return nil, invalidf(MalformedNode, "%v", err)
		}
		if err := checkNames("ids", owner, n.IDs); err != nil {
			return nil, invalidf(MalformedNode, "%v", err)
		}
		qn := &QNode{
			ID:          id,
			Categories:  copyList(n.Categories),
			IDs:         copyList(n.IDs),
			IsSet:       n.IsSet,
			Constraints: append([]AttributeConstraint(nil), n.Constraints...),
		}
		for i := range qn.Constraints {
			if err := qn.Constraints[i].validate(owner); err != nil {
				return nil, err
			}
		}
		g.nodes[id] = qn
		g.nodeIDs = append(g.nodeIDs, id)
	}
	for id, e := range doc.Edges {
		owner := "edge " + id
		switch {
		case id == "":
			return nil, invalidf(MalformedEdge, "edge with empty ID")
		case e.Subject == "":
			return nil, invalidf(MalformedEdge, "%v is missing 'subject'", owner)
		case e.Object == "":
			return nil, invalidf(MalformedEdge, "%v is missing 'object'", owner)
		}
		if err := checkNames("predicates", owner, e.Predicates); err != nil {
			return nil, invalidf(MalformedEdge, "%v", err)
		}
		qe := &QEdge{
			ID:                   id,
			Subject:              e.Subject,
			Object:               e.Object,
			Predicates:           copyList(e.Predicates),
			QualifierConstraints: append([]QualifierConstraint(nil), e.QualifierConstraints...),
			AttributeConstraints: append([]AttributeConstraint(nil), e.AttributeConstraints...),
		}
		for _, qc := range qe.QualifierConstraints {
			if err := qc.validate(owner); err != nil {
				return nil, err
			}
		}
		for i := range qe.AttributeConstraints {
			if err := qe.AttributeConstraints[i].validate(owner); err != nil {
				return nil, err
			}
		}
		g.edges[id] = qe
		g.edgeIDs = append(g.edgeIDs, id)
	}
	sort.Strings(g.nodeIDs)
	sort.Strings(g.edgeIDs)
	for _, id := range g.edgeIDs {
		e := g.edges[id]
		g.incident[e.Subject] = append(g.incident[e.Subject], id)
		if e.Object != e.Subject {
			g.incident[e.Object] = append(g.incident[e.Object], id)
		}
	}
	return g, nil
}

// copyList copies 'list', keeping the distinction between nil and empty.
func copyList(list []string) []string {
	if list == nil {
		return nil
	}
	return append(make([]string, 0, len(list)), list...)
}

// Nodes returns the graph's nodes, sorted by ID.
func (g *Graph) Nodes() []*QNode {
	res := make([]*QNode, len(g.nodeIDs))
	for i, id := range g.nodeIDs {
		res[i] = g.nodes[id]
	}
	return res
}

// Edges returns the graph's edges, sorted by ID.
func (g *Graph) Edges() []*QEdge {
	res := make([]*QEdge, len(g.edgeIDs))
	for i, id := range g.edgeIDs {
		res[i] = g.edges[id]
	}
	return res
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id string) *QNode {
	return g.nodes[id]
}

// Edge returns the edge with the given ID, or nil.
func (g *Graph) Edge(id string) *QEdge {
	return g.edges[id]
}

// IncidentEdges returns the sorted IDs of the edges touching the node.
func (g *Graph) IncidentEdges(nodeID string) []string {
	return g.incident[nodeID]
}

// Adjacent returns the sorted IDs of the other edges that share a node with
// the given edge.
func (g *Graph) Adjacent(edgeID string) []string {
	e := g.edges[edgeID]
	if e == nil {
		return nil
	}
	seen := map[string]struct{}{edgeID: {}}
	var res []string
	for _, n := range []string{e.Subject, e.Object} {
		for _, other := range g.incident[n] {
			if _, dup := seen[other]; !dup {
				seen[other] = struct{}{}
				res = append(res, other)
			}
		}
	}
	sort.Strings(res)
	return res
}
