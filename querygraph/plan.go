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
	"fmt"
	"io"
	"strings"

	"github.com/biothings/bte/util/graphviz"
)

// Plan is the ordered execution of a query graph. It owns the mutable state
// of the graph's nodes for the duration of one query.
type Plan struct {
	graph  *Graph
	arena  *arena
	layers [][]*ExecutionEdge
	edges  []*ExecutionEdge
	byID   map[string]*ExecutionEdge
}

func newPlan(g *Graph, a *arena) *Plan {
	return &Plan{
		graph: g,
		arena: a,
		byID:  make(map[string]*ExecutionEdge, len(g.edges)),
	}
}

func (p *Plan) addLayer(layer []*ExecutionEdge) {
	for _, e := range layer {
		e.index = len(p.edges)
		p.edges = append(p.edges, e)
		p.byID[e.ID()] = e
	}
	p.layers = append(p.layers, layer)
}

// Graph returns the query graph the plan was built from.
func (p *Plan) Graph() *Graph {
	return p.graph
}

// Layers returns the plan's edges grouped by layer. Every edge in a layer
// after the first depends on an edge in the layer before it.
func (p *Plan) Layers() [][]*ExecutionEdge {
	return p.layers
}

// Edges returns the plan's edges in execution order; an edge's position is
// its Index.
func (p *Plan) Edges() []*ExecutionEdge {
	return p.edges
}

// Edge returns the execution edge for the given query edge ID, or nil.
func (p *Plan) Edge(id string) *ExecutionEdge {
	return p.byID[id]
}

// Node returns the state of the given query node, or nil.
func (p *Plan) Node(id string) *NodeState {
	h, ok := p.arena.handles[id]
	if !ok {
		return nil
	}
	return p.arena.node(h)
}

// String returns a multi-line description of the plan's layers.
func (p *Plan) String() string {
	var b strings.Builder
	for i, layer := range p.layers {
		fmt.Fprintf(&b, "layer %d\n", i)
		for _, e := range layer {
			fmt.Fprintf(&b, "  [%d] %v: %v -> %v", e.index, e.ID(), e.InputNode().ID(), e.OutputNode().ID())
			if e.reversed {
				b.WriteString(" reversed")
			}
			if len(e.qEdge.Predicates) > 0 {
				fmt.Fprintf(&b, " predicates=%v", strings.Join(e.qEdge.Predicates, ","))
			}
			if e.prev != nil {
				fmt.Fprintf(&b, " after=%v", e.prev.ID())
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Graphviz writes the plan in the Graphviz DOT language. Nodes are query
// nodes; edges point from subject to object and are labeled with their
// execution order. Seeded nodes are filled, and reversed edges are dashed.
func (p *Plan) Graphviz(w io.Writer) {
	fmt.Fprintf(w, "digraph {\n")
	fmt.Fprintf(w, "  node [shape=box];\n")
	for _, n := range p.graph.Nodes() {
		attrs := fmt.Sprintf("label=%v", graphviz.Quote(nodeLabel(n)))
		if n.Seeded() {
			attrs += ", style=filled, fillcolor=lightgrey"
		}
		fmt.Fprintf(w, "  %v [%v];\n", graphviz.Quote(n.ID), attrs)
	}
	for _, e := range p.edges {
		attrs := fmt.Sprintf("label=%v", graphviz.Quote(fmt.Sprintf("%v [%d]", e.ID(), e.index)))
		if e.reversed {
			attrs += ", style=dashed"
		}
		fmt.Fprintf(w, "  %v -> %v [%v];\n",
			graphviz.Quote(e.qEdge.Subject), graphviz.Quote(e.qEdge.Object), attrs)
	}
	fmt.Fprintf(w, "}\n")
}

func nodeLabel(n *QNode) string {
	label := n.ID
	if len(n.Categories) > 0 {
		label += "\n" + strings.Join(n.Categories, ",")
	}
	if n.IsSet {
		label += "\n(set)"
	}
	return label
}
