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
	"github.com/biothings/bte/biolink"
	log "github.com/sirupsen/logrus"
)

// DefaultMaxDepth is the number of layers a plan may have past its first one
// when Planner.MaxDepth isn't set.
const DefaultMaxDepth = 3

// Planner validates query graphs and orders their edges for execution.
type Planner struct {
	// The number of layers allowed past the first. If zero or negative,
	// DefaultMaxDepth is used.
	MaxDepth int
	// Used to expand categories and predicates. If nil, biolink.Default() is
	// used.
	Ontology biolink.Ontology
}

func (p *Planner) maxDepth() int {
	if p.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return p.MaxDepth
}

func (p *Planner) ontology() biolink.Ontology {
	if p.Ontology == nil {
		return biolink.Default()
	}
	return p.Ontology
}

// Plan validates the graph and returns a new execution plan for it, with fresh
// node state. It returns an InvalidQueryGraphError if the graph can't be
// planned.
func (p *Planner) Plan(g *Graph) (*Plan, error) {
	plan, err := p.plan(g)
	if err != nil {
		metrics.invalidTotal.WithLabelValues(ReasonOf(err).String()).Inc()
		log.WithError(err).Info("Rejected query graph")
		return nil, err
	}
	metrics.plansTotal.Inc()
	return plan, nil
}

func (p *Planner) plan(g *Graph) (*Plan, error) {
	if err := Validate(g); err != nil {
		return nil, err
	}
	return p.calculateEdges(g)
}

// calculateEdges orders the graph's edges into layers. The first layer holds
// every edge touching a seeded node, directed away from the seeded end (or
// forward if both ends are seeded). Each following layer holds the unvisited
// edges touching the output node of an edge in the previous layer, directed
// away from that node.
func (p *Planner) calculateEdges(g *Graph) (*Plan, error) {
	plan := newPlan(g, newArena(g, p.ontology()))
	visited := make(map[string]bool, len(g.edges))
	var layer []*ExecutionEdge
	for _, qe := range g.Edges() {
		subjectSeeded := g.Node(qe.Subject).Seeded()
		objectSeeded := g.Node(qe.Object).Seeded()
		if !subjectSeeded && !objectSeeded {
			continue
		}
		reversed := !subjectSeeded && objectSeeded
		layer = append(layer, newExecutionEdge(plan.arena, qe, reversed, nil))
		visited[qe.ID] = true
	}
	for len(layer) > 0 {
		if len(plan.layers) > p.maxDepth() {
			return nil, invalidf(MaxDepthExceeded,
				"query graph needs more than %d hops from its seeded nodes (reaching edge %v)",
				p.maxDepth(), layer[0].ID())
		}
		plan.addLayer(layer)
		var next []*ExecutionEdge
		for _, prev := range layer {
			shared := prev.OutputNode().ID()
			for _, id := range g.IncidentEdges(shared) {
				if visited[id] {
					continue
				}
				qe := g.Edge(id)
				reversed := qe.Object == shared
				next = append(next, newExecutionEdge(plan.arena, qe, reversed, prev))
				visited[id] = true
			}
		}
		layer = next
	}
	for _, qe := range g.Edges() {
		if !visited[qe.ID] {
			return nil, invalidf(Unseeded, "edge %v can't be reached from any seeded node", qe.ID)
		}
	}
	return plan, nil
}
