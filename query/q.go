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

// Package query provides a high level entry point for answering query graphs.
// It runs the planner, resolves each execution edge through a caller-provided
// resolver, and assembles the results.
package query

import (
	"context"
	"fmt"

	"github.com/biothings/bte/biolink"
	"github.com/biothings/bte/querygraph"
	"github.com/biothings/bte/record"
	"github.com/biothings/bte/results"
	"github.com/biothings/bte/util/tracing"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// IDResolver finds the equivalent identifiers of seed identifiers.
type IDResolver interface {
	// ResolveIDs takes seed identifiers grouped by category (without the
	// "biolink:" prefix) and returns the entity clusters for each identifier
	// it knows about.
	ResolveIDs(ctx context.Context, byCategory map[string][]string) (map[string][]querygraph.Entity, error)
}

// EdgeResolver finds the records answering one execution edge. It should
// consult the edge's input node candidates, direction and predicates, and
// must not modify the edge.
type EdgeResolver interface {
	ResolveEdge(ctx context.Context, edge *querygraph.ExecutionEdge) ([]record.Record, error)
}

// Options configure an Engine.
type Options struct {
	// Used to expand categories and predicates. If nil, biolink.Default() is
	// used.
	Ontology biolink.Ontology
	// Optional. If nil, seeded nodes get no equivalent identifiers.
	IDs IDResolver
	// Required.
	Edges EdgeResolver
	// See querygraph.Planner.MaxDepth.
	MaxDepth int
	// See results.Options.SortByScore.
	SortByScore bool
}

// Engine answers query graphs. It may be used concurrently; each query gets
// its own plan.
type Engine struct {
	options Options
	planner querygraph.Planner
}

// New returns an Engine with the given options.
func New(options Options) *Engine {
	if options.Edges == nil {
		log.Panicf("query.New: Options.Edges must be set")
	}
	if options.Ontology == nil {
		options.Ontology = biolink.Default()
	}
	return &Engine{
		options: options,
		planner: querygraph.Planner{
			MaxDepth: options.MaxDepth,
			Ontology: options.Ontology,
		},
	}
}

// Response is the outcome of a query.
type Response struct {
	// Identifies this query in logs and traces.
	RunID string
	// The executed plan, with the final state of every node and the records
	// of every edge.
	Plan    *querygraph.Plan
	Results []results.Result
}

// Query plans the query graph, executes its edges one at a time in plan order,
// and assembles the results. Planning errors are returned before anything is
// resolved; they are *querygraph.InvalidQueryGraphError values. Errors from
// the resolvers abort the query.
func (e *Engine) Query(ctx context.Context, g *querygraph.Graph) (*Response, error) {
	runID := uuid.New().String()
	logger := log.WithField("run", runID)
	span, ctx := tracing.StartSpan(ctx, "query", metrics.queryDurationSeconds)
	span.SetTag("run", runID)
	defer span.Finish()

	pspan, _ := tracing.StartSpan(ctx, "plan query", metrics.planDurationSeconds)
	plan, err := e.planner.Plan(g)
	pspan.Finish()
	if err != nil {
		logger.WithError(err).Warn("Planner failed")
		return nil, err
	}
	logger.WithField("edges", len(plan.Edges())).Debugf("Planned query:\n%v", plan)

	if e.options.IDs != nil {
		rspan, rctx := tracing.StartSpan(ctx, "resolve ids", metrics.resolveIDsDurationSeconds)
		err = e.resolveSeeds(rctx, plan)
		rspan.Finish()
		if err != nil {
			return nil, err
		}
	}

	for _, edge := range plan.Edges() {
		xspan, xctx := tracing.StartSpan(ctx, "execute edge", metrics.executeEdgeDurationSeconds)
		xspan.SetTag("edge", edge.ID())
		err := e.executeEdge(xctx, logger, edge)
		xspan.Finish()
		if err != nil {
			return nil, err
		}
	}

	aspan, _ := tracing.StartSpan(ctx, "assemble results", metrics.assembleDurationSeconds)
	assembler := results.New(results.Options{SortByScore: e.options.SortByScore})
	assembler.Update(edgeData(plan))
	res := assembler.Results()
	aspan.Finish()
	logger.WithField("results", len(res)).Info("Query complete")
	return &Response{
		RunID:   runID,
		Plan:    plan,
		Results: res,
	}, nil
}

// resolveSeeds attaches equivalent identifiers to every node with candidates.
func (e *Engine) resolveSeeds(ctx context.Context, plan *querygraph.Plan) error {
	byCategory := make(map[string][]string)
	var seeded []*querygraph.NodeState
	for _, n := range plan.Graph().Nodes() {
		state := plan.Node(n.ID)
		if !state.HasInput() {
			continue
		}
		seeded = append(seeded, state)
		category := querygraph.DefaultCategory
		if len(n.Categories) > 0 {
			category = biolink.StripPrefix(n.Categories[0])
		}
		byCategory[category] = append(byCategory[category], state.Curies()...)
	}
	if len(seeded) == 0 {
		return nil
	}
	resolved, err := e.options.IDs.ResolveIDs(ctx, byCategory)
	if err != nil {
		return fmt.Errorf("error resolving seed identifiers: %w", err)
	}
	for _, state := range seeded {
		ids := make(map[string][]querygraph.Entity)
		for _, curie := range state.Curies() {
			if entities, ok := resolved[curie]; ok {
				ids[curie] = entities
			}
		}
		state.SetEquivalentIDs(ids)
	}
	return nil
}

// executeEdge resolves one edge and narrows its nodes to what was found.
func (e *Engine) executeEdge(ctx context.Context, logger *log.Entry, edge *querygraph.ExecutionEdge) error {
	if edge.Subject().HasInput() && edge.Object().HasInput() {
		edge.ChooseLowerEntityValue()
	}
	var records []record.Record
	if edge.InputNode().HasInput() {
		var err error
		records, err = e.options.Edges.ResolveEdge(ctx, edge)
		if err != nil {
			return fmt.Errorf("error resolving edge %v: %w", edge.ID(), err)
		}
	} else {
		logger.WithField("edge", edge.ID()).Info("Skipping edge: its input node has no candidates")
	}
	kept := edge.StoreRecords(records)
	edge.UpdateNodesCuries()
	logger.WithFields(log.Fields{
		"edge":     edge.ID(),
		"reversed": edge.IsReversed(),
		"records":  kept,
		"hash":     edge.HashedEdgeRepresentation(),
	}).Debug("Executed edge")
	return nil
}

// edgeData collects the plan's records for the assembler.
func edgeData(plan *querygraph.Plan) map[string]results.EdgeData {
	g := plan.Graph()
	data := make(map[string]results.EdgeData, len(plan.Edges()))
	for _, edge := range plan.Edges() {
		qe := edge.QEdge()
		data[qe.ID] = results.EdgeData{
			Subject:     results.NodeRef{ID: qe.Subject, IsSet: g.Node(qe.Subject).IsSet},
			Object:      results.NodeRef{ID: qe.Object, IsSet: g.Node(qe.Object).IsSet},
			ConnectedTo: g.Adjacent(qe.ID),
			Records:     edge.Records(),
		}
	}
	return data
}
