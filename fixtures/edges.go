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
	"sort"

	"github.com/biothings/bte/biolink"
	"github.com/biothings/bte/querygraph"
	"github.com/biothings/bte/record"
	"github.com/biothings/bte/util/parallel"
	log "github.com/sirupsen/logrus"
)

// DefaultBatchSize is the number of input identifiers matched per batch when
// no batch size is given.
const DefaultBatchSize = 50

// Edges resolves execution edges from the fixture set's records.
type Edges struct {
	set       *Set
	ontology  biolink.Ontology
	batchSize int
}

// Edges returns an edge resolver backed by the set. Input identifiers are
// matched in concurrent batches of 'batchSize'.
func (s *Set) Edges(ontology biolink.Ontology, batchSize int) *Edges {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Edges{set: s, ontology: ontology, batchSize: batchSize}
}

// edgeQuery is what a fixture record must satisfy to answer an edge. It's
// captured up front so that the batches don't touch the edge itself.
type edgeQuery struct {
	qEdgeID string
	input   string
	output  string
	// nil means any predicate, in traversal direction.
	predicates map[string]bool
	categories map[string]bool
}

// ResolveEdge returns the fixture records for the edge whose input end is an
// alias of one of the edge's input candidates, whose predicate matches the
// edge's predicates in its traversal direction, and whose output end has a
// semantic type among the output node's categories (if it has any semantic
// types). Records are returned in the order of the input candidates that
// matched them.
func (es *Edges) ResolveEdge(ctx context.Context, edge *querygraph.ExecutionEdge) ([]record.Record, error) {
	q := edgeQuery{
		qEdgeID:    edge.ID(),
		input:      edge.InputNode().ID(),
		output:     edge.OutputNode().ID(),
		categories: toSet(edge.OutputNode().Categories()),
	}
	if predicates, ok := edge.Predicates(); ok {
		q.predicates = toSet(predicates)
	}
	expanded := edge.InputNode().ExpandedCuries()
	inputs := make([]string, 0, len(expanded))
	for curie := range expanded {
		inputs = append(inputs, curie)
	}
	sort.Strings(inputs)

	found := make([][]record.Record, parallel.BatchCount(len(inputs), es.batchSize))
	err := parallel.Batches(ctx, len(inputs), es.batchSize,
		func(ctx context.Context, batch, start, end int) error {
			for _, curie := range inputs[start:end] {
				aliases := toSet(expanded[curie])
				aliases[curie] = true
				for _, r := range es.set.records {
					if es.matches(q, aliases, r) {
						found[batch] = append(found[batch], r)
					}
				}
			}
			return ctx.Err()
		})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var res []record.Record
	for _, batch := range found {
		for _, r := range batch {
			if !seen[r.ID()] {
				seen[r.ID()] = true
				res = append(res, r)
			}
		}
	}
	log.WithFields(log.Fields{
		"edge":    q.qEdgeID,
		"inputs":  len(inputs),
		"batches": len(found),
		"records": len(res),
	}).Debug("Resolved edge from fixtures")
	return res, nil
}

func (es *Edges) matches(q edgeQuery, aliases map[string]bool, r record.Record) bool {
	if r.QEdgeID != q.qEdgeID {
		return false
	}
	in, ok := r.NodeFor(q.input)
	if !ok {
		return false
	}
	out, ok := r.NodeFor(q.output)
	if !ok {
		return false
	}
	if !anyIn(in.EquivalentCuries, aliases) {
		return false
	}
	if len(out.SemanticTypes) > 0 {
		typed := false
		for _, t := range out.SemanticTypes {
			if q.categories[biolink.StripPrefix(t)] {
				typed = true
				break
			}
		}
		if !typed {
			return false
		}
	}
	if q.predicates == nil {
		return true
	}
	predicate := biolink.StripPrefix(r.Predicate)
	if r.Subject.QNodeID == q.input {
		return q.predicates[predicate]
	}
	// The record runs from output to input, so its predicate is the inverse
	// of the one being asked for.
	inverse, ok := es.ontology.InversePredicate(predicate)
	return ok && q.predicates[inverse]
}

func toSet(list []string) map[string]bool {
	res := make(map[string]bool, len(list))
	for _, s := range list {
		res[s] = true
	}
	return res
}

func anyIn(list []string, set map[string]bool) bool {
	for _, s := range list {
		if set[s] {
			return true
		}
	}
	return false
}
