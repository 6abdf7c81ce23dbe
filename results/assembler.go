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
	"strings"
	"time"

	"github.com/google/btree"
	log "github.com/sirupsen/logrus"
)

// Options control how results are assembled.
type Options struct {
	// If true, results are ordered by descending score, then by their
	// bindings. Otherwise they're ordered by their bindings only.
	SortByScore bool
}

// Assembler joins per-edge records into results. It's not safe for concurrent
// use.
type Assembler struct {
	options Options
	edges   map[string]*edgeIndex
	// Memoized output of Results, nil when stale.
	results []Result
}

// New returns an Assembler with no edges.
func New(options Options) *Assembler {
	return &Assembler{
		options: options,
		edges:   make(map[string]*edgeIndex),
	}
}

// Update sets the data for the given query edges, replacing any data
// previously given for them. Each edge's records must be complete; there's no
// way to add records to an edge incrementally. Records are deduplicated by ID.
func (a *Assembler) Update(data map[string]EdgeData) {
	for id, d := range data {
		a.edges[id] = newEdgeIndex(id, d)
	}
	a.results = nil
}

// Results returns the complete results for the data given so far. It returns
// an empty slice before the first Update, or if no combination of records
// covers the whole query graph. The returned slice is shared between calls
// until the next Update, so callers must not modify it.
func (a *Assembler) Results() []Result {
	if a.results == nil {
		start := time.Now()
		a.results = a.assemble()
		metrics.assemblyDurationSeconds.Observe(time.Since(start).Seconds())
		metrics.resultsTotal.Add(float64(len(a.results)))
	}
	return a.results
}

func (a *Assembler) assemble() []Result {
	if len(a.edges) == 0 {
		return []Result{}
	}
	t := newTopology(a.edges)
	order, connected := t.joinOrder()
	if !connected {
		log.WithFields(log.Fields{
			"edges":   len(t.edgeIDs),
			"reached": len(order),
		}).Warn("Query edges aren't connected; no results can cover all of them")
		return []Result{}
	}
	partials := t.start(order[0].edge)
	for _, s := range order[1:] {
		if len(partials) == 0 {
			break
		}
		partials = t.extend(partials, s)
	}
	groups := t.merge(partials)
	tree := btree.New(16)
	var b strings.Builder
	for _, g := range groups {
		r := t.result(g)
		b.Reset()
		writeKey(&b, t.nodeIDs, t.edgeIDs, &r)
		tree.ReplaceOrInsert(&item{
			key:         b.String(),
			score:       r.Score(),
			sortByScore: a.options.SortByScore,
			result:      r,
		})
	}
	res := make([]Result, 0, tree.Len())
	tree.Ascend(func(i btree.Item) bool {
		res = append(res, i.(*item).result)
		return true
	})
	log.WithFields(log.Fields{
		"edges":    len(t.edgeIDs),
		"partials": len(partials),
		"results":  len(res),
	}).Debug("Assembled results")
	return res
}
