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
	"math"
	"strings"

	"github.com/google/btree"
)

// NodeBinding is one entity bound to a query node.
type NodeBinding struct {
	ID string `json:"id"`
}

// EdgeBinding is one record contributing to a query edge.
type EdgeBinding struct {
	ID string `json:"id"`
}

// Analysis is one way of supporting a Result: the records bound to each query
// edge, and a score.
type Analysis struct {
	EdgeBindings map[string][]EdgeBinding `json:"edge_bindings"`
	Score        float64                  `json:"score"`
}

// Result is one complete answer to a query graph. Every query node and every
// query edge is bound.
type Result struct {
	NodeBindings map[string][]NodeBinding `json:"node_bindings"`
	Analyses     []Analysis               `json:"analyses"`
}

// Score returns the score of the result's first analysis, or 0.
func (r *Result) Score() float64 {
	if len(r.Analyses) == 0 {
		return 0
	}
	return r.Analyses[0].Score
}

// edgeScore scores a query edge supported by 'n' records. Each additional
// record adds half as much as the previous one.
func edgeScore(n int) float64 {
	return 1 - math.Pow(0.5, float64(n))
}

// item is a Result in the assembler's ordered result set.
type item struct {
	key         string
	score       float64
	sortByScore bool
	result      Result
}

// Less implements btree.Item. Items order by descending score, then by key.
func (i *item) Less(than btree.Item) bool {
	other := than.(*item)
	if i.sortByScore && i.score != other.score {
		return i.score > other.score
	}
	return i.key < other.key
}

// writeKey writes a canonical serialization of the result to 'b'. Node and
// edge binding lists must already be sorted.
func writeKey(b *strings.Builder, nodeIDs []string, edgeIDs []string, r *Result) {
	for _, id := range nodeIDs {
		b.WriteString(id)
		b.WriteByte('=')
		for i, nb := range r.NodeBindings[id] {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(nb.ID)
		}
		b.WriteByte(';')
	}
	b.WriteByte('|')
	for _, id := range edgeIDs {
		b.WriteString(id)
		b.WriteByte('=')
		for i, eb := range r.Analyses[0].EdgeBindings[id] {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(eb.ID)
		}
		b.WriteByte(';')
	}
}
