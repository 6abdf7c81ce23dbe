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
)

// IDs resolves identifiers from the fixture set's ids section.
type IDs struct {
	set *Set
}

// IDs returns an identifier resolver backed by the set.
func (s *Set) IDs() *IDs {
	return &IDs{set: s}
}

// ResolveIDs returns the entity clusters of every requested identifier.
// Identifiers missing from the fixtures resolve to a cluster of their own,
// typed with the category they were requested under.
func (ids *IDs) ResolveIDs(ctx context.Context, byCategory map[string][]string) (map[string][]querygraph.Entity, error) {
	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	res := make(map[string][]querygraph.Entity)
	for _, category := range categories {
		for _, curie := range byCategory[category] {
			if _, done := res[curie]; done {
				continue
			}
			if entities, ok := ids.set.ids[curie]; ok {
				res[curie] = entities
				continue
			}
			res[curie] = []querygraph.Entity{{
				PrimaryID:     curie,
				Curies:        []string{curie},
				SemanticTypes: []string{biolink.AddPrefix(category)},
			}}
		}
	}
	return res, ctx.Err()
}
