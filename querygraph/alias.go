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
	"golang.org/x/text/cases"
)

// IntersectAliases returns the entries of 'incoming' that share at least one
// alias with any entry of 'existing'. Each map goes from an identifier to its
// aliases; the identifier itself counts as one of its aliases. Aliases are
// compared case-insensitively. The values of the returned map are those of
// 'incoming'. Neither input is modified.
func IntersectAliases(existing, incoming map[string][]string) map[string][]string {
	fold := cases.Fold()
	known := make(map[string]struct{})
	for id, aliases := range existing {
		known[fold.String(id)] = struct{}{}
		for _, alias := range aliases {
			known[fold.String(alias)] = struct{}{}
		}
	}
	res := make(map[string][]string)
	for id, aliases := range incoming {
		if overlaps(known, fold, id, aliases) {
			res[id] = aliases
		}
	}
	return res
}

func overlaps(known map[string]struct{}, fold cases.Caser, id string, aliases []string) bool {
	if _, ok := known[fold.String(id)]; ok {
		return true
	}
	for _, alias := range aliases {
		if _, ok := known[fold.String(alias)]; ok {
			return true
		}
	}
	return false
}
