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

package biolink

import (
	"sort"
)

// Ontology is the hierarchy lookup capability used when expanding query graph
// categories and predicates. Every method accepts names with or without the
// "biolink:" prefix and returns names without it. The closures returned by the
// Descendant and Ancestor methods include the name itself, and unknown names
// expand to just themselves.
type Ontology interface {
	DescendantClasses(name string) []string
	AncestorClasses(name string) []string
	DescendantPredicates(name string) []string
	AncestorPredicates(name string) []string
	// InversePredicate returns the inverse of the given predicate. Symmetric
	// predicates are their own inverse. It returns false if the predicate is
	// unknown or has no inverse.
	InversePredicate(name string) (string, bool)
}

// Model is an in-memory Biolink model. It's immutable once built and safe for
// concurrent use.
type Model struct {
	classes    *hierarchy
	predicates *hierarchy
	inverses   map[string]string
	symmetric  map[string]bool
}

var _ Ontology = (*Model)(nil)

// hierarchy is a multiple-inheritance tree of named elements.
type hierarchy struct {
	parents  map[string][]string
	children map[string][]string
}

func newHierarchy() *hierarchy {
	return &hierarchy{
		parents:  make(map[string][]string),
		children: make(map[string][]string),
	}
}

// add declares 'name' with the given parents. Parents don't need to be
// declared themselves.
func (h *hierarchy) add(name string, parents ...string) {
	if _, exists := h.parents[name]; !exists {
		h.parents[name] = nil
	}
	for _, p := range parents {
		if p == "" || p == name {
			continue
		}
		h.parents[name] = appendUnique(h.parents[name], p)
		h.children[p] = appendUnique(h.children[p], name)
	}
}

func (h *hierarchy) known(name string) bool {
	if _, ok := h.parents[name]; ok {
		return true
	}
	_, ok := h.children[name]
	return ok
}

// closure returns the sorted set of names reachable from 'name' by repeatedly
// following 'next', including 'name' itself.
func closure(name string, next map[string][]string) []string {
	seen := map[string]struct{}{name: {}}
	queue := []string{name}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range next[current] {
			if _, exists := seen[n]; !exists {
				seen[n] = struct{}{}
				queue = append(queue, n)
			}
		}
	}
	res := make([]string, 0, len(seen))
	for n := range seen {
		res = append(res, n)
	}
	sort.Strings(res)
	return res
}

// DescendantClasses implements Ontology.DescendantClasses.
func (m *Model) DescendantClasses(name string) []string {
	name = StripPrefix(name)
	return closure(name, m.classes.children)
}

// AncestorClasses implements Ontology.AncestorClasses.
func (m *Model) AncestorClasses(name string) []string {
	name = StripPrefix(name)
	return closure(name, m.classes.parents)
}

// DescendantPredicates implements Ontology.DescendantPredicates.
func (m *Model) DescendantPredicates(name string) []string {
	name = StripPrefix(name)
	return closure(name, m.predicates.children)
}

// AncestorPredicates implements Ontology.AncestorPredicates.
func (m *Model) AncestorPredicates(name string) []string {
	name = StripPrefix(name)
	return closure(name, m.predicates.parents)
}

// InversePredicate implements Ontology.InversePredicate.
func (m *Model) InversePredicate(name string) (string, bool) {
	name = StripPrefix(name)
	if m.symmetric[name] {
		return name, true
	}
	inverse, ok := m.inverses[name]
	return inverse, ok
}

// IsClass returns true if 'name' is a category known to the model.
func (m *Model) IsClass(name string) bool {
	return m.classes.known(StripPrefix(name))
}

// IsPredicate returns true if 'name' is a predicate known to the model.
func (m *Model) IsPredicate(name string) bool {
	return m.predicates.known(StripPrefix(name))
}

func appendUnique(list []string, s string) []string {
	for _, e := range list {
		if e == s {
			return list
		}
	}
	return append(list, s)
}
