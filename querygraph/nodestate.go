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

	"github.com/biothings/bte/biolink"
	"github.com/biothings/bte/util/cmp"
	log "github.com/sirupsen/logrus"
)

// DefaultCategory is used for nodes that declare no categories.
const DefaultCategory = "NamedThing"

// Entity is one resolved identifier cluster: a primary identifier with its
// aliases and semantic types.
type Entity struct {
	PrimaryID     string   `json:"primary_id" yaml:"primary_id"`
	Label         string   `json:"label,omitempty" yaml:"label"`
	Curies        []string `json:"curies,omitempty" yaml:"curies"`
	SemanticTypes []string `json:"semantic_types,omitempty" yaml:"semantic_types"`
}

// nodeHandle refers to a NodeState in a plan's arena.
type nodeHandle int

// arena holds the mutable node state of one plan.
type arena struct {
	ontology biolink.Ontology
	states   []NodeState
	handles  map[string]nodeHandle
}

func newArena(g *Graph, ontology biolink.Ontology) *arena {
	nodes := g.Nodes()
	a := &arena{
		ontology: ontology,
		states:   make([]NodeState, len(nodes)),
		handles:  make(map[string]nodeHandle, len(nodes)),
	}
	for i, n := range nodes {
		a.states[i] = newNodeState(n, ontology)
		a.handles[n.ID] = nodeHandle(i)
	}
	return a
}

func (a *arena) node(h nodeHandle) *NodeState {
	return &a.states[h]
}

func (a *arena) handle(nodeID string) nodeHandle {
	h, ok := a.handles[nodeID]
	if !ok {
		log.Panicf("querygraph: no state for node %v", nodeID)
	}
	return h
}

// heldState is a node's candidate set while it's set aside.
type heldState struct {
	curies   []string
	expanded map[string][]string
}

// NodeState is the mutable state of a query node within one plan: the
// candidate identifiers that are still viable, their aliases, and the
// equivalent identifier clusters attached to them.
type NodeState struct {
	node     *QNode
	ontology biolink.Ontology
	// Sorted candidate identifiers. nil means the node is unbound.
	curies []string
	// Candidate identifier -> aliases, including the identifier itself.
	expanded map[string][]string
	held     *heldState
	// Identifier -> resolved entity clusters.
	equivalentIDs map[string][]Entity
	// Bumped on every change to equivalentIDs.
	version uint64
	// Derived categories, valid while categoriesVersion == version.
	categories        []string
	categoriesVersion uint64
}

func newNodeState(n *QNode, ontology biolink.Ontology) NodeState {
	s := NodeState{
		node:     n,
		ontology: ontology,
		version:  1,
	}
	if n.IDs != nil {
		s.curies = cmp.SortedCopy(n.IDs)
		if s.curies == nil {
			s.curies = []string{}
		}
		s.expanded = make(map[string][]string, len(s.curies))
		for _, id := range s.curies {
			s.expanded[id] = []string{id}
		}
	}
	return s
}

// ID returns the query node's ID.
func (s *NodeState) ID() string {
	return s.node.ID
}

// QNode returns the declared query node.
func (s *NodeState) QNode() *QNode {
	return s.node
}

// IsSet returns the query node's is_set flag.
func (s *NodeState) IsSet() bool {
	return s.node.IsSet
}

// HasInput returns true if the node has at least one candidate identifier.
func (s *NodeState) HasInput() bool {
	return len(s.curies) > 0
}

// EntityCount returns the number of candidate identifiers.
func (s *NodeState) EntityCount() int {
	return len(s.curies)
}

// Curies returns a copy of the sorted candidate identifiers, or nil if the
// node is unbound.
func (s *NodeState) Curies() []string {
	return copyList(s.curies)
}

// ExpandedCuries returns a copy of the map from candidate identifier to its
// aliases.
func (s *NodeState) ExpandedCuries() map[string][]string {
	return copyAliases(s.expanded)
}

// Held returns true if the node's candidates have been set aside by HoldCurie.
func (s *NodeState) Held() bool {
	return s.held != nil
}

// HoldCurie sets the node's candidates aside, so that it behaves as unbound
// until RestoreCurie or UpdateCuries brings them back. Holding an already held
// node does nothing.
func (s *NodeState) HoldCurie() {
	if s.held != nil {
		return
	}
	s.held = &heldState{curies: s.curies, expanded: s.expanded}
	s.curies = nil
	s.expanded = nil
}

// RestoreCurie brings back the candidates set aside by HoldCurie. If the node
// gained candidates in the meantime, only those sharing an alias with a held
// candidate are kept; otherwise the held candidates are restored as they were.
func (s *NodeState) RestoreCurie() {
	if s.held == nil {
		return
	}
	held := s.held
	s.held = nil
	if s.curies == nil {
		s.curies = held.curies
		s.expanded = held.expanded
		return
	}
	s.setExpanded(IntersectAliases(held.expanded, s.expanded))
}

// UpdateCuries merges newly found candidates into the node. 'candidates' maps
// each identifier to its aliases. Any held candidates are restored first. A
// node with no candidates adopts 'candidates' wholesale; otherwise only the
// new candidates sharing an alias with an existing one are kept.
func (s *NodeState) UpdateCuries(candidates map[string][]string) {
	s.RestoreCurie()
	if len(s.curies) == 0 {
		s.setExpanded(copyAliases(candidates))
	} else {
		s.setExpanded(IntersectAliases(s.expanded, candidates))
	}
	log.WithFields(log.Fields{
		"node":     s.ID(),
		"incoming": len(candidates),
		"count":    len(s.curies),
	}).Debug("Updated node candidates")
}

func (s *NodeState) setExpanded(expanded map[string][]string) {
	if expanded == nil {
		expanded = make(map[string][]string)
	}
	s.expanded = expanded
	s.curies = make([]string, 0, len(expanded))
	for id := range expanded {
		s.curies = append(s.curies, id)
	}
	sort.Strings(s.curies)
}

// HasEquivalentIDs returns true if any entity clusters are attached.
func (s *NodeState) HasEquivalentIDs() bool {
	return len(s.equivalentIDs) > 0
}

// SetEquivalentIDs replaces the entity clusters attached to the node. The
// aliases of each cluster are added to the matching candidate's alias list.
func (s *NodeState) SetEquivalentIDs(ids map[string][]Entity) {
	s.equivalentIDs = make(map[string][]Entity, len(ids))
	for id, entities := range ids {
		s.equivalentIDs[id] = entities
	}
	s.equivalentIDsChanged()
}

// UpdateEquivalentIDs adds to or replaces the entity clusters attached to the
// given identifiers.
func (s *NodeState) UpdateEquivalentIDs(ids map[string][]Entity) {
	if s.equivalentIDs == nil {
		s.equivalentIDs = make(map[string][]Entity, len(ids))
	}
	for id, entities := range ids {
		s.equivalentIDs[id] = entities
	}
	s.equivalentIDsChanged()
}

// RemoveEquivalentID detaches the entity clusters of one identifier.
func (s *NodeState) RemoveEquivalentID(id string) {
	delete(s.equivalentIDs, id)
	s.equivalentIDsChanged()
}

func (s *NodeState) equivalentIDsChanged() {
	s.version++
	for id, entities := range s.equivalentIDs {
		existing, ok := s.expanded[id]
		if !ok {
			continue
		}
		aliases := copyList(existing)
		for _, e := range entities {
			aliases = append(aliases, e.PrimaryID)
			aliases = append(aliases, e.Curies...)
		}
		s.expanded[id] = cmp.SortedCopy(aliases)
	}
}

// Entities returns the attached entity clusters, one per primary identifier,
// sorted by primary identifier. If several identifiers carry a cluster with the
// same primary identifier, the one attached to the lowest identifier wins.
func (s *NodeState) Entities() []Entity {
	ids := make([]string, 0, len(s.equivalentIDs))
	for id := range s.equivalentIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	byPrimary := make(map[string]Entity)
	for _, id := range ids {
		for _, e := range s.equivalentIDs[id] {
			if _, dup := byPrimary[e.PrimaryID]; !dup {
				byPrimary[e.PrimaryID] = e
			}
		}
	}
	res := make([]Entity, 0, len(byPrimary))
	for _, e := range byPrimary {
		res = append(res, e)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].PrimaryID < res[j].PrimaryID
	})
	return res
}

// PrimaryIDs returns the sorted primary identifiers of the attached entity
// clusters.
func (s *NodeState) PrimaryIDs() []string {
	entities := s.Entities()
	res := make([]string, len(entities))
	for i, e := range entities {
		res[i] = e.PrimaryID
	}
	return res
}

// Categories returns the node's categories expanded to their descendants,
// without the "biolink:" prefix, sorted. If entity clusters are attached, their
// semantic types are used in place of the declared categories. Nodes with
// neither use DefaultCategory. The result is cached until the attached entity
// clusters change.
func (s *NodeState) Categories() []string {
	if s.categoriesVersion != s.version {
		s.categories = s.computeCategories()
		s.categoriesVersion = s.version
	}
	return copyList(s.categories)
}

func (s *NodeState) computeCategories() []string {
	var base []string
	for _, e := range s.Entities() {
		base = append(base, e.SemanticTypes...)
	}
	if len(base) == 0 {
		base = s.node.Categories
	}
	if len(base) == 0 {
		base = []string{DefaultCategory}
	}
	var expanded []string
	for _, c := range base {
		expanded = append(expanded, s.ontology.DescendantClasses(biolink.StripPrefix(c))...)
	}
	return cmp.SortedCopy(expanded)
}

func copyAliases(m map[string][]string) map[string][]string {
	if m == nil {
		return nil
	}
	res := make(map[string][]string, len(m))
	for k, v := range m {
		res[k] = copyList(v)
	}
	return res
}
