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
	"sort"
	"strings"

	"github.com/biothings/bte/biolink"
	"github.com/biothings/bte/record"
	"github.com/biothings/bte/util/cmp"
	"github.com/cespare/xxhash/v2"
	log "github.com/sirupsen/logrus"
)

// ExecutionEdge is a query edge as it will be executed: with a traversal
// direction, a link to the edge executed before it, and the records resolved
// for it. Its endpoints are handles into the plan's node state.
type ExecutionEdge struct {
	arena    *arena
	qEdge    *QEdge
	index    int
	subject  nodeHandle
	object   nodeHandle
	reversed bool
	prev     *ExecutionEdge
	records  []record.Record
	executed bool
}

func newExecutionEdge(a *arena, e *QEdge, reversed bool, prev *ExecutionEdge) *ExecutionEdge {
	return &ExecutionEdge{
		arena:    a,
		qEdge:    e,
		subject:  a.handle(e.Subject),
		object:   a.handle(e.Object),
		reversed: reversed,
		prev:     prev,
	}
}

// ID returns the query edge's ID.
func (e *ExecutionEdge) ID() string {
	return e.qEdge.ID
}

// QEdge returns the declared query edge.
func (e *ExecutionEdge) QEdge() *QEdge {
	return e.qEdge
}

// Index returns the edge's position in the plan's execution order.
func (e *ExecutionEdge) Index() int {
	return e.index
}

// Prev returns the edge whose output node is this edge's input node, or nil
// for edges that start from a seeded node.
func (e *ExecutionEdge) Prev() *ExecutionEdge {
	return e.prev
}

// Subject returns the state of the declared subject node.
func (e *ExecutionEdge) Subject() *NodeState {
	return e.arena.node(e.subject)
}

// Object returns the state of the declared object node.
func (e *ExecutionEdge) Object() *NodeState {
	return e.arena.node(e.object)
}

// IsReversed returns true if the edge is traversed from object to subject.
func (e *ExecutionEdge) IsReversed() bool {
	return e.reversed
}

// Reverse flips the traversal direction.
func (e *ExecutionEdge) Reverse() {
	e.reversed = !e.reversed
}

// InputNode returns the node the edge is traversed from: the object if
// reversed, the subject otherwise.
func (e *ExecutionEdge) InputNode() *NodeState {
	if e.reversed {
		return e.Object()
	}
	return e.Subject()
}

// OutputNode returns the node the edge is traversed to.
func (e *ExecutionEdge) OutputNode() *NodeState {
	if e.reversed {
		return e.Subject()
	}
	return e.Object()
}

// ChooseLowerEntityValue directs the edge from whichever endpoint has fewer
// candidates, with the subject winning ties, and holds the other endpoint's
// candidates. If either endpoint has no candidates, it logs and changes
// nothing.
func (e *ExecutionEdge) ChooseLowerEntityValue() {
	subject, object := e.Subject(), e.Object()
	if !subject.HasInput() || !object.HasInput() {
		log.WithFields(log.Fields{
			"edge":         e.ID(),
			"subjectCount": subject.EntityCount(),
			"objectCount":  object.EntityCount(),
		}).Debug("Can't compare entity counts: an endpoint has no candidates")
		return
	}
	if subject.EntityCount() <= object.EntityCount() {
		e.reversed = false
		object.HoldCurie()
	} else {
		e.reversed = true
		subject.HoldCurie()
	}
	log.WithFields(log.Fields{
		"edge":     e.ID(),
		"input":    e.InputNode().ID(),
		"reversed": e.reversed,
	}).Debug("Chose edge direction by entity count")
}

// Predicates returns the predicates to query for this edge, without the
// "biolink:" prefix, sorted: the declared predicates expanded to their
// descendants, then mapped to their inverses if the edge is reversed.
// Predicates with no inverse are dropped when reversed. It returns false if
// the edge declares no predicates.
func (e *ExecutionEdge) Predicates() ([]string, bool) {
	if len(e.qEdge.Predicates) == 0 {
		return nil, false
	}
	ontology := e.arena.ontology
	var res []string
	for _, declared := range e.qEdge.Predicates {
		for _, p := range ontology.DescendantPredicates(biolink.StripPrefix(declared)) {
			if !e.reversed {
				res = append(res, p)
				continue
			}
			inverse, ok := ontology.InversePredicate(p)
			if !ok {
				log.WithFields(log.Fields{
					"edge":      e.ID(),
					"predicate": p,
				}).Debug("Dropping predicate with no inverse from reversed edge")
				continue
			}
			res = append(res, inverse)
		}
	}
	res = cmp.SortedCopy(res)
	if res == nil {
		res = []string{}
	}
	return res, true
}

// QualifierConstraints returns the edge's qualifier constraints as seen in its
// traversal direction. For reversed edges, subject-scoped and object-scoped
// qualifier types swap, and qualified predicates are replaced by their
// inverses (or kept if they have none).
func (e *ExecutionEdge) QualifierConstraints() []QualifierConstraint {
	res := make([]QualifierConstraint, len(e.qEdge.QualifierConstraints))
	for i, qc := range e.qEdge.QualifierConstraints {
		set := make([]Qualifier, len(qc.QualifierSet))
		for j, q := range qc.QualifierSet {
			if e.reversed {
				q = e.reverseQualifier(q)
			}
			set[j] = q
		}
		res[i] = QualifierConstraint{QualifierSet: set}
	}
	return res
}

func (e *ExecutionEdge) reverseQualifier(q Qualifier) Qualifier {
	name := biolink.StripPrefix(q.TypeID)
	prefix := q.TypeID[:len(q.TypeID)-len(name)]
	switch {
	case name == "qualified_predicate":
		value := biolink.StripPrefix(q.Value)
		if inverse, ok := e.arena.ontology.InversePredicate(value); ok {
			q.Value = q.Value[:len(q.Value)-len(value)] + inverse
		}
	case strings.HasPrefix(name, "subject_"):
		q.TypeID = prefix + "object_" + strings.TrimPrefix(name, "subject_")
	case strings.HasPrefix(name, "object_"):
		q.TypeID = prefix + "subject_" + strings.TrimPrefix(name, "object_")
	}
	return q
}

// InputCuries returns the sorted candidate identifiers of the input node.
func (e *ExecutionEdge) InputCuries() []string {
	return e.InputNode().Curies()
}

// Key implements cmp.Key. It identifies the question the edge asks of an
// external source in its current state and direction.
func (e *ExecutionEdge) Key(b *strings.Builder) {
	b.WriteString("in=")
	cmp.WriteSorted(b, ",", e.InputNode().Categories())
	b.WriteString(" pred=")
	if predicates, ok := e.Predicates(); ok {
		cmp.WriteSorted(b, ",", predicates)
	} else {
		b.WriteByte('*')
	}
	b.WriteString(" out=")
	cmp.WriteSorted(b, ",", e.OutputNode().Categories())
	b.WriteString(" curies=")
	cmp.WriteSorted(b, ",", e.InputCuries())
	b.WriteString(" qualifiers=")
	qualifiers := e.QualifierConstraints()
	sets := make([]string, len(qualifiers))
	for i, qc := range qualifiers {
		sets[i] = qc.String()
	}
	cmp.WriteSorted(b, ";", sets)
	if e.reversed {
		b.WriteString(" dir=reverse")
	} else {
		b.WriteString(" dir=forward")
	}
}

// HashedEdgeRepresentation returns a hash of the edge's categories,
// predicates, input identifiers, qualifier constraints and direction, as a hex
// string. It doesn't depend on the order of any of those, and it differs
// between the two traversal directions of the same edge.
func (e *ExecutionEdge) HashedEdgeRepresentation() string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(cmp.GetKey(e)))
}

// StoreRecords sets the records resolved for the edge and marks it executed.
// Records for other query edges, records whose endpoints aren't bound to this
// edge's nodes, and records failing any of the edge's attribute constraints are
// discarded. It returns the number of records kept.
func (e *ExecutionEdge) StoreRecords(records []record.Record) int {
	kept := make([]record.Record, 0, len(records))
	var wrongEdge, wrongNodes, constrained int
	for _, r := range records {
		switch {
		case r.QEdgeID != e.qEdge.ID:
			wrongEdge++
		case !e.bindsEndpoints(r):
			wrongNodes++
		case !e.satisfiesConstraints(r):
			constrained++
		default:
			kept = append(kept, r)
		}
	}
	if len(kept) < len(records) {
		log.WithFields(log.Fields{
			"edge":        e.ID(),
			"kept":        len(kept),
			"wrongEdge":   wrongEdge,
			"wrongNodes":  wrongNodes,
			"constrained": constrained,
		}).Debug("Discarded records that don't fit the edge")
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].ID() < kept[j].ID()
	})
	e.records = kept
	e.executed = true
	return len(kept)
}

func (e *ExecutionEdge) bindsEndpoints(r record.Record) bool {
	s, o := r.Subject.QNodeID, r.Object.QNodeID
	return (s == e.qEdge.Subject && o == e.qEdge.Object) ||
		(s == e.qEdge.Object && o == e.qEdge.Subject)
}

func (e *ExecutionEdge) satisfiesConstraints(r record.Record) bool {
	for i := range e.qEdge.AttributeConstraints {
		if !e.qEdge.AttributeConstraints[i].Matches(r.Attributes) {
			return false
		}
	}
	return true
}

// Records returns the records stored for the edge, sorted by ID.
func (e *ExecutionEdge) Records() []record.Record {
	return e.records
}

// Executed returns true once records have been stored for the edge.
func (e *ExecutionEdge) Executed() bool {
	return e.executed
}

// UpdateNodesCuries narrows both endpoints' candidates to the identifiers
// found in the edge's records. Each record end contributes its original
// identifier, with its equivalent identifiers as aliases. The output node
// also gains the entity clusters described by the records.
func (e *ExecutionEdge) UpdateNodesCuries() {
	found := map[string]map[string][]string{
		e.qEdge.Subject: {},
		e.qEdge.Object:  {},
	}
	output := e.OutputNode().ID()
	entities := make(map[string][]Entity)
	for _, r := range e.records {
		for _, n := range []record.Node{r.Subject, r.Object} {
			aliases, ok := found[n.QNodeID]
			if !ok {
				continue
			}
			aliases[n.Original] = cmp.SortedCopy(append(copyList(aliases[n.Original]), n.EquivalentCuries...))
			if n.QNodeID == output {
				entities[n.Original] = mergeEntity(entities[n.Original], Entity{
					PrimaryID:     n.Curie,
					Label:         n.Label,
					Curies:        n.EquivalentCuries,
					SemanticTypes: n.SemanticTypes,
				})
			}
		}
	}
	e.Subject().UpdateCuries(found[e.qEdge.Subject])
	e.Object().UpdateCuries(found[e.qEdge.Object])
	if len(entities) > 0 {
		e.OutputNode().UpdateEquivalentIDs(entities)
	}
}

func mergeEntity(list []Entity, e Entity) []Entity {
	for _, existing := range list {
		if existing.PrimaryID == e.PrimaryID {
			return list
		}
	}
	return append(list, e)
}
