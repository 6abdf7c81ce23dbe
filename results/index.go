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
	"sort"

	"github.com/biothings/bte/record"
	"github.com/biothings/bte/util/cmp"
	log "github.com/sirupsen/logrus"
)

// NodeRef identifies a query node at one end of a query edge.
type NodeRef struct {
	ID    string
	IsSet bool
}

// EdgeData is everything the assembler needs to know about one query edge.
type EdgeData struct {
	// The declared subject and object of the query edge.
	Subject NodeRef
	Object  NodeRef
	// IDs of the other query edges sharing a node with this one.
	ConnectedTo []string
	// Records resolved for the edge, in either orientation.
	Records []record.Record
}

// binding is a record oriented to its query edge's declared direction.
type binding struct {
	record  record.Record
	subject string
	object  string
}

// edgeIndex holds one query edge's records, indexed by the identifier bound to
// each end.
type edgeIndex struct {
	id          string
	subject     NodeRef
	object      NodeRef
	connectedTo []string
	bindings    []binding
	// Primary identifier -> positions in bindings.
	bySubject map[string][]int
	byObject  map[string][]int
}

// newEdgeIndex deduplicates the edge's records by ID, orients them to the
// declared direction of the edge, and indexes them. Records whose ends aren't
// bound to the edge's subject and object are dropped.
func newEdgeIndex(id string, data EdgeData) *edgeIndex {
	idx := &edgeIndex{
		id:          id,
		subject:     data.Subject,
		object:      data.Object,
		connectedTo: append([]string(nil), data.ConnectedTo...),
		bySubject:   make(map[string][]int),
		byObject:    make(map[string][]int),
	}
	sort.Strings(idx.connectedTo)
	records := append([]record.Record(nil), data.Records...)
	// Among records sharing an ID, the one with the lowest key is kept.
	sort.Slice(records, func(i, j int) bool {
		if records[i].ID() != records[j].ID() {
			return records[i].ID() < records[j].ID()
		}
		return cmp.GetKey(records[i]) < cmp.GetKey(records[j])
	})
	dropped := 0
	for i, r := range records {
		if i > 0 && r.ID() == records[i-1].ID() {
			continue
		}
		b, ok := idx.orient(r)
		if !ok {
			dropped++
			continue
		}
		pos := len(idx.bindings)
		idx.bindings = append(idx.bindings, b)
		idx.bySubject[b.subject] = append(idx.bySubject[b.subject], pos)
		idx.byObject[b.object] = append(idx.byObject[b.object], pos)
	}
	if dropped > 0 {
		log.WithFields(log.Fields{
			"edge":    id,
			"dropped": dropped,
			"kept":    len(idx.bindings),
		}).Debug("Dropped records not bound to the edge's nodes")
	}
	return idx
}

// orient returns the record's bound identifiers in the declared direction of
// the edge. The record's own subject and object may be either way around.
func (idx *edgeIndex) orient(r record.Record) (binding, bool) {
	switch {
	case r.Subject.QNodeID == idx.subject.ID && r.Object.QNodeID == idx.object.ID:
		return binding{record: r, subject: r.Subject.Curie, object: r.Object.Curie}, true
	case r.Subject.QNodeID == idx.object.ID && r.Object.QNodeID == idx.subject.ID:
		return binding{record: r, subject: r.Object.Curie, object: r.Subject.Curie}, true
	}
	return binding{}, false
}

// lookup returns the positions of the bindings whose end at query node
// 'nodeID' is bound to 'curie'.
func (idx *edgeIndex) lookup(nodeID, curie string) []int {
	if nodeID == idx.subject.ID {
		return idx.bySubject[curie]
	}
	return idx.byObject[curie]
}

// other returns the end of the edge that isn't 'nodeID'.
func (idx *edgeIndex) other(nodeID string) string {
	if nodeID == idx.subject.ID {
		return idx.object.ID
	}
	return idx.subject.ID
}

// bound returns the identifier a binding assigns to query node 'nodeID'.
func (b *binding) bound(idx *edgeIndex, nodeID string) string {
	if nodeID == idx.subject.ID {
		return b.subject
	}
	return b.object
}

func (idx *edgeIndex) touches(nodeID string) bool {
	return idx.subject.ID == nodeID || idx.object.ID == nodeID
}
