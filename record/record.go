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

// Package record defines the validated form of a resolved answer for one query
// edge. Executors hand over Raw values; New checks them once so that the
// planner and the result assembler only ever see guaranteed fields.
package record

import (
	"errors"
	"fmt"
	"strings"

	"github.com/biothings/bte/util/cmp"
	"github.com/cespare/xxhash/v2"
)

// Node describes one end of a Record.
type Node struct {
	// The query node this end is bound to.
	QNodeID string `json:"qnode_id" yaml:"qnode"`
	// The primary (normalized) identifier of the entity.
	Curie string `json:"curie" yaml:"curie"`
	// The identifier the source used before normalization. Defaults to Curie.
	Original string `json:"original,omitempty" yaml:"original"`
	Label    string `json:"label,omitempty" yaml:"label"`
	// All known aliases of the entity. Always includes Curie and Original.
	EquivalentCuries []string `json:"equivalent_curies,omitempty" yaml:"equivalent_curies"`
	SemanticTypes    []string `json:"semantic_types,omitempty" yaml:"semantic_types"`
}

// Provenance describes where a Record came from.
type Provenance struct {
	API    string `json:"api,omitempty" yaml:"api"`
	Source string `json:"source,omitempty" yaml:"source"`
}

// Attribute is a typed value attached to a Record by its source.
type Attribute struct {
	TypeID string      `json:"attribute_type_id" yaml:"type_id"`
	Value  interface{} `json:"value" yaml:"value"`
}

// Raw is an unvalidated record as produced by an executor.
type Raw struct {
	// If empty, New derives a stable ID from the record's content.
	ID         string      `yaml:"id"`
	QEdgeID    string      `yaml:"qedge"`
	Subject    *Node       `yaml:"subject"`
	Object     *Node       `yaml:"object"`
	Predicate  string      `yaml:"predicate"`
	API        string      `yaml:"api"`
	Source     string      `yaml:"source"`
	Attributes []Attribute `yaml:"attributes"`
}

// Record is one resolved subject-predicate-object answer for a query edge. The
// zero value is not valid; use New.
type Record struct {
	id         string
	QEdgeID    string
	Subject    Node
	Object     Node
	Predicate  string
	Provenance Provenance
	Attributes []Attribute
}

// ErrInvalid is wrapped by every error New returns.
var ErrInvalid = errors.New("invalid record")

// New validates 'raw' and returns the corresponding Record. The query edge ID,
// both node descriptors, their query node IDs and their curies are required,
// and the two ends must be bound to different query nodes.
func New(raw Raw) (Record, error) {
	switch {
	case raw.QEdgeID == "":
		return Record{}, fmt.Errorf("%w: missing query edge ID", ErrInvalid)
	case raw.Subject == nil:
		return Record{}, fmt.Errorf("%w: edge %v: missing subject", ErrInvalid, raw.QEdgeID)
	case raw.Object == nil:
		return Record{}, fmt.Errorf("%w: edge %v: missing object", ErrInvalid, raw.QEdgeID)
	}
	subject, err := normalizeNode(raw.QEdgeID, "subject", *raw.Subject)
	if err != nil {
		return Record{}, err
	}
	object, err := normalizeNode(raw.QEdgeID, "object", *raw.Object)
	if err != nil {
		return Record{}, err
	}
	if subject.QNodeID == object.QNodeID {
		return Record{}, fmt.Errorf("%w: edge %v: subject and object are both bound to query node %v",
			ErrInvalid, raw.QEdgeID, subject.QNodeID)
	}
	r := Record{
		id:         raw.ID,
		QEdgeID:    raw.QEdgeID,
		Subject:    subject,
		Object:     object,
		Predicate:  raw.Predicate,
		Provenance: Provenance{API: raw.API, Source: raw.Source},
		Attributes: raw.Attributes,
	}
	if r.id == "" {
		r.id = fmt.Sprintf("%016x", xxhash.Sum64String(cmp.GetKey(r)))
	}
	return r, nil
}

// MustNew is like New but panics on invalid input. It's meant for tests and
// static fixtures.
func MustNew(raw Raw) Record {
	r, err := New(raw)
	if err != nil {
		panic(err)
	}
	return r
}

func normalizeNode(qEdgeID, role string, n Node) (Node, error) {
	if n.QNodeID == "" {
		return Node{}, fmt.Errorf("%w: edge %v: %v has no query node ID", ErrInvalid, qEdgeID, role)
	}
	if n.Curie == "" {
		return Node{}, fmt.Errorf("%w: edge %v: %v has no curie", ErrInvalid, qEdgeID, role)
	}
	if n.Original == "" {
		n.Original = n.Curie
	}
	aliases := make([]string, 0, len(n.EquivalentCuries)+2)
	aliases = append(aliases, n.Curie, n.Original)
	aliases = append(aliases, n.EquivalentCuries...)
	n.EquivalentCuries = cmp.SortedCopy(aliases)
	n.SemanticTypes = cmp.SortedCopy(n.SemanticTypes)
	return n, nil
}

// ID returns the record's identifier, as supplied in Raw or derived from its
// content.
func (r Record) ID() string {
	return r.id
}

// NodeFor returns the end of the record bound to the given query node.
func (r Record) NodeFor(qNodeID string) (Node, bool) {
	switch qNodeID {
	case r.Subject.QNodeID:
		return r.Subject, true
	case r.Object.QNodeID:
		return r.Object, true
	}
	return Node{}, false
}

// Key implements cmp.Key. It covers the fields that make up the record's
// identity; labels, aliases and attributes are not part of it.
func (r Record) Key(b *strings.Builder) {
	b.WriteString(r.QEdgeID)
	b.WriteByte(' ')
	b.WriteString(r.Subject.QNodeID)
	b.WriteByte('=')
	b.WriteString(r.Subject.Curie)
	b.WriteByte(' ')
	b.WriteString(r.Predicate)
	b.WriteByte(' ')
	b.WriteString(r.Object.QNodeID)
	b.WriteByte('=')
	b.WriteString(r.Object.Curie)
	b.WriteString(" api=")
	b.WriteString(r.Provenance.API)
	b.WriteString(" source=")
	b.WriteString(r.Provenance.Source)
}

func (r Record) String() string {
	return fmt.Sprintf("%v(%v %v %v)", r.QEdgeID, r.Subject.Curie, r.Predicate, r.Object.Curie)
}
