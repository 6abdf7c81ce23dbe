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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Document is the wire form of a query graph.
type Document struct {
	Nodes map[string]NodeDocument `json:"nodes"`
	Edges map[string]EdgeDocument `json:"edges"`
}

// NodeDocument is the wire form of a query node. All fields are optional.
type NodeDocument struct {
	Categories StringList `json:"categories,omitempty"`
	// nil means the field was absent (unbound); an empty, non-nil list means
	// the node has zero candidates.
	IDs         StringList            `json:"ids"`
	IsSet       bool                  `json:"is_set,omitempty"`
	Constraints []AttributeConstraint `json:"constraints,omitempty"`
}

// EdgeDocument is the wire form of a query edge. Subject and Object are
// required.
type EdgeDocument struct {
	Subject              string                `json:"subject"`
	Object               string                `json:"object"`
	Predicates           StringList            `json:"predicates,omitempty"`
	QualifierConstraints []QualifierConstraint `json:"qualifier_constraints,omitempty"`
	AttributeConstraints []AttributeConstraint `json:"attribute_constraints,omitempty"`
}

// StringList is a list of strings that also accepts a single bare string when
// decoded from JSON, as older query graphs do for categories and predicates.
// A JSON null decodes to a nil list and an empty array to an empty, non-nil
// list.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	if list == nil {
		list = []string{}
	}
	*l = list
	return nil
}

// Parse decodes a JSON query graph document from 'r' and builds a Graph from
// it. Parse does not check the graph's topology; use Validate or a Planner for
// that.
func Parse(r io.Reader) (*Graph, error) {
	dec := json.NewDecoder(r)
	var doc *Document
	if err := dec.Decode(&doc); err != nil {
		return nil, invalidf(MalformedDocument, "error decoding query graph: %v", err)
	}
	if doc == nil {
		return nil, invalidf(MalformedDocument, "query graph document is null")
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, invalidf(MalformedDocument, "unexpected data after query graph document")
	}
	return NewGraph(doc)
}

// MarshalJSON implements json.Marshaler for the graph, producing its
// Document form.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Document())
}

// Document returns the wire form of the graph.
func (g *Graph) Document() *Document {
	doc := &Document{
		Nodes: make(map[string]NodeDocument, len(g.nodes)),
		Edges: make(map[string]EdgeDocument, len(g.edges)),
	}
	for _, n := range g.Nodes() {
		doc.Nodes[n.ID] = NodeDocument{
			Categories:  n.Categories,
			IDs:         n.IDs,
			IsSet:       n.IsSet,
			Constraints: n.Constraints,
		}
	}
	for _, e := range g.Edges() {
		doc.Edges[e.ID] = EdgeDocument{
			Subject:              e.Subject,
			Object:               e.Object,
			Predicates:           e.Predicates,
			QualifierConstraints: e.QualifierConstraints,
			AttributeConstraints: e.AttributeConstraints,
		}
	}
	return doc
}

func checkNames(kind, owner string, names []string) error {
	for i, name := range names {
		if name == "" {
			return fmt.Errorf("%v: %v[%d] is empty", owner, kind, i)
		}
	}
	return nil
}
