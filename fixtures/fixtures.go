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

// Package fixtures provides identifier and edge resolvers backed by a static
// YAML file. They stand in for the identifier normalization service and the
// external knowledge sources when running queries offline.
//
// A fixture file looks like this:
//
//	ids:
//	  NCBIGene:1017:
//	    - primary_id: NCBIGene:1017
//	      label: CDK2
//	      curies:
//	        - NCBIGene:1017
//	        - HGNC:1771
//	      semantic_types:
//	        - biolink:Gene
//	records:
//	  - qedge: e0
//	    subject:
//	      qnode: n0
//	      curie: NCBIGene:1017
//	    object:
//	      qnode: n1
//	      curie: MONDO:0005148
//	      semantic_types:
//	        - biolink:Disease
//	    predicate: biolink:affects
//	    api: example
package fixtures

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/biothings/bte/querygraph"
	"github.com/biothings/bte/record"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type file struct {
	IDs     map[string][]querygraph.Entity `yaml:"ids"`
	Records []record.Raw                   `yaml:"records"`
}

// Set is a loaded fixture file. It's immutable and safe for concurrent use.
type Set struct {
	// Identifier or alias -> entity clusters.
	ids     map[string][]querygraph.Entity
	records []record.Record
}

// Load parses a fixture file. It returns an error if the YAML is malformed,
// has unknown fields, or contains an invalid record.
func Load(r io.Reader) (*Set, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("error decoding fixtures: %v", err)
	}
	s := &Set{
		ids:     make(map[string][]querygraph.Entity),
		records: make([]record.Record, 0, len(f.Records)),
	}
	for curie, entities := range f.IDs {
		s.ids[curie] = entities
	}
	// Aliases resolve to the same clusters as their primary identifiers,
	// unless they're listed themselves.
	for _, entities := range f.IDs {
		for _, e := range entities {
			for _, alias := range append([]string{e.PrimaryID}, e.Curies...) {
				if _, exists := f.IDs[alias]; !exists {
					s.ids[alias] = appendEntity(s.ids[alias], e)
				}
			}
		}
	}
	for i, raw := range f.Records {
		r, err := record.New(raw)
		if err != nil {
			return nil, fmt.Errorf("fixture record %d: %w", i, err)
		}
		s.records = append(s.records, r)
	}
	log.WithFields(log.Fields{
		"ids":     len(f.IDs),
		"records": len(s.records),
	}).Debug("Loaded fixtures")
	return s, nil
}

// LoadFile reads and parses the given fixture file.
func LoadFile(filename string) (*Set, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	s, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", filename, err)
	}
	return s, nil
}

// Records returns all the records in the set.
func (s *Set) Records() []record.Record {
	return s.records
}

func appendEntity(list []querygraph.Entity, e querygraph.Entity) []querygraph.Entity {
	for _, existing := range list {
		if existing.PrimaryID == e.PrimaryID {
			return list
		}
	}
	return append(list, e)
}
