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

// Package config defines the settings file read by the bte-query tool.
package config

// Defaults applied by Load to settings left out of the file.
const (
	DefaultMaxDepth  = 3
	DefaultBatchSize = 50
)

// BTE is the top-level configuration.
type BTE struct {
	// Settings for building query plans.
	Planner *Planner `json:"planner,omitempty"`

	// Settings for assembling results.
	Results *Results `json:"results,omitempty"`

	// Where to find the Biolink model. If nil or empty, the embedded model is
	// used.
	Ontology *Ontology `json:"ontology,omitempty"`

	// Settings for the fixture-backed resolvers.
	Fixtures *Fixtures `json:"fixtures,omitempty"`

	// If non-nil, the configuration for distributed tracing (OpenTracing). If
	// nil, spans are not reported anywhere.
	Tracing *Tracing `json:"tracing,omitempty"`
}

// Planner contains configuration for query planning.
type Planner struct {
	// The deepest layer index a plan may use, counting from 0 at the seeded
	// nodes.
	MaxDepth int `json:"maxDepth"`
}

// Results contains configuration for result assembly.
type Results struct {
	// If set, results are ordered by descending score. Otherwise they are
	// ordered by their node bindings.
	SortByScore bool `json:"sortByScore"`
}

// Ontology locates the Biolink model.
type Ontology struct {
	// Path to a Biolink model YAML file.
	Path string `json:"path"`
}

// Fixtures contains configuration for the fixture-backed resolvers.
type Fixtures struct {
	// How many input identifiers go into one lookup batch.
	BatchSize int `json:"batchSize"`
}

// Tracing contains configuration related to distributed execution tracing.
type Tracing struct {
	// Must be "jaeger" (for now).
	Type string `json:"type"`

	// The host:port endpoints of collectors that accept jaeger.thrift over
	// HTTP directly from clients.
	Addresses []string `json:"addresses"`
}

// applyDefaults fills in missing sections and non-positive limits.
func (cfg *BTE) applyDefaults() {
	if cfg.Planner == nil {
		cfg.Planner = &Planner{}
	}
	if cfg.Planner.MaxDepth <= 0 {
		cfg.Planner.MaxDepth = DefaultMaxDepth
	}
	if cfg.Results == nil {
		cfg.Results = &Results{SortByScore: true}
	}
	if cfg.Ontology == nil {
		cfg.Ontology = &Ontology{}
	}
	if cfg.Fixtures == nil {
		cfg.Fixtures = &Fixtures{}
	}
	if cfg.Fixtures.BatchSize <= 0 {
		cfg.Fixtures.BatchSize = DefaultBatchSize
	}
}

// Default returns the configuration used when no file is given.
func Default() *BTE {
	cfg := new(BTE)
	cfg.applyDefaults()
	return cfg
}
