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

// Package biolink answers hierarchy questions about the Biolink model: which
// categories (classes) and predicates (slots) descend from a given one, and
// which predicate is the inverse of another.
//
// Category names use the model's PascalCase form ("GeneOrGeneProduct") and
// predicate names its snake_case form ("gene_associated_with_condition").
// Callers may pass names with or without the "biolink:" prefix.
package biolink
