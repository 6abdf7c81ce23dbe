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

// Package results assembles the records resolved for each query edge into
// complete results that match the shape of the query graph.
//
// The Assembler joins records edge by edge, starting from a leaf of the query
// graph and following shared query nodes, using per-edge hash indexes keyed by
// the primary identifier bound to each node. Results that differ only in the
// entities bound to an is_set node are merged, as are records for the same
// edge with identical endpoints. The output is deterministic: the same input
// always produces the same results in the same order.
package results
