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

// Package querygraph turns a declarative query graph into an execution plan.
//
// A query graph is a set of query nodes (QNode), each optionally constrained by
// categories and seed identifiers, and query edges (QEdge) between them,
// optionally constrained by predicates. The Planner validates the graph and
// orders its edges into layers of ExecutionEdges, starting from the edges that
// touch a seeded node and working outwards. Each plan owns the mutable state of
// its nodes (NodeState): the candidate identifiers that survive as edges are
// resolved, the equivalent identifiers attached to them, and the derived
// categories. ExecutionEdges refer to that state through handles into the
// plan's arena, so nothing outside a plan can observe or change it.
//
// Planning is synchronous and single-threaded. A Plan and everything reachable
// from it must not be used concurrently.
package querygraph
