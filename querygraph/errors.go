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
	"errors"
	"fmt"
)

// Reason categorizes why a query graph was rejected.
type Reason int

// Reasons a query graph can be rejected.
const (
	EmptyNodes Reason = iota + 1
	EmptyEdges
	DanglingEdge
	Cycle
	DuplicateEdge
	MaxDepthExceeded
	Unseeded
	MalformedDocument
	MalformedNode
	MalformedEdge
	MalformedConstraint
)

var reasonNames = map[Reason]string{
	EmptyNodes:          "empty_nodes",
	EmptyEdges:          "empty_edges",
	DanglingEdge:        "dangling_edge",
	Cycle:               "cycle",
	DuplicateEdge:       "duplicate_edge",
	MaxDepthExceeded:    "max_depth_exceeded",
	Unseeded:            "unseeded",
	MalformedDocument:   "malformed_document",
	MalformedNode:       "malformed_node",
	MalformedEdge:       "malformed_edge",
	MalformedConstraint: "malformed_constraint",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// InvalidQueryGraphError is returned when a query graph can't be planned. It's
// fatal for the query: nothing should be dispatched to external sources.
type InvalidQueryGraphError struct {
	Reason  Reason
	Message string
}

func (e *InvalidQueryGraphError) Error() string {
	return "invalid query graph: " + e.Message
}

func invalidf(reason Reason, format string, args ...interface{}) *InvalidQueryGraphError {
	return &InvalidQueryGraphError{
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsInvalid returns true if 'err' is or wraps an InvalidQueryGraphError.
func IsInvalid(err error) bool {
	var invalid *InvalidQueryGraphError
	return errors.As(err, &invalid)
}

// ReasonOf returns the Reason of an InvalidQueryGraphError wrapped in 'err', or
// zero if there isn't one.
func ReasonOf(err error) Reason {
	var invalid *InvalidQueryGraphError
	if errors.As(err, &invalid) {
		return invalid.Reason
	}
	return 0
}
