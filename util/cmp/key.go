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

// Package cmp provides helpers for building deterministic identity keys.
package cmp

import (
	"sort"
	"strings"
)

// The Key interface is satisfied by any object whose identity can be serialized
// into a string.
type Key interface {
	// Key writes a serialization of the object's identity to the given
	// strings.Builder. This serialization should be optimized for machine
	// consumption. However, it should also be human-readable to make debugging
	// and unit testing easier.
	Key(*strings.Builder)
}

// GetKey returns the identity/comparison key of the object.
func GetKey(object Key) string {
	var b strings.Builder
	object.Key(&b)
	return b.String()
}

// WriteSorted writes a sorted copy of 'values' to 'b', separated by 'sep'. The
// input slice is not modified.
func WriteSorted(b *strings.Builder, sep string, values []string) {
	sorted := SortedCopy(values)
	for i, v := range sorted {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(v)
	}
}

// SortedCopy returns a sorted copy of 'values' with duplicates removed. It
// returns nil for an empty input.
func SortedCopy(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	res := make([]string, len(values))
	copy(res, values)
	sort.Strings(res)
	out := res[:1]
	for _, v := range res[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
