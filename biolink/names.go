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

package biolink

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Prefix is the CURIE prefix of Biolink model elements.
const Prefix = "biolink:"

// StripPrefix removes a leading "biolink:" from 'name', if present.
func StripPrefix(name string) string {
	return strings.TrimPrefix(name, Prefix)
}

// AddPrefix returns 'name' with a "biolink:" prefix, adding one only if it's
// missing.
func AddPrefix(name string) string {
	if strings.HasPrefix(name, Prefix) {
		return name
	}
	return Prefix + name
}

// ClassName converts a model class name such as "gene or gene product" into
// the PascalCase form used in query graphs, "GeneOrGeneProduct". Names that are
// already in PascalCase are returned unchanged. Acronyms keep their case, so
// "RNA product" becomes "RNAProduct".
func ClassName(name string) string {
	name = StripPrefix(strings.TrimSpace(name))
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		b.WriteString(title.String(word))
	}
	return b.String()
}

// SlotName converts a model slot name such as "treated by" into the snake_case
// form used in query graphs, "treated_by".
func SlotName(name string) string {
	name = StripPrefix(strings.TrimSpace(name))
	return strings.Join(strings.Fields(name), "_")
}
