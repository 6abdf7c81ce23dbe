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
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_IntersectAliases(t *testing.T) {
	existing := map[string][]string{
		"NCBIGene:1017": {"NCBIGene:1017", "HGNC:1771", "UMLS:C1332733"},
		"NCBIGene:7157": {"NCBIGene:7157"},
	}
	incoming := map[string][]string{
		// shares an alias with a different spelling
		"ENSEMBL:ENSG00000123374": {"ENSEMBL:ENSG00000123374", "hgnc:1771"},
		// the identifier itself is an existing alias
		"UMLS:C1332733": nil,
		// no overlap
		"NCBIGene:672": {"NCBIGene:672", "HGNC:1100"},
	}
	assert.Equal(t, map[string][]string{
		"ENSEMBL:ENSG00000123374": {"ENSEMBL:ENSG00000123374", "hgnc:1771"},
		"UMLS:C1332733":           nil,
	}, IntersectAliases(existing, incoming))

	assert.Empty(t, IntersectAliases(nil, incoming))
	assert.Empty(t, IntersectAliases(existing, nil))
	assert.Len(t, existing, 2, "input must not be modified")
	assert.Len(t, incoming, 3, "input must not be modified")
}
