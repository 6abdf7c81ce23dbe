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
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/biothings/bte/record"
)

// Attribute constraint operators.
const (
	OpEqual       = "=="
	OpStrictEqual = "==="
	OpGreater     = ">"
	OpLess        = "<"
	OpMatches     = "matches"
)

// AttributeConstraint restricts the records bound to a query edge (or the
// entities bound to a query node) by the value of one of their attributes.
type AttributeConstraint struct {
	// The attribute type this constraint applies to, such as
	// "biolink:p_value".
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Not      bool        `json:"not,omitempty"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
	UnitID   string      `json:"unit_id,omitempty"`
	UnitName string      `json:"unit_name,omitempty"`

	// Set by validate for the "matches" operator.
	re *regexp.Regexp
}

// validate checks the constraint is well formed. 'owner' describes where the
// constraint was found, for error messages.
func (c *AttributeConstraint) validate(owner string) error {
	switch {
	case c.ID == "":
		return invalidf(MalformedConstraint, "%v: attribute constraint is missing 'id'", owner)
	case c.Name == "":
		return invalidf(MalformedConstraint, "%v: attribute constraint %v is missing 'name'", owner, c.ID)
	case c.Operator == "":
		return invalidf(MalformedConstraint, "%v: attribute constraint %v is missing 'operator'", owner, c.ID)
	case c.Value == nil:
		return invalidf(MalformedConstraint, "%v: attribute constraint %v is missing 'value'", owner, c.ID)
	}
	switch c.Operator {
	case OpEqual, OpStrictEqual:
	case OpGreater, OpLess:
		if _, ok := toFloat(c.Value); !ok {
			return invalidf(MalformedConstraint, "%v: attribute constraint %v: operator %v needs a numeric value, got %v",
				owner, c.ID, c.Operator, c.Value)
		}
	case OpMatches:
		pattern, ok := c.Value.(string)
		if !ok {
			return invalidf(MalformedConstraint, "%v: attribute constraint %v: operator matches needs a string value, got %v",
				owner, c.ID, c.Value)
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return invalidf(MalformedConstraint, "%v: attribute constraint %v: invalid pattern: %v",
				owner, c.ID, err)
		}
		c.re = re
	default:
		return invalidf(MalformedConstraint, "%v: attribute constraint %v has unsupported operator %q",
			owner, c.ID, c.Operator)
	}
	return nil
}

// Matches returns true if any attribute of type c.ID satisfies the constraint.
// A list-valued attribute satisfies it if any of its elements does. Records
// without the attribute never satisfy a constraint, even a negated one.
func (c *AttributeConstraint) Matches(attrs []record.Attribute) bool {
	found := false
	matched := false
	for _, a := range attrs {
		if a.TypeID != c.ID {
			continue
		}
		found = true
		for _, v := range flatten(a.Value) {
			if c.matchValue(v) {
				matched = true
			}
		}
	}
	if !found {
		return false
	}
	return matched != c.Not
}

func (c *AttributeConstraint) matchValue(v interface{}) bool {
	switch c.Operator {
	case OpEqual:
		for _, want := range flatten(c.Value) {
			if looseEqual(v, want) {
				return true
			}
		}
		return false
	case OpStrictEqual:
		return strictEqual(v, c.Value)
	case OpGreater, OpLess:
		have, ok := toFloat(v)
		want, ok2 := toFloat(c.Value)
		if !ok || !ok2 {
			return false
		}
		if c.Operator == OpGreater {
			return have > want
		}
		return have < want
	case OpMatches:
		re := c.re
		if re == nil {
			var err error
			re, err = regexp.Compile(fmt.Sprint(c.Value))
			if err != nil {
				return false
			}
		}
		return re.MatchString(fmt.Sprint(v))
	}
	return false
}

func flatten(v interface{}) []interface{} {
	switch list := v.(type) {
	case []interface{}:
		return list
	case []string:
		res := make([]interface{}, len(list))
		for i := range list {
			res[i] = list[i]
		}
		return res
	}
	return []interface{}{v}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func isNumber(v interface{}) bool {
	if _, isString := v.(string); isString {
		return false
	}
	_, ok := toFloat(v)
	return ok
}

// looseEqual compares numerically when both sides look like numbers, and by
// their string form otherwise.
func looseEqual(a, b interface{}) bool {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		return fa == fb
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// strictEqual requires both sides to be of the same kind (number, string,
// bool) and equal.
func strictEqual(a, b interface{}) bool {
	if isNumber(a) && isNumber(b) {
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		return fa == fb
	}
	if isNumber(a) || isNumber(b) {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// Qualifier is one qualifier type/value pair within a qualifier set.
type Qualifier struct {
	TypeID string `json:"qualifier_type_id"`
	Value  string `json:"qualifier_value"`
}

// QualifierConstraint is a set of qualifiers that must all hold for a record.
type QualifierConstraint struct {
	QualifierSet []Qualifier `json:"qualifier_set"`
}

func (qc QualifierConstraint) validate(owner string) error {
	seen := make(map[string]struct{}, len(qc.QualifierSet))
	for _, q := range qc.QualifierSet {
		if q.TypeID == "" {
			return invalidf(MalformedConstraint, "%v: qualifier is missing 'qualifier_type_id'", owner)
		}
		if q.Value == "" {
			return invalidf(MalformedConstraint, "%v: qualifier %v is missing 'qualifier_value'", owner, q.TypeID)
		}
		if _, dup := seen[q.TypeID]; dup {
			return invalidf(MalformedConstraint, "%v: qualifier set has more than one %v", owner, q.TypeID)
		}
		seen[q.TypeID] = struct{}{}
	}
	return nil
}

// String returns the qualifiers as sorted "type=value" pairs separated by
// commas.
func (qc QualifierConstraint) String() string {
	pairs := make([]string, len(qc.QualifierSet))
	for i, q := range qc.QualifierSet {
		pairs[i] = q.TypeID + "=" + q.Value
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}
