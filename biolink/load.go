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
	"bytes"
	_ "embed" // for the built-in model
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// modelFile is the subset of a Biolink model YAML file that this package
// understands.
type modelFile struct {
	Classes map[string]*element `yaml:"classes"`
	Slots   map[string]*element `yaml:"slots"`
}

type element struct {
	IsA       string   `yaml:"is_a"`
	Mixins    []string `yaml:"mixins"`
	Inverse   string   `yaml:"inverse"`
	Symmetric bool     `yaml:"symmetric"`
}

// Load parses a Biolink model in YAML form. It returns an error if the YAML is
// malformed or if two predicates claim conflicting inverses.
func Load(r io.Reader) (*Model, error) {
	var f modelFile
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("error decoding biolink model: %v", err)
	}
	m := &Model{
		classes:    newHierarchy(),
		predicates: newHierarchy(),
		inverses:   make(map[string]string),
		symmetric:  make(map[string]bool),
	}
	for _, raw := range sortedNames(f.Classes) {
		el := f.Classes[raw]
		parents := []string{ClassName(el.IsA)}
		for _, mixin := range el.Mixins {
			parents = append(parents, ClassName(mixin))
		}
		m.classes.add(ClassName(raw), parents...)
	}
	for _, raw := range sortedNames(f.Slots) {
		el := f.Slots[raw]
		name := SlotName(raw)
		parents := []string{SlotName(el.IsA)}
		for _, mixin := range el.Mixins {
			parents = append(parents, SlotName(mixin))
		}
		m.predicates.add(name, parents...)
		if el.Symmetric {
			m.symmetric[name] = true
		}
		if el.Inverse != "" {
			if err := m.addInverse(name, SlotName(el.Inverse)); err != nil {
				return nil, err
			}
		}
	}
	log.WithFields(log.Fields{
		"classes":    len(m.classes.parents),
		"predicates": len(m.predicates.parents),
		"inverses":   len(m.inverses),
	}).Debug("Loaded biolink model")
	return m, nil
}

// addInverse records that 'a' and 'b' are inverses of each other.
func (m *Model) addInverse(a, b string) error {
	for _, pair := range [][2]string{{a, b}, {b, a}} {
		if existing, ok := m.inverses[pair[0]]; ok && existing != pair[1] {
			return fmt.Errorf("biolink model: predicate %q has conflicting inverses %q and %q",
				pair[0], existing, pair[1])
		}
		m.inverses[pair[0]] = pair[1]
	}
	return nil
}

// LoadFile parses the Biolink model YAML in the given file. Errors include the
// filename.
func LoadFile(filename string) (*Model, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%v: %v", filename, err)
	}
	return m, nil
}

//go:embed model.yaml
var builtinModel []byte

var defaultModel struct {
	once  sync.Once
	model *Model
}

// Default returns the model built into this package. It covers the categories
// and predicates commonly used in queries; deployments that need the full
// model should use LoadFile.
func Default() *Model {
	defaultModel.once.Do(func() {
		m, err := Load(bytes.NewReader(builtinModel))
		if err != nil {
			log.Panicf("Built-in biolink model is invalid: %v", err)
		}
		defaultModel.model = m
	})
	return defaultModel.model
}

func sortedNames(elements map[string]*element) []string {
	names := make([]string, 0, len(elements))
	for name, el := range elements {
		if el == nil {
			elements[name] = new(element)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
