// Mgmt
// Copyright (C) 2013-2024+ James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package document contains the nested template document model: ordered maps,
// sequences and scalars, with generators and expressions as leaves.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v2"
)

// Entry is one pair of a map. An entry with more than one key is a tuple keyed
// pair: when resolved, its value is destructured across the keys.
type Entry struct {
	Keys  []string
	Value interface{}
}

// Tuple returns true if the entry has more than one key.
func (obj *Entry) Tuple() bool {
	return len(obj.Keys) > 1
}

// String returns the key, or the tuple of keys.
func (obj *Entry) String() string {
	if !obj.Tuple() {
		return strings.Join(obj.Keys, "")
	}
	return "(" + strings.Join(obj.Keys, ", ") + ")"
}

// Map is an insertion ordered mapping from string keys to values.
type Map struct {
	Entries []*Entry
}

// NewMap builds a map from alternating keys and values.
func NewMap(kv ...interface{}) *Map {
	m := &Map{}
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i].(string), kv[i+1])
	}
	return m
}

// find returns the entry which contains the key.
func (obj *Map) find(key string) *Entry {
	for _, e := range obj.Entries {
		for _, k := range e.Keys {
			if k == key {
				return e
			}
		}
	}
	return nil
}

// Set stores a value under a single key. An existing single key entry is
// updated in place, otherwise a new entry is appended.
func (obj *Map) Set(key string, value interface{}) {
	if e := obj.find(key); e != nil && !e.Tuple() {
		e.Value = value
		return
	}
	obj.Entries = append(obj.Entries, &Entry{Keys: []string{key}, Value: value})
}

// SetTuple appends a tuple keyed entry.
func (obj *Map) SetTuple(keys []string, value interface{}) {
	obj.Entries = append(obj.Entries, &Entry{Keys: append([]string{}, keys...), Value: value})
}

// Lookup returns the value stored under a key. For a tuple keyed entry, this is
// the value of the whole entry.
func (obj *Map) Lookup(key string) (interface{}, bool) {
	e := obj.find(key)
	if e == nil {
		return nil, false
	}
	return e.Value, true
}

// Has returns true if the key exists.
func (obj *Map) Has(key string) bool {
	return obj.find(key) != nil
}

// Delete removes a single key entry. It returns false if there was nothing to
// remove.
func (obj *Map) Delete(key string) bool {
	for i, e := range obj.Entries {
		if len(e.Keys) == 1 && e.Keys[0] == key {
			obj.Entries = append(obj.Entries[:i], obj.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// Keys returns every key in order. The keys of a tuple entry are listed in
// their tuple order.
func (obj *Map) Keys() []string {
	keys := []string{}
	for _, e := range obj.Entries {
		keys = append(keys, e.Keys...)
	}
	return keys
}

// Len returns the number of keys.
func (obj *Map) Len() int {
	return len(obj.Keys())
}

// Duplicate returns the first key which appears in more than one place, or the
// empty string if all keys are unique.
func (obj *Map) Duplicate() string {
	seen := make(map[string]struct{})
	for _, k := range obj.Keys() {
		if _, exists := seen[k]; exists {
			return k
		}
		seen[k] = struct{}{}
	}
	return ""
}

// String returns a compact form which is mostly useful for debugging.
func (obj *Map) String() string {
	parts := []string{}
	for _, e := range obj.Entries {
		parts = append(parts, fmt.Sprintf("%s: %v", e, e.Value))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// MarshalJSON encodes the map as a json object, keeping the key order.
func (obj *Map) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	first := true
	for _, e := range obj.Entries {
		for _, k := range e.Keys {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			key, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(e.Value)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the map as a yaml mapping, keeping the key order.
func (obj *Map) MarshalYAML() (interface{}, error) {
	ms := yaml.MapSlice{}
	for _, e := range obj.Entries {
		for _, k := range e.Keys {
			ms = append(ms, yaml.MapItem{Key: k, Value: e.Value})
		}
	}
	return ms, nil
}

// Plain converts a resolved document into plain go maps and slices. This is
// mostly useful for comparisons in tests.
func Plain(v interface{}) interface{} {
	switch x := v.(type) {
	case *Map:
		m := make(map[string]interface{})
		for _, e := range x.Entries {
			for _, k := range e.Keys {
				m[k] = Plain(e.Value)
			}
		}
		return m
	case map[string]interface{}:
		m := make(map[string]interface{})
		for k, val := range x {
			m[k] = Plain(val)
		}
		return m
	case []interface{}:
		l := []interface{}{}
		for _, val := range x {
			l = append(l, Plain(val))
		}
		return l
	}
	return v
}
