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

package expr

import (
	"fmt"
	"reflect"
)

// Mapping is an ordered string keyed container which can be coerced into a
// dict node.
type Mapping interface {
	// Keys returns the keys in their natural order.
	Keys() []string

	// Lookup returns the value stored under the key.
	Lookup(key string) (interface{}, bool)
}

// Coerce wraps an arbitrary value into a node of this graph. A handle or an
// expression of this graph is returned unchanged. Sequences become list nodes
// and mappings become dict nodes, each with a known length, and with every
// element coerced in turn. Anything else is wrapped as a literal.
func (obj *Graph) Coerce(v interface{}) (ID, error) {
	switch x := v.(type) {
	case ID:
		if !obj.Valid(x) {
			return 0, ErrInvalidID
		}
		return x, nil

	case *Expr:
		if x.Graph != obj {
			return 0, ErrForeignGraph
		}
		return obj.Coerce(x.Root)

	case Mapping:
		m := make(map[string]ID)
		for _, k := range x.Keys() {
			val, _ := x.Lookup(k)
			id, err := obj.Coerce(val)
			if err != nil {
				return 0, err
			}
			m[k] = id
		}
		return obj.Dict(m)
	}

	if v == nil {
		return obj.Literal(v), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		ids := []ID{}
		for i := 0; i < rv.Len(); i++ {
			id, err := obj.Coerce(rv.Index(i).Interface())
			if err != nil {
				return 0, err
			}
			ids = append(ids, id)
		}
		return obj.List(ids...)

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return 0, fmt.Errorf("can't coerce map with %s keys", rv.Type().Key())
		}
		m := make(map[string]ID)
		iter := rv.MapRange()
		for iter.Next() {
			id, err := obj.Coerce(iter.Value().Interface())
			if err != nil {
				return 0, err
			}
			m[iter.Key().String()] = id
		}
		return obj.Dict(m)
	}

	return obj.Literal(v), nil
}
