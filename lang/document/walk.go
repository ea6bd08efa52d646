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

package document

import (
	"github.com/purpleidea/genson/lang/expr"
	"github.com/purpleidea/genson/lang/interfaces"
	"github.com/purpleidea/genson/util"
	"github.com/purpleidea/genson/util/errwrap"
)

// Collect returns every generator in the document in the canonical order: map
// values in insertion order, sequence elements in order, and each generator
// before the generators nested inside any of its settings. The top level must
// be a map, a sequence or a generator. The result only depends on the shape
// of the document, so it is the same for every call on the same document.
func Collect(v interface{}) ([]interfaces.Generator, error) {
	switch v.(type) {
	case *Map, []interface{}, map[string]interface{}, interfaces.Generator:
	default:
		return nil, errwrap.Wrapf(interfaces.ErrInvalidDocument, "top level of %T", v)
	}
	gens := []interfaces.Generator{}
	if err := collect(v, &gens); err != nil {
		return nil, err
	}
	return gens, nil
}

func collect(v interface{}, gens *[]interfaces.Generator) error {
	switch x := v.(type) {
	case *Map:
		for _, e := range x.Entries {
			if err := collect(e.Value, gens); err != nil {
				return err
			}
		}
		return nil

	case map[string]interface{}:
		for _, k := range util.StrMapKeys(x) {
			if err := collect(x[k], gens); err != nil {
				return err
			}
		}
		return nil

	case []interface{}:
		for _, val := range x {
			if err := collect(val, gens); err != nil {
				return err
			}
		}
		return nil

	case interfaces.Generator:
		*gens = append(*gens, x)
		for _, val := range x.Children() {
			if err := collect(val, gens); err != nil {
				return err
			}
		}
		return nil
	}

	if !IsLeaf(v) {
		return errwrap.Wrapf(interfaces.ErrInvalidDocument, "value of %T", v)
	}
	return nil
}

// IsLeaf returns true for the values which end the walk: scalars, expressions
// and random sources.
func IsLeaf(v interface{}) bool {
	switch v.(type) {
	case nil, bool, string:
		return true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float32, float64:
		return true
	case *expr.Expr, expr.RNG:
		return true
	}
	return false
}

// Exprs returns every expression in the document, in the same order as Collect
// visits them. The settings of every generator are included.
func Exprs(v interface{}) []*expr.Expr {
	out := []*expr.Expr{}
	var walk func(v interface{})
	walk = func(v interface{}) {
		switch x := v.(type) {
		case *Map:
			for _, e := range x.Entries {
				walk(e.Value)
			}
		case map[string]interface{}:
			for _, k := range util.StrMapKeys(x) {
				walk(x[k])
			}
		case []interface{}:
			for _, val := range x {
				walk(val)
			}
		case interfaces.Generator:
			for _, val := range x.Children() {
				walk(val)
			}
		case *expr.Expr:
			out = append(out, x)
		}
	}
	walk(v)
	return out
}
