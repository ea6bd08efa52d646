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

package funcs

import (
	"fmt"

	"github.com/purpleidea/genson/lang/expr"
)

// Arity returns an error if the number of args is outside of [min, max]. A
// negative max means there is no upper bound.
func Arity(args []interface{}, min, max int) error {
	if len(args) < min {
		return fmt.Errorf("expected at least %d args, got %d", min, len(args))
	}
	if max >= 0 && len(args) > max {
		return fmt.Errorf("expected at most %d args, got %d", max, len(args))
	}
	return nil
}

// Float returns arg i as a float.
func Float(args []interface{}, i int) (float64, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing arg %d", i)
	}
	x, ok := expr.ToFloat(args[i])
	if !ok {
		return 0, fmt.Errorf("arg %d must be a number, got %T", i, args[i])
	}
	return x, nil
}

// Floats returns every arg as a float.
func Floats(args []interface{}) ([]float64, error) {
	out := []float64{}
	for i := range args {
		x, err := Float(args, i)
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, nil
}

// Int returns arg i as an integer. Floats with a fractional part are refused.
func Int(args []interface{}, i int) (int64, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing arg %d", i)
	}
	x, ok := expr.ToInt(args[i])
	if !ok {
		return 0, fmt.Errorf("arg %d must be an integer, got %T", i, args[i])
	}
	return x, nil
}

// AllInts returns true if every arg is of an integer type.
func AllInts(args []interface{}) bool {
	for _, x := range args {
		if !expr.IsInt(x) {
			return false
		}
	}
	return true
}

// NoKwargs returns an error if any keyword args were passed.
func NoKwargs(kwargs map[string]interface{}) error {
	for k := range kwargs {
		return fmt.Errorf("unexpected keyword arg `%s`", k)
	}
	return nil
}
