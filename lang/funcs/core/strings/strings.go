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

// Package corestrings contains the functions which work on strings and other
// containers.
package corestrings

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/purpleidea/genson/lang/expr"
	"github.com/purpleidea/genson/lang/funcs"
)

func init() {
	funcs.Register("str", Str)
	funcs.Register("len", Len)
	funcs.Register("concat", Concat)
}

// Format returns the plain text form of a value. Floats use the shortest
// representation which reads back as the same number.
func Format(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	}
	return fmt.Sprintf("%v", v)
}

// Str converts its arg to a string.
func Str(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	if err := funcs.Arity(args, 1, 1); err != nil {
		return nil, err
	}
	return Format(args[0]), nil
}

// Len returns the length of a string, sequence or mapping.
func Len(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	if err := funcs.Arity(args, 1, 1); err != nil {
		return nil, err
	}
	if m, ok := args[0].(expr.Mapping); ok {
		return int64(len(m.Keys())), nil
	}
	if s, ok := args[0].(string); ok {
		return int64(len([]rune(s))), nil
	}
	if args[0] == nil {
		return nil, fmt.Errorf("null has no length")
	}
	switch rv := reflect.ValueOf(args[0]); rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return int64(rv.Len()), nil
	}
	return nil, fmt.Errorf("%T has no length", args[0])
}

// Concat joins the text form of all of its args.
func Concat(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	if err := funcs.NoKwargs(kwargs); err != nil {
		return nil, err
	}
	b := &strings.Builder{}
	for _, x := range args {
		b.WriteString(Format(x))
	}
	return b.String(), nil
}
