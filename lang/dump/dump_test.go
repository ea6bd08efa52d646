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

package dump

import (
	"fmt"
	"math"
	"testing"

	"github.com/purpleidea/genson/lang/document"
	"github.com/purpleidea/genson/lang/expr"
	"github.com/purpleidea/genson/lang/parser"
	"github.com/purpleidea/genson/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"scalars", `{"a": 1, "b": -2.5, "c": "x\ty", "d": null, "e": [true, false]}`},
		{"choices", `{"a": <1, 2.5, "x", [1, 2]>}`},
		{"tuple", `{("a", "b"): [1, 2], "c": <[1, 2], [3, 4]>}`},
		{"range", `{"a": range(0, 3, 1), "b": range(10, 0, -2)}`},
		{"linspace", `{"a": linspace(0.0, 1.0, 5), "b": linspace(-1.5, 1e+21, 2)}`},
		{"arithmetic", `{"a": ((2.2 * this.b) + (10 / sin(root.c))), "b": (1 - neg(parent.x))}`},
		{"kwargs", `{"a": gaussian(0, 1, draws=2), "b": max([1, this.c], key={"k": 1})}`},
		{"index", `{"a": (pair(1, 2))[0], "b": this.c[1], "c": parent.parent.d.e}`},
		{"empty", `{"a": {}, "b": []}`},
	}
	names := []string{}
	for index, tc := range tests {
		if util.StrInList(tc.name, names) {
			t.Errorf("test #%d: duplicate sub test name of: %s", index, tc.name)
			continue
		}
		names = append(names, tc.name)
		t.Run(fmt.Sprintf("test #%d (%s)", index, tc.name), func(t *testing.T) {
			doc, err := parser.LexParseString(tc.code)
			require.NoError(t, err)

			out, err := Template(doc, false)
			require.NoError(t, err)
			assert.Equal(t, tc.code, out)

			// the pretty form must parse back to the same document
			pretty, err := Template(doc, true)
			require.NoError(t, err)
			again, err := parser.LexParseString(pretty)
			require.NoError(t, err, "pretty output:\n%s", pretty)
			out2, err := Template(again, false)
			require.NoError(t, err)
			assert.Equal(t, tc.code, out2)
		})
	}
}

func TestTemplatePretty(t *testing.T) {
	m := document.NewMap("a", []interface{}{int64(1), int64(2)}, "b", &document.Map{})
	out, err := Template(m, true)
	require.NoError(t, err)
	exp := "{\n  \"a\": [\n    1,\n    2\n  ],\n  \"b\": {}\n}"
	assert.Equal(t, exp, out)
}

func TestTemplatePlainMap(t *testing.T) {
	m := map[string]interface{}{"b": int64(2), "a": 3.0}
	out, err := Template(m, false)
	require.NoError(t, err)
	assert.Equal(t, `{"a": 3.0, "b": 2}`, out)
}

func TestTemplateErrors(t *testing.T) {
	g := expr.NewGraph()
	rng := g.Literal(expr.NewRNG(42))
	draw, err := g.Draw(rng, "uniform", nil, nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		v    interface{}
	}{
		{"nan", math.NaN()},
		{"inf", math.Inf(1)},
		{"struct", struct{}{}},
		{"draw", &expr.Expr{Graph: g, Root: draw}},
		{"rng", &expr.Expr{Graph: g, Root: rng}},
	}
	for index, tc := range tests {
		t.Run(fmt.Sprintf("test #%d (%s)", index, tc.name), func(t *testing.T) {
			_, err := Template(tc.v, false)
			assert.Error(t, err)
		})
	}
}

func TestJSON(t *testing.T) {
	m := document.NewMap("b", int64(1), "a", []interface{}{1.5, "x"})
	out, err := JSON(m, false)
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":[1.5,"x"]}`, out)

	out, err = JSON(m, true)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": [\n    1.5,\n    \"x\"\n  ]\n}", out)

	tuple := &document.Map{}
	tuple.SetTuple([]string{"x", "y"}, int64(0))
	out, err = JSON(tuple, false)
	require.NoError(t, err)
	assert.Equal(t, `{"x":0,"y":0}`, out)

	_, err = JSON(math.NaN(), false)
	assert.Error(t, err)
}

func TestYAML(t *testing.T) {
	m := document.NewMap("b", int64(1), "a", []interface{}{1.5, "x"}, "c", document.NewMap("d", true))
	out, err := YAML(m)
	require.NoError(t, err)
	assert.Equal(t, "b: 1\na:\n- 1.5\n- x\nc:\n  d: true\n", out)
}
