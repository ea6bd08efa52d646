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
	"encoding/json"
	"errors"
	"testing"

	"github.com/purpleidea/genson/lang/expr"
	"github.com/purpleidea/genson/lang/generators"
	"github.com/purpleidea/genson/lang/interfaces"

	"github.com/kylelemons/godebug/pretty"
	"gopkg.in/yaml.v2"
)

func choice(t *testing.T, options ...interface{}) *generators.Choice {
	c, err := generators.NewChoice(options...)
	if err != nil {
		t.Fatalf("choice failed: %+v", err)
	}
	return c
}

func TestMap(t *testing.T) {
	m := NewMap("b", int64(1), "a", int64(2))
	m.SetTuple([]string{"c", "d"}, []interface{}{int64(3), int64(4)})
	m.Set("b", int64(5))

	if diff := pretty.Compare([]string{"b", "a", "c", "d"}, m.Keys()); diff != "" {
		t.Errorf("keys differ: (-want +got)\n%s", diff)
	}
	if v, _ := m.Lookup("b"); v != int64(5) {
		t.Errorf("set did not update in place: %v", v)
	}
	if !m.Has("d") || m.Has("z") {
		t.Errorf("has is wrong")
	}
	if m.Duplicate() != "" {
		t.Errorf("unexpected duplicate")
	}
	if !m.Delete("a") || m.Delete("a") {
		t.Errorf("delete is wrong")
	}
	m.SetTuple([]string{"b", "x"}, nil)
	if d := m.Duplicate(); d != "b" {
		t.Errorf("expected duplicate b, got: %s", d)
	}
}

func TestEncode(t *testing.T) {
	m := NewMap("z", int64(1), "a", NewMap("k", "s", "b", []interface{}{1.5, nil}))
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("json failed: %+v", err)
	}
	if exp := `{"z":1,"a":{"k":"s","b":[1.5,null]}}`; string(out) != exp {
		t.Errorf("expected %s, got %s", exp, out)
	}

	y, err := yaml.Marshal(m)
	if err != nil {
		t.Fatalf("yaml failed: %+v", err)
	}
	if exp := "z: 1\na:\n  k: s\n  b:\n  - 1.5\n  - null\n"; string(y) != exp {
		t.Errorf("expected:\n%s\ngot:\n%s", exp, y)
	}
}

func TestCollectOrder(t *testing.T) {
	a := choice(t, int64(1), int64(2))
	inner := choice(t, "x", "y")
	b := choice(t, NewMap("n", inner), "plain")
	c, _ := generators.NewRange(0, 3, 1)
	doc := NewMap(
		"a", a,
		"nested", NewMap("b", b),
		"list", []interface{}{int64(1), c, "s"},
	)

	for i := 0; i < 2; i++ { // stable across calls
		gens, err := Collect(doc)
		if err != nil {
			t.Fatalf("collect failed: %+v", err)
		}
		exp := []interfaces.Generator{a, b, inner, c}
		if len(gens) != len(exp) {
			t.Fatalf("expected %d generators, got %d", len(exp), len(gens))
		}
		for j := range exp {
			if gens[j] != exp[j] {
				t.Errorf("generator #%d is out of order", j)
			}
		}
	}
}

func TestCollectLeaves(t *testing.T) {
	g := expr.NewGraph()
	doc := []interface{}{
		nil, true, int64(1), 2.5, "s",
		&expr.Expr{Graph: g, Root: g.Literal(int64(1))},
		map[string]interface{}{"k": choice(t, int64(1))},
	}
	gens, err := Collect(doc)
	if err != nil {
		t.Fatalf("collect failed: %+v", err)
	}
	if len(gens) != 1 {
		t.Errorf("expected one generator, got %d", len(gens))
	}
}

func TestCollectInvalid(t *testing.T) {
	type unknown struct{}
	tests := []interface{}{
		int64(4),
		"scalar",
		nil,
		NewMap("a", unknown{}),
		[]interface{}{choice(t, unknown{})},
	}
	for index, doc := range tests {
		_, err := Collect(doc)
		if !errors.Is(err, interfaces.ErrInvalidDocument) {
			t.Errorf("test #%d: expected invalid document, got: %+v", index, err)
		}
	}
	if interfaces.ErrInvalidDocument.Error() != "invalid generator document" {
		t.Errorf("unexpected error text")
	}
}

func TestCopy(t *testing.T) {
	a := choice(t, int64(1), int64(2))
	doc := NewMap("a", a, "l", []interface{}{NewMap("x", int64(1))})
	c := Copy(doc).(*Map)

	ca, _ := c.Lookup("a")
	if ca == a {
		t.Fatalf("generator was not copied")
	}
	ca.(interfaces.Generator).Advance()
	if a.Current() != int64(1) {
		t.Errorf("advancing the copy moved the original")
	}

	l, _ := c.Lookup("l")
	l.([]interface{})[0].(*Map).Set("x", int64(2))
	orig, _ := doc.Lookup("l")
	if v, _ := orig.([]interface{})[0].(*Map).Lookup("x"); v != int64(1) {
		t.Errorf("changing the copy changed the original")
	}
}

func TestPlain(t *testing.T) {
	m := NewMap("a", []interface{}{NewMap("b", int64(1))})
	exp := map[string]interface{}{
		"a": []interface{}{map[string]interface{}{"b": int64(1)}},
	}
	if diff := pretty.Compare(exp, Plain(m)); diff != "" {
		t.Errorf("plain differs: (-want +got)\n%s", diff)
	}
}

func TestExprs(t *testing.T) {
	g := expr.NewGraph()
	a := &expr.Expr{Graph: g, Root: g.Literal(int64(1))}
	b := &expr.Expr{Graph: g, Root: g.Literal(int64(2))}
	c := &expr.Expr{Graph: g, Root: g.Literal(int64(3))}
	doc := NewMap(
		"x", a,
		"y", []interface{}{"s", choice(t, b, int64(4))},
		"z", map[string]interface{}{"q": c},
	)
	got := Exprs(doc)
	if len(got) != 3 || got[0] != a || got[1] != b || got[2] != c {
		t.Errorf("unexpected expressions: %v", got)
	}
}
