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
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kylelemons/godebug/pretty"
)

type testLibrary struct {
	funcs      map[string]Func
	stochastic map[string]bool
}

func (obj *testLibrary) IsStochastic(name string) bool { return obj.stochastic[name] }

func (obj *testLibrary) Lookup(name string) (Func, bool) {
	fn, exists := obj.funcs[name]
	return fn, exists
}

func newTestLibrary() *testLibrary {
	return &testLibrary{
		funcs: map[string]Func{
			"uniform": func(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
				r, rest, err := Rand(args)
				if err != nil {
					return nil, err
				}
				lo, _ := ToFloat(rest[0])
				hi, _ := ToFloat(rest[1])
				return lo + r.Float64()*(hi-lo), nil
			},
			"neg": func(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
				x, ok := ToFloat(args[0])
				if !ok {
					return nil, fmt.Errorf("not a number")
				}
				return -x, nil
			},
			"pair": func(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
				return []interface{}{args[0], args[1]}, nil
			},
		},
		stochastic: map[string]bool{
			"uniform": true,
		},
	}
}

// orderedMap is a minimal Mapping which remembers insertion order.
type orderedMap struct {
	keys   []string
	values map[string]interface{}
}

func (obj *orderedMap) Keys() []string { return obj.keys }

func (obj *orderedMap) Lookup(key string) (interface{}, bool) {
	v, exists := obj.values[key]
	return v, exists
}

func newOrderedMap(kv ...interface{}) *orderedMap {
	m := &orderedMap{values: make(map[string]interface{})}
	for i := 0; i < len(kv); i += 2 {
		k := kv[i].(string)
		m.keys = append(m.keys, k)
		m.values[k] = kv[i+1]
	}
	return m
}

func names(kwargs []NamedArg) []string {
	out := []string{}
	for _, x := range kwargs {
		out = append(out, x.Name)
	}
	return out
}

func TestCoerceIdentity(t *testing.T) {
	g := NewGraph()
	values := []interface{}{
		int64(42),
		"hello",
		[]interface{}{int64(1), int64(2)},
		map[string]interface{}{"a": int64(1)},
		nil,
	}
	for index, v := range values {
		id, err := g.Coerce(v)
		if err != nil {
			t.Errorf("test #%d: coerce failed: %+v", index, err)
			continue
		}
		again, err := g.Coerce(id)
		if err != nil {
			t.Errorf("test #%d: coerce of handle failed: %+v", index, err)
			continue
		}
		if again != id {
			t.Errorf("test #%d: coerce of handle made a new node: %d != %d", index, again, id)
		}
		e := &Expr{Graph: g, Root: id}
		if x, err := g.Coerce(e); err != nil || x != id {
			t.Errorf("test #%d: coerce of expr made a new node: %d != %d", index, x, id)
		}
	}
}

func TestCoerceForeign(t *testing.T) {
	g1, g2 := NewGraph(), NewGraph()
	id := g1.Literal(int64(1))
	if _, err := g2.Coerce(&Expr{Graph: g1, Root: id}); !errors.Is(err, ErrForeignGraph) {
		t.Errorf("expected foreign graph error, got: %+v", err)
	}
	if _, err := g2.Coerce(ID(99)); !errors.Is(err, ErrInvalidID) {
		t.Errorf("expected invalid id error, got: %+v", err)
	}
}

func TestCoerceList(t *testing.T) {
	g := NewGraph()
	id, err := g.Coerce([]interface{}{int64(1), "two", []int{3, 4}})
	if err != nil {
		t.Fatalf("coerce failed: %+v", err)
	}
	node := g.Node(id)
	if node.Kind != KindList || node.Name != NameList {
		t.Errorf("expected a list node, got: %s", node.Name)
	}
	if node.Len != 3 || len(node.Args) != 3 {
		t.Errorf("expected length 3, got: %d", node.Len)
	}
	if inner := g.Node(node.Args[2]); inner.Kind != KindList || inner.Len != 2 {
		t.Errorf("expected nested list of length 2, got: %+v", inner)
	}
	if leaf := g.Node(node.Args[1]); leaf.Kind != KindLiteral || leaf.Value != "two" {
		t.Errorf("expected literal leaf, got: %+v", leaf)
	}
}

func TestCoerceDictCanonical(t *testing.T) {
	g := NewGraph()
	m1 := newOrderedMap("zeta", int64(1), "alpha", int64(2), "mid", int64(3))
	m2 := newOrderedMap("mid", int64(3), "zeta", int64(1), "alpha", int64(2))
	m3 := map[string]interface{}{"mid": int64(3), "alpha": int64(2), "zeta": int64(1)}

	exp := []string{"alpha", "mid", "zeta"}
	for index, m := range []interface{}{m1, m2, m3} {
		id, err := g.Coerce(m)
		if err != nil {
			t.Errorf("test #%d: coerce failed: %+v", index, err)
			continue
		}
		node := g.Node(id)
		if node.Kind != KindDict || node.Len != 3 {
			t.Errorf("test #%d: expected dict of length 3, got: %+v", index, node)
		}
		if diff := pretty.Compare(exp, names(node.Kwargs)); diff != "" {
			t.Errorf("test #%d: kwargs not canonical: (-want +got)\n%s", index, diff)
		}
	}
}

func TestLiteralLen(t *testing.T) {
	g := NewGraph()
	tests := []struct {
		value interface{}
		len   int
	}{
		{int64(5), UnknownLen},
		{"abc", UnknownLen},
		{[]interface{}{1, 2, 3}, 3},
		{[2]int{1, 2}, 2},
		{map[string]int{"a": 1}, 1},
		{nil, UnknownLen},
	}
	for index, tc := range tests {
		id := g.Literal(tc.value)
		if l := g.Node(id).Len; l != tc.len {
			t.Errorf("test #%d: expected len %d, got %d", index, tc.len, l)
		}
	}
}

func TestIndex(t *testing.T) {
	g := NewGraph()
	lit := g.Literal([]interface{}{int64(1), int64(2), int64(3)})

	for i := 0; i < 3; i++ {
		id, err := g.Index(lit, i)
		if err != nil {
			t.Errorf("index %d failed: %+v", i, err)
			continue
		}
		node := g.Node(id)
		if node.Kind != KindGetItem || node.Name != NameGetItem || node.Args[0] != lit {
			t.Errorf("index %d: expected getitem of the literal, got: %+v", i, node)
		}
	}
	if _, err := g.Index(lit, 3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected index error, got: %+v", err)
	}

	call, err := g.Apply("pair", nil, nil)
	if err != nil {
		t.Fatalf("apply failed: %+v", err)
	}
	if _, err := g.Index(call, 100); err != nil {
		t.Errorf("unknown length must not be bounds checked: %+v", err)
	}
}

func TestUnpack(t *testing.T) {
	g := NewGraph()
	lit := g.Literal([]interface{}{"a", "b"})
	ids, err := g.Unpack(lit, 2)
	if err != nil {
		t.Fatalf("unpack failed: %+v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 outputs, got %d", len(ids))
	}
	if _, err := g.Unpack(lit, 3); err == nil {
		t.Errorf("expected unpack of too many targets to fail")
	}
}

func TestAdd(t *testing.T) {
	g := NewGraph()
	a := g.Literal(int64(1))
	id, err := g.Add(a, int64(2))
	if err != nil {
		t.Fatalf("add failed: %+v", err)
	}
	node := g.Node(id)
	if node.Kind != KindAdd || node.Name != NameAdd {
		t.Errorf("expected add node, got: %s", node.Name)
	}
	if len(node.Args) != 2 || node.Args[0] != a {
		t.Errorf("expected the first operand to be kept by identity: %+v", node.Args)
	}
	if g.Node(node.Args[1]).Kind != KindLiteral {
		t.Errorf("expected the second operand to be coerced to a literal")
	}
}

func TestReplaceInput(t *testing.T) {
	g := NewGraph()
	a, b, c := g.Literal("a"), g.Literal("b"), g.Literal("c")
	call, err := g.Apply("f", []ID{a}, map[string]ID{"k": b})
	if err != nil {
		t.Fatalf("apply failed: %+v", err)
	}
	if err := g.ReplaceInput(call, 1, c); err != nil {
		t.Fatalf("replace failed: %+v", err)
	}
	if got := g.Node(call).Kwargs[0].ID; got != c {
		t.Errorf("expected kwarg slot to point at c, got: %d", got)
	}
	if err := g.ReplaceInput(call, 2, c); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("expected invalid slot, got: %+v", err)
	}
	if g.Node(b).Value != "b" {
		t.Errorf("the old child must be untouched")
	}
}

func TestClone(t *testing.T) {
	g := NewGraph()
	a, b := g.Literal(int64(1)), g.Literal(int64(2))
	call, _ := g.Apply("f", []ID{a}, nil)
	c := g.Clone()
	if err := c.ReplaceInput(call, 0, b); err != nil {
		t.Fatalf("replace failed: %+v", err)
	}
	if g.Node(call).Args[0] != a {
		t.Errorf("rewriting the clone changed the original")
	}
	if c.Node(call).Args[0] != b {
		t.Errorf("rewriting the clone did nothing")
	}
}

func TestMerge(t *testing.T) {
	g1 := NewGraph()
	g1.Literal("padding")
	g2 := NewGraph()
	a := g2.Literal(int64(1))
	call, _ := g2.Apply("f", []ID{a}, nil)

	tr := g1.Merge(g2)
	node := g1.Node(tr(call))
	if node == nil || node.Name != "f" {
		t.Fatalf("merged node missing: %+v", node)
	}
	if node.Args[0] != tr(a) {
		t.Errorf("merged args were not translated: %d != %d", node.Args[0], tr(a))
	}
	if g1.Node(tr(a)).Value != int64(1) {
		t.Errorf("merged literal is wrong")
	}
}

func TestRefString(t *testing.T) {
	tests := []struct {
		ref *Ref
		exp string
	}{
		{&Ref{Path: []interface{}{"a"}}, "this.a"},
		{&Ref{Up: 1, Path: []interface{}{"b", int64(0)}}, "parent.b[0]"},
		{&Ref{Up: 2, Path: []interface{}{"c"}}, "parent.parent.c"},
		{&Ref{Root: true, Path: []interface{}{"x", "y"}}, "root.x.y"},
	}
	for index, tc := range tests {
		if s := tc.ref.String(); s != tc.exp {
			t.Errorf("test #%d: expected %s, got %s", index, tc.exp, s)
		}
	}
}

func TestNewRef(t *testing.T) {
	tests := []struct {
		parts []interface{}
		exp   *Ref
		fail  bool
	}{
		{[]interface{}{"this", "a"}, &Ref{Path: []interface{}{"a"}}, false},
		{[]interface{}{"root"}, &Ref{Root: true, Path: []interface{}{}}, false},
		{[]interface{}{"parent", "parent", "parent", "x", int64(1)}, &Ref{Up: 3, Path: []interface{}{"x", int64(1)}}, false},
		{[]interface{}{"parent", "a", "parent"}, &Ref{Up: 1, Path: []interface{}{"a", "parent"}}, false},
		{[]interface{}{"self", "a"}, nil, true},
		{[]interface{}{}, nil, true},
	}
	for index, tc := range tests {
		ref, err := NewRef(tc.parts)
		if tc.fail {
			if err == nil {
				t.Errorf("test #%d: expected error, got: %s", index, ref)
			}
			continue
		}
		if err != nil {
			t.Errorf("test #%d: unexpected error: %+v", index, err)
			continue
		}
		if diff := pretty.Compare(tc.exp, ref); diff != "" {
			t.Errorf("test #%d: ref differs: (-want +got)\n%s", index, diff)
		}
	}
}

func TestFormat(t *testing.T) {
	g := NewGraph()
	if s := g.Format(g.Literal(5)); s != "Literal{5}\n" {
		t.Errorf("unexpected literal format: %q", s)
	}
	x, _ := g.Add(int64(1), int64(2))
	exp := "add\n Literal{1}\n Literal{2}\n"
	if s := g.Format(x); s != exp {
		t.Errorf("unexpected format: %q", s)
	}

	// the same tree in another graph prints the same
	h := NewGraph()
	h.Literal("padding")
	y, _ := h.Add(int64(1), int64(2))
	if g.Format(x) != h.Format(y) {
		t.Errorf("equal trees should print equal")
	}
	z, _ := h.Add(int64(2), int64(1))
	if h.Format(y) == h.Format(z) {
		t.Errorf("different trees should print differently")
	}
}

func TestGraphviz(t *testing.T) {
	g := NewGraph()
	x, _ := g.Add(int64(1), int64(2))
	out, err := g.Graphviz("test", x)
	if err != nil {
		t.Fatalf("graphviz failed: %+v", err)
	}
	for _, s := range []string{`digraph "test" {`, `[label="add"]`, `[label="1"]`, `-> "n2" [label="0"]`} {
		if !strings.Contains(out, s) {
			t.Errorf("output is missing %s:\n%s", s, out)
		}
	}
}
