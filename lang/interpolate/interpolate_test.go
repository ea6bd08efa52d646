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

package interpolate

import (
	"fmt"
	"testing"

	"github.com/purpleidea/genson/lang/expr"
	"github.com/purpleidea/genson/lang/funcs"
	_ "github.com/purpleidea/genson/lang/funcs/core" // import so the funcs register
	"github.com/purpleidea/genson/util"

	"github.com/davecgh/go-spew/spew"
	"github.com/kylelemons/godebug/pretty"
)

func TestInterpolate0(t *testing.T) {
	type test struct { // an individual test
		name string
		str  string
		fail bool
		exp  interface{}
	}
	testCases := []test{}
	// NOTE: to run an individual test, first run: `go test -v` to list the
	// names, and then run `go test -run <pattern>` with the name(s) to run.

	testCases = append(testCases, test{"plain", "hello", false, "hello"})
	testCases = append(testCases, test{"empty", "", false, ""})
	testCases = append(testCases, test{"ref", "${root.x}", false, int64(5)})
	testCases = append(testCases, test{"concat", "a-${this.name}-b", false, "a-foo-b"})
	testCases = append(testCases, test{"arithmetic", "${1 + 2}", false, int64(3)})
	testCases = append(testCases, test{"mul", "${2 * root.x}", false, int64(10)})
	testCases = append(testCases, test{"call", "${sqrt(16)}", false, 4.0})
	testCases = append(testCases, test{"index", "${parent.list.1}", false, "second"})
	testCases = append(testCases, test{"float concat", "x=${0.5}", false, "x=0.5"})
	testCases = append(testCases, test{"bad root", "${foo.bar}", true, nil})
	testCases = append(testCases, test{"bad syntax", "${", true, nil})

	refs := map[string]interface{}{
		"root.x":         int64(5),
		"this.name":      "foo",
		"parent.list[1]": "second",
	}

	names := []string{}
	for index, tc := range testCases { // run all the tests
		if tc.name == "" {
			t.Errorf("test #%d: not named", index)
			continue
		}
		if util.StrInList(tc.name, names) {
			t.Errorf("test #%d: duplicate sub test name of: %s", index, tc.name)
			continue
		}
		names = append(names, tc.name)
		t.Run(fmt.Sprintf("test #%d (%s)", index, tc.name), func(t *testing.T) {
			g := expr.NewGraph()
			info := &Info{
				Debug: testing.Verbose(), // set via the -test.v flag to `go test`
				Logf: func(format string, v ...interface{}) {
					t.Logf("interpolate: "+format, v...)
				},
			}
			id, err := Str(g, tc.str, nil, info)
			if !tc.fail && err != nil {
				t.Errorf("test #%d: FAIL", index)
				t.Errorf("test #%d: interpolate failed with: %+v", index, err)
				return
			}
			if tc.fail && err == nil {
				t.Errorf("test #%d: FAIL", index)
				t.Errorf("test #%d: interpolate expected error, not nil", index)
				return
			}
			if tc.fail {
				return
			}

			ev := &expr.Evaluator{
				Graph:   g,
				Library: funcs.Default(),
				Ref: func(id expr.ID, ref *expr.Ref) (interface{}, error) {
					v, exists := refs[ref.String()]
					if !exists {
						return nil, fmt.Errorf("unknown ref %s", ref)
					}
					return v, nil
				},
			}
			if err := ev.Init(); err != nil {
				t.Errorf("test #%d: init failed: %+v", index, err)
				return
			}
			out, err := ev.Eval(id)
			if err != nil {
				t.Errorf("test #%d: FAIL", index)
				t.Errorf("test #%d: eval failed with: %+v", index, err)
				t.Logf("test #%d: graph:\n%s", index, g.Format(id))
				return
			}
			if diff := pretty.Compare(tc.exp, out); diff != "" {
				t.Errorf("test #%d: value did not match expected", index)
				t.Logf("test #%d:   actual: \n%s", index, spew.Sdump(out))
				t.Logf("test #%d: expected: \n%s", index, spew.Sdump(tc.exp))
				t.Logf("test #%d: diff:\n%s", index, diff)
			}
		})
	}
}

func TestLowerTwice(t *testing.T) {
	tree, err := Parse("${this.z}-${uniform(0, 1)}", nil)
	if err != nil {
		t.Fatalf("parse failed: %+v", err)
	}
	g := expr.NewGraph()
	a, err := Lower(g, tree, nil)
	if err != nil {
		t.Fatalf("lower failed: %+v", err)
	}
	size := g.Size()
	b, err := Lower(g, tree, nil)
	if err != nil {
		t.Fatalf("lower failed: %+v", err)
	}
	if a == b {
		t.Errorf("each lowering needs its own root")
	}
	if g.Size() != 2*size {
		t.Errorf("each lowering needs its own nodes, got %d after %d", g.Size(), size)
	}
	if g.Format(a) != g.Format(b) {
		t.Errorf("lowerings differ:\n%s\n%s", g.Format(a), g.Format(b))
	}
}

func TestNeeded(t *testing.T) {
	if Needed("plain $ string") {
		t.Errorf("a plain string needs no interpolation")
	}
	if !Needed("a ${b}") {
		t.Errorf("an interpolated string needs interpolation")
	}
}

func TestRef(t *testing.T) {
	tests := []struct {
		name string
		exp  *expr.Ref
		fail bool
	}{
		{"this.a", &expr.Ref{Path: []interface{}{"a"}}, false},
		{"root.a.0.b", &expr.Ref{Root: true, Path: []interface{}{"a", int64(0), "b"}}, false},
		{"parent.parent.z", &expr.Ref{Up: 2, Path: []interface{}{"z"}}, false},
		{"other.a", nil, true},
		{"root..a", nil, true},
	}
	for index, tc := range tests {
		ref, err := Ref(tc.name)
		if tc.fail {
			if err == nil {
				t.Errorf("test #%d: expected error", index)
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
