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

package lang

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/purpleidea/genson/lang/document"
	"github.com/purpleidea/genson/lang/interfaces"
	"github.com/purpleidea/genson/lang/parser"
	"github.com/purpleidea/genson/prometheus"
	"github.com/purpleidea/genson/util"

	"github.com/davecgh/go-spew/spew"
	"github.com/kylelemons/godebug/pretty"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const simpleCode = `
{
   "test0": 4,
   "test1" : <0,1,2>,
   "test3" : <"a", "b", uniform(0,1)>,
   ("test4", "test5") : (0, 1),
   ("test6", "test7") : 1,
   ("test8","test9") : <("d", "e"), ("f", "g")>
}
`

const complexCode = `
{
   "test0": 4,
   "test1" : <0,1,2>,
   "test2" : { "nested": gaussian(0,1,draws=1) },
   "test3" : <"a", "b", uniform(0,1)>,
   ("test4", "test5") : (0, 1),
   ("test6", "test7") : 1,
   ("test8","test9") : <("d", "e"), ("f", "g")>,
   "testA": {"another_nested" : root.test5,
             "parent_test" : parent.test5},
   "testB": this.test5,
   "testC": this.test2.nested,
   "test_with_underscores": 4,
   "testD": this.test_with_underscores,
   "testE": sin(4),
   "testF": sin(this.testE),
   "testG": 10,
   "testExpr": 2.2*this.testG + (10 / sin(this.testA.another_nested)),
   "testZ": 10
}
`

func plain(docs []interface{}) []interface{} {
	out := []interface{}{}
	for _, x := range docs {
		out = append(out, document.Plain(x))
	}
	return out
}

func TestEnumerate0(t *testing.T) {
	type test struct { // an individual test
		name string
		code string
		exp  []interface{}
	}
	testCases := []test{}

	{
		exp := []interface{}{}
		for _, b := range []int64{10, 20, 30} {
			for _, a := range []int64{1, 2} {
				exp = append(exp, map[string]interface{}{"a": a, "b": b})
			}
		}
		testCases = append(testCases, test{
			name: "odometer",
			code: `{"a": <1, 2>, "b": <10, 20, 30>}`,
			exp:  exp,
		})
	}
	{
		testCases = append(testCases, test{
			name: "no generators",
			code: `{"a": 1, "b": [true, null]}`,
			exp: []interface{}{
				map[string]interface{}{"a": int64(1), "b": []interface{}{true, nil}},
			},
		})
	}
	{
		testCases = append(testCases, test{
			name: "nested generator",
			code: `{"a": <1, {"b": <"x", "y">}>}`,
			exp: []interface{}{
				map[string]interface{}{"a": int64(1)},
				map[string]interface{}{"a": map[string]interface{}{"b": "x"}},
				map[string]interface{}{"a": int64(1)},
				map[string]interface{}{"a": map[string]interface{}{"b": "y"}},
			},
		})
	}
	{
		testCases = append(testCases, test{
			name: "range and tuple",
			code: `{("x", "y"): <(0, 1), (2, 3)>, "r": range(2), "s": this.x + this.r}`,
			exp: []interface{}{
				map[string]interface{}{"x": int64(0), "y": int64(1), "r": int64(0), "s": int64(0)},
				map[string]interface{}{"x": int64(2), "y": int64(3), "r": int64(0), "s": int64(2)},
				map[string]interface{}{"x": int64(0), "y": int64(1), "r": int64(1), "s": int64(1)},
				map[string]interface{}{"x": int64(2), "y": int64(3), "r": int64(1), "s": int64(3)},
			},
		})
	}
	{
		testCases = append(testCases, test{
			name: "sequence",
			code: `[<1, 2>, "x"]`,
			exp: []interface{}{
				[]interface{}{int64(1), "x"},
				[]interface{}{int64(2), "x"},
			},
		})
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
			e, err := Loads(tc.code)
			if err != nil {
				t.Errorf("test #%d: loads failed with: %+v", index, err)
				return
			}
			docs, err := e.Collect()
			if err != nil {
				t.Errorf("test #%d: collect failed with: %+v", index, err)
				return
			}
			if diff := pretty.Compare(tc.exp, plain(docs)); diff != "" {
				t.Errorf("test #%d: documents differ: (-want +got)\n%s", index, diff)
				t.Logf("test #%d: got: %s", index, spew.Sdump(docs))
			}
		})
	}
}

// TestRestart checks that exhaustion rearms the enumerator.
func TestRestart(t *testing.T) {
	e, err := Loads(`{"a": <1, 2, 3>}`)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, ok, err := e.Next()
		require.NoError(t, err)
		assert.True(t, ok, "document %d", i)
	}
	_, ok, err := e.Next()
	require.NoError(t, err)
	assert.False(t, ok, "the pass is exhausted")

	doc, ok, err := e.Next()
	require.NoError(t, err)
	assert.True(t, ok, "a new pass starts")
	assert.Equal(t, map[string]interface{}{"a": int64(1)}, document.Plain(doc))

	// start in the middle of a pass
	e.Start()
	doc, ok, err = e.Next()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]interface{}{"a": int64(1)}, document.Plain(doc))
}

func TestZeroGenerators(t *testing.T) {
	e, err := Loads(`{"a": sin(0)}`)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Len())

	doc, ok, err := e.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"a": 0.0}, document.Plain(doc))

	_, ok, err = e.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepeatedInterpolation(t *testing.T) {
	t.Run("references", func(t *testing.T) {
		e, err := Loads(`{"a": {"z": 1, "s": "${this.z}"}, "b": {"z": 2, "s": "${this.z}"}}`)
		require.NoError(t, err)
		docs, err := e.Collect()
		require.NoError(t, err)
		require.Len(t, docs, 1)
		exp := map[string]interface{}{
			"a": map[string]interface{}{"z": int64(1), "s": int64(1)},
			"b": map[string]interface{}{"z": int64(2), "s": int64(2)},
		}
		if diff := pretty.Compare(document.Plain(docs[0]), exp); diff != "" {
			t.Errorf("each string looks up its own map:\n%s", diff)
		}
	})

	t.Run("draws", func(t *testing.T) {
		e, err := Loads(`{"p": "${uniform(0, 1)}", "q": "${uniform(0, 1)}", "r": uniform(0, 1)}`)
		require.NoError(t, err)
		docs, err := e.Collect()
		require.NoError(t, err)
		require.Len(t, docs, 1)
		m := document.Plain(docs[0]).(map[string]interface{})
		p, q, r := m["p"].(float64), m["q"].(float64), m["r"].(float64)
		assert.NotEqual(t, p, q, "each string draws on its own")
		assert.NotEqual(t, q, r)
		assert.NotEqual(t, p, r)
	})
}

func TestNegativeIndex(t *testing.T) {
	e, err := Loads(`{"l": [1, 2, 3], "x": this.l[-1], "y": root.l[-3]}`)
	require.NoError(t, err)
	docs, err := e.Collect()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	m := document.Plain(docs[0]).(map[string]interface{})
	assert.Equal(t, int64(3), m["x"])
	assert.Equal(t, int64(1), m["y"])

	e, err = Loads(`{"l": [1], "x": this.l[-2]}`)
	require.NoError(t, err)
	_, err = e.Collect()
	assert.Error(t, err, "out of range")
}

func TestSimple(t *testing.T) {
	e, err := Loads(simpleCode)
	require.NoError(t, err)
	assert.Equal(t, 18, e.Len())
	assert.Len(t, e.Generators(), 3)

	docs, err := e.Collect()
	require.NoError(t, err)
	require.Len(t, docs, 18)

	seen := make(map[string]struct{})
	for i, doc := range docs {
		m := document.Plain(doc).(map[string]interface{})
		assert.Equal(t, int64(0), m["test4"], "document %d", i)
		assert.Equal(t, int64(1), m["test5"], "document %d", i)
		assert.Equal(t, int64(1), m["test6"], "document %d", i)
		assert.Equal(t, int64(1), m["test7"], "document %d", i)
		key := fmt.Sprintf("%v/%v/%v", m["test1"], m["test3"], m["test8"])
		seen[key] = struct{}{}
	}
	assert.Len(t, seen, 18, "every document is distinct")

	first := document.Plain(docs[0]).(map[string]interface{})
	assert.Equal(t, "d", first["test8"])
	assert.Equal(t, "e", first["test9"])
	last := document.Plain(docs[17]).(map[string]interface{})
	assert.Equal(t, "f", last["test8"])
	assert.Equal(t, "g", last["test9"])
}

func TestComplex(t *testing.T) {
	e, err := Loads(complexCode)
	require.NoError(t, err)

	docs, err := e.Collect()
	require.NoError(t, err)
	require.Len(t, docs, 18)

	for i, doc := range docs {
		m := document.Plain(doc).(map[string]interface{})
		testA := m["testA"].(map[string]interface{})
		assert.Equal(t, int64(1), testA["another_nested"], "document %d", i)
		assert.Equal(t, int64(1), testA["parent_test"], "document %d", i)
		assert.Equal(t, int64(1), m["testB"], "document %d", i)
		assert.Equal(t, m["test2"].(map[string]interface{})["nested"], m["testC"], "document %d", i)
		assert.Equal(t, int64(4), m["testD"], "document %d", i)
		assert.InDelta(t, math.Sin(4), m["testE"], 1e-12, "document %d", i)
		assert.InDelta(t, math.Sin(math.Sin(4)), m["testF"], 1e-12, "document %d", i)
		assert.InDelta(t, 2.2*10+10/math.Sin(1), m["testExpr"], 1e-9, "document %d", i)
	}
}

func TestDeterminism(t *testing.T) {
	const code = `{"a": <1, 2, 3>, "u": uniform(0, 1), "g": gaussian(0, 1, draws=2)}`
	run := func(seed int64) []interface{} {
		e, err := Loads(code)
		require.NoError(t, err)
		e.Seed = seed
		docs, err := e.Collect()
		require.NoError(t, err)
		return plain(docs)
	}

	a, b := run(42), run(42)
	if diff := pretty.Compare(a, b); diff != "" {
		t.Errorf("same seed differs: (-first +second)\n%s", diff)
	}
	assert.NotEqual(t, a, run(13), "another seed draws other values")

	// draws move on between steps of the same pass
	first := a[0].(map[string]interface{})
	second := a[1].(map[string]interface{})
	assert.NotEqual(t, first["u"], second["u"])

	// every pass starts from the seed again
	e, err := Loads(code)
	require.NoError(t, err)
	e.Seed = 42
	x, err := e.Collect()
	require.NoError(t, err)
	y, err := e.Collect()
	require.NoError(t, err)
	assert.Equal(t, plain(x), plain(y))
}

func TestEnumerateErrors(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		fails error
	}{
		{"missing reference", `{"a": <1, 2>, "b": this.c}`, interfaces.ErrReferenceNotFound},
		{"cycle", `{"a": this.b, "b": this.a}`, interfaces.ErrReferenceCycle},
		{"arity", `{("a", "b"): <(1, 2), (1, 2, 3)>}`, interfaces.ErrTupleArity},
	}
	for index, tc := range tests {
		t.Run(fmt.Sprintf("test #%d (%s)", index, tc.name), func(t *testing.T) {
			e, err := Loads(tc.code)
			require.NoError(t, err)
			_, err = e.Collect()
			if !errors.Is(err, tc.fails) {
				t.Errorf("test #%d: expected error `%s`, got: %+v", index, tc.fails, err)
			}
		})
	}

	// a scalar can't hold generators
	_, err := Loads(`4`)
	assert.ErrorIs(t, err, interfaces.ErrInvalidDocument)
}

func TestMetrics(t *testing.T) {
	prom := &prometheus.Prometheus{}
	require.NoError(t, prom.Init())

	doc, err := parser.LexParseString(`{"a": <1, 2>, "b": <1, 2, 3>}`)
	require.NoError(t, err)
	e := &Enumerator{
		Template:   doc,
		Prometheus: prom,
	}
	require.NoError(t, e.Init())
	for i := 0; i < 2; i++ {
		_, err := e.Collect()
		require.NoError(t, err)
	}

	metrics, err := prom.Gatherer().Gather()
	require.NoError(t, err)
	found := make(map[string]float64)
	for _, mf := range metrics {
		for _, m := range mf.Metric {
			switch {
			case m.Counter != nil:
				found[mf.GetName()] += m.Counter.GetValue()
			case m.Gauge != nil:
				found[mf.GetName()] = m.Gauge.GetValue()
			}
		}
	}
	assert.Equal(t, 12.0, found["genson_documents_total"])
	assert.Equal(t, 2.0, found["genson_passes_total"])
	assert.Equal(t, 2.0, found["genson_generators"])

	count, err := testutil.GatherAndCount(prom.Gatherer(), "genson_documents_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "only the successful label exists")
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/grid.gson", []byte(simpleCode), 0644))
	require.NoError(t, afero.WriteFile(fs, "/grid.hcl", []byte("a = choices(1, 2)\nb = this.a * 10\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/bad.gson", []byte(`{"a": 1,}`), 0644))

	e, err := Load(fs, "/grid.gson")
	require.NoError(t, err)
	assert.Equal(t, 18, e.Len())

	e, err = Load(fs, "/grid.hcl")
	require.NoError(t, err)
	docs, err := e.Collect()
	require.NoError(t, err)
	exp := []interface{}{
		map[string]interface{}{"a": int64(1), "b": int64(10)},
		map[string]interface{}{"a": int64(2), "b": int64(20)},
	}
	if diff := pretty.Compare(exp, plain(docs)); diff != "" {
		t.Errorf("hcl documents differ: (-want +got)\n%s", diff)
	}

	_, err = Load(fs, "/bad.gson")
	assert.ErrorIs(t, err, parser.ErrParseTrailingComma)

	_, err = Load(fs, "/missing.gson")
	assert.Error(t, err)
}

func TestDumps(t *testing.T) {
	e, err := Loads(complexCode)
	require.NoError(t, err)
	e.Seed = 7
	exp, err := e.Collect()
	require.NoError(t, err)

	for _, pretty := range []bool{false, true} {
		str, err := Dumps(e, pretty)
		require.NoError(t, err)

		again, err := Loads(str)
		require.NoError(t, err, "output:\n%s", str)
		again.Seed = 7
		got, err := again.Collect()
		require.NoError(t, err)
		assert.Equal(t, plain(exp), plain(got), "pretty: %t", pretty)
	}
}

func TestProgram(t *testing.T) {
	code := `{"args": "from_args", "kwargs": "from_kwargs", "sum": this.args[0] + this.kwargs.x, "n": 2}`
	tmpl, err := parser.LexParseString(code)
	require.NoError(t, err)
	prog := &Program{Template: tmpl}

	out, err := prog.Call([]interface{}{int64(1), int64(2)}, map[string]interface{}{"x": int64(10)})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"sum": int64(11), "n": int64(2)}, document.Plain(out))
	assert.Equal(t, []string{"sum", "n"}, out.(*document.Map).Keys(), "bound keys are stripped")

	// the template is never modified
	v, _ := tmpl.(*document.Map).Lookup("args")
	assert.Equal(t, interfaces.FromArgs, v)

	out, err = prog.Call([]interface{}{int64(5)}, map[string]interface{}{"x": int64(5)})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"sum": int64(10), "n": int64(2)}, document.Plain(out))
}

func TestProgramErrors(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		args   []interface{}
		kwargs map[string]interface{}
		fails  error
	}{
		{
			name:  "no args slot",
			code:  `{"kwargs": "from_kwargs"}`,
			args:  []interface{}{int64(1)},
			fails: interfaces.ErrProgramArgs,
		},
		{
			name:   "no kwargs slot",
			code:   `{"args": "from_args"}`,
			args:   []interface{}{int64(1)},
			kwargs: map[string]interface{}{"x": int64(1)},
			fails:  interfaces.ErrProgramKwargs,
		},
		{
			name:  "wrong sentinel",
			code:  `{"args": "from_kwargs"}`,
			args:  []interface{}{int64(1)},
			fails: interfaces.ErrProgramArgs,
		},
		{
			name:  "not a map",
			code:  `[1, 2]`,
			args:  []interface{}{int64(1)},
			fails: interfaces.ErrProgramArgs,
		},
		{
			name:  "underdetermined",
			code:  `{"args": "from_args", "a": <1, 2>}`,
			args:  []interface{}{int64(1)},
			fails: interfaces.ErrUnderdetermined,
		},
	}
	names := []string{}
	for index, tc := range tests {
		if util.StrInList(tc.name, names) {
			t.Errorf("test #%d: duplicate sub test name of: %s", index, tc.name)
			continue
		}
		names = append(names, tc.name)
		t.Run(fmt.Sprintf("test #%d (%s)", index, tc.name), func(t *testing.T) {
			tmpl, err := parser.LexParseString(tc.code)
			require.NoError(t, err)
			prog := &Program{Template: tmpl}
			_, err = prog.Call(tc.args, tc.kwargs)
			if !errors.Is(err, tc.fails) {
				t.Errorf("test #%d: expected error `%s`, got: %+v", index, tc.fails, err)
			}
		})
	}
}

// TestProgramNoArgs checks that a call without arguments needs no slots and
// strips nothing.
func TestProgramNoArgs(t *testing.T) {
	tmpl, err := parser.LexParseString(`{"args": "from_args", "a": sqrt(16)}`)
	require.NoError(t, err)
	prog := &Program{Template: tmpl}
	out, err := prog.Call(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"args": "from_args", "a": 4.0}, document.Plain(out))
}

func TestExamples(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewOsFs())
	type test struct { // an individual test
		name  string
		path  string
		count int
		check func(*testing.T, map[string]interface{})
	}
	testCases := []test{
		{
			name:  "sweep",
			path:  "../examples/sweep.gson",
			count: 18,
			check: func(t *testing.T, doc map[string]interface{}) {
				opt := doc["optimizer"].(map[string]interface{})
				assert.Equal(t, fmt.Sprintf("run-%s-%d", opt["name"], doc["layers"]), doc["name"])
			},
		},
		{
			name:  "noise",
			path:  "../examples/noise.gson",
			count: 3,
			check: func(t *testing.T, doc map[string]interface{}) {
				x, y := doc["x"].(float64), doc["y"].(float64)
				assert.InDelta(t, math.Sqrt(x*x+y*y), doc["radius"], 1e-9)
				assert.Contains(t, []interface{}{"low", "mid", "high"}, doc["bucket"])
			},
		},
		{
			name:  "hcl",
			path:  "../examples/grid.hcl",
			count: 4,
			check: func(t *testing.T, doc map[string]interface{}) {
				assert.Equal(t, doc["width"].(int64)*2, doc["height"])
				api := doc["service"].(map[string]interface{})["api"].(map[string]interface{})
				assert.Equal(t, fmt.Sprintf("api-%d", doc["width"]), api["name"])
			},
		},
	}

	for index, tc := range testCases { // run all the tests
		t.Run(fmt.Sprintf("test #%d (%s)", index, tc.name), func(t *testing.T) {
			e, err := Load(fs, tc.path)
			require.NoError(t, err)
			docs, err := e.Collect()
			require.NoError(t, err)
			require.Len(t, docs, tc.count)
			for _, doc := range plain(docs) {
				tc.check(t, doc.(map[string]interface{}))
			}
		})
	}

	t.Run("program", func(t *testing.T) {
		template, err := Parse(fs, "../examples/program.gson")
		require.NoError(t, err)
		prog := &Program{Template: template}
		out, err := prog.Call([]interface{}{int64(6)}, map[string]interface{}{"factor": int64(7)})
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"total": int64(42), "label": "x7"}, document.Plain(out))
	})
}
