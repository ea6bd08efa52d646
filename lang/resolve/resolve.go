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

// Package resolve turns a template document snapshot into a concrete document.
// Every generator is replaced by its current setting, and every expression is
// evaluated, with any relative references looked up in the document which is
// being produced.
package resolve

import (
	"fmt"

	"github.com/purpleidea/genson/lang/document"
	"github.com/purpleidea/genson/lang/expr"
	"github.com/purpleidea/genson/lang/interfaces"
	"github.com/purpleidea/genson/lang/interpolate"
	"github.com/purpleidea/genson/util"
	"github.com/purpleidea/genson/util/errwrap"

	hilast "github.com/hashicorp/hil/ast"
)

// Resolver resolves document snapshots. It keeps a cache of the parsed
// interpolated strings it has seen, so it should be reused between steps of
// the same enumeration.
type Resolver struct {
	// Library holds the symbols that expressions may call.
	Library expr.Library

	Debug bool
	Logf  func(format string, v ...interface{})

	interpolated map[string]hilast.Node
}

// Init must be called before Resolve.
func (obj *Resolver) Init() error {
	if obj.Library == nil {
		return fmt.Errorf("the Library is nil")
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {}
	}
	obj.interpolated = make(map[string]hilast.Node)
	return nil
}

// Resolve returns the concrete document for the current settings of doc. The
// template is not modified. Stochastic calls draw from rng in dependency
// order, and the random source which follows the last draw is returned so it
// can be carried into the next step. An already resolved document resolves to
// an equal copy of itself, and leaves rng untouched.
func (obj *Resolver) Resolve(doc interface{}, rng expr.RNG) (interface{}, expr.RNG, error) {
	s := &step{
		Resolver: obj,
		owner:    make(map[expr.ID]*slot),
	}

	root, err := s.substitute(doc, nil)
	if err != nil {
		return nil, rng, err
	}
	s.root = root

	if len(s.slots) == 0 { // nothing to evaluate
		return root, rng, nil
	}
	if obj.Debug {
		obj.Logf("%d pending expressions", len(s.slots))
	}

	final, err := s.build(rng)
	if err != nil {
		return nil, rng, err
	}

	for _, x := range s.slots {
		if err := s.force(x); err != nil {
			return nil, rng, err
		}
	}
	out, err := s.settle(s.root)
	if err != nil {
		return nil, rng, err
	}

	v, err := s.eval.Eval(final)
	if err != nil {
		return nil, rng, errwrap.Wrapf(err, "can't evaluate the final rng")
	}
	next, ok := v.(expr.RNG)
	if !ok {
		return nil, rng, fmt.Errorf("final rng has type %T", v)
	}
	if obj.Debug {
		obj.Logf("rng: %s -> %s", rng, next)
	}
	return out, next, nil
}

// frame is one mapping on the path from the top of the document to a value.
type frame struct {
	m      *document.Map
	parent *frame
}

// slot is an expression waiting to be evaluated. It stands in its position of
// the document being produced until it is replaced by its value.
type slot struct {
	expr  *expr.Expr
	scope *frame

	// tuple is the number of keys of a tuple entry, and index is the key of
	// that entry this slot holds, or -1 if the slot is not destructured.
	tuple int
	index int

	root    expr.ID
	value   interface{}
	done    bool
	forcing bool
}

func (obj *slot) String() string {
	if obj.index < 0 {
		return fmt.Sprintf("slot(%s)", obj.expr.Graph.Format(obj.expr.Root))
	}
	return fmt.Sprintf("slot[%d/%d](%s)", obj.index, obj.tuple, obj.expr.Graph.Format(obj.expr.Root))
}

// step holds the state of a single call to Resolve.
type step struct {
	*Resolver

	root  interface{}
	slots []*slot

	eval *expr.Evaluator

	// owner maps each reference node to the slot whose scope it uses.
	owner map[expr.ID]*slot
}

// substitute rebuilds the value with every generator replaced by its current
// setting and every expression replaced by a pending slot.
func (obj *step) substitute(v interface{}, scope *frame) (interface{}, error) {
	switch x := v.(type) {
	case *document.Map:
		out := &document.Map{}
		f := &frame{m: out, parent: scope}
		for _, e := range x.Entries {
			if err := obj.entry(out, e.Keys, e.Value, f); err != nil {
				return nil, errwrap.Wrapf(err, "key `%s`", e)
			}
		}
		return out, nil

	case map[string]interface{}:
		m := &document.Map{}
		for _, k := range util.StrMapKeys(x) {
			m.Set(k, x[k])
		}
		return obj.substitute(m, scope)

	case []interface{}:
		out := []interface{}{}
		for i, val := range x {
			y, err := obj.substitute(val, scope)
			if err != nil {
				return nil, errwrap.Wrapf(err, "index %d", i)
			}
			out = append(out, y)
		}
		return out, nil

	case interfaces.Generator:
		return obj.substitute(x.Current(), scope)

	case *expr.Expr:
		return obj.pending(x, scope, 0, -1), nil

	case string:
		if !interpolate.Needed(x) {
			return x, nil
		}
		e, err := obj.interpolate(x)
		if err != nil {
			return nil, err
		}
		return obj.pending(e, scope, 0, -1), nil
	}

	if !document.IsLeaf(v) {
		return nil, errwrap.Wrapf(interfaces.ErrInvalidDocument, "value of %T", v)
	}
	return v, nil
}

// entry adds the substituted value of one entry to the map. A tuple entry is
// destructured: a sequence is spread across the keys, an expression is
// destructured once it has a value, and anything else goes to every key.
func (obj *step) entry(out *document.Map, keys []string, value interface{}, scope *frame) error {
	v, err := obj.substitute(value, scope)
	if err != nil {
		return err
	}
	if len(keys) == 1 {
		out.Set(keys[0], v)
		return nil
	}

	switch x := v.(type) {
	case []interface{}:
		if len(x) != len(keys) {
			return errwrap.Wrapf(interfaces.ErrTupleArity, "%d values for %d keys", len(x), len(keys))
		}
		for i, k := range keys {
			out.Set(k, x[i])
		}
		return nil

	case *slot:
		for i, k := range keys {
			out.Set(k, obj.pending(x.expr, scope, len(keys), i))
		}
		// the original slot is replaced by one slot per key
		obj.drop(x)
		return nil
	}

	out.Set(keys[0], v)
	for _, k := range keys[1:] {
		// each key gets its own copy
		y, err := obj.substitute(value, scope)
		if err != nil {
			return err
		}
		out.Set(k, y)
	}
	return nil
}

func (obj *step) pending(e *expr.Expr, scope *frame, tuple, index int) *slot {
	s := &slot{
		expr:  e,
		scope: scope,
		tuple: tuple,
		index: index,
	}
	obj.slots = append(obj.slots, s)
	return s
}

func (obj *step) drop(s *slot) {
	for i, x := range obj.slots {
		if x == s {
			obj.slots = append(obj.slots[:i], obj.slots[i+1:]...)
			return
		}
	}
}

// interpolate returns the expression for a string with ${} interpolations.
// Only the parsed string is cached. Each occurrence is lowered into its own
// graph, so that its references and draws belong to its own position.
func (obj *step) interpolate(str string) (*expr.Expr, error) {
	tree, exists := obj.interpolated[str]
	if !exists {
		var err error
		if tree, err = interpolate.Parse(str, nil); err != nil {
			return nil, err
		}
		obj.interpolated[str] = tree
	}
	g := expr.NewGraph()
	info := &interpolate.Info{
		Debug: obj.Debug,
		Logf: func(format string, v ...interface{}) {
			obj.Logf("interpolate: "+format, v...)
		},
	}
	id, err := interpolate.Lower(g, tree, info)
	if err != nil {
		return nil, err
	}
	return &expr.Expr{Graph: g, Root: id}, nil
}

// build merges the graph of every pending expression into a fresh graph for
// this step, and threads the random source through all of them at once. This
// leaves the template graphs untouched. It returns the node of the final rng.
func (obj *step) build(rng expr.RNG) (expr.ID, error) {
	g := expr.NewGraph()
	merged := make(map[*expr.Graph]func(expr.ID) expr.ID)
	roots := []expr.ID{}
	for _, s := range obj.slots {
		tr, exists := merged[s.expr.Graph]
		if !exists {
			tr = g.Merge(s.expr.Graph)
			merged[s.expr.Graph] = tr
		}
		roots = append(roots, tr(s.expr.Root))
	}

	list, err := g.List(roots...)
	if err != nil {
		return 0, err
	}
	root, final, err := g.ThreadRNG(list, rng, obj.Library)
	if err != nil {
		return 0, errwrap.Wrapf(err, "can't thread rng")
	}
	for i, s := range obj.slots {
		// the threading rewrote the list args in place
		s.root = g.Node(root).Args[i]
	}

	for _, s := range obj.slots {
		order, err := g.Order(s.root)
		if err != nil {
			return 0, err
		}
		for _, id := range order {
			if g.Node(id).Kind != expr.KindRef {
				continue
			}
			if _, exists := obj.owner[id]; !exists {
				obj.owner[id] = s
			}
		}
	}

	obj.eval = &expr.Evaluator{
		Graph:   g,
		Library: obj.Library,
		Ref:     obj.ref,
		Debug:   obj.Debug,
		Logf: func(format string, v ...interface{}) {
			obj.Logf("eval: "+format, v...)
		},
	}
	if err := obj.eval.Init(); err != nil {
		return 0, err
	}
	if obj.Debug {
		obj.Logf("step graph has %d nodes", g.Size())
	}
	return final, nil
}

// force evaluates a slot if it has not been evaluated yet.
func (obj *step) force(s *slot) error {
	if s.done {
		return nil
	}
	if s.forcing {
		return errwrap.Wrapf(interfaces.ErrReferenceCycle, "at %s", s)
	}
	s.forcing = true
	defer func() { s.forcing = false }()

	v, err := obj.eval.Eval(s.root)
	if err != nil {
		return err
	}
	if s.index >= 0 {
		if v, err = destructure(v, s.tuple, s.index); err != nil {
			return err
		}
	}
	s.value = v
	s.done = true
	return nil
}

// destructure picks the value of key index of a tuple entry with n keys.
func destructure(v interface{}, n, index int) (interface{}, error) {
	l, ok := v.([]interface{})
	if !ok {
		return document.Copy(v), nil
	}
	if len(l) != n {
		return nil, errwrap.Wrapf(interfaces.ErrTupleArity, "%d values for %d keys", len(l), n)
	}
	return l[index], nil
}

// settle replaces every slot in the value with its value, forcing the slots as
// needed. Maps and sequences are updated in place.
func (obj *step) settle(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case *slot:
		if err := obj.force(x); err != nil {
			return nil, err
		}
		return x.value, nil

	case *document.Map:
		for _, e := range x.Entries {
			y, err := obj.settle(e.Value)
			if err != nil {
				return nil, err
			}
			e.Value = y
		}
		return x, nil

	case []interface{}:
		for i, val := range x {
			y, err := obj.settle(val)
			if err != nil {
				return nil, err
			}
			x[i] = y
		}
		return x, nil
	}
	return v, nil
}

// ref resolves a reference node of the step graph.
func (obj *step) ref(id expr.ID, ref *expr.Ref) (interface{}, error) {
	s, exists := obj.owner[id]
	if !exists {
		return nil, fmt.Errorf("reference node %d has no owner", id)
	}

	var cur interface{}
	if ref.Root {
		cur = obj.root
	} else {
		f := s.scope
		for i := 0; i < ref.Up && f != nil; i++ {
			f = f.parent
		}
		if f == nil {
			return nil, errwrap.Wrapf(interfaces.ErrReferenceNotFound, "no enclosing mapping")
		}
		cur = f.m
	}

	for _, p := range ref.Path {
		if x, ok := cur.(*slot); ok {
			if err := obj.force(x); err != nil {
				return nil, err
			}
			cur = x.value
		}
		next, err := lookup(cur, p)
		if err != nil {
			return nil, errwrap.Wrapf(err, "path `%v`", p)
		}
		cur = next
	}

	v, err := obj.settle(cur)
	if err != nil {
		return nil, err
	}
	if obj.Debug {
		obj.Logf("ref: %s = %v", ref, v)
	}
	// the value is shared with the output, so give the caller a copy
	return document.Copy(v), nil
}

// lookup returns one step of a reference path.
func lookup(v interface{}, key interface{}) (interface{}, error) {
	switch x := v.(type) {
	case *document.Map:
		k, ok := key.(string)
		if !ok {
			return nil, errwrap.Wrapf(interfaces.ErrReferenceNotFound, "can't index a mapping with %v", key)
		}
		val, exists := x.Lookup(k)
		if !exists {
			return nil, errwrap.Wrapf(interfaces.ErrReferenceNotFound, "no key `%s`", k)
		}
		return val, nil

	case []interface{}:
		i, ok := expr.ToInt(key)
		if !ok {
			return nil, errwrap.Wrapf(interfaces.ErrReferenceNotFound, "can't index a sequence with %v", key)
		}
		if i < 0 {
			i += int64(len(x))
		}
		if i < 0 || i >= int64(len(x)) {
			return nil, errwrap.Wrapf(interfaces.ErrReferenceNotFound, "index %d", i)
		}
		return x[i], nil
	}

	val, err := expr.GetItem(v, key)
	if err != nil {
		return nil, errwrap.Wrapf(interfaces.ErrReferenceNotFound, "%s", err)
	}
	return val, nil
}
