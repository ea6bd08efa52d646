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
	"math"
	"math/rand/v2"
	"reflect"

	"github.com/purpleidea/genson/util"
	"github.com/purpleidea/genson/util/errwrap"
)

const (
	// ErrUnknownSymbol is returned when a call names a symbol which the
	// library does not have.
	ErrUnknownSymbol = util.Error("unknown symbol")

	// ErrUnthreaded is returned when a stochastic call is evaluated before
	// the random source was threaded through its graph.
	ErrUnthreaded = util.Error("stochastic call was not threaded")

	// ErrKeyNotFound is returned when a getitem names a missing key.
	ErrKeyNotFound = util.Error("key not found")
)

// Func is the implementation of a symbol. Implementations of stochastic symbols
// receive a *rand.Rand as their first positional argument.
type Func func(args []interface{}, kwargs map[string]interface{}) (interface{}, error)

// Library is what the evaluator needs to know about symbols.
type Library interface {
	Stochastic

	// Lookup returns the implementation of a symbol.
	Lookup(name string) (Func, bool)
}

// Evaluator computes the values of nodes of a graph. Values are cached, so each
// node is evaluated at most once per evaluator, which is what keeps a shared
// draw from producing two different values.
type Evaluator struct {
	Graph   *Graph
	Library Library

	// Ref resolves a reference node. It may call back into Eval.
	Ref func(id ID, ref *Ref) (interface{}, error)

	Debug bool
	Logf  func(format string, v ...interface{})

	cache map[ID]interface{}
}

// Init must be called before the evaluator is used.
func (obj *Evaluator) Init() error {
	if obj.Graph == nil {
		return fmt.Errorf("the Graph is nil")
	}
	if obj.Library == nil {
		return fmt.Errorf("the Library is nil")
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {}
	}
	obj.cache = make(map[ID]interface{})
	return nil
}

// Eval returns the value of a node. Its inputs are computed first, in the
// dependency order.
func (obj *Evaluator) Eval(root ID) (interface{}, error) {
	if v, exists := obj.cache[root]; exists {
		return v, nil
	}
	order, err := obj.Graph.Order(root)
	if err != nil {
		return nil, err
	}
	for _, id := range order {
		if _, exists := obj.cache[id]; exists {
			continue
		}
		v, err := obj.node(id)
		if err != nil {
			return nil, err
		}
		obj.cache[id] = v
	}
	return obj.cache[root], nil
}

func (obj *Evaluator) node(id ID) (interface{}, error) {
	node := obj.Graph.Node(id)
	args := []interface{}{}
	for _, x := range node.Args {
		args = append(args, obj.cache[x])
	}
	kwargs := make(map[string]interface{})
	for _, x := range node.Kwargs {
		kwargs[x.Name] = obj.cache[x.ID]
	}

	switch node.Kind {
	case KindLiteral:
		return node.Value, nil

	case KindList:
		return args, nil

	case KindDict:
		return kwargs, nil

	case KindGetItem:
		return GetItem(args[0], args[1])

	case KindAdd:
		return Add(args[0], args[1])

	case KindRef:
		ref, ok := node.Value.(*Ref)
		if !ok {
			return nil, fmt.Errorf("node %d has no reference", id)
		}
		if obj.Ref == nil {
			return nil, fmt.Errorf("can't resolve reference `%s`", ref)
		}
		v, err := obj.Ref(id, ref)
		return v, errwrap.Wrapf(err, "can't resolve reference `%s`", ref)

	case KindDraw:
		rng, ok := args[0].(RNG)
		if !ok {
			return nil, fmt.Errorf("draw needs an rng, got %T", args[0])
		}
		name, ok := args[1].(string)
		if !ok {
			return nil, fmt.Errorf("draw needs a symbol name, got %T", args[1])
		}
		fn, exists := obj.Library.Lookup(name)
		if !exists {
			return nil, errwrap.Wrapf(ErrUnknownSymbol, "symbol `%s`", name)
		}
		r := rng.Rand()
		v, err := fn(append([]interface{}{r}, args[2:]...), kwargs)
		if err != nil {
			return nil, errwrap.Wrapf(err, "func `%s` failed", name)
		}
		next := NextRNG(r)
		if obj.Debug {
			obj.Logf("draw: %s(%v) = %v, %s -> %s", name, args[2:], v, rng, next)
		}
		return []interface{}{v, next}, nil

	case KindCall:
		if obj.Library.IsStochastic(node.Name) {
			return nil, errwrap.Wrapf(ErrUnthreaded, "symbol `%s`", node.Name)
		}
		fn, exists := obj.Library.Lookup(node.Name)
		if !exists {
			return nil, errwrap.Wrapf(ErrUnknownSymbol, "symbol `%s`", node.Name)
		}
		v, err := fn(args, kwargs)
		return v, errwrap.Wrapf(err, "func `%s` failed", node.Name)
	}

	return nil, fmt.Errorf("unknown node kind: %s", node.Kind)
}

// GetItem indexes a sequence with an integer or a mapping with a string.
// Negative indexes count from the end of a sequence.
func GetItem(v, key interface{}) (interface{}, error) {
	if m, ok := v.(Mapping); ok {
		k, ok := key.(string)
		if !ok {
			return nil, fmt.Errorf("can't index a mapping with %T", key)
		}
		x, exists := m.Lookup(k)
		if !exists {
			return nil, errwrap.Wrapf(ErrKeyNotFound, "key `%s`", k)
		}
		return x, nil
	}
	if v == nil {
		return nil, fmt.Errorf("can't index null")
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		i, ok := ToInt(key)
		if !ok {
			return nil, fmt.Errorf("can't index a sequence with %T", key)
		}
		if i < 0 {
			i += int64(rv.Len())
		}
		if i < 0 || i >= int64(rv.Len()) {
			return nil, errwrap.Wrapf(ErrIndexOutOfRange, "index %d", i)
		}
		return rv.Index(int(i)).Interface(), nil

	case reflect.Map:
		k, ok := key.(string)
		if !ok || rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("can't index a map with %T", key)
		}
		x := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
		if !x.IsValid() {
			return nil, errwrap.Wrapf(ErrKeyNotFound, "key `%s`", k)
		}
		return x.Interface(), nil
	}

	return nil, fmt.Errorf("can't index %T", v)
}

// Add adds numbers, concatenates strings, and joins sequences. Two integers
// produce an integer, any other pair of numbers produces a float.
func Add(a, b interface{}) (interface{}, error) {
	if x, ok := a.(string); ok {
		if y, ok := b.(string); ok {
			return x + y, nil
		}
	}
	if x, ok := ToInt(a); ok && IsInt(a) {
		if y, ok := ToInt(b); ok && IsInt(b) {
			return x + y, nil
		}
	}
	if x, ok := ToFloat(a); ok {
		if y, ok := ToFloat(b); ok {
			return x + y, nil
		}
	}
	if x, ok := a.([]interface{}); ok {
		if y, ok := b.([]interface{}); ok {
			out := append([]interface{}{}, x...)
			return append(out, y...), nil
		}
	}
	return nil, fmt.Errorf("can't add %T and %T", a, b)
}

// IsInt returns true if the value is of an integer type.
func IsInt(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// ToInt converts an integer, or a float with no fractional part, to int64. It
// reports false for values that int64 can't hold.
func ToInt(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		if uint64(x) <= math.MaxInt64 {
			return int64(x), true
		}
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x), true
		}
	case float32:
		if x >= math.MinInt64 && x < math.MaxInt64 && float32(int64(x)) == x {
			return int64(x), true
		}
	case float64:
		if x >= math.MinInt64 && x < math.MaxInt64 && float64(int64(x)) == x {
			return int64(x), true
		}
	}
	return 0, false
}

// ToFloat converts any number to float64.
func ToFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	if i, ok := ToInt(v); ok && IsInt(v) {
		return float64(i), true
	}
	return 0, false
}

// Rand returns the random source passed to a stochastic implementation along
// with the rest of its positional args.
func Rand(args []interface{}) (*rand.Rand, []interface{}, error) {
	if len(args) == 0 {
		return nil, nil, fmt.Errorf("missing random source")
	}
	r, ok := args[0].(*rand.Rand)
	if !ok {
		return nil, nil, fmt.Errorf("expected a random source, got %T", args[0])
	}
	return r, args[1:], nil
}
