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

// Package funcs provides the symbol registry which binds function names to
// their implementations and builds call nodes for them.
package funcs

import (
	"fmt"
	"sort"
	"sync"

	"github.com/purpleidea/genson/lang/expr"
	"github.com/purpleidea/genson/util"
	"github.com/purpleidea/genson/util/errwrap"

	"github.com/iancoleman/strcase"
)

const (
	// ErrSymbolExists is returned when defining a name a second time.
	ErrSymbolExists = util.Error("symbol already exists")

	// ErrSymbolName is returned when a name can't be used for a symbol.
	ErrSymbolName = util.Error("invalid symbol name")

	// ErrSymbolNotFound is returned when a name isn't defined.
	ErrSymbolNotFound = util.Error("symbol not found")
)

// defaultRegistry holds every func which registers itself at startup. You
// should never touch this directly. Use Register instead.
var defaultRegistry = New()

// Register takes a func and its name and makes it available for use. It is
// commonly called in the init() method of the func at program startup. There is
// no matching Unregister function.
func Register(name string, fn expr.Func) {
	if err := defaultRegistry.Define(name, fn); err != nil {
		panic(fmt.Sprintf("can't register func %s: %+v", name, err))
	}
}

// RegisterStochastic is like Register, but also marks the func as drawing from
// an implicit random source.
func RegisterStochastic(name string, fn expr.Func) {
	if err := defaultRegistry.DefineStochastic(name, fn); err != nil {
		panic(fmt.Sprintf("can't register func %s: %+v", name, err))
	}
}

// Default returns the registry which contains all of the registered funcs.
func Default() *Registry {
	return defaultRegistry
}

// Registry maps symbol names to implementations, and keeps the set of symbols
// which are implicit stochastic. An entry can't be changed once defined.
type Registry struct {
	mutex      *sync.RWMutex
	funcs      map[string]expr.Func
	stochastic map[string]struct{}
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		mutex:      &sync.RWMutex{},
		funcs:      make(map[string]expr.Func),
		stochastic: make(map[string]struct{}),
	}
}

// Validate returns an error if the name can't be used for a symbol. Names must
// be snake_case and must not shadow a structural symbol.
func Validate(name string) error {
	if name == "" {
		return errwrap.Wrapf(ErrSymbolName, "empty name")
	}
	if strcase.ToSnake(name) != name {
		return errwrap.Wrapf(ErrSymbolName, "name `%s` is not snake_case", name)
	}
	if expr.Structural(name) {
		return errwrap.Wrapf(ErrSymbolName, "name `%s` is reserved", name)
	}
	return nil
}

// Define binds an implementation to a name. It fails if the name exists.
func (obj *Registry) Define(name string, fn expr.Func) error {
	if err := Validate(name); err != nil {
		return err
	}
	if fn == nil {
		return fmt.Errorf("func `%s` is nil", name)
	}
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	if _, exists := obj.funcs[name]; exists {
		return errwrap.Wrapf(ErrSymbolExists, "name `%s`", name)
	}
	obj.funcs[name] = fn
	return nil
}

// DefineStochastic is Define followed by Mark.
func (obj *Registry) DefineStochastic(name string, fn expr.Func) error {
	if err := obj.Define(name, fn); err != nil {
		return err
	}
	return obj.Mark(name)
}

// Mark tags a defined symbol as implicit stochastic. Calls of it will have a
// random source threaded into them before they are evaluated.
func (obj *Registry) Mark(name string) error {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	if _, exists := obj.funcs[name]; !exists {
		return errwrap.Wrapf(ErrSymbolNotFound, "name `%s`", name)
	}
	obj.stochastic[name] = struct{}{}
	return nil
}

// IsStochastic returns true if the symbol was marked.
func (obj *Registry) IsStochastic(name string) bool {
	obj.mutex.RLock()
	defer obj.mutex.RUnlock()
	_, exists := obj.stochastic[name]
	return exists
}

// Lookup returns the implementation of a symbol.
func (obj *Registry) Lookup(name string) (expr.Func, bool) {
	obj.mutex.RLock()
	defer obj.mutex.RUnlock()
	fn, exists := obj.funcs[name]
	return fn, exists
}

// Names returns the sorted list of defined symbols.
func (obj *Registry) Names() []string {
	obj.mutex.RLock()
	defer obj.mutex.RUnlock()
	names := []string{}
	for name := range obj.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Copy returns an independent registry with the same contents. Tests use this
// to extend the default registry without changing it.
func (obj *Registry) Copy() *Registry {
	obj.mutex.RLock()
	defer obj.mutex.RUnlock()
	c := New()
	for name, fn := range obj.funcs {
		c.funcs[name] = fn
	}
	for name := range obj.stochastic {
		c.stochastic[name] = struct{}{}
	}
	return c
}

// Call is the node constructor of a symbol. It coerces every argument into the
// graph and returns a new call node. Nothing is evaluated.
func (obj *Registry) Call(g *expr.Graph, name string, args []interface{}, kwargs map[string]interface{}) (expr.ID, error) {
	if _, exists := obj.Lookup(name); !exists {
		return 0, errwrap.Wrapf(ErrSymbolNotFound, "name `%s`", name)
	}
	ids := []expr.ID{}
	for i, x := range args {
		id, err := g.Coerce(x)
		if err != nil {
			return 0, errwrap.Wrapf(err, "arg %d of `%s`", i, name)
		}
		ids = append(ids, id)
	}
	m := make(map[string]expr.ID)
	for k, x := range kwargs {
		id, err := g.Coerce(x)
		if err != nil {
			return 0, errwrap.Wrapf(err, "arg `%s` of `%s`", k, name)
		}
		m[k] = id
	}
	return g.Apply(name, ids, m)
}

// Constructor returns the node constructor of a symbol bound to a graph, so
// that building an expression reads like calling the function.
func (obj *Registry) Constructor(g *expr.Graph, name string) func(args ...interface{}) (expr.ID, error) {
	return func(args ...interface{}) (expr.ID, error) {
		return obj.Call(g, name, args, nil)
	}
}
