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
	"fmt"
	"iter"

	"github.com/purpleidea/genson/lang/document"
	"github.com/purpleidea/genson/lang/expr"
	"github.com/purpleidea/genson/lang/funcs"
	"github.com/purpleidea/genson/lang/interfaces"
	"github.com/purpleidea/genson/lang/resolve"
	"github.com/purpleidea/genson/prometheus"
	"github.com/purpleidea/genson/util"
	"github.com/purpleidea/genson/util/errwrap"

	"github.com/sanity-io/litter"
)

// Enumerator walks the cartesian product of every generator in a template,
// and resolves one document per combination. The first generator changes
// fastest. The template is owned by the enumerator while it runs, since its
// generators are advanced in place.
type Enumerator struct {
	// Template is the document to enumerate.
	Template interface{}

	// Registry holds the symbols that expressions may call. If it is nil,
	// then the default registry is used.
	Registry *funcs.Registry

	// Seed is the start of the random source of every pass.
	Seed int64

	// Prometheus is optional, and counts the resolved documents.
	Prometheus *prometheus.Prometheus

	Debug bool
	Logf  func(format string, v ...interface{})

	stack    []interfaces.Generator
	firstRun bool
	rng      expr.RNG
	resolver *resolve.Resolver
}

// Init collects the generator stack and arms the first pass. The stack is
// fixed from here on.
func (obj *Enumerator) Init() error {
	if obj.Template == nil {
		return fmt.Errorf("the Template is nil")
	}
	if obj.Registry == nil {
		obj.Registry = funcs.Default()
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {}
	}

	stack, err := document.Collect(obj.Template)
	if err != nil {
		return errwrap.Wrapf(err, "could not collect the generators")
	}
	obj.stack = stack
	if obj.Debug {
		obj.Logf("%d generators", len(obj.stack))
		obj.Logf("behold, the template:\n%s", util.Indent(litter.Sdump(obj.Template), "\t"))
	}
	if obj.Prometheus != nil {
		obj.Prometheus.UpdateGenerators(len(obj.stack))
	}

	obj.resolver = &resolve.Resolver{
		Library: obj.Registry,
		Debug:   obj.Debug,
		Logf: func(format string, v ...interface{}) {
			obj.Logf("resolve: "+format, v...)
		},
	}
	if err := obj.resolver.Init(); err != nil {
		return errwrap.Wrapf(err, "could not init the resolver")
	}

	obj.Start()
	return nil
}

// Start rewinds the enumerator: every generator goes back to its first
// setting, and the random source goes back to the seed.
func (obj *Enumerator) Start() {
	obj.firstRun = true
	for _, g := range obj.stack {
		g.Reset()
	}
	obj.rng = expr.NewRNG(obj.Seed)
}

// advance moves the generator stack like an odometer. A generator which can't
// advance is reset, and the carry moves on to the next one. It returns false
// once the last generator has wrapped, and at that point every generator is
// back at its first setting.
func (obj *Enumerator) advance() bool {
	for _, g := range obj.stack {
		if g.Advance() {
			return true
		}
		g.Reset()
	}
	return false
}

// Next returns the next resolved document. When the product is exhausted, it
// returns false, and the enumerator is rearmed so that the next call starts a
// new pass from the beginning.
func (obj *Enumerator) Next() (interface{}, bool, error) {
	if obj.firstRun {
		obj.firstRun = false
	} else if !obj.advance() {
		if obj.Debug {
			obj.Logf("exhausted")
		}
		if obj.Prometheus != nil {
			obj.Prometheus.UpdatePassesTotal()
		}
		obj.Start()
		return nil, false, nil
	}

	doc, rng, err := obj.resolver.Resolve(obj.Template, obj.rng)
	if obj.Prometheus != nil {
		obj.Prometheus.UpdateDocumentsTotal(err != nil)
	}
	if err != nil {
		return nil, false, errwrap.Wrapf(err, "could not resolve")
	}
	obj.rng = rng
	return doc, true, nil
}

// All returns an iterator over one full pass. It always starts from the
// beginning. The iteration stops after the first error.
func (obj *Enumerator) All() iter.Seq2[interface{}, error] {
	return func(yield func(interface{}, error) bool) {
		obj.Start()
		for {
			doc, ok, err := obj.Next()
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok {
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
	}
}

// Collect returns every document of one full pass.
func (obj *Enumerator) Collect() ([]interface{}, error) {
	docs := []interface{}{}
	for doc, err := range obj.All() {
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Len returns the number of documents in one full pass, or -1 if a generator
// doesn't know how many settings it has.
func (obj *Enumerator) Len() int {
	n := 1
	for _, g := range obj.stack {
		x, ok := g.(interfaces.Len)
		if !ok {
			return -1
		}
		n *= x.Len()
	}
	return n
}

// Generators returns the generator stack in advance order.
func (obj *Enumerator) Generators() []interfaces.Generator {
	return obj.stack
}
