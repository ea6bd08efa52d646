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

// Package generators contains the choice point variants which can be embedded
// in a template document, and a registry of their constructors.
package generators

import (
	"fmt"
	"sort"

	"github.com/purpleidea/genson/lang/interfaces"
)

// Constructor builds a generator from literal args.
type Constructor func(args []interface{}) (interfaces.Generator, error)

// registeredGenerators is a global map of all generator constructors which can
// be used by name. You should never touch this map directly. Use Register.
var registeredGenerators = make(map[string]Constructor) // must initialize

// Register makes a generator constructor available by name. It is commonly
// called in an init() method at program startup. There is no matching
// Unregister function.
func Register(name string, fn Constructor) {
	if _, exists := registeredGenerators[name]; exists {
		panic(fmt.Sprintf("a generator named %s is already registered", name))
	}
	registeredGenerators[name] = fn
}

// Lookup returns the constructor of a generator.
func Lookup(name string) (Constructor, bool) {
	fn, exists := registeredGenerators[name]
	return fn, exists
}

// Names returns the sorted list of registered generators.
func Names() []string {
	names := []string{}
	for name := range registeredGenerators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
