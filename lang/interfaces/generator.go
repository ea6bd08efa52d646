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

package interfaces

// Generator is a choice point embedded in a template document. It holds one
// setting at a time and can step through all of them in a fixed order.
type Generator interface {
	// Advance moves to the next setting. It returns false without changing
	// anything if there are no more settings.
	Advance() bool

	// Reset returns to the first setting.
	Reset()

	// Current returns the current setting. The returned value may itself be
	// a template containing further generators or expressions.
	Current() interface{}

	// Children returns every possible setting, in order. It is used to find
	// any generators nested inside of this one. Generators whose settings
	// are all scalars may return nil.
	Children() []interface{}

	// Copy returns an independent copy of this generator which starts at the
	// same setting. Settings are copied with the deep function so that any
	// nested state is not shared.
	Copy(deep func(interface{}) interface{}) Generator
}

// Len is an optional interface that generators can implement when they know
// how many settings they have.
type Len interface {
	Len() int
}
