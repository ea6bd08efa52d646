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

package generators

import (
	"github.com/purpleidea/genson/lang/interfaces"
)

// ChoiceName is the name of the choice set constructor.
const ChoiceName = "choices"

func init() {
	Register(ChoiceName, func(args []interface{}) (interfaces.Generator, error) {
		return NewChoice(args...)
	})
}

// Choice is a discrete set of settings. Settings may be any template value,
// including maps and sequences which contain further generators.
type Choice struct {
	Options []interface{}

	index int
}

// NewChoice returns a choice set positioned at its first option.
func NewChoice(options ...interface{}) (*Choice, error) {
	if len(options) == 0 {
		return nil, interfaces.ErrEmptyGenerator
	}
	return &Choice{
		Options: options,
	}, nil
}

// Advance moves to the next option.
func (obj *Choice) Advance() bool {
	if obj.index+1 >= len(obj.Options) {
		return false
	}
	obj.index++
	return true
}

// Reset moves back to the first option.
func (obj *Choice) Reset() {
	obj.index = 0
}

// Current returns the current option.
func (obj *Choice) Current() interface{} {
	return obj.Options[obj.index]
}

// Children returns every option.
func (obj *Choice) Children() []interface{} {
	return obj.Options
}

// Copy returns a deep copy which starts at the same option.
func (obj *Choice) Copy(deep func(interface{}) interface{}) interfaces.Generator {
	options := []interface{}{}
	for _, x := range obj.Options {
		options = append(options, deep(x))
	}
	return &Choice{
		Options: options,
		index:   obj.index,
	}
}

// Len returns the number of options.
func (obj *Choice) Len() int {
	return len(obj.Options)
}
