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
	"fmt"

	"github.com/purpleidea/genson/lang/expr"
	"github.com/purpleidea/genson/lang/interfaces"
)

// RangeName is the name of the integer range constructor.
const RangeName = "range"

func init() {
	Register(RangeName, func(args []interface{}) (interfaces.Generator, error) {
		ints := []int64{}
		for i, x := range args {
			n, ok := expr.ToInt(x)
			if !ok {
				return nil, fmt.Errorf("arg %d of %s must be an integer, got %T", i, RangeName, x)
			}
			ints = append(ints, n)
		}
		switch len(ints) {
		case 1:
			return NewRange(0, ints[0], 1)
		case 2:
			return NewRange(ints[0], ints[1], 1)
		case 3:
			return NewRange(ints[0], ints[1], ints[2])
		}
		return nil, fmt.Errorf("%s takes one to three args, got %d", RangeName, len(args))
	})
}

// Range steps through the integers from Start up to, but not including, Stop.
// A negative Step counts down instead.
type Range struct {
	Start int64
	Stop  int64
	Step  int64

	index int64
}

// NewRange returns a range positioned at its start.
func NewRange(start, stop, step int64) (*Range, error) {
	if step == 0 {
		return nil, fmt.Errorf("range step must not be zero")
	}
	obj := &Range{
		Start: start,
		Stop:  stop,
		Step:  step,
	}
	if obj.Len() == 0 {
		return nil, interfaces.ErrEmptyGenerator
	}
	return obj, nil
}

// Len returns the number of settings.
func (obj *Range) Len() int {
	var n int64
	if obj.Step > 0 && obj.Stop > obj.Start {
		n = (obj.Stop - obj.Start + obj.Step - 1) / obj.Step
	}
	if obj.Step < 0 && obj.Stop < obj.Start {
		n = (obj.Start - obj.Stop - obj.Step - 1) / -obj.Step
	}
	return int(n)
}

// Advance moves to the next integer.
func (obj *Range) Advance() bool {
	if obj.index+1 >= int64(obj.Len()) {
		return false
	}
	obj.index++
	return true
}

// Reset moves back to the start.
func (obj *Range) Reset() {
	obj.index = 0
}

// Current returns the current integer.
func (obj *Range) Current() interface{} {
	return obj.Start + obj.index*obj.Step
}

// Children returns nil since every setting is a scalar.
func (obj *Range) Children() []interface{} {
	return nil
}

// Copy returns a copy at the same setting.
func (obj *Range) Copy(deep func(interface{}) interface{}) interfaces.Generator {
	c := *obj
	return &c
}
