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

// LinspaceName is the name of the evenly spaced float constructor.
const LinspaceName = "linspace"

func init() {
	Register(LinspaceName, func(args []interface{}) (interfaces.Generator, error) {
		if len(args) != 3 {
			return nil, fmt.Errorf("%s takes three args, got %d", LinspaceName, len(args))
		}
		start, ok := expr.ToFloat(args[0])
		if !ok {
			return nil, fmt.Errorf("start of %s must be a number, got %T", LinspaceName, args[0])
		}
		stop, ok := expr.ToFloat(args[1])
		if !ok {
			return nil, fmt.Errorf("stop of %s must be a number, got %T", LinspaceName, args[1])
		}
		num, ok := expr.ToInt(args[2])
		if !ok {
			return nil, fmt.Errorf("num of %s must be an integer, got %T", LinspaceName, args[2])
		}
		return NewLinspace(start, stop, num)
	})
}

// Linspace steps through Num evenly spaced floats from Start to Stop, both
// included.
type Linspace struct {
	Start float64
	Stop  float64
	Num   int64

	index int64
}

// NewLinspace returns a linspace positioned at its start.
func NewLinspace(start, stop float64, num int64) (*Linspace, error) {
	if num < 1 {
		return nil, interfaces.ErrEmptyGenerator
	}
	return &Linspace{
		Start: start,
		Stop:  stop,
		Num:   num,
	}, nil
}

// Len returns the number of settings.
func (obj *Linspace) Len() int {
	return int(obj.Num)
}

// Advance moves to the next float.
func (obj *Linspace) Advance() bool {
	if obj.index+1 >= obj.Num {
		return false
	}
	obj.index++
	return true
}

// Reset moves back to the start.
func (obj *Linspace) Reset() {
	obj.index = 0
}

// Current returns the current float. The last setting is exactly Stop.
func (obj *Linspace) Current() interface{} {
	if obj.Num == 1 {
		return obj.Start
	}
	if obj.index == obj.Num-1 {
		return obj.Stop
	}
	step := (obj.Stop - obj.Start) / float64(obj.Num-1)
	return obj.Start + float64(obj.index)*step
}

// Children returns nil since every setting is a scalar.
func (obj *Linspace) Children() []interface{} {
	return nil
}

// Copy returns a copy at the same setting.
func (obj *Linspace) Copy(deep func(interface{}) interface{}) interfaces.Generator {
	c := *obj
	return &c
}
