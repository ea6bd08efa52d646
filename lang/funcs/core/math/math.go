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

// Package coremath contains the deterministic numeric functions.
package coremath

import (
	"fmt"
	"math"

	"github.com/purpleidea/genson/lang/funcs"
)

func init() {
	unary := map[string]func(float64) float64{
		"sin":   math.Sin,
		"cos":   math.Cos,
		"tan":   math.Tan,
		"exp":   math.Exp,
		"sqrt":  math.Sqrt,
		"floor": math.Floor,
		"ceil":  math.Ceil,
		"round": math.Round,
	}
	for name, fn := range unary {
		funcs.Register(name, Unary(fn))
	}
	funcs.Register("log", Log)
	funcs.Register("pow", Pow)
	funcs.Register("abs", Abs)
	funcs.Register("neg", Neg)
	funcs.Register("min", Min)
	funcs.Register("max", Max)
	funcs.Register("sub", Sub)
	funcs.Register("mul", Mul)
	funcs.Register("div", Div)
	funcs.Register("mod", Mod)
}

// check refuses results which aren't real numbers.
func check(z float64) (interface{}, error) {
	if math.IsNaN(z) {
		return nil, fmt.Errorf("result is not a number")
	}
	if math.IsInf(z, 1) {
		return nil, fmt.Errorf("result is positive infinity")
	}
	if math.IsInf(z, -1) {
		return nil, fmt.Errorf("result is negative infinity")
	}
	return z, nil
}

// Unary builds a function of one float.
func Unary(fn func(float64) float64) func([]interface{}, map[string]interface{}) (interface{}, error) {
	return func(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
		if err := funcs.Arity(args, 1, 1); err != nil {
			return nil, err
		}
		x, err := funcs.Float(args, 0)
		if err != nil {
			return nil, err
		}
		return check(fn(x))
	}
}

// Log returns the natural logarithm of x, or the logarithm in the given base
// if a second arg is passed.
func Log(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	if err := funcs.Arity(args, 1, 2); err != nil {
		return nil, err
	}
	xs, err := funcs.Floats(args)
	if err != nil {
		return nil, err
	}
	if len(xs) == 1 {
		return check(math.Log(xs[0]))
	}
	return check(math.Log(xs[0]) / math.Log(xs[1]))
}

// Pow returns x ^ y, the base-x exponential of y.
func Pow(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	if err := funcs.Arity(args, 2, 2); err != nil {
		return nil, err
	}
	xs, err := funcs.Floats(args)
	if err != nil {
		return nil, err
	}
	return check(math.Pow(xs[0], xs[1]))
}

// Abs returns the absolute value. Integers stay integers.
func Abs(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	if err := funcs.Arity(args, 1, 1); err != nil {
		return nil, err
	}
	if funcs.AllInts(args) {
		i, _ := funcs.Int(args, 0)
		if i < 0 {
			return -i, nil
		}
		return i, nil
	}
	x, err := funcs.Float(args, 0)
	if err != nil {
		return nil, err
	}
	return math.Abs(x), nil
}

// Neg returns the negation. Integers stay integers.
func Neg(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	if err := funcs.Arity(args, 1, 1); err != nil {
		return nil, err
	}
	if funcs.AllInts(args) {
		i, _ := funcs.Int(args, 0)
		return -i, nil
	}
	x, err := funcs.Float(args, 0)
	if err != nil {
		return nil, err
	}
	return -x, nil
}

// fold applies an operator across all of the args, left to right. The integer
// version is used if every arg is an integer.
func fold(args []interface{}, i func(a, b int64) (int64, error), f func(a, b float64) float64) (interface{}, error) {
	if err := funcs.Arity(args, 1, -1); err != nil {
		return nil, err
	}
	if funcs.AllInts(args) && i != nil {
		acc, _ := funcs.Int(args, 0)
		for j := 1; j < len(args); j++ {
			x, _ := funcs.Int(args, j)
			var err error
			if acc, err = i(acc, x); err != nil {
				return nil, err
			}
		}
		return acc, nil
	}
	xs, err := funcs.Floats(args)
	if err != nil {
		return nil, err
	}
	acc := xs[0]
	for _, x := range xs[1:] {
		acc = f(acc, x)
	}
	return check(acc)
}

// Min returns the smallest arg, or the smallest element of a single list arg.
func Min(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	return fold(spread(args), func(a, b int64) (int64, error) { return min(a, b), nil }, math.Min)
}

// Max returns the largest arg, or the largest element of a single list arg.
func Max(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	return fold(spread(args), func(a, b int64) (int64, error) { return max(a, b), nil }, math.Max)
}

// Sub subtracts every following arg from the first.
func Sub(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	if err := funcs.Arity(args, 2, -1); err != nil {
		return nil, err
	}
	return fold(args, func(a, b int64) (int64, error) { return a - b, nil }, func(a, b float64) float64 { return a - b })
}

// Mul multiplies all of the args.
func Mul(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	if err := funcs.Arity(args, 2, -1); err != nil {
		return nil, err
	}
	return fold(args, func(a, b int64) (int64, error) { return a * b, nil }, func(a, b float64) float64 { return a * b })
}

// Div divides the first arg by the second. The result is always a float.
func Div(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	if err := funcs.Arity(args, 2, 2); err != nil {
		return nil, err
	}
	xs, err := funcs.Floats(args)
	if err != nil {
		return nil, err
	}
	if xs[1] == 0 {
		return nil, fmt.Errorf("division by zero")
	}
	return check(xs[0] / xs[1])
}

// Mod returns the remainder of dividing the first arg by the second. The sign
// of the result follows the divisor.
func Mod(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	if err := funcs.Arity(args, 2, 2); err != nil {
		return nil, err
	}
	i := func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		m := a % b
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return m, nil
	}
	f := func(a, b float64) float64 {
		m := math.Mod(a, b)
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return m
	}
	return fold(args, i, f)
}

// spread unwraps a single list arg.
func spread(args []interface{}) []interface{} {
	if len(args) == 1 {
		if l, ok := args[0].([]interface{}); ok {
			return l
		}
	}
	return args
}
