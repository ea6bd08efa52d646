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

// Package corerandom contains the stochastic functions. Each one receives the
// random source which was threaded into its call as its first arg, so that a
// draw is a pure function of that source and the remaining args.
package corerandom

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/purpleidea/genson/lang/expr"
	"github.com/purpleidea/genson/lang/funcs"
)

const (
	// DrawsArgName is the keyword arg which asks for a list of draws.
	DrawsArgName = "draws"
)

func init() {
	funcs.RegisterStochastic("uniform", Uniform)
	funcs.RegisterStochastic("log_uniform", LogUniform)
	funcs.RegisterStochastic("quantized_uniform", QuantizedUniform)
	funcs.RegisterStochastic("gaussian", Gaussian)
	funcs.RegisterStochastic("lognormal", Lognormal)
	funcs.RegisterStochastic("randint", Randint)
	funcs.RegisterStochastic("choice", Choice)
}

// params splits off the random source and converts n float params.
func params(args []interface{}, n int) (*rand.Rand, []float64, error) {
	r, rest, err := expr.Rand(args)
	if err != nil {
		return nil, nil, err
	}
	if err := funcs.Arity(rest, n, n); err != nil {
		return nil, nil, err
	}
	xs, err := funcs.Floats(rest)
	if err != nil {
		return nil, nil, err
	}
	return r, xs, nil
}

// repeat calls fn once, or returns a list of results if the draws keyword arg
// is greater than one.
func repeat(kwargs map[string]interface{}, fn func() (interface{}, error)) (interface{}, error) {
	draws := int64(1)
	for k, v := range kwargs {
		if k != DrawsArgName {
			return nil, fmt.Errorf("unexpected keyword arg `%s`", k)
		}
		i, ok := expr.ToInt(v)
		if !ok || i < 1 {
			return nil, fmt.Errorf("arg `%s` must be a positive integer", DrawsArgName)
		}
		draws = i
	}
	if draws == 1 {
		return fn()
	}
	out := []interface{}{}
	for i := int64(0); i < draws; i++ {
		x, err := fn()
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, nil
}

// Uniform returns a float drawn uniformly from [low, high).
func Uniform(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	r, xs, err := params(args, 2)
	if err != nil {
		return nil, err
	}
	low, high := xs[0], xs[1]
	if high < low {
		return nil, fmt.Errorf("high is less than low")
	}
	return repeat(kwargs, func() (interface{}, error) {
		return low + r.Float64()*(high-low), nil
	})
}

// LogUniform returns a float whose logarithm is drawn uniformly from
// [log(low), log(high)).
func LogUniform(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	r, xs, err := params(args, 2)
	if err != nil {
		return nil, err
	}
	low, high := xs[0], xs[1]
	if low <= 0 {
		return nil, fmt.Errorf("low must be positive")
	}
	if high < low {
		return nil, fmt.Errorf("high is less than low")
	}
	a, b := math.Log(low), math.Log(high)
	return repeat(kwargs, func() (interface{}, error) {
		return math.Exp(a + r.Float64()*(b-a)), nil
	})
}

// QuantizedUniform returns a uniform draw from [low, high) rounded to the
// nearest multiple of q.
func QuantizedUniform(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	r, xs, err := params(args, 3)
	if err != nil {
		return nil, err
	}
	low, high, q := xs[0], xs[1], xs[2]
	if high < low {
		return nil, fmt.Errorf("high is less than low")
	}
	if q <= 0 {
		return nil, fmt.Errorf("q must be positive")
	}
	return repeat(kwargs, func() (interface{}, error) {
		x := low + r.Float64()*(high-low)
		return math.Round(x/q) * q, nil
	})
}

// Gaussian returns a float drawn from the normal distribution with mean mu and
// standard deviation sigma.
func Gaussian(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	r, xs, err := params(args, 2)
	if err != nil {
		return nil, err
	}
	mu, sigma := xs[0], xs[1]
	if sigma < 0 {
		return nil, fmt.Errorf("sigma must not be negative")
	}
	return repeat(kwargs, func() (interface{}, error) {
		return mu + r.NormFloat64()*sigma, nil
	})
}

// Lognormal returns exp of a gaussian draw.
func Lognormal(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	r, xs, err := params(args, 2)
	if err != nil {
		return nil, err
	}
	mu, sigma := xs[0], xs[1]
	if sigma < 0 {
		return nil, fmt.Errorf("sigma must not be negative")
	}
	return repeat(kwargs, func() (interface{}, error) {
		return math.Exp(mu + r.NormFloat64()*sigma), nil
	})
}

// Randint returns an integer drawn uniformly from [low, high).
func Randint(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	r, rest, err := expr.Rand(args)
	if err != nil {
		return nil, err
	}
	if err := funcs.Arity(rest, 2, 2); err != nil {
		return nil, err
	}
	low, err := funcs.Int(rest, 0)
	if err != nil {
		return nil, err
	}
	high, err := funcs.Int(rest, 1)
	if err != nil {
		return nil, err
	}
	if high <= low {
		return nil, fmt.Errorf("empty interval [%d, %d)", low, high)
	}
	return repeat(kwargs, func() (interface{}, error) {
		return low + r.Int64N(high-low), nil
	})
}

// Choice returns one of its args, or one element of a single list arg.
func Choice(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	r, rest, err := expr.Rand(args)
	if err != nil {
		return nil, err
	}
	options := rest
	if len(rest) == 1 {
		if l, ok := rest[0].([]interface{}); ok {
			options = l
		}
	}
	if len(options) == 0 {
		return nil, fmt.Errorf("nothing to choose from")
	}
	return repeat(kwargs, func() (interface{}, error) {
		return options[r.IntN(len(options))], nil
	})
}
