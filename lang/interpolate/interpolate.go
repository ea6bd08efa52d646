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

// Package interpolate turns strings which contain ${...} interpolations into
// expressions. It uses the hashicorp hil library and syntax to do so.
package interpolate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/purpleidea/genson/lang/expr"
	"github.com/purpleidea/genson/util/errwrap"

	"github.com/hashicorp/hil"
	hilast "github.com/hashicorp/hil/ast"
)

// ConcatFuncName is the func used to join the parts of an interpolated string.
const ConcatFuncName = "concat"

// Pos represents a position in the code.
type Pos struct {
	Line     int    // line number starting at 1
	Column   int    // column number starting at 1
	Filename string // optional source filename, if known
}

// Info contains some information passed around during interpolation.
type Info struct {
	// Debug represents if we're running in debug mode or not.
	Debug bool

	// Logf is a logger which should be used.
	Logf func(format string, v ...interface{})
}

// Needed returns true if the string contains an interpolation. Plain strings
// are kept as they are.
func Needed(str string) bool {
	return strings.Contains(str, "${")
}

// Str interpolates a string and adds the equivalent expression to the graph.
// A string which is exactly one interpolation produces the value of that
// interpolation. Anything else produces a concatenation of all of the parts.
func Str(g *expr.Graph, str string, pos *Pos, info *Info) (expr.ID, error) {
	tree, err := Parse(str, pos)
	if err != nil {
		return 0, err
	}
	return Lower(g, tree, info)
}

// Parse reads the interpolations of a string into a hil tree. The tree can be
// lowered any number of times, into any number of graphs.
func Parse(str string, pos *Pos) (hilast.Node, error) {
	var line, column int = -1, -1
	var filename string
	if pos != nil {
		line = pos.Line
		column = pos.Column
		filename = pos.Filename
	}
	hilPos := hilast.Pos{
		Line:     line,
		Column:   column,
		Filename: filename,
	}
	// should not error on plain strings
	tree, err := hil.ParseWithPosition(str, hilPos)
	if err != nil {
		return nil, errwrap.Wrapf(err, "can't parse string interpolation: `%s`", str)
	}
	return tree, nil
}

// Lower adds the equivalent expression of a parsed tree to the graph. Every
// call adds new nodes, so two lowerings of one tree never share a node.
func Lower(g *expr.Graph, tree hilast.Node, info *Info) (expr.ID, error) {
	if info == nil {
		info = &Info{}
	}
	if info.Logf == nil {
		info.Logf = func(format string, v ...interface{}) {}
	}
	if info.Debug {
		info.Logf("tree: %+v", tree)
	}

	transformInfo := &Info{
		Debug: info.Debug,
		Logf: func(format string, v ...interface{}) {
			info.Logf("transform: "+format, v...)
		},
	}
	result, err := hilTransform(g, tree, transformInfo)
	if err != nil {
		return 0, errwrap.Wrapf(err, "error running AST map: `%v`", tree)
	}
	if info.Debug {
		info.Logf("transform: %s", strings.TrimSpace(g.Format(result)))
	}
	return result, nil
}

// hilTransform adds the equivalent of the hil AST to the graph.
func hilTransform(g *expr.Graph, root hilast.Node, info *Info) (expr.ID, error) {
	switch node := root.(type) {
	case *hilast.Output: // common root node
		if info.Debug {
			info.Logf("got output type: %+v", node)
		}

		if len(node.Exprs) == 0 {
			return g.Literal(""), nil
		}
		if len(node.Exprs) == 1 {
			return hilTransform(g, node.Exprs[0], info)
		}

		// assumes len > 1
		args, err := hilTransformList(g, node.Exprs, info)
		if err != nil {
			return 0, errwrap.Wrapf(err, "root failed")
		}
		return g.Apply(ConcatFuncName, args, nil)

	case *hilast.Call:
		if info.Debug {
			info.Logf("got function type: %+v", node)
		}
		args, err := hilTransformList(g, node.Args, info)
		if err != nil {
			return 0, errwrap.Wrapf(err, "call failed")
		}
		return g.Apply(node.Func, args, nil)

	case *hilast.Arithmetic:
		if info.Debug {
			info.Logf("got arithmetic type: %+v", node)
		}
		args, err := hilTransformList(g, node.Exprs, info)
		if err != nil {
			return 0, errwrap.Wrapf(err, "arithmetic failed")
		}
		if len(args) == 0 {
			return 0, fmt.Errorf("arithmetic has no operands")
		}
		var name string
		switch node.Op {
		case hilast.ArithmeticOpAdd:
			result := args[0]
			for _, x := range args[1:] {
				if result, err = g.Add(result, x); err != nil {
					return 0, err
				}
			}
			return result, nil
		case hilast.ArithmeticOpSub:
			name = "sub"
		case hilast.ArithmeticOpMul:
			name = "mul"
		case hilast.ArithmeticOpDiv:
			name = "div"
		case hilast.ArithmeticOpMod:
			name = "mod"
		default:
			return 0, fmt.Errorf("unsupported arithmetic operator: %v", node.Op)
		}
		return g.Apply(name, args, nil)

	case *hilast.Index:
		if info.Debug {
			info.Logf("got index type: %+v", node)
		}
		target, err := hilTransform(g, node.Target, info)
		if err != nil {
			return 0, errwrap.Wrapf(err, "index target failed")
		}
		key, err := hilTransform(g, node.Key, info)
		if err != nil {
			return 0, errwrap.Wrapf(err, "index key failed")
		}
		return g.GetItem(target, key)

	case *hilast.LiteralNode: // string, int, etc...
		if info.Debug {
			info.Logf("got literal type: %+v", node)
		}

		switch node.Typex {
		case hilast.TypeBool:
			return g.Literal(node.Value.(bool)), nil

		case hilast.TypeString:
			return g.Literal(node.Value.(string)), nil

		case hilast.TypeInt:
			// node.Value is an int stored as an interface
			return g.Literal(int64(node.Value.(int))), nil

		case hilast.TypeFloat:
			return g.Literal(node.Value.(float64)), nil

		default:
			return 0, fmt.Errorf("unmatched type: %T", node)
		}

	case *hilast.VariableAccess: // variable lookup
		if info.Debug {
			info.Logf("got variable access type: %+v", node)
		}
		ref, err := Ref(node.Name)
		if err != nil {
			return 0, err
		}
		return g.Ref(ref), nil

	default:
		return 0, fmt.Errorf("unmatched type: %+v", node)
	}
}

func hilTransformList(g *expr.Graph, nodes []hilast.Node, info *Info) ([]expr.ID, error) {
	ids := []expr.ID{}
	for _, n := range nodes {
		id, err := hilTransform(g, n, info)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Ref parses a dotted variable name such as root.a.0.b into a reference. Parts
// which are integers become sequence indexes.
func Ref(name string) (*expr.Ref, error) {
	parts := []interface{}{}
	for _, s := range strings.Split(name, ".") {
		if s == "" {
			return nil, fmt.Errorf("empty part in `%s`", name)
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			parts = append(parts, i)
			continue
		}
		parts = append(parts, s)
	}
	ref, err := expr.NewRef(parts)
	return ref, errwrap.Wrapf(err, "bad variable `%s`", name)
}
