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

// Package dump prints documents. Templates print in the genson notation, so
// that the output can be read back in by the parser, and resolved documents
// can also be printed as json or yaml.
package dump

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/purpleidea/genson/lang/document"
	"github.com/purpleidea/genson/lang/expr"
	"github.com/purpleidea/genson/lang/generators"
	"github.com/purpleidea/genson/lang/interfaces"
	"github.com/purpleidea/genson/lang/parser"
	"github.com/purpleidea/genson/util/errwrap"

	"gopkg.in/yaml.v2"
)

// Indent is the indentation of one level of a pretty printed document.
const Indent = "  "

// Template prints a template document in the genson notation. Expressions
// print with every operator parenthesized. Nodes which are shared inside of an
// expression graph print once per use, so the parsed output does not share
// them anymore.
func Template(v interface{}, pretty bool) (string, error) {
	obj := &printer{
		pretty: pretty,
	}
	if err := obj.value(v, 0); err != nil {
		return "", err
	}
	return obj.b.String(), nil
}

// JSON prints a resolved document as json. Map keys keep their order.
func JSON(v interface{}, pretty bool) (string, error) {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", Indent)
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return "", errwrap.Wrapf(err, "can't encode json")
	}
	return string(b), nil
}

// YAML prints a resolved document as yaml. Map keys keep their order.
func YAML(v interface{}) (string, error) {
	b, err := yaml.Marshal(v)
	if err != nil {
		return "", errwrap.Wrapf(err, "can't encode yaml")
	}
	return string(b), nil
}

type printer struct {
	pretty bool
	b      strings.Builder
}

func (obj *printer) write(s ...string) {
	for _, x := range s {
		obj.b.WriteString(x)
	}
}

// newline starts a new line at the given depth when pretty printing.
func (obj *printer) newline(depth int) {
	if !obj.pretty {
		return
	}
	obj.write("\n", strings.Repeat(Indent, depth))
}

// sep separates two items of a container.
func (obj *printer) sep(depth int) {
	obj.write(",")
	if !obj.pretty {
		obj.write(" ")
	}
	obj.newline(depth)
}

func (obj *printer) value(v interface{}, depth int) error {
	switch x := v.(type) {
	case *document.Map:
		return obj.entries(x.Entries, depth)

	case map[string]interface{}:
		keys := []string{}
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := []*document.Entry{}
		for _, k := range keys {
			entries = append(entries, &document.Entry{Keys: []string{k}, Value: x[k]})
		}
		return obj.entries(entries, depth)

	case []interface{}:
		if len(x) == 0 {
			obj.write("[]")
			return nil
		}
		obj.write("[")
		obj.newline(depth + 1)
		for i, val := range x {
			if i > 0 {
				obj.sep(depth + 1)
			}
			if err := obj.value(val, depth+1); err != nil {
				return err
			}
		}
		obj.newline(depth)
		obj.write("]")
		return nil

	case *generators.Choice:
		obj.write("<")
		for i, val := range x.Options {
			if i > 0 {
				obj.write(", ")
			}
			if err := obj.value(val, depth); err != nil {
				return err
			}
		}
		obj.write(">")
		return nil

	case *generators.Range:
		obj.write(fmt.Sprintf("%s(%d, %d, %d)", generators.RangeName, x.Start, x.Stop, x.Step))
		return nil

	case *generators.Linspace:
		start, err := float(x.Start)
		if err != nil {
			return err
		}
		stop, err := float(x.Stop)
		if err != nil {
			return err
		}
		obj.write(fmt.Sprintf("%s(%s, %s, %d)", generators.LinspaceName, start, stop, x.Num))
		return nil

	case interfaces.Generator:
		return fmt.Errorf("can't print generator of type %T", v)

	case *expr.Expr:
		s, err := Expr(x.Graph, x.Root)
		if err != nil {
			return err
		}
		obj.write(s)
		return nil
	}

	s, err := scalar(v)
	if err != nil {
		return err
	}
	obj.write(s)
	return nil
}

func (obj *printer) entries(entries []*document.Entry, depth int) error {
	if len(entries) == 0 {
		obj.write("{}")
		return nil
	}
	obj.write("{")
	obj.newline(depth + 1)
	for i, e := range entries {
		if i > 0 {
			obj.sep(depth + 1)
		}
		if e.Tuple() {
			keys := []string{}
			for _, k := range e.Keys {
				keys = append(keys, strconv.Quote(k))
			}
			obj.write("(", strings.Join(keys, ", "), ")")
		} else {
			obj.write(strconv.Quote(e.Keys[0]))
		}
		obj.write(": ")
		if err := obj.value(e.Value, depth+1); err != nil {
			return err
		}
	}
	obj.newline(depth)
	obj.write("}")
	return nil
}

// scalar prints a leaf value.
func scalar(v interface{}) (string, error) {
	switch x := v.(type) {
	case nil:
		return parser.KeywordNull, nil
	case bool:
		if x {
			return parser.KeywordTrue, nil
		}
		return parser.KeywordFalse, nil
	case string:
		return strconv.Quote(x), nil
	}
	if expr.IsInt(v) {
		i, _ := expr.ToInt(v)
		return strconv.FormatInt(i, 10), nil
	}
	if f, ok := expr.ToFloat(v); ok {
		return float(f)
	}
	return "", fmt.Errorf("can't print value of type %T", v)
}

// float prints a float so that it lexes as a float again.
func float(f float64) (string, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "", fmt.Errorf("can't print float: %v", f)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s, nil
}

// infix holds the operators which print between their operands.
var infix = map[string]string{
	expr.NameAdd:       "+",
	parser.SubFuncName: "-",
	parser.MulFuncName: "*",
	parser.DivFuncName: "/",
}

// Expr prints the expression below id in the genson notation.
func Expr(g *expr.Graph, id expr.ID) (string, error) {
	node := g.Node(id)
	if node == nil {
		return "", expr.ErrInvalidID
	}
	switch node.Kind {
	case expr.KindLiteral:
		p := &printer{}
		if err := p.value(node.Value, 0); err != nil {
			return "", err
		}
		return p.b.String(), nil

	case expr.KindRef:
		return fmt.Sprintf("%s", node.Value), nil

	case expr.KindList:
		args, err := exprs(g, node.Args)
		if err != nil {
			return "", err
		}
		return "[" + strings.Join(args, ", ") + "]", nil

	case expr.KindDict:
		parts := []string{}
		for _, x := range node.Kwargs {
			s, err := Expr(g, x.ID)
			if err != nil {
				return "", err
			}
			parts = append(parts, strconv.Quote(x.Name)+": "+s)
		}
		return "{" + strings.Join(parts, ", ") + "}", nil

	case expr.KindGetItem:
		args, err := exprs(g, node.Args)
		if err != nil {
			return "", err
		}
		return "(" + args[0] + ")[" + args[1] + "]", nil

	case expr.KindDraw:
		return "", fmt.Errorf("can't print a threaded expression")
	}

	args, err := exprs(g, node.Args)
	if err != nil {
		return "", err
	}
	if op, exists := infix[node.Name]; exists && len(args) == 2 && len(node.Kwargs) == 0 {
		return "(" + args[0] + " " + op + " " + args[1] + ")", nil
	}
	for _, x := range node.Kwargs {
		s, err := Expr(g, x.ID)
		if err != nil {
			return "", err
		}
		args = append(args, x.Name+"="+s)
	}
	return node.Name + "(" + strings.Join(args, ", ") + ")", nil
}

func exprs(g *expr.Graph, ids []expr.ID) ([]string, error) {
	out := []string{}
	for _, id := range ids {
		s, err := Expr(g, id)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
