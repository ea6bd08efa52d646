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

// Package hcl is a frontend which builds template documents from HCL source.
// Attributes and blocks become map entries in source order, and the native
// syntax of HCL expressions maps onto the same expression graph that the genson
// notation uses. HCL has no tuple keys and no keyword args.
package hcl

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/purpleidea/genson/lang/document"
	"github.com/purpleidea/genson/lang/expr"
	"github.com/purpleidea/genson/lang/generators"
	"github.com/purpleidea/genson/lang/interfaces"
	"github.com/purpleidea/genson/lang/interpolate"
	"github.com/purpleidea/genson/util"
	"github.com/purpleidea/genson/util/errwrap"

	hcl2 "github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// FileExtension is the extension of files which should use this frontend.
const FileExtension = ".hcl"

const (
	// ErrUnsupported is returned for HCL syntax that has no template form.
	ErrUnsupported = util.Error("unsupported hcl syntax")

	// ErrDuplicateKey is returned when an attribute, block or object key is
	// used twice in the same mapping.
	ErrDuplicateKey = util.Error("duplicate key")
)

// Operator funcs, the same ones the genson notation lowers to.
var binaryFuncs = map[*hclsyntax.Operation]string{
	hclsyntax.OpSubtract: "sub",
	hclsyntax.OpMultiply: "mul",
	hclsyntax.OpDivide:   "div",
	hclsyntax.OpModulo:   "mod",
}

// Parse reads an HCL body and returns the equivalent template document.
func Parse(src []byte, filename string) (*document.Map, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl2.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, errwrap.Wrapf(diags, "can't parse `%s`", filename)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("unexpected body type %T", file.Body)
	}
	obj := &converter{
		graph: expr.NewGraph(),
	}
	return obj.body(body)
}

// converter holds the graph which all of the expressions of a file share.
type converter struct {
	graph *expr.Graph
}

func (obj *converter) errorf(err error, rng hcl2.Range, format string, v ...interface{}) error {
	return errwrap.Wrapf(err, "%s: %s", rng, fmt.Sprintf(format, v...))
}

// item is an attribute or block in source order.
type item struct {
	pos   int
	key   string
	rng   hcl2.Range
	value func() (interface{}, error)
}

func (obj *converter) body(body *hclsyntax.Body) (*document.Map, error) {
	items := []*item{}
	for name, attr := range body.Attributes {
		attr := attr
		items = append(items, &item{
			pos:   attr.SrcRange.Start.Byte,
			key:   name,
			rng:   attr.SrcRange,
			value: func() (interface{}, error) { return obj.value(attr.Expr) },
		})
	}
	for _, block := range body.Blocks {
		block := block
		items = append(items, &item{
			pos:   block.TypeRange.Start.Byte,
			key:   block.Type,
			rng:   block.TypeRange,
			value: func() (interface{}, error) { return obj.block(block) },
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].pos < items[j].pos })

	m := &document.Map{}
	for _, x := range items {
		if m.Has(x.key) {
			return nil, obj.errorf(ErrDuplicateKey, x.rng, "key `%s`", x.key)
		}
		v, err := x.value()
		if err != nil {
			return nil, err
		}
		m.Set(x.key, v)
	}
	return m, nil
}

// block returns the body of a block, nested one mapping deeper per label.
func (obj *converter) block(block *hclsyntax.Block) (interface{}, error) {
	m, err := obj.body(block.Body)
	if err != nil {
		return nil, err
	}
	var v interface{} = m
	for i := len(block.Labels) - 1; i >= 0; i-- {
		v = document.NewMap(block.Labels[i], v)
	}
	return v, nil
}

// value converts an expression into a template value. Literals stay plain and
// everything which needs evaluating becomes an *expr.Expr.
func (obj *converter) value(e hclsyntax.Expression) (interface{}, error) {
	switch x := e.(type) {
	case *hclsyntax.LiteralValueExpr:
		v, err := native(x.Val)
		if err != nil {
			return nil, obj.errorf(err, x.SrcRange, "bad literal")
		}
		return v, nil

	case *hclsyntax.TemplateExpr:
		return obj.template(x)

	case *hclsyntax.TemplateWrapExpr:
		return obj.value(x.Wrapped)

	case *hclsyntax.ParenthesesExpr:
		return obj.value(x.Expression)

	case *hclsyntax.TupleConsExpr:
		out := []interface{}{}
		for _, elem := range x.Exprs {
			v, err := obj.value(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	case *hclsyntax.ObjectConsExpr:
		m := &document.Map{}
		for _, it := range x.Items {
			k, err := obj.key(it.KeyExpr)
			if err != nil {
				return nil, err
			}
			if m.Has(k) {
				return nil, obj.errorf(ErrDuplicateKey, it.KeyExpr.Range(), "key `%s`", k)
			}
			v, err := obj.value(it.ValueExpr)
			if err != nil {
				return nil, err
			}
			m.Set(k, v)
		}
		return m, nil

	case *hclsyntax.ScopeTraversalExpr:
		parts, err := obj.traversal(x.Traversal)
		if err != nil {
			return nil, err
		}
		ref, err := expr.NewRef(parts)
		if err != nil {
			return nil, obj.errorf(err, x.SrcRange, "bad reference")
		}
		return obj.wrap(obj.graph.Ref(ref)), nil

	case *hclsyntax.RelativeTraversalExpr:
		id, err := obj.operand(x.Source)
		if err != nil {
			return nil, err
		}
		parts, err := obj.traversal(x.Traversal)
		if err != nil {
			return nil, err
		}
		for _, p := range parts {
			if id, err = obj.graph.GetItem(id, p); err != nil {
				return nil, err
			}
		}
		return obj.wrap(id), nil

	case *hclsyntax.IndexExpr:
		c, err := obj.operand(x.Collection)
		if err != nil {
			return nil, err
		}
		k, err := obj.operand(x.Key)
		if err != nil {
			return nil, err
		}
		id, err := obj.graph.GetItem(c, k)
		if err != nil {
			return nil, err
		}
		return obj.wrap(id), nil

	case *hclsyntax.FunctionCallExpr:
		return obj.call(x)

	case *hclsyntax.BinaryOpExpr:
		a, err := obj.operand(x.LHS)
		if err != nil {
			return nil, err
		}
		b, err := obj.operand(x.RHS)
		if err != nil {
			return nil, err
		}
		if x.Op == hclsyntax.OpAdd {
			id, err := obj.graph.Add(a, b)
			if err != nil {
				return nil, err
			}
			return obj.wrap(id), nil
		}
		name, exists := binaryFuncs[x.Op]
		if !exists {
			return nil, obj.errorf(ErrUnsupported, x.SrcRange, "operator")
		}
		id, err := obj.graph.Apply(name, []expr.ID{a, b}, nil)
		if err != nil {
			return nil, err
		}
		return obj.wrap(id), nil

	case *hclsyntax.UnaryOpExpr:
		if x.Op != hclsyntax.OpNegate {
			return nil, obj.errorf(ErrUnsupported, x.SrcRange, "operator")
		}
		v, err := obj.value(x.Val)
		if err != nil {
			return nil, err
		}
		switch n := v.(type) { // negative literals stay literals
		case int64:
			return -n, nil
		case float64:
			return -n, nil
		}
		a, err := obj.coerce(v, x.Val.Range())
		if err != nil {
			return nil, err
		}
		id, err := obj.graph.Apply("neg", []expr.ID{a}, nil)
		if err != nil {
			return nil, err
		}
		return obj.wrap(id), nil
	}

	return nil, obj.errorf(ErrUnsupported, e.Range(), "expression of %T", e)
}

func (obj *converter) wrap(id expr.ID) *expr.Expr {
	return &expr.Expr{Graph: obj.graph, Root: id}
}

// operand converts an expression and adds it to the graph.
func (obj *converter) operand(e hclsyntax.Expression) (expr.ID, error) {
	v, err := obj.value(e)
	if err != nil {
		return 0, err
	}
	return obj.coerce(v, e.Range())
}

func (obj *converter) coerce(v interface{}, rng hcl2.Range) (expr.ID, error) {
	gens, err := document.Collect([]interface{}{v})
	if err != nil {
		return 0, obj.errorf(err, rng, "bad operand")
	}
	if len(gens) > 0 {
		return 0, obj.errorf(ErrUnsupported, rng, "generator inside an expression")
	}
	return obj.graph.Coerce(v)
}

// key returns the key of an object item. Bare words and strings are accepted.
func (obj *converter) key(e hclsyntax.Expression) (string, error) {
	if k := hcl2.ExprAsKeyword(e); k != "" {
		return k, nil
	}
	if w, ok := e.(*hclsyntax.ObjectConsKeyExpr); ok {
		e = w.Wrapped
	}
	v, err := obj.value(e)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", obj.errorf(ErrUnsupported, e.Range(), "key of %T", v)
	}
	return s, nil
}

// template converts a quoted string. A plain string stays a string, and one
// with interpolations becomes a concatenation of its parts.
func (obj *converter) template(x *hclsyntax.TemplateExpr) (interface{}, error) {
	parts := []interface{}{}
	plain := true
	for _, p := range x.Parts {
		v, err := obj.value(p)
		if err != nil {
			return nil, err
		}
		if _, ok := v.(string); !ok {
			plain = false
		}
		parts = append(parts, v)
	}
	if plain {
		s := ""
		for _, p := range parts {
			s += p.(string)
		}
		return s, nil
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	ids := []expr.ID{}
	for _, p := range parts {
		id, err := obj.coerce(p, x.SrcRange)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	id, err := obj.graph.Apply(interpolate.ConcatFuncName, ids, nil)
	if err != nil {
		return nil, err
	}
	return obj.wrap(id), nil
}

// traversal returns the parts of a traversal as reference path parts.
func (obj *converter) traversal(t hcl2.Traversal) ([]interface{}, error) {
	parts := []interface{}{}
	for _, step := range t {
		switch s := step.(type) {
		case hcl2.TraverseRoot:
			parts = append(parts, s.Name)
		case hcl2.TraverseAttr:
			parts = append(parts, s.Name)
		case hcl2.TraverseIndex:
			k, err := native(s.Key)
			if err != nil {
				return nil, obj.errorf(err, s.SrcRange, "bad index")
			}
			parts = append(parts, k)
		default:
			return nil, obj.errorf(ErrUnsupported, step.SourceRange(), "traversal step %T", step)
		}
	}
	return parts, nil
}

// call converts a function call. A generator name builds that generator.
func (obj *converter) call(x *hclsyntax.FunctionCallExpr) (interface{}, error) {
	if x.ExpandFinal {
		return nil, obj.errorf(ErrUnsupported, x.Range(), "expanded args")
	}
	args := []interface{}{}
	for _, a := range x.Args {
		v, err := obj.value(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	if fn, exists := generators.Lookup(x.Name); exists {
		g, err := fn(args)
		if err != nil {
			return nil, obj.errorf(err, x.Range(), "generator `%s`", x.Name)
		}
		return g, nil
	}

	ids := []expr.ID{}
	for i, v := range args {
		id, err := obj.coerce(v, x.Args[i].Range())
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	id, err := obj.graph.Apply(x.Name, ids, nil)
	if err != nil {
		return nil, err
	}
	return obj.wrap(id), nil
}

// native converts a cty value into a template value. Whole numbers which fit
// become int64, and other numbers become float64.
func native(v cty.Value) (interface{}, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("unknown value")
	}

	ty := v.Type()
	switch {
	case ty.Equals(cty.String):
		return v.AsString(), nil

	case ty.Equals(cty.Bool):
		var b bool
		if err := gocty.FromCtyValue(v, &b); err != nil {
			return nil, err
		}
		return b, nil

	case ty.Equals(cty.Number):
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, err
		}
		return f, nil

	case ty.IsTupleType() || ty.IsListType():
		out := []interface{}{}
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			x, err := native(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, x)
		}
		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		m := &document.Map{}
		for it := v.ElementIterator(); it.Next(); {
			k, elem := it.Element()
			x, err := native(elem)
			if err != nil {
				return nil, err
			}
			m.Set(k.AsString(), x)
		}
		return m, nil
	}

	return nil, errwrap.Wrapf(interfaces.ErrInvalidDocument, "value of type %s", ty.FriendlyName())
}
