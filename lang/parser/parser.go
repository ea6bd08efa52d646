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

package parser

import (
	"github.com/purpleidea/genson/lang/document"
	"github.com/purpleidea/genson/lang/expr"
	"github.com/purpleidea/genson/lang/generators"
	"github.com/purpleidea/genson/lang/interfaces"
	"github.com/purpleidea/genson/util"
)

// Names of the funcs used for the arithmetic operators. Addition lowers to the
// structural add node instead.
const (
	SubFuncName = "sub"
	MulFuncName = "mul"
	DivFuncName = "div"
	NegFuncName = "neg"
)

// Keywords of the notation.
const (
	KeywordTrue  = "true"
	KeywordFalse = "false"
	KeywordNull  = "null"
)

// parser is a recursive descent parser over the lexed tokens. Every value it
// returns is either a plain document value or an *expr.Expr in its graph.
type parser struct {
	tokens   []token
	pos      int
	filename string
	graph    *expr.Graph
}

func newParser(tokens []token, filename string) *parser {
	return &parser{
		tokens:   tokens,
		filename: filename,
		graph:    expr.NewGraph(),
	}
}

func (obj *parser) peek() token {
	return obj.tokens[obj.pos]
}

func (obj *parser) peekAt(offset int) token {
	if i := obj.pos + offset; i < len(obj.tokens) {
		return obj.tokens[i]
	}
	return obj.tokens[len(obj.tokens)-1] // eof
}

func (obj *parser) next() token {
	tok := obj.tokens[obj.pos]
	if tok.kind != tokEOF {
		obj.pos++
	}
	return tok
}

// is returns true if the next token is the punctuation p.
func (obj *parser) is(p string) bool {
	tok := obj.peek()
	return tok.kind == tokPunct && tok.str == p
}

func (obj *parser) expect(p string) (token, error) {
	tok := obj.next()
	if tok.kind != tokPunct || tok.str != p {
		return tok, obj.errorf(ErrParseError, tok)
	}
	return tok, nil
}

func (obj *parser) errorf(err util.Error, tok token) error {
	str := tok.str
	if tok.kind == tokEOF {
		str = tok.kind.String()
	}
	return &LexParseErr{
		Err:      err,
		Str:      str,
		Row:      tok.row,
		Col:      tok.col,
		Filename: obj.filename,
	}
}

// wrap turns a handle into an expression value.
func (obj *parser) wrap(id expr.ID) *expr.Expr {
	return &expr.Expr{Graph: obj.graph, Root: id}
}

// document parses the whole input.
func (obj *parser) document() (interface{}, error) {
	v, err := obj.value()
	if err != nil {
		return nil, err
	}
	if tok := obj.peek(); tok.kind != tokEOF {
		return nil, obj.errorf(ErrParseError, tok)
	}
	return v, nil
}

// value parses a sum, which is the loosest binding production.
func (obj *parser) value() (interface{}, error) {
	left, err := obj.product()
	if err != nil {
		return nil, err
	}
	for obj.is("+") || obj.is("-") {
		op := obj.next()
		right, err := obj.product()
		if err != nil {
			return nil, err
		}
		if left, err = obj.binary(op, left, right); err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (obj *parser) product() (interface{}, error) {
	left, err := obj.unary()
	if err != nil {
		return nil, err
	}
	for obj.is("*") || obj.is("/") {
		op := obj.next()
		right, err := obj.unary()
		if err != nil {
			return nil, err
		}
		if left, err = obj.binary(op, left, right); err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (obj *parser) unary() (interface{}, error) {
	if !obj.is("-") {
		return obj.postfix()
	}
	op := obj.next()
	v, err := obj.unary()
	if err != nil {
		return nil, err
	}
	switch x := v.(type) { // negative literals stay literals
	case int64:
		return -x, nil
	case float64:
		return -x, nil
	}
	id, err := obj.operand(v, op)
	if err != nil {
		return nil, err
	}
	neg, err := obj.graph.Apply(NegFuncName, []expr.ID{id}, nil)
	if err != nil {
		return nil, err
	}
	return obj.wrap(neg), nil
}

// binary builds the node of an arithmetic operator.
func (obj *parser) binary(op token, left, right interface{}) (interface{}, error) {
	a, err := obj.operand(left, op)
	if err != nil {
		return nil, err
	}
	b, err := obj.operand(right, op)
	if err != nil {
		return nil, err
	}
	var id expr.ID
	switch op.str {
	case "+":
		id, err = obj.graph.Add(a, b)
	case "-":
		id, err = obj.graph.Apply(SubFuncName, []expr.ID{a, b}, nil)
	case "*":
		id, err = obj.graph.Apply(MulFuncName, []expr.ID{a, b}, nil)
	case "/":
		id, err = obj.graph.Apply(DivFuncName, []expr.ID{a, b}, nil)
	default:
		return nil, obj.errorf(ErrParseError, op)
	}
	if err != nil {
		return nil, err
	}
	return obj.wrap(id), nil
}

// operand coerces a value into the graph so it can be used as an input. A
// value which contains a generator can't be used inside an expression.
func (obj *parser) operand(v interface{}, tok token) (expr.ID, error) {
	if hasGenerator(v) {
		return 0, obj.errorf(ErrParseGeneratorInExpr, tok)
	}
	return obj.graph.Coerce(v)
}

func hasGenerator(v interface{}) bool {
	switch x := v.(type) {
	case interfaces.Generator:
		return true
	case *document.Map:
		for _, e := range x.Entries {
			if hasGenerator(e.Value) {
				return true
			}
		}
	case []interface{}:
		for _, val := range x {
			if hasGenerator(val) {
				return true
			}
		}
	}
	return false
}

// postfix parses a primary followed by any number of [key] indexes. Only
// references, calls and parenthesized expressions can be indexed, so a
// literal object or sequence is never followed by an index.
func (obj *parser) postfix() (interface{}, error) {
	tok := obj.peek()
	indexable := tok.kind == tokIdent || (tok.kind == tokPunct && tok.str == "(")
	v, err := obj.primary()
	if err != nil {
		return nil, err
	}
	for {
		if !indexable || !obj.is("[") {
			return v, nil
		}
		open := obj.next()
		key, err := obj.value()
		if err != nil {
			return nil, err
		}
		if _, err := obj.expect("]"); err != nil {
			return nil, err
		}
		target, err := obj.operand(v, open)
		if err != nil {
			return nil, err
		}
		k, err := obj.operand(key, open)
		if err != nil {
			return nil, err
		}
		id, err := obj.graph.GetItem(target, k)
		if err != nil {
			return nil, err
		}
		v = obj.wrap(id)
	}
}

func (obj *parser) primary() (interface{}, error) {
	tok := obj.peek()
	switch tok.kind {
	case tokString, tokInt, tokFloat:
		obj.next()
		return tok.val, nil

	case tokIdent:
		switch tok.str {
		case KeywordTrue:
			obj.next()
			return true, nil
		case KeywordFalse:
			obj.next()
			return false, nil
		case KeywordNull:
			obj.next()
			return nil, nil
		case interfaces.RefThis, interfaces.RefRoot, interfaces.RefParent:
			return obj.ref()
		}
		if next := obj.peekAt(1); next.kind == tokPunct && next.str == "(" {
			return obj.call()
		}
		return nil, obj.errorf(ErrParseError, tok)

	case tokPunct:
		switch tok.str {
		case "{":
			return obj.object()
		case "[":
			obj.next()
			return obj.items("]")
		case "<":
			return obj.choices()
		case "(":
			return obj.paren()
		}
	}
	return nil, obj.errorf(ErrParseError, tok)
}

// items parses comma separated values up to and including the closing token.
func (obj *parser) items(closing string) ([]interface{}, error) {
	out := []interface{}{}
	if obj.is(closing) {
		obj.next()
		return out, nil
	}
	for {
		v, err := obj.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		if obj.is(closing) {
			obj.next()
			return out, nil
		}
		comma, err := obj.expect(",")
		if err != nil {
			return nil, err
		}
		if obj.is(closing) {
			return nil, obj.errorf(ErrParseTrailingComma, comma)
		}
	}
}

// choices parses the <a, b, c> choice set shorthand.
func (obj *parser) choices() (interface{}, error) {
	open := obj.next()
	options, err := obj.items(">")
	if err != nil {
		return nil, err
	}
	fn, exists := generators.Lookup(generators.ChoiceName)
	if !exists {
		return nil, obj.errorf(ErrParseError, open)
	}
	g, err := fn(options)
	if err != nil {
		return nil, obj.errorf(ErrParseGeneratorArgs, open)
	}
	return g, nil
}

// paren parses either a parenthesized value or a tuple. A tuple is a sequence.
func (obj *parser) paren() (interface{}, error) {
	obj.next()
	if obj.is(")") {
		obj.next()
		return []interface{}{}, nil
	}
	v, err := obj.value()
	if err != nil {
		return nil, err
	}
	if obj.is(")") {
		obj.next()
		return v, nil
	}
	comma, err := obj.expect(",")
	if err != nil {
		return nil, err
	}
	if obj.is(")") {
		return nil, obj.errorf(ErrParseTrailingComma, comma)
	}
	rest, err := obj.items(")")
	if err != nil {
		return nil, err
	}
	return append([]interface{}{v}, rest...), nil
}

// object parses a mapping. Keys are strings or bare identifiers, and a
// parenthesized list of keys makes a tuple entry.
func (obj *parser) object() (interface{}, error) {
	obj.next()
	m := &document.Map{}
	if obj.is("}") {
		obj.next()
		return m, nil
	}
	for {
		keys, err := obj.keys(m)
		if err != nil {
			return nil, err
		}
		if _, err := obj.expect(":"); err != nil {
			return nil, err
		}
		v, err := obj.value()
		if err != nil {
			return nil, err
		}
		if len(keys) == 1 {
			m.Set(keys[0], v)
		} else {
			m.SetTuple(keys, v)
		}

		if obj.is("}") {
			obj.next()
			return m, nil
		}
		comma, err := obj.expect(",")
		if err != nil {
			return nil, err
		}
		if obj.is("}") {
			return nil, obj.errorf(ErrParseTrailingComma, comma)
		}
	}
}

// keys parses the key of an entry, and checks it against the keys already in
// the map.
func (obj *parser) keys(m *document.Map) ([]string, error) {
	toks := []token{}
	if obj.is("(") {
		obj.next()
		for {
			toks = append(toks, obj.next())
			if obj.is(")") {
				obj.next()
				break
			}
			comma, err := obj.expect(",")
			if err != nil {
				return nil, err
			}
			if obj.is(")") {
				return nil, obj.errorf(ErrParseTrailingComma, comma)
			}
		}
	} else {
		toks = append(toks, obj.next())
	}

	keys := []string{}
	for _, tok := range toks {
		if tok.kind != tokString && tok.kind != tokIdent {
			return nil, obj.errorf(ErrParseError, tok)
		}
		k := tok.val.(string)
		if m.Has(k) || util.StrInList(k, keys) {
			return nil, obj.errorf(ErrParseDuplicateKey, tok)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// ref parses a relative reference such as this.a, root.b[0] or parent.c.
func (obj *parser) ref() (interface{}, error) {
	first := obj.next()
	parts := []interface{}{first.str}
	for {
		if obj.is(".") {
			obj.next()
			tok := obj.next()
			switch tok.kind {
			case tokIdent:
				parts = append(parts, tok.str)
			case tokInt:
				parts = append(parts, tok.val)
			default:
				return nil, obj.errorf(ErrParseBadReference, tok)
			}
			continue
		}
		if obj.is("[") {
			obj.next()
			negative := obj.is("-")
			if negative {
				obj.next()
			}
			tok := obj.next()
			switch {
			case tok.kind == tokInt && negative:
				parts = append(parts, -tok.val.(int64))
			case tok.kind == tokInt, tok.kind == tokString && !negative:
				parts = append(parts, tok.val)
			default:
				return nil, obj.errorf(ErrParseBadReference, tok)
			}
			if _, err := obj.expect("]"); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	ref, err := expr.NewRef(parts)
	if err != nil {
		return nil, obj.errorf(ErrParseBadReference, first)
	}
	return obj.wrap(obj.graph.Ref(ref)), nil
}

// call parses a function call. Calls of a generator name build the generator,
// and anything else builds a call node.
func (obj *parser) call() (interface{}, error) {
	name := obj.next()
	obj.next() // (

	args := []interface{}{}
	argToks := []token{}
	kwargs := make(map[string]interface{})
	kwargToks := make(map[string]token)
	if obj.is(")") {
		obj.next()
	} else {
		for {
			tok := obj.peek()
			if next := obj.peekAt(1); tok.kind == tokIdent && next.kind == tokPunct && next.str == "=" {
				obj.next()
				obj.next()
				if _, exists := kwargs[tok.str]; exists {
					return nil, obj.errorf(ErrParseDuplicateKey, tok)
				}
				v, err := obj.value()
				if err != nil {
					return nil, err
				}
				kwargs[tok.str] = v
				kwargToks[tok.str] = tok
			} else {
				if len(kwargs) > 0 { // positional after named
					return nil, obj.errorf(ErrParseError, tok)
				}
				v, err := obj.value()
				if err != nil {
					return nil, err
				}
				args = append(args, v)
				argToks = append(argToks, tok)
			}

			if obj.is(")") {
				obj.next()
				break
			}
			comma, err := obj.expect(",")
			if err != nil {
				return nil, err
			}
			if obj.is(")") {
				return nil, obj.errorf(ErrParseTrailingComma, comma)
			}
		}
	}

	if fn, exists := generators.Lookup(name.str); exists {
		if len(kwargs) > 0 {
			return nil, obj.errorf(ErrParseGeneratorArgs, name)
		}
		g, err := fn(args)
		if err != nil {
			return nil, obj.errorf(ErrParseGeneratorArgs, name)
		}
		return g, nil
	}

	ids := []expr.ID{}
	for i, v := range args {
		id, err := obj.operand(v, argToks[i])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	m := make(map[string]expr.ID)
	for k, v := range kwargs {
		id, err := obj.operand(v, kwargToks[k])
		if err != nil {
			return nil, err
		}
		m[k] = id
	}
	id, err := obj.graph.Apply(name.str, ids, m)
	if err != nil {
		return nil, err
	}
	return obj.wrap(id), nil
}
