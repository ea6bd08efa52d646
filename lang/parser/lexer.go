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
	"errors"
	"strconv"
	"strings"

	"github.com/purpleidea/genson/util"
)

// tokenKind is the class of a lexed token.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokInt
	tokFloat
	tokPunct
)

func (obj tokenKind) String() string {
	switch obj {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokString:
		return "string"
	case tokInt:
		return "integer"
	case tokFloat:
		return "float"
	case tokPunct:
		return "punctuation"
	}
	return "unknown"
}

// token is a single lexeme. The str field holds the source text, and val holds
// the decoded value of strings and numbers.
type token struct {
	kind tokenKind
	str  string
	val  interface{}
	row  int // zero-indexed
	col  int // zero-indexed
}

// puncts lists the single character tokens.
const puncts = "{}[]()<>,:.=+-*/"

// lexer splits the input into tokens. It tracks rows and columns so that
// errors can point at the offending text.
type lexer struct {
	input    []rune
	pos      int
	row      int
	col      int
	filename string
}

func (obj *lexer) peek(offset int) rune {
	if i := obj.pos + offset; i < len(obj.input) {
		return obj.input[i]
	}
	return 0
}

func (obj *lexer) next() rune {
	r := obj.input[obj.pos]
	obj.pos++
	if r == '\n' {
		obj.row++
		obj.col = 0
	} else {
		obj.col++
	}
	return r
}

func (obj *lexer) errorf(err util.Error, str string, row, col int) error {
	return &LexParseErr{
		Err:      err,
		Str:      str,
		Row:      row,
		Col:      col,
		Filename: obj.filename,
	}
}

// skip consumes whitespace and comments. Comments start with # or // and run
// until the end of the line.
func (obj *lexer) skip() {
	for obj.pos < len(obj.input) {
		r := obj.peek(0)
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			obj.next()
		case r == '#' || (r == '/' && obj.peek(1) == '/'):
			for obj.pos < len(obj.input) && obj.peek(0) != '\n' {
				obj.next()
			}
		default:
			return
		}
	}
}

// lex returns every token of the input, ending with an EOF token.
func (obj *lexer) lex() ([]token, error) {
	tokens := []token{}
	for {
		obj.skip()
		row, col := obj.row, obj.col
		if obj.pos >= len(obj.input) {
			tokens = append(tokens, token{kind: tokEOF, row: row, col: col})
			return tokens, nil
		}
		r := obj.peek(0)

		switch {
		case isIdentStart(r):
			start := obj.pos
			for obj.pos < len(obj.input) && isIdentPart(obj.peek(0)) {
				obj.next()
			}
			s := string(obj.input[start:obj.pos])
			tokens = append(tokens, token{kind: tokIdent, str: s, val: s, row: row, col: col})

		case isDigit(r):
			tok, err := obj.number()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)

		case r == '"':
			tok, err := obj.str()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)

		case strings.ContainsRune(puncts, r):
			obj.next()
			tokens = append(tokens, token{kind: tokPunct, str: string(r), row: row, col: col})

		default:
			return nil, obj.errorf(ErrLexerUnrecognized, string(r), row, col)
		}
	}
}

// number lexes an integer or a float. A dot is only part of the number if a
// digit follows it, so that `this.a.0` keeps its dots.
func (obj *lexer) number() (token, error) {
	row, col := obj.row, obj.col
	start := obj.pos
	float := false
	for isDigit(obj.peek(0)) {
		obj.next()
	}
	if obj.peek(0) == '.' && isDigit(obj.peek(1)) {
		float = true
		obj.next()
		for isDigit(obj.peek(0)) {
			obj.next()
		}
	}
	if r := obj.peek(0); r == 'e' || r == 'E' {
		i := 1
		if s := obj.peek(1); s == '+' || s == '-' {
			i = 2
		}
		if isDigit(obj.peek(i)) {
			float = true
			for ; i > 0; i-- {
				obj.next()
			}
			for isDigit(obj.peek(0)) {
				obj.next()
			}
		}
	}
	s := string(obj.input[start:obj.pos])

	if float {
		f, err := strconv.ParseFloat(s, 64)
		if errors.Is(err, strconv.ErrRange) {
			return token{}, obj.errorf(ErrLexerFloatOverflow, s, row, col)
		} else if err != nil {
			return token{}, obj.errorf(ErrLexerUnrecognized, s, row, col)
		}
		return token{kind: tokFloat, str: s, val: f, row: row, col: col}, nil
	}

	i, err := strconv.ParseInt(s, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return token{}, obj.errorf(ErrLexerIntegerOverflow, s, row, col)
	} else if err != nil {
		return token{}, obj.errorf(ErrLexerUnrecognized, s, row, col)
	}
	return token{kind: tokInt, str: s, val: i, row: row, col: col}, nil
}

// str lexes a double quoted string with the usual go escapes.
func (obj *lexer) str() (token, error) {
	row, col := obj.row, obj.col
	start := obj.pos
	obj.next() // opening quote
	for {
		if obj.pos >= len(obj.input) || obj.peek(0) == '\n' {
			return token{}, obj.errorf(ErrLexerUnterminatedString, string(obj.input[start:obj.pos]), row, col)
		}
		r := obj.next()
		if r == '\\' && obj.pos < len(obj.input) {
			obj.next() // skip whatever is escaped
			continue
		}
		if r == '"' {
			break
		}
	}
	raw := string(obj.input[start:obj.pos])
	s, err := strconv.Unquote(raw)
	if err != nil {
		return token{}, obj.errorf(ErrLexerStringBadEscaping, raw, row, col)
	}
	return token{kind: tokString, str: raw, val: s, row: row, col: col}, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
