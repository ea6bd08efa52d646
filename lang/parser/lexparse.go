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

// Package parser contains the lexer and parser for the genson notation. It
// produces the template document, with every expression of one input stored
// in a single shared graph.
package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/purpleidea/genson/util"
	"github.com/purpleidea/genson/util/errwrap"
)

// These constants represent the different possible lexer/parser errors.
const (
	ErrLexerUnrecognized       = util.Error("unrecognized")
	ErrLexerUnterminatedString = util.Error("string: unterminated")
	ErrLexerStringBadEscaping  = util.Error("string: bad escaping")
	ErrLexerIntegerOverflow    = util.Error("integer: overflow")
	ErrLexerFloatOverflow      = util.Error("float: overflow")
	ErrParseError              = util.Error("parser")
	ErrParseDuplicateKey       = util.Error("duplicate key")
	ErrParseTrailingComma      = util.Error("trailing comma")
	ErrParseBadReference       = util.Error("bad reference")
	ErrParseGeneratorInExpr    = util.Error("generator inside an expression")
	ErrParseGeneratorArgs      = util.Error("bad generator args")
)

// LexParseErr is a permanent failure error to notify about borkage.
type LexParseErr struct {
	Err util.Error
	Str string
	Row int // this is zero-indexed (the first line is 0)
	Col int // this is zero-indexed (the first char is 0)

	// Filename is the file that this error occurred in. If this is unknown,
	// then it will be empty.
	Filename string
}

// Error displays this error with all the relevant state information.
func (e *LexParseErr) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("%s: %s: `%s` @%d:%d", e.Filename, e.Err, e.Str, e.Row+1, e.Col+1)
	}
	return fmt.Sprintf("%s: `%s` @%d:%d", e.Err, e.Str, e.Row+1, e.Col+1)
}

// Unwrap returns the sentinel error, so that errors.Is can match it.
func (e *LexParseErr) Unwrap() error {
	return e.Err
}

// LexParse runs the lexer/parser machinery and returns the template document.
// Expressions in the document all share one graph.
func LexParse(input io.Reader) (interface{}, error) {
	return LexParseFile(input, "")
}

// LexParseFile is LexParse, but any error names the file it came from.
func LexParseFile(input io.Reader, filename string) (interface{}, error) {
	b, err := io.ReadAll(input)
	if err != nil {
		return nil, errwrap.Wrapf(err, "can't read input")
	}
	lex := &lexer{
		input:    []rune(string(b)),
		filename: filename,
	}
	tokens, err := lex.lex()
	if err != nil {
		return nil, err
	}
	p := newParser(tokens, filename)
	return p.document()
}

// LexParseString is LexParse for an input string.
func LexParseString(str string) (interface{}, error) {
	return LexParse(strings.NewReader(str))
}
