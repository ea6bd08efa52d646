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

// Package lang is the genson engine. It loads template documents, enumerates
// the grid of documents they describe, and calls them as programs.
package lang

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/purpleidea/genson/lang/dump"
	_ "github.com/purpleidea/genson/lang/funcs/core" // import so the funcs register
	"github.com/purpleidea/genson/lang/hcl"
	"github.com/purpleidea/genson/lang/parser"
	"github.com/purpleidea/genson/util/errwrap"

	"github.com/spf13/afero"
)

// Parse reads the template stored at path. A file with the hcl extension is
// read with the HCL frontend, and anything else with the genson notation.
func Parse(fs afero.Fs, path string) (interface{}, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errwrap.Wrapf(err, "can't read %s", path)
	}
	if strings.EqualFold(filepath.Ext(path), hcl.FileExtension) {
		m, err := hcl.Parse(b, path)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return parser.LexParseFile(strings.NewReader(string(b)), path)
}

// Load returns an enumerator over the template stored at path.
func Load(fs afero.Fs, path string) (*Enumerator, error) {
	doc, err := Parse(fs, path)
	if err != nil {
		return nil, err
	}
	return enumerate(doc)
}

// LoadReader returns an enumerator over the template read from the reader.
func LoadReader(input io.Reader) (*Enumerator, error) {
	doc, err := parser.LexParse(input)
	if err != nil {
		return nil, err
	}
	return enumerate(doc)
}

// Loads returns an enumerator over the template in the string.
func Loads(str string) (*Enumerator, error) {
	return LoadReader(strings.NewReader(str))
}

// Dumps prints a template, or the template of an enumerator, in the genson
// notation.
func Dumps(v interface{}, pretty bool) (string, error) {
	if e, ok := v.(*Enumerator); ok {
		v = e.Template
	}
	return dump.Template(v, pretty)
}

func enumerate(doc interface{}) (*Enumerator, error) {
	e := &Enumerator{
		Template: doc,
	}
	if err := e.Init(); err != nil {
		return nil, err
	}
	return e, nil
}
