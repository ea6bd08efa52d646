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

package util

import (
	"io"
	"strings"

	"github.com/purpleidea/genson/lang"
	"github.com/purpleidea/genson/lang/dump"
	"github.com/purpleidea/genson/lang/parser"
	"github.com/purpleidea/genson/util/errwrap"
)

// Output formats.
const (
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatGenson = "genson"
)

// Formats returns the known output formats.
func Formats() []string {
	return []string{FormatJSON, FormatYAML, FormatGenson}
}

// Stdin is the input name which reads the template from stdin.
const Stdin = "-"

// ReadTemplate reads the template named by input.
func ReadTemplate(data *Data, input string) (interface{}, error) {
	if input == Stdin {
		return parser.LexParseFile(data.Stdin, "<stdin>")
	}
	return lang.Parse(data.Fs, input)
}

// Encode prints a resolved document in one of the output formats.
func Encode(doc interface{}, format string, pretty bool) (string, error) {
	switch format {
	case FormatJSON:
		return dump.JSON(doc, pretty)
	case FormatYAML:
		return dump.YAML(doc)
	case FormatGenson:
		return dump.Template(doc, pretty)
	}
	return "", errwrap.Wrapf(UnknownFormat, "%s", format)
}

// Write prints a resolved document followed by a newline. Yaml documents are
// separated with the usual document marker.
func Write(w io.Writer, doc interface{}, format string, pretty bool) error {
	s, err := Encode(doc, format, pretty)
	if err != nil {
		return err
	}
	if format == FormatYAML {
		s = "---\n" + s
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err = io.WriteString(w, s)
	return err
}

// ParseValue reads a value written in the genson notation, as passed to the
// call subcommand.
func ParseValue(str string) (interface{}, error) {
	return parser.LexParseString(str)
}

// ParseKwarg splits a name=value keyword argument.
func ParseKwarg(str string) (string, interface{}, error) {
	name, value, found := strings.Cut(str, "=")
	if !found || name == "" {
		return "", nil, errwrap.Wrapf(BadKwarg, "%s", str)
	}
	v, err := ParseValue(value)
	if err != nil {
		return "", nil, errwrap.Wrapf(err, "bad value for %s", name)
	}
	return name, v, nil
}
