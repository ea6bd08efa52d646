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

package interfaces

const (
	// KeyArgs is the document key which receives positional arguments when
	// a document is called as a program.
	KeyArgs = "args"

	// KeyKwargs is the document key which receives keyword arguments when a
	// document is called as a program.
	KeyKwargs = "kwargs"

	// FromArgs is the sentinel value stored under KeyArgs by a program which
	// accepts positional arguments.
	FromArgs = "from_args"

	// FromKwargs is the sentinel value stored under KeyKwargs by a program
	// which accepts keyword arguments.
	FromKwargs = "from_kwargs"

	// RefThis is the reference root naming the enclosing mapping.
	RefThis = "this"

	// RefParent is the reference root naming the mapping which encloses the
	// enclosing mapping. It may be repeated to climb further.
	RefParent = "parent"

	// RefRoot is the reference root naming the top of the document.
	RefRoot = "root"
)
