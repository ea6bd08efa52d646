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

import (
	"github.com/purpleidea/genson/util"
)

const (
	// ErrInvalidDocument is returned by the template walker when it finds a
	// value that is neither a mapping, a sequence, a generator, nor a leaf
	// that it knows how to skip.
	ErrInvalidDocument = util.Error("invalid generator document")

	// ErrEmptyGenerator is returned when a generator is built without any
	// settings. A generator must always have a first setting.
	ErrEmptyGenerator = util.Error("generator has no settings")

	// ErrReferenceCycle is returned when resolving a reference requires the
	// value which is currently being resolved.
	ErrReferenceCycle = util.Error("reference cycle")

	// ErrReferenceNotFound is returned when a reference path does not exist
	// in the document being resolved.
	ErrReferenceNotFound = util.Error("reference not found")

	// ErrTupleArity is returned when a tuple key is bound to a sequence of a
	// different length than the number of keys.
	ErrTupleArity = util.Error("tuple key arity mismatch")

	// ErrProgramArgs is returned when positional arguments are passed to a
	// program which does not accept them.
	ErrProgramArgs = util.Error("document does not accept positional arguments")

	// ErrProgramKwargs is returned when keyword arguments are passed to a
	// program which does not accept them.
	ErrProgramKwargs = util.Error("document does not accept keyword arguments")

	// ErrUnderdetermined is returned when a program still enumerates to more
	// than one document once its arguments are bound.
	ErrUnderdetermined = util.Error("program is underdetermined, it is still a grid")
)
