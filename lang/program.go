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

package lang

import (
	"fmt"

	"github.com/purpleidea/genson/lang/document"
	"github.com/purpleidea/genson/lang/funcs"
	"github.com/purpleidea/genson/lang/interfaces"
	"github.com/purpleidea/genson/util"
	"github.com/purpleidea/genson/util/errwrap"
)

// Program is a template which is called like a function. A template accepts
// positional arguments by storing the from_args sentinel under its args key,
// and keyword arguments by storing from_kwargs under its kwargs key. Once the
// arguments are bound, the template must resolve to exactly one document.
type Program struct {
	Template interface{}

	// Registry holds the symbols that expressions may call. If it is nil,
	// then the default registry is used.
	Registry *funcs.Registry

	Seed int64

	Debug bool
	Logf  func(format string, v ...interface{})
}

// Call binds the arguments into a copy of the template and returns the single
// document it resolves to. The keys that received arguments are removed from
// the result. The template itself is never modified, so Call is safe to use
// again.
func (obj *Program) Call(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	prog := document.Copy(obj.Template)
	m, isMap := prog.(*document.Map)
	cleanup := []string{}

	if len(args) > 0 {
		if !isMap || !sentinel(m, interfaces.KeyArgs, interfaces.FromArgs) {
			return nil, errwrap.Wrapf(interfaces.ErrProgramArgs, "expected %s: %q", interfaces.KeyArgs, interfaces.FromArgs)
		}
		m.Set(interfaces.KeyArgs, document.Copy(args))
		cleanup = append(cleanup, interfaces.KeyArgs)
	}
	if len(kwargs) > 0 {
		if !isMap || !sentinel(m, interfaces.KeyKwargs, interfaces.FromKwargs) {
			return nil, errwrap.Wrapf(interfaces.ErrProgramKwargs, "expected %s: %q", interfaces.KeyKwargs, interfaces.FromKwargs)
		}
		bound := &document.Map{}
		for _, k := range util.StrMapKeys(kwargs) {
			bound.Set(k, document.Copy(kwargs[k]))
		}
		m.Set(interfaces.KeyKwargs, bound)
		cleanup = append(cleanup, interfaces.KeyKwargs)
	}

	logf := obj.Logf
	if logf == nil {
		logf = func(format string, v ...interface{}) {}
	}
	e := &Enumerator{
		Template: prog,
		Registry: obj.Registry,
		Seed:     obj.Seed,
		Debug:    obj.Debug,
		Logf: func(format string, v ...interface{}) {
			logf("enumerator: "+format, v...)
		},
	}
	if err := e.Init(); err != nil {
		return nil, err
	}
	rval, ok, err := e.Next()
	if err != nil {
		return nil, err
	}
	if !ok { // a pass always has a first document
		return nil, fmt.Errorf("program produced no document")
	}
	if _, ok, err := e.Next(); err != nil {
		return nil, err
	} else if ok {
		return nil, interfaces.ErrUnderdetermined
	}

	if out, ok := rval.(*document.Map); ok {
		for _, k := range cleanup {
			out.Delete(k)
		}
	}
	return rval, nil
}

// sentinel returns true if the key of the map holds exactly the sentinel.
func sentinel(m *document.Map, key, value string) bool {
	v, exists := m.Lookup(key)
	if !exists {
		return false
	}
	s, ok := v.(string)
	return ok && s == value
}
