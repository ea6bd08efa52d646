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

package document

import (
	"github.com/purpleidea/genson/lang/interfaces"
)

// Copy returns a deep copy of a document. Maps, sequences and generators are
// all copied so that advancing a generator of the copy leaves the original
// alone. Expressions are shared, since their graphs are never rewritten in
// place during resolution.
func Copy(v interface{}) interface{} {
	switch x := v.(type) {
	case *Map:
		m := &Map{}
		for _, e := range x.Entries {
			m.Entries = append(m.Entries, &Entry{
				Keys:  append([]string{}, e.Keys...),
				Value: Copy(e.Value),
			})
		}
		return m

	case map[string]interface{}:
		m := make(map[string]interface{})
		for k, val := range x {
			m[k] = Copy(val)
		}
		return m

	case []interface{}:
		l := []interface{}{}
		for _, val := range x {
			l = append(l, Copy(val))
		}
		return l

	case interfaces.Generator:
		return x.Copy(Copy)
	}
	return v
}
