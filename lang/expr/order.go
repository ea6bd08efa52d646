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

package expr

// Order returns every node reachable from root in dependency order: each node
// appears after all of its inputs, and exactly once no matter how many paths
// reach it. Inputs are visited in slot order, which makes the result
// deterministic. A node which is reachable from itself is an error.
func (obj *Graph) Order(root ID) ([]ID, error) {
	if !obj.Valid(root) {
		return nil, ErrInvalidID
	}
	order := []ID{}
	done := make(map[ID]struct{})
	active := make(map[ID]struct{}) // in progress set

	var visit func(ID) error
	visit = func(id ID) error {
		if _, exists := done[id]; exists {
			return nil
		}
		if _, exists := active[id]; exists {
			return ErrCycle
		}
		node := obj.Node(id)
		if node == nil {
			return ErrInvalidID
		}
		active[id] = struct{}{}
		for _, x := range node.Inputs() {
			if err := visit(x); err != nil {
				return err
			}
		}
		delete(active, id)
		done[id] = struct{}{}
		order = append(order, id)
		return nil
	}

	if err := visit(root); err != nil {
		return nil, err
	}
	return order, nil
}
