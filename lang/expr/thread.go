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

import (
	"fmt"

	"github.com/purpleidea/genson/util/errwrap"
)

// Stochastic reports which symbols draw from an implicit random source.
type Stochastic interface {
	IsStochastic(name string) bool
}

// ThreadRNG rewrites the graph below root so that the random source becomes an
// explicit input. Every call of a stochastic symbol is replaced by the value
// half of a draw node, which takes the current random source and produces the
// next one. The rewrite is a single forward pass over the dependency order:
// each node has its inputs pointed at their replacements before it is looked
// at, so every client of a replaced node is rewritten. The returned root is
// the replacement of root if it was replaced itself, and the returned rng is
// the final random source. The rng may be a handle or any value to coerce.
func (obj *Graph) ThreadRNG(root ID, rng interface{}, stochastic Stochastic) (ID, ID, error) {
	if stochastic == nil {
		return 0, 0, fmt.Errorf("the stochastic lookup is nil")
	}
	order, err := obj.Order(root)
	if err != nil {
		return 0, 0, err
	}
	current, err := obj.Coerce(rng)
	if err != nil {
		return 0, 0, errwrap.Wrapf(err, "can't coerce rng")
	}

	replaced := make(map[ID]ID)
	for _, id := range order {
		node := obj.Node(id)
		for slot, x := range node.Inputs() {
			r, exists := replaced[x]
			if !exists {
				continue
			}
			if err := obj.ReplaceInput(id, slot, r); err != nil {
				return 0, 0, err
			}
		}

		if node.Kind != KindCall || !stochastic.IsStochastic(node.Name) {
			continue
		}

		draw, err := obj.Draw(current, node.Name, node.Args, node.Kwargs)
		if err != nil {
			return 0, 0, err
		}
		outputs, err := obj.Unpack(draw, 2)
		if err != nil {
			return 0, 0, err
		}
		replaced[id] = outputs[0]
		current = outputs[1]
	}

	if r, exists := replaced[root]; exists {
		return r, current, nil
	}
	return root, current, nil
}
