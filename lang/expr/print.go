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
	"strings"
)

// Format returns the tree form of the expression below id, one node per line
// with inputs indented below their parent in slot order. Literals print as
// Literal{value}. Shared nodes are printed once per path.
func (obj *Graph) Format(id ID) string {
	b := &strings.Builder{}
	obj.format(b, id, 0)
	return b.String()
}

func (obj *Graph) format(b *strings.Builder, id ID, indent int) {
	node := obj.Node(id)
	prefix := strings.Repeat(" ", indent)
	switch {
	case node == nil:
		fmt.Fprintf(b, "%s<invalid %d>\n", prefix, id)
		return
	case node.Kind == KindLiteral:
		fmt.Fprintf(b, "%sLiteral{%v}\n", prefix, node.Value)
		return
	case node.Kind == KindRef:
		fmt.Fprintf(b, "%sRef{%s}\n", prefix, node.Value)
		return
	}
	fmt.Fprintf(b, "%s%s\n", prefix, node.Name)
	for i, x := range node.Inputs() {
		if j := i - len(node.Args); j >= 0 {
			fmt.Fprintf(b, "%s %s=\n", prefix, node.Kwargs[j].Name)
		}
		obj.format(b, x, indent+1)
	}
}
