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
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Graphviz outputs the part of the graph reachable from root in graphviz
// format. Edges point from each input to the node which consumes it, and are
// labelled with their slot.
// https://en.wikipedia.org/wiki/DOT_%28graph_description_language%29
func (obj *Graph) Graphviz(name string, root ID) (string, error) {
	order, err := obj.Order(root)
	if err != nil {
		return "", err
	}
	b := &strings.Builder{}
	fmt.Fprintf(b, "digraph %s {\n", strconv.Quote(name))
	fmt.Fprintf(b, "\tlabel=%s;\n", strconv.Quote(name))
	edges := &strings.Builder{} // for clearer output ordering
	for _, id := range order {
		node := obj.Node(id)
		label := node.Name
		switch node.Kind {
		case KindLiteral:
			label = fmt.Sprintf("%v", node.Value)
		case KindRef:
			label = fmt.Sprintf("%s", node.Value)
		}
		fmt.Fprintf(b, "\t\"n%d\" [label=%s];\n", id, strconv.Quote(label))
		for slot, x := range node.Inputs() {
			e := strconv.Itoa(slot)
			if j := slot - len(node.Args); j >= 0 {
				e = node.Kwargs[j].Name
			}
			fmt.Fprintf(edges, "\t\"n%d\" -> \"n%d\" [label=%s];\n", x, id, strconv.Quote(e))
		}
	}
	b.WriteString(edges.String())
	b.WriteString("}\n")
	return b.String(), nil
}

// ExecGraphviz writes out the graphviz data and runs the correct graphviz
// filter command to render it as a png next to it.
func (obj *Graph) ExecGraphviz(program, filename string, root ID) error {
	switch program {
	case "dot", "neato", "twopi", "circo", "fdp":
	default:
		return fmt.Errorf("invalid graphviz program selected")
	}

	if filename == "" {
		return fmt.Errorf("no filename given")
	}

	data, err := obj.Graphviz(filename, root)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, []byte(data), 0644); err != nil {
		return fmt.Errorf("error writing to filename")
	}

	path, err := exec.LookPath(program)
	if err != nil {
		return fmt.Errorf("the Graphviz program is missing")
	}

	out := fmt.Sprintf("%s.png", filename)
	cmd := exec.Command(path, "-Tpng", fmt.Sprintf("-o%s", out), filename)
	if _, err := cmd.Output(); err != nil {
		return fmt.Errorf("error writing to image")
	}
	return nil
}
