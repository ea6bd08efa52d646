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

package cli

import (
	"context"
	"io"

	cliUtil "github.com/purpleidea/genson/cli/util"
	"github.com/purpleidea/genson/lang"
	"github.com/purpleidea/genson/lang/document"
	"github.com/purpleidea/genson/lang/expr"
	"github.com/purpleidea/genson/util/errwrap"

	"github.com/spf13/afero"
)

// DumpArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the flags for the `dump` subcommand.
type DumpArgs struct {
	Input string `arg:"positional,required" help:"template file, or - for stdin"`

	Pretty bool `arg:"--pretty" help:"pretty print the output"`

	Graphviz       string `arg:"--graphviz" help:"output filename for the expression graph in dot format"`
	GraphvizFilter string `arg:"--graphviz-filter" help:"graphviz filter to render the graph with, such as dot"`
}

// Run executes the `dump` subcommand. The template is printed in the genson
// notation, whichever frontend it was read with.
func (obj *DumpArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	template, err := cliUtil.ReadTemplate(data, obj.Input)
	if err != nil {
		return false, err
	}
	str, err := lang.Dumps(template, obj.Pretty)
	if err != nil {
		return false, errwrap.Wrapf(err, "can't dump template")
	}
	if _, err := io.WriteString(data.Stdout, str+"\n"); err != nil {
		return false, err
	}

	if obj.Graphviz == "" {
		return true, nil
	}
	g, root, err := exprGraph(template)
	if err != nil {
		return false, err
	}
	if obj.GraphvizFilter != "" {
		if err := g.ExecGraphviz(obj.GraphvizFilter, obj.Graphviz, root); err != nil {
			return false, errwrap.Wrapf(err, "graphviz failed")
		}
		return true, nil
	}
	dot, err := g.Graphviz(obj.Input, root)
	if err != nil {
		return false, err
	}
	if err := afero.WriteFile(data.Fs, obj.Graphviz, []byte(dot), 0644); err != nil {
		return false, errwrap.Wrapf(err, "can't write graphviz")
	}
	return true, nil
}

// exprGraph gathers every expression of the template into one graph, under a
// single list node.
func exprGraph(template interface{}) (*expr.Graph, expr.ID, error) {
	g := expr.NewGraph()
	merged := make(map[*expr.Graph]func(expr.ID) expr.ID)
	roots := []expr.ID{}
	for _, x := range document.Exprs(template) {
		fn, exists := merged[x.Graph]
		if !exists {
			fn = g.Merge(x.Graph)
			merged[x.Graph] = fn
		}
		roots = append(roots, fn(x.Root))
	}
	root, err := g.List(roots...)
	if err != nil {
		return nil, 0, err
	}
	return g, root, nil
}
