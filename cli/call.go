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

	cliUtil "github.com/purpleidea/genson/cli/util"
	"github.com/purpleidea/genson/lang"
	"github.com/purpleidea/genson/util"
	"github.com/purpleidea/genson/util/errwrap"
)

// CallArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the flags for the `call` subcommand.
type CallArgs struct {
	cliUtil.TemplateArgs // embedded (can't be a pointer) https://github.com/alexflint/go-arg/issues/240
	cliUtil.OutputArgs

	Args   []string `arg:"--arg,separate" help:"positional argument, in genson notation"`
	Kwargs []string `arg:"--kwarg,separate" help:"keyword argument, as name=value in genson notation"`
}

// Run executes the `call` subcommand. The template is called as a program with
// the arguments, and the one document it resolves to is written to stdout.
func (obj *CallArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	settings := (*cliUtil.Config)(nil).Merge(obj.TemplateArgs, obj.OutputArgs)
	if !util.StrInList(settings.Format, cliUtil.Formats()) {
		return false, cliUtil.CliParseError(errwrap.Wrapf(cliUtil.UnknownFormat, "%s", settings.Format))
	}

	args := []interface{}{}
	for _, x := range obj.Args {
		v, err := cliUtil.ParseValue(x)
		if err != nil {
			return false, cliUtil.CliParseError(errwrap.Wrapf(err, "bad argument: %s", x))
		}
		args = append(args, v)
	}
	kwargs := make(map[string]interface{})
	for _, x := range obj.Kwargs {
		name, v, err := cliUtil.ParseKwarg(x)
		if err != nil {
			return false, cliUtil.CliParseError(err)
		}
		kwargs[name] = v
	}

	template, err := cliUtil.ReadTemplate(data, obj.Input)
	if err != nil {
		return false, err
	}
	prog := &lang.Program{
		Template: template,
		Seed:     settings.Seed,
		Debug:    data.Flags.Debug,
		Logf: func(format string, v ...interface{}) {
			data.Flags.Logf("call: "+format, v...)
		},
	}
	doc, err := prog.Call(args, kwargs)
	if err != nil {
		return false, err
	}
	if err := cliUtil.Write(data.Stdout, doc, settings.Format, settings.Pretty); err != nil {
		return false, err
	}
	return true, nil
}
