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

// Package cli handles all of the core command line parsing. It's the first
// entry point after the real main function, and it runs the genson engine.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	cliUtil "github.com/purpleidea/genson/cli/util"
	"github.com/purpleidea/genson/util/errwrap"

	"github.com/alexflint/go-arg"
	"github.com/spf13/afero"
)

// CLI is the entry point for using genson normally from the CLI.
func CLI(ctx context.Context, data *cliUtil.Data) error {
	// test for sanity
	if data == nil {
		return fmt.Errorf("this CLI was not run correctly")
	}
	if data.Program == "" || data.Version == "" {
		return fmt.Errorf("program was not compiled correctly")
	}
	if data.Copying == "" {
		return fmt.Errorf("program copyrights were removed, can't run")
	}
	if data.Fs == nil {
		data.Fs = afero.NewOsFs()
	}
	if data.Stdin == nil {
		data.Stdin = os.Stdin
	}
	if data.Stdout == nil {
		data.Stdout = os.Stdout
	}

	args := Args{}
	args.version = data.Version // copy this in
	args.description = data.Tagline

	config := arg.Config{
		Program: data.Program,
	}
	parser, err := arg.NewParser(config, &args)
	if err != nil {
		// programming error
		return errwrap.Wrapf(err, "cli config error")
	}
	err = parser.Parse(data.Args[1:]) // args[0] is the program name
	if err == arg.ErrHelp {
		parser.WriteHelp(data.Stdout)
		return nil
	}
	if err == arg.ErrVersion {
		fmt.Fprintf(data.Stdout, "%s\n", data.Version) // byon: bring your own newline
		return nil
	}
	if err != nil {
		return cliUtil.CliParseError(err) // consistent errors
	}

	// display the license
	if args.License {
		io.WriteString(data.Stdout, data.Copying) // file comes with a trailing nl
		return nil
	}

	if args.Debug {
		data.Flags.Debug = true
	}
	if data.Flags.Logf == nil {
		data.Flags.Logf = func(format string, v ...interface{}) {}
	}

	if ok, err := args.Run(ctx, data); err != nil {
		return err
	} else if ok { // did we activate one of the commands?
		return nil
	}

	// print help if no subcommands are set
	parser.WriteHelp(data.Stdout)

	return nil
}

// Args is the CLI parsing structure and type of the parsed result. This
// particular struct is the top-most one.
type Args struct {
	License bool `arg:"--license" help:"display the license and exit"`

	Debug bool `arg:"--debug,env:GENSON_DEBUG" help:"add additional log messages"`

	RunCmd *RunArgs `arg:"subcommand:run" help:"enumerate every document of a template"`

	DumpCmd *DumpArgs `arg:"subcommand:dump" help:"print a template back in genson notation"`

	CallCmd *CallArgs `arg:"subcommand:call" help:"call a template as a program"`

	// version is a private handle for our version string.
	version string `arg:"-"` // ignored from parsing

	// description is a private handle for our description string.
	description string `arg:"-"` // ignored from parsing
}

// Version returns the version string. Implementing this signature is part of
// the API for the cli library.
func (obj *Args) Version() string {
	return obj.version
}

// Description returns a description string. Implementing this signature is part
// of the API for the cli library.
func (obj *Args) Description() string {
	return obj.description
}

// Run executes the correct subcommand. It errors if there's ever an error. It
// returns true if we did activate one of the subcommands. It returns false if
// we did not. This information is used so that the top-level parser can return
// usage or help information if no subcommand activates.
func (obj *Args) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	var cmd interface {
		Run(context.Context, *cliUtil.Data) (bool, error)
	}
	var name string
	if c := obj.RunCmd; c != nil {
		name, cmd = cliUtil.LookupSubcommand(obj, c), c // "run"
	}
	if c := obj.DumpCmd; c != nil {
		name, cmd = cliUtil.LookupSubcommand(obj, c), c // "dump"
	}
	if c := obj.CallCmd; c != nil {
		name, cmd = cliUtil.LookupSubcommand(obj, c), c // "call"
	}
	if cmd == nil {
		return false, nil // nobody activated
	}
	if data.Flags.Debug {
		data.Flags.Logf("cli: subcommand: %s", name)
	}
	return cmd.Run(ctx, data)
}
