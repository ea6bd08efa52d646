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

package main

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"os"

	"github.com/purpleidea/genson/cli"
	cliUtil "github.com/purpleidea/genson/cli/util"
)

// These constants are some global variables that are used throughout the code.
const (
	Debug   = false // add additional log messages
	Verbose = false // add extra log message output

	tagline = "turn one templated document into a grid of documents"
)

// set at compile time
var (
	program string
	version string
)

//go:embed COPYING
var copying string

func main() {
	if program == "" {
		program = "genson"
	}
	if version == "" {
		version = "unknown"
	}
	data := &cliUtil.Data{
		Program: program,
		Version: version,
		Copying: copying,
		Tagline: tagline,
		Flags: cliUtil.Flags{
			Debug:   Debug,
			Verbose: Verbose,
			Logf:    log.Printf,
		},
		Args: os.Args,
	}
	if err := cli.CLI(context.Background(), data); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
		return
	}
}
