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

// Package core imports all of the core function packages so that they can
// register themselves.
package core

import (
	// import so the funcs register
	_ "github.com/purpleidea/genson/lang/funcs/core/math"
	_ "github.com/purpleidea/genson/lang/funcs/core/random"
	_ "github.com/purpleidea/genson/lang/funcs/core/strings"
)
