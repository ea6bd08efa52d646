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
	"math/rand/v2"
)

// rngStream selects the PCG stream. It never changes, so that the same state
// always produces the same draws.
const rngStream = 0x9e3779b97f4a7c15

// RNG is a random source passed explicitly through an expression graph. It
// is an immutable value: drawing from it produces a new RNG rather than
// modifying this one.
type RNG struct {
	State uint64
}

// NewRNG returns the random source for a seed.
func NewRNG(seed int64) RNG {
	return RNG{State: uint64(seed)}
}

// Rand returns a generator positioned at this state.
func (obj RNG) Rand() *rand.Rand {
	return rand.New(rand.NewPCG(obj.State, rngStream))
}

// String returns a short representation of the state.
func (obj RNG) String() string {
	return fmt.Sprintf("rng(%#x)", obj.State)
}

// NextRNG returns the state which follows whatever was drawn from r.
func NextRNG(r *rand.Rand) RNG {
	return RNG{State: r.Uint64()}
}
