// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package galaxy

import (
	"github.com/aquilax/go-perlin"

	"galax/sim/world"
)

const (
	cloudFrequency = 0.002
	cloudThreshold = -0.1

	// After this many rejected candidates an orbiter is placed anyway so
	// thin noise can never stall generation.
	maxRejects = 16
)

// Cloud generates the same two-galaxy layout as Spiral but shapes each disc
// with perlin noise: candidate orbits landing in low-density noise are
// re-rolled, which clumps the discs into filaments.
func Cloud(num int, seed int64, g float64) []world.Body {
	r := newSource(seed)
	noise := perlin.NewPerlin(1.5, 2.0, 4, seed)

	accept := func(p world.Vec2) bool {
		return noise.Noise2D(p.X*cloudFrequency, p.Y*cloudFrequency) > cloudThreshold
	}

	bodies := make([]world.Body, num)

	num1 := num / 8
	disc(r, bodies[:num1], center1, radius1, 1, g, accept)
	disc(r, bodies[num1:], center2, radius2, 2, g, accept)

	for i := range bodies {
		bodies[i].Index = uint32(i)
	}
	return bodies
}
