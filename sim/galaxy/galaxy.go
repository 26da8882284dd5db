// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package galaxy produces initial body sets: a pair of rotating discs on a
// collision course.
package galaxy

import (
	"math"
	"math/rand"

	"galax/sim/world"
)

const (
	// Disc radii and galactic centres of the two galaxies.
	radius1 = 300.0
	radius2 = 350.0

	// Orbits start this far out from the galactic centre.
	minOrbit = 25.0
)

var (
	center1 = world.Vec2{X: 0, Y: 0}
	center2 = world.Vec2{X: -1800, Y: -1200}
)

func newSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Spiral generates the default body set: num/8 bodies around the first
// galactic centre, the rest around the second. Each galaxy gets a heavy
// central body of mass equal to its population and a disc of unit-ish
// orbiters on tangential orbits. Stable indices are contiguous.
func Spiral(num int, seed int64, g float64) []world.Body {
	r := newSource(seed)
	bodies := make([]world.Body, num)

	num1 := num / 8
	disc(r, bodies[:num1], center1, radius1, 1, g, nil)
	disc(r, bodies[num1:], center2, radius2, 2, g, nil)

	for i := range bodies {
		bodies[i].Index = uint32(i)
	}
	return bodies
}

// disc fills bodies with one galaxy: a central heavy body followed by
// orbiters at uniform angle and radius. The tangential speed balances the
// central pull plus the disc's own enclosed mass. accept, when non-nil,
// filters candidate positions (see Cloud).
func disc(r *rand.Rand, bodies []world.Body, center world.Vec2, radius float64, color uint8, g float64, accept func(world.Vec2) bool) {
	n := len(bodies)
	if n == 0 {
		return
	}

	bodies[0] = world.Body{
		Position: center,
		Mass:     float64(n),
		Color:    0,
	}

	for i := 1; i < n; i++ {
		var position world.Vec2
		var theta, orbit float64
		for attempt := 0; ; attempt++ {
			theta = 2 * math.Pi * r.Float64()
			orbit = minOrbit + radius*r.Float64()
			position = world.Vec2{
				X: center.X + orbit*math.Cos(theta),
				Y: center.Y + orbit*math.Sin(theta),
			}
			if accept == nil || attempt >= maxRejects || accept(position) {
				break
			}
		}

		speed := math.Sqrt(g*float64(n)/orbit + g*1.5*float64(n)*orbit*orbit/(radius*radius*radius))

		bodies[i] = world.Body{
			Position: position,
			Velocity: world.Vec2{X: -math.Sin(theta) * speed, Y: math.Cos(theta) * speed},
			Mass:     1 + r.Float64(),
			Color:    color,
		}
	}
}
