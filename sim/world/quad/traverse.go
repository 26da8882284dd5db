// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package quad

import (
	"math"

	"galax/sim/world"
)

// Traverser computes Barnes–Hut forces against a built tree. It only reads
// the arena, so any number of traversers can run concurrently over disjoint
// body ranges. The descent stack is reused across bodies.
type Traverser struct {
	Arena   *Arena
	G       float64
	Theta   float64
	Epsilon float64

	stack [StackDepth]int32
}

// ForceOn accumulates the net gravitational force on b into b.Force.
//
// Internal nodes far enough away (size/d < θ) act as point masses at their
// centre of mass; coincidence with the centre of mass (d = 0) forces descent
// instead of dividing by zero. Leaf buckets are walked directly, skipping
// the body itself by stable index and any pair closer than ε.
func (t *Traverser) ForceOn(b *world.Body, root int32) error {
	if root == Null {
		return nil
	}
	a := t.Arena

	depth := 0
	t.stack[depth] = root
	depth++

	for depth > 0 {
		depth--
		index := t.stack[depth]
		n := a.At(index)

		if n.Kind == KindInternal {
			dx := n.CenterOfMass.X - b.Position.X
			dy := n.CenterOfMass.Y - b.Position.Y
			d2 := dx*dx + dy*dy
			d := math.Sqrt(d2)

			if d == 0 || n.Size/d >= t.Theta {
				if depth >= StackDepth-4 {
					return ErrStackOverflow
				}
				for _, child := range n.Children {
					if child != Null {
						t.stack[depth] = child
						depth++
					}
				}
				continue
			}

			f := t.G * b.Mass * n.Mass / d2
			b.Force.X += f * dx / d
			b.Force.Y += f * dy / d
			continue
		}

		// Leaf bucket: direct pairwise against every occupant.
		for i := index; i != Null; {
			occupant := a.At(i)
			i = occupant.NextInLeaf

			if occupant.Body == b.Index {
				continue
			}
			dx := occupant.CenterOfMass.X - b.Position.X
			dy := occupant.CenterOfMass.Y - b.Position.Y
			d := math.Sqrt(dx*dx + dy*dy)
			if d <= t.Epsilon {
				continue
			}
			f := t.G * b.Mass * occupant.Mass / (d * d)
			b.Force.X += f * dx / d
			b.Force.Y += f * dy / d
		}
	}

	return nil
}
