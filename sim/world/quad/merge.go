// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package quad

import (
	"fmt"

	"galax/sim/world"
)

// Merge pairs adjacent sector roots into synthetic parents over log₂(sectors)
// levels, producing one root covering the whole simulation square. roots is
// indexed sx + sectors·sy and holds Null for empty sectors. Synthetic nodes
// are allocated sequentially from the merge chunk; their centre of mass is
// the exact mass-weighted mean of their children, so the per-sector
// invariants survive the merge unchanged.
//
// Merge runs single-threaded: each level reads the one below it, and the
// total work is only O(sectors²).
func Merge(a *Arena, roots []int32, sectors int32, origin world.Vec2, size float64) (int32, error) {
	if sectors == 1 {
		return roots[0], nil
	}

	cursor := a.MergeBase()
	limit := cursor + a.ChunkCap()

	grid := roots
	for level := sectors; level > 1; {
		next := level / 2
		side := size / float64(next)
		merged := make([]int32, next*next)

		for j := int32(0); j < next; j++ {
			for i := int32(0); i < next; i++ {
				if cursor >= limit {
					return Null, fmt.Errorf("merge: %w", ErrArenaOverflow)
				}
				index := cursor
				cursor++

				n := a.At(index)
				n.Kind = KindInternal
				n.Size = side
				n.Center = world.Vec2{
					X: origin.X + side*(float64(i)+0.5),
					Y: origin.Y + side*(float64(j)+0.5),
				}

				n.attach(a, SW, grid[(2*i)+level*(2*j)])
				n.attach(a, NW, grid[(2*i)+level*(2*j+1)])
				n.attach(a, SE, grid[(2*i+1)+level*(2*j)])
				n.attach(a, NE, grid[(2*i+1)+level*(2*j+1)])

				if n.Total == 0 {
					merged[i+next*j] = Null
				} else {
					n.CenterOfMass.X /= n.Mass
					n.CenterOfMass.Y /= n.Mass
					merged[i+next*j] = index
				}
			}
		}

		grid = merged
		level = next
	}

	return grid[0], nil
}

// attach links a sub-tree as the given child and accumulates its
// mass-weighted centre into the still-unnormalized sums.
func (n *Node) attach(a *Arena, quadrant int, child int32) {
	if child == Null {
		return
	}
	c := a.At(child)
	n.Children[quadrant] = child
	n.CenterOfMass.X += c.Mass * c.CenterOfMass.X
	n.CenterOfMass.Y += c.Mass * c.CenterOfMass.Y
	n.Mass += c.Mass
	n.Total += c.Total
}
