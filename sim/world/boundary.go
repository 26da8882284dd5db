// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

// Boundary is the axis-aligned bounding box of the body set. It is
// recomputed from scratch each iteration.
type Boundary struct {
	Min Vec2
	Max Vec2
}

// BoundaryAt seeds a boundary from a single position.
func BoundaryAt(position Vec2) Boundary {
	return Boundary{Min: position, Max: position}
}

// Extend grows the boundary to contain position.
func (b *Boundary) Extend(position Vec2) {
	if position.X < b.Min.X {
		b.Min.X = position.X
	}
	if position.X > b.Max.X {
		b.Max.X = position.X
	}
	if position.Y < b.Min.Y {
		b.Min.Y = position.Y
	}
	if position.Y > b.Max.Y {
		b.Max.Y = position.Y
	}
}

// Union combines two boundaries. Min/max commute so partial boundaries can
// be folded in any order.
func (b Boundary) Union(other Boundary) Boundary {
	b.Extend(other.Min)
	b.Extend(other.Max)
	return b
}

// Size is the side of the simulation square: the larger of the two extents,
// anchored at Min.
func (b Boundary) Size() float64 {
	return max(b.Max.X-b.Min.X, b.Max.Y-b.Min.Y)
}

// Reduce computes the boundary of one body range, seeded from its first
// element.
func Reduce(bodies []Body) Boundary {
	boundary := BoundaryAt(bodies[0].Position)
	for i := 1; i < len(bodies); i++ {
		boundary.Extend(bodies[i].Position)
	}
	return boundary
}
