// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

// AssignSectors rewrites the Sector field of every body in the slice for an
// S×S grid over the simulation square. Safe to call in parallel on disjoint
// body ranges sharing one boundary.
//
// A body sitting exactly on the max edge would index one past the grid, so
// the index is clamped back to the last row/column. A degenerate square
// (all bodies coincident, or a single body) has side 0; everything lands in
// sector 0.
func AssignSectors(bodies []Body, boundary Boundary, sectors int32) {
	side := boundary.Size() / float64(sectors)
	if !(side > 0) {
		for i := range bodies {
			bodies[i].Sector = 0
		}
		return
	}

	for i := range bodies {
		body := &bodies[i]
		sx := int32((body.Position.X - boundary.Min.X) / side)
		if sx >= sectors {
			sx = sectors - 1
		}
		sy := int32((body.Position.Y - boundary.Min.Y) / side)
		if sy >= sectors {
			sy = sectors - 1
		}
		body.Sector = sx + sectors*sy
	}
}

// SectorCenter is the geometric centre of sector (sx, sy).
func SectorCenter(boundary Boundary, sectors int32, sx, sy int32) Vec2 {
	side := boundary.Size() / float64(sectors)
	return Vec2{
		X: boundary.Min.X + (float64(sx)+0.5)*side,
		Y: boundary.Min.Y + (float64(sy)+0.5)*side,
	}
}
