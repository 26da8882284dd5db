// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import "testing"

func TestAssignSectorsContainment(t *testing.T) {
	const sectors = 8

	bodies := randomBodies(5000, 7)
	boundary := Reduce(bodies)
	side := boundary.Size() / sectors

	AssignSectors(bodies, boundary, sectors)

	for i := range bodies {
		body := &bodies[i]
		if body.Sector < 0 || body.Sector >= sectors*sectors {
			t.Fatalf("body %d: sector %d out of range", i, body.Sector)
		}

		sx := body.Sector % sectors
		sy := body.Sector / sectors
		minX := boundary.Min.X + float64(sx)*side
		minY := boundary.Min.Y + float64(sy)*side

		// The high edge belongs to the last row/column via the clamp.
		maxX := minX + side
		maxY := minY + side
		if sx == sectors-1 {
			maxX = boundary.Max.X
		}
		if sy == sectors-1 {
			maxY = boundary.Max.Y
		}

		if body.Position.X < minX || body.Position.X > maxX || body.Position.Y < minY || body.Position.Y > maxY {
			t.Errorf("body %d at %+v escaped sector %d square", i, body.Position, body.Sector)
		}
	}
}

func TestAssignSectorsMaxEdge(t *testing.T) {
	bodies := []Body{
		{Position: Vec2{X: 0, Y: 0}},
		{Position: Vec2{X: 4, Y: 4}},
	}
	boundary := Reduce(bodies)
	AssignSectors(bodies, boundary, 4)

	if bodies[1].Sector != 15 {
		t.Errorf("max-corner body landed in sector %d want 15", bodies[1].Sector)
	}
}

func TestAssignSectorsDegenerate(t *testing.T) {
	// A single body (or all-coincident bodies) gives a zero-size domain.
	bodies := []Body{
		{Position: Vec2{X: 3, Y: -2}},
		{Position: Vec2{X: 3, Y: -2}},
	}
	boundary := Reduce(bodies)
	AssignSectors(bodies, boundary, 16)

	for i := range bodies {
		if bodies[i].Sector != 0 {
			t.Errorf("body %d: sector %d want 0", i, bodies[i].Sector)
		}
	}
}
