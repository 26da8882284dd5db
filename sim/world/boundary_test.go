// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	"math/rand"
	"testing"
)

func randomBodies(n int, seed int64) []Body {
	r := rand.New(rand.NewSource(seed))
	bodies := make([]Body, n)
	for i := range bodies {
		bodies[i] = Body{
			Position: Vec2{X: r.Float64()*2000 - 1000, Y: r.Float64()*2000 - 1000},
			Mass:     1 + r.Float64(),
			Index:    uint32(i),
		}
	}
	return bodies
}

func TestReduceMatchesSequential(t *testing.T) {
	bodies := randomBodies(1000, 42)

	sequential := BoundaryAt(bodies[0].Position)
	for i := range bodies {
		sequential.Extend(bodies[i].Position)
	}

	// Fold partials in an arbitrary split; min/max must commute.
	folded := Reduce(bodies[:1])
	for _, r := range Ranges(len(bodies), 7) {
		folded = folded.Union(Reduce(bodies[r.Start:r.End]))
	}

	if folded != sequential {
		t.Errorf("folded boundary %+v != sequential %+v", folded, sequential)
	}
}

func TestBoundarySize(t *testing.T) {
	b := Boundary{Min: Vec2{X: -1, Y: 2}, Max: Vec2{X: 5, Y: 4}}
	if got := b.Size(); got != 6 {
		t.Errorf("size %v want 6", got)
	}

	degenerate := BoundaryAt(Vec2{X: 3, Y: 3})
	if got := degenerate.Size(); got != 0 {
		t.Errorf("degenerate size %v want 0", got)
	}
}

func TestRangesPartition(t *testing.T) {
	for _, tc := range [][2]int{{10, 3}, {1, 8}, {16384, 8}, {7, 7}, {5, 100}} {
		n, parts := tc[0], tc[1]
		ranges := Ranges(n, parts)

		next := 0
		for _, r := range ranges {
			if r.Start != next {
				t.Fatalf("Ranges(%d, %d): gap at %d", n, parts, r.Start)
			}
			if r.Len() <= 0 {
				t.Fatalf("Ranges(%d, %d): empty range", n, parts)
			}
			next = r.End
		}
		if next != n {
			t.Fatalf("Ranges(%d, %d): covered %d of %d", n, parts, next, n)
		}
	}
}
