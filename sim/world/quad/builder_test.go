// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package quad

import (
	"math"
	"math/rand"
	"testing"

	"galax/sim/world"
)

// buildOne builds a single-sector tree over bodies and returns the arena and
// the used slot count.
func buildOne(t *testing.T, bodies []world.Body, leafSize int32) (*Arena, int32) {
	t.Helper()

	boundary := world.Reduce(bodies)
	size := boundary.Size()
	center := world.SectorCenter(boundary, 1, 0, 0)

	arena := NewArena(1, int32(2*len(bodies))+4*StackDepth)
	builder := &Builder{Arena: arena, Bodies: bodies, LeafSize: leafSize}

	indices := make([]uint32, len(bodies))
	for i := range indices {
		indices[i] = uint32(i)
	}

	used, err := builder.Build(0, center, size, indices)
	if err != nil {
		t.Fatal(err)
	}
	return arena, used
}

func scatter(n int, seed int64) []world.Body {
	r := rand.New(rand.NewSource(seed))
	bodies := make([]world.Body, n)
	for i := range bodies {
		bodies[i] = world.Body{
			Position: world.Vec2{X: r.Float64() * 100, Y: r.Float64() * 100},
			Mass:     1 + r.Float64(),
			Index:    uint32(i),
		}
	}
	return bodies
}

// aggregate walks a subtree and returns its total mass, mass-weighted centre
// and the reachable body indices. A bucket child contributes its whole
// chain.
func aggregate(t *testing.T, a *Arena, index int32, reached map[uint32]int) (float64, world.Vec2) {
	t.Helper()

	var mass float64
	var weighted world.Vec2

	for i := index; i != Null; {
		current := i
		n := a.At(i)
		i = n.NextInLeaf

		switch n.Kind {
		case KindBody:
			reached[n.Body]++
			mass += n.Mass
			weighted = weighted.AddScaled(n.CenterOfMass, n.Mass)

		case KindInternal:
			var childMass float64
			var childWeighted world.Vec2
			for _, child := range n.Children {
				if child == Null {
					continue
				}
				m, w := aggregate(t, a, child, reached)
				childMass += m
				childWeighted = childWeighted.Add(w)
			}

			if relDiff(childMass, n.Mass) > 1e-9 {
				t.Fatalf("node %d: mass %v != children sum %v", current, n.Mass, childMass)
			}
			com := childWeighted.Div(childMass)
			if relDiff(com.X, n.CenterOfMass.X) > 1e-9 || relDiff(com.Y, n.CenterOfMass.Y) > 1e-9 {
				t.Fatalf("node %d: centre of mass %+v != children mean %+v", current, n.CenterOfMass, com)
			}

			mass += n.Mass
			weighted = weighted.AddScaled(n.CenterOfMass, n.Mass)

		default:
			t.Fatalf("reached empty slot %d", current)
		}
	}

	return mass, weighted
}

func relDiff(a, b float64) float64 {
	diff := math.Abs(a - b)
	if diff == 0 {
		return 0
	}
	return diff / math.Max(math.Abs(a), math.Abs(b))
}

func TestBuildAggregateInvariants(t *testing.T) {
	for _, leafSize := range []int32{1, 2, 8, 32} {
		bodies := scatter(500, int64(leafSize))
		a, _ := buildOne(t, bodies, leafSize)

		reached := make(map[uint32]int)
		mass, _ := aggregate(t, a, 0, reached)

		var total float64
		for i := range bodies {
			total += bodies[i].Mass
		}
		if relDiff(mass, total) > 1e-9 {
			t.Errorf("leafSize %d: tree mass %v want %v", leafSize, mass, total)
		}

		// Every body reachable exactly once.
		if len(reached) != len(bodies) {
			t.Fatalf("leafSize %d: reached %d bodies want %d", leafSize, len(reached), len(bodies))
		}
		for index, count := range reached {
			if count != 1 {
				t.Errorf("leafSize %d: body %d reached %d times", leafSize, index, count)
			}
		}

		if root := a.At(0); root.Total != uint32(len(bodies)) {
			t.Errorf("leafSize %d: root total %d want %d", leafSize, root.Total, len(bodies))
		}
	}
}

func TestBuildQuadrantRule(t *testing.T) {
	bodies := scatter(300, 99)
	a, used := buildOne(t, bodies, 4)

	for i := int32(0); i < used; i++ {
		n := a.At(i)
		if n.Kind != KindInternal {
			continue
		}
		for quadrant, child := range n.Children {
			for c := child; c != Null; c = a.At(c).NextInLeaf {
				if got := n.quadrant(a.At(c).CenterOfMass); got != quadrant {
					t.Fatalf("node %d child in slot %d re-derives to %d", i, quadrant, got)
				}
			}
		}
	}
}

func TestBuildSingleWriteDiscipline(t *testing.T) {
	bodies := scatter(400, 5)
	a, used := buildOne(t, bodies, 8)

	for i := int32(0); i < used; i++ {
		if a.At(i).Kind == KindEmpty {
			t.Errorf("slot %d inside used prefix is empty", i)
		}
	}
	for i := used; i < a.ChunkCap(); i++ {
		if a.At(i).Kind != KindEmpty {
			t.Errorf("slot %d beyond used prefix was written", i)
		}
	}

	// Children strictly shrink.
	for i := int32(0); i < used; i++ {
		n := a.At(i)
		if n.Kind != KindInternal {
			continue
		}
		for _, child := range n.Children {
			if child != Null && a.At(child).Kind == KindInternal && a.At(child).Size >= n.Size {
				t.Errorf("child %d of node %d does not shrink", child, i)
			}
		}
	}
}

func TestBuildPrependOrder(t *testing.T) {
	// Coincident bodies share one bucket; the last inserted must be at the
	// head.
	position := world.Vec2{X: 10, Y: 10}
	bodies := []world.Body{
		{Position: position, Mass: 1, Index: 0},
		{Position: position, Mass: 1, Index: 1},
		{Position: world.Vec2{X: 90, Y: 90}, Mass: 1, Index: 2},
		{Position: position, Mass: 1, Index: 3},
	}
	a, _ := buildOne(t, bodies, 8)

	root := a.At(0)
	head := root.Children[SW]
	if head == Null {
		t.Fatal("sw bucket missing")
	}

	var order []uint32
	for i := head; i != Null; i = a.At(i).NextInLeaf {
		order = append(order, a.At(i).Body)
	}

	want := []uint32{3, 1, 0}
	if len(order) != len(want) {
		t.Fatalf("bucket %v want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("bucket %v want %v", order, want)
		}
	}
	if a.At(head).LeafCount != 3 {
		t.Errorf("head leaf count %d want 3", a.At(head).LeafCount)
	}
}

func TestBuildBucketSplit(t *testing.T) {
	// Three bodies in the same quadrant with L=2: the third arrival upgrades
	// the slot to a half-size internal at a quarter-offset centre.
	bodies := []world.Body{
		{Position: world.Vec2{X: 10, Y: 10}, Mass: 1, Index: 0},
		{Position: world.Vec2{X: 20, Y: 20}, Mass: 1, Index: 1},
		{Position: world.Vec2{X: 30, Y: 30}, Mass: 1, Index: 2},
		{Position: world.Vec2{X: 100, Y: 100}, Mass: 1, Index: 3},
	}
	a, _ := buildOne(t, bodies, 2)

	root := a.At(0)
	split := root.Children[SW]
	if split == Null || a.At(split).Kind != KindInternal {
		t.Fatal("sw slot did not split")
	}

	n := a.At(split)
	if n.Size != root.Size/2 {
		t.Errorf("split size %v want %v", n.Size, root.Size/2)
	}
	wantCenter := world.Vec2{X: root.Center.X - root.Size/4, Y: root.Center.Y - root.Size/4}
	if n.Center != wantCenter {
		t.Errorf("split centre %+v want %+v", n.Center, wantCenter)
	}
	if n.Total != 3 {
		t.Errorf("split total %d want 3", n.Total)
	}
}

func TestBuildFourCornerLeaves(t *testing.T) {
	// One body per quadrant with L=1: the root keeps four singleton buckets
	// and allocates nothing else.
	bodies := []world.Body{
		{Position: world.Vec2{X: -0.25, Y: -0.25}, Mass: 1, Index: 0},
		{Position: world.Vec2{X: -0.25, Y: 0.25}, Mass: 1, Index: 1},
		{Position: world.Vec2{X: 0.25, Y: -0.25}, Mass: 1, Index: 2},
		{Position: world.Vec2{X: 0.25, Y: 0.25}, Mass: 1, Index: 3},
	}
	a, used := buildOne(t, bodies, 1)

	if used != 5 {
		t.Fatalf("used %d slots want 5", used)
	}

	root := a.At(0)
	wantBody := [4]uint32{0, 1, 2, 3} // sw, nw, se, ne insertion order
	for quadrant, child := range root.Children {
		if child == Null {
			t.Fatalf("quadrant %d empty", quadrant)
		}
		n := a.At(child)
		if n.Kind != KindBody || n.LeafCount != 1 || n.NextInLeaf != Null {
			t.Fatalf("quadrant %d is not a singleton bucket", quadrant)
		}
		if n.Body != wantBody[quadrant] {
			t.Errorf("quadrant %d holds body %d want %d", quadrant, n.Body, wantBody[quadrant])
		}
	}
}

func TestBuildArenaOverflow(t *testing.T) {
	bodies := scatter(64, 11)
	boundary := world.Reduce(bodies)

	arena := NewArena(1, 16) // far too small
	builder := &Builder{Arena: arena, Bodies: bodies, LeafSize: 4}

	indices := make([]uint32, len(bodies))
	for i := range indices {
		indices[i] = uint32(i)
	}

	_, err := builder.Build(0, world.SectorCenter(boundary, 1, 0, 0), boundary.Size(), indices)
	if err == nil {
		t.Fatal("expected arena overflow")
	}
}

func BenchmarkBuild(b *testing.B) {
	bodies := scatter(4096, 1)
	boundary := world.Reduce(bodies)
	center := world.SectorCenter(boundary, 1, 0, 0)
	size := boundary.Size()

	indices := make([]uint32, len(bodies))
	for i := range indices {
		indices[i] = uint32(i)
	}

	arena := NewArena(1, int32(2*len(bodies))+4*StackDepth)
	builder := &Builder{Arena: arena, Bodies: bodies, LeafSize: 32}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		arena.Reset()
		if _, err := builder.Build(0, center, size, indices); err != nil {
			b.Fatal(err)
		}
	}
}
