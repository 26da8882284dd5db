// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package quad

import (
	"math"
	"testing"

	"galax/sim/world"
)

const testG = 100.0

// directForce is the O(N²) reference sum with the same ε guard.
func directForce(bodies []world.Body, i int, epsilon float64) world.Vec2 {
	var force world.Vec2
	b := &bodies[i]
	for j := range bodies {
		if bodies[j].Index == b.Index {
			continue
		}
		dx := bodies[j].Position.X - b.Position.X
		dy := bodies[j].Position.Y - b.Position.Y
		d := math.Sqrt(dx*dx + dy*dy)
		if d <= epsilon {
			continue
		}
		f := testG * b.Mass * bodies[j].Mass / (d * d)
		force.X += f * dx / d
		force.Y += f * dy / d
	}
	return force
}

// With θ = 0 every internal node fails the opening criterion, so the
// traversal degenerates to direct summation over the leaves.
func TestTraverseThetaZeroMatchesDirect(t *testing.T) {
	bodies := scatter(300, 31)
	arena, root := buildGlobal(t, bodies, 4, 8)

	traverser := &Traverser{Arena: arena, G: testG, Theta: 0, Epsilon: 1e-5}
	for i := range bodies {
		body := bodies[i]
		if err := traverser.ForceOn(&body, root); err != nil {
			t.Fatal(err)
		}

		want := directForce(bodies, i, 1e-5)
		norm := want.Length()
		if math.Abs(body.Force.X-want.X) > 1e-6*norm || math.Abs(body.Force.Y-want.Y) > 1e-6*norm {
			t.Fatalf("body %d: force %+v want %+v", i, body.Force, want)
		}
	}
}

// A far cluster must act as one point mass under a permissive θ.
func TestTraverseApproximatesFarCluster(t *testing.T) {
	bodies := []world.Body{
		{Position: world.Vec2{X: 0, Y: 0}, Mass: 1, Index: 0},
		{Position: world.Vec2{X: 1000, Y: 0.5}, Mass: 3, Index: 1},
		{Position: world.Vec2{X: 1000.5, Y: 0}, Mass: 3, Index: 2},
		{Position: world.Vec2{X: 1000.25, Y: 1}, Mass: 3, Index: 3},
	}
	arena, root := buildGlobal(t, bodies, 2, 1)

	traverser := &Traverser{Arena: arena, G: testG, Theta: 0.5, Epsilon: 1e-5}
	body := bodies[0]
	if err := traverser.ForceOn(&body, root); err != nil {
		t.Fatal(err)
	}

	direct := directForce(bodies, 0, 1e-5)
	if relDiff(body.Force.X, direct.X) > 1e-3 {
		t.Errorf("approximate force %+v too far from direct %+v", body.Force, direct)
	}
}

func TestTraverseColocatedPair(t *testing.T) {
	position := world.Vec2{X: 5, Y: 5}
	bodies := []world.Body{
		{Position: position, Mass: 1, Index: 0},
		{Position: position, Mass: 1, Index: 1},
	}

	// The zero-size domain degenerates every level; the pair shares one
	// bucket and the ε guard keeps the force finite and zero.
	arena, root := buildGlobal(t, bodies, 1, 4)

	traverser := &Traverser{Arena: arena, G: testG, Theta: 0.5, Epsilon: 1e-5}
	for i := range bodies {
		body := bodies[i]
		if err := traverser.ForceOn(&body, root); err != nil {
			t.Fatal(err)
		}
		if body.Force != (world.Vec2{}) {
			t.Errorf("body %d: force %+v want zero", i, body.Force)
		}
	}
}

func TestTraverseSelfOnly(t *testing.T) {
	bodies := []world.Body{{Position: world.Vec2{X: 1, Y: 2}, Mass: 4, Index: 0}}
	arena, root := buildGlobal(t, bodies, 1, 4)

	traverser := &Traverser{Arena: arena, G: testG, Theta: 0.5, Epsilon: 1e-5}
	body := bodies[0]
	if err := traverser.ForceOn(&body, root); err != nil {
		t.Fatal(err)
	}
	if body.Force != (world.Vec2{}) {
		t.Errorf("force %+v want zero", body.Force)
	}
}
