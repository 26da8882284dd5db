// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package quad

import "galax/sim/world"

// Node kinds. A freshly reset arena slot is KindEmpty; every allocated slot
// is a body leaf or an internal node.
const (
	KindEmpty uint8 = iota
	KindBody
	KindInternal
)

// Child slots. The order is observable through the arena layout and the
// merger, so it is fixed.
const (
	SW = iota
	NW
	SE
	NE
)

// Null is the empty child / end-of-bucket sentinel.
const Null int32 = -1

type (
	// Node is one slot of the arena. Children and bucket links are arena
	// indices, Null when absent.
	Node struct {
		// CenterOfMass and Mass aggregate the subtree. For a body leaf they
		// are the body's position and mass.
		CenterOfMass world.Vec2
		Mass         float64

		// Center and Size describe the geometric square of an internal
		// node. Children always have half the size.
		Center world.Vec2
		Size   float64

		Children [4]int32

		// Total counts bodies in the subtree.
		Total uint32
		Kind  uint8

		// Body is the stable body index, valid when Kind == KindBody.
		Body uint32

		// LeafCount is the bucket length when this leaf heads a bucket;
		// NextInLeaf chains the rest of the bucket.
		LeafCount  int32
		NextInLeaf int32
	}
)

// quadrant places a point relative to the node's geometric centre. Equality
// biases toward the low side on both axes; reference outputs depend on this
// bit-for-bit.
func (n *Node) quadrant(p world.Vec2) int {
	if p.X <= n.Center.X {
		if p.Y <= n.Center.Y {
			return SW
		}
		return NW
	}
	if p.Y <= n.Center.Y {
		return SE
	}
	return NE
}

// childCenter is the centre of the given quadrant's sub-square, a quarter
// side off on each axis.
func (n *Node) childCenter(quadrant int) world.Vec2 {
	offset := n.Size / 4
	center := n.Center
	switch quadrant {
	case SW:
		center.X -= offset
		center.Y -= offset
	case NW:
		center.X -= offset
		center.Y += offset
	case SE:
		center.X += offset
		center.Y -= offset
	default:
		center.X += offset
		center.Y += offset
	}
	return center
}

// absorb folds a child's aggregate into the node's running centre of mass.
func (n *Node) absorb(child *Node) {
	mass := n.Mass + child.Mass
	n.CenterOfMass.X = (n.Mass*n.CenterOfMass.X + child.Mass*child.CenterOfMass.X) / mass
	n.CenterOfMass.Y = (n.Mass*n.CenterOfMass.Y + child.Mass*child.CenterOfMass.Y) / mass
	n.Mass = mass
	n.Total++
}
