// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package quad

import (
	"fmt"

	"galax/sim/world"
)

// StackDepth bounds the explicit work stacks of the builder and the force
// traversal. Exceeding it is fatal rather than a native stack overflow.
const StackDepth = 1024

// insertion is one pending (parent, child) dispatch.
type insertion struct {
	parent int32
	child  int32
}

// Builder constructs one sector-local quadtree per call, writing only inside
// that sector's arena chunk. Insertion is iterative: each body leaf is
// allocated at the chunk's write cursor and sunk through the tree with an
// explicit stack. A builder is not safe for concurrent use; the hub runs one
// per worker.
type Builder struct {
	Arena    *Arena
	Bodies   []world.Body
	LeafSize int32

	stack [StackDepth]insertion
	depth int
}

// Build constructs the tree for one sector over the bodies named by indices.
// center and size describe the sector square. It returns the number of arena
// slots consumed.
func (b *Builder) Build(sector int32, center world.Vec2, size float64, indices []uint32) (int32, error) {
	a := b.Arena
	base := a.SectorBase(sector)
	limit := base + a.ChunkCap()
	b.depth = 0

	root := a.At(base)
	if root.Kind != KindEmpty {
		return 0, fmt.Errorf("sector %d: root already allocated", sector)
	}
	root.Kind = KindInternal
	root.Center = center
	root.Size = size

	next := base + 1
	for _, index := range indices {
		if next >= limit {
			return 0, fmt.Errorf("sector %d: %w: %d bodies into %d slots", sector, ErrArenaOverflow, len(indices), a.ChunkCap())
		}
		body := &b.Bodies[index]
		leaf := next
		next++

		n := a.At(leaf)
		if n.Kind != KindEmpty {
			return 0, fmt.Errorf("sector %d: body slot %d already allocated", sector, leaf)
		}
		n.Kind = KindBody
		n.CenterOfMass = body.Position
		n.Mass = body.Mass
		n.Total = 1
		n.Body = body.Index

		b.push(base, leaf)
		var err error
		if next, err = b.drain(sector, next, limit); err != nil {
			return 0, err
		}
	}

	return next - base, nil
}

// drain dispatches pending insertions until the stack is empty, allocating
// internal nodes at the write cursor as buckets split. Returns the advanced
// cursor.
func (b *Builder) drain(sector int32, next, limit int32) (int32, error) {
	a := b.Arena

	for b.depth > 0 {
		b.depth--
		in := b.stack[b.depth]

		parent := a.At(in.parent)
		child := a.At(in.child)

		quadrant := parent.quadrant(child.CenterOfMass)
		slot := parent.Children[quadrant]

		switch {
		case slot == Null:
			// Empty slot: the child starts a fresh bucket.
			parent.Children[quadrant] = in.child
			child.LeafCount = 1

		case a.At(slot).Kind == KindBody && a.At(slot).LeafCount < b.LeafSize:
			// Room in the bucket: prepend. Last-inserted ends up at the
			// head, which is observable for coincident bodies.
			child.LeafCount = a.At(slot).LeafCount + 1
			child.NextInLeaf = slot
			parent.Children[quadrant] = in.child

		case a.At(slot).Kind == KindBody:
			// Full bucket: upgrade the slot to an internal node of half the
			// parent's size and re-sink every occupant plus the child.
			if next >= limit {
				return next, fmt.Errorf("sector %d: %w: no slot left for bucket split", sector, ErrArenaOverflow)
			}
			split := next
			next++

			n := a.At(split)
			if n.Kind != KindEmpty {
				return next, fmt.Errorf("sector %d: split slot %d already allocated", sector, split)
			}
			n.Kind = KindInternal
			n.Size = parent.Size / 2
			n.Center = parent.childCenter(quadrant)
			parent.Children[quadrant] = split

			for i := slot; i != Null; {
				occupant := a.At(i)
				following := occupant.NextInLeaf
				occupant.NextInLeaf = Null
				occupant.LeafCount = 0
				if err := b.pushChecked(sector, split, i); err != nil {
					return next, err
				}
				i = following
			}
			if err := b.pushChecked(sector, split, in.child); err != nil {
				return next, err
			}

		default:
			// Internal node: keep sinking.
			if err := b.pushChecked(sector, slot, in.child); err != nil {
				return next, err
			}
		}

		// Every ancestor the child passes through absorbs it exactly once.
		parent.absorb(child)
	}

	return next, nil
}

func (b *Builder) push(parent, child int32) {
	b.stack[b.depth] = insertion{parent: parent, child: child}
	b.depth++
}

func (b *Builder) pushChecked(sector int32, parent, child int32) error {
	if b.depth >= StackDepth {
		b.depth = 0
		return fmt.Errorf("sector %d: %w", sector, ErrStackOverflow)
	}
	b.push(parent, child)
	return nil
}
