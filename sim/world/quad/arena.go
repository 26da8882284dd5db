// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package quad

// Arena is a preallocated pool of nodes addressed by int32 indices.
// It is logically split into sectors+1 chunks of chunk slots each: one chunk
// per sector tree plus a final chunk for the merge phase. A chunk is written
// only by the task that owns it, so builders need no synchronization.
type Arena struct {
	nodes   []Node
	chunk   int32
	sectors int32
}

// NewArena allocates an arena for sectors chunks of chunk capacity, plus the
// merge chunk. The arena starts reset.
func NewArena(sectors, chunk int32) *Arena {
	a := &Arena{
		nodes:   make([]Node, int(sectors+1)*int(chunk)),
		chunk:   chunk,
		sectors: sectors,
	}
	a.Reset()
	return a
}

// Reset returns every slot to the unallocated state: kind empty, children
// and bucket links null. The builders' double-allocation checks rely on a
// reset arena, so this runs before every build.
func (a *Arena) Reset() {
	for i := range a.nodes {
		a.nodes[i] = Node{
			Children:   [4]int32{Null, Null, Null, Null},
			NextInLeaf: Null,
		}
	}
}

// ResetPrefix returns only the first n slots to the unallocated state. The
// preflight pass uses it to recycle its scratch chunk without paying for the
// whole arena.
func (a *Arena) ResetPrefix(n int32) {
	for i := int32(0); i < n; i++ {
		a.nodes[i] = Node{
			Children:   [4]int32{Null, Null, Null, Null},
			NextInLeaf: Null,
		}
	}
}

// At returns the node at an arena index. The pointer is valid until the next
// Reset.
func (a *Arena) At(i int32) *Node {
	return &a.nodes[i]
}

// Len is the total slot count.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// ChunkCap is the per-chunk capacity.
func (a *Arena) ChunkCap() int32 {
	return a.chunk
}

// SectorBase is the first slot of a sector's chunk.
func (a *Arena) SectorBase(sector int32) int32 {
	return sector * a.chunk
}

// MergeBase is the first slot of the merge chunk.
func (a *Arena) MergeBase() int32 {
	return a.sectors * a.chunk
}
