// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

import (
	"fmt"
	"sync"
	"sync/atomic"

	"galax/sim/output"
	"galax/sim/viewer"
	"galax/sim/world"
	"galax/sim/world/quad"
)

// Hub owns the body store, the quad arena and the per-iteration pipeline.
// It is single-threaded itself; parallel phases fan work out to short-lived
// workers and barrier before the next phase. Bodies are partitioned by equal
// ranges, the arena by sector chunks, so no phase needs locks.
type Hub struct {
	config Config

	bodies   []world.Body
	ranges   []world.Range
	boundary world.Boundary
	size     float64

	sectors      int32 // grid width per axis
	sectorBodies [][]uint32
	roots        []int32

	arena      *quad.Arena
	chunkCap   int32
	scratch    *quad.Arena
	globalRoot int32

	sink    output.Sink
	watcher *viewer.Viewer

	timings   *phaseTimer
	iteration int
}

// New creates a Hub over an initialized body set. sink and watcher may be
// nil.
func New(config Config, bodies []world.Body, sink output.Sink, watcher *viewer.Viewer) *Hub {
	sectors := config.Sectors()
	cells := int(sectors) * int(sectors)

	return &Hub{
		config:       config,
		bodies:       bodies,
		ranges:       world.Ranges(len(bodies), config.Parallelism),
		sectors:      sectors,
		sectorBodies: make([][]uint32, cells),
		roots:        make([]int32, cells),
		sink:         sink,
		watcher:      watcher,
		timings:      newPhaseTimer(),
	}
}

// Bodies exposes the body store; tests and diagnostics read it between
// iterations.
func (h *Hub) Bodies() []world.Body {
	return h.bodies
}

// Boundary returns the boundary of the last completed iteration.
func (h *Hub) Boundary() world.Boundary {
	return h.boundary
}

// Run executes the configured number of iterations. The first fatal error
// aborts the run; the arena is never partially committed.
func (h *Hub) Run() error {
	for i := 0; i < h.config.Iterations; i++ {
		if err := h.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step advances the simulation one iteration: boundary, sectors, trees,
// merge, forces, integration, outputs.
func (h *Hub) Step() error {
	h.zeroForces()
	h.computeBoundary()
	h.assignSectors()
	h.partitionSectors()

	if err := h.ensureArena(); err != nil {
		return err
	}
	if err := h.buildTrees(); err != nil {
		return err
	}
	root, err := h.mergeTrees()
	if err != nil {
		return err
	}
	h.globalRoot = root
	if err = h.applyForces(root); err != nil {
		return err
	}

	h.emit()
	h.iteration++
	return nil
}

func (h *Hub) zeroForces() {
	for i := range h.bodies {
		h.bodies[i].Force = world.Vec2{}
	}
}

// computeBoundary reduces min/max over all bodies: one partial reduction per
// body range, folded on the hub goroutine. Min/max commute, so partials can
// arrive in any order.
func (h *Hub) computeBoundary() {
	defer h.timePhase("boundary")()

	partials := make(chan world.Boundary, len(h.ranges))
	for _, r := range h.ranges {
		go func(r world.Range) {
			partials <- world.Reduce(h.bodies[r.Start:r.End])
		}(r)
	}

	boundary := world.BoundaryAt(h.bodies[0].Position)
	for range h.ranges {
		boundary = boundary.Union(<-partials)
	}

	h.boundary = boundary
	h.size = boundary.Size()
}

func (h *Hub) assignSectors() {
	defer h.timePhase("sectors")()

	var wait sync.WaitGroup
	wait.Add(len(h.ranges))
	for _, r := range h.ranges {
		go func(r world.Range) {
			world.AssignSectors(h.bodies[r.Start:r.End], h.boundary, h.sectors)
			wait.Done()
		}(r)
	}
	wait.Wait()
}

// partitionSectors groups body indices by sector. Slices are reused across
// iterations to keep the hot path allocation-free.
func (h *Hub) partitionSectors() {
	defer h.timePhase("partition")()

	for s := range h.sectorBodies {
		h.sectorBodies[s] = h.sectorBodies[s][:0]
	}
	for i := range h.bodies {
		s := h.bodies[i].Sector
		h.sectorBodies[s] = append(h.sectorBodies[s], uint32(i))
	}
}

// ensureArena picks the per-sector chunk capacity and (re)allocates the
// arena when it grows. Fixed mode trusts the caller; computed mode starts
// from the analytic full-tree bound and optionally refines it with a
// counting pass over the actual sector populations.
func (h *Hub) ensureArena() error {
	defer h.timePhase("sizing")()

	var chunk int32
	if h.config.ChunkCap > 0 {
		// Fixed mode trusts the caller; an undersized chunk fails the build
		// or the merge instead of being silently grown.
		chunk = int32(h.config.ChunkCap)
	} else {
		chunk = quad.TreeNodes(int32(h.config.SectorExp))
		if h.config.Preflight {
			counted, err := h.preflight()
			if err != nil {
				return err
			}
			if counted > chunk {
				chunk = counted
			}
		}
		if merge := quad.MergeNodes(h.sectors); merge > chunk {
			chunk = merge
		}
	}

	if h.arena == nil || chunk > h.chunkCap {
		cells := h.sectors * h.sectors
		h.arena = quad.NewArena(cells, chunk)
		h.chunkCap = chunk
	}
	return nil
}

// preflight runs the real builder sequentially into a scratch chunk, one
// sector at a time, and reports the largest slot count any sector needs.
func (h *Hub) preflight() (int32, error) {
	var largest int
	for _, indices := range h.sectorBodies {
		if len(indices) > largest {
			largest = len(indices)
		}
	}

	// Splits allocate beyond the per-body leaves; the stack bound caps how
	// deep a pathological cluster can go before failing anyway.
	capacity := int32(2*largest) + 4*quad.StackDepth
	if h.scratch == nil || h.scratch.ChunkCap() < capacity {
		h.scratch = quad.NewArena(1, capacity)
	}

	side := h.size / float64(h.sectors)
	builder := &quad.Builder{Arena: h.scratch, Bodies: h.bodies, LeafSize: int32(h.config.LeafSize)}

	var needed int32
	for s, indices := range h.sectorBodies {
		if len(indices) == 0 {
			continue
		}
		sx := int32(s) % h.sectors
		sy := int32(s) / h.sectors

		n, err := builder.Build(0, world.SectorCenter(h.boundary, h.sectors, sx, sy), side, indices)
		if err != nil {
			return 0, fmt.Errorf("preflight sector %d: %w", s, err)
		}
		// Leave the scratch chunk reset for the next sector and the next
		// iteration's pass.
		h.scratch.ResetPrefix(n)
		if n > needed {
			needed = n
		}
	}
	return needed, nil
}

// buildTrees builds all sector trees in parallel. Workers pull sector
// indices from a shared cursor; each writes only its sector's arena chunk.
func (h *Hub) buildTrees() error {
	defer h.timePhase("build")()

	h.arena.Reset()

	cells := len(h.sectorBodies)
	side := h.size / float64(h.sectors)

	workers := min(h.config.Parallelism, cells)
	errs := make(chan error, workers)
	cursor := int64(0)

	var wait sync.WaitGroup
	wait.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wait.Done()
			builder := &quad.Builder{Arena: h.arena, Bodies: h.bodies, LeafSize: int32(h.config.LeafSize)}

			for {
				s := int(atomic.AddInt64(&cursor, 1)) - 1
				if s >= cells {
					return
				}
				sx := int32(s) % h.sectors
				sy := int32(s) / h.sectors
				center := world.SectorCenter(h.boundary, h.sectors, sx, sy)

				if _, err := builder.Build(int32(s), center, side, h.sectorBodies[s]); err != nil {
					select {
					case errs <- err:
					default:
					}
					return
				}

				base := h.arena.SectorBase(int32(s))
				if h.arena.At(base).Total == 0 {
					h.roots[s] = quad.Null
				} else {
					h.roots[s] = base
				}
			}
		}()
	}
	wait.Wait()

	select {
	case err := <-errs:
		return err
	default:
		return nil
	}
}

func (h *Hub) mergeTrees() (int32, error) {
	defer h.timePhase("merge")()
	return quad.Merge(h.arena, h.roots, h.sectors, h.boundary.Min, h.size)
}

// applyForces runs the Barnes–Hut traversal and the Euler update (see
// world.Body.Step) for every body, parallel over body ranges. Workers read the whole arena
// and write only their own range.
func (h *Hub) applyForces(root int32) error {
	defer h.timePhase("forces")()

	errs := make(chan error, len(h.ranges))
	var wait sync.WaitGroup
	wait.Add(len(h.ranges))

	for _, r := range h.ranges {
		go func(r world.Range) {
			defer wait.Done()
			traverser := &quad.Traverser{
				Arena:   h.arena,
				G:       h.config.G,
				Theta:   h.config.Theta,
				Epsilon: h.config.Epsilon,
			}
			for i := r.Start; i < r.End; i++ {
				body := &h.bodies[i]
				if err := traverser.ForceOn(body, root); err != nil {
					select {
					case errs <- err:
					default:
					}
					return
				}
				body.Step(h.config.Dt)
			}
		}(r)
	}
	wait.Wait()

	select {
	case err := <-errs:
		return err
	default:
		return nil
	}
}

// emit writes the optional per-iteration outputs. Frame I/O failures are
// logged and skipped; the iteration itself is already committed.
func (h *Hub) emit() {
	if h.sink != nil {
		func() {
			defer h.timePhase("frame")()
			if err := h.sink.WriteFrame(h.iteration, output.RenderSVG(h.bodies, h.boundary)); err != nil {
				logError("frame %d: %v", h.iteration, err)
			}
		}()
	}
	if h.watcher != nil {
		h.watcher.Broadcast(h.iteration, h.bodies, h.boundary)
	}
	if h.config.Verbose {
		h.Debug()
	}
}
