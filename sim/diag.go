// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"galax/sim/logger"
)

// Debug prints per-iteration diagnostics to console and appends a run-log
// record. Only runs in verbose mode; it walks all body pairs for the energy
// figure.
func (h *Hub) Debug() {
	fmt.Printf("Debug [%v] iteration %d\n", time.Now().Format(time.UnixDate), h.iteration)

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	fmt.Printf(" - memstats: %dM/%dM\n", stats.HeapInuse/1e6, stats.NextGC/1e6)

	fmt.Printf(" - bodies: %d, domain: %.02f, sectors: %dx%d, arena: %d slots\n",
		len(h.bodies), h.size, h.sectors, h.sectors, h.arena.Len())

	kinetic := h.Kinetic()
	potential := h.Potential()
	fmt.Printf(" - energy: kinetic %.04g, potential %.04g, total %.04g\n",
		kinetic, potential, kinetic+potential)

	var total time.Duration
	fmt.Print(" - ")
	for _, phase := range h.timings.flush() {
		total += phase.average
		fmt.Print(phase.name, ": ", phase.average, ", ")
	}
	fmt.Println("total:", total)

	if err := appendRecord(runLogPath, iterationRecord{
		when:      time.Now(),
		iteration: h.iteration,
		bodies:    len(h.bodies),
		kinetic:   kinetic,
		potential: potential,
	}); err != nil {
		logError("run log: %v", err)
	}
}

const runLogPath = "/tmp/galax.log"

// iterationRecord is one verbose-mode row of the run log.
type iterationRecord struct {
	when      time.Time
	iteration int
	bodies    int
	kinetic   float64
	potential float64
}

// appendRecord appends the record to filename as one
// millis,iteration,bodies,kinetic,potential line.
func appendRecord(filename string, record iterationRecord) error {
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	line := make([]byte, 0, 96)
	line = strconv.AppendInt(line, record.when.UnixMilli(), 10)
	line = append(line, ',')
	line = strconv.AppendInt(line, int64(record.iteration), 10)
	line = append(line, ',')
	line = strconv.AppendInt(line, int64(record.bodies), 10)
	line = append(line, ',')
	line = strconv.AppendFloat(line, record.kinetic, 'g', 6, 64)
	line = append(line, ',')
	line = strconv.AppendFloat(line, record.potential, 'g', 6, 64)
	line = append(line, '\n')

	_, err = f.Write(line)
	return err
}

func logError(format string, args ...interface{}) {
	logger.Default().Error(fmt.Sprintf(format, args...))
}

type (
	// phaseTimer accumulates wall time per pipeline phase between Debug
	// flushes, keyed by phase name in first-use order. The hub goroutine
	// owns it; workers never touch it.
	phaseTimer struct {
		order  []string
		phases map[string]*phaseStats
	}

	phaseStats struct {
		duration time.Duration
		runs     int
	}

	phaseAverage struct {
		name    string
		average time.Duration
	}
)

func newPhaseTimer() *phaseTimer {
	return &phaseTimer{phases: make(map[string]*phaseStats)}
}

func (t *phaseTimer) add(name string, duration time.Duration) {
	stats, ok := t.phases[name]
	if !ok {
		stats = &phaseStats{}
		t.phases[name] = stats
		t.order = append(t.order, name)
	}
	stats.duration += duration
	stats.runs++
}

// flush returns the per-phase averages in first-use order and zeroes the
// accumulators.
func (t *phaseTimer) flush() []phaseAverage {
	averages := make([]phaseAverage, 0, len(t.order))
	for _, name := range t.order {
		stats := t.phases[name]
		if stats.runs == 0 {
			continue
		}
		averages = append(averages, phaseAverage{
			name:    name,
			average: stats.duration / time.Duration(stats.runs),
		})
		*stats = phaseStats{}
	}
	return averages
}

// timePhase starts timing one phase; the returned func stops it and feeds
// the viewer's histogram when a viewer is attached.
// defer h.timePhase("name")()
func (h *Hub) timePhase(name string) func() {
	start := time.Now()
	return func() {
		duration := time.Since(start)
		h.timings.add(name, duration)
		if h.watcher != nil {
			h.watcher.ObservePhase(name, duration)
		}
	}
}
