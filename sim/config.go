// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

import "fmt"

// Physics constants in the dimensionless units of the simulation. They are
// compiled-in defaults; a config file may override them.
const (
	DefaultG       = 100.0
	DefaultDt      = 0.1
	DefaultTheta   = 0.5
	DefaultEpsilon = 1e-5
)

// Config holds everything a run needs. Zero values are not useful; start
// from DefaultConfig.
type Config struct {
	Bodies      int
	Seed        int64
	Iterations  int
	Parallelism int
	// SectorExp is the sector-precision exponent: the grid is 2^SectorExp
	// sectors per axis.
	SectorExp int
	LeafSize  int
	// ChunkCap fixes the per-sector arena capacity; -1 computes it.
	ChunkCap int
	// Output is a directory or s3://bucket/prefix; empty writes no frames.
	Output    string
	Generator string
	// WatchPort serves the live viewer when non-zero.
	WatchPort int
	// Preflight refines the computed arena capacity with a counting pass.
	// Ignored when ChunkCap is fixed.
	Preflight bool
	Verbose   bool

	G       float64
	Dt      float64
	Theta   float64
	Epsilon float64
}

func DefaultConfig() Config {
	return Config{
		Bodies:      16384,
		Seed:        213,
		Iterations:  10,
		Parallelism: 8,
		SectorExp:   4,
		LeafSize:    32,
		ChunkCap:    -1,
		Generator:   "spiral",
		Preflight:   true,
		G:           DefaultG,
		Dt:          DefaultDt,
		Theta:       DefaultTheta,
		Epsilon:     DefaultEpsilon,
	}
}

// Sectors is the grid width per axis.
func (c *Config) Sectors() int32 {
	return 1 << c.SectorExp
}

// Validate reports the first invalid field. It runs before any work so a bad
// flag never costs a partial run.
func (c *Config) Validate() error {
	switch {
	case c.Bodies < 1:
		return fmt.Errorf("invalid body count %d", c.Bodies)
	case c.Iterations < 0:
		return fmt.Errorf("invalid iteration count %d", c.Iterations)
	case c.Parallelism < 1:
		return fmt.Errorf("invalid parallelism %d", c.Parallelism)
	case c.SectorExp < 0 || c.SectorExp > 14:
		return fmt.Errorf("invalid sector precision %d", c.SectorExp)
	case c.LeafSize < 1:
		return fmt.Errorf("invalid leaf size %d", c.LeafSize)
	case c.ChunkCap == 0 || c.ChunkCap < -1:
		return fmt.Errorf("invalid arena capacity %d", c.ChunkCap)
	case c.Generator != "spiral" && c.Generator != "cloud":
		return fmt.Errorf("unknown generator %q", c.Generator)
	case c.WatchPort < 0 || c.WatchPort > 65535:
		return fmt.Errorf("invalid watch port %d", c.WatchPort)
	case !(c.Dt > 0):
		return fmt.Errorf("invalid time step %v", c.Dt)
	case c.Theta < 0:
		return fmt.Errorf("invalid theta %v", c.Theta)
	case c.Epsilon < 0:
		return fmt.Errorf("invalid epsilon %v", c.Epsilon)
	}
	return nil
}
