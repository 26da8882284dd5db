// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"galax/sim"
	"galax/sim/galaxy"
	"galax/sim/logger"
	"galax/sim/output"
	"galax/sim/viewer"
	"galax/sim/world"
)

var (
	bodies      int
	seed        int64
	iterations  int
	parallelism int
	sectorExp   int
	leafSize    int
	chunkCap    int
	outputPath  string
	generator   string
	watchPort   int
	preflight   bool
	verbose     bool
	configFile  string
)

var rootCmd = &cobra.Command{
	Use:   "galax",
	Short: "Barnes-Hut galaxy collision simulator",
	Long: `galax simulates the gravitational evolution of a pair of colliding
galaxies with the Barnes-Hut approximation. Each iteration it rebuilds a
sector-partitioned quadtree in a flat arena, merges the sector trees into one
global tree and integrates all bodies against it in parallel.`,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.Flags()
	flags.IntVarP(&bodies, "bodies", "b", 16384, "number of bodies")
	flags.Int64VarP(&seed, "seed", "s", 213, "random seed for the generator")
	flags.IntVarP(&iterations, "iterations", "i", 10, "iterations to simulate")
	flags.IntVarP(&parallelism, "parallelism", "p", 8, "parallel worker count")
	flags.IntVarP(&sectorExp, "sector-precision", "N", 4, "sector grid is 2^N per axis")
	flags.IntVarP(&leafSize, "leaf-size", "l", 32, "leaf bucket size")
	flags.IntVarP(&chunkCap, "arena-capacity", "x", -1, "fixed per-sector arena capacity, -1 computes it")
	flags.StringVarP(&outputPath, "output", "o", "", "frame output directory or s3://bucket/prefix")
	flags.StringVar(&generator, "generator", "spiral", "initial body generator (spiral|cloud)")
	flags.IntVar(&watchPort, "watch", 0, "serve the live viewer on this port")
	flags.BoolVar(&preflight, "preflight", true, "refine computed arena capacity with a counting pass")
	flags.StringVar(&configFile, "config", "", "physics constants file (g, dt, theta, epsilon)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "per-iteration diagnostics")
}

func run(cmd *cobra.Command, args []string) error {
	logger.Init(verbose)

	config := sim.DefaultConfig()
	config.Bodies = bodies
	config.Seed = seed
	config.Iterations = iterations
	config.Parallelism = parallelism
	config.SectorExp = sectorExp
	config.LeafSize = leafSize
	config.ChunkCap = chunkCap
	config.Output = outputPath
	config.Generator = generator
	config.WatchPort = watchPort
	config.Preflight = preflight
	config.Verbose = verbose

	if configFile != "" {
		if err := loadConstants(&config); err != nil {
			return err
		}
	}
	if err := config.Validate(); err != nil {
		return err
	}

	var initial []world.Body
	switch config.Generator {
	case "cloud":
		initial = galaxy.Cloud(config.Bodies, config.Seed, config.G)
	default:
		initial = galaxy.Spiral(config.Bodies, config.Seed, config.G)
	}

	var sink output.Sink
	if config.Output != "" {
		var err error
		if sink, err = output.New(config.Output); err != nil {
			return err
		}
	}

	var watcher *viewer.Viewer
	if config.WatchPort > 0 {
		watcher = viewer.New(config.WatchPort)
	}

	hub := sim.New(config, initial, sink, watcher)

	start := time.Now()
	if err := hub.Run(); err != nil {
		return err
	}
	if verbose {
		log.Printf("simulated %d bodies for %d iterations in %v", config.Bodies, config.Iterations, time.Since(start))
	}
	return nil
}

// loadConstants overrides the compiled-in physics constants from a config
// file.
func loadConstants(config *sim.Config) error {
	viper.SetConfigFile(configFile)
	viper.SetDefault("g", config.G)
	viper.SetDefault("dt", config.Dt)
	viper.SetDefault("theta", config.Theta)
	viper.SetDefault("epsilon", config.Epsilon)

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("config file: %w", err)
	}

	config.G = viper.GetFloat64("g")
	config.Dt = viper.GetFloat64("dt")
	config.Theta = viper.GetFloat64("theta")
	config.Epsilon = viper.GetFloat64("epsilon")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
