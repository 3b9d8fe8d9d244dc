// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/spchol/solver"
	"github.com/katalvlaran/spchol/spcholtest"
)

// newSolveCmd wires the solve subcommand.
//
// Examples:
//
//	spchol solve --grid 32 --supernode-size 32
//	spchol solve --random 500 --density 0.01 --nrhs 4 --workers 8
//	spchol solve --config run.yaml --spy factor.png
func newSolveCmd() *cobra.Command {
	var (
		flags      = defaultConfig()
		configPath string
	)
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Factorize a model problem and solve A·X = B",
		Long: `Generates a sparse symmetric positive definite matrix, either the 5-point
Laplacian of a k×k grid or a random diagonally dominant matrix, partitions its
columns into supernodes of fixed size, factorizes it and solves for random
right-hand sides. Prints timings and the max-norm residual |A·X - B|.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := defaultConfig()
			if configPath != "" {
				if err := loadConfig(configPath, &cfg); err != nil {
					return err
				}
			}
			overlayFlags(cmd, &cfg, flags)
			cfg.resolveProblem()
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)

			return runSolve(cmd.Context(), cfg, cmd.OutOrStdout(), logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "YAML file with run settings")
	f.IntVar(&flags.Grid, "grid", 0, "grid Laplacian of order k*k (default 16 when no problem is set)")
	f.IntVar(&flags.Random, "random", 0, "random SPD matrix of order n")
	f.Float64Var(&flags.Density, "density", flags.Density, "off-diagonal fill probability for --random")
	f.IntVar(&flags.SupernodeSize, "supernode-size", flags.SupernodeSize, "columns per supernode")
	f.IntVar(&flags.Workers, "workers", flags.Workers, "concurrent nodes (0 = GOMAXPROCS)")
	f.IntVar(&flags.NRHS, "nrhs", flags.NRHS, "number of right-hand sides")
	f.Int64Var(&flags.Seed, "seed", flags.Seed, "random seed")
	f.StringVar(&flags.Spy, "spy", "", "write the factor's sparsity pattern to this PNG")
	f.BoolVar(&flags.Dump, "dump", false, "print every node block of the factor")
	f.BoolVarP(&flags.Verbose, "verbose", "v", false, "debug logging")

	return cmd
}

// overlayFlags copies explicitly set flags over cfg.
func overlayFlags(cmd *cobra.Command, cfg *Config, flags Config) {
	set := cmd.Flags().Changed
	if set("grid") {
		cfg.Grid = flags.Grid
	}
	if set("random") {
		cfg.Random = flags.Random
	}
	if set("density") {
		cfg.Density = flags.Density
	}
	if set("supernode-size") {
		cfg.SupernodeSize = flags.SupernodeSize
	}
	if set("workers") {
		cfg.Workers = flags.Workers
	}
	if set("nrhs") {
		cfg.NRHS = flags.NRHS
	}
	if set("seed") {
		cfg.Seed = flags.Seed
	}
	if set("spy") {
		cfg.Spy = flags.Spy
	}
	if set("dump") {
		cfg.Dump = flags.Dump
	}
	if set("verbose") {
		cfg.Verbose = flags.Verbose
	}
}

// runSolve builds the problem described by cfg and reports to out.
func runSolve(ctx context.Context, cfg Config, out io.Writer, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	var (
		n       int
		entries []spcholtest.Entry
	)
	if cfg.Grid > 0 {
		n = cfg.Grid * cfg.Grid
		entries = spcholtest.Laplacian2D(cfg.Grid)
	} else {
		n = cfg.Random
		entries = spcholtest.RandomSPD(rng, n, cfg.Density)
	}

	t, aval, err := spcholtest.BuildTree(n, entries, spcholtest.UniformPartition(n, cfg.SupernodeSize))
	if err != nil {
		return fmt.Errorf("spchol: build tree: %w", err)
	}

	opts := []solver.Option{solver.WithLogger(logger)}
	if cfg.Workers > 0 {
		opts = append(opts, solver.WithWorkers(cfg.Workers))
	}
	s, err := solver.New(t, opts...)
	if err != nil {
		return err
	}

	start := time.Now()
	f, err := s.Factorize(ctx, aval)
	if err != nil {
		return err
	}
	factorTime := time.Since(start)

	b := spcholtest.RandomRHS(rng, n, cfg.NRHS)
	x := append([]float64(nil), b...)
	start = time.Now()
	if err := f.Solve(ctx, x, cfg.NRHS, n); err != nil {
		return err
	}
	solveTime := time.Since(start)

	res := spcholtest.Residual(spcholtest.DenseOf(n, entries), x, b, cfg.NRHS, n)

	fmt.Fprintf(out, "order %d, entries %d, supernodes %d, levels %d\n",
		n, len(entries), t.Len(), len(t.Levels()))
	fmt.Fprintf(out, "factor storage %d values\n", s.Layout().Size())
	fmt.Fprintf(out, "factorize %v, solve %v (nrhs %d)\n", factorTime, solveTime, cfg.NRHS)
	fmt.Fprintf(out, "max residual %.3e\n", res)

	if cfg.Dump {
		if err := f.Dump(out); err != nil {
			return err
		}
	}
	if cfg.Spy != "" {
		if err := writeSpy(cfg.Spy, f); err != nil {
			return err
		}
		logger.Info("spy plot written", slog.String("path", cfg.Spy))
	}

	return nil
}
