// SPDX-License-Identifier: MIT

package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree. Built per call so tests get fresh flags.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "spchol",
		Short:         "Supernodal sparse Cholesky factorization on model problems",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSolveCmd())

	return root
}

// newLogger returns a text logger on w; verbose enables debug records.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	lvl := slog.LevelInfo
	if verbose {
		lvl = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
