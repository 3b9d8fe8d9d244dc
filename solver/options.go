// SPDX-License-Identifier: MIT

package solver

import (
	"io"
	"log/slog"
	"runtime"

	"github.com/katalvlaran/spchol/workspace"
)

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultLDPadding is the number of extra rows added to every node's
	// leading dimension (0 = packed blocks).
	DefaultLDPadding = 0
)

// DefaultWorkers is the concurrency used when WithWorkers is not given.
func DefaultWorkers() int { return runtime.GOMAXPROCS(0) }

// Option mutates Options.
type Option func(*Options)

// Options collects driver settings. Fields are unexported; use WithX.
type Options struct {
	workers   int
	ldPadding int
	logger    *slog.Logger
	ws        *workspace.Manager
}

func defaultOptions() Options {
	return Options{
		workers:   DefaultWorkers(),
		ldPadding: DefaultLDPadding,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// gatherOptions applies opts over the defaults.
func gatherOptions(opts ...Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.ws == nil {
		o.ws = workspace.NewManager()
	}

	return o
}

// WithWorkers bounds the number of nodes processed concurrently.
// 1 gives a strictly sequential traversal. Panics on n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic("solver: WithWorkers(n<1)")
	}

	return func(o *Options) { o.workers = n }
}

// WithLDPadding adds p rows of padding to each node's leading dimension.
// Panics on p < 0.
func WithLDPadding(p int) Option {
	if p < 0 {
		panic("solver: WithLDPadding(p<0)")
	}

	return func(o *Options) { o.ldPadding = p }
}

// WithLogger routes driver logs to l. A nil l is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWorkspace shares an existing workspace pool (e.g. an instrumented one).
func WithWorkspace(ws *workspace.Manager) Option {
	return func(o *Options) { o.ws = ws }
}
