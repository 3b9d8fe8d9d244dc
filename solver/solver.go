// SPDX-License-Identifier: MIT

package solver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/spchol/supernode"
	"github.com/katalvlaran/spchol/tree"
)

// Solver holds the numeric placement of an assembly tree and runs
// factorizations on it. A Solver may run several Factorize calls
// concurrently; each produces an independent Factor.
type Solver struct {
	t      *tree.Tree
	layout *Layout
	nodes  []*supernode.Node
	opts   Options
}

// New binds every node of t to its block in the factor storage.
func New(t *tree.Tree, opts ...Option) (*Solver, error) {
	if t == nil {
		return nil, ErrNilTree
	}
	o := gatherOptions(opts...)
	layout := NewLayout(t, o.ldPadding)
	nodes := make([]*supernode.Node, t.Len())
	for i := range nodes {
		off, ld := layout.Place(i)
		nodes[i] = supernode.New(t.Node(i), t.MaxRowIndex(), off, ld)
	}
	o.logger.Debug("solver ready",
		slog.Int("nodes", t.Len()),
		slog.Int("rows", t.MaxRowIndex()),
		slog.Int("storage", layout.Size()),
		slog.Int("workers", o.workers))

	return &Solver{t: t, layout: layout, nodes: nodes, opts: o}, nil
}

// Layout returns the factor storage placement.
func (s *Solver) Layout() *Layout { return s.layout }

// Tree returns the assembly tree the solver was built on.
func (s *Solver) Tree() *tree.Tree { return s.t }

// Factor is the result of a successful numeric factorization.
// Solve may be called concurrently on distinct right-hand sides.
type Factor struct {
	s     *Solver
	lval  []float64
	chain [][]supernode.Ancestor
}

// Factorize computes the supernodal Cholesky factor of the matrix whose
// lower-triangle values are aval (indexed by assembly Src).
// MAIN DESCRIPTION:
//   - Nodes are processed by height groups, lowest first; nodes of a group run
//     concurrently (bounded by WithWorkers). Extend-adds into a shared ancestor
//     are serialized by that ancestor's lock.
//
// Errors:
//   - ErrShortValues when aval is shorter than the tree's entry count.
//   - *supernode.NotPositiveDefiniteError, returned unchanged; the run stops.
//   - ctx.Err() when ctx is done before all nodes started.
func (s *Solver) Factorize(ctx context.Context, aval []float64) (*Factor, error) {
	if len(aval) < s.t.NumEntries() {
		factorizeFailures.WithLabelValues("input").Inc()
		return nil, fmt.Errorf("%w: have %d, need %d", ErrShortValues, len(aval), s.t.NumEntries())
	}
	start := time.Now()
	f := &Factor{
		s:     s,
		lval:  make([]float64, s.layout.Size()),
		chain: s.chains(),
	}

	for lvl, group := range s.t.Levels() {
		err := s.runGroup(ctx, group, func(i int) error {
			if err := s.nodes[i].Factor(aval, f.lval, f.chain[i], s.opts.ws); err != nil {
				return err
			}
			nodesFactored.Inc()
			return nil
		})
		if err != nil {
			factorizeFailures.WithLabelValues(failureReason(err)).Inc()
			s.opts.logger.Warn("factorization failed", slog.Int("level", lvl), slog.Any("err", err))
			return nil, err
		}
		s.opts.logger.Debug("level factored", slog.Int("level", lvl), slog.Int("nodes", len(group)))
	}

	elapsed := time.Since(start)
	factorizeDuration.Observe(elapsed.Seconds())
	s.opts.logger.Info("factorization done",
		slog.Int("nodes", s.t.Len()),
		slog.Int("storage", len(f.lval)),
		slog.Duration("elapsed", elapsed))

	return f, nil
}

// chains builds every node's ancestor chain. Each node gets one mutex shared
// by all of its descendants' references.
func (s *Solver) chains() [][]supernode.Ancestor {
	locks := make([]sync.Mutex, s.t.Len())
	out := make([][]supernode.Ancestor, s.t.Len())
	for i := range out {
		up := s.t.Ancestors(i)
		out[i] = make([]supernode.Ancestor, len(up))
		for k, a := range up {
			out[i][k] = supernode.Ancestor{Node: s.nodes[a], Lock: &locks[a]}
		}
	}

	return out
}

// runGroup calls fn for every node of group with at most workers in flight.
// The first error cancels the nodes not yet started.
func (s *Solver) runGroup(ctx context.Context, group []int, fn func(i int) error) error {
	if s.opts.workers == 1 || len(group) == 1 {
		for _, i := range group {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.workers)
	for _, i := range group {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(i)
		})
	}
	// Wait reports the first failure; nodes skipped after it see context.Canceled.
	if err := g.Wait(); err != nil {
		return err
	}

	return ctx.Err()
}

// L returns the factor storage. Node i's block starts at Layout().Offset(i).
func (f *Factor) L() []float64 { return f.lval }

// Layout returns the placement of node blocks inside L().
func (f *Factor) Layout() *Layout { return f.s.layout }

// Len returns the number of nodes.
func (f *Factor) Len() int { return len(f.s.nodes) }

// Node returns node i bound to this factor's storage layout.
func (f *Factor) Node(i int) *supernode.Node { return f.s.nodes[i] }

// Solve overwrites b (n×nrhs, column-major, leading dimension ldb) with the
// solution of A·X = B, where A = L·Lᵀ is the factorized matrix.
// MAIN DESCRIPTION:
//   - Forward substitution by height groups (leaves first), then backward
//     substitution by depth groups (roots first).
//
// Errors:
//   - ErrBadRHS for nrhs < 1, ldb < n or a short b.
//   - ctx.Err() when ctx is done before all nodes started; b is then partial.
func (f *Factor) Solve(ctx context.Context, b []float64, nrhs, ldb int) error {
	s := f.s
	n := s.t.MaxRowIndex()
	switch {
	case nrhs < 1:
		return fmt.Errorf("%w: nrhs=%d", ErrBadRHS, nrhs)
	case ldb < n:
		return fmt.Errorf("%w: ldb=%d < n=%d", ErrBadRHS, ldb, n)
	case len(b) < (nrhs-1)*ldb+n:
		return fmt.Errorf("%w: len(b)=%d, need %d", ErrBadRHS, len(b), (nrhs-1)*ldb+n)
	}
	start := time.Now()

	for _, group := range s.t.Levels() {
		err := s.runGroup(ctx, group, func(i int) error {
			s.nodes[i].ForwardSolve(nrhs, b, ldb, f.lval, f.chain[i], s.opts.ws)
			return nil
		})
		if err != nil {
			return err
		}
	}
	for _, group := range s.t.DepthGroups() {
		err := s.runGroup(ctx, group, func(i int) error {
			s.nodes[i].BackwardSolve(nrhs, b, ldb, f.lval, s.opts.ws)
			return nil
		})
		if err != nil {
			return err
		}
	}

	solveDuration.Observe(time.Since(start).Seconds())
	s.opts.logger.Debug("solve done", slog.Int("nrhs", nrhs), slog.Duration("elapsed", time.Since(start)))

	return nil
}

// Dump writes every node block in tree order.
func (f *Factor) Dump(w io.Writer) error {
	for _, nd := range f.s.nodes {
		if err := nd.Dump(w, f.lval); err != nil {
			return err
		}
	}

	return nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, supernode.ErrNotPositiveDefinite):
		return "not_positive_definite"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
