// SPDX-License-Identifier: MIT

// Package solver drives the supernode kernel over a whole assembly tree.
//
// A Solver fixes the storage layout once; every Factorize call allocates a
// fresh factor array and processes the tree in height groups (leaves first).
// Nodes inside one group never depend on each other, so they run in parallel,
// bounded by WithWorkers. The only shared writes are extend-adds into common
// ancestors, which take that ancestor's mutex.
//
// Results do not depend on the worker count except for the summation order
// of contributions into a shared ancestor, which may differ within rounding.
//
// Errors:
//   - ErrNilTree, ErrShortValues, ErrBadRHS for invalid input.
//   - supernode.ErrNotPositiveDefinite (via errors.Is) when a pivot breaks down.
//   - context errors on cancellation.
//
// Options follow the functional pattern; WithX constructors panic on
// nonsensical values.
package solver
