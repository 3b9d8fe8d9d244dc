// Package supernode implements the per-supernode kernel of a sparse direct
// (supernodal) Cholesky solver.
//
// A Node is a thin view binding one tree.Node to its placement (offset and
// leading dimension) inside the shared factor storage. It exposes three
// operations, each performing one node's share of the work:
//
//   - Factor: assemble original entries, factor the diagonal block, compute
//     L21 and the generated element, and extend-add it into the ancestors.
//   - ForwardSolve: one bottom-up step of L·y = b.
//   - BackwardSolve: one top-down step of Lᵀ·x = y.
//
// The kernel is synchronous. Ordering between nodes (children before parents
// for Factor/ForwardSolve, parents before children for BackwardSolve) and any
// concurrency are the caller's business; writes into an ancestor's block or
// right-hand-side rows are serialized through Ancestor.Lock.
//
// The only runtime failure is *NotPositiveDefiniteError from Factor. It is
// returned before any workspace is acquired and before any ancestor block is
// touched. Broken tree invariants panic with ErrStructure.
package supernode
