// Package tree holds the symbolic side of a supernodal Cholesky factorization:
// the assembly (elimination) tree of supernodes.
//
// Each Node lists the global rows its dense block touches. The first NCol of
// them are the node's own pivot columns, eliminated at this node; the rest are
// retained rows that the node's generated element carries up to its ancestors.
//
// NewTree validates everything the numeric kernels assume without checking:
//
//   - rows strictly ascending, pivots consecutive, pivot sets partition the matrix;
//   - post-order numbering (parent index greater than child index);
//   - the retained rows of every node are consumed by its ancestor chain as
//     consecutive runs, and each consuming ancestor holds the remaining rows.
//
// Levels and DepthGroups provide the bottom-up and top-down schedules used by
// the solver package: nodes in one group never lie on a common root path.
package tree
