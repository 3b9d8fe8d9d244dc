// SPDX-License-Identifier: MIT

// Package supernode - per-node numeric kernel of the supernodal Cholesky factorization.
//
// Storage layout of one node inside the shared factor array lval (column-major):
//
//	lval[loffset + i + j*ldl],  0 <= i < m, 0 <= j < n
//
// Rows 0..n-1 form the n×n diagonal block (lower triangle meaningful), rows
// n..m-1 form the (m-n)×n rectangular block L21 directly below it.

package supernode

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/blas"

	"github.com/katalvlaran/spchol/kernel"
	"github.com/katalvlaran/spchol/tree"
	"github.com/katalvlaran/spchol/workspace"
)

// Node binds one assembly-tree node to its placement in the shared factor
// storage. It owns no numeric data and is safe to share between goroutines.
type Node struct {
	tn      *tree.Node
	m, n    int
	loffset int
	ldl     int
	maxRow  int // length of the global-row map workspace
}

// New binds tn at lval[loffset:] with leading dimension ldl.
// maxRowIndex is the matrix order (size of the row-map workspace).
// Panics when ldl < m (programmer error).
func New(tn *tree.Node, maxRowIndex, loffset, ldl int) *Node {
	m := tn.NRow()
	if ldl < m {
		panic(fmt.Sprintf("supernode: node %d: ldl %d < m %d", tn.Idx, ldl, m))
	}

	return &Node{
		tn:      tn,
		m:       m,
		n:       tn.NCol,
		loffset: loffset,
		ldl:     ldl,
		maxRow:  maxRowIndex,
	}
}

// Idx returns the tree index of the node.
func (nd *Node) Idx() int { return nd.tn.Idx }

// ParentIdx returns the tree index of the parent, -1 for a root.
func (nd *Node) ParentIdx() int { return nd.tn.Parent }

// M returns the number of rows of the node block.
func (nd *Node) M() int { return nd.m }

// N returns the number of pivot columns.
func (nd *Node) N() int { return nd.n }

// Offset returns the position of the block inside the factor storage.
func (nd *Node) Offset() int { return nd.loffset }

// LD returns the leading dimension of the block.
func (nd *Node) LD() int { return nd.ldl }

// Tree returns the symbolic node.
func (nd *Node) Tree() *tree.Node { return nd.tn }

// Ancestor is a reference to an ancestor node together with the lock that
// serializes writes into its block. Lock may be nil when the caller
// guarantees a single writer (e.g. sequential traversal).
type Ancestor struct {
	Node *Node
	Lock sync.Locker
}

func (a Ancestor) lock() {
	if a.Lock != nil {
		a.Lock.Lock()
	}
}

func (a Ancestor) unlock() {
	if a.Lock != nil {
		a.Lock.Unlock()
	}
}

// Factor eliminates this node's pivots in place and distributes the
// generated element to ancestors.
// MAIN DESCRIPTION:
//   - Scatter-add the original entries, factor the diagonal block, form L21 and
//     the generated element -L21·L21ᵀ, then extend-add it into the ancestors.
//
// Implementation:
//   - Stage 1: block[dest] += aval[src] for every assembly entry.
//   - Stage 2: Potrf on the n×n diagonal block; failure returns
//     *NotPositiveDefiniteError before any workspace is taken or any ancestor touched.
//   - Stage 3: check the retained rows split into consecutive runs over ancestors.
//   - Stage 4: Trsm (right, lower, transposed) turns the rectangular block into L21.
//   - Stage 5: Syrk into a pooled (m-n)×(m-n) buffer (lower triangle).
//   - Stage 6: per ancestor, under its lock, addContribution consumes a run of
//     columns; read cursors advance along the diagonal of the generated element.
//
// Inputs:
//   - aval: original matrix values indexed by assembly Src.
//   - lval: shared factor storage; this node's block must already hold the
//     contributions of all descendants.
//   - ancestors: nearest first, as far up as the retained rows reach.
//   - ws: workspace pool for the generated element and the row map.
//
// Errors:
//   - *NotPositiveDefiniteError (errors.Is ErrNotPositiveDefinite).
//
// Panics:
//   - ErrStructure when the ancestors do not consume every retained row.
//
// Complexity:
//   - Time O(n³ + (m-n)·n² + (m-n)²·n), Space O((m-n)² + maxRow) pooled.
func (nd *Node) Factor(aval, lval []float64, ancestors []Ancestor, ws *workspace.Manager) error {
	ldiag := lval[nd.loffset:]

	for _, e := range nd.tn.Assembly {
		ldiag[e.DestCol*nd.ldl+e.DestRow] += aval[e.Src]
	}

	if info := kernel.Potrf(blas.Lower, nd.n, ldiag, nd.ldl); info != 0 {
		return &NotPositiveDefiniteError{Node: nd.tn.Idx, Pivot: info}
	}

	r := nd.m - nd.n
	if r == 0 {
		return nil
	}
	rows := nd.tn.RetainedRows()
	nd.checkPartition(rows, ancestors)

	lrect := ldiag[nd.n:]
	kernel.Trsm(blas.Right, blas.Lower, blas.Trans, blas.NonUnit, r, nd.n, 1, ldiag, nd.ldl, lrect, nd.ldl)

	contrib := workspace.Acquire[float64](ws, r*r)
	defer contrib.Release()
	rowMap := workspace.Acquire[int](ws, nd.maxRow)
	defer rowMap.Release()

	kernel.Syrk(blas.Lower, blas.NoTrans, r, nd.n, -1, lrect, nd.ldl, 0, contrib.Data, r)

	src := contrib.Data
	for _, anc := range ancestors {
		if len(rows) == 0 {
			break
		}
		if !anc.Node.tn.ContainsColumn(rows[0]) {
			continue
		}
		used := anc.addContribution(lval, rows, src, r, rowMap.Data)
		rows = rows[used:]
		if len(rows) == 0 {
			break
		}
		src = src[used*(r+1):] // next diagonal entry
	}

	return nil
}

// addContribution takes the lock and extend-adds one run.
func (a Ancestor) addContribution(lval []float64, rows []int, contrib []float64, ldc int, rowMap []int) int {
	a.lock()
	defer a.unlock()

	return a.Node.addContribution(lval, rows, contrib, ldc, rowMap)
}

// addContribution adds the lower-triangular columns of contrib that belong
// to this node into its block, and returns how many columns it used.
//   - rows: the not yet consumed retained rows of the descendant.
//   - contrib: generated element positioned at the diagonal entry of rows[0].
//   - ldc: leading dimension of the generated element.
//
// Columns are consumed while rows[c] is one of this node's pivots; the first
// row that is not ends the run.
func (nd *Node) addContribution(lval []float64, rows []int, contrib []float64, ldc int, rowMap []int) int {
	lptr := lval[nd.loffset:]
	nd.tn.ConstructRowMap(rowMap)
	for c, srcCol := range rows {
		if !nd.tn.ContainsColumn(srcCol) {
			return c
		}
		src := contrib[c*(ldc+1):] // starts on the diagonal
		dest := lptr[rowMap[srcCol]*nd.ldl:]
		for k, srcRow := range rows[c:] {
			dest[rowMap[srcRow]] += src[k]
		}
	}

	return len(rows)
}

// leadingColumns counts how many of rows, from the front, are pivots of nd.
func (nd *Node) leadingColumns(rows []int) int {
	for c, row := range rows {
		if !nd.tn.ContainsColumn(row) {
			return c
		}
	}

	return len(rows)
}

// checkPartition verifies that the ancestors consume all retained rows as
// consecutive runs. It runs before any ancestor block is written, so a
// violation never leaves a partial extend-add behind.
func (nd *Node) checkPartition(rows []int, ancestors []Ancestor) {
	rest := rows
	for _, anc := range ancestors {
		if len(rest) == 0 {
			return
		}
		rest = rest[anc.Node.leadingColumns(rest):]
	}
	if len(rest) > 0 {
		structuref(nd.tn.Idx, "%d retained rows (first %d) not covered by %d ancestors",
			len(rest), rest[0], len(ancestors))
	}
}

// ForwardSolve performs this node's step of L·y = b.
// MAIN DESCRIPTION:
//   - Solve with the diagonal block for the pivot rows of x, then push
//     -L21·x_pivot into the rows of x owned by ancestors.
//
// Inputs:
//   - nrhs, x, ldx: global right-hand sides, column-major, one row per matrix row.
//   - lval: factor storage after a successful factorization.
//   - ancestors: used only for their locks; siblings solved concurrently may
//     add into the same ancestor rows.
//
// Notes:
//   - Must run after every descendant's ForwardSolve (bottom-up).
func (nd *Node) ForwardSolve(nrhs int, x []float64, ldx int, lval []float64, ancestors []Ancestor, ws *workspace.Manager) {
	ldiag := lval[nd.loffset:]
	xdiag := x[nd.tn.FirstCol():]
	kernel.Trsm(blas.Left, blas.Lower, blas.NoTrans, blas.NonUnit, nd.n, nrhs, 1, ldiag, nd.ldl, xdiag, ldx)

	r := nd.m - nd.n
	if r == 0 {
		return
	}
	rows := nd.tn.RetainedRows()
	nd.checkPartition(rows, ancestors)

	local := workspace.Acquire[float64](ws, r*nrhs)
	defer local.Release()
	kernel.Gemm(blas.NoTrans, blas.NoTrans, r, nrhs, nd.n, -1, ldiag[nd.n:], nd.ldl, xdiag, ldx, 0, local.Data, r)

	idx := 0
	for _, anc := range ancestors {
		if idx == r {
			break
		}
		used := anc.Node.leadingColumns(rows[idx:])
		if used == 0 {
			continue
		}
		anc.lock()
		for k, row := range rows[idx : idx+used] {
			for c := 0; c < nrhs; c++ {
				x[c*ldx+row] += local.Data[c*r+idx+k]
			}
		}
		anc.unlock()
		idx += used
	}
}

// BackwardSolve performs this node's step of Lᵀ·x = y.
// MAIN DESCRIPTION:
//   - Gather the already final ancestor rows of x, apply x_pivot -= L21ᵀ·x_retained,
//     then solve with the transposed diagonal block.
//
// Notes:
//   - Must run after the parent's BackwardSolve (top-down). Only this node's
//     pivot rows of x are written, so no locking is needed.
func (nd *Node) BackwardSolve(nrhs int, x []float64, ldx int, lval []float64, ws *workspace.Manager) {
	ldiag := lval[nd.loffset:]
	xdiag := x[nd.tn.FirstCol():]

	if r := nd.m - nd.n; r > 0 {
		nd.applyRetained(nrhs, x, ldx, ldiag, xdiag, r, ws)
	}

	kernel.Trsm(blas.Left, blas.Lower, blas.Trans, blas.NonUnit, nd.n, nrhs, 1, ldiag, nd.ldl, xdiag, ldx)
}

// applyRetained holds the local workspace for exactly the gather+update step.
func (nd *Node) applyRetained(nrhs int, x []float64, ldx int, ldiag, xdiag []float64, r int, ws *workspace.Manager) {
	local := workspace.Acquire[float64](ws, r*nrhs)
	defer local.Release()

	for idx, row := range nd.tn.RetainedRows() {
		for c := 0; c < nrhs; c++ {
			local.Data[c*r+idx] = x[c*ldx+row]
		}
	}
	kernel.Gemm(blas.Trans, blas.NoTrans, nd.n, nrhs, r, -1, ldiag[nd.n:], nd.ldl, local.Data, r, 1, xdiag, ldx)
}
