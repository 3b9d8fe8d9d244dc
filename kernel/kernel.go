// SPDX-License-Identifier: MIT

// Package kernel - column-major dense kernels on top of gonum's row-major BLAS.
//
// Purpose:
//   - Expose the four LAPACK/BLAS-style operations the supernodal kernel needs
//     (Potrf, Trsm, Syrk, Gemm) with Fortran (column-major) conventions and
//     explicit leading dimensions.
//   - Delegate the arithmetic to gonum.org/v1/gonum/blas/gonum.
//
// Layout mapping:
//   - A column-major m×n buffer with leading dimension ld is, read row-major with
//     the same stride, the n×m transpose. Every call below is rewritten onto that
//     transposed view: sides and triangles flip, operand order of products swaps.
//
// Behavior highlights:
//   - Argument violations (negative sizes, short slices, ld too small) panic inside
//     gonum; they are programmer errors, not runtime conditions.
//   - Potrf is the only routine with a data-dependent outcome and reports it via info.

package kernel

import (
	"math"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/gonum"
)

// impl is stateless; a single value is shared by all goroutines.
var impl gonum.Implementation

// flipSide maps a column-major side onto the transposed row-major problem.
func flipSide(s blas.Side) blas.Side {
	if s == blas.Left {
		return blas.Right
	}

	return blas.Left
}

// flipUplo maps a column-major triangle onto the transposed row-major problem.
func flipUplo(u blas.Uplo) blas.Uplo {
	if u == blas.Lower {
		return blas.Upper
	}

	return blas.Lower
}

// flipTrans swaps NoTrans and Trans (Syrk only distinguishes the two).
func flipTrans(t blas.Transpose) blas.Transpose {
	if t == blas.NoTrans {
		return blas.Trans
	}

	return blas.NoTrans
}

// Potrf computes the Cholesky factorization A = L·Lᵀ of the n×n symmetric
// positive-definite matrix held in the lower triangle of a (column-major, lda).
// MAIN DESCRIPTION:
//   - Unblocked left-looking column algorithm (LAPACK dpotf2, lower variant).
//
// Implementation:
//   - For column j: ajj = a[j,j] - L[j,0:j]·L[j,0:j]; fail if ajj <= 0 or NaN.
//   - a[j+1:n, j] -= L[j+1:n, 0:j]·L[j,0:j]ᵀ, then scale by 1/sqrt(ajj).
//
// Returns:
//   - info == 0 on success.
//   - info == j+1 (> 0) when the leading minor of order j+1 is not positive
//     definite; columns >= j are then left partially updated.
//
// Notes:
//   - Only blas.Lower is supported; blas.Upper panics.
//   - The strict upper triangle of a is never read or written.
//
// Complexity:
//   - Time O(n³/3), Space O(1).
func Potrf(uplo blas.Uplo, n int, a []float64, lda int) (info int) {
	if uplo != blas.Lower {
		panic("kernel: Potrf supports blas.Lower only")
	}
	if n < 0 {
		panic("kernel: Potrf n < 0")
	}
	if n == 0 {
		return 0
	}
	if lda < n {
		panic("kernel: Potrf lda < n")
	}
	if len(a) < (n-1)*lda+n {
		panic("kernel: Potrf short a")
	}

	for j := 0; j < n; j++ {
		// Row j of the computed part of L is a[j + k*lda], k < j: stride lda.
		ajj := a[j+j*lda] - impl.Ddot(j, a[j:], lda, a[j:], lda)
		if ajj <= 0 || math.IsNaN(ajj) {
			a[j+j*lda] = ajj
			return j + 1
		}
		ajj = math.Sqrt(ajj)
		a[j+j*lda] = ajj
		if j == n-1 {
			break
		}
		// Column below the diagonal. Read row-major, L[j+1:n, 0:j] is the
		// j×(n-j-1) matrix at a[j+1:] with stride lda, hence Trans.
		col := a[j+1+j*lda:]
		impl.Dgemv(blas.Trans, j, n-j-1, -1, a[j+1:], lda, a[j:], lda, 1, col, 1)
		impl.Dscal(n-j-1, 1/ajj, col, 1)
	}

	return 0
}

// Trsm solves op(A)·X = alpha·B (side == blas.Left) or X·op(A) = alpha·B
// (side == blas.Right) for X, overwriting the m×n matrix B. A is triangular
// (uplo) with unit or non-unit diagonal (diag). All operands are column-major.
//
// Complexity:
//   - Time O(m²n) for Left, O(mn²) for Right.
func Trsm(side blas.Side, uplo blas.Uplo, trans blas.Transpose, diag blas.Diag,
	m, n int, alpha float64, a []float64, lda int, b []float64, ldb int) {
	impl.Dtrsm(flipSide(side), flipUplo(uplo), trans, diag, n, m, alpha, a, lda, b, ldb)
}

// Syrk performs the symmetric rank-k update
//
//	C = alpha·A·Aᵀ + beta·C   (trans == blas.NoTrans, A is n×k)
//	C = alpha·Aᵀ·A + beta·C   (trans == blas.Trans,   A is k×n)
//
// touching only the uplo triangle of the n×n matrix C. With beta == 0 the
// previous content of C is ignored, so C may be uninitialized workspace.
func Syrk(uplo blas.Uplo, trans blas.Transpose, n, k int, alpha float64,
	a []float64, lda int, beta float64, c []float64, ldc int) {
	impl.Dsyrk(flipUplo(uplo), flipTrans(trans), n, k, alpha, a, lda, beta, c, ldc)
}

// Gemm computes C = alpha·op(A)·op(B) + beta·C where op(A) is m×k, op(B) is
// k×n and C is m×n, all column-major. With beta == 0 the previous content of
// C is ignored.
func Gemm(transA, transB blas.Transpose, m, n, k int, alpha float64,
	a []float64, lda int, b []float64, ldb int, beta float64, c []float64, ldc int) {
	// (op(A)·op(B))ᵀ = op(B)ᵀ·op(A)ᵀ: swap operands on the row-major view.
	impl.Dgemm(transB, transA, n, m, k, alpha, b, ldb, a, lda, beta, c, ldc)
}
