// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (column-major) & safe accessors.
//
// Purpose:
//   - Provide a column-major buffer with the explicit index formula i + j*ld,
//     matching the layout consumed by the kernel package.
//   - Guarantee safety at the public surface: At/Set/Add return errors instead of panicking.
//   - Support no-copy views (NewView) over externally owned storage such as the
//     shared factor array, so supernode blocks can be inspected in place.
//
// AI-Hints:
//   - Hot paths (kernel, supernode) index the raw slice directly; Dense is for
//     fixtures, diagnostics and reference computations.
//   - A view aliases its backing slice: Set through a view mutates the owner.
//
// Complexity quicksheet:
//   - NewDense: O(r*c) zero-init; At/Set/Add: O(1); Clone: O(r*c); NewView: O(1).

package matrix

import (
	"fmt"
	"math"
	"strings"
)

// ---------- error context tags ----------

const (
	ctxAt  = "At"  // method tag used in error wrappers
	ctxSet = "Set" // method tag used in error wrappers
	ctxAdd = "Add" // method tag used in error wrappers
)

// ---------- Formatting literals  ----------
const (
	_fmtRowOpen  = "["
	_fmtRowClose = "]\n"
	_fmtSep      = ", "
)

// denseErrorf wraps an error with a uniform Dense context and callsite indices.
// Stable, human-friendly messages; preserves the sentinel via %w.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a column-major matrix of float64 values.
//   - r,c hold dimensions (rows, cols).
//   - ld is the leading dimension: the stride between consecutive columns (ld >= r).
//   - data is the backing buffer; element (i,j) lives at data[off + i + j*ld].
//   - validateNaNInf enables optional NaN/Inf rejection in Set and Add.
type Dense struct {
	r, c           int       // row and column counts
	ld             int       // column stride (>= r)
	off            int       // offset of element (0,0) inside data
	data           []float64 // backing storage, owned or borrowed
	validateNaNInf bool      // numeric guard: reject NaN/Inf in Set when true
}

// Compile-time assertion for fmt.Stringer conformance.
var _ fmt.Stringer = (*Dense)(nil)

// NewDense creates an r×c zero matrix using packed column-major storage (ld == r).
// MAIN DESCRIPTION:
//   - Public constructor for Dense with strict shape validation and default numeric policy.
//
// Errors:
//   - ErrInvalidDimensions (shape contract violation).
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	// make() zero-fills deterministically.
	buf := make([]float64, rows*cols)

	return &Dense{
		r:              rows,
		c:              cols,
		ld:             rows,
		data:           buf,
		validateNaNInf: DefaultValidateNaNInf,
	}, nil
}

// NewView wraps an existing column-major window without copying.
// MAIN DESCRIPTION:
//   - Bind a rows×cols window starting at data[off] with column stride ld.
//
// Behavior highlights:
//   - Mutations through the view are visible to every other holder of data.
//   - The view never grows or reallocates data.
//
// Inputs:
//   - data: externally owned storage.
//   - off : index of element (0,0).
//   - rows, cols, ld: window shape and stride.
//
// Errors:
//   - ErrInvalidDimensions when rows<=0, cols<=0, off<0 or ld<rows.
//   - ErrShortBuffer when the last element (rows-1, cols-1) is outside data.
//
// Complexity:
//   - Time O(1), Space O(1).
func NewView(data []float64, off, rows, cols, ld int) (*Dense, error) {
	if rows <= 0 || cols <= 0 || off < 0 || ld < rows {
		return nil, ErrInvalidDimensions
	}
	if last := off + (cols-1)*ld + rows; last > len(data) {
		return nil, fmt.Errorf("NewView(off=%d, %dx%d, ld=%d) needs %d, have %d: %w",
			off, rows, cols, ld, last, len(data), ErrShortBuffer)
	}

	return &Dense{
		r:              rows,
		c:              cols,
		ld:             ld,
		off:            off,
		data:           data,
		validateNaNInf: DefaultValidateNaNInf,
	}, nil
}

// Rows returns the row count.
func (m *Dense) Rows() int { return m.r }

// Cols returns the column count.
func (m *Dense) Cols() int { return m.c }

// LD returns the leading dimension (column stride).
func (m *Dense) LD() int { return m.ld }

// Shape packs Rows() and Cols() into a single call for convenience.
func (m *Dense) Shape() (rows, cols int) { return m.r, m.c }

// Raw exposes the backing slice starting at element (0,0), for passing to
// column-major kernels together with LD(). The slice aliases the matrix.
func (m *Dense) Raw() []float64 { return m.data[m.off:] }

// indexOf computes the column-major offset or returns ErrOutOfRange.
func (m *Dense) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r {
		return 0, ErrOutOfRange
	}
	if col < 0 || col >= m.c {
		return 0, ErrOutOfRange
	}

	// Column-major offset: off + i + j*ld.
	return m.off + row + col*m.ld, nil
}

// At returns the value at (row, col) or ErrOutOfRange.
// Never panics on out-of-range; returns sentinel error.
func (m *Dense) At(row, col int) (float64, error) {
	off, err := m.indexOf(row, col)
	if err != nil {
		return 0, denseErrorf(ctxAt, row, col, err)
	}

	return m.data[off], nil
}

// Set stores v at (row, col) or returns an error (bounds or numeric policy).
//
// Errors:
//   - ErrOutOfRange for bounds; ErrNaNInf for invalid numbers when the policy is on.
func (m *Dense) Set(row, col int, v float64) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return denseErrorf(ctxSet, row, col, err)
	}
	if m.validateNaNInf && (math.IsNaN(v) || math.IsInf(v, 0)) {
		return denseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[off] = v

	return nil
}

// Add accumulates v into (row, col). Same error contract as Set.
func (m *Dense) Add(row, col int, v float64) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return denseErrorf(ctxAdd, row, col, err)
	}
	if m.validateNaNInf && (math.IsNaN(v) || math.IsInf(v, 0)) {
		return denseErrorf(ctxAdd, row, col, ErrNaNInf)
	}
	m.data[off] += v

	return nil
}

// Clone returns a packed deep copy (new buffer, ld == Rows(), same numeric policy).
// Views are materialized: the clone no longer aliases the original storage.
func (m *Dense) Clone() *Dense {
	cp := make([]float64, m.r*m.c)
	for j := 0; j < m.c; j++ {
		copy(cp[j*m.r:(j+1)*m.r], m.data[m.off+j*m.ld:m.off+j*m.ld+m.r])
	}

	return &Dense{
		r:              m.r,
		c:              m.c,
		ld:             m.r,
		data:           cp,
		validateNaNInf: m.validateNaNInf,
	}
}

// SymmetrizeLower copies the strict lower triangle onto the upper triangle,
// turning a lower-stored symmetric matrix into its full form.
//
// Errors:
//   - ErrNonSquare when Rows() != Cols().
func (m *Dense) SymmetrizeLower() error {
	if m.r != m.c {
		return fmt.Errorf("SymmetrizeLower %dx%d: %w", m.r, m.c, ErrNonSquare)
	}
	for j := 0; j < m.c; j++ {
		for i := j + 1; i < m.r; i++ {
			m.data[m.off+j+i*m.ld] = m.data[m.off+i+j*m.ld]
		}
	}

	return nil
}

// ZeroUpper clears the strict upper triangle. Used to compare factors whose
// upper part holds unspecified values.
func (m *Dense) ZeroUpper() {
	for j := 1; j < m.c; j++ {
		for i := 0; i < j && i < m.r; i++ {
			m.data[m.off+i+j*m.ld] = 0
		}
	}
}

// MulVec computes y = m·x for a single column vector x.
//
// Errors:
//   - ErrDimensionMismatch when len(x) != Cols().
//
// Complexity:
//   - Time O(r*c), Space O(r).
func (m *Dense) MulVec(x []float64) ([]float64, error) {
	if len(x) != m.c {
		return nil, fmt.Errorf("MulVec: len(x)=%d, cols=%d: %w", len(x), m.c, ErrDimensionMismatch)
	}
	y := make([]float64, m.r)
	for j := 0; j < m.c; j++ {
		xj := x[j]
		if xj == 0 {
			continue
		}
		col := m.data[m.off+j*m.ld : m.off+j*m.ld+m.r]
		for i, v := range col {
			y[i] += v * xj
		}
	}

	return y, nil
}

// String HUMAN-READABLE dump of rows for diagnostics.
// Not for hot paths; intended for logs and debugging.
func (m *Dense) String() string {
	var sb strings.Builder
	for i := 0; i < m.r; i++ {
		sb.WriteString(_fmtRowOpen)
		for j := 0; j < m.c; j++ {
			if j > 0 {
				sb.WriteString(_fmtSep)
			}
			fmt.Fprintf(&sb, "%g", m.data[m.off+i+j*m.ld])
		}
		sb.WriteString(_fmtRowClose)
	}

	return sb.String()
}
