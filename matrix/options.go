// SPDX-License-Identifier: MIT

// Package matrix: numeric policy defaults.
//
// Design goals:
//   - Deterministic behavior: no global mutable state, no implicit randomness.
//   - No dead switches: each flag impacts behavior and is covered by tests.
package matrix

import "math"

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultEpsilon is the absolute tolerance used by AllClose when callers
	// do not supply their own.
	DefaultEpsilon = 1e-9

	// DefaultValidateNaNInf toggles strict finite-value validation in Set/Add.
	DefaultValidateNaNInf = true
)

// SetValidateNaNInf switches the per-instance NaN/Inf guard of Set and Add.
func (m *Dense) SetValidateNaNInf(on bool) { m.validateNaNInf = on }

// AllClose reports whether a and b have the same shape and every pair of
// entries differs by at most tol in absolute value. A negative tol selects
// DefaultEpsilon.
func AllClose(a, b *Dense, tol float64) bool {
	if tol < 0 {
		tol = DefaultEpsilon
	}
	if a.r != b.r || a.c != b.c {
		return false
	}
	for j := 0; j < a.c; j++ {
		for i := 0; i < a.r; i++ {
			d := a.data[a.off+i+j*a.ld] - b.data[b.off+i+j*b.ld]
			if math.IsNaN(d) || math.Abs(d) > tol {
				return false
			}
		}
	}

	return true
}
