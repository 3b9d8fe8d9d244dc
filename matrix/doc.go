// Package matrix offers a small column-major dense matrix used around the
// supernodal factorization.
//
// The matrix package provides:
//
//   - Dense: an owned or borrowed column-major window with explicit leading
//     dimension, the same layout the kernel package operates on.
//   - NewView: zero-copy access to a node's block inside shared factor storage.
//   - Safe accessors (At/Set/Add) returning sentinel errors instead of panicking.
//   - Small reference helpers (MulVec, SymmetrizeLower, AllClose) for residual
//     checks and fixtures.
//
// Element (i,j) of a Dense lives at data[off + i + j*ld].
package matrix
