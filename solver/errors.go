// SPDX-License-Identifier: MIT

package solver

import "errors"

var (
	// ErrNilTree is returned by New for a nil tree.
	ErrNilTree = errors.New("solver: nil tree")

	// ErrShortValues indicates fewer values than the tree's assembly lists reference.
	ErrShortValues = errors.New("solver: value array shorter than entry count")

	// ErrBadRHS indicates an inconsistent right-hand-side block.
	ErrBadRHS = errors.New("solver: invalid right-hand side")
)
