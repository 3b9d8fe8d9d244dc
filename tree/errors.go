// SPDX-License-Identifier: MIT

package tree

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by NewTree. Callers match with errors.Is; the
// returned error carries the offending node index as context.
var (
	// ErrBadShape: NCol <= 0, NCol > len(Rows), or a row outside [0, nrows).
	ErrBadShape = errors.New("tree: invalid node shape")

	// ErrUnsorted: Rows is not strictly ascending.
	ErrUnsorted = errors.New("tree: row list not strictly ascending")

	// ErrNonContiguousPivots: the pivot rows of a node are not consecutive
	// indices, or pivot ranges do not partition [0, nrows) in node order.
	ErrNonContiguousPivots = errors.New("tree: pivot columns not contiguous")

	// ErrBadParent: parent index not after the node (post-order), out of range,
	// or the parent does not own the node's first retained row.
	ErrBadParent = errors.New("tree: invalid parent")

	// ErrUncoveredRow: a retained row is not a pivot of any ancestor, or the
	// ancestors do not cover the retained rows as consecutive runs.
	ErrUncoveredRow = errors.New("tree: retained row not covered by ancestors")

	// ErrBadAssembly: an assembly entry points outside the lower part of the
	// node's block or at a negative source index.
	ErrBadAssembly = errors.New("tree: invalid assembly entry")
)

// nodeErrorf wraps err with the node index and a short detail.
func nodeErrorf(idx int, err error, format string, args ...any) error {
	return fmt.Errorf("tree: node %d: %s: %w", idx, fmt.Sprintf(format, args...), err)
}
