// SPDX-License-Identifier: MIT

package supernode

import (
	"errors"
	"fmt"
)

var (
	// ErrNotPositiveDefinite is matched (errors.Is) by every
	// *NotPositiveDefiniteError. It is terminal for a factorization run.
	ErrNotPositiveDefinite = errors.New("supernode: matrix not positive definite")

	// ErrStructure marks a violated assembly-tree invariant detected by the
	// kernel. It is raised by panic, never returned: a malformed tree is a
	// programming defect upstream, not a runtime condition.
	ErrStructure = errors.New("supernode: assembly tree invariant violated")
)

// NotPositiveDefiniteError reports the node and the 1-based pivot (column of
// the node's diagonal block) at which the Cholesky factorization broke down.
type NotPositiveDefiniteError struct {
	Node  int // tree index of the failing node
	Pivot int // 1-based local pivot, as reported by the kernel
}

func (e *NotPositiveDefiniteError) Error() string {
	return fmt.Sprintf("supernode: node %d: leading minor %d not positive definite", e.Node, e.Pivot)
}

// Is makes errors.Is(err, ErrNotPositiveDefinite) true.
func (e *NotPositiveDefiniteError) Is(target error) bool {
	return target == ErrNotPositiveDefinite
}

// structuref panics with ErrStructure and node context.
func structuref(node int, format string, args ...any) {
	panic(fmt.Errorf("supernode: node %d: %s: %w", node, fmt.Sprintf(format, args...), ErrStructure))
}
