// SPDX-License-Identifier: MIT

package solver

import "github.com/katalvlaran/spchol/tree"

// Layout places every node block inside one flat factor array.
// Blocks are packed in tree (post-)order, each column-major with leading
// dimension m + padding.
type Layout struct {
	offsets []int
	lds     []int
	size    int
}

// NewLayout computes the placement for t. Panics on padding < 0.
func NewLayout(t *tree.Tree, padding int) *Layout {
	if padding < 0 {
		panic("solver: NewLayout(padding<0)")
	}
	l := &Layout{
		offsets: make([]int, t.Len()),
		lds:     make([]int, t.Len()),
	}
	for i := 0; i < t.Len(); i++ {
		nd := t.Node(i)
		l.offsets[i] = l.size
		l.lds[i] = nd.NRow() + padding
		l.size += l.lds[i] * nd.NCol
	}

	return l
}

// Offset returns the start of node i's block.
func (l *Layout) Offset(i int) int { return l.offsets[i] }

// LD returns the leading dimension of node i's block.
func (l *Layout) LD(i int) int { return l.lds[i] }

// Size is the length the factor array must have.
func (l *Layout) Size() int { return l.size }

// Place reports (offset, ld) for node i.
func (l *Layout) Place(i int) (off, ld int) { return l.offsets[i], l.lds[i] }
