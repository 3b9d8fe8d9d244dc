// SPDX-License-Identifier: MIT

package supernode

import (
	"fmt"
	"io"

	"github.com/katalvlaran/spchol/matrix"
)

// Block returns a zero-copy m×n view of this node's block inside lval.
// The view's numeric policy is relaxed so a block of a failed run, which may
// hold NaN, can still be read and rewritten for diagnostics.
func (nd *Node) Block(lval []float64) (*matrix.Dense, error) {
	v, err := matrix.NewView(lval, nd.loffset, nd.m, nd.n, nd.ldl)
	if err != nil {
		return nil, fmt.Errorf("supernode: node %d: %w", nd.tn.Idx, err)
	}
	v.SetValidateNaNInf(false)

	return v, nil
}

// Dump writes a human-readable listing of the node block: a header line,
// then one line per row with the global row index and the n entries.
func (nd *Node) Dump(w io.Writer, lval []float64) error {
	if _, err := fmt.Fprintf(w, "NODE %d is %d x %d (parent %d)\n", nd.tn.Idx, nd.m, nd.n, nd.tn.Parent); err != nil {
		return err
	}
	for i, row := range nd.tn.Rows {
		if _, err := fmt.Fprintf(w, "%d:", row); err != nil {
			return err
		}
		for j := 0; j < nd.n; j++ {
			if _, err := fmt.Fprintf(w, " %e", lval[nd.loffset+j*nd.ldl+i]); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")

	return err
}
