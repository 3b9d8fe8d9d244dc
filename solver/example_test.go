// SPDX-License-Identifier: MIT

package solver_test

import (
	"context"
	"fmt"

	"github.com/katalvlaran/spchol/solver"
	"github.com/katalvlaran/spchol/spcholtest"
)

// ExampleSolver factorizes the 3×3-grid Laplacian with one supernode per grid
// row and solves for a right-hand side of all ones.
func ExampleSolver() {
	const k = 3
	entries := spcholtest.Laplacian2D(k)
	t, aval, err := spcholtest.BuildTree(k*k, entries, spcholtest.UniformPartition(k*k, k))
	if err != nil {
		panic(err)
	}

	s, err := solver.New(t)
	if err != nil {
		panic(err)
	}
	f, err := s.Factorize(context.Background(), aval)
	if err != nil {
		panic(err)
	}

	b := make([]float64, k*k)
	for i := range b {
		b[i] = 1
	}
	x := append([]float64(nil), b...)
	if err := f.Solve(context.Background(), x, 1, k*k); err != nil {
		panic(err)
	}

	res := spcholtest.Residual(spcholtest.DenseOf(k*k, entries), x, b, 1, k*k)
	fmt.Printf("nodes=%d storage=%d residual<1e-12: %v\n", t.Len(), s.Layout().Size(), res < 1e-12)
	// Output: nodes=3 storage=45 residual<1e-12: true
}
