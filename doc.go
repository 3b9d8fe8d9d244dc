// Package spchol is a supernodal sparse Cholesky factorization for symmetric
// positive definite matrices, with the numeric work done per supernode on
// dense blocks.
//
// What is inside:
//
//	kernel/       column-major Potrf, Trsm, Syrk, Gemm on top of gonum BLAS
//	workspace/    typed, pooled scratch buffers with scoped leases
//	tree/         assembly tree of supernodes: validation and schedules
//	supernode/    the per-node kernel: Factor, ForwardSolve, BackwardSolve
//	solver/       whole-tree driver: layout, parallel factorize, solve
//	matrix/       small column-major Dense used for views and references
//	spcholtest/   model problems and dense references for tests
//	cmd/spchol    CLI running model problems end to end
//
// Quick start:
//
//	t, aval, _ := spcholtest.BuildTree(n, entries, spcholtest.UniformPartition(n, 16))
//	s, _ := solver.New(t, solver.WithWorkers(4))
//	f, err := s.Factorize(ctx, aval)
//	if errors.Is(err, supernode.ErrNotPositiveDefinite) { ... }
//	_ = f.Solve(ctx, b, nrhs, ldb) // b is overwritten with X
//
// The symbolic analysis (ordering, supernode detection) is not part of this
// module: the assembly tree is an input.
package spchol
