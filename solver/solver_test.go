// SPDX-License-Identifier: MIT

package solver_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/spchol/solver"
	"github.com/katalvlaran/spchol/spcholtest"
	"github.com/katalvlaran/spchol/supernode"
	"github.com/katalvlaran/spchol/tree"
	"github.com/katalvlaran/spchol/workspace"
)

type problem struct {
	name    string
	n       int
	entries []spcholtest.Entry
	sptr    []int
}

func problems() []problem {
	rng := rand.New(rand.NewSource(7))
	lap := spcholtest.Laplacian2D(7)
	sparse := spcholtest.RandomSPD(rng, 60, 0.04)
	denser := spcholtest.RandomSPD(rng, 40, 0.2)

	return []problem{
		{"laplacian-7x7-rows", 49, lap, spcholtest.UniformPartition(49, 7)},
		{"laplacian-7x7-pairs", 49, lap, spcholtest.UniformPartition(49, 2)},
		{"random-60-sparse", 60, sparse, spcholtest.UniformPartition(60, 3)},
		{"random-40-dense", 40, denser, spcholtest.UniformPartition(40, 5)},
		{"random-40-scalar", 40, denser, spcholtest.UniformPartition(40, 1)},
	}
}

func mustBuild(t *testing.T, p problem) (*tree.Tree, []float64) {
	t.Helper()
	tr, aval, err := spcholtest.BuildTree(p.n, p.entries, p.sptr)
	require.NoError(t, err)

	return tr, aval
}

func TestFactorizeSolve_Residual(t *testing.T) {
	for _, p := range problems() {
		for _, workers := range []int{1, 4} {
			t.Run(p.name, func(t *testing.T) {
				tr, aval := mustBuild(t, p)
				ws := workspace.NewManager()
				s, err := solver.New(tr, solver.WithWorkers(workers), solver.WithWorkspace(ws))
				require.NoError(t, err)

				f, err := s.Factorize(context.Background(), aval)
				require.NoError(t, err)

				const nrhs = 3
				ldb := p.n + 1
				rng := rand.New(rand.NewSource(11))
				b := spcholtest.RandomRHS(rng, ldb, nrhs)
				x := append([]float64(nil), b...)
				require.NoError(t, f.Solve(context.Background(), x, nrhs, ldb))

				a := spcholtest.DenseOf(p.n, p.entries)
				assert.Less(t, spcholtest.Residual(a, x, b, nrhs, ldb), 1e-9)
				for c := 0; c < nrhs; c++ {
					assert.Equal(t, b[c*ldb+p.n], x[c*ldb+p.n], "padding row written")
				}
				assert.Zero(t, ws.Outstanding())
			})
		}
	}
}

func TestFactorize_MatchesDenseCholesky(t *testing.T) {
	p := problems()[3]
	tr, aval := mustBuild(t, p)
	s, err := solver.New(tr, solver.WithLDPadding(2))
	require.NoError(t, err)
	f, err := s.Factorize(context.Background(), aval)
	require.NoError(t, err)

	got := spcholtest.AssembleL(tr, f.L(), f.Layout().Place)

	a := spcholtest.DenseOf(p.n, p.entries)
	sym := mat.NewSymDense(p.n, nil)
	for i := 0; i < p.n; i++ {
		for j := 0; j <= i; j++ {
			v, _ := a.At(i, j)
			sym.SetSym(i, j, v)
		}
	}
	var chol mat.Cholesky
	require.True(t, chol.Factorize(sym))
	var ref mat.TriDense
	chol.LTo(&ref)

	for i := 0; i < p.n; i++ {
		for j := 0; j <= i; j++ {
			v, _ := got.At(i, j)
			assert.InDelta(t, ref.At(i, j), v, 1e-10, "L(%d,%d)", i, j)
		}
	}
}

func TestFactorize_WorkerCountDoesNotChangeFactor(t *testing.T) {
	p := problems()[2]
	tr, aval := mustBuild(t, p)

	seq, err := solver.New(tr, solver.WithWorkers(1))
	require.NoError(t, err)
	par, err := solver.New(tr, solver.WithWorkers(8))
	require.NoError(t, err)

	fs, err := seq.Factorize(context.Background(), aval)
	require.NoError(t, err)
	fp, err := par.Factorize(context.Background(), aval)
	require.NoError(t, err)

	require.Len(t, fp.L(), len(fs.L()))
	for i := range fs.L() {
		assert.InDelta(t, fs.L()[i], fp.L()[i], 1e-12)
	}
}

func TestFactorize_NotPositiveDefinite(t *testing.T) {
	const k = 4
	entries := spcholtest.Laplacian2D(k)
	for i := range entries {
		if entries[i].Row == 10 && entries[i].Col == 10 {
			entries[i].Val = -4
		}
	}
	tr, aval, err := spcholtest.BuildTree(k*k, entries, spcholtest.UniformPartition(k*k, k))
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	ws := workspace.NewManager()
	s, err := solver.New(tr, solver.WithLogger(logger), solver.WithWorkspace(ws))
	require.NoError(t, err)

	before := testutil.ToFloat64(solver.FactorizeFailures().WithLabelValues("not_positive_definite"))
	f, err := s.Factorize(context.Background(), aval)
	require.Error(t, err)
	assert.Nil(t, f)
	assert.True(t, errors.Is(err, supernode.ErrNotPositiveDefinite))

	var npd *supernode.NotPositiveDefiniteError
	require.True(t, errors.As(err, &npd))
	assert.Equal(t, 2, npd.Node)
	assert.Equal(t, 3, npd.Pivot)

	after := testutil.ToFloat64(solver.FactorizeFailures().WithLabelValues("not_positive_definite"))
	assert.Equal(t, before+1, after)
	assert.Contains(t, logs.String(), "factorization failed")
	assert.Zero(t, ws.Outstanding())
}

func TestFactorize_ShortValues(t *testing.T) {
	tr, aval := mustBuild(t, problems()[0])
	s, err := solver.New(tr)
	require.NoError(t, err)

	_, err = s.Factorize(context.Background(), aval[:len(aval)-1])
	assert.ErrorIs(t, err, solver.ErrShortValues)
}

func TestFactorize_Canceled(t *testing.T) {
	tr, aval := mustBuild(t, problems()[1])
	for _, workers := range []int{1, 3} {
		s, err := solver.New(tr, solver.WithWorkers(workers))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = s.Factorize(ctx, aval)
		assert.ErrorIs(t, err, context.Canceled, "workers=%d", workers)
	}
}

func TestSolve_BadRHS(t *testing.T) {
	p := problems()[0]
	tr, aval := mustBuild(t, p)
	s, err := solver.New(tr)
	require.NoError(t, err)
	f, err := s.Factorize(context.Background(), aval)
	require.NoError(t, err)

	cases := []struct {
		name      string
		b         []float64
		nrhs, ldb int
	}{
		{"zero rhs", make([]float64, p.n), 0, p.n},
		{"small ld", make([]float64, 2*p.n), 2, p.n - 1},
		{"short b", make([]float64, 2*p.n-1), 2, p.n},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, f.Solve(context.Background(), tc.b, tc.nrhs, tc.ldb), solver.ErrBadRHS)
		})
	}
}

func TestNew_NilTree(t *testing.T) {
	_, err := solver.New(nil)
	assert.ErrorIs(t, err, solver.ErrNilTree)
}

func TestOptions_Panics(t *testing.T) {
	assert.Panics(t, func() { solver.WithWorkers(0) })
	assert.Panics(t, func() { solver.WithLDPadding(-1) })
}

func TestLayout_PackedInTreeOrder(t *testing.T) {
	tr, _ := mustBuild(t, problems()[0])
	for _, pad := range []int{0, 3} {
		l := solver.NewLayout(tr, pad)
		off := 0
		for i := 0; i < tr.Len(); i++ {
			nd := tr.Node(i)
			assert.Equal(t, off, l.Offset(i))
			assert.Equal(t, nd.NRow()+pad, l.LD(i))
			off += (nd.NRow() + pad) * nd.NCol
		}
		assert.Equal(t, off, l.Size())
	}
}

func TestFactor_DumpAndNodes(t *testing.T) {
	tr, aval := mustBuild(t, problems()[0])
	s, err := solver.New(tr)
	require.NoError(t, err)
	f, err := s.Factorize(context.Background(), aval)
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, f.Dump(&out))
	assert.Equal(t, tr.Len(), strings.Count(out.String(), "NODE "))
	assert.Same(t, tr.Node(0), f.Node(0).Tree())
	assert.Equal(t, s.Layout(), f.Layout())
}

func TestFactorize_CountsNodes(t *testing.T) {
	tr, aval := mustBuild(t, problems()[2])
	s, err := solver.New(tr, solver.WithWorkers(2))
	require.NoError(t, err)

	before := testutil.ToFloat64(solver.NodesFactored())
	_, err = s.Factorize(context.Background(), aval)
	require.NoError(t, err)
	assert.Equal(t, before+float64(tr.Len()), testutil.ToFloat64(solver.NodesFactored()))
}

func BenchmarkFactorize_Laplacian(b *testing.B) {
	const k = 24
	entries := spcholtest.Laplacian2D(k)
	tr, aval, err := spcholtest.BuildTree(k*k, entries, spcholtest.UniformPartition(k*k, k))
	require.NoError(b, err)
	s, err := solver.New(tr)
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Factorize(context.Background(), aval); err != nil {
			b.Fatal(err)
		}
	}
}
