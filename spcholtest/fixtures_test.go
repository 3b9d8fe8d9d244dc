// SPDX-License-Identifier: MIT

package spcholtest_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/spchol/spcholtest"
)

func TestUniformPartition(t *testing.T) {
	assert.Equal(t, []int{0, 3, 6, 7}, spcholtest.UniformPartition(7, 3))
	assert.Equal(t, []int{0, 5}, spcholtest.UniformPartition(5, 8))
	assert.Equal(t, []int{0, 1, 2}, spcholtest.UniformPartition(2, 0))
}

func TestLaplacian2D_Counts(t *testing.T) {
	es := spcholtest.Laplacian2D(3)
	require.Len(t, es, 9+6+6)
	for k := 1; k < len(es); k++ {
		prev, cur := es[k-1], es[k]
		assert.True(t, prev.Col < cur.Col || (prev.Col == cur.Col && prev.Row < cur.Row), "sorted at %d", k)
	}
}

func TestRandomSPD_DiagonallyDominant(t *testing.T) {
	const n = 25
	es := spcholtest.RandomSPD(rand.New(rand.NewSource(3)), n, 0.3)
	a := spcholtest.DenseOf(n, es)
	for i := 0; i < n; i++ {
		off := 0.0
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			v, err := a.At(i, j)
			require.NoError(t, err)
			if v < 0 {
				v = -v
			}
			off += v
		}
		d, _ := a.At(i, i)
		assert.Greater(t, d, off, "row %d", i)
	}
}

func TestBuildTree_ArrowAndChain(t *testing.T) {
	// Arrow matrix: every column couples with the last row.
	const n = 5
	var es []spcholtest.Entry
	for j := 0; j < n; j++ {
		es = append(es, spcholtest.Entry{Row: j, Col: j, Val: 10})
		if j < n-1 {
			es = append(es, spcholtest.Entry{Row: n - 1, Col: j, Val: 1})
		}
	}
	tr, aval, err := spcholtest.BuildTree(n, es, []int{0, 1, 2, 4, 5})
	require.NoError(t, err)
	require.Len(t, aval, len(es))

	assert.Equal(t, []int{0, 4}, tr.Node(0).Rows)
	assert.Equal(t, []int{2, 3, 4}, tr.Node(2).Rows)
	assert.Equal(t, 3, tr.Node(0).Parent)
	assert.Equal(t, 3, tr.Node(2).Parent)
	assert.Equal(t, []int{0, 1, 2}, tr.Children(3))
	assert.Equal(t, len(es), tr.NumEntries())
}

func TestBuildTree_FillPropagates(t *testing.T) {
	// (2,0) and (1,0) fill (2,1): node 1 must hold row 2 although A(2,1) = 0.
	es := []spcholtest.Entry{
		{Row: 0, Col: 0, Val: 4}, {Row: 1, Col: 0, Val: 1}, {Row: 2, Col: 0, Val: 1},
		{Row: 1, Col: 1, Val: 4},
		{Row: 2, Col: 2, Val: 4},
	}
	tr, _, err := spcholtest.BuildTree(3, es, []int{0, 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, tr.Node(1).Rows)
	assert.Equal(t, []int{1, 2}, tr.Ancestors(0))
}

func TestBuildTree_Errors(t *testing.T) {
	es := spcholtest.Laplacian2D(2)
	_, _, err := spcholtest.BuildTree(4, es, []int{0, 2})
	assert.Error(t, err, "partition must end at n")

	_, _, err = spcholtest.BuildTree(4, es, []int{0, 2, 2, 4})
	assert.Error(t, err, "empty supernode")

	_, _, err = spcholtest.BuildTree(4, []spcholtest.Entry{{Row: 0, Col: 1, Val: 1}}, []int{0, 4})
	assert.Error(t, err, "upper entry")
}

func TestResidualOfExactSolution(t *testing.T) {
	a := spcholtest.DenseOf(2, []spcholtest.Entry{{Row: 0, Col: 0, Val: 2}, {Row: 1, Col: 0, Val: 1}, {Row: 1, Col: 1, Val: 3}})
	x := []float64{1, 1, 0}
	b := []float64{3, 4, 0}
	assert.Zero(t, spcholtest.Residual(a, x, b, 1, 3))

	b[1] = 5
	assert.Equal(t, 1.0, spcholtest.Residual(a, x, b, 1, 3))
}
