// SPDX-License-Identifier: MIT

// Package spcholtest provides deterministic fixtures for testing the
// supernodal factorization: sparse SPD model problems, a supernode tree
// derived from a given column partition, and dense references.
//
// The tree derivation here is fixture tooling. It performs no fill-reducing
// ordering and no amalgamation; it takes the natural ordering and the
// supernode boundaries it is given.
package spcholtest

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/katalvlaran/spchol/matrix"
	"github.com/katalvlaran/spchol/tree"
)

// Entry is one stored value of the lower triangle (Row >= Col) of a
// symmetric matrix.
type Entry struct {
	Row, Col int
	Val      float64
}

// RandomSPD returns the lower triangle of a random symmetric, strictly
// diagonally dominant (hence positive definite) n×n matrix. Each strictly
// lower entry is present with probability density.
func RandomSPD(rng *rand.Rand, n int, density float64) []Entry {
	absSum := make([]float64, n)
	var out []Entry
	for j := 0; j < n; j++ {
		for i := j + 1; i < n; i++ {
			if rng.Float64() >= density {
				continue
			}
			v := rng.Float64()*2 - 1
			out = append(out, Entry{Row: i, Col: j, Val: v})
			absSum[i] += math.Abs(v)
			absSum[j] += math.Abs(v)
		}
	}
	for j := 0; j < n; j++ {
		out = append(out, Entry{Row: j, Col: j, Val: absSum[j] + 1 + rng.Float64()})
	}
	sortEntries(out)

	return out
}

// Laplacian2D returns the lower triangle of the 5-point Laplacian on a k×k
// grid (order k², natural row-by-row numbering).
func Laplacian2D(k int) []Entry {
	var out []Entry
	for y := 0; y < k; y++ {
		for x := 0; x < k; x++ {
			c := y*k + x
			out = append(out, Entry{Row: c, Col: c, Val: 4})
			if x+1 < k {
				out = append(out, Entry{Row: c + 1, Col: c, Val: -1})
			}
			if y+1 < k {
				out = append(out, Entry{Row: c + k, Col: c, Val: -1})
			}
		}
	}
	sortEntries(out)

	return out
}

// sortEntries orders by column, then row.
func sortEntries(es []Entry) {
	sort.Slice(es, func(a, b int) bool {
		if es[a].Col != es[b].Col {
			return es[a].Col < es[b].Col
		}
		return es[a].Row < es[b].Row
	})
}

// UniformPartition splits [0,n) into consecutive supernodes of at most size
// columns and returns the boundaries sptr (len = nodes+1, sptr[0]=0, last=n).
func UniformPartition(n, size int) []int {
	if size < 1 {
		size = 1
	}
	sptr := []int{0}
	for c := size; c < n; c += size {
		sptr = append(sptr, c)
	}

	return append(sptr, n)
}

// BuildTree derives the assembly tree of the lower-triangle entries for the
// supernode boundaries sptr and returns it with the values array (aval[i] =
// entries[i].Val, assembly Src == i).
// MAIN DESCRIPTION:
//   - rows(s) = pivots(s) ∪ rows of entries in s's columns ∪ retained rows of
//     every child, where the parent of s owns s's first retained row.
//
// Errors:
//   - bad partition or entries outside the lower triangle; tree validation errors.
func BuildTree(n int, entries []Entry, sptr []int) (*tree.Tree, []float64, error) {
	if len(sptr) < 2 || sptr[0] != 0 || sptr[len(sptr)-1] != n {
		return nil, nil, fmt.Errorf("spcholtest: bad partition %v for n=%d", sptr, n)
	}
	ns := len(sptr) - 1
	owner := make([]int, n)
	for s := 0; s < ns; s++ {
		if sptr[s+1] <= sptr[s] {
			return nil, nil, fmt.Errorf("spcholtest: empty supernode %d", s)
		}
		for c := sptr[s]; c < sptr[s+1]; c++ {
			owner[c] = s
		}
	}

	byNode := make([][]int, ns) // entry indices per supernode
	aval := make([]float64, len(entries))
	for i, e := range entries {
		if e.Row < e.Col || e.Col < 0 || e.Row >= n {
			return nil, nil, fmt.Errorf("spcholtest: entry %d (%d,%d) outside lower triangle", i, e.Row, e.Col)
		}
		aval[i] = e.Val
		byNode[owner[e.Col]] = append(byNode[owner[e.Col]], i)
	}

	nodes := make([]tree.Node, ns)
	pending := make([][]int, ns) // retained rows handed up by children
	mark := make([]int, n)
	for i := range mark {
		mark[i] = -1
	}
	for s := 0; s < ns; s++ {
		var rows []int
		add := func(r int) {
			if mark[r] != s {
				mark[r] = s
				rows = append(rows, r)
			}
		}
		for c := sptr[s]; c < sptr[s+1]; c++ {
			add(c)
		}
		for _, ei := range byNode[s] {
			add(entries[ei].Row)
		}
		for _, r := range pending[s] {
			add(r)
		}
		sort.Ints(rows)

		ncol := sptr[s+1] - sptr[s]
		parent := -1
		if len(rows) > ncol {
			parent = owner[rows[ncol]]
			pending[parent] = append(pending[parent], rows[ncol:]...)
		}

		asm := make([]tree.AssemblyEntry, 0, len(byNode[s]))
		for _, ei := range byNode[s] {
			e := entries[ei]
			asm = append(asm, tree.AssemblyEntry{
				Src:     ei,
				DestRow: sort.SearchInts(rows, e.Row),
				DestCol: e.Col - sptr[s],
			})
		}
		nodes[s] = tree.Node{Idx: s, Rows: rows, NCol: ncol, Assembly: asm, Parent: parent}
	}

	t, err := tree.NewTree(nodes, n)
	if err != nil {
		return nil, nil, err
	}

	return t, aval, nil
}

// DenseOf expands the lower-triangle entries into the full symmetric matrix.
func DenseOf(n int, entries []Entry) *matrix.Dense {
	a, err := matrix.NewDense(n, n)
	if err != nil {
		panic(err)
	}
	for _, e := range entries {
		_ = a.Add(e.Row, e.Col, e.Val)
		if e.Row != e.Col {
			_ = a.Add(e.Col, e.Row, e.Val)
		}
	}

	return a
}

// RandomRHS returns an n×nrhs column-major block with leading dimension n.
func RandomRHS(rng *rand.Rand, n, nrhs int) []float64 {
	b := make([]float64, n*nrhs)
	for i := range b {
		b[i] = rng.Float64()*2 - 1
	}

	return b
}

// Residual returns max |A·x - b| over all entries of the nrhs columns
// (column-major, leading dimension ld).
func Residual(a *matrix.Dense, x, b []float64, nrhs, ld int) float64 {
	n := a.Rows()
	worst := 0.0
	for c := 0; c < nrhs; c++ {
		ax, err := a.MulVec(x[c*ld : c*ld+n])
		if err != nil {
			panic(err)
		}
		for i, v := range ax {
			if d := math.Abs(v - b[c*ld+i]); d > worst || math.IsNaN(d) {
				worst = d
			}
		}
	}

	return worst
}

// AssembleL gathers the supernodal factor into a dense lower-triangular n×n
// matrix. place reports each node's offset and leading dimension in lval.
func AssembleL(t *tree.Tree, lval []float64, place func(node int) (off, ld int)) *matrix.Dense {
	l, err := matrix.NewDense(t.MaxRowIndex(), t.MaxRowIndex())
	if err != nil {
		panic(err)
	}
	for s := 0; s < t.Len(); s++ {
		nd := t.Node(s)
		off, ld := place(s)
		for j := 0; j < nd.NCol; j++ {
			for i := j; i < nd.NRow(); i++ {
				_ = l.Set(nd.Rows[i], nd.FirstCol()+j, lval[off+i+j*ld])
			}
		}
	}

	return l
}
