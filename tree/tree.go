// SPDX-License-Identifier: MIT

// Package tree - assembly tree of supernodes (symbolic structure, read-only).
//
// Purpose:
//   - Describe, per supernode, the global rows it touches, how many of them it
//     eliminates (pivots), where the original matrix entries land in its dense
//     block, and which node is its parent.
//   - Validate the structural invariants the numeric kernel relies on once, at
//     construction, so the hot path can treat them as facts.
//
// Determinism:
//   - Nodes are indexed in post-order (every child index < parent index);
//     all derived schedules (Levels, DepthGroups, Ancestors) are built in index order.

package tree

import (
	"fmt"
	"sort"
)

// AssemblyEntry maps one stored value of the original sparse matrix into a
// node's dense block: block[DestRow, DestCol] += aval[Src].
type AssemblyEntry struct {
	Src     int // index into the original values array
	DestRow int // local row inside the node block, 0 <= DestRow < NRow()
	DestCol int // local column inside the node block, 0 <= DestCol < NCol
}

// Node is the symbolic description of one supernode.
//   - Rows[0:NCol] are the pivot rows (consecutive global indices).
//   - Rows[NCol:] are the retained rows, eliminated at ancestors.
type Node struct {
	Idx      int
	Rows     []int
	NCol     int
	Assembly []AssemblyEntry
	Parent   int // -1 for a root
}

// NRow returns m, the number of rows touched by the node.
func (n *Node) NRow() int { return len(n.Rows) }

// FirstCol returns the global index of the first pivot column.
func (n *Node) FirstCol() int { return n.Rows[0] }

// PivotRows returns Rows[0:NCol]. The slice aliases the node.
func (n *Node) PivotRows() []int { return n.Rows[:n.NCol] }

// RetainedRows returns Rows[NCol:]. The slice aliases the node.
func (n *Node) RetainedRows() []int { return n.Rows[n.NCol:] }

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.Parent < 0 }

// ContainsColumn reports whether row is one of this node's pivot columns.
func (n *Node) ContainsColumn(row int) bool {
	first := n.Rows[0]
	return row >= first && row < first+n.NCol
}

// ConstructRowMap sets buf[row] = local offset for every row of the node,
// pivot and retained alike, so a descendant can place entries that land in
// the rectangular part too. Entries for other rows are left untouched.
func (n *Node) ConstructRowMap(buf []int) {
	for i, row := range n.Rows {
		buf[row] = i
	}
}

// Tree is a validated assembly tree.
type Tree struct {
	nodes      []Node
	nrows      int
	nentries   int     // 1 + largest assembly Src
	children   [][]int // children[i] ascending
	owner      []int   // owner[row] = node eliminating row
	height     []int
	depth      []int
	levels     [][]int
	depthGroup [][]int
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns node i. The pointer aliases the tree and must be treated as read-only.
func (t *Tree) Node(i int) *Node { return &t.nodes[i] }

// MaxRowIndex returns the size a global-row map buffer must have (the order of the matrix).
func (t *Tree) MaxRowIndex() int { return t.nrows }

// NumEntries returns the minimum length of the original values array.
func (t *Tree) NumEntries() int { return t.nentries }

// Owner returns the node whose pivots include row.
func (t *Tree) Owner(row int) int { return t.owner[row] }

// Children returns the children of node i in ascending index order.
func (t *Tree) Children(i int) []int { return t.children[i] }

// Ancestors returns the chain parent, grandparent, ..., root of node i.
func (t *Tree) Ancestors(i int) []int {
	var out []int
	for p := t.nodes[i].Parent; p >= 0; p = t.nodes[p].Parent {
		out = append(out, p)
	}

	return out
}

// Height returns 0 for leaves, otherwise 1 + the largest child height.
func (t *Tree) Height(i int) int { return t.height[i] }

// Depth returns 0 for roots, otherwise 1 + the parent's depth.
func (t *Tree) Depth(i int) int { return t.depth[i] }

// Levels groups nodes by Height, lowest first. No node shares a group with
// any of its ancestors, so a group can be processed concurrently once all
// earlier groups are done (bottom-up schedules).
func (t *Tree) Levels() [][]int { return t.levels }

// DepthGroups groups nodes by Depth, roots first (top-down schedules).
func (t *Tree) DepthGroups() [][]int { return t.depthGroup }

// NewTree validates nodes and builds the derived schedules.
// MAIN DESCRIPTION:
//   - Nodes must already be in post-order and indexed by position.
//
// Implementation:
//   - Stage 1: per-node shape, ordering, contiguity and assembly checks.
//   - Stage 2: pivot ranges partition [0, nrows).
//   - Stage 3: parent checks, then coverage of retained rows by the ancestor
//     chain as consecutive runs, each run's tail present in that ancestor's rows.
//   - Stage 4: children lists, heights, depths and groups.
//
// Errors:
//   - ErrBadShape, ErrUnsorted, ErrNonContiguousPivots, ErrBadParent,
//     ErrUncoveredRow, ErrBadAssembly (wrapped with the node index).
//
// Complexity:
//   - Time O(Σ m·log m + Σ depth·m) in the worst case, Space O(nrows + nodes).
func NewTree(nodes []Node, nrows int) (*Tree, error) {
	t := &Tree{
		nodes: nodes,
		nrows: nrows,
		owner: make([]int, nrows),
	}
	for r := range t.owner {
		t.owner[r] = -1
	}

	// Stage 1 + 2: local checks and pivot ownership.
	for i := range nodes {
		if err := t.checkLocal(i); err != nil {
			return nil, err
		}
		nd := &nodes[i]
		for _, r := range nd.PivotRows() {
			if t.owner[r] >= 0 {
				return nil, nodeErrorf(i, ErrNonContiguousPivots, "row %d already eliminated by node %d", r, t.owner[r])
			}
			t.owner[r] = i
		}
	}
	for r, o := range t.owner {
		if o < 0 {
			return nil, fmt.Errorf("tree: row %d is not a pivot of any node: %w", r, ErrNonContiguousPivots)
		}
	}

	// Stage 3: parents and retained-row coverage.
	for i := range nodes {
		if err := t.checkParent(i); err != nil {
			return nil, err
		}
	}
	for i := range nodes {
		if err := t.checkCoverage(i); err != nil {
			return nil, err
		}
	}

	// Stage 4: schedules.
	t.buildSchedules()

	return t, nil
}

// checkLocal validates one node in isolation.
func (t *Tree) checkLocal(i int) error {
	nd := &t.nodes[i]
	if nd.Idx != i {
		return nodeErrorf(i, ErrBadShape, "Idx=%d", nd.Idx)
	}
	m := len(nd.Rows)
	if nd.NCol <= 0 || nd.NCol > m {
		return nodeErrorf(i, ErrBadShape, "NCol=%d, rows=%d", nd.NCol, m)
	}
	for k, r := range nd.Rows {
		if r < 0 || r >= t.nrows {
			return nodeErrorf(i, ErrBadShape, "row %d outside [0,%d)", r, t.nrows)
		}
		if k > 0 && r <= nd.Rows[k-1] {
			return nodeErrorf(i, ErrUnsorted, "rows[%d]=%d after %d", k, r, nd.Rows[k-1])
		}
		if k < nd.NCol && r != nd.Rows[0]+k {
			return nodeErrorf(i, ErrNonContiguousPivots, "pivot %d is row %d", k, r)
		}
	}
	for _, e := range nd.Assembly {
		if e.Src < 0 || e.DestCol < 0 || e.DestCol >= nd.NCol || e.DestRow < e.DestCol || e.DestRow >= m {
			return nodeErrorf(i, ErrBadAssembly, "%+v", e)
		}
		if e.Src+1 > t.nentries {
			t.nentries = e.Src + 1
		}
	}

	return nil
}

// checkParent enforces post-order indices and that the parent eliminates the
// first retained row.
func (t *Tree) checkParent(i int) error {
	nd := &t.nodes[i]
	p := nd.Parent
	if p < 0 {
		if nd.NCol < len(nd.Rows) {
			return nodeErrorf(i, ErrBadParent, "root with %d retained rows", len(nd.Rows)-nd.NCol)
		}
		return nil
	}
	if p <= i || p >= len(t.nodes) {
		return nodeErrorf(i, ErrBadParent, "parent %d", p)
	}
	if nd.NCol < len(nd.Rows) && t.owner[nd.Rows[nd.NCol]] != p {
		return nodeErrorf(i, ErrBadParent, "first retained row %d owned by node %d, parent is %d",
			nd.Rows[nd.NCol], t.owner[nd.Rows[nd.NCol]], p)
	}

	return nil
}

// checkCoverage walks the ancestor chain exactly as the numeric distribution
// does and verifies every retained row is consumed, and that each ancestor
// holds all rows from its run onwards (so its row map is defined for them).
func (t *Tree) checkCoverage(i int) error {
	rest := t.nodes[i].RetainedRows()
	for a := t.nodes[i].Parent; a >= 0 && len(rest) > 0; a = t.nodes[a].Parent {
		anc := &t.nodes[a]
		used := 0
		for used < len(rest) && anc.ContainsColumn(rest[used]) {
			used++
		}
		if used == 0 {
			continue
		}
		for _, r := range rest {
			if !containsSorted(anc.Rows, r) {
				return nodeErrorf(i, ErrUncoveredRow, "row %d missing from ancestor %d", r, a)
			}
		}
		rest = rest[used:]
	}
	if len(rest) > 0 {
		return nodeErrorf(i, ErrUncoveredRow, "rows %v left after root", rest)
	}

	return nil
}

func containsSorted(rows []int, r int) bool {
	k := sort.SearchInts(rows, r)
	return k < len(rows) && rows[k] == r
}

// buildSchedules fills children, height, depth and their groupings.
func (t *Tree) buildSchedules() {
	n := len(t.nodes)
	t.children = make([][]int, n)
	t.height = make([]int, n)
	t.depth = make([]int, n)
	maxH := 0
	for i := 0; i < n; i++ { // post-order: children are final before parents
		if p := t.nodes[i].Parent; p >= 0 {
			t.children[p] = append(t.children[p], i)
			if h := t.height[i] + 1; h > t.height[p] {
				t.height[p] = h
			}
		}
		if t.height[i] > maxH {
			maxH = t.height[i]
		}
	}
	maxD := 0
	for i := n - 1; i >= 0; i-- { // reverse post-order: parents before children
		if p := t.nodes[i].Parent; p >= 0 {
			t.depth[i] = t.depth[p] + 1
		}
		if t.depth[i] > maxD {
			maxD = t.depth[i]
		}
	}
	if n == 0 {
		return
	}
	t.levels = make([][]int, maxH+1)
	t.depthGroup = make([][]int, maxD+1)
	for i := 0; i < n; i++ {
		t.levels[t.height[i]] = append(t.levels[t.height[i]], i)
		t.depthGroup[t.depth[i]] = append(t.depthGroup[t.depth[i]], i)
	}
}
