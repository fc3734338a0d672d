// ABOUTME: Read-only structural snapshot and text dump of the tree
// ABOUTME: Consumed by display layers; never aliases live nodes

package btree

import (
	"fmt"
	"io"
	"strings"
)

// Node is a copy of one tree node.
type Node[K any] struct {
	Keys     []K
	Leaf     bool
	Depth    int // root is 0
	Children []*Node[K]
}

// Snapshot copies the tree structure. It returns nil for an empty tree.
func (tree *BTree[K, V]) Snapshot() *Node[K] {
	if tree.root == 0 {
		return nil
	}
	return tree.snapshotRec(tree.root, 0)
}

func (tree *BTree[K, V]) snapshotRec(h handle, depth int) *Node[K] {
	node := tree.nodes.get(h)
	snap := &Node[K]{
		Keys:  append([]K(nil), node.keys...),
		Leaf:  node.leaf(),
		Depth: depth,
	}
	if !node.leaf() {
		snap.Children = make([]*Node[K], len(node.kids))
		for i, kid := range node.kids {
			snap.Children[i] = tree.snapshotRec(kid, depth+1)
		}
	}
	return snap
}

// Stats summarizes the tree shape
type Stats struct {
	Entries int
	Height  int
	Nodes   int
	Leaves  int
}

// Stats walks the tree and counts nodes
func (tree *BTree[K, V]) Stats() Stats {
	st := Stats{Entries: tree.size, Height: tree.Height()}
	if tree.root != 0 {
		tree.statsRec(tree.root, &st)
	}
	return st
}

func (tree *BTree[K, V]) statsRec(h handle, st *Stats) {
	node := tree.nodes.get(h)
	st.Nodes++
	if node.leaf() {
		st.Leaves++
		return
	}
	for _, kid := range node.kids {
		tree.statsRec(kid, st)
	}
}

// Dump writes an indented rendering of the tree to w, one node per line,
// children below their parent in key order.
func (tree *BTree[K, V]) Dump(w io.Writer) {
	if w == nil {
		panic("btree: nil writer")
	}
	st := tree.Stats()
	fmt.Fprintf(w, "### size(%d), height(%d), nodes(%d)\n", st.Entries, st.Height, st.Nodes)
	if snap := tree.Snapshot(); snap != nil {
		snap.dumpRec(w)
	}
}

func (n *Node[K]) dumpRec(w io.Writer) {
	indent := strings.Repeat(".", n.Depth)
	kind := "node"
	if n.Leaf {
		kind = "leaf"
	}

	keys := make([]string, len(n.Keys))
	for i, k := range n.Keys {
		keys[i] = fmt.Sprint(k)
	}
	fmt.Fprintf(w, "%s[%s] depth: %d keys(#%d): %s\n", indent, kind, n.Depth, len(n.Keys), strings.Join(keys, " "))

	for _, child := range n.Children {
		child.dumpRec(w)
	}
}
