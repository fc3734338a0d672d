package btree

import (
	"cmp"
	"errors"
	"strings"
	"testing"

	"github.com/nainya/termdict/pkg/natural"
)

func TestSnapshotIsDetached(t *testing.T) {
	tree := intTree(1, 2, 3, 4)
	snap := tree.Snapshot()
	snap.Keys[0] = 99
	snap.Children[0].Keys[0] = 99

	if err := tree.Check(); err != nil {
		t.Fatalf("editing a snapshot changed the tree: %v", err)
	}
}

func TestSnapshotDepths(t *testing.T) {
	tree := intTree()
	for i := range 40 {
		tree.Insert(i, i)
	}

	height := tree.Height()
	var walk func(n *Node[int], depth int)
	walk = func(n *Node[int], depth int) {
		if n.Depth != depth {
			t.Errorf("node %v reports depth %d, want %d", n.Keys, n.Depth, depth)
		}
		if n.Leaf != (len(n.Children) == 0) {
			t.Errorf("node %v: Leaf=%v with %d children", n.Keys, n.Leaf, len(n.Children))
		}
		if n.Leaf && depth != height-1 {
			t.Errorf("leaf %v at depth %d, height %d", n.Keys, depth, height)
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(tree.Snapshot(), 0)
}

func TestStats(t *testing.T) {
	tree := intTree(1, 2, 3, 4)
	st := tree.Stats()

	want := Stats{Entries: 4, Height: 2, Nodes: 3, Leaves: 2}
	if st != want {
		t.Errorf("Stats() = %+v, want %+v", st, want)
	}
}

func TestDump(t *testing.T) {
	tree := New[natural.String, int]()
	for i, k := range []string{"A", "B", "C", "D"} {
		tree.Insert(natural.New(k), i)
	}

	w := new(strings.Builder)
	tree.Dump(w)

	want := `### size(4), height(2), nodes(3)
[node] depth: 0 keys(#1): C
.[leaf] depth: 1 keys(#2): A B
.[leaf] depth: 1 keys(#1): D
`
	if got := w.String(); got != want {
		t.Errorf("Dump:\n%s\nwant:\n%s", got, want)
	}
}

func TestDumpNilWriterPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Dump(nil) did not panic")
		}
	}()
	intTree(1).Dump(nil)
}

func TestCheckDetectsCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(tree *BTree[int, int])
		want    error
	}{
		{
			name: "unsorted leaf",
			corrupt: func(tree *BTree[int, int]) {
				leaf := tree.nodes.get(tree.nodes.get(tree.root).kids[0])
				leaf.keys[0], leaf.keys[1] = leaf.keys[1], leaf.keys[0]
			},
			want: ErrKeyOrder,
		},
		{
			name: "key on wrong side of separator",
			corrupt: func(tree *BTree[int, int]) {
				leaf := tree.nodes.get(tree.nodes.get(tree.root).kids[1])
				leaf.keys[0] = 0
			},
			want: ErrKeyOrder,
		},
		{
			name: "overfull node",
			corrupt: func(tree *BTree[int, int]) {
				leaf := tree.nodes.get(tree.nodes.get(tree.root).kids[0])
				leaf.insertKV(0, -3, 0)
				leaf.insertKV(0, -4, 0)
				tree.size += 2
			},
			want: ErrKeyCount,
		},
		{
			name: "missing child",
			corrupt: func(tree *BTree[int, int]) {
				root := tree.nodes.get(tree.root)
				tree.nodes.del(root.removeKid(1))
			},
			want: ErrChildCount,
		},
		{
			name: "wrong size",
			corrupt: func(tree *BTree[int, int]) {
				tree.size++
			},
			want: ErrSize,
		},
		{
			name: "shared child",
			corrupt: func(tree *BTree[int, int]) {
				root := tree.nodes.get(tree.root)
				tree.nodes.del(root.kids[1])
				root.kids[1] = root.kids[0]
			},
			want: ErrShared,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := NewFunc[int, int](cmp.Compare[int])
			for _, k := range []int{1, 2, 3, 4} {
				tree.Insert(k, k)
			}
			tt.corrupt(tree)

			err := tree.Check()
			if !errors.Is(err, tt.want) {
				t.Errorf("Check() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCheckUnequalLeafDepth(t *testing.T) {
	tree := NewFunc[int, int](cmp.Compare[int])
	for i := 1; i <= 13; i++ {
		tree.Insert(i, i)
	}

	// swap the root's right subtree for a bare leaf one level up
	root := tree.nodes.get(tree.root)
	leaf := newNode[int, int]()
	leaf.insertKV(0, 20, 20)
	root.kids[1] = tree.nodes.new(leaf)

	if err := tree.Check(); !errors.Is(err, ErrLeafDepth) {
		t.Errorf("Check() = %v, want %v", err, ErrLeafDepth)
	}
}
