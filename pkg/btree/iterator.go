// ABOUTME: B-Tree iterator for in-order scans
// ABOUTME: Implements SeekFirst, SeekGE and Next over internal and leaf keys

package btree

import "iter"

// Iter walks the tree in ascending key order. Any mutation of the tree
// invalidates it; call a Seek method again afterwards.
type Iter[K, V any] struct {
	tree *BTree[K, V]
	path []*node[K, V] // Stack of nodes from root to current node
	pos  []int         // Position at each level; below the top it is the kid being visited
}

// NewIterator creates a new iterator for the tree
func (tree *BTree[K, V]) NewIterator() *Iter[K, V] {
	return &Iter[K, V]{
		tree: tree,
		path: make([]*node[K, V], 0, 8), // Pre-allocate for typical tree height
		pos:  make([]int, 0, 8),
	}
}

// SeekFirst positions the iterator at the smallest key.
// Returns false if the tree is empty
func (iter *Iter[K, V]) SeekFirst() bool {
	iter.path = iter.path[:0]
	iter.pos = iter.pos[:0]

	if iter.tree.root == 0 {
		return false
	}
	iter.descendToLeftmost(iter.tree.root)
	return iter.Valid()
}

// SeekGE positions the iterator at the first key >= the given key.
// Returns false if there is no such key
func (iter *Iter[K, V]) SeekGE(key K) bool {
	iter.path = iter.path[:0]
	iter.pos = iter.pos[:0]

	// Navigate from root towards the key
	for h := iter.tree.root; h != 0; {
		node := iter.tree.nodes.get(h)
		idx, found := iter.tree.nodeLookup(node, key)
		iter.path = append(iter.path, node)
		iter.pos = append(iter.pos, idx)

		if found || node.leaf() {
			break
		}
		h = node.kids[idx]
	}

	iter.settle()
	return iter.Valid()
}

// Valid returns true if the iterator is positioned at a key
func (iter *Iter[K, V]) Valid() bool {
	top := len(iter.path) - 1
	return top >= 0 && iter.pos[top] < iter.path[top].nkeys()
}

// Key returns the current key
func (iter *Iter[K, V]) Key() K {
	if !iter.Valid() {
		var zero K
		return zero
	}
	top := len(iter.path) - 1
	return iter.path[top].keys[iter.pos[top]]
}

// Val returns the current value
func (iter *Iter[K, V]) Val() V {
	if !iter.Valid() {
		var zero V
		return zero
	}
	top := len(iter.path) - 1
	return iter.path[top].vals[iter.pos[top]]
}

// Next advances the iterator to the next key.
// Returns false if there are no more keys
func (iter *Iter[K, V]) Next() bool {
	if !iter.Valid() {
		return false
	}

	top := len(iter.path) - 1
	node := iter.path[top]
	iter.pos[top]++

	if !node.leaf() {
		// The subtree right of the key we just left comes next
		iter.descendToLeftmost(node.kids[iter.pos[top]])
		return iter.Valid()
	}

	iter.settle()
	return iter.Valid()
}

// descendToLeftmost pushes the leftmost path of the subtree at h
func (iter *Iter[K, V]) descendToLeftmost(h handle) {
	for {
		node := iter.tree.nodes.get(h)
		iter.path = append(iter.path, node)
		iter.pos = append(iter.pos, 0)
		if node.leaf() {
			return
		}
		h = node.kids[0]
	}
}

// settle pops exhausted levels until the top points at a key
func (iter *Iter[K, V]) settle() {
	for top := len(iter.path) - 1; top >= 0; top-- {
		if iter.pos[top] < iter.path[top].nkeys() {
			return
		}
		iter.path[top] = nil
		iter.path = iter.path[:top]
		iter.pos = iter.pos[:top]
	}
}

// Scan executes an ordered scan from the given start key.
// Calls the callback for each key-value pair until callback returns false
func (tree *BTree[K, V]) Scan(start K, callback func(key K, val V) bool) {
	iter := tree.NewIterator()
	for ok := iter.SeekGE(start); ok; ok = iter.Next() {
		if !callback(iter.Key(), iter.Val()) {
			return
		}
	}
}

// Ascend calls fn for every entry in ascending order until fn returns false
func (tree *BTree[K, V]) Ascend(fn func(key K, val V) bool) {
	iter := tree.NewIterator()
	for ok := iter.SeekFirst(); ok; ok = iter.Next() {
		if !fn(iter.Key(), iter.Val()) {
			return
		}
	}
}

// All returns a lazy, restartable sequence of every entry in ascending order
func (tree *BTree[K, V]) All() iter.Seq2[K, V] {
	return tree.Ascend
}

// Keys returns every key in ascending order
func (tree *BTree[K, V]) Keys() []K {
	keys := make([]K, 0, tree.size)
	tree.Ascend(func(key K, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}
