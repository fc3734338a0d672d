// ABOUTME: B-Tree core structure and high-level operations
// ABOUTME: Implements Insert, Get, Delete with upper-median splits

// Package btree implements an in-memory order-4 B-Tree in the Knuth sense:
// every node, internal or leaf, stores keys together with their values.
//
// A node holds at most 3 keys. An overflowing node is split at the upper
// median (index len/2), so the third of four keys moves up and the left
// half keeps two keys. Deletion takes the in-order predecessor for keys in
// internal nodes, then repairs underflow by borrowing from the left
// sibling, then the right one, and merges otherwise.
//
// A BTree is not safe for concurrent use. Callers that share one must
// serialize access themselves.
package btree

import "slices"

// Ordered is a key type with a three-way comparison. Compare returns a
// negative number, zero or a positive number when the receiver sorts
// before, equal to or after other.
type Ordered[K any] interface {
	Compare(other K) int
}

// BTree represents the B-Tree data structure
type BTree[K, V any] struct {
	root  handle // root node, 0 when the tree is empty
	size  int
	cmp   func(a, b K) int
	nodes arena[K, V]
}

// New creates an empty tree ordered by the keys' own Compare method.
func New[K Ordered[K], V any]() *BTree[K, V] {
	return NewFunc[K, V](func(a, b K) int { return a.Compare(b) })
}

// NewFunc creates an empty tree ordered by cmp.
func NewFunc[K, V any](cmp func(a, b K) int) *BTree[K, V] {
	if cmp == nil {
		panic("btree: nil compare function")
	}
	return &BTree[K, V]{cmp: cmp}
}

// Len returns the number of stored entries
func (tree *BTree[K, V]) Len() int {
	return tree.size
}

// Empty reports whether the tree has no root
func (tree *BTree[K, V]) Empty() bool {
	return tree.root == 0
}

// Height returns the number of levels, 0 for an empty tree
func (tree *BTree[K, V]) Height() int {
	height := 0
	for h := tree.root; h != 0; {
		height++
		node := tree.nodes.get(h)
		if node.leaf() {
			break
		}
		h = node.kids[0]
	}
	return height
}

// Clear drops every entry
func (tree *BTree[K, V]) Clear() {
	tree.root = 0
	tree.size = 0
	tree.nodes.reset()
}

// nodeLookup returns the position of key within the node, or the index
// of the child whose range contains it
func (tree *BTree[K, V]) nodeLookup(node *node[K, V], key K) (int, bool) {
	return slices.BinarySearchFunc(node.keys, key, tree.cmp)
}

// Get retrieves a value by key
func (tree *BTree[K, V]) Get(key K) (V, bool) {
	for h := tree.root; h != 0; {
		node := tree.nodes.get(h)
		idx, found := tree.nodeLookup(node, key)
		if found {
			return node.vals[idx], true
		}
		if node.leaf() {
			break
		}
		h = node.kids[idx]
	}
	var zero V
	return zero, false
}

// Has reports whether key is stored
func (tree *BTree[K, V]) Has(key K) bool {
	_, ok := tree.Get(key)
	return ok
}

// Min returns the smallest entry
func (tree *BTree[K, V]) Min() (K, V, bool) {
	if tree.root == 0 {
		var k K
		var v V
		return k, v, false
	}
	node := tree.nodes.get(tree.root)
	for !node.leaf() {
		node = tree.nodes.get(node.kids[0])
	}
	return node.keys[0], node.vals[0], true
}

// Max returns the largest entry
func (tree *BTree[K, V]) Max() (K, V, bool) {
	if tree.root == 0 {
		var k K
		var v V
		return k, v, false
	}
	node := tree.nodes.get(tree.root)
	for !node.leaf() {
		node = tree.nodes.get(node.kids[len(node.kids)-1])
	}
	last := node.nkeys() - 1
	return node.keys[last], node.vals[last], true
}

// Insert inserts or updates a key-value pair. It reports whether an
// existing value was overwritten.
func (tree *BTree[K, V]) Insert(key K, val V) bool {
	if tree.root == 0 {
		// Create the first node
		root := newNode[K, V]()
		root.insertKV(0, key, val)
		tree.root = tree.nodes.new(root)
		tree.size = 1
		return false
	}

	replaced, up := tree.treeInsert(tree.root, key, val)
	if up != nil {
		// Root was split, add new level
		root := newNode[K, V]()
		root.insertKV(0, up.key, up.val)
		root.insertKid(0, tree.root)
		root.insertKid(1, tree.nodes.new(up.right))
		tree.root = tree.nodes.new(root)
	}
	if !replaced {
		tree.size++
	}
	return replaced
}

// treeInsert inserts a KV below h. A non-nil promotion means the node
// overflowed and was split; the caller must take the pivot.
func (tree *BTree[K, V]) treeInsert(h handle, key K, val V) (bool, *promotion[K, V]) {
	node := tree.nodes.get(h)
	idx, found := tree.nodeLookup(node, key)
	if found {
		// Update existing key
		node.vals[idx] = val
		return true, nil
	}

	if node.leaf() {
		node.insertKV(idx, key, val)
	} else {
		// Internal node - insert to kid node
		replaced, up := tree.treeInsert(node.kids[idx], key, val)
		if replaced {
			return true, nil
		}
		if up != nil {
			node.insertKV(idx, up.key, up.val)
			node.insertKid(idx+1, tree.nodes.new(up.right))
		}
	}

	if node.nkeys() > MAX_KEYS {
		return false, node.split()
	}
	return false, nil
}

// Delete deletes a key from the tree, returning the removed value
func (tree *BTree[K, V]) Delete(key K) (V, bool) {
	if tree.root == 0 {
		var zero V
		return zero, false
	}

	val, ok := tree.treeDelete(tree.root, key)
	if !ok {
		return val, false // not found
	}
	tree.size--

	root := tree.nodes.get(tree.root)
	if root.nkeys() == 0 {
		old := tree.root
		if root.leaf() {
			tree.root = 0
		} else {
			// Remove a level if root has only 1 child
			tree.root = root.kids[0]
		}
		tree.nodes.del(old)
	}
	return val, true
}

// treeDelete removes key from the subtree at h. The node at h may be left
// underflowing; its parent repairs it.
func (tree *BTree[K, V]) treeDelete(h handle, key K) (V, bool) {
	node := tree.nodes.get(h)
	idx, found := tree.nodeLookup(node, key)

	switch {
	case found && node.leaf():
		_, val := node.removeKV(idx)
		return val, true
	case found:
		// Replace with the in-order predecessor, then drop it from its leaf
		val := node.vals[idx]
		node.keys[idx], node.vals[idx] = tree.popMax(node.kids[idx])
		tree.fixKid(node, idx)
		return val, true
	case node.leaf():
		var zero V
		return zero, false
	default:
		val, ok := tree.treeDelete(node.kids[idx], key)
		if ok {
			tree.fixKid(node, idx)
		}
		return val, ok
	}
}

// popMax removes the largest KV of the subtree at h
func (tree *BTree[K, V]) popMax(h handle) (K, V) {
	node := tree.nodes.get(h)
	if node.leaf() {
		return node.removeKV(node.nkeys() - 1)
	}
	last := len(node.kids) - 1
	key, val := tree.popMax(node.kids[last])
	tree.fixKid(node, last)
	return key, val
}

// fixKid repairs the child at idx if it dropped below MIN_KEYS
func (tree *BTree[K, V]) fixKid(parent *node[K, V], idx int) {
	kid := tree.nodes.get(parent.kids[idx])
	if kid.nkeys() >= MIN_KEYS {
		return
	}

	if idx > 0 {
		left := tree.nodes.get(parent.kids[idx-1])
		if left.nkeys() > MIN_KEYS {
			rotateRight(parent, idx, left, kid)
			return
		}
	}
	if idx+1 < len(parent.kids) {
		right := tree.nodes.get(parent.kids[idx+1])
		if right.nkeys() > MIN_KEYS {
			rotateLeft(parent, idx, kid, right)
			return
		}
	}

	if idx > 0 {
		tree.nodeMerge(parent, idx-1)
	} else {
		tree.nodeMerge(parent, idx)
	}
}

// rotateRight moves the separator left of kid down into kid and the last
// key of the left sibling up into the parent
func rotateRight[K, V any](parent *node[K, V], idx int, left, kid *node[K, V]) {
	kid.insertKV(0, parent.keys[idx-1], parent.vals[idx-1])
	parent.keys[idx-1], parent.vals[idx-1] = left.removeKV(left.nkeys() - 1)
	if !left.leaf() {
		kid.insertKid(0, left.removeKid(len(left.kids)-1))
	}
}

// rotateLeft is the mirror of rotateRight
func rotateLeft[K, V any](parent *node[K, V], idx int, kid, right *node[K, V]) {
	kid.insertKV(kid.nkeys(), parent.keys[idx], parent.vals[idx])
	parent.keys[idx], parent.vals[idx] = right.removeKV(0)
	if !right.leaf() {
		kid.insertKid(len(kid.kids), right.removeKid(0))
	}
}

// nodeMerge folds the child at idx+1 and the separator at idx into the
// child at idx
func (tree *BTree[K, V]) nodeMerge(parent *node[K, V], idx int) {
	left := tree.nodes.get(parent.kids[idx])
	sepKey, sepVal := parent.removeKV(idx)
	rightPtr := parent.removeKid(idx + 1)
	right := tree.nodes.get(rightPtr)

	left.keys = append(left.keys, sepKey)
	left.vals = append(left.vals, sepVal)
	left.keys = append(left.keys, right.keys...)
	left.vals = append(left.vals, right.vals...)
	left.kids = append(left.kids, right.kids...)

	tree.nodes.del(rightPtr)
}
