// ABOUTME: B-Tree node structure and manipulation functions
// ABOUTME: Nodes live in a handle-addressed arena owned by the tree

package btree

import "slices"

const (
	ORDER    = 4         // max children per node
	MAX_KEYS = ORDER - 1 // max keys per node
	MIN_KEYS = (ORDER+1)/2 - 1
)

// handle addresses a node inside the tree's arena. The zero handle is nil.
type handle uint32

// node holds up to MAX_KEYS keys with their values. Internal nodes also
// hold len(keys)+1 child handles; leaves hold none.
type node[K, V any] struct {
	keys []K
	vals []V
	kids []handle
}

func newNode[K, V any]() *node[K, V] {
	return &node[K, V]{
		keys: make([]K, 0, MAX_KEYS+1),
		vals: make([]V, 0, MAX_KEYS+1),
	}
}

// leaf returns true if the node has no children
func (n *node[K, V]) leaf() bool {
	return len(n.kids) == 0
}

// nkeys returns the number of keys in the node
func (n *node[K, V]) nkeys() int {
	return len(n.keys)
}

// insertKV puts a KV pair at idx, shifting the tail right
func (n *node[K, V]) insertKV(idx int, key K, val V) {
	n.keys = slices.Insert(n.keys, idx, key)
	n.vals = slices.Insert(n.vals, idx, val)
}

// removeKV drops the KV pair at idx
func (n *node[K, V]) removeKV(idx int) (K, V) {
	key, val := n.keys[idx], n.vals[idx]
	n.keys = slices.Delete(n.keys, idx, idx+1)
	n.vals = slices.Delete(n.vals, idx, idx+1)
	return key, val
}

// insertKid puts a child handle at idx
func (n *node[K, V]) insertKid(idx int, kid handle) {
	if n.kids == nil {
		n.kids = make([]handle, 0, ORDER+1)
	}
	n.kids = slices.Insert(n.kids, idx, kid)
}

// removeKid drops the child handle at idx
func (n *node[K, V]) removeKid(idx int) handle {
	kid := n.kids[idx]
	n.kids = slices.Delete(n.kids, idx, idx+1)
	return kid
}

// promotion carries the pivot of a split up to the parent
type promotion[K, V any] struct {
	key   K
	val   V
	right *node[K, V]
}

// split cuts an overflowing node at the upper median. The pivot at
// len/2 goes up, everything after it moves to a new right sibling.
func (n *node[K, V]) split() *promotion[K, V] {
	mid := n.nkeys() / 2

	right := newNode[K, V]()
	right.keys = append(right.keys, n.keys[mid+1:]...)
	right.vals = append(right.vals, n.vals[mid+1:]...)
	if !n.leaf() {
		right.kids = make([]handle, 0, ORDER+1)
		right.kids = append(right.kids, n.kids[mid+1:]...)
		clear(n.kids[mid+1:])
		n.kids = n.kids[:mid+1]
	}

	up := &promotion[K, V]{key: n.keys[mid], val: n.vals[mid], right: right}

	clear(n.keys[mid:])
	clear(n.vals[mid:])
	n.keys = n.keys[:mid]
	n.vals = n.vals[:mid]
	return up
}

// arena stores the nodes of one tree. Freed slots are reused.
type arena[K, V any] struct {
	pages []*node[K, V]
	free  []handle
}

// get dereferences a handle
func (a *arena[K, V]) get(h handle) *node[K, V] {
	if h == 0 || int(h) >= len(a.pages) || a.pages[h] == nil {
		panic("btree: bad node handle")
	}
	return a.pages[h]
}

// new allocates a slot for the node
func (a *arena[K, V]) new(n *node[K, V]) handle {
	if len(a.pages) == 0 {
		a.pages = append(a.pages, nil) // reserve the nil handle
	}
	if last := len(a.free) - 1; last >= 0 {
		h := a.free[last]
		a.free = a.free[:last]
		a.pages[h] = n
		return h
	}
	a.pages = append(a.pages, n)
	return handle(len(a.pages) - 1)
}

// del releases a slot
func (a *arena[K, V]) del(h handle) {
	if a.pages[h] == nil {
		panic("btree: node not allocated")
	}
	a.pages[h] = nil
	a.free = append(a.free, h)
}

// live returns the number of allocated nodes
func (a *arena[K, V]) live() int {
	if len(a.pages) == 0 {
		return 0
	}
	return len(a.pages) - 1 - len(a.free)
}

func (a *arena[K, V]) reset() {
	a.pages = nil
	a.free = nil
}
