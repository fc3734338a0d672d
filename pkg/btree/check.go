// ABOUTME: Structural invariant checker for the B-Tree
// ABOUTME: Used by tests and by debug-mode callers after every mutation

package btree

import "fmt"

// bound is an optional key limit for a subtree
type bound[K any] struct {
	key K
	set bool
}

type checker[K, V any] struct {
	tree      *BTree[K, V]
	seen      map[handle]bool
	leafDepth int
	entries   int
}

// Check verifies every structural invariant and returns the first
// violation found, or nil.
func (tree *BTree[K, V]) Check() error {
	if tree.root == 0 {
		if tree.size != 0 {
			return fmt.Errorf("%w: empty tree reports %d entries", ErrSize, tree.size)
		}
		return nil
	}

	c := &checker[K, V]{tree: tree, seen: make(map[handle]bool), leafDepth: -1}
	if err := c.check(tree.root, 0, bound[K]{}, bound[K]{}); err != nil {
		return err
	}
	if c.entries != tree.size {
		return fmt.Errorf("%w: counted %d entries, size is %d", ErrSize, c.entries, tree.size)
	}
	if live := tree.nodes.live(); live != len(c.seen) {
		return fmt.Errorf("%w: %d nodes allocated, %d reachable", ErrShared, live, len(c.seen))
	}
	return nil
}

func (c *checker[K, V]) check(h handle, depth int, lo, hi bound[K]) error {
	if c.seen[h] {
		return fmt.Errorf("%w: handle %d", ErrShared, h)
	}
	c.seen[h] = true

	node := c.tree.nodes.get(h)
	n := node.nkeys()

	minKeys := MIN_KEYS
	if h == c.tree.root {
		minKeys = 1
	}
	if n < minKeys || n > MAX_KEYS || len(node.vals) != n {
		return fmt.Errorf("%w: %d keys, %d values at depth %d", ErrKeyCount, n, len(node.vals), depth)
	}
	c.entries += n

	cmp := c.tree.cmp
	for i := range n {
		k := node.keys[i]
		if i > 0 && cmp(node.keys[i-1], k) >= 0 {
			return fmt.Errorf("%w: position %d at depth %d", ErrKeyOrder, i, depth)
		}
		if lo.set && cmp(lo.key, k) >= 0 {
			return fmt.Errorf("%w: %v not above its lower separator", ErrKeyOrder, k)
		}
		if hi.set && cmp(k, hi.key) >= 0 {
			return fmt.Errorf("%w: %v not below its upper separator", ErrKeyOrder, k)
		}
	}

	if node.leaf() {
		if c.leafDepth < 0 {
			c.leafDepth = depth
		} else if c.leafDepth != depth {
			return fmt.Errorf("%w: %d and %d", ErrLeafDepth, c.leafDepth, depth)
		}
		return nil
	}

	if len(node.kids) != n+1 {
		return fmt.Errorf("%w: %d keys, %d children at depth %d", ErrChildCount, n, len(node.kids), depth)
	}
	for i, kid := range node.kids {
		kidLo, kidHi := lo, hi
		if i > 0 {
			kidLo = bound[K]{key: node.keys[i-1], set: true}
		}
		if i < n {
			kidHi = bound[K]{key: node.keys[i], set: true}
		}
		if err := c.check(kid, depth+1, kidLo, kidHi); err != nil {
			return err
		}
	}
	return nil
}
