package btree

import "errors"

var (
	// ErrKeyOrder indicates keys out of order within a node or subtree
	ErrKeyOrder = errors.New("btree: keys out of order")

	// ErrKeyCount indicates a node outside the allowed key range
	ErrKeyCount = errors.New("btree: bad key count")

	// ErrChildCount indicates an internal node without len(keys)+1 children
	ErrChildCount = errors.New("btree: bad child count")

	// ErrLeafDepth indicates leaves at different depths
	ErrLeafDepth = errors.New("btree: leaves at different depths")

	// ErrShared indicates a node reachable from two parents
	ErrShared = errors.New("btree: node shared between parents")

	// ErrSize indicates the entry counter disagrees with the tree contents
	ErrSize = errors.New("btree: size mismatch")
)
