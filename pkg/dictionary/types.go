// ABOUTME: Term dictionary data model
// ABOUTME: Defines entries, list options and display snapshots

package dictionary

import (
	"errors"
	"time"
)

var (
	// ErrEmptyTerm indicates a blank or whitespace-only term
	ErrEmptyTerm = errors.New("dictionary: empty term")

	// ErrCorrupt indicates a broken tree invariant, which is a bug
	ErrCorrupt = errors.New("dictionary: tree invariant violated")
)

// Entry is one stored term
type Entry struct {
	Term      string    `json:"term"`      // Term as given by the caller
	Value     string    `json:"value"`     // Associated payload
	Hits      uint64    `json:"hits"`      // Successful lookups since the last write
	UpdatedAt time.Time `json:"updatedAt"` // Last write
}

// Item is a term/value pair for batch loading
type Item struct {
	Term  string `json:"term"`
	Value string `json:"value"`
}

// ListOptions for ordered listings
type ListOptions struct {
	From   string `json:"from"`   // First term to include; empty starts at the beginning
	Limit  int    `json:"limit"`  // Maximum entries to return, 0 for all
	Offset int    `json:"offset"` // Entries to skip after From
}

// Page is one slice of an ordered listing
type Page struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`   // Entries at or after From
	HasMore bool    `json:"hasMore"` // More entries follow this page
}

// SnapshotNode is a display copy of one tree node. Label describes the key
// range the node covers relative to its parent's keys.
type SnapshotNode struct {
	Keys     []string        `json:"keys"`
	Leaf     bool            `json:"leaf"`
	Depth    int             `json:"depth"`
	Label    string          `json:"label,omitempty"`
	Children []*SnapshotNode `json:"children,omitempty"`
}
