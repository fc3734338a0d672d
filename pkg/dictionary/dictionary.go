// ABOUTME: Term dictionary backed by the NaturalString B-Tree
// ABOUTME: Serializes access, logs and records metrics per operation

// Package dictionary is the concurrency-safe front of the term B-Tree.
// Terms are ordered as natural.String; values are opaque strings.
package dictionary

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/nainya/termdict/internal/logger"
	"github.com/nainya/termdict/internal/metrics"
	"github.com/nainya/termdict/pkg/btree"
	"github.com/nainya/termdict/pkg/natural"
)

// Options configures a Dictionary
type Options struct {
	Logger           *logger.Logger   // defaults to the global logger
	Metrics          *metrics.Metrics // optional
	VerifyInvariants bool             // run tree.Check after every write
	Now              func() time.Time // defaults to time.Now
}

// Dictionary maps terms to values in natural order
type Dictionary struct {
	mu      sync.RWMutex
	tree    *btree.BTree[natural.String, *Entry]
	log     *logger.Logger
	metrics *metrics.Metrics
	verify  bool
	now     func() time.Time
}

// New creates an empty dictionary
func New(opts Options) *Dictionary {
	log := opts.Logger
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	d := &Dictionary{
		tree:    btree.New[natural.String, *Entry](),
		log:     log.DictLogger(),
		metrics: opts.Metrics,
		verify:  opts.VerifyInvariants,
		now:     now,
	}
	d.refreshGauges()
	return d
}

// observe logs and records one finished operation
func (d *Dictionary) observe(op string, term string, start time.Time, size int, err error) {
	duration := time.Since(start)
	d.log.LogDictOperation(op, term, duration, size, err)
	if d.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		d.metrics.RecordDictOperation(op, status, duration)
	}
}

// afterWrite checks invariants in debug mode and refreshes gauges.
// Caller holds the write lock.
func (d *Dictionary) afterWrite() error {
	d.refreshGauges()
	if !d.verify {
		return nil
	}
	if err := d.tree.Check(); err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return nil
}

func (d *Dictionary) refreshGauges() {
	if d.metrics == nil {
		return
	}
	st := d.tree.Stats()
	d.metrics.UpdateTreeStats(st.Entries, st.Height, st.Nodes)
}

func validTerm(term string) error {
	if strings.TrimSpace(term) == "" {
		return ErrEmptyTerm
	}
	return nil
}

// Put stores value under term, overwriting any previous value. It reports
// whether a value was replaced.
func (d *Dictionary) Put(term, value string) (replaced bool, err error) {
	start := time.Now()
	size := 0
	defer func() { d.observe("put", term, start, size, err) }()

	if err := validTerm(term); err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	entry := &Entry{Term: term, Value: value, UpdatedAt: d.now()}
	replaced = d.tree.Insert(natural.New(term), entry)
	size = d.tree.Len()
	return replaced, d.afterWrite()
}

// PutBatch stores items in order and returns how many were new terms.
// It stops at the first invalid term.
func (d *Dictionary) PutBatch(items []Item) (added int, err error) {
	start := time.Now()
	size := 0
	defer func() { d.observe("put_batch", "", start, size, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for i, it := range items {
		if err := validTerm(it.Term); err != nil {
			size = d.tree.Len()
			d.refreshGauges()
			return added, fmt.Errorf("item %d: %w", i, err)
		}
		if !d.tree.Insert(natural.New(it.Term), &Entry{Term: it.Term, Value: it.Value, UpdatedAt: now}) {
			added++
		}
	}
	size = d.tree.Len()
	return added, d.afterWrite()
}

// Get looks a term up and counts the hit
func (d *Dictionary) Get(term string) (Entry, bool) {
	start := time.Now()

	d.mu.Lock()
	entry, ok := d.tree.Get(natural.New(term))
	var out Entry
	if ok {
		entry.Hits++
		out = *entry
	}
	size := d.tree.Len()
	d.mu.Unlock()

	if d.metrics != nil {
		d.metrics.RecordLookup(ok)
	}
	d.observe("get", term, start, size, nil)
	return out, ok
}

// Contains reports whether term is stored without counting a hit
func (d *Dictionary) Contains(term string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.Has(natural.New(term))
}

// Delete removes term. It reports false if the term was not stored.
func (d *Dictionary) Delete(term string) (deleted bool, err error) {
	start := time.Now()
	size := 0
	defer func() { d.observe("delete", term, start, size, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	_, deleted = d.tree.Delete(natural.New(term))
	size = d.tree.Len()
	if !deleted {
		return false, nil
	}
	return true, d.afterWrite()
}

// Clear drops every term
func (d *Dictionary) Clear() {
	start := time.Now()

	d.mu.Lock()
	d.tree.Clear()
	d.refreshGauges()
	d.mu.Unlock()

	d.observe("clear", "", start, 0, nil)
}

// Len returns the number of stored terms
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.Len()
}

// Terms returns every term in natural order
func (d *Dictionary) Terms() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	terms := make([]string, 0, d.tree.Len())
	for key := range d.tree.All() {
		terms = append(terms, key.Text())
	}
	return terms
}

// List returns a page of entries in natural order
func (d *Dictionary) List(opts ListOptions) Page {
	start := time.Now()
	var page Page
	defer func() { d.observe("list", opts.From, start, page.Total, nil) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	offset := max(opts.Offset, 0)
	visit := func(_ natural.String, entry *Entry) bool {
		pos := page.Total
		page.Total++
		if pos < offset {
			return true
		}
		if opts.Limit > 0 && len(page.Entries) >= opts.Limit {
			page.HasMore = true
			return true
		}
		page.Entries = append(page.Entries, *entry)
		return true
	}

	if opts.From == "" {
		d.tree.Ascend(visit)
	} else {
		d.tree.Scan(natural.New(opts.From), visit)
	}
	return page
}

// Stats returns the tree shape
func (d *Dictionary) Stats() btree.Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.Stats()
}

// Check verifies the tree invariants
func (d *Dictionary) Check() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.tree.Check(); err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return nil
}

// Dump writes an indented rendering of the tree
func (d *Dictionary) Dump(w io.Writer) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.tree.Dump(w)
}

// Snapshot copies the tree structure with range labels on every child.
// It returns nil for an empty dictionary.
func (d *Dictionary) Snapshot() *SnapshotNode {
	d.mu.RLock()
	root := d.tree.Snapshot()
	d.mu.RUnlock()

	if root == nil {
		return nil
	}
	return convertSnapshot(root, "")
}

func convertSnapshot(n *btree.Node[natural.String], label string) *SnapshotNode {
	out := &SnapshotNode{
		Keys:  make([]string, len(n.Keys)),
		Leaf:  n.Leaf,
		Depth: n.Depth,
		Label: label,
	}
	for i, k := range n.Keys {
		out.Keys[i] = k.Text()
	}

	if len(n.Children) > 0 {
		out.Children = make([]*SnapshotNode, len(n.Children))
		for i, child := range n.Children {
			out.Children[i] = convertSnapshot(child, rangeLabel(out.Keys, i))
		}
	}
	return out
}

// rangeLabel names the key range of child i: below the first key, between
// two keys, or above the last key
func rangeLabel(keys []string, i int) string {
	switch {
	case i == 0:
		return "< " + keys[0]
	case i == len(keys):
		return "> " + keys[i-1]
	default:
		return keys[i-1] + " - " + keys[i]
	}
}
