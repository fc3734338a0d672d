// ABOUTME: Seed file reader for bulk-loading terms
// ABOUTME: Parses tab-separated term and value lines

package dictionary

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadSeed parses tab-separated "term<TAB>value" lines. The value column is
// optional; blank lines and lines starting with '#' are skipped.
func ReadSeed(r io.Reader) ([]Item, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var items []Item
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return items, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read seed: %w", err)
		}
		if len(rec) > 2 {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("failed to read seed: line %d has %d columns", line, len(rec))
		}

		it := Item{Term: strings.TrimSpace(rec[0])}
		if it.Term == "" {
			continue
		}
		if len(rec) == 2 {
			it.Value = rec[1]
		}
		items = append(items, it)
	}
}

// LoadSeedFile reads path and stores its items in d
func LoadSeedFile(d *Dictionary, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open seed: %w", err)
	}
	defer f.Close()

	items, err := ReadSeed(f)
	if err != nil {
		return 0, err
	}
	return d.PutBatch(items)
}
