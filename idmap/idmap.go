// Package idmap maps one gene identifier to its equivalents in another
// namespace.
package idmap

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"
)

// IDMap is a one to many identifier mapping.
type IDMap struct {
	m map[string][]string
}

func New() *IDMap {
	return &IDMap{m: make(map[string][]string)}
}

// Add records that from maps to each of to, skipping repeats.
func (m *IDMap) Add(from string, to ...string) {
	for _, id := range to {
		if id == "" || slices.Contains(m.m[from], id) {
			continue
		}
		m.m[from] = append(m.m[from], id)
	}
}

// Get returns the identifiers id maps to.
func (m *IDMap) Get(id string) ([]string, bool) {
	ids, ok := m.m[id]
	return ids, ok && len(ids) > 0
}

func (m *IDMap) Len() int { return len(m.m) }

// Read parses "from\tto[\tto...]" lines. Targets may also be separated
// by ';'. Lines starting with '#' or '!' are comments.
func Read(r io.Reader) (*IDMap, error) {
	m := New()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == '#' || line[0] == '!' {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		for _, f := range fields[1:] {
			for _, id := range strings.Split(f, ";") {
				m.Add(fields[0], strings.TrimSpace(id))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read idmap: %w", err)
	}
	return m, nil
}
