// Package gmt holds gene sets in the GMT layout: one set per line as
// id, name and member genes separated by tabs.
package gmt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ErrMalformedLine is returned for a GMT line with fewer than two columns.
var ErrMalformedLine = errors.New("malformed gmt line")

// GMT is a collection of gene sets keyed by id.
type GMT struct {
	names map[string]string
	sets  map[string][]string
	seen  map[string]map[string]struct{}
}

func New() *GMT {
	return &GMT{
		names: make(map[string]string),
		sets:  make(map[string][]string),
		seen:  make(map[string]map[string]struct{}),
	}
}

// AddGeneSet declares a gene set. Re-declaring an id renames it.
func (g *GMT) AddGeneSet(id, name string) {
	g.names[id] = name
	if _, ok := g.sets[id]; !ok {
		g.sets[id] = nil
		g.seen[id] = make(map[string]struct{})
	}
}

// AddGene adds gene to set id, creating the set if needed. Duplicate
// genes are ignored.
func (g *GMT) AddGene(id, gene string) {
	if _, ok := g.sets[id]; !ok {
		g.AddGeneSet(id, "")
	}
	if _, dup := g.seen[id][gene]; dup {
		return
	}
	g.seen[id][gene] = struct{}{}
	g.sets[id] = append(g.sets[id], gene)
}

// Genes returns the members of set id in insertion order.
func (g *GMT) Genes(id string) []string { return g.sets[id] }

func (g *GMT) Name(id string) string { return g.names[id] }

// IDs returns the gene set ids, sorted.
func (g *GMT) IDs() []string {
	ids := make([]string, 0, len(g.sets))
	for id := range g.sets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (g *GMT) Len() int { return len(g.sets) }

// Read parses GMT lines from r.
func Read(r io.Reader) (*GMT, error) {
	g := New()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1<<20), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("gmt line %d: %w", lineNo, ErrMalformedLine)
		}
		g.AddGeneSet(fields[0], fields[1])
		for _, gene := range fields[2:] {
			if gene != "" {
				g.AddGene(fields[0], gene)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read gmt: %w", err)
	}
	return g, nil
}

// Write emits the gene sets sorted by id.
func (g *GMT) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, id := range g.IDs() {
		cols := append([]string{id, g.names[id]}, g.sets[id]...)
		if _, err := fmt.Fprintln(bw, strings.Join(cols, "\t")); err != nil {
			return err
		}
	}
	return bw.Flush()
}
