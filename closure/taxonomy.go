package closure

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/nodeadmin/go-propagate/ontology"
)

// Taxonomy holds the direct parents of each term after transitive
// reduction of its closure.
type Taxonomy struct {
	DirectParents  [][]TermID
	DirectChildren [][]TermID
}

// BuildTaxonomy extracts the non-redundant hierarchy from saturated
// contexts: B in S(C) is a direct parent of C iff no other member S of
// S(C) also has B in S(S).
func BuildTaxonomy(contexts []Context, st *SymbolTable) *Taxonomy {
	n := st.Len()
	tax := &Taxonomy{
		DirectParents:  make([][]TermID, n),
		DirectChildren: make([][]TermID, n),
	}

	for c := TermID(0); c < TermID(n); c++ {
		supers := contexts[c].superSet
		if len(supers) == 0 {
			continue
		}

		candidates := make([]TermID, 0, len(supers))
		for s := range supers {
			if s != c {
				candidates = append(candidates, s)
			}
		}

		direct := make([]TermID, 0, 4)
		for _, b := range candidates {
			isDirect := true
			for _, s := range candidates {
				if s == b {
					continue
				}
				if contexts[s].Has(b) {
					isDirect = false
					break
				}
			}
			if isDirect {
				direct = append(direct, b)
			}
		}

		tax.DirectParents[c] = direct
		for _, p := range direct {
			tax.DirectChildren[p] = append(tax.DirectChildren[p], c)
		}
	}
	return tax
}

// ClosureTerm is one term of the exported hierarchy.
type ClosureTerm struct {
	ID            string   `json:"id"`
	Name          string   `json:"name,omitempty"`
	Namespace     string   `json:"namespace,omitempty"`
	DirectParents []string `json:"direct_parents"`
	Ancestors     []string `json:"ancestors"`
}

// Stats holds timing and size metrics.
type Stats struct {
	TermCount         int   `json:"term_count"`
	EdgeCount         int   `json:"edge_count"`
	InferredAncestors int   `json:"inferred_ancestors"`
	NormalizeTimeMs   int64 `json:"normalize_time_ms"`
	SaturateTimeMs    int64 `json:"saturate_time_ms"`
	ReductionTimeMs   int64 `json:"reduction_time_ms"`
	TotalTimeMs       int64 `json:"total_time_ms"`
}

// Hierarchy is the top-level JSON output.
type Hierarchy struct {
	Terms []ClosureTerm `json:"terms"`
	Stats Stats         `json:"stats"`
}

// Build computes the closure of every live term over all relations and
// returns the terms selected by f with their ancestors and direct
// parents, sorted by id.
func Build(ctx context.Context, ont *ontology.Ontology, f ontology.Filter, workers int) (*Hierarchy, error) {
	start := time.Now()
	st, store := Normalize(ont)
	normTime := time.Since(start)

	t := time.Now()
	contexts, err := SaturateParallel(ctx, st, store, AllRelations, workers)
	if err != nil {
		return nil, err
	}
	satTime := time.Since(t)

	t = time.Now()
	tax := BuildTaxonomy(contexts, st)
	redTime := time.Since(t)

	h := &Hierarchy{}
	inferred := 0
	for _, term := range ont.TermList(f) {
		c, ok := st.Lookup(term.ID)
		if !ok {
			continue
		}
		inferred += contexts[c].Len()
		h.Terms = append(h.Terms, ClosureTerm{
			ID:            term.ID,
			Name:          term.Name,
			Namespace:     term.Namespace,
			DirectParents: names(st, tax.DirectParents[c]),
			Ancestors:     names(st, keys(contexts[c].superSet)),
		})
	}

	total := normTime + satTime + redTime
	h.Stats = Stats{
		TermCount:         len(h.Terms),
		EdgeCount:         store.EdgeCount(),
		InferredAncestors: inferred,
		NormalizeTimeMs:   normTime.Milliseconds(),
		SaturateTimeMs:    satTime.Milliseconds(),
		ReductionTimeMs:   redTime.Milliseconds(),
		TotalTimeMs:       total.Milliseconds(),
	}
	return h, nil
}

func keys(m map[TermID]struct{}) []TermID {
	out := make([]TermID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// names returns the sorted term ids of ids. Never nil.
func names(st *SymbolTable, ids []TermID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, st.Name(id))
	}
	sort.Strings(out)
	return out
}

// WriteHierarchyJSON writes the hierarchy as JSON.
func WriteHierarchyJSON(w io.Writer, h *Hierarchy) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(h)
}

// WriteTSV writes one line per term: its id followed by every ancestor.
func WriteTSV(w io.Writer, h *Hierarchy) error {
	bw := bufio.NewWriter(w)
	for _, ct := range h.Terms {
		line := ct.ID
		if len(ct.Ancestors) > 0 {
			line += "\t" + strings.Join(ct.Ancestors, "\t")
		}
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return err
		}
	}
	return bw.Flush()
}
