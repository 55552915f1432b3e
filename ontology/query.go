package ontology

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/nodeadmin/go-propagate/gmt"
)

// Filter narrows a term listing. Zero values select everything.
type Filter struct {
	IDs       []string
	Namespace string
}

// TermList returns the live terms selected by f, sorted by id. Ids in
// f.IDs may be alternate ids; unknown ids are skipped.
func (o *Ontology) TermList(f Filter) []*Term {
	var candidates []*Term
	if f.IDs == nil {
		candidates = make([]*Term, 0, len(o.terms))
		for _, t := range o.terms {
			candidates = append(candidates, t)
		}
	} else {
		seen := make(map[*Term]struct{}, len(f.IDs))
		for _, id := range f.IDs {
			t, ok := o.Term(id)
			if !ok {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			candidates = append(candidates, t)
		}
	}

	out := candidates[:0]
	for _, t := range candidates {
		if f.Namespace != "" && t.Namespace != f.Namespace {
			continue
		}
		out = append(out, t)
	}
	sortTerms(out)
	return out
}

// ObsoleteTerms returns the terms marked obsolete, sorted by id.
func (o *Ontology) ObsoleteTerms() []*Term {
	out := make([]*Term, 0, len(o.obsolete))
	for _, t := range o.obsolete {
		out = append(out, t)
	}
	sortTerms(out)
	return out
}

// TermSummary is the id/name pair of a term.
type TermSummary struct {
	ID   string `json:"oboid"`
	Name string `json:"name"`
}

func (o *Ontology) TermSummaries(f Filter) []TermSummary {
	terms := o.TermList(f)
	out := make([]TermSummary, 0, len(terms))
	for _, t := range terms {
		out = append(out, TermSummary{ID: t.ID, Name: t.Name})
	}
	return out
}

// Descendants returns the ids of every term below id in id's namespace.
// Children in another namespace are neither returned nor traversed.
func (o *Ontology) Descendants(id string) []string {
	t, ok := o.lookup(id)
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	walk(t, t.Namespace, (*Term).Children, seen)
	return sortedKeys(seen)
}

// Ancestors returns the ids of every term above id in id's namespace.
func (o *Ontology) Ancestors(id string) []string {
	t, ok := o.lookup(id)
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	walk(t, t.Namespace, (*Term).Parents, seen)
	return sortedKeys(seen)
}

func walk(t *Term, namespace string, next func(*Term) []*Term, seen map[string]struct{}) {
	for _, n := range next(t) {
		if n.Namespace != namespace {
			continue
		}
		if _, ok := seen[n.ID]; ok {
			continue
		}
		seen[n.ID] = struct{}{}
		walk(n, namespace, next, seen)
	}
}

// Leaves returns the childless live terms of namespace with at least
// minAnnotations annotations.
func (o *Ontology) Leaves(namespace string, minAnnotations int) []*Term {
	var out []*Term
	for _, t := range o.terms {
		if len(t.children) == 0 && t.Namespace == namespace && len(t.annotations) >= minAnnotations {
			out = append(out, t)
		}
	}
	sortTerms(out)
	return out
}

// XrefMapping maps each external id of db to the terms citing it.
func (o *Ontology) XrefMapping(db string) map[string][]string {
	out := make(map[string][]string)
	for _, t := range o.TermList(Filter{}) {
		for _, x := range t.Xrefs(db) {
			out[x] = append(out[x], t.ID)
		}
	}
	return out
}

// AsGMT returns one gene set per annotated term.
func (o *Ontology) AsGMT() *gmt.GMT {
	g := gmt.New()
	for _, t := range o.TermList(Filter{}) {
		if len(t.annotations) == 0 {
			continue
		}
		g.AddGeneSet(t.ID, t.Name)
		for _, gene := range t.AnnotatedGenes(true) {
			g.AddGene(t.ID, gene)
		}
	}
	return g
}

// GeneMapper translates a gene identifier into its equivalents.
type GeneMapper interface {
	Get(id string) ([]string, bool)
}

// MapGenes rewrites the gene id of every annotation through m. One id
// mapping to several fans the annotation out; unmapped genes are dropped.
func (o *Ontology) MapGenes(m GeneMapper) {
	for _, t := range o.terms {
		mapped := make(AnnotationSet, len(t.annotations))
		for a := range t.annotations {
			genes, ok := m.Get(a.geneID)
			if !ok && strings.HasPrefix(a.geneID, "CELE_") {
				genes, ok = m.Get(strings.TrimPrefix(a.geneID, "CELE_"))
			}
			if !ok {
				o.log.Warn("no matching gene id", zap.String("gene", a.geneID), zap.String("term", t.ID))
				continue
			}
			for _, g := range genes {
				mapped.Add(NewAnnotation(AnnotationFields{
					GeneID:         g,
					Ref:            a.ref,
					Evidence:       a.evidence,
					Date:           a.date,
					Direct:         a.direct,
					CrossAnnotated: a.crossAnnotated,
				}))
			}
		}
		t.annotations = mapped
	}
}

func sortTerms(ts []*Term) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].ID < ts[j].ID })
}
