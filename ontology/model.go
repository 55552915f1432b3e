package ontology

import (
	"sort"

	"go.uber.org/zap"
)

// Relation kinds a term can declare toward a parent.
const (
	RelIsA       = "is_a"
	RelRegulates = "regulates"
	RelPartOf    = "part_of"
)

// Term is a node of the ontology DAG.
type Term struct {
	ID         string   `json:"id"`
	Name       string   `json:"name,omitempty"`
	FullName   string   `json:"full_name,omitempty"`
	Namespace  string   `json:"namespace,omitempty"`
	Definition string   `json:"definition,omitempty"`
	AltIDs     []string `json:"alt_ids,omitempty"`
	Synonyms   []string `json:"synonyms,omitempty"`
	Obsolete   bool     `json:"is_obsolete,omitempty"`

	// Head is true while the term has declared no parent.
	Head bool `json:"-"`

	// Typed parent edges, in declaration order.
	IsA       []*Term `json:"-"`
	Regulates []*Term `json:"-"`
	PartOf    []*Term `json:"-"`

	xrefs map[string]map[string]struct{}

	// untyped reciprocal adjacency: children (parent_of) and parents (child_of)
	children  []*Term
	parents   []*Term
	childSet  map[*Term]struct{}
	parentSet map[*Term]struct{}

	annotations AnnotationSet
}

func newTerm(id string) *Term {
	return &Term{
		ID:          id,
		Head:        true,
		annotations: make(AnnotationSet),
	}
}

// Children returns the terms that declared t as a parent.
func (t *Term) Children() []*Term { return t.children }

// Parents returns the terms t declared as parents.
func (t *Term) Parents() []*Term { return t.parents }

// Xrefs returns the external ids recorded for db, sorted.
func (t *Term) Xrefs(db string) []string {
	ids, ok := t.xrefs[db]
	if !ok {
		return nil
	}
	return sortedKeys(ids)
}

// XrefDBs returns the external database names referenced by t.
func (t *Term) XrefDBs() []string {
	dbs := make([]string, 0, len(t.xrefs))
	for db := range t.xrefs {
		dbs = append(dbs, db)
	}
	sort.Strings(dbs)
	return dbs
}

func (t *Term) addXref(db, id string) {
	if t.xrefs == nil {
		t.xrefs = make(map[string]map[string]struct{}, 2)
	}
	if t.xrefs[db] == nil {
		t.xrefs[db] = make(map[string]struct{}, 1)
	}
	t.xrefs[db][id] = struct{}{}
}

// link records parent as a parent of t under the given relation and
// keeps the untyped adjacency of both ends in sync.
func (t *Term) link(rel string, parent *Term) {
	switch rel {
	case RelIsA:
		t.IsA = append(t.IsA, parent)
	case RelRegulates:
		t.Regulates = append(t.Regulates, parent)
	case RelPartOf:
		t.PartOf = append(t.PartOf, parent)
	}
	t.Head = false

	if t.parentSet == nil {
		t.parentSet = make(map[*Term]struct{}, 2)
	}
	if _, ok := t.parentSet[parent]; !ok {
		t.parentSet[parent] = struct{}{}
		t.parents = append(t.parents, parent)
	}
	if parent.childSet == nil {
		parent.childSet = make(map[*Term]struct{}, 4)
	}
	if _, ok := parent.childSet[t]; !ok {
		parent.childSet[t] = struct{}{}
		parent.children = append(parent.children, t)
	}
}

// relationTo reports how t relates to its parent p for propagation.
// Regulates wins over part_of, which wins over plain hierarchy.
func (t *Term) relationTo(p *Term) string {
	for _, r := range t.Regulates {
		if r == p {
			return RelRegulates
		}
	}
	for _, r := range t.PartOf {
		if r == p {
			return RelPartOf
		}
	}
	return RelIsA
}

// AddAnnotation stores a and reports whether it was new.
func (t *Term) AddAnnotation(a Annotation) bool {
	return t.annotations.Add(a)
}

// RemoveAnnotation deletes a if present.
func (t *Term) RemoveAnnotation(a Annotation) {
	delete(t.annotations, a)
}

// GeneOptions tune AddGene.
type GeneOptions struct {
	Ref            string
	Direct         bool
	CrossAnnotated bool
	Origin         string
	OrthoEvidence  string

	// RejectDuplicateGene skips a gene already annotated to t under
	// any evidence.
	RejectDuplicateGene bool
}

// AddGene annotates t with gene and reports whether anything was added.
func (t *Term) AddGene(gene string, opts GeneOptions) bool {
	if opts.RejectDuplicateGene && t.HasGene(gene) {
		return false
	}
	return t.annotations.Add(NewAnnotation(AnnotationFields{
		GeneID:         gene,
		Ref:            opts.Ref,
		Direct:         opts.Direct,
		CrossAnnotated: opts.CrossAnnotated,
		Origin:         opts.Origin,
		OrthoEvidence:  opts.OrthoEvidence,
	}))
}

// HasGene reports whether any annotation of t names gene.
func (t *Term) HasGene(gene string) bool {
	for a := range t.annotations {
		if a.geneID == gene {
			return true
		}
	}
	return false
}

// HasAnnotation reports whether a is stored on t.
func (t *Term) HasAnnotation(a Annotation) bool {
	return t.annotations.Contains(a)
}

// Annotations returns t's annotations in a stable order.
func (t *Term) Annotations() []Annotation {
	return t.annotations.Sorted()
}

func (t *Term) AnnotationCount() int { return len(t.annotations) }

// ClearAnnotations drops every annotation of t.
func (t *Term) ClearAnnotations() {
	t.annotations = make(AnnotationSet)
}

// AnnotatedGenes returns the unique gene ids annotated to t, sorted.
func (t *Term) AnnotatedGenes(includeCross bool) []string {
	genes := make(map[string]struct{}, len(t.annotations))
	for a := range t.annotations {
		if !includeCross && a.crossAnnotated {
			continue
		}
		genes[a.geneID] = struct{}{}
	}
	return sortedKeys(genes)
}

func (t *Term) String() string {
	return t.ID + ": " + t.Name
}

// Ontology is the term graph built from an OBO or OWL source.
type Ontology struct {
	terms    map[string]*Term
	obsolete map[string]*Term
	altIDs   map[string]string
	heads    []*Term
	meta     map[string]string

	// canonical name -> synonyms
	nameSynonyms map[string][]string

	log *zap.Logger

	populated  bool
	propagated bool
}

// Option configures an Ontology.
type Option func(*Ontology)

// WithLogger routes diagnostics to l.
func WithLogger(l *zap.Logger) Option {
	return func(o *Ontology) {
		if l != nil {
			o.log = l
		}
	}
}

// New returns an empty Ontology.
func New(opts ...Option) *Ontology {
	o := &Ontology{
		terms:        make(map[string]*Term, initialTermCapacity),
		obsolete:     make(map[string]*Term),
		altIDs:       make(map[string]string),
		meta:         make(map[string]string),
		nameSynonyms: make(map[string][]string),
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// termOrCreate is the only creation path for terms: parents referenced
// before their own stanza get an entry that is filled in later.
func (o *Ontology) termOrCreate(id string) *Term {
	if t, ok := o.terms[id]; ok {
		return t
	}
	if t, ok := o.obsolete[id]; ok {
		return t
	}
	t := newTerm(id)
	o.terms[id] = t
	return t
}

func (o *Ontology) markObsolete(t *Term) {
	t.Head = false
	t.Obsolete = true
	delete(o.terms, t.ID)
	o.obsolete[t.ID] = t
}

func (o *Ontology) addAltID(t *Term, alt string) {
	t.AltIDs = append(t.AltIDs, alt)
	o.altIDs[alt] = t.ID
}

func (o *Ontology) addSynonym(t *Term, syn string) {
	t.Synonyms = append(t.Synonyms, syn)
	o.nameSynonyms[t.Name] = append(o.nameSynonyms[t.Name], syn)
}

// Term resolves id, either canonical or alternate, to a live term.
func (o *Ontology) Term(id string) (*Term, bool) {
	if t, ok := o.lookup(id); ok {
		return t, true
	}
	o.log.Error("term does not exist", zap.String("id", id))
	return nil, false
}

func (o *Ontology) lookup(id string) (*Term, bool) {
	if t, ok := o.terms[id]; ok {
		return t, true
	}
	if std, ok := o.altIDs[id]; ok {
		if t, ok := o.terms[std]; ok {
			return t, true
		}
	}
	return nil, false
}

// Len returns the number of live terms.
func (o *Ontology) Len() int { return len(o.terms) }

// Heads returns the root terms in the order their stanzas closed.
func (o *Ontology) Heads() []*Term { return o.heads }

// Meta returns a header metadata value.
func (o *Ontology) Meta(key string) (string, bool) {
	v, ok := o.meta[key]
	return v, ok
}

// Synonyms returns the synonyms recorded under a canonical name.
func (o *Ontology) Synonyms(name string) []string {
	return o.nameSynonyms[name]
}

// Populated reports whether annotations were loaded from a file.
func (o *Ontology) Populated() bool { return o.populated }

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
