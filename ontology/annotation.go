package ontology

import "sort"

// AnnotationFields carries the values used to build an Annotation.
type AnnotationFields struct {
	XDB             string
	GeneID          string
	Ref             string
	Evidence        string
	Date            string
	Direct          bool
	CrossAnnotated  bool
	Origin          string
	OrthoEvidence   string
	RegulatesCutoff bool
}

// Annotation links a gene to a term. It is a comparable value: two
// annotations with the same fields are the same set member.
type Annotation struct {
	xdb             string
	geneID          string
	ref             string
	evidence        string
	date            string
	direct          bool
	crossAnnotated  bool
	origin          string
	orthoEvidence   string
	regulatesCutoff bool
}

// NewAnnotation builds an Annotation from f.
func NewAnnotation(f AnnotationFields) Annotation {
	return Annotation{
		xdb:             f.XDB,
		geneID:          f.GeneID,
		ref:             f.Ref,
		evidence:        f.Evidence,
		date:            f.Date,
		direct:          f.Direct,
		crossAnnotated:  f.CrossAnnotated,
		origin:          f.Origin,
		orthoEvidence:   f.OrthoEvidence,
		regulatesCutoff: f.RegulatesCutoff,
	}
}

func (a Annotation) XDB() string           { return a.xdb }
func (a Annotation) GeneID() string        { return a.geneID }
func (a Annotation) Ref() string           { return a.ref }
func (a Annotation) Evidence() string      { return a.evidence }
func (a Annotation) Date() string          { return a.date }
func (a Annotation) Direct() bool          { return a.direct }
func (a Annotation) CrossAnnotated() bool  { return a.crossAnnotated }
func (a Annotation) Origin() string        { return a.origin }
func (a Annotation) OrthoEvidence() string { return a.orthoEvidence }

// RegulatesCutoff reports whether the annotation already crossed a
// regulates or part_of edge and must not cross another regulates edge.
func (a Annotation) RegulatesCutoff() bool { return a.regulatesCutoff }

// Fields returns a copy of the annotation's values.
func (a Annotation) Fields() AnnotationFields {
	return AnnotationFields{
		XDB:             a.xdb,
		GeneID:          a.geneID,
		Ref:             a.ref,
		Evidence:        a.evidence,
		Date:            a.date,
		Direct:          a.direct,
		CrossAnnotated:  a.crossAnnotated,
		Origin:          a.origin,
		OrthoEvidence:   a.orthoEvidence,
		RegulatesCutoff: a.regulatesCutoff,
	}
}

// propCopy returns the inherited form of a. Propagated annotations are
// never direct or cross annotated. A nil cutoff keeps the current marker.
func (a Annotation) propCopy(cutoff *bool) Annotation {
	c := a.regulatesCutoff
	if cutoff != nil {
		c = *cutoff
	}
	return Annotation{
		xdb:             a.xdb,
		geneID:          a.geneID,
		ref:             a.ref,
		evidence:        a.evidence,
		date:            a.date,
		orthoEvidence:   a.orthoEvidence,
		regulatesCutoff: c,
	}
}

// less orders annotations for deterministic output.
func (a Annotation) less(b Annotation) bool {
	if a.geneID != b.geneID {
		return a.geneID < b.geneID
	}
	if a.xdb != b.xdb {
		return a.xdb < b.xdb
	}
	if a.ref != b.ref {
		return a.ref < b.ref
	}
	if a.evidence != b.evidence {
		return a.evidence < b.evidence
	}
	if a.date != b.date {
		return a.date < b.date
	}
	if a.direct != b.direct {
		return a.direct
	}
	if a.crossAnnotated != b.crossAnnotated {
		return !a.crossAnnotated
	}
	if a.origin != b.origin {
		return a.origin < b.origin
	}
	if a.orthoEvidence != b.orthoEvidence {
		return a.orthoEvidence < b.orthoEvidence
	}
	return !a.regulatesCutoff && b.regulatesCutoff
}

// AnnotationSet is a set of annotations keyed by value.
type AnnotationSet map[Annotation]struct{}

// Add inserts a and reports whether it was not already present.
func (s AnnotationSet) Add(a Annotation) bool {
	if _, ok := s[a]; ok {
		return false
	}
	s[a] = struct{}{}
	return true
}

func (s AnnotationSet) Contains(a Annotation) bool {
	_, ok := s[a]
	return ok
}

// Sorted returns the members in a stable order.
func (s AnnotationSet) Sorted() []Annotation {
	out := make([]Annotation, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	return out
}
