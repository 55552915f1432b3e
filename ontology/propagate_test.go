package ontology

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func annotate(t *testing.T, o *Ontology, termID, gene string) Annotation {
	t.Helper()
	term, ok := o.Term(termID)
	require.True(t, ok, termID)
	a := NewAnnotation(AnnotationFields{XDB: "UniProtKB", GeneID: gene, Evidence: "IDA", Direct: true})
	require.True(t, term.AddAnnotation(a))
	return a
}

func inherited(a Annotation, cutoff bool) Annotation {
	f := a.Fields()
	f.Direct = false
	f.CrossAnnotated = false
	f.Origin = ""
	f.RegulatesCutoff = cutoff
	return NewAnnotation(f)
}

func mustTerm(t *testing.T, o *Ontology, id string) *Term {
	t.Helper()
	term, ok := o.Term(id)
	require.True(t, ok, id)
	return term
}

func TestPropagateIsA(t *testing.T) {
	o := parseString(t, chain("biological_process", "C is_a P"))
	a := annotate(t, o, "C", "g1")
	p := mustTerm(t, o, "P")
	before := p.AnnotationCount()

	require.NoError(t, o.Propagate())

	assert.Equal(t, before+1, p.AnnotationCount())
	assert.True(t, p.HasAnnotation(inherited(a, false)))
	for _, got := range p.Annotations() {
		assert.False(t, got.Direct())
	}
	// The child keeps only its direct annotation.
	assert.Equal(t, []Annotation{a}, mustTerm(t, o, "C").Annotations())
}

func TestPropagateRegulatesMarksCutoff(t *testing.T) {
	o := parseString(t, chain("biological_process", "C regulates P"))
	a := annotate(t, o, "C", "g1")

	require.NoError(t, o.Propagate())

	got := mustTerm(t, o, "P").Annotations()
	require.Len(t, got, 1)
	assert.True(t, got[0].RegulatesCutoff())
	assert.Equal(t, inherited(a, true), got[0])
}

func TestPropagateRegulatesBlocksSecondCrossing(t *testing.T) {
	o := parseString(t, chain("biological_process",
		"C regulates P",
		"P negatively_regulates G",
	))
	a := annotate(t, o, "C", "g1")

	require.NoError(t, o.Propagate())

	assert.Equal(t, []Annotation{inherited(a, true)}, mustTerm(t, o, "P").Annotations())
	assert.Zero(t, mustTerm(t, o, "G").AnnotationCount())
}

func TestPropagateIsAThenRegulates(t *testing.T) {
	o := parseString(t, chain("biological_process",
		"C is_a P",
		"P regulates G",
	))
	a := annotate(t, o, "C", "g1")

	require.NoError(t, o.Propagate())

	assert.Equal(t, []Annotation{inherited(a, false)}, mustTerm(t, o, "P").Annotations())
	assert.Equal(t, []Annotation{inherited(a, true)}, mustTerm(t, o, "G").Annotations())
}

func TestPropagateCutoffSurvivesIsA(t *testing.T) {
	o := parseString(t, chain("biological_process",
		"C regulates P",
		"P is_a G",
		"G positively_regulates R",
	))
	a := annotate(t, o, "C", "g1")

	require.NoError(t, o.Propagate())

	assert.Equal(t, []Annotation{inherited(a, true)}, mustTerm(t, o, "G").Annotations())
	assert.Zero(t, mustTerm(t, o, "R").AnnotationCount())
}

func TestPropagatePartOf(t *testing.T) {
	o := parseString(t, chain("cellular_component",
		"C part_of P",
		"P regulates G",
		"P part_of W",
	))
	a := annotate(t, o, "C", "g1")

	require.NoError(t, o.Propagate())

	assert.Equal(t, []Annotation{inherited(a, true)}, mustTerm(t, o, "P").Annotations())
	// part_of output is cut off for regulates...
	assert.Zero(t, mustTerm(t, o, "G").AnnotationCount())
	// ...but part_of itself copies regardless of the marker.
	assert.Equal(t, []Annotation{inherited(a, true)}, mustTerm(t, o, "W").Annotations())
}

func TestPropagateRegulatesTakesPrecedenceOverPartOf(t *testing.T) {
	src := "[Term]\nid: P\n\n[Term]\nid: C\nrelationship: part_of P\nrelationship: regulates P\nis_a: P\n"
	o := parseString(t, src)
	c := mustTerm(t, o, "C")
	p := mustTerm(t, o, "P")
	assert.Equal(t, []*Term{p}, c.Parents())

	a := NewAnnotation(AnnotationFields{GeneID: "g1", Direct: true, RegulatesCutoff: true})
	c.AddAnnotation(a)
	require.NoError(t, o.Propagate())
	assert.Zero(t, p.AnnotationCount())
}

func TestPropagateDiamondDeduplicates(t *testing.T) {
	o := parseString(t, chain("biological_process",
		"C is_a A",
		"C is_a B",
		"A is_a R",
		"B is_a R",
	))
	a := annotate(t, o, "C", "g1")

	require.NoError(t, o.Propagate())

	r := mustTerm(t, o, "R")
	assert.Equal(t, 1, r.AnnotationCount())
	assert.True(t, r.HasAnnotation(inherited(a, false)))
}

func TestPropagateDiamondKeepsDistinctCutoffs(t *testing.T) {
	o := parseString(t, chain("biological_process",
		"C is_a A",
		"C regulates B",
		"A is_a R",
		"B is_a R",
	))
	a := annotate(t, o, "C", "g1")

	require.NoError(t, o.Propagate())

	r := mustTerm(t, o, "R")
	assert.Equal(t, []Annotation{inherited(a, false), inherited(a, true)}, r.Annotations())
}

func TestPropagateClearsCrossAnnotation(t *testing.T) {
	o := parseString(t, chain("biological_process", "C is_a P"))
	c := mustTerm(t, o, "C")
	require.True(t, c.AddGene("g1", GeneOptions{CrossAnnotated: true, Origin: "yeast", OrthoEvidence: "0.9"}))

	require.NoError(t, o.Propagate())

	got := mustTerm(t, o, "P").Annotations()
	require.Len(t, got, 1)
	assert.False(t, got[0].CrossAnnotated())
	assert.False(t, got[0].Direct())
	assert.Empty(t, got[0].Origin())
	assert.Equal(t, "0.9", got[0].OrthoEvidence())
}

func TestPropagateAccumulatesOwnAndInherited(t *testing.T) {
	o := parseString(t, chain("biological_process",
		"C1 is_a P",
		"C2 is_a P",
	))
	annotate(t, o, "C1", "g1")
	annotate(t, o, "C2", "g2")
	annotate(t, o, "P", "g3")

	require.NoError(t, o.Propagate())

	p := mustTerm(t, o, "P")
	assert.Equal(t, 3, p.AnnotationCount())
	assert.Equal(t, []string{"g1", "g2", "g3"}, p.AnnotatedGenes(true))
}

func TestPropagateTwiceIsRejected(t *testing.T) {
	o := parseString(t, chain("biological_process", "C is_a P"))
	annotate(t, o, "C", "g1")

	require.NoError(t, o.Propagate())
	assert.True(t, o.Propagated())
	require.ErrorIs(t, o.Propagate(), ErrAlreadyPropagated)

	o.ResetAnnotations()
	assert.False(t, o.Propagated())
	assert.Zero(t, mustTerm(t, o, "P").AnnotationCount())
	assert.Zero(t, mustTerm(t, o, "C").AnnotationCount())

	annotate(t, o, "C", "g2")
	require.NoError(t, o.Propagate())
	assert.Equal(t, []string{"g2"}, mustTerm(t, o, "P").AnnotatedGenes(true))
}

// Stacked diamonds would cost 2^depth visits without memoization.
func TestPropagateDeepDiamonds(t *testing.T) {
	const depth = 40
	var edges []string
	for i := 0; i < depth; i++ {
		lower, upper := fmt.Sprintf("N%d", i), fmt.Sprintf("N%d", i+1)
		edges = append(edges,
			lower+" is_a "+upper+"a",
			lower+" regulates "+upper+"b",
			upper+"a is_a "+upper,
			upper+"b is_a "+upper,
		)
	}
	o := parseString(t, chain("biological_process", edges...))
	annotate(t, o, "N0", "g1")

	require.NoError(t, o.Propagate())

	top := mustTerm(t, o, fmt.Sprintf("N%d", depth))
	assert.Equal(t, 2, top.AnnotationCount())
	for _, a := range top.Annotations() {
		assert.Equal(t, "g1", a.GeneID())
	}
}
