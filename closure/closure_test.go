package closure

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodeadmin/go-propagate/ontology"
)

func parse(t *testing.T, src string) *ontology.Ontology {
	t.Helper()
	o, err := ontology.ParseOBO(strings.NewReader(src))
	require.NoError(t, err)
	return o
}

// GO:C is_a GO:A and GO:R directly, GO:A is_a GO:R, GO:B part_of GO:R
// and GO:D regulates GO:C. GO:K is a component part_of GO:A.
const sampleOBO = `[Term]
id: GO:R
namespace: biological_process

[Term]
id: GO:A
namespace: biological_process
is_a: GO:R

[Term]
id: GO:B
namespace: biological_process
relationship: part_of GO:R

[Term]
id: GO:C
namespace: biological_process
is_a: GO:A
is_a: GO:R
is_a: GO:B

[Term]
id: GO:D
namespace: biological_process
relationship: negatively_regulates GO:C

[Term]
id: GO:K
namespace: cellular_component
relationship: part_of GO:A

[Term]
id: GO:L
namespace: cellular_component
is_a: GO:K
`

func TestNormalize(t *testing.T) {
	st, store := Normalize(parse(t, sampleOBO))

	assert.Equal(t, 7, st.Len())
	assert.Equal(t, "GO:A", st.Name(0))
	assert.Equal(t, "cellular_component", st.Namespace(5))
	assert.Equal(t, 8, store.EdgeCount())

	c, ok := st.Lookup("GO:C")
	require.True(t, ok)
	assert.Len(t, store.Parents(IsA, c), 3)
	d, _ := st.Lookup("GO:D")
	assert.Len(t, store.Parents(Regulates, d), 1)
	assert.Empty(t, store.Parents(PartOf, d))
}

func TestSaturateStaysInNamespace(t *testing.T) {
	st, store := Normalize(parse(t, sampleOBO))
	contexts := Saturate(st, store, AllRelations)

	k, _ := st.Lookup("GO:K")
	l, _ := st.Lookup("GO:L")
	assert.Zero(t, contexts[k].Len())
	assert.Equal(t, 1, contexts[l].Len())
	assert.True(t, contexts[l].Has(k))

	isA := Saturate(st, store, []Relation{IsA})
	b, _ := st.Lookup("GO:B")
	assert.Zero(t, isA[b].Len())
}

func TestSaturateMatchesAncestors(t *testing.T) {
	o := parse(t, sampleOBO)
	st, store := Normalize(o)
	contexts := Saturate(st, store, AllRelations)

	for _, term := range o.TermList(ontology.Filter{}) {
		c, ok := st.Lookup(term.ID)
		require.True(t, ok)
		assert.Equal(t, o.Ancestors(term.ID), names(st, keys(contexts[c].superSet)), term.ID)
	}
}

func TestNormalizeFollowsObsoleteParents(t *testing.T) {
	src := "[Term]\nid: GO:1\nnamespace: biological_process\nis_a: GO:2\n\n" +
		"[Term]\nid: GO:2\nnamespace: biological_process\nis_a: GO:3\nis_obsolete: true\n\n" +
		"[Term]\nid: GO:3\nnamespace: biological_process\n"
	o := parse(t, src)
	st, store := Normalize(o)

	assert.Equal(t, 3, st.Len())
	assert.Equal(t, "GO:2", st.Name(2))
	assert.Equal(t, 2, store.EdgeCount())

	h, err := Build(context.Background(), o, ontology.Filter{}, 1)
	require.NoError(t, err)
	require.Len(t, h.Terms, 2)
	assert.Equal(t, "GO:1", h.Terms[0].ID)
	assert.Equal(t, o.Ancestors("GO:1"), h.Terms[0].Ancestors)
	assert.Equal(t, []string{"GO:2", "GO:3"}, h.Terms[0].Ancestors)
}

func TestSaturateParallelMatchesSequential(t *testing.T) {
	st, store := Normalize(parse(t, sampleOBO))
	want := Saturate(st, store, AllRelations)

	got, err := SaturateParallel(context.Background(), st, store, AllRelations, 4)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].superSet, got[i].superSet, st.Name(TermID(i)))
	}
}

func TestSaturateParallelCancelled(t *testing.T) {
	st, store := Normalize(parse(t, sampleOBO))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := SaturateParallel(ctx, st, store, AllRelations, 2)
	require.ErrorIs(t, err, context.Canceled)
}

func TestBuild(t *testing.T) {
	h, err := Build(context.Background(), parse(t, sampleOBO), ontology.Filter{}, 1)
	require.NoError(t, err)
	require.Len(t, h.Terms, 7)

	byID := make(map[string]ClosureTerm)
	for _, ct := range h.Terms {
		byID[ct.ID] = ct
	}

	// GO:R is implied through GO:A and GO:B.
	assert.Equal(t, []string{"GO:A", "GO:B"}, byID["GO:C"].DirectParents)
	assert.Equal(t, []string{"GO:A", "GO:B", "GO:R"}, byID["GO:C"].Ancestors)
	assert.Equal(t, []string{"GO:C"}, byID["GO:D"].DirectParents)
	assert.Equal(t, []string{"GO:A", "GO:B", "GO:C", "GO:R"}, byID["GO:D"].Ancestors)
	assert.Empty(t, byID["GO:R"].DirectParents)
	assert.NotNil(t, byID["GO:R"].Ancestors)
	assert.Empty(t, byID["GO:K"].Ancestors)

	assert.Equal(t, 7, h.Stats.TermCount)
	assert.Equal(t, 8, h.Stats.EdgeCount)
	// A:1 B:1 C:3 D:4 L:1
	assert.Equal(t, 10, h.Stats.InferredAncestors)
}

func TestBuildFilter(t *testing.T) {
	h, err := Build(context.Background(), parse(t, sampleOBO), ontology.Filter{Namespace: "cellular_component"}, 0)
	require.NoError(t, err)
	require.Len(t, h.Terms, 2)
	assert.Equal(t, "GO:K", h.Terms[0].ID)
	assert.Equal(t, []string{"GO:K"}, h.Terms[1].DirectParents)
}

func TestWriteHierarchyJSON(t *testing.T) {
	h, err := Build(context.Background(), parse(t, sampleOBO), ontology.Filter{IDs: []string{"GO:A"}}, 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteHierarchyJSON(&buf, h))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	terms := got["terms"].([]any)
	require.Len(t, terms, 1)
	assert.Equal(t, []any{"GO:R"}, terms[0].(map[string]any)["direct_parents"])
	assert.EqualValues(t, 1, got["stats"].(map[string]any)["term_count"])
}

func TestWriteTSV(t *testing.T) {
	h, err := Build(context.Background(), parse(t, sampleOBO), ontology.Filter{IDs: []string{"GO:C", "GO:R"}}, 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, h))
	assert.Equal(t, "GO:C\tGO:A\tGO:B\tGO:R\nGO:R\n", buf.String())
}
