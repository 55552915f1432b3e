package ontology

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOWL = `<?xml version="1.0"?>
<rdf:RDF xmlns="http://purl.obolibrary.org/obo/go.owl#"
     xmlns:owl="http://www.w3.org/2002/07/owl#"
     xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
     xmlns:rdfs="http://www.w3.org/2000/01/rdf-schema#"
     xmlns:obo="http://purl.obolibrary.org/obo/"
     xmlns:oboInOwl="http://www.geneontology.org/formats/oboInOwl#">
    <owl:Ontology rdf:about="http://purl.obolibrary.org/obo/go.owl">
        <owl:versionIRI rdf:resource="http://purl.obolibrary.org/obo/go/releases/2024-01-01/go.owl"/>
        <rdfs:comment>ignored</rdfs:comment>
    </owl:Ontology>
    <owl:ObjectProperty rdf:about="http://purl.obolibrary.org/obo/BFO_0000050">
        <rdfs:label>part of</rdfs:label>
    </owl:ObjectProperty>
    <owl:Class rdf:about="http://purl.obolibrary.org/obo/GO_0000001">
        <rdfs:label>DNA repair, double-strand break</rdfs:label>
        <oboInOwl:hasOBONamespace>biological_process</oboInOwl:hasOBONamespace>
        <oboInOwl:hasAlternativeId>GO:0000002</oboInOwl:hasAlternativeId>
        <obo:IAO_0000115>The repair of a break.</obo:IAO_0000115>
        <oboInOwl:hasExactSynonym>DSB repair</oboInOwl:hasExactSynonym>
        <oboInOwl:hasDbXref>Reactome:R-HSA-123</oboInOwl:hasDbXref>
        <rdfs:subClassOf rdf:resource="http://purl.obolibrary.org/obo/GO_0000010"/>
        <rdfs:subClassOf>
            <owl:Restriction>
                <owl:onProperty rdf:resource="http://purl.obolibrary.org/obo/BFO_0000051"/>
                <owl:someValuesFrom rdf:resource="http://purl.obolibrary.org/obo/GO_0000050"/>
            </owl:Restriction>
        </rdfs:subClassOf>
    </owl:Class>
    <owl:Class rdf:about="http://purl.obolibrary.org/obo/GO_0000010">
        <rdfs:label>parent</rdfs:label>
        <oboInOwl:hasOBONamespace>biological_process</oboInOwl:hasOBONamespace>
        <rdfs:subClassOf>
            <owl:Restriction>
                <owl:onProperty rdf:resource="http://purl.obolibrary.org/obo/RO_0002213"/>
                <owl:someValuesFrom rdf:resource="http://purl.obolibrary.org/obo/GO_0000020"/>
            </owl:Restriction>
        </rdfs:subClassOf>
        <rdfs:subClassOf>
            <owl:Restriction>
                <owl:onProperty rdf:resource="http://purl.obolibrary.org/obo/BFO_0000050"/>
                <owl:someValuesFrom rdf:resource="http://purl.obolibrary.org/obo/GO_0000050"/>
            </owl:Restriction>
        </rdfs:subClassOf>
    </owl:Class>
    <owl:Class rdf:about="http://purl.obolibrary.org/obo/GO_0000020">
        <rdfs:label>grandparent</rdfs:label>
        <oboInOwl:hasOBONamespace>biological_process</oboInOwl:hasOBONamespace>
    </owl:Class>
    <owl:Class rdf:about="http://purl.obolibrary.org/obo/GO_0000030">
        <rdfs:label>obsolete thing</rdfs:label>
        <owl:deprecated rdf:datatype="http://www.w3.org/2001/XMLSchema#boolean">true</owl:deprecated>
    </owl:Class>
    <owl:Class rdf:about="http://purl.obolibrary.org/obo/GO_0000050">
        <rdfs:label>whole</rdfs:label>
        <oboInOwl:hasOBONamespace>biological_process</oboInOwl:hasOBONamespace>
    </owl:Class>
</rdf:RDF>
`

func TestParseOWL(t *testing.T) {
	o, err := ParseOWL(strings.NewReader(sampleOWL))
	require.NoError(t, err)

	v, _ := o.Meta("ontology")
	assert.Equal(t, "http://purl.obolibrary.org/obo/go.owl", v)
	v, _ = o.Meta("data-version")
	assert.Equal(t, "http://purl.obolibrary.org/obo/go/releases/2024-01-01/go.owl", v)

	term := mustTerm(t, o, "GO:0000001")
	assert.Equal(t, "dna_repair_double_strand_break", term.Name)
	assert.Equal(t, "DNA repair, double-strand break", term.FullName)
	assert.Equal(t, "biological_process", term.Namespace)
	assert.Equal(t, "The repair of a break.", term.Definition)
	assert.Equal(t, []string{"DSB repair"}, term.Synonyms)
	assert.Equal(t, []string{"R-HSA-123"}, term.Xrefs("Reactome"))
	assert.Same(t, term, mustTerm(t, o, "GO:0000002"))
}

func TestParseOWLRelations(t *testing.T) {
	o, err := ParseOWL(strings.NewReader(sampleOWL))
	require.NoError(t, err)

	child := mustTerm(t, o, "GO:0000001")
	parent := mustTerm(t, o, "GO:0000010")
	grand := mustTerm(t, o, "GO:0000020")
	whole := mustTerm(t, o, "GO:0000050")

	// has_part restriction is dropped.
	assert.Equal(t, []*Term{parent}, child.Parents())
	assert.Equal(t, []*Term{parent}, child.IsA)
	assert.Equal(t, []*Term{grand}, parent.Regulates)
	assert.Equal(t, []*Term{whole}, parent.PartOf)

	var heads []string
	for _, h := range o.Heads() {
		heads = append(heads, h.ID)
	}
	assert.ElementsMatch(t, []string{"GO:0000020", "GO:0000050"}, heads)
}

func TestParseOWLObsolete(t *testing.T) {
	o, err := ParseOWL(strings.NewReader(sampleOWL))
	require.NoError(t, err)

	_, ok := o.lookup("GO:0000030")
	assert.False(t, ok)
	obs := o.ObsoleteTerms()
	require.Len(t, obs, 1)
	assert.Equal(t, "obsolete_thing", obs[0].Name)
}

func TestParseOWLPropagates(t *testing.T) {
	o, err := ParseOWL(strings.NewReader(sampleOWL))
	require.NoError(t, err)
	o.AddAnnotation("GO:0000001", "g1", "", true)

	require.NoError(t, o.Propagate())

	got := mustTerm(t, o, "GO:0000020").Annotations()
	require.Len(t, got, 1)
	assert.True(t, got[0].RegulatesCutoff())
	assert.Equal(t, []string{"g1"}, mustTerm(t, o, "GO:0000050").AnnotatedGenes(true))
}

func TestParseOWLMalformed(t *testing.T) {
	_, err := ParseOWL(strings.NewReader(`<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"><owl:Class`))
	require.Error(t, err)
}
