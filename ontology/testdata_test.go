package ontology

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleOBO = `format-version: 1.2
data-version: releases/2024-01-01
ontology: go
remark: sample for tests

[Term]
id: GO:0000001
name: DNA repair, double-strand break
namespace: biological_process
alt_id: GO:0000002
def: "The repair of a   double-strand break." [GOC:go]
synonym: "DSB repair" EXACT []
synonym: "lineage name: break fixing" RELATED []
xref: Reactome:R-HSA-123
xref: Wikipedia:DNA_repair:extra
xref: unprefixed
is_a: GO:0000010 ! parent

[Term]
id: GO:0000010
name: parent
namespace: biological_process
relationship: regulates GO:0000020 ! grandparent

[Term]
id: GO:0000020
name: grandparent
namespace: biological_process

[Term]
id: GO:0000030
name: obsolete thing
namespace: biological_process
is_obsolete: true

[Term]
id: GO:0000040
name: part thing
namespace: cellular_component
relationship: has_part GO:0000020
relationship: occurs_in GO:0000099
relationship: part_of GO:0000050

[Term]
id: GO:0000050
name: whole thing
namespace: cellular_component

[Typedef]
id: regulates
name: regulates
is_transitive: true
`

func parseString(t *testing.T, src string, opts ...Option) *Ontology {
	t.Helper()
	o, err := ParseOBO(strings.NewReader(src), opts...)
	require.NoError(t, err)
	return o
}

// chain builds an OBO document from "child rel parent" triples; every id
// mentioned gets a stanza in the given namespace.
func chain(namespace string, edges ...string) string {
	var order []string
	rels := make(map[string][]string)
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	for _, e := range edges {
		f := strings.Fields(e)
		add(f[0])
		add(f[2])
		switch f[1] {
		case "is_a":
			rels[f[0]] = append(rels[f[0]], "is_a: "+f[2])
		default:
			rels[f[0]] = append(rels[f[0]], "relationship: "+f[1]+" "+f[2])
		}
	}

	var sb strings.Builder
	for _, id := range order {
		sb.WriteString("[Term]\nid: " + id + "\nname: " + id + "\nnamespace: " + namespace + "\n")
		for _, r := range rels[id] {
			sb.WriteString(r + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
