package closure

import (
	"github.com/nodeadmin/go-propagate/ontology"
)

// Normalize interns every live term of ont and records its typed
// parent edges. Live terms get the lowest ids, in id order; parents
// outside the live set (obsolete targets) are interned after them and
// their own edges are followed too.
func Normalize(ont *ontology.Ontology) (*SymbolTable, *EdgeStore) {
	terms := ont.TermList(ontology.Filter{})
	st := NewSymbolTable(len(terms))
	for _, t := range terms {
		st.Intern(t.ID, t.Namespace)
	}

	store := NewEdgeStore(st)
	byID := append([]*ontology.Term(nil), terms...)
	for sub := 0; sub < len(byID); sub++ {
		t := byID[sub]
		for _, rel := range AllRelations {
			for _, p := range parentsOf(t, rel) {
				sup, fresh := intern(st, p)
				if fresh {
					byID = append(byID, p)
				}
				store.AddEdge(rel, TermID(sub), sup)
			}
		}
	}
	return st, store
}

func parentsOf(t *ontology.Term, rel Relation) []*ontology.Term {
	switch rel {
	case IsA:
		return t.IsA
	case Regulates:
		return t.Regulates
	case PartOf:
		return t.PartOf
	}
	return nil
}

// intern reports whether p was new to st.
func intern(st *SymbolTable, p *ontology.Term) (TermID, bool) {
	if id, ok := st.Lookup(p.ID); ok {
		return id, false
	}
	return st.Intern(p.ID, p.Namespace), true
}
