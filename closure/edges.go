package closure

import "github.com/nodeadmin/go-propagate/ontology"

// Relation indexes the typed edge lists of an EdgeStore.
type Relation uint8

const (
	IsA Relation = iota
	Regulates
	PartOf
	relationCount
)

// AllRelations selects every edge kind.
var AllRelations = []Relation{IsA, Regulates, PartOf}

func (r Relation) String() string {
	switch r {
	case IsA:
		return ontology.RelIsA
	case Regulates:
		return ontology.RelRegulates
	case PartOf:
		return ontology.RelPartOf
	}
	return "unknown"
}

// EdgeStore holds the declared child to parent edges, indexed by
// relation and child.
type EdgeStore struct {
	subToSups [relationCount][][]TermID
	edges     int
}

func NewEdgeStore(st *SymbolTable) *EdgeStore {
	s := &EdgeStore{}
	s.Grow(st.Len())
	return s
}

// Grow ensures all per-term slices can hold nc terms.
func (s *EdgeStore) Grow(nc int) {
	for r := range s.subToSups {
		if nc > len(s.subToSups[r]) {
			grown := make([][]TermID, nc)
			copy(grown, s.subToSups[r])
			s.subToSups[r] = grown
		}
	}
}

// AddEdge records sub -rel-> sup.
func (s *EdgeStore) AddEdge(rel Relation, sub, sup TermID) {
	s.Grow(int(max(sub, sup)) + 1)
	s.subToSups[rel][sub] = append(s.subToSups[rel][sub], sup)
	s.edges++
}

// Parents returns the declared parents of sub under rel.
func (s *EdgeStore) Parents(rel Relation, sub TermID) []TermID {
	if int(sub) < len(s.subToSups[rel]) {
		return s.subToSups[rel][sub]
	}
	return nil
}

// EdgeCount returns the number of recorded edges.
func (s *EdgeStore) EdgeCount() int { return s.edges }
