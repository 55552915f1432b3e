// Package closure computes the same-namespace ancestor closure of every
// term at once, and the direct parents left after transitive reduction.
package closure

// TermID is an integer identifier for an ontology term.
type TermID uint32

// SymbolTable maps term ids to dense integer ids for the inner loops.
type SymbolTable struct {
	termToID   map[string]TermID
	idToTerm   []string
	namespaces []string
}

func NewSymbolTable(capacity int) *SymbolTable {
	return &SymbolTable{
		termToID:   make(map[string]TermID, capacity),
		idToTerm:   make([]string, 0, capacity),
		namespaces: make([]string, 0, capacity),
	}
}

// Intern returns the TermID for the given term id, creating one in
// namespace if needed.
func (st *SymbolTable) Intern(name, namespace string) TermID {
	if id, ok := st.termToID[name]; ok {
		return id
	}
	id := TermID(len(st.idToTerm))
	st.termToID[name] = id
	st.idToTerm = append(st.idToTerm, name)
	st.namespaces = append(st.namespaces, namespace)
	return id
}

// Lookup returns the TermID of name without creating one.
func (st *SymbolTable) Lookup(name string) (TermID, bool) {
	id, ok := st.termToID[name]
	return id, ok
}

func (st *SymbolTable) Len() int { return len(st.idToTerm) }

// Name returns the term id for a TermID.
func (st *SymbolTable) Name(id TermID) string {
	if int(id) < len(st.idToTerm) {
		return st.idToTerm[id]
	}
	return ""
}

func (st *SymbolTable) Namespace(id TermID) string {
	if int(id) < len(st.namespaces) {
		return st.namespaces[id]
	}
	return ""
}
