package closure

// Context holds the closure of a single term.
type Context struct {
	id TermID

	// S(C): every term of C's namespace reachable from C through the
	// selected relations without leaving that namespace.
	superSet map[TermID]struct{}
}

// Has reports whether d is an ancestor of the context's term.
func (c *Context) Has(d TermID) bool {
	_, ok := c.superSet[d]
	return ok
}

// Len returns the number of ancestors.
func (c *Context) Len() int { return len(c.superSet) }

// Saturate computes the ancestor closure of every term, following only
// the given relations.
func Saturate(st *SymbolTable, store *EdgeStore, rels []Relation) []Context {
	n := st.Len()
	contexts := make([]Context, n)
	worklist := make([]TermID, 0, 64)
	for c := TermID(0); c < TermID(n); c++ {
		worklist = saturateOne(&contexts[c], c, st, store, rels, worklist[:0])
	}
	return contexts
}

// saturateOne fills ctx with the closure of c. worklist is scratch space
// and is returned for reuse.
func saturateOne(ctx *Context, c TermID, st *SymbolTable, store *EdgeStore, rels []Relation, worklist []TermID) []TermID {
	ctx.id = c
	ctx.superSet = make(map[TermID]struct{}, 8)
	namespace := st.Namespace(c)
	worklist = append(worklist, c)

	// Process worklist items LIFO for cache locality.
	for len(worklist) > 0 {
		d := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		for _, rel := range rels {
			for _, e := range store.Parents(rel, d) {
				if st.Namespace(e) != namespace {
					continue
				}
				if _, exists := ctx.superSet[e]; !exists {
					ctx.superSet[e] = struct{}{}
					worklist = append(worklist, e)
				}
			}
		}
	}
	return worklist
}
