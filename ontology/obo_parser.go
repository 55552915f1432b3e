package ontology

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const (
	initialTermCapacity = 1 << 12
	scannerBufferSize   = 1 << 20 // 1 MB
)

var (
	nonWordRe    = regexp.MustCompile(`[^\w\s_-]`)
	separatorsRe = regexp.MustCompile(`[-\s_]+`)
)

// internPool avoids duplicate string allocations for repeated values.
type internPool struct {
	m map[string]string
}

func newInternPool() *internPool {
	return &internPool{m: make(map[string]string, 64)}
}

func (p *internPool) get(s string) string {
	if v, ok := p.m[s]; ok {
		return v
	}
	p.m[s] = s
	return s
}

// ParseOBO parses an OBO-format ontology from the given reader.
func ParseOBO(r io.Reader, opts ...Option) (*Ontology, error) {
	o := New(opts...)
	if err := o.LoadOBO(r); err != nil {
		return nil, err
	}
	return o, nil
}

// oboState is the single forward pass state: whether we are inside a
// [Term] stanza and which term the field lines apply to.
type oboState struct {
	o       *Ontology
	pool    *internPool
	inside  bool
	current *Term
}

// LoadOBO reads OBO stanzas from r into o.
func (o *Ontology) LoadOBO(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, scannerBufferSize), scannerBufferSize)

	st := &oboState{o: o, pool: newInternPool()}
	for scanner.Scan() {
		st.line(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read obo: %w", err)
	}
	st.closeStanza()

	o.log.Info("loaded obo",
		zap.Int("terms", len(o.terms)),
		zap.Int("obsolete", len(o.obsolete)),
		zap.Int("heads", len(o.heads)))
	return nil
}

// closeStanza finishes the current term; a term that declared no parent
// is a root.
func (st *oboState) closeStanza() {
	if st.current != nil && st.current.Head {
		st.o.heads = append(st.o.heads, st.current)
	}
	st.current = nil
}

func (st *oboState) line(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	if strings.HasPrefix(fields[0], "[") {
		st.closeStanza()
		st.inside = fields[0] == "[Term]"
		return
	}

	if !st.inside {
		if len(st.o.terms) == 0 && len(fields) > 1 {
			key := strings.TrimSuffix(fields[0], ":")
			st.o.meta[key] = strings.Join(fields[1:], " ")
		}
		return
	}

	if fields[0] == "id:" {
		if len(fields) > 1 {
			st.current = st.o.termOrCreate(fields[1])
		}
		return
	}
	if st.current == nil || len(fields) < 2 {
		return
	}
	t := st.current
	o := st.o

	switch fields[0] {
	case "name:":
		t.FullName = strings.Join(fields[1:], " ")
		t.Name = CanonicalName(fields[1:])
	case "namespace:":
		t.Namespace = st.pool.get(fields[1])
	case "def:":
		t.Definition = parseQuoted(strings.Join(fields[1:], " "))
	case "alt_id:":
		o.addAltID(t, fields[1])
	case "is_a:":
		t.link(RelIsA, o.termOrCreate(fields[1]))
	case "relationship:":
		st.relationship(t, fields[1:])
	case "is_obsolete:":
		if fields[1] == "true" {
			o.markObsolete(t)
		}
	case "synonym:":
		syn := parseQuoted(strings.Join(fields[1:], " "))
		o.addSynonym(t, strings.TrimPrefix(syn, "lineage name: "))
	case "xref:":
		db, id, ok := strings.Cut(fields[1], ":")
		if ok {
			id, _, _ = strings.Cut(id, ":")
			t.addXref(db, id)
		}
	}
}

// relationship handles "relationship: <type> <target> ! name".
func (st *oboState) relationship(t *Term, args []string) {
	if len(args) < 2 {
		return
	}
	rel := args[0]
	// has_part points at a child, not a parent.
	if strings.Contains(rel, "has_part") {
		return
	}
	kind := relationKind(rel)
	if kind == "" {
		st.o.log.Debug("unknown relationship",
			zap.String("term", t.ID),
			zap.String("relationship", rel),
			zap.String("target", args[1]))
		return
	}
	t.link(kind, st.o.termOrCreate(args[1]))
}

func relationKind(rel string) string {
	switch rel {
	case "regulates", "positively_regulates", "negatively_regulates":
		return RelRegulates
	case "part_of":
		return RelPartOf
	}
	return ""
}

// CanonicalName turns the tokens of a display name into the lowercase,
// underscore separated form used for file names and lookups.
func CanonicalName(tokens []string) string {
	name := strings.Join(tokens, "_")
	name = strings.ReplaceAll(name, "'", "")
	name = nonWordRe.ReplaceAllString(name, "_")
	name = strings.ToLower(strings.TrimSpace(name))
	return separatorsRe.ReplaceAllString(name, "_")
}

// parseQuoted extracts text between the first pair of double quotes.
func parseQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return s
	}
	start++
	end := strings.IndexByte(s[start:], '"')
	if end < 0 {
		return s[start:]
	}
	return s[start : start+end]
}
