package ontology

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/nodeadmin/go-propagate/gmt"
)

// ErrMissingColumn is returned when an annotation row lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Columns holds the 0-based column indices of an annotation table.
// XDB, Gene and Term are required; a negative or out of range index for
// the others reads as absent.
type Columns struct {
	XDB      int `yaml:"xdb" toml:"xdb"`
	Gene     int `yaml:"gene" toml:"gene"`
	Term     int `yaml:"term" toml:"term"`
	Ref      int `yaml:"ref" toml:"ref"`
	Evidence int `yaml:"evidence" toml:"evidence"`
	Date     int `yaml:"date" toml:"date"`
	Details  int `yaml:"details" toml:"details"`
}

// DefaultColumns returns the GAF 2.x layout.
func DefaultColumns() Columns {
	return Columns{XDB: 0, Gene: 1, Term: 4, Ref: 5, Evidence: 6, Date: 13, Details: 3}
}

// PopulateAnnotations attaches the rows of a tab separated annotation
// table to their terms as direct annotations. Rows qualified NOT and rows
// naming an unknown term are skipped.
func (o *Ontology) PopulateAnnotations(r io.Reader, cols Columns) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, scannerBufferSize), scannerBufferSize)

	added, skipped := 0, 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" || line[0] == '!' {
			continue
		}
		fields := strings.Split(line, "\t")

		xdb, err := required(fields, cols.XDB, "xdb")
		if err != nil {
			return fmt.Errorf("annotations line %d: %w", lineNo, err)
		}
		gene, err := required(fields, cols.Gene, "gene")
		if err != nil {
			return fmt.Errorf("annotations line %d: %w", lineNo, err)
		}
		termID, err := required(fields, cols.Term, "term")
		if err != nil {
			return fmt.Errorf("annotations line %d: %w", lineNo, err)
		}

		if optional(fields, cols.Details) == "NOT" {
			skipped++
			continue
		}
		t, ok := o.Term(termID)
		if !ok {
			skipped++
			continue
		}
		o.log.Debug("annotation", zap.String("gene", gene), zap.String("term", t.ID))
		if t.AddAnnotation(NewAnnotation(AnnotationFields{
			XDB:      xdb,
			GeneID:   gene,
			Ref:      optional(fields, cols.Ref),
			Evidence: optional(fields, cols.Evidence),
			Date:     optional(fields, cols.Date),
			Direct:   true,
		})) {
			added++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read annotations: %w", err)
	}

	o.populated = true
	o.log.Info("populated annotations", zap.Int("added", added), zap.Int("skipped", skipped))
	return nil
}

func required(fields []string, idx int, name string) (string, error) {
	if idx < 0 || idx >= len(fields) {
		return "", fmt.Errorf("%w: %s (index %d of %d fields)", ErrMissingColumn, name, idx, len(fields))
	}
	return fields[idx], nil
}

func optional(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

// PopulateFromGMT annotates each gene set's term with its member genes.
// Gene sets whose id is not a term are skipped.
func (o *Ontology) PopulateFromGMT(g *gmt.GMT) {
	for _, id := range g.IDs() {
		t, ok := o.Term(id)
		if !ok {
			continue
		}
		for _, gene := range g.Genes(id) {
			t.AddGene(gene, GeneOptions{Direct: true})
		}
	}
	o.populated = true
}

// AddAnnotation attaches a gene to termID. It reports false when the term
// does not resolve.
func (o *Ontology) AddAnnotation(termID, geneID, ref string, direct bool) bool {
	t, ok := o.Term(termID)
	if !ok {
		return false
	}
	t.AddAnnotation(NewAnnotation(AnnotationFields{GeneID: geneID, Ref: ref, Direct: direct}))
	return true
}
