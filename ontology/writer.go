package ontology

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	writerBufferSize = 256 * 1024 // 256 KB
	dirWriteLimit    = 8
)

// WriteDir writes one file per annotated term into dir, named by the
// term's canonical name and listing its unique genes one per line. Terms
// whose canonical names collide are written under their ids instead.
func (o *Ontology) WriteDir(ctx context.Context, dir string, f Filter) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("write dir: %w", err)
	}

	type termFile struct {
		term  *Term
		genes []string
	}
	var files []termFile
	uses := make(map[string]int)
	for _, t := range o.TermList(f) {
		genes := t.AnnotatedGenes(true)
		if len(genes) == 0 {
			continue
		}
		files = append(files, termFile{t, genes})
		uses[t.Name]++
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(dirWriteLimit)
	for _, tf := range files {
		t, genes := tf.term, tf.genes
		name := t.Name
		if name == "" || uses[name] > 1 {
			name = strings.ReplaceAll(t.ID, ":", "_")
			o.log.Debug("term file named by id", zap.String("term", t.ID), zap.String("name", t.Name))
		}
		path := filepath.Join(dir, name)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data := strings.Join(genes, "\n") + "\n"
			if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
				return fmt.Errorf("write dir: %w", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// WriteTable writes every annotation of the selected terms, one per
// line. With assoc set the 14 column association layout is used,
// otherwise "id\tname\tgene".
func (o *Ontology) WriteTable(w io.Writer, f Filter, assoc bool) error {
	bw := bufio.NewWriterSize(w, writerBufferSize)
	for _, t := range o.TermList(f) {
		for _, a := range t.Annotations() {
			var err error
			if assoc {
				_, err = fmt.Fprintln(bw, strings.Join(assocRow(t, a), "\t"))
			} else {
				_, err = fmt.Fprintf(bw, "%s\t%s\t%s\n", t.ID, t.Name, a.geneID)
			}
			if err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func assocRow(t *Term, a Annotation) []string {
	origin := ""
	if a.crossAnnotated {
		origin = a.origin
	}
	return []string{
		a.xdb,
		a.geneID,
		"", "", // symbol, qualifier
		t.ID,
		a.ref,
		a.evidence,
		a.date,
		pyBool(a.direct),
		pyBool(a.crossAnnotated),
		origin,
		a.orthoEvidence,
		"", "",
	}
}

// pyBool renders flags the way existing association files spell them.
func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// WriteGMT writes "id\tname\tgene..." for every annotated term.
func (o *Ontology) WriteGMT(w io.Writer, f Filter) error {
	bw := bufio.NewWriterSize(w, writerBufferSize)
	for _, t := range o.TermList(f) {
		genes := t.AnnotatedGenes(true)
		if len(genes) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\n", t.ID, t.Name, strings.Join(genes, "\t")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteMatrix writes a gene by term presence matrix: a header of term
// ids, then one row per gene with 1 where the gene annotates the term.
func (o *Ontology) WriteMatrix(w io.Writer, f Filter) error {
	var header []string
	members := make(map[string]map[string]struct{})
	for _, t := range o.TermList(f) {
		if len(t.annotations) == 0 {
			continue
		}
		header = append(header, t.ID)
		for _, gene := range t.AnnotatedGenes(true) {
			if members[gene] == nil {
				members[gene] = make(map[string]struct{})
			}
			members[gene][t.ID] = struct{}{}
		}
	}

	bw := bufio.NewWriterSize(w, writerBufferSize)
	if _, err := fmt.Fprintf(bw, "\t%s\n", strings.Join(header, "\t")); err != nil {
		return err
	}
	row := make([]string, len(header)+1)
	for _, gene := range sortedGeneKeys(members) {
		row[0] = gene
		for i, id := range header {
			row[i+1] = "0"
			if _, ok := members[gene][id]; ok {
				row[i+1] = "1"
			}
		}
		if _, err := fmt.Fprintln(bw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func sortedGeneKeys(m map[string]map[string]struct{}) []string {
	keys := make(map[string]struct{}, len(m))
	for k := range m {
		keys[k] = struct{}{}
	}
	return sortedKeys(keys)
}

// TermRecord is the JSON form of a term.
type TermRecord struct {
	*Term
	IsA       []string            `json:"is_a,omitempty"`
	Regulates []string            `json:"regulates,omitempty"`
	PartOf    []string            `json:"part_of,omitempty"`
	Xrefs     map[string][]string `json:"xrefs,omitempty"`
	Genes     []string            `json:"genes,omitempty"`
}

// Document is the top-level JSON output.
type Document struct {
	Meta  map[string]string `json:"meta,omitempty"`
	Terms []TermRecord      `json:"terms"`
}

func (o *Ontology) document(f Filter) *Document {
	doc := &Document{Meta: o.meta}
	for _, t := range o.TermList(f) {
		rec := TermRecord{
			Term:      t,
			IsA:       termIDs(t.IsA),
			Regulates: termIDs(t.Regulates),
			PartOf:    termIDs(t.PartOf),
			Genes:     t.AnnotatedGenes(true),
		}
		if dbs := t.XrefDBs(); len(dbs) > 0 {
			rec.Xrefs = make(map[string][]string, len(dbs))
			for _, db := range dbs {
				rec.Xrefs[db] = t.Xrefs(db)
			}
		}
		doc.Terms = append(doc.Terms, rec)
	}
	return doc
}

func termIDs(ts []*Term) []string {
	if len(ts) == 0 {
		return nil
	}
	ids := make([]string, len(ts))
	for i, t := range ts {
		ids[i] = t.ID
	}
	return ids
}

// WriteJSON writes the selected terms as JSON to the given writer.
func (o *Ontology) WriteJSON(w io.Writer, f Filter) error {
	bw := bufio.NewWriterSize(w, writerBufferSize)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(o.document(f)); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteJSONFile writes the selected terms as JSON to the given file path.
func (o *Ontology) WriteJSONFile(path string, f Filter) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return o.WriteJSON(out, f)
}

// WriteJSONPretty writes indented JSON to the given writer.
func (o *Ontology) WriteJSONPretty(w io.Writer, f Filter) error {
	bw := bufio.NewWriterSize(w, writerBufferSize)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(o.document(f)); err != nil {
		return err
	}
	return bw.Flush()
}
