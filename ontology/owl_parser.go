package ontology

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// OWL/RDF namespace URIs
const (
	nsOWL      = "http://www.w3.org/2002/07/owl#"
	nsRDF      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	nsRDFS     = "http://www.w3.org/2000/01/rdf-schema#"
	nsOBO      = "http://purl.obolibrary.org/obo/"
	nsOBOInOwl = "http://www.geneontology.org/formats/oboInOwl#"
)

// Object properties GO uses for the relations we propagate over.
var owlRelations = map[string]string{
	"BFO:0000050": RelPartOf,
	"RO:0002211":  RelRegulates,
	"RO:0002212":  RelRegulates, // negatively regulates
	"RO:0002213":  RelRegulates, // positively regulates
}

const owlHasPart = "BFO:0000051"

// ParseOWL parses the RDF/XML distribution of an OBO ontology.
func ParseOWL(r io.Reader, opts ...Option) (*Ontology, error) {
	o := New(opts...)
	if err := o.LoadOWL(r); err != nil {
		return nil, err
	}
	return o, nil
}

// LoadOWL reads owl:Class elements from r into o.
func (o *Ontology) LoadOWL(r io.Reader) error {
	decoder := xml.NewDecoder(r)
	pool := newInternPool()

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read owl: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch {
		case matchElement(se, nsOWL, "Class"):
			if err := o.parseOWLClass(decoder, se, pool); err != nil {
				return err
			}
		case matchElement(se, nsOWL, "Ontology"):
			if err := o.parseOWLOntologyHeader(decoder, se); err != nil {
				return err
			}
		case matchElement(se, nsRDF, "RDF"):
			// descend into the document element
		default:
			if err := decoder.Skip(); err != nil {
				return fmt.Errorf("read owl: %w", err)
			}
		}
	}

	o.log.Info("loaded owl",
		zap.Int("terms", len(o.terms)),
		zap.Int("obsolete", len(o.obsolete)),
		zap.Int("heads", len(o.heads)))
	return nil
}

func matchElement(se xml.StartElement, ns, local string) bool {
	return se.Name.Space == ns && se.Name.Local == local
}

func getAttr(se xml.StartElement, ns, local string) string {
	for _, a := range se.Attr {
		if a.Name.Space == ns && a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func oboIDFromURI(uri string) string {
	// Convert http://purl.obolibrary.org/obo/GO_0008150 to GO:0008150
	if strings.HasPrefix(uri, nsOBO) {
		id := uri[len(nsOBO):]
		if idx := strings.IndexByte(id, '_'); idx >= 0 {
			return id[:idx] + ":" + id[idx+1:]
		}
		return id
	}
	return uri
}

func (o *Ontology) parseOWLOntologyHeader(decoder *xml.Decoder, se xml.StartElement) error {
	if about := getAttr(se, nsRDF, "about"); about != "" {
		o.meta["ontology"] = about
	}

	for {
		tok, err := decoder.Token()
		if err != nil {
			return fmt.Errorf("read owl header: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "versionIRI" {
				if v := getAttr(t, nsRDF, "resource"); v != "" {
					o.meta["data-version"] = v
				}
			}
			if err := decoder.Skip(); err != nil {
				return fmt.Errorf("read owl header: %w", err)
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (o *Ontology) parseOWLClass(decoder *xml.Decoder, se xml.StartElement, pool *internPool) error {
	about := getAttr(se, nsRDF, "about")
	if about == "" {
		return decoder.Skip()
	}
	t := o.termOrCreate(oboIDFromURI(about))

	var synonyms []string
	obsolete := false
	for {
		tok, err := decoder.Token()
		if err != nil {
			return fmt.Errorf("read owl class %s: %w", t.ID, err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch {
			case matchElement(el, nsRDFS, "label"):
				label := readCharData(decoder)
				t.FullName = strings.Join(strings.Fields(label), " ")
				t.Name = CanonicalName(strings.Fields(label))
			case matchElement(el, nsRDFS, "subClassOf"):
				if res := getAttr(el, nsRDF, "resource"); res != "" {
					t.link(RelIsA, o.termOrCreate(oboIDFromURI(res)))
					if err := decoder.Skip(); err != nil {
						return err
					}
					continue
				}
				prop, target, err := parseOWLRestriction(decoder)
				if err != nil {
					return err
				}
				o.owlRestriction(t, prop, target)
			case matchElement(el, nsOWL, "deprecated"):
				obsolete = readCharData(decoder) == "true"
			case matchElement(el, nsOBOInOwl, "hasOBONamespace"):
				t.Namespace = pool.get(readCharData(decoder))
			case matchElement(el, nsOBOInOwl, "hasAlternativeId"):
				o.addAltID(t, readCharData(decoder))
			case matchElement(el, nsOBO, "IAO_0000115"):
				t.Definition = readCharData(decoder)
			case el.Name.Space == nsOBOInOwl && strings.HasSuffix(el.Name.Local, "Synonym"):
				synonyms = append(synonyms, readCharData(decoder))
			case matchElement(el, nsOBOInOwl, "hasDbXref"):
				if db, id, ok := strings.Cut(readCharData(decoder), ":"); ok {
					id, _, _ = strings.Cut(id, ":")
					t.addXref(db, id)
				}
			default:
				if err := decoder.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			// End of owl:Class. Synonyms are indexed by name, which
			// rdfs:label may only provide after them.
			for _, syn := range synonyms {
				o.addSynonym(t, strings.TrimPrefix(syn, "lineage name: "))
			}
			if obsolete {
				o.markObsolete(t)
			}
			if t.Head {
				o.heads = append(o.heads, t)
			}
			return nil
		}
	}
}

func (o *Ontology) owlRestriction(t *Term, prop, target string) {
	if prop == "" || target == "" || prop == owlHasPart {
		return
	}
	kind, ok := owlRelations[prop]
	if !ok {
		o.log.Debug("unknown relationship",
			zap.String("term", t.ID),
			zap.String("relationship", prop),
			zap.String("target", target))
		return
	}
	t.link(kind, o.termOrCreate(target))
}

// parseOWLRestriction reads the body of a rdfs:subClassOf holding an
// owl:Restriction and returns its onProperty and someValuesFrom ids.
func parseOWLRestriction(decoder *xml.Decoder) (prop, target string, err error) {
	depth := 0
	for {
		tok, err := decoder.Token()
		if err != nil {
			return "", "", fmt.Errorf("read owl restriction: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch {
			case matchElement(el, nsOWL, "Restriction"):
				depth++
				continue
			case matchElement(el, nsOWL, "onProperty"):
				prop = oboIDFromURI(getAttr(el, nsRDF, "resource"))
			case matchElement(el, nsOWL, "someValuesFrom"):
				target = oboIDFromURI(getAttr(el, nsRDF, "resource"))
			}
			if err := decoder.Skip(); err != nil {
				return "", "", err
			}
		case xml.EndElement:
			depth--
			if depth < 0 {
				return prop, target, nil
			}
		}
	}
}

func readCharData(decoder *xml.Decoder) string {
	var sb strings.Builder
	for {
		tok, err := decoder.Token()
		if err != nil {
			return sb.String()
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			// keep the text of nested markup
			sb.WriteString(readCharData(decoder))
		case xml.EndElement:
			return strings.TrimSpace(sb.String())
		}
	}
}
