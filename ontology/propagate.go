package ontology

import (
	"errors"

	"go.uber.org/zap"
)

// ErrAlreadyPropagated is returned by Propagate when annotations were
// already propagated and not reset since.
var ErrAlreadyPropagated = errors.New("annotations already propagated")

// Propagate pulls every term's annotations up to its ancestors, starting
// from each head. Crossing a regulates edge is allowed once: the copy is
// marked with the regulates cutoff and further regulates edges drop it.
// part_of copies are always made and always marked.
func (o *Ontology) Propagate() error {
	if o.propagated {
		return ErrAlreadyPropagated
	}
	done := make(map[*Term]struct{}, len(o.terms))
	for _, head := range o.heads {
		o.log.Debug("propagating", zap.String("head", head.ID), zap.String("name", head.Name))
		propagateTerm(head, done)
	}
	o.propagated = true
	o.log.Info("propagated annotations", zap.Int("heads", len(o.heads)), zap.Int("terms", len(done)))
	return nil
}

// propagateTerm fills t with the annotations inherited from its subtree.
// Children are completed before t reads them; a term completed once is
// not revisited from a second parent.
func propagateTerm(t *Term, done map[*Term]struct{}) {
	if _, ok := done[t]; ok {
		return
	}
	defer func() { done[t] = struct{}{} }()
	if len(t.children) == 0 {
		return
	}

	cutoff := true
	for _, child := range t.children {
		propagateTerm(child, done)

		rel := child.relationTo(t)
		for a := range child.annotations {
			switch rel {
			case RelRegulates:
				if a.regulatesCutoff {
					continue
				}
				t.annotations.Add(a.propCopy(&cutoff))
			case RelPartOf:
				t.annotations.Add(a.propCopy(&cutoff))
			default:
				t.annotations.Add(a.propCopy(nil))
			}
		}
	}
}

// Propagated reports whether Propagate has run since the last reset.
func (o *Ontology) Propagated() bool { return o.propagated }

// ResetAnnotations drops every annotation, live and obsolete, so the
// ontology can be repopulated and propagated again.
func (o *Ontology) ResetAnnotations() {
	for _, t := range o.terms {
		t.ClearAnnotations()
	}
	for _, t := range o.obsolete {
		t.ClearAnnotations()
	}
	o.populated = false
	o.propagated = false
}
