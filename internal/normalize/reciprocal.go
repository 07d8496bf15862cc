package normalize

import (
	"strconv"

	"lineage/internal/facts"
)

var siblingTerms = map[string]struct{}{
	"brother": {},
	"sister":  {},
	"sibling": {},
}

var spouseTerms = map[string]struct{}{
	"husband": {},
	"wife":    {},
	"spouse":  {},
}

// deriveSiblingInLaws links the subject to spouses of siblings and to
// siblings of the spouse. Both are in-laws with reduced confidence.
func (n *Normalizer) deriveSiblingInLaws(w *workingSet) {
	rels := make([]facts.Fact, 0, len(w.items))
	for _, f := range w.items {
		if f.Type == facts.TypeRelationship {
			rels = append(rels, f)
		}
	}

	for _, sib := range rels {
		if sib.RelatedName != "" {
			continue
		}
		if _, ok := siblingTerms[sib.Relationship]; !ok {
			continue
		}
		for _, sp := range rels {
			if _, ok := spouseTerms[sp.Relationship]; !ok {
				continue
			}
			if samePerson(sp.RelatedName, sib.PersonName) && sp.RelatedName != "" {
				n.addInLaw(w, sp.PersonName)
			}
		}
	}

	for _, sp := range rels {
		if sp.RelatedName != "" {
			continue
		}
		if _, ok := spouseTerms[sp.Relationship]; !ok {
			continue
		}
		for _, sib := range rels {
			if _, ok := siblingTerms[sib.Relationship]; !ok {
				continue
			}
			if samePerson(sib.RelatedName, sp.PersonName) && sib.RelatedName != "" {
				n.addInLaw(w, sib.PersonName)
			}
		}
	}
}

func (n *Normalizer) addInLaw(w *workingSet, person string) {
	if person == "" || w.hasRelationBetween(person, "") {
		return
	}
	term := facts.GenderedTerm("sibling_in_law", w.gender(person))
	w.add(facts.Fact{
		Type:           facts.TypeRelationship,
		PersonName:     person,
		Relationship:   term,
		Role:           facts.RoleInLaw,
		Confidence:     n.cfg.SiblingInLaw,
		Inferred:       true,
		InferenceBasis: "married to or sibling of a sibling-side relative",
	})
}

// addReciprocals materializes the counterpart fact for each directed
// relationship at scaled confidence, skipping pairs that already carry
// a fact in the reverse direction.
func (n *Normalizer) addReciprocals(w *workingSet) {
	count := len(w.items)
	for i := 0; i < count; i++ {
		f := w.items[i]
		if f.Type != facts.TypeRelationship {
			continue
		}
		if samePerson(f.PersonName, f.RelatedName) {
			continue
		}
		flipped, ok := facts.Reciprocal(f.Relationship, w.gender(f.RelatedName))
		if !ok {
			continue
		}
		if w.hasRelationBetween(f.RelatedName, f.PersonName) {
			continue
		}
		role := facts.RoleSubject
		if f.RelatedName != "" {
			role = facts.RoleOther
		}
		basis := "reciprocal of " + strconv.Quote(f.Relationship)
		w.add(facts.Fact{
			Type:           facts.TypeRelationship,
			PersonName:     f.RelatedName,
			Relationship:   flipped,
			RelatedName:    f.PersonName,
			Role:           role,
			Confidence:     f.Confidence * n.cfg.ReciprocalScale,
			Inferred:       true,
			InferenceBasis: basis,
		})
		// record the gender the flipped term implies now so a rerun's
		// gender pass finds nothing new
		if g, ok := facts.GenderFor(flipped); ok {
			w.setGender(f.RelatedName, g, n.cfg.GenderInference, genderBasis(flipped))
		}
	}
}
