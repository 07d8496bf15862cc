package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"lineage/internal/facts"
)

// "Ryan (Amy) Blundon" lists a relative with their spouse in
// parentheses and a shared surname after.
var spousePattern = regexp.MustCompile(`\b([A-Z][a-z]+)\s+\(([A-Z][a-z]+)\)\s+([A-Z][a-z]+)\b`)

// applySpousePatterns expands parenthetical spouse mentions into
// relationship and gender facts. The parenthetical name is taken as the
// wife unless the named relative is already recorded as female, and
// inherits the shared surname as a married name. Knowing the relative's
// gender also lets gender-neutral terms for them be refined.
func (n *Normalizer) applySpousePatterns(w *workingSet) {
	for _, m := range spousePattern.FindAllStringSubmatch(w.text, -1) {
		outerFirst, innerFirst, surname := m[1], m[2], m[3]

		outer := outerFirst + " " + surname
		if existing, ok := w.findPerson(outerFirst, surname); ok {
			if lastField(existing) == "" {
				w.renamePerson(existing, outer)
			} else {
				outer = existing
			}
		}
		inner := innerFirst + " " + surname

		innerTerm := "wife"
		innerGender, outerGender := facts.GenderFemale, facts.GenderMale
		if w.gender(outer) == facts.GenderFemale {
			innerTerm = "husband"
			innerGender, outerGender = facts.GenderMale, facts.GenderFemale
		}

		basis := "parenthetical spouse listing " + strconv.Quote(m[0])
		w.setGender(inner, innerGender, n.cfg.SpouseGender, basis)
		w.setGender(outer, outerGender, n.cfg.SpouseGender, basis)
		w.add(facts.Fact{
			Type:           facts.TypeRelationship,
			PersonName:     inner,
			Relationship:   innerTerm,
			RelatedName:    outer,
			Role:           facts.RoleOther,
			Confidence:     n.cfg.SpouseRelationship,
			Inferred:       true,
			InferenceBasis: basis,
		})

		resolved := w.gender(outer)
		for i := range w.items {
			if w.items[i].Type == facts.TypeRelationship && samePerson(w.items[i].PersonName, outer) {
				w.items[i].Relationship = facts.GenderedTerm(w.items[i].Relationship, resolved)
			}
		}
	}
	w.rebuildKeys()
}

// maidenPattern captures "Mary (nee Johnson)" and the née spelling.
var maidenPattern = regexp.MustCompile(`((?:[A-Z][a-z]+\s+)*[A-Z][a-z]+)\s+\(\s*[Nn][ée]e\s+([A-Z][a-z]+)\s*\)`)

// deriveMaidenNames records maiden name facts from née mentions in the
// text and infers maiden names for daughters and sisters whose
// recorded surname differs from the subject's. A bare first name with a
// née mention is upgraded to the married name when the spouse's surname
// is known.
func (n *Normalizer) deriveMaidenNames(w *workingSet) {
	for _, m := range maidenPattern.FindAllStringSubmatch(w.text, -1) {
		mention, maiden := strings.TrimSpace(m[1]), m[2]
		person, ok := w.resolveMention(mention)
		if !ok {
			continue
		}
		if person != "" && lastField(person) == "" {
			if surname := w.marriedSurname(person); surname != "" {
				renamed := person + " " + surname
				w.renamePerson(person, renamed)
				person = renamed
			}
		}
		if !w.hasFactOfType(person, facts.TypeMaidenName) {
			w.add(facts.Fact{
				Type:           facts.TypeMaidenName,
				PersonName:     person,
				Value:          maiden,
				Confidence:     n.cfg.MarriedName,
				Inferred:       true,
				InferenceBasis: "nee mention " + strconv.Quote(m[0]),
			})
		}
	}

	subjectSurname := lastField(w.subject)
	if subjectSurname == "" {
		return
	}
	for _, person := range w.persons() {
		term, ok := w.relationToSubject(person)
		if !ok {
			continue
		}
		if t := facts.NormalizeTerm(term); t != "daughter" && t != "sister" {
			continue
		}
		personSurname := lastField(person)
		if personSurname == "" || strings.EqualFold(personSurname, subjectSurname) {
			continue
		}
		if w.hasFactOfType(person, facts.TypeMaidenName) {
			continue
		}
		w.add(facts.Fact{
			Type:           facts.TypeMaidenName,
			PersonName:     person,
			Value:          subjectSurname,
			Confidence:     n.cfg.InferredMaiden,
			Inferred:       true,
			InferenceBasis: "surname differs from the subject's for a " + facts.NormalizeTerm(term),
		})
	}
}

// marriedSurname returns the surname a person takes from their
// recorded spouse, empty when no spouse with a surname is known.
func (w *workingSet) marriedSurname(person string) string {
	for _, f := range w.items {
		if f.Type != facts.TypeRelationship || !samePerson(f.PersonName, person) {
			continue
		}
		switch f.Relationship {
		case "husband", "wife", "spouse":
			if f.RelatedName == "" {
				return lastField(w.subject)
			}
			return lastField(f.RelatedName)
		}
	}
	return ""
}
