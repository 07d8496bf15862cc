package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"lineage/internal/facts"
)

// modifiers that may sit between "of" and the name in obituary prose,
// as in "beloved husband of his dear Mary".
const perspectiveFiller = `(?:(?:his|her|their|the|late|beloved|loving|devoted|dear|dearest)\s+)*`

// statesSubjectPerspective reports whether the obituary text phrases
// the relationship from the subject's side ("grandfather of Ryan"),
// which means the recorded term describes the subject rather than the
// named person.
func statesSubjectPerspective(text, term, personName string) bool {
	if strings.TrimSpace(text) == "" || !facts.IsSubjectPerspective(term) {
		return false
	}
	first := firstField(personName)
	if first == "" {
		return false
	}
	termPattern := strings.ReplaceAll(regexp.QuoteMeta(facts.NormalizeTerm(term)), "_", `[\s-]`)
	pattern := fmt.Sprintf(`(?i)\b%s\s+of\s+%s%s\b`, termPattern, perspectiveFiller, regexp.QuoteMeta(first))
	matched, err := regexp.MatchString(pattern, text)
	return err == nil && matched
}

// correctDirection re-keys relationship facts so each one describes the
// related person. Two forms are handled: facts recorded against the
// subject with the other person in related_name, and facts recorded
// against the person but carrying the subject's own term, detected from
// the obituary text. The replaced term also genders whichever side it
// describes.
func (n *Normalizer) correctDirection(w *workingSet) {
	count := len(w.items)
	for i := 0; i < count; i++ {
		f := w.items[i]
		if f.Type != facts.TypeRelationship {
			continue
		}
		switch {
		case f.DescribesSubject() && f.RelatedName != "":
			person := f.RelatedName
			if w.hasRelationBetween(person, "") {
				// the person's own fact exists; this is its reciprocal
				continue
			}
			flipped, ok := facts.Reciprocal(f.Relationship, w.gender(person))
			if !ok {
				continue
			}
			if g, ok := facts.GenderFor(f.Relationship); ok {
				w.setGender("", g, n.cfg.GenderInference, genderBasis(f.Relationship))
			}
			w.items[i].PersonName = person
			w.items[i].RelatedName = ""
			w.items[i].Relationship = flipped
			w.items[i].Role = facts.RoleFor(flipped)
			if g, ok := facts.GenderFor(flipped); ok {
				w.setGender(person, g, n.cfg.GenderInference, genderBasis(flipped))
			}
		case !f.DescribesSubject() && f.RelatedName == "" && statesSubjectPerspective(w.text, f.Relationship, f.PersonName):
			flipped, ok := facts.Reciprocal(f.Relationship, w.gender(f.PersonName))
			if !ok {
				continue
			}
			if g, ok := facts.GenderFor(f.Relationship); ok {
				w.setGender("", g, n.cfg.GenderInference, genderBasis(f.Relationship))
			}
			w.items[i].Relationship = flipped
			w.items[i].Role = facts.RoleFor(flipped)
			if g, ok := facts.GenderFor(flipped); ok {
				w.setGender(f.PersonName, g, n.cfg.GenderInference, genderBasis(flipped))
			}
		}
	}
	w.rebuildKeys()
}
