package normalize

import (
	"strings"

	"lineage/internal/facts"
)

// workingSet is the mutable fact collection the passes operate on. The
// empty person name refers to the obituary subject throughout.
type workingSet struct {
	subject string
	text    string
	items   []facts.Fact
	keys    map[string]struct{}
}

func newWorkingSet(subjectName, obituaryText string, input []facts.Fact) *workingSet {
	w := &workingSet{
		subject: strings.TrimSpace(subjectName),
		text:    obituaryText,
		keys:    make(map[string]struct{}),
	}
	for _, f := range input {
		f.PersonName = strings.TrimSpace(f.PersonName)
		f.RelatedName = strings.TrimSpace(f.RelatedName)
		f.Value = strings.TrimSpace(f.Value)
		if f.Type == facts.TypeRelationship {
			f.Relationship = facts.NormalizeTerm(f.Relationship)
			if f.Relationship == "" {
				continue
			}
			if samePerson(f.PersonName, f.RelatedName) {
				continue
			}
			// extraction sometimes names the subject explicitly
			if samePerson(f.PersonName, w.subject) {
				f.PersonName = ""
			}
			if samePerson(f.RelatedName, w.subject) {
				f.RelatedName = ""
			}
		} else if samePerson(f.PersonName, w.subject) {
			f.PersonName = ""
		}
		w.add(f)
	}
	return w
}

// add appends a fact unless an equivalent one is already present.
func (w *workingSet) add(f facts.Fact) bool {
	key := f.Key()
	if _, exists := w.keys[key]; exists {
		return false
	}
	w.keys[key] = struct{}{}
	w.items = append(w.items, f)
	return true
}

// rebuildKeys re-derives the dedup index after in-place mutation,
// dropping any facts that became duplicates. Earlier facts win.
func (w *workingSet) rebuildKeys() {
	keys := make(map[string]struct{}, len(w.items))
	kept := w.items[:0]
	for _, f := range w.items {
		key := f.Key()
		if _, exists := keys[key]; exists {
			continue
		}
		keys[key] = struct{}{}
		kept = append(kept, f)
	}
	w.items = kept
	w.keys = keys
}

func samePerson(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// gender reports the recorded gender of a person, unknown when no
// gender fact exists for them.
func (w *workingSet) gender(person string) facts.Gender {
	for _, f := range w.items {
		if f.Type == facts.TypeGender && samePerson(f.PersonName, person) {
			return facts.ParseGender(f.Value)
		}
	}
	return facts.GenderUnknown
}

// setGender records an inferred gender fact unless one already exists
// for the person. Reports whether a fact was added.
func (w *workingSet) setGender(person string, g facts.Gender, confidence float64, basis string) bool {
	if g == facts.GenderUnknown {
		return false
	}
	for _, f := range w.items {
		if f.Type == facts.TypeGender && samePerson(f.PersonName, person) {
			return false
		}
	}
	return w.add(facts.Fact{
		Type:           facts.TypeGender,
		PersonName:     strings.TrimSpace(person),
		Value:          string(g),
		Confidence:     confidence,
		Inferred:       true,
		InferenceBasis: basis,
	})
}

// hasRelationBetween reports whether any relationship fact describes
// person a relative to person b.
func (w *workingSet) hasRelationBetween(a, b string) bool {
	for _, f := range w.items {
		if f.Type == facts.TypeRelationship && samePerson(f.PersonName, a) && samePerson(f.RelatedName, b) {
			return true
		}
	}
	return false
}

// relationToSubject returns the first relationship term recorded for a
// person relative to the subject.
func (w *workingSet) relationToSubject(person string) (string, bool) {
	for _, f := range w.items {
		if f.Type == facts.TypeRelationship && samePerson(f.PersonName, person) && f.RelatedName == "" {
			return f.Relationship, true
		}
	}
	return "", false
}

func (w *workingSet) hasFactOfType(person string, t facts.Type) bool {
	for _, f := range w.items {
		if f.Type == t && samePerson(f.PersonName, person) {
			return true
		}
	}
	return false
}

// persons returns the distinct non-subject person names, in first
// appearance order.
func (w *workingSet) persons() []string {
	seen := make(map[string]struct{})
	var names []string
	record := func(name string) {
		if name == "" {
			return
		}
		lowered := strings.ToLower(name)
		if _, ok := seen[lowered]; ok {
			return
		}
		seen[lowered] = struct{}{}
		names = append(names, name)
	}
	for _, f := range w.items {
		record(f.PersonName)
		if f.Type == facts.TypeRelationship {
			record(f.RelatedName)
		}
	}
	return names
}

// findPerson locates a known person by first name, preferring an exact
// first+surname match. The bool is false when no person or more than
// one bare-first-name person matches.
func (w *workingSet) findPerson(first, surname string) (string, bool) {
	full := strings.TrimSpace(first + " " + surname)
	var byFirst []string
	for _, name := range w.persons() {
		if samePerson(name, full) {
			return name, true
		}
		if strings.EqualFold(firstField(name), first) {
			byFirst = append(byFirst, name)
		}
	}
	if len(byFirst) == 1 {
		return byFirst[0], true
	}
	return "", false
}

// resolveMention maps a name from the obituary text onto a known
// person. The empty string identifies the subject.
func (w *workingSet) resolveMention(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	if samePerson(name, w.subject) || strings.EqualFold(name, firstField(w.subject)) {
		return "", true
	}
	var byFirst []string
	for _, person := range w.persons() {
		if samePerson(person, name) {
			return person, true
		}
		if strings.EqualFold(firstField(person), firstField(name)) {
			byFirst = append(byFirst, person)
		}
	}
	if len(byFirst) == 1 {
		return byFirst[0], true
	}
	return "", false
}

// renamePerson rewrites every reference to a person under a new name.
func (w *workingSet) renamePerson(from, to string) {
	if from == "" || samePerson(from, to) {
		return
	}
	for i := range w.items {
		if samePerson(w.items[i].PersonName, from) {
			w.items[i].PersonName = to
		}
		if w.items[i].Type == facts.TypeRelationship && samePerson(w.items[i].RelatedName, from) {
			w.items[i].RelatedName = to
		}
	}
	w.rebuildKeys()
}

// stampRoles assigns every fact's role from the relationship facts
// currently in the set.
func (w *workingSet) stampRoles() {
	for i := range w.items {
		f := w.items[i]
		switch {
		case f.Type == facts.TypeRelationship && f.DescribesSubject():
			w.items[i].Role = facts.RoleSubject
		case f.Type == facts.TypeRelationship && f.RelatedName == "":
			w.items[i].Role = facts.RoleFor(f.Relationship)
		case f.Type == facts.TypeRelationship:
			w.items[i].Role = facts.RoleOther
		case f.DescribesSubject():
			w.items[i].Role = facts.RoleSubject
		default:
			if term, ok := w.relationToSubject(f.PersonName); ok {
				w.items[i].Role = facts.RoleFor(term)
			} else {
				w.items[i].Role = facts.RoleOther
			}
		}
	}
}

func firstField(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func lastField(name string) string {
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return ""
	}
	return fields[len(fields)-1]
}
