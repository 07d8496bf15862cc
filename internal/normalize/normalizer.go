package normalize

import (
	"log/slog"
	"strconv"

	"lineage/internal/config"
	"lineage/internal/facts"
	"lineage/internal/logging"
)

// Normalizer applies the relationship normalization passes to an
// obituary's fact set.
type Normalizer struct {
	cfg    config.Normalize
	logger *slog.Logger
}

// New builds a Normalizer with the given confidence configuration.
func New(cfg config.Normalize, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Normalizer{cfg: cfg, logger: logger}
}

// Run applies the passes in order and returns the normalized fact set.
// The subject name anchors relationship direction and surname
// inference; the obituary text backs the pattern passes. All returned
// facts carry the normalized flag.
func (n *Normalizer) Run(subjectName, obituaryText string, input []facts.Fact) []facts.Fact {
	w := newWorkingSet(subjectName, obituaryText, input)

	passes := []struct {
		name string
		fn   func(*workingSet)
	}{
		{"identity", n.ensureIdentity},
		{"gender", n.inferGenders},
		{"direction", n.correctDirection},
		{"spouse_pattern", n.applySpousePatterns},
		{"maiden_name", n.deriveMaidenNames},
		{"sibling_in_law", n.deriveSiblingInLaws},
		{"reciprocal", n.addReciprocals},
	}
	for _, pass := range passes {
		before := len(w.items)
		pass.fn(w)
		n.logger.Debug("normalization pass complete",
			logging.String("pass", pass.name),
			logging.Int("facts", len(w.items)),
			logging.Int("added", len(w.items)-before))
	}

	w.stampRoles()
	for i := range w.items {
		w.items[i].Normalized = true
	}

	n.logger.Info("fact set normalized",
		logging.Int("input_facts", len(input)),
		logging.Int("output_facts", len(w.items)),
		logging.Int("persons", len(w.persons())))
	return w.items
}

// ensureIdentity stamps an initial role on every fact so later passes
// can group by person, then records an identity fact for anyone who
// appears only as the related side of a relationship. Those people are
// real individuals the resolution stage must account for.
func (n *Normalizer) ensureIdentity(w *workingSet) {
	w.stampRoles()
	for _, name := range w.persons() {
		named := false
		for _, f := range w.items {
			if samePerson(f.PersonName, name) {
				named = true
				break
			}
		}
		if named {
			continue
		}
		w.add(facts.Fact{
			Type:           facts.TypePersonName,
			PersonName:     name,
			Value:          name,
			Confidence:     n.cfg.IdentityFact,
			Inferred:       true,
			InferenceBasis: "named only as a related party",
		})
	}
	w.stampRoles()
}

// inferGenders records a gender fact for each person described by a
// gendered relationship term. Terms that state the subject's own role
// in the pair gender the subject instead; the related person is
// gendered by direction correction once the term is re-keyed.
func (n *Normalizer) inferGenders(w *workingSet) {
	count := len(w.items)
	for i := 0; i < count; i++ {
		f := w.items[i]
		if f.Type != facts.TypeRelationship {
			continue
		}
		g, ok := facts.GenderFor(f.Relationship)
		if !ok {
			continue
		}
		switch {
		case f.DescribesSubject():
			w.setGender("", g, n.cfg.GenderInference, genderBasis(f.Relationship))
		case f.RelatedName == "" && statesSubjectPerspective(w.text, f.Relationship, f.PersonName):
			w.setGender("", g, n.cfg.GenderInference, genderBasis(f.Relationship))
		default:
			w.setGender(f.PersonName, g, n.cfg.GenderInference, genderBasis(f.Relationship))
		}
	}
}

func genderBasis(term string) string {
	return "gendered relationship term " + strconv.Quote(term)
}
