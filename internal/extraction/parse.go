package extraction

import (
	"strings"

	"lineage/internal/facts"
)

// identityResult is the JSON shape of the identity pass.
type identityResult struct {
	Subject struct {
		FullName   string `json:"full_name"`
		Gender     string `json:"gender"`
		DeathDate  string `json:"death_date"`
		BirthDate  string `json:"birth_date"`
		MaidenName string `json:"maiden_name"`
		Location   string `json:"location"`
	} `json:"subject"`
	OtherPersons []struct {
		FullName string `json:"full_name"`
	} `json:"other_persons"`
}

func (r *identityResult) personNames() []string {
	names := make([]string, 0, len(r.OtherPersons)+1)
	if name := strings.TrimSpace(r.Subject.FullName); name != "" {
		names = append(names, name)
	}
	for _, p := range r.OtherPersons {
		if name := strings.TrimSpace(p.FullName); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// rawRelationship reads "person_b is relationship_type of person_a".
type rawRelationship struct {
	PersonA string `json:"person_a"`
	PersonB string `json:"person_b"`
	Type    string `json:"relationship_type"`
	Context string `json:"source_context,omitempty"`
}

// relationshipResult is the JSON shape of the relationship pass.
type relationshipResult struct {
	Relationships []rawRelationship `json:"relationships"`
	GenderFacts   []struct {
		Person string `json:"person"`
		Gender string `json:"gender"`
	} `json:"gender_facts"`
}

// inferenceResult is the JSON shape of the inference pass.
type inferenceResult struct {
	InferredRelationships []struct {
		PersonA    string  `json:"person_a"`
		PersonB    string  `json:"person_b"`
		Type       string  `json:"relationship_type"`
		Confidence float64 `json:"confidence_score"`
		Basis      string  `json:"inference_basis"`
	} `json:"inferred_relationships"`
	InferredFacts []struct {
		Person string `json:"person"`
		Type   string `json:"fact_type"`
		Value  string `json:"fact_value"`
		Basis  string `json:"inference_basis"`
	} `json:"inferred_facts"`
}

// assemble folds the three pass results into a deduplicated fact set.
func assemble(subjectName string, identity *identityResult, relationships *relationshipResult, inferred *inferenceResult) []facts.Fact {
	b := builder{subject: subjectName, seen: make(map[string]struct{})}

	subject := identity.Subject
	b.add(facts.Fact{Type: facts.TypeDeathDate, Value: subject.DeathDate, Confidence: identityConfidence})
	b.add(facts.Fact{Type: facts.TypeBirthDate, Value: subject.BirthDate, Confidence: identityConfidence})
	b.add(facts.Fact{Type: facts.TypeMaidenName, Value: subject.MaidenName, Confidence: identityConfidence})
	b.add(facts.Fact{Type: facts.TypeLocation, Value: subject.Location, Confidence: identityConfidence})
	if gender := facts.ParseGender(subject.Gender); gender != facts.GenderUnknown {
		b.add(facts.Fact{Type: facts.TypeGender, Value: string(gender), Confidence: identityConfidence})
	}

	for _, rel := range relationships.Relationships {
		b.add(facts.Fact{
			Type:         facts.TypeRelationship,
			PersonName:   rel.PersonB,
			Relationship: facts.NormalizeTerm(rel.Type),
			RelatedName:  rel.PersonA,
			Confidence:   explicitConfidence,
		})
	}
	for _, g := range relationships.GenderFacts {
		if gender := facts.ParseGender(g.Gender); gender != facts.GenderUnknown {
			b.add(facts.Fact{
				Type:       facts.TypeGender,
				PersonName: g.Person,
				Value:      string(gender),
				Confidence: genderConfidence,
			})
		}
	}

	for _, rel := range inferred.InferredRelationships {
		confidence := rel.Confidence
		if confidence <= 0 || confidence > explicitConfidence {
			confidence = inferredConfidence
		}
		b.add(facts.Fact{
			Type:           facts.TypeRelationship,
			PersonName:     rel.PersonB,
			Relationship:   facts.NormalizeTerm(rel.Type),
			RelatedName:    rel.PersonA,
			Confidence:     confidence,
			Inferred:       true,
			InferenceBasis: inferenceBasisOr(rel.Basis),
		})
	}
	for _, f := range inferred.InferredFacts {
		factType, ok := facts.ParseType(f.Type)
		if !ok {
			continue
		}
		b.add(facts.Fact{
			Type:           factType,
			PersonName:     f.Person,
			Value:          f.Value,
			Confidence:     inferredConfidence,
			Inferred:       true,
			InferenceBasis: inferenceBasisOr(f.Basis),
		})
	}

	return b.out
}

// builder accumulates facts, folding subject names to the empty person
// name and dropping duplicates and empty values.
type builder struct {
	subject string
	seen    map[string]struct{}
	out     []facts.Fact
}

func (b *builder) add(f facts.Fact) {
	f.PersonName = b.fold(f.PersonName)
	f.RelatedName = b.fold(f.RelatedName)
	f.Value = strings.TrimSpace(f.Value)
	f.Relationship = strings.TrimSpace(f.Relationship)

	if f.Type == facts.TypeRelationship {
		if f.Relationship == "" || (f.PersonName == "" && f.RelatedName == "") {
			return
		}
	} else if f.Value == "" {
		return
	}

	key := f.Key()
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	b.out = append(b.out, f)
}

func inferenceBasisOr(basis string) string {
	if basis = strings.TrimSpace(basis); basis != "" {
		return basis
	}
	return "inference pass"
}

func (b *builder) fold(name string) string {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, b.subject) {
		return ""
	}
	return name
}
