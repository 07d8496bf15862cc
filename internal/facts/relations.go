package facts

import "strings"

// NormalizeTerm canonicalizes a relationship term: lowercased with
// hyphens and spaces collapsed to underscores ("brother-in-law" and
// "Brother in law" both become "brother_in_law").
func NormalizeTerm(term string) string {
	normalized := strings.ToLower(strings.TrimSpace(term))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	for strings.Contains(normalized, "__") {
		normalized = strings.ReplaceAll(normalized, "__", "_")
	}
	return normalized
}

var relationshipGender = map[string]Gender{
	"husband":         GenderMale,
	"father":          GenderMale,
	"son":             GenderMale,
	"brother":         GenderMale,
	"grandfather":     GenderMale,
	"grandson":        GenderMale,
	"uncle":           GenderMale,
	"nephew":          GenderMale,
	"son_in_law":      GenderMale,
	"father_in_law":   GenderMale,
	"brother_in_law":  GenderMale,
	"wife":            GenderFemale,
	"mother":          GenderFemale,
	"daughter":        GenderFemale,
	"sister":          GenderFemale,
	"grandmother":     GenderFemale,
	"granddaughter":   GenderFemale,
	"aunt":            GenderFemale,
	"niece":           GenderFemale,
	"daughter_in_law": GenderFemale,
	"mother_in_law":   GenderFemale,
	"sister_in_law":   GenderFemale,
}

// GenderFor reports the gender implied by a relationship term, if any.
func GenderFor(term string) (Gender, bool) {
	g, ok := relationshipGender[NormalizeTerm(term)]
	return g, ok
}

var roleByTerm = map[string]Role{
	"husband":         RoleSpouse,
	"wife":            RoleSpouse,
	"spouse":          RoleSpouse,
	"father":          RoleParent,
	"mother":          RoleParent,
	"parent":          RoleParent,
	"son":             RoleChild,
	"daughter":        RoleChild,
	"child":           RoleChild,
	"brother":         RoleSibling,
	"sister":          RoleSibling,
	"sibling":         RoleSibling,
	"grandfather":     RoleGrandparent,
	"grandmother":     RoleGrandparent,
	"grandparent":     RoleGrandparent,
	"grandson":        RoleGrandchild,
	"granddaughter":   RoleGrandchild,
	"grandchild":      RoleGrandchild,
	"son_in_law":      RoleInLaw,
	"daughter_in_law": RoleInLaw,
	"father_in_law":   RoleInLaw,
	"mother_in_law":   RoleInLaw,
	"brother_in_law":  RoleInLaw,
	"sister_in_law":   RoleInLaw,
}

// RoleFor maps a relationship term onto the coarse role used for
// resolution grouping. Unknown terms map to RoleOther. Great-grand
// relations collapse onto the plain grandparent/grandchild roles.
func RoleFor(term string) Role {
	normalized := NormalizeTerm(term)
	for strings.HasPrefix(normalized, "great_") {
		normalized = strings.TrimPrefix(normalized, "great_")
	}
	if strings.HasSuffix(normalized, "_in_law") {
		return RoleInLaw
	}
	if role, ok := roleByTerm[normalized]; ok {
		return role
	}
	return RoleOther
}

// pick selects a gendered relationship term for the counterpart.
func pick(g Gender, male, female, neutral string) string {
	switch g {
	case GenderMale:
		return male
	case GenderFemale:
		return female
	default:
		return neutral
	}
}

// Reciprocal returns the counterpart term for a directed relationship.
// Given "A is term of B", the result names what B is of A, gendered by
// B where the term demands it. The second return is false when the
// term has no known reciprocal.
func Reciprocal(term string, counterpartGender Gender) (string, bool) {
	switch NormalizeTerm(term) {
	case "husband":
		return "wife", true
	case "wife":
		return "husband", true
	case "spouse":
		return pick(counterpartGender, "husband", "wife", "spouse"), true
	case "father", "mother", "parent":
		return pick(counterpartGender, "son", "daughter", "child"), true
	case "son", "daughter", "child":
		return pick(counterpartGender, "father", "mother", "parent"), true
	case "brother", "sister", "sibling":
		return pick(counterpartGender, "brother", "sister", "sibling"), true
	case "grandfather", "grandmother", "grandparent":
		return pick(counterpartGender, "grandson", "granddaughter", "grandchild"), true
	case "grandson", "granddaughter", "grandchild":
		return pick(counterpartGender, "grandfather", "grandmother", "grandparent"), true
	case "great_grandfather", "great_grandmother", "great_grandparent":
		return pick(counterpartGender, "great_grandson", "great_granddaughter", "great_grandchild"), true
	case "great_grandson", "great_granddaughter", "great_grandchild":
		return pick(counterpartGender, "great_grandfather", "great_grandmother", "great_grandparent"), true
	case "uncle", "aunt":
		return pick(counterpartGender, "nephew", "niece", "nephew"), true
	case "nephew", "niece":
		return pick(counterpartGender, "uncle", "aunt", "uncle"), true
	case "father_in_law", "mother_in_law", "parent_in_law":
		return pick(counterpartGender, "son_in_law", "daughter_in_law", "child_in_law"), true
	case "son_in_law", "daughter_in_law", "child_in_law":
		return pick(counterpartGender, "father_in_law", "mother_in_law", "parent_in_law"), true
	case "brother_in_law", "sister_in_law", "sibling_in_law":
		return pick(counterpartGender, "brother_in_law", "sister_in_law", "sibling_in_law"), true
	default:
		return "", false
	}
}

// GenderedTerm refines a gender-neutral relationship term once the
// person's gender is known ("grandchild" becomes "grandson"). Terms
// that are already gendered, and unknown genders, pass through.
func GenderedTerm(term string, g Gender) string {
	if g != GenderMale && g != GenderFemale {
		return term
	}
	switch normalized := NormalizeTerm(term); normalized {
	case "spouse":
		return pick(g, "husband", "wife", normalized)
	case "parent":
		return pick(g, "father", "mother", normalized)
	case "child":
		return pick(g, "son", "daughter", normalized)
	case "sibling":
		return pick(g, "brother", "sister", normalized)
	case "grandparent":
		return pick(g, "grandfather", "grandmother", normalized)
	case "grandchild":
		return pick(g, "grandson", "granddaughter", normalized)
	case "great_grandparent":
		return pick(g, "great_grandfather", "great_grandmother", normalized)
	case "great_grandchild":
		return pick(g, "great_grandson", "great_granddaughter", normalized)
	case "sibling_in_law":
		return pick(g, "brother_in_law", "sister_in_law", normalized)
	case "child_in_law":
		return pick(g, "son_in_law", "daughter_in_law", normalized)
	case "parent_in_law":
		return pick(g, "father_in_law", "mother_in_law", normalized)
	default:
		return normalized
	}
}

// SubjectPerspective reports whether a term states the subject's own
// position ("grandfather of Ryan") rather than the related person's.
// Extraction emits both forms; direction correction re-keys these.
var subjectPerspectiveTerms = map[string]struct{}{
	"husband":           {},
	"wife":              {},
	"father":            {},
	"mother":            {},
	"grandfather":       {},
	"grandmother":       {},
	"great_grandfather": {},
	"great_grandmother": {},
	"uncle":             {},
	"aunt":              {},
	"brother":           {},
	"sister":            {},
	"father_in_law":     {},
	"mother_in_law":     {},
}

// IsSubjectPerspective reports whether the term reads as the subject's
// own role in the pair.
func IsSubjectPerspective(term string) bool {
	_, ok := subjectPerspectiveTerms[NormalizeTerm(term)]
	return ok
}
