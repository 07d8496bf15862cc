package normalize

import (
	"reflect"
	"strings"
	"testing"

	"lineage/internal/config"
	"lineage/internal/facts"
)

func newNormalizer() *Normalizer {
	cfg := config.Default()
	return New(cfg.Normalize, nil)
}

func findFact(items []facts.Fact, t facts.Type, person, relationship string) (facts.Fact, bool) {
	for _, f := range items {
		if f.Type != t || !strings.EqualFold(f.PersonName, person) {
			continue
		}
		if relationship != "" && f.Relationship != relationship {
			continue
		}
		return f, true
	}
	return facts.Fact{}, false
}

func genderOf(items []facts.Fact, person string) facts.Gender {
	if f, ok := findFact(items, facts.TypeGender, person, ""); ok {
		return facts.ParseGender(f.Value)
	}
	return facts.GenderUnknown
}

func TestHusbandWithMaidenName(t *testing.T) {
	n := newNormalizer()
	text := "John Smith, 82, of Buffalo, died Tuesday. Beloved husband of Mary (nee Johnson)."
	input := []facts.Fact{
		{Type: facts.TypeRelationship, PersonName: "Mary", Relationship: "husband", Confidence: 0.9},
	}

	out := n.Run("John Smith", text, input)

	wife, ok := findFact(out, facts.TypeRelationship, "Mary Smith", "wife")
	if !ok {
		t.Fatalf("expected Mary Smith recorded as wife, got %+v", out)
	}
	if wife.Role != facts.RoleSpouse {
		t.Errorf("wife role = %s, want %s", wife.Role, facts.RoleSpouse)
	}
	if g := genderOf(out, ""); g != facts.GenderMale {
		t.Errorf("subject gender = %s, want male", g)
	}
	if g := genderOf(out, "Mary Smith"); g != facts.GenderFemale {
		t.Errorf("Mary gender = %s, want female", g)
	}

	maiden, ok := findFact(out, facts.TypeMaidenName, "Mary Smith", "")
	if !ok {
		t.Fatal("expected a maiden name fact for Mary Smith")
	}
	if maiden.Value != "Johnson" {
		t.Errorf("maiden name = %q, want Johnson", maiden.Value)
	}

	recip, ok := findFact(out, facts.TypeRelationship, "", "husband")
	if !ok {
		t.Fatal("expected reciprocal husband fact for the subject")
	}
	if !strings.EqualFold(recip.RelatedName, "Mary Smith") {
		t.Errorf("reciprocal related name = %q", recip.RelatedName)
	}
	if recip.Role != facts.RoleSubject {
		t.Errorf("reciprocal role = %s, want %s", recip.Role, facts.RoleSubject)
	}
	want := 0.9 * config.Default().Normalize.ReciprocalScale
	if recip.Confidence != want {
		t.Errorf("reciprocal confidence = %v, want %v", recip.Confidence, want)
	}

	for _, f := range out {
		if !f.Normalized {
			t.Fatalf("fact not marked normalized: %+v", f)
		}
	}
}

func TestGrandfatherWithParentheticalSpouse(t *testing.T) {
	n := newNormalizer()
	text := "Walter Blundon passed away peacefully. Grandfather of Ryan (Amy) Blundon."
	input := []facts.Fact{
		{Type: facts.TypeRelationship, PersonName: "Ryan Blundon", Relationship: "grandfather", Confidence: 0.9},
	}

	out := n.Run("Walter Blundon", text, input)

	grandson, ok := findFact(out, facts.TypeRelationship, "Ryan Blundon", "grandson")
	if !ok {
		t.Fatalf("expected Ryan re-keyed as grandson, got %+v", out)
	}
	if grandson.Role != facts.RoleGrandchild {
		t.Errorf("grandson role = %s, want %s", grandson.Role, facts.RoleGrandchild)
	}

	wife, ok := findFact(out, facts.TypeRelationship, "Amy Blundon", "wife")
	if !ok {
		t.Fatal("expected Amy Blundon recorded as Ryan's wife")
	}
	if !strings.EqualFold(wife.RelatedName, "Ryan Blundon") {
		t.Errorf("wife related name = %q", wife.RelatedName)
	}
	if wife.Role != facts.RoleOther {
		t.Errorf("wife role = %s, want %s", wife.Role, facts.RoleOther)
	}

	if g := genderOf(out, "Ryan Blundon"); g != facts.GenderMale {
		t.Errorf("Ryan gender = %s, want male", g)
	}
	if g := genderOf(out, "Amy Blundon"); g != facts.GenderFemale {
		t.Errorf("Amy gender = %s, want female", g)
	}
	if g := genderOf(out, ""); g != facts.GenderMale {
		t.Errorf("subject gender = %s, want male", g)
	}
}

func TestSubjectSideFactReKeyed(t *testing.T) {
	n := newNormalizer()
	input := []facts.Fact{
		{Type: facts.TypeRelationship, PersonName: "", Relationship: "father", RelatedName: "Jane Doe", Confidence: 0.9},
		{Type: facts.TypeGender, PersonName: "Jane Doe", Value: "female", Confidence: 0.9},
	}

	out := n.Run("John Smith", "", input)

	daughter, ok := findFact(out, facts.TypeRelationship, "Jane Doe", "daughter")
	if !ok {
		t.Fatalf("expected Jane re-keyed as daughter, got %+v", out)
	}
	if daughter.Role != facts.RoleChild {
		t.Errorf("daughter role = %s, want %s", daughter.Role, facts.RoleChild)
	}
	if g := genderOf(out, ""); g != facts.GenderMale {
		t.Errorf("subject gender = %s, want male", g)
	}

	// Jane carries a different surname, so her maiden name is the
	// subject's surname at inferred confidence.
	maiden, ok := findFact(out, facts.TypeMaidenName, "Jane Doe", "")
	if !ok {
		t.Fatal("expected inferred maiden name for married daughter")
	}
	if maiden.Value != "Smith" {
		t.Errorf("inferred maiden = %q, want Smith", maiden.Value)
	}
	if maiden.Confidence != config.Default().Normalize.InferredMaiden {
		t.Errorf("inferred maiden confidence = %v", maiden.Confidence)
	}
}

func TestSiblingSpouseBecomesInLaw(t *testing.T) {
	n := newNormalizer()
	text := "Survived by his brother Robert (Karen) Smith."
	input := []facts.Fact{
		{Type: facts.TypeRelationship, PersonName: "Robert Smith", Relationship: "brother", Confidence: 0.9},
	}

	out := n.Run("John Smith", text, input)

	inLaw, ok := findFact(out, facts.TypeRelationship, "Karen Smith", "sister_in_law")
	if !ok {
		t.Fatalf("expected Karen recorded as sister-in-law, got %+v", out)
	}
	if inLaw.RelatedName != "" {
		t.Errorf("in-law related name = %q, want subject", inLaw.RelatedName)
	}
	if inLaw.Role != facts.RoleInLaw {
		t.Errorf("in-law role = %s, want %s", inLaw.Role, facts.RoleInLaw)
	}
	if inLaw.Confidence != config.Default().Normalize.SiblingInLaw {
		t.Errorf("in-law confidence = %v", inLaw.Confidence)
	}

	if _, ok := findFact(out, facts.TypeRelationship, "Karen Smith", "wife"); !ok {
		t.Fatal("expected Karen recorded as Robert's wife")
	}
}

func TestRelatedOnlyPersonGetsIdentityFact(t *testing.T) {
	n := newNormalizer()
	input := []facts.Fact{
		{Type: facts.TypeRelationship, PersonName: "", Relationship: "father", RelatedName: "Carol Jones", Confidence: 0.9},
	}

	out := n.Run("John Smith", "", input)

	identity, ok := findFact(out, facts.TypePersonName, "Carol Jones", "")
	if !ok {
		t.Fatalf("expected an identity fact for Carol Jones, got %+v", out)
	}
	if identity.Value != "Carol Jones" {
		t.Errorf("identity value = %q", identity.Value)
	}
	if !identity.Inferred {
		t.Error("identity fact not marked inferred")
	}
	if identity.InferenceBasis == "" {
		t.Error("identity fact has no inference basis")
	}
	if identity.Confidence != config.Default().Normalize.IdentityFact {
		t.Errorf("identity confidence = %v", identity.Confidence)
	}

	// A person already carrying facts of their own needs no identity fact.
	out = n.Run("John Smith", "", []facts.Fact{
		{Type: facts.TypeRelationship, PersonName: "Jane Doe", Relationship: "daughter", Confidence: 0.9},
	})
	if _, ok := findFact(out, facts.TypePersonName, "Jane Doe", ""); ok {
		t.Error("unexpected identity fact for a person named on their own facts")
	}
}

func TestDerivedFactsCarryInferenceBasis(t *testing.T) {
	n := newNormalizer()
	text := "John Smith, 82, died Tuesday. Beloved husband of Mary (nee Johnson)."
	input := []facts.Fact{
		{Type: facts.TypeRelationship, PersonName: "Mary", Relationship: "husband", Confidence: 0.9},
	}

	out := n.Run("John Smith", text, input)

	// The extracted relationship keeps its provenance even after re-keying.
	wife, ok := findFact(out, facts.TypeRelationship, "Mary Smith", "wife")
	if !ok {
		t.Fatalf("expected wife fact, got %+v", out)
	}
	if wife.Inferred {
		t.Error("extracted relationship marked inferred")
	}

	for _, tc := range []struct {
		factType facts.Type
		person   string
	}{
		{facts.TypeGender, ""},
		{facts.TypeGender, "Mary Smith"},
		{facts.TypeMaidenName, "Mary Smith"},
	} {
		f, ok := findFact(out, tc.factType, tc.person, "")
		if !ok {
			t.Fatalf("missing %s fact for %q", tc.factType, tc.person)
		}
		if !f.Inferred {
			t.Errorf("%s fact for %q not marked inferred", tc.factType, tc.person)
		}
		if f.InferenceBasis == "" {
			t.Errorf("%s fact for %q has no inference basis", tc.factType, tc.person)
		}
	}

	recip, ok := findFact(out, facts.TypeRelationship, "", "husband")
	if !ok {
		t.Fatal("expected reciprocal husband fact")
	}
	if !recip.Inferred || recip.InferenceBasis == "" {
		t.Errorf("reciprocal fact missing audit trail: %+v", recip)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	n := newNormalizer()
	cases := []struct {
		name    string
		subject string
		text    string
		input   []facts.Fact
	}{
		{
			name:    "husband with maiden name",
			subject: "John Smith",
			text:    "Beloved husband of Mary (nee Johnson).",
			input: []facts.Fact{
				{Type: facts.TypeRelationship, PersonName: "Mary", Relationship: "husband", Confidence: 0.9},
			},
		},
		{
			name:    "grandfather with parenthetical spouse",
			subject: "Walter Blundon",
			text:    "Grandfather of Ryan (Amy) Blundon.",
			input: []facts.Fact{
				{Type: facts.TypeRelationship, PersonName: "Ryan Blundon", Relationship: "grandfather", Confidence: 0.9},
			},
		},
		{
			name:    "sibling spouse",
			subject: "John Smith",
			text:    "Survived by his brother Robert (Karen) Smith.",
			input: []facts.Fact{
				{Type: facts.TypeRelationship, PersonName: "Robert Smith", Relationship: "brother", Confidence: 0.9},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			first := n.Run(tc.subject, tc.text, tc.input)
			second := n.Run(tc.subject, tc.text, first)
			if !reflect.DeepEqual(first, second) {
				t.Fatalf("second run changed the fact set:\nfirst:  %+v\nsecond: %+v", first, second)
			}
		})
	}
}

func TestStatesSubjectPerspective(t *testing.T) {
	cases := []struct {
		text   string
		term   string
		person string
		want   bool
	}{
		{"Beloved husband of Mary", "husband", "Mary", true},
		{"Beloved husband of his dear Mary", "husband", "Mary", true},
		{"Grandfather of Ryan (Amy) Blundon", "grandfather", "Ryan Blundon", true},
		{"her husband John survives", "husband", "John", false},
		{"Beloved husband of Mary", "wife", "Mary", false},
		{"Beloved husband of Mary", "husband", "Jane", false},
		{"", "husband", "Mary", false},
	}
	for _, tc := range cases {
		if got := statesSubjectPerspective(tc.text, tc.term, tc.person); got != tc.want {
			t.Errorf("statesSubjectPerspective(%q, %q, %q) = %v, want %v", tc.text, tc.term, tc.person, got, tc.want)
		}
	}
}
