package facts_test

import (
	"testing"

	"lineage/internal/facts"
)

func TestNormalizeTerm(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Brother-in-law", "brother_in_law"},
		{"brother in law", "brother_in_law"},
		{"  Wife ", "wife"},
		{"GRANDfather", "grandfather"},
	}
	for _, tc := range cases {
		if got := facts.NormalizeTerm(tc.in); got != tc.want {
			t.Errorf("NormalizeTerm(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGenderFor(t *testing.T) {
	cases := []struct {
		term string
		want facts.Gender
		ok   bool
	}{
		{"husband", facts.GenderMale, true},
		{"wife", facts.GenderFemale, true},
		{"son-in-law", facts.GenderMale, true},
		{"granddaughter", facts.GenderFemale, true},
		{"cousin", facts.GenderUnknown, false},
	}
	for _, tc := range cases {
		got, ok := facts.GenderFor(tc.term)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("GenderFor(%q) = %v, %v; want %v, %v", tc.term, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRoleFor(t *testing.T) {
	cases := []struct {
		term string
		want facts.Role
	}{
		{"husband", facts.RoleSpouse},
		{"wife", facts.RoleSpouse},
		{"mother", facts.RoleParent},
		{"daughter", facts.RoleChild},
		{"sister", facts.RoleSibling},
		{"grandfather", facts.RoleGrandparent},
		{"granddaughter", facts.RoleGrandchild},
		{"great-grandson", facts.RoleGrandchild},
		{"great_grandmother", facts.RoleGrandparent},
		{"mother-in-law", facts.RoleInLaw},
		{"cousin", facts.RoleOther},
		{"friend", facts.RoleOther},
	}
	for _, tc := range cases {
		if got := facts.RoleFor(tc.term); got != tc.want {
			t.Errorf("RoleFor(%q) = %s, want %s", tc.term, got, tc.want)
		}
	}
}

func TestReciprocal(t *testing.T) {
	cases := []struct {
		term    string
		counter facts.Gender
		want    string
	}{
		{"husband", facts.GenderFemale, "wife"},
		{"wife", facts.GenderMale, "husband"},
		{"father", facts.GenderMale, "son"},
		{"father", facts.GenderFemale, "daughter"},
		{"father", facts.GenderUnknown, "child"},
		{"son", facts.GenderFemale, "mother"},
		{"grandfather", facts.GenderMale, "grandson"},
		{"grandfather", facts.GenderUnknown, "grandchild"},
		{"grandson", facts.GenderFemale, "grandmother"},
		{"uncle", facts.GenderFemale, "niece"},
		{"mother_in_law", facts.GenderMale, "son_in_law"},
		{"sister-in-law", facts.GenderFemale, "sister_in_law"},
	}
	for _, tc := range cases {
		got, ok := facts.Reciprocal(tc.term, tc.counter)
		if !ok {
			t.Errorf("Reciprocal(%q, %s): no reciprocal", tc.term, tc.counter)
			continue
		}
		if got != tc.want {
			t.Errorf("Reciprocal(%q, %s) = %q, want %q", tc.term, tc.counter, got, tc.want)
		}
	}

	if _, ok := facts.Reciprocal("friend", facts.GenderUnknown); ok {
		t.Error("expected no reciprocal for unknown term")
	}
}

func TestParseStatusLikeEnums(t *testing.T) {
	if typ, ok := facts.ParseType(" Death_Date "); !ok || typ != facts.TypeDeathDate {
		t.Fatalf("ParseType: %v %v", typ, ok)
	}
	if _, ok := facts.ParseType("shoe_size"); ok {
		t.Fatal("expected unknown type to fail")
	}
	if role, ok := facts.ParseRole("SPOUSE"); !ok || role != facts.RoleSpouse {
		t.Fatalf("ParseRole: %v %v", role, ok)
	}
	if g := facts.ParseGender("F"); g != facts.GenderFemale {
		t.Fatalf("ParseGender: %v", g)
	}
	if g := facts.ParseGender("nonbinary"); g != facts.GenderUnknown {
		t.Fatalf("ParseGender fallback: %v", g)
	}
}

func TestGenderGrampsCode(t *testing.T) {
	if facts.GenderMale.GrampsCode() != 1 || facts.GenderFemale.GrampsCode() != 0 || facts.GenderUnknown.GrampsCode() != 2 {
		t.Fatal("unexpected gramps gender codes")
	}
}
