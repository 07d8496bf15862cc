package match_test

import (
	"testing"

	"lineage/internal/config"
	"lineage/internal/match"
)

func newMatcher() *match.Matcher {
	cfg := config.Default()
	return match.New(cfg.Matching)
}

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  John   Smith ", "john smith"},
		{"John Smith Jr", "john smith"},
		{"John Smith III", "john smith"},
		{"José García", "jose garcia"},
		{"Mary O'Brien-Kelly", "mary obrienkelly"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := match.NormalizeName(tc.in); got != tc.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSplitName(t *testing.T) {
	first, surname := match.SplitName("Rose Mary Paradowski")
	if first != "rose" || surname != "paradowski" {
		t.Fatalf("unexpected split: %q %q", first, surname)
	}

	first, surname = match.SplitName("Cher")
	if first != "cher" || surname != "" {
		t.Fatalf("unexpected single-token split: %q %q", first, surname)
	}
}

func TestScoreNamesBounds(t *testing.T) {
	m := newMatcher()
	cases := [][2]string{
		{"John Smith", "John Smith"},
		{"John Smith", "Jane Doe"},
		{"Rose Mary Paradowski", "Rosemary Paradowski"},
		{"A", "Completely Different Name"},
		{"", "John Smith"},
	}
	for _, tc := range cases {
		score := m.ScoreNames(tc[0], tc[1])
		if score < 0 || score > 1 {
			t.Errorf("ScoreNames(%q, %q) = %v, out of [0,1]", tc[0], tc[1], score)
		}
	}
}

func TestScoreNamesIdentical(t *testing.T) {
	m := newMatcher()
	score := m.ScoreNames("John Smith", "John Smith")
	if !m.IsExact(score) {
		t.Fatalf("expected exact score for identical names, got %v", score)
	}
}

func TestScoreNamesSpellingVariant(t *testing.T) {
	m := newMatcher()
	score := m.ScoreNames("Rose Mary Paradowski", "Rosemary Paradowski")
	if score < 0.85 {
		t.Fatalf("expected confident score for spelling variant, got %v", score)
	}
	if m.BandFor(score) != match.BandConfident {
		t.Fatalf("expected confident band, got %s", m.BandFor(score))
	}
}

func TestScoreNamesUnrelated(t *testing.T) {
	m := newMatcher()
	score := m.ScoreNames("John Smith", "Wilhelmina Von Hausen")
	if m.BandFor(score) != match.BandReject {
		t.Fatalf("expected reject band for unrelated names, got %v (%s)", score, m.BandFor(score))
	}
}

func TestScoreNamesSuffixIgnored(t *testing.T) {
	m := newMatcher()
	with := m.ScoreNames("John Smith Jr", "John Smith")
	without := m.ScoreNames("John Smith", "John Smith")
	if with != without {
		t.Fatalf("expected suffix not to change score: %v vs %v", with, without)
	}
}

func TestScorePersonMaidenName(t *testing.T) {
	m := newMatcher()
	// Married name on record, obituary uses the maiden name.
	direct := m.ScoreNames("Mary Johnson", "Mary Williams")
	result := m.ScorePerson(match.Query{Name: "Mary Johnson"}, "Mary Williams", "Johnson")
	if result.Value <= direct {
		t.Fatalf("expected maiden alternative to win: %v vs direct %v", result.Value, direct)
	}
	if !result.MatchedMaidenName {
		t.Fatal("expected matched_maiden_name flag")
	}

	// Maiden surname should not be flagged when the direct score wins.
	result = m.ScorePerson(match.Query{Name: "Mary Williams"}, "Mary Williams", "Johnson")
	if result.MatchedMaidenName {
		t.Fatal("unexpected maiden flag for direct match")
	}
}

func TestScorePersonQueryMaidenName(t *testing.T) {
	m := newMatcher()
	// Obituary gives the married name plus a maiden name; the record is
	// filed under the birth name.
	direct := m.ScoreNames("Helen Kowalski", "Helen Nowak")
	result := m.ScorePerson(match.Query{Name: "Helen Kowalski", MaidenName: "Nowak"}, "Helen Nowak", "")
	if result.Value <= direct {
		t.Fatalf("expected query maiden alternative to win: %v vs direct %v", result.Value, direct)
	}
	if !result.MatchedMaidenName {
		t.Fatal("expected matched_maiden_name flag")
	}
	if m.BandFor(result.Value) != match.BandConfident {
		t.Fatalf("expected confident band, got %s (%v)", m.BandFor(result.Value), result.Value)
	}

	// Both sides maiden: record filed under married name with a maiden
	// attribute, obituary under a different married name.
	result = m.ScorePerson(match.Query{Name: "Helen Kowalski", MaidenName: "Nowak"}, "Helen Jablonski", "Nowak")
	if !result.MatchedMaidenName {
		t.Fatal("expected maiden flag for maiden-to-maiden match")
	}
	if m.BandFor(result.Value) != match.BandConfident {
		t.Fatalf("expected confident band for maiden-to-maiden, got %s (%v)", m.BandFor(result.Value), result.Value)
	}
}

func TestBandThresholds(t *testing.T) {
	m := newMatcher()
	cases := []struct {
		score float64
		want  match.Band
	}{
		{0.85, match.BandConfident},
		{0.90, match.BandConfident},
		{0.60, match.BandReview},
		{0.40, match.BandReview},
		{0.39, match.BandReject},
	}
	for _, tc := range cases {
		if got := m.BandFor(tc.score); got != tc.want {
			t.Errorf("BandFor(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
