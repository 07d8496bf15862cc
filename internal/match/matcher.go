package match

import (
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"lineage/internal/config"
)

// Band partitions a score into the three resolution outcomes.
type Band string

const (
	BandConfident Band = "confident"
	BandReview    Band = "review"
	BandReject    Band = "reject"
)

// Score is the outcome of comparing a query name against one candidate.
type Score struct {
	Value             float64
	MatchedMaidenName bool
}

// Query is the obituary side of a comparison. MaidenName, when known,
// lets a married name line up with a record filed under the birth name.
type Query struct {
	Name       string
	MaidenName string
}

// Matcher scores obituary names against external person records using
// weighted fuzzy string ratios.
type Matcher struct {
	cfg config.Matching
}

// New constructs a Matcher from matching configuration.
func New(cfg config.Matching) *Matcher {
	return &Matcher{cfg: cfg}
}

// ScoreNames compares two full names and returns a score in [0, 1].
//
// The surname ratio dominates, the first-name ratio allows a scaled
// partial match (so "Rose" still lines up with "Rosemary"), and a
// token-sort ratio over the full names absorbs middle names and
// ordering differences. Exact surname and first-name matches earn
// small bonuses before clamping.
func (m *Matcher) ScoreNames(query, candidate string) float64 {
	queryNorm := NormalizeName(query)
	candidateNorm := NormalizeName(candidate)
	if queryNorm == "" || candidateNorm == "" {
		return 0
	}

	queryFirst, querySurname := SplitName(queryNorm)
	candidateFirst, candidateSurname := SplitName(candidateNorm)

	surnameRatio := ratio(querySurname, candidateSurname)
	firstRatio := ratio(queryFirst, candidateFirst)
	if partial := partialRatio(queryFirst, candidateFirst) * m.cfg.PartialRatioScale; partial > firstRatio {
		firstRatio = partial
	}
	tokenSort := tokenSortRatio(queryNorm, candidateNorm)

	score := m.cfg.SurnameWeight*surnameRatio +
		m.cfg.FirstNameWeight*firstRatio +
		m.cfg.TokenSortWeight*tokenSort

	if querySurname != "" && querySurname == candidateSurname {
		score += m.cfg.ExactSurnameBonus
	}
	if queryFirst != "" && queryFirst == candidateFirst {
		score += m.cfg.ExactFirstBonus
	}

	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

// ScorePerson compares a query against a candidate, additionally trying
// maiden surnames on either side when one is known. The candidate's
// maiden attribute substitutes for their recorded surname, and the
// query's maiden name substitutes for the obituary surname, so a woman
// filed under her birth name still matches her married mention and vice
// versa. The highest score wins and any maiden use is flagged.
func (m *Matcher) ScorePerson(query Query, candidateName, maidenSurname string) Score {
	best := Score{Value: m.ScoreNames(query.Name, candidateName)}

	try := func(queryName, candName string) {
		if queryName == "" || candName == "" {
			return
		}
		if alternative := m.ScoreNames(queryName, candName); alternative > best.Value {
			best = Score{Value: alternative, MatchedMaidenName: true}
		}
	}

	candidateFirst, _ := SplitName(candidateName)
	if maidenSurname != "" && candidateFirst != "" {
		try(query.Name, candidateFirst+" "+maidenSurname)
	}
	if query.MaidenName != "" {
		queryFirst, _ := SplitName(query.Name)
		if queryFirst != "" {
			try(queryFirst+" "+query.MaidenName, candidateName)
			if maidenSurname != "" && candidateFirst != "" {
				try(queryFirst+" "+query.MaidenName, candidateFirst+" "+maidenSurname)
			}
		}
	}
	return best
}

// BandFor classifies a score against the configured thresholds.
func (m *Matcher) BandFor(score float64) Band {
	switch {
	case score >= m.cfg.ConfidentScore:
		return BandConfident
	case score >= m.cfg.MinScore:
		return BandReview
	default:
		return BandReject
	}
}

// IsExact reports whether the score qualifies as an exact match.
func (m *Matcher) IsExact(score float64) bool {
	return score >= m.cfg.ExactScore
}

// MaxCandidates returns the configured cap on retained candidates.
func (m *Matcher) MaxCandidates() int {
	return m.cfg.MaxCandidates
}

func ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 0
	}
	return float64(fuzzy.Ratio(a, b)) / 100
}

func partialRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return float64(fuzzy.PartialRatio(a, b)) / 100
}

func tokenSortRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return float64(fuzzy.TokenSortRatio(a, b)) / 100
}
