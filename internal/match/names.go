package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// generational suffixes stripped before comparison
var nameSuffixes = []string{" jr", " sr", " ii", " iii", " iv"}

// NormalizeName lowercases, folds diacritics, strips punctuation and
// generational suffixes, and collapses whitespace.
func NormalizeName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return ""
	}
	if folded, _, err := transform.String(foldDiacritics, normalized); err == nil {
		normalized = folded
	}
	normalized = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, normalized)
	normalized = strings.Join(strings.Fields(normalized), " ")
	for _, suffix := range nameSuffixes {
		if strings.HasSuffix(normalized, suffix) {
			normalized = strings.TrimSpace(strings.TrimSuffix(normalized, suffix))
			break
		}
	}
	return normalized
}

// SplitName returns the first and last tokens of a normalized name. A
// single-token name is treated as a bare first name.
func SplitName(name string) (first, surname string) {
	fields := strings.Fields(NormalizeName(name))
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], fields[len(fields)-1]
	}
}
