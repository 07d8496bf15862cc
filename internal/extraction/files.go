package extraction

import (
	"encoding/json"
	"fmt"
	"os"

	"lineage/internal/facts"
)

// factFile is one entry in an imported fact file.
type factFile struct {
	Type           string  `json:"type"`
	PersonName     string  `json:"person_name,omitempty"`
	Value          string  `json:"value,omitempty"`
	RelatedName    string  `json:"related_name,omitempty"`
	Relationship   string  `json:"relationship,omitempty"`
	Confidence     float64 `json:"confidence,omitempty"`
	Inferred       bool    `json:"is_inferred,omitempty"`
	InferenceBasis string  `json:"inference_basis,omitempty"`
}

// ReadFactsFile loads facts from a JSON file, the offline alternative
// to LLM extraction. The file holds an array of fact objects; names
// matching the subject fold to the empty person name.
func ReadFactsFile(path, subjectName string) ([]facts.Fact, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read facts file: %w", err)
	}

	var entries []factFile
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse facts file: %w", err)
	}

	b := builder{subject: subjectName, seen: make(map[string]struct{})}
	for i, entry := range entries {
		factType, ok := facts.ParseType(entry.Type)
		if !ok {
			return nil, fmt.Errorf("facts file entry %d: unknown fact type %q", i, entry.Type)
		}
		confidence := entry.Confidence
		if confidence <= 0 || confidence > 1 {
			confidence = inferredConfidence
		}
		basis := entry.InferenceBasis
		if entry.Inferred && basis == "" {
			basis = "imported as inferred"
		}
		b.add(facts.Fact{
			Type:           factType,
			PersonName:     entry.PersonName,
			Value:          entry.Value,
			RelatedName:    entry.RelatedName,
			Relationship:   facts.NormalizeTerm(entry.Relationship),
			Confidence:     confidence,
			Inferred:       entry.Inferred,
			InferenceBasis: basis,
		})
	}
	return b.out, nil
}
