package extraction

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"lineage/internal/config"
	"lineage/internal/facts"
	"lineage/internal/logging"
	"lineage/internal/services"
)

// scriptedChat replays one canned response per completion call.
type scriptedChat struct {
	responses []string
	calls     int
}

func (s *scriptedChat) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if s.calls >= len(s.responses) {
		return openai.ChatCompletionResponse{}, fmt.Errorf("unexpected call %d", s.calls)
	}
	content := s.responses[s.calls]
	s.calls++
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}, nil
}

func newExtractor(responses ...string) (*Extractor, *scriptedChat) {
	chat := &scriptedChat{responses: responses}
	return &Extractor{client: chat, model: "test-model", logger: logging.NewNop()}, chat
}

const identityResponse = `{
  "subject": {
    "full_name": "Helen Kowalski",
    "gender": "female",
    "death_date": "January 5, 2024",
    "birth_date": null,
    "maiden_name": "Nowak",
    "location": "Milwaukee"
  },
  "other_persons": [
    {"full_name": "Walter Kowalski"},
    {"full_name": "Susan Miller"}
  ]
}`

// fenced the way chat models often return JSON
const relationshipResponse = "```json\n" + `{
  "relationships": [
    {"person_a": "Helen Kowalski", "person_b": "Walter Kowalski", "relationship_type": "husband", "source_context": "her husband Walter"},
    {"person_a": "Helen Kowalski", "person_b": "Susan Miller", "relationship_type": "daughter", "source_context": "daughter Susan Miller"}
  ],
  "gender_facts": [
    {"person": "Walter Kowalski", "gender": "male"}
  ]
}` + "\n```"

const inferenceResponse = `{
  "inferred_relationships": [
    {"person_a": "Helen Kowalski", "person_b": "Susan Miller", "relationship_type": "daughter", "confidence_score": 0.7}
  ],
  "inferred_facts": [
    {"person": "Susan Miller", "fact_type": "maiden_name", "fact_value": "Kowalski"}
  ]
}`

func TestExtractThreePasses(t *testing.T) {
	extractor, chat := newExtractor(identityResponse, relationshipResponse, inferenceResponse)

	out, err := extractor.Extract(context.Background(), "Helen Kowalski", "obituary text")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if chat.calls != 3 {
		t.Fatalf("completion calls = %d, want 3", chat.calls)
	}

	byType := map[facts.Type][]facts.Fact{}
	for _, f := range out {
		byType[f.Type] = append(byType[f.Type], f)
	}

	if got := byType[facts.TypeDeathDate]; len(got) != 1 ||
		got[0].Value != "January 5, 2024" || !got[0].DescribesSubject() {
		t.Errorf("death facts = %+v, want one subject fact with date", got)
	}
	if got := byType[facts.TypeBirthDate]; len(got) != 0 {
		t.Errorf("null birth date produced facts %+v", got)
	}

	var relationships int
	for _, f := range out {
		if f.Type != facts.TypeRelationship {
			continue
		}
		relationships++
		if f.RelatedName != "" {
			t.Errorf("subject name not folded in %+v", f)
		}
	}
	// the inferred daughter duplicates the explicit one
	if relationships != 2 {
		t.Errorf("relationship facts = %d, want 2", relationships)
	}

	var husband *facts.Fact
	for i := range out {
		if out[i].Type == facts.TypeRelationship && out[i].Relationship == "husband" {
			husband = &out[i]
		}
	}
	if husband == nil {
		t.Fatalf("no husband fact in %v", out)
	}
	if husband.Confidence != explicitConfidence {
		t.Errorf("husband confidence = %v, want %v", husband.Confidence, explicitConfidence)
	}
}

func TestExtractRejectsMalformedJSON(t *testing.T) {
	extractor, _ := newExtractor("this is not JSON")

	_, err := extractor.Extract(context.Background(), "Helen Kowalski", "obituary text")
	if err == nil {
		t.Fatal("expected error for malformed response")
	}
	if !errors.Is(err, services.ErrExternalService) {
		t.Errorf("error = %v, want external service marker", err)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(config.Extraction{}, nil)
	if err == nil {
		t.Fatal("expected error without api key")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Errorf("error = %v, want configuration marker", err)
	}
}

func TestReadFactsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.json")
	content := `[
  {"type": "death_date", "value": "2024-01-05", "confidence": 0.95},
  {"type": "relationship", "person_name": "Walter Kowalski", "relationship": "Husband", "related_name": "Helen Kowalski"},
  {"type": "death_date", "value": "2024-01-05"}
]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write facts file: %v", err)
	}

	out, err := ReadFactsFile(path, "Helen Kowalski")
	if err != nil {
		t.Fatalf("ReadFactsFile: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("facts = %d, want 2 after dedup", len(out))
	}
	if out[1].Relationship != "husband" || out[1].RelatedName != "" {
		t.Errorf("relationship fact = %+v, want normalized term and folded subject", out[1])
	}
}

func TestReadFactsFileUnknownType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.json")
	if err := os.WriteFile(path, []byte(`[{"type": "shoe_size", "value": "11"}]`), 0o644); err != nil {
		t.Fatalf("write facts file: %v", err)
	}
	if _, err := ReadFactsFile(path, ""); err == nil {
		t.Fatal("expected error for unknown fact type")
	}
}
