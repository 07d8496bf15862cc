package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"lineage/internal/config"
	"lineage/internal/facts"
	"lineage/internal/logging"
	"lineage/internal/services"
)

const (
	defaultModel = "gpt-4o-mini"
	temperature  = 0.1

	identityConfidence = 0.95
	explicitConfidence = 0.9
	genderConfidence   = 0.85
	inferredConfidence = 0.75
)

// chatClient is the slice of the OpenAI client the extractor needs.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Extractor runs the multi-pass LLM extraction pipeline.
type Extractor struct {
	client chatClient
	model  string
	logger *slog.Logger
}

// New builds an extractor from the extraction config section.
func New(cfg config.Extraction, logger *slog.Logger) (*Extractor, error) {
	if cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "extract", "setup",
			"extraction api_key is not set", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if cfg.TimeoutSeconds > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &Extractor{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		logger: logger,
	}, nil
}

// Extract runs the three passes over one obituary and returns the
// deduplicated fact set. Names matching the subject are folded to the
// empty person name.
func (e *Extractor) Extract(ctx context.Context, subjectName, obituaryText string) ([]facts.Fact, error) {
	ctx = services.WithStage(ctx, "extract")

	identity, err := e.identityPass(ctx, obituaryText)
	if err != nil {
		return nil, err
	}
	if subjectName == "" {
		subjectName = identity.Subject.FullName
	}
	e.logger.Debug("identity pass complete",
		logging.String("subject", identity.Subject.FullName),
		logging.Int("persons", len(identity.OtherPersons)))

	relationships, err := e.relationshipPass(ctx, obituaryText, subjectName, identity)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("relationship pass complete",
		logging.Int("relationships", len(relationships.Relationships)),
		logging.Int("gender_facts", len(relationships.GenderFacts)))

	inferred, err := e.inferencePass(ctx, identity, relationships)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("inference pass complete",
		logging.Int("relationships", len(inferred.InferredRelationships)),
		logging.Int("facts", len(inferred.InferredFacts)))

	out := assemble(subjectName, identity, relationships, inferred)
	e.logger.Info("extraction complete",
		logging.String("subject", subjectName),
		logging.Int("facts", len(out)))
	return out, nil
}

func (e *Extractor) identityPass(ctx context.Context, obituaryText string) (*identityResult, error) {
	var result identityResult
	prompt := fmt.Sprintf(identityPrompt, obituaryText)
	if err := e.complete(ctx, "identity", prompt, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (e *Extractor) relationshipPass(ctx context.Context, obituaryText, subjectName string, identity *identityResult) (*relationshipResult, error) {
	people, err := json.Marshal(identity.personNames())
	if err != nil {
		return nil, fmt.Errorf("marshal people: %w", err)
	}

	var result relationshipResult
	prompt := fmt.Sprintf(relationshipPrompt, string(people), subjectName, obituaryText)
	if err := e.complete(ctx, "relationships", prompt, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (e *Extractor) inferencePass(ctx context.Context, identity *identityResult, relationships *relationshipResult) (*inferenceResult, error) {
	people, err := json.Marshal(identity.personNames())
	if err != nil {
		return nil, fmt.Errorf("marshal people: %w", err)
	}
	explicit, err := json.Marshal(relationships.Relationships)
	if err != nil {
		return nil, fmt.Errorf("marshal relationships: %w", err)
	}

	var result inferenceResult
	prompt := fmt.Sprintf(inferencePrompt, string(people), string(explicit))
	if err := e.complete(ctx, "inference", prompt, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// complete sends one prompt and decodes the strict-JSON reply.
func (e *Extractor) complete(ctx context.Context, pass, prompt string, out any) error {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
	})
	if err != nil {
		return services.Wrap(services.ErrExternalService, "extract", pass, "chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return services.Wrap(services.ErrExternalService, "extract", pass, "empty completion response", nil)
	}

	content := cleanJSONResponse(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return services.Wrap(services.ErrExternalService, "extract", pass,
			fmt.Sprintf("malformed JSON response: %v", err), nil)
	}
	return nil
}

// cleanJSONResponse strips markdown code fences some models wrap
// around JSON output.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
