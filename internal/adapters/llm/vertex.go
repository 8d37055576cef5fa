package llm

import (
	"context"
	"fmt"

	"github.com/calmlinehq/calmline/internal/domain"
	"google.golang.org/genai"
)

type VertexClient struct {
	client    *genai.Client
	modelName string
}

// VertexConfig carries what the client needs from the process config.
type VertexConfig struct {
	ProjectID string
	Location  string
	ModelName string
}

// NewVertexClient creates an LLMClient backed by Vertex AI (Gemini).
func NewVertexClient(ctx context.Context, cfg VertexConfig) (*VertexClient, error) {
	if cfg.ProjectID == "" || cfg.Location == "" {
		return nil, fmt.Errorf("project and location are required for the Vertex client")
	}

	modelName := cfg.ModelName
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.ProjectID,
		Location: cfg.Location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &VertexClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// GenerateReply implements domain.LLMClient using Vertex AI.
func (v *VertexClient) GenerateReply(
	ctx context.Context,
	history []*domain.Message,
	userMessage string,
) (string, error) {
	// 1) History (user / bot) as conversation, bounded to the most recent turns
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}

	var contents []*genai.Content
	for _, m := range history {
		var role genai.Role
		switch m.Sender {
		case domain.SenderBot:
			role = genai.RoleModel
		default:
			role = genai.RoleUser
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	// 2) Current user message
	contents = append(contents, genai.NewContentFromText(userMessage, genai.RoleUser))

	temp := float32(0.7)
	topP := float32(1.0)
	outputTokens := int32(500)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(personaSystemPrompt, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   outputTokens,
	}

	res, err := v.client.Models.GenerateContent(ctx, v.modelName, contents, cfg)
	if err != nil {
		return "", &domain.ModelCallError{Op: "generate_reply", Err: err}
	}

	text := res.Text()
	if text == "" {
		return "", &domain.ModelCallError{Op: "generate_reply", Err: fmt.Errorf("model returned empty text")}
	}

	return text, nil
}

// ClassifyCrisis implements domain.LLMClient using Vertex AI. Call failures
// return a ModelCallError; garbled model output never does — it degrades to
// the no-risk default inside ParseCrisisAssessment.
func (v *VertexClient) ClassifyCrisis(
	ctx context.Context,
	message string,
) (domain.CrisisAssessment, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(message, genai.RoleUser),
	}

	// No creativity for risk assessment.
	temp := float32(0)
	outputTokens := int32(150)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(crisisClassifierPrompt, genai.RoleUser),
		Temperature:       &temp,
		MaxOutputTokens:   outputTokens,
	}

	res, err := v.client.Models.GenerateContent(ctx, v.modelName, contents, cfg)
	if err != nil {
		return domain.CrisisAssessment{}, &domain.ModelCallError{Op: "classify_crisis", Err: err}
	}

	return ParseCrisisAssessment(res.Text()), nil
}
