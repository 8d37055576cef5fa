package llm

import (
	"context"
	"fmt"

	"github.com/calmlinehq/calmline/internal/domain"
)

// MockLLM is a deterministic stand-in for local development.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) GenerateReply(ctx context.Context, history []*domain.Message, userMessage string) (string, error) {
	return fmt.Sprintf("I hear you. You said %q. Tell me a bit more about how that makes you feel.", userMessage), nil
}

func (m *MockLLM) ClassifyCrisis(ctx context.Context, message string) (domain.CrisisAssessment, error) {
	return domain.NoRiskAssessment(), nil
}
