package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/calmlinehq/calmline/internal/domain"
	"github.com/calmlinehq/calmline/internal/observability"
)

// historyWindow bounds the context passed to the reply generator.
const historyWindow = 10

// highRiskThreshold is the crisis_risk score at or above which resource
// text is appended to the reply. Fixed contract value.
const highRiskThreshold = 7

const (
	fallbackReply = "I'm having trouble connecting right now. Please try again in a moment."

	suicideResources = "\n\n**Important**: If you're having thoughts of harming yourself, " +
		"please contact the National Suicide Prevention Lifeline at 988 or 1-800-273-8255, " +
		"or text HOME to 741741 to reach the Crisis Text Line."

	genericResources = "\n\n**Resources**: If you need immediate support, consider contacting " +
		"a crisis helpline like 988 (National Suicide Prevention Lifeline) or texting HOME " +
		"to 741741 (Crisis Text Line)."
)

// Service runs the conversation turn pipeline: bounded history, best-effort
// persistence, crisis classification, reply generation and risk gating.
type Service struct {
	llm     domain.LLMClient
	store   domain.ConversationStore
	metrics *observability.Metrics

	// deadline on a single reply-generation call; timeout degrades to the
	// fallback reply like any other adapter failure
	modelTimeout time.Duration
}

func NewService(
	llm domain.LLMClient,
	store domain.ConversationStore,
	metrics *observability.Metrics,
	modelTimeout time.Duration,
) *Service {
	if modelTimeout <= 0 {
		modelTimeout = 30 * time.Second
	}
	return &Service{
		llm:          llm,
		store:        store,
		metrics:      metrics,
		modelTimeout: modelTimeout,
	}
}

type ProcessTurnInput struct {
	UserID  domain.UserID
	Message string
	Channel domain.Channel
}

type TurnResult struct {
	Reply      string
	Assessment domain.CrisisAssessment
}

// ProcessTurn handles one inbound message end to end and always produces a
// well-formed reply for valid input. Persistence failures never abort the
// turn: the user gets a reply even when their message is not durably
// recorded (availability over durability, by explicit policy).
func (s *Service) ProcessTurn(ctx context.Context, in ProcessTurnInput) (*TurnResult, error) {
	if in.UserID == "" {
		return nil, &domain.ValidationError{Field: "userId", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.Message) == "" {
		return nil, &domain.ValidationError{Field: "message", Reason: "must not be empty"}
	}

	log := observability.LoggerFromContext(ctx).With(
		"user_id", in.UserID,
		"channel", in.Channel,
	)
	log.Info("processing turn")

	if s.metrics != nil {
		s.metrics.Turns.WithLabelValues(string(in.Channel)).Inc()
	}

	// 1) Bounded context window. Retrieval failure is non-fatal: the turn
	// proceeds with an empty history.
	history, err := s.store.ListMessages(in.UserID, historyWindow)
	if err != nil {
		log.Error("failed to load history, continuing without context", "error", err)
		s.countStoreError("list_messages")
		history = nil
	}

	// 2) Best-effort persistence of the inbound message.
	userMsg := &domain.Message{
		UserID:  in.UserID,
		Sender:  domain.SenderUser,
		Content: in.Message,
		Channel: in.Channel,
	}
	if _, err := s.store.AppendMessage(userMsg); err != nil {
		log.Error("failed to store user message", "error", err)
		s.countStoreError("append_message")
	}

	// 3) Crisis classification on the raw message, independent of history.
	// An unreachable classifier degrades to the cautious non-zero default.
	assessment, err := s.llm.ClassifyCrisis(ctx, in.Message)
	if err != nil {
		log.Error("crisis classification failed, using safe default", "error", err)
		if s.metrics != nil {
			s.metrics.ModelErrors.WithLabelValues("classify").Inc()
		}
		assessment = domain.SafeDefaultAssessment()
	}

	// 4) Reply generation under an explicit deadline.
	reply, genFailed := s.generateReply(ctx, log, history, in.Message)

	// 5) Risk gating. Never augment the fallback text: pointing a user in
	// crisis at resources makes sense only on a real reply.
	if !genFailed && assessment.Risk >= highRiskThreshold {
		reply += resourcesFor(assessment.Type)
		if s.metrics != nil {
			s.metrics.CrisisFlags.WithLabelValues(string(assessment.Type)).Inc()
		}
		log.Warn("high crisis risk detected",
			"crisis_risk", assessment.Risk,
			"crisis_type", assessment.Type,
			"recommended_action", assessment.RecommendedAction,
		)
	}

	// 6) Best-effort persistence of the reply.
	botMsg := &domain.Message{
		UserID:  in.UserID,
		Sender:  domain.SenderBot,
		Content: reply,
		Channel: in.Channel,
	}
	if _, err := s.store.AppendMessage(botMsg); err != nil {
		log.Error("failed to store bot reply", "error", err)
		s.countStoreError("append_message")
	}

	log.Info("turn completed", "crisis_risk", assessment.Risk)

	// 7) Reply and assessment are returned unchanged by persistence outcomes.
	return &TurnResult{
		Reply:      reply,
		Assessment: assessment,
	}, nil
}

// generateReply calls the model with the persona context. genFailed reports
// that the fixed fallback was substituted.
func (s *Service) generateReply(
	ctx context.Context,
	log *slog.Logger,
	history []*domain.Message,
	message string,
) (reply string, genFailed bool) {
	callCtx, cancel := context.WithTimeout(ctx, s.modelTimeout)
	defer cancel()

	start := time.Now()
	reply, err := s.llm.GenerateReply(callCtx, history, message)
	if s.metrics != nil {
		s.metrics.ObserveModelCall(time.Since(start))
	}
	if err != nil {
		log.Error("reply generation failed, substituting fallback", "error", err)
		if s.metrics != nil {
			s.metrics.ModelErrors.WithLabelValues("generate").Inc()
		}
		return fallbackReply, true
	}
	return reply, false
}

func resourcesFor(t domain.CrisisType) string {
	if t == domain.CrisisSuicidal || t == domain.CrisisSelfHarm {
		return suicideResources
	}
	return genericResources
}

func (s *Service) countStoreError(op string) {
	if s.metrics != nil {
		s.metrics.StoreErrors.WithLabelValues(op).Inc()
	}
}

// History returns the user's full conversation log, oldest first. Unlike the
// turn pipeline, read failures here are surfaced to the caller.
func (s *Service) History(ctx context.Context, userID domain.UserID) ([]*domain.Message, error) {
	if userID == "" {
		return nil, &domain.ValidationError{Field: "userId", Reason: "must not be empty"}
	}

	msgs, err := s.store.ListMessages(userID, 0)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("failed to load history", "user_id", userID, "error", err)
		s.countStoreError("list_messages")
		return nil, err
	}
	return msgs, nil
}

// ClearHistory deletes the user's whole conversation log and reports how
// many messages were removed. Clearing an empty log returns 0 without error.
func (s *Service) ClearHistory(ctx context.Context, userID domain.UserID) (int, error) {
	if userID == "" {
		return 0, &domain.ValidationError{Field: "userId", Reason: "must not be empty"}
	}

	deleted, err := s.store.DeleteAllMessages(userID)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("failed to clear history", "user_id", userID, "error", err)
		s.countStoreError("delete_all_messages")
		return deleted, err
	}

	observability.LoggerFromContext(ctx).Info("history cleared", "user_id", userID, "deleted", deleted)
	return deleted, nil
}
