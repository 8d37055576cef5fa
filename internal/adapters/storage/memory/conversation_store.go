package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/calmlinehq/calmline/internal/domain"
)

// ConversationStore is an in-memory domain.ConversationStore. Not persistent,
// suitable for development and tests.
type ConversationStore struct {
	mu       sync.RWMutex
	messages map[domain.UserID][]*domain.Message
	now      func() time.Time
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		messages: make(map[domain.UserID][]*domain.Message),
		now:      time.Now,
	}
}

func (s *ConversationStore) AppendMessage(msg *domain.Message) (domain.MessageID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *msg
	stored.ID = domain.MessageID(uuid.NewString())
	stored.CreatedAt = s.now()

	// Keep per-conversation timestamps non-decreasing even when the clock
	// resolution cannot tell two appends apart.
	if prev := s.messages[msg.UserID]; len(prev) > 0 {
		if last := prev[len(prev)-1].CreatedAt; stored.CreatedAt.Before(last) {
			stored.CreatedAt = last
		}
	}

	s.messages[msg.UserID] = append(s.messages[msg.UserID], &stored)
	return stored.ID, nil
}

func (s *ConversationStore) ListMessages(userID domain.UserID, limit int) ([]*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[userID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	out := make([]*domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *ConversationStore) DeleteAllMessages(userID domain.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := len(s.messages[userID])
	delete(s.messages, userID)
	return deleted, nil
}
