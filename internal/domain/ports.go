package domain

import (
	"context"
	"time"
)

// LLMClient defines how the core application interacts with the language
// model service.
type LLMClient interface {
	// GenerateReply produces a conversational reply given the bounded
	// history (oldest first) and the new user message. The persona prompt
	// is owned by the adapter.
	GenerateReply(ctx context.Context, history []*Message, userMessage string) (string, error)

	// ClassifyCrisis scores a single message for crisis indicators.
	// Implementations must return a well-formed assessment even when the
	// underlying model output is garbled; only call failures return an error.
	ClassifyCrisis(ctx context.Context, message string) (CrisisAssessment, error)
}

// ConversationStore defines persistence for the per-user message log.
type ConversationStore interface {
	// AppendMessage persists msg and returns the store-assigned ID.
	// The store assigns the timestamp at write time.
	AppendMessage(msg *Message) (MessageID, error)

	// ListMessages returns messages for a user oldest-to-newest. A limit > 0
	// bounds the result to the most recent limit messages (still ascending).
	ListMessages(userID UserID, limit int) ([]*Message, error)

	// DeleteAllMessages removes the user's whole log and reports how many
	// messages were deleted. Deleting an empty log is not an error.
	DeleteAllMessages(userID UserID) (int, error)
}

// MoodQuery bounds a mood history lookup. Zero values mean unbounded.
type MoodQuery struct {
	Since time.Time
	Until time.Time
}

// MoodStore defines persistence for the per-user mood log.
type MoodStore interface {
	AppendMoodEntry(entry *MoodEntry) (MoodEntryID, error)

	// QueryMoodEntries returns entries newest-to-oldest within the query window.
	QueryMoodEntries(userID UserID, q MoodQuery) ([]*MoodEntry, error)
}

// UserDirectory resolves messaging-carrier senders to user IDs.
type UserDirectory interface {
	// UserIDByPhone looks up the user owning a phone number.
	// ok is false when no user is registered for it.
	UserIDByPhone(phone string) (id UserID, ok bool, err error)

	// CreateUserForPhone registers a new user record for an unrecognized
	// phone number and returns its ID.
	CreateUserForPhone(phone string, channel Channel) (UserID, error)
}
