package domain

// Message represents one entry in a user's conversation log (user or bot).
// Messages are immutable after creation; the store assigns ID and timestamp.
type Message struct {
	ID        MessageID
	UserID    UserID
	Sender    Sender
	Content   string
	Channel   Channel
	CreatedAt Timestamp
}
