package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/calmlinehq/calmline/internal/domain"
)

// Store persists conversations, mood logs and the phone directory in
// Firestore. One store, implements the three persistence ports.
type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store for the given project
// (CALMLINE_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) messagesCol(userID domain.UserID) *firestore.CollectionRef {
	return s.client.Collection("chats").Doc(string(userID)).Collection("messages")
}

func (s *Store) moodsCol(userID domain.UserID) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(string(userID)).Collection("moods")
}

func (s *Store) usersCol() *firestore.CollectionRef {
	return s.client.Collection("users")
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type messageDoc struct {
	Sender    string    `firestore:"sender"`
	Content   string    `firestore:"content"`
	Channel   string    `firestore:"channel"`
	CreatedAt time.Time `firestore:"timestamp,serverTimestamp"`
}

type moodDoc struct {
	Score     int       `firestore:"score"`
	Label     string    `firestore:"label"`
	Notes     string    `firestore:"notes"`
	CreatedAt time.Time `firestore:"timestamp,serverTimestamp"`
}

type userDoc struct {
	PhoneNumber     string    `firestore:"phoneNumber"`
	Channel         string    `firestore:"channel"`
	DisplayName     string    `firestore:"displayName"`
	Created         time.Time `firestore:"created,serverTimestamp"`
	LastInteraction time.Time `firestore:"lastInteraction,serverTimestamp"`
}

// ─────────────────────────────────────────
// ConversationStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMessage(msg *domain.Message) (domain.MessageID, error) {
	ctx := context.Background()

	doc := messageDoc{
		Sender:  string(msg.Sender),
		Content: msg.Content,
		Channel: string(msg.Channel),
	}

	ref, _, err := s.messagesCol(msg.UserID).Add(ctx, doc)
	if err != nil {
		return "", &domain.StoreError{Op: "append_message", Err: err}
	}
	return domain.MessageID(ref.ID), nil
}

func (s *Store) ListMessages(userID domain.UserID, limit int) ([]*domain.Message, error) {
	ctx := context.Background()

	q := s.messagesCol(userID).OrderBy("timestamp", firestore.Asc)
	if limit > 0 {
		// the bounded window is the most recent N, still returned ascending
		q = s.messagesCol(userID).OrderBy("timestamp", firestore.Desc).Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Message
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, &domain.StoreError{Op: "list_messages", Err: err}
		}

		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, &domain.StoreError{Op: "list_messages", Err: fmt.Errorf("decode messageDoc: %w", err)}
		}

		out = append(out, &domain.Message{
			ID:        domain.MessageID(snap.Ref.ID),
			UserID:    userID,
			Sender:    domain.Sender(doc.Sender),
			Content:   doc.Content,
			Channel:   domain.Channel(doc.Channel),
			CreatedAt: doc.CreatedAt,
		})
	}

	if limit > 0 {
		reverse(out)
	}
	return out, nil
}

// DeleteAllMessages removes the user's whole message log. Firestore has no
// collection delete, so documents are fetched and deleted in batches.
func (s *Store) DeleteAllMessages(userID domain.UserID) (int, error) {
	ctx := context.Background()

	const batchSize = 100
	deleted := 0

	for {
		iter := s.messagesCol(userID).Limit(batchSize).Documents(ctx)
		n := 0
		for {
			snap, err := iter.Next()
			if err != nil {
				if err == iterator.Done {
					break
				}
				iter.Stop()
				return deleted, &domain.StoreError{Op: "delete_all_messages", Err: err}
			}
			if _, err := snap.Ref.Delete(ctx); err != nil {
				iter.Stop()
				return deleted, &domain.StoreError{Op: "delete_all_messages", Err: err}
			}
			n++
		}
		iter.Stop()

		deleted += n
		if n < batchSize {
			return deleted, nil
		}
	}
}

func reverse(msgs []*domain.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}

// ─────────────────────────────────────────
// MoodStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMoodEntry(entry *domain.MoodEntry) (domain.MoodEntryID, error) {
	ctx := context.Background()

	doc := moodDoc{
		Score: entry.Score,
		Label: entry.Label,
		Notes: entry.Notes,
	}

	ref, _, err := s.moodsCol(entry.UserID).Add(ctx, doc)
	if err != nil {
		return "", &domain.StoreError{Op: "append_mood_entry", Err: err}
	}
	return domain.MoodEntryID(ref.ID), nil
}

func (s *Store) QueryMoodEntries(userID domain.UserID, q domain.MoodQuery) ([]*domain.MoodEntry, error) {
	ctx := context.Background()

	query := s.moodsCol(userID).Query
	if !q.Since.IsZero() {
		query = query.Where("timestamp", ">=", q.Since)
	}
	if !q.Until.IsZero() {
		query = query.Where("timestamp", "<=", q.Until)
	}
	query = query.OrderBy("timestamp", firestore.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var out []*domain.MoodEntry
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, &domain.StoreError{Op: "query_mood_entries", Err: err}
		}

		var doc moodDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, &domain.StoreError{Op: "query_mood_entries", Err: fmt.Errorf("decode moodDoc: %w", err)}
		}

		out = append(out, &domain.MoodEntry{
			ID:        domain.MoodEntryID(snap.Ref.ID),
			UserID:    userID,
			Score:     doc.Score,
			Label:     doc.Label,
			Notes:     doc.Notes,
			CreatedAt: doc.CreatedAt,
		})
	}
	return out, nil
}

// ─────────────────────────────────────────
// UserDirectory implementation
// ─────────────────────────────────────────

func (s *Store) UserIDByPhone(phone string) (domain.UserID, bool, error) {
	ctx := context.Background()

	iter := s.usersCol().Where("phoneNumber", "==", phone).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return "", false, nil
		}
		if status.Code(err) == codes.NotFound {
			return "", false, nil
		}
		return "", false, &domain.StoreError{Op: "user_by_phone", Err: err}
	}

	return domain.UserID(snap.Ref.ID), true, nil
}

func (s *Store) CreateUserForPhone(phone string, channel domain.Channel) (domain.UserID, error) {
	ctx := context.Background()

	suffix := phone
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}

	id := uuid.NewString()
	doc := userDoc{
		PhoneNumber: phone,
		Channel:     string(channel),
		DisplayName: "User-" + suffix,
	}

	if _, err := s.usersCol().Doc(id).Create(ctx, doc); err != nil {
		return "", &domain.StoreError{Op: "create_user_for_phone", Err: err}
	}

	// Default settings document, same shape the identity flow writes.
	settings := map[string]interface{}{
		"notifications":       true,
		"moodTrackingEnabled": true,
	}
	if _, err := s.client.Collection("userSettings").Doc(id).Set(ctx, settings); err != nil {
		return "", &domain.StoreError{Op: "create_user_for_phone", Err: err}
	}

	return domain.UserID(id), nil
}
