package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/calmlinehq/calmline/internal/domain"
)

// MoodStore is an in-memory domain.MoodStore.
type MoodStore struct {
	mu      sync.RWMutex
	entries map[domain.UserID][]*domain.MoodEntry
	now     func() time.Time
}

func NewMoodStore() *MoodStore {
	return &MoodStore{
		entries: make(map[domain.UserID][]*domain.MoodEntry),
		now:     time.Now,
	}
}

func (s *MoodStore) AppendMoodEntry(entry *domain.MoodEntry) (domain.MoodEntryID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *entry
	stored.ID = domain.MoodEntryID(uuid.NewString())
	stored.CreatedAt = s.now()

	s.entries[entry.UserID] = append(s.entries[entry.UserID], &stored)
	return stored.ID, nil
}

// QueryMoodEntries returns entries newest-to-oldest within the window.
func (s *MoodStore) QueryMoodEntries(userID domain.UserID, q domain.MoodQuery) ([]*domain.MoodEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.entries[userID]
	out := make([]*domain.MoodEntry, 0, len(all))

	// entries are stored oldest first; walk backwards for descending order
	for i := len(all) - 1; i >= 0; i-- {
		e := all[i]
		if !q.Since.IsZero() && e.CreatedAt.Before(q.Since) {
			continue
		}
		if !q.Until.IsZero() && e.CreatedAt.After(q.Until) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
