package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/calmlinehq/calmline/internal/domain"
)

type userRecord struct {
	id          domain.UserID
	phone       string
	channel     domain.Channel
	displayName string
	created     time.Time
}

// UserDirectory is an in-memory domain.UserDirectory keyed by phone number.
type UserDirectory struct {
	mu      sync.RWMutex
	byPhone map[string]*userRecord
}

func NewUserDirectory() *UserDirectory {
	return &UserDirectory{
		byPhone: make(map[string]*userRecord),
	}
}

func (d *UserDirectory) UserIDByPhone(phone string) (domain.UserID, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rec, ok := d.byPhone[phone]
	if !ok {
		return "", false, nil
	}
	return rec.id, true, nil
}

func (d *UserDirectory) CreateUserForPhone(phone string, channel domain.Channel) (domain.UserID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if rec, ok := d.byPhone[phone]; ok {
		return rec.id, nil
	}

	rec := &userRecord{
		id:          domain.UserID(uuid.NewString()),
		phone:       phone,
		channel:     channel,
		displayName: displayNameForPhone(phone),
		created:     time.Now(),
	}
	d.byPhone[phone] = rec
	return rec.id, nil
}

// displayNameForPhone derives a placeholder name from the last 4 digits.
func displayNameForPhone(phone string) string {
	suffix := phone
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return "User-" + suffix
}
