package mood_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/calmlinehq/calmline/internal/adapters/storage/memory"
	"github.com/calmlinehq/calmline/internal/app/mood"
	"github.com/calmlinehq/calmline/internal/domain"
)

// fakeMoodStore records calls and can be forced to fail.
type fakeMoodStore struct {
	entries   []*domain.MoodEntry
	lastQuery domain.MoodQuery
	appendErr error
	queryErr  error
}

func (f *fakeMoodStore) AppendMoodEntry(entry *domain.MoodEntry) (domain.MoodEntryID, error) {
	if f.appendErr != nil {
		return "", f.appendErr
	}
	stored := *entry
	stored.CreatedAt = time.Now()
	f.entries = append(f.entries, &stored)
	return "entry-1", nil
}

func (f *fakeMoodStore) QueryMoodEntries(userID domain.UserID, q domain.MoodQuery) ([]*domain.MoodEntry, error) {
	f.lastQuery = q
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	// newest first, like the real stores
	out := make([]*domain.MoodEntry, 0, len(f.entries))
	for i := len(f.entries) - 1; i >= 0; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}

func TestLogPersistsValidScore(t *testing.T) {
	store := &fakeMoodStore{}
	svc := mood.NewService(store, nil)

	insight, err := svc.Log(context.Background(), mood.LogInput{
		UserID: "u1",
		Score:  7,
		Label:  "calm",
	})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if len(store.entries) != 1 {
		t.Fatalf("expected exactly one persisted entry, got %d", len(store.entries))
	}
	if store.entries[0].Score != 7 {
		t.Fatalf("expected score 7, got %d", store.entries[0].Score)
	}
	if insight == nil || insight.Message == "" {
		t.Fatal("expected a non-empty insight")
	}
}

func TestLogRejectsOutOfRangeScores(t *testing.T) {
	for _, score := range []int{0, -3, 11, 100} {
		store := &fakeMoodStore{}
		svc := mood.NewService(store, nil)

		_, err := svc.Log(context.Background(), mood.LogInput{UserID: "u1", Score: score})

		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("score %d: expected ValidationError, got %v", score, err)
		}
		if len(store.entries) != 0 {
			t.Fatalf("score %d: expected nothing persisted, got %d entries", score, len(store.entries))
		}
	}
}

func TestLogRejectsEmptyUser(t *testing.T) {
	svc := mood.NewService(&fakeMoodStore{}, nil)

	_, err := svc.Log(context.Background(), mood.LogInput{Score: 5})

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestLogInsightUsesTrailingWeek(t *testing.T) {
	store := &fakeMoodStore{}
	svc := mood.NewService(store, nil)

	if _, err := svc.Log(context.Background(), mood.LogInput{UserID: "u1", Score: 5}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	if store.lastQuery.Since.IsZero() {
		t.Fatal("expected insight query to be windowed")
	}
	window := time.Since(store.lastQuery.Since)
	if window < 6*24*time.Hour || window > 8*24*time.Hour {
		t.Fatalf("expected a ~7 day window, got %v", window)
	}
}

func TestLogInsightDegradesOnQueryFailure(t *testing.T) {
	store := &fakeMoodStore{queryErr: errors.New("store down")}
	svc := mood.NewService(store, nil)

	insight, err := svc.Log(context.Background(), mood.LogInput{UserID: "u1", Score: 5})
	if err != nil {
		t.Fatalf("Log should not fail when only the insight query fails: %v", err)
	}
	if insight.Trends != nil {
		t.Fatalf("expected no trend on degraded insight, got %+v", insight.Trends)
	}
}

func TestLogSurfacesAppendFailure(t *testing.T) {
	store := &fakeMoodStore{appendErr: &domain.StoreError{Op: "append_mood_entry", Err: errors.New("down")}}
	svc := mood.NewService(store, nil)

	if _, err := svc.Log(context.Background(), mood.LogInput{UserID: "u1", Score: 5}); err == nil {
		t.Fatal("expected append failure to surface")
	}
}

func TestHistoryDaysFilter(t *testing.T) {
	store := &fakeMoodStore{}
	svc := mood.NewService(store, nil)

	_, _, err := svc.History(context.Background(), "u1", mood.HistoryQuery{Days: 30})
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if store.lastQuery.Since.IsZero() {
		t.Fatal("expected days filter to set the query window")
	}
	if !store.lastQuery.Until.IsZero() {
		t.Fatal("days filter should leave the upper bound open")
	}
}

func TestHistoryStatisticsOverReturnedEntries(t *testing.T) {
	store := memory.NewMoodStore()
	svc := mood.NewService(store, nil)

	for _, score := range []int{2, 8} {
		if _, err := svc.Log(context.Background(), mood.LogInput{UserID: "u1", Score: score}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	entries, stats, err := svc.History(context.Background(), "u1", mood.HistoryQuery{})
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if stats.Count != 2 || stats.Average == nil || *stats.Average != 5 {
		t.Fatalf("unexpected statistics: %+v", stats)
	}
}
