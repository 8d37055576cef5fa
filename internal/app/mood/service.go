package mood

import (
	"context"
	"time"

	"github.com/calmlinehq/calmline/internal/domain"
	"github.com/calmlinehq/calmline/internal/observability"
)

// insightWindow is the trailing span of entries feeding ComputeInsight.
const insightWindow = 7 * 24 * time.Hour

const msgInsightsUnavailable = "Unable to generate insights at this time"

// Service owns mood logging and history on top of a MoodStore.
type Service struct {
	store   domain.MoodStore
	metrics *observability.Metrics
	now     func() time.Time
}

func NewService(store domain.MoodStore, metrics *observability.Metrics) *Service {
	return &Service{
		store:   store,
		metrics: metrics,
		now:     time.Now,
	}
}

type LogInput struct {
	UserID domain.UserID
	Score  int
	Label  string
	Notes  string
}

// Log validates and persists one mood entry, then computes the trailing
// 7-day insight. Validation happens before any persistence; out-of-range
// scores are rejected, never clamped.
func (s *Service) Log(ctx context.Context, in LogInput) (*domain.MoodInsight, error) {
	if in.UserID == "" {
		return nil, &domain.ValidationError{Field: "userId", Reason: "must not be empty"}
	}
	if in.Score < domain.MoodScoreMin || in.Score > domain.MoodScoreMax {
		return nil, &domain.ValidationError{Field: "score", Reason: "must be between 1 and 10"}
	}

	log := observability.LoggerFromContext(ctx).With("user_id", in.UserID)

	entry := &domain.MoodEntry{
		UserID: in.UserID,
		Score:  in.Score,
		Label:  in.Label,
		Notes:  in.Notes,
	}
	if _, err := s.store.AppendMoodEntry(entry); err != nil {
		log.Error("failed to store mood entry", "error", err)
		if s.metrics != nil {
			s.metrics.StoreErrors.WithLabelValues("append_mood_entry").Inc()
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.MoodEntries.Inc()
	}
	log.Info("mood logged", "score", in.Score, "label", in.Label)

	insight := s.insight(ctx, in.UserID)
	return &insight, nil
}

// insight computes the 7-day trend. Failures degrade to a placeholder
// message; they never fail the log call that triggered them.
func (s *Service) insight(ctx context.Context, userID domain.UserID) domain.MoodInsight {
	since := s.now().Add(-insightWindow)

	entries, err := s.store.QueryMoodEntries(userID, domain.MoodQuery{Since: since})
	if err != nil {
		observability.LoggerFromContext(ctx).Error("failed to load entries for insight", "user_id", userID, "error", err)
		if s.metrics != nil {
			s.metrics.StoreErrors.WithLabelValues("query_mood_entries").Inc()
		}
		return domain.MoodInsight{Message: msgInsightsUnavailable}
	}

	// the store returns newest first; the insight window is oldest first
	reverseEntries(entries)
	return ComputeInsight(entries)
}

type HistoryQuery struct {
	Days  int
	Since time.Time
	Until time.Time
}

// History returns the user's mood entries (newest first) within the query
// window plus summary statistics over the returned set.
func (s *Service) History(ctx context.Context, userID domain.UserID, q HistoryQuery) ([]*domain.MoodEntry, domain.MoodStatistics, error) {
	if userID == "" {
		return nil, domain.MoodStatistics{}, &domain.ValidationError{Field: "userId", Reason: "must not be empty"}
	}

	storeQuery := domain.MoodQuery{Since: q.Since, Until: q.Until}
	if q.Days > 0 {
		storeQuery.Since = s.now().AddDate(0, 0, -q.Days)
		storeQuery.Until = time.Time{}
	}

	entries, err := s.store.QueryMoodEntries(userID, storeQuery)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("failed to load mood history", "user_id", userID, "error", err)
		if s.metrics != nil {
			s.metrics.StoreErrors.WithLabelValues("query_mood_entries").Inc()
		}
		return nil, domain.MoodStatistics{}, err
	}

	return entries, SummaryStatistics(entries), nil
}

func reverseEntries(entries []*domain.MoodEntry) {
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
}
