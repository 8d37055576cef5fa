package domain

import "time"

// Mood scores are a 1-10 scale; anything else is rejected before persistence.
const (
	MoodScoreMin = 1
	MoodScoreMax = 10
)

// MoodEntry is one logged mood, owned by a user's mood log and independent
// of the conversation. The store assigns ID and timestamp.
type MoodEntry struct {
	ID        MoodEntryID `json:"id"`
	UserID    UserID      `json:"-"`
	Score     int         `json:"score"`
	Label     string      `json:"label,omitempty"`
	Notes     string      `json:"notes,omitempty"`
	CreatedAt time.Time   `json:"timestamp"`
}

// TrendDirection classifies how mood moved across the insight window.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// MoodTrend is the computed direction plus the window average.
type MoodTrend struct {
	Direction TrendDirection `json:"direction"`
	Average   float64        `json:"average"`
}

// MoodInsight is computed on demand from the trailing 7-day window.
// Trends is nil when there is not enough data.
type MoodInsight struct {
	Message string     `json:"message"`
	Trends  *MoodTrend `json:"trends"`
}

// MoodStatistics summarizes an arbitrary entry list. Average, Highest and
// Lowest are nil for an empty list rather than zero.
type MoodStatistics struct {
	Average *float64 `json:"average"`
	Highest *int     `json:"highest"`
	Lowest  *int     `json:"lowest"`
	Count   int      `json:"count"`
}
