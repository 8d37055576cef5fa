package mood

import "github.com/calmlinehq/calmline/internal/domain"

// minInsightEntries is the smallest window that yields a trend.
const minInsightEntries = 3

const (
	msgNotEnoughData = "Log more moods to receive personalized insights"
	msgImproving     = "Your mood appears to be improving over the past few days."
	msgDeclining     = "Your mood seems to be lower than usual. Consider engaging in activities that typically boost your mood."
	msgStableHigh    = "Your mood has been consistently positive recently."
	msgStableLow     = "Your mood has been lower recently. Consider reaching out for support if this continues."
	msgStable        = "Your mood has been relatively stable."
)

// ComputeInsight classifies the mood trend over a time-ordered (oldest first)
// entry window, normally the trailing 7 days.
//
// The direction heuristic deliberately compares only the first entry against
// the last two, whatever the window length — it is a cheap signal, not a
// regression, and the observable behavior is part of the contract.
func ComputeInsight(entries []*domain.MoodEntry) domain.MoodInsight {
	if len(entries) < minInsightEntries {
		return domain.MoodInsight{Message: msgNotEnoughData}
	}

	scores := make([]int, len(entries))
	sum := 0
	for i, e := range entries {
		scores[i] = e.Score
		sum += e.Score
	}
	average := float64(sum) / float64(len(scores))

	first := scores[0]
	last := scores[len(scores)-1]
	secondLast := scores[len(scores)-2]

	direction := domain.TrendStable
	switch {
	case last > first && secondLast > first:
		direction = domain.TrendImproving
	case last < first && secondLast < first:
		direction = domain.TrendDeclining
	}

	var message string
	switch direction {
	case domain.TrendImproving:
		message = msgImproving
	case domain.TrendDeclining:
		message = msgDeclining
	default:
		switch {
		case average >= 7:
			message = msgStableHigh
		case average <= 4:
			message = msgStableLow
		default:
			message = msgStable
		}
	}

	return domain.MoodInsight{
		Message: message,
		Trends: &domain.MoodTrend{
			Direction: direction,
			Average:   average,
		},
	}
}

// SummaryStatistics summarizes an arbitrary entry list (not time-windowed).
// An empty list yields count 0 with no average/highest/lowest values.
func SummaryStatistics(entries []*domain.MoodEntry) domain.MoodStatistics {
	if len(entries) == 0 {
		return domain.MoodStatistics{}
	}

	sum := 0
	highest := entries[0].Score
	lowest := entries[0].Score
	for _, e := range entries {
		sum += e.Score
		if e.Score > highest {
			highest = e.Score
		}
		if e.Score < lowest {
			lowest = e.Score
		}
	}
	average := float64(sum) / float64(len(entries))

	return domain.MoodStatistics{
		Average: &average,
		Highest: &highest,
		Lowest:  &lowest,
		Count:   len(entries),
	}
}
