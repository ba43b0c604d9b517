package engine

import (
	"slices"
	"sort"
	"strings"

	"github.com/SAP-F-2025/flashquiz-service/internal/models"
)

// HasPreviousAttempts reports whether username has a scored result in doc.
func HasPreviousAttempts(doc *models.QuizDocument, username string) bool {
	if doc == nil {
		return false
	}
	for _, r := range doc.SessionHistory {
		if sameUser(r.Username, username) && r.TotalQuestions > 0 {
			return true
		}
	}
	return false
}

// UserHistory returns the results of username, newest first.
func UserHistory(doc *models.QuizDocument, username string) []models.SessionResult {
	history := []models.SessionResult{}
	if doc == nil {
		return history
	}
	for _, r := range doc.SessionHistory {
		if sameUser(r.Username, username) {
			history = append(history, r)
		}
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date.After(history[j].Date)
	})
	return history
}

// ComparePerformance compares current with earlier results of the same user.
// previous is expected newest first, as returned by UserHistory.
func ComparePerformance(current *models.SessionResult, previous []models.SessionResult) models.HistoryComparison {
	if current == nil || len(previous) == 0 {
		return models.HistoryComparison{
			Available: false,
			Message:   "No previous attempts to compare",
		}
	}

	last := previous[0].ScorePercent
	best := last
	for _, r := range previous[1:] {
		best = max(best, r.ScorePercent)
	}

	scores := make([]float64, 0, len(previous)+1)
	scores = append(scores, current.ScorePercent)
	for _, r := range previous {
		scores = append(scores, r.ScorePercent)
	}
	slices.SortFunc(scores, func(a, b float64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		}
		return 0
	})

	return models.HistoryComparison{
		Available: true,
		Current:   current.ScorePercent,
		Last:      last,
		Best:      best,
		Improvement: &models.Improvement{
			FromLast: round2(current.ScorePercent - last),
			FromBest: round2(current.ScorePercent - best),
		},
		Rank: &models.HistoryRank{
			Current: slices.Index(scores, current.ScorePercent) + 1,
			Total:   len(scores),
		},
	}
}

func sameUser(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}
