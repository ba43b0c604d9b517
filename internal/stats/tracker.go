// Package stats aggregates the session results stored in a quiz document into
// leaderboards, per-user comparisons and chart series.
package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/SAP-F-2025/flashquiz-service/internal/models"
	"github.com/SAP-F-2025/flashquiz-service/internal/validator"
)

const DefaultMaxAgeDays = 90

const (
	DirectionNoChange    = "no-change"
	DirectionImprovement = "improvement"
	DirectionDecline     = "decline"
	DirectionSlower      = "slower"
	DirectionFaster      = "faster"
	DirectionMorePauses  = "more-pauses"
	DirectionLessPauses  = "less-pauses"

	TrendNoData    = "no-data"
	TrendImproving = "improving"
	TrendDeclining = "declining"

	AreaWrongAnswers = "wrong-answers"
	AreaSkipped      = "skipped-questions"
	AreaScoreDecline = "score-decline"
)

const (
	scoreThreshold  = 2.0
	timeThreshold   = 5.0
	pauseThreshold  = 0.5
	trendThreshold  = 5.0
	chartDateLayout = "2006-01-02"
)

// Tracker indexes one document's results. It is not safe for concurrent use.
type Tracker struct {
	validator   *validator.Validator
	results     []models.SessionResult
	byUser      map[string][]models.SessionResult
	leaderboard []models.LeaderboardEntry
}

func NewTracker(results []models.SessionResult, v *validator.Validator) *Tracker {
	if v == nil {
		v = validator.New()
	}
	t := &Tracker{validator: v}
	t.load(results)
	return t
}

func (t *Tracker) load(results []models.SessionResult) {
	t.results = results
	t.byUser = make(map[string][]models.SessionResult)
	for _, r := range results {
		t.byUser[r.Username] = append(t.byUser[r.Username], r)
	}
	t.leaderboard = buildLeaderboard(results)
}

// buildLeaderboard keeps the best result per user: higher score, then more correct answers.
func buildLeaderboard(results []models.SessionResult) []models.LeaderboardEntry {
	best := make(map[string]models.SessionResult)
	for _, r := range results {
		cur, ok := best[r.Username]
		if !ok || cur.ScorePercent < r.ScorePercent ||
			(cur.ScorePercent == r.ScorePercent && cur.Correct < r.Correct) {
			best[r.Username] = r
		}
	}

	ranked := make([]models.SessionResult, 0, len(best))
	for _, r := range best {
		ranked = append(ranked, r)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.ScorePercent != b.ScorePercent {
			return a.ScorePercent > b.ScorePercent
		}
		if a.Correct != b.Correct {
			return a.Correct > b.Correct
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.Username < b.Username
	})

	entries := make([]models.LeaderboardEntry, len(ranked))
	for i, r := range ranked {
		entries[i] = models.LeaderboardEntry{
			Rank:           i + 1,
			Username:       r.Username,
			ScorePercent:   r.ScorePercent,
			CorrectAnswers: r.Correct,
			TotalQuestions: r.TotalQuestions,
			Date:           r.Date,
		}
	}
	return entries
}

func (t *Tracker) Leaderboard() []models.LeaderboardEntry {
	return t.leaderboard
}

// AddResult validates r, appends it to the document history and reindexes.
func (t *Tracker) AddResult(doc *models.QuizDocument, r *models.SessionResult) error {
	if doc == nil {
		return fmt.Errorf("quiz document is required")
	}
	if err := t.validator.ValidateResult(r); err != nil {
		return err
	}

	doc.SessionHistory = append(doc.SessionHistory, *r)
	t.load(doc.SessionHistory)
	return nil
}

// UserStats returns every result of username in stored order.
func (t *Tracker) UserStats(username string) []models.SessionResult {
	username = strings.TrimSpace(username)
	if username == "" {
		return []models.SessionResult{}
	}
	stats := t.byUser[username]
	out := make([]models.SessionResult, len(stats))
	copy(out, stats)
	return out
}

// ComparePerformance compares the latest result of username with the average
// of the earlier ones.
func (t *Tracker) ComparePerformance(username string) *models.PerformanceComparison {
	stats := t.UserStats(username)
	if len(stats) < 2 {
		return &models.PerformanceComparison{
			HasEnoughData: false,
			Message:       "not enough data to compare",
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Date.After(stats[j].Date)
	})
	latest := stats[0]
	previous := stats[1:]

	avgScore := average(previous, func(r models.SessionResult) float64 { return r.ScorePercent })
	avgTime := average(previous, func(r models.SessionResult) float64 { return r.AvgTimePerQuestionSec })
	avgPauses := average(previous, func(r models.SessionResult) float64 { return float64(r.Pauses) })

	scoreChange := latest.ScorePercent - avgScore
	timeChange := latest.AvgTimePerQuestionSec - avgTime
	pausesChange := float64(latest.Pauses) - avgPauses

	return &models.PerformanceComparison{
		HasEnoughData: true,
		LatestStat:    &latest,
		PreviousStats: len(previous),
		ScoreChange: classify(scoreChange, scoreThreshold,
			DirectionImprovement, DirectionDecline,
			"score improved by %.1f%%", "score dropped by %.1f%%", "score unchanged"),
		TimeChange: classify(timeChange, timeThreshold,
			DirectionSlower, DirectionFaster,
			"average answer time grew by %.1f s", "average answer time shrank by %.1f s", "average answer time unchanged"),
		PausesChange: classify(pausesChange, pauseThreshold,
			DirectionMorePauses, DirectionLessPauses,
			"%.1f more pauses", "%.1f fewer pauses", "number of pauses unchanged"),
		ImprovementAreas: improvementAreas(latest, avgScore),
	}
}

func classify(value, threshold float64, up, down, upMsg, downMsg, sameMsg string) *models.Change {
	c := &models.Change{Value: value, Direction: DirectionNoChange, Message: sameMsg}
	switch {
	case value > threshold:
		c.Direction = up
		c.Message = fmt.Sprintf(upMsg, math.Abs(value))
	case value < -threshold:
		c.Direction = down
		c.Message = fmt.Sprintf(downMsg, math.Abs(value))
	}
	return c
}

func improvementAreas(latest models.SessionResult, avgPreviousScore float64) []models.ImprovementArea {
	areas := []models.ImprovementArea{}

	if n := len(latest.WrongQuestionsList); n > 0 {
		areas = append(areas, models.ImprovementArea{
			Type:    AreaWrongAnswers,
			Count:   n,
			Message: fmt.Sprintf("%d questions need review", n),
		})
	}
	if latest.Skipped > 0 {
		areas = append(areas, models.ImprovementArea{
			Type:    AreaSkipped,
			Count:   latest.Skipped,
			Message: fmt.Sprintf("%d questions were skipped", latest.Skipped),
		})
	}
	if latest.ScorePercent < avgPreviousScore {
		drop := math.Round((avgPreviousScore-latest.ScorePercent)*10) / 10
		areas = append(areas, models.ImprovementArea{
			Type:    AreaScoreDecline,
			Change:  drop,
			Message: fmt.Sprintf("score is %.1f%% below your average", drop),
		})
	}
	return areas
}

// Summary condenses the results of username.
func (t *Tracker) Summary(username string) *models.SummaryStats {
	stats := t.UserStats(username)
	if len(stats) == 0 {
		return &models.SummaryStats{ImprovementTrend: TrendNoData}
	}

	sortByDateAsc(stats)
	best := stats[0].ScorePercent
	for _, r := range stats[1:] {
		best = math.Max(best, r.ScorePercent)
	}
	avg := average(stats, func(r models.SessionResult) float64 { return r.ScorePercent })

	first := stats[0].ScorePercent
	last := stats[len(stats)-1]
	trend := DirectionNoChange
	switch {
	case last.ScorePercent > first+trendThreshold:
		trend = TrendImproving
	case last.ScorePercent < first-trendThreshold:
		trend = TrendDeclining
	}

	lastAttempt := last.Date
	return &models.SummaryStats{
		TotalAttempts:    len(stats),
		AverageScore:     int(math.Round(avg)),
		BestScore:        int(math.Round(best)),
		ImprovementTrend: trend,
		LastAttempt:      &lastAttempt,
	}
}

// ChartData returns date-ascending series for username, or nil without results.
func (t *Tracker) ChartData(username string) *models.ChartData {
	stats := t.UserStats(username)
	if len(stats) == 0 {
		return nil
	}

	sortByDateAsc(stats)
	data := &models.ChartData{
		Labels:         make([]string, len(stats)),
		Scores:         make([]float64, len(stats)),
		Times:          make([]float64, len(stats)),
		CorrectAnswers: make([]int, len(stats)),
		TotalQuestions: make([]int, len(stats)),
	}
	for i, r := range stats {
		data.Labels[i] = r.Date.Format(chartDateLayout)
		data.Scores[i] = r.ScorePercent
		data.Times[i] = r.AvgTimePerQuestionSec
		data.CorrectAnswers[i] = r.Correct
		data.TotalQuestions[i] = r.TotalQuestions
	}
	return data
}

// Cleanup drops results older than maxAgeDays from doc and returns the full
// history as it was before, for backup. maxAgeDays <= 0 uses DefaultMaxAgeDays.
func (t *Tracker) Cleanup(doc *models.QuizDocument, maxAgeDays int, now time.Time) []models.SessionResult {
	if doc == nil || len(doc.SessionHistory) == 0 {
		return nil
	}
	if maxAgeDays <= 0 {
		maxAgeDays = DefaultMaxAgeDays
	}
	maxAge := time.Duration(maxAgeDays) * 24 * time.Hour

	backup := make([]models.SessionResult, len(doc.SessionHistory))
	copy(backup, doc.SessionHistory)

	kept := make([]models.SessionResult, 0, len(doc.SessionHistory))
	for _, r := range doc.SessionHistory {
		if now.Sub(r.Date) < maxAge {
			kept = append(kept, r)
		}
	}
	doc.SessionHistory = kept
	t.load(kept)
	return backup
}

// Restore replaces the history of doc with backup.
func (t *Tracker) Restore(doc *models.QuizDocument, backup []models.SessionResult) {
	doc.SessionHistory = backup
	t.load(backup)
}

func average(results []models.SessionResult, field func(models.SessionResult) float64) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += field(r)
	}
	return sum / float64(len(results))
}

func sortByDateAsc(results []models.SessionResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Date.Before(results[j].Date)
	})
}
