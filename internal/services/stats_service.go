package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/flashquiz-service/internal/cache"
	"github.com/SAP-F-2025/flashquiz-service/internal/events"
	"github.com/SAP-F-2025/flashquiz-service/internal/models"
	"github.com/SAP-F-2025/flashquiz-service/internal/repositories"
	"github.com/SAP-F-2025/flashquiz-service/internal/stats"
	"github.com/SAP-F-2025/flashquiz-service/internal/validator"
)

type statsService struct {
	repo       repositories.Repository
	cache      *cache.CacheManager
	publisher  events.EventPublisher
	logger     *slog.Logger
	validator  *validator.Validator
	topic      string
	maxAgeDays int
	clock      func() time.Time
}

func NewStatsService(
	repo repositories.Repository,
	cm *cache.CacheManager,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	topic string,
	maxAgeDays int,
) StatsService {
	if topic == "" {
		topic = events.DefaultTopic
	}
	if maxAgeDays <= 0 {
		maxAgeDays = stats.DefaultMaxAgeDays
	}
	return &statsService{
		repo:       repo,
		cache:      cm,
		publisher:  publisher,
		logger:     logger,
		validator:  validator,
		topic:      topic,
		maxAgeDays: maxAgeDays,
		clock:      time.Now,
	}
}

func (s *statsService) tracker(ctx context.Context, document string) (*stats.Tracker, *models.QuizDocument, error) {
	doc, err := s.repo.Document().Get(ctx, document)
	if err != nil {
		return nil, nil, mapRepoError(err, document)
	}
	return stats.NewTracker(doc.SessionHistory, s.validator), doc, nil
}

func (s *statsService) userTracker(ctx context.Context, document, username string) (*stats.Tracker, string, error) {
	name, err := s.validator.ValidateUsername(username)
	if err != nil {
		return nil, "", err
	}
	t, _, err := s.tracker(ctx, document)
	if err != nil {
		return nil, "", err
	}
	return t, name, nil
}

func (s *statsService) Leaderboard(ctx context.Context, document string) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := s.cache.Stats.CacheOrExecute(ctx, cache.LeaderboardKey(document), &entries, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		t, _, err := s.tracker(ctx, document)
		if err != nil {
			return nil, err
		}
		return t.Leaderboard(), nil
	})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	return entries, nil
}

func (s *statsService) UserStats(ctx context.Context, document, username string) ([]models.SessionResult, error) {
	t, name, err := s.userTracker(ctx, document, username)
	if err != nil {
		return nil, err
	}
	return t.UserStats(name), nil
}

func (s *statsService) Compare(ctx context.Context, document, username string) (*models.PerformanceComparison, error) {
	t, name, err := s.userTracker(ctx, document, username)
	if err != nil {
		return nil, err
	}
	return t.ComparePerformance(name), nil
}

func (s *statsService) Summary(ctx context.Context, document, username string) (*models.SummaryStats, error) {
	t, name, err := s.userTracker(ctx, document, username)
	if err != nil {
		return nil, err
	}
	return t.Summary(name), nil
}

func (s *statsService) Chart(ctx context.Context, document, username string) (*models.ChartData, error) {
	t, name, err := s.userTracker(ctx, document, username)
	if err != nil {
		return nil, err
	}
	return t.ChartData(name), nil
}

// Cleanup drops results older than maxAgeDays and keeps the previous history as a backup.
func (s *statsService) Cleanup(ctx context.Context, document string, maxAgeDays int) (*StatsCleanupResponse, error) {
	if maxAgeDays <= 0 {
		maxAgeDays = s.maxAgeDays
	}

	resp := &StatsCleanupResponse{}
	err := s.repo.Document().Update(ctx, document, func(doc *models.QuizDocument) error {
		t := stats.NewTracker(doc.SessionHistory, s.validator)
		backup := t.Cleanup(doc, maxAgeDays, s.clock())
		resp.Removed = len(backup) - len(doc.SessionHistory)
		resp.Kept = len(doc.SessionHistory)
		if resp.Removed == 0 {
			return repositories.ErrNoChange
		}
		if err := s.repo.Document().SaveStatsBackup(ctx, document, backup); err != nil {
			return fmt.Errorf("failed to back up stats: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err, document)
	}
	if resp.Removed == 0 {
		return resp, nil
	}
	cache.InvalidateDocumentCache(ctx, s.cache, document)

	event := events.NewEvent(events.StatsCleaned, events.StatsCleanedData{
		Document:   document,
		MaxAgeDays: maxAgeDays,
		Removed:    resp.Removed,
		Kept:       resp.Kept,
	})
	if err := s.publisher.Publish(ctx, s.topic, event); err != nil {
		s.logger.Warn("Failed to publish event", "type", events.StatsCleaned, "error", err)
	}

	s.logger.Info("Stats cleaned",
		"document", document,
		"max_age_days", maxAgeDays,
		"removed", resp.Removed,
		"kept", resp.Kept)
	return resp, nil
}

// RestoreBackup puts back the history saved by the last cleanup. Results
// recorded since the cleanup are kept.
func (s *statsService) RestoreBackup(ctx context.Context, document string) (*StatsCleanupResponse, error) {
	var kept int
	err := s.repo.Document().Update(ctx, document, func(doc *models.QuizDocument) error {
		backup, err := s.repo.Document().LoadStatsBackup(ctx, document)
		if err != nil {
			return err
		}
		merged := mergeHistory(backup, doc.SessionHistory)
		stats.NewTracker(doc.SessionHistory, s.validator).Restore(doc, merged)
		kept = len(merged)
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err, document)
	}
	if err := s.repo.Document().DeleteStatsBackup(ctx, document); err != nil {
		s.logger.Warn("Failed to delete stats backup", "document", document, "error", err)
	}
	cache.InvalidateDocumentCache(ctx, s.cache, document)

	s.logger.Info("Stats restored from backup", "document", document, "results", kept)
	return &StatsCleanupResponse{Kept: kept}, nil
}

// mergeHistory appends to backup the current results it does not already hold.
func mergeHistory(backup, current []models.SessionResult) []models.SessionResult {
	type key struct {
		username string
		date     int64
	}
	seen := make(map[key]bool, len(backup))
	for _, r := range backup {
		seen[key{r.Username, r.Date.UnixNano()}] = true
	}

	merged := append([]models.SessionResult(nil), backup...)
	for _, r := range current {
		if !seen[key{r.Username, r.Date.UnixNano()}] {
			merged = append(merged, r)
		}
	}
	return merged
}
