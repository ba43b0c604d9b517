package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/SAP-F-2025/flashquiz-service/internal/cache"
	"github.com/SAP-F-2025/flashquiz-service/internal/engine"
	"github.com/SAP-F-2025/flashquiz-service/internal/events"
	"github.com/SAP-F-2025/flashquiz-service/internal/models"
	"github.com/SAP-F-2025/flashquiz-service/internal/repositories"
	"github.com/SAP-F-2025/flashquiz-service/internal/shuffle"
	"github.com/SAP-F-2025/flashquiz-service/internal/stats"
	"github.com/SAP-F-2025/flashquiz-service/internal/timer"
)

const timeUpTimeout = 10 * time.Second

// sessionRecord is what the snapshot store keeps per session id.
type sessionRecord struct {
	DocumentName string               `json:"document_name,omitempty"`
	Document     *models.QuizDocument `json:"document,omitempty"`
	Recorded     bool                 `json:"recorded"`
	State        json.RawMessage      `json:"state"`
}

// mutate runs fn under the session lock and stores a fresh snapshot when it succeeds.
func (s *sessionService) mutate(ctx context.Context, id, op string, fn func(*hostedSession) error) error {
	h, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	if err := fn(h); err != nil {
		return wrapOp(op, err)
	}
	if err := s.recordResult(ctx, h); err != nil {
		return wrapOp(op, err)
	}
	s.persist(ctx, h)
	return nil
}

func (s *sessionService) read(ctx context.Context, id, op string, fn func(*hostedSession) error) error {
	h, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return wrapOp(op, fn(h))
}

// get returns the hosted session, recovering it from its snapshot when this
// process does not know it.
func (s *sessionService) get(ctx context.Context, id string) (*hostedSession, error) {
	s.mu.RLock()
	h, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return h, nil
	}

	recovered, err := s.recover(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[id]; ok {
		return existing, nil
	}
	s.sessions[id] = recovered

	recovered.mu.Lock()
	s.armTimer(recovered)
	recovered.mu.Unlock()

	s.logger.Info("Session recovered from snapshot", "session_id", id)
	return recovered, nil
}

func (s *sessionService) recover(ctx context.Context, id string) (*hostedSession, error) {
	data, err := s.repo.Snapshot().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("failed to load session snapshot: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("corrupt session snapshot %s: %w", id, err)
	}

	doc := rec.Document
	if rec.DocumentName != "" {
		if doc, err = s.repo.Document().Get(ctx, rec.DocumentName); err != nil {
			return nil, mapRepoError(err, rec.DocumentName)
		}
	}

	eng := s.newEngine(s.opts.ShuffleSeed)
	if err := eng.Deserialize(rec.State, doc); err != nil {
		return nil, wrapOp("recover session", err)
	}

	return &hostedSession{
		id:           id,
		documentName: rec.DocumentName,
		engine:       eng,
		recorded:     rec.Recorded,
	}, nil
}

func (s *sessionService) register(h *hostedSession) {
	s.mu.Lock()
	s.sessions[h.id] = h
	s.mu.Unlock()
}

// loadDocument resolves the stored document by name, or falls back to the inline one.
func (s *sessionService) loadDocument(ctx context.Context, name string, inline *models.QuizDocument) (*models.QuizDocument, error) {
	if name == "" {
		return inline, nil
	}
	doc, err := s.repo.Document().Get(ctx, name)
	if err != nil {
		return nil, mapRepoError(err, name)
	}
	return doc, nil
}

func (s *sessionService) newEngine(seed int64) *engine.Engine {
	opts := []engine.Option{
		engine.WithSource(shuffle.NewSource(seed)),
		engine.WithLogger(s.logger.With("component", "engine")),
		engine.WithValidator(s.validator),
	}
	if s.opts.Clock != nil {
		opts = append(opts, engine.WithClock(s.opts.Clock))
	}
	return engine.New(opts...)
}

func (s *sessionService) sessionResponse(h *hostedSession) (*SessionResponse, error) {
	item, err := h.engine.CurrentItem()
	if err != nil {
		return nil, err
	}
	status, err := h.engine.Status()
	if err != nil {
		return nil, err
	}

	return &SessionResponse{
		ID:           h.id,
		DocumentName: h.documentName,
		Username:     h.engine.Username(),
		Title:        h.engine.Title(),
		Item:         item,
		Status:       status,
		HasHistory:   engine.HasPreviousAttempts(h.engine.Document(), h.engine.Username()),
	}, nil
}

// persist stores the snapshot. Failures are logged: the in-memory session stays authoritative.
func (s *sessionService) persist(ctx context.Context, h *hostedSession) {
	state, err := h.engine.Serialize()
	if err != nil {
		s.logger.Error("Failed to serialize session", "session_id", h.id, "error", err)
		return
	}

	rec := sessionRecord{
		DocumentName: h.documentName,
		Recorded:     h.recorded,
		State:        state,
	}
	if h.inline() {
		rec.Document = h.engine.Document()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		s.logger.Error("Failed to encode session snapshot", "session_id", h.id, "error", err)
		return
	}
	if err := s.repo.Snapshot().Save(ctx, h.id, data, s.opts.SnapshotTTL); err != nil {
		s.logger.Warn("Failed to store session snapshot", "session_id", h.id, "error", err)
	}
}

// recordResult appends the result of a finished session to its document history
// once. Sessions without questions have nothing to record.
func (s *sessionService) recordResult(ctx context.Context, h *hostedSession) error {
	if !h.engine.IsFinished() || h.recorded {
		return nil
	}

	result, err := h.engine.Results()
	if err != nil {
		return err
	}
	h.result = result

	if result.TotalQuestions == 0 {
		h.recorded = true
		return nil
	}

	if h.inline() {
		tracker := stats.NewTracker(h.engine.Document().SessionHistory, s.validator)
		if err := tracker.AddResult(h.engine.Document(), result); err != nil {
			return fmt.Errorf("failed to record result: %w", err)
		}
	} else {
		var history []models.SessionResult
		err := s.repo.Document().Update(ctx, h.documentName, func(doc *models.QuizDocument) error {
			tracker := stats.NewTracker(doc.SessionHistory, s.validator)
			if err := tracker.AddResult(doc, result); err != nil {
				return fmt.Errorf("failed to record result: %w", err)
			}
			history = doc.SessionHistory
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to save result: %w", mapRepoError(err, h.documentName))
		}
		cache.InvalidateDocumentCache(ctx, s.cache, h.documentName)
		h.engine.Document().SessionHistory = history
	}
	h.recorded = true

	s.publish(ctx, events.SessionFinished, events.SessionFinishedData{
		SessionID:    h.id,
		Document:     h.documentName,
		Username:     result.Username,
		ScorePercent: result.ScorePercent,
		LetterGrade:  result.LetterGrade,
		Correct:      result.Correct,
		Total:        result.TotalQuestions,
	})
	s.logger.Info("Session finished",
		"session_id", h.id,
		"document", h.documentName,
		"username", result.Username,
		"score", result.ScorePercent)

	return nil
}

// comparison ranks the finished result against the user's earlier attempts.
func (s *sessionService) comparison(ctx context.Context, h *hostedSession) models.HistoryComparison {
	if h.result == nil {
		return models.HistoryComparison{Message: "no result available"}
	}

	doc := h.engine.Document()
	if !h.inline() {
		stored, err := s.repo.Document().Get(ctx, h.documentName)
		if err != nil {
			s.logger.Warn("Failed to load history for comparison", "document", h.documentName, "error", err)
			return models.HistoryComparison{Message: "history unavailable"}
		}
		doc = stored
	}

	var previous []models.SessionResult
	for _, r := range engine.UserHistory(doc, h.result.Username) {
		if !r.Date.Equal(h.result.Date) {
			previous = append(previous, r)
		}
	}
	return engine.ComparePerformance(h.result, previous)
}

// ===== QUESTION TIMER =====

// armTimer starts a fresh countdown for the current question. Earlier
// countdowns are invalidated through timerGen.
func (s *sessionService) armTimer(h *hostedSession) {
	if !s.opts.QuestionTimerEnabled {
		return
	}
	s.stopTimer(h)
	if h.engine.IsFinished() || h.engine.Mode() != models.ModeQuiz {
		return
	}

	seconds := int(math.Ceil(h.engine.TimerSeconds()))
	if seconds <= 0 {
		return
	}

	gen := h.timerGen
	h.countdown = timer.New(seconds, func() { s.onTimeUp(h, gen) })
	h.countdown.Start(s.ctx)
	if h.engine.IsPaused() {
		h.countdown.Pause()
	}
}

func (s *sessionService) stopTimer(h *hostedSession) {
	h.timerGen++
	if h.countdown != nil {
		h.countdown.Stop()
		h.countdown = nil
	}
}

// onTimeUp moves past a question whose time ran out.
func (s *sessionService) onTimeUp(h *hostedSession, gen int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || gen != h.timerGen || h.engine.IsFinished() || h.engine.IsPaused() {
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, timeUpTimeout)
	defer cancel()

	s.logger.Info("Question time is up", "session_id", h.id, "question", h.engine.CurrentIndex()+1)

	moved, err := h.engine.Next()
	if err != nil {
		s.logger.Warn("Failed to advance after time up", "session_id", h.id, "error", err)
		return
	}
	if _, err := s.afterMove(ctx, h, moved); err != nil {
		s.logger.Error("Failed to settle session after time up", "session_id", h.id, "error", err)
	}
	s.persist(ctx, h)
}

// publish sends an event. Delivery failures never fail the session operation.
func (s *sessionService) publish(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, s.opts.EventsTopic, events.NewEvent(eventType, data)); err != nil {
		s.logger.Warn("Failed to publish event", "type", eventType, "error", err)
	}
}
