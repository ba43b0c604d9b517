package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/flashquiz-service/internal/cache"
	"github.com/SAP-F-2025/flashquiz-service/internal/engine"
	"github.com/SAP-F-2025/flashquiz-service/internal/events"
	"github.com/SAP-F-2025/flashquiz-service/internal/models"
	"github.com/SAP-F-2025/flashquiz-service/internal/repositories"
	"github.com/SAP-F-2025/flashquiz-service/internal/timer"
	"github.com/SAP-F-2025/flashquiz-service/internal/validator"
)

// hostedSession is one engine plus what the service tracks around it.
// Every field is guarded by mu.
type hostedSession struct {
	mu           sync.Mutex
	id           string
	documentName string
	engine       *engine.Engine

	countdown *timer.Countdown
	timerGen  int

	recorded bool
	result   *models.SessionResult
	closed   bool
}

// inline reports whether the session runs over a document sent with the request.
func (h *hostedSession) inline() bool {
	return h.documentName == ""
}

type sessionService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	opts      SessionOptions

	// parent of every countdown goroutine
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*hostedSession
}

func NewSessionService(
	repo repositories.Repository,
	cm *cache.CacheManager,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	opts SessionOptions,
) SessionService {
	if opts.EventsTopic == "" {
		opts.EventsTopic = events.DefaultTopic
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &sessionService{
		repo:      repo,
		cache:     cm,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
		sessions:  make(map[string]*hostedSession),
	}
}

// ===== LIFECYCLE =====

func (s *sessionService) Start(ctx context.Context, req *StartSessionRequest) (*SessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	doc, err := s.loadDocument(ctx, req.DocumentName, req.Document)
	if err != nil {
		return nil, err
	}

	seed := s.opts.ShuffleSeed
	if req.Seed != nil {
		seed = *req.Seed
	}
	eng := s.newEngine(seed)
	if err := eng.Initialize(doc, req.Username); err != nil {
		return nil, wrapOp("start session", err)
	}

	h := &hostedSession{
		id:           uuid.NewString(),
		documentName: req.DocumentName,
		engine:       eng,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s.register(h)
	resp, err := s.sessionResponse(h)
	if err != nil {
		return nil, err
	}
	s.armTimer(h)
	s.persist(ctx, h)

	s.publish(ctx, events.SessionStarted, events.SessionStartedData{
		SessionID: h.id,
		Document:  h.documentName,
		Username:  eng.Username(),
		Mode:      string(eng.Mode()),
	})
	s.logger.Info("Session started",
		"session_id", h.id,
		"document", h.documentName,
		"username", eng.Username())

	return resp, nil
}

func (s *sessionService) Restore(ctx context.Context, req *RestoreSessionRequest) (*SessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	doc, err := s.loadDocument(ctx, req.DocumentName, req.Document)
	if err != nil {
		return nil, err
	}

	eng := s.newEngine(s.opts.ShuffleSeed)
	if err := eng.Deserialize([]byte(req.Snapshot), doc); err != nil {
		return nil, wrapOp("restore session", err)
	}

	h := &hostedSession{
		id:           uuid.NewString(),
		documentName: req.DocumentName,
		engine:       eng,
		// a finished snapshot was recorded by the session that produced it
		recorded: eng.IsFinished(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s.register(h)
	resp, err := s.sessionResponse(h)
	if err != nil {
		return nil, err
	}
	s.armTimer(h)
	s.persist(ctx, h)

	s.logger.Info("Session restored",
		"session_id", h.id,
		"document", h.documentName,
		"username", eng.Username())

	return resp, nil
}

func (s *sessionService) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	h, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		h.mu.Lock()
		h.closed = true
		s.stopTimer(h)
		h.mu.Unlock()
	}

	if err := s.repo.Snapshot().Delete(ctx, id); err != nil {
		s.logger.Warn("Failed to delete session snapshot", "session_id", id, "error", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	s.logger.Info("Session closed", "session_id", id)
	return nil
}

func (s *sessionService) Restart(ctx context.Context, id string) (*SessionResponse, error) {
	var resp *SessionResponse
	err := s.mutate(ctx, id, "restart session", func(h *hostedSession) error {
		if err := h.engine.Restart(); err != nil {
			return err
		}
		h.recorded = false
		h.result = nil
		s.armTimer(h)

		var err error
		resp, err = s.sessionResponse(h)
		if err != nil {
			return err
		}

		s.publish(ctx, events.SessionStarted, events.SessionStartedData{
			SessionID: h.id,
			Document:  h.documentName,
			Username:  h.engine.Username(),
			Mode:      string(h.engine.Mode()),
		})
		return nil
	})
	return resp, err
}

// Shutdown stops every countdown. Snapshots are already stored after each change.
func (s *sessionService) Shutdown(ctx context.Context) error {
	s.cancel()

	s.mu.RLock()
	hosted := make([]*hostedSession, 0, len(s.sessions))
	for _, h := range s.sessions {
		hosted = append(hosted, h)
	}
	s.mu.RUnlock()

	for _, h := range hosted {
		h.mu.Lock()
		s.stopTimer(h)
		h.mu.Unlock()
	}

	s.logger.Info("Session service stopped", "sessions", len(hosted))
	return nil
}

// ===== NAVIGATION =====

func (s *sessionService) CurrentItem(ctx context.Context, id string) (*models.ItemView, error) {
	var item *models.ItemView
	// viewing can build a choice set or hand over to the quiz, so it is a mutation
	err := s.mutate(ctx, id, "get current item", func(h *hostedSession) error {
		wasQuiz := h.engine.Mode() == models.ModeQuiz
		var err error
		item, err = h.engine.CurrentItem()
		if err == nil && !wasQuiz && h.engine.Mode() == models.ModeQuiz {
			s.armTimer(h)
		}
		return err
	})
	return item, err
}

func (s *sessionService) Next(ctx context.Context, id string) (*NavigationResponse, error) {
	return s.navigate(ctx, id, "next item", func(e *engine.Engine) (bool, error) {
		return e.Next()
	})
}

func (s *sessionService) Prev(ctx context.Context, id string) (*NavigationResponse, error) {
	return s.navigate(ctx, id, "previous item", func(e *engine.Engine) (bool, error) {
		return e.Prev()
	})
}

func (s *sessionService) GoTo(ctx context.Context, id string, index int) (*NavigationResponse, error) {
	return s.navigate(ctx, id, "go to item", func(e *engine.Engine) (bool, error) {
		if err := e.GoTo(index); err != nil {
			return false, err
		}
		return true, nil
	})
}

func (s *sessionService) Flip(ctx context.Context, id string) (*FlipResponse, error) {
	var resp *FlipResponse
	err := s.mutate(ctx, id, "flip flashcard", func(h *hostedSession) error {
		flipped, err := h.engine.FlipFlashcard()
		if err != nil {
			return err
		}
		item, err := h.engine.CurrentItem()
		if err != nil {
			return err
		}
		resp = &FlipResponse{IsFlipped: flipped, Item: item}
		return nil
	})
	return resp, err
}

// navigate runs move and reports where the session ended up.
func (s *sessionService) navigate(ctx context.Context, id, op string, move func(*engine.Engine) (bool, error)) (*NavigationResponse, error) {
	var resp *NavigationResponse
	err := s.mutate(ctx, id, op, func(h *hostedSession) error {
		moved, err := move(h.engine)
		if err != nil {
			return err
		}
		resp, err = s.afterMove(ctx, h, moved)
		return err
	})
	return resp, err
}

func (s *sessionService) afterMove(ctx context.Context, h *hostedSession, moved bool) (*NavigationResponse, error) {
	item, err := h.engine.CurrentItem()
	if err != nil {
		return nil, err
	}

	resp := &NavigationResponse{Moved: moved, Item: item}
	if h.engine.IsFinished() {
		s.stopTimer(h)
		if err := s.recordResult(ctx, h); err != nil {
			return nil, err
		}
		resp.Finished = true
		resp.Result = h.result
		return resp, nil
	}

	if moved {
		s.armTimer(h)
	}
	return resp, nil
}

// ===== ANSWERS =====

func (s *sessionService) Answer(ctx context.Context, id string, answer string) (*AnswerResponse, error) {
	var resp *AnswerResponse
	err := s.mutate(ctx, id, "answer question", func(h *hostedSession) error {
		item, err := h.engine.CurrentItem()
		if err != nil {
			return err
		}

		correct, err := h.engine.AnswerQuestion(answer)
		if err != nil {
			return err
		}
		s.stopTimer(h)

		status, err := h.engine.Status()
		if err != nil {
			return err
		}

		resp = &AnswerResponse{
			IsCorrect:     correct,
			CorrectAnswer: item.Question.CorrectAnswer,
			Explanation:   item.Question.Explanation,
			Status:        status,
		}

		s.publish(ctx, events.SessionAnswered, events.SessionAnsweredData{
			SessionID:     h.id,
			Username:      h.engine.Username(),
			QuestionIndex: item.Index,
			IsCorrect:     correct,
			Accuracy:      status.Accuracy,
		})
		return nil
	})
	return resp, err
}

func (s *sessionService) Skip(ctx context.Context, id string) (*NavigationResponse, error) {
	var resp *NavigationResponse
	err := s.mutate(ctx, id, "skip question", func(h *hostedSession) error {
		skipped, err := h.engine.SkipQuestion()
		if err != nil {
			return err
		}
		s.stopTimer(h)

		item, err := h.engine.CurrentItem()
		if err != nil {
			return err
		}
		resp = &NavigationResponse{Moved: skipped, Item: item, Finished: h.engine.IsFinished()}
		return nil
	})
	return resp, err
}

// ===== PAUSE & FINISH =====

func (s *sessionService) Pause(ctx context.Context, id string) (*models.Status, error) {
	var status *models.Status
	err := s.mutate(ctx, id, "pause session", func(h *hostedSession) error {
		if err := h.engine.Pause(); err != nil {
			return err
		}
		if h.countdown != nil {
			h.countdown.Pause()
		}
		var err error
		status, err = h.engine.Status()
		return err
	})
	return status, err
}

func (s *sessionService) Resume(ctx context.Context, id string) (*models.Status, error) {
	var status *models.Status
	err := s.mutate(ctx, id, "resume session", func(h *hostedSession) error {
		if err := h.engine.Resume(); err != nil {
			return err
		}
		if h.countdown != nil {
			h.countdown.Resume()
		}
		var err error
		status, err = h.engine.Status()
		return err
	})
	return status, err
}

func (s *sessionService) Finish(ctx context.Context, id string) (*FinishResponse, error) {
	var resp *FinishResponse
	err := s.mutate(ctx, id, "finish session", func(h *hostedSession) error {
		if _, err := h.engine.Finish(); err != nil {
			return err
		}
		s.stopTimer(h)
		if err := s.recordResult(ctx, h); err != nil {
			return err
		}

		resp = &FinishResponse{
			Result:     h.result,
			Comparison: s.comparison(ctx, h),
		}
		return nil
	})
	return resp, err
}

// ===== READS =====

func (s *sessionService) Results(ctx context.Context, id string) (*models.SessionResult, error) {
	var result *models.SessionResult
	err := s.read(ctx, id, "get results", func(h *hostedSession) error {
		if h.result != nil {
			result = h.result
			return nil
		}
		var err error
		result, err = h.engine.Results()
		return err
	})
	return result, err
}

func (s *sessionService) Status(ctx context.Context, id string) (*models.Status, error) {
	var status *models.Status
	err := s.read(ctx, id, "get status", func(h *hostedSession) error {
		var err error
		status, err = h.engine.Status()
		return err
	})
	return status, err
}

func (s *sessionService) Snapshot(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := s.read(ctx, id, "snapshot session", func(h *hostedSession) error {
		var err error
		data, err = h.engine.Serialize()
		return err
	})
	return data, err
}

func (s *sessionService) History(ctx context.Context, documentName, username string) (*HistoryResponse, error) {
	name, err := s.validator.ValidateUsername(username)
	if err != nil {
		return nil, err
	}
	doc, err := s.repo.Document().Get(ctx, documentName)
	if err != nil {
		return nil, mapRepoError(err, documentName)
	}

	return &HistoryResponse{
		Document: documentName,
		Username: name,
		Results:  engine.UserHistory(doc, name),
	}, nil
}
