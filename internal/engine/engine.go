// Package engine implements the flashcard and quiz session state machine.
//
// An Engine owns exactly one session. It performs no I/O and holds no locks:
// callers that share an Engine between goroutines must serialize access.
package engine

import (
	"log/slog"
	"time"

	"github.com/SAP-F-2025/flashquiz-service/internal/models"
	"github.com/SAP-F-2025/flashquiz-service/internal/shuffle"
	"github.com/SAP-F-2025/flashquiz-service/internal/validator"
)

// Engine drives one session through a quiz document.
type Engine struct {
	clock     func() time.Time
	source    shuffle.Source
	logger    *slog.Logger
	validator *validator.Validator

	doc       *models.QuizDocument
	questions []models.Question
	state     sessionState
}

// sessionState is everything a snapshot needs besides the document itself.
type sessionState struct {
	Username string             `json:"username"`
	Mode     models.SessionMode `json:"mode"`

	CurrentIndex       int  `json:"currentIndex"`
	IsFlashcardFlipped bool `json:"isFlashcardFlipped"`

	Answers          []models.AnswerRecord    `json:"answers"`
	WrongAnswers     []models.WrongAnswer     `json:"wrongAnswers"`
	SkippedQuestions []models.SkippedQuestion `json:"skippedQuestions"`

	StartedAt      time.Time  `json:"startTime"`
	Pauses         int        `json:"pauses"`
	PauseStartedAt *time.Time `json:"pauseStartTime,omitempty"`
	TotalPauseSec  float64    `json:"totalPauseTime"`
	ItemStartedAt  *time.Time `json:"currentQuestionStartTime,omitempty"`
	ItemTimingOpen bool       `json:"itemTimingOpen"`
	PerItemElapsed []float64  `json:"questionTimeSpent"`

	Streak    int `json:"streak"`
	MaxStreak int `json:"maxStreak"`

	IsInitialized bool       `json:"isInitialized"`
	IsPaused      bool       `json:"isPaused"`
	IsFinished    bool       `json:"isFinished"`
	FinishedAt    *time.Time `json:"finishedAt,omitempty"`

	Choices map[int][]string `json:"choices,omitempty"`
}

type Option func(*Engine)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithSource sets the random source used to build choice sets.
func WithSource(src shuffle.Source) Option {
	return func(e *Engine) { e.source = src }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithValidator(v *validator.Validator) Option {
	return func(e *Engine) { e.validator = v }
}

// New creates an uninitialized engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:  time.Now,
		source: shuffle.NewPlatform(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.validator == nil {
		e.validator = validator.New()
	}
	return e
}

// Initialize validates doc and username and starts a brand-new session,
// discarding any previous one.
func (e *Engine) Initialize(doc *models.QuizDocument, username string) error {
	if err := e.validator.ValidateDocument(doc); err != nil {
		return NewValidationError("invalid quiz document", err)
	}
	name, err := e.validator.ValidateUsername(username)
	if err != nil {
		return NewValidationError("invalid username", err)
	}

	questions, err := resolveQuestions(doc)
	if err != nil {
		return err
	}

	e.doc = doc
	e.questions = questions
	e.reset(name)

	e.logger.Info("Quiz initialized",
		"title", doc.Title,
		"flashcards", len(doc.Flashcards),
		"questions", len(questions),
		"username", name)

	return nil
}

func resolveQuestions(doc *models.QuizDocument) ([]models.Question, error) {
	questions := make([]models.Question, 0, len(doc.QuizQuestions))
	for i := range doc.QuizQuestions {
		q, err := doc.QuizQuestions[i].Resolve()
		if err != nil {
			return nil, NewDataIntegrityError("question has no correct answer", err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (e *Engine) reset(username string) {
	mode := models.ModeQuiz
	if e.doc.HasFlashcards() {
		mode = models.ModeFlashcard
	}

	e.state = sessionState{
		Username:         username,
		Mode:             mode,
		Answers:          []models.AnswerRecord{},
		WrongAnswers:     []models.WrongAnswer{},
		SkippedQuestions: []models.SkippedQuestion{},
		PerItemElapsed:   []float64{},
		StartedAt:        e.clock(),
		IsInitialized:    true,
		Choices:          map[int][]string{},
	}
	e.startItem()
}

// Restart begins a fresh session over the same document and user.
func (e *Engine) Restart() error {
	if e.doc == nil {
		return NewDataIntegrityError("no quiz document to restart", nil)
	}
	e.reset(e.state.Username)
	e.logger.Info("Quiz restarted", "username", e.state.Username)
	return nil
}

func (e *Engine) requireInitialized() error {
	if !e.state.IsInitialized || e.doc == nil {
		return ErrNotInitialized
	}
	return nil
}

func (e *Engine) requireActive() error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	if e.state.IsFinished {
		return ErrAlreadyFinished
	}
	return nil
}

func (e *Engine) Username() string               { return e.state.Username }
func (e *Engine) Mode() models.SessionMode       { return e.state.Mode }
func (e *Engine) IsInitialized() bool            { return e.state.IsInitialized }
func (e *Engine) IsFinished() bool               { return e.state.IsFinished }
func (e *Engine) IsPaused() bool                 { return e.state.IsPaused }
func (e *Engine) Document() *models.QuizDocument { return e.doc }
func (e *Engine) CurrentIndex() int              { return e.state.CurrentIndex }

// TimerSeconds is the per-question budget of the loaded document.
func (e *Engine) TimerSeconds() float64 {
	if e.doc == nil {
		return 0
	}
	return e.doc.TimerSeconds
}

// Title returns the loaded document title.
func (e *Engine) Title() string {
	if e.doc == nil {
		return ""
	}
	return e.doc.Title
}

func (e *Engine) activeLen() int {
	if e.state.Mode == models.ModeFlashcard {
		return len(e.doc.Flashcards)
	}
	return len(e.questions)
}

// CurrentItem returns the flashcard or question at the current position, or
// nil once the session is finished. Exhausted flashcards hand over to the quiz.
func (e *Engine) CurrentItem() (*models.ItemView, error) {
	if err := e.requireInitialized(); err != nil {
		return nil, err
	}
	if e.state.IsFinished {
		return nil, nil
	}

	if e.state.Mode == models.ModeFlashcard {
		if e.state.CurrentIndex < len(e.doc.Flashcards) {
			return e.flashcardView(), nil
		}
		e.enterQuizMode()
	}

	return e.questionView()
}

func (e *Engine) enterQuizMode() {
	e.state.Mode = models.ModeQuiz
	e.state.CurrentIndex = 0
	e.state.IsFlashcardFlipped = false
	e.startItem()
}

func (e *Engine) flashcardView() *models.ItemView {
	i := e.state.CurrentIndex
	card := e.doc.Flashcards[i]
	total := len(e.doc.Flashcards)

	return &models.ItemView{
		Type: models.ItemFlashcard,
		Flashcard: &models.FlashcardView{
			Question:   Sanitize(card.Question),
			Answer:     Sanitize(card.Answer),
			Hint:       sanitizeOptional(card.Hint),
			Category:   card.Category,
			Difficulty: card.Difficulty.OrDefault(),
			IsFlipped:  e.state.IsFlashcardFlipped,
		},
		Index:    i,
		Total:    total,
		Progress: float64(i+1) / float64(total) * 100,
	}
}

func (e *Engine) questionView() (*models.ItemView, error) {
	total := len(e.questions)
	if total == 0 {
		return nil, nil
	}

	i := e.state.CurrentIndex
	if i >= total {
		e.markFinished()
		return nil, nil
	}

	q := e.questions[i]
	if q.Correct == "" {
		return nil, NewDataIntegrityError("question has no correct answer", nil)
	}

	var started time.Time
	if e.state.ItemStartedAt != nil {
		started = *e.state.ItemStartedAt
	}

	return &models.ItemView{
		Type: models.ItemQuestion,
		Question: &models.QuestionView{
			Question:      Sanitize(q.Text),
			Answers:       sanitizeAll(e.choicesFor(i)),
			CorrectAnswer: Sanitize(q.Correct),
			Explanation:   sanitizeOptional(q.Explanation),
			Category:      q.Category,
			Difficulty:    q.Difficulty,
			Tags:          q.Tags,
			TimeStarted:   started,
			Streak:        e.state.Streak,
			Accuracy:      e.accuracy(),
			AverageTime:   e.averageItemTime(),
		},
		Index:    i,
		Total:    total,
		Progress: float64(i+1) / float64(total) * 100,
	}, nil
}

// choicesFor returns the choice set of question i, building it the first time
// the question is shown so re-renders keep the same order.
func (e *Engine) choicesFor(i int) []string {
	if choices, ok := e.state.Choices[i]; ok {
		return choices
	}
	q := e.questions[i]
	choices := shuffle.BuildChoiceSet(q.Correct, q.Incorrect, shuffle.DefaultMaxIncorrect, e.source)
	e.state.Choices[i] = choices
	return choices
}

// Next moves forward. It reports false when the session finished instead.
func (e *Engine) Next() (bool, error) {
	if err := e.requireActive(); err != nil {
		return false, err
	}

	e.state.IsFlashcardFlipped = false

	if e.state.CurrentIndex >= e.activeLen()-1 {
		if e.state.Mode == models.ModeFlashcard && len(e.questions) > 0 {
			e.enterQuizMode()
			e.logger.Debug("Switched from flashcards to quiz")
			return true, nil
		}
		e.markFinished()
		e.logger.Info("Quiz finished by navigation", "username", e.state.Username)
		return false, nil
	}

	e.state.CurrentIndex++
	e.startItem()
	return true, nil
}

// Prev moves back one item if possible.
func (e *Engine) Prev() (bool, error) {
	if err := e.requireActive(); err != nil {
		return false, err
	}
	if e.state.CurrentIndex <= 0 {
		return false, nil
	}

	e.state.CurrentIndex--
	e.state.IsFlashcardFlipped = false
	e.startItem()
	return true, nil
}

// GoTo jumps to index within the active collection.
func (e *Engine) GoTo(index int) error {
	if err := e.requireActive(); err != nil {
		return err
	}
	if index < 0 || index >= e.activeLen() {
		return NewValidationError("item index out of range", nil)
	}

	e.state.CurrentIndex = index
	e.state.IsFlashcardFlipped = false
	e.startItem()
	return nil
}

// FlipFlashcard toggles the current flashcard and returns the new side.
func (e *Engine) FlipFlashcard() (bool, error) {
	if err := e.requireActive(); err != nil {
		return false, err
	}
	if e.state.Mode != models.ModeFlashcard {
		return false, NewValidationError("flipping is only available in flashcard mode", nil)
	}

	e.state.IsFlashcardFlipped = !e.state.IsFlashcardFlipped
	return e.state.IsFlashcardFlipped, nil
}

func (e *Engine) markFinished() {
	if e.state.IsPaused {
		e.endPause()
	}
	now := e.clock()
	e.state.IsFinished = true
	e.state.FinishedAt = &now
}
