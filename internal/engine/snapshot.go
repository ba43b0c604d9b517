package engine

import (
	"encoding/json"
	"time"

	"github.com/SAP-F-2025/flashquiz-service/internal/models"
)

// SnapshotVersion is written into every serialized session.
const SnapshotVersion = "2.0"

type snapshot struct {
	Version   string        `json:"version"`
	Timestamp time.Time     `json:"timestamp"`
	State     *sessionState `json:"state"`
}

// Serialize captures the session so it can be restored later with Deserialize.
// The quiz document is not part of the snapshot.
func (e *Engine) Serialize() ([]byte, error) {
	if err := e.requireInitialized(); err != nil {
		return nil, err
	}

	state := e.state
	data, err := json.Marshal(snapshot{
		Version:   SnapshotVersion,
		Timestamp: e.clock(),
		State:     &state,
	})
	if err != nil {
		return nil, NewQuizEngineError("failed to serialize session", err)
	}
	return data, nil
}

// Deserialize replaces the current session with the one in data, attached to doc.
func (e *Engine) Deserialize(data []byte, doc *models.QuizDocument) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return NewValidationError("malformed session snapshot", err)
	}
	if snap.State == nil {
		return NewValidationError("session snapshot has no state", nil)
	}
	if snap.Version != SnapshotVersion {
		e.logger.Warn("Unknown snapshot version, attempting restore",
			"version", snap.Version,
			"expected", SnapshotVersion)
	}

	if err := e.validator.ValidateDocument(doc); err != nil {
		return NewValidationError("invalid quiz document", err)
	}
	questions, err := resolveQuestions(doc)
	if err != nil {
		return err
	}

	state := *snap.State
	if err := checkRestoredState(&state, doc, len(questions)); err != nil {
		return err
	}

	e.doc = doc
	e.questions = questions
	e.state = state

	e.logger.Info("Session restored",
		"username", state.Username,
		"mode", state.Mode,
		"index", state.CurrentIndex)
	return nil
}

func checkRestoredState(s *sessionState, doc *models.QuizDocument, questions int) error {
	if !s.IsInitialized {
		return NewValidationError("session snapshot is not initialized", nil)
	}

	var limit int
	switch s.Mode {
	case models.ModeFlashcard:
		limit = len(doc.Flashcards)
	case models.ModeQuiz:
		limit = questions
	default:
		return NewValidationError("session snapshot has an unknown mode", nil)
	}
	if s.CurrentIndex < 0 || (limit > 0 && s.CurrentIndex > limit) {
		return NewDataIntegrityError("session snapshot index does not fit the document", nil)
	}

	if s.Answers == nil {
		s.Answers = []models.AnswerRecord{}
	}
	if s.WrongAnswers == nil {
		s.WrongAnswers = []models.WrongAnswer{}
	}
	if s.SkippedQuestions == nil {
		s.SkippedQuestions = []models.SkippedQuestion{}
	}
	if s.PerItemElapsed == nil {
		s.PerItemElapsed = []float64{}
	}
	if s.Choices == nil {
		s.Choices = map[int][]string{}
	}
	return nil
}
