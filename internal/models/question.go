package models

import (
	"errors"
	"strings"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
	DifficultyExpert DifficultyLevel = "expert"
)

// DefaultCategory is used when grouping answers of uncategorized questions.
const DefaultCategory = "general"

// IsValid reports whether d is one of the known difficulty levels.
func (d DifficultyLevel) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert:
		return true
	}
	return false
}

// OrDefault returns d, or medium when d is empty.
func (d DifficultyLevel) OrDefault() DifficultyLevel {
	if d == "" {
		return DifficultyMedium
	}
	return d
}

// Flashcard is a question/answer pair shown without timing.
type Flashcard struct {
	Question   string          `json:"question" validate:"flashcard_question"`
	Answer     string          `json:"answer" validate:"answer_required"`
	Hint       string          `json:"hint,omitempty"`
	Category   string          `json:"category,omitempty"`
	Difficulty DifficultyLevel `json:"difficulty,omitempty" validate:"omitempty,difficulty"`
}

// QuestionShape tells which of the two accepted answer layouts a QuestionSpec uses.
type QuestionShape int

const (
	ShapeUnknown QuestionShape = iota
	// ShapeLegacy is answers[] with the correct answer first.
	ShapeLegacy
	// ShapeSplit is correctAnswer + incorrectAnswers.
	ShapeSplit
)

// QuestionSpec is the on-disk form of a multiple choice question.
type QuestionSpec struct {
	Question         string          `json:"question" validate:"question_text"`
	Answers          []string        `json:"answers,omitempty"`
	CorrectAnswer    string          `json:"correctAnswer,omitempty"`
	IncorrectAnswers []string        `json:"incorrectAnswers,omitempty"`
	Explanation      string          `json:"explanation,omitempty"`
	Category         string          `json:"category,omitempty"`
	Difficulty       DifficultyLevel `json:"difficulty,omitempty" validate:"omitempty,difficulty"`
	Tags             []string        `json:"tags,omitempty"`
}

var ErrQuestionWithoutAnswers = errors.New("question has no answers")

// Shape reports the answer layout. The split layout wins when both are present.
func (q *QuestionSpec) Shape() QuestionShape {
	if strings.TrimSpace(q.CorrectAnswer) != "" && q.IncorrectAnswers != nil {
		return ShapeSplit
	}
	if q.Answers != nil {
		return ShapeLegacy
	}
	return ShapeUnknown
}

// AllAnswers returns every answer string of the question, correct one first.
func (q *QuestionSpec) AllAnswers() []string {
	switch q.Shape() {
	case ShapeSplit:
		all := make([]string, 0, len(q.IncorrectAnswers)+1)
		all = append(all, q.CorrectAnswer)
		return append(all, q.IncorrectAnswers...)
	case ShapeLegacy:
		return append([]string(nil), q.Answers...)
	}
	return nil
}

// Resolve converts either answer layout into the canonical Question used by the engine.
func (q *QuestionSpec) Resolve() (Question, error) {
	all := q.AllAnswers()
	if len(all) == 0 || all[0] == "" {
		return Question{}, ErrQuestionWithoutAnswers
	}

	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}

	return Question{
		Text:        q.Question,
		Correct:     all[0],
		Incorrect:   all[1:],
		Explanation: q.Explanation,
		Category:    q.Category,
		Difficulty:  q.Difficulty.OrDefault(),
		Tags:        tags,
	}, nil
}

// Question is the canonical multiple choice question.
type Question struct {
	Text        string          `json:"question"`
	Correct     string          `json:"correctAnswer"`
	Incorrect   []string        `json:"incorrectAnswers"`
	Explanation string          `json:"explanation,omitempty"`
	Category    string          `json:"category,omitempty"`
	Difficulty  DifficultyLevel `json:"difficulty"`
	Tags        []string        `json:"tags"`
}
