package engine

import (
	"slices"

	"github.com/SAP-F-2025/flashquiz-service/internal/models"
)

// AnswerQuestion records selected as the answer to the current question and
// reports whether it was correct. Nothing is recorded when it fails.
func (e *Engine) AnswerQuestion(selected string) (bool, error) {
	if err := e.requireInitialized(); err != nil {
		return false, err
	}
	if e.state.Mode != models.ModeQuiz {
		return false, NewValidationError("answering is only available in quiz mode", nil)
	}
	if e.state.IsPaused {
		return false, NewValidationError("cannot answer while the quiz is paused", nil)
	}
	if e.state.IsFinished {
		return false, ErrAlreadyFinished
	}

	item, err := e.CurrentItem()
	if err != nil {
		return false, err
	}
	if item == nil || item.Question == nil {
		return false, NewDataIntegrityError("there is no current question to answer", nil)
	}
	view := item.Question
	index := item.Index

	clean := Sanitize(selected)
	if clean == "" {
		return false, NewValidationError("the selected answer is empty", nil)
	}
	if !slices.Contains(view.Answers, clean) {
		return false, NewValidationError("the selected answer is not one of the offered choices", nil)
	}
	if e.isResolved(index) {
		return false, NewValidationError("the question was already answered or skipped", nil)
	}

	elapsed := e.endItem()
	isCorrect := clean == view.CorrectAnswer
	e.updateStreak(isCorrect)

	explanation := ""
	if view.Explanation != nil {
		explanation = *view.Explanation
	}

	e.state.Answers = append(e.state.Answers, models.AnswerRecord{
		ItemIndex:      index,
		Question:       view.Question,
		SelectedAnswer: clean,
		CorrectAnswer:  view.CorrectAnswer,
		IsCorrect:      isCorrect,
		TimeSpent:      elapsed,
		Timestamp:      e.clock(),
		Category:       view.Category,
		Difficulty:     view.Difficulty,
	})

	if !isCorrect {
		e.state.WrongAnswers = append(e.state.WrongAnswers, models.WrongAnswer{
			Index:          index,
			Question:       view.Question,
			SelectedAnswer: clean,
			CorrectAnswer:  view.CorrectAnswer,
			Explanation:    explanation,
		})
	}

	e.logger.Debug("Answer recorded",
		"question", index+1,
		"correct", isCorrect,
		"time_spent", elapsed,
		"accuracy", e.accuracy())

	return isCorrect, nil
}

// SkipQuestion records the current question as skipped. It reports false when
// there is no current question.
func (e *Engine) SkipQuestion() (bool, error) {
	if err := e.requireInitialized(); err != nil {
		return false, err
	}
	if e.state.Mode != models.ModeQuiz {
		return false, NewValidationError("skipping is only available in quiz mode", nil)
	}
	if e.state.IsFinished {
		return false, ErrAlreadyFinished
	}

	item, err := e.CurrentItem()
	if err != nil {
		return false, err
	}
	if item == nil || item.Question == nil {
		return false, nil
	}
	if e.isResolved(item.Index) {
		return false, NewValidationError("the question was already answered or skipped", nil)
	}

	elapsed := e.endItem()
	e.state.SkippedQuestions = append(e.state.SkippedQuestions, models.SkippedQuestion{
		Index:         item.Index,
		Question:      item.Question.Question,
		CorrectAnswer: item.Question.CorrectAnswer,
		TimeSpent:     elapsed,
	})
	return true, nil
}

func (e *Engine) isResolved(index int) bool {
	for _, a := range e.state.Answers {
		if a.ItemIndex == index {
			return true
		}
	}
	for _, s := range e.state.SkippedQuestions {
		if s.Index == index {
			return true
		}
	}
	return false
}

func (e *Engine) updateStreak(correct bool) {
	if !correct {
		e.state.Streak = 0
		return
	}
	e.state.Streak++
	e.state.MaxStreak = max(e.state.MaxStreak, e.state.Streak)
}

func (e *Engine) correctCount() int {
	n := 0
	for _, a := range e.state.Answers {
		if a.IsCorrect {
			n++
		}
	}
	return n
}

// accuracy is the share of correct answers among answered questions, in percent.
func (e *Engine) accuracy() float64 {
	if len(e.state.Answers) == 0 {
		return 0
	}
	return float64(e.correctCount()) / float64(len(e.state.Answers)) * 100
}
