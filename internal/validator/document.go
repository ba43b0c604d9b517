package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/SAP-F-2025/flashquiz-service/internal/models"
)

// ValidateDocument checks a quiz document before it enters a session.
// Only the first violated field is reported.
func (v *Validator) ValidateDocument(doc *models.QuizDocument) error {
	if doc == nil {
		return ValidationErrors{{Field: "document", Message: "is required", Rule: "required"}}
	}

	if errs := v.validateStruct(doc, ""); len(errs) > 0 {
		return errs[:1]
	}

	for i := range doc.Flashcards {
		if errs := v.validateStruct(&doc.Flashcards[i], fmt.Sprintf("flashcards[%d]", i)); len(errs) > 0 {
			return errs[:1]
		}
	}

	for i := range doc.QuizQuestions {
		if errs := v.validateQuestion(&doc.QuizQuestions[i], i); len(errs) > 0 {
			return errs[:1]
		}
	}

	if !doc.HasFlashcards() && !doc.HasQuestions() {
		return ValidationErrors{{
			Field:   "flashcards",
			Message: "document must contain at least one flashcard or question",
			Rule:    "has_content",
		}}
	}

	return nil
}

func (v *Validator) validateQuestion(q *models.QuestionSpec, index int) ValidationErrors {
	prefix := fmt.Sprintf("quizQuestions[%d]", index)

	if errs := v.validateStruct(q, prefix); len(errs) > 0 {
		return errs
	}

	var errs ValidationErrors
	add := func(field, message, rule string, value interface{}) {
		errs = append(errs, ValidationError{Field: prefix + "." + field, Message: message, Rule: rule, Value: value})
	}

	switch q.Shape() {
	case models.ShapeLegacy:
		n := len(q.Answers)
		if n < MinLegacyAnswers {
			add("answers", fmt.Sprintf("must contain at least %d answers", MinLegacyAnswers), "min", n)
			return errs
		}
		if n > MaxLegacyAnswers {
			add("answers", fmt.Sprintf("must contain at most %d answers", MaxLegacyAnswers), "max", n)
			return errs
		}
		if hasDuplicates(q.Answers) {
			add("answers", "contains duplicate answers", "unique", nil)
			return errs
		}

	case models.ShapeSplit:
		n := len(q.IncorrectAnswers)
		if n < MinIncorrectAnswers {
			add("incorrectAnswers", fmt.Sprintf("must contain at least %d answer", MinIncorrectAnswers), "min", n)
			return errs
		}
		if n > MaxIncorrectAnswers {
			add("incorrectAnswers", fmt.Sprintf("must contain at most %d answers", MaxIncorrectAnswers), "max", n)
			return errs
		}
		correct := normalize(q.CorrectAnswer)
		for _, incorrect := range q.IncorrectAnswers {
			if normalize(incorrect) == correct {
				add("incorrectAnswers", "must not repeat the correct answer", "excluded_correct", incorrect)
				return errs
			}
		}

	default:
		if strings.TrimSpace(q.CorrectAnswer) != "" {
			add("incorrectAnswers", "is required", "required", nil)
		} else {
			add("correctAnswer", "is required", "required", nil)
		}
		return errs
	}

	for _, a := range answerFields(q) {
		if strings.TrimSpace(a.value) == "" {
			add(a.name, "must not be empty", "answer_text", a.value)
			return errs
		}
		if utf8.RuneCountInString(a.value) > MaxAnswerLength {
			add(a.name, fmt.Sprintf("must not exceed %d characters", MaxAnswerLength), "answer_text", a.value)
			return errs
		}
	}

	return nil
}

// ValidateUsername trims raw and checks it. The trimmed name is returned.
func (v *Validator) ValidateUsername(raw string) (string, error) {
	trimmed, ok := checkUsername(raw)
	if ok {
		return trimmed, nil
	}

	var message string
	n := utf8.RuneCountInString(trimmed)
	switch {
	case trimmed == "":
		message = "is required"
	case n < MinUsernameLength:
		message = fmt.Sprintf("must be at least %d characters", MinUsernameLength)
	case n > MaxUsernameLength:
		message = fmt.Sprintf("must be at most %d characters", MaxUsernameLength)
	default:
		message = "contains forbidden characters"
	}

	return "", ValidationErrors{{Field: "username", Message: message, Value: raw, Rule: "username"}}
}

// ValidateResult checks a session result before it is appended to a document's history.
func (v *Validator) ValidateResult(r *models.SessionResult) error {
	if r == nil {
		return ValidationErrors{{Field: "result", Message: "is required", Rule: "required"}}
	}

	var errs ValidationErrors
	if strings.TrimSpace(r.Username) == "" {
		errs = append(errs, ValidationError{Field: "username", Message: "is required", Rule: "required"})
	}
	if r.Date.IsZero() {
		errs = append(errs, ValidationError{Field: "date", Message: "is required", Rule: "required"})
	}
	if r.TotalQuestions <= 0 {
		errs = append(errs, ValidationError{Field: "totalQuestions", Message: "must be greater than 0", Value: r.TotalQuestions, Rule: "gt"})
	}
	if r.Correct < 0 || r.Correct > r.TotalQuestions {
		errs = append(errs, ValidationError{Field: "correct", Message: "must be between 0 and totalQuestions", Value: r.Correct, Rule: "range"})
	}
	if r.ScorePercent < 0 || r.ScorePercent > 100 {
		errs = append(errs, ValidationError{Field: "scorePercent", Message: "must be between 0 and 100", Value: r.ScorePercent, Rule: "score_percent"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type answerField struct {
	name  string
	value string
}

func answerFields(q *models.QuestionSpec) []answerField {
	var fields []answerField
	if q.Shape() == models.ShapeSplit {
		fields = append(fields, answerField{name: "correctAnswer", value: q.CorrectAnswer})
		for i, a := range q.IncorrectAnswers {
			fields = append(fields, answerField{name: fmt.Sprintf("incorrectAnswers[%d]", i), value: a})
		}
		return fields
	}
	for i, a := range q.Answers {
		fields = append(fields, answerField{name: fmt.Sprintf("answers[%d]", i), value: a})
	}
	return fields
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func hasDuplicates(answers []string) bool {
	seen := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		key := normalize(a)
		if _, ok := seen[key]; ok {
			return true
		}
		seen[key] = struct{}{}
	}
	return false
}
