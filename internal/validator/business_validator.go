package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/SAP-F-2025/flashquiz-service/internal/models"
	"github.com/go-playground/validator/v10"
)

const (
	MinUsernameLength    = 2
	MaxUsernameLength    = 50
	MinFlashcardQuestion = 3
	MinQuestionText      = 5
	MaxAnswerLength      = 200
	MinLegacyAnswers     = 2
	MaxLegacyAnswers     = 10
	MinIncorrectAnswers  = 1
	MaxIncorrectAnswers  = 9
)

var (
	invalidUsernameChars = regexp.MustCompile(`[<>"'&]`)
	documentNamePattern  = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// IsValidDocumentName reports whether name can be used as a stored document name.
func IsValidDocumentName(name string) bool {
	return documentNamePattern.MatchString(name)
}

// ValidationError represents a single failed rule
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// AsValidationErrors extracts ValidationErrors from err, if any.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Validator wraps go-playground/validator with the quiz rules registered
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with all custom rules registered
func New() *Validator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v := &Validator{validate: validate}
	v.registerBusinessRules()

	return v
}

// Validate validates a struct against its tags. It returns nil or ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	if errs := v.validateStruct(s, ""); len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *Validator) validateStruct(s interface{}, prefix string) ValidationErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	return ToValidationErrors(err, prefix)
}

// ToValidationErrors converts go-playground errors, prefixing field paths with prefix.
func ToValidationErrors(err error, prefix string) ValidationErrors {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{{Field: prefix, Message: err.Error()}}
	}

	result := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		result = append(result, ValidationError{
			Field:   fieldPath(prefix, fe),
			Message: getErrorMessage(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return result
}

func fieldPath(prefix string, fe validator.FieldError) string {
	ns := fe.Namespace()
	// drop the root struct name
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	if prefix == "" {
		return ns
	}
	return prefix + "." + ns
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "quiz_title":
		return "is required and must be text"
	case "timer_seconds":
		return "must be a positive number"
	case "flashcard_question":
		return fmt.Sprintf("must be at least %d characters", MinFlashcardQuestion)
	case "question_text":
		return fmt.Sprintf("must be at least %d characters", MinQuestionText)
	case "answer_required":
		return "must not be empty"
	case "answer_text":
		return fmt.Sprintf("must be between 1 and %d characters", MaxAnswerLength)
	case "difficulty":
		return "must be easy, medium, hard or expert"
	case "document_name":
		return "must contain only letters, digits, '-' or '_'"
	case "username":
		return fmt.Sprintf("must be %d-%d characters without < > \" ' &", MinUsernameLength, MaxUsernameLength)
	default:
		return fmt.Sprintf("validation failed for rule '%s'", err.Tag())
	}
}

// registerBusinessRules registers the custom quiz rules
func (v *Validator) registerBusinessRules() {
	v.validate.RegisterValidation("quiz_title", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	v.validate.RegisterValidation("timer_seconds", func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Float32, reflect.Float64:
			return fl.Field().Float() > 0
		case reflect.Int, reflect.Int32, reflect.Int64:
			return fl.Field().Int() > 0
		}
		return false
	})

	v.validate.RegisterValidation("flashcard_question", func(fl validator.FieldLevel) bool {
		return trimmedLen(fl.Field().String()) >= MinFlashcardQuestion
	})

	v.validate.RegisterValidation("question_text", func(fl validator.FieldLevel) bool {
		return trimmedLen(fl.Field().String()) >= MinQuestionText
	})

	v.validate.RegisterValidation("answer_required", func(fl validator.FieldLevel) bool {
		return trimmedLen(fl.Field().String()) >= 1
	})

	v.validate.RegisterValidation("answer_text", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return trimmedLen(s) >= 1 && utf8.RuneCountInString(s) <= MaxAnswerLength
	})

	v.validate.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
		return models.DifficultyLevel(fl.Field().String()).IsValid()
	})

	v.validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		_, ok := checkUsername(fl.Field().String())
		return ok
	})

	v.validate.RegisterValidation("document_name", func(fl validator.FieldLevel) bool {
		return documentNamePattern.MatchString(fl.Field().String())
	})
}

func trimmedLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

func checkUsername(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(trimmed)
	if n < MinUsernameLength || n > MaxUsernameLength {
		return trimmed, false
	}
	if invalidUsernameChars.MatchString(trimmed) {
		return trimmed, false
	}
	return trimmed, true
}
