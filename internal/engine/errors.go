package engine

import (
	"errors"
	"fmt"
)

// Kind is the machine-checkable category of an engine error.
type Kind string

const (
	KindQuizEngine    Kind = "QUIZ_ENGINE_ERROR"
	KindValidation    Kind = "VALIDATION_ERROR"
	KindDataIntegrity Kind = "DATA_INTEGRITY_ERROR"
)

// Sentinels matched with errors.Is against any *Error of the same kind.
var (
	ErrQuizEngine    = errors.New("quiz engine error")
	ErrValidation    = errors.New("validation error")
	ErrDataIntegrity = errors.New("data integrity error")
)

var (
	ErrNotInitialized  = NewDataIntegrityError("quiz is not initialized", nil)
	ErrAlreadyFinished = NewValidationError("quiz is already finished", nil)
)

// Error is returned by every failing engine operation.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	errs := []error{e.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindValidation:
		return ErrValidation
	case KindDataIntegrity:
		return ErrDataIntegrity
	default:
		return ErrQuizEngine
	}
}

func NewValidationError(message string, err error) *Error {
	return &Error{Kind: KindValidation, Message: message, Err: err}
}

func NewDataIntegrityError(message string, err error) *Error {
	return &Error{Kind: KindDataIntegrity, Message: message, Err: err}
}

func NewQuizEngineError(message string, err error) *Error {
	return &Error{Kind: KindQuizEngine, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
