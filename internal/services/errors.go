package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/flashquiz-service/internal/engine"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrInvalidDocumentName = errors.New("invalid document name")
	ErrSessionFinished     = errors.New("session already finished")
	ErrNoBackup            = errors.New("no backup available")
	ErrNoResults           = errors.New("no results available")
)

// ServiceError carries an operation name around a sentinel or engine error.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is reports engine calls rejected on a finished session as ErrSessionFinished.
func (e *ServiceError) Is(target error) bool {
	return target == ErrSessionFinished && errors.Is(e.Err, engine.ErrAlreadyFinished)
}

func wrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ServiceError{Op: op, Err: err}
}
