package validator

import "github.com/SAP-F-2025/flashquiz-service/internal/models"

// StartSessionRequest starts a session over a stored document, or over an inline one
type StartSessionRequest struct {
	DocumentName string               `json:"document_name" validate:"omitempty,document_name"`
	Document     *models.QuizDocument `json:"document" validate:"required_without=DocumentName"`
	Username     string               `json:"username" validate:"required,username"`
	Seed         *int64               `json:"seed,omitempty"`
}

type AnswerRequest struct {
	Answer string `json:"answer" validate:"required,answer_text"`
}

type GoToRequest struct {
	Index *int `json:"index" validate:"required,min=0"`
}

// RestoreSessionRequest rebuilds a session from a serialized snapshot
type RestoreSessionRequest struct {
	DocumentName string               `json:"document_name" validate:"omitempty,document_name"`
	Document     *models.QuizDocument `json:"document" validate:"required_without=DocumentName"`
	Snapshot     string               `json:"snapshot" validate:"required"`
}

type SaveDocumentRequest struct {
	Document *models.QuizDocument `json:"document" validate:"required"`
}

type CleanupStatsRequest struct {
	MaxAgeDays int `json:"max_age_days" validate:"omitempty,min=1,max=3650"`
}
