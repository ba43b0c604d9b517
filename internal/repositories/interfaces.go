package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/flashquiz-service/internal/models"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrNoBackup    = errors.New("no backup available")
	ErrInvalidName = errors.New("invalid document name")

	// ErrNoChange lets an Update callback finish without writing.
	ErrNoChange = errors.New("no change")
)

// DocumentRepository stores quiz documents by name.
type DocumentRepository interface {
	List(ctx context.Context) ([]models.DocumentInfo, error)
	Get(ctx context.Context, name string) (*models.QuizDocument, error)
	// Save backs up the stored document first and puts the backup back if the write fails.
	Save(ctx context.Context, name string, doc *models.QuizDocument) error
	// Update reads, modifies and writes a document as one step. fn must not call
	// back into Save, Update or RestoreBackup.
	Update(ctx context.Context, name string, fn func(doc *models.QuizDocument) error) error
	RestoreBackup(ctx context.Context, name string) (*models.QuizDocument, error)

	// Stats backups hold the history as it was before the last cleanup.
	SaveStatsBackup(ctx context.Context, name string, results []models.SessionResult) error
	LoadStatsBackup(ctx context.Context, name string) ([]models.SessionResult, error)
	DeleteStatsBackup(ctx context.Context, name string) error
}

// SnapshotRepository keeps serialized sessions so they survive a restart.
type SnapshotRepository interface {
	Save(ctx context.Context, id string, snapshot []byte, ttl time.Duration) error
	Get(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}
