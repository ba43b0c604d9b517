package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/flashquiz-service/internal/models"
	"github.com/SAP-F-2025/flashquiz-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

type StartSessionRequest = validator.StartSessionRequest
type RestoreSessionRequest = validator.RestoreSessionRequest
type AnswerRequest = validator.AnswerRequest
type GoToRequest = validator.GoToRequest
type SaveDocumentRequest = validator.SaveDocumentRequest
type CleanupStatsRequest = validator.CleanupStatsRequest

type SessionResponse struct {
	ID           string           `json:"id"`
	DocumentName string           `json:"document_name,omitempty"`
	Username     string           `json:"username"`
	Title        string           `json:"title"`
	Item         *models.ItemView `json:"item"`
	Status       *models.Status   `json:"status"`
	HasHistory   bool             `json:"has_history"`
}

type AnswerResponse struct {
	IsCorrect     bool           `json:"is_correct"`
	CorrectAnswer string         `json:"correct_answer"`
	Explanation   *string        `json:"explanation,omitempty"`
	Status        *models.Status `json:"status"`
}

// NavigationResponse is returned by every operation that moves the cursor.
type NavigationResponse struct {
	Moved    bool                  `json:"moved"`
	Finished bool                  `json:"finished"`
	Item     *models.ItemView      `json:"item"`
	Result   *models.SessionResult `json:"result,omitempty"`
}

type FlipResponse struct {
	IsFlipped bool             `json:"is_flipped"`
	Item      *models.ItemView `json:"item"`
}

type FinishResponse struct {
	Result     *models.SessionResult    `json:"result"`
	Comparison models.HistoryComparison `json:"comparison"`
}

type HistoryResponse struct {
	Document string                 `json:"document"`
	Username string                 `json:"username"`
	Results  []models.SessionResult `json:"results"`
}

type StatsCleanupResponse struct {
	Removed int `json:"removed"`
	Kept    int `json:"kept"`
}

// ===== SERVICE INTERFACES =====

type DocumentService interface {
	List(ctx context.Context) ([]models.DocumentInfo, error)
	Get(ctx context.Context, name string) (*models.QuizDocument, error)
	Save(ctx context.Context, name string, doc *models.QuizDocument) error
	RestoreBackup(ctx context.Context, name string) (*models.QuizDocument, error)
}

type SessionService interface {
	Start(ctx context.Context, req *StartSessionRequest) (*SessionResponse, error)
	Restore(ctx context.Context, req *RestoreSessionRequest) (*SessionResponse, error)
	Close(ctx context.Context, id string) error

	CurrentItem(ctx context.Context, id string) (*models.ItemView, error)
	Answer(ctx context.Context, id string, answer string) (*AnswerResponse, error)
	Skip(ctx context.Context, id string) (*NavigationResponse, error)
	Next(ctx context.Context, id string) (*NavigationResponse, error)
	Prev(ctx context.Context, id string) (*NavigationResponse, error)
	GoTo(ctx context.Context, id string, index int) (*NavigationResponse, error)
	Flip(ctx context.Context, id string) (*FlipResponse, error)

	Pause(ctx context.Context, id string) (*models.Status, error)
	Resume(ctx context.Context, id string) (*models.Status, error)
	Finish(ctx context.Context, id string) (*FinishResponse, error)
	Restart(ctx context.Context, id string) (*SessionResponse, error)

	Results(ctx context.Context, id string) (*models.SessionResult, error)
	Status(ctx context.Context, id string) (*models.Status, error)
	Snapshot(ctx context.Context, id string) ([]byte, error)
	History(ctx context.Context, documentName, username string) (*HistoryResponse, error)

	Shutdown(ctx context.Context) error
}

type StatsService interface {
	Leaderboard(ctx context.Context, document string) ([]models.LeaderboardEntry, error)
	UserStats(ctx context.Context, document, username string) ([]models.SessionResult, error)
	Compare(ctx context.Context, document, username string) (*models.PerformanceComparison, error)
	Summary(ctx context.Context, document, username string) (*models.SummaryStats, error)
	Chart(ctx context.Context, document, username string) (*models.ChartData, error)
	Cleanup(ctx context.Context, document string, maxAgeDays int) (*StatsCleanupResponse, error)
	RestoreBackup(ctx context.Context, document string) (*StatsCleanupResponse, error)
}

type ExportService interface {
	ExportResult(ctx context.Context, result *models.SessionResult) ([]byte, error)
	ExportLeaderboard(ctx context.Context, document string) ([]byte, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Document() DocumentService
	Session() SessionService
	Stats() StatsService
	Export() ExportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// SessionOptions tune how sessions are hosted.
type SessionOptions struct {
	SnapshotTTL          time.Duration
	QuestionTimerEnabled bool
	ShuffleSeed          int64
	EventsTopic          string
	Clock                func() time.Time
}
