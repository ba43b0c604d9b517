package models

import "time"

// ===== ITEM VIEWS =====

type ItemType string

const (
	ItemFlashcard ItemType = "flashcard"
	ItemQuestion  ItemType = "question"
)

// ItemView is what a client renders for the current flashcard or question.
// All text is sanitized.
type ItemView struct {
	Type      ItemType       `json:"type"`
	Flashcard *FlashcardView `json:"flashcard,omitempty"`
	Question  *QuestionView  `json:"question,omitempty"`
	Index     int            `json:"index"`
	Total     int            `json:"total"`
	Progress  float64        `json:"progress"`
}

type FlashcardView struct {
	Question   string          `json:"question"`
	Answer     string          `json:"answer"`
	Hint       *string         `json:"hint"`
	Category   string          `json:"category"`
	Difficulty DifficultyLevel `json:"difficulty"`
	IsFlipped  bool            `json:"isFlipped"`
}

type QuestionView struct {
	Question      string          `json:"question"`
	Answers       []string        `json:"answers"`
	CorrectAnswer string          `json:"correctAnswer"`
	Explanation   *string         `json:"explanation"`
	Category      string          `json:"category"`
	Difficulty    DifficultyLevel `json:"difficulty"`
	Tags          []string        `json:"tags"`
	TimeStarted   time.Time       `json:"timeStarted"`
	Streak        int             `json:"streak"`
	Accuracy      float64         `json:"accuracy"`
	AverageTime   float64         `json:"averageTime"`
}

// ===== STATUS =====

type Status struct {
	Mode          SessionMode `json:"mode"`
	CurrentIndex  int         `json:"currentIndex"`
	IsInitialized bool        `json:"isInitialized"`
	IsPaused      bool        `json:"isPaused"`
	IsFinished    bool        `json:"isFinished"`

	TotalFlashcards int  `json:"totalFlashcards"`
	TotalQuestions  int  `json:"totalQuestions"`
	HasFlashcards   bool `json:"hasFlashcards"`
	HasQuestions    bool `json:"hasQuestions"`

	Progress float64 `json:"progress"`

	Pauses           int `json:"pauses"`
	TotalAnswers     int `json:"totalAnswers"`
	CorrectAnswers   int `json:"correctAnswers"`
	WrongAnswers     int `json:"wrongAnswers"`
	SkippedQuestions int `json:"skippedQuestions"`

	TotalTime              float64 `json:"totalTime"`
	AverageTimePerQuestion float64 `json:"averageTimePerQuestion"`

	Streak             int     `json:"streak"`
	MaxStreak          int     `json:"maxStreak"`
	Accuracy           float64 `json:"accuracy"`
	PerformanceLevel   string  `json:"performanceLevel"`
	DifficultyAnalysis string  `json:"difficultyAnalysis"`
}

// ===== HISTORY & STATS =====

type HistoryComparison struct {
	Available   bool         `json:"available"`
	Message     string       `json:"message,omitempty"`
	Current     float64      `json:"current,omitempty"`
	Last        float64      `json:"last,omitempty"`
	Best        float64      `json:"best,omitempty"`
	Improvement *Improvement `json:"improvement,omitempty"`
	Rank        *HistoryRank `json:"rank,omitempty"`
}

type Improvement struct {
	FromLast float64 `json:"fromLast"`
	FromBest float64 `json:"fromBest"`
}

type HistoryRank struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

type LeaderboardEntry struct {
	Rank           int       `json:"rank"`
	Username       string    `json:"username"`
	ScorePercent   float64   `json:"scorePercent"`
	CorrectAnswers int       `json:"correctAnswers"`
	TotalQuestions int       `json:"totalQuestions"`
	Date           time.Time `json:"date"`
}

type Change struct {
	Value     float64 `json:"value"`
	Direction string  `json:"direction"`
	Message   string  `json:"message"`
}

type ImprovementArea struct {
	Type    string  `json:"type"`
	Count   int     `json:"count,omitempty"`
	Change  float64 `json:"change,omitempty"`
	Message string  `json:"message"`
}

type PerformanceComparison struct {
	HasEnoughData    bool              `json:"hasEnoughData"`
	Message          string            `json:"message,omitempty"`
	LatestStat       *SessionResult    `json:"latestStat,omitempty"`
	PreviousStats    int               `json:"previousStats,omitempty"`
	ScoreChange      *Change           `json:"scoreChange,omitempty"`
	TimeChange       *Change           `json:"timeChange,omitempty"`
	PausesChange     *Change           `json:"pausesChange,omitempty"`
	ImprovementAreas []ImprovementArea `json:"improvementAreas,omitempty"`
}

type SummaryStats struct {
	TotalAttempts    int        `json:"totalAttempts"`
	AverageScore     int        `json:"averageScore"`
	BestScore        int        `json:"bestScore"`
	ImprovementTrend string     `json:"improvementTrend"`
	LastAttempt      *time.Time `json:"lastAttempt,omitempty"`
}

type ChartData struct {
	Labels         []string  `json:"labels"`
	Scores         []float64 `json:"scores"`
	Times          []float64 `json:"times"`
	CorrectAnswers []int     `json:"correctAnswers"`
	TotalQuestions []int     `json:"totalQuestions"`
}

// ===== ERROR RESPONSES =====

type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value"`
	Code    string `json:"code"`
}

type ErrorResponse struct {
	Error            string                    `json:"error"`
	Message          string                    `json:"message"`
	Code             string                    `json:"code"`
	Details          interface{}               `json:"details,omitempty"`
	Timestamp        time.Time                 `json:"timestamp"`
	Path             string                    `json:"path"`
	ValidationErrors []ValidationErrorResponse `json:"validation_errors,omitempty"`
}

type SuccessResponse struct {
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
