package models

import "time"

type SessionMode string

const (
	ModeFlashcard SessionMode = "flashcard"
	ModeQuiz      SessionMode = "quiz"
)

// AnswerRecord is one answered question of a session.
type AnswerRecord struct {
	ItemIndex      int             `json:"questionIndex"`
	Question       string          `json:"question"`
	SelectedAnswer string          `json:"selectedAnswer"`
	CorrectAnswer  string          `json:"correctAnswer"`
	IsCorrect      bool            `json:"isCorrect"`
	TimeSpent      float64         `json:"timeSpent"` // seconds
	Timestamp      time.Time       `json:"timestamp"`
	Category       string          `json:"category"`
	Difficulty     DifficultyLevel `json:"difficulty"`
}

type WrongAnswer struct {
	Index          int    `json:"index"`
	Question       string `json:"question"`
	SelectedAnswer string `json:"selectedAnswer"`
	CorrectAnswer  string `json:"correctAnswer"`
	Explanation    string `json:"explanation,omitempty"`
}

type SkippedQuestion struct {
	Index         int     `json:"index"`
	Question      string  `json:"question"`
	CorrectAnswer string  `json:"correctAnswer"`
	TimeSpent     float64 `json:"timeSpent,omitempty"`
}

type DetailedAnswer struct {
	QuestionIndex int             `json:"questionIndex"`
	IsCorrect     bool            `json:"isCorrect"`
	TimeSpent     float64         `json:"timeSpent"`
	Category      string          `json:"category"`
	Difficulty    DifficultyLevel `json:"difficulty"`
}

// GroupPerformance aggregates answers sharing a category or difficulty.
type GroupPerformance struct {
	Total     int     `json:"total"`
	Correct   int     `json:"correct"`
	TotalTime float64 `json:"totalTime"`
	Questions []int   `json:"questions"`
	Accuracy  float64 `json:"accuracy"`
	AvgTime   float64 `json:"avgTime"`
}

// SessionResult is the scored outcome of a session, stored in the document's stats list.
type SessionResult struct {
	Username  string      `json:"username"`
	Date      time.Time   `json:"date"`
	QuizTitle string      `json:"quizTitle"`
	Mode      SessionMode `json:"mode"`

	TotalQuestions    int `json:"totalQuestions"`
	AnsweredQuestions int `json:"answeredQuestions"`
	Correct           int `json:"correct"`
	Wrong             int `json:"wrong"`
	Skipped           int `json:"skipped"`
	Unanswered        int `json:"unanswered"`

	ScorePercent         float64 `json:"scorePercent"`
	WeightedScorePercent float64 `json:"weightedScorePercent"`
	LetterGrade          string  `json:"letterGrade"`

	TotalTimeSec          float64   `json:"totalTimeSec"`
	AvgTimePerQuestionSec float64   `json:"avgTimePerQuestionSec"`
	FastestQuestionSec    float64   `json:"fastestQuestionSec"`
	SlowestQuestionSec    float64   `json:"slowestQuestionSec"`
	PerQuestionTimeSec    []float64 `json:"perQuestionTimeSec"`

	Pauses            int     `json:"pauses"`
	TotalPauseTimeSec float64 `json:"totalPauseTimeSec"`

	Streak             int     `json:"streak"`
	MaxStreak          int     `json:"maxStreak"`
	Accuracy           float64 `json:"accuracy"`
	PerformanceLevel   string  `json:"performanceLevel"`
	DifficultyAnalysis string  `json:"difficultyAnalysis"`

	CategoryPerformance   map[string]*GroupPerformance `json:"categoryPerformance,omitempty"`
	DifficultyPerformance map[string]*GroupPerformance `json:"difficultyPerformance,omitempty"`

	WrongQuestionsList   []WrongAnswer     `json:"wrongQuestionsList"`
	SkippedQuestionsList []SkippedQuestion `json:"skippedQuestionsList"`
	DetailedAnswers      []DetailedAnswer  `json:"detailedAnswers"`

	CompletionRate int `json:"completionRate"`
	Efficiency     int `json:"efficiency"`
}
