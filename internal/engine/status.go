package engine

import "github.com/SAP-F-2025/flashquiz-service/internal/models"

// Status is a read-only snapshot for polling clients.
func (e *Engine) Status() (*models.Status, error) {
	if err := e.requireInitialized(); err != nil {
		return nil, err
	}

	return &models.Status{
		Mode:          e.state.Mode,
		CurrentIndex:  e.state.CurrentIndex,
		IsInitialized: e.state.IsInitialized,
		IsPaused:      e.state.IsPaused,
		IsFinished:    e.state.IsFinished,

		TotalFlashcards: len(e.doc.Flashcards),
		TotalQuestions:  len(e.questions),
		HasFlashcards:   len(e.doc.Flashcards) > 0,
		HasQuestions:    len(e.questions) > 0,

		Progress: round2(e.progress()),

		Pauses:           e.state.Pauses,
		TotalAnswers:     len(e.state.Answers),
		CorrectAnswers:   e.correctCount(),
		WrongAnswers:     len(e.state.WrongAnswers),
		SkippedQuestions: len(e.state.SkippedQuestions),

		TotalTime:              round2(e.totalTimeSec()),
		AverageTimePerQuestion: round2(e.averageItemTime()),

		Streak:             e.state.Streak,
		MaxStreak:          e.state.MaxStreak,
		Accuracy:           round2(e.accuracy()),
		PerformanceLevel:   e.performanceLevel(),
		DifficultyAnalysis: e.difficultyAnalysis(),
	}, nil
}

// progress counts completed items over all flashcards and questions.
func (e *Engine) progress() float64 {
	totalItems := len(e.doc.Flashcards) + len(e.questions)
	if totalItems == 0 {
		return 0
	}

	completed := e.state.CurrentIndex
	if e.state.Mode == models.ModeQuiz {
		completed += len(e.doc.Flashcards)
	}
	return min(100, float64(completed)/float64(totalItems)*100)
}
