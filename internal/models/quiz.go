package models

// QuizDocument is the JSON quiz file: content plus the history of finished sessions.
type QuizDocument struct {
	Title          string          `json:"title" validate:"quiz_title"`
	TimerSeconds   float64         `json:"timer" validate:"timer_seconds"`
	Category       string          `json:"category,omitempty"`
	Difficulty     DifficultyLevel `json:"difficulty,omitempty"`
	Tags           []string        `json:"tags,omitempty"`
	Flashcards     []Flashcard     `json:"flashcards,omitempty"`
	QuizQuestions  []QuestionSpec  `json:"quizQuestions,omitempty"`
	SessionHistory []SessionResult `json:"stats,omitempty"`
}

func (d *QuizDocument) HasFlashcards() bool {
	return len(d.Flashcards) > 0
}

func (d *QuizDocument) HasQuestions() bool {
	return len(d.QuizQuestions) > 0
}

// TotalItems counts flashcards and questions together.
func (d *QuizDocument) TotalItems() int {
	return len(d.Flashcards) + len(d.QuizQuestions)
}

// DocumentInfo is the listing entry of a stored quiz document.
type DocumentInfo struct {
	Name         string  `json:"name"`
	Title        string  `json:"title"`
	TimerSeconds float64 `json:"timer"`
	Flashcards   int     `json:"flashcards"`
	Questions    int     `json:"questions"`
	Results      int     `json:"results"`
	LastModified string  `json:"last_modified"`
	HasBackup    bool    `json:"has_backup"`
}
