package engine

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/SAP-F-2025/flashquiz-service/internal/models"
	"github.com/SAP-F-2025/flashquiz-service/internal/shuffle"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestEngine(clock *fakeClock) *Engine {
	return New(
		WithClock(clock.Now),
		WithSource(shuffle.NewSeeded(shuffle.DefaultTestSeed)),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func singleQuestionDoc() *models.QuizDocument {
	return &models.QuizDocument{
		Title:        "Arithmetic",
		TimerSeconds: 30,
		QuizQuestions: []models.QuestionSpec{
			{Question: "1+1 equals?", CorrectAnswer: "2", IncorrectAnswers: []string{"3", "4"}},
		},
	}
}

func mixedDoc(flashcards, questions int) *models.QuizDocument {
	doc := &models.QuizDocument{Title: "Mixed", TimerSeconds: 30}
	for i := 0; i < flashcards; i++ {
		doc.Flashcards = append(doc.Flashcards, models.Flashcard{
			Question: "Card question " + string(rune('A'+i)),
			Answer:   "Answer " + string(rune('A'+i)),
		})
	}
	for i := 0; i < questions; i++ {
		doc.QuizQuestions = append(doc.QuizQuestions, models.QuestionSpec{
			Question:         "Quiz question " + string(rune('A'+i)),
			CorrectAnswer:    "right",
			IncorrectAnswers: []string{"wrong one", "wrong two"},
		})
	}
	return doc
}

func mustInit(t *testing.T, e *Engine, doc *models.QuizDocument) {
	t.Helper()
	if err := e.Initialize(doc, "alice"); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
}

func TestEngine_NotInitialized(t *testing.T) {
	e := newTestEngine(newFakeClock())

	if _, err := e.CurrentItem(); !errors.Is(err, ErrDataIntegrity) {
		t.Errorf("CurrentItem() error = %v, want data integrity error", err)
	}
	if _, err := e.Next(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Next() error = %v, want ErrNotInitialized", err)
	}
	if _, err := e.Results(); KindOf(err) != KindDataIntegrity {
		t.Errorf("Results() kind = %q, want %q", KindOf(err), KindDataIntegrity)
	}
}

func TestEngine_Initialize(t *testing.T) {
	tests := []struct {
		name     string
		doc      *models.QuizDocument
		username string
		wantErr  error
		wantMode models.SessionMode
	}{
		{name: "flashcards first", doc: mixedDoc(2, 1), username: "alice", wantMode: models.ModeFlashcard},
		{name: "questions only", doc: mixedDoc(0, 2), username: "alice", wantMode: models.ModeQuiz},
		{name: "flashcards only", doc: mixedDoc(1, 0), username: "alice", wantMode: models.ModeFlashcard},
		{name: "empty document", doc: mixedDoc(0, 0), username: "alice", wantErr: ErrValidation},
		{name: "nil document", doc: nil, username: "alice", wantErr: ErrValidation},
		{name: "short username", doc: mixedDoc(1, 1), username: "a", wantErr: ErrValidation},
		{name: "username with markup", doc: mixedDoc(1, 1), username: "<bob>", wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(newFakeClock())
			err := e.Initialize(tt.doc, tt.username)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Initialize() error = %v, want %v", err, tt.wantErr)
				}
				if e.IsInitialized() {
					t.Error("engine should stay uninitialized after a failed Initialize")
				}
				return
			}
			if err != nil {
				t.Fatalf("Initialize() error = %v", err)
			}
			if e.Mode() != tt.wantMode {
				t.Errorf("Mode() = %q, want %q", e.Mode(), tt.wantMode)
			}
			if e.CurrentIndex() != 0 {
				t.Errorf("CurrentIndex() = %d, want 0", e.CurrentIndex())
			}
		})
	}
}

func TestEngine_TrimsUsername(t *testing.T) {
	e := newTestEngine(newFakeClock())
	if err := e.Initialize(singleQuestionDoc(), "  bob  "); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if e.Username() != "bob" {
		t.Errorf("Username() = %q, want %q", e.Username(), "bob")
	}
}

func TestEngine_NavigationVisitsEveryItem(t *testing.T) {
	e := newTestEngine(newFakeClock())
	mustInit(t, e, mixedDoc(2, 3))

	type position struct {
		mode  models.SessionMode
		index int
	}
	want := []position{
		{models.ModeFlashcard, 0},
		{models.ModeFlashcard, 1},
		{models.ModeQuiz, 0},
		{models.ModeQuiz, 1},
		{models.ModeQuiz, 2},
	}

	var got []position
	falses := 0
	for i := 0; i < 10 && !e.IsFinished(); i++ {
		item, err := e.CurrentItem()
		if err != nil {
			t.Fatalf("CurrentItem() error = %v", err)
		}
		got = append(got, position{e.Mode(), item.Index})

		moved, err := e.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if !moved {
			falses++
		}
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("visited %v, want %v", got, want)
	}
	if falses != 1 {
		t.Errorf("Next() returned false %d times, want 1", falses)
	}
	if _, err := e.Next(); !errors.Is(err, ErrAlreadyFinished) {
		t.Errorf("Next() after finish error = %v, want ErrAlreadyFinished", err)
	}
	if item, err := e.CurrentItem(); err != nil || item != nil {
		t.Errorf("CurrentItem() after finish = %v, %v; want nil, nil", item, err)
	}
}

func TestEngine_ModeTransitionAfterFlashcards(t *testing.T) {
	for _, n := range []int{1, 3} {
		e := newTestEngine(newFakeClock())
		mustInit(t, e, mixedDoc(n, 2))

		for i := 0; i < n; i++ {
			if _, err := e.Next(); err != nil {
				t.Fatalf("Next() error = %v", err)
			}
		}
		if e.Mode() != models.ModeQuiz || e.CurrentIndex() != 0 {
			t.Errorf("after %d Next() calls: mode %q index %d, want quiz at 0", n, e.Mode(), e.CurrentIndex())
		}
	}
}

func TestEngine_PrevStopsAtZero(t *testing.T) {
	e := newTestEngine(newFakeClock())
	mustInit(t, e, mixedDoc(3, 0))

	moved, err := e.Prev()
	if err != nil || moved {
		t.Fatalf("Prev() at 0 = %v, %v; want false, nil", moved, err)
	}

	if _, err := e.Next(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.FlipFlashcard(); err != nil {
		t.Fatal(err)
	}
	moved, err = e.Prev()
	if err != nil || !moved {
		t.Fatalf("Prev() at 1 = %v, %v; want true, nil", moved, err)
	}
	item, _ := e.CurrentItem()
	if item.Flashcard.IsFlipped {
		t.Error("Prev() should clear the flip state")
	}
}

func TestEngine_GoTo(t *testing.T) {
	e := newTestEngine(newFakeClock())
	mustInit(t, e, mixedDoc(0, 3))

	if err := e.GoTo(2); err != nil {
		t.Fatalf("GoTo(2) error = %v", err)
	}
	if e.CurrentIndex() != 2 {
		t.Errorf("CurrentIndex() = %d, want 2", e.CurrentIndex())
	}
	for _, idx := range []int{-1, 3} {
		if err := e.GoTo(idx); !errors.Is(err, ErrValidation) {
			t.Errorf("GoTo(%d) error = %v, want validation error", idx, err)
		}
	}
}

func TestEngine_FlipFlashcard(t *testing.T) {
	e := newTestEngine(newFakeClock())
	mustInit(t, e, mixedDoc(1, 1))

	flipped, err := e.FlipFlashcard()
	if err != nil || !flipped {
		t.Fatalf("FlipFlashcard() = %v, %v; want true, nil", flipped, err)
	}
	flipped, _ = e.FlipFlashcard()
	if flipped {
		t.Error("second FlipFlashcard() should show the front again")
	}

	if _, err := e.Next(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.FlipFlashcard(); !errors.Is(err, ErrValidation) {
		t.Errorf("FlipFlashcard() in quiz mode error = %v, want validation error", err)
	}
}

func TestEngine_Scoring(t *testing.T) {
	e := newTestEngine(newFakeClock())
	mustInit(t, e, singleQuestionDoc())

	correct, err := e.AnswerQuestion("2")
	if err != nil {
		t.Fatalf("AnswerQuestion() error = %v", err)
	}
	if !correct {
		t.Fatal("AnswerQuestion(\"2\") = false, want true")
	}

	results, err := e.Results()
	if err != nil {
		t.Fatalf("Results() error = %v", err)
	}
	if results.Correct != 1 {
		t.Errorf("Correct = %d, want 1", results.Correct)
	}
	if results.ScorePercent != 100 {
		t.Errorf("ScorePercent = %v, want 100", results.ScorePercent)
	}
	if results.LetterGrade != "A" {
		t.Errorf("LetterGrade = %q, want A", results.LetterGrade)
	}
	if results.CompletionRate != 100 {
		t.Errorf("CompletionRate = %d, want 100", results.CompletionRate)
	}
}

func TestEngine_AnswerRejection(t *testing.T) {
	tests := []struct {
		name   string
		answer string
	}{
		{name: "not offered", answer: "99"},
		{name: "empty", answer: "   "},
		{name: "only script", answer: "<script>alert(1)</script>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(newFakeClock())
			mustInit(t, e, singleQuestionDoc())

			_, err := e.AnswerQuestion(tt.answer)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("AnswerQuestion(%q) error = %v, want validation error", tt.answer, err)
			}

			status, _ := e.Status()
			if status.TotalAnswers != 0 {
				t.Errorf("TotalAnswers = %d, want 0", status.TotalAnswers)
			}
		})
	}
}

func TestEngine_AnswerGuards(t *testing.T) {
	t.Run("flashcard mode", func(t *testing.T) {
		e := newTestEngine(newFakeClock())
		mustInit(t, e, mixedDoc(1, 1))
		if _, err := e.AnswerQuestion("right"); !errors.Is(err, ErrValidation) {
			t.Errorf("error = %v, want validation error", err)
		}
	})

	t.Run("paused", func(t *testing.T) {
		e := newTestEngine(newFakeClock())
		mustInit(t, e, singleQuestionDoc())
		_ = e.Pause()
		if _, err := e.AnswerQuestion("2"); !errors.Is(err, ErrValidation) {
			t.Errorf("error = %v, want validation error", err)
		}
	})

	t.Run("answered twice", func(t *testing.T) {
		e := newTestEngine(newFakeClock())
		mustInit(t, e, singleQuestionDoc())
		if _, err := e.AnswerQuestion("3"); err != nil {
			t.Fatal(err)
		}
		if _, err := e.AnswerQuestion("2"); !errors.Is(err, ErrValidation) {
			t.Errorf("error = %v, want validation error", err)
		}
		results, _ := e.Results()
		if results.AnsweredQuestions != 1 || results.Wrong != 1 {
			t.Errorf("answered %d wrong %d, want 1 and 1", results.AnsweredQuestions, results.Wrong)
		}
	})

	t.Run("skipped after answering", func(t *testing.T) {
		e := newTestEngine(newFakeClock())
		mustInit(t, e, singleQuestionDoc())
		if _, err := e.AnswerQuestion("2"); err != nil {
			t.Fatal(err)
		}
		if _, err := e.SkipQuestion(); !errors.Is(err, ErrValidation) {
			t.Errorf("error = %v, want validation error", err)
		}
		results, _ := e.Results()
		if results.Skipped != 0 || results.Correct != 1 {
			t.Errorf("skipped %d correct %d, want 0 and 1", results.Skipped, results.Correct)
		}
	})

	t.Run("finished", func(t *testing.T) {
		e := newTestEngine(newFakeClock())
		mustInit(t, e, singleQuestionDoc())
		if _, err := e.Finish(); err != nil {
			t.Fatal(err)
		}
		if _, err := e.AnswerQuestion("2"); !errors.Is(err, ErrAlreadyFinished) {
			t.Errorf("error = %v, want ErrAlreadyFinished", err)
		}
	})
}

func TestEngine_ChoiceSetIsStable(t *testing.T) {
	e := newTestEngine(newFakeClock())
	doc := singleQuestionDoc()
	doc.QuizQuestions[0].IncorrectAnswers = []string{"3", "4", "5", "6", "7"}
	mustInit(t, e, doc)

	first, _ := e.CurrentItem()
	second, _ := e.CurrentItem()
	if !reflect.DeepEqual(first.Question.Answers, second.Question.Answers) {
		t.Errorf("choices changed between renders: %v then %v", first.Question.Answers, second.Question.Answers)
	}
	if len(first.Question.Answers) != 1+shuffle.DefaultMaxIncorrect {
		t.Errorf("len(Answers) = %d, want %d", len(first.Question.Answers), 1+shuffle.DefaultMaxIncorrect)
	}
}

func TestEngine_SkipQuestion(t *testing.T) {
	e := newTestEngine(newFakeClock())
	mustInit(t, e, mixedDoc(0, 2))

	skipped, err := e.SkipQuestion()
	if err != nil || !skipped {
		t.Fatalf("SkipQuestion() = %v, %v; want true, nil", skipped, err)
	}
	if _, err := e.SkipQuestion(); !errors.Is(err, ErrValidation) {
		t.Errorf("second SkipQuestion() error = %v, want validation error", err)
	}

	results, _ := e.Results()
	if results.Skipped != 1 || results.Unanswered != 1 || results.AnsweredQuestions != 0 {
		t.Errorf("skipped %d unanswered %d answered %d, want 1, 1, 0",
			results.Skipped, results.Unanswered, results.AnsweredQuestions)
	}
	if len(results.SkippedQuestionsList) != 1 || results.SkippedQuestionsList[0].CorrectAnswer != "right" {
		t.Errorf("SkippedQuestionsList = %+v", results.SkippedQuestionsList)
	}
}

func TestEngine_PauseAccounting(t *testing.T) {
	clock := newFakeClock()
	e := newTestEngine(clock)
	mustInit(t, e, singleQuestionDoc())

	clock.Advance(5 * time.Second)
	if err := e.Pause(); err != nil {
		t.Fatal(err)
	}
	if err := e.Pause(); err != nil {
		t.Fatalf("second Pause() error = %v, want nil", err)
	}
	clock.Advance(20 * time.Second)
	if err := e.Resume(); err != nil {
		t.Fatal(err)
	}
	if err := e.Resume(); err != nil {
		t.Fatalf("second Resume() error = %v, want nil", err)
	}
	clock.Advance(3 * time.Second)

	if _, err := e.AnswerQuestion("2"); err != nil {
		t.Fatal(err)
	}
	results, err := e.Finish()
	if err != nil {
		t.Fatal(err)
	}

	if got := results.PerQuestionTimeSec; len(got) != 1 || got[0] != 8 {
		t.Errorf("PerQuestionTimeSec = %v, want [8]", got)
	}
	if results.Pauses != 1 {
		t.Errorf("Pauses = %d, want 1", results.Pauses)
	}
	if results.TotalPauseTimeSec != 20 {
		t.Errorf("TotalPauseTimeSec = %v, want 20", results.TotalPauseTimeSec)
	}
	if results.TotalTimeSec != 8 {
		t.Errorf("TotalTimeSec = %v, want 8", results.TotalTimeSec)
	}
	if results.Efficiency != 92 {
		t.Errorf("Efficiency = %d, want 92", results.Efficiency)
	}
}

func TestEngine_FinishWhilePaused(t *testing.T) {
	clock := newFakeClock()
	e := newTestEngine(clock)
	mustInit(t, e, singleQuestionDoc())

	clock.Advance(4 * time.Second)
	_ = e.Pause()
	clock.Advance(10 * time.Second)

	results, err := e.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if e.IsPaused() {
		t.Error("finishing should end the pause")
	}
	if results.TotalPauseTimeSec != 10 || results.TotalTimeSec != 4 {
		t.Errorf("pause %v total %v, want 10 and 4", results.TotalPauseTimeSec, results.TotalTimeSec)
	}
	if got := results.PerQuestionTimeSec; len(got) != 1 || got[0] != 4 {
		t.Errorf("PerQuestionTimeSec = %v, want [4]", got)
	}
}

func TestEngine_NavigateWhilePaused(t *testing.T) {
	clock := newFakeClock()
	e := newTestEngine(clock)
	mustInit(t, e, mixedDoc(0, 2))

	if err := e.Pause(); err != nil {
		t.Fatal(err)
	}
	clock.Advance(10 * time.Second)
	if _, err := e.Next(); err != nil {
		t.Fatal(err)
	}
	clock.Advance(10 * time.Second)
	if err := e.Resume(); err != nil {
		t.Fatal(err)
	}
	clock.Advance(5 * time.Second)
	if _, err := e.AnswerQuestion("right"); err != nil {
		t.Fatal(err)
	}

	results, err := e.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if got := results.PerQuestionTimeSec; len(got) != 1 || got[0] != 5 {
		t.Errorf("PerQuestionTimeSec = %v, want [5]", got)
	}
	if results.TotalPauseTimeSec != 20 {
		t.Errorf("TotalPauseTimeSec = %v, want 20", results.TotalPauseTimeSec)
	}
}

func TestEngine_RevisitingAnsweredQuestionRecordsNoTime(t *testing.T) {
	tests := []struct {
		name    string
		revisit func(e *Engine) error
	}{
		{"prev", func(e *Engine) error { _, err := e.Prev(); return err }},
		{"goto", func(e *Engine) error { return e.GoTo(0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			e := newTestEngine(clock)
			mustInit(t, e, mixedDoc(0, 2))

			clock.Advance(3 * time.Second)
			if _, err := e.AnswerQuestion("right"); err != nil {
				t.Fatal(err)
			}
			if _, err := e.Next(); err != nil {
				t.Fatal(err)
			}
			if err := tt.revisit(e); err != nil {
				t.Fatal(err)
			}
			clock.Advance(7 * time.Second)

			results, err := e.Finish()
			if err != nil {
				t.Fatal(err)
			}
			if got := results.PerQuestionTimeSec; len(got) != 1 || got[0] != 3 {
				t.Errorf("PerQuestionTimeSec = %v, want [3]", got)
			}
		})
	}
}

func TestEngine_FinishIsIdempotent(t *testing.T) {
	clock := newFakeClock()
	e := newTestEngine(clock)
	mustInit(t, e, mixedDoc(0, 2))

	clock.Advance(2 * time.Second)
	if _, err := e.AnswerQuestion("right"); err != nil {
		t.Fatal(err)
	}

	first, err := e.Finish()
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	clock.Advance(time.Minute)
	second, err := e.Finish()
	if err != nil {
		t.Fatalf("second Finish() error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Finish() results differ:\n%+v\n%+v", first, second)
	}
	if err := e.Pause(); !errors.Is(err, ErrAlreadyFinished) {
		t.Errorf("Pause() after finish error = %v, want ErrAlreadyFinished", err)
	}
}

func TestEngine_WeightedScoreAndBreakdowns(t *testing.T) {
	e := newTestEngine(newFakeClock())
	doc := mixedDoc(0, 2)
	doc.QuizQuestions[0].Difficulty = models.DifficultyEasy
	doc.QuizQuestions[0].Category = "math"
	doc.QuizQuestions[1].Difficulty = models.DifficultyExpert
	mustInit(t, e, doc)

	if _, err := e.AnswerQuestion("right"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Next(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AnswerQuestion("wrong one"); err != nil {
		t.Fatal(err)
	}

	results, _ := e.Results()
	if results.ScorePercent != 50 {
		t.Errorf("ScorePercent = %v, want 50", results.ScorePercent)
	}
	if results.WeightedScorePercent != 25 {
		t.Errorf("WeightedScorePercent = %v, want 25", results.WeightedScorePercent)
	}
	if results.LetterGrade != "F" {
		t.Errorf("LetterGrade = %q, want F", results.LetterGrade)
	}
	if results.Streak != 0 || results.MaxStreak != 1 {
		t.Errorf("streak %d max %d, want 0 and 1", results.Streak, results.MaxStreak)
	}

	math := results.CategoryPerformance["math"]
	general := results.CategoryPerformance[models.DefaultCategory]
	if math == nil || math.Correct != 1 || general == nil || general.Correct != 0 {
		t.Errorf("CategoryPerformance = %+v", results.CategoryPerformance)
	}
	if expert := results.DifficultyPerformance["expert"]; expert == nil || expert.Accuracy != 0 {
		t.Errorf("DifficultyPerformance = %+v", results.DifficultyPerformance)
	}
	if len(results.WrongQuestionsList) != 1 || results.WrongQuestionsList[0].Index != 1 {
		t.Errorf("WrongQuestionsList = %+v", results.WrongQuestionsList)
	}
}

func TestEngine_StatusProgress(t *testing.T) {
	e := newTestEngine(newFakeClock())
	mustInit(t, e, mixedDoc(2, 2))

	steps := []float64{0, 25, 50, 75}
	for i, want := range steps {
		status, err := e.Status()
		if err != nil {
			t.Fatal(err)
		}
		if status.Progress != want {
			t.Errorf("step %d: Progress = %v, want %v", i, status.Progress, want)
		}
		if _, err := e.Next(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestEngine_Restart(t *testing.T) {
	e := newTestEngine(newFakeClock())
	mustInit(t, e, mixedDoc(0, 1))

	if _, err := e.AnswerQuestion("right"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Finish(); err != nil {
		t.Fatal(err)
	}
	if err := e.Restart(); err != nil {
		t.Fatalf("Restart() error = %v", err)
	}

	status, _ := e.Status()
	if status.IsFinished || status.TotalAnswers != 0 || e.Username() != "alice" {
		t.Errorf("after Restart: %+v", status)
	}
}

func TestEngine_SerializeRoundTrip(t *testing.T) {
	clock := newFakeClock()
	e := newTestEngine(clock)
	doc := mixedDoc(1, 2)
	mustInit(t, e, doc)

	_, _ = e.Next()
	before, _ := e.CurrentItem()
	clock.Advance(3 * time.Second)
	if _, err := e.AnswerQuestion("right"); err != nil {
		t.Fatal(err)
	}

	data, err := e.Serialize()
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	restored := newTestEngine(clock)
	if err := restored.Deserialize(data, doc); err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}

	want, _ := e.Status()
	got, _ := restored.Status()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("restored status = %+v, want %+v", got, want)
	}
	after, _ := restored.CurrentItem()
	if !reflect.DeepEqual(after.Question.Answers, before.Question.Answers) {
		t.Errorf("restored choices = %v, want %v", after.Question.Answers, before.Question.Answers)
	}
}

func TestEngine_DeserializeErrors(t *testing.T) {
	doc := singleQuestionDoc()
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{name: "malformed", data: `{`, wantErr: ErrValidation},
		{name: "missing state", data: `{"version":"2.0"}`, wantErr: ErrValidation},
		{name: "not initialized", data: `{"version":"2.0","state":{"mode":"quiz"}}`, wantErr: ErrValidation},
		{name: "index out of range", data: `{"version":"2.0","state":{"mode":"quiz","isInitialized":true,"currentIndex":7}}`, wantErr: ErrDataIntegrity},
		{name: "old version", data: `{"version":"1.0","state":{"mode":"quiz","isInitialized":true,"username":"alice"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(newFakeClock())
			err := e.Deserialize([]byte(tt.data), doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Deserialize() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Deserialize() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLetterGrade(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, "A"}, {90, "A"}, {89.99, "B"}, {80, "B"}, {70, "C"}, {60, "D"}, {59.9, "F"}, {0, "F"},
	}
	for _, tt := range tests {
		if got := LetterGrade(tt.score); got != tt.want {
			t.Errorf("LetterGrade(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestEfficiency(t *testing.T) {
	tests := []struct {
		name       string
		score, avg float64
		budget     float64
		want       int
	}{
		{name: "no budget", score: 100, avg: 5, budget: 0, want: 0},
		{name: "no time", score: 100, avg: 0, budget: 30, want: 0},
		{name: "perfect and quick", score: 100, avg: 3, budget: 30, want: 97},
		{name: "over budget", score: 50, avg: 60, budget: 30, want: 35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Efficiency(tt.score, tt.avg, tt.budget); got != tt.want {
				t.Errorf("Efficiency() = %d, want %d", got, tt.want)
			}
		})
	}
}
