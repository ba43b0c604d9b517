package engine

import (
	"math"
	"slices"

	"github.com/SAP-F-2025/flashquiz-service/internal/models"
)

const (
	LevelExcellent        = "excellent"
	LevelVeryGood         = "very good"
	LevelGood             = "good"
	LevelAcceptable       = "acceptable"
	LevelNeedsImprovement = "needs improvement"

	AnalysisNotAvailable = "not available"
	AnalysisVeryEasy     = "very easy"
	AnalysisEasy         = "easy"
	AnalysisMedium       = "medium"
	AnalysisHard         = "hard"
	AnalysisVeryHard     = "very hard"
)

// fallback budget when a document carries no timer
const defaultTimerSeconds = 30

var difficultyWeights = map[models.DifficultyLevel]float64{
	models.DifficultyEasy:   1,
	models.DifficultyMedium: 1.5,
	models.DifficultyHard:   2,
	models.DifficultyExpert: 3,
}

// Finish ends the session and returns its results. Calling it again returns
// the same results.
func (e *Engine) Finish() (*models.SessionResult, error) {
	if err := e.requireInitialized(); err != nil {
		return nil, err
	}
	if e.state.IsFinished {
		e.logger.Warn("Quiz is already finished", "username", e.state.Username)
		return e.Results()
	}

	if e.state.Mode == models.ModeQuiz {
		e.endItem()
	}
	e.markFinished()

	e.logger.Info("Quiz finished", "username", e.state.Username)
	return e.Results()
}

// Results computes the scored outcome of the session so far.
func (e *Engine) Results() (result *models.SessionResult, err error) {
	if err := e.requireInitialized(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = NewQuizEngineError("failed to compute results", panicError{r})
		}
	}()

	return e.computeResults(), nil
}

func (e *Engine) computeResults() *models.SessionResult {
	total := len(e.questions)
	answered := len(e.state.Answers)
	correct := e.correctCount()
	wrong := len(e.state.WrongAnswers)
	skipped := len(e.state.SkippedQuestions)

	scorePercent := 0.0
	if total > 0 {
		scorePercent = float64(correct) / float64(total) * 100
	}

	var weighted, totalWeight float64
	for _, a := range e.state.Answers {
		w := questionWeight(a.Difficulty)
		totalWeight += w
		if a.IsCorrect {
			weighted += w
		}
	}
	weightedPercent := 0.0
	if totalWeight > 0 {
		weightedPercent = weighted / totalWeight * 100
	}

	times := e.state.PerItemElapsed
	avg := e.averageItemTime()
	var fastest, slowest float64
	if len(times) > 0 {
		fastest = slices.Min(times)
		slowest = slices.Max(times)
	}
	perItem := make([]float64, len(times))
	for i, t := range times {
		perItem[i] = round2(t)
	}

	completionRate := 0
	if total > 0 {
		completionRate = int(math.Round(float64(answered) / float64(total) * 100))
	}

	result := &models.SessionResult{
		Username:  e.state.Username,
		Date:      e.now(),
		QuizTitle: e.doc.Title,
		Mode:      models.ModeQuiz,

		TotalQuestions:    total,
		AnsweredQuestions: answered,
		Correct:           correct,
		Wrong:             wrong,
		Skipped:           skipped,
		Unanswered:        max(0, total-answered-skipped),

		ScorePercent:         round2(scorePercent),
		WeightedScorePercent: round2(weightedPercent),
		LetterGrade:          LetterGrade(scorePercent),

		TotalTimeSec:          math.Round(e.totalTimeSec()),
		AvgTimePerQuestionSec: round2(avg),
		FastestQuestionSec:    round2(fastest),
		SlowestQuestionSec:    round2(slowest),
		PerQuestionTimeSec:    perItem,

		Pauses:            e.state.Pauses,
		TotalPauseTimeSec: math.Round(e.state.TotalPauseSec),

		Streak:             e.state.Streak,
		MaxStreak:          e.state.MaxStreak,
		Accuracy:           round2(e.accuracy()),
		PerformanceLevel:   e.performanceLevel(),
		DifficultyAnalysis: e.difficultyAnalysis(),

		CategoryPerformance: e.groupPerformance(func(a models.AnswerRecord) string {
			if a.Category == "" {
				return models.DefaultCategory
			}
			return a.Category
		}),
		DifficultyPerformance: e.groupPerformance(func(a models.AnswerRecord) string {
			return string(a.Difficulty.OrDefault())
		}),

		WrongQuestionsList:   slices.Clone(e.state.WrongAnswers),
		SkippedQuestionsList: e.skippedList(),
		DetailedAnswers:      e.detailedAnswers(),

		CompletionRate: completionRate,
		Efficiency:     Efficiency(scorePercent, avg, e.doc.TimerSeconds),
	}

	return result
}

func (e *Engine) skippedList() []models.SkippedQuestion {
	list := make([]models.SkippedQuestion, len(e.state.SkippedQuestions))
	for i, s := range e.state.SkippedQuestions {
		list[i] = models.SkippedQuestion{Index: s.Index, Question: s.Question, CorrectAnswer: s.CorrectAnswer}
	}
	return list
}

func (e *Engine) detailedAnswers() []models.DetailedAnswer {
	list := make([]models.DetailedAnswer, len(e.state.Answers))
	for i, a := range e.state.Answers {
		list[i] = models.DetailedAnswer{
			QuestionIndex: a.ItemIndex,
			IsCorrect:     a.IsCorrect,
			TimeSpent:     round2(a.TimeSpent),
			Category:      a.Category,
			Difficulty:    a.Difficulty,
		}
	}
	return list
}

func (e *Engine) groupPerformance(key func(models.AnswerRecord) string) map[string]*models.GroupPerformance {
	groups := map[string]*models.GroupPerformance{}
	for _, a := range e.state.Answers {
		k := key(a)
		g, ok := groups[k]
		if !ok {
			g = &models.GroupPerformance{Questions: []int{}}
			groups[k] = g
		}
		g.Total++
		if a.IsCorrect {
			g.Correct++
		}
		g.TotalTime += a.TimeSpent
		g.Questions = append(g.Questions, a.ItemIndex)
	}

	for _, g := range groups {
		if g.Total > 0 {
			g.Accuracy = round2(float64(g.Correct) / float64(g.Total) * 100)
			g.AvgTime = round2(g.TotalTime / float64(g.Total))
		}
	}
	return groups
}

func (e *Engine) budget() float64 {
	if e.doc == nil || e.doc.TimerSeconds <= 0 {
		return defaultTimerSeconds
	}
	return e.doc.TimerSeconds
}

// performanceLevel buckets accuracy and speed against the per-question budget.
func (e *Engine) performanceLevel() string {
	accuracy := e.accuracy()
	avg := e.averageItemTime()
	budget := e.budget()

	switch {
	case accuracy >= 90 && avg <= budget*0.5:
		return LevelExcellent
	case accuracy >= 80 && avg <= budget*0.7:
		return LevelVeryGood
	case accuracy >= 70 && avg <= budget*0.9:
		return LevelGood
	case accuracy >= 60:
		return LevelAcceptable
	default:
		return LevelNeedsImprovement
	}
}

// difficultyAnalysis describes how hard the session appeared for this user.
func (e *Engine) difficultyAnalysis() string {
	if len(e.state.Answers) == 0 {
		return AnalysisNotAvailable
	}

	accuracy := e.accuracy()
	avg := e.averageItemTime()
	budget := e.budget()

	switch {
	case accuracy >= 85 && avg <= budget*0.6:
		return AnalysisVeryEasy
	case accuracy >= 75 && avg <= budget*0.8:
		return AnalysisEasy
	case accuracy >= 60 && avg <= budget:
		return AnalysisMedium
	case accuracy >= 40:
		return AnalysisHard
	default:
		return AnalysisVeryHard
	}
}

func questionWeight(d models.DifficultyLevel) float64 {
	if w, ok := difficultyWeights[d]; ok {
		return w
	}
	return difficultyWeights[models.DifficultyMedium]
}

// LetterGrade maps a percentage to A-F.
func LetterGrade(scorePercent float64) string {
	switch {
	case scorePercent >= 90:
		return "A"
	case scorePercent >= 80:
		return "B"
	case scorePercent >= 70:
		return "C"
	case scorePercent >= 60:
		return "D"
	default:
		return "F"
	}
}

// Efficiency blends score (70%) and speed against the budget (30%) into 0-100.
func Efficiency(scorePercent, avgTime, maxTime float64) int {
	if maxTime <= 0 || avgTime <= 0 {
		return 0
	}
	timeEfficiency := math.Max(0, 1-avgTime/maxTime)
	return int(math.Round((scorePercent/100*0.7 + timeEfficiency*0.3) * 100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type panicError struct {
	value any
}

func (p panicError) Error() string {
	if err, ok := p.value.(error); ok {
		return err.Error()
	}
	return "unexpected failure"
}
