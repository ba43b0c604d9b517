package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/flashquiz-service/internal/models"
)

const (
	sheetSummary     = "Summary"
	sheetAnswers     = "Answers"
	sheetCategories  = "Categories"
	sheetLeaderboard = "Leaderboard"

	exportDateLayout = "2006-01-02 15:04:05"
)

type exportService struct {
	stats  StatsService
	logger *slog.Logger
}

func NewExportService(stats StatsService, logger *slog.Logger) ExportService {
	return &exportService{
		stats:  stats,
		logger: logger,
	}
}

// ExportResult writes a workbook with summary, answers and categories sheets.
func (s *exportService) ExportResult(ctx context.Context, result *models.SessionResult) ([]byte, error) {
	if result == nil {
		return nil, ErrNoResults
	}

	f := excelize.NewFile()
	defer f.Close()

	w := &workbook{file: f}
	w.renameFirst(sheetSummary)
	w.rows(sheetSummary, [][]interface{}{
		{"Field", "Value"},
		{"Username", result.Username},
		{"Quiz", result.QuizTitle},
		{"Date", result.Date.Format(exportDateLayout)},
		{"Total questions", result.TotalQuestions},
		{"Answered", result.AnsweredQuestions},
		{"Correct", result.Correct},
		{"Wrong", result.Wrong},
		{"Skipped", result.Skipped},
		{"Score %", result.ScorePercent},
		{"Weighted score %", result.WeightedScorePercent},
		{"Grade", result.LetterGrade},
		{"Total time (s)", result.TotalTimeSec},
		{"Average time (s)", result.AvgTimePerQuestionSec},
		{"Pauses", result.Pauses},
		{"Max streak", result.MaxStreak},
		{"Performance", result.PerformanceLevel},
		{"Difficulty", result.DifficultyAnalysis},
		{"Efficiency", result.Efficiency},
	})
	w.header(sheetSummary, 2)
	w.widths(sheetSummary, "A", "B", 24)

	w.sheet(sheetAnswers)
	answers := [][]interface{}{{"Question", "Correct", "Time (s)", "Category", "Difficulty"}}
	for _, a := range result.DetailedAnswers {
		answers = append(answers, []interface{}{a.QuestionIndex + 1, a.IsCorrect, a.TimeSpent, a.Category, string(a.Difficulty)})
	}
	w.rows(sheetAnswers, answers)
	w.header(sheetAnswers, 5)

	w.sheet(sheetCategories)
	categories := [][]interface{}{{"Category", "Correct", "Total", "Accuracy %", "Average time (s)"}}
	names := make([]string, 0, len(result.CategoryPerformance))
	for name := range result.CategoryPerformance {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		g := result.CategoryPerformance[name]
		categories = append(categories, []interface{}{name, g.Correct, g.Total, g.Accuracy, g.AvgTime})
	}
	w.rows(sheetCategories, categories)
	w.header(sheetCategories, 5)
	w.widths(sheetCategories, "A", "A", 20)

	data, err := w.bytes()
	if err != nil {
		return nil, err
	}
	s.logger.Info("Result exported", "username", result.Username, "bytes", len(data))
	return data, nil
}

// ExportLeaderboard writes the ranked leaderboard of a document.
func (s *exportService) ExportLeaderboard(ctx context.Context, document string) ([]byte, error) {
	entries, err := s.stats.Leaderboard(ctx, document)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	w := &workbook{file: f}
	w.renameFirst(sheetLeaderboard)
	rows := [][]interface{}{{"Rank", "Username", "Score %", "Correct", "Total", "Date"}}
	for _, e := range entries {
		rows = append(rows, []interface{}{e.Rank, e.Username, e.ScorePercent, e.CorrectAnswers, e.TotalQuestions, e.Date.Format(exportDateLayout)})
	}
	w.rows(sheetLeaderboard, rows)
	w.header(sheetLeaderboard, 6)
	w.widths(sheetLeaderboard, "B", "B", 24)
	w.widths(sheetLeaderboard, "F", "F", 20)

	data, err := w.bytes()
	if err != nil {
		return nil, err
	}
	s.logger.Info("Leaderboard exported", "document", document, "entries", len(entries))
	return data, nil
}

// workbook keeps the first excelize error so sheet building reads linearly.
type workbook struct {
	file *excelize.File
	err  error
}

func (w *workbook) renameFirst(name string) {
	if w.err != nil {
		return
	}
	w.err = w.file.SetSheetName(w.file.GetSheetName(0), name)
}

func (w *workbook) sheet(name string) {
	if w.err != nil {
		return
	}
	_, w.err = w.file.NewSheet(name)
}

func (w *workbook) rows(sheet string, rows [][]interface{}) {
	for i, row := range rows {
		if w.err != nil {
			return
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			w.err = err
			return
		}
		w.err = w.file.SetSheetRow(sheet, cell, &row)
	}
}

func (w *workbook) header(sheet string, columns int) {
	if w.err != nil {
		return
	}
	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		w.err = err
		return
	}
	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.file.SetCellStyle(sheet, "A1", last, style)
}

func (w *workbook) widths(sheet, start, end string, width float64) {
	if w.err != nil {
		return
	}
	w.err = w.file.SetColWidth(sheet, start, end, width)
}

func (w *workbook) bytes() ([]byte, error) {
	if w.err != nil {
		return nil, fmt.Errorf("failed to build workbook: %w", w.err)
	}
	w.file.SetActiveSheet(0)
	buf, err := w.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
