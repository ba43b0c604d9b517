package engine

import (
	"time"

	"github.com/SAP-F-2025/flashquiz-service/internal/models"
)

// startItem starts timing the current item. Questions already answered or
// skipped stay closed so revisiting them records nothing.
func (e *Engine) startItem() {
	now := e.clock()
	e.state.ItemStartedAt = &now
	e.state.ItemTimingOpen = e.state.Mode != models.ModeQuiz || !e.isResolved(e.state.CurrentIndex)
}

// endItem closes timing for the current item and records its elapsed seconds,
// excluding any pause still in progress.
func (e *Engine) endItem() float64 {
	if !e.state.ItemTimingOpen || e.state.ItemStartedAt == nil {
		return 0
	}

	spent := e.clock().Sub(*e.state.ItemStartedAt).Seconds()
	elapsed := max(0, spent-e.itemPause().Seconds())

	e.state.PerItemElapsed = append(e.state.PerItemElapsed, elapsed)
	e.state.ItemTimingOpen = false
	return elapsed
}

// itemPause is the part of the running pause that falls after the current item
// started. An item entered mid-pause only loses the time since it was entered.
func (e *Engine) itemPause() time.Duration {
	if !e.state.IsPaused || e.state.PauseStartedAt == nil {
		return 0
	}
	from := *e.state.PauseStartedAt
	if e.state.ItemStartedAt != nil && e.state.ItemStartedAt.After(from) {
		from = *e.state.ItemStartedAt
	}
	return max(0, e.clock().Sub(from))
}

func (e *Engine) currentPauseSec() float64 {
	if !e.state.IsPaused || e.state.PauseStartedAt == nil {
		return 0
	}
	return e.clock().Sub(*e.state.PauseStartedAt).Seconds()
}

// Pause suspends time accounting. Pausing twice is a logged no-op.
func (e *Engine) Pause() error {
	if err := e.requireActive(); err != nil {
		return err
	}
	if e.state.IsPaused {
		e.logger.Warn("Quiz is already paused", "username", e.state.Username)
		return nil
	}

	now := e.clock()
	e.state.PauseStartedAt = &now
	e.state.IsPaused = true
	e.state.Pauses++
	return nil
}

// Resume folds the pause into the totals and shifts the current item's start
// so the pause does not count against it. Resuming while running is a logged no-op.
func (e *Engine) Resume() error {
	if err := e.requireActive(); err != nil {
		return err
	}
	if !e.state.IsPaused {
		e.logger.Warn("Quiz is not paused", "username", e.state.Username)
		return nil
	}

	paused := e.itemPause()
	e.endPause()
	if e.state.ItemStartedAt != nil {
		shifted := e.state.ItemStartedAt.Add(paused)
		e.state.ItemStartedAt = &shifted
	} else {
		e.startItem()
	}
	return nil
}

func (e *Engine) endPause() time.Duration {
	if !e.state.IsPaused || e.state.PauseStartedAt == nil {
		e.state.IsPaused = false
		return 0
	}

	paused := e.clock().Sub(*e.state.PauseStartedAt)
	if paused < 0 {
		paused = 0
	}
	e.state.TotalPauseSec += paused.Seconds()
	e.state.PauseStartedAt = nil
	e.state.IsPaused = false
	return paused
}

// now is the reference time for totals: the finish time once finished.
func (e *Engine) now() time.Time {
	if e.state.IsFinished && e.state.FinishedAt != nil {
		return *e.state.FinishedAt
	}
	return e.clock()
}

func (e *Engine) totalTimeSec() float64 {
	if e.state.StartedAt.IsZero() {
		return 0
	}
	total := e.now().Sub(e.state.StartedAt).Seconds() - e.state.TotalPauseSec
	if !e.state.IsFinished {
		total -= e.currentPauseSec()
	}
	return max(0, total)
}

func (e *Engine) averageItemTime() float64 {
	if len(e.state.PerItemElapsed) == 0 {
		return 0
	}
	var sum float64
	for _, t := range e.state.PerItemElapsed {
		sum += t
	}
	return sum / float64(len(e.state.PerItemElapsed))
}
