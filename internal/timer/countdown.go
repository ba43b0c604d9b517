// Package timer provides the per-question countdown that drives time's-up
// navigation for hosted sessions.
package timer

import (
	"context"
	"sync"
	"time"
)

const DefaultInterval = time.Second

// Countdown counts whole seconds down to zero and fires onTimeUp once per run.
// Callbacks run on the countdown goroutine without the lock held.
type Countdown struct {
	mu        sync.Mutex
	duration  int
	remaining int
	paused    bool
	running   bool
	run       int
	cancel    context.CancelFunc
	startedAt time.Time

	interval time.Duration
	clock    func() time.Time
	onTimeUp func()
	onTick   func(remaining int)
}

type Option func(*Countdown)

// WithInterval sets how long one countdown second lasts.
func WithInterval(d time.Duration) Option {
	return func(c *Countdown) {
		if d > 0 {
			c.interval = d
		}
	}
}

// OnTick registers a callback receiving the remaining seconds after each tick
// and after Reset.
func OnTick(fn func(remaining int)) Option {
	return func(c *Countdown) { c.onTick = fn }
}

func WithClock(clock func() time.Time) Option {
	return func(c *Countdown) { c.clock = clock }
}

func New(seconds int, onTimeUp func(), opts ...Option) *Countdown {
	c := &Countdown{
		duration:  seconds,
		remaining: seconds,
		interval:  DefaultInterval,
		clock:     time.Now,
		onTimeUp:  onTimeUp,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.startedAt = c.clock()
	return c
}

// Start begins counting from the current remaining time. A running countdown
// is restarted. The countdown stops when ctx is cancelled.
func (c *Countdown) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.run++
	c.running = true
	c.paused = false

	go c.loop(runCtx, c.run)
}

func (c *Countdown) loop(ctx context.Context, run int) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := c.tick(run); done {
				return
			}
		}
	}
}

// tick advances the countdown by one second. It reports whether the run is over.
func (c *Countdown) tick(run int) bool {
	c.mu.Lock()
	if run != c.run || !c.running {
		c.mu.Unlock()
		return true
	}
	if c.paused {
		c.mu.Unlock()
		return false
	}

	c.remaining--
	remaining := c.remaining
	timeUp := remaining <= 0
	if timeUp {
		c.stopLocked()
	}
	onTick, onTimeUp := c.onTick, c.onTimeUp
	c.mu.Unlock()

	if onTick != nil {
		onTick(remaining)
	}
	if timeUp && onTimeUp != nil {
		onTimeUp()
	}
	return timeUp
}

func (c *Countdown) Pause() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

func (c *Countdown) Resume() {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()
}

// Stop halts the countdown without firing onTimeUp. Remaining time is kept.
func (c *Countdown) Stop() {
	c.mu.Lock()
	c.stopLocked()
	c.mu.Unlock()
}

func (c *Countdown) stopLocked() {
	c.running = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Reset stops the countdown and rewinds it. seconds <= 0 keeps the previous duration.
func (c *Countdown) Reset(seconds int) {
	c.mu.Lock()
	c.stopLocked()
	if seconds > 0 {
		c.duration = seconds
	}
	c.remaining = c.duration
	c.paused = false
	c.startedAt = c.clock()
	remaining, onTick := c.remaining, c.onTick
	c.mu.Unlock()

	if onTick != nil {
		onTick(remaining)
	}
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Elapsed returns whole seconds since the countdown was created or last reset.
func (c *Countdown) Elapsed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int(c.clock().Sub(c.startedAt).Seconds())
}

func (c *Countdown) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

func (c *Countdown) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
