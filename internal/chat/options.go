package chat

import (
	"log/slog"
	"time"

	"thyrocheck/internal/risk"
)

// Option configures an Engine.
type Option func(*Engine)

// WithDelay sets the thinking delay. Negative values are treated as zero.
func WithDelay(delay time.Duration) Option {
	return func(e *Engine) {
		if delay < 0 {
			delay = 0
		}
		e.delay = delay
	}
}

// WithScheduler replaces the timer used for delayed transitions.
func WithScheduler(scheduler Scheduler) Option {
	return func(e *Engine) {
		if scheduler != nil {
			e.scheduler = scheduler
		}
	}
}

// WithClock replaces the clock used for message and verdict timestamps.
func WithClock(clock Clock) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithEvaluator replaces the risk evaluator.
func WithEvaluator(evaluator risk.Evaluator) Option {
	return func(e *Engine) {
		e.evaluator = evaluator
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObserver subscribes an observer at construction time.
func WithObserver(observer Observer) Option {
	return func(e *Engine) {
		if observer != nil {
			e.subscribeLocked(observer)
		}
	}
}

// WithIDGenerator replaces the generator for session and message ids.
func WithIDGenerator(next func() string) Option {
	return func(e *Engine) {
		if next != nil {
			e.newID = next
		}
	}
}
