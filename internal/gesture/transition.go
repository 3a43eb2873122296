package gesture

import (
	"context"
	"time"

	"CountrySwipe/internal/domain/models"
)

// Transition plays the exit animation of a committed card and returns once it has finished.
type Transition interface {
	Play(ctx context.Context, intent models.Intent) error
}

// TransitionFunc adapts a function to Transition.
type TransitionFunc func(ctx context.Context, intent models.Intent) error

func (f TransitionFunc) Play(ctx context.Context, intent models.Intent) error {
	return f(ctx, intent)
}

// TimedTransition resolves after a fixed duration.
type TimedTransition struct {
	Duration time.Duration
}

func (t TimedTransition) Play(ctx context.Context, _ models.Intent) error {
	if t.Duration <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(t.Duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
