package scheduler

import (
	"context"
	"errors"
	"sync"

	"CampusFeed/internal/ports"
)

// ErrAlreadyStarted is returned when a second job is handed to a runner.
var ErrAlreadyStarted = errors.New("background job already started")

// BackgroundRunner executes a single job once on its own goroutine.
// It is not re-entrant: a runner accepts exactly one Start.
type BackgroundRunner struct {
	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

var _ ports.Scheduler = (*BackgroundRunner)(nil)

// NewBackgroundRunner builds an idle runner.
func NewBackgroundRunner() *BackgroundRunner {
	return &BackgroundRunner{}
}

// Start launches job detached from the caller. The job context is cancelled by Stop
// or when ctx is done.
func (b *BackgroundRunner) Start(ctx context.Context, job func(context.Context)) error {
	if job == nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return ErrAlreadyStarted
	}
	b.started = true

	runCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.done = make(chan struct{})

	go func() {
		defer close(b.done)
		defer cancel()
		job(runCtx)
	}()

	return nil
}

// Stop cancels the job and waits for it to return, or for ctx to end.
func (b *BackgroundRunner) Stop(ctx context.Context) error {
	b.mu.Lock()
	cancel, done := b.cancel, b.done
	b.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the job has returned. Nil before Start.
func (b *BackgroundRunner) Done() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done
}
