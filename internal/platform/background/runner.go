// Package background runs fire-and-forget work detached from the request that
// scheduled it, while still letting the server drain it on shutdown.
package background

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Runner tracks in-flight background tasks.
type Runner struct {
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
	logger *slog.Logger
}

// New creates a Runner.
func New(logger *slog.Logger) *Runner {
	return &Runner{logger: logger}
}

// Go schedules fn on a new goroutine. The context passed to fn keeps the values
// of ctx (request id, request time) but is not cancelled when ctx is.
// Returns an error once Shutdown has started.
func (r *Runner) Go(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return fmt.Errorf("background runner is shutting down")
	}
	r.wg.Add(1)
	r.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.ErrorContext(detached, "background task panicked", "task", name, "panic", rec)
			}
		}()
		if err := fn(detached); err != nil {
			r.logger.ErrorContext(detached, "background task failed", "task", name, "error", err)
			return
		}
		r.logger.DebugContext(detached, "background task finished", "task", name)
	}()
	return nil
}

// Shutdown stops accepting work and waits for in-flight tasks or ctx expiry.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
