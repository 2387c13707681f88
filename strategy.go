package mediator

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Strategy selects how a notification's handlers are fanned out once the
// pipeline reaches the terminal step.
type Strategy int

const (
	// BestEffort starts all handlers concurrently and collects every
	// individual failure instead of propagating it. The publish call
	// succeeds regardless of how many handlers failed; the caller receives
	// the collected failures. This is the default strategy.
	BestEffort Strategy = iota

	// Sequential invokes handlers one at a time in registration order.
	// The first failure aborts the remaining handlers and propagates.
	Sequential

	// Parallel starts all handlers concurrently and fails fast: the first
	// failure in completion order propagates, and other failures are not
	// collected. Handlers already started keep running to completion.
	Parallel
)

// String returns the strategy name used in error messages.
func (s Strategy) String() string {
	switch s {
	case BestEffort:
		return "best-effort"
	case Sequential:
		return "sequential"
	case Parallel:
		return "parallel"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// PublishOption configures a single Publish call.
type PublishOption func(*publishConfig)

type publishConfig struct {
	strategy Strategy
}

// WithStrategy selects the fan-out strategy for this publish.
//
//	failures, err := d.Publish(ctx, msg, mediator.WithStrategy(mediator.Sequential))
func WithStrategy(s Strategy) PublishOption {
	return func(c *publishConfig) {
		c.strategy = s
	}
}

// HandlerError records a single notification handler failure. Errors returned
// from Publish wrap the underlying handler error, so errors.Is and errors.As
// see through it.
type HandlerError struct {
	// Handler is the identity key of the failed handler.
	Handler string

	// Err is the failure the handler returned.
	Err error
}

func (e *HandlerError) Error() string { return fmt.Sprintf("handler %s: %v", e.Handler, e.Err) }
func (e *HandlerError) Unwrap() error { return e.Err }

// boundHandler pairs a resolved handler instance with its identity key so
// failures can name the offender.
type boundHandler struct {
	key     string
	handler Handler
}

// runSequential invokes handlers one at a time, preserving registration
// order. The first failure aborts the rest.
func runSequential(ctx context.Context, msg Message, handlers []boundHandler) error {
	for _, h := range handlers {
		if _, err := h.handler.Handle(ctx, msg); err != nil {
			return &HandlerError{Handler: h.key, Err: err}
		}
	}
	return nil
}

// runParallel starts every handler concurrently, in registration order, and
// waits for all of them. The first failure wins.
func runParallel(ctx context.Context, msg Message, handlers []boundHandler) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, h := range handlers {
		h := h
		g.Go(func() error {
			if _, err := h.handler.Handle(gctx, msg); err != nil {
				return &HandlerError{Handler: h.key, Err: err}
			}
			return nil
		})
	}
	return g.Wait()
}

// runBestEffort starts every handler concurrently and waits for all of them,
// catching each failure individually. The returned slice holds one
// *HandlerError per failed handler; len 0 means every handler succeeded.
func runBestEffort(ctx context.Context, msg Message, handlers []boundHandler) []error {
	results := make([]error, len(handlers))

	var wg sync.WaitGroup
	for i, h := range handlers {
		i, h := i, h
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.handler.Handle(ctx, msg); err != nil {
				results[i] = &HandlerError{Handler: h.key, Err: err}
			}
		}()
	}
	wg.Wait()

	var failures []error
	for _, err := range results {
		if err != nil {
			failures = append(failures, err)
		}
	}
	return failures
}
