package mediator

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNoHandler is returned by Invoke when no request handler is registered
// for the message's type. This is a terminal condition: the registry never
// changes after construction, so retrying cannot succeed.
var ErrNoHandler = errors.New("no handler for request type")

// Dispatcher routes messages to registered handlers through an ordered
// middleware pipeline.
//
// Usage:
//  1. Assemble Bindings (usually from a DI or registration layer)
//  2. Build a dispatcher with New; construction validates the bindings
//  3. Dispatch commands and queries with Invoke
//  4. Dispatch notifications with Publish
//
// Dispatcher is safe for concurrent use: its registry is built once by New
// and read-only afterwards.
type Dispatcher struct {
	registry *registry
	resolver Resolver
	hooks    hooks
}

// New builds a dispatcher from the given bindings. The registry is derived
// here, synchronously, and the dispatcher fails fast on malformed bindings:
// handlers or middleware with no message type association, two request
// handlers for the same type, middleware missing from the global order, and
// cyclic type hierarchies are all construction-time errors.
//
// Example:
//
//	d, err := mediator.New(bindings, resolver,
//	    mediator.WithOnSuccess(func(ctx context.Context, op, key string, d time.Duration) {
//	        metrics.Timing("mediator."+op, d)
//	    }),
//	)
func New(b Bindings, r Resolver, opts ...Option) (*Dispatcher, error) {
	reg, err := buildRegistry(b)
	if err != nil {
		return nil, err
	}
	d := &Dispatcher{registry: reg, resolver: r}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Invoke dispatches a command or query to its single registered handler and
// returns the handler's result. The applicable middleware — everything bound
// to the message's type or any of its ancestors — wraps the handler call in
// global-order nesting. The first failure anywhere in the chain propagates.
func (d *Dispatcher) Invoke(ctx context.Context, msg Message) (any, error) {
	key := msg.Type.Key()

	hkey, ok := d.registry.requests[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, key)
	}
	handler, err := d.resolver.Handler(hkey)
	if err != nil {
		return nil, err
	}

	run, err := d.pipeline(msg, handler.Handle)
	if err != nil {
		return nil, err
	}

	return d.execute(ctx, OpInvoke, key, msg, run)
}

// Publish dispatches a notification to all of its registered handlers.
// Zero registered handlers is not an error; the publish completes as a no-op
// after the middleware pipeline runs.
//
// The strategy decides the terminal step's shape. Under Sequential and
// Parallel the returned failure list is always nil and the first handler
// failure comes back as the error. Under BestEffort (the default) the error
// is nil unless middleware fails, and every individual handler failure is
// collected into the returned list as a *HandlerError. Middleware wrapping a
// best-effort publish sees that list as the pipeline result, not a failure.
func (d *Dispatcher) Publish(ctx context.Context, msg Message, opts ...PublishOption) ([]error, error) {
	cfg := publishConfig{strategy: BestEffort}
	for _, opt := range opts {
		opt(&cfg)
	}

	key := msg.Type.Key()

	hkeys := d.registry.notifications[key]
	handlers := make([]boundHandler, len(hkeys))
	for i, hkey := range hkeys {
		h, err := d.resolver.Handler(hkey)
		if err != nil {
			return nil, err
		}
		handlers[i] = boundHandler{key: hkey, handler: h}
	}

	terminal, err := terminalStep(cfg.strategy, handlers)
	if err != nil {
		return nil, err
	}

	run, err := d.pipeline(msg, terminal)
	if err != nil {
		return nil, err
	}

	res, err := d.execute(ctx, OpPublish, key, msg, run)
	if err != nil {
		return nil, err
	}
	failures, _ := res.([]error)
	return failures, nil
}

// terminalStep builds the innermost pipeline continuation for a publish.
func terminalStep(s Strategy, handlers []boundHandler) (Next, error) {
	switch s {
	case Sequential:
		return func(ctx context.Context, msg Message) (any, error) {
			return nil, runSequential(ctx, msg, handlers)
		}, nil
	case Parallel:
		return func(ctx context.Context, msg Message) (any, error) {
			return nil, runParallel(ctx, msg, handlers)
		}, nil
	case BestEffort:
		return func(ctx context.Context, msg Message) (any, error) {
			return runBestEffort(ctx, msg, handlers), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown publish strategy %s", s)
	}
}

// execute runs the composed pipeline and fires dispatch hooks around it.
func (d *Dispatcher) execute(ctx context.Context, op, key string, msg Message, run Next) (any, error) {
	ctx = d.hooks.callOnDispatch(ctx, op, key)

	start := time.Now()
	res, err := run(ctx, msg)
	duration := time.Since(start)

	if err != nil {
		d.hooks.callOnFailure(ctx, op, key, err, duration)
	} else {
		d.hooks.callOnSuccess(ctx, op, key, duration)
	}
	return res, err
}
