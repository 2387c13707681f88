package mediator

import (
	"context"
	"errors"
	"fmt"
)

// Handler processes a single message. Command and query handlers return the
// request's result; notification handlers return a nil result, which the
// dispatcher discards.
//
// Example:
//
//	type CreateUserHandler struct {
//	    db *sql.DB
//	}
//
//	func (h *CreateUserHandler) Handle(ctx context.Context, msg mediator.Message) (any, error) {
//	    cmd := msg.Payload.(CreateUser)
//	    // ... insert ...
//	    return UserID("u-123"), nil
//	}
type Handler interface {
	Handle(ctx context.Context, msg Message) (any, error)
}

// HandlerFunc is a function adapter for Handler. Use for simple handlers
// that don't need a struct:
//
//	mediator.HandlerFunc(func(ctx context.Context, msg mediator.Message) (any, error) {
//	    return nil, nil
//	})
type HandlerFunc func(ctx context.Context, msg Message) (any, error)

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, msg Message) (any, error) {
	return f(ctx, msg)
}

// Next is the continuation a middleware invokes to proceed down the pipeline.
// A middleware that declines to call it short-circuits the dispatch.
type Next func(ctx context.Context, msg Message) (any, error)

// Middleware wraps handler execution. The pipeline nests middleware strictly:
// the first applicable middleware in the global order runs outermost, and the
// unwind is LIFO around the terminal handler step.
//
// Example:
//
//	type Timing struct{}
//
//	func (Timing) Handle(ctx context.Context, msg mediator.Message, next mediator.Next) (any, error) {
//	    start := time.Now()
//	    res, err := next(ctx, msg)
//	    metrics.Timing("dispatch", time.Since(start))
//	    return res, err
//	}
type Middleware interface {
	Handle(ctx context.Context, msg Message, next Next) (any, error)
}

// MiddlewareFunc is a function adapter for Middleware.
type MiddlewareFunc func(ctx context.Context, msg Message, next Next) (any, error)

// Handle implements the Middleware interface.
func (f MiddlewareFunc) Handle(ctx context.Context, msg Message, next Next) (any, error) {
	return f(ctx, msg, next)
}

// HandlerBinding associates a handler identity with the message types it
// services. Notification handlers may list several types; request handlers
// list exactly one.
type HandlerBinding struct {
	// Handler is the identity key resolved through the Resolver at call time.
	Handler string

	// Messages are the type identities this handler services.
	Messages []*Type
}

// MiddlewareBinding associates a middleware identity with the message types
// (or base kinds) it applies to.
type MiddlewareBinding struct {
	// Middleware is the identity key resolved through the Resolver at call time.
	Middleware string

	// Messages are the type identities this middleware intercepts. Binding
	// against a base kind such as mediator.Command applies the middleware
	// to every type that is-a that kind.
	Messages []*Type
}

// Bindings is the full declarative input consumed once when the dispatcher is
// built. It is typically assembled by a DI or registration layer; the
// dispatcher only validates and indexes it.
type Bindings struct {
	// Notifications binds notification handlers, one-to-many per type.
	Notifications []HandlerBinding

	// Requests binds command and query handlers, exactly one per type.
	Requests []HandlerBinding

	// Middlewares binds middleware to message types or base kinds.
	Middlewares []MiddlewareBinding

	// Order is the single global execution order covering every middleware
	// identity that appears in Middlewares. Relative order here fixes
	// nesting order for every pipeline.
	Order []string
}

// Resolver supplies live handler and middleware instances by identity key.
// Instances are resolved per call; the dispatcher never caches or otherwise
// manages their lifecycle.
type Resolver interface {
	Handler(key string) (Handler, error)
	Middleware(key string) (Middleware, error)
}

// ErrUnresolvable is returned by StaticResolver when no instance is
// registered under the requested identity key.
var ErrUnresolvable = errors.New("identity not resolvable")

// StaticResolver is a map-backed Resolver for embedders that construct their
// instances up front.
type StaticResolver struct {
	Handlers    map[string]Handler
	Middlewares map[string]Middleware
}

// Handler implements the Resolver interface.
func (r StaticResolver) Handler(key string) (Handler, error) {
	h, ok := r.Handlers[key]
	if !ok {
		return nil, fmt.Errorf("resolve handler %q: %w", key, ErrUnresolvable)
	}
	return h, nil
}

// Middleware implements the Resolver interface.
func (r StaticResolver) Middleware(key string) (Middleware, error) {
	m, ok := r.Middlewares[key]
	if !ok {
		return nil, fmt.Errorf("resolve middleware %q: %w", key, ErrUnresolvable)
	}
	return m, nil
}
