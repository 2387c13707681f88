package mediator

import (
	"context"
	"time"
)

// Operation names passed to hooks.
const (
	// OpInvoke is the operation name for command and query dispatch.
	OpInvoke = "invoke"

	// OpPublish is the operation name for notification dispatch.
	OpPublish = "publish"
)

// OnDispatchFunc is called just before the pipeline executes. op is OpInvoke
// or OpPublish; key is the message's type key. The returned context is used
// for the rest of the call, so hooks can enrich it with logging fields or
// trace spans.
type OnDispatchFunc func(ctx context.Context, op, key string) context.Context

// OnSuccessFunc is called after the pipeline completes successfully.
type OnSuccessFunc func(ctx context.Context, op, key string, duration time.Duration)

// OnFailureFunc is called after the pipeline fails.
type OnFailureFunc func(ctx context.Context, op, key string, err error, duration time.Duration)

// hooks holds all configured hook functions.
type hooks struct {
	onDispatch []OnDispatchFunc
	onSuccess  []OnSuccessFunc
	onFailure  []OnFailureFunc
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithOnDispatch adds a hook called just before the pipeline executes.
// Multiple hooks are called in order, with context chaining through each.
//
// Example:
//
//	mediator.WithOnDispatch(func(ctx context.Context, op, key string) context.Context {
//	    return logx.WithCtx(ctx, slog.String("op", op), slog.String("key", key))
//	})
func WithOnDispatch(fn OnDispatchFunc) Option {
	return func(d *Dispatcher) {
		d.hooks.onDispatch = append(d.hooks.onDispatch, fn)
	}
}

// WithOnSuccess adds a hook called after the pipeline completes successfully.
// Multiple hooks are called in order.
//
// Example:
//
//	mediator.WithOnSuccess(func(ctx context.Context, op, key string, d time.Duration) {
//	    metrics.Timing("mediator.success", d, "key:"+key)
//	})
func WithOnSuccess(fn OnSuccessFunc) Option {
	return func(d *Dispatcher) {
		d.hooks.onSuccess = append(d.hooks.onSuccess, fn)
	}
}

// WithOnFailure adds a hook called after the pipeline fails. Under the
// best-effort strategy individual handler failures are part of the publish
// result, not a pipeline failure, so they do not trigger this hook.
//
// Example:
//
//	mediator.WithOnFailure(func(ctx context.Context, op, key string, err error, d time.Duration) {
//	    logger.Error(ctx, "dispatch failed", "key", key, "error", err)
//	})
func WithOnFailure(fn OnFailureFunc) Option {
	return func(d *Dispatcher) {
		d.hooks.onFailure = append(d.hooks.onFailure, fn)
	}
}

func (h hooks) callOnDispatch(ctx context.Context, op, key string) context.Context {
	for _, fn := range h.onDispatch {
		ctx = fn(ctx, op, key)
	}
	return ctx
}

func (h hooks) callOnSuccess(ctx context.Context, op, key string, d time.Duration) {
	for _, fn := range h.onSuccess {
		fn(ctx, op, key, d)
	}
}

func (h hooks) callOnFailure(ctx context.Context, op, key string, err error, d time.Duration) {
	for _, fn := range h.onFailure {
		fn(ctx, op, key, err, d)
	}
}
