// Package mediator provides a typed in-process message dispatcher with an
// ordered, hierarchy-aware middleware pipeline.
//
// The mediator package routes three message shapes to registered handlers:
// notifications (fire-and-forget, many handlers), commands, and queries
// (request-response, exactly one handler each). Handlers and middleware are
// declared as bindings — identity keys associated with message types — and
// the dispatcher indexes them once at construction, resolving live instances
// per call through a Resolver.
//
// # Quick Start
//
// Declare type identities. Concrete types list the base kind they are-a:
//
//	var (
//	    UserCreated = mediator.NewType("user/created", mediator.Notification)
//	    CreateUser  = mediator.NewType("user/create", mediator.Command)
//	)
//
// Bind handlers and build the dispatcher:
//
//	bindings := mediator.Bindings{
//	    Notifications: []mediator.HandlerBinding{
//	        {Handler: "welcome-mailer", Messages: []*mediator.Type{UserCreated}},
//	    },
//	    Requests: []mediator.HandlerBinding{
//	        {Handler: "create-user", Messages: []*mediator.Type{CreateUser}},
//	    },
//	}
//
//	d, err := mediator.New(bindings, resolver)
//
//	// Commands and queries
//	result, err := d.Invoke(ctx, mediator.NewMessage(CreateUser, payload))
//
//	// Notifications
//	failures, err := d.Publish(ctx, mediator.NewMessage(UserCreated, payload))
//
// # Design Philosophy
//
// The package separates concerns into three layers:
//
//   - Bindings: declarative identity-to-type associations, supplied once
//   - Dispatcher: validates bindings, resolves middleware, composes pipelines
//   - Handlers and middleware: business logic, resolved by identity per call
//
// This separation allows:
//
//   - Handler wiring owned by a DI or registration layer
//   - A registry that is immutable after construction, so dispatch needs no locks
//   - Consistent observability via hooks
//   - Easy testing with StaticResolver
//
// # Type Hierarchy
//
// Every type identity may declare parent kinds it "is-a". Middleware bound to
// an ancestor applies to every descendant, so a single binding against
// mediator.Command intercepts all commands. Parents may branch: a type
// declared with both mediator.Command and mediator.Query as parents lets one
// middleware binding span both shapes. The hierarchy walk deduplicates, so a
// middleware bound to both a type and one of its ancestors runs exactly once.
//
// # Middleware
//
// Middleware wraps handler execution with before/after interception:
//
//	mediator.MiddlewareFunc(func(ctx context.Context, msg mediator.Message, next mediator.Next) (any, error) {
//	    log.Printf("before %s", msg.Type.Key())
//	    res, err := next(ctx, msg)
//	    log.Printf("after %s", msg.Type.Key())
//	    return res, err
//	})
//
// A middleware that declines to call next short-circuits the dispatch.
//
// Relative execution order is fixed by Bindings.Order, a single global
// sequence covering every bound middleware identity. For a given message the
// applicable set is filtered down from that sequence, so for middleware M1
// before M2 the observed order is always M1 before-phase, M2 before-phase,
// handler, M2 after-phase, M1 after-phase. A middleware bound in the bindings
// but missing from Bindings.Order is a construction-time error.
//
// # Publish Strategies
//
// Notifications fan out to all registered handlers under one of three
// strategies:
//
//   - Sequential: one at a time, registration order, first failure aborts
//   - Parallel: all at once, first failure in completion order propagates
//   - BestEffort (default): all at once, every failure caught and collected
//
// Under BestEffort the publish call itself succeeds and the caller receives
// the collected failures as *HandlerError values:
//
//	failures, err := d.Publish(ctx, msg)
//	for _, f := range failures {
//	    var herr *mediator.HandlerError
//	    if errors.As(f, &herr) {
//	        log.Printf("handler %s failed: %v", herr.Handler, herr.Err)
//	    }
//	}
//
// Publishing a notification with zero registered handlers is not an error;
// the call completes as a no-op.
//
// # Hooks
//
// Hooks provide observability without coupling to specific logging or metrics
// systems. Use functional options to configure them:
//
//	d, err := mediator.New(bindings, resolver,
//	    mediator.WithOnDispatch(func(ctx context.Context, op, key string) context.Context {
//	        return logx.WithCtx(ctx, slog.String("op", op), slog.String("key", key))
//	    }),
//	    mediator.WithOnSuccess(func(ctx context.Context, op, key string, d time.Duration) {
//	        metrics.Timing("mediator.success", d, "key:"+key)
//	    }),
//	    mediator.WithOnFailure(func(ctx context.Context, op, key string, err error, d time.Duration) {
//	        metrics.Incr("mediator.failure", "key:"+key)
//	    }),
//	)
//
// Multiple hooks of the same type are called in order, with OnDispatch
// chaining the context through each.
//
// # Envelope Decoding
//
// For embedders that feed the dispatcher from raw JSON (queue consumers,
// webhooks), Decoder maps an envelope's type field to a registered type
// identity and carries the payload as raw JSON:
//
//	dec := mediator.NewDecoder()
//	dec.Register(UserCreated)
//
//	msg, err := dec.Decode(raw)
//	if err != nil {
//	    return err
//	}
//	_, err = d.Publish(ctx, msg)
//
// The core dispatch path never depends on the decoder.
//
// # Error Handling
//
// Construction fails fast: New validates every binding and returns an error
// naming the offending identity before the dispatcher becomes usable. Test
// for classes of failure with errors.Is against ErrNoAssociation,
// ErrDuplicateHandler, ErrUnorderedMiddleware, and ErrCyclicHierarchy.
//
// At call time, Invoke on an unregistered request type returns an error
// wrapping ErrNoHandler that names the type key. Handler and middleware
// failures during Invoke and sequential or parallel publishes propagate as
// the single failure that aborted the pipeline; best-effort failures are
// collected instead.
//
// # Thread Safety
//
// Dispatcher is safe for concurrent use. The registry is built once by New
// and never mutated, and messages are created per call. Handler and
// middleware instances are resolved per call and are otherwise opaque to the
// dispatcher; safety of state they share across concurrent invocations is the
// handler author's responsibility.
package mediator
