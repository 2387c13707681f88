package mediator

import "context"

// resolveMiddleware collects the middleware identities applicable to a
// message type: everything bound to the type itself plus everything bound to
// any ancestor in its parent chain. The result preserves the relative
// sequence of the global order, which is the execution order (first element
// runs outermost). A middleware bound to both a type and one of its ancestors
// appears exactly once.
func (r *registry) resolveMiddleware(t *Type) []string {
	applicable := make(map[string]bool)
	walkAncestors(t, func(a *Type) {
		for _, key := range r.middlewares[a.key] {
			applicable[key] = true
		}
	})

	if len(applicable) == 0 {
		return nil
	}

	ordered := make([]string, 0, len(applicable))
	for _, key := range r.order {
		if applicable[key] {
			ordered = append(ordered, key)
		}
	}
	return ordered
}

// chain composes ordered middleware around a terminal step. The terminal step
// is the innermost continuation; each middleware, last to first, wraps the
// previous continuation as its next. Invoking the result runs the before
// phases in order, the terminal step, then the after phases in LIFO order.
func chain(middlewares []Middleware, terminal Next) Next {
	next := terminal
	for i := len(middlewares) - 1; i >= 0; i-- {
		mw, inner := middlewares[i], next
		next = func(ctx context.Context, msg Message) (any, error) {
			return mw.Handle(ctx, msg, inner)
		}
	}
	return next
}

// pipeline resolves the applicable middleware instances for msg and composes
// them around terminal. Instances come from the resolver per call.
func (d *Dispatcher) pipeline(msg Message, terminal Next) (Next, error) {
	keys := d.registry.resolveMiddleware(msg.Type)
	if len(keys) == 0 {
		return terminal, nil
	}

	middlewares := make([]Middleware, len(keys))
	for i, key := range keys {
		mw, err := d.resolver.Middleware(key)
		if err != nil {
			return nil, err
		}
		middlewares[i] = mw
	}
	return chain(middlewares, terminal), nil
}
