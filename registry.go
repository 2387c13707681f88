package mediator

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Construction-time errors. New wraps these with the offending identity keys;
// use errors.Is to test for them.
var (
	// ErrNoAssociation is returned when a handler or middleware binding
	// declares no message types.
	ErrNoAssociation = errors.New("binding has no message type association")

	// ErrDuplicateHandler is returned when two request handlers are bound
	// to the same command or query type.
	ErrDuplicateHandler = errors.New("duplicate handler for request type")

	// ErrUnorderedMiddleware is returned when a bound middleware identity
	// is missing from Bindings.Order.
	ErrUnorderedMiddleware = errors.New("middleware missing from order")

	// ErrCyclicHierarchy is returned when a bound message type's parent
	// chain contains a cycle.
	ErrCyclicHierarchy = errors.New("cyclic type hierarchy")
)

// registry holds the three lookup tables derived from Bindings. It is built
// exactly once per dispatcher and never mutated afterwards, so concurrent
// reads need no locking.
type registry struct {
	// notifications maps a message type key to its handler identities in
	// registration order. All of them are invoked on publish.
	notifications map[string][]string

	// requests maps a command or query type key to its single handler
	// identity.
	requests map[string]string

	// middlewares maps a message type key to the middleware identities
	// bound directly against it.
	middlewares map[string][]string

	// order is the global middleware execution order.
	order []string
}

// buildRegistry validates the bindings and produces the lookup tables.
// Construction is pure: identical bindings always yield identical tables.
func buildRegistry(b Bindings) (*registry, error) {
	r := &registry{
		notifications: make(map[string][]string),
		requests:      make(map[string]string),
		middlewares:   make(map[string][]string),
		order:         b.Order,
	}

	for _, hb := range b.Notifications {
		if len(hb.Messages) == 0 {
			return nil, fmt.Errorf("notification handler %q: %w", hb.Handler, ErrNoAssociation)
		}
		for _, t := range hb.Messages {
			if err := checkHierarchy(t); err != nil {
				return nil, err
			}
			r.notifications[t.key] = append(r.notifications[t.key], hb.Handler)
		}
	}

	for _, hb := range b.Requests {
		if len(hb.Messages) == 0 {
			return nil, fmt.Errorf("request handler %q: %w", hb.Handler, ErrNoAssociation)
		}
		for _, t := range hb.Messages {
			if err := checkHierarchy(t); err != nil {
				return nil, err
			}
			if prev, ok := r.requests[t.key]; ok {
				return nil, fmt.Errorf("%w %q: %q conflicts with %q", ErrDuplicateHandler, t.key, hb.Handler, prev)
			}
			r.requests[t.key] = hb.Handler
		}
	}

	for _, mb := range b.Middlewares {
		if len(mb.Messages) == 0 {
			return nil, fmt.Errorf("middleware %q: %w", mb.Middleware, ErrNoAssociation)
		}
		for _, t := range mb.Messages {
			if err := checkHierarchy(t); err != nil {
				return nil, err
			}
			r.middlewares[t.key] = append(r.middlewares[t.key], mb.Middleware)
		}
	}

	if missing := unordered(r.middlewares, b.Order); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnorderedMiddleware, strings.Join(missing, ", "))
	}

	return r, nil
}

// unordered returns every middleware identity that appears in the bindings but
// not in the global order, each named once. Sorted so the error message is
// deterministic despite map iteration.
func unordered(middlewares map[string][]string, order []string) []string {
	ordered := make(map[string]bool, len(order))
	for _, key := range order {
		ordered[key] = true
	}

	var missing []string
	seen := make(map[string]bool)
	for _, keys := range middlewares {
		for _, key := range keys {
			if !ordered[key] && !seen[key] {
				seen[key] = true
				missing = append(missing, key)
			}
		}
	}
	slices.Sort(missing)
	return missing
}
