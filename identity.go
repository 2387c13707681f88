package mediator

import "fmt"

// Base kinds. Concrete message types declare one (or more) of these as a
// parent so middleware can be bound against "all notifications", "all
// commands", and so on.
var (
	// Notification is the base kind for fire-and-forget messages with
	// zero or more handlers.
	Notification = &Type{key: "mediator/notification"}

	// Command is the base kind for request-response messages that mutate
	// state and have exactly one handler.
	Command = &Type{key: "mediator/command"}

	// Query is the base kind for request-response messages that read
	// state and have exactly one handler.
	Query = &Type{key: "mediator/query"}
)

// Type is an immutable identity token for a message shape. Two types with the
// same key are the same identity.
//
// A type may declare any number of parents it "is-a". The chain is walked when
// resolving middleware, so a middleware bound to Command applies to every type
// that lists Command among its ancestors. Parents may branch: a type used for
// cross-cutting middleware can declare both Command and Query at once.
//
//	UserCreated := mediator.NewType("user/created", mediator.Notification)
//	CreateUser  := mediator.NewType("user/create", mediator.Command)
type Type struct {
	key     string
	parents []*Type
}

// NewType creates a type identity with the given key and parent kinds.
func NewType(key string, parents ...*Type) *Type {
	return &Type{key: key, parents: parents}
}

// Key returns the unique human-readable name of the type.
func (t *Type) Key() string { return t.key }

// Parents returns the declared ancestor kinds.
func (t *Type) Parents() []*Type { return t.parents }

// IsA reports whether base is t itself or one of t's ancestors.
func (t *Type) IsA(base *Type) bool {
	found := false
	walkAncestors(t, func(a *Type) {
		if a.key == base.key {
			found = true
		}
	})
	return found
}

// walkAncestors calls fn for t and every type reachable through the parent
// chain, visiting each identity key at most once. The visited set makes the
// walk terminate even on a malformed cyclic hierarchy.
func walkAncestors(t *Type, fn func(*Type)) {
	seen := make(map[string]bool)
	var walk func(*Type)
	walk = func(cur *Type) {
		if seen[cur.key] {
			return
		}
		seen[cur.key] = true
		fn(cur)
		for _, p := range cur.parents {
			walk(p)
		}
	}
	walk(t)
}

// checkHierarchy walks t's parent chain and returns ErrCyclicHierarchy if any
// identity is its own ancestor. Diamonds are fine; cycles are not.
func checkHierarchy(t *Type) error {
	onPath := make(map[string]bool)
	done := make(map[string]bool)
	var walk func(*Type) error
	walk = func(cur *Type) error {
		if onPath[cur.key] {
			return fmt.Errorf("%w: type %q is its own ancestor", ErrCyclicHierarchy, cur.key)
		}
		if done[cur.key] {
			return nil
		}
		onPath[cur.key] = true
		for _, p := range cur.parents {
			if err := walk(p); err != nil {
				return err
			}
		}
		onPath[cur.key] = false
		done[cur.key] = true
		return nil
	}
	return walk(t)
}
