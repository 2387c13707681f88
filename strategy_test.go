package mediator

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// notifyDispatcher builds a dispatcher with the given notification handlers
// registered for one type, in order.
func notifyDispatcher(t *testing.T, typ *Type, handlers map[string]Handler, order []string) *Dispatcher {
	t.Helper()

	bindings := make([]HandlerBinding, len(order))
	for i, name := range order {
		bindings[i] = HandlerBinding{Handler: name, Messages: []*Type{typ}}
	}

	d, err := New(
		Bindings{Notifications: bindings},
		StaticResolver{Handlers: handlers},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return d
}

func TestSequentialStrategy(t *testing.T) {
	t.Run("preserves registration order", func(t *testing.T) {
		ping := NewType("test/ping", Notification)

		rec := &recorder{}
		d := notifyDispatcher(t, ping, map[string]Handler{
			"a": recordingHandler(rec, "a", nil, nil),
			"b": recordingHandler(rec, "b", nil, nil),
			"c": recordingHandler(rec, "c", nil, nil),
		}, []string{"a", "b", "c"})

		failures, err := d.Publish(context.Background(), NewMessage(ping, nil), WithStrategy(Sequential))
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if failures != nil {
			t.Errorf("failures = %v, want nil", failures)
		}
		if got, want := rec.list(), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
			t.Errorf("order = %v, want %v", got, want)
		}
	})

	t.Run("first failure aborts the rest", func(t *testing.T) {
		ping := NewType("test/ping", Notification)

		wantErr := errors.New("b failed")
		rec := &recorder{}
		d := notifyDispatcher(t, ping, map[string]Handler{
			"a": recordingHandler(rec, "a", nil, nil),
			"b": recordingHandler(rec, "b", nil, wantErr),
			"c": recordingHandler(rec, "c", nil, nil),
		}, []string{"a", "b", "c"})

		_, err := d.Publish(context.Background(), NewMessage(ping, nil), WithStrategy(Sequential))
		if !errors.Is(err, wantErr) {
			t.Errorf("error = %v, want %v", err, wantErr)
		}

		var herr *HandlerError
		if !errors.As(err, &herr) {
			t.Fatalf("error %v does not wrap *HandlerError", err)
		}
		if herr.Handler != "b" {
			t.Errorf("Handler = %q, want %q", herr.Handler, "b")
		}

		if got, want := rec.list(), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
			t.Errorf("order = %v, want %v", got, want)
		}
	})
}

func TestParallelStrategy(t *testing.T) {
	t.Run("runs all handlers", func(t *testing.T) {
		ping := NewType("test/ping", Notification)

		rec := &recorder{}
		d := notifyDispatcher(t, ping, map[string]Handler{
			"a": recordingHandler(rec, "a", nil, nil),
			"b": recordingHandler(rec, "b", nil, nil),
			"c": recordingHandler(rec, "c", nil, nil),
		}, []string{"a", "b", "c"})

		_, err := d.Publish(context.Background(), NewMessage(ping, nil), WithStrategy(Parallel))
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if got := rec.list(); len(got) != 3 {
			t.Errorf("events = %v, want 3 handler calls", got)
		}
	})

	t.Run("handlers run concurrently", func(t *testing.T) {
		ping := NewType("test/ping", Notification)

		// Each handler waits for the other to start; completes only if
		// both are in flight at once.
		aStarted := make(chan struct{})
		bStarted := make(chan struct{})
		d := notifyDispatcher(t, ping, map[string]Handler{
			"a": HandlerFunc(func(ctx context.Context, msg Message) (any, error) {
				close(aStarted)
				<-bStarted
				return nil, nil
			}),
			"b": HandlerFunc(func(ctx context.Context, msg Message) (any, error) {
				close(bStarted)
				<-aStarted
				return nil, nil
			}),
		}, []string{"a", "b"})

		_, err := d.Publish(context.Background(), NewMessage(ping, nil), WithStrategy(Parallel))
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("first failure propagates", func(t *testing.T) {
		ping := NewType("test/ping", Notification)

		wantErr := errors.New("b failed")
		rec := &recorder{}
		d := notifyDispatcher(t, ping, map[string]Handler{
			"a": recordingHandler(rec, "a", nil, nil),
			"b": recordingHandler(rec, "b", nil, wantErr),
		}, []string{"a", "b"})

		_, err := d.Publish(context.Background(), NewMessage(ping, nil), WithStrategy(Parallel))
		if !errors.Is(err, wantErr) {
			t.Errorf("error = %v, want %v", err, wantErr)
		}
	})
}

func TestBestEffortStrategy(t *testing.T) {
	t.Run("is the default strategy", func(t *testing.T) {
		ping := NewType("test/ping", Notification)

		wantErr := errors.New("b failed")
		d := notifyDispatcher(t, ping, map[string]Handler{
			"b": recordingHandler(&recorder{}, "b", nil, wantErr),
		}, []string{"b"})

		// A failing handler must not fail the publish when no strategy
		// is specified.
		failures, err := d.Publish(context.Background(), NewMessage(ping, nil))
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(failures) != 1 {
			t.Errorf("failures = %v, want 1", failures)
		}
	})

	t.Run("collects failures and still runs every handler", func(t *testing.T) {
		ping := NewType("test/ping", Notification)

		wantErr := errors.New("b failed")
		rec := &recorder{}
		d := notifyDispatcher(t, ping, map[string]Handler{
			"a": recordingHandler(rec, "a", nil, nil),
			"b": recordingHandler(rec, "b", nil, wantErr),
			"c": recordingHandler(rec, "c", nil, nil),
		}, []string{"a", "b", "c"})

		failures, err := d.Publish(context.Background(), NewMessage(ping, nil), WithStrategy(BestEffort))
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(failures) != 1 {
			t.Fatalf("failures = %v, want 1", failures)
		}
		if !errors.Is(failures[0], wantErr) {
			t.Errorf("failure = %v, want %v", failures[0], wantErr)
		}

		var herr *HandlerError
		if !errors.As(failures[0], &herr) {
			t.Fatalf("failure %v does not wrap *HandlerError", failures[0])
		}
		if herr.Handler != "b" {
			t.Errorf("Handler = %q, want %q", herr.Handler, "b")
		}

		if got := rec.list(); len(got) != 3 {
			t.Errorf("events = %v, want all 3 handlers to run", got)
		}
	})

	t.Run("collects every failure", func(t *testing.T) {
		ping := NewType("test/ping", Notification)

		d := notifyDispatcher(t, ping, map[string]Handler{
			"a": recordingHandler(&recorder{}, "a", nil, errors.New("a failed")),
			"b": recordingHandler(&recorder{}, "b", nil, nil),
			"c": recordingHandler(&recorder{}, "c", nil, errors.New("c failed")),
		}, []string{"a", "b", "c"})

		failures, err := d.Publish(context.Background(), NewMessage(ping, nil))
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(failures) != 2 {
			t.Errorf("failures = %v, want 2", failures)
		}
	})
}

func TestHandlerError(t *testing.T) {
	cause := errors.New("boom")
	err := &HandlerError{Handler: "mailer", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("HandlerError does not unwrap to its cause")
	}
	if got := err.Error(); got != "handler mailer: boom" {
		t.Errorf("Error() = %q", got)
	}
}
