package infrastructure

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/mateusmacedo/go-busfinder/pkg/application"
	"github.com/mateusmacedo/go-busfinder/pkg/domain"
	zapAdapter "github.com/mateusmacedo/go-busfinder/pkg/infrastructure/zaplogger/adapter"
)

type pingMessage struct{ name, data string }

func (m pingMessage) CommandName() string { return m.name }

func (m pingMessage) QueryName() string { return m.name }

func (m pingMessage) EventName() string { return m.name }

func (m pingMessage) Payload() string { return m.data }

type echoQueryHandler struct{}

func (echoQueryHandler) Handle(ctx context.Context, query domain.Query[string]) (string, error) {
	return "echo:" + query.Payload(), nil
}

func TestSimpleCommandBusDispatch(t *testing.T) {
	logger := zapAdapter.NewZapAppLoggerFrom(zaptest.NewLogger(t))
	bus := NewSimpleCommandBus[domain.Command[string], string](logger)

	var got string
	bus.RegisterHandler("Ping", application.CommandHandlerFunc[domain.Command[string], string](
		func(ctx context.Context, command domain.Command[string]) error {
			got = command.Payload()
			return nil
		}))

	if err := bus.Dispatch(context.Background(), pingMessage{name: "Ping", data: "hello"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got != "hello" {
		t.Fatalf("handler saw %q, want hello", got)
	}

	err := bus.Dispatch(context.Background(), pingMessage{name: "Unknown"})
	if !errors.Is(err, ErrNoHandler) {
		t.Fatalf("expected ErrNoHandler, got %v", err)
	}
}

func TestSimpleCommandBusHonoursCancelledContext(t *testing.T) {
	logger := zapAdapter.NewZapAppLoggerFrom(zaptest.NewLogger(t))
	bus := NewSimpleCommandBus[domain.Command[string], string](logger)

	called := false
	bus.RegisterHandler("Ping", application.CommandHandlerFunc[domain.Command[string], string](
		func(ctx context.Context, command domain.Command[string]) error {
			called = true
			return nil
		}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := bus.Dispatch(ctx, pingMessage{name: "Ping"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Fatal("handler must not run on a cancelled context")
	}
}

func TestSimpleQueryBusDispatch(t *testing.T) {
	logger := zapAdapter.NewZapAppLoggerFrom(zaptest.NewLogger(t))
	bus := NewSimpleQueryBus[domain.Query[string], string, string](logger)
	bus.RegisterHandler("Echo", echoQueryHandler{})

	got, err := bus.Dispatch(context.Background(), pingMessage{name: "Echo", data: "x"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got != "echo:x" {
		t.Fatalf("got %q", got)
	}

	if _, err := bus.Dispatch(context.Background(), pingMessage{name: "Missing"}); !errors.Is(err, ErrNoHandler) {
		t.Fatalf("expected ErrNoHandler, got %v", err)
	}
}

func TestSimpleEventBusRunsAllHandlers(t *testing.T) {
	logger := zapAdapter.NewZapAppLoggerFrom(zaptest.NewLogger(t))
	bus := NewSimpleEventBus[domain.Event[string], string](logger)

	var order []string
	boom := errors.New("boom")
	bus.RegisterHandler("Booked", application.EventHandlerFunc[domain.Event[string], string](
		func(ctx context.Context, event domain.Event[string]) error {
			order = append(order, "first")
			return boom
		}))
	bus.RegisterHandler("Booked", application.EventHandlerFunc[domain.Event[string], string](
		func(ctx context.Context, event domain.Event[string]) error {
			order = append(order, "second")
			return nil
		}))

	err := bus.Publish(context.Background(), pingMessage{name: "Booked"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("handlers ran as %v", order)
	}

	if err := bus.Publish(context.Background(), pingMessage{name: "Nobody"}); err != nil {
		t.Fatalf("publish without handlers: %v", err)
	}
}
