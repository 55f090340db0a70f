package adapter

import (
	"context"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapAppLoggerAddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapAppLoggerFrom(zap.New(core))

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	logger.Info(ctx, "booking saved", map[string]interface{}{"owner": "alice"})

	entries := logs.FilterMessage("booking saved").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["requestID"] != "req-42" {
		t.Errorf("requestID = %v, want req-42", fields["requestID"])
	}
	if fields["owner"] != "alice" {
		t.Errorf("owner = %v, want alice", fields["owner"])
	}
}

func TestZapAppLoggerTraceIsDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapAppLoggerFrom(zap.New(core))

	logger.Trace(context.Background(), "tick", nil)

	entries := logs.All()
	if len(entries) != 1 || entries[0].Level != zapcore.DebugLevel {
		t.Fatalf("expected one debug entry, got %+v", entries)
	}
}

func TestNewZapAppLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := NewZapAppLogger("busfinder", "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
