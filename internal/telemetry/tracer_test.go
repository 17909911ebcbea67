package telemetry

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInitTracer(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	shutdown, err := InitTracer("ghibli-studio-test", logger, WithWriter(&buf), WithSyncExport(), WithCompactOutput())
	if err != nil {
		t.Fatalf("InitTracer() error = %v", err)
	}

	_, span := otel.Tracer("telemetry-test").Start(context.Background(), "orchestrator.Submit")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "orchestrator.Submit") {
		t.Errorf("expected span name in export, got: %s", output)
	}
	if !strings.Contains(output, "ghibli-studio-test") {
		t.Errorf("expected service name in export, got: %s", output)
	}
}
