package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

type settings struct {
	writer io.Writer
	sync   bool
	pretty bool
}

// Option configures InitTracer.
type Option func(*settings)

// WithWriter sends exported spans to w instead of stdout.
func WithWriter(w io.Writer) Option {
	return func(s *settings) {
		s.writer = w
	}
}

// WithSyncExport exports each span as it ends instead of batching.
func WithSyncExport() Option {
	return func(s *settings) {
		s.sync = true
	}
}

// WithCompactOutput disables pretty printing.
func WithCompactOutput() Option {
	return func(s *settings) {
		s.pretty = false
	}
}

// InitTracer installs a global tracer provider exporting to stdout and
// returns its shutdown func.
func InitTracer(serviceName string, logger *slog.Logger, opts ...Option) (func(context.Context) error, error) {
	s := settings{writer: os.Stdout, pretty: true}
	for _, opt := range opts {
		opt(&s)
	}

	exporterOpts := []stdouttrace.Option{stdouttrace.WithWriter(s.writer)}
	if s.pretty {
		exporterOpts = append(exporterOpts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(exporterOpts...)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	export := sdktrace.WithBatcher(exporter)
	if s.sync {
		export = sdktrace.WithSyncer(exporter)
	}
	tp := sdktrace.NewTracerProvider(
		export,
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)

	logger.Info("OpenTelemetry initialized", slog.String("service", serviceName))

	return tp.Shutdown, nil
}
