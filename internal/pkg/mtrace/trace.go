package mtrace

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	SQLKey   = attribute.Key("exec.sql")
	SQLError = attribute.Key("exec.sql.error")

	MongoCollection = attribute.Key("mongo.collection")
	MongoError      = attribute.Key("mongo.error")

	RedisExecCmd   = attribute.Key("redis.cmd")
	RedisExecError = attribute.Key("redis.error")

	FriendRequestID = attribute.Key("friendship.request_id")
)

var (
	TraceName = "friendship"
	enable    bool
	provider  *sdktrace.TracerProvider
)

type Config struct {
	Name     string  `json:"name" yaml:"name"`
	Endpoint string  `json:"endpoint" yaml:"endpoint"`
	Sampler  float64 `json:"sampler" yaml:"sampler"`
	Enable   bool    `json:"enable" yaml:"enable"`
}

func InitTelemetry(cfg Config) {
	enable = cfg.Enable
	if !cfg.Enable {
		return
	}
	if cfg.Name != "" {
		TraceName = cfg.Name
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceNameKey.String(TraceName))),
	}
	if strings.TrimSpace(cfg.Endpoint) != "" {
		exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.Endpoint)))
		if err != nil {
			panic(err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	if cfg.Sampler > 0 {
		opts = append(opts, sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.Sampler))))
	}
	provider = sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
}

func Enabled() bool {
	return enable
}

// Shutdown flushes pending spans to the exporter.
func Shutdown(ctx context.Context) error {
	if provider == nil {
		return nil
	}
	return provider.Shutdown(ctx)
}

// StartSpan returns a no-op span when tracing is disabled, so callers can
// always set attributes and end the span.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if !enable {
		return ctx, trace.SpanFromContext(ctx)
	}
	tr := otel.Tracer(TraceName)
	return tr.Start(ctx, name, opts...)
}

func EndSpan(span trace.Span) {
	if !enable {
		return
	}
	if span != nil {
		span.End()
	}
}
