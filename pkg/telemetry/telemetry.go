// Package telemetry holds OpenTelemetry and Prometheus building blocks shared by the binaries.
package telemetry

import (
	"context"
	"strings"

	"github.com/smallbiznis/invoicely/pkg/telemetry/correlation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

// Resource describes the running service for exported spans.
func Resource(ctx context.Context, serviceName, version, environment string) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", strings.TrimSpace(serviceName)),
			attribute.String("service.version", strings.TrimSpace(version)),
			attribute.String("deployment.environment", strings.TrimSpace(environment)),
		),
	)
}

// NewCorrelationSpanProcessor stamps every span with the request correlation id.
func NewCorrelationSpanProcessor() trace.SpanProcessor {
	return &correlationSpanProcessor{}
}

type correlationSpanProcessor struct{}

func (p *correlationSpanProcessor) OnStart(ctx context.Context, s trace.ReadWriteSpan) {
	if cid := correlation.FromContext(ctx); cid != "" {
		s.SetAttributes(attribute.String("correlation_id", cid))
	}
}

func (p *correlationSpanProcessor) OnEnd(trace.ReadOnlySpan) {}

func (p *correlationSpanProcessor) Shutdown(context.Context) error { return nil }

func (p *correlationSpanProcessor) ForceFlush(context.Context) error { return nil }
