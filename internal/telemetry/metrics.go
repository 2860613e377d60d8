package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ToolCallOutcome is the outcome label attached to tool call metrics.
type ToolCallOutcome string

const (
	ToolCallOutcomeSuccess ToolCallOutcome = "success"
	ToolCallOutcomeError   ToolCallOutcome = "error"
)

// CustomMetrics is the set of application metrics recorded by the Tool Host.
// Callers use it unconditionally; when telemetry is off the no-op implementation is used.
type CustomMetrics interface {
	RecordToolCall(ctx context.Context, toolName string, outcome ToolCallOutcome, elapsed time.Duration)
}

type noopCustomMetrics struct{}

// NewNoopCustomMetrics returns metrics that record nothing.
func NewNoopCustomMetrics() CustomMetrics {
	return noopCustomMetrics{}
}

func (noopCustomMetrics) RecordToolCall(context.Context, string, ToolCallOutcome, time.Duration) {}

type otelCustomMetrics struct {
	toolCalls        metric.Int64Counter
	toolCallDuration metric.Float64Histogram
}

// NewOtelCustomMetrics creates the tool call instruments on the given meter.
func NewOtelCustomMetrics(meter metric.Meter) (CustomMetrics, error) {
	calls, err := meter.Int64Counter(
		"mathtools_tool_calls_total",
		metric.WithDescription("Number of tool invocations handled by the host"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool call counter: %w", err)
	}
	duration, err := meter.Float64Histogram(
		"mathtools_tool_call_duration_seconds",
		metric.WithDescription("Latency of tool invocations handled by the host"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool call duration histogram: %w", err)
	}
	return &otelCustomMetrics{toolCalls: calls, toolCallDuration: duration}, nil
}

func (m *otelCustomMetrics) RecordToolCall(ctx context.Context, toolName string, outcome ToolCallOutcome, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("tool_name", toolName),
		attribute.String("outcome", string(outcome)),
	)
	m.toolCalls.Add(ctx, 1, attrs)
	m.toolCallDuration.Record(ctx, elapsed.Seconds(), attrs)
}
