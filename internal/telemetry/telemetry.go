// Package telemetry wires OpenTelemetry metrics for the Tool Host and exposes them in Prometheus format.
package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Config controls whether telemetry is collected and how the service identifies itself.
type Config struct {
	ServiceName string
	Enabled     bool
}

// Providers holds the initialized telemetry providers.
// When telemetry is disabled, Meter is a no-op meter and Handler serves nothing useful.
type Providers struct {
	Meter metric.Meter

	serviceName   string
	enabled       bool
	meterProvider *sdkmetric.MeterProvider
	registry      *prometheus.Registry
}

// Init sets up the metrics pipeline: otel meter provider -> prometheus exporter -> private registry.
func Init(ctx context.Context, c *Config) (*Providers, error) {
	p := &Providers{
		serviceName: c.ServiceName,
		enabled:     c.Enabled,
	}
	if !c.Enabled {
		p.Meter = noop.NewMeterProvider().Meter(c.ServiceName)
		return p, nil
	}

	// a private registry lets several hosts coexist in one process (tests) without duplicate registration
	p.registry = prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(p.registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	res := resource.NewSchemaless(attribute.String("service.name", c.ServiceName))
	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(p.meterProvider)

	p.Meter = p.meterProvider.Meter(c.ServiceName)
	return p, nil
}

// IsEnabled reports whether metrics are being collected.
func (p *Providers) IsEnabled() bool {
	return p != nil && p.enabled
}

func (p *Providers) ServiceName() string {
	return p.serviceName
}

// Handler serves the collected metrics in Prometheus text format.
func (p *Providers) Handler() http.Handler {
	if !p.IsEnabled() {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops the providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil || p.meterProvider == nil {
		return nil
	}
	return p.meterProvider.Shutdown(ctx)
}
