package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
)

// newPrometheusReader creates an OTel metric reader that exposes instruments
// through the given Prometheus registry. Each registry gets its own exporter
// to avoid collector conflicts across Init calls.
func newPrometheusReader(registry *prometheus.Registry) (*promexporter.Exporter, error) {
	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return exporter, nil
}
