// Package telemetry wires OpenTelemetry log export into the slog logger.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/config"
)

// ShutdownFunc flushes and stops the exporter.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// SetupLogs returns an slog handler that exports records over OTLP/HTTP.
// When no endpoint is configured it returns a nil handler and a no-op shutdown.
func SetupLogs(ctx context.Context, cfg *config.Config) (slog.Handler, ShutdownFunc, error) {
	endpoint := strings.TrimSpace(cfg.OTel.Endpoint)
	if endpoint == "" {
		return nil, noopShutdown, nil
	}

	exporter, err := otlploghttp.New(ctx, exporterOptions(endpoint, cfg.OTel.Insecure)...)
	if err != nil {
		return nil, noopShutdown, fmt.Errorf("create otlp log exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.OTel.ServiceName),
		attribute.String("deployment.environment", cfg.App.ENV),
	)

	provider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)

	handler := otelslog.NewHandler(cfg.OTel.ServiceName, otelslog.WithLoggerProvider(provider))
	return handler, provider.Shutdown, nil
}

func exporterOptions(endpoint string, insecure bool) []otlploghttp.Option {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return []otlploghttp.Option{otlploghttp.WithEndpointURL(endpoint)}
	}
	opts := []otlploghttp.Option{otlploghttp.WithEndpoint(endpoint)}
	if insecure {
		opts = append(opts, otlploghttp.WithInsecure())
	}
	return opts
}
