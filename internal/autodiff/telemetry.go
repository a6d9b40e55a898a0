package autodiff

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("pullback.autodiff")
	meter  = otel.Meter("pullback.autodiff")
)

// instruments are created lazily on first use so that a MeterProvider
// installed after package initialization is still picked up.
var (
	metricsOnce   sync.Once
	nodesTotal    metric.Int64Counter
	skippedTotal  metric.Int64Counter
	failuresTotal metric.Int64Counter
	gradLatency   metric.Float64Histogram
)

// initMetrics creates the instruments. Failures degrade observability but
// never fail a gradient computation.
func initMetrics(logger *slog.Logger) {
	metricsOnce.Do(func() {
		var initErrors []string

		var err error
		nodesTotal, err = meter.Int64Counter("autodiff_nodes_total",
			metric.WithDescription("Tape nodes recorded by gradient computations"),
		)
		if err != nil {
			initErrors = append(initErrors, "nodes_total: "+err.Error())
		}

		skippedTotal, err = meter.Int64Counter("autodiff_pullbacks_skipped_total",
			metric.WithDescription("Pullbacks skipped because no cotangent reached them"),
		)
		if err != nil {
			initErrors = append(initErrors, "pullbacks_skipped_total: "+err.Error())
		}

		failuresTotal, err = meter.Int64Counter("autodiff_gradient_failures_total",
			metric.WithDescription("Gradient computations aborted by a fatal error"),
		)
		if err != nil {
			initErrors = append(initErrors, "gradient_failures_total: "+err.Error())
		}

		gradLatency, err = meter.Float64Histogram("autodiff_gradient_duration_seconds",
			metric.WithDescription("Time spent in forward plus backward pass"),
			metric.WithUnit("s"),
		)
		if err != nil {
			initErrors = append(initErrors, "gradient_duration_seconds: "+err.Error())
		}

		if len(initErrors) > 0 {
			logger.Error("failed to initialize some autodiff metrics (observability degraded)",
				slog.Any("errors", initErrors))
		}
	})
}

// recordMetrics publishes the outcome of one gradient computation.
func recordMetrics(ctx context.Context, stats Stats, elapsed time.Duration, failed bool) {
	attrs := metric.WithAttributes(attribute.Bool("failed", failed))
	if nodesTotal != nil {
		nodesTotal.Add(ctx, int64(stats.Nodes), attrs)
	}
	if skippedTotal != nil {
		skippedTotal.Add(ctx, int64(stats.Skipped), attrs)
	}
	if failed && failuresTotal != nil {
		failuresTotal.Add(ctx, 1)
	}
	if gradLatency != nil {
		gradLatency.Record(ctx, elapsed.Seconds(), attrs)
	}
}
