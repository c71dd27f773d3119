package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukerupert/artesania/internal/backend"
	"github.com/dukerupert/artesania/internal/domain"
)

// BackendObserver records marketplace API calls: latency for every call,
// a warning log and a Sentry event when the API is down or failing.
type BackendObserver struct {
	metrics *BusinessMetrics
	logger  *slog.Logger
}

// NewBackendObserver returns an observer; metrics may be nil.
func NewBackendObserver(metrics *BusinessMetrics, logger *slog.Logger) *BackendObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackendObserver{metrics: metrics, logger: logger.With("component", "backend")}
}

var _ backend.Observer = (*BackendObserver)(nil)

// ObserveRequest implements backend.Observer.
func (o *BackendObserver) ObserveRequest(ctx context.Context, op string, outcome backend.Outcome, elapsed time.Duration, err error) {
	if o.metrics != nil {
		o.metrics.BackendLatency.WithLabelValues(op, string(outcome)).Observe(elapsed.Seconds())
	}

	switch outcome {
	case backend.OutcomeTransport, backend.OutcomeServerError:
		o.logger.WarnContext(ctx, "marketplace API failure",
			"op", op,
			"outcome", outcome,
			"status", domain.ErrorStatus(err),
			"elapsed", elapsed,
			"request_id", domain.RequestIDFromContext(ctx),
			"error", err,
		)
		CaptureErrorFromContext(ctx, err, map[string]interface{}{
			"op":      op,
			"outcome": string(outcome),
			"status":  domain.ErrorStatus(err),
		})
	case backend.OutcomeClientError:
		o.logger.DebugContext(ctx, "marketplace API rejected request",
			"op", op,
			"status", domain.ErrorStatus(err),
			"error", err,
		)
	default:
		AddBreadcrumb(ctx, "backend", op, map[string]interface{}{"elapsed_ms": elapsed.Milliseconds()})
	}
}
