package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/dukerupert/artesania/internal/domain"
)

const flushTimeout = 2 * time.Second

// SentryConfig holds configuration for Sentry error tracking
type SentryConfig struct {
	// DSN is required when Enabled is true
	DSN     string
	Enabled bool

	Environment string
	Release     string

	// SampleRate is the share of errors sent (0.0 to 1.0); 0 means all.
	SampleRate float64

	// TracesSampleRate is the share of requests traced (0.0 to 1.0).
	TracesSampleRate float64

	Debug bool
}

var enabled atomic.Bool

// InitSentry initializes the Sentry client and returns the flush function
// to run on shutdown. A disabled or DSN-less config leaves every helper in
// this file a no-op.
func InitSentry(cfg SentryConfig, logger *slog.Logger) (func(), error) {
	enabled.Store(false)
	noop := func() {}

	if !cfg.Enabled {
		logger.Info("Sentry disabled")
		return noop, nil
	}
	if cfg.DSN == "" {
		logger.Warn("Sentry DSN not configured, disabling error tracking")
		return noop, nil
	}

	sampleRate := cfg.SampleRate
	if sampleRate == 0 {
		sampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       sampleRate,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
		BeforeSend:       scrubRequest,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Sentry: %w", err)
	}
	enabled.Store(true)

	logger.Info("Sentry initialized",
		"environment", cfg.Environment,
		"release", cfg.Release,
		"sample_rate", sampleRate,
	)

	return func() { sentry.Flush(flushTimeout) }, nil
}

// scrubRequest keeps session cookies, CSRF tokens and bearer tokens out of events.
func scrubRequest(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event.Request == nil {
		return event
	}
	for _, h := range []string{"Authorization", "Cookie", "X-Csrf-Token"} {
		delete(event.Request.Headers, h)
	}
	event.Request.Cookies = ""
	event.Request.Data = ""
	return event
}

// IsEnabled reports whether events are being sent.
func IsEnabled() bool {
	return enabled.Load()
}

func hubFrom(ctx context.Context) *sentry.Hub {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return sentry.CurrentHub()
}

// AddBreadcrumb records a step on the request's hub.
func AddBreadcrumb(ctx context.Context, category, message string, data map[string]interface{}) {
	if !IsEnabled() {
		return
	}
	hubFrom(ctx).AddBreadcrumb(&sentry.Breadcrumb{
		Category: category,
		Message:  message,
		Data:     data,
		Level:    sentry.LevelInfo,
	}, nil)
}

// CaptureErrorFromContext reports err on the request's hub with extras attached.
func CaptureErrorFromContext(ctx context.Context, err error, extras map[string]interface{}) {
	if !IsEnabled() || err == nil {
		return
	}

	hub := hubFrom(ctx)
	hub.WithScope(func(scope *sentry.Scope) {
		for key, value := range extras {
			scope.SetExtra(key, value)
		}
		if code := domain.ErrorCode(err); code != "" {
			scope.SetTag("error_code", code)
		}
		hub.CaptureException(err)
	})
}

// SentryMiddleware gives each request its own hub and reports panics.
// The panic is re-raised so router.Recovery still answers the request.
func SentryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsEnabled() {
				next.ServeHTTP(w, r)
				return
			}

			hub := sentry.CurrentHub().Clone()
			hub.Scope().SetRequest(r)
			if id := domain.RequestIDFromContext(r.Context()); id != "" {
				hub.Scope().SetTag("request_id", id)
			}
			ctx := sentry.SetHubOnContext(r.Context(), hub)

			defer func() {
				if err := recover(); err != nil {
					hub.RecoverWithContext(ctx, err)
					hub.Flush(flushTimeout)
					panic(err)
				}
			}()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserInfo is the part of the signed-in user sent with events.
type UserInfo struct {
	ID    string
	Email string
	Role  string
}

// UserContextExtractor extracts the signed-in shopper from a request context.
type UserContextExtractor func(ctx context.Context) *UserInfo

// SentryContextMiddleware tags the request's hub with the signed-in user.
// It must run after the session middleware.
func SentryContextMiddleware(userExtractor UserContextExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsEnabled() && userExtractor != nil {
				if user := userExtractor(r.Context()); user != nil {
					hubFrom(r.Context()).ConfigureScope(func(scope *sentry.Scope) {
						scope.SetUser(sentry.User{ID: user.ID, Email: user.Email})
						if user.Role != "" {
							scope.SetTag("role", user.Role)
						}
					})
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HTTPTransport wraps an http.RoundTripper with a span per marketplace API call.
type HTTPTransport struct {
	Transport http.RoundTripper
}

func (t *HTTPTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if !IsEnabled() {
		return base.RoundTrip(req)
	}

	span := sentry.StartSpan(req.Context(), "http.client")
	span.Description = req.Method + " " + req.URL.Path
	defer span.Finish()

	resp, err := base.RoundTrip(req)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}
	span.SetData("http.status_code", resp.StatusCode)
	return resp, nil
}
