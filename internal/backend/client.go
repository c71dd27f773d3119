// Package backend is the HTTP JSON client for the marketplace API. It owns
// transport and error mapping; payload shapes are interpreted by the
// normalizers in catalog, profile and orders.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/payload"
)

//go:generate mockgen -destination=backendmock/api.go -package=backendmock . API

// API is everything the storefront asks of the marketplace.
type API interface {
	ListProducts(ctx context.Context) ([]any, error)
	ListCategories(ctx context.Context) ([]any, error)

	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	AdminLogin(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, token string) error

	FetchProfile(ctx context.Context, token string) (map[string]any, error)
	UpdateProfile(ctx context.Context, token string, profile map[string]any) error

	CreateOrder(ctx context.Context, token string, items []OrderItem) (*domain.OrderConfirmation, error)
	ListOrders(ctx context.Context, token string) ([]any, error)
	FetchOrder(ctx context.Context, token, id string) (map[string]any, error)
}

// Outcome labels a finished request for metrics.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeClientError Outcome = "client_error"
	OutcomeServerError Outcome = "server_error"
	OutcomeTransport   Outcome = "transport_error"
)

// Observer is told about every request the client makes.
type Observer interface {
	ObserveRequest(ctx context.Context, op string, outcome Outcome, elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveRequest(context.Context, string, Outcome, time.Duration, error) {}

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// Client implements API over net/http.
type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   Observer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithObserver reports every request to o.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ API = (*Client)(nil)

// call describes one API request.
type call struct {
	op       string
	method   string
	path     string
	token    string
	body     any
	fallback func(status int) string
}

// do performs the request and decodes the JSON response. Transport failures
// map to EUNAVAILABLE; non-2xx responses map to a code by status and carry
// the server's message when it sent one.
func (c *Client) do(ctx context.Context, cl call) (any, error) {
	start := time.Now()
	result, outcome, err := c.roundTrip(ctx, cl)
	c.observer.ObserveRequest(ctx, cl.op, outcome, time.Since(start), err)
	return result, err
}

func (c *Client) roundTrip(ctx context.Context, cl call) (any, Outcome, error) {
	var body io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return nil, OutcomeClientError, domain.Internal(err, cl.op, "failed to encode request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return nil, OutcomeClientError, domain.Internal(err, cl.op, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}
	if id := domain.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, OutcomeTransport, domain.Unavailable(err, cl.op)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, OutcomeTransport, domain.Unavailable(err, cl.op)
	}

	// Non-JSON bodies are tolerated: errors fall back to generic messages and
	// successful responses decode to nil.
	doc, decodeErr := payload.DecodeBytes(raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome := OutcomeClientError
		if resp.StatusCode >= 500 {
			outcome = OutcomeServerError
		}
		return nil, outcome, statusError(cl, resp.StatusCode, doc)
	}

	if decodeErr != nil {
		return nil, OutcomeServerError, domain.WrapError(decodeErr, domain.EUNAVAILABLE, cl.op, fallbackMessage(cl, resp.StatusCode))
	}
	return doc, OutcomeOK, nil
}

func fallbackMessage(cl call, status int) string {
	if cl.fallback != nil {
		return cl.fallback(status)
	}
	return fmt.Sprintf("The server responded with status %d.", status)
}

// statusError builds the domain error for a non-2xx response.
func statusError(cl call, status int, doc any) error {
	msg := ServerMessage(doc)
	if msg == "" {
		msg = fallbackMessage(cl, status)
	}
	return &domain.Error{
		Code:    codeForStatus(status),
		Op:      cl.op,
		Message: msg,
		Status:  status,
	}
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return domain.EUNAUTHORIZED
	case status == http.StatusForbidden:
		return domain.EFORBIDDEN
	case status == http.StatusNotFound:
		return domain.ENOTFOUND
	case status == http.StatusConflict:
		return domain.ECONFLICT
	case status == http.StatusRequestEntityTooLarge:
		return domain.ETOOLARGE
	case status == http.StatusTooManyRequests:
		return domain.ERATELIMIT
	case status >= 500:
		return domain.EUNAVAILABLE
	default:
		return domain.EINVALID
	}
}

// ServerMessage extracts a human message from an error body: message,
// detail or error fields, or an array of strings joined by spaces.
func ServerMessage(doc any) string {
	if obj, ok := payload.Object(doc); ok {
		for _, key := range []string{"message", "detail", "error"} {
			switch v := obj[key].(type) {
			case string:
				if v != "" {
					return v
				}
			case map[string]any:
				if m := ServerMessage(v); m != "" {
					return m
				}
			case []any:
				if m := joinStrings(v); m != "" {
					return m
				}
			}
		}
		return ""
	}
	return joinStrings(payload.List(doc))
}

func joinStrings(list []any) string {
	parts := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// IsUnavailable reports whether err is a transport failure.
func IsUnavailable(err error) bool {
	var e *domain.Error
	return errors.As(err, &e) && e.Code == domain.EUNAVAILABLE && e.Status == 0
}
