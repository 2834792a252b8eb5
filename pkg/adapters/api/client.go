package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/painelbot/atendente/internal/logging"
	"github.com/painelbot/atendente/pkg/domain"
	"github.com/painelbot/atendente/pkg/observability"
)

// DefaultBaseURL is where the backend listens in a local installation.
const DefaultBaseURL = "http://localhost:3000"

// maxErrorBody bounds how much of an error response is kept in domain.APIError.
const maxErrorBody = 4 << 10

// TokenSource provides the bearer token and is told when the backend rejects it.
// *session.Manager satisfies it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// Client talks to the attendant backend REST API.
// It implements every service in pkg/ports. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    TokenSource
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client (e.g. to set a timeout or transport).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSession attaches the stored token to every request and clears it on 401/403.
func WithSession(s TokenSource) Option {
	return func(c *Client) {
		c.session = s
	}
}

// WithLogger configures a logger for the Client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records every request in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a client for the backend at baseURL.
// If baseURL is empty, it defaults to DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes one call. route is the path template used as a metrics label.
type request struct {
	method      string
	route       string
	path        string
	body        io.Reader
	contentType string
	anonymous   bool
}

func jsonRequest(method, route, path string, payload any) (request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("failed to marshal request: %w", err)
	}
	return request{
		method:      method,
		route:       route,
		path:        path,
		body:        bytes.NewReader(data),
		contentType: "application/json",
	}, nil
}

// do sends r and decodes a JSON response into out (when out is non-nil and the body is not empty).
func (c *Client) do(ctx context.Context, r request, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if r.contentType != "" {
		httpReq.Header.Set("Content-Type", r.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	if c.session != nil && !r.anonymous {
		token, err := c.session.Token(ctx)
		switch {
		case err == nil && token != "":
			httpReq.Header.Set("Authorization", "Bearer "+token)
		case err != nil && !errors.Is(err, domain.ErrNotAuthenticated):
			return fmt.Errorf("failed to read session: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.ObserveRequest(r.method, r.route, 0, time.Since(start))
		c.logger.Debug("Backend request failed", "method", r.method, "path", r.path, "err", err)
		return fmt.Errorf("%w: %s %s: %w", domain.ErrUnavailable, r.method, r.path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	c.metrics.ObserveRequest(r.method, r.route, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		_, _ = io.Copy(io.Discard, resp.Body)
		if c.session != nil && !r.anonymous {
			if err := c.session.Clear(ctx); err != nil {
				c.logger.Warn("Failed to clear rejected session", "err", err)
			}
		}
		return fmt.Errorf("%s %s: %w", r.method, r.path, domain.ErrUnauthorized)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &domain.APIError{
			Method: r.method,
			Path:   r.path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", domain.ErrUnavailable, err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: failed to parse response: %w", r.method, r.path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, route, path string, out any) error {
	return c.do(ctx, request{method: http.MethodGet, route: route, path: path}, out)
}

func (c *Client) send(ctx context.Context, method, route, path string, payload, out any) error {
	r, err := jsonRequest(method, route, path, payload)
	if err != nil {
		return err
	}
	return c.do(ctx, r, out)
}
