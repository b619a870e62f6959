// Package indexer is the HTTP gateway to the remote indexing API.
package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsync/internal/domain"
	"github.com/kailas-cloud/docsync/internal/domain/payload"
	"github.com/kailas-cloud/docsync/internal/metrics"
	"github.com/kailas-cloud/docsync/internal/version"
)

// Defaults applied when Config leaves a field zero.
const (
	DefaultBaseURL          = "http://host.docker.internal:8086"
	DefaultTimeout          = 30 * time.Second
	DefaultMaxResponseBytes = 1 << 20
)

// errEmptyBody rejects a 2xx answer with nothing to decode.
var errEmptyBody = errors.New("empty response body")

// Config holds the indexing API settings.
type Config struct {
	BaseURL          string
	Timeout          time.Duration
	MaxResponseBytes int64
	HTTPClient       *http.Client // optional, mainly for tests
	Logger           *zap.Logger
}

// Client posts JSON payloads to the indexing API.
// Every failure is reported as an error wrapping domain.ErrTransport with a nil response.
type Client struct {
	baseURL  string
	http     *http.Client
	timeout  time.Duration
	maxBytes int64
	logger   *zap.Logger
}

// New creates an indexing API client.
func New(cfg Config) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     cfg.HTTPClient,
		timeout:  cfg.Timeout,
		maxBytes: cfg.MaxResponseBytes,
		logger:   cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.maxBytes <= 0 {
		c.maxBytes = DefaultMaxResponseBytes
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Feed sends an add, update or delete payload.
func (c *Client) Feed(ctx context.Context, p payload.Feed) (*payload.FeedResponse, error) {
	var out payload.FeedResponse
	if err := c.post(ctx, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ask relays a question.
func (c *Client) Ask(ctx context.Context, p payload.Ask) (*payload.AskResponse, error) {
	var out payload.AskResponse
	if err := c.post(ctx, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HealthCheck verifies the API host accepts connections. Any HTTP status counts as reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("indexing API unreachable: %w: %w", domain.ErrTransport, err)
	}
	_ = resp.Body.Close()
	return nil
}

func (c *Client) post(ctx context.Context, p payload.Payload, out any) error {
	route := string(p.Route())

	body, err := payload.Encode(p)
	if err != nil {
		return err //nolint:wrapcheck // already carries route and ErrInvalidPayload
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+route, bytes.NewReader(body))
	if err != nil {
		return c.failure(route, "request", fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set(middleware.RequestIDHeader, requestID(ctx))

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.IndexerRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	if err != nil {
		status := "error"
		var ne net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
			status = "timeout"
		}
		return c.failure(route, status, err)
	}
	defer func() { _ = resp.Body.Close() }()

	status := strconv.Itoa(resp.StatusCode)
	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return c.failure(route, status, fmt.Errorf("read body: %w", err))
	}
	if int64(len(raw)) > c.maxBytes {
		return c.failure(route, status, fmt.Errorf("response exceeds %d bytes", c.maxBytes))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.failure(route, status, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet(raw)))
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return c.failure(route, status, errEmptyBody)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return c.failure(route, status, fmt.Errorf("decode response: %w", err))
	}

	metrics.IndexerRequestsTotal.WithLabelValues(route, status).Inc()
	c.logger.Debug("indexing API call succeeded", zap.String("route", route), zap.Int("status", resp.StatusCode))
	return nil
}

// failure logs a TransportFailure and returns it wrapped in domain.ErrTransport.
func (c *Client) failure(route, status string, err error) error {
	metrics.IndexerRequestsTotal.WithLabelValues(route, status).Inc()
	c.logger.Warn("transport failure",
		zap.String("route", route),
		zap.String("status", status),
		zap.Error(err),
	)
	return fmt.Errorf("%s: %w: %w", route, domain.ErrTransport, err)
}

// requestID propagates the inbound chi request ID or mints a fresh one.
func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

func snippet(b []byte) string {
	const maxLen = 200
	s := strings.TrimSpace(string(b))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
