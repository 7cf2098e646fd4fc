// Package backend talks to the routing backend that owns trips, roadside
// services and path computation.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samirrijal/driverdash/internal/pkg/metrics"
)

const (
	DefaultBaseURL = "http://127.0.0.1:8000"
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 4 << 10
	maxBody      = 16 << 20
)

// HTTPClient is the subset of *http.Client the backend client needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Op      string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: backend returned %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.Status, e.Message)
}

// Client implements ports.TripSource, ports.ServiceSource and
// ports.RoutingClient over the backend's JSON API.
type Client struct {
	http    HTTPClient
	baseURL string
	log     *slog.Logger
}

// New creates a backend client. An empty baseURL or a non-positive timeout
// fall back to the defaults.
func New(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewWithClient(&http.Client{Timeout: timeout}, baseURL, log)
}

// NewWithClient creates a backend client using the given HTTP client.
func NewWithClient(client HTTPClient, baseURL string, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		http:    client,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// getJSON issues a GET against path and decodes the body into an untyped
// value. Numbers decode as float64.
func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values) (_ any, err error) {
	start := time.Now()
	defer func() { metrics.ObserveBackend(op, start, err) }()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.DebugContext(ctx, "backend request", "op", op, "url", u)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Op: op, Status: resp.StatusCode, Message: errorMessage(body)}
	}

	var v any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&v); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return v, nil
}

// errorMessage pulls a human readable message out of an error body, which may
// be JSON ({"detail": ...}, {"error": ...}, {"message": ...}) or plain text.
func errorMessage(body []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err == nil {
		for _, k := range []string{"detail", "error", "message"} {
			if s, ok := obj[k].(string); ok && s != "" {
				return s
			}
		}
	}
	return strings.TrimSpace(string(body))
}

// unwrapList accepts a bare array or an object carrying the array under one
// of keys.
func unwrapList(v any, keys ...string) ([]any, error) {
	switch t := v.(type) {
	case []any:
		return t, nil
	case map[string]any:
		for _, k := range keys {
			if list, ok := t[k].([]any); ok {
				return list, nil
			}
		}
		if data, ok := t["data"]; ok {
			return unwrapList(data, keys...)
		}
	}
	return nil, errors.New("response is not a list")
}
