// Package api implements the HTTP client for the storefront backend. The
// backend is an opaque collaborator: this package owns request plumbing
// (auth headers, request IDs, tracing, error classification) and response
// shape normalization, nothing else.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// DefaultBaseURL is the backend endpoint used when none is configured.
const DefaultBaseURL = "http://localhost:3000/api"

// TokenSource yields the bearer token to attach to a request. When the
// second return value is false the Authorization header is omitted
// entirely, never sent empty.
type TokenSource func(ctx context.Context) (string, bool)

// Config configures a Client.
type Config struct {
	// BaseURL is the backend root, e.g. "http://localhost:3000/api".
	BaseURL string

	// HTTPClient overrides the underlying transport. Timeout policy lives
	// here; the client itself imposes none.
	HTTPClient *http.Client

	// TokenSource supplies bearer tokens. Nil means unauthenticated.
	TokenSource TokenSource

	// Tracer records a span per request. Nil disables tracing.
	Tracer trace.Tracer

	Logger *slog.Logger
}

// Client is the storefront backend HTTP client.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewClient creates a backend client from the given configuration.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("api: invalid base url %q: %w", base, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("shopfront.api")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: u,
		http:    httpClient,
		tokens:  cfg.TokenSource,
		tracer:  tracer,
		logger:  logger,
	}, nil
}

// do issues one request and returns the decoded JSON body. Transport
// failures map to *NetworkError, non-2xx responses to *BackendError with
// the backend message extracted when present. A 2xx body that is empty or
// not a JSON object decodes to an empty map: mutation acks are allowed to
// say nothing.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) (map[string]any, error) {
	rel := &url.URL{Path: strings.TrimPrefix(path, "/")}
	if query != nil {
		rel.RawQuery = query.Encode()
	}
	endpoint := c.resolve(rel)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("api: encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", uuid.New().String())
	if c.tokens != nil {
		if token, ok := c.tokens(ctx); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	op := method + " " + path
	ctx, span := c.tracer.Start(ctx, "http "+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()
	req = req.WithContext(ctx)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &NetworkError{Op: op, Err: err}
	}

	c.logger.Debug("backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		message := backendMessage(data)
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		span.SetStatus(codes.Error, message)
		return nil, &BackendError{StatusCode: resp.StatusCode, Message: message}
	}

	span.SetStatus(codes.Ok, "")
	return decodeObject(data), nil
}

func (c *Client) resolve(rel *url.URL) string {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + rel.Path
	u.RawQuery = rel.RawQuery
	return u.String()
}

// decodeObject parses a response body into a map. Non-object and empty
// bodies yield an empty map rather than an error.
func decodeObject(data []byte) map[string]any {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return map[string]any{}
	}
	return m
}

// backendMessage extracts the error message from a failure body, checking
// the "message" field first, then "error", at both the top level and under
// a "data" envelope.
func backendMessage(data []byte) string {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return ""
	}
	for _, scope := range []map[string]any{m, innerMap(m)} {
		if scope == nil {
			continue
		}
		if s, ok := scope["message"].(string); ok && s != "" {
			return s
		}
		if s, ok := scope["error"].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func innerMap(m map[string]any) map[string]any {
	inner, _ := m["data"].(map[string]any)
	return inner
}
