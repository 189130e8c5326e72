// Package apiclient is the dashboard's only way to talk to the scheduling
// backend. It shapes requests, attaches the bearer credential and normalizes
// failures into TransportError, APIError and ProtocolError. It never retries
// and never caches.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	basePath       = "/v1"
)

type Config struct {
	BaseURL string
	// Token is sent as "Authorization: Bearer <Token>" when non-empty.
	Token   string
	Timeout time.Duration
	// HTTPClient overrides the instrumented default client.
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *zap.Logger
}

func New(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{baseURL: base, token: cfg.Token, http: hc, log: log.Named("apiclient")}
}

// WithCredential returns a client that sends token instead of the receiver's
// credential. The receiver is unchanged.
func (c *Client) WithCredential(token string) *Client {
	clone := *c
	clone.token = strings.TrimSpace(token)
	return &clone
}

func (c *Client) HasCredential() bool { return c.token != "" }
func (c *Client) BaseURL() string     { return c.baseURL }

// Request sends one JSON request to endpoint (relative to /v1) and returns
// the raw JSON body of a 2xx response.
func (c *Client) Request(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, &ProtocolError{Method: method, Endpoint: endpoint, Err: errors.Wrap(err, "encode request body")}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+basePath+endpoint, reader)
	if err != nil {
		return nil, &TransportError{Method: method, Endpoint: endpoint, Err: errors.Wrap(err, "build request")}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("method", method), zap.String("endpoint", endpoint), zap.Error(err))
		return nil, &TransportError{Method: method, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Endpoint: endpoint, Err: errors.Wrap(err, "read response")}
	}
	c.log.Debug("request",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Method:   method,
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Reason:   reasonFrom(resp.StatusCode, raw),
		}
	}
	if !json.Valid(raw) {
		return nil, &ProtocolError{Method: method, Endpoint: endpoint, Err: errors.New("body is not valid JSON")}
	}
	return json.RawMessage(raw), nil
}

type validator interface {
	Validate() error
}

// call issues one request and decodes the body into a validated T.
func call[T validator](ctx context.Context, c *Client, method, endpoint string, body any) (T, error) {
	var out T
	raw, err := c.Request(ctx, method, endpoint, body)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &ProtocolError{Method: method, Endpoint: endpoint, Err: err}
	}
	if err := out.Validate(); err != nil {
		var zero T
		return zero, &ProtocolError{Method: method, Endpoint: endpoint, Err: err}
	}
	return out, nil
}

// callList is call for endpoints answering a JSON array. One malformed
// element rejects the whole response.
func callList[T validator](ctx context.Context, c *Client, method, endpoint string, body any) ([]T, error) {
	raw, err := c.Request(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &ProtocolError{Method: method, Endpoint: endpoint, Err: err}
	}
	if out == nil {
		return nil, &ProtocolError{Method: method, Endpoint: endpoint, Err: errors.New("expected a JSON array")}
	}
	for i, item := range out {
		if err := item.Validate(); err != nil {
			return nil, &ProtocolError{Method: method, Endpoint: endpoint, Err: errors.Wrapf(err, "element %d", i)}
		}
	}
	return out, nil
}
