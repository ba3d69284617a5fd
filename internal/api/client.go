package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/auth"
)

// errServerFault marks 5xx responses inside the breaker so they trip it while
// 4xx responses (expected validation/auth outcomes) do not.
var errServerFault = errors.New("backend server fault")

// Request describes one backend call. Body is JSON-encoded unless RawBody is
// set, in which case it is passed through unchanged with ContentType.
type Request struct {
	// Resource is the logical operation name used as the metrics label,
	// e.g. "orders.create".
	Resource string

	Method string
	Path   string
	Query  url.Values
	Header http.Header

	Body        any
	RawBody     io.Reader
	ContentType string

	// NoAuth skips bearer attachment and the 401 refresh-and-retry.
	NoAuth bool

	// GuestToken is attached as X-Guest-Token for guest cart calls.
	GuestToken string
}

// Client is the generic backend REST client. It is cheap to copy;
// WithSession derives a per-session client sharing the breaker and metrics.
type Client struct {
	baseURL string
	http    *http.Client
	metrics *Metrics
	breaker *gobreaker.CircuitBreaker[*http.Response]
	log     *slog.Logger
}

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Metrics    *Metrics
	Breaker    *gobreaker.CircuitBreaker[*http.Response]
	Logger     *slog.Logger
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: opts.BaseURL,
		http:    httpClient,
		metrics: opts.Metrics,
		breaker: opts.Breaker,
		log:     log,
	}
}

// NewBreaker builds the circuit breaker shared by all sessions. It opens
// after a run of transport-level or 5xx failures and half-opens after the
// cool-down.
func NewBreaker(name string) *gobreaker.CircuitBreaker[*http.Response] {
	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

// WithSession returns a client whose transport attaches the session's bearer
// token and performs the one-shot 401 refresh-and-retry.
func (c *Client) WithSession(tokens auth.TokenStore, sessionID string, bus *auth.Bus) *Client {
	base := c.http.Transport
	session := *c
	session.http = &http.Client{
		Timeout: c.http.Timeout,
		Transport: &RefreshTransport{
			Base:      base,
			Tokens:    tokens,
			Refresh:   NewRefreshFunc(c.baseURL, &http.Client{Timeout: c.http.Timeout, Transport: base}),
			Bus:       bus,
			SessionID: sessionID,
		},
	}
	return &session
}

// Do issues the request and decodes the response into out. A JSON response is
// unmarshalled; a text response is assigned when out is *string; out == nil
// discards the body. Non-2xx responses become *Error.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	httpReq, err := c.build(ctx, req)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.send(httpReq)
	if err != nil && !errors.Is(err, errServerFault) {
		c.metrics.observe(req.Resource, "error", msSince(start))
		return fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()
	c.metrics.observe(req.Resource, strconv.Itoa(resp.StatusCode), msSince(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", req.Method, req.Path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := newError(resp.StatusCode, body)
		c.log.DebugContext(ctx, "backend call failed",
			"resource", req.Resource, "status", resp.StatusCode, "message", apiErr.Message)
		return apiErr
	}
	if out == nil || len(body) == 0 {
		return nil
	}

	if isJSON(resp.Header.Get("Content-Type")) {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", req.Method, req.Path, err)
		}
		return nil
	}
	if s, ok := out.(*string); ok {
		*s = string(body)
		return nil
	}
	return fmt.Errorf("%s %s: unexpected content type %q", req.Method, req.Path, resp.Header.Get("Content-Type"))
}

func (c *Client) build(ctx context.Context, req Request) (*http.Request, error) {
	if req.NoAuth {
		ctx = WithoutAuth(ctx)
	}

	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.RawBody != nil:
		body = req.RawBody
		contentType = req.ContentType
	case req.Body != nil:
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%s %s: marshal body: %w", req.Method, req.Path, err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: build request: %w", req.Method, req.Path, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.GuestToken != "" {
		httpReq.Header.Set("X-Guest-Token", req.GuestToken)
	}
	return httpReq, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.http.Do(req)
	}
	return c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerFault
		}
		return resp, nil
	})
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || mt == "application/problem+json"
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
