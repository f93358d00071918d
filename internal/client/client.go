// Package client is the HTTP client for the order service under test.
//
// The order service implements the resilience patterns (circuit breaker,
// bulkhead, fail-fast validation); this client only speaks its wire
// contract and reports what it observed. Whether an observation counts
// as a pass or a failure is decided by the traffic profiles.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Options configures the underlying HTTP transport.
type Options struct {
	// Timeout for each request.
	Timeout time.Duration

	// MaxIdleConnsPerHost controls connection pooling. Load generation
	// hammers a single host, so this defaults high.
	MaxIdleConnsPerHost int

	// DisableKeepAlives forces a fresh connection per request.
	DisableKeepAlives bool

	// RunID tags every request with an X-Load-Run header so the run can
	// be picked out of the target's access logs.
	RunID string
}

// Client issues requests against a single order-service base URL.
// It is safe for concurrent use; all simulated users share one client
// so they share one connection pool.
type Client struct {
	baseURL string
	runID   string
	httpc   *http.Client
}

// New creates a client for the given base URL (e.g. http://localhost:8080).
func New(baseURL string, opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxIdleConnsPerHost == 0 {
		opts.MaxIdleConnsPerHost = 100
	}

	transport := &http.Transport{
		MaxIdleConns:        1000,
		MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
		DisableKeepAlives:   opts.DisableKeepAlives,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		runID:   opts.RunID,
		httpc: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
	}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Response is the observed outcome of a single request.
//
// Response is non-nil even when the call returns an error; in that case
// only Duration is meaningful.
type Response struct {
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// do executes a request and times it.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*Response, error) {
	start := time.Now()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Response{Duration: time.Since(start)}, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.runID != "" {
		req.Header.Set("X-Load-Run", c.runID)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &Response{Duration: time.Since(start)}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	if err != nil {
		return &Response{StatusCode: resp.StatusCode, Duration: duration},
			fmt.Errorf("read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Duration:   duration,
	}, nil
}

// CreateOrder posts an order payload to /order/create.
// The payload is raw JSON so profiles can send deliberately invalid bodies.
func (c *Client) CreateOrder(ctx context.Context, payload []byte) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/order/create", payload)
}

// GetOrder fetches a previously created order by its server-assigned id.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/order/"+orderID, nil)
}

// CircuitStatus fetches the circuit-breaker status of the order service's
// two downstream dependencies.
func (c *Client) CircuitStatus(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/order/circuit-status", nil)
}

// OrderID extracts the order_id field from a create-order response body.
// Returns "" when the field is absent or the body is not JSON.
func OrderID(body []byte) string {
	return gjson.GetBytes(body, "order_id").String()
}

// BreakerState is one circuit breaker's reported state.
type BreakerState struct {
	Name  string  `json:"name"`
	State string  `json:"state"`
	Value float64 `json:"value"`
}

// CircuitState is the order service's view of both downstream breakers.
type CircuitState struct {
	Inventory BreakerState `json:"inventory_circuit"`
	Payment   BreakerState `json:"payment_circuit"`
}

// ParseCircuitStatus decodes a /order/circuit-status body.
//
// The contract requires both breaker objects with a state field; anything
// less is treated as a parse failure.
func ParseCircuitStatus(body []byte) (CircuitState, error) {
	if !gjson.ValidBytes(body) {
		return CircuitState{}, fmt.Errorf("circuit status is not valid JSON")
	}

	inv := gjson.GetBytes(body, "inventory_circuit")
	pay := gjson.GetBytes(body, "payment_circuit")
	if !inv.Exists() || !pay.Exists() {
		return CircuitState{}, fmt.Errorf("circuit status missing breaker fields")
	}
	if !inv.Get("state").Exists() || !pay.Get("state").Exists() {
		return CircuitState{}, fmt.Errorf("circuit status missing state fields")
	}

	return CircuitState{
		Inventory: BreakerState{
			Name:  inv.Get("name").String(),
			State: inv.Get("state").String(),
			Value: inv.Get("value").Float(),
		},
		Payment: BreakerState{
			Name:  pay.Get("name").String(),
			State: pay.Get("state").String(),
			Value: pay.Get("value").Float(),
		},
	}, nil
}
