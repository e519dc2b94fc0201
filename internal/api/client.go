package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

// Client talks to the remote persistence API (orders, payments, client
// directory). It owns no state beyond a memoized payment config.
type Client struct {
	base    string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]

	sfg    singleflight.Group
	config atomic.Pointer[PaymentConfig]
}

func NewClient(baseURL string) *Client {
	settings := gobreaker.Settings{
		Name:    "orders-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &Client{
		base: baseURL,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

// APIError is any non-2xx answer from the collaborator.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Body)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request failed: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	if out != nil && len(data) > 0 {
		if err2 := json.Unmarshal(data, out); err2 != nil {
			return fmt.Errorf("decode response failed: %w", err2)
		}
	}
	return nil
}

// doGuarded routes order mutations through the circuit breaker so a
// dead backend fails fast instead of piling up requests.
func (c *Client) doGuarded(ctx context.Context, method, path string, body, out any) error {
	_, err := c.breaker.Execute(func() ([]byte, error) {
		return nil, c.do(ctx, method, path, body, out)
	})
	return err
}

func intQuery(key string, v int64) string {
	q := url.Values{}
	q.Set(key, strconv.FormatInt(v, 10))
	return "?" + q.Encode()
}
