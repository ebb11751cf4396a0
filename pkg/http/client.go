package http

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"LLMBridge/internal/config"
	"LLMBridge/pkg/circuitbreaker"
)

// Client is a custom HTTP client that wraps the standard http.Client
// and provides built-in support for circuit breaking.
type Client struct {
	httpClient *http.Client
	breaker    circuitbreaker.CircuitBreaker
}

// NewClient creates a new Client. timeout bounds each request; extraction can take minutes.
func NewClient(cfg config.CircuitBreakerConfig, timeout time.Duration) (*Client, error) {
	httpClient := &http.Client{Timeout: timeout}
	if !cfg.Enabled {
		return &Client{httpClient: httpClient}, nil
	}

	breaker, err := createCircuitBreaker(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{httpClient: httpClient, breaker: breaker}, nil
}

// Do executes an HTTP request with circuit breaker protection.
// It considers status codes >= 500 as failures; their body is drained and closed.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}

	var resp *http.Response
	_, err := c.breaker.Execute(func() (interface{}, error) {
		var err error
		resp, err = c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}

		// Treat server-side errors as failures for the circuit breaker
		if resp.StatusCode >= http.StatusInternalServerError {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("server error: received status code %d", resp.StatusCode)
		}
		return nil, nil
	})
	if err != nil {
		// Either circuitbreaker.ErrCircuitOpen or the error from the call itself.
		return nil, err
	}
	return resp, nil
}

// createCircuitBreaker initializes a circuit breaker based on the configuration.
func createCircuitBreaker(cfg config.CircuitBreakerConfig) (circuitbreaker.CircuitBreaker, error) {
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid circuit breaker timeout duration: %w", err)
	}
	return circuitbreaker.New(cfg.FailureThreshold, cfg.SuccessThreshold, timeout), nil
}
