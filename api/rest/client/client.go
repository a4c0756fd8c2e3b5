// Package client calls a remote calculator server over HTTP using Fiber's client.
package client

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"yqhp/calc/api/rest"
)

// Config holds the configuration for the HTTP client.
type Config struct {
	// ServerURL is the base URL of the calculator server (e.g., "http://localhost:8080")
	ServerURL string

	// RequestTimeout is the timeout for HTTP requests.
	RequestTimeout time.Duration
}

// DefaultConfig returns a default client configuration.
func DefaultConfig() *Config {
	return &Config{
		ServerURL:      "http://localhost:8080",
		RequestTimeout: 10 * time.Second,
	}
}

// Client talks to the REST API of a calculator server.
type Client struct {
	config *Config
	agent  *fiber.Client
}

// NewClient creates a new HTTP client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	config.ServerURL = strings.TrimRight(config.ServerURL, "/")
	return &Client{
		config: config,
		agent:  fiber.AcquireClient(),
	}
}

// Close releases the underlying Fiber client.
func (c *Client) Close() {
	fiber.ReleaseClient(c.agent)
}

// Health checks that the server is up and returns its session id.
func (c *Client) Health() (string, error) {
	req := c.agent.Get(c.url("/api/v1/health"))
	var resp rest.HealthResponse
	if err := c.do(req, &resp); err != nil {
		return "", fmt.Errorf("health check failed: %w", err)
	}
	return resp.SessionID, nil
}

// Eval evaluates one line on the server.
func (c *Client) Eval(line string) (*rest.EvalResponse, error) {
	req := c.agent.Post(c.url("/api/v1/eval"))
	req.JSON(rest.EvalRequest{Line: line})

	var resp rest.EvalResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("eval failed: %w", err)
	}
	return &resp, nil
}

// Variables lists the server's variables.
func (c *Client) Variables() (*rest.VariablesResponse, error) {
	req := c.agent.Get(c.url("/api/v1/variables"))
	var resp rest.VariablesResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("list variables failed: %w", err)
	}
	return &resp, nil
}

// Reset clears the server's variables.
func (c *Client) Reset() error {
	req := c.agent.Delete(c.url("/api/v1/variables"))
	var resp rest.SuccessResponse
	if err := c.do(req, &resp); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	return nil
}

func (c *Client) url(path string) string {
	return c.config.ServerURL + path
}

func (c *Client) do(req *fiber.Agent, out any) error {
	req.Timeout(c.config.RequestTimeout)

	statusCode, body, errs := req.Bytes()
	if len(errs) > 0 {
		return errs[0]
	}

	if statusCode != fiber.StatusOK {
		var errResp rest.ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
			return &StatusError{Code: statusCode, Message: errResp.Message}
		}
		return &StatusError{Code: statusCode}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// StatusError is a non-200 answer from the server.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Message)
}

// Retryable reports whether the request may succeed if repeated.
func (e *StatusError) Retryable() bool {
	return IsRetryableError(e.Code)
}

// IsRetryableError checks if an HTTP status code indicates a retryable error.
func IsRetryableError(statusCode int) bool {
	switch statusCode {
	case fiber.StatusServiceUnavailable,
		fiber.StatusGatewayTimeout,
		fiber.StatusBadGateway,
		fiber.StatusTooManyRequests,
		fiber.StatusRequestTimeout:
		return true
	default:
		return false
	}
}
