// Package client wraps the takeoff service's REST API. It is a thin
// HTTP layer: no retries, no caching, no request batching. Every call
// takes a context and returns a decoded model or an error.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to one takeoff service instance.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New creates a Client for the given base URL, e.g. "http://localhost:8000".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// BaseURL returns the configured server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Detail)
}

// ServerInfo is the root endpoint's self-description.
type ServerInfo struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

// Health reports whether the server considers itself healthy.
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, "/health", &resp); err != nil {
		return err
	}
	if resp.Status != "healthy" {
		return fmt.Errorf("server reported status %q", resp.Status)
	}
	return nil
}

// Info fetches the server's root self-description, including its version.
func (c *Client) Info(ctx context.Context) (*ServerInfo, error) {
	var info ServerInfo
	if err := c.getJSON(ctx, "/", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// getJSON performs a GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// postJSON performs a POST with an optional JSON body and decodes the
// response into out.
func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = strings.NewReader(string(data))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

// do executes the request, converts non-2xx responses into an APIError
// and decodes a 2xx JSON body into out (when out is non-nil).
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.URL.Path, err)
	}
	return nil
}

func encodeJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode request body: %w", err)
	}
	return string(data), nil
}

// decodeError reads the server's {"detail": ...} envelope. Bodies that are
// not JSON become the raw text so nothing is silently lost.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var envelope struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Detail != "" {
		return &APIError{Status: resp.StatusCode, Detail: envelope.Detail}
	}
	return &APIError{Status: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
}
