package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"
)

// TestClient makes admin-authenticated requests to a TestServer
type TestClient struct {
	*http.Client
	t     *testing.T
	ts    *TestServer
	token string
}

// NewTestClient returns a client that sends AdminToken with every request.
func NewTestClient(t *testing.T, ts *TestServer) *TestClient {
	t.Helper()
	return &TestClient{
		Client: &http.Client{Timeout: 10 * time.Second},
		t:      t,
		ts:     ts,
		token:  AdminToken,
	}
}

// WithToken returns a copy of the client sending token instead.
// An empty token sends no Authorization header.
func (c *TestClient) WithToken(token string) *TestClient {
	return &TestClient{Client: c.Client, t: c.t, ts: c.ts, token: token}
}

// Request makes an HTTP request to the test server. body may be nil, a
// []byte, or a value to JSON-encode.
func (c *TestClient) Request(method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, c.ts.URL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.Client.Do(req)
}

// Get makes a GET request to the test server.
func (c *TestClient) Get(path string) (*http.Response, error) {
	return c.Request(http.MethodGet, path, nil)
}

// Post makes a POST request to the test server.
func (c *TestClient) Post(path string, body interface{}) (*http.Response, error) {
	return c.Request(http.MethodPost, path, body)
}

// Put makes a PUT request to the test server.
func (c *TestClient) Put(path string, body interface{}) (*http.Response, error) {
	return c.Request(http.MethodPut, path, body)
}

// Patch makes a PATCH request to the test server.
func (c *TestClient) Patch(path string, body interface{}) (*http.Response, error) {
	return c.Request(http.MethodPatch, path, body)
}

// Delete makes a DELETE request to the test server.
func (c *TestClient) Delete(path string) (*http.Response, error) {
	return c.Request(http.MethodDelete, path, nil)
}

// ParseJSON decodes the response body as JSON into v and closes the body.
func ParseJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("failed to decode response JSON: %v. Body: %s", err, string(body))
	}
}

// RequireStatus fails the test with the response body unless the status
// matches.
func RequireStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected status %d, got %d. Body: %s", expected, resp.StatusCode, string(body))
	}
}
