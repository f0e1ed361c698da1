package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
)

// DefaultBaseURL is the default base URL for the Splunk management API.
const DefaultBaseURL = "https://localhost:8089"

// DefaultNetworkTimeout bounds a single HTTP round trip.
const DefaultNetworkTimeout = 30 * time.Second

// Client is a Splunk REST API client.
//
// A Client carries no per-search state; session tokens and search IDs are
// passed explicitly so that one Client can back many searches.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a new Splunk API client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: NewHTTPClient(DefaultNetworkTimeout, false),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewHTTPClient builds an HTTP client with the given per-request timeout.
// Certificate verification stays on unless insecureSkipVerify is set.
func NewHTTPClient(timeout time.Duration, insecureSkipVerify bool) *http.Client {
	if timeout <= 0 {
		timeout = DefaultNetworkTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // explicit opt-in
		}
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes a single call against the API.
type request struct {
	method string
	path   string
	query  url.Values
	form   url.Values
	token  string
	expect int
}

// do executes the request and returns the response body. A status other
// than req.expect is reported as an *APIError.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	start := time.Now()

	u, err := url.Parse(c.baseURL + req.path)
	if err != nil {
		return nil, fmt.Errorf("parsing URL: %w", err)
	}
	if req.query != nil {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.form != nil {
		body = strings.NewReader(req.form.Encode())
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if req.form != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Splunk "+req.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		slog.Debug("HTTP request failed",
			slog.String("method", req.method),
			slog.String("path", req.path),
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != req.expect {
		slog.Debug("HTTP request returned unexpected status",
			slog.String("method", req.method),
			slog.String("path", req.path),
			slog.Int("status", resp.StatusCode),
			slog.Int("expected", req.expect),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, parseError(resp.StatusCode, data)
	}

	slog.Debug("HTTP request completed",
		slog.String("method", req.method),
		slog.String("path", req.path),
		slog.Int("status", resp.StatusCode),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return data, nil
}

// parseError extracts an APIError from an error response. Splunk reports
// failures as <response><messages><msg type="...">text</msg></messages>.
func parseError(status int, body []byte) error {
	if doc, err := xmlquery.Parse(bytes.NewReader(body)); err == nil {
		var msgs []string
		for _, n := range xmlquery.Find(doc, "//messages/msg") {
			if text := strings.TrimSpace(n.InnerText()); text != "" {
				msgs = append(msgs, text)
			}
		}
		if len(msgs) > 0 {
			return &APIError{StatusCode: status, Message: strings.Join(msgs, "; ")}
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: truncate(msg, 200)}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
