// Package bridge talks to the food vision server: plain HTTP requests for
// capture, recipe selection, session continuation and page loads, and a
// Socket.IO push channel for server-initiated events.
package bridge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hammamikhairi/foodvision/internal/domain"
	"github.com/hammamikhairi/foodvision/internal/logger"
)

// Compile-time interface check.
var _ domain.ServerBridge = (*Client)(nil)

// ── Wire types ───────────────────────────────────────────────────

// captureResponse is the body of POST /capture.
type captureResponse struct {
	Image         string            `json:"image"`
	DetectedClass string            `json:"detected_class"`
	Confidence    float64           `json:"confidence"`
	Suggestions   []json.RawMessage `json:"suggestions"`
	Error         *string           `json:"error"`
}

type continueRequest struct {
	Choice domain.Choice `json:"choice"`
}

// ── Client ───────────────────────────────────────────────────────

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithRequestTimeout bounds every request. Expired requests fail with a
// *domain.TimeoutError. Zero disables the bound.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// Client issues the application's HTTP requests. Every call is sent at
// most once; failures are returned, never retried.
type Client struct {
	base    *url.URL
	timeout time.Duration
	http    *http.Client
	log     *logger.Logger
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, log *logger.Logger, opts ...ClientOption) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("bridge: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("bridge: unsupported scheme %q", base.Scheme)
	}
	c := &Client{
		base: base,
		// No client-wide timeout; see WithRequestTimeout.
		http: &http.Client{},
		log:  log,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// BaseURL returns the server root, with a trailing slash.
func (c *Client) BaseURL() string { return c.base.String() }

// Resolve turns a page-relative href into an absolute URL on the server.
func (c *Client) Resolve(href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("bridge: parse href %q: %w", href, err)
	}
	return c.base.ResolveReference(ref).String(), nil
}

// Capture asks the server to take and classify a photo.
func (c *Client) Capture(ctx context.Context) (*domain.DetectionResult, error) {
	const op = "capture"
	body, status, err := c.do(ctx, op, http.MethodPost, "capture", nil, "")
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &domain.StatusError{Op: op, StatusCode: status}
	}

	var resp captureResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &domain.TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	if resp.Error != nil && *resp.Error != "" {
		return nil, &domain.ServerReportedError{Message: *resp.Error}
	}

	result := &domain.DetectionResult{
		DetectedLabel: strings.TrimSpace(resp.DetectedClass),
		Confidence:    resp.Confidence,
		Suggestions:   domain.DishesFromLabels(suggestionLabels(resp.Suggestions)),
	}
	if resp.Image != "" {
		img, err := base64.StdEncoding.DecodeString(resp.Image)
		if err != nil {
			c.log.Warn("bridge: capture image is not base64: %v", err)
		} else {
			result.ImageData = img
		}
	}
	c.log.Debug("bridge: capture -> %q (%.3f), %d suggestions", result.DetectedLabel, result.Confidence, len(result.Suggestions))
	return result, nil
}

// suggestionLabels accepts plain strings as well as objects carrying a
// label or name field.
func suggestionLabels(raw []json.RawMessage) []string {
	labels := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			labels = append(labels, s)
			continue
		}
		var obj struct {
			Label string `json:"label"`
			Name  string `json:"name"`
		}
		if err := json.Unmarshal(r, &obj); err == nil {
			if obj.Label != "" {
				labels = append(labels, obj.Label)
			} else {
				labels = append(labels, obj.Name)
			}
		}
	}
	return labels
}

// SelectDish requests the recipe page for rank. Any non-2xx answer is
// domain.ErrRecipeNotFound.
func (c *Client) SelectDish(ctx context.Context, rank int) (string, error) {
	op := "select dish " + strconv.Itoa(rank)
	body, status, err := c.do(ctx, op, http.MethodPost, "recipe/"+strconv.Itoa(rank), nil, "")
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		return "", fmt.Errorf("%s: HTTP %d: %w", op, status, domain.ErrRecipeNotFound)
	}
	return string(body), nil
}

// ContinueSession posts the continue/exit answer.
func (c *Client) ContinueSession(ctx context.Context, choice domain.Choice) error {
	const op = "continue"
	payload, err := json.Marshal(continueRequest{Choice: choice})
	if err != nil {
		return fmt.Errorf("%s: marshal payload: %w", op, err)
	}
	_, status, err := c.do(ctx, op, http.MethodPost, "continue", payload, "application/json")
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return &domain.StatusError{Op: op, StatusCode: status}
	}
	return nil
}

// FetchPage loads page markup, the way a browser follows a link.
func (c *Client) FetchPage(ctx context.Context, path string) (string, error) {
	op := "load " + path
	body, status, err := c.do(ctx, op, http.MethodGet, path, nil, "")
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		return "", &domain.StatusError{Op: op, StatusCode: status}
	}
	return string(body), nil
}

// do sends one request and reads the whole body.
func (c *Client) do(ctx context.Context, op, method, path string, body []byte, contentType string) ([]byte, int, error) {
	target, err := c.Resolve(path)
	if err != nil {
		return nil, 0, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: create request: %w", op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.log.Debug("bridge: %s %s (%d bytes)", method, target, len(body))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, c.classify(op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, c.classify(op, fmt.Errorf("read response: %w", err))
	}
	c.log.Debug("bridge: %s %s -> %s (%d bytes)", method, target, resp.Status, len(respBody))
	return respBody, resp.StatusCode, nil
}

func (c *Client) classify(op string, err error) error {
	if c.timeout > 0 && errors.Is(err, context.DeadlineExceeded) {
		return &domain.TimeoutError{Op: op}
	}
	return &domain.TransportError{Op: op, Err: err}
}
