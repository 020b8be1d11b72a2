// Package client provides the HTTP client wrapper used for every call to the
// advisor backend. It attaches the session's bearer token, encodes JSON
// bodies and turns non-2xx responses into *errors.AppError values.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "finadvisor/internal/errors"
	"finadvisor/internal/logger"
	"finadvisor/internal/session"
	"finadvisor/internal/uuid"
)

// maxErrorBody bounds how much of an error response is read when looking
// for a message.
const maxErrorBody = 64 << 10

// Navigator performs the redirect to the sign-in screen after the backend
// rejects the session.
type Navigator interface {
	RedirectToLogin()
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func()

// RedirectToLogin implements Navigator.
func (f NavigatorFunc) RedirectToLogin() { f() }

// Request describes one call relative to the configured base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Client communicates with the advisor backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Session
	navigator  Navigator
}

// Option configures a Client.
type Option func(*Client)

// WithNavigator sets the navigator invoked after a 401.
func WithNavigator(n Navigator) Option {
	return func(c *Client) { c.navigator = n }
}

// New creates a client for the backend at baseURL using sess for auth.
func New(baseURL string, sess *session.Session, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		session:    sess,
		navigator:  NavigatorFunc(func() {}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *session.Session { return c.session }

// Do performs req and decodes a JSON response into out. out may be nil when
// the caller does not need the body. A 204 response leaves out untouched.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNoContent || out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return apperrors.Wrap(apperrors.ErrDecode, fmt.Errorf("decoding %s %s response: %w", req.Method, req.Path, err))
	}
	return nil
}

// Raw performs req and returns the undecoded body and its content type. It is
// used for downloads such as transaction exports.
func (c *Client) Raw(ctx context.Context, req Request) ([]byte, string, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrNetwork, fmt.Errorf("reading %s %s response: %w", req.Method, req.Path, err))
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// send issues the request and returns the response only when it is 2xx.
// Every other outcome is converted to an *AppError here.
func (c *Client) send(ctx context.Context, req Request) (*http.Response, error) {
	httpReq, token, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	requestID := httpReq.Header.Get("X-Request-ID")
	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Get().Warnw("request failed",
			"request_id", requestID,
			"method", req.Method,
			"path", req.Path,
			"error", err.Error(),
		)
		return nil, apperrors.Wrap(apperrors.ErrNetwork, fmt.Errorf("%s %s: %w", req.Method, req.Path, err))
	}

	logger.Get().Debugw("request",
		"request_id", requestID,
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer func() { _ = resp.Body.Close() }()

	message := readErrorMessage(resp)

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, c.handleUnauthorized(ctx, token, message)
	}

	if message == "" {
		message = fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.WithStatus(apperrors.ErrNotFound, resp.StatusCode, message)
	}
	return nil, apperrors.WithStatus(apperrors.ErrBackend, resp.StatusCode, message)
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, string, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", apperrors.Wrap(apperrors.ErrInternal, fmt.Errorf("marshaling %s body: %w", req.Path, err))
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrInternal, fmt.Errorf("creating request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.New())

	var token string
	if c.session != nil {
		token = c.session.Token()
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, token, nil
}

// handleUnauthorized signs the session out and redirects, but only once per
// stale token: concurrent requests that all fail with the same token see
// ClearIf return false after the first one.
func (c *Client) handleUnauthorized(ctx context.Context, token, message string) error {
	if message == "" {
		message = apperrors.ErrUnauthorized.Message
	}
	if token == "" || c.session == nil {
		// Nothing to sign out of, e.g. a failed login. Surface the
		// backend's message as-is.
		return apperrors.WithStatus(apperrors.ErrUnauthorized, http.StatusUnauthorized, message)
	}

	cleared, err := c.session.ClearIf(ctx, token)
	if err != nil {
		logger.Get().Warnw("failed to clear session after 401", "error", err)
	}
	if cleared {
		logger.Get().Infow("session rejected by backend, signing out")
		c.navigator.RedirectToLogin()
	}
	return apperrors.WithStatus(apperrors.ErrUnauthorized, http.StatusUnauthorized, apperrors.ErrUnauthorized.Message)
}

// readErrorMessage extracts a human-readable message from an error body.
// FastAPI reports {"detail": "..."}; validation failures report detail as a
// list of {"msg": "..."} objects. Other shapes are tried as fallbacks.
func readErrorMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}

	for _, key := range []string{"detail", "message", "error"} {
		field, ok := body[key]
		if !ok {
			continue
		}
		if msg := messageFrom(field); msg != "" {
			return msg
		}
	}
	return ""
}

func messageFrom(field json.RawMessage) string {
	var s string
	if err := json.Unmarshal(field, &s); err == nil {
		return s
	}

	var nested struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(field, &nested); err == nil {
		if nested.Message != "" {
			return nested.Message
		}
		return nested.Msg
	}

	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(field, &list); err == nil {
		msgs := make([]string, 0, len(list))
		for _, item := range list {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
