// Package rest implements service.Service over the kanban server's REST API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"kanban/internal/service"
	"kanban/internal/session"
)

// Client talks to the kanban API. The access token is read from storage
// once, in New, and afterwards only changed by Login, Logout and a 401.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	storage     session.Storage
	onSignedOut func()
	timeout     time.Duration
	log         *zap.Logger

	mu    sync.RWMutex
	token *oauth2.Token
}

// Options overrides the client's collaborators.
type Options struct {
	// HTTPClient defaults to a pooled cleanhttp client.
	HTTPClient *http.Client

	// Logger defaults to a no-op logger.
	Logger *zap.Logger

	// OnSignedOut runs after the session was dropped, either by Logout or
	// because the server answered 401. It is where a front end sends the
	// user back to the login screen.
	OnSignedOut func()

	// Timeout bounds each call. Zero leaves it to the caller's context.
	Timeout time.Duration
}

// RequestOptions describes one API call.
type RequestOptions struct {
	// Method defaults to GET.
	Method string

	// Body is sent as-is. Nil means no body.
	Body io.Reader

	// Header entries replace the defaults (Content-Type, Authorization).
	Header http.Header
}

// New creates a client for the API rooted at baseURL (for example
// "http://localhost:8000/api/v1"). Endpoint paths are appended verbatim.
func New(baseURL string, storage session.Storage, opts Options) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if storage == nil {
		return nil, fmt.Errorf("session storage is nil")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  httpClient,
		storage:     storage,
		onSignedOut: opts.OnSignedOut,
		timeout:     opts.Timeout,
		log:         log,
	}
	if access, ok := storage.Get(session.AccessTokenKey); ok && access != "" {
		c.token = &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
	}
	return c, nil
}

// LoggedIn reports whether an access token is held in memory.
func (c *Client) LoggedIn() bool {
	return c.currentToken() != nil
}

func (c *Client) currentToken() *oauth2.Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Do performs one authenticated call and normalizes the outcome:
//
//   - 401: the session is cleared, OnSignedOut runs, ErrUnauthenticated is returned
//   - other non-2xx: a *RequestError carrying the server's detail message
//   - 204: nil body, nil error
//   - otherwise: the JSON body
//
// Transport and decode failures are logged and returned unmodified.
func (c *Client) Do(ctx context.Context, endpoint string, opts RequestOptions) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.roundTrip(ctx, endpoint, opts, func(body io.Reader) error {
		data, err := io.ReadAll(body)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, &raw)
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// roundTrip sends one request and hands a successful, non-empty response
// body to read. Status handling is as described on Do; errors from the
// transport or from read are logged and returned as they are.
func (c *Client) roundTrip(ctx context.Context, endpoint string, opts RequestOptions, read func(io.Reader) error) error {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, opts.Body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.currentToken(); tok != nil {
		tok.SetAuthHeader(req)
	}
	for key, values := range opts.Header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logFailure(method, endpoint, err)
		return err
	}
	defer resp.Body.Close()

	c.log.Debug("API response", zap.String("method", method), zap.String("endpoint", endpoint), zap.Int("status", resp.StatusCode))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.signOut()
		return ErrUnauthenticated
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return newRequestError(resp, requestFailedMessage)
	case resp.StatusCode == http.StatusNoContent:
		return nil
	}

	if err := read(resp.Body); err != nil {
		c.logFailure(method, endpoint, err)
		return err
	}
	return nil
}

func (c *Client) logFailure(method, endpoint string, err error) {
	c.log.Error("API request failed", zap.String("method", method), zap.String("endpoint", endpoint), zap.Error(err))
}

// doJSON sends in (if non-nil) as JSON and decodes the response into out
// (if non-nil and the response has a body).
func (c *Client) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	opts := RequestOptions{Method: method}
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		opts.Body = bytes.NewReader(data)
	}

	raw, err := c.Do(ctx, endpoint, opts)
	if err != nil {
		return err
	}
	if out == nil || raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}
	return nil
}

// signOut drops the in-memory token and both stored keys, then runs
// OnSignedOut.
func (c *Client) signOut() {
	c.mu.Lock()
	c.token = nil
	c.mu.Unlock()

	for _, key := range []string{session.AccessTokenKey, session.RefreshTokenKey} {
		if err := c.storage.Remove(key); err != nil {
			c.log.Error("failed to clear session", zap.String("key", key), zap.Error(err))
		}
	}

	if c.onSignedOut != nil {
		c.onSignedOut()
	}
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// pathID escapes an entity ID for use as a path segment.
func pathID(id string) string {
	return url.PathEscape(id)
}

// Ensure Client implements service.Service.
var _ service.Service = (*Client)(nil)
