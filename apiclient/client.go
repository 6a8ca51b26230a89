// Package apiclient is the single HTTP adapter every domain module goes through. It attaches
// the session's bearer token, decodes JSON bodies and classifies failures.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/the-monkeys/fraud_support/session"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type tokenKey struct{}

type Client struct {
	rest    *resty.Client
	store   session.Store
	log     *zap.SugaredLogger
	metrics *Collector
}

type Option func(*Client)

// WithStore replaces the default in-memory session store.
func WithStore(store session.Store) Option {
	return func(c *Client) { c.store = store }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) { c.log = log }
}

func WithMetrics(m *Collector) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.rest.SetTimeout(d) }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.rest.SetHeader("User-Agent", ua)
		}
	}
}

// WithHTTPClient routes requests through hc, e.g. an httptest server's client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.rest.SetTransport(hc.Transport)
	}
}

func New(baseURL string, opts ...Option) *Client {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	c := &Client{
		rest:  rest,
		store: session.NewMemoryStore(),
		log:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}

	rest.SetPreRequestHook(func(_ *resty.Client, req *http.Request) error {
		if tok, ok := req.Context().Value(tokenKey{}).(*oauth2.Token); ok && tok != nil {
			tok.SetAuthHeader(req)
		}
		return nil
	})
	return c
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

// SetToken starts a new session around token, dropping any cached user.
func (c *Client) SetToken(ctx context.Context, token string) error {
	return c.store.Set(ctx, session.New(token, "bearer"))
}

func (c *Client) SetSession(ctx context.Context, s session.Session) error {
	return c.store.Set(ctx, s)
}

func (c *Client) ClearToken(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// CacheUser records the identity of the current token. It fails with session.ErrNoSession
// when no token is held.
func (c *Client) CacheUser(ctx context.Context, u session.User) error {
	return c.store.SetUser(ctx, u)
}

func (c *Client) Session(ctx context.Context) (session.Session, error) {
	return c.store.Get(ctx)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	current, err := c.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("%s %s: read session: %w", method, path, err)
	}

	req := c.rest.R().SetContext(context.WithValue(ctx, tokenKey{}, current.OAuth2Token()))
	if body != nil {
		req.SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	elapsed := time.Since(start)

	if err != nil {
		c.metrics.observe(method, 0, elapsed)
		c.metrics.failure(method, failureConnectivity)
		c.log.Debugw("api request failed", "method", method, "path", path, "duration", elapsed, "err", err)
		return &ConnectivityError{Method: method, Path: path, Err: err}
	}

	status := resp.StatusCode()
	c.metrics.observe(method, status, elapsed)
	c.log.Debugw("api request", "method", method, "path", path, "status", status, "duration", elapsed)

	if !resp.IsSuccess() {
		c.metrics.failure(method, failureHTTP)
		return newHTTPError(method, path, status, resp.Body())
	}
	if out == nil {
		return nil
	}

	raw := bytes.TrimSpace(resp.Body())
	if len(raw) == 0 {
		c.metrics.failure(method, failureParse)
		return &ParseError{Method: method, Path: path, Err: errors.New("empty body")}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.metrics.failure(method, failureParse)
		return &ParseError{Method: method, Path: path, Err: err}
	}
	return nil
}
