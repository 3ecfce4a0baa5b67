// Package baas is the remote.Remote backed directly by a Supabase project:
// PostgREST for data and GoTrue for authentication.
package baas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Yuki-gilty/drone-manager/remote"
)

// Client talks to one Supabase project with its public anon key. Row level
// security scopes every row to the signed-in user.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time

	mu      sync.RWMutex
	session *Session
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func NewClient(baseURL, anonKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type call struct {
	method  string
	path    string
	params  url.Values
	body    any
	headers map[string]string
	// anon sends the anon key even when a session exists.
	anon bool
}

// do performs a request and decodes a 2xx JSON body into out. Failures are
// logged with the raw backend response and returned as *remote.Error.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	u := c.baseURL + cl.path
	if len(cl.params) > 0 {
		u += "?" + cl.params.Encode()
	}

	var reader io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return c.fail(cl, 0, err, remote.NewError(remote.ErrValidation, "could not encode request"))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u, reader)
	if err != nil {
		return c.fail(cl, 0, err, remote.NewError(remote.ErrServer, "could not build request"))
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer(ctx, cl.anon))
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range cl.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(cl, 0, err, remote.NewError(remote.ErrServer, "could not reach server"))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(cl, resp.StatusCode, err, remote.NewError(remote.ErrServer, "could not read response"))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.fail(cl, resp.StatusCode, fmt.Errorf("%s", strings.TrimSpace(string(data))), mapError(cl.method, resp.StatusCode, data))
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return c.fail(cl, resp.StatusCode, err, &remote.Error{Kind: remote.ErrServer, Status: resp.StatusCode, Message: "invalid response from server"})
	}
	return nil
}

func (c *Client) fail(cl call, status int, cause error, err *remote.Error) error {
	c.logger.Error("supabase request failed",
		"method", cl.method,
		"path", cl.path,
		"status", status,
		"code", err.Code,
		"kind", err.Kind.Error(),
		"error", cause,
	)
	return err
}

// bearer returns the access token of a live session, refreshing it when it
// is about to expire, or the anon key.
func (c *Client) bearer(ctx context.Context, anon bool) string {
	if anon {
		return c.anonKey
	}
	sess := c.Session()
	if sess == nil {
		return c.anonKey
	}
	if sess.expiring(c.now()) && sess.RefreshToken != "" {
		if refreshed, err := c.Refresh(ctx); err == nil {
			sess = refreshed
		}
	}
	return sess.AccessToken
}
