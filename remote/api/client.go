// Package api is the remote.Remote backed by the drone-manager REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/Yuki-gilty/drone-manager/remote"
)

// SessionCookieName is the cookie carrying the server session.
const SessionCookieName = "session_id"

// serverFilters are the list filters the API understands as query params.
var serverFilters = map[string]bool{
	"type_id":         true,
	"drone_id":        true,
	"part_id":         true,
	"manufacturer_id": true,
}

// Client calls the REST API over HTTP. Credentials travel in a cookie jar.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger

	mu   sync.RWMutex
	user *models.User
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient constructs a client for the server at baseURL (without /api).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		c.httpClient.Jar = jar
	}
	return c, nil
}

func (c *Client) Features() remote.Features {
	return remote.Features{AssignsIDs: true, ExpandsDefaultParts: true, CascadesDeletes: true}
}

func (c *Client) List(ctx context.Context, q remote.Query) ([]remote.Row, error) {
	params := url.Values{}
	var local []remote.Filter
	for _, f := range q.Filters {
		switch {
		case f.Column == "user_id":
			// the session scopes every request
		case f.Op == remote.OpEq && serverFilters[f.Column]:
			params.Set(f.Column, fmt.Sprint(f.Value))
		default:
			local = append(local, f)
		}
	}

	var objs []map[string]any
	if err := c.request(ctx, http.MethodGet, remote.Endpoint(q.Resource), params, nil, &objs); err != nil {
		return nil, err
	}

	rows := make([]remote.Row, 0, len(objs))
	for _, obj := range objs {
		row := remote.FromFields(obj)
		if matchLocal(row, local) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// Get ignores embeds: the server already joins the display fields.
func (c *Client) Get(ctx context.Context, res remote.Resource, id string, _ ...remote.Embed) (remote.Row, error) {
	var obj map[string]any
	if err := c.request(ctx, http.MethodGet, remote.Endpoint(res)+"/"+url.PathEscape(id), nil, nil, &obj); err != nil {
		return nil, err
	}
	return remote.FromFields(obj), nil
}

func (c *Client) Insert(ctx context.Context, res remote.Resource, rows ...remote.Row) ([]remote.Row, error) {
	out := make([]remote.Row, 0, len(rows))
	for _, row := range rows {
		var created models.Created
		if err := c.request(ctx, http.MethodPost, remote.Endpoint(res), nil, body(row), &created); err != nil {
			return out, err
		}
		out = append(out, remote.Row{"id": created.ID, "message": created.Message})
	}
	return out, nil
}

func (c *Client) Update(ctx context.Context, res remote.Resource, id string, patch remote.Row) error {
	return c.request(ctx, http.MethodPut, remote.Endpoint(res)+"/"+url.PathEscape(id), nil, body(patch), nil)
}

func (c *Client) Delete(ctx context.Context, res remote.Resource, id string) error {
	return c.request(ctx, http.MethodDelete, remote.Endpoint(res)+"/"+url.PathEscape(id), nil, nil, nil)
}

// DeleteWhere lists the matching rows and deletes them one by one.
func (c *Client) DeleteWhere(ctx context.Context, res remote.Resource, filters ...remote.Filter) error {
	rows, err := c.List(ctx, remote.Query{Resource: res, Filters: filters})
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := c.Delete(ctx, res, row.ID()); err != nil && !errors.Is(err, remote.ErrNotFound) {
			return err
		}
	}
	return nil
}

func (c *Client) Exists(ctx context.Context, res remote.Resource, filters ...remote.Filter) (bool, error) {
	rows, err := c.List(ctx, remote.Query{Resource: res, Filters: filters})
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// body converts a row to an API request body. user_id and timestamps are
// owned by the server.
func body(row remote.Row) map[string]any {
	out := remote.ToFields(row)
	delete(out, "userId")
	delete(out, "createdAt")
	return out
}

func matchLocal(row remote.Row, filters []remote.Filter) bool {
	for _, f := range filters {
		v := row[f.Column]
		switch f.Op {
		case remote.OpIs:
			if v != nil {
				return false
			}
		case remote.OpIn:
			values, _ := f.Value.([]string)
			found := false
			for _, want := range values {
				if v != nil && fmt.Sprint(v) == want {
					found = true
				}
			}
			if !found {
				return false
			}
		default:
			if v == nil || fmt.Sprint(v) != fmt.Sprint(f.Value) {
				return false
			}
		}
	}
	return true
}

// request performs one API call against /api/<endpoint>. Failures are logged
// with their raw cause and returned as *remote.Error.
func (c *Client) request(ctx context.Context, method, endpoint string, params url.Values, in, out any) error {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/api/" + endpoint
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	var reader io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return c.fail(method, endpoint, 0, err, remote.NewError(remote.ErrValidation, "could not encode request"))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return c.fail(method, endpoint, 0, err, remote.NewError(remote.ErrServer, "could not build request"))
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(method, endpoint, 0, err, remote.NewError(remote.ErrServer, "could not reach server"))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(method, endpoint, resp.StatusCode, err, remote.NewError(remote.ErrServer, "could not read response"))
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	isJSON := strings.Contains(resp.Header.Get("Content-Type"), "application/json")

	if !isJSON {
		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return c.fail(method, endpoint, resp.StatusCode, errors.New(snippet(data)),
				&remote.Error{Kind: remote.ErrAuthRequired, Status: resp.StatusCode, Message: "authentication required, please log in again"})
		case !ok:
			return c.fail(method, endpoint, resp.StatusCode, errors.New(snippet(data)),
				&remote.Error{Kind: remote.ErrServer, Status: resp.StatusCode, Message: fmt.Sprintf("server error (status %d)", resp.StatusCode)})
		case out != nil:
			return c.fail(method, endpoint, resp.StatusCode, errors.New(snippet(data)),
				&remote.Error{Kind: remote.ErrServer, Status: resp.StatusCode, Message: "invalid response from server"})
		}
		return nil
	}

	if !ok {
		var errResp struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		_ = json.Unmarshal(data, &errResp)
		msg := strings.TrimSpace(errResp.Error)
		if msg == "" {
			msg = fmt.Sprintf("request failed (status %d)", resp.StatusCode)
		}
		kind, known := remote.KindFromCode(strings.TrimSpace(errResp.Code))
		if !known {
			kind = remote.KindFromStatus(resp.StatusCode)
		}
		return c.fail(method, endpoint, resp.StatusCode, errors.New(snippet(data)),
			&remote.Error{Kind: kind, Status: resp.StatusCode, Code: errResp.Code, Message: msg})
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return c.fail(method, endpoint, resp.StatusCode, err,
			&remote.Error{Kind: remote.ErrServer, Status: resp.StatusCode, Message: "invalid response from server"})
	}
	return nil
}

func (c *Client) fail(method, endpoint string, status int, cause error, err *remote.Error) error {
	c.logger.Error("api request failed",
		"method", method,
		"endpoint", endpoint,
		"status", status,
		"kind", err.Kind.Error(),
		"error", cause,
	)
	return err
}

func snippet(data []byte) string {
	const max = 200
	s := strings.TrimSpace(string(data))
	if len(s) > max {
		s = s[:max] + "..."
	}
	if s == "" {
		return "empty body"
	}
	return s
}
