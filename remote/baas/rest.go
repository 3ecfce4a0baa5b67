package baas

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Yuki-gilty/drone-manager/remote"
)

// Features: ids are generated by the client so that retried inserts can be
// recognized, and the database expands and cascades nothing.
func (c *Client) Features() remote.Features {
	return remote.Features{}
}

func tablePath(res remote.Resource) string {
	return "/rest/v1/" + string(res)
}

// selectClause builds the select parameter with one embedded resource per
// embed, so joined display fields come back in the same request.
func selectClause(embeds []remote.Embed) string {
	parts := []string{"*"}
	for _, e := range embeds {
		parts = append(parts, fmt.Sprintf("%s(%s)", e.Resource, e.Column))
	}
	return strings.Join(parts, ",")
}

func filterParams(params url.Values, filters []remote.Filter) {
	for _, f := range filters {
		switch f.Op {
		case remote.OpIs:
			params.Add(f.Column, "is.null")
		case remote.OpIn:
			values, _ := f.Value.([]string)
			quoted := make([]string, 0, len(values))
			for _, v := range values {
				quoted = append(quoted, `"`+strings.ReplaceAll(v, `"`, `\"`)+`"`)
			}
			params.Add(f.Column, "in.("+strings.Join(quoted, ",")+")")
		default:
			params.Add(f.Column, "eq."+fmt.Sprint(f.Value))
		}
	}
}

// flatten replaces embedded objects with the requested display columns.
func flatten(row remote.Row, embeds []remote.Embed) {
	for _, e := range embeds {
		key := string(e.Resource)
		raw := row[key]
		delete(row, key)

		if e.Many {
			values := make([]any, 0)
			if items, ok := raw.([]any); ok {
				for _, item := range items {
					if obj, ok := item.(map[string]any); ok {
						values = append(values, obj[e.Column])
					}
				}
			}
			row[e.As] = values
			continue
		}

		row[e.As] = nil
		if obj, ok := raw.(map[string]any); ok {
			row[e.As] = obj[e.Column]
		}
	}
}

func (c *Client) List(ctx context.Context, q remote.Query) ([]remote.Row, error) {
	params := url.Values{}
	params.Set("select", selectClause(q.Embeds))
	filterParams(params, q.Filters)
	if q.OrderBy != "" {
		dir := "asc"
		if q.Desc {
			dir = "desc"
		}
		params.Set("order", q.OrderBy+"."+dir)
	}

	var rows []remote.Row
	if err := c.do(ctx, call{method: http.MethodGet, path: tablePath(q.Resource), params: params}, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = make([]remote.Row, 0)
	}
	for _, row := range rows {
		flatten(row, q.Embeds)
	}
	return rows, nil
}

func (c *Client) Get(ctx context.Context, res remote.Resource, id string, embeds ...remote.Embed) (remote.Row, error) {
	params := url.Values{}
	params.Set("select", selectClause(embeds))
	params.Set("id", "eq."+id)

	var row remote.Row
	err := c.do(ctx, call{
		method:  http.MethodGet,
		path:    tablePath(res),
		params:  params,
		headers: map[string]string{"Accept": "application/vnd.pgrst.object+json"},
	}, &row)
	if err != nil {
		return nil, err
	}
	flatten(row, embeds)
	return row, nil
}

// Insert writes all rows in one request, which the database applies as a
// single statement.
func (c *Client) Insert(ctx context.Context, res remote.Resource, rows ...remote.Row) ([]remote.Row, error) {
	if len(rows) == 0 {
		return []remote.Row{}, nil
	}
	var created []remote.Row
	err := c.do(ctx, call{
		method:  http.MethodPost,
		path:    tablePath(res),
		body:    rows,
		headers: map[string]string{"Prefer": "return=representation"},
	}, &created)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Client) Update(ctx context.Context, res remote.Resource, id string, patch remote.Row) error {
	params := url.Values{}
	params.Set("id", "eq."+id)

	var updated []remote.Row
	err := c.do(ctx, call{
		method:  http.MethodPatch,
		path:    tablePath(res),
		params:  params,
		body:    patch,
		headers: map[string]string{"Prefer": "return=representation"},
	}, &updated)
	if err != nil {
		return err
	}
	if len(updated) == 0 {
		return remote.NewError(remote.ErrNotFound, "record not found")
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, res remote.Resource, id string) error {
	params := url.Values{}
	params.Set("id", "eq."+id)

	var deleted []remote.Row
	err := c.do(ctx, call{
		method:  http.MethodDelete,
		path:    tablePath(res),
		params:  params,
		headers: map[string]string{"Prefer": "return=representation"},
	}, &deleted)
	if err != nil {
		return err
	}
	if len(deleted) == 0 {
		return remote.NewError(remote.ErrNotFound, "record not found")
	}
	return nil
}

// DeleteWhere refuses to run without filters.
func (c *Client) DeleteWhere(ctx context.Context, res remote.Resource, filters ...remote.Filter) error {
	if len(filters) == 0 {
		return remote.NewError(remote.ErrValidation, "refusing to delete every row of %s", res)
	}
	params := url.Values{}
	filterParams(params, filters)
	return c.do(ctx, call{method: http.MethodDelete, path: tablePath(res), params: params}, nil)
}

func (c *Client) Exists(ctx context.Context, res remote.Resource, filters ...remote.Filter) (bool, error) {
	params := url.Values{}
	params.Set("select", "id")
	params.Set("limit", "1")
	filterParams(params, filters)

	var rows []remote.Row
	if err := c.do(ctx, call{method: http.MethodGet, path: tablePath(res), params: params}, &rows); err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}
