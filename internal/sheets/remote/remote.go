// Package remote is a RowStore backed by the mapfin REST proxy.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	ports "mapfin/internal/sheets"
)

type Client struct {
	base string
	http *http.Client
}

var _ ports.RowStore = (*Client)(nil)

// New returns a client for the proxy rooted at baseURL, e.g.
// "http://localhost:3001". A nil httpClient gets a 30s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type errorBody struct {
	Error string `json:"error"`
}

type mutationBody struct {
	Success bool           `json:"success"`
	ID      string         `json:"id"`
	Data    map[string]any `json:"data"`
}

func (c *Client) url(col ports.Collection, id string) string {
	u := c.base + "/api/" + url.PathEscape(string(col))
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}

func (c *Client) do(ctx context.Context, method, u string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		msg := eb.Error
		if msg == "" {
			msg = resp.Status
		}
		switch resp.StatusCode {
		case http.StatusNotFound:
			if strings.Contains(strings.ToLower(msg), "sheet") || strings.Contains(strings.ToLower(msg), "collection") {
				return fmt.Errorf("%w: %s", ports.ErrUnknownCollection, msg)
			}
			return fmt.Errorf("%w: %s", ports.ErrNotFound, msg)
		default:
			return fmt.Errorf("%s %s: status %d: %s", method, u, resp.StatusCode, msg)
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", u, err)
	}
	return nil
}

func (c *Client) FetchAll(ctx context.Context, col ports.Collection) ([]ports.Row, error) {
	var objs []map[string]any
	if err := c.do(ctx, http.MethodGet, c.url(col, ""), nil, &objs); err != nil {
		return nil, err
	}
	rows := make([]ports.Row, 0, len(objs))
	for _, o := range objs {
		r, err := ports.RowFromJSON(o)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func (c *Client) mutate(ctx context.Context, method, u string, row ports.Row) (ports.Row, error) {
	var mb mutationBody
	if err := c.do(ctx, method, u, row, &mb); err != nil {
		return nil, err
	}
	if !mb.Success {
		return nil, errors.New("proxy reported failure")
	}
	out, err := ports.RowFromJSON(mb.Data)
	if err != nil {
		return nil, err
	}
	if out.ID() == "" && mb.ID != "" {
		out[ports.IDColumn] = mb.ID
	}
	return out, nil
}

func (c *Client) Insert(ctx context.Context, col ports.Collection, row ports.Row) (ports.Row, error) {
	return c.mutate(ctx, http.MethodPost, c.url(col, ""), row)
}

func (c *Client) Update(ctx context.Context, col ports.Collection, id string, row ports.Row) (ports.Row, error) {
	return c.mutate(ctx, http.MethodPut, c.url(col, id), row)
}

func (c *Client) Delete(ctx context.Context, col ports.Collection, id string) error {
	var mb mutationBody
	return c.do(ctx, http.MethodDelete, c.url(col, id), nil, &mb)
}

// Health calls /api/health and returns the reported status.
func (c *Client) Health(ctx context.Context) (string, error) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, c.base+"/api/health", nil, &body); err != nil {
		return "", err
	}
	return body.Status, nil
}
