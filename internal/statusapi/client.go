package statusapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mytunnel_ops/internal/shared/types"
)

// ErrUnavailable means the local status API did not answer at all. Callers
// must fail fast on it instead of rendering stale or empty data.
var ErrUnavailable = errors.New("status API unavailable")

// Client issues read-only requests against the tunnel client's local status
// API and decodes its two response shapes.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Available checks the API root. Any HTTP response counts as available, even
// an error status; only a transport-level failure means the API is down.
func (c *Client) Available() error {
	resp, err := c.http.Get(c.baseURL + "/")
	if err != nil {
		return fmt.Errorf("%w at %s: %v (is the client running? try 'status')", ErrUnavailable, c.baseURL, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// Stats fetches aggregate server statistics. Fields missing from the
// response decode to zero.
func (c *Client) Stats() (*types.ServerStats, error) {
	var stats types.ServerStats
	if err := c.getJSON("/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Connections fetches the active connection list. Records are rebuilt fresh
// on every call.
func (c *Client) Connections() (int, []types.ConnectionRecord, error) {
	var body struct {
		Count       int                      `json:"count"`
		Connections []types.ConnectionRecord `json:"connections"`
	}
	if err := c.getJSON("/connections", &body); err != nil {
		return 0, nil, err
	}
	return body.Count, body.Connections, nil
}

func (c *Client) getJSON(path string, v interface{}) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrUnavailable, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status API returned HTTP %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
