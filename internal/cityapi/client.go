// Package cityapi is the HTTP client for the upstream municipal complaint
// service. Every call carries the session's bearer token; the server is the
// authority on visibility and lifecycle, this client only shapes requests
// and classifies failures.
package cityapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/linnemanlabs/cityline/internal/complaint"
)

const (
	httpTimeout = 30 * time.Second
	maxRespBody = 5 << 20 // 5 MB
)

// ErrAuth is returned when the upstream rejects the session token. Callers
// should treat it as a signal to force re-authentication rather than retry.
var ErrAuth = errors.New("upstream rejected session token")

// ListQuery is the optional server-side narrowing for List. Empty fields are
// omitted from the request.
type ListQuery struct {
	Department string
	Urgency    string
	Status     string
}

// Client talks to the upstream complaint API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the given base URL and bearer token.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: httpTimeout,
		},
	}
}

// List fetches the complaints visible to the session, newest first.
func (c *Client) List(ctx context.Context, q ListQuery) ([]complaint.Complaint, error) {
	u, err := c.endpoint("complaints") // upstream requires the trailing slash
	if err != nil {
		return nil, err
	}
	u.Path += "/"

	params := u.Query()
	if q.Department != "" {
		params.Set("department", q.Department)
	}
	if q.Urgency != "" {
		params.Set("urgency", q.Urgency)
	}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	u.RawQuery = params.Encode()

	var out []complaint.Complaint
	if err := c.do(ctx, http.MethodGet, u.String(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches a single complaint by ID.
func (c *Client) Get(ctx context.Context, id string) (*complaint.Complaint, error) {
	u, err := c.endpoint("complaints", id)
	if err != nil {
		return nil, err
	}

	var out complaint.Complaint
	if err := c.do(ctx, http.MethodGet, u.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type statusPatch struct {
	Status          complaint.Status `json:"status"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
}

// UpdateStatus applies a status change upstream and returns the confirmed
// record. Transition validity is checked by the caller before this is
// invoked and again, authoritatively, by the server.
func (c *Client) UpdateStatus(ctx context.Context, id string, status complaint.Status, reason string) (*complaint.Complaint, error) {
	u, err := c.endpoint("complaints", id)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(statusPatch{Status: status, RejectionReason: reason})
	if err != nil {
		return nil, fmt.Errorf("marshal patch: %w", err)
	}

	var out complaint.Complaint
	if err := c.do(ctx, http.MethodPatch, u.String(), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) endpoint(parts ...string) (*url.URL, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url: %w", err)
	}
	u.Path = path.Join(append([]string{u.Path}, parts...)...)
	return u, nil
}

func (c *Client) do(ctx context.Context, method, rawurl string, body []byte, out any) error {
	var rd io.Reader = http.NoBody
	if body != nil {
		rd = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawurl, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: base URL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, rawurl, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxRespBody))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", ErrAuth, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("upstream returned %d: %s", resp.StatusCode, snippet(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

func snippet(b []byte) string {
	const limit = 256
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
