package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gitsphere/gitsphere-backend/internal/port"
)

const (
	acceptHeader = "application/vnd.github.v3+json"
	userAgent    = "GitSphere/1.0"
)

// Client issues authenticated GETs against the GitHub REST API and maps
// transport and HTTP failures to the port error taxonomy. It carries no
// per-request state and performs no retries; a failed call is surfaced to
// the caller as a typed error.
type Client struct {
	apiURL     string
	httpClient *http.Client
}

// NewClient creates a client rooted at apiURL with a fixed per-call timeout.
func NewClient(apiURL string, timeout time.Duration) *Client {
	return &Client{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Get implements port.GitHubClient.
func (c *Client) Get(ctx context.Context, path string, query url.Values, token string, out any) error {
	u := c.apiURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("github: create request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %s", port.ErrTimeout, path)
		}
		return fmt.Errorf("%w: %v", port.ErrTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", port.ErrNotFound, path)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", port.ErrForbidden, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &port.UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("github: decode %s: %w", path, err)
	}
	return nil
}

// CheckToken implements port.TokenValidator by probing the "who am I"
// endpoint. Any failure, transport included, means the token is treated
// as no longer valid; there is no retry.
func (c *Client) CheckToken(ctx context.Context, token string) error {
	if err := c.Get(ctx, "/user", nil, token, nil); err != nil {
		return fmt.Errorf("%w: %v", port.ErrUpstreamTokenBad, err)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue) && ue.Timeout()
}
