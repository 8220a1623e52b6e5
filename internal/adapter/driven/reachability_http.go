package driven

import (
	"context"
	"fmt"
	"net/http"
)

// ReachabilityHTTPChecker implements the ReachabilityChecker port over HTTP.
// Timeouts come from the caller's context.
type ReachabilityHTTPChecker struct {
	httpClient *http.Client
	userAgent  string
}

// NewReachabilityHTTPChecker creates a new HTTP reachability checker.
// The client carries no cookie jar, so no credentials are ever sent.
func NewReachabilityHTTPChecker(userAgent string) *ReachabilityHTTPChecker {
	return &ReachabilityHTTPChecker{
		httpClient: &http.Client{},
		userAgent:  userAgent,
	}
}

// Head sends a HEAD request and reports whether the answer had a 2xx status.
func (c *ReachabilityHTTPChecker) Head(ctx context.Context, url string) (bool, error) {
	resp, err := c.do(ctx, http.MethodHead, url)
	if err != nil {
		return false, err
	}
	_ = resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

// Fetch sends a GET request and returns once response headers arrive.
// The status is ignored and the body is never read, since stream URLs may
// never end.
func (c *ReachabilityHTTPChecker) Fetch(ctx context.Context, url string) error {
	resp, err := c.do(ctx, http.MethodGet, url)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

func (c *ReachabilityHTTPChecker) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	return resp, nil
}
