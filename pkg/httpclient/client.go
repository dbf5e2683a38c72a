package httpclient

import (
	"context"
	"net/http"
	"time"
)

// Profile selects the header set sent with outgoing requests.
type Profile string

const (
	// BrowserProfile uses browser-like headers; some publishers reject
	// requests that do not carry a real-looking User-Agent.
	BrowserProfile Profile = "browser"

	// FeedProfile uses a minimal bot User-Agent, appropriate for RSS
	// endpoints and JSON APIs.
	FeedProfile Profile = "feed"
)

const defaultTimeout = 20 * time.Second

// Client wraps http.Client with a header profile and a hard timeout.
// Every request carries a deadline; no call blocks indefinitely.
type Client struct {
	client  *http.Client
	profile Profile
}

// New creates a Client with the given profile and timeout. A zero timeout
// falls back to the package default.
func New(profile Profile, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		profile: profile,
	}
}

// Do executes the request after applying profile headers.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	c.setHeaders(req)
	return c.client.Do(req)
}

// Get issues a GET request bound to ctx.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

func (c *Client) setHeaders(req *http.Request) {
	switch c.profile {
	case BrowserProfile:
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	case FeedProfile:
		req.Header.Set("User-Agent", "newsdesk/1.0")
	}
}
