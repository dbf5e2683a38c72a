// Package newsapi is a minimal client for the upstream news API: top
// headlines for a batch of sources, and the source catalog. Requests are
// rate limited and carry a hard timeout; a timed-out call is reported as
// ErrUpstreamTimeout so the pipeline can skip the chunk and move on.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"newsdesk/pkg/domain"
)

// ErrUpstreamTimeout marks a request that exceeded its deadline.
var ErrUpstreamTimeout = errors.New("upstream request timed out")

const defaultBaseURL = "https://newsapi.org/v2"

// Client talks to the news API.
type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
	limiter *rate.Limiter
}

// New builds a Client. requestTimeout bounds every call; requestsPerSecond
// throttles chunked headline fetches so a batch run stays inside upstream
// rate limits.
func New(apiKey string, requestTimeout time.Duration, requestsPerSecond float64) *Client {
	if requestTimeout <= 0 {
		requestTimeout = 15 * time.Second
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// SetBaseURL overrides the API endpoint, used by tests.
func (c *Client) SetBaseURL(base string) {
	c.baseURL = strings.TrimRight(base, "/")
}

type headlinesResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Author      string `json:"author"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		URLToImage  string `json:"urlToImage"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

type sourcesResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Sources []struct {
		ID string `json:"id"`
	} `json:"sources"`
}

// TopHeadlines fetches the current top headlines for the given source IDs.
func (c *Client) TopHeadlines(ctx context.Context, sourceIDs []string, pageSize int) ([]domain.Headline, error) {
	params := url.Values{}
	params.Set("sources", strings.Join(sourceIDs, ","))
	params.Set("pageSize", strconv.Itoa(pageSize))

	var parsed headlinesResponse
	if err := c.get(ctx, "/top-headlines", params, &parsed); err != nil {
		return nil, err
	}
	if parsed.Status != "ok" {
		return nil, fmt.Errorf("top headlines: upstream status %q: %s", parsed.Status, parsed.Message)
	}

	out := make([]domain.Headline, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		out = append(out, domain.Headline{
			URL:         a.URL,
			Title:       a.Title,
			Description: a.Description,
			Author:      a.Author,
			ImageURL:    a.URLToImage,
			SourceName:  a.Source.Name,
			PublishedAt: a.PublishedAt,
		})
	}
	return out, nil
}

// Sources fetches the catalog of source identifiers, optionally filtered
// by language.
func (c *Client) Sources(ctx context.Context, language string) ([]string, error) {
	params := url.Values{}
	if language != "" {
		params.Set("language", language)
	}

	var parsed sourcesResponse
	if err := c.get(ctx, "/top-headlines/sources", params, &parsed); err != nil {
		return nil, err
	}
	if parsed.Status != "ok" {
		return nil, fmt.Errorf("sources: upstream status %q: %s", parsed.Status, parsed.Message)
	}

	out := make([]string, 0, len(parsed.Sources))
	for _, s := range parsed.Sources {
		if s.ID != "" {
			out = append(out, s.ID)
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return classify(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return classify(err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request %s: status %d", path, resp.StatusCode)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// classify maps transport deadline failures onto ErrUpstreamTimeout.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	}
	return err
}
