package client

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Response struct {
	StatusCode int
	URL        string
	Body       []byte
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type Interface interface {
	Get(ctx context.Context, path string) (*Response, error)
}

type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	GetFunc    func(ctx context.Context, path string) (*Response, error)
}

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	if opts.UserAgent == "" {
		opts.UserAgent = "airquality/1.0"
	}

	return &Client{
		baseURL:   opts.BaseURL,
		userAgent: opts.UserAgent,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

// URL resolves path against the base URL the same way Get does
func (c *Client) URL(path string) string {
	if c.baseURL == "" {
		return path // If no base URL, treat path as full URL
	}
	return c.baseURL + path
}

// Get issues a single GET. A non-2xx status is not an error here; callers inspect StatusCode.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	if c.GetFunc != nil {
		return c.GetFunc(ctx, path)
	}

	fullURL := c.URL(path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Warn().Err(err).Str("url", fullURL).Msg("Closing response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		URL:        fullURL,
		Body:       body,
	}, nil
}
