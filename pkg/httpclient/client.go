// Package httpclient is the outbound HTTP surface shared by scrapers, the news API client and
// HTTP history publishers.
package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// BrowserUserAgent is sent to publisher sites that reject non-browser clients.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"

// Response is the minimal view of an HTTP response callers rely on.
type Response interface {
	StatusCode() int
	Body() []byte
}

// Client performs HTTP requests. Implementations must honour ctx cancellation.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	Do(ctx context.Context, method, url string, headers map[string]string, body []byte) (Response, error)
}

type restyClient struct {
	rc *resty.Client
}

// NewRestyClient returns a Client backed by resty with an overall per-request timeout.
func NewRestyClient(timeout time.Duration) Client {
	rc := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)).
		SetHeader("Accept-Encoding", "gzip")
	return &restyClient{rc: rc}
}

func (c *restyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	return c.Do(ctx, http.MethodGet, url, headers, nil)
}

func (c *restyClient) Do(ctx context.Context, method, url string, headers map[string]string, body []byte) (Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req := c.rc.R().SetContext(ctx).SetHeaders(headers)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	return resp, nil
}

// GetWithTimeout bounds a single GET with its own deadline, independent of any caller deadline
// already running on ctx.
func GetWithTimeout(ctx context.Context, c Client, url string, headers map[string]string, timeout time.Duration) (Response, error) {
	if timeout <= 0 {
		return c.Get(ctx, url, headers)
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Get(cctx, url, headers)
}

// BrowserHeaders are the listing/detail headers sent to publisher pages.
func BrowserHeaders(userAgent string) map[string]string {
	if userAgent == "" {
		userAgent = BrowserUserAgent
	}
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept-Language": "en-US,en;q=0.9,ta;q=0.8",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
		"Cache-Control":   "no-cache",
	}
}

// JSONHeaders are sent to the news API.
func JSONHeaders(userAgent string) map[string]string {
	if userAgent == "" {
		userAgent = BrowserUserAgent
	}
	return map[string]string{
		"User-Agent":    userAgent,
		"Accept":        "application/json",
		"Cache-Control": "no-cache",
	}
}
