// Package gnews is a thin client for the GNews v4 REST API (top-headlines and search).
package gnews

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Adda-Baaj/seithi/internal/domain"
	"github.com/Adda-Baaj/seithi/internal/logger"
	"github.com/Adda-Baaj/seithi/pkg/httpclient"
)

const (
	// DefaultBaseURL is the public API root.
	DefaultBaseURL = "https://gnews.io/api/v4"

	defaultTimeout = 30 * time.Second
)

// Config configures a Client.
type Config struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	UserAgent string
	Client    httpclient.Client
	Log       logger.Logger
}

// Client calls the news API. Every call is bounded by the configured timeout.
type Client struct {
	http    httpclient.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	headers map[string]string
	log     logger.Logger
}

// HeadlinesQuery are the top-headlines parameters.
type HeadlinesQuery struct {
	Category string
	Language string
	Country  string
	Max      int
}

// SearchQuery are the search parameters.
type SearchQuery struct {
	Query    string
	Language string
	Country  string
	Max      int
}

type apiResponse struct {
	TotalArticles int          `json:"totalArticles"`
	Articles      []apiArticle `json:"articles"`
}

type apiArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

// New builds a Client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := cfg.Client
	if client == nil {
		client = httpclient.NewRestyClient(timeout)
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		http:    client,
		baseURL: base,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		timeout: timeout,
		headers: httpclient.JSONHeaders(cfg.UserAgent),
		log:     logger.Ensure(cfg.Log),
	}
}

// TopHeadlines calls /top-headlines.
func (c *Client) TopHeadlines(ctx context.Context, q HeadlinesQuery) ([]domain.RawArticle, error) {
	params := url.Values{}
	params.Set("category", q.Category)
	params.Set("lang", q.Language)
	params.Set("country", q.Country)
	params.Set("max", strconv.Itoa(q.Max))
	return c.get(ctx, "top-headlines", params)
}

// Search calls /search.
func (c *Client) Search(ctx context.Context, q SearchQuery) ([]domain.RawArticle, error) {
	params := url.Values{}
	params.Set("q", q.Query)
	params.Set("lang", q.Language)
	params.Set("country", q.Country)
	params.Set("max", strconv.Itoa(q.Max))
	return c.get(ctx, "search", params)
}

// get returns domain.ErrNoArticles when the API answered with an empty list.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]domain.RawArticle, error) {
	params.Set("apikey", c.apiKey)
	endpointURL := c.baseURL + "/" + endpoint + "?" + params.Encode()

	resp, err := httpclient.GetWithTimeout(ctx, c.http, endpointURL, c.headers, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("gnews %s: %w", endpoint, c.redact(err))
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("gnews %s returned status %d body: %s", endpoint, resp.StatusCode(), snippet(resp.Body()))
	}

	var decoded apiResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return nil, fmt.Errorf("decode gnews %s: %w", endpoint, err)
	}
	if len(decoded.Articles) == 0 {
		return nil, fmt.Errorf("gnews %s: %w", endpoint, domain.ErrNoArticles)
	}

	out := make([]domain.RawArticle, 0, len(decoded.Articles))
	for _, a := range decoded.Articles {
		out = append(out, domain.RawArticle{
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			URL:         a.URL,
			Image:       a.Image,
			PublishedAt: a.PublishedAt,
			SourceName:  a.Source.Name,
			SourceURL:   a.Source.URL,
		})
	}

	c.log.DebugObj("gnews response", "gnews", map[string]any{
		"endpoint": endpoint,
		"country":  params.Get("country"),
		"articles": len(out),
	})
	return out, nil
}

// redactedError masks the api key in the wrapped error's text. Transport errors carry the
// request url, key included.
type redactedError struct {
	err     error
	secrets []string
}

func (e *redactedError) Error() string {
	msg := e.err.Error()
	for _, s := range e.secrets {
		msg = strings.ReplaceAll(msg, s, "REDACTED")
	}
	return msg
}

func (e *redactedError) Unwrap() error { return e.err }

func (c *Client) redact(err error) error {
	if c.apiKey == "" {
		return err
	}
	secrets := []string{c.apiKey}
	if escaped := url.QueryEscape(c.apiKey); escaped != c.apiKey {
		secrets = append(secrets, escaped)
	}
	return &redactedError{err: err, secrets: secrets}
}

func snippet(body []byte) string {
	const maxLen = 256
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "<empty>"
	}
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
