package providers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Adda-Baaj/seithi/internal/normalize"
	"github.com/Adda-Baaj/seithi/pkg/httpclient"
)

const maxListingBodyBytes = 2 << 20 // 2 MiB

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

// fetchDocument fetches and parses an HTML page. Anything but 200 is an error.
func fetchDocument(ctx context.Context, client HTTPClient, pageURL, providerID string, headers map[string]string, timeout time.Duration) (*goquery.Document, error) {
	resp, err := httpclient.GetWithTimeout(ctx, client, pageURL, headers, timeout)
	if err != nil {
		return nil, fmt.Errorf("fetch %s listing: %w", providerID, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s listing returned status %d body: %s", providerID, resp.StatusCode(), responseSnippet(body))
	}
	if len(body) > maxListingBodyBytes {
		body = body[:maxListingBodyBytes]
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s listing: %w", providerID, err)
	}
	return doc, nil
}

// resolveLink turns an href into an absolute http(s) url, or "" when it cannot be followed.
func resolveLink(href, base string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}
	abs := normalize.ResolveURL(href, base)
	u, err := url.Parse(abs)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return abs
}

// linkOf returns the anchor that belongs to a candidate node: the node itself, its first
// descendant anchor, or its closest anchor ancestor.
func linkOf(item *goquery.Selection) *goquery.Selection {
	if goquery.NodeName(item) == "a" {
		return item
	}
	if a := item.Find("a[href]").First(); a.Length() > 0 {
		return a
	}
	return item.Closest("a[href]")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func textOf(sel *goquery.Selection) string {
	return normalize.CollapseSpace(sel.Text())
}
