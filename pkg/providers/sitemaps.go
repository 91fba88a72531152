package providers

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Adda-Baaj/seithi/internal/domain"
	"github.com/Adda-Baaj/seithi/internal/normalize"
	"github.com/Adda-Baaj/seithi/pkg/httpclient"
)

// Google News sitemap shapes. Element names are matched by local name so the news: and image:
// prefixes need no namespace declarations.
type googleNewsSitemap struct {
	URLs []googleNewsURL `xml:"url"`
}

type googleNewsURL struct {
	Loc    string            `xml:"loc"`
	News   googleNewsDetail  `xml:"news"`
	Images []googleNewsImage `xml:"image"`
}

type googleNewsDetail struct {
	PublicationDate string `xml:"publication_date"`
	Title           string `xml:"title"`
}

type googleNewsImage struct {
	Loc string `xml:"loc"`
}

type sitemapIndex struct {
	Sitemaps []sitemapIndexEntry `xml:"sitemap"`
}

type sitemapIndexEntry struct {
	Loc string `xml:"loc"`
}

func parseGoogleNewsSitemap(data []byte) ([]googleNewsURL, error) {
	var sitemap googleNewsSitemap
	if err := xml.Unmarshal(data, &sitemap); err != nil {
		return nil, err
	}
	return sitemap.URLs, nil
}

// parseSitemapIndex returns the nested sitemap urls of an index file.
func parseSitemapIndex(data []byte) ([]string, error) {
	var index sitemapIndex
	if err := xml.Unmarshal(data, &index); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(index.Sitemaps))
	for _, entry := range index.Sitemaps {
		if loc := strings.TrimSpace(entry.Loc); loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls, nil
}

func fetchSitemap(ctx context.Context, client HTTPClient, url, providerID string, headers map[string]string, timeout time.Duration) ([]byte, error) {
	resp, err := httpclient.GetWithTimeout(ctx, client, url, headers, timeout)
	if err != nil {
		return nil, fmt.Errorf("fetch %s sitemap: %w", providerID, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s sitemap returned status %d body: %s", providerID, resp.StatusCode(), responseSnippet(body))
	}
	return body, nil
}

// fromSitemap is the listing pass for profiles with a SitemapURL. An index file is followed to
// its first child sitemap.
func (s *Scraper) fromSitemap(ctx context.Context) ([]domain.RawArticle, error) {
	p := s.profile
	body, err := fetchSitemap(ctx, s.client, p.SitemapURL, p.ID, s.headers, s.opts.ListingTimeout)
	if err != nil {
		return nil, err
	}

	urls, err := parseGoogleNewsSitemap(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s sitemap: %w", p.ID, err)
	}
	if len(urls) == 0 {
		children, err := parseSitemapIndex(body)
		if err == nil && len(children) > 0 {
			if body, err = fetchSitemap(ctx, s.client, children[0], p.ID, s.headers, s.opts.ListingTimeout); err != nil {
				return nil, err
			}
			if urls, err = parseGoogleNewsSitemap(body); err != nil {
				return nil, fmt.Errorf("parse %s sitemap: %w", p.ID, err)
			}
		}
	}

	articles := s.sitemapArticles(urls)
	if !p.SkipDetail && len(articles) > 0 {
		articles = s.details.Enrich(ctx, p.ID, p.detailRules(s.headers, s.opts), articles)
	}

	s.log.DebugObj("publisher sitemap scraped", "scrape", map[string]any{
		"source_id": p.ID,
		"url":       p.SitemapURL,
		"articles":  len(articles),
	})
	return articles, nil
}

func (s *Scraper) sitemapArticles(urls []googleNewsURL) []domain.RawArticle {
	p := s.profile
	limit := p.MaxCandidates
	if limit <= 0 {
		limit = defaultMaxCandidates
	}

	published := s.now().Format(time.RFC3339)
	seen := make(map[string]struct{}, len(urls))
	out := make([]domain.RawArticle, 0, min(len(urls), limit))
	for _, entry := range urls {
		if len(out) >= limit {
			break
		}
		loc := resolveLink(entry.Loc, p.BaseURL)
		title := normalize.CollapseSpace(entry.News.Title)
		if loc == "" || title == "" || utf8.RuneCountInString(title) < p.MinTitleLength {
			continue
		}
		if _, dup := seen[loc]; dup {
			continue
		}
		seen[loc] = struct{}{}

		art := domain.RawArticle{
			Title:       title,
			URL:         loc,
			Image:       firstImageURL(entry.Images),
			PublishedAt: published,
			SourceName:  p.Name,
			SourceURL:   p.SiteURL,
		}
		if ts := strings.TrimSpace(entry.News.PublicationDate); ts != "" {
			art.PublishedAt = ts
		}
		out = append(out, art)
	}
	return out
}

func firstImageURL(images []googleNewsImage) string {
	for _, img := range images {
		if loc := strings.TrimSpace(img.Loc); loc != "" {
			return loc
		}
	}
	return ""
}
