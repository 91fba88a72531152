package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Adda-Baaj/seithi/internal/domain"
	"github.com/Adda-Baaj/seithi/internal/logger"
	"github.com/Adda-Baaj/seithi/internal/normalize"
	"github.com/Adda-Baaj/seithi/pkg/httpclient"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxHTMLBodyBytes     = 1 << 20 // 1 MiB
	maxArticleWorkers    = 10
	defaultDetailTimeout = 10 * time.Second
)

// DetailRules describe how a publisher's article page is mined for a description, an image and
// optionally a better title.
type DetailRules struct {
	// DescriptionSelectors are tried in order; the first match with non-empty text wins.
	DescriptionSelectors []string
	// ImageSelectors are tried in order when the listing produced no image.
	ImageSelectors []string
	// ImageAttrs lists the attributes read from a matched <img>, in priority order.
	ImageAttrs []string
	// TitleSelector, when set, replaces the listing title with the article page's heading.
	TitleSelector string
	// HeadlineSelector/HeadlinePrefix build a description from the page heading when nothing
	// else matched.
	HeadlineSelector string
	HeadlinePrefix   string
	// BaseURL resolves relative image paths found on the page.
	BaseURL string
	Headers map[string]string
	Timeout time.Duration
}

// Scraper fetches article pages and backfills listing records.
type Scraper struct {
	client  httpclient.Client
	log     logger.Logger
	workers int
}

// NewScraper creates a Scraper. workers bounds concurrent article fetches; 1 keeps fetches
// sequential.
func NewScraper(client httpclient.Client, log logger.Logger, workers int) *Scraper {
	if client == nil {
		client = httpclient.NewRestyClient(defaultDetailTimeout)
	}
	if workers <= 0 {
		workers = 1
	}
	return &Scraper{client: client, log: logger.Ensure(log), workers: min(workers, maxArticleWorkers)}
}

// Enrich backfills description, image and title for every article that has no description yet.
// Output order matches input order; failures leave the article untouched.
func (s *Scraper) Enrich(ctx context.Context, sourceID string, rules DetailRules, articles []domain.RawArticle) []domain.RawArticle {
	out := make([]domain.RawArticle, len(articles))
	copy(out, articles) // default to originals so partial results are returned on cancel

	var pending []int
	for idx, art := range articles {
		if strings.TrimSpace(art.Description) == "" {
			pending = append(pending, idx)
		}
	}
	if len(pending) == 0 {
		return out
	}

	workerCount := min(len(pending), s.workers)

	jobCh := make(chan int)
	var wg sync.WaitGroup

	for workerID := range workerCount {
		wg.Add(1)
		go s.articleWorker(ctx, sourceID, rules, articles, jobCh, out, &wg, workerID)
	}

	for _, idx := range pending {
		if ctx.Err() != nil {
			break
		}
		jobCh <- idx
	}
	close(jobCh)

	wg.Wait()

	return out
}

// articleWorker processes articles from the job channel and writes enriched copies into out.
func (s *Scraper) articleWorker(
	ctx context.Context,
	sourceID string,
	rules DetailRules,
	articles []domain.RawArticle,
	jobCh <-chan int,
	out []domain.RawArticle,
	wg *sync.WaitGroup,
	workerID int,
) {
	defer wg.Done()

	for idx := range jobCh {
		if ctx.Err() != nil {
			return
		}

		art := articles[idx]
		if enriched, err := s.fetchAndParse(ctx, sourceID, rules, art, workerID); err != nil {
			s.log.WarnObj("article detail scrape failed", "detail_error", map[string]any{
				"worker_id": workerID,
				"source_id": sourceID,
				"url":       art.URL,
				"error":     err.Error(),
			})
			out[idx] = art
		} else {
			out[idx] = enriched
		}
	}
}

// fetchAndParse fetches the article HTML and applies the detail rules.
func (s *Scraper) fetchAndParse(ctx context.Context, sourceID string, rules DetailRules, art domain.RawArticle, workerID int) (domain.RawArticle, error) {
	s.log.DebugObj("fetching article details", "detail_start", map[string]any{
		"worker_id": workerID,
		"source_id": sourceID,
		"url":       art.URL,
	})

	timeout := rules.Timeout
	if timeout <= 0 {
		timeout = defaultDetailTimeout
	}
	resp, err := httpclient.GetWithTimeout(ctx, s.client, art.URL, rules.Headers, timeout)
	if err != nil {
		return art, fmt.Errorf("http fetch: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return art, fmt.Errorf("status %d body: %s", resp.StatusCode(), Snippet(resp.Body(), 256))
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		s.log.InfoObj("html body truncated", "truncation", map[string]any{
			"source_id": sourceID,
			"url":       art.URL,
			"original":  len(body),
			"kept":      maxHTMLBodyBytes,
		})
		body = body[:maxHTMLBodyBytes]
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return art, fmt.Errorf("parse html: %w", err)
	}

	return applyDetail(doc, rules, art), nil
}

// applyDetail mines an article page. Each field is only written when something was found.
func applyDetail(doc *goquery.Document, rules DetailRules, art domain.RawArticle) domain.RawArticle {
	updated := art

	if rules.TitleSelector != "" {
		if title := normalize.CollapseSpace(doc.Find(rules.TitleSelector).First().Text()); title != "" {
			updated.Title = title
		}
	}

	desc := FirstText(doc.Selection, rules.DescriptionSelectors)
	if desc == "" {
		meta := parseMeta(doc)
		desc = meta.Description
	}
	if desc == "" && rules.HeadlineSelector != "" {
		if h := normalize.CollapseSpace(doc.Find(rules.HeadlineSelector).First().Text()); h != "" {
			desc = rules.HeadlinePrefix + h
		}
	}
	if desc != "" {
		updated.Description = desc
		if strings.TrimSpace(updated.Content) == "" {
			updated.Content = desc
		}
	}

	if strings.TrimSpace(updated.Image) == "" {
		img := FirstImage(doc.Selection, rules.ImageSelectors, rules.ImageAttrs)
		if img == "" {
			img = parseMeta(doc).ImageURL
		}
		if img != "" {
			base := rules.BaseURL
			if base == "" {
				base = art.URL
			}
			updated.Image = normalize.ResolveURL(img, base)
		}
	}

	return updated
}

// FirstText returns the trimmed text of the first element matched by the first selector that
// yields non-empty text.
func FirstText(root *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if strings.TrimSpace(sel) == "" {
			continue
		}
		if text := normalize.CollapseSpace(root.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// DefaultImageAttrs is the attribute priority used when a profile does not set its own.
var DefaultImageAttrs = []string{"data-src", "src"}

// FirstImage returns the first usable image attribute of the first <img> matched by selectors.
// GIF sources are skipped since they are nearly always lazy-load spacers.
func FirstImage(root *goquery.Selection, selectors, attrs []string) string {
	for _, sel := range selectors {
		if strings.TrimSpace(sel) == "" {
			continue
		}
		if img := ImageAttr(root.Find(sel).First(), attrs); img != "" {
			return img
		}
	}
	return ""
}

// ImageAttr reads the first non-empty, non-GIF attribute from img.
func ImageAttr(img *goquery.Selection, attrs []string) string {
	if img.Length() == 0 {
		return ""
	}
	if len(attrs) == 0 {
		attrs = DefaultImageAttrs
	}
	for _, a := range attrs {
		if v, ok := img.Attr(a); ok {
			v = strings.TrimSpace(v)
			if v != "" && !strings.HasSuffix(strings.ToLower(v), ".gif") {
				return v
			}
		}
	}
	return ""
}

// parseMeta extracts page metadata from the document head.
func parseMeta(doc *goquery.Document) pageMeta {
	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return pageMeta{
		Title: firstNonEmpty(
			extract(`meta[property="og:title"]`),
			strings.TrimSpace(doc.Find("title").First().Text()),
		),
		Description: firstNonEmpty(
			extract(`meta[name="description"]`),
			extract(`meta[property="og:description"]`),
		),
		ImageURL: extract(`meta[property="og:image"]`),
	}
}

// pageMeta holds metadata extracted from an HTML page.
type pageMeta struct {
	Title       string
	Description string
	ImageURL    string
}

// firstNonEmpty returns the first non-empty string from the given values.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Snippet returns a truncated body excerpt for logs.
func Snippet(body []byte, maxLen int) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "<empty>"
	}
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
