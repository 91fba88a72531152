package providers

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/Adda-Baaj/seithi/internal/crawler"
	"github.com/Adda-Baaj/seithi/internal/domain"
	"github.com/Adda-Baaj/seithi/internal/logger"
	"github.com/Adda-Baaj/seithi/internal/normalize"
	"github.com/Adda-Baaj/seithi/pkg/httpclient"
)

const defaultMaxCandidates = 20

// Scraper runs a Profile: listing pass, then optional detail enrichment.
type Scraper struct {
	profile Profile
	client  HTTPClient
	details *crawler.Scraper
	log     logger.Logger
	headers map[string]string
	opts    Options
	now     func() time.Time
}

// NewScraper builds a Scraper for p.
func NewScraper(p Profile, opts Options) *Scraper {
	opts = opts.withDefaults()
	return &Scraper{
		profile: sanitizeProfile(p),
		client:  opts.Client,
		details: crawler.NewScraper(opts.Client, opts.Log, opts.DetailWorkers),
		log:     opts.Log,
		headers: httpclient.BrowserHeaders(opts.UserAgent),
		opts:    opts,
		now:     time.Now,
	}
}

func (s *Scraper) ID() string { return s.profile.ID }

func (s *Scraper) Name() string { return s.profile.Name }

// Fetch scrapes the profile's own listing page, or its sitemap when one is configured.
func (s *Scraper) Fetch(ctx context.Context) ([]domain.RawArticle, error) {
	if s.profile.SitemapURL != "" {
		return s.fromSitemap(ctx)
	}
	return s.Scrape(ctx, s.profile.ListingURL)
}

// Scrape extracts candidates from listingURL and backfills missing descriptions from each
// article page. A listing that cannot be fetched is an error; a listing that matches nothing
// yields no articles and no error.
func (s *Scraper) Scrape(ctx context.Context, listingURL string) ([]domain.RawArticle, error) {
	doc, err := fetchDocument(ctx, s.client, listingURL, s.profile.ID, s.headers, s.opts.ListingTimeout)
	if err != nil {
		return nil, err
	}

	articles, seen := s.Extract(doc)
	if !s.profile.SkipDetail && len(articles) > 0 {
		articles = s.details.Enrich(ctx, s.profile.ID, s.profile.detailRules(s.headers, s.opts), articles)
	}

	if promo := s.profile.Promo; promo != nil && len(articles) < promo.Below {
		extra := s.promos(doc, seen)
		s.log.DebugObj("promo fallback used", "promo", map[string]any{
			"source_id": s.profile.ID,
			"listing":   len(articles),
			"promo":     len(extra),
		})
		articles = append(articles, extra...)
	}

	s.log.DebugObj("publisher scraped", "scrape", map[string]any{
		"source_id": s.profile.ID,
		"url":       listingURL,
		"articles":  len(articles),
	})
	return articles, nil
}

// Extract runs the listing pass only. It returns the records in document order and the set of
// urls already taken.
func (s *Scraper) Extract(doc *goquery.Document) ([]domain.RawArticle, map[string]struct{}) {
	p := s.profile
	seen := make(map[string]struct{})
	items := s.candidates(doc)
	if items.Length() == 0 {
		s.log.WarnObj("no listing candidates matched", "listing_empty", map[string]any{
			"source_id": p.ID,
			"selectors": p.ListingSelectors,
		})
		return nil, seen
	}

	published := s.now().Format(time.RFC3339)
	out := make([]domain.RawArticle, 0, items.Length())

	items.Each(func(_ int, item *goquery.Selection) {
		link := linkOf(item)
		href, _ := link.Attr("href")
		if containsAny(href, p.SkipLinkSubstrings) {
			return
		}
		articleURL := resolveLink(href, p.BaseURL)
		if articleURL == "" {
			return
		}
		if _, dup := seen[articleURL]; dup {
			return
		}

		title := s.title(item, link)
		if title == "" || utf8.RuneCountInString(title) < p.MinTitleLength {
			return
		}
		seen[articleURL] = struct{}{}

		art := domain.RawArticle{
			Title:       title,
			URL:         articleURL,
			PublishedAt: published,
			SourceName:  p.Name,
			SourceURL:   p.SiteURL,
		}
		if p.DescriptionSelector != "" {
			art.Description = textOf(item.Find(p.DescriptionSelector).First())
		}
		imgSel := p.ImageSelector
		if imgSel == "" {
			imgSel = "img"
		}
		if img := crawler.ImageAttr(item.Find(imgSel).First(), p.ImageAttrs); img != "" {
			art.Image = normalize.ResolveURL(img, p.BaseURL)
		}
		if p.PublishedSelector != "" {
			if ts, ok := item.Find(p.PublishedSelector).First().Attr("datetime"); ok && strings.TrimSpace(ts) != "" {
				art.PublishedAt = strings.TrimSpace(ts)
			}
		}
		if p.SourceNameSelector != "" {
			if name := textOf(item.Find(p.SourceNameSelector).First()); name != "" {
				art.SourceName = name
				art.SourceURL = ""
			}
		}

		out = append(out, art)
	})

	return out, seen
}

// QuickLinks is the minimal extraction used when aggregation failed: title and url only. The
// title is the link text, or the parent's text for links that wrap only an image.
func (s *Scraper) QuickLinks(ctx context.Context, limit int) ([]domain.RawArticle, error) {
	doc, err := fetchDocument(ctx, s.client, s.profile.ListingURL, s.profile.ID, s.headers, s.opts.ListingTimeout)
	if err != nil {
		return nil, err
	}

	items := s.candidates(doc)
	seen := make(map[string]struct{})
	var out []domain.RawArticle
	items.EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if limit > 0 && len(out) >= limit {
			return false
		}
		link := linkOf(item)
		href, _ := link.Attr("href")
		articleURL := resolveLink(href, s.profile.BaseURL)
		title := textOf(link)
		if title == "" {
			title = textOf(link.Parent())
		}
		if articleURL == "" || title == "" {
			return true
		}
		if _, dup := seen[articleURL]; dup {
			return true
		}
		seen[articleURL] = struct{}{}
		out = append(out, domain.RawArticle{
			Title:      title,
			URL:        articleURL,
			SourceName: s.profile.Name,
			SourceURL:  s.profile.SiteURL,
		})
		return true
	})
	return out, nil
}

func (s *Scraper) candidates(doc *goquery.Document) *goquery.Selection {
	p := s.profile
	items := doc.Selection.Slice(0, 0)
	for _, sel := range p.ListingSelectors {
		if found := doc.Find(sel); found.Length() > 0 {
			items = found
			break
		}
	}
	for _, sel := range p.ExtraSelectors {
		items = items.AddSelection(doc.Find(sel))
	}

	limit := p.MaxCandidates
	if limit <= 0 {
		limit = defaultMaxCandidates
	}
	if items.Length() > limit {
		items = items.Slice(0, limit)
	}
	return items
}

// title tries the heading inside the candidate, then the link text, then the parent's text.
// Profiles with PreferLinkText try the link text first.
func (s *Scraper) title(item, link *goquery.Selection) string {
	p := s.profile
	heading := func() string {
		if p.TitleSelector == "" {
			return ""
		}
		return textOf(item.Find(p.TitleSelector).First())
	}

	order := []func() string{heading, func() string { return textOf(link) }}
	if p.PreferLinkText {
		order[0], order[1] = order[1], order[0]
	}
	order = append(order, func() string { return textOf(item.Parent()) })

	for _, f := range order {
		if t := f(); t != "" {
			return t
		}
	}
	return ""
}

func (s *Scraper) promos(doc *goquery.Document, seen map[string]struct{}) []domain.RawArticle {
	promo := s.profile.Promo
	items := doc.Find(promo.Selector)
	limit := promo.MaxCandidates
	if limit > 0 && items.Length() > limit {
		items = items.Slice(0, limit)
	}

	published := s.now().Format(time.RFC3339)
	var out []domain.RawArticle
	items.Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a[href]").First()
		href, _ := link.Attr("href")
		if promo.LinkContains != "" && !strings.Contains(href, promo.LinkContains) {
			return
		}
		articleURL := resolveLink(href, s.profile.BaseURL)
		if articleURL == "" {
			return
		}
		if _, dup := seen[articleURL]; dup {
			return
		}

		title := ""
		if promo.TitleSelector != "" {
			title = textOf(item.Find(promo.TitleSelector).First())
		}
		if title == "" {
			title = textOf(link)
		}
		if title == "" {
			return
		}
		seen[articleURL] = struct{}{}

		art := domain.RawArticle{
			Title:       title,
			URL:         articleURL,
			PublishedAt: published,
			SourceName:  s.profile.Name,
			SourceURL:   s.profile.SiteURL,
		}
		if img := crawler.ImageAttr(item.Find("img").First(), s.profile.ImageAttrs); img != "" {
			art.Image = normalize.ResolveURL(img, s.profile.BaseURL)
		}
		out = append(out, art)
	})
	return out
}
