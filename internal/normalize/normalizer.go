// Package normalize turns raw scraped or API records into Articles that satisfy the output
// invariant: non-empty title, absolute http(s) url, https image.
package normalize

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Adda-Baaj/seithi/internal/domain"
)

// ImageMode selects how the image field is treated.
type ImageMode int

const (
	// ImageFix resolves relative publisher paths (scraped content).
	ImageFix ImageMode = iota
	// ImageValidate only screens absolute urls (news API content).
	ImageValidate
)

// ReadMore is the synthesized description for articles without one.
func ReadMore(title string) string {
	return fmt.Sprintf("Click to read more about %s", title)
}

// Normalizer is a pure transform from RawArticle to Article.
type Normalizer struct {
	images *ImageFixer
	now    func() time.Time
}

// New builds a Normalizer around the given fixer. now may be nil.
func New(images *ImageFixer, now func() time.Time) *Normalizer {
	if images == nil {
		images = NewImageFixer("", nil)
	}
	if now == nil {
		now = time.Now
	}
	return &Normalizer{images: images, now: now}
}

// Images exposes the underlying fixer.
func (n *Normalizer) Images() *ImageFixer { return n.images }

// Normalize produces an Article or reports false when title or url is unusable.
func (n *Normalizer) Normalize(raw domain.RawArticle, mode ImageMode) (domain.Article, bool) {
	title := CollapseSpace(raw.Title)
	link := strings.TrimSpace(raw.URL)
	if title == "" || !isAbsoluteHTTP(link) {
		return domain.Article{}, false
	}

	desc := CollapseSpace(raw.Description)
	content := strings.TrimSpace(raw.Content)
	switch {
	case desc == "" && content == "":
		desc = ReadMore(title)
		content = desc
	case desc == "":
		desc = CollapseSpace(content)
	case content == "":
		content = desc
	}

	published := strings.TrimSpace(raw.PublishedAt)
	if published == "" {
		published = n.now().Format(time.RFC3339)
	}

	source := domain.Source{
		Name: strings.TrimSpace(raw.SourceName),
		URL:  strings.TrimSpace(raw.SourceURL),
	}
	if source.Name == "" || source.URL == "" {
		if u, err := url.Parse(link); err == nil {
			if source.Name == "" {
				source.Name = strings.TrimPrefix(u.Hostname(), "www.")
			}
			if source.URL == "" {
				source.URL = u.Scheme + "://" + u.Host
			}
		}
	}

	var image string
	if mode == ImageValidate {
		image = n.images.Validate(raw.Image)
	} else {
		image = n.images.Fix(raw.Image, source.Name, link)
	}

	return domain.Article{
		Title:       title,
		Description: desc,
		Content:     content,
		URL:         link,
		Image:       image,
		PublishedAt: published,
		Source:      source,
	}, true
}

// NormalizeAll normalizes raws in order, dropping rejects.
func (n *Normalizer) NormalizeAll(raws []domain.RawArticle, mode ImageMode) []domain.Article {
	out := make([]domain.Article, 0, len(raws))
	for _, raw := range raws {
		if art, ok := n.Normalize(raw, mode); ok {
			out = append(out, art)
		}
	}
	return out
}

// Enforce re-applies the output invariant to already built articles.
func (n *Normalizer) Enforce(articles []domain.Article, mode ImageMode) []domain.Article {
	out := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if art, ok := n.Normalize(a.Raw(), mode); ok {
			out = append(out, art)
		}
	}
	return out
}

// CollapseSpace trims s and folds internal whitespace runs into single spaces.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isAbsoluteHTTP(link string) bool {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
