package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Adda-Baaj/seithi/internal/domain"
)

const (
	googleNewsProviderID = "google-news"

	// DefaultGoogleNewsSearchURL is formatted with the query and the language.
	DefaultGoogleNewsSearchURL = "https://news.google.com/search?q=%s&hl=%s&gl=US&ceid=US%%3Aen"

	googleNewsSourceName = "Google News"
)

// GoogleNewsProfile is the generic news page recipe: one broad `article` pattern, relative
// "./" links resolved against the site root.
func GoogleNewsProfile() Profile {
	return Profile{
		ID:                 googleNewsProviderID,
		Name:               googleNewsSourceName,
		SiteURL:            "https://news.google.com",
		ListingURL:         "https://news.google.com/",
		BaseURL:            "https://news.google.com/",
		ListingSelectors:   []string{"article"},
		MaxCandidates:      30,
		TitleSelector:      "h3, h4",
		PublishedSelector:  "time[datetime]",
		SourceNameSelector: ".TNIIJIaVZIT9Qz6Fiw7S",
		SkipDetail:         true,
	}
}

// GoogleNews scrapes the Google News search page for a category. Listing markup carries no
// summaries so one is synthesized per record.
type GoogleNews struct {
	scraper   *Scraper
	searchURL string
}

// NewGoogleNews builds the generic news scraper. searchURL may be empty.
func NewGoogleNews(searchURL string, opts Options) *GoogleNews {
	if strings.TrimSpace(searchURL) == "" {
		searchURL = DefaultGoogleNewsSearchURL
	}
	return &GoogleNews{scraper: NewScraper(GoogleNewsProfile(), opts), searchURL: searchURL}
}

func (g *GoogleNews) ID() string { return googleNewsProviderID }

func (g *GoogleNews) Name() string { return googleNewsSourceName }

// Search returns up to 30 records for "<category> news". Records without a listing image get a
// synthesized one.
func (g *GoogleNews) Search(ctx context.Context, category, language string) ([]domain.RawArticle, error) {
	query := url.PathEscape(strings.TrimSpace(category) + " news")
	listing := fmt.Sprintf(g.searchURL, query, url.QueryEscape(language))

	raws, err := g.scraper.Scrape(ctx, listing)
	if err != nil {
		return nil, err
	}

	for i := range raws {
		raws[i].Description = fmt.Sprintf("Latest updates on %s. Click to read more.", raws[i].Title)
		raws[i].Content = raws[i].Description
		if raws[i].Image == "" {
			raws[i].Image = fmt.Sprintf("https://picsum.photos/seed/%s%d/640/360", url.PathEscape(category), i)
		}
	}
	return raws, nil
}
