package providers

// BBCTamilProviderID is the publisher the Tamil aggregator tries first.
const BBCTamilProviderID = "bbc"

// BBCTamilProfile scrapes BBC Tamil. Listing anchors only carry a headline, so the article page
// supplies the description, the image and the canonical <h1> title.
func BBCTamilProfile() Profile {
	return Profile{
		ID:         BBCTamilProviderID,
		Name:       "BBC Tamil",
		SiteURL:    "https://www.bbc.com/tamil",
		ListingURL: "https://www.bbc.com/tamil",
		BaseURL:    "https://www.bbc.com",
		ListingSelectors: []string{
			`a[href^="/tamil/articles/"]`,
		},
		MaxCandidates:     20,
		TitleSelector:     "h3, span",
		ImageAttrs:        []string{"src"},
		PublishedSelector: "time[datetime]",
		Detail: DetailProfile{
			TitleSelector: "h1",
			DescriptionSelectors: []string{
				`[data-component="text-block"] p`,
				`[role="paragraph"]`,
				".bbc-19j92fr",
				"article p",
				".article__body-content p",
			},
			ImageSelectors: []string{
				"figure img",
				`[data-component="image-block"] img`,
				".image-and-copyright-container img",
			},
			ImageAttrs: []string{"src"},
		},
		Promo: &PromoProfile{
			Below:         5,
			Selector:      `[data-testid="collection-promos-common"] > div`,
			MaxCandidates: 15,
			TitleSelector: `h3, [role="text"], .bbc-z3myq8, span`,
			LinkContains:  "/tamil/articles/",
		},
	}
}

// NewBBCTamilFetcher builds the BBC Tamil scraper.
func NewBBCTamilFetcher(opts Options) Fetcher {
	return NewScraper(BBCTamilProfile(), opts)
}
