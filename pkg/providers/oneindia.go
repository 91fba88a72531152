package providers

const oneIndiaProviderID = "oneindia"

// OneIndiaProfile scrapes the OneIndia Tamil home page.
func OneIndiaProfile() Profile {
	return Profile{
		ID:         oneIndiaProviderID,
		Name:       "OneIndia Tamil",
		SiteURL:    "https://tamil.oneindia.com",
		ListingURL: "https://tamil.oneindia.com/",
		BaseURL:    "https://tamil.oneindia.com",
		ListingSelectors: []string{
			".main-container article",
			".cmn-Secdiv article",
			".storylist-item",
		},
		MaxCandidates:       20,
		TitleSelector:       "h2, h3, .storylist-title, .article-title",
		DescriptionSelector: ".article-summary, .article-desc, p",
		ImageAttrs:          []string{"data-src", "src"},
		Detail: DetailProfile{
			DescriptionSelectors: []string{".article-desc", ".article-content p"},
		},
	}
}

// NewOneIndiaFetcher builds the OneIndia Tamil scraper.
func NewOneIndiaFetcher(opts Options) Fetcher {
	return NewScraper(OneIndiaProfile(), opts)
}
