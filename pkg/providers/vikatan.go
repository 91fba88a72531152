package providers

const vikatanProviderID = "vikatan"

// VikatanProfile scrapes the Vikatan news section. Vikatan lazy-loads images through
// data-lazy-src.
func VikatanProfile() Profile {
	return Profile{
		ID:         vikatanProviderID,
		Name:       "Vikatan",
		SiteURL:    "https://www.vikatan.com",
		ListingURL: "https://www.vikatan.com/news",
		BaseURL:    "https://www.vikatan.com",
		ListingSelectors: []string{
			".category-listing",
			".story-card",
			".article-item",
			".vk-card",
			".article-box",
			".container .row a",
		},
		MaxCandidates:  25,
		TitleSelector:  "h2, h3, .title, .card-title, .article-title",
		MinTitleLength: 5,
		ImageAttrs:     []string{"data-lazy-src", "data-src", "src"},
		Detail: DetailProfile{
			DescriptionSelectors: []string{
				".description",
				".article-content p",
				".story-content p",
				".entry-content p",
				"article p",
				".vk-content p",
			},
			ImageSelectors: []string{".article-featured-image img", ".story-cover img", ".article-img img"},
		},
	}
}

// NewVikatanFetcher builds the Vikatan scraper.
func NewVikatanFetcher(opts Options) Fetcher {
	return NewScraper(VikatanProfile(), opts)
}
