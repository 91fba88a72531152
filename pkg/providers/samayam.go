package providers

const samayamProviderID = "samayam"

// SamayamProfile scrapes Samayam Tamil.
func SamayamProfile() Profile {
	return Profile{
		ID:         samayamProviderID,
		Name:       "Samayam Tamil",
		SiteURL:    "https://tamil.samayam.com",
		ListingURL: "https://tamil.samayam.com/",
		BaseURL:    "https://tamil.samayam.com",
		ListingSelectors: []string{
			".news-card",
			".card-wrapper",
			".top-news",
			"article",
			".top-stories a",
			".latest-news a",
		},
		MaxCandidates:       20,
		TitleSelector:       "figcaption, .heading2, h3, .title, .card-title",
		MinTitleLength:      5,
		DescriptionSelector: ".synopsis, .summary, p",
		ImageAttrs:          []string{"data-src", "src"},
		Detail: DetailProfile{
			DescriptionSelectors: []string{
				".article_content p",
				".content-text p",
				".article-body p",
				".main-content p",
				"article p",
			},
			ImageSelectors: []string{".article_content img", ".main-img img", ".article-image img"},
		},
	}
}

// NewSamayamFetcher builds the Samayam Tamil scraper.
func NewSamayamFetcher(opts Options) Fetcher {
	return NewScraper(SamayamProfile(), opts)
}
