package providers

const news18ProviderID = "news18"

// News18Profile scrapes News18 Tamil. Section anchors are merged in after the main listing and
// social share links are dropped.
func News18Profile() Profile {
	return Profile{
		ID:         news18ProviderID,
		Name:       "News18 Tamil",
		SiteURL:    "https://tamil.news18.com",
		ListingURL: "https://tamil.news18.com/",
		BaseURL:    "https://tamil.news18.com",
		ListingSelectors: []string{
			".blog-list",
			".vspacer30",
			".lead-mstory",
			".top-area a",
			".lead-story",
			".hotTopic",
			"article",
		},
		ExtraSelectors: []string{
			".featured-post a",
			".container a",
			".topnews-right a",
			".home-top-news a",
		},
		MaxCandidates:      25,
		TitleSelector:      "h1, h2, h3, h4, .title, .headline, .blog-title",
		MinTitleLength:     5,
		ImageAttrs:         []string{"data-src", "src"},
		SkipLinkSubstrings: []string{"facebook.com", "twitter.com", "instagram.com", "#"},
		Detail: DetailProfile{
			DescriptionSelectors: []string{
				".arttextxml p",
				".article_content p",
				".entry-content p",
				".article-body p",
				"article p",
				".content p",
			},
			ImageSelectors: []string{".article_image img", ".main-img img", ".featured-image img"},
		},
	}
}

// NewNews18Fetcher builds the News18 Tamil scraper.
func NewNews18Fetcher(opts Options) Fetcher {
	return NewScraper(News18Profile(), opts)
}
