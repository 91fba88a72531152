package providers

const dinamalarProviderID = "dinamalar"

// DinamalarProfile scrapes the Dinamalar home page. Its listing markup carries no summaries, so
// every record goes through the article page.
func DinamalarProfile() Profile {
	return Profile{
		ID:         dinamalarProviderID,
		Name:       "Dinamalar",
		SiteURL:    "https://www.dinamalar.com",
		ListingURL: "https://www.dinamalar.com/",
		BaseURL:    "https://www.dinamalar.com",
		ListingSelectors: []string{
			".news-item",
			".news-title-left",
			".homenewsleft .newstitle",
			".breakingnews-content .newstitle",
			".homebox",
			"article",
			".homebox a",
		},
		MaxCandidates:  25,
		TitleSelector:  "h3, h2, .newstitle",
		PreferLinkText: true,
		MinTitleLength: 5,
		ImageAttrs:     []string{"data-src", "src"},
		Detail: DetailProfile{
			DescriptionSelectors: []string{
				".news-detail p",
				".printpage p",
				".article-body p",
				".article-content p",
				".news p",
			},
			ImageSelectors:   []string{".news-detail img", ".printpage img", ".article-img img"},
			HeadlineSelector: ".container h1",
			HeadlinePrefix:   "Read more about: ",
		},
	}
}

// NewDinamalarFetcher builds the Dinamalar scraper.
func NewDinamalarFetcher(opts Options) Fetcher {
	return NewScraper(DinamalarProfile(), opts)
}
