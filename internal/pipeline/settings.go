package pipeline

// Settings are the tuned thresholds of the acquisition pipeline. They are fixed at construction
// time.
type Settings struct {
	// HeadlinesMax is the API page size and the cap on a merged headlines batch.
	HeadlinesMax int
	// SupplementBelow triggers the fallback chain as a top-up for short API answers.
	SupplementBelow int
	PrimaryCountry  string

	// TamilEarlyExit is the primary scraper yield that skips every other publisher.
	TamilEarlyExit int
	TamilCap       int
	PublicTamilCap int
	EmergencyCap   int
	PrimarySource  string

	SearchMax             int
	SearchSupplementBelow int
	SearchSupplementMax   int

	SyntheticCount int
	// HomeURL is the link carried by informational placeholder articles.
	HomeURL string
}

// DefaultSettings returns the production thresholds.
func DefaultSettings() Settings {
	return Settings{
		HeadlinesMax:          30,
		SupplementBelow:       20,
		PrimaryCountry:        "us",
		TamilEarlyExit:        10,
		TamilCap:              30,
		PublicTamilCap:        20,
		EmergencyCap:          15,
		PrimarySource:         "bbc",
		SearchMax:             50,
		SearchSupplementBelow: 30,
		SearchSupplementMax:   30,
		SyntheticCount:        30,
		HomeURL:               "https://news.google.com/",
	}
}

// withDefaults fills zero fields from DefaultSettings.
func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	setInt := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	setStr := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	setInt(&s.HeadlinesMax, d.HeadlinesMax)
	setInt(&s.SupplementBelow, d.SupplementBelow)
	setStr(&s.PrimaryCountry, d.PrimaryCountry)
	setInt(&s.TamilEarlyExit, d.TamilEarlyExit)
	setInt(&s.TamilCap, d.TamilCap)
	setInt(&s.PublicTamilCap, d.PublicTamilCap)
	setInt(&s.EmergencyCap, d.EmergencyCap)
	setStr(&s.PrimarySource, d.PrimarySource)
	setInt(&s.SearchMax, d.SearchMax)
	setInt(&s.SearchSupplementBelow, d.SearchSupplementBelow)
	setInt(&s.SearchSupplementMax, d.SearchSupplementMax)
	setInt(&s.SyntheticCount, d.SyntheticCount)
	setStr(&s.HomeURL, d.HomeURL)
	return s
}
