package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/Adda-Baaj/seithi/internal/domain"
)

var syntheticTitles = map[string][]string{
	"general": {
		"Global Leaders Meet to Discuss Climate Change",
		"New Economic Policy Announced by Government",
		"Major Technological Breakthrough Announced",
		"International Peace Talks Begin in Geneva",
		"Scientists Discover New Renewable Energy Source",
		"Stock Markets Show Strong Recovery",
		"New Study Reveals Impact of Social Media",
	},
	"business": {
		"Stock Markets Reach Record High Today",
		"Major Company Announces Quarterly Profits",
		"New Economic Stimulus Package Revealed",
		"Global Trade Agreement Signed Between Nations",
		"Tech Company Reports Unexpected Growth",
		"Oil Prices Stabilize Following Market Uncertainty",
		"Retail Sales Surge in Q4 Report",
	},
	"technology": {
		"New Smartphone Model Released with Advanced Features",
		"AI Technology Makes Breakthrough in Medical Diagnosis",
		"Tech Giants Announce Collaboration on New Platform",
		"Revolutionary Electric Vehicle Unveiled by Automaker",
		"Quantum Computing Achieves Major Milestone",
		"New Cybersecurity Measures Announced for Online Banking",
		"Space Tech Startup Secures Major Funding",
	},
	"entertainment": {
		"Award-Winning Movie Released to Critical Acclaim",
		"Celebrity Announces New Charitable Foundation",
		"Popular Music Artist Tops Charts with New Album",
		"Streaming Service Announces Original Content Lineup",
		"Hollywood Announces Major Studio Merger",
		"Virtual Reality Concert Sets Attendance Record",
		"International Film Festival Announces Winners",
	},
	"sports": {
		"Home Team Wins Championship in Thrilling Final",
		"Athlete Breaks World Record in International Event",
		"Major League Announces Season Schedule Changes",
		"Sports Star Signs Record-Breaking Contract",
		"Olympic Committee Unveils New Competition Format",
		"International Soccer Tournament Reaches Final Stage",
		"Tennis Champion Claims Victory in Grand Slam",
	},
	"science": {
		"Scientists Discover New Species in Remote Region",
		"Space Mission Reveals Surprising Data from Distant Planet",
		"Medical Researchers Announce Promising Treatment Results",
		"Climate Study Reveals New Patterns in Global Weather",
		"Archaeological Discovery Changes Historical Timeline",
		"Genetic Research Makes Breakthrough in Disease Treatment",
		"Marine Biologists Document Previously Unknown Ocean Behavior",
	},
	"health": {
		"New Health Guidelines Released by Medical Association",
		"Study Shows Benefits of Mediterranean Diet",
		"Experts Recommend New Exercise Routine for Wellbeing",
		"Medical Breakthrough in Treatment of Chronic Condition",
		"Pandemic Response Strategies Show Long-term Effectiveness",
		"Mental Health Awareness Campaign Launches Nationwide",
		"New Vaccine Development Shows Promising Results",
	},
}

// SyntheticDomains are the outlets synthetic urls point into.
var SyntheticDomains = []string{
	"reuters.com/world",
	"apnews.com/hub",
	"theguardian.com/international",
	"bbc.com/news",
	"cnn.com/world",
	"nytimes.com/section/world",
	"wsj.com/news",
}

// SyntheticSources are cycled through as source names.
var SyntheticSources = []string{
	"World News Network",
	"Daily Report",
	"Global Times",
	"The Morning Post",
	"International Herald",
	"Metro News",
	"The Daily Chronicle",
}

// Synthetic builds deterministic placeholder headlines. It cannot fail.
type Synthetic struct {
	now func() time.Time
}

// NewSynthetic returns a generator. now may be nil.
func NewSynthetic(now func() time.Time) *Synthetic {
	if now == nil {
		now = time.Now
	}
	return &Synthetic{now: now}
}

// Generate returns n articles for category. Unknown categories use the general table;
// publishedAt walks back one day per article over a five day cycle.
func (g *Synthetic) Generate(category string, n int) []domain.Article {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		category = "general"
	}
	titles, ok := syntheticTitles[category]
	if !ok {
		titles = syntheticTitles["general"]
	}

	now := g.now()
	out := make([]domain.Article, 0, n)
	for i := range n {
		base := titles[i%len(titles)]
		title := fmt.Sprintf("%s - %d", base, i+1)
		desc := fmt.Sprintf("Latest updates on %s. This news story continues to develop as more information becomes available.", title)
		outlet := SyntheticDomains[i%len(SyntheticDomains)]
		slug := strings.ReplaceAll(strings.ToLower(base), " ", "-")

		out = append(out, domain.Article{
			Title:       title,
			Description: desc,
			Content:     desc + " Experts are analyzing the implications and we will provide updates as they become available.",
			URL:         fmt.Sprintf("https://www.%s/%s/%s-%d", outlet, category, slug, i+1),
			Image:       fmt.Sprintf("https://picsum.photos/seed/%s%d/640/360", category, i),
			PublishedAt: now.AddDate(0, 0, -(i % 5)).Format(time.RFC3339),
			Source: domain.Source{
				Name: SyntheticSources[i%len(SyntheticSources)],
				URL:  "https://www." + outlet,
			},
		})
	}
	return out
}
