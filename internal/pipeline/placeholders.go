package pipeline

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Adda-Baaj/seithi/internal/domain"
)

type message struct {
	title       string
	description string
}

var serviceMessages = map[string]message{
	"en": {
		title:       "English News Service",
		description: "Welcome to our English news service. We provide the latest news articles from around the world.",
	},
	"ta": {
		title:       "தமிழ் செய்திகள் சேவை",
		description: "வரவேற்கிறோம்! தமிழ் செய்திகள் சுருக்கமாக தற்போது கிடைக்கும். தமிழ் செய்தி சேவை பதிப்பு 2.0.",
	},
}

var notFoundMessages = map[string]message{
	"en": {
		title:       `Search Results for "%s"`,
		description: "We couldn't find exact matches for your search. Here are some suggested topics instead.",
	},
	"ta": {
		title:       `"%s" க்கான தேடல் முடிவுகள்`,
		description: "உங்கள் தேடலுக்கு துல்லியமான பொருத்தங்களைக் கண்டறிய முடியவில்லை. தமிழ் செய்திகளை தேட மற்றொரு முறை முயற்சிக்கவும். தமிழ் சொற்களில் தேடவும்.",
	},
}

const (
	serviceSourceName = "News System"
	searchSourceName  = "Search System"
)

// Placeholders builds the informational batches returned instead of an empty response.
type Placeholders struct {
	homeURL string
	image   string
	now     func() time.Time
}

// NewPlaceholders returns a builder. Links point at homeURL; images use image.
func NewPlaceholders(homeURL, image string, now func() time.Time) Placeholders {
	if now == nil {
		now = time.Now
	}
	return Placeholders{homeURL: homeURL, image: image, now: now}
}

// LanguageMessage returns three static service articles. Unsupported languages get English.
func (p Placeholders) LanguageMessage(language string) []domain.Article {
	msg, ok := serviceMessages[language]
	if !ok {
		msg = serviceMessages["en"]
	}
	now := p.now()
	titles := []string{
		msg.title,
		msg.title + " - " + now.Format(time.DateOnly),
		msg.title + " - Coming Soon",
	}

	out := make([]domain.Article, 0, len(titles))
	for _, title := range titles {
		out = append(out, p.article(title, msg.description, p.homeURL, serviceSourceName, now))
	}
	return out
}

// SearchNotFound returns one explanatory article followed by three suggestions derived from the
// query.
func (p Placeholders) SearchNotFound(query, language string) []domain.Article {
	msg, ok := notFoundMessages[language]
	if !ok {
		msg = notFoundMessages["en"]
	}
	now := p.now()
	link := strings.TrimRight(p.homeURL, "/") + "/search?q=" + url.QueryEscape(query)

	out := []domain.Article{p.article(fmt.Sprintf(msg.title, query), msg.description, link, searchSourceName, now)}
	suggestions := []string{
		query + " - " + now.Format(time.DateOnly),
		"Latest on " + query,
		query + " - trending",
	}
	for i, title := range suggestions {
		out = append(out, p.article(title, fmt.Sprintf("%s %d", msg.description, i+1), link, searchSourceName, now))
	}
	return out
}

func (p Placeholders) article(title, description, link, source string, now time.Time) domain.Article {
	return domain.Article{
		Title:       title,
		Description: description,
		Content:     description,
		URL:         link,
		Image:       p.image,
		PublishedAt: now.Format(time.RFC3339),
		Source:      domain.Source{Name: source, URL: p.homeURL},
	}
}
