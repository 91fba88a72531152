// Package pipeline acquires news for a request. It walks the news API and its fallback chain, or
// routes Tamil requests to the publisher aggregator, and always answers with a shaped batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Adda-Baaj/seithi/internal/domain"
	"github.com/Adda-Baaj/seithi/internal/logger"
	"github.com/Adda-Baaj/seithi/internal/normalize"
	"github.com/Adda-Baaj/seithi/pkg/gnews"
	"github.com/Adda-Baaj/seithi/pkg/providers"
)

var errNoAPI = errors.New("news api not configured")

const (
	defaultCategory = "general"
	defaultLanguage = "en"
	tamilLanguage   = "ta"
	tamilCategory   = "tamil"
)

// NewsAPI is the hosted news API.
type NewsAPI interface {
	TopHeadlines(ctx context.Context, q gnews.HeadlinesQuery) ([]domain.RawArticle, error)
	Search(ctx context.Context, q gnews.SearchQuery) ([]domain.RawArticle, error)
}

// WebSearcher scrapes a search-style news page for a category.
type WebSearcher interface {
	Search(ctx context.Context, category, language string) ([]domain.RawArticle, error)
}

// Deps are the collaborators of a Service. API and Web may be nil; their stages then yield
// nothing.
type Deps struct {
	API        NewsAPI
	Web        WebSearcher
	Sources    []providers.Fetcher
	Normalizer *normalize.Normalizer
	Log        logger.Logger
	Metrics    Recorder
	Now        func() time.Time
}

// Service answers news and search requests.
type Service struct {
	api          NewsAPI
	web          WebSearcher
	tamil        *TamilAggregator
	norm         *normalize.Normalizer
	synthetic    *Synthetic
	placeholders Placeholders
	settings     Settings
	log          logger.Logger
	metrics      Recorder
}

// New builds a Service.
func New(deps Deps, settings Settings) *Service {
	settings = settings.withDefaults()
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Normalizer == nil {
		deps.Normalizer = normalize.New(nil, deps.Now)
	}
	if deps.Metrics == nil {
		deps.Metrics = nopRecorder{}
	}
	log := logger.Ensure(deps.Log)
	placeholders := NewPlaceholders(settings.HomeURL, deps.Normalizer.Images().Placeholder(), deps.Now)

	return &Service{
		api:          deps.API,
		web:          deps.Web,
		tamil:        NewTamilAggregator(deps.Sources, deps.Normalizer, placeholders, settings, log, deps.Metrics),
		norm:         deps.Normalizer,
		synthetic:    NewSynthetic(deps.Now),
		placeholders: placeholders,
		settings:     settings,
		log:          log,
		metrics:      deps.Metrics,
	}
}

// IsTamil reports whether a request belongs to the Tamil aggregator.
func IsTamil(category, language string) bool {
	return strings.EqualFold(strings.TrimSpace(language), tamilLanguage) ||
		strings.EqualFold(strings.TrimSpace(category), tamilCategory)
}

// News returns headlines for category and language. It never fails.
func (s *Service) News(ctx context.Context, category, language string) (batch domain.Batch) {
	category, language = withDefault(category, defaultCategory), withDefault(language, defaultLanguage)
	if IsTamil(category, language) {
		return s.tamil.Aggregate(ctx)
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorObj("headlines panicked", "news_panic", map[string]any{"panic": fmt.Sprint(r)})
			batch = s.LanguagePlaceholder(language)
		}
	}()

	primary, err := s.headlines(ctx, category, language, s.settings.PrimaryCountry)
	s.metrics.Stage("headlines", "primary", len(primary))
	if err != nil {
		s.log.WarnObj("headlines request failed", "headlines_error", map[string]any{
			"category": category,
			"language": language,
			"error":    err.Error(),
		})
	}

	var articles []domain.Article
	switch {
	case len(primary) == 0:
		articles = s.fold(ctx, "headlines", s.fallbackStages(category, language)).Articles
	case len(primary) < s.settings.SupplementBelow:
		extra := s.fold(ctx, "supplement", s.fallbackStages(category, language)).Articles
		need := min(s.settings.HeadlinesMax-len(primary), len(extra))
		articles = append(primary, extra[:max(need, 0)]...)
	default:
		articles = primary
	}

	if len(articles) > s.settings.HeadlinesMax {
		articles = articles[:s.settings.HeadlinesMax]
	}
	articles = s.norm.Enforce(articles, normalize.ImageValidate)
	if len(articles) == 0 {
		return s.LanguagePlaceholder(language)
	}
	return domain.NewBatch(articles)
}

// fallbackStages is the ordered chain behind a missing or short API answer. The last stage
// always produces articles.
func (s *Service) fallbackStages(category, language string) []Stage {
	return []Stage{
		{Name: "retry", Run: func(ctx context.Context) ([]domain.Article, error) {
			return s.headlines(ctx, category, language, s.settings.PrimaryCountry)
		}},
		{Name: "web_scrape", Run: func(ctx context.Context) ([]domain.Article, error) {
			if s.web == nil {
				return nil, nil
			}
			raws, err := s.web.Search(ctx, category, language)
			if err != nil {
				return nil, err
			}
			if len(raws) > s.settings.HeadlinesMax {
				raws = raws[:s.settings.HeadlinesMax]
			}
			return s.norm.NormalizeAll(raws, normalize.ImageValidate), nil
		}},
		{Name: "alternate_country", Run: func(ctx context.Context) ([]domain.Article, error) {
			return s.headlines(ctx, category, language, alternateCountry(language))
		}},
		{Name: "synthetic", Run: func(context.Context) ([]domain.Article, error) {
			return s.norm.Enforce(s.synthetic.Generate(category, s.settings.SyntheticCount), normalize.ImageValidate), nil
		}},
	}
}

func (s *Service) headlines(ctx context.Context, category, language, country string) ([]domain.Article, error) {
	if s.api == nil {
		return nil, errNoAPI
	}
	raws, err := s.api.TopHeadlines(ctx, gnews.HeadlinesQuery{
		Category: category,
		Language: language,
		Country:  country,
		Max:      s.settings.HeadlinesMax,
	})
	if err != nil {
		return nil, err
	}
	return s.norm.NormalizeAll(raws, normalize.ImageValidate), nil
}

// alternateCountry is the secondary locale for a language.
func alternateCountry(language string) string {
	if language == defaultLanguage {
		return "gb"
	}
	return "in"
}

// Search returns articles matching query. The only error is domain.ErrEmptyQuery.
func (s *Service) Search(ctx context.Context, query, language string) (batch domain.Batch, err error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Batch{}, domain.ErrEmptyQuery
	}
	language = withDefault(language, defaultLanguage)

	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorObj("search panicked", "search_panic", map[string]any{"panic": fmt.Sprint(r)})
			batch, err = s.notFound(query, language), nil
		}
	}()

	if strings.EqualFold(language, tamilLanguage) {
		return s.searchTamil(ctx, query), nil
	}
	return s.searchAPI(ctx, query, language), nil
}

// searchAPI merges a secondary-locale search into a short primary answer, skipping urls already
// present. A failed or empty primary search answers with the not-found batch.
func (s *Service) searchAPI(ctx context.Context, query, language string) domain.Batch {
	articles, err := s.search(ctx, query, language, s.settings.PrimaryCountry, s.settings.SearchMax)
	s.metrics.Stage("search", "primary", len(articles))
	if err != nil {
		s.log.WarnObj("search request failed", "search_error", map[string]any{
			"query": query,
			"error": err.Error(),
		})
	}
	if err != nil || len(articles) == 0 {
		return s.notFound(query, language)
	}

	if len(articles) < s.settings.SearchSupplementBelow {
		extra, err := s.search(ctx, query, language, "gb", s.settings.SearchSupplementMax)
		s.metrics.Stage("search", "alternate_country", len(extra))
		if err != nil {
			s.log.WarnObj("secondary search failed", "search_error", map[string]any{
				"query": query,
				"error": err.Error(),
			})
		}

		seen := make(map[string]struct{}, len(articles)+len(extra))
		for _, a := range articles {
			seen[a.URL] = struct{}{}
		}
		for _, a := range extra {
			if _, dup := seen[a.URL]; dup {
				continue
			}
			seen[a.URL] = struct{}{}
			articles = append(articles, a)
		}
	}

	articles = s.norm.Enforce(articles, normalize.ImageValidate)
	if len(articles) == 0 {
		return s.notFound(query, language)
	}
	return domain.NewBatch(articles)
}

func (s *Service) search(ctx context.Context, query, language, country string, limit int) ([]domain.Article, error) {
	if s.api == nil {
		return nil, errNoAPI
	}
	raws, err := s.api.Search(ctx, gnews.SearchQuery{Query: query, Language: language, Country: country, Max: limit})
	if err != nil {
		return nil, err
	}
	return s.norm.NormalizeAll(raws, normalize.ImageValidate), nil
}

// searchTamil filters a fresh scrape of every publisher. Matches are not deduplicated.
func (s *Service) searchTamil(ctx context.Context, query string) domain.Batch {
	articles := s.norm.NormalizeAll(s.tamil.ScrapeAll(ctx), normalize.ImageFix)
	matches := MatchArticles(articles, query)
	s.metrics.Stage("search", "tamil", len(matches))
	if len(matches) == 0 {
		return s.notFound(query, tamilLanguage)
	}
	return domain.NewBatch(matches)
}

// MatchArticles keeps articles whose title or description contains query, ignoring case. When
// nothing matches and query has several words, any word longer than two characters matches.
func MatchArticles(articles []domain.Article, query string) []domain.Article {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}

	contains := func(a domain.Article, term string) bool {
		return strings.Contains(strings.ToLower(a.Title), term) ||
			strings.Contains(strings.ToLower(a.Description), term)
	}

	var out []domain.Article
	for _, a := range articles {
		if contains(a, needle) {
			out = append(out, a)
		}
	}
	if len(out) > 0 {
		return out
	}

	words := strings.Fields(needle)
	if len(words) < 2 {
		return nil
	}
	var terms []string
	for _, w := range words {
		if utf8.RuneCountInString(w) > 2 {
			terms = append(terms, w)
		}
	}
	for _, a := range articles {
		for _, term := range terms {
			if contains(a, term) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// PublicTamil is the unauthenticated BBC Tamil feed.
func (s *Service) PublicTamil(ctx context.Context) (batch domain.Batch) {
	defer func() {
		if r := recover(); r != nil {
			batch = s.LanguagePlaceholder(tamilLanguage)
		}
	}()
	return s.tamil.Primary(ctx)
}

// LanguagePlaceholder is the batch returned when nothing else could be produced.
func (s *Service) LanguagePlaceholder(language string) domain.Batch {
	s.metrics.Placeholder("language")
	return domain.NewBatch(s.placeholders.LanguageMessage(language))
}

func (s *Service) notFound(query, language string) domain.Batch {
	s.metrics.Placeholder("search")
	return domain.NewBatch(s.placeholders.SearchNotFound(query, language))
}

// Normalizer exposes the normalizer used for tracked articles.
func (s *Service) Normalizer() *normalize.Normalizer { return s.norm }

func withDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
