package domain

// Domain contains the article shapes shared by every producer and consumer.

// Source identifies the publisher of an article.
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Article is the normalized record handed to callers. Every Article leaving the normalizer has
// a non-empty title, an absolute url and an https image.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      Source `json:"source"`
}

// RawArticle is a possibly incomplete record produced by a scraper listing pass or decoded from
// the news API, before normalization.
type RawArticle struct {
	Title       string
	Description string
	Content     string
	URL         string
	Image       string
	PublishedAt string
	SourceName  string
	SourceURL   string
}

// Raw converts a normalized article back into its raw form.
func (a Article) Raw() RawArticle {
	return RawArticle{
		Title:       a.Title,
		Description: a.Description,
		Content:     a.Content,
		URL:         a.URL,
		Image:       a.Image,
		PublishedAt: a.PublishedAt,
		SourceName:  a.Source.Name,
		SourceURL:   a.Source.URL,
	}
}

// Batch is the response envelope for every news and search request. Ordering is source
// traversal order.
type Batch struct {
	TotalArticles int       `json:"totalArticles"`
	Articles      []Article `json:"articles"`
}

// NewBatch wraps articles, keeping TotalArticles in sync with the slice.
func NewBatch(articles []Article) Batch {
	if articles == nil {
		articles = []Article{}
	}
	return Batch{TotalArticles: len(articles), Articles: articles}
}
