package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/seithi/internal/domain"
)

func TestImageFixer_Fix(t *testing.T) {
	f := NewImageFixer("", nil)
	ph := DefaultPlaceholderImage

	tests := []struct {
		name       string
		image      string
		sourceName string
		articleURL string
		want       string
	}{
		{name: "empty", image: "", want: ph},
		{name: "null sentinel", image: "null", want: ph},
		{name: "undefined sentinel", image: "undefined", want: ph},
		{name: "absolute https kept", image: "https://cdn.example.com/a.jpg", want: "https://cdn.example.com/a.jpg"},
		{name: "http upgraded", image: "http://cdn.example.com/a.jpg", want: "https://cdn.example.com/a.jpg"},
		{name: "relative by source name", image: "/img/a.jpg", sourceName: "Dinamalar", want: "https://www.dinamalar.com/img/a.jpg"},
		{name: "relative by article host", image: "/img/a.jpg", articleURL: "https://tamil.news18.com/news/x", want: "https://tamil.news18.com/img/a.jpg"},
		{name: "relative unknown publisher", image: "/img/a.jpg", sourceName: "Elsewhere", articleURL: "https://example.org/x", want: ph},
		{name: "protocol relative", image: "//ichef.bbci.co.uk/a.jpg", want: "https://ichef.bbci.co.uk/a.jpg"},
		{name: "gif rejected", image: "https://www.bbc.com/spacer.gif", want: ph},
		{name: "pixel rejected", image: "https://t.example.com/pixel.gif?id=1", want: ph},
		{name: "tracking png rejected", image: "https://t.example.com/tracking.png", want: ph},
		{name: "relative gif rejected after resolve", image: "/blank.gif", sourceName: "BBC Tamil", want: ph},
		{name: "data uri rejected", image: "data:image/png;base64,AAAA", want: ph},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Fix(tt.image, tt.sourceName, tt.articleURL)
			assert.Equal(t, tt.want, got)
			assert.True(t, strings.HasPrefix(got, "https://"))
		})
	}
}

func TestImageFixer_FixIsIdempotent(t *testing.T) {
	f := NewImageFixer("", nil)
	inputs := []string{"", "null", "/a.jpg", "http://x.com/a.jpg", "https://x.com/pixel.gif", "img/b.png", "//c.com/d.webp"}
	for _, in := range inputs {
		once := f.Fix(in, "Vikatan", "https://www.vikatan.com/news/1")
		twice := f.Fix(once, "Vikatan", "https://www.vikatan.com/news/1")
		assert.Equal(t, once, twice, "input %q", in)
	}
}

func TestImageFixer_ValidateDoesNotResolve(t *testing.T) {
	f := NewImageFixer("", nil)
	assert.Equal(t, DefaultPlaceholderImage, f.Validate("/relative.jpg"))
	assert.Equal(t, "https://x.com/a.jpg", f.Validate("http://x.com/a.jpg"))
	assert.Equal(t, f.Validate(f.Validate("undefined")), f.Validate("undefined"))
}

func TestNormalizer_RejectsMissingTitleOrURL(t *testing.T) {
	n := New(nil, nil)

	_, ok := n.Normalize(domain.RawArticle{Title: "  ", URL: "https://x.com/a"}, ImageFix)
	assert.False(t, ok)
	_, ok = n.Normalize(domain.RawArticle{Title: "T", URL: ""}, ImageFix)
	assert.False(t, ok)
	_, ok = n.Normalize(domain.RawArticle{Title: "T", URL: "/relative"}, ImageFix)
	assert.False(t, ok)
	_, ok = n.Normalize(domain.RawArticle{Title: "T", URL: "#"}, ImageFix)
	assert.False(t, ok)
}

func TestNormalizer_SynthesizesFields(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	n := New(nil, func() time.Time { return fixed })

	art, ok := n.Normalize(domain.RawArticle{
		Title: "  Chennai \n rains   ",
		URL:   "https://www.dinamalar.com/news/1",
		Image: "/img/1.jpg",
	}, ImageFix)
	require.True(t, ok)

	assert.Equal(t, "Chennai rains", art.Title)
	assert.Equal(t, "Click to read more about Chennai rains", art.Description)
	assert.Equal(t, art.Description, art.Content)
	assert.Equal(t, "2026-03-01T10:00:00Z", art.PublishedAt)
	assert.Equal(t, "dinamalar.com", art.Source.Name)
	assert.Equal(t, "https://www.dinamalar.com", art.Source.URL)
	assert.Equal(t, "https://www.dinamalar.com/img/1.jpg", art.Image)
}

func TestNormalizer_DescriptionAndContentFillEachOther(t *testing.T) {
	n := New(nil, nil)

	art, ok := n.Normalize(domain.RawArticle{Title: "T", URL: "https://x.com/a", Content: "body"}, ImageValidate)
	require.True(t, ok)
	assert.Equal(t, "body", art.Description)

	art, ok = n.Normalize(domain.RawArticle{Title: "T", URL: "https://x.com/a", Description: "summary"}, ImageValidate)
	require.True(t, ok)
	assert.Equal(t, "summary", art.Content)
}

func TestNormalizer_EnforceKeepsOrder(t *testing.T) {
	n := New(nil, nil)
	in := []domain.Article{
		{Title: "a", URL: "https://x.com/a", Image: "http://x.com/a.jpg"},
		{Title: "", URL: "https://x.com/b"},
		{Title: "c", URL: "https://x.com/c"},
	}
	out := n.Enforce(in, ImageValidate)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Title)
	assert.Equal(t, "https://x.com/a.jpg", out[0].Image)
	assert.Equal(t, "c", out[1].Title)
	assert.Equal(t, DefaultPlaceholderImage, out[1].Image)
}
