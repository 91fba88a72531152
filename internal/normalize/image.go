package normalize

import (
	"net/url"
	"strings"
)

// DefaultPlaceholderImage is used whenever an article has no usable image.
const DefaultPlaceholderImage = "https://via.placeholder.com/300x200?text=Tamil+News"

// PublisherBase maps a publisher to the origin its relative image paths hang off. A record
// matches when the lowercased source name contains NameHint or the article url contains HostHint.
type PublisherBase struct {
	NameHint string
	HostHint string
	Base     string
}

// DefaultPublisherBases covers the six Tamil publishers.
var DefaultPublisherBases = []PublisherBase{
	{NameHint: "oneindia", HostHint: "oneindia.com", Base: "https://tamil.oneindia.com"},
	{NameHint: "dinamalar", HostHint: "dinamalar.com", Base: "https://www.dinamalar.com"},
	{NameHint: "bbc", HostHint: "bbc.com", Base: "https://www.bbc.com"},
	{NameHint: "samayam", HostHint: "samayam.com", Base: "https://tamil.samayam.com"},
	{NameHint: "news18", HostHint: "news18.com", Base: "https://tamil.news18.com"},
	{NameHint: "vikatan", HostHint: "vikatan.com", Base: "https://www.vikatan.com"},
}

var trackingSuffixes = []string{".gif", "pixel.gif", "tracking.png"}

// ImageFixer resolves, screens and upgrades image urls. The zero value is not usable; call
// NewImageFixer.
type ImageFixer struct {
	placeholder string
	bases       []PublisherBase
}

// NewImageFixer builds a fixer. An empty placeholder selects DefaultPlaceholderImage and a nil
// table selects DefaultPublisherBases.
func NewImageFixer(placeholder string, bases []PublisherBase) *ImageFixer {
	placeholder = strings.TrimSpace(placeholder)
	if placeholder == "" {
		placeholder = DefaultPlaceholderImage
	}
	if bases == nil {
		bases = DefaultPublisherBases
	}
	return &ImageFixer{placeholder: forceHTTPS(placeholder), bases: bases}
}

// Placeholder returns the configured placeholder url.
func (f *ImageFixer) Placeholder() string { return f.placeholder }

// Fix returns an absolute https image url for an article. Relative paths are resolved against
// the publisher matched by sourceName or articleURL; unknown publishers, tracking pixels and
// unusable values collapse to the placeholder. Fix is idempotent.
func (f *ImageFixer) Fix(image, sourceName, articleURL string) string {
	image = strings.TrimSpace(image)
	if isNullish(image) {
		return f.placeholder
	}

	if !hasHTTPScheme(image) {
		switch {
		case strings.HasPrefix(image, "//"):
			image = "https:" + image
		case hasOtherScheme(image):
			return f.placeholder
		default:
			base := f.baseFor(sourceName, articleURL)
			if base == "" {
				return f.placeholder
			}
			image = ResolveURL(image, base)
			if !hasHTTPScheme(image) {
				return f.placeholder
			}
		}
	}

	return f.screen(image)
}

// Validate is the lighter check applied to news API results: relative values are not resolved
// and simply fall back to the placeholder.
func (f *ImageFixer) Validate(image string) string {
	image = strings.TrimSpace(image)
	if isNullish(image) || !hasHTTPScheme(image) {
		return f.placeholder
	}
	return f.screen(image)
}

func (f *ImageFixer) screen(image string) string {
	if isTrackingPixel(image) {
		return f.placeholder
	}
	return forceHTTPS(image)
}

func (f *ImageFixer) baseFor(sourceName, articleURL string) string {
	name := strings.ToLower(sourceName)
	link := strings.ToLower(articleURL)
	for _, b := range f.bases {
		if (b.NameHint != "" && strings.Contains(name, b.NameHint)) ||
			(b.HostHint != "" && strings.Contains(link, b.HostHint)) {
			return b.Base
		}
	}
	return ""
}

func isNullish(v string) bool {
	switch strings.ToLower(v) {
	case "", "null", "undefined", "none":
		return true
	}
	return false
}

func hasHTTPScheme(v string) bool {
	lv := strings.ToLower(v)
	return strings.HasPrefix(lv, "http://") || strings.HasPrefix(lv, "https://")
}

func hasOtherScheme(v string) bool {
	u, err := url.Parse(v)
	if err != nil {
		return true
	}
	return u.Scheme != ""
}

func isTrackingPixel(v string) bool {
	path := strings.ToLower(v)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	for _, s := range trackingSuffixes {
		if strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}

func forceHTTPS(v string) string {
	if strings.HasPrefix(strings.ToLower(v), "http://") {
		return "https://" + v[len("http://"):]
	}
	return v
}

// ResolveURL resolves a possibly relative reference against base. Unparseable input is
// returned unchanged.
func ResolveURL(raw, base string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.IsAbs() {
		return parsed.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}

	return baseURL.ResolveReference(parsed).String()
}
