package providers

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Adda-Baaj/seithi/internal/crawler"
)

// Profile is the declarative extraction recipe for one publisher. All publishers share the same
// scraping control flow; only the data below differs.
type Profile struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	SiteURL    string `yaml:"site_url"`
	ListingURL string `yaml:"listing_url"`
	BaseURL    string `yaml:"base_url"`
	// SitemapURL switches the listing pass to a Google News sitemap.
	SitemapURL string `yaml:"sitemap_url"`

	// ListingSelectors are alternative candidate patterns. The first one with any match wins.
	ListingSelectors []string `yaml:"listing_selectors"`
	// ExtraSelectors are appended after the winning pattern's candidates.
	ExtraSelectors []string `yaml:"extra_selectors"`
	MaxCandidates  int      `yaml:"max_candidates"`

	TitleSelector  string `yaml:"title_selector"`
	PreferLinkText bool   `yaml:"prefer_link_text"`
	MinTitleLength int    `yaml:"min_title_length"`

	DescriptionSelector string   `yaml:"description_selector"`
	ImageSelector       string   `yaml:"image_selector"`
	ImageAttrs          []string `yaml:"image_attrs"`
	PublishedSelector   string   `yaml:"published_selector"`
	SourceNameSelector  string   `yaml:"source_name_selector"`

	SkipLinkSubstrings []string `yaml:"skip_link_substrings"`
	SkipDetail         bool     `yaml:"skip_detail"`

	Detail DetailProfile `yaml:"detail"`
	Promo  *PromoProfile `yaml:"promo"`
}

// DetailProfile describes the article page pass.
type DetailProfile struct {
	DescriptionSelectors []string `yaml:"description_selectors"`
	ImageSelectors       []string `yaml:"image_selectors"`
	ImageAttrs           []string `yaml:"image_attrs"`
	TitleSelector        string   `yaml:"title_selector"`
	HeadlineSelector     string   `yaml:"headline_selector"`
	HeadlinePrefix       string   `yaml:"headline_prefix"`
}

// PromoProfile is a secondary listing pass used when the main one yields too little.
type PromoProfile struct {
	Below         int    `yaml:"below"`
	Selector      string `yaml:"selector"`
	MaxCandidates int    `yaml:"max_candidates"`
	TitleSelector string `yaml:"title_selector"`
	LinkContains  string `yaml:"link_contains"`
}

func (p Profile) detailRules(headers map[string]string, opts Options) crawler.DetailRules {
	attrs := p.Detail.ImageAttrs
	if len(attrs) == 0 {
		attrs = p.ImageAttrs
	}
	return crawler.DetailRules{
		DescriptionSelectors: p.Detail.DescriptionSelectors,
		ImageSelectors:       p.Detail.ImageSelectors,
		ImageAttrs:           attrs,
		TitleSelector:        p.Detail.TitleSelector,
		HeadlineSelector:     p.Detail.HeadlineSelector,
		HeadlinePrefix:       p.Detail.HeadlinePrefix,
		BaseURL:              p.BaseURL,
		Headers:              headers,
		Timeout:              opts.DetailTimeout,
	}
}

// DefaultProfiles returns the six Tamil publishers in search traversal order.
func DefaultProfiles() []Profile {
	return []Profile{
		OneIndiaProfile(),
		DinamalarProfile(),
		BBCTamilProfile(),
		SamayamProfile(),
		News18Profile(),
		VikatanProfile(),
	}
}

type profilesFile struct {
	Profiles []yaml.Node `yaml:"profiles"`
}

// LoadProfiles applies a YAML override file to defaults. Entries whose id matches a default
// only replace the fields they set; unknown ids are appended as new publishers.
func LoadProfiles(path string, defaults []Profile) ([]Profile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("profiles file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}

	return ParseProfiles([]byte(os.ExpandEnv(string(raw))), defaults)
}

// ParseProfiles is LoadProfiles over an in-memory document.
func ParseProfiles(data []byte, defaults []Profile) ([]Profile, error) {
	var file profilesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}

	out := make([]Profile, len(defaults))
	copy(out, defaults)
	idx := make(map[string]int, len(out))
	for i, p := range out {
		idx[registryKey(p.ID)] = i
	}

	for i := range file.Profiles {
		node := &file.Profiles[i]

		var head struct {
			ID string `yaml:"id"`
		}
		if err := node.Decode(&head); err != nil {
			return nil, fmt.Errorf("profiles[%d]: %w", i, err)
		}
		key := registryKey(head.ID)
		if key == "" {
			return nil, fmt.Errorf("profiles[%d]: id is required", i)
		}

		var p Profile
		pos, known := idx[key]
		if known {
			p = out[pos]
			if p.Promo != nil {
				promo := *p.Promo
				p.Promo = &promo
			}
		}
		if err := node.Decode(&p); err != nil {
			return nil, fmt.Errorf("profiles[%d]: %w", i, err)
		}
		p = sanitizeProfile(p)
		if err := validateProfile(p); err != nil {
			return nil, fmt.Errorf("profiles[%d]: %w", i, err)
		}

		if known {
			out[pos] = p
		} else {
			idx[key] = len(out)
			out = append(out, p)
		}
	}

	return out, nil
}

func sanitizeProfile(p Profile) Profile {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.SiteURL = strings.TrimSpace(p.SiteURL)
	p.ListingURL = strings.TrimSpace(p.ListingURL)
	p.BaseURL = strings.TrimSpace(p.BaseURL)
	p.SitemapURL = strings.TrimSpace(p.SitemapURL)
	p.ListingSelectors = trimAll(p.ListingSelectors)
	p.ExtraSelectors = trimAll(p.ExtraSelectors)
	if p.BaseURL == "" {
		p.BaseURL = p.SiteURL
	}
	if p.SiteURL == "" {
		p.SiteURL = p.BaseURL
	}
	return p
}

func validateProfile(p Profile) error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required for profile %q", p.ID)
	}
	for field, v := range map[string]string{"listing_url": p.ListingURL, "base_url": p.BaseURL} {
		u, err := url.Parse(v)
		if err != nil || u.Host == "" {
			return fmt.Errorf("%s must be an absolute url for profile %q", field, p.ID)
		}
	}
	if len(p.ListingSelectors) == 0 && p.SitemapURL == "" {
		return fmt.Errorf("listing_selectors are required for profile %q", p.ID)
	}
	if p.MaxCandidates < 0 {
		return fmt.Errorf("max_candidates must not be negative for profile %q", p.ID)
	}
	return nil
}

func trimAll(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
