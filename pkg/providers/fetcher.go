package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Adda-Baaj/seithi/internal/domain"
	"github.com/Adda-Baaj/seithi/internal/logger"
	"github.com/Adda-Baaj/seithi/pkg/httpclient"
)

const (
	defaultListingTimeout = 15 * time.Second
	defaultDetailTimeout  = 10 * time.Second
)

// HTTPClient is the transport used by every fetcher.
type HTTPClient = httpclient.Client

// Fetcher retrieves raw article records from one publisher.
type Fetcher interface {
	ID() string
	Name() string
	Fetch(ctx context.Context) ([]domain.RawArticle, error)
}

// FetcherRegistry resolves fetchers by publisher id and lists them in declaration order.
type FetcherRegistry interface {
	FetcherFor(id string) (Fetcher, error)
	All() []Fetcher
}

// Options configures the scrapers built by this package.
type Options struct {
	Client         HTTPClient
	Log            logger.Logger
	UserAgent      string
	ListingTimeout time.Duration
	DetailTimeout  time.Duration
	DetailWorkers  int
}

func (o Options) withDefaults() Options {
	if o.Client == nil {
		o.Client = DefaultHTTPClient()
	}
	o.Log = logger.Ensure(o.Log)
	if o.UserAgent == "" {
		o.UserAgent = httpclient.BrowserUserAgent
	}
	if o.ListingTimeout <= 0 {
		o.ListingTimeout = defaultListingTimeout
	}
	if o.DetailTimeout <= 0 {
		o.DetailTimeout = defaultDetailTimeout
	}
	if o.DetailWorkers <= 0 {
		o.DetailWorkers = 1
	}
	return o
}

type fetcherRegistry struct {
	mu       sync.RWMutex
	order    []Fetcher
	fetchers map[string]Fetcher
}

// NewFetcherRegistry builds a registry for the provided fetcher implementations. Registration
// order is kept; a later fetcher with the same id replaces the earlier one in place.
func NewFetcherRegistry(fetchers ...Fetcher) FetcherRegistry {
	reg := &fetcherRegistry{
		fetchers: make(map[string]Fetcher, len(fetchers)),
	}

	for _, f := range fetchers {
		if f == nil {
			continue
		}
		key := registryKey(f.ID())
		if _, exists := reg.fetchers[key]; exists {
			for i, o := range reg.order {
				if registryKey(o.ID()) == key {
					reg.order[i] = f
				}
			}
		} else {
			reg.order = append(reg.order, f)
		}
		reg.fetchers[key] = f
	}

	return reg
}

// FetcherFor selects the fetcher for the given publisher id.
func (r *fetcherRegistry) FetcherFor(id string) (Fetcher, error) {
	key := registryKey(id)
	if key == "" {
		return nil, fmt.Errorf("provider id is empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if f, ok := r.fetchers[key]; ok {
		return f, nil
	}

	return nil, fmt.Errorf("no fetcher registered for provider %q", id)
}

// All returns the fetchers in registration order.
func (r *fetcherRegistry) All() []Fetcher {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Fetcher, len(r.order))
	copy(out, r.order)
	return out
}

func registryKey(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// DefaultHTTPClient returns the resty-backed client used by publisher fetchers.
func DefaultHTTPClient() HTTPClient { return httpclient.NewRestyClient(defaultListingTimeout) }

// DefaultFetcherRegistry wires up the six Tamil publishers in their search traversal order.
func DefaultFetcherRegistry(opts Options) FetcherRegistry {
	opts = opts.withDefaults()
	return NewFetcherRegistry(
		NewOneIndiaFetcher(opts),
		NewDinamalarFetcher(opts),
		NewBBCTamilFetcher(opts),
		NewSamayamFetcher(opts),
		NewNews18Fetcher(opts),
		NewVikatanFetcher(opts),
	)
}

// RegistryFromProfiles builds one Scraper per profile.
func RegistryFromProfiles(profiles []Profile, opts Options) FetcherRegistry {
	opts = opts.withDefaults()
	fetchers := make([]Fetcher, 0, len(profiles))
	for _, p := range profiles {
		fetchers = append(fetchers, NewScraper(p, opts))
	}
	return NewFetcherRegistry(fetchers...)
}
