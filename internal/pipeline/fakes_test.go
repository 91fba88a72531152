package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Adda-Baaj/seithi/internal/domain"
	"github.com/Adda-Baaj/seithi/internal/normalize"
	"github.com/Adda-Baaj/seithi/pkg/gnews"
	"github.com/Adda-Baaj/seithi/pkg/providers"
)

var (
	errOffline = errors.New("offline")
	fixedNow   = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
)

func clock() time.Time { return fixedNow }

type fakeAPI struct {
	mu            sync.Mutex
	headlinesFn   func(call int, q gnews.HeadlinesQuery) ([]domain.RawArticle, error)
	searchFn      func(q gnews.SearchQuery) ([]domain.RawArticle, error)
	headlineCalls []gnews.HeadlinesQuery
	searchCalls   []gnews.SearchQuery
}

func (f *fakeAPI) TopHeadlines(_ context.Context, q gnews.HeadlinesQuery) ([]domain.RawArticle, error) {
	f.mu.Lock()
	f.headlineCalls = append(f.headlineCalls, q)
	call := len(f.headlineCalls)
	f.mu.Unlock()
	if f.headlinesFn == nil {
		return nil, errOffline
	}
	return f.headlinesFn(call, q)
}

func (f *fakeAPI) Search(_ context.Context, q gnews.SearchQuery) ([]domain.RawArticle, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, q)
	f.mu.Unlock()
	if f.searchFn == nil {
		return nil, errOffline
	}
	return f.searchFn(q)
}

type fakeWeb struct {
	raws  []domain.RawArticle
	err   error
	calls int
}

func (f *fakeWeb) Search(context.Context, string, string) ([]domain.RawArticle, error) {
	f.calls++
	return f.raws, f.err
}

type fakeSource struct {
	id       string
	raws     []domain.RawArticle
	err      error
	panicMsg string
	quick    []domain.RawArticle
	quickErr error
	calls    int
}

func (f *fakeSource) ID() string   { return f.id }
func (f *fakeSource) Name() string { return f.id }

func (f *fakeSource) Fetch(context.Context) ([]domain.RawArticle, error) {
	f.calls++
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.raws, f.err
}

func (f *fakeSource) QuickLinks(_ context.Context, limit int) ([]domain.RawArticle, error) {
	if f.quickErr != nil {
		return nil, f.quickErr
	}
	if len(f.quick) > limit {
		return f.quick[:limit], nil
	}
	return f.quick, nil
}

func rawArticles(prefix string, n int) []domain.RawArticle {
	out := make([]domain.RawArticle, 0, n)
	for i := range n {
		out = append(out, domain.RawArticle{
			Title:       fmt.Sprintf("%s story %d", prefix, i),
			Description: fmt.Sprintf("%s summary %d", prefix, i),
			URL:         fmt.Sprintf("https://example.com/%s/%d", prefix, i),
			Image:       "https://img.example.com/a.jpg",
		})
	}
	return out
}

func fetchers(sources ...*fakeSource) []providers.Fetcher {
	out := make([]providers.Fetcher, 0, len(sources))
	for _, src := range sources {
		out = append(out, src)
	}
	return out
}

func newTestService(api NewsAPI, web WebSearcher, sources []providers.Fetcher) *Service {
	return New(Deps{
		API:        api,
		Web:        web,
		Sources:    sources,
		Normalizer: normalize.New(nil, clock),
		Now:        clock,
	}, DefaultSettings())
}
