package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/seithi/internal/auth"
	"github.com/Adda-Baaj/seithi/internal/domain"
	"github.com/Adda-Baaj/seithi/internal/history"
	"github.com/Adda-Baaj/seithi/internal/metrics"
	"github.com/Adda-Baaj/seithi/internal/normalize"
)

type fakeNews struct {
	newsCalls   []string
	searchCalls []string
	norm        *normalize.Normalizer
}

func batchOf(title string) domain.Batch {
	return domain.NewBatch([]domain.Article{{Title: title, URL: "https://example.com/" + title}})
}

func (f *fakeNews) News(_ context.Context, category, language string) domain.Batch {
	f.newsCalls = append(f.newsCalls, category+"/"+language)
	return batchOf("news")
}

func (f *fakeNews) Search(_ context.Context, query, language string) (domain.Batch, error) {
	f.searchCalls = append(f.searchCalls, query+"/"+language)
	if strings.TrimSpace(query) == "" {
		return domain.Batch{}, domain.ErrEmptyQuery
	}
	return batchOf("search"), nil
}

func (f *fakeNews) PublicTamil(context.Context) domain.Batch { return batchOf("tamil") }

func (f *fakeNews) LanguagePlaceholder(string) domain.Batch { return batchOf("placeholder") }

func (f *fakeNews) Normalizer() *normalize.Normalizer { return f.norm }

type fixture struct {
	srv   *Server
	news  *fakeNews
	token string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := history.OpenBolt(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	authn := auth.New(auth.Config{Secret: "server-secret", Issuer: "seithi"})
	token, err := authn.IssueToken("user-1", "")
	require.NoError(t, err)

	news := &fakeNews{norm: normalize.New(nil, func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) })}
	srv := New(Options{
		News:    news,
		History: history.NewTracker(store, store, nil),
		Auth:    authn,
		Metrics: metrics.New(),
	})
	return &fixture{srv: srv, news: news, token: token}
}

func (f *fixture) do(method, target, body string, authed bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if authed {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+f.token)
	}
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBatch(t *testing.T, rec *httptest.ResponseRecorder) domain.Batch {
	t.Helper()
	var b domain.Batch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	return b
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetNewsAuthGate(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/get_news?category=business&language=en", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, f.news.newsCalls)

	rec = f.do(http.MethodGet, "/get_news?category=business&language=en", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "news", decodeBatch(t, rec).Articles[0].Title)

	rec = f.do(http.MethodGet, "/get_news?language=ta", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(http.MethodGet, "/get_news?category=tamil", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"business/en", "/ta", "tamil/"}, f.news.newsCalls)
}

func TestSearchNews(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/search_news", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "identity is checked before the query")

	rec = f.do(http.MethodGet, "/api/search_news?q=", "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/search_news?q=climate", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBatch(t, rec).TotalArticles)

	rec = f.do(http.MethodGet, "/api/search_news?q=chennai&language=ta", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/api/search_tamil_news?q=%E0%AE%9A%E0%AF%86%E0%AE%A9%E0%AF%8D%E0%AE%A9%E0%AF%88", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/api/search_tamil_news", "", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, []string{"/en", "climate/en", "chennai/ta", "சென்னை/ta", "/ta"}, f.news.searchCalls)
}

func TestTamilNewsIsPublic(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/tamil_news", "/public/tamil_news"} {
		rec := f.do(http.MethodGet, path, "", false)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "tamil", decodeBatch(t, rec).Articles[0].Title)
	}
}

func TestTrackingAndHistory(t *testing.T) {
	f := newFixture(t)
	click := `{"title":"  Chennai   rain ","url":"https://www.bbc.com/tamil/articles/c1","image":"/img/a.jpg","source":{"name":"BBC Tamil"},"category":"tamil"}`

	rec := f.do(http.MethodPost, "/api/track_click", click, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/api/track_click", click, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/track_read_aloud", `{"title":"No url"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/track_voice_search", `{"query":"weather"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodPost, "/api/track_voice_search", `{"query":" "}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/history", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		History []history.Entry `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.History, 2)
	assert.Equal(t, history.ActivityVoiceSearch, body.History[0].Activity)
	assert.Equal(t, "Chennai rain", body.History[1].Title)
	assert.Equal(t, "https://www.bbc.com/img/a.jpg", body.History[1].Image)
	assert.Equal(t, "tamil", body.History[1].Category)

	rec = f.do(http.MethodGet, "/api/history", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(http.MethodGet, "/health", "", false)

	rec := f.do(http.MethodGet, "/metrics", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `seithi_http_request_duration_seconds_count{code="200",route="/health"}`)
}

func TestRateLimit(t *testing.T) {
	srv := New(Options{News: &fakeNews{}, RateLimit: 0.001, RateBurst: 1})

	first := httptest.NewRecorder()
	srv.Handler().ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	srv.Handler().ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}
