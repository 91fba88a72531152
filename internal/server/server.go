// Package server exposes the news pipeline and history tracking over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/Adda-Baaj/seithi/internal/auth"
	"github.com/Adda-Baaj/seithi/internal/domain"
	"github.com/Adda-Baaj/seithi/internal/history"
	"github.com/Adda-Baaj/seithi/internal/logger"
	"github.com/Adda-Baaj/seithi/internal/metrics"
	"github.com/Adda-Baaj/seithi/internal/normalize"
)

// NewsService is the acquisition pipeline as seen by the handlers.
type NewsService interface {
	News(ctx context.Context, category, language string) domain.Batch
	Search(ctx context.Context, query, language string) (domain.Batch, error)
	PublicTamil(ctx context.Context) domain.Batch
	LanguagePlaceholder(language string) domain.Batch
	Normalizer() *normalize.Normalizer
}

// HistoryTracker records and lists user activity.
type HistoryTracker interface {
	Record(ctx context.Context, article domain.Article, userID string, activity history.Activity, category string) (history.Entry, error)
	RecordQuery(ctx context.Context, query, userID string) (history.Entry, error)
	Recent(ctx context.Context, userID string) ([]history.Entry, error)
}

// Options wires the server. Metrics and History may be nil.
type Options struct {
	News      NewsService
	History   HistoryTracker
	Auth      *auth.Authenticator
	Metrics   *metrics.Metrics
	Log       logger.Logger
	RateLimit rate.Limit
	RateBurst int
}

// Server owns the echo instance.
type Server struct {
	e       *echo.Echo
	news    NewsService
	history HistoryTracker
	auth    *auth.Authenticator
	metrics *metrics.Metrics
	log     logger.Logger
}

// New builds the router.
func New(opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		e:       e,
		news:    opts.News,
		history: opts.History,
		auth:    opts.Auth,
		metrics: opts.Metrics,
		log:     logger.Ensure(opts.Log),
	}
	if s.auth == nil {
		s.auth = auth.New(auth.Config{})
	}

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(s.requestLog())
	if opts.RateLimit > 0 {
		e.Use(NewRateLimiter(opts.RateLimit, opts.RateBurst).Middleware())
	}
	e.Use(s.auth.Identify())

	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.e
	e.GET("/health", s.health)
	if s.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	e.GET("/get_news", s.getNews)
	e.GET("/tamil_news", s.tamilNews)
	e.GET("/public/tamil_news", s.tamilNews)

	api := e.Group("/api")
	api.GET("/search_news", s.searchNews)
	api.GET("/search_tamil_news", s.searchTamilNews)

	tracked := api.Group("", auth.Require())
	tracked.POST("/track_click", s.trackArticle(history.ActivityClick))
	tracked.POST("/track_read_aloud", s.trackArticle(history.ActivityReadAloud))
	tracked.POST("/track_voice_search", s.trackVoiceSearch)
	tracked.GET("/history", s.listHistory)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.e }

// Start serves on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.log.Info("server listening", "addr", addr)
	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }

func (s *Server) requestLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			elapsed := time.Since(start)
			if s.metrics != nil {
				s.metrics.ObserveRequest(c.Path(), status, elapsed)
			}
			s.log.DebugObj("request served", "http", map[string]any{
				"method":     c.Request().Method,
				"path":       c.Request().URL.Path,
				"status":     status,
				"elapsed_ms": elapsed.Milliseconds(),
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			})
			return nil
		}
	}
}
