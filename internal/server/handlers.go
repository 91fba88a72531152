package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Adda-Baaj/seithi/internal/auth"
	"github.com/Adda-Baaj/seithi/internal/domain"
	"github.com/Adda-Baaj/seithi/internal/history"
	"github.com/Adda-Baaj/seithi/internal/normalize"
	"github.com/Adda-Baaj/seithi/internal/pipeline"
)

const tamilLanguage = "ta"

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// getNews serves headlines. Tamil requests are open; everything else needs a session.
func (s *Server) getNews(c echo.Context) error {
	category := c.QueryParam("category")
	language := c.QueryParam("language")
	if !pipeline.IsTamil(category, language) && !auth.IsAuthenticated(c) {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, s.news.News(c.Request().Context(), category, language))
}

func (s *Server) searchNews(c echo.Context) error {
	language := strings.TrimSpace(c.QueryParam("language"))
	if language == "" {
		language = "en"
	}
	if !strings.EqualFold(language, tamilLanguage) && !auth.IsAuthenticated(c) {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return s.search(c, c.QueryParam("q"), language)
}

func (s *Server) searchTamilNews(c echo.Context) error {
	return s.search(c, c.QueryParam("q"), tamilLanguage)
}

func (s *Server) search(c echo.Context, query, language string) error {
	batch, err := s.news.Search(c.Request().Context(), query, language)
	if errors.Is(err, domain.ErrEmptyQuery) {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}
	if err != nil {
		s.log.WarnObj("search failed", "search_error", map[string]any{"error": err.Error()})
		batch = s.news.LanguagePlaceholder(language)
	}
	return c.JSON(http.StatusOK, batch)
}

func (s *Server) tamilNews(c echo.Context) error {
	return c.JSON(http.StatusOK, s.news.PublicTamil(c.Request().Context()))
}

type trackArticleRequest struct {
	domain.Article
	Category string `json:"category"`
}

type trackQueryRequest struct {
	Query string `json:"query"`
}

type trackResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

func (s *Server) trackArticle(activity history.Activity) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.history == nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "history is disabled")
		}

		var req trackArticleRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid article payload")
		}
		article, ok := s.news.Normalizer().Normalize(req.Article.Raw(), normalize.ImageFix)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "article requires title and url")
		}

		entry, err := s.history.Record(c.Request().Context(), article, auth.UserID(c), activity, req.Category)
		s.observeHistory(activity, err)
		if err != nil {
			return s.historyError(err)
		}
		return c.JSON(http.StatusCreated, trackResponse{Status: "ok", ID: entry.ID})
	}
}

func (s *Server) trackVoiceSearch(c echo.Context) error {
	if s.history == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "history is disabled")
	}

	var req trackQueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	entry, err := s.history.RecordQuery(c.Request().Context(), req.Query, auth.UserID(c))
	s.observeHistory(history.ActivityVoiceSearch, err)
	if err != nil {
		return s.historyError(err)
	}
	return c.JSON(http.StatusCreated, trackResponse{Status: "ok", ID: entry.ID})
}

func (s *Server) listHistory(c echo.Context) error {
	if s.history == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "history is disabled")
	}
	entries, err := s.history.Recent(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return s.historyError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"history": entries})
}

func (s *Server) observeHistory(activity history.Activity, err error) {
	if s.metrics != nil {
		s.metrics.History(string(activity), err)
	}
}

func (s *Server) historyError(err error) error {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	case errors.Is(err, domain.ErrEmptyQuery):
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	case errors.Is(err, history.ErrInvalidEntry):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		s.log.ErrorObj("history request failed", "history_error", map[string]any{"error": err.Error()})
		return echo.NewHTTPError(http.StatusInternalServerError, "history unavailable")
	}
}
