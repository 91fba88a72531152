// Package history records what a signed-in user clicked, listened to or searched for.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Adda-Baaj/seithi/internal/domain"
	"github.com/Adda-Baaj/seithi/internal/logger"
)

// Activity is the kind of tracked action.
type Activity string

const (
	ActivityClick       Activity = "click"
	ActivityReadAloud   Activity = "read_aloud"
	ActivityVoiceSearch Activity = "voice_search"
)

// DefaultRecentLimit is how many entries the history listing returns.
const DefaultRecentLimit = 50

// ErrInvalidEntry is returned for article payloads without a title or url.
var ErrInvalidEntry = errors.New("history entry requires title and url")

// Entry is one stored history record.
type Entry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Activity   Activity  `json:"activity"`
	Title      string    `json:"title,omitempty"`
	URL        string    `json:"url,omitempty"`
	Image      string    `json:"image,omitempty"`
	Category   string    `json:"category,omitempty"`
	Source     string    `json:"source,omitempty"`
	Query      string    `json:"query,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Sink persists entries.
type Sink interface {
	Record(ctx context.Context, e Entry) error
}

// Reader lists a user's entries, newest first.
type Reader interface {
	Recent(ctx context.Context, userID string, limit int) ([]Entry, error)
}

// Store is a Sink that can also be read back.
type Store interface {
	Sink
	Reader
}

// Tracker turns tracking actions into entries. It is the only writer of history; the news
// pipeline never records anything on its own.
type Tracker struct {
	sink   Sink
	reader Reader
	log    logger.Logger
	now    func() time.Time
	newID  func() string
}

// NewTracker writes through sink and reads from reader. Either may be the same store.
func NewTracker(sink Sink, reader Reader, log logger.Logger) *Tracker {
	return &Tracker{
		sink:   sink,
		reader: reader,
		log:    logger.Ensure(log),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Record stores a normalized article under activity for userID.
func (t *Tracker) Record(ctx context.Context, article domain.Article, userID string, activity Activity, category string) (Entry, error) {
	if strings.TrimSpace(userID) == "" {
		return Entry{}, domain.ErrUnauthorized
	}
	if strings.TrimSpace(article.Title) == "" || strings.TrimSpace(article.URL) == "" {
		return Entry{}, ErrInvalidEntry
	}

	e := Entry{
		ID:         t.newID(),
		UserID:     userID,
		Activity:   activity,
		Title:      article.Title,
		URL:        article.URL,
		Image:      article.Image,
		Category:   strings.TrimSpace(category),
		Source:     article.Source.Name,
		OccurredAt: t.now().UTC(),
	}
	return e, t.write(ctx, e)
}

// RecordQuery stores a voice search query for userID.
func (t *Tracker) RecordQuery(ctx context.Context, query, userID string) (Entry, error) {
	if strings.TrimSpace(userID) == "" {
		return Entry{}, domain.ErrUnauthorized
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return Entry{}, domain.ErrEmptyQuery
	}

	e := Entry{
		ID:         t.newID(),
		UserID:     userID,
		Activity:   ActivityVoiceSearch,
		Query:      query,
		OccurredAt: t.now().UTC(),
	}
	return e, t.write(ctx, e)
}

// Recent returns the latest DefaultRecentLimit entries for userID.
func (t *Tracker) Recent(ctx context.Context, userID string) ([]Entry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUnauthorized
	}
	return t.reader.Recent(ctx, userID, DefaultRecentLimit)
}

func (t *Tracker) write(ctx context.Context, e Entry) error {
	if err := t.sink.Record(ctx, e); err != nil {
		t.log.ErrorObj("history record failed", "history_error", map[string]any{
			"user_id":  e.UserID,
			"activity": e.Activity,
			"error":    err.Error(),
		})
		return fmt.Errorf("record %s: %w", e.Activity, err)
	}
	t.log.DebugObj("history recorded", "history", map[string]any{
		"id":       e.ID,
		"user_id":  e.UserID,
		"activity": e.Activity,
	})
	return nil
}
