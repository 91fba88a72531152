package history

import (
	"context"

	"github.com/Adda-Baaj/seithi/internal/logger"
	"github.com/Adda-Baaj/seithi/pkg/publishers"
)

// EventPublisher is satisfied by publishers.Fanout.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) error
}

// PublishingSink stores each entry and then forwards it to external publishers. Publisher
// failures are logged; the stored entry stands.
type PublishingSink struct {
	next Sink
	pub  EventPublisher
	log  logger.Logger
}

// NewPublishingSink wraps next.
func NewPublishingSink(next Sink, pub EventPublisher, log logger.Logger) *PublishingSink {
	return &PublishingSink{next: next, pub: pub, log: logger.Ensure(log)}
}

func (s *PublishingSink) Record(ctx context.Context, e Entry) error {
	if err := s.next.Record(ctx, e); err != nil {
		return err
	}
	if s.pub == nil {
		return nil
	}
	if err := s.pub.Publish(ctx, toEvent(e)); err != nil {
		s.log.WarnObj("history event not forwarded", "history_publish", map[string]any{
			"id":    e.ID,
			"error": err.Error(),
		})
	}
	return nil
}

func toEvent(e Entry) publishers.Event {
	return publishers.Event{
		ID:         e.ID,
		UserID:     e.UserID,
		Activity:   string(e.Activity),
		Title:      e.Title,
		URL:        e.URL,
		Image:      e.Image,
		Category:   e.Category,
		Source:     e.Source,
		Query:      e.Query,
		OccurredAt: e.OccurredAt,
	}
}
