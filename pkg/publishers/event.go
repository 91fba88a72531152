// Package publishers forwards history activity events to external sinks: HTTP endpoints, AWS SQS,
// AWS SNS and Google Cloud Pub/Sub.
package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Adda-Baaj/seithi/internal/logger"
)

// Logger is the logging surface publishers write to.
type Logger = logger.Logger

func ensureLogger(l Logger) Logger { return logger.Ensure(l) }

// Event is one tracked user activity.
type Event struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Activity   string    `json:"activity"`
	Title      string    `json:"title,omitempty"`
	URL        string    `json:"url,omitempty"`
	Image      string    `json:"image,omitempty"`
	Category   string    `json:"category,omitempty"`
	Source     string    `json:"source,omitempty"`
	Query      string    `json:"query,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// attributes are attached to queue messages for subscriber-side filtering.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"user_id":  e.UserID,
		"activity": e.Activity,
	}
}

func (e Event) payload() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return b, nil
}

// Publisher delivers events to one sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}
