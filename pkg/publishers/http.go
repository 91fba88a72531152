package publishers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Adda-Baaj/seithi/pkg/httpclient"
)

// httpPublisher posts each event as JSON to a webhook.
type httpPublisher struct {
	id      string
	typ     string
	cfg     HTTPPublisherConfig
	client  httpclient.Client
	timeout time.Duration
	log     Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}
	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	return &httpPublisher{
		id:      cfg.ID,
		typ:     cfg.Type,
		cfg:     *cfg.HTTP,
		client:  httpclient.NewRestyClient(timeout),
		timeout: timeout,
		log:     ensureLogger(log).With("publisher_id", cfg.ID),
	}, nil
}

func (p *httpPublisher) ID() string   { return p.id }
func (p *httpPublisher) Type() string { return p.typ }

// Publish sends the event. Any 2xx status counts as delivered.
func (p *httpPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := evt.payload()
	if err != nil {
		return err
	}

	headers := httpclient.JSONHeaders("")
	headers["Content-Type"] = "application/json"
	for k, v := range p.cfg.Headers {
		headers[k] = v
	}

	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Do(cctx, p.cfg.Method, p.cfg.URL, headers, payload)
	if err != nil {
		return fmt.Errorf("http publisher %s: %w", p.id, err)
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		p.log.WarnObj("http publisher rejected event", "publisher_http_status", map[string]any{
			"event_id": evt.ID,
			"status":   resp.StatusCode(),
		})
		return fmt.Errorf("http publisher %s returned status %d", p.id, resp.StatusCode())
	}
	return nil
}
