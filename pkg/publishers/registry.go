package publishers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Builder creates a Publisher from a config entry.
type Builder func(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error)

// Registry maps publisher types to builders.
type Registry interface {
	Register(typ string, builder Builder)
	PublisherFor(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error)
}

type registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns a registry with optional pre-registered builders.
func NewRegistry(builders map[string]Builder) Registry {
	r := &registry{builders: make(map[string]Builder)}
	for typ, b := range builders {
		r.Register(typ, b)
	}
	return r
}

// Register associates a builder with a publisher type.
func (r *registry) Register(typ string, builder Builder) {
	if typ = strings.TrimSpace(strings.ToLower(typ)); typ == "" || builder == nil {
		return
	}

	r.mu.Lock()
	r.builders[typ] = builder
	r.mu.Unlock()
}

// PublisherFor builds the publisher for cfg. Configs with an activity filter are wrapped so
// other activity kinds are skipped.
func (r *registry) PublisherFor(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("publisher %q has no type configured", cfg.ID)
	}

	r.mu.RLock()
	builder := r.builders[strings.ToLower(cfg.Type)]
	r.mu.RUnlock()

	if builder == nil {
		return nil, fmt.Errorf("no publisher registered for type %q", cfg.Type)
	}
	pub, err := builder(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if len(cfg.Activities) > 0 {
		pub = &filteredPublisher{Publisher: pub, cfg: cfg}
	}
	return pub, nil
}

// DefaultRegistry wires up known publishers.
func DefaultRegistry() Registry {
	return NewRegistry(map[string]Builder{
		TypeHTTP:  newHTTPPublisher,
		TypeQueue: newQueuePublisher,
	})
}

// BuildAll instantiates publishers for configs using the registry.
func BuildAll(ctx context.Context, reg Registry, cfgs []PublisherConfig, log Logger) ([]Publisher, error) {
	if reg == nil || len(cfgs) == 0 {
		return nil, nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	log = ensureLogger(log)

	var pubs []Publisher
	for _, cfg := range cfgs {
		pub, err := reg.PublisherFor(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, pub)
	}
	return pubs, nil
}

type filteredPublisher struct {
	Publisher
	cfg PublisherConfig
}

func (p *filteredPublisher) Publish(ctx context.Context, evt Event) error {
	if !p.cfg.Accepts(evt.Activity) {
		return nil
	}
	return p.Publisher.Publish(ctx, evt)
}

// Fanout delivers each event to every publisher. One failing sink does not stop the others.
type Fanout struct {
	pubs []Publisher
	log  Logger
}

// NewFanout wraps pubs. A Fanout over no publishers accepts and drops every event.
func NewFanout(pubs []Publisher, log Logger) *Fanout {
	return &Fanout{pubs: pubs, log: ensureLogger(log)}
}

// Len reports how many sinks receive events.
func (f *Fanout) Len() int { return len(f.pubs) }

// Publish returns the joined errors of all failed sinks.
func (f *Fanout) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, pub := range f.pubs {
		if err := pub.Publish(ctx, evt); err != nil {
			f.log.WarnObj("publisher failed", "publisher_error", map[string]any{
				"publisher_id": pub.ID(),
				"type":         pub.Type(),
				"event_id":     evt.ID,
				"error":        err.Error(),
			})
			errs = append(errs, fmt.Errorf("%s: %w", pub.ID(), err))
		}
	}
	return errors.Join(errs...)
}
