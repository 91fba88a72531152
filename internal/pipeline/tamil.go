package pipeline

import (
	"context"
	"fmt"

	"github.com/Adda-Baaj/seithi/internal/domain"
	"github.com/Adda-Baaj/seithi/internal/logger"
	"github.com/Adda-Baaj/seithi/internal/normalize"
	"github.com/Adda-Baaj/seithi/pkg/providers"
)

const (
	emergencyDescription = "BBC Tamil News"
	emergencyContent     = "Click to read more"
)

// QuickLinker is implemented by sources that can do a minimal title+url pass.
type QuickLinker interface {
	QuickLinks(ctx context.Context, limit int) ([]domain.RawArticle, error)
}

// TamilAggregator merges the Tamil publishers. The primary source is tried first and, when it
// yields enough, is the only one consulted.
type TamilAggregator struct {
	primary      providers.Fetcher
	rest         []providers.Fetcher
	all          []providers.Fetcher
	norm         *normalize.Normalizer
	placeholders Placeholders
	settings     Settings
	log          logger.Logger
	metrics      Recorder
}

// NewTamilAggregator splits sources into the primary (by settings.PrimarySource, else the first
// one) and the rest, keeping declaration order.
func NewTamilAggregator(sources []providers.Fetcher, norm *normalize.Normalizer, placeholders Placeholders, settings Settings, log logger.Logger, metrics Recorder) *TamilAggregator {
	settings = settings.withDefaults()
	if norm == nil {
		norm = normalize.New(nil, nil)
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}

	a := &TamilAggregator{
		all:          sources,
		norm:         norm,
		placeholders: placeholders,
		settings:     settings,
		log:          logger.Ensure(log),
		metrics:      metrics,
	}
	for _, src := range sources {
		if a.primary == nil && src.ID() == settings.PrimarySource {
			a.primary = src
		}
	}
	if a.primary == nil && len(sources) > 0 {
		a.primary = sources[0]
	}
	for _, src := range sources {
		if src != a.primary {
			a.rest = append(a.rest, src)
		}
	}
	return a
}

// Aggregate returns at most TamilCap fixed articles, or the Tamil placeholder batch.
func (a *TamilAggregator) Aggregate(ctx context.Context) (batch domain.Batch) {
	defer func() {
		if r := recover(); r != nil {
			a.log.ErrorObj("tamil aggregation panicked", "aggregate_panic", map[string]any{
				"panic": fmt.Sprint(r),
			})
			batch = a.emergency(ctx)
		}
	}()

	if a.primary == nil {
		return a.placeholder()
	}

	primary := a.fetch(ctx, a.primary)
	if len(primary) >= a.settings.TamilEarlyExit {
		a.metrics.Stage("tamil", "primary", len(primary))
		return a.finish(primary, a.settings.TamilCap)
	}

	var combined []domain.RawArticle
	for _, src := range a.rest {
		combined = append(combined, a.fetch(ctx, src)...)
	}
	combined = append(combined, primary...)
	a.metrics.Stage("tamil", "all_sources", len(combined))

	return a.finish(combined, a.settings.TamilCap)
}

// Primary scrapes only the primary source, capped at PublicTamilCap.
func (a *TamilAggregator) Primary(ctx context.Context) domain.Batch {
	if a.primary == nil {
		return a.placeholder()
	}
	return a.finish(a.fetch(ctx, a.primary), a.settings.PublicTamilCap)
}

// ScrapeAll scrapes every source in declaration order with no early exit and no cap.
func (a *TamilAggregator) ScrapeAll(ctx context.Context) []domain.RawArticle {
	var out []domain.RawArticle
	for _, src := range a.all {
		out = append(out, a.fetch(ctx, src)...)
	}
	return out
}

// fetch swallows source errors; a failing publisher contributes nothing.
func (a *TamilAggregator) fetch(ctx context.Context, src providers.Fetcher) []domain.RawArticle {
	raws, err := src.Fetch(ctx)
	a.metrics.SourceYield(src.ID(), len(raws), err)
	if err != nil {
		a.log.WarnObj("tamil source failed", "source_error", map[string]any{
			"source_id": src.ID(),
			"error":     err.Error(),
		})
		return nil
	}
	a.log.DebugObj("tamil source scraped", "source", map[string]any{
		"source_id": src.ID(),
		"articles":  len(raws),
	})
	return raws
}

func (a *TamilAggregator) finish(raws []domain.RawArticle, limit int) domain.Batch {
	if len(raws) > limit {
		raws = raws[:limit]
	}
	articles := a.norm.NormalizeAll(raws, normalize.ImageFix)
	if len(articles) == 0 {
		return a.placeholder()
	}
	return domain.NewBatch(articles)
}

func (a *TamilAggregator) placeholder() domain.Batch {
	a.metrics.Placeholder("language")
	return domain.NewBatch(a.placeholders.LanguageMessage("ta"))
}

// emergency retries the primary source with a links-only pass.
func (a *TamilAggregator) emergency(ctx context.Context) (batch domain.Batch) {
	defer func() {
		if r := recover(); r != nil {
			batch = a.placeholder()
		}
	}()

	ql, ok := a.primary.(QuickLinker)
	if !ok {
		return a.placeholder()
	}
	raws, err := ql.QuickLinks(ctx, a.settings.EmergencyCap)
	if err != nil {
		a.log.WarnObj("emergency scrape failed", "emergency_error", map[string]any{
			"source_id": a.primary.ID(),
			"error":     err.Error(),
		})
		return a.placeholder()
	}

	image := a.norm.Images().Placeholder()
	for i := range raws {
		raws[i].Description = emergencyDescription
		raws[i].Content = emergencyContent
		raws[i].Image = image
	}
	a.metrics.Stage("tamil", "emergency", len(raws))
	return a.finish(raws, a.settings.EmergencyCap)
}
