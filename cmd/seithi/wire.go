package main

import (
	"context"
	"fmt"

	"github.com/Adda-Baaj/seithi/internal/auth"
	"github.com/Adda-Baaj/seithi/internal/config"
	"github.com/Adda-Baaj/seithi/internal/history"
	"github.com/Adda-Baaj/seithi/internal/logger"
	"github.com/Adda-Baaj/seithi/internal/metrics"
	"github.com/Adda-Baaj/seithi/internal/normalize"
	"github.com/Adda-Baaj/seithi/internal/pipeline"
	"github.com/Adda-Baaj/seithi/pkg/gnews"
	"github.com/Adda-Baaj/seithi/pkg/httpclient"
	"github.com/Adda-Baaj/seithi/pkg/providers"
	"github.com/Adda-Baaj/seithi/pkg/publishers"
)

// pipelineParts are the collaborators every command needs.
type pipelineParts struct {
	sources providers.FetcherRegistry
	norm    *normalize.Normalizer
	metrics *metrics.Metrics
	news    *pipeline.Service
}

func buildPipeline(cfg *config.Config, log logger.Logger) (*pipelineParts, error) {
	opts := providers.Options{
		Client:         httpclient.NewRestyClient(cfg.Scrape.ListingTimeout),
		Log:            log,
		UserAgent:      cfg.Scrape.UserAgent,
		ListingTimeout: cfg.Scrape.ListingTimeout,
		DetailTimeout:  cfg.Scrape.DetailTimeout,
		DetailWorkers:  cfg.Scrape.DetailWorkers,
	}

	sources := providers.DefaultFetcherRegistry(opts)
	if cfg.Scrape.ProfilesFile != "" {
		profiles, err := providers.LoadProfiles(cfg.Scrape.ProfilesFile, providers.DefaultProfiles())
		if err != nil {
			return nil, fmt.Errorf("load publisher profiles: %w", err)
		}
		sources = providers.RegistryFromProfiles(profiles, opts)
	}

	norm := normalize.New(normalize.NewImageFixer(cfg.PlaceholderImage, nil), nil)
	m := metrics.New()

	var api pipeline.NewsAPI
	if cfg.GNews.APIKey != "" {
		api = gnews.New(gnews.Config{
			BaseURL:   cfg.GNews.BaseURL,
			APIKey:    cfg.GNews.APIKey,
			Timeout:   cfg.GNews.Timeout,
			UserAgent: cfg.Scrape.UserAgent,
			Log:       log,
		})
	} else {
		log.Warn("gnews.api_key not set, headlines come from fallback sources only")
	}

	news := pipeline.New(pipeline.Deps{
		API:        api,
		Web:        providers.NewGoogleNews(cfg.GoogleNews.SearchURL, opts),
		Sources:    sources.All(),
		Normalizer: norm,
		Log:        log,
		Metrics:    m,
	}, cfg.Settings())

	return &pipelineParts{sources: sources, norm: norm, metrics: m, news: news}, nil
}

// buildHistory opens the bolt store and wraps it with the configured event publishers. The
// returned closer releases the store.
func buildHistory(ctx context.Context, cfg *config.Config, log logger.Logger) (*history.Tracker, func() error, error) {
	store, err := history.OpenBolt(cfg.History.BoltPath)
	if err != nil {
		return nil, nil, err
	}

	var sink history.Sink = store
	if cfg.History.PublishersFile != "" {
		reg, err := publishers.LoadRegistry(cfg.History.PublishersFile)
		if err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), reg.Enabled(), log)
		if err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("build history publishers: %w", err)
		}
		fanout := publishers.NewFanout(pubs, log)
		log.Info("history publishers ready", "count", fanout.Len())
		sink = history.NewPublishingSink(store, fanout, log)
	}

	return history.NewTracker(sink, store, log), store.Close, nil
}

func buildAuth(cfg *config.Config, log logger.Logger) *auth.Authenticator {
	if cfg.Auth.JWTSecret == "" {
		log.Warn("auth.jwt_secret not set, every request is anonymous")
	}
	return auth.New(auth.Config{
		Secret:     cfg.Auth.JWTSecret,
		Issuer:     cfg.Auth.JWTIssuer,
		TTL:        cfg.Auth.TokenTTL,
		CookieName: cfg.Auth.CookieName,
	})
}
