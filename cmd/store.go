package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/optionslab/strategy-cli/internal/extract"
	"github.com/optionslab/strategy-cli/internal/fetcher"
	"github.com/optionslab/strategy-cli/internal/store"
	"github.com/optionslab/strategy-cli/pkg/anthropic"
)

// initStore opens the configured store backend and runs migrations.
func initStore(ctx context.Context) (store.Store, error) {
	var st store.Store
	var err error

	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "strategy.db"
		}
		st, err = store.NewSQLite(path)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// initEngine builds the extraction engine. Without an API key the engine
// runs in degraded mode and returns empty extractions.
func initEngine() *extract.Engine {
	var client anthropic.Client
	if cfg.Anthropic.Key != "" {
		client = anthropic.NewClient(cfg.Anthropic.Key)
	}
	return extract.New(client, extract.Config{
		Model:             cfg.Anthropic.Model,
		MaxContentTokens:  cfg.Extract.MaxContentTokens,
		ChunkSize:         cfg.Extract.ChunkSize,
		ChunkOverlap:      cfg.Extract.ChunkOverlap,
		MaxParallelChunks: cfg.Extract.MaxParallelChunks,
	})
}

// initFetchers builds the fetcher registry over one rate-limited client.
func initFetchers() *fetcher.Registry {
	return fetcher.NewRegistry(fetcher.NewClient(fetcher.ClientOptions{
		UserAgent:         cfg.Fetch.UserAgent,
		Timeout:           time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		RequestsPerMinute: cfg.Fetch.RequestsPerMinute,
	}))
}
