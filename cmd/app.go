package main

import (
	"context"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rset-labs/campus-assist/internal/config"
	"github.com/rset-labs/campus-assist/internal/pipeline"
	"github.com/rset-labs/campus-assist/internal/scrape"
	"github.com/rset-labs/campus-assist/internal/search"
	"github.com/rset-labs/campus-assist/internal/store"
	"github.com/rset-labs/campus-assist/pkg/cse"
)

// appEnv bundles the pipeline with its closeable dependencies.
type appEnv struct {
	Pipeline *pipeline.Pipeline
	Cache    store.Store
}

// Close releases held resources.
func (e *appEnv) Close() {
	if e.Cache != nil {
		if err := e.Cache.Close(); err != nil {
			zap.L().Warn("close cache store", zap.Error(err))
		}
	}
}

// initPipeline validates configuration and assembles the answer pipeline.
func initPipeline(ctx context.Context, cfg *config.Config) (*appEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	llm, err := pipeline.NewLLM(cfg.LLM)
	if err != nil {
		return nil, err
	}

	var cache store.Store
	if cfg.Cache.Enabled {
		st, err := store.NewSQLite(cfg.Cache.Path)
		if err != nil {
			return nil, eris.Wrap(err, "open cache store")
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "migrate cache store")
		}
		cache = st
	}

	gateway := search.NewGateway(
		cse.NewClient(cfg.Search.Key, cfg.Search.EngineID,
			cse.WithHTTPClient(&http.Client{Timeout: cfg.SearchTimeout()})),
		cfg.Search,
	)
	fetcher := scrape.NewFetcher(cfg.Scrape)

	return &appEnv{
		Pipeline: pipeline.New(cfg, gateway, fetcher, llm, cache),
		Cache:    cache,
	}, nil
}
