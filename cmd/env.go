package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/fixhub/estimator-cli/internal/estimator"
	"github.com/fixhub/estimator-cli/internal/extraction"
	"github.com/fixhub/estimator-cli/internal/store"
	"github.com/fixhub/estimator-cli/internal/template"
	"github.com/fixhub/estimator-cli/pkg/anthropic"
)

// appEnv holds the initialized store and estimator shared by the serve,
// estimate, and batch commands.
type appEnv struct {
	Store     store.Store
	Estimator *estimator.Estimator
	Templates *template.Service
}

// Close releases resources held by the environment.
func (ae *appEnv) Close() {
	if ae.Store != nil {
		_ = ae.Store.Close()
	}
}

// initStore opens the configured store backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.Pool.MaxConns,
			MinConns: cfg.Store.Pool.MinConns,
		})
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

// initEnv sets up the store, extraction client, and estimator. Callers
// should defer env.Close().
func initEnv(ctx context.Context) (*appEnv, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic api key is required (ESTIMATOR_ANTHROPIC_KEY)")
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	client := anthropic.NewClient(cfg.Anthropic.Key)
	extractor := extraction.NewExtractor(client, cfg.Anthropic.Model)
	templates := template.NewService(st)

	return &appEnv{
		Store:     st,
		Estimator: estimator.New(st, extractor, templates),
		Templates: templates,
	}, nil
}
