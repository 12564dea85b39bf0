package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dispatch-cli/internal/eligibility"
	"github.com/sells-group/dispatch-cli/internal/margin"
	"github.com/sells-group/dispatch-cli/internal/sim"
	"github.com/sells-group/dispatch-cli/internal/store"
	"github.com/sells-group/dispatch-cli/internal/travel"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.SQLitePath
		if path == "" {
			path = "dispatch.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// engine bundles the wired collaborators behind one Close.
type engine struct {
	store     store.Store
	resolver  *eligibility.Resolver
	travel    *travel.Resolver
	cache     *travel.Cache
	generator *sim.Generator
}

func (e *engine) Close() {
	if e.cache != nil {
		_ = e.cache.Close()
	}
	_ = e.store.Close()
}

// newEngine assembles the full simulation stack from config.
func newEngine(ctx context.Context) (*engine, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	cache := travel.NewCache(cfg.Travel.Cache)

	travelOpts := []travel.ResolverOption{
		travel.WithAPI(travel.NewAPIClient(cfg.Travel)),
		travel.WithFallbackMinutes(cfg.Travel.FallbackMinutes),
	}
	if cache != nil {
		travelOpts = append(travelOpts, travel.WithCache(cache))
	}
	travelResolver := travel.NewResolver(travelOpts...)

	eligResolver := eligibility.NewResolver(st)

	gen := sim.NewGenerator(
		st,
		eligResolver,
		travelResolver,
		margin.NewEstimator(cfg.Margin),
		cfg.Simulation,
	)

	return &engine{
		store:     st,
		resolver:  eligResolver,
		travel:    travelResolver,
		cache:     cache,
		generator: gen,
	}, nil
}
