package travel

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/dispatch-cli/internal/geo"
	"github.com/sells-group/dispatch-cli/internal/metrics"
	"github.com/sells-group/dispatch-cli/internal/model"
)

// DefaultFallbackMinutes is assumed when no tier can produce an answer.
const DefaultFallbackMinutes = 15

// Estimate is one resolved travel figure with its provenance.
type Estimate struct {
	Minutes float64            `json:"minutes"`
	Source  model.TravelSource `json:"source"`
}

// routeClient is the routing API surface the resolver consumes.
type routeClient interface {
	Available() bool
	Route(ctx context.Context, origin, dest geo.Point) (float64, error)
}

// minuteCache is the cache surface the resolver consumes.
type minuteCache interface {
	Get(ctx context.Context, origin, dest geo.Point) (float64, bool)
	Set(ctx context.Context, origin, dest geo.Point, minutes float64)
}

// Resolver resolves travel minutes through the tier cascade. A Resolve
// call never fails; a tier that can't answer hands off to the next.
type Resolver struct {
	api      routeClient
	cache    minuteCache
	fallback float64
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithAPI attaches a routing API client.
func WithAPI(c routeClient) ResolverOption {
	return func(r *Resolver) { r.api = c }
}

// WithCache attaches a drive-time cache.
func WithCache(c minuteCache) ResolverOption {
	return func(r *Resolver) { r.cache = c }
}

// WithFallbackMinutes overrides the terminal fallback figure.
func WithFallbackMinutes(minutes float64) ResolverOption {
	return func(r *Resolver) {
		if minutes > 0 {
			r.fallback = minutes
		}
	}
}

// NewResolver creates a Resolver. With no options it degrades to haversine
// estimates and the fixed fallback.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{fallback: DefaultFallbackMinutes}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns one-way travel minutes between origin and destination.
// Either point may be nil; the cascade then falls through to the fixed
// fallback. Tier order: API, cache, haversine, fallback. API answers are
// written back to the cache.
func (r *Resolver) Resolve(ctx context.Context, origin, dest *geo.Point) Estimate {
	est := r.resolve(ctx, origin, dest)
	metrics.TravelResolutions.WithLabelValues(string(est.Source)).Inc()
	return est
}

func (r *Resolver) resolve(ctx context.Context, origin, dest *geo.Point) Estimate {
	if origin == nil || dest == nil {
		return Estimate{Minutes: r.fallback, Source: model.TravelSourceFallback}
	}

	if r.api != nil && r.api.Available() {
		minutes, err := r.api.Route(ctx, *origin, *dest)
		if err == nil {
			if r.cache != nil {
				r.cache.Set(ctx, *origin, *dest, minutes)
			}
			return Estimate{Minutes: minutes, Source: model.TravelSourceAPI}
		}
		zap.L().Warn("travel: routing API failed, falling through", zap.Error(err))
	}

	if r.cache != nil {
		if minutes, ok := r.cache.Get(ctx, *origin, *dest); ok {
			return Estimate{Minutes: minutes, Source: model.TravelSourceCache}
		}
	}

	// Rough surface-street estimate: a mile of displacement costs about
	// two minutes of driving.
	miles := geo.HaversineMiles(*origin, *dest)
	return Estimate{Minutes: miles * 2, Source: model.TravelSourceHaversine}
}
