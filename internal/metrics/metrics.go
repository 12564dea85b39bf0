// Package metrics exposes the engine's Prometheus collectors on a
// dedicated registry so the /metrics endpoint only serves our series.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the engine.
	Registry = prometheus.NewRegistry()

	// SimulationRuns counts simulation runs by outcome (ok, empty, error).
	SimulationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "simulation_runs_total", Help: "Simulation runs by outcome."},
		[]string{"outcome"},
	)

	// SimulationCandidates records how many candidates a run generated
	// before ranking and truncation.
	SimulationCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "simulation_candidates_per_run",
			Help:    "Candidate simulations generated per run.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	// SimulationDuration records run durations in seconds.
	SimulationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "simulation_run_duration_seconds",
			Help:    "Simulation run duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// TravelResolutions counts travel-time lookups by the cascade tier
	// that answered (api, cache, haversine, fallback).
	TravelResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "travel_resolutions_total", Help: "Travel time resolutions by source."},
		[]string{"source"},
	)

	// HTTPRequests counts API requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)

	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)
)

var regOnce sync.Once

// Register registers all collectors on the dedicated registry. Safe to call
// more than once.
func Register() {
	regOnce.Do(func() {
		Registry.MustRegister(SimulationRuns)
		Registry.MustRegister(SimulationCandidates)
		Registry.MustRegister(SimulationDuration)
		Registry.MustRegister(TravelResolutions)
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
