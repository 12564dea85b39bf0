package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/dispatch-cli/internal/metrics"
	"github.com/sells-group/dispatch-cli/internal/model"
	"github.com/sells-group/dispatch-cli/internal/monitoring"
	"github.com/sells-group/dispatch-cli/internal/sim"
	"github.com/sells-group/dispatch-cli/internal/store"
)

var servePort int

// simRunner is the generator surface the HTTP layer consumes.
type simRunner interface {
	Run(ctx context.Context, businessID, jobRequestID string, overrides sim.Overrides) (*sim.Result, error)
}

// simReader lists persisted simulation rows.
type simReader interface {
	ListSimulationsForJobRequest(ctx context.Context, jobRequestID string) ([]model.AssignmentSimulation, error)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the simulation HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := newEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		collector := monitoring.NewCollector(env.store)

		// Background queue health checks.
		checker := monitoring.NewChecker(collector, monitoring.NewAlerter(cfg.Monitoring), cfg.Monitoring)
		go checker.Run(ctx)

		router := newRouter(env.generator, env.store, collector)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func newRouter(runner simRunner, reader simReader, collector *monitoring.Collector) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(httpMetrics)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		snap, err := collector.Collect(req.Context())
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"snapshot": snap,
		})
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Post("/simulations/run", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			BusinessID   string `json:"business_id"`
			JobRequestID string `json:"job_request_id"`
			Overrides    struct {
				DateRangeDays        *int `json:"date_range_days"`
				SkillMatchMinPct     *int `json:"skill_match_min_pct"`
				EquipmentMatchMinPct *int `json:"equipment_match_min_pct"`
				PersistTopN          *int `json:"persist_top_n"`
				ReturnTopN           *int `json:"return_top_n"`
			} `json:"overrides"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if body.BusinessID == "" || body.JobRequestID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "business_id and job_request_id are required"})
			return
		}

		result, err := runner.Run(req.Context(), body.BusinessID, body.JobRequestID, sim.Overrides{
			DateRangeDays:        body.Overrides.DateRangeDays,
			SkillMatchMinPct:     body.Overrides.SkillMatchMinPct,
			EquipmentMatchMinPct: body.Overrides.EquipmentMatchMinPct,
			PersistTopN:          body.Overrides.PersistTopN,
			ReturnTopN:           body.Overrides.ReturnTopN,
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "job request not found"})
				return
			}
			zap.L().Error("serve: simulation run failed",
				zap.String("job_request_id", body.JobRequestID),
				zap.Error(err),
			)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "simulation failed"})
			return
		}

		writeJSON(w, http.StatusOK, result)
	})

	r.Get("/jobs/{jobID}/simulations", func(w http.ResponseWriter, req *http.Request) {
		jobID := chi.URLParam(req, "jobID")
		sims, err := reader.ListSimulationsForJobRequest(req.Context(), jobID)
		if err != nil {
			zap.L().Error("serve: list simulations failed",
				zap.String("job_request_id", jobID),
				zap.Error(err),
			)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list failed"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"job_request_id": jobID,
			"simulations":    sims,
		})
	})

	return r
}

func httpMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		path := chi.RouteContext(req.Context()).RoutePattern()
		status := strconv.Itoa(ww.Status())
		metrics.HTTPRequests.WithLabelValues(req.Method, path, status).Inc()
		metrics.HTTPDuration.WithLabelValues(req.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
