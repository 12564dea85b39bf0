// Package monitoring takes point-in-time snapshots of engine state and
// raises webhook alerts when the assignment queue looks unhealthy.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dispatch-cli/internal/model"
)

// Snapshot holds a point-in-time view of the assignment queue.
type Snapshot struct {
	JobsTotal     int `json:"jobs_total"`
	JobsPending   int `json:"jobs_pending"`
	JobsSimulated int `json:"jobs_simulated"`
	JobsApproved  int `json:"jobs_approved"`
	JobsScheduled int `json:"jobs_scheduled"`
	JobsCancelled int `json:"jobs_cancelled"`

	Simulations int `json:"simulations"`
	Crews       int `json:"crews"`

	CollectedAt time.Time `json:"collected_at"`
}

// Counter abstracts the store count queries the collector needs.
type Counter interface {
	CountJobRequestsByStatus(ctx context.Context) (map[model.JobStatus]int, error)
	CountSimulations(ctx context.Context) (int, error)
	CountCrews(ctx context.Context) (int, error)
}

// Collector gathers snapshots from the store.
type Collector struct {
	store Counter
}

// NewCollector creates a collector over the given store.
func NewCollector(st Counter) *Collector {
	return &Collector{store: st}
}

// Collect gathers a snapshot of the current queue and fleet state.
func (c *Collector) Collect(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{CollectedAt: time.Now().UTC()}

	byStatus, err := c.store.CountJobRequestsByStatus(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: count job requests")
	}
	for status, n := range byStatus {
		snap.JobsTotal += n
		switch status {
		case model.JobStatusPending:
			snap.JobsPending = n
		case model.JobStatusSimulated:
			snap.JobsSimulated = n
		case model.JobStatusApproved:
			snap.JobsApproved = n
		case model.JobStatusScheduled:
			snap.JobsScheduled = n
		case model.JobStatusCancelled:
			snap.JobsCancelled = n
		}
	}

	if snap.Simulations, err = c.store.CountSimulations(ctx); err != nil {
		return nil, eris.Wrap(err, "monitoring: count simulations")
	}
	if snap.Crews, err = c.store.CountCrews(ctx); err != nil {
		return nil, eris.Wrap(err, "monitoring: count crews")
	}

	return snap, nil
}
