// Package store persists job requests, crews, schedules, and simulation
// results behind a backend-neutral interface.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dispatch-cli/internal/model"
)

// ErrNotFound is returned when a requested record does not exist. Callers
// test with eris.Is.
var ErrNotFound = eris.New("store: not found")

// JobRequestFilter specifies criteria for listing job requests.
type JobRequestFilter struct {
	BusinessID string          `json:"business_id,omitempty"`
	Status     model.JobStatus `json:"status,omitempty"`
	Limit      int             `json:"limit,omitempty"`
	Offset     int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the assignment engine.
// Consumers declare narrower interfaces; Store satisfies all of them.
type Store interface {
	// Job requests
	CreateJobRequest(ctx context.Context, job *model.JobRequest) error
	GetJobRequest(ctx context.Context, id string) (*model.JobRequest, error)
	ListJobRequests(ctx context.Context, filter JobRequestFilter) ([]model.JobRequest, error)
	UpdateJobRequestStatus(ctx context.Context, id string, status model.JobStatus) error

	// Crews and membership
	CreateCrew(ctx context.Context, crew *model.Crew) error
	GetCrews(ctx context.Context, businessID string) ([]model.Crew, error)
	CreateCrewMember(ctx context.Context, member *model.CrewMember) error
	CountActiveCrewMembers(ctx context.Context, crewID string) (int, error)

	// Schedule
	CreateScheduleItem(ctx context.Context, item *model.ScheduleItem) error
	ListScheduleItems(ctx context.Context, businessID, crewID string, date time.Time) ([]model.ScheduleItem, error)

	// Simulations and decisions
	CreateSimulation(ctx context.Context, sim *model.AssignmentSimulation) error
	DeleteSimulationsForJobRequest(ctx context.Context, jobRequestID string) (int, error)
	DeleteDecisionsForJobRequest(ctx context.Context, jobRequestID string) (int, error)
	ReplaceSimulations(ctx context.Context, jobRequestID string, sims []model.AssignmentSimulation) error
	ListSimulationsForJobRequest(ctx context.Context, jobRequestID string) ([]model.AssignmentSimulation, error)

	// Monitoring
	CountJobRequestsByStatus(ctx context.Context) (map[model.JobStatus]int, error)
	CountSimulations(ctx context.Context) (int, error)
	CountCrews(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
