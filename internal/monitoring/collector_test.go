package monitoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dispatch-cli/internal/model"
)

// fakeCounter implements Counter for testing.
type fakeCounter struct {
	byStatus    map[model.JobStatus]int
	simulations int
	crews       int
	statusErr   error
	simErr      error
	crewErr     error
}

func (f *fakeCounter) CountJobRequestsByStatus(context.Context) (map[model.JobStatus]int, error) {
	return f.byStatus, f.statusErr
}

func (f *fakeCounter) CountSimulations(context.Context) (int, error) {
	return f.simulations, f.simErr
}

func (f *fakeCounter) CountCrews(context.Context) (int, error) {
	return f.crews, f.crewErr
}

func TestCollector_EmptyStore(t *testing.T) {
	c := NewCollector(&fakeCounter{})

	snap, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, snap.JobsTotal)
	assert.Equal(t, 0, snap.JobsPending)
	assert.Equal(t, 0, snap.Simulations)
	assert.Equal(t, 0, snap.Crews)
	assert.False(t, snap.CollectedAt.IsZero())
}

func TestCollector_QueueCounts(t *testing.T) {
	c := NewCollector(&fakeCounter{
		byStatus: map[model.JobStatus]int{
			model.JobStatusPending:   4,
			model.JobStatusSimulated: 7,
			model.JobStatusApproved:  2,
			model.JobStatusScheduled: 9,
			model.JobStatusCancelled: 1,
		},
		simulations: 31,
		crews:       3,
	})

	snap, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 23, snap.JobsTotal)
	assert.Equal(t, 4, snap.JobsPending)
	assert.Equal(t, 7, snap.JobsSimulated)
	assert.Equal(t, 2, snap.JobsApproved)
	assert.Equal(t, 9, snap.JobsScheduled)
	assert.Equal(t, 1, snap.JobsCancelled)
	assert.Equal(t, 31, snap.Simulations)
	assert.Equal(t, 3, snap.Crews)
}

func TestCollector_StoreErrorsSurface(t *testing.T) {
	boom := errors.New("connection refused")

	_, err := NewCollector(&fakeCounter{statusErr: boom}).Collect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count job requests")

	_, err = NewCollector(&fakeCounter{simErr: boom}).Collect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count simulations")

	_, err = NewCollector(&fakeCounter{crewErr: boom}).Collect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count crews")
}
