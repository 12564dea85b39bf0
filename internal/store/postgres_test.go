package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dispatch-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func TestPostgresStore_GetJobRequest_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM job_requests WHERE id = \$1`).
		WithArgs("nonexistent-job").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetJobRequest(context.Background(), "nonexistent-job")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountActiveCrewMembers(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM crew_members WHERE crew_id = \$1 AND active`).
		WithArgs("crew-a").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	count, err := s.CountActiveCrewMembers(context.Background(), "crew-a")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateJobRequestStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE job_requests SET status`).
		WithArgs("simulated", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateJobRequestStatus(context.Background(), "missing", model.JobStatusSimulated)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ReplaceSimulations must run as one transaction with decisions deleted
// before the simulation rows they reference, and the status update last.
func TestPostgresStore_ReplaceSimulations_TxOrder(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM assignment_decisions WHERE job_request_id = \$1`).
		WithArgs("job-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM assignment_simulations WHERE job_request_id = \$1`).
		WithArgs("job-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`INSERT INTO assignment_simulations`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE job_requests SET status`).
		WithArgs("simulated", pgxmock.AnyArg(), "job-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	sims := []model.AssignmentSimulation{{
		BusinessID:   "biz-1",
		JobRequestID: "job-1",
		CrewID:       "crew-a",
		ProposedDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		InsertionType: model.InsertionOpenDay,
		TravelSource:  model.TravelSourceAPI,
		TotalScore:    140,
	}}
	err := s.ReplaceSimulations(context.Background(), "job-1", sims)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	// IDs and timestamps are assigned inside the transaction.
	assert.NotEmpty(t, sims[0].ID)
	assert.False(t, sims[0].CreatedAt.IsZero())
}

func TestPostgresStore_ReplaceSimulations_EmptySkipsStatus(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM assignment_decisions WHERE job_request_id = \$1`).
		WithArgs("job-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM assignment_simulations WHERE job_request_id = \$1`).
		WithArgs("job-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectCommit()

	err := s.ReplaceSimulations(context.Background(), "job-1", nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ReplaceSimulations_RollsBackOnFailure(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM assignment_decisions WHERE job_request_id = \$1`).
		WithArgs("job-1").
		WillReturnError(errors.New("connection lost"))
	mock.ExpectRollback()

	err := s.ReplaceSimulations(context.Background(), "job-1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete decisions")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteSimulationsForJobRequest(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM assignment_simulations WHERE job_request_id = \$1`).
		WithArgs("job-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	n, err := s.DeleteSimulationsForJobRequest(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountSimulations(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM assignment_simulations`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	count, err := s.CountSimulations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
