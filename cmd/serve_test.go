package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dispatch-cli/internal/model"
	"github.com/sells-group/dispatch-cli/internal/monitoring"
	"github.com/sells-group/dispatch-cli/internal/sim"
	"github.com/sells-group/dispatch-cli/internal/store"
)

type fakeRunner struct {
	result    *sim.Result
	err       error
	gotBiz    string
	gotJob    string
	overrides sim.Overrides
}

func (f *fakeRunner) Run(_ context.Context, businessID, jobRequestID string, overrides sim.Overrides) (*sim.Result, error) {
	f.gotBiz = businessID
	f.gotJob = jobRequestID
	f.overrides = overrides
	return f.result, f.err
}

type fakeReader struct {
	sims []model.AssignmentSimulation
	err  error
}

func (f *fakeReader) ListSimulationsForJobRequest(context.Context, string) ([]model.AssignmentSimulation, error) {
	return f.sims, f.err
}

type fakeCounter struct {
	byStatus map[model.JobStatus]int
	err      error
}

func (f *fakeCounter) CountJobRequestsByStatus(context.Context) (map[model.JobStatus]int, error) {
	return f.byStatus, f.err
}
func (f *fakeCounter) CountSimulations(context.Context) (int, error) { return 0, nil }
func (f *fakeCounter) CountCrews(context.Context) (int, error)       { return 1, nil }

func testRouter(runner *fakeRunner, reader *fakeReader, counter *fakeCounter) http.Handler {
	if runner == nil {
		runner = &fakeRunner{result: &sim.Result{}}
	}
	if reader == nil {
		reader = &fakeReader{}
	}
	if counter == nil {
		counter = &fakeCounter{}
	}
	return newRouter(runner, reader, monitoring.NewCollector(counter))
}

func TestServe_Health(t *testing.T) {
	router := testRouter(nil, nil, &fakeCounter{
		byStatus: map[model.JobStatus]int{model.JobStatusPending: 2},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status   string              `json:"status"`
		Snapshot monitoring.Snapshot `json:"snapshot"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 2, body.Snapshot.JobsPending)
}

func TestServe_HealthDegraded(t *testing.T) {
	router := testRouter(nil, nil, &fakeCounter{err: errors.New("db down")})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServe_RunSimulation(t *testing.T) {
	runner := &fakeRunner{result: &sim.Result{
		CandidatesGenerated: 4,
		CandidatesPersisted: 4,
		Simulations: []model.AssignmentSimulation{
			{CrewID: "crew-a", TotalScore: 140},
		},
	}}
	router := testRouter(runner, nil, nil)

	payload := `{
		"business_id": "biz-1",
		"job_request_id": "job-1",
		"overrides": {"skill_match_min_pct": 75}
	}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/simulations/run", strings.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "biz-1", runner.gotBiz)
	assert.Equal(t, "job-1", runner.gotJob)
	require.NotNil(t, runner.overrides.SkillMatchMinPct)
	assert.Equal(t, 75, *runner.overrides.SkillMatchMinPct)
	assert.Nil(t, runner.overrides.DateRangeDays)

	var result sim.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, 4, result.CandidatesGenerated)
}

func TestServe_RunSimulation_MissingFields(t *testing.T) {
	router := testRouter(nil, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/simulations/run", strings.NewReader(`{"business_id": "biz-1"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServe_RunSimulation_BadBody(t *testing.T) {
	router := testRouter(nil, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/simulations/run", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServe_RunSimulation_JobNotFound(t *testing.T) {
	runner := &fakeRunner{err: store.ErrNotFound}
	router := testRouter(runner, nil, nil)

	payload := `{"business_id": "biz-1", "job_request_id": "missing"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/simulations/run", strings.NewReader(payload)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServe_ListSimulations(t *testing.T) {
	reader := &fakeReader{sims: []model.AssignmentSimulation{
		{ID: "sim-1", CrewID: "crew-a", ProposedDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)},
		{ID: "sim-2", CrewID: "crew-b", ProposedDate: time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC)},
	}}
	router := testRouter(nil, reader, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/job-1/simulations", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		JobRequestID string                       `json:"job_request_id"`
		Simulations  []model.AssignmentSimulation `json:"simulations"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "job-1", body.JobRequestID)
	assert.Len(t, body.Simulations, 2)
}

func TestServe_Metrics(t *testing.T) {
	router := testRouter(nil, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
