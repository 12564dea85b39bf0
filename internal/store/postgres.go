package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/dispatch-cli/internal/db"
	"github.com/sells-group/dispatch-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS job_requests (
	id                 TEXT PRIMARY KEY,
	business_id        TEXT NOT NULL,
	title              TEXT NOT NULL DEFAULT '',
	required_skills    JSONB NOT NULL DEFAULT '[]',
	required_equipment JSONB NOT NULL DEFAULT '[]',
	crew_size_min      INTEGER NOT NULL DEFAULT 0,
	labor_minutes_low  INTEGER NOT NULL DEFAULT 0,
	labor_minutes_high INTEGER NOT NULL DEFAULT 0,
	lot_area_sqft      DOUBLE PRECISION NOT NULL DEFAULT 0,
	latitude           DOUBLE PRECISION,
	longitude          DOUBLE PRECISION,
	frequency          TEXT NOT NULL DEFAULT 'one_time',
	lot_confidence     TEXT NOT NULL DEFAULT 'high',
	status             TEXT NOT NULL DEFAULT 'pending',
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS crews (
	id                     TEXT PRIMARY KEY,
	business_id            TEXT NOT NULL,
	name                   TEXT NOT NULL DEFAULT '',
	skills                 JSONB NOT NULL DEFAULT '[]',
	equipment              JSONB NOT NULL DEFAULT '[]',
	home_latitude          DOUBLE PRECISION,
	home_longitude         DOUBLE PRECISION,
	service_radius_miles   DOUBLE PRECISION NOT NULL DEFAULT 0,
	daily_capacity_minutes INTEGER NOT NULL DEFAULT 0,
	created_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS crew_members (
	id      TEXT PRIMARY KEY,
	crew_id TEXT NOT NULL REFERENCES crews(id),
	name    TEXT NOT NULL DEFAULT '',
	active  BOOLEAN NOT NULL DEFAULT true
);

CREATE TABLE IF NOT EXISTS schedule_items (
	id          TEXT PRIMARY KEY,
	business_id TEXT NOT NULL,
	crew_id     TEXT NOT NULL REFERENCES crews(id),
	start_at    TIMESTAMPTZ NOT NULL,
	end_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS assignment_simulations (
	id                   TEXT PRIMARY KEY,
	business_id          TEXT NOT NULL,
	job_request_id       TEXT NOT NULL REFERENCES job_requests(id),
	crew_id              TEXT NOT NULL REFERENCES crews(id),
	proposed_date        TIMESTAMPTZ NOT NULL,
	insertion_type       TEXT NOT NULL,
	travel_minutes_delta DOUBLE PRECISION NOT NULL DEFAULT 0,
	travel_source        TEXT NOT NULL DEFAULT 'fallback',
	load_delta_minutes   DOUBLE PRECISION NOT NULL DEFAULT 0,
	margin_score         DOUBLE PRECISION NOT NULL DEFAULT 0,
	risk_score           DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_score          DOUBLE PRECISION NOT NULL DEFAULT 0,
	explanation          JSONB NOT NULL DEFAULT '{}',
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS assignment_decisions (
	id             TEXT PRIMARY KEY,
	business_id    TEXT NOT NULL,
	job_request_id TEXT NOT NULL REFERENCES job_requests(id),
	simulation_id  TEXT NOT NULL REFERENCES assignment_simulations(id),
	decided_by     TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_job_requests_business ON job_requests(business_id);
CREATE INDEX IF NOT EXISTS idx_job_requests_status ON job_requests(status);
CREATE INDEX IF NOT EXISTS idx_crews_business ON crews(business_id);
CREATE INDEX IF NOT EXISTS idx_crew_members_crew ON crew_members(crew_id);
CREATE INDEX IF NOT EXISTS idx_schedule_items_crew_start ON schedule_items(crew_id, start_at);
CREATE INDEX IF NOT EXISTS idx_simulations_job ON assignment_simulations(job_request_id);
CREATE INDEX IF NOT EXISTS idx_decisions_job ON assignment_decisions(job_request_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateJobRequest(ctx context.Context, job *model.JobRequest) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = model.JobStatusPending
	}

	skillsJSON, err := json.Marshal(job.RequiredSkills)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal skills")
	}
	equipJSON, err := json.Marshal(job.RequiredEquipment)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal equipment")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO job_requests
		 (id, business_id, title, required_skills, required_equipment, crew_size_min,
		  labor_minutes_low, labor_minutes_high, lot_area_sqft, latitude, longitude,
		  frequency, lot_confidence, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		job.ID, job.BusinessID, job.Title, skillsJSON, equipJSON, job.CrewSizeMin,
		job.LaborMinutesLow, job.LaborMinutesHigh, job.LotAreaSqFt, job.Latitude, job.Longitude,
		string(job.Frequency), string(job.LotConfidence), string(job.Status), job.CreatedAt, job.UpdatedAt,
	)
	return eris.Wrap(err, "postgres: insert job request")
}

const jobRequestColumns = `id, business_id, title, required_skills, required_equipment, crew_size_min,
	labor_minutes_low, labor_minutes_high, lot_area_sqft, latitude, longitude,
	frequency, lot_confidence, status, created_at, updated_at`

func scanJobRequest(row pgx.Row) (*model.JobRequest, error) {
	var j model.JobRequest
	var skillsJSON, equipJSON []byte

	err := row.Scan(&j.ID, &j.BusinessID, &j.Title, &skillsJSON, &equipJSON, &j.CrewSizeMin,
		&j.LaborMinutesLow, &j.LaborMinutesHigh, &j.LotAreaSqFt, &j.Latitude, &j.Longitude,
		&j.Frequency, &j.LotConfidence, &j.Status, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(skillsJSON, &j.RequiredSkills); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal skills")
	}
	if err := json.Unmarshal(equipJSON, &j.RequiredEquipment); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal equipment")
	}
	return &j, nil
}

func (s *PostgresStore) GetJobRequest(ctx context.Context, id string) (*model.JobRequest, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+jobRequestColumns+` FROM job_requests WHERE id = $1`, id)

	j, err := scanJobRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "postgres: job request %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get job request %s", id)
	}
	return j, nil
}

func (s *PostgresStore) ListJobRequests(ctx context.Context, filter JobRequestFilter) ([]model.JobRequest, error) {
	query := `SELECT ` + jobRequestColumns + ` FROM job_requests WHERE true`
	args := []any{}
	argIdx := 1

	if filter.BusinessID != "" {
		query += fmt.Sprintf(` AND business_id = $%d`, argIdx)
		args = append(args, filter.BusinessID)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list job requests")
	}
	defer rows.Close()

	var jobs []model.JobRequest
	for rows.Next() {
		j, err := scanJobRequest(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan job request")
		}
		jobs = append(jobs, *j)
	}
	return jobs, eris.Wrap(rows.Err(), "postgres: list job requests iterate")
}

func (s *PostgresStore) UpdateJobRequestStatus(ctx context.Context, id string, status model.JobStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE job_requests SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update job request status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: job request %s", id)
	}
	return nil
}

func (s *PostgresStore) CreateCrew(ctx context.Context, crew *model.Crew) error {
	if crew.ID == "" {
		crew.ID = uuid.New().String()
	}
	if crew.CreatedAt.IsZero() {
		crew.CreatedAt = time.Now().UTC()
	}

	skillsJSON, err := json.Marshal(crew.Skills)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal crew skills")
	}
	equipJSON, err := json.Marshal(crew.Equipment)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal crew equipment")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO crews
		 (id, business_id, name, skills, equipment, home_latitude, home_longitude,
		  service_radius_miles, daily_capacity_minutes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		crew.ID, crew.BusinessID, crew.Name, skillsJSON, equipJSON,
		crew.HomeLatitude, crew.HomeLongitude, crew.ServiceRadiusMiles,
		crew.DailyCapacityMinutes, crew.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert crew")
}

func (s *PostgresStore) GetCrews(ctx context.Context, businessID string) ([]model.Crew, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, business_id, name, skills, equipment, home_latitude, home_longitude,
		        service_radius_miles, daily_capacity_minutes, created_at
		 FROM crews WHERE business_id = $1 ORDER BY id`,
		businessID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get crews")
	}
	defer rows.Close()

	var crews []model.Crew
	for rows.Next() {
		var c model.Crew
		var skillsJSON, equipJSON []byte
		if err := rows.Scan(&c.ID, &c.BusinessID, &c.Name, &skillsJSON, &equipJSON,
			&c.HomeLatitude, &c.HomeLongitude, &c.ServiceRadiusMiles,
			&c.DailyCapacityMinutes, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan crew")
		}
		if err := json.Unmarshal(skillsJSON, &c.Skills); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal crew skills")
		}
		if err := json.Unmarshal(equipJSON, &c.Equipment); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal crew equipment")
		}
		crews = append(crews, c)
	}
	return crews, eris.Wrap(rows.Err(), "postgres: get crews iterate")
}

func (s *PostgresStore) CreateCrewMember(ctx context.Context, member *model.CrewMember) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO crew_members (id, crew_id, name, active) VALUES ($1, $2, $3, $4)`,
		member.ID, member.CrewID, member.Name, member.Active,
	)
	return eris.Wrap(err, "postgres: insert crew member")
}

func (s *PostgresStore) CountActiveCrewMembers(ctx context.Context, crewID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM crew_members WHERE crew_id = $1 AND active`,
		crewID,
	).Scan(&count)
	return count, eris.Wrapf(err, "postgres: count crew members %s", crewID)
}

func (s *PostgresStore) CreateScheduleItem(ctx context.Context, item *model.ScheduleItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO schedule_items (id, business_id, crew_id, start_at, end_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		item.ID, item.BusinessID, item.CrewID, item.StartAt, item.EndAt,
	)
	return eris.Wrap(err, "postgres: insert schedule item")
}

func (s *PostgresStore) ListScheduleItems(ctx context.Context, businessID, crewID string, date time.Time) ([]model.ScheduleItem, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	rows, err := s.pool.Query(ctx,
		`SELECT id, business_id, crew_id, start_at, end_at FROM schedule_items
		 WHERE business_id = $1 AND crew_id = $2 AND start_at >= $3 AND start_at < $4
		 ORDER BY start_at`,
		businessID, crewID, dayStart, dayEnd,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list schedule items")
	}
	defer rows.Close()

	var items []model.ScheduleItem
	for rows.Next() {
		var it model.ScheduleItem
		if err := rows.Scan(&it.ID, &it.BusinessID, &it.CrewID, &it.StartAt, &it.EndAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan schedule item")
		}
		items = append(items, it)
	}
	return items, eris.Wrap(rows.Err(), "postgres: list schedule items iterate")
}

const insertSimulationSQL = `INSERT INTO assignment_simulations
	 (id, business_id, job_request_id, crew_id, proposed_date, insertion_type,
	  travel_minutes_delta, travel_source, load_delta_minutes, margin_score,
	  risk_score, total_score, explanation, created_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

func (s *PostgresStore) CreateSimulation(ctx context.Context, sim *model.AssignmentSimulation) error {
	if sim.ID == "" {
		sim.ID = uuid.New().String()
	}
	if sim.CreatedAt.IsZero() {
		sim.CreatedAt = time.Now().UTC()
	}

	explJSON, err := json.Marshal(sim.Explanation)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal explanation")
	}

	_, err = s.pool.Exec(ctx, insertSimulationSQL,
		sim.ID, sim.BusinessID, sim.JobRequestID, sim.CrewID, sim.ProposedDate,
		string(sim.InsertionType), sim.TravelMinutesDelta, string(sim.TravelSource),
		sim.LoadDeltaMinutes, sim.MarginScore, sim.RiskScore, sim.TotalScore,
		explJSON, sim.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert simulation")
}

func (s *PostgresStore) DeleteSimulationsForJobRequest(ctx context.Context, jobRequestID string) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM assignment_simulations WHERE job_request_id = $1`, jobRequestID)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete simulations")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) DeleteDecisionsForJobRequest(ctx context.Context, jobRequestID string) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM assignment_decisions WHERE job_request_id = $1`, jobRequestID)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete decisions")
	}
	return int(tag.RowsAffected()), nil
}

// ReplaceSimulations supersedes any prior run for the job request in one
// transaction. Decisions go first because they reference simulation rows.
// The job moves to "simulated" only when at least one row is persisted; an
// empty run still clears prior rows but leaves the status alone.
func (s *PostgresStore) ReplaceSimulations(ctx context.Context, jobRequestID string, sims []model.AssignmentSimulation) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin replace simulations")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`DELETE FROM assignment_decisions WHERE job_request_id = $1`, jobRequestID); err != nil {
		return eris.Wrap(err, "postgres: delete decisions")
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM assignment_simulations WHERE job_request_id = $1`, jobRequestID); err != nil {
		return eris.Wrap(err, "postgres: delete simulations")
	}

	now := time.Now().UTC()
	for i := range sims {
		sim := &sims[i]
		if sim.ID == "" {
			sim.ID = uuid.New().String()
		}
		if sim.CreatedAt.IsZero() {
			sim.CreatedAt = now
		}
		explJSON, err := json.Marshal(sim.Explanation)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal explanation")
		}
		if _, err := tx.Exec(ctx, insertSimulationSQL,
			sim.ID, sim.BusinessID, sim.JobRequestID, sim.CrewID, sim.ProposedDate,
			string(sim.InsertionType), sim.TravelMinutesDelta, string(sim.TravelSource),
			sim.LoadDeltaMinutes, sim.MarginScore, sim.RiskScore, sim.TotalScore,
			explJSON, sim.CreatedAt,
		); err != nil {
			return eris.Wrap(err, "postgres: insert simulation")
		}
	}

	if len(sims) > 0 {
		tag, err := tx.Exec(ctx,
			`UPDATE job_requests SET status = $1, updated_at = $2 WHERE id = $3`,
			string(model.JobStatusSimulated), now, jobRequestID,
		)
		if err != nil {
			return eris.Wrap(err, "postgres: update job request status")
		}
		if tag.RowsAffected() == 0 {
			return eris.Wrapf(ErrNotFound, "postgres: job request %s", jobRequestID)
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit replace simulations")
}

const simulationColumns = `id, business_id, job_request_id, crew_id, proposed_date, insertion_type,
	travel_minutes_delta, travel_source, load_delta_minutes, margin_score,
	risk_score, total_score, explanation, created_at`

func (s *PostgresStore) ListSimulationsForJobRequest(ctx context.Context, jobRequestID string) ([]model.AssignmentSimulation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+simulationColumns+` FROM assignment_simulations
		 WHERE job_request_id = $1
		 ORDER BY total_score DESC, crew_id ASC, proposed_date ASC`,
		jobRequestID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list simulations")
	}
	defer rows.Close()

	var sims []model.AssignmentSimulation
	for rows.Next() {
		var sim model.AssignmentSimulation
		var explJSON []byte
		if err := rows.Scan(&sim.ID, &sim.BusinessID, &sim.JobRequestID, &sim.CrewID,
			&sim.ProposedDate, &sim.InsertionType, &sim.TravelMinutesDelta, &sim.TravelSource,
			&sim.LoadDeltaMinutes, &sim.MarginScore, &sim.RiskScore, &sim.TotalScore,
			&explJSON, &sim.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan simulation")
		}
		if err := json.Unmarshal(explJSON, &sim.Explanation); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal explanation")
		}
		sims = append(sims, sim)
	}
	return sims, eris.Wrap(rows.Err(), "postgres: list simulations iterate")
}

func (s *PostgresStore) CountJobRequestsByStatus(ctx context.Context) (map[model.JobStatus]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM job_requests GROUP BY status`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: count job requests")
	}
	defer rows.Close()

	counts := make(map[model.JobStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan status count")
		}
		counts[model.JobStatus(status)] = count
	}
	return counts, eris.Wrap(rows.Err(), "postgres: count job requests iterate")
}

func (s *PostgresStore) CountSimulations(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM assignment_simulations`).Scan(&count)
	return count, eris.Wrap(err, "postgres: count simulations")
}

func (s *PostgresStore) CountCrews(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM crews`).Scan(&count)
	return count, eris.Wrap(err, "postgres: count crews")
}
