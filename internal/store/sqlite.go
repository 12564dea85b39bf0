package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/dispatch-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode. Pass ":memory:" for an ephemeral store.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS job_requests (
	id                 TEXT PRIMARY KEY,
	business_id        TEXT NOT NULL,
	title              TEXT NOT NULL DEFAULT '',
	required_skills    TEXT NOT NULL DEFAULT '[]',
	required_equipment TEXT NOT NULL DEFAULT '[]',
	crew_size_min      INTEGER NOT NULL DEFAULT 0,
	labor_minutes_low  INTEGER NOT NULL DEFAULT 0,
	labor_minutes_high INTEGER NOT NULL DEFAULT 0,
	lot_area_sqft      REAL NOT NULL DEFAULT 0,
	latitude           REAL,
	longitude          REAL,
	frequency          TEXT NOT NULL DEFAULT 'one_time',
	lot_confidence     TEXT NOT NULL DEFAULT 'high',
	status             TEXT NOT NULL DEFAULT 'pending',
	created_at         DATETIME NOT NULL,
	updated_at         DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS crews (
	id                     TEXT PRIMARY KEY,
	business_id            TEXT NOT NULL,
	name                   TEXT NOT NULL DEFAULT '',
	skills                 TEXT NOT NULL DEFAULT '[]',
	equipment              TEXT NOT NULL DEFAULT '[]',
	home_latitude          REAL,
	home_longitude         REAL,
	service_radius_miles   REAL NOT NULL DEFAULT 0,
	daily_capacity_minutes INTEGER NOT NULL DEFAULT 0,
	created_at             DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS crew_members (
	id      TEXT PRIMARY KEY,
	crew_id TEXT NOT NULL REFERENCES crews(id),
	name    TEXT NOT NULL DEFAULT '',
	active  INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS schedule_items (
	id          TEXT PRIMARY KEY,
	business_id TEXT NOT NULL,
	crew_id     TEXT NOT NULL REFERENCES crews(id),
	start_at    DATETIME NOT NULL,
	end_at      DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS assignment_simulations (
	id                   TEXT PRIMARY KEY,
	business_id          TEXT NOT NULL,
	job_request_id       TEXT NOT NULL REFERENCES job_requests(id),
	crew_id              TEXT NOT NULL REFERENCES crews(id),
	proposed_date        DATETIME NOT NULL,
	insertion_type       TEXT NOT NULL,
	travel_minutes_delta REAL NOT NULL DEFAULT 0,
	travel_source        TEXT NOT NULL DEFAULT 'fallback',
	load_delta_minutes   REAL NOT NULL DEFAULT 0,
	margin_score         REAL NOT NULL DEFAULT 0,
	risk_score           REAL NOT NULL DEFAULT 0,
	total_score          REAL NOT NULL DEFAULT 0,
	explanation          TEXT NOT NULL DEFAULT '{}',
	created_at           DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS assignment_decisions (
	id             TEXT PRIMARY KEY,
	business_id    TEXT NOT NULL,
	job_request_id TEXT NOT NULL REFERENCES job_requests(id),
	simulation_id  TEXT NOT NULL REFERENCES assignment_simulations(id),
	decided_by     TEXT NOT NULL DEFAULT '',
	created_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_job_requests_business ON job_requests(business_id);
CREATE INDEX IF NOT EXISTS idx_job_requests_status ON job_requests(status);
CREATE INDEX IF NOT EXISTS idx_crews_business ON crews(business_id);
CREATE INDEX IF NOT EXISTS idx_crew_members_crew ON crew_members(crew_id);
CREATE INDEX IF NOT EXISTS idx_schedule_items_crew_start ON schedule_items(crew_id, start_at);
CREATE INDEX IF NOT EXISTS idx_simulations_job ON assignment_simulations(job_request_id);
CREATE INDEX IF NOT EXISTS idx_decisions_job ON assignment_decisions(job_request_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateJobRequest(ctx context.Context, job *model.JobRequest) error {
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
		return eris.Wrap(err, "sqlite: marshal skills")
	}
	equipJSON, err := json.Marshal(job.RequiredEquipment)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal equipment")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO job_requests
		 (id, business_id, title, required_skills, required_equipment, crew_size_min,
		  labor_minutes_low, labor_minutes_high, lot_area_sqft, latitude, longitude,
		  frequency, lot_confidence, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.BusinessID, job.Title, string(skillsJSON), string(equipJSON), job.CrewSizeMin,
		job.LaborMinutesLow, job.LaborMinutesHigh, job.LotAreaSqFt, job.Latitude, job.Longitude,
		string(job.Frequency), string(job.LotConfidence), string(job.Status), job.CreatedAt, job.UpdatedAt,
	)
	return eris.Wrap(err, "sqlite: insert job request")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJobRequestSQLite(row rowScanner) (*model.JobRequest, error) {
	var j model.JobRequest
	var skillsJSON, equipJSON string

	err := row.Scan(&j.ID, &j.BusinessID, &j.Title, &skillsJSON, &equipJSON, &j.CrewSizeMin,
		&j.LaborMinutesLow, &j.LaborMinutesHigh, &j.LotAreaSqFt, &j.Latitude, &j.Longitude,
		&j.Frequency, &j.LotConfidence, &j.Status, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(skillsJSON), &j.RequiredSkills); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal skills")
	}
	if err := json.Unmarshal([]byte(equipJSON), &j.RequiredEquipment); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal equipment")
	}
	return &j, nil
}

func (s *SQLiteStore) GetJobRequest(ctx context.Context, id string) (*model.JobRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobRequestColumns+` FROM job_requests WHERE id = ?`, id)

	j, err := scanJobRequestSQLite(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "sqlite: job request %s", id)
		}
		return nil, eris.Wrapf(err, "sqlite: get job request %s", id)
	}
	return j, nil
}

func (s *SQLiteStore) ListJobRequests(ctx context.Context, filter JobRequestFilter) ([]model.JobRequest, error) {
	query := `SELECT ` + jobRequestColumns + ` FROM job_requests WHERE 1=1`
	var args []any

	if filter.BusinessID != "" {
		query += ` AND business_id = ?`
		args = append(args, filter.BusinessID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list job requests")
	}
	defer rows.Close()

	var jobs []model.JobRequest
	for rows.Next() {
		j, err := scanJobRequestSQLite(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan job request")
		}
		jobs = append(jobs, *j)
	}
	return jobs, eris.Wrap(rows.Err(), "sqlite: list job requests iterate")
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "sqlite: rows affected for %s %s", entity, id)
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: %s %s", entity, id)
	}
	return nil
}

func (s *SQLiteStore) UpdateJobRequestStatus(ctx context.Context, id string, status model.JobStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE job_requests SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update job request status %s", id)
	}
	return checkRowsAffected(res, "job request", id)
}

func (s *SQLiteStore) CreateCrew(ctx context.Context, crew *model.Crew) error {
	if crew.ID == "" {
		crew.ID = uuid.New().String()
	}
	if crew.CreatedAt.IsZero() {
		crew.CreatedAt = time.Now().UTC()
	}

	skillsJSON, err := json.Marshal(crew.Skills)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal crew skills")
	}
	equipJSON, err := json.Marshal(crew.Equipment)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal crew equipment")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO crews
		 (id, business_id, name, skills, equipment, home_latitude, home_longitude,
		  service_radius_miles, daily_capacity_minutes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		crew.ID, crew.BusinessID, crew.Name, string(skillsJSON), string(equipJSON),
		crew.HomeLatitude, crew.HomeLongitude, crew.ServiceRadiusMiles,
		crew.DailyCapacityMinutes, crew.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert crew")
}

func (s *SQLiteStore) GetCrews(ctx context.Context, businessID string) ([]model.Crew, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, business_id, name, skills, equipment, home_latitude, home_longitude,
		        service_radius_miles, daily_capacity_minutes, created_at
		 FROM crews WHERE business_id = ? ORDER BY id`,
		businessID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get crews")
	}
	defer rows.Close()

	var crews []model.Crew
	for rows.Next() {
		var c model.Crew
		var skillsJSON, equipJSON string
		if err := rows.Scan(&c.ID, &c.BusinessID, &c.Name, &skillsJSON, &equipJSON,
			&c.HomeLatitude, &c.HomeLongitude, &c.ServiceRadiusMiles,
			&c.DailyCapacityMinutes, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan crew")
		}
		if err := json.Unmarshal([]byte(skillsJSON), &c.Skills); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal crew skills")
		}
		if err := json.Unmarshal([]byte(equipJSON), &c.Equipment); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal crew equipment")
		}
		crews = append(crews, c)
	}
	return crews, eris.Wrap(rows.Err(), "sqlite: get crews iterate")
}

func (s *SQLiteStore) CreateCrewMember(ctx context.Context, member *model.CrewMember) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO crew_members (id, crew_id, name, active) VALUES (?, ?, ?, ?)`,
		member.ID, member.CrewID, member.Name, member.Active,
	)
	return eris.Wrap(err, "sqlite: insert crew member")
}

func (s *SQLiteStore) CountActiveCrewMembers(ctx context.Context, crewID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM crew_members WHERE crew_id = ? AND active = 1`,
		crewID,
	).Scan(&count)
	return count, eris.Wrapf(err, "sqlite: count crew members %s", crewID)
}

func (s *SQLiteStore) CreateScheduleItem(ctx context.Context, item *model.ScheduleItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO schedule_items (id, business_id, crew_id, start_at, end_at)
		 VALUES (?, ?, ?, ?, ?)`,
		item.ID, item.BusinessID, item.CrewID, item.StartAt, item.EndAt,
	)
	return eris.Wrap(err, "sqlite: insert schedule item")
}

func (s *SQLiteStore) ListScheduleItems(ctx context.Context, businessID, crewID string, date time.Time) ([]model.ScheduleItem, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, business_id, crew_id, start_at, end_at FROM schedule_items
		 WHERE business_id = ? AND crew_id = ? AND start_at >= ? AND start_at < ?
		 ORDER BY start_at`,
		businessID, crewID, dayStart, dayEnd,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list schedule items")
	}
	defer rows.Close()

	var items []model.ScheduleItem
	for rows.Next() {
		var it model.ScheduleItem
		if err := rows.Scan(&it.ID, &it.BusinessID, &it.CrewID, &it.StartAt, &it.EndAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan schedule item")
		}
		items = append(items, it)
	}
	return items, eris.Wrap(rows.Err(), "sqlite: list schedule items iterate")
}

const insertSimulationSQLite = `INSERT INTO assignment_simulations
	 (id, business_id, job_request_id, crew_id, proposed_date, insertion_type,
	  travel_minutes_delta, travel_source, load_delta_minutes, margin_score,
	  risk_score, total_score, explanation, created_at)
	 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func simulationArgs(sim *model.AssignmentSimulation, explJSON []byte) []any {
	return []any{
		sim.ID, sim.BusinessID, sim.JobRequestID, sim.CrewID, sim.ProposedDate,
		string(sim.InsertionType), sim.TravelMinutesDelta, string(sim.TravelSource),
		sim.LoadDeltaMinutes, sim.MarginScore, sim.RiskScore, sim.TotalScore,
		string(explJSON), sim.CreatedAt,
	}
}

func (s *SQLiteStore) CreateSimulation(ctx context.Context, sim *model.AssignmentSimulation) error {
	if sim.ID == "" {
		sim.ID = uuid.New().String()
	}
	if sim.CreatedAt.IsZero() {
		sim.CreatedAt = time.Now().UTC()
	}

	explJSON, err := json.Marshal(sim.Explanation)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal explanation")
	}

	_, err = s.db.ExecContext(ctx, insertSimulationSQLite, simulationArgs(sim, explJSON)...)
	return eris.Wrap(err, "sqlite: insert simulation")
}

func (s *SQLiteStore) DeleteSimulationsForJobRequest(ctx context.Context, jobRequestID string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM assignment_simulations WHERE job_request_id = ?`, jobRequestID)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete simulations")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: delete simulations rows affected")
}

func (s *SQLiteStore) DeleteDecisionsForJobRequest(ctx context.Context, jobRequestID string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM assignment_decisions WHERE job_request_id = ?`, jobRequestID)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete decisions")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: delete decisions rows affected")
}

// ReplaceSimulations mirrors the Postgres implementation: decisions first,
// then simulations, then the new rows, all in one transaction.
func (s *SQLiteStore) ReplaceSimulations(ctx context.Context, jobRequestID string, sims []model.AssignmentSimulation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin replace simulations")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM assignment_decisions WHERE job_request_id = ?`, jobRequestID); err != nil {
		return eris.Wrap(err, "sqlite: delete decisions")
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM assignment_simulations WHERE job_request_id = ?`, jobRequestID); err != nil {
		return eris.Wrap(err, "sqlite: delete simulations")
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
			return eris.Wrap(err, "sqlite: marshal explanation")
		}
		if _, err := tx.ExecContext(ctx, insertSimulationSQLite, simulationArgs(sim, explJSON)...); err != nil {
			return eris.Wrap(err, "sqlite: insert simulation")
		}
	}

	if len(sims) > 0 {
		res, err := tx.ExecContext(ctx,
			`UPDATE job_requests SET status = ?, updated_at = ? WHERE id = ?`,
			string(model.JobStatusSimulated), now, jobRequestID,
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: update job request status")
		}
		if err := checkRowsAffected(res, "job request", jobRequestID); err != nil {
			return err
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit replace simulations")
}

func (s *SQLiteStore) ListSimulationsForJobRequest(ctx context.Context, jobRequestID string) ([]model.AssignmentSimulation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+simulationColumns+` FROM assignment_simulations
		 WHERE job_request_id = ?
		 ORDER BY total_score DESC, crew_id ASC, proposed_date ASC`,
		jobRequestID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list simulations")
	}
	defer rows.Close()

	var sims []model.AssignmentSimulation
	for rows.Next() {
		var sim model.AssignmentSimulation
		var explJSON string
		if err := rows.Scan(&sim.ID, &sim.BusinessID, &sim.JobRequestID, &sim.CrewID,
			&sim.ProposedDate, &sim.InsertionType, &sim.TravelMinutesDelta, &sim.TravelSource,
			&sim.LoadDeltaMinutes, &sim.MarginScore, &sim.RiskScore, &sim.TotalScore,
			&explJSON, &sim.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan simulation")
		}
		if err := json.Unmarshal([]byte(explJSON), &sim.Explanation); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal explanation")
		}
		sims = append(sims, sim)
	}
	return sims, eris.Wrap(rows.Err(), "sqlite: list simulations iterate")
}

func (s *SQLiteStore) CountJobRequestsByStatus(ctx context.Context) (map[model.JobStatus]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM job_requests GROUP BY status`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: count job requests")
	}
	defer rows.Close()

	counts := make(map[model.JobStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan status count")
		}
		counts[model.JobStatus(status)] = count
	}
	return counts, eris.Wrap(rows.Err(), "sqlite: count job requests iterate")
}

func (s *SQLiteStore) CountSimulations(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assignment_simulations`).Scan(&count)
	return count, eris.Wrap(err, "sqlite: count simulations")
}

func (s *SQLiteStore) CountCrews(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM crews`).Scan(&count)
	return count, eris.Wrap(err, "sqlite: count crews")
}

var _ Store = (*SQLiteStore)(nil)
var _ Store = (*PostgresStore)(nil)
