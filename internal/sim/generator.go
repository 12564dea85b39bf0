// Package sim generates, scores, and ranks candidate crew assignments for
// a job request, persisting the top candidates as simulation rows. Each run
// fully supersedes the previous run for its job request.
package sim

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/dispatch-cli/internal/config"
	"github.com/sells-group/dispatch-cli/internal/eligibility"
	"github.com/sells-group/dispatch-cli/internal/feasibility"
	"github.com/sells-group/dispatch-cli/internal/geo"
	"github.com/sells-group/dispatch-cli/internal/margin"
	"github.com/sells-group/dispatch-cli/internal/metrics"
	"github.com/sells-group/dispatch-cli/internal/model"
	"github.com/sells-group/dispatch-cli/internal/travel"
)

// Risk flags attached to scored candidates.
const (
	RiskNeedsManualReview = "needs_manual_review"
	RiskLongTravel        = "long_travel"
	RiskTightCapacity     = "tight_capacity"
	RiskElevatedRisk      = "elevated_risk"
)

const (
	longTravelMinutes    = 30
	tightCapacityMinutes = 60
	elevatedRiskScore    = 30
	maxTotalScore        = 200
)

// Store is the persistence surface the generator mutates.
type Store interface {
	GetJobRequest(ctx context.Context, id string) (*model.JobRequest, error)
	ReplaceSimulations(ctx context.Context, jobRequestID string, sims []model.AssignmentSimulation) error
}

// EligibilityResolver produces the flagged crew list for a job.
type EligibilityResolver interface {
	Resolve(ctx context.Context, businessID, jobRequestID string, lookaheadDays int) ([]eligibility.EligibleCrew, error)
}

// TravelResolver produces one-way travel minutes with provenance.
type TravelResolver interface {
	Resolve(ctx context.Context, origin, dest *geo.Point) travel.Estimate
}

// MarginEstimator produces job economics for a candidate assignment.
type MarginEstimator interface {
	Estimate(in margin.Input) margin.Estimate
}

// Thresholds are the effective knobs applied to one run, echoed back in
// the result so callers can see what was actually used.
type Thresholds struct {
	DateRangeDays        int `json:"date_range_days"`
	SkillMatchMinPct     int `json:"skill_match_min_pct"`
	EquipmentMatchMinPct int `json:"equipment_match_min_pct"`
	PersistTopN          int `json:"persist_top_n"`
	ReturnTopN           int `json:"return_top_n"`
}

// Overrides are optional per-run threshold overrides. Nil fields keep the
// configured defaults.
type Overrides struct {
	DateRangeDays        *int
	SkillMatchMinPct     *int
	EquipmentMatchMinPct *int
	PersistTopN          *int
	ReturnTopN           *int
}

// Result is the outcome of one simulation run.
type Result struct {
	Simulations         []model.AssignmentSimulation `json:"simulations"`
	EligibleCrews       []eligibility.EligibleCrew   `json:"eligible_crews"`
	ThresholdsUsed      Thresholds                   `json:"thresholds_used"`
	CandidatesGenerated int                          `json:"candidates_generated"`
	CandidatesPersisted int                          `json:"candidates_persisted"`
}

// Generator orchestrates one simulation run end to end.
type Generator struct {
	store       Store
	eligibility EligibilityResolver
	travel      TravelResolver
	margin      MarginEstimator
	cfg         config.SimulationConfig
	now         func() time.Time
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// NewGenerator wires a Generator from its collaborators.
func NewGenerator(s Store, er EligibilityResolver, tr TravelResolver, me MarginEstimator, cfg config.SimulationConfig, opts ...GeneratorOption) *Generator {
	g := &Generator{
		store:       s,
		eligibility: er,
		travel:      tr,
		margin:      me,
		cfg:         cfg,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) thresholds(o Overrides) Thresholds {
	t := Thresholds{
		DateRangeDays:        g.cfg.DateRangeDays,
		SkillMatchMinPct:     g.cfg.SkillMatchMinPct,
		EquipmentMatchMinPct: g.cfg.EquipmentMatchMinPct,
		PersistTopN:          g.cfg.PersistTopN,
		ReturnTopN:           g.cfg.ReturnTopN,
	}
	if o.DateRangeDays != nil {
		t.DateRangeDays = *o.DateRangeDays
	}
	if o.SkillMatchMinPct != nil {
		t.SkillMatchMinPct = *o.SkillMatchMinPct
	}
	if o.EquipmentMatchMinPct != nil {
		t.EquipmentMatchMinPct = *o.EquipmentMatchMinPct
	}
	if o.PersistTopN != nil {
		t.PersistTopN = *o.PersistTopN
	}
	if o.ReturnTopN != nil {
		t.ReturnTopN = *o.ReturnTopN
	}

	if t.DateRangeDays <= 0 {
		t.DateRangeDays = 7
	}
	t.SkillMatchMinPct = clampPct(t.SkillMatchMinPct)
	t.EquipmentMatchMinPct = clampPct(t.EquipmentMatchMinPct)
	if t.PersistTopN <= 0 {
		t.PersistTopN = 10
	}
	if t.ReturnTopN <= 0 {
		t.ReturnTopN = 3
	}
	return t
}

func clampPct(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Run executes one simulation for the job request. Missing jobs abort
// before any mutation; an empty candidate set still supersedes prior rows.
func (g *Generator) Run(ctx context.Context, businessID, jobRequestID string, overrides Overrides) (*Result, error) {
	start := g.now()
	res, err := g.run(ctx, businessID, jobRequestID, overrides)

	switch {
	case err != nil:
		metrics.SimulationRuns.WithLabelValues("error").Inc()
	case res.CandidatesPersisted == 0:
		metrics.SimulationRuns.WithLabelValues("empty").Inc()
	default:
		metrics.SimulationRuns.WithLabelValues("ok").Inc()
	}
	if res != nil {
		metrics.SimulationCandidates.Observe(float64(res.CandidatesGenerated))
	}
	metrics.SimulationDuration.Observe(time.Since(start).Seconds())

	return res, err
}

func (g *Generator) run(ctx context.Context, businessID, jobRequestID string, overrides Overrides) (*Result, error) {
	t := g.thresholds(overrides)

	job, err := g.store.GetJobRequest(ctx, jobRequestID)
	if err != nil {
		return nil, eris.Wrapf(err, "sim: job request %s", jobRequestID)
	}

	eligible, err := g.eligibility.Resolve(ctx, businessID, jobRequestID, t.DateRangeDays)
	if err != nil {
		return nil, eris.Wrap(err, "sim: resolve eligibility")
	}

	result := &Result{
		EligibleCrews:  eligible,
		ThresholdsUsed: t,
	}

	var survivors []eligibility.EligibleCrew
	for _, ec := range eligible {
		if ec.HasCriticalFlags() {
			continue
		}
		if ec.SkillMatchPct < t.SkillMatchMinPct || ec.EquipmentMatchPct < t.EquipmentMatchMinPct {
			continue
		}
		survivors = append(survivors, ec)
	}

	candidates := g.generate(ctx, job, survivors)
	result.CandidatesGenerated = len(candidates)

	sortCandidates(candidates)

	persist := candidates
	if len(persist) > t.PersistTopN {
		persist = persist[:t.PersistTopN]
	}
	if err := g.store.ReplaceSimulations(ctx, jobRequestID, persist); err != nil {
		return result, eris.Wrap(err, "sim: persist simulations")
	}
	result.CandidatesPersisted = len(persist)

	returned := persist
	if len(returned) > t.ReturnTopN {
		returned = returned[:t.ReturnTopN]
	}
	result.Simulations = returned

	zap.L().Info("sim: run complete",
		zap.String("job_request_id", jobRequestID),
		zap.Int("eligible_crews", len(eligible)),
		zap.Int("surviving_crews", len(survivors)),
		zap.Int("candidates_generated", result.CandidatesGenerated),
		zap.Int("candidates_persisted", result.CandidatesPersisted),
	)
	return result, nil
}

// generate scores every feasible crew/day pairing. Crews are processed
// concurrently; each goroutine writes only its own slot, so the combined
// set is independent of completion order.
func (g *Generator) generate(ctx context.Context, job *model.JobRequest, survivors []eligibility.EligibleCrew) []model.AssignmentSimulation {
	concurrency := g.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	perCrew := make([][]model.AssignmentSimulation, len(survivors))

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for i, ec := range survivors {
		eg.Go(func() error {
			perCrew[i] = g.generateForCrew(gCtx, job, ec)
			return nil
		})
	}
	_ = eg.Wait()

	var all []model.AssignmentSimulation
	for _, sims := range perCrew {
		all = append(all, sims...)
	}
	return all
}

func (g *Generator) generateForCrew(ctx context.Context, job *model.JobRequest, ec eligibility.EligibleCrew) []model.AssignmentSimulation {
	crew := ec.Crew

	// Travel and margin are per-crew facts; resolve them once.
	var origin, dest *geo.Point
	if crew.HasHomeBase() {
		origin = &geo.Point{Lat: *crew.HomeLatitude, Lng: *crew.HomeLongitude}
	}
	if job.HasCoordinates() {
		dest = &geo.Point{Lat: *job.Latitude, Lng: *job.Longitude}
	}
	travelEst := g.travel.Resolve(ctx, origin, dest)

	crewSize := 0
	if ec.MemberCount != nil {
		crewSize = *ec.MemberCount
	}
	marginEst := g.margin.Estimate(margin.Input{
		LaborMinutesLow:    job.LaborMinutesLow,
		LaborMinutesHigh:   job.LaborMinutesHigh,
		TravelMinutesDelta: travelEst.Minutes,
		CrewSize:           crewSize,
		LotAreaSqFt:        job.LotAreaSqFt,
		RequiredEquipment:  job.RequiredEquipment,
	})

	highLabor := job.HighLaborOrDefault()
	loadDelta := float64(highLabor) + 2*travelEst.Minutes

	var sims []model.AssignmentSimulation
	for _, day := range ec.CapacityDays {
		if day.RemainingMinutes < highLabor {
			continue
		}

		feas := feasibility.Evaluate(feasibility.Input{
			Job:              *job,
			Crew:             crew,
			MemberCount:      ec.MemberCount,
			AvailableMinutes: day.RemainingMinutes,
		})
		if !feas.Feasible {
			continue
		}

		score := scoreCandidate(travelEst.Minutes, marginEst.MarginScore, feas.RiskScore)

		insertion := model.InsertionFillIn
		if day.ScheduledItems == 0 {
			insertion = model.InsertionOpenDay
		}

		sims = append(sims, model.AssignmentSimulation{
			BusinessID:         job.BusinessID,
			JobRequestID:       job.ID,
			CrewID:             crew.ID,
			ProposedDate:       day.Date,
			InsertionType:      insertion,
			TravelMinutesDelta: travelEst.Minutes,
			TravelSource:       travelEst.Source,
			LoadDeltaMinutes:   loadDelta,
			MarginScore:        marginEst.MarginScore,
			RiskScore:          float64(feas.RiskScore),
			TotalScore:         score,
			Explanation: g.explain(explainInput{
				eligible:  ec,
				day:       day,
				travel:    travelEst,
				margin:    marginEst,
				feas:      feas,
				loadDelta: loadDelta,
			}),
		})
	}
	return sims
}

func scoreCandidate(travelMinutes, marginScore float64, riskScore int) float64 {
	score := (100 - travelMinutes*2) + marginScore - float64(riskScore)*10
	if score < 0 {
		return 0
	}
	if score > maxTotalScore {
		return maxTotalScore
	}
	return score
}

// sortCandidates orders by total score descending, then crew ID ascending,
// then date ascending, making output deterministic under ties.
func sortCandidates(sims []model.AssignmentSimulation) {
	sort.SliceStable(sims, func(i, j int) bool {
		a, b := sims[i], sims[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		if a.CrewID != b.CrewID {
			return a.CrewID < b.CrewID
		}
		return a.ProposedDate.Before(b.ProposedDate)
	})
}
