// Package eligibility resolves which crews can plausibly take a job and
// when. Crews are never dropped from the result; disqualifying conditions
// surface as flags so callers can explain every exclusion.
package eligibility

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/sells-group/dispatch-cli/internal/geo"
	"github.com/sells-group/dispatch-cli/internal/model"
	"github.com/sells-group/dispatch-cli/internal/store"
)

// Eligibility flags. Critical flags disqualify a crew from simulation;
// advisory flags only lower its presentation rank.
const (
	FlagOutsideServiceRadius  = "outside_service_radius"
	FlagNoAvailableCapacity   = "no_available_capacity"
	FlagInsufficientCrewSize  = "insufficient_crew_size"
	FlagMissingCoordinates    = "missing_coordinates"
	FlagPartialSkillMatch     = "partial_skill_match"
	FlagPartialEquipmentMatch = "partial_equipment_match"
)

var criticalFlags = map[string]bool{
	FlagOutsideServiceRadius: true,
	FlagNoAvailableCapacity:  true,
	FlagInsufficientCrewSize: true,
}

// IsCriticalFlag reports whether a flag disqualifies a crew.
func IsCriticalFlag(flag string) bool {
	return criticalFlags[flag]
}

// DefaultLookaheadDays is the business-day window scanned when the caller
// does not specify one.
const DefaultLookaheadDays = 7

// Store is the narrow persistence surface the resolver reads from.
type Store interface {
	GetJobRequest(ctx context.Context, id string) (*model.JobRequest, error)
	GetCrews(ctx context.Context, businessID string) ([]model.Crew, error)
	CountActiveCrewMembers(ctx context.Context, crewID string) (int, error)
	ListScheduleItems(ctx context.Context, businessID, crewID string, date time.Time) ([]model.ScheduleItem, error)
}

// CapacityDay is one business day in the lookahead window with the crew's
// remaining working minutes after committed schedule items.
type CapacityDay struct {
	Date             time.Time `json:"date"`
	RemainingMinutes int       `json:"remaining_minutes"`
	ScheduledItems   int       `json:"scheduled_items"`
}

// EligibleCrew is one crew's eligibility assessment for a job.
type EligibleCrew struct {
	Crew              model.Crew    `json:"crew"`
	MemberCount       *int          `json:"member_count,omitempty"`
	SkillMatchPct     int           `json:"skill_match_pct"`
	EquipmentMatchPct int           `json:"equipment_match_pct"`
	DistanceMiles     *float64      `json:"distance_miles,omitempty"`
	CapacityDays      []CapacityDay `json:"capacity_days"`
	Flags             []string      `json:"flags,omitempty"`
}

// CriticalFlagCount returns how many of the crew's flags are disqualifying.
func (e EligibleCrew) CriticalFlagCount() int {
	n := 0
	for _, f := range e.Flags {
		if criticalFlags[f] {
			n++
		}
	}
	return n
}

// HasCriticalFlags reports whether the crew is disqualified from simulation.
func (e EligibleCrew) HasCriticalFlags() bool {
	return e.CriticalFlagCount() > 0
}

// HasFlag reports whether a specific flag was raised.
func (e EligibleCrew) HasFlag(flag string) bool {
	for _, f := range e.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Resolver computes flagged eligibility for every crew of a business.
type Resolver struct {
	store Store
	now   func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// NewResolver creates a Resolver over the given store.
func NewResolver(s Store, opts ...Option) *Resolver {
	r := &Resolver{store: s, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve assesses every crew of the business against the job request over
// the next lookaheadDays business days (weekends excluded, starting
// tomorrow). The result includes every crew, ordered most-promising first.
func (r *Resolver) Resolve(ctx context.Context, businessID, jobRequestID string, lookaheadDays int) ([]EligibleCrew, error) {
	if lookaheadDays <= 0 {
		lookaheadDays = DefaultLookaheadDays
	}

	job, err := r.store.GetJobRequest(ctx, jobRequestID)
	if err != nil {
		return nil, eris.Wrapf(err, "eligibility: job request %s", jobRequestID)
	}
	if businessID != "" && job.BusinessID != businessID {
		return nil, eris.Wrapf(store.ErrNotFound, "eligibility: job request %s not in business %s", jobRequestID, businessID)
	}

	crews, err := r.store.GetCrews(ctx, job.BusinessID)
	if err != nil {
		return nil, eris.Wrapf(err, "eligibility: crews for business %s", job.BusinessID)
	}

	days := geo.BusinessDays(r.now(), lookaheadDays)

	result := make([]EligibleCrew, 0, len(crews))
	for _, crew := range crews {
		result = append(result, r.assessCrew(ctx, job, crew, days))
	}

	sortEligible(result)
	return result, nil
}

func (r *Resolver) assessCrew(ctx context.Context, job *model.JobRequest, crew model.Crew, days []time.Time) EligibleCrew {
	ec := EligibleCrew{
		Crew:              crew,
		SkillMatchPct:     MatchPercent(job.RequiredSkills, crew.Skills),
		EquipmentMatchPct: MatchPercent(job.RequiredEquipment, crew.Equipment),
	}

	var flags []string
	if ec.SkillMatchPct < 100 {
		flags = append(flags, FlagPartialSkillMatch)
	}
	if ec.EquipmentMatchPct < 100 {
		flags = append(flags, FlagPartialEquipmentMatch)
	}

	// Distance and service radius.
	if job.HasCoordinates() && crew.HasHomeBase() {
		d := geo.HaversineMiles(
			geo.Point{Lat: *crew.HomeLatitude, Lng: *crew.HomeLongitude},
			geo.Point{Lat: *job.Latitude, Lng: *job.Longitude},
		)
		ec.DistanceMiles = &d
		if crew.ServiceRadiusMiles > 0 && d > crew.ServiceRadiusMiles {
			flags = append(flags, FlagOutsideServiceRadius)
		}
	} else {
		flags = append(flags, FlagMissingCoordinates)
	}

	// Crew size. A failed member lookup skips the check rather than
	// disqualifying the crew.
	count, err := r.store.CountActiveCrewMembers(ctx, crew.ID)
	if err != nil {
		zap.L().Warn("eligibility: member count failed, skipping crew-size check",
			zap.String("crew_id", crew.ID), zap.Error(err))
	} else {
		ec.MemberCount = &count
		if job.CrewSizeMin > 0 && count < job.CrewSizeMin {
			flags = append(flags, FlagInsufficientCrewSize)
		}
	}

	// Daily capacity over the window.
	ec.CapacityDays = r.capacityDays(ctx, job, crew, days)
	need := job.HighLaborOrDefault()
	hasCapacity := false
	for _, d := range ec.CapacityDays {
		if d.RemainingMinutes >= need {
			hasCapacity = true
			break
		}
	}
	if !hasCapacity {
		flags = append(flags, FlagNoAvailableCapacity)
	}

	ec.Flags = flags
	return ec
}

func (r *Resolver) capacityDays(ctx context.Context, job *model.JobRequest, crew model.Crew, days []time.Time) []CapacityDay {
	capacity := crew.DailyCapacity()
	out := make([]CapacityDay, 0, len(days))
	for _, day := range days {
		items, err := r.store.ListScheduleItems(ctx, job.BusinessID, crew.ID, day)
		if err != nil {
			// Without schedule data the day can't be trusted; leave it out.
			zap.L().Warn("eligibility: schedule lookup failed, dropping day",
				zap.String("crew_id", crew.ID),
				zap.Time("date", day),
				zap.Error(err))
			continue
		}

		committed := 0
		for _, it := range items {
			committed += it.DurationMinutes()
		}
		remaining := capacity - committed
		if remaining < 0 {
			remaining = 0
		}
		out = append(out, CapacityDay{
			Date:             day,
			RemainingMinutes: remaining,
			ScheduledItems:   len(items),
		})
	}
	return out
}

// MatchPercent returns the rounded percentage of required entries present
// in the crew's set, folding case. No requirements means a full match.
func MatchPercent(required, have []string) int {
	if len(required) == 0 {
		return 100
	}

	fold := cases.Fold()
	haveSet := make(map[string]bool, len(have))
	for _, h := range have {
		haveSet[fold.String(h)] = true
	}

	matched := 0
	for _, req := range required {
		if haveSet[fold.String(req)] {
			matched++
		}
	}
	return int(math.Round(float64(matched) / float64(len(required)) * 100))
}

// sortEligible orders crews most-promising first: fewer critical flags,
// fewer total flags, higher skill match, higher equipment match, smaller
// distance (unknown distance last), then crew ID for determinism.
func sortEligible(crews []EligibleCrew) {
	sort.SliceStable(crews, func(i, j int) bool {
		a, b := crews[i], crews[j]

		if ca, cb := a.CriticalFlagCount(), b.CriticalFlagCount(); ca != cb {
			return ca < cb
		}
		if la, lb := len(a.Flags), len(b.Flags); la != lb {
			return la < lb
		}
		if a.SkillMatchPct != b.SkillMatchPct {
			return a.SkillMatchPct > b.SkillMatchPct
		}
		if a.EquipmentMatchPct != b.EquipmentMatchPct {
			return a.EquipmentMatchPct > b.EquipmentMatchPct
		}
		switch {
		case a.DistanceMiles != nil && b.DistanceMiles != nil:
			if *a.DistanceMiles != *b.DistanceMiles {
				return *a.DistanceMiles < *b.DistanceMiles
			}
		case a.DistanceMiles != nil:
			return true
		case b.DistanceMiles != nil:
			return false
		}
		return a.Crew.ID < b.Crew.ID
	})
}
