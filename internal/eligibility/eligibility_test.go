package eligibility

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dispatch-cli/internal/model"
	"github.com/sells-group/dispatch-cli/internal/store"
)

type fakeStore struct {
	job          *model.JobRequest
	jobErr       error
	crews        []model.Crew
	memberCounts map[string]int
	memberErr    map[string]error
	schedule     map[string][]model.ScheduleItem // keyed by crewID + date
	scheduleErr  map[string]error
}

func scheduleKey(crewID string, date time.Time) string {
	return crewID + "|" + date.Format("2006-01-02")
}

func (f *fakeStore) GetJobRequest(_ context.Context, id string) (*model.JobRequest, error) {
	if f.jobErr != nil {
		return nil, f.jobErr
	}
	if f.job == nil || f.job.ID != id {
		return nil, store.ErrNotFound
	}
	return f.job, nil
}

func (f *fakeStore) GetCrews(_ context.Context, _ string) ([]model.Crew, error) {
	return f.crews, nil
}

func (f *fakeStore) CountActiveCrewMembers(_ context.Context, crewID string) (int, error) {
	if err := f.memberErr[crewID]; err != nil {
		return 0, err
	}
	return f.memberCounts[crewID], nil
}

func (f *fakeStore) ListScheduleItems(_ context.Context, _, crewID string, date time.Time) ([]model.ScheduleItem, error) {
	key := scheduleKey(crewID, date)
	if err := f.scheduleErr[key]; err != nil {
		return nil, err
	}
	return f.schedule[key], nil
}

func ptr(f float64) *float64 { return &f }

// Monday 2026-09-07; the lookahead window starts Tuesday the 8th.
var testNow = time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func baseJob() *model.JobRequest {
	return &model.JobRequest{
		ID:               "job-1",
		BusinessID:       "biz-1",
		RequiredSkills:   []string{"Mowing", "edging"},
		CrewSizeMin:      2,
		LaborMinutesHigh: 120,
		Latitude:         ptr(30.30),
		Longitude:        ptr(-97.70),
		Status:           model.JobStatusPending,
	}
}

func baseCrew(id string) model.Crew {
	return model.Crew{
		ID:                   id,
		BusinessID:           "biz-1",
		Skills:               []string{"mowing", "edging", "mulch"},
		HomeLatitude:         ptr(30.25),
		HomeLongitude:        ptr(-97.75),
		ServiceRadiusMiles:   25,
		DailyCapacityMinutes: 480,
	}
}

func newTestResolver(f *fakeStore) *Resolver {
	return NewResolver(f, WithClock(fixedClock))
}

func TestResolve_CleanCrew(t *testing.T) {
	f := &fakeStore{
		job:          baseJob(),
		crews:        []model.Crew{baseCrew("crew-a")},
		memberCounts: map[string]int{"crew-a": 3},
	}

	got, err := newTestResolver(f).Resolve(context.Background(), "biz-1", "job-1", 7)
	require.NoError(t, err)
	require.Len(t, got, 1)

	ec := got[0]
	assert.Empty(t, ec.Flags)
	assert.Equal(t, 100, ec.SkillMatchPct)
	assert.Equal(t, 100, ec.EquipmentMatchPct)
	require.NotNil(t, ec.MemberCount)
	assert.Equal(t, 3, *ec.MemberCount)
	require.NotNil(t, ec.DistanceMiles)
	assert.Less(t, *ec.DistanceMiles, 25.0)

	// 7 business days, all fully open, none on a weekend.
	require.Len(t, ec.CapacityDays, 7)
	for _, d := range ec.CapacityDays {
		assert.Equal(t, 480, d.RemainingMinutes)
		assert.NotEqual(t, time.Saturday, d.Date.Weekday())
		assert.NotEqual(t, time.Sunday, d.Date.Weekday())
	}
	assert.Equal(t, 8, ec.CapacityDays[0].Date.Day())
}

func TestResolve_JobNotFound(t *testing.T) {
	f := &fakeStore{jobErr: store.ErrNotFound}

	_, err := newTestResolver(f).Resolve(context.Background(), "biz-1", "missing", 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestResolve_BusinessMismatchIsNotFound(t *testing.T) {
	f := &fakeStore{job: baseJob()}

	_, err := newTestResolver(f).Resolve(context.Background(), "biz-other", "job-1", 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestResolve_PartialSkillMatch(t *testing.T) {
	crew := baseCrew("crew-a")
	crew.Skills = []string{"mowing"}
	f := &fakeStore{
		job:          baseJob(),
		crews:        []model.Crew{crew},
		memberCounts: map[string]int{"crew-a": 3},
	}

	got, err := newTestResolver(f).Resolve(context.Background(), "biz-1", "job-1", 7)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, 50, got[0].SkillMatchPct)
	assert.True(t, got[0].HasFlag(FlagPartialSkillMatch))
	assert.False(t, got[0].HasCriticalFlags())
}

func TestResolve_NoRequirementsIsFullMatch(t *testing.T) {
	job := baseJob()
	job.RequiredSkills = nil
	crew := baseCrew("crew-a")
	crew.Skills = nil
	f := &fakeStore{
		job:          job,
		crews:        []model.Crew{crew},
		memberCounts: map[string]int{"crew-a": 3},
	}

	got, err := newTestResolver(f).Resolve(context.Background(), "biz-1", "job-1", 7)
	require.NoError(t, err)
	assert.Equal(t, 100, got[0].SkillMatchPct)
	assert.False(t, got[0].HasFlag(FlagPartialSkillMatch))
}

func TestResolve_OutsideServiceRadius(t *testing.T) {
	crew := baseCrew("crew-a")
	crew.ServiceRadiusMiles = 2
	f := &fakeStore{
		job:          baseJob(),
		crews:        []model.Crew{crew},
		memberCounts: map[string]int{"crew-a": 3},
	}

	got, err := newTestResolver(f).Resolve(context.Background(), "biz-1", "job-1", 7)
	require.NoError(t, err)
	assert.True(t, got[0].HasFlag(FlagOutsideServiceRadius))
	assert.True(t, got[0].HasCriticalFlags())
}

func TestResolve_MissingCoordinatesIsAdvisory(t *testing.T) {
	job := baseJob()
	job.Latitude = nil
	job.Longitude = nil
	f := &fakeStore{
		job:          job,
		crews:        []model.Crew{baseCrew("crew-a")},
		memberCounts: map[string]int{"crew-a": 3},
	}

	got, err := newTestResolver(f).Resolve(context.Background(), "biz-1", "job-1", 7)
	require.NoError(t, err)
	assert.True(t, got[0].HasFlag(FlagMissingCoordinates))
	assert.False(t, got[0].HasCriticalFlags())
	assert.Nil(t, got[0].DistanceMiles)
}

func TestResolve_InsufficientCrewSize(t *testing.T) {
	f := &fakeStore{
		job:          baseJob(),
		crews:        []model.Crew{baseCrew("crew-a")},
		memberCounts: map[string]int{"crew-a": 1},
	}

	got, err := newTestResolver(f).Resolve(context.Background(), "biz-1", "job-1", 7)
	require.NoError(t, err)
	assert.True(t, got[0].HasFlag(FlagInsufficientCrewSize))
}

func TestResolve_MemberLookupFailureSkipsSizeCheck(t *testing.T) {
	f := &fakeStore{
		job:       baseJob(),
		crews:     []model.Crew{baseCrew("crew-a")},
		memberErr: map[string]error{"crew-a": errors.New("members table offline")},
	}

	got, err := newTestResolver(f).Resolve(context.Background(), "biz-1", "job-1", 7)
	require.NoError(t, err)
	assert.Nil(t, got[0].MemberCount)
	assert.False(t, got[0].HasFlag(FlagInsufficientCrewSize))
}

func TestResolve_NoAvailableCapacity(t *testing.T) {
	crew := baseCrew("crew-a")
	f := &fakeStore{
		job:          baseJob(),
		crews:        []model.Crew{crew},
		memberCounts: map[string]int{"crew-a": 3},
		schedule:     map[string][]model.ScheduleItem{},
	}

	// Pack every business day in the window with 7.5h of work, leaving 30
	// minutes against a 120-minute job.
	for _, day := range businessDaysFrom(testNow, 7) {
		start := day.Add(8 * time.Hour)
		f.schedule[scheduleKey("crew-a", day)] = []model.ScheduleItem{
			{ID: "s", BusinessID: "biz-1", CrewID: "crew-a", StartAt: start, EndAt: start.Add(450 * time.Minute)},
		}
	}

	got, err := newTestResolver(f).Resolve(context.Background(), "biz-1", "job-1", 7)
	require.NoError(t, err)
	assert.True(t, got[0].HasFlag(FlagNoAvailableCapacity))
	for _, d := range got[0].CapacityDays {
		assert.Equal(t, 30, d.RemainingMinutes)
		assert.Equal(t, 1, d.ScheduledItems)
	}
}

func TestResolve_OverbookedDayFloorsAtZero(t *testing.T) {
	crew := baseCrew("crew-a")
	crew.DailyCapacityMinutes = 60
	f := &fakeStore{
		job:          baseJob(),
		crews:        []model.Crew{crew},
		memberCounts: map[string]int{"crew-a": 3},
		schedule:     map[string][]model.ScheduleItem{},
	}
	day := businessDaysFrom(testNow, 1)[0]
	start := day.Add(8 * time.Hour)
	f.schedule[scheduleKey("crew-a", day)] = []model.ScheduleItem{
		{StartAt: start, EndAt: start.Add(3 * time.Hour)},
	}

	got, err := newTestResolver(f).Resolve(context.Background(), "biz-1", "job-1", 7)
	require.NoError(t, err)
	assert.Equal(t, 0, got[0].CapacityDays[0].RemainingMinutes)
}

func TestResolve_Ordering(t *testing.T) {
	clean := baseCrew("crew-clean")
	partial := baseCrew("crew-partial")
	partial.Skills = []string{"mowing"}
	critical := baseCrew("crew-critical")
	critical.ServiceRadiusMiles = 1

	f := &fakeStore{
		job:   baseJob(),
		crews: []model.Crew{critical, partial, clean},
		memberCounts: map[string]int{
			"crew-clean": 3, "crew-partial": 3, "crew-critical": 3,
		},
	}

	got, err := newTestResolver(f).Resolve(context.Background(), "biz-1", "job-1", 7)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "crew-clean", got[0].Crew.ID)
	assert.Equal(t, "crew-partial", got[1].Crew.ID)
	assert.Equal(t, "crew-critical", got[2].Crew.ID)
}

func TestMatchPercent_Folding(t *testing.T) {
	assert.Equal(t, 100, MatchPercent([]string{"MOWING"}, []string{"mowing"}))
	assert.Equal(t, 100, MatchPercent(nil, nil))
	assert.Equal(t, 33, MatchPercent([]string{"a", "b", "c"}, []string{"A"}))
	assert.Equal(t, 67, MatchPercent([]string{"a", "b", "c"}, []string{"a", "B"}))
	assert.Equal(t, 0, MatchPercent([]string{"a"}, nil))
}

// businessDaysFrom mirrors the resolver's window for building fixtures.
func businessDaysFrom(from time.Time, n int) []time.Time {
	var days []time.Time
	d := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for len(days) < n {
		d = d.AddDate(0, 0, 1)
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	return days
}
