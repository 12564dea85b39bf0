package store

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/dispatch-cli/internal/model"
)

// Fixture is the YAML shape consumed by Seed. Used by the seed command and
// by tests to load a known world into a fresh store.
type Fixture struct {
	JobRequests   []model.JobRequest   `yaml:"job_requests"`
	Crews         []model.Crew         `yaml:"crews"`
	CrewMembers   []model.CrewMember   `yaml:"crew_members"`
	ScheduleItems []model.ScheduleItem `yaml:"schedule_items"`
}

// LoadFixture parses a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "store: read fixture %s", path)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "store: parse fixture %s", path)
	}
	return &f, nil
}

// Seed writes a fixture into the store. Crews go first so member and
// schedule foreign keys resolve.
func Seed(ctx context.Context, s Store, f *Fixture) error {
	for i := range f.Crews {
		if err := s.CreateCrew(ctx, &f.Crews[i]); err != nil {
			return eris.Wrapf(err, "store: seed crew %s", f.Crews[i].ID)
		}
	}
	for i := range f.CrewMembers {
		if err := s.CreateCrewMember(ctx, &f.CrewMembers[i]); err != nil {
			return eris.Wrapf(err, "store: seed crew member %s", f.CrewMembers[i].ID)
		}
	}
	for i := range f.JobRequests {
		if err := s.CreateJobRequest(ctx, &f.JobRequests[i]); err != nil {
			return eris.Wrapf(err, "store: seed job request %s", f.JobRequests[i].ID)
		}
	}
	for i := range f.ScheduleItems {
		if err := s.CreateScheduleItem(ctx, &f.ScheduleItems[i]); err != nil {
			return eris.Wrapf(err, "store: seed schedule item %s", f.ScheduleItems[i].ID)
		}
	}

	zap.L().Info("store: fixture seeded",
		zap.Int("crews", len(f.Crews)),
		zap.Int("crew_members", len(f.CrewMembers)),
		zap.Int("job_requests", len(f.JobRequests)),
		zap.Int("schedule_items", len(f.ScheduleItems)),
	)
	return nil
}
