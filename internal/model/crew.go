package model

import "time"

// DefaultDailyCapacityMinutes is the working capacity assumed for crews
// that don't configure their own.
const DefaultDailyCapacityMinutes = 480

// Crew is a field crew belonging to a business. Read-only to the engine.
type Crew struct {
	ID                   string    `json:"id" yaml:"id"`
	BusinessID           string    `json:"business_id" yaml:"business_id"`
	Name                 string    `json:"name" yaml:"name"`
	Skills               []string  `json:"skills,omitempty" yaml:"skills,omitempty"`
	Equipment            []string  `json:"equipment,omitempty" yaml:"equipment,omitempty"`
	HomeLatitude         *float64  `json:"home_latitude,omitempty" yaml:"home_latitude,omitempty"`
	HomeLongitude        *float64  `json:"home_longitude,omitempty" yaml:"home_longitude,omitempty"`
	ServiceRadiusMiles   float64   `json:"service_radius_miles,omitempty" yaml:"service_radius_miles,omitempty"`
	DailyCapacityMinutes int       `json:"daily_capacity_minutes,omitempty" yaml:"daily_capacity_minutes,omitempty"`
	CreatedAt            time.Time `json:"created_at" yaml:"created_at,omitempty"`
}

// DailyCapacity returns the crew's daily capacity in minutes, applying the
// default when unset.
func (c Crew) DailyCapacity() int {
	if c.DailyCapacityMinutes > 0 {
		return c.DailyCapacityMinutes
	}
	return DefaultDailyCapacityMinutes
}

// HasHomeBase reports whether the crew has home coordinates on file.
func (c Crew) HasHomeBase() bool {
	return c.HomeLatitude != nil && c.HomeLongitude != nil
}

// CrewMember is a membership record. The engine only counts active members.
type CrewMember struct {
	ID     string `json:"id" yaml:"id"`
	CrewID string `json:"crew_id" yaml:"crew_id"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Active bool   `json:"active" yaml:"active"`
}

// ScheduleItem is a committed block of work on a crew's calendar. The
// engine reads these to compute remaining daily capacity.
type ScheduleItem struct {
	ID         string    `json:"id" yaml:"id"`
	BusinessID string    `json:"business_id" yaml:"business_id"`
	CrewID     string    `json:"crew_id" yaml:"crew_id"`
	StartAt    time.Time `json:"start_at" yaml:"start_at"`
	EndAt      time.Time `json:"end_at" yaml:"end_at"`
}

// DurationMinutes returns the item's length in whole minutes, never
// negative.
func (s ScheduleItem) DurationMinutes() int {
	d := s.EndAt.Sub(s.StartAt)
	if d <= 0 {
		return 0
	}
	return int(d.Minutes())
}
