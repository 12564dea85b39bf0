// Package model holds the domain types shared across the assignment engine.
package model

import "time"

// JobStatus represents the lifecycle state of a job request. The engine
// only moves jobs from pending to simulated; later transitions belong to
// the approval workflow.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusSimulated JobStatus = "simulated"
	JobStatusApproved  JobStatus = "approved"
	JobStatusScheduled JobStatus = "scheduled"
	JobStatusCancelled JobStatus = "cancelled"
)

// Frequency describes how often a job recurs.
type Frequency string

const (
	FrequencyOneTime  Frequency = "one_time"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// LotConfidence tags how trustworthy the lot-size figure is.
type LotConfidence string

const (
	LotConfidenceHigh   LotConfidence = "high"
	LotConfidenceMedium LotConfidence = "medium"
	LotConfidenceLow    LotConfidence = "low"
)

// JobRequest is a customer job awaiting crew assignment. Immutable during a
// simulation run except for Status, which the generator sets at the end of
// a successful run.
type JobRequest struct {
	ID                string        `json:"id" yaml:"id"`
	BusinessID        string        `json:"business_id" yaml:"business_id"`
	Title             string        `json:"title,omitempty" yaml:"title,omitempty"`
	RequiredSkills    []string      `json:"required_skills,omitempty" yaml:"required_skills,omitempty"`
	RequiredEquipment []string      `json:"required_equipment,omitempty" yaml:"required_equipment,omitempty"`
	CrewSizeMin       int           `json:"crew_size_min,omitempty" yaml:"crew_size_min,omitempty"`
	LaborMinutesLow   int           `json:"labor_minutes_low,omitempty" yaml:"labor_minutes_low,omitempty"`
	LaborMinutesHigh  int           `json:"labor_minutes_high,omitempty" yaml:"labor_minutes_high,omitempty"`
	LotAreaSqFt       float64       `json:"lot_area_sqft,omitempty" yaml:"lot_area_sqft,omitempty"`
	Latitude          *float64      `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude         *float64      `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Frequency         Frequency     `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	LotConfidence     LotConfidence `json:"lot_confidence,omitempty" yaml:"lot_confidence,omitempty"`
	Status            JobStatus     `json:"status" yaml:"status"`
	CreatedAt         time.Time     `json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt         time.Time     `json:"updated_at" yaml:"updated_at,omitempty"`
}

// HighLaborOrDefault returns the high labor estimate, falling back to 60
// minutes when the job carries none.
func (j JobRequest) HighLaborOrDefault() int {
	if j.LaborMinutesHigh > 0 {
		return j.LaborMinutesHigh
	}
	return 60
}

// HasCoordinates reports whether the job carries a usable location.
func (j JobRequest) HasCoordinates() bool {
	return j.Latitude != nil && j.Longitude != nil
}
