package model

import "time"

// InsertionType describes how a proposed assignment lands on the crew's
// day: onto a completely free day, or between existing schedule items.
type InsertionType string

const (
	InsertionOpenDay InsertionType = "open_day"
	InsertionFillIn  InsertionType = "fill_in"
)

// TravelSource tags where a travel-minutes figure came from.
type TravelSource string

const (
	TravelSourceAPI       TravelSource = "api"
	TravelSourceCache     TravelSource = "cache"
	TravelSourceHaversine TravelSource = "haversine"
	TravelSourceFallback  TravelSource = "fallback"
)

// Explanation is the structured human-readable rationale attached to a
// persisted simulation.
type Explanation struct {
	CrewRationale []string `json:"crew_rationale"`
	DateRationale []string `json:"date_rationale"`
	RiskFlags     []string `json:"risk_flags,omitempty"`
}

// AssignmentSimulation is one persisted candidate row. Every run fully
// replaces the prior run's rows for its job request.
type AssignmentSimulation struct {
	ID                 string        `json:"id"`
	BusinessID         string        `json:"business_id"`
	JobRequestID       string        `json:"job_request_id"`
	CrewID             string        `json:"crew_id"`
	ProposedDate       time.Time     `json:"proposed_date"`
	InsertionType      InsertionType `json:"insertion_type"`
	TravelMinutesDelta float64       `json:"travel_minutes_delta"`
	TravelSource       TravelSource  `json:"travel_source"`
	LoadDeltaMinutes   float64       `json:"load_delta_minutes"`
	MarginScore        float64       `json:"margin_score"`
	RiskScore          float64       `json:"risk_score"`
	TotalScore         float64       `json:"total_score"`
	Explanation        Explanation   `json:"explanation"`
	CreatedAt          time.Time     `json:"created_at"`
}

// AssignmentDecision references a simulation chosen by the approval
// workflow. The engine never creates decisions; it only deletes them when
// superseding a run, before deleting the simulations they reference.
type AssignmentDecision struct {
	ID           string    `json:"id"`
	BusinessID   string    `json:"business_id"`
	JobRequestID string    `json:"job_request_id"`
	SimulationID string    `json:"simulation_id"`
	DecidedBy    string    `json:"decided_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
