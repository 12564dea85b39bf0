// Package margin estimates job economics for a proposed crew assignment.
// The estimator is deterministic: same input and rates, same estimate.
package margin

import (
	"fmt"
	"math"

	"github.com/sells-group/dispatch-cli/internal/config"
)

// Input captures the economics-relevant facts of one candidate assignment.
// TravelMinutesDelta is the one-way travel added by the job; costs assume a
// round trip.
type Input struct {
	LaborMinutesLow    int
	LaborMinutesHigh   int
	TravelMinutesDelta float64
	CrewSize           int
	LotAreaSqFt        float64
	RequiredEquipment  []string
}

// Estimate is the estimator's output. MarginScore is 0..100 where 100 means
// the revenue fully covers cost with room to spare.
type Estimate struct {
	MarginScore      float64  `json:"margin_score"`
	BurnMinutes      float64  `json:"burn_minutes"`
	EstLaborCost     float64  `json:"est_labor_cost"`
	EstEquipmentCost float64  `json:"est_equipment_cost"`
	EstTotalCost     float64  `json:"est_total_cost"`
	RevenueEstimate  float64  `json:"revenue_estimate"`
	Notes            []string `json:"notes,omitempty"`
}

// Estimator computes margin estimates from configured rates.
type Estimator struct {
	rates config.MarginConfig
}

// NewEstimator creates an Estimator with the given rates.
func NewEstimator(rates config.MarginConfig) *Estimator {
	return &Estimator{rates: rates}
}

const defaultLaborMinutes = 60

// Estimate computes the expected economics of the assignment.
func (e *Estimator) Estimate(in Input) Estimate {
	var notes []string

	laborMinutes := float64(in.LaborMinutesLow+in.LaborMinutesHigh) / 2
	if laborMinutes <= 0 {
		laborMinutes = defaultLaborMinutes
		notes = append(notes, "no labor estimate on job, assumed 60 minutes")
	}
	if in.LaborMinutesHigh > 0 && in.LaborMinutesHigh >= 2*maxInt(in.LaborMinutesLow, 1) {
		notes = append(notes, fmt.Sprintf("wide labor range (%d-%d min), estimate uncertain",
			in.LaborMinutesLow, in.LaborMinutesHigh))
	}

	crewSize := in.CrewSize
	if crewSize < 1 {
		crewSize = 1
	}

	roundTripTravel := in.TravelMinutesDelta * 2
	burn := laborMinutes + roundTripTravel

	laborCost := laborMinutes / 60 * e.rates.LaborRatePerHour * float64(crewSize)
	equipmentCost := float64(len(in.RequiredEquipment)) * e.rates.EquipmentCostPerItem
	travelCost := roundTripTravel * e.rates.TravelCostPerMinute
	totalCost := laborCost + equipmentCost + travelCost

	revenue := in.LotAreaSqFt / 1000 * e.rates.RevenuePerThousandSqFt
	if revenue < e.rates.MinimumVisitRevenue {
		revenue = e.rates.MinimumVisitRevenue
		notes = append(notes, "minimum visit revenue applied")
	}

	score := 0.0
	if revenue > 0 {
		score = (revenue - totalCost) / revenue * 100
	}
	if score < 0 {
		score = 0
		notes = append(notes, "estimated cost exceeds revenue")
	}
	if score > 100 {
		score = 100
	}

	return Estimate{
		MarginScore:      math.Round(score),
		BurnMinutes:      burn,
		EstLaborCost:     round2(laborCost),
		EstEquipmentCost: round2(equipmentCost),
		EstTotalCost:     round2(totalCost),
		RevenueEstimate:  round2(revenue),
		Notes:            notes,
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
