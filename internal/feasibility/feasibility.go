// Package feasibility scores a single crew/date pairing for risk. The
// evaluator is a pure function over its input and always returns a result;
// unknown inputs degrade to permissive defaults.
package feasibility

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sells-group/dispatch-cli/internal/eligibility"
	"github.com/sells-group/dispatch-cli/internal/model"
)

// Reason codes. Hard reasons disqualify; soft reasons request review.
const (
	CodeSkillMatchBelowThreshold     = "skill_match_below_threshold"
	CodeEquipmentMatchBelowThreshold = "equipment_match_below_threshold"
	CodeCrewSizeBelowMinimum         = "crew_size_below_minimum"
	CodeInsufficientCapacityBuffer   = "insufficient_capacity_buffer"
	CodeLowLotConfidenceRiskyService = "low_lot_confidence_risky_service"
	CodeMonthlyLargeLot              = "monthly_large_lot"
	CodeMissingCoordinates           = "missing_coordinates"
)

const (
	matchThresholdPct = 90
	capacityBuffer    = 1.15
	acreSqFt          = 43560.0
	maxRiskScore      = 100
)

// riskyServices lists service keywords whose labor estimates are unreliable
// when the lot-size figure itself is low confidence.
var riskyServices = []string{"cleanup", "mulch", "shrub_trim"}

// Reason is one triggered risk check.
type Reason struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
	Points int    `json:"points"`
	Hard   bool   `json:"hard"`
}

// String renders the reason as "code:detail" so downstream consumers can
// pattern-match on the code prefix.
func (r Reason) String() string {
	return r.Code + ":" + r.Detail
}

// Input is everything the evaluator needs for one crew/date pairing.
// MemberCount is nil when the lookup failed upstream; the crew-size check
// is then skipped. AvailableMinutes is the crew's remaining capacity on the
// target date.
type Input struct {
	Job              model.JobRequest
	Crew             model.Crew
	MemberCount      *int
	AvailableMinutes int
}

// Result is the evaluator's verdict for one crew/date pairing.
type Result struct {
	Feasible    bool     `json:"feasible"`
	NeedsReview bool     `json:"needs_review"`
	RiskScore   int      `json:"risk_score"`
	Reasons     []Reason `json:"reasons,omitempty"`
}

// ReasonStrings returns the triggered reasons rendered as code:detail.
func (r Result) ReasonStrings() []string {
	if len(r.Reasons) == 0 {
		return nil
	}
	out := make([]string, len(r.Reasons))
	for i, reason := range r.Reasons {
		out[i] = reason.String()
	}
	return out
}

// Evaluate runs every risk check against the input. Checks are independent
// and their points sum before the risk score clamps at 100.
func Evaluate(in Input) Result {
	var reasons []Reason

	if pct := eligibility.MatchPercent(in.Job.RequiredSkills, in.Crew.Skills); pct < matchThresholdPct {
		reasons = append(reasons, Reason{
			Code:   CodeSkillMatchBelowThreshold,
			Detail: fmt.Sprintf("%d%%", pct),
			Points: 30,
			Hard:   true,
		})
	}
	if pct := eligibility.MatchPercent(in.Job.RequiredEquipment, in.Crew.Equipment); pct < matchThresholdPct {
		reasons = append(reasons, Reason{
			Code:   CodeEquipmentMatchBelowThreshold,
			Detail: fmt.Sprintf("%d%%", pct),
			Points: 30,
			Hard:   true,
		})
	}

	if in.MemberCount != nil && in.Job.CrewSizeMin > 0 && *in.MemberCount < in.Job.CrewSizeMin {
		reasons = append(reasons, Reason{
			Code:   CodeCrewSizeBelowMinimum,
			Detail: fmt.Sprintf("%d<%d", *in.MemberCount, in.Job.CrewSizeMin),
			Points: 40,
			Hard:   true,
		})
	}

	needed := float64(in.Job.HighLaborOrDefault()) * capacityBuffer
	if float64(in.AvailableMinutes) < needed {
		reasons = append(reasons, Reason{
			Code:   CodeInsufficientCapacityBuffer,
			Detail: fmt.Sprintf("%dmin<%.0fmin", in.AvailableMinutes, needed),
			Points: 50,
			Hard:   true,
		})
	}

	if in.Job.LotConfidence == model.LotConfidenceLow {
		if risky := riskyServiceMatches(in.Job.RequiredSkills); len(risky) > 0 {
			reasons = append(reasons, Reason{
				Code:   CodeLowLotConfidenceRiskyService,
				Detail: strings.Join(risky, ","),
				Points: 20,
			})
		}
	}

	if in.Job.Frequency == model.FrequencyMonthly && in.Job.LotAreaSqFt > acreSqFt {
		reasons = append(reasons, Reason{
			Code:   CodeMonthlyLargeLot,
			Detail: fmt.Sprintf("%.0fsqft", in.Job.LotAreaSqFt),
			Points: 15,
		})
	}

	if !in.Job.HasCoordinates() {
		reasons = append(reasons, Reason{
			Code:   CodeMissingCoordinates,
			Detail: "job location unknown",
			Points: 25,
		})
	}

	res := Result{Feasible: true, Reasons: reasons}
	total := 0
	for _, r := range reasons {
		total += r.Points
		if r.Hard {
			res.Feasible = false
		} else {
			res.NeedsReview = true
		}
	}
	if total > maxRiskScore {
		total = maxRiskScore
	}
	res.RiskScore = total
	return res
}

// riskyServiceMatches returns the risky keywords found inside any required
// service name, substring matched, case folded.
func riskyServiceMatches(services []string) []string {
	fold := cases.Fold()

	var hits []string
	for _, keyword := range riskyServices {
		for _, svc := range services {
			if strings.Contains(fold.String(svc), keyword) {
				hits = append(hits, keyword)
				break
			}
		}
	}
	return hits
}
