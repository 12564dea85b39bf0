package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/sells-group/dispatch-cli/internal/eligibility"
	"github.com/sells-group/dispatch-cli/internal/feasibility"
	"github.com/sells-group/dispatch-cli/internal/margin"
	"github.com/sells-group/dispatch-cli/internal/model"
	"github.com/sells-group/dispatch-cli/internal/travel"
)

type explainInput struct {
	eligible  eligibility.EligibleCrew
	day       eligibility.CapacityDay
	travel    travel.Estimate
	margin    margin.Estimate
	feas      feasibility.Result
	loadDelta float64
}

// explain builds the human-readable rationale for one candidate.
func (g *Generator) explain(in explainInput) model.Explanation {
	return model.Explanation{
		CrewRationale: crewRationale(in),
		DateRationale: g.dateRationale(in),
		RiskFlags:     riskFlags(in),
	}
}

func crewRationale(in explainInput) []string {
	var out []string

	if in.eligible.SkillMatchPct >= 100 {
		out = append(out, "full skill match")
	} else {
		out = append(out, fmt.Sprintf("skill match %d%%", in.eligible.SkillMatchPct))
	}
	if in.eligible.EquipmentMatchPct >= 100 {
		out = append(out, "has all required equipment")
	}
	if in.eligible.MemberCount != nil && *in.eligible.MemberCount >= 2 {
		out = append(out, fmt.Sprintf("crew of %d", *in.eligible.MemberCount))
	}

	switch {
	case in.travel.Minutes <= 15:
		out = append(out, fmt.Sprintf("short travel (%.0f min)", in.travel.Minutes))
	case in.travel.Minutes <= 30:
		out = append(out, fmt.Sprintf("moderate travel (%.0f min)", in.travel.Minutes))
	}

	if in.margin.MarginScore >= 80 {
		out = append(out, "high margin potential")
	}
	return out
}

func (g *Generator) dateRationale(in explainInput) []string {
	var out []string

	offset := daysBetween(g.now(), in.day.Date)
	switch {
	case offset <= 0:
		out = append(out, "same-day availability")
	case offset == 1:
		out = append(out, "next-day availability")
	case offset <= 3:
		out = append(out, "available within 3 days")
	default:
		out = append(out, fmt.Sprintf("%d days out", offset))
	}

	capacity := in.eligible.Crew.DailyCapacity()
	if capacity > 0 {
		pct := int(math.Round(float64(in.day.RemainingMinutes) / float64(capacity) * 100))
		out = append(out, fmt.Sprintf("%d%% of daily capacity free", pct))
	}
	return out
}

func riskFlags(in explainInput) []string {
	var out []string
	if in.feas.NeedsReview {
		out = append(out, RiskNeedsManualReview)
	}
	if in.travel.Minutes > longTravelMinutes {
		out = append(out, RiskLongTravel)
	}
	if float64(in.day.RemainingMinutes)-in.loadDelta < tightCapacityMinutes {
		out = append(out, RiskTightCapacity)
	}
	if in.feas.RiskScore > elevatedRiskScore {
		out = append(out, RiskElevatedRisk)
	}
	return out
}

// daysBetween counts whole calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	am := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bm := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bm.Sub(am).Hours() / 24)
}
