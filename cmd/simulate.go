package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/dispatch-cli/internal/sim"
)

var (
	simulateBusiness string
	simulateJob      string
	simulateOutput   string

	simulateDateRange  int
	simulateSkillMin   int
	simulateEquipMin   int
	simulatePersistTop int
	simulateReturnTop  int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run an assignment simulation for a job request",
	Long:  "Resolves eligible crews, scores every feasible crew/day pairing, and persists the ranked candidates, superseding any prior run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := newEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		overrides := sim.Overrides{}
		if cmd.Flags().Changed("date-range-days") {
			overrides.DateRangeDays = &simulateDateRange
		}
		if cmd.Flags().Changed("skill-match-min") {
			overrides.SkillMatchMinPct = &simulateSkillMin
		}
		if cmd.Flags().Changed("equipment-match-min") {
			overrides.EquipmentMatchMinPct = &simulateEquipMin
		}
		if cmd.Flags().Changed("persist-top") {
			overrides.PersistTopN = &simulatePersistTop
		}
		if cmd.Flags().Changed("return-top") {
			overrides.ReturnTopN = &simulateReturnTop
		}

		result, err := env.generator.Run(ctx, simulateBusiness, simulateJob, overrides)
		if err != nil {
			return eris.Wrap(err, "simulate")
		}

		if simulateOutput == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		formatSimulateResult(os.Stdout, result)

		zap.L().Info("simulation complete",
			zap.String("job_request_id", simulateJob),
			zap.Int("candidates_generated", result.CandidatesGenerated),
			zap.Int("candidates_persisted", result.CandidatesPersisted),
		)
		return nil
	},
}

func formatSimulateResult(w io.Writer, result *sim.Result) {
	fmt.Fprintf(w, "Eligible crews:       %d\n", len(result.EligibleCrews))
	fmt.Fprintf(w, "Candidates generated: %d\n", result.CandidatesGenerated)
	fmt.Fprintf(w, "Candidates persisted: %d\n", result.CandidatesPersisted)
	fmt.Fprintln(w)

	if len(result.Simulations) == 0 {
		fmt.Fprintln(w, "No viable assignments found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCREW\tDATE\tSCORE\tTRAVEL\tMARGIN\tRISK\tINSERTION\tFLAGS")
	for i, s := range result.Simulations {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.0f\t%.0fm (%s)\t%.0f\t%.0f\t%s\t%s\n",
			i+1,
			s.CrewID,
			s.ProposedDate.Format("2006-01-02"),
			s.TotalScore,
			s.TravelMinutesDelta,
			s.TravelSource,
			s.MarginScore,
			s.RiskScore,
			s.InsertionType,
			strings.Join(s.Explanation.RiskFlags, ","),
		)
	}
	tw.Flush()

	fmt.Fprintln(w)
	for i, s := range result.Simulations {
		fmt.Fprintf(w, "#%d %s on %s\n", i+1, s.CrewID, s.ProposedDate.Format("2006-01-02"))
		printRationale(w, "crew", s.Explanation.CrewRationale)
		printRationale(w, "date", s.Explanation.DateRationale)
	}
}

func printRationale(w io.Writer, label string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s: %s\n", label, strings.Join(lines, "; "))
}

func init() {
	simulateCmd.Flags().StringVar(&simulateBusiness, "business", "", "business ID (required)")
	simulateCmd.Flags().StringVar(&simulateJob, "job", "", "job request ID (required)")
	simulateCmd.Flags().StringVar(&simulateOutput, "output", "table", "output format: table or json")
	simulateCmd.Flags().IntVar(&simulateDateRange, "date-range-days", 0, "business days to look ahead")
	simulateCmd.Flags().IntVar(&simulateSkillMin, "skill-match-min", 0, "minimum skill match percent")
	simulateCmd.Flags().IntVar(&simulateEquipMin, "equipment-match-min", 0, "minimum equipment match percent")
	simulateCmd.Flags().IntVar(&simulatePersistTop, "persist-top", 0, "candidates to persist")
	simulateCmd.Flags().IntVar(&simulateReturnTop, "return-top", 0, "candidates to return")
	_ = simulateCmd.MarkFlagRequired("business")
	_ = simulateCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(simulateCmd)
}
