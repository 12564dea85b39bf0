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

	"github.com/sells-group/dispatch-cli/internal/eligibility"
)

var (
	eligibilityBusiness string
	eligibilityJob      string
	eligibilityDays     int
	eligibilityOutput   string
)

var eligibilityCmd = &cobra.Command{
	Use:   "eligibility",
	Short: "List eligible crews for a job request",
	Long:  "Prints every crew in the business with its match percentages, distance, capacity window, and disqualification flags. No crew is dropped; critical flags mark the disqualified ones.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		resolver := eligibility.NewResolver(st)
		crews, err := resolver.Resolve(ctx, eligibilityBusiness, eligibilityJob, eligibilityDays)
		if err != nil {
			return eris.Wrap(err, "eligibility")
		}

		if eligibilityOutput == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(crews)
		}

		formatEligibleCrews(os.Stdout, crews)
		return nil
	},
}

func formatEligibleCrews(w io.Writer, crews []eligibility.EligibleCrew) {
	if len(crews) == 0 {
		fmt.Fprintln(w, "No crews found for this business.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREW\tSKILL%\tEQUIP%\tMEMBERS\tDISTANCE\tDAYS FREE\tFLAGS")
	for _, ec := range crews {
		members := "?"
		if ec.MemberCount != nil {
			members = fmt.Sprintf("%d", *ec.MemberCount)
		}
		distance := "unknown"
		if ec.DistanceMiles != nil {
			distance = fmt.Sprintf("%.1f mi", *ec.DistanceMiles)
		}
		flags := "-"
		if len(ec.Flags) > 0 {
			flags = strings.Join(ec.Flags, ",")
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%d\t%s\n",
			ec.Crew.ID,
			ec.SkillMatchPct,
			ec.EquipmentMatchPct,
			members,
			distance,
			len(ec.CapacityDays),
			flags,
		)
	}
	tw.Flush()
}

func init() {
	eligibilityCmd.Flags().StringVar(&eligibilityBusiness, "business", "", "business ID (required)")
	eligibilityCmd.Flags().StringVar(&eligibilityJob, "job", "", "job request ID (required)")
	eligibilityCmd.Flags().IntVar(&eligibilityDays, "days", eligibility.DefaultLookaheadDays, "business days to look ahead")
	eligibilityCmd.Flags().StringVar(&eligibilityOutput, "output", "table", "output format: table or json")
	_ = eligibilityCmd.MarkFlagRequired("business")
	_ = eligibilityCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(eligibilityCmd)
}
