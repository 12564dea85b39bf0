package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/dispatch-cli/internal/monitoring"
)

var statusOutput string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a snapshot of the assignment queue",
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

		snap, err := monitoring.NewCollector(st).Collect(ctx)
		if err != nil {
			return eris.Wrap(err, "status")
		}

		if statusOutput == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}

		fmt.Println("=== Assignment Queue ===")
		fmt.Printf("Job requests:   %d\n", snap.JobsTotal)
		fmt.Printf("  pending:      %d\n", snap.JobsPending)
		fmt.Printf("  simulated:    %d\n", snap.JobsSimulated)
		fmt.Printf("  approved:     %d\n", snap.JobsApproved)
		fmt.Printf("  scheduled:    %d\n", snap.JobsScheduled)
		fmt.Printf("  cancelled:    %d\n", snap.JobsCancelled)
		fmt.Println()
		fmt.Printf("Simulations:    %d\n", snap.Simulations)
		fmt.Printf("Crews:          %d\n", snap.Crews)
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusOutput, "output", "table", "output format: table or json")
	rootCmd.AddCommand(statusCmd)
}
