package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/dispatch-cli/internal/store"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a YAML fixture into the configured store",
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

		fixture, err := store.LoadFixture(seedFile)
		if err != nil {
			return eris.Wrap(err, "seed")
		}
		if err := store.Seed(ctx, st, fixture); err != nil {
			return eris.Wrap(err, "seed")
		}

		fmt.Printf("Seeded %d crews, %d members, %d job requests, %d schedule items\n",
			len(fixture.Crews), len(fixture.CrewMembers),
			len(fixture.JobRequests), len(fixture.ScheduleItems))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "fixture file path (required)")
	_ = seedCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(seedCmd)
}
