package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/dispatch-cli/internal/geo"
	"github.com/sells-group/dispatch-cli/internal/travel"
)

var (
	travelFromLat float64
	travelFromLng float64
	travelToLat   float64
	travelToLng   float64
)

var travelCmd = &cobra.Command{
	Use:   "travel",
	Short: "Resolve travel minutes between two coordinates",
	Long:  "Debug command that runs the travel cascade (routing API, cache, haversine, fallback) for one origin/destination pair and reports the figure and its source.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cache := travel.NewCache(cfg.Travel.Cache)
		opts := []travel.ResolverOption{
			travel.WithAPI(travel.NewAPIClient(cfg.Travel)),
			travel.WithFallbackMinutes(cfg.Travel.FallbackMinutes),
		}
		if cache != nil {
			defer cache.Close() //nolint:errcheck
			opts = append(opts, travel.WithCache(cache))
		}
		resolver := travel.NewResolver(opts...)

		origin := &geo.Point{Lat: travelFromLat, Lng: travelFromLng}
		dest := &geo.Point{Lat: travelToLat, Lng: travelToLng}

		est := resolver.Resolve(ctx, origin, dest)
		miles := geo.HaversineMiles(*origin, *dest)

		fmt.Printf("Travel:   %.1f minutes one-way\n", est.Minutes)
		fmt.Printf("Source:   %s\n", est.Source)
		fmt.Printf("Distance: %.1f miles (haversine)\n", miles)
		return nil
	},
}

func init() {
	travelCmd.Flags().Float64Var(&travelFromLat, "from-lat", 0, "origin latitude (required)")
	travelCmd.Flags().Float64Var(&travelFromLng, "from-lng", 0, "origin longitude (required)")
	travelCmd.Flags().Float64Var(&travelToLat, "to-lat", 0, "destination latitude (required)")
	travelCmd.Flags().Float64Var(&travelToLng, "to-lng", 0, "destination longitude (required)")
	_ = travelCmd.MarkFlagRequired("from-lat")
	_ = travelCmd.MarkFlagRequired("from-lng")
	_ = travelCmd.MarkFlagRequired("to-lat")
	_ = travelCmd.MarkFlagRequired("to-lng")
	rootCmd.AddCommand(travelCmd)
}
