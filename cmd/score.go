package cmd

import (
	"github.com/huangsam/rideintegrity/core"
	"github.com/huangsam/rideintegrity/internal/contract"
	"github.com/huangsam/rideintegrity/internal/runstore"
	"github.com/spf13/cobra"
)

// scoreCmd scores platforms with the composite integrity formula.
var scoreCmd = &cobra.Command{
	Use:   "score [data.csv]",
	Short: "Score platforms with the weighted integrity formula.",
	Long: `Compute the integrity score of every platform row of a raw table.

The table needs the five metric columns (Honesty, Transparency, Accountability,
Ethics, Consistency, matched ignoring case). Values outside [0,100] are scored
as given and reported as a warning.

Use --metrics to score platforms without a file.

Examples:
  # Score the bundled dataset
  rideintegrity score

  # Score two ad-hoc platforms
  rideintegrity score --metrics Uber=80,70,60,75,85 --metrics Bolt=65,60,70,55,75

  # Export scores for a dashboard
  rideintegrity score --output parquet --output-file scores.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		entries, err := cmd.Flags().GetStringArray("metrics")
		if err != nil {
			contract.LogFatal("Cannot read --metrics", err)
		}
		inline, err := core.ParseInlineMetrics(entries)
		if err != nil {
			contract.LogFatal("Invalid --metrics value", err)
		}
		if err := core.ExecuteScore(rootCtx, cfg, runstore.Manager, inline); err != nil {
			contract.LogFatal("Cannot score platforms", err)
		}
	},
}
