package cmd

import (
	"github.com/huangsam/rideintegrity/core"
	"github.com/huangsam/rideintegrity/internal/contract"
	"github.com/huangsam/rideintegrity/internal/runstore"
	"github.com/spf13/cobra"
)

// runCmd executes the whole pipeline end to end.
var runCmd = &cobra.Command{
	Use:   "run [data.csv]",
	Short: "Run the full pipeline: preprocess, train, save the model and score platforms.",
	Long: `Run the fixed integrity pipeline on one table.

Steps:
- Load the CSV (default data/kenya_rideshare_data.csv)
- Impute missing values and one-hot encode categorical columns
- Derive the target from the integrity score when the table has none
- Train and evaluate the regression model, then save it to --model-path
- Score every platform and chart the scores

The training report is printed as text; the platform scores follow --output.

Examples:
  # Run on the bundled dataset
  rideintegrity run

  # Run on another table and save the chart as an image
  rideintegrity run survey.csv --chart-file charts/scores.png

  # Track the run in a local SQLite store
  rideintegrity run --store-backend sqlite`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRun(rootCtx, cfg, runstore.Manager); err != nil {
			contract.LogFatal("Cannot run the integrity pipeline", err)
		}
	},
}
