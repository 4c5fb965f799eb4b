package cmd

import (
	"github.com/huangsam/rideintegrity/core"
	"github.com/huangsam/rideintegrity/internal/contract"
	"github.com/huangsam/rideintegrity/internal/runstore"
	"github.com/spf13/cobra"
)

// trainCmd trains and saves the regression model.
var trainCmd = &cobra.Command{
	Use:   "train [data.csv]",
	Short: "Train, evaluate and save the integrity regression model.",
	Long: `Preprocess a table, fit a ridge-regularised linear model on the training
split and report R2, MSE, RMSE and MAE for both splits.

The model is saved to --model-path and reused by predict and importance.

Examples:
  # Train on the bundled dataset
  rideintegrity train

  # Train on a labelled table with a custom target column
  rideintegrity train labelled.csv --target integrity --derive-target=false

  # Scale features and use a 70/30 split
  rideintegrity train --scale --test-size 0.3`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTrain(rootCtx, cfg, runstore.Manager); err != nil {
			contract.LogFatal("Cannot train the model", err)
		}
	},
}
