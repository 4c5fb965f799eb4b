package cmd

import (
	"github.com/huangsam/rideintegrity/core"
	"github.com/huangsam/rideintegrity/internal/contract"
	"github.com/spf13/cobra"
)

// predictCmd predicts with the persisted model.
var predictCmd = &cobra.Command{
	Use:   "predict <value>...",
	Short: "Predict an integrity score with the saved model.",
	Long: `Load the model from --model-path and predict one feature vector.

Values must follow the model's feature order, which train prints and the
importance chart lists. The command fails when no model has been saved.

Examples:
  # Predict from five metric values (no categorical features)
  rideintegrity predict 80 70 60 75 85

  # Use a model saved elsewhere
  rideintegrity predict 80 70 60 75 85 --model-path /tmp/model.parquet`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: modelSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		values, err := core.ParseFloats(args)
		if err != nil {
			contract.LogFatal("Invalid feature value", err)
		}
		if err := core.ExecutePredict(rootCtx, cfg, values); err != nil {
			contract.LogFatal("Cannot predict", err)
		}
	},
}
