package cmd

import (
	"github.com/huangsam/rideintegrity/core"
	"github.com/huangsam/rideintegrity/internal/contract"
	"github.com/spf13/cobra"
)

// importanceCmd charts the feature importances of the saved model.
var importanceCmd = &cobra.Command{
	Use:   "importance",
	Short: "Chart the feature importances of the saved model.",
	Long: `Draw a horizontal bar chart of the relative importance of every feature
of the model at --model-path. Importance is |coefficient| times the feature's
standard deviation, normalised to sum to 1.

Examples:
  rideintegrity importance
  rideintegrity importance --chart-file charts/importance.svg`,
	Args:    cobra.NoArgs,
	PreRunE: modelSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteImportance(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot chart feature importance", err)
		}
	},
}
