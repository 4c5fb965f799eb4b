package cmd

import (
	"github.com/huangsam/rideintegrity/core"
	"github.com/huangsam/rideintegrity/internal/contract"
	"github.com/spf13/cobra"
)

// weightsCmd prints the active weights.
var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Show the integrity score weights and formula.",
	Long: `Print the weights used by the integrity score and the label thresholds.

Weights come from the defaults unless the config file has a weights block:

  weights:
    honesty: 0.25
    transparency: 0.25
    accountability: 0.2
    ethics: 0.2
    consistency: 0.1

Custom weights must cover all five metrics and sum to 1.0.`,
	Args:    cobra.NoArgs,
	PreRunE: modelSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteWeights(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot show weights", err)
		}
	},
}
