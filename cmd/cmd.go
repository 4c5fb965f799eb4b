// Package cmd defines the command-line interface for rideintegrity.
package cmd

import (
	"github.com/huangsam/rideintegrity/internal/contract"
	"github.com/huangsam/rideintegrity/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(importanceCmd)
	rootCmd.AddCommand(weightsCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("target", schema.DefaultTargetColumn, "Name of the target column to train on")
	rootCmd.PersistentFlags().String("id-columns", schema.DefaultIDColumn, "Comma-separated identifier columns excluded from features")
	rootCmd.PersistentFlags().Float64("test-size", schema.DefaultTestSize, "Fraction of rows held out for evaluation, in (0,1)")
	rootCmd.PersistentFlags().Int64("seed", schema.DefaultSeed, "Seed for the train/test split")
	rootCmd.PersistentFlags().Float64("ridge", schema.DefaultRidge, "Ridge penalty that keeps rank-deficient tables solvable")
	rootCmd.PersistentFlags().Bool("scale", false, "Min-max scale numeric features to [0,1] before training")
	rootCmd.PersistentFlags().Bool("derive-target", true, "Derive a missing target column from the integrity score")
	rootCmd.PersistentFlags().String("model-path", schema.DefaultModelPath, "Where the trained model is saved and loaded")
	rootCmd.PersistentFlags().String("delimiter", "comma", "Input field delimiter: comma, tab or a single character")
	rootCmd.PersistentFlags().StringP("output", "o", string(schema.TextOut), "Output format: text or csv or json or yaml or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("chart-file", "", "Optional chart image path (.png, .svg or .pdf)")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format: console or json")
	rootCmd.PersistentFlags().String("store-backend", string(schema.NoneBackend), "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Values hold commas, so scoreCmd reads --metrics from the flag set instead of Viper
	scoreCmd.Flags().StringArray("metrics", nil, "Score an ad-hoc platform: name=honesty,transparency,accountability,ethics,consistency (repeatable)")

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
