package runstore

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/rideintegrity/internal/contract"
	"github.com/huangsam/rideintegrity/internal/parquet"
)

// ExecuteRunsExport exports the run store to Parquet files prefixed by outputFile.
func ExecuteRunsExport(w io.Writer, store contract.RunStore, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is not enabled; set --store-backend")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run store status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total platform scores: %d\n", status.TableSizes[platformScoresTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	scores, err := store.GetAllPlatformScores()
	if err != nil {
		return fmt.Errorf("failed to retrieve platform scores: %w", err)
	}

	parquetRuns := parquet.ConvertTrainingRunRecords(runs)
	parquetScores := parquet.ConvertPlatformScoreRecords(scores)

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteTrainingRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	scoresFile := outputFile + ".platform_scores.parquet"
	if err := parquet.WritePlatformScoresParquet(parquetScores, scoresFile); err != nil {
		return fmt.Errorf("failed to write platform scores: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d platform scores to: %s\n", len(parquetScores), scoresFile)

	return nil
}
