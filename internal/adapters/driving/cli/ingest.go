package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [url...]",
	Short: "Fetch and index web articles",
	Long: `Fetches the given URLs, splits their text into passages, embeds the
passages, and rebuilds the local vector index.

Each run replaces the previous index. URLs that cannot be fetched are
skipped and reported; the run only fails if every URL fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := initServices(); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	report, err := ingestService.Ingest(cmd.Context(), args)

	if report != nil {
		for _, f := range report.Failures {
			cmd.Printf("  skipped %s: %s\n", f.URL, f.Reason)
		}
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Indexed %d passages from %d of %d URLs.\n",
		report.Passages, report.Loaded, report.Submitted)
	return nil
}
