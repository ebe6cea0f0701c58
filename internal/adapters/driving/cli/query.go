package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/webrag-cli/internal/core/domain"
)

var (
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question about the ingested articles",
	Long: `Answers a question using only the ingested articles, citing the URLs
the answer was drawn from. Run "webrag ingest" first to build an index.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of passages to retrieve (default 4)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := initServices(); err != nil {
		return err
	}
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	result, err := answerService.Answer(cmd.Context(), args[0], queryTopK)
	if err != nil {
		if errors.Is(err, domain.ErrIndexUnavailable) {
			return fmt.Errorf("no index found; run \"webrag ingest\" first: %w", err)
		}
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputAnswerJSON(cmd, result)
	}
	return outputAnswerText(cmd, result)
}

func outputAnswerJSON(cmd *cobra.Command, result *domain.AnswerResult) error {
	data, err := json.MarshalIndent(struct {
		Answer  string   `json:"answer"`
		Sources []string `json:"sources"`
	}{result.Answer, result.Sources}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, result *domain.AnswerResult) error {
	cmd.Println(result.Answer)

	if len(result.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, url := range result.Sources {
			cmd.Printf("  - %s\n", url)
		}
	}
	return nil
}
