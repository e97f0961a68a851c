package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	searchLimit int
	searchFrom  string
	searchTo    string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Semantic search over indexed recordings",
	Long: `Search indexed recordings by meaning, ranked by cosine similarity.

Date filters restrict results to recordings whose timestamp falls in the
given range; recordings without a timestamp are excluded once any bound
is set.

Examples:
  recordroute search "budget discussion"
  recordroute search "quarterly review" --limit 3
  recordroute search "standup" --from 2025-06-01 --to 2025-06-30`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "max results")
	searchCmd.Flags().StringVar(&searchFrom, "from", "", "earliest date (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchTo, "to", "", "latest date (YYYY-MM-DD)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]
	ctx := context.Background()

	start, err := parseDateFlag(searchFrom)
	if err != nil {
		return fmt.Errorf("parse --from: %w", err)
	}
	end, err := parseDateFlag(searchTo)
	if err != nil {
		return fmt.Errorf("parse --to: %w", err)
	}

	results, err := vectors.SearchWithFilters(ctx, query, searchLimit, start, end)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(results))
	for i, result := range results {
		fmt.Printf("%d. %s (score %.3f)\n", i+1, result.Metadata.Filename, result.Score)
		if result.Metadata.OneLineSummary != nil && *result.Metadata.OneLineSummary != "" {
			fmt.Printf("   %s\n", *result.Metadata.OneLineSummary)
		}
		if result.Metadata.Timestamp != nil {
			fmt.Printf("   Recorded: %s\n", result.Metadata.Timestamp.Format("2006-01-02 15:04"))
		}
		if verbose {
			fmt.Printf("   Doc: %s\n", result.DocID)
		}
		fmt.Println()
	}

	return nil
}

func parseDateFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
