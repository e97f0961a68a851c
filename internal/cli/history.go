package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/recordroute/internal/errs"
)

var resetKeepTranscript bool

var historyCmd = &cobra.Command{
	Use:   "history [record-id]",
	Short: "List or inspect processed recordings",
	Long: `List all active history records or inspect a specific one by id.

Examples:
  recordroute history             # List all records
  recordroute history 4f9d...     # Show details for one record`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <record-id>...",
	Short: "Soft-delete history records",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := records.Delete(args); err != nil {
			return fmt.Errorf("delete records: %w", err)
		}
		fmt.Printf("Deleted %d record(s)\n", len(args))
		return nil
	},
}

var historyResetCmd = &cobra.Command{
	Use:   "reset <record-id>",
	Short: "Clear processing state so a record can be re-run",
	Long: `Clear a record's processing flags and delete its artifacts.

With --keep-transcript only the summary and embedding are cleared, for
re-summarizing with a different model or prompt.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		if _, ok := records.Get(id); !ok {
			return errs.NotFound("record %s", id)
		}

		var err error
		if resetKeepTranscript {
			err = executor.ResetSummaryEmbedding(id)
		} else {
			err = executor.ResetRecord(id)
		}
		if err != nil {
			return fmt.Errorf("reset %s: %w", id, err)
		}

		fmt.Printf("Reset %s\n", id)
		return nil
	},
}

func init() {
	historyResetCmd.Flags().BoolVar(&resetKeepTranscript, "keep-transcript", false, "keep the transcript, clear only summary and embedding")
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyResetCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return showRecord(args[0])
	}
	return listRecords()
}

func listRecords() error {
	active := records.ActiveRecords()
	if len(active) == 0 {
		fmt.Println("No records found")
		return nil
	}

	fmt.Printf("%-38s %-30s %-5s %-5s %-5s %s\n", "ID", "FILENAME", "STT", "SUM", "EMB", "ADDED")
	fmt.Println("--------------------------------------------------------------------------------------------")

	for _, record := range active {
		fmt.Printf("%-38s %-30s %-5s %-5s %-5s %s\n",
			record.ID,
			truncate(record.Filename, 30),
			mark(record.STTDone),
			mark(record.SummarizeDone),
			mark(record.EmbedDone),
			record.Timestamp.Format("2006-01-02 15:04"))
	}

	return nil
}

func showRecord(id string) error {
	record, ok := records.Get(id)
	if !ok {
		return errs.NotFound("record %s", id)
	}

	fmt.Printf("Record: %s\n", record.ID)
	fmt.Printf("  Filename: %s\n", record.Filename)
	fmt.Printf("  File: %s\n", record.FilePath)
	fmt.Printf("  Added: %s\n", record.Timestamp.Format(time.RFC3339))
	fmt.Printf("  Transcribed: %v\n", record.STTDone)
	fmt.Printf("  Summarized: %v\n", record.SummarizeDone)
	fmt.Printf("  Embedded: %v\n", record.EmbedDone)

	if record.STTPath != nil {
		fmt.Printf("  Transcript: %s\n", *record.STTPath)
	}
	if record.SummaryPath != nil {
		fmt.Printf("  Summary: %s\n", *record.SummaryPath)
	}
	if record.OneLineSummary != nil && *record.OneLineSummary != "" {
		fmt.Printf("\n  %s\n", *record.OneLineSummary)
	}
	if len(record.Tags) > 0 {
		fmt.Printf("  Tags: %v\n", record.Tags)
	}

	return nil
}

func mark(done bool) string {
	if done {
		return "yes"
	}
	return "-"
}

// truncate shortens s to max display runes. Cutting on a rune boundary keeps
// multibyte filenames (the common case for Korean recordings) valid UTF-8.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
