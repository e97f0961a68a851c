package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/raphaelgruber/recordroute/internal/errs"
	"github.com/raphaelgruber/recordroute/internal/history"
	"github.com/raphaelgruber/recordroute/internal/workflow"
)

var (
	processSkipSTT       bool
	processSkipSummarize bool
	processSkipEmbed     bool
	processLanguage      string
	processRecordID      string
)

var processCmd = &cobra.Command{
	Use:   "process <file>",
	Short: "Run the transcription pipeline on a file",
	Long: `Run the STT, summarization and embedding phases on a file, in order.

A new history record is created unless --id points at an existing one, in
which case only the requested phases run and earlier artifacts are reused.

Examples:
  recordroute process meeting.txt
  recordroute process meeting.txt --language en
  recordroute process --id 4f9d... --skip-stt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().BoolVar(&processSkipSTT, "skip-stt", false, "skip the transcription phase")
	processCmd.Flags().BoolVar(&processSkipSummarize, "skip-summarize", false, "skip the summarization phase")
	processCmd.Flags().BoolVar(&processSkipEmbed, "skip-embed", false, "skip the embedding phase")
	processCmd.Flags().StringVar(&processLanguage, "language", "ko", "language hint for transcription")
	processCmd.Flags().StringVar(&processRecordID, "id", "", "re-process an existing history record")
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var record history.Record
	switch {
	case processRecordID != "":
		existing, ok := records.Get(processRecordID)
		if !ok {
			return errs.NotFound("record %s", processRecordID)
		}
		record = existing
	case len(args) == 1:
		stored, err := stageUpload(args[0])
		if err != nil {
			return err
		}
		record = history.NewRecord(uuid.NewString(), filepath.Base(args[0]))
		record.FilePath = stored
		if err := records.Add(record); err != nil {
			return fmt.Errorf("record upload: %w", err)
		}
	default:
		return fmt.Errorf("either a file argument or --id is required")
	}

	opts := workflow.Options{
		RunSTT:       !processSkipSTT,
		RunSummarize: !processSkipSummarize,
		RunEmbed:     !processSkipEmbed,
		Language:     processLanguage,
	}

	taskID := tasks.Create("process", record.ID)
	result, err := executor.Execute(ctx, record.ID, record.FilePath, opts, taskID)
	if err != nil {
		tasks.Fail(taskID, err.Error())
		return fmt.Errorf("process %s: %w", record.ID, err)
	}
	tasks.Complete(taskID)

	fmt.Printf("Processed %s (record %s)\n", record.Filename, record.ID)
	if result.TranscriptPath != "" {
		fmt.Printf("  Transcript: %s\n", result.TranscriptPath)
	}
	if result.SummaryPath != "" {
		fmt.Printf("  Summary:    %s\n", result.SummaryPath)
	}
	if result.EmbeddingID != "" {
		fmt.Printf("  Indexed as: %s\n", result.EmbeddingID)
	}

	return nil
}

// stageUpload copies the input into the upload directory so later re-runs
// do not depend on the original path still existing.
func stageUpload(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open input: %w", err)
	}
	defer src.Close()

	dest := filepath.Join(cfg.UploadDir, filepath.Base(path))
	dst, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	return dest, nil
}
