package workflow

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/raphaelgruber/recordroute/internal/history"
)

// ResetRecord clears all processing state for a file so the pipeline can be
// re-run from scratch. Artifact deletion is best effort: a missing or
// undeletable file is logged and skipped, the flags are cleared regardless.
func (e *Executor) ResetRecord(fileUUID string) error {
	outputDir := e.cfg.WhisperOutputDir()
	artifacts := []string{
		filepath.Join(outputDir, fmt.Sprintf("%s.txt", fileUUID)),
		filepath.Join(outputDir, fmt.Sprintf("%s_segments.json", fileUUID)),
		filepath.Join(outputDir, fmt.Sprintf("%s_summary.txt", fileUUID)),
		filepath.Join(outputDir, fmt.Sprintf("%s_oneline.txt", fileUUID)),
	}
	removeArtifacts(artifacts)

	if err := e.vectors.DeleteDocument(fileUUID); err != nil {
		slog.Warn("failed to remove vector entry during reset", "file_uuid", fileUUID, "error", err)
	}

	if err := e.history.Update(fileUUID, func(r *history.Record) {
		r.STTDone = false
		r.SummarizeDone = false
		r.EmbedDone = false
		r.STTPath = nil
		r.SummaryPath = nil
		r.OneLineSummary = nil
	}); err != nil {
		return err
	}

	slog.Info("record reset", "file_uuid", fileUUID)
	return nil
}

// ResetSummaryEmbedding clears summary and embedding state while keeping the
// transcript, for re-summarizing with a different model or prompt.
func (e *Executor) ResetSummaryEmbedding(fileUUID string) error {
	outputDir := e.cfg.WhisperOutputDir()
	artifacts := []string{
		filepath.Join(outputDir, fmt.Sprintf("%s_summary.txt", fileUUID)),
		filepath.Join(outputDir, fmt.Sprintf("%s_oneline.txt", fileUUID)),
	}
	removeArtifacts(artifacts)

	if err := e.vectors.DeleteDocument(fileUUID); err != nil {
		slog.Warn("failed to remove vector entry during reset", "file_uuid", fileUUID, "error", err)
	}

	if err := e.history.Update(fileUUID, func(r *history.Record) {
		r.SummarizeDone = false
		r.EmbedDone = false
		r.SummaryPath = nil
		r.OneLineSummary = nil
	}); err != nil {
		return err
	}

	slog.Info("summary and embedding reset", "file_uuid", fileUUID)
	return nil
}

func removeArtifacts(paths []string) {
	for _, path := range paths {
		err := os.Remove(path)
		if err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove artifact", "path", path, "error", err)
		}
	}
}
