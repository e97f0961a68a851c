// Package workflow sequences the STT → Summarize → Embed pipeline for one
// file, updating the history journal and task registry at each phase.
package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/raphaelgruber/recordroute/internal/config"
	"github.com/raphaelgruber/recordroute/internal/errs"
	"github.com/raphaelgruber/recordroute/internal/history"
	"github.com/raphaelgruber/recordroute/internal/stt"
	"github.com/raphaelgruber/recordroute/internal/summarize"
	"github.com/raphaelgruber/recordroute/internal/task"
	"github.com/raphaelgruber/recordroute/internal/vector"
)

// Options selects which phases run for one invocation. Any subset is valid;
// phases missing their prerequisite text are skipped, not failed.
type Options struct {
	RunSTT       bool
	RunSummarize bool
	RunEmbed     bool
	Language     string
}

// Result reports the artifacts produced by one invocation. Empty fields mean
// the corresponding phase did not produce output.
type Result struct {
	TranscriptPath string
	SummaryPath    string
	EmbeddingID    string
}

// Executor orchestrates the processing phases for uploaded files. Callers
// run Execute from their own goroutine, one per file being processed, and
// are responsible for marking the registry task Failed on error.
type Executor struct {
	engine     stt.Engine
	summarizer *summarize.Summarizer
	vectors    *vector.Engine
	cfg        config.Config
	history    *history.Store
	tasks      *task.Registry
}

// NewExecutor wires an executor from its collaborators.
func NewExecutor(
	engine stt.Engine,
	summarizer *summarize.Summarizer,
	vectors *vector.Engine,
	cfg config.Config,
	historyStore *history.Store,
	tasks *task.Registry,
) *Executor {
	return &Executor{
		engine:     engine,
		summarizer: summarizer,
		vectors:    vectors,
		cfg:        cfg,
		history:    historyStore,
		tasks:      tasks,
	}
}

// Execute runs the requested phases in order for one file. A hard failure in
// any phase aborts the remaining work; "nothing to do" conditions advance
// progress with an explanatory message instead.
func (e *Executor) Execute(ctx context.Context, fileUUID, filePath string, opts Options, taskID string) (*Result, error) {
	result := &Result{}

	// Phase 1: STT
	if opts.RunSTT {
		slog.Info("starting stt workflow", "file_uuid", fileUUID)
		e.tasks.UpdateProgress(taskID, 10, "Starting transcription...")

		transcriptPath, err := e.runSTT(ctx, fileUUID, filePath, opts, taskID)
		if err != nil {
			return nil, err
		}
		result.TranscriptPath = transcriptPath

		if err := e.history.Update(fileUUID, func(r *history.Record) {
			r.STTDone = true
			r.STTPath = &transcriptPath
		}); err != nil {
			return nil, err
		}

		e.tasks.UpdateProgress(taskID, 50, "Transcription completed")
	}

	// Phase 2: Summarization
	if opts.RunSummarize {
		slog.Info("starting summarization workflow", "file_uuid", fileUUID)

		transcriptText, err := e.loadTranscriptText(result, fileUUID)
		if err != nil {
			return nil, err
		}

		if transcriptText == "" {
			slog.Warn("no transcript found for summarization", "file_uuid", fileUUID)
			e.tasks.UpdateProgress(taskID, 70, "Summarization skipped (no transcript)")
		} else {
			summaryPath, err := e.runSummarize(ctx, fileUUID, transcriptText, taskID)
			if err != nil {
				return nil, err
			}
			result.SummaryPath = summaryPath

			if err := e.history.Update(fileUUID, func(r *history.Record) {
				r.SummarizeDone = true
				r.SummaryPath = &summaryPath
			}); err != nil {
				return nil, err
			}

			e.tasks.UpdateProgress(taskID, 80, "Summarization completed")
		}
	}

	// Phase 3: Embedding
	if opts.RunEmbed {
		slog.Info("starting embedding workflow", "file_uuid", fileUUID)

		textToEmbed, err := e.loadEmbedText(result, fileUUID)
		if err != nil {
			return nil, err
		}

		if textToEmbed == "" {
			slog.Warn("no text found for embedding", "file_uuid", fileUUID)
			e.tasks.UpdateProgress(taskID, 90, "Embedding skipped (no text)")
		} else {
			embeddingID, err := e.runEmbed(ctx, fileUUID, textToEmbed, filePath, taskID)
			if err != nil {
				return nil, err
			}
			result.EmbeddingID = embeddingID

			if err := e.history.Update(fileUUID, func(r *history.Record) {
				r.EmbedDone = true
			}); err != nil {
				return nil, err
			}

			e.tasks.UpdateProgress(taskID, 95, "Embedding completed")
		}
	}

	e.tasks.UpdateProgress(taskID, 100, "Workflow completed")
	return result, nil
}

// runSTT transcribes the audio file and writes transcript + segments.
func (e *Executor) runSTT(ctx context.Context, fileUUID, filePath string, opts Options, taskID string) (string, error) {
	sttOpts := stt.DefaultOptions()
	sttOpts.Language = opts.Language
	sttOpts.FilterFillers = true
	sttOpts.MinSegmentLength = 3

	e.tasks.UpdateProgress(taskID, 20, "Loading audio file...")

	slog.Info("transcribing file", "path", filePath)
	transcript, err := e.engine.Transcribe(ctx, filePath, sttOpts)
	if err != nil {
		return "", err
	}

	e.tasks.UpdateProgress(taskID, 40, "Writing transcription results...")

	outputDir := e.cfg.WhisperOutputDir()
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", errs.Filesystem("create output dir: %v", err)
	}

	transcriptFile := filepath.Join(outputDir, fmt.Sprintf("%s.txt", fileUUID))
	if err := writeAtomic(transcriptFile, []byte(transcript.Text)); err != nil {
		return "", errs.Filesystem("write transcript: %v", err)
	}

	segmentsFile := filepath.Join(outputDir, fmt.Sprintf("%s_segments.json", fileUUID))
	segmentsJSON, err := json.MarshalIndent(transcript.Segments, "", "  ")
	if err != nil {
		return "", errs.Serialization("encode segments: %v", err)
	}
	if err := writeAtomic(segmentsFile, segmentsJSON); err != nil {
		return "", errs.Filesystem("write segments: %v", err)
	}

	slog.Info("transcription saved", "file", transcriptFile, "language", transcript.Language)
	return transcriptFile, nil
}

// loadTranscriptText prefers the transcript produced in this invocation and
// falls back to a previously saved one. Empty means nothing is available.
func (e *Executor) loadTranscriptText(result *Result, fileUUID string) (string, error) {
	if result.TranscriptPath != "" {
		data, err := os.ReadFile(result.TranscriptPath)
		if err != nil {
			return "", errs.Filesystem("read transcript: %v", err)
		}
		return string(data), nil
	}

	saved := filepath.Join(e.cfg.WhisperOutputDir(), fmt.Sprintf("%s.txt", fileUUID))
	data, err := os.ReadFile(saved)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errs.Filesystem("read saved transcript: %v", err)
	}
	return string(data), nil
}

// runSummarize generates and stores the summary and its one-line digest.
func (e *Executor) runSummarize(ctx context.Context, fileUUID, transcriptText string, taskID string) (string, error) {
	e.tasks.UpdateProgress(taskID, 60, "Generating summary...")

	slog.Info("summarizing transcript", "text_len", len(transcriptText))
	summary, err := e.summarizer.Summarize(ctx, transcriptText)
	if err != nil {
		return "", err
	}

	e.tasks.UpdateProgress(taskID, 75, "Writing summary...")

	outputDir := e.cfg.WhisperOutputDir()
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", errs.Filesystem("create output dir: %v", err)
	}

	summaryFile := filepath.Join(outputDir, fmt.Sprintf("%s_summary.txt", fileUUID))
	if err := writeAtomic(summaryFile, []byte(summary.Text)); err != nil {
		return "", errs.Filesystem("write summary: %v", err)
	}

	oneLineFile := filepath.Join(outputDir, fmt.Sprintf("%s_oneline.txt", fileUUID))
	if err := writeAtomic(oneLineFile, []byte(summary.OneLine)); err != nil {
		return "", errs.Filesystem("write one-line summary: %v", err)
	}

	if err := e.history.Update(fileUUID, func(r *history.Record) {
		oneLine := summary.OneLine
		r.OneLineSummary = &oneLine
	}); err != nil {
		return "", err
	}

	slog.Info("summary saved", "file", summaryFile, "one_line", summary.OneLine)
	return summaryFile, nil
}

// loadEmbedText picks the best available text for embedding: the summary or
// transcript produced in this invocation, else previously saved artifacts.
func (e *Executor) loadEmbedText(result *Result, fileUUID string) (string, error) {
	for _, path := range []string{result.SummaryPath, result.TranscriptPath} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", errs.Filesystem("read %s: %v", path, err)
		}
		return string(data), nil
	}

	outputDir := e.cfg.WhisperOutputDir()
	for _, path := range []string{
		filepath.Join(outputDir, fmt.Sprintf("%s_summary.txt", fileUUID)),
		filepath.Join(outputDir, fmt.Sprintf("%s.txt", fileUUID)),
	} {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return "", errs.Filesystem("read %s: %v", path, err)
		}
		return string(data), nil
	}

	return "", nil
}

// runEmbed indexes the text with metadata assembled from the file's artifacts.
func (e *Executor) runEmbed(ctx context.Context, fileUUID, text, filePath string, taskID string) (string, error) {
	e.tasks.UpdateProgress(taskID, 85, "Generating embedding...")

	outputDir := e.cfg.WhisperOutputDir()
	transcriptPath := filepath.Join(outputDir, fmt.Sprintf("%s.txt", fileUUID))
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("%s_summary.txt", fileUUID))
	oneLineFile := filepath.Join(outputDir, fmt.Sprintf("%s_oneline.txt", fileUUID))

	now := time.Now().UTC()
	metadata := vector.Metadata{
		Filename:       filepath.Base(filePath),
		FilePath:       filePath,
		TranscriptPath: pathIfExists(transcriptPath),
		SummaryPath:    pathIfExists(summaryPath),
		Timestamp:      &now,
		Tags:           []string{},
	}

	if data, err := os.ReadFile(oneLineFile); err == nil {
		oneLine := string(data)
		metadata.OneLineSummary = &oneLine
	}

	if err := e.vectors.AddDocument(ctx, fileUUID, text, metadata); err != nil {
		return "", err
	}

	slog.Info("embedding added to vector index", "file_uuid", fileUUID)
	return fileUUID, nil
}

func pathIfExists(path string) *string {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return &path
}

// writeAtomic writes data to a temp file and renames it into place so a
// crash never leaves a half-written artifact.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
