// Package cli provides the command-line interface for recordroute.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/recordroute/internal/config"
	"github.com/raphaelgruber/recordroute/internal/history"
	"github.com/raphaelgruber/recordroute/internal/llm"
	"github.com/raphaelgruber/recordroute/internal/stt"
	"github.com/raphaelgruber/recordroute/internal/summarize"
	"github.com/raphaelgruber/recordroute/internal/task"
	"github.com/raphaelgruber/recordroute/internal/vector"
	"github.com/raphaelgruber/recordroute/internal/workflow"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool
	useStub bool

	// Global config and wired components
	cfg        config.Config
	closeLog   func() error
	llmClient  llm.Client
	records    *history.Store
	tasks      *task.Registry
	vectors    *vector.Engine
	summarizer *summarize.Summarizer
	executor   *workflow.Executor
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "recordroute",
	Short: "Recording transcription, summarization and semantic search",
	Long: `Recordroute turns recordings into transcripts, hierarchical summaries
and searchable embeddings, tracked through a persistent history journal.

Pre-transcribed text files can be fed straight into the summarize and
embed phases when no acoustic model is wired.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip wiring for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if err := cfg.EnsureDirectories(); err != nil {
			return fmt.Errorf("create data directories: %w", err)
		}

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, closer := config.SetupLogger(cfg.LogFile, level)
		slog.SetDefault(logger)
		closeLog = closer

		if useStub {
			llmClient = llm.NewStubClient(cfg.EmbeddingDim)
		} else {
			llmClient = llm.WithRetry(llm.NewOllamaClient(cfg.OllamaBaseURL), cfg.MaxRetries)
		}

		var err error
		records, err = history.Load(cfg.HistoryPath())
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}

		vectors, err = vector.NewEngine(cfg, llmClient)
		if err != nil {
			return fmt.Errorf("init vector engine: %w", err)
		}

		tasks = task.NewRegistry()
		summarizer = summarize.New(llmClient, cfg.LLMModel)
		executor = workflow.NewExecutor(stt.TextFileEngine{}, summarizer, vectors, cfg, records, tasks)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeLog != nil {
			if err := closeLog(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&useStub, "stub", false, "use the deterministic stub LLM backend")

	// Add subcommands
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(tasksCmd)
}
