package workflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/recordroute/internal/config"
	"github.com/raphaelgruber/recordroute/internal/history"
	"github.com/raphaelgruber/recordroute/internal/llm"
	"github.com/raphaelgruber/recordroute/internal/stt"
	"github.com/raphaelgruber/recordroute/internal/summarize"
	"github.com/raphaelgruber/recordroute/internal/task"
	"github.com/raphaelgruber/recordroute/internal/vector"
)

const testDim = 32

// fakeEngine returns a canned transcription without touching any audio file.
type fakeEngine struct {
	transcription *stt.Transcription
	err           error
	calls         int
}

func (f *fakeEngine) Transcribe(ctx context.Context, audioPath string, opts stt.Options) (*stt.Transcription, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.transcription, nil
}

type fixture struct {
	executor *Executor
	engine   *fakeEngine
	cfg      config.Config
	history  *history.Store
	tasks    *task.Registry
	vectors  *vector.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	base := t.TempDir()
	cfg := config.Config{
		DBBasePath:      base,
		UploadDir:       filepath.Join(base, "uploads"),
		VectorIndexPath: filepath.Join(base, "vector_index.json"),
		LLMModel:        "stub-llm",
		EmbeddingModel:  "stub-embed",
		EmbeddingDim:    testDim,
	}
	require.NoError(t, cfg.EnsureDirectories())

	client := llm.NewStubClient(testDim)

	vectors, err := vector.NewEngine(cfg, client)
	require.NoError(t, err)

	store, err := history.Load(cfg.HistoryPath())
	require.NoError(t, err)

	engine := &fakeEngine{
		transcription: &stt.Transcription{
			Text: "Planning meeting. We agreed to ship the search feature next sprint.",
			Segments: []stt.Segment{
				{Start: 0, End: 4.2, Text: "Planning meeting."},
				{Start: 4.2, End: 9.8, Text: "We agreed to ship the search feature next sprint."},
			},
			Language: "en",
		},
	}

	tasks := task.NewRegistry()
	summarizer := summarize.New(client, cfg.LLMModel)

	return &fixture{
		executor: NewExecutor(engine, summarizer, vectors, cfg, store, tasks),
		engine:   engine,
		cfg:      cfg,
		history:  store,
		tasks:    tasks,
		vectors:  vectors,
	}
}

func (f *fixture) addRecord(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.history.Add(history.NewRecord(id, id+".mp3")))
}

func (f *fixture) startTask(id string) string {
	return f.tasks.Create("workflow", id)
}

func TestExecute_STTOnly(t *testing.T) {
	f := newFixture(t)
	f.addRecord(t, "file-1")
	taskID := f.startTask("file-1")

	result, err := f.executor.Execute(context.Background(), "file-1", "/tmp/file-1.mp3",
		Options{RunSTT: true, Language: "en"}, taskID)
	require.NoError(t, err)

	// Transcript and segments written to the whisper output dir.
	wantTranscript := filepath.Join(f.cfg.WhisperOutputDir(), "file-1.txt")
	assert.Equal(t, wantTranscript, result.TranscriptPath)

	data, err := os.ReadFile(wantTranscript)
	require.NoError(t, err)
	assert.Contains(t, string(data), "search feature")

	_, err = os.Stat(filepath.Join(f.cfg.WhisperOutputDir(), "file-1_segments.json"))
	assert.NoError(t, err)

	// History flags updated, other phases untouched.
	record, ok := f.history.Get("file-1")
	require.True(t, ok)
	assert.True(t, record.STTDone)
	assert.False(t, record.SummarizeDone)
	assert.False(t, record.EmbedDone)
	require.NotNil(t, record.STTPath)
	assert.Equal(t, wantTranscript, *record.STTPath)

	info, ok := f.tasks.Get(taskID)
	require.True(t, ok)
	assert.Equal(t, 100, info.Progress)
}

func TestExecute_SummarizeReusesSavedTranscript(t *testing.T) {
	f := newFixture(t)
	f.addRecord(t, "file-1")

	// Transcript from an earlier run, no STT this time.
	_, err := f.executor.Execute(context.Background(), "file-1", "/tmp/file-1.mp3",
		Options{RunSTT: true, Language: "en"}, f.startTask("file-1"))
	require.NoError(t, err)
	f.engine.calls = 0

	result, err := f.executor.Execute(context.Background(), "file-1", "/tmp/file-1.mp3",
		Options{RunSummarize: true}, f.startTask("file-1"))
	require.NoError(t, err)

	assert.Zero(t, f.engine.calls)
	assert.NotEmpty(t, result.SummaryPath)

	record, ok := f.history.Get("file-1")
	require.True(t, ok)
	assert.True(t, record.SummarizeDone)
	require.NotNil(t, record.SummaryPath)
	require.NotNil(t, record.OneLineSummary)

	_, err = os.Stat(filepath.Join(f.cfg.WhisperOutputDir(), "file-1_oneline.txt"))
	assert.NoError(t, err)
}

func TestExecute_SummarizeWithoutTranscriptSkips(t *testing.T) {
	f := newFixture(t)
	f.addRecord(t, "file-1")
	taskID := f.startTask("file-1")

	result, err := f.executor.Execute(context.Background(), "file-1", "/tmp/file-1.mp3",
		Options{RunSummarize: true, RunEmbed: true}, taskID)
	require.NoError(t, err)

	// No transcript anywhere means both phases skip without failing.
	assert.Empty(t, result.SummaryPath)
	assert.Empty(t, result.EmbeddingID)

	record, ok := f.history.Get("file-1")
	require.True(t, ok)
	assert.False(t, record.SummarizeDone)
	assert.False(t, record.EmbedDone)

	info, ok := f.tasks.Get(taskID)
	require.True(t, ok)
	assert.Equal(t, 100, info.Progress)
}

func TestExecute_FullPipeline(t *testing.T) {
	f := newFixture(t)
	f.addRecord(t, "file-1")
	taskID := f.startTask("file-1")

	result, err := f.executor.Execute(context.Background(), "file-1", "/tmp/file-1.mp3",
		Options{RunSTT: true, RunSummarize: true, RunEmbed: true, Language: "en"}, taskID)
	require.NoError(t, err)

	assert.NotEmpty(t, result.TranscriptPath)
	assert.NotEmpty(t, result.SummaryPath)
	assert.Equal(t, "file-1", result.EmbeddingID)

	record, ok := f.history.Get("file-1")
	require.True(t, ok)
	assert.True(t, record.STTDone)
	assert.True(t, record.SummarizeDone)
	assert.True(t, record.EmbedDone)

	// The document is findable through the vector index.
	count, _ := f.vectors.Stats()
	assert.Equal(t, 1, count)

	results, err := f.vectors.Search(context.Background(), "search feature", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "file-1", results[0].DocID)
}

func TestExecute_STTFailureAborts(t *testing.T) {
	f := newFixture(t)
	f.addRecord(t, "file-1")
	f.engine.err = context.DeadlineExceeded

	_, err := f.executor.Execute(context.Background(), "file-1", "/tmp/file-1.mp3",
		Options{RunSTT: true, RunSummarize: true}, f.startTask("file-1"))
	require.Error(t, err)

	record, ok := f.history.Get("file-1")
	require.True(t, ok)
	assert.False(t, record.STTDone)
	assert.False(t, record.SummarizeDone)
}

func TestExecute_STTRerunOverwrites(t *testing.T) {
	f := newFixture(t)
	f.addRecord(t, "file-1")

	ctx := context.Background()
	_, err := f.executor.Execute(ctx, "file-1", "/tmp/file-1.mp3",
		Options{RunSTT: true}, f.startTask("file-1"))
	require.NoError(t, err)

	f.engine.transcription = &stt.Transcription{
		Text:     "A completely different transcript.",
		Segments: []stt.Segment{{Start: 0, End: 2, Text: "A completely different transcript."}},
		Language: "en",
	}

	result, err := f.executor.Execute(ctx, "file-1", "/tmp/file-1.mp3",
		Options{RunSTT: true}, f.startTask("file-1"))
	require.NoError(t, err)

	data, err := os.ReadFile(result.TranscriptPath)
	require.NoError(t, err)
	assert.Equal(t, "A completely different transcript.", string(data))
}

func TestResetRecord(t *testing.T) {
	f := newFixture(t)
	f.addRecord(t, "file-1")

	_, err := f.executor.Execute(context.Background(), "file-1", "/tmp/file-1.mp3",
		Options{RunSTT: true, RunSummarize: true, RunEmbed: true, Language: "en"}, f.startTask("file-1"))
	require.NoError(t, err)

	require.NoError(t, f.executor.ResetRecord("file-1"))

	record, ok := f.history.Get("file-1")
	require.True(t, ok)
	assert.False(t, record.STTDone)
	assert.False(t, record.SummarizeDone)
	assert.False(t, record.EmbedDone)
	assert.Nil(t, record.STTPath)
	assert.Nil(t, record.SummaryPath)
	assert.Nil(t, record.OneLineSummary)

	_, err = os.Stat(filepath.Join(f.cfg.WhisperOutputDir(), "file-1.txt"))
	assert.True(t, os.IsNotExist(err))

	count, _ := f.vectors.Stats()
	assert.Equal(t, 0, count)
}

func TestResetSummaryEmbedding_KeepsTranscript(t *testing.T) {
	f := newFixture(t)
	f.addRecord(t, "file-1")

	_, err := f.executor.Execute(context.Background(), "file-1", "/tmp/file-1.mp3",
		Options{RunSTT: true, RunSummarize: true, RunEmbed: true, Language: "en"}, f.startTask("file-1"))
	require.NoError(t, err)

	require.NoError(t, f.executor.ResetSummaryEmbedding("file-1"))

	record, ok := f.history.Get("file-1")
	require.True(t, ok)
	assert.True(t, record.STTDone)
	assert.False(t, record.SummarizeDone)
	assert.False(t, record.EmbedDone)

	_, err = os.Stat(filepath.Join(f.cfg.WhisperOutputDir(), "file-1.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(f.cfg.WhisperOutputDir(), "file-1_summary.txt"))
	assert.True(t, os.IsNotExist(err))

	count, _ := f.vectors.Stats()
	assert.Equal(t, 0, count)
}
