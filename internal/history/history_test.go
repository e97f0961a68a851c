package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.json")
	store, err := Load(path)
	require.NoError(t, err)
	return store, path
}

func TestLoad_MissingFileStartsEmpty(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Empty(t, store.ActiveRecords())
}

func TestLoad_CorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MigratesLegacyFilePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	legacy := `[{"id":"abc","filename":"a.mp3","timestamp":"2024-01-01T00:00:00Z",
		"stt_done":false,"summarize_done":false,"embed_done":false,
		"stt_path":null,"summary_path":null,"one_line_summary":null}]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	store, err := Load(path)
	require.NoError(t, err)

	record, ok := store.Get("abc")
	require.True(t, ok)
	assert.Equal(t, "/download/abc", record.FilePath)
}

func TestAddAndGet(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Add(NewRecord("id-1", "meeting.mp3")))

	record, ok := store.Get("id-1")
	require.True(t, ok)
	assert.Equal(t, "meeting.mp3", record.Filename)
	assert.False(t, record.STTDone)
	assert.False(t, record.SummarizeDone)
	assert.False(t, record.EmbedDone)
}

func TestUpdate_UnknownIDIsNoOp(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, store.Add(NewRecord("id-1", "a.mp3")))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	called := false
	require.NoError(t, store.Update("missing", func(r *Record) { called = true }))
	assert.False(t, called, "mutator must not run for unknown id")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "journal must be unchanged")
}

func TestUpdate_MutatesInPlace(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Add(NewRecord("id-1", "a.mp3")))

	sttPath := "/db/whisper_output/id-1.txt"
	require.NoError(t, store.Update("id-1", func(r *Record) {
		r.STTDone = true
		r.STTPath = &sttPath
	}))

	record, ok := store.Get("id-1")
	require.True(t, ok)
	assert.True(t, record.STTDone)
	require.NotNil(t, record.STTPath)
	assert.Equal(t, sttPath, *record.STTPath)
}

func TestDelete_SoftDeleteKeepsJournalEntry(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, store.Add(NewRecord("id-1", "a.mp3")))
	require.NoError(t, store.Add(NewRecord("id-2", "b.mp3")))

	require.NoError(t, store.Delete([]string{"id-1"}))

	// Gone from active views.
	_, ok := store.Get("id-1")
	assert.False(t, ok)
	assert.Len(t, store.ActiveRecords(), 1)

	// Still present in the persisted journal.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Len(t, raw, 2)
}

func TestReload_RoundTripsState(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, store.Add(NewRecord("id-1", "a.mp3")))

	oneLine := "short digest"
	require.NoError(t, store.Update("id-1", func(r *Record) {
		r.SummarizeDone = true
		r.OneLineSummary = &oneLine
		r.Tags = []string{"work", "weekly"}
	}))
	require.NoError(t, store.Delete([]string{"id-1"}))

	reloaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, store.records, reloaded.records)
}
