// Package vector maintains a persistent similarity-search index over
// document embeddings.
package vector

import "time"

// Metadata describes the document behind a vector entry.
type Metadata struct {
	// Filename is the original upload name.
	Filename string `json:"filename"`

	// FilePath is the source file path.
	FilePath string `json:"file_path"`

	// TranscriptPath points at the transcript artifact, if present.
	TranscriptPath *string `json:"transcript_path"`

	// SummaryPath points at the summary artifact, if present.
	SummaryPath *string `json:"summary_path"`

	// OneLineSummary is the digest shown with search results.
	OneLineSummary *string `json:"one_line_summary"`

	// Timestamp is the document time used for date filtering.
	Timestamp *time.Time `json:"timestamp,omitempty"`

	// Tags attached by the user.
	Tags []string `json:"tags"`
}

// Entry is one indexed document. The embedding itself lives in its own file
// so the index stays small.
type Entry struct {
	// DocID equals the file id.
	DocID string `json:"doc_id"`

	// EmbeddingPath is the file holding the JSON-encoded vector.
	EmbeddingPath string `json:"embedding_path"`

	// Metadata describes the document.
	Metadata Metadata `json:"metadata"`

	// IndexedAt is when the entry was added.
	IndexedAt time.Time `json:"indexed_at"`

	// Deleted marks the entry as logically removed.
	Deleted bool `json:"deleted"`
}

// Index maps doc ids to entries. The embedding model and dimension are fixed
// at creation time; every vector in the index was produced by that model.
type Index struct {
	Entries        map[string]Entry `json:"entries"`
	EmbeddingModel string           `json:"embedding_model"`
	EmbeddingDim   int              `json:"embedding_dim"`
}

// newIndex creates an empty index bound to a model and dimension.
func newIndex(embeddingModel string, embeddingDim int) *Index {
	return &Index{
		Entries:        make(map[string]Entry),
		EmbeddingModel: embeddingModel,
		EmbeddingDim:   embeddingDim,
	}
}

// activeEntries returns all non-deleted entries.
func (i *Index) activeEntries() []Entry {
	entries := make([]Entry, 0, len(i.Entries))
	for _, e := range i.Entries {
		if !e.Deleted {
			entries = append(entries, e)
		}
	}
	return entries
}

// count returns the number of active entries.
func (i *Index) count() int {
	return len(i.activeEntries())
}

// SearchResult is one scored document.
type SearchResult struct {
	// DocID identifies the matched document.
	DocID string `json:"doc_id"`

	// Score is the cosine similarity to the query, higher is closer.
	Score float32 `json:"score"`

	// Metadata describes the matched document.
	Metadata Metadata `json:"metadata"`
}
