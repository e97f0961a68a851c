package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/raphaelgruber/recordroute/internal/config"
	"github.com/raphaelgruber/recordroute/internal/errs"
	"github.com/raphaelgruber/recordroute/internal/llm"
)

// Engine is a brute-force nearest-neighbor search over file-backed
// embeddings. O(n) per query; fine for a personal archive, not for web
// scale.
type Engine struct {
	mu             sync.RWMutex
	index          *Index
	indexPath      string
	embeddingDir   string
	client         llm.Client
	embeddingModel string
}

// NewEngine loads the index from disk or creates an empty one bound to the
// configured embedding model and dimension. An existing index recorded with
// a different model or dimension is an error: silently re-embedding under
// live entries would corrupt every stored score.
func NewEngine(cfg config.Config, client llm.Client) (*Engine, error) {
	indexPath := cfg.VectorIndexPath
	embeddingDir := cfg.EmbeddingsDir()

	var index *Index
	data, err := os.ReadFile(indexPath)
	switch {
	case err == nil:
		index = &Index{}
		if err := json.Unmarshal(data, index); err != nil {
			return nil, errs.Serialization("parse vector index %s: %v", indexPath, err)
		}
		if index.EmbeddingModel != cfg.EmbeddingModel || index.EmbeddingDim != cfg.EmbeddingDim {
			return nil, errs.Config(
				"vector index was built with model %s (dim %d), configured model is %s (dim %d)",
				index.EmbeddingModel, index.EmbeddingDim, cfg.EmbeddingModel, cfg.EmbeddingDim)
		}
		if index.Entries == nil {
			index.Entries = make(map[string]Entry)
		}
	case os.IsNotExist(err):
		index = newIndex(cfg.EmbeddingModel, cfg.EmbeddingDim)
	default:
		return nil, errs.Filesystem("read vector index %s: %v", indexPath, err)
	}

	slog.Info("vector search engine initialized", "entries", index.count())

	return &Engine{
		index:          index,
		indexPath:      indexPath,
		embeddingDir:   embeddingDir,
		client:         client,
		embeddingModel: cfg.EmbeddingModel,
	}, nil
}

// AddDocument embeds text and indexes it under docID, overwriting any
// previous entry for the same id. Nothing is committed if embedding fails.
func (e *Engine) AddDocument(ctx context.Context, docID, text string, metadata Metadata) error {
	slog.Info("adding document to vector index", "doc_id", docID)

	embedding, err := e.client.Embed(ctx, e.embeddingModel, text)
	if err != nil {
		return err
	}
	if err := e.checkDimension(len(embedding)); err != nil {
		return err
	}

	if err := os.MkdirAll(e.embeddingDir, 0o755); err != nil {
		return errs.Filesystem("create embeddings dir: %v", err)
	}

	embeddingFile := filepath.Join(e.embeddingDir, fmt.Sprintf("%s.json", docID))
	data, err := json.Marshal(embedding)
	if err != nil {
		return errs.Serialization("encode embedding: %v", err)
	}
	if err := os.WriteFile(embeddingFile, data, 0o644); err != nil {
		return errs.Filesystem("write embedding file %s: %v", embeddingFile, err)
	}

	entry := Entry{
		DocID:         docID,
		EmbeddingPath: embeddingFile,
		Metadata:      metadata,
		IndexedAt:     time.Now().UTC(),
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.index.Entries[docID] = entry
	if err := e.save(); err != nil {
		return err
	}

	slog.Info("document added to index", "doc_id", docID)
	return nil
}

// Search returns the topK documents most similar to the query.
func (e *Engine) Search(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	return e.SearchWithFilters(ctx, query, topK, nil, nil)
}

// SearchWithFilters is Search restricted to documents whose metadata
// timestamp falls inside [start, end]. When any bound is set, documents
// without a timestamp are excluded: an absent timestamp cannot confirm the
// document is in range.
func (e *Engine) SearchWithFilters(ctx context.Context, query string, topK int, start, end *time.Time) ([]SearchResult, error) {
	if topK < 0 {
		return nil, errs.InvalidInput("top_k must be non-negative, got %d", topK)
	}

	slog.Debug("searching", "query_len", len(query), "top_k", topK, "start", start, "end", end)

	queryEmbedding, err := e.client.Embed(ctx, e.embeddingModel, query)
	if err != nil {
		return nil, err
	}
	if err := e.checkDimension(len(queryEmbedding)); err != nil {
		return nil, err
	}

	e.mu.RLock()
	entries := e.index.activeEntries()
	e.mu.RUnlock()

	results := make([]SearchResult, 0, len(entries))
	for _, entry := range entries {
		if !inDateRange(entry.Metadata.Timestamp, start, end) {
			continue
		}

		embedding, err := e.loadEmbedding(entry)
		if err != nil {
			return nil, err
		}

		results = append(results, SearchResult{
			DocID:    entry.DocID,
			Score:    CosineSimilarity(queryEmbedding, embedding),
			Metadata: entry.Metadata,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}

	slog.Info("search completed", "results", len(results), "candidates", len(entries))
	return results, nil
}

// DeleteDocument soft-deletes the entry and persists the index. The
// embedding file stays on disk: it is cheap and allows a future undelete.
// Unknown ids are a no-op.
func (e *Engine) DeleteDocument(docID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.index.Entries[docID]
	if !ok {
		return nil
	}

	entry.Deleted = true
	e.index.Entries[docID] = entry
	if err := e.save(); err != nil {
		return err
	}

	slog.Info("document deleted from index", "doc_id", docID)
	return nil
}

// Stats returns the active entry count and the embedding model name.
func (e *Engine) Stats() (int, string) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.index.count(), e.index.EmbeddingModel
}

// loadEmbedding reads and validates one entry's vector. A length mismatch
// is index corruption and fails the whole search rather than silently
// skewing results.
func (e *Engine) loadEmbedding(entry Entry) ([]float32, error) {
	data, err := os.ReadFile(entry.EmbeddingPath)
	if err != nil {
		return nil, errs.Filesystem("read embedding for %s: %v", entry.DocID, err)
	}

	var embedding []float32
	if err := json.Unmarshal(data, &embedding); err != nil {
		return nil, errs.Serialization("parse embedding for %s: %v", entry.DocID, err)
	}

	if len(embedding) != e.index.EmbeddingDim {
		return nil, errs.VectorSearch("embedding for %s has dimension %d, index expects %d",
			entry.DocID, len(embedding), e.index.EmbeddingDim)
	}

	return embedding, nil
}

func (e *Engine) checkDimension(got int) error {
	if got != e.index.EmbeddingDim {
		return errs.VectorSearch("model %s returned dimension %d, index expects %d",
			e.embeddingModel, got, e.index.EmbeddingDim)
	}
	return nil
}

func inDateRange(timestamp, start, end *time.Time) bool {
	if timestamp == nil {
		return start == nil && end == nil
	}
	if start != nil && timestamp.Before(*start) {
		return false
	}
	if end != nil && timestamp.After(*end) {
		return false
	}
	return true
}

// save rewrites the index file. Callers hold the write lock.
func (e *Engine) save() error {
	data, err := json.MarshalIndent(e.index, "", "  ")
	if err != nil {
		return errs.Serialization("encode vector index: %v", err)
	}
	if err := os.WriteFile(e.indexPath, data, 0o644); err != nil {
		return errs.Filesystem("write vector index %s: %v", e.indexPath, err)
	}
	return nil
}
