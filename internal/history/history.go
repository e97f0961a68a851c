// Package history persists per-file processing state as a JSON journal.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/raphaelgruber/recordroute/internal/errs"
)

// Record tracks the processing state of one uploaded file. Records are never
// removed from the journal; deletion is a soft flag.
type Record struct {
	// ID is the stable unique identifier for the file.
	ID string `json:"id"`

	// Filename is the original upload name.
	Filename string `json:"filename"`

	// FilePath is the download-addressable path.
	FilePath string `json:"file_path"`

	// Timestamp is the creation time.
	Timestamp time.Time `json:"timestamp"`

	// Completion flags, set as each phase finishes.
	STTDone       bool `json:"stt_done"`
	SummarizeDone bool `json:"summarize_done"`
	EmbedDone     bool `json:"embed_done"`

	// Artifact paths, set alongside the flags.
	STTPath     *string `json:"stt_path"`
	SummaryPath *string `json:"summary_path"`

	// OneLineSummary is the digest shown in listings.
	OneLineSummary *string `json:"one_line_summary"`

	// Tags attached by the user.
	Tags []string `json:"tags"`

	// Deleted marks the record as logically removed.
	Deleted bool `json:"deleted"`
}

// NewRecord creates a fresh record with all phase flags cleared.
func NewRecord(id, filename string) Record {
	return Record{
		ID:        id,
		Filename:  filename,
		FilePath:  fmt.Sprintf("/download/%s", id),
		Timestamp: time.Now().UTC(),
		Tags:      []string{},
	}
}

// Store is a durable journal of Records backed by a single JSON file. Every
// mutation rewrites the whole file before returning; a single lock serializes
// all access, so reads always observe the last completed write.
type Store struct {
	mu       sync.RWMutex
	records  []Record
	filePath string
}

// Load reads the journal at path, or starts empty if it does not exist.
// A corrupt file is a hard error rather than silently discarded data.
func Load(path string) (*Store, error) {
	var records []Record

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, errs.Serialization("parse history file %s: %v", path, err)
		}
	case os.IsNotExist(err):
		// First run
	default:
		return nil, errs.Filesystem("read history file %s: %v", path, err)
	}

	// Migrate legacy records that predate the file_path field.
	for i := range records {
		if records[i].FilePath == "" {
			records[i].FilePath = fmt.Sprintf("/download/%s", records[i].ID)
		}
	}

	return &Store{records: records, filePath: path}, nil
}

// Add appends a new record and persists the journal.
func (s *Store) Add(record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)
	return s.save()
}

// Update applies mutate to the record with the given id and persists.
// An unknown id is a silent no-op by contract; callers that care must check
// the record afterwards.
func (s *Store) Update(id string, mutate func(*Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			mutate(&s.records[i])
			return s.save()
		}
	}
	return nil
}

// Delete soft-deletes the listed ids and persists. Unknown ids are skipped.
func (s *Store) Delete(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		for i := range s.records {
			if s.records[i].ID == id {
				s.records[i].Deleted = true
				break
			}
		}
	}
	return s.save()
}

// ActiveRecords returns a copy of all non-deleted records.
func (s *Store) ActiveRecords() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		if !r.Deleted {
			active = append(active, r)
		}
	}
	return active
}

// Get returns the non-deleted record with the given id.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.ID == id && !r.Deleted {
			return r, true
		}
	}
	return Record{}, false
}

// save rewrites the journal file. Callers hold the write lock.
// A crash mid-write can tear the file; the trade-off is documented and
// accepted for a single-user archive.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return errs.Serialization("encode history: %v", err)
	}
	if err := os.WriteFile(s.filePath, data, 0o644); err != nil {
		return errs.Filesystem("write history file %s: %v", s.filePath, err)
	}
	return nil
}
