// Package stt defines the transcription contract and segment post-processing.
// The acoustic model itself is an external collaborator behind the Engine
// interface.
package stt

import (
	"context"
	"fmt"
	"strings"
)

// Segment is a single transcription segment with timestamps.
type Segment struct {
	// Start time in seconds.
	Start float32 `json:"start"`

	// End time in seconds.
	End float32 `json:"end"`

	// Transcribed text.
	Text string `json:"text"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float32 {
	return s.End - s.Start
}

// FormatTimestamp renders seconds as HH:MM:SS.
func FormatTimestamp(seconds float32) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// TimeRange returns the formatted "start - end" range.
func (s Segment) TimeRange() string {
	return fmt.Sprintf("%s - %s", FormatTimestamp(s.Start), FormatTimestamp(s.End))
}

// Transcription is a complete transcription result.
type Transcription struct {
	// Full transcribed text.
	Text string `json:"text"`

	// Individual segments with timestamps.
	Segments []Segment `json:"segments"`

	// Detected language (ISO code).
	Language string `json:"language"`
}

// Duration returns the end time of the last segment.
func (t *Transcription) Duration() float32 {
	if len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[len(t.Segments)-1].End
}

// ToMarkdown renders the transcription with per-segment timestamps.
func (t *Transcription) ToMarkdown(title string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)

	if len(t.Segments) == 0 {
		b.WriteString(t.Text)
		return b.String()
	}

	for _, segment := range t.Segments {
		fmt.Fprintf(&b, "[%s] %s\n", segment.TimeRange(), segment.Text)
	}
	return b.String()
}

// Options configures a transcription run.
type Options struct {
	// Language hint (e.g. "ko", "en"). Empty lets the model detect.
	Language string

	// InitialPrompt seeds domain-specific vocabulary.
	InitialPrompt string

	// Temperature for sampling (0.0 = greedy).
	Temperature float32

	// FilterFillers drops standalone filler words from segments.
	FilterFillers bool

	// MinSegmentLength is the minimum segment text length (bytes) to keep.
	MinSegmentLength int

	// NormalizePunctuation collapses repeated punctuation and whitespace.
	NormalizePunctuation bool
}

// DefaultOptions returns the options used by the workflow.
func DefaultOptions() Options {
	return Options{
		Language:             "ko",
		Temperature:          0,
		FilterFillers:        false,
		MinSegmentLength:     2,
		NormalizePunctuation: true,
	}
}

// Engine is the opaque transcription collaborator. Implementations are
// CPU-bound; callers run them from their own goroutine.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string, opts Options) (*Transcription, error)
}
