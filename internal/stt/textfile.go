package stt

import (
	"context"
	"os"
	"strings"

	"github.com/raphaelgruber/recordroute/internal/errs"
)

// TextFileEngine "transcribes" plain-text files by treating each line as one
// segment. It stands in where no acoustic model is wired, so the rest of the
// pipeline can run on pre-transcribed material.
type TextFileEngine struct{}

var _ Engine = (*TextFileEngine)(nil)

func (TextFileEngine) Transcribe(ctx context.Context, audioPath string, opts Options) (*Transcription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, errs.Transcription("read input %s: %v", audioPath, err)
	}

	var segments []Segment
	var kept []string
	for _, line := range strings.Split(string(data), "\n") {
		processed := ProcessSegmentText(line, opts.FilterFillers, opts.MinSegmentLength, opts.NormalizePunctuation)
		if processed == "" {
			continue
		}
		segments = append(segments, Segment{Text: processed})
		kept = append(kept, processed)
	}

	return &Transcription{
		Text:     strings.Join(kept, "\n"),
		Segments: segments,
		Language: opts.Language,
	}, nil
}
