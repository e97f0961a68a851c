// Package summarize produces hierarchical map-reduce summaries of long text.
package summarize

import (
	"context"
	"log/slog"
	"strings"

	"github.com/raphaelgruber/recordroute/internal/llm"
	"github.com/raphaelgruber/recordroute/internal/parser"
)

const (
	// directThreshold is the input length (chars) below which a single
	// summarization call suffices.
	directThreshold = 8000

	// Chunking parameters for the map phase.
	chunkMaxTokens     = 2000
	chunkOverlapTokens = 200

	// batchReduceSize caps the fan-in per reduce call so prompt size stays
	// bounded at every level regardless of document length.
	batchReduceSize = 10

	// Token caps per call type.
	chunkSummaryTokens = 500
	reduceTokens       = 1000
	directTokens       = 1000
	oneLineTokens      = 100
)

// Summary is the output of a summarization run.
type Summary struct {
	// Text is the full structured summary.
	Text string `json:"text"`

	// OneLine is the one-line digest.
	OneLine string `json:"one_line"`

	// Model is the generation model used, recorded for provenance.
	Model string `json:"model"`
}

// Summarizer turns long transcripts into structured summaries using a
// map-reduce strategy over text chunks.
type Summarizer struct {
	client llm.Client
	model  string
}

// New creates a summarizer that generates with the given model.
func New(client llm.Client, model string) *Summarizer {
	return &Summarizer{client: client, model: model}
}

// Model returns the generation model name.
func (s *Summarizer) Model() string {
	return s.model
}

// Summarize produces a structured summary plus a one-line digest.
// Any generation failure propagates; there is no partial-document fallback.
func (s *Summarizer) Summarize(ctx context.Context, text string) (*Summary, error) {
	slog.Info("starting summarization", "text_len", len(text))

	if len(text) < directThreshold {
		slog.Debug("text is short, using direct summarization")
		return s.summarizeDirect(ctx, text)
	}

	// Map phase: summarize each chunk independently.
	chunks := parser.ChunkText(text, chunkMaxTokens, chunkOverlapTokens)
	slog.Info("split text into chunks", "chunks", len(chunks))

	chunkSummaries := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		slog.Info("summarizing chunk", "chunk", i+1, "total", len(chunks))
		summary, err := s.generate(ctx, chunkPrompt(chunk.Text), chunkSummaryTokens, 0.3)
		if err != nil {
			return nil, err
		}
		chunkSummaries = append(chunkSummaries, summary)
	}

	// Reduce phase.
	var finalText string
	var err error
	if len(chunkSummaries) > batchReduceSize {
		slog.Info("using batch reduce", "summaries", len(chunkSummaries), "batch_size", batchReduceSize)
		finalText, err = s.batchReduce(ctx, chunkSummaries)
	} else {
		combined := strings.Join(chunkSummaries, chunkSeparator)
		slog.Info("combined chunk summaries", "combined_len", len(combined))
		finalText, err = s.generate(ctx, reducePrompt(combined), reduceTokens, 0.3)
	}
	if err != nil {
		return nil, err
	}

	oneLine, err := s.generateOneLine(ctx, finalText)
	if err != nil {
		return nil, err
	}

	return &Summary{Text: finalText, OneLine: oneLine, Model: s.model}, nil
}

// batchReduce performs two-level hierarchical reduction: chunk summaries are
// reduced in batches of batchReduceSize, then the batch summaries are reduced
// into the final text. Two levels bound the prompt size for any input length.
func (s *Summarizer) batchReduce(ctx context.Context, chunkSummaries []string) (string, error) {
	numBatches := (len(chunkSummaries) + batchReduceSize - 1) / batchReduceSize
	slog.Info("first level reduce", "chunks", len(chunkSummaries), "batches", numBatches)

	batchSummaries := make([]string, 0, numBatches)
	for i := 0; i < len(chunkSummaries); i += batchReduceSize {
		end := i + batchReduceSize
		if end > len(chunkSummaries) {
			end = len(chunkSummaries)
		}

		slog.Info("processing first level batch", "batch", len(batchSummaries)+1, "total", numBatches, "chunks", end-i)
		combined := strings.Join(chunkSummaries[i:end], chunkSeparator)
		batchSummary, err := s.generate(ctx, reducePrompt(combined), reduceTokens, 0.3)
		if err != nil {
			return "", err
		}
		batchSummaries = append(batchSummaries, batchSummary)
	}

	slog.Info("second level reduce", "batch_summaries", len(batchSummaries))
	combined := strings.Join(batchSummaries, batchSeparator)
	return s.generate(ctx, reducePrompt(combined), reduceTokens, 0.3)
}

// summarizeDirect handles inputs short enough for a single call.
func (s *Summarizer) summarizeDirect(ctx context.Context, text string) (*Summary, error) {
	fullSummary, err := s.generate(ctx, chunkPrompt(text), directTokens, 0.3)
	if err != nil {
		return nil, err
	}

	oneLine, err := s.generateOneLine(ctx, fullSummary)
	if err != nil {
		return nil, err
	}

	return &Summary{Text: fullSummary, OneLine: oneLine, Model: s.model}, nil
}

// GenerateOneLine derives a one-line digest from summary text.
func (s *Summarizer) GenerateOneLine(ctx context.Context, text string) (string, error) {
	return s.generateOneLine(ctx, text)
}

func (s *Summarizer) generateOneLine(ctx context.Context, text string) (string, error) {
	// Lowest temperature of all call types: the digest must stay literal.
	response, err := s.generate(ctx, oneLinePrompt(text), oneLineTokens, 0.2)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(strings.TrimSpace(response), "\n", " "), nil
}

func (s *Summarizer) generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	return s.client.Generate(ctx, llm.GenerateRequest{
		Model:  s.model,
		Prompt: prompt,
		Options: llm.GenerateOptions{
			Temperature: temperature,
			TopP:        0.9,
			MaxTokens:   maxTokens,
		},
	})
}
