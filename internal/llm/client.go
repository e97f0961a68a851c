// Package llm provides text generation and embedding backends.
package llm

import "context"

// GenerateOptions controls sampling for a single generation call.
type GenerateOptions struct {
	// Temperature (0.0 - 1.0). Lower values favor factual extraction.
	Temperature float64

	// TopP nucleus sampling.
	TopP float64

	// MaxTokens caps the number of generated tokens.
	MaxTokens int
}

// GenerateRequest is a single text-generation request.
type GenerateRequest struct {
	// Model name (e.g. "llama3.2:latest").
	Model string

	// Prompt text.
	Prompt string

	// Options for sampling.
	Options GenerateOptions
}

// Client is the capability the summarizer and vector engine depend on.
// Backends are interchangeable; consumers never see a concrete type.
type Client interface {
	// Generate produces text from a prompt.
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// Embed generates an embedding vector for text using the given model.
	Embed(ctx context.Context, model, text string) ([]float32, error)

	// TestConnection reports whether the backend is reachable.
	TestConnection(ctx context.Context) (bool, error)
}
