package llm

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
)

// StubClient is a deterministic in-process backend. It stands in when no
// real backend is reachable and serves as the test double for everything
// that depends on Client.
type StubClient struct {
	// Dim is the dimension of embedding vectors the stub produces.
	Dim int
}

var _ Client = (*StubClient)(nil)

// NewStubClient creates a stub producing vectors of the given dimension.
func NewStubClient(dim int) *StubClient {
	if dim <= 0 {
		dim = 768
	}
	return &StubClient{Dim: dim}
}

// Generate returns a canned response derived from the prompt. Identical
// prompts always produce identical output.
func (s *StubClient) Generate(_ context.Context, req GenerateRequest) (string, error) {
	// Echo a bounded slice of the prompt so output stays recognizable.
	excerpt := req.Prompt
	if len(excerpt) > 80 {
		excerpt = excerpt[:80]
	}
	excerpt = strings.ReplaceAll(excerpt, "\n", " ")
	return fmt.Sprintf("[stub %s] %s", req.Model, excerpt), nil
}

// Embed maps text to a bag-of-words vector hashed into Dim buckets.
// Identical texts embed identically; overlapping vocabulary yields
// proportionally similar vectors.
func (s *StubClient) Embed(_ context.Context, _ string, text string) ([]float32, error) {
	vector := make([]float32, s.Dim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		vector[int(h.Sum32())%s.Dim]++
	}
	return vector, nil
}

// TestConnection always succeeds.
func (s *StubClient) TestConnection(context.Context) (bool, error) {
	return true, nil
}
