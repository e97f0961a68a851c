package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/raphaelgruber/recordroute/internal/errs"
)

// OllamaClient talks to a local Ollama server through langchaingo.
// Model handles are created lazily and cached per model name, since
// generation and embedding may use different models.
type OllamaClient struct {
	serverURL  string
	httpClient *http.Client

	mu     sync.Mutex
	models map[string]*ollama.LLM
}

// Compile-time check that OllamaClient implements Client.
var _ Client = (*OllamaClient)(nil)

// NewOllamaClient creates a client for the given server URL.
func NewOllamaClient(serverURL string) *OllamaClient {
	slog.Info("ollama client initialized", "url", serverURL)
	return &OllamaClient{
		serverURL:  serverURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		models:     make(map[string]*ollama.LLM),
	}
}

func (c *OllamaClient) model(name string) (*ollama.LLM, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.models[name]; ok {
		return m, nil
	}

	m, err := ollama.New(
		ollama.WithModel(name),
		ollama.WithServerURL(c.serverURL),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama model %s: %w", name, err)
	}

	c.models[name] = m
	return m, nil
}

// Generate produces text from a prompt with the request's sampling options.
func (c *OllamaClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	m, err := c.model(req.Model)
	if err != nil {
		return "", errs.Generation("%v", err)
	}

	slog.Debug("sending generate request",
		"model", req.Model, "prompt_len", len(req.Prompt), "max_tokens", req.Options.MaxTokens)

	start := time.Now()
	response, err := llms.GenerateFromSinglePrompt(ctx, m, req.Prompt,
		llms.WithTemperature(req.Options.Temperature),
		llms.WithTopP(req.Options.TopP),
		llms.WithMaxTokens(req.Options.MaxTokens),
	)
	if err != nil {
		return "", errs.Generation("generate with model %s: %v", req.Model, err)
	}

	slog.Debug("generate complete",
		"model", req.Model, "response_len", len(response), "duration_ms", time.Since(start).Milliseconds())
	return response, nil
}

// Embed generates an embedding vector for text.
func (c *OllamaClient) Embed(ctx context.Context, model, text string) ([]float32, error) {
	m, err := c.model(model)
	if err != nil {
		return nil, errs.Generation("%v", err)
	}

	embedder, err := embeddings.NewEmbedder(m)
	if err != nil {
		return nil, errs.Generation("create embedder for %s: %v", model, err)
	}

	slog.Debug("embedding text", "model", model, "text_len", len(text))

	vector, err := embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, errs.Generation("embed with model %s: %v", model, err)
	}
	if len(vector) == 0 {
		return nil, errs.Generation("no embedding returned by model %s", model)
	}

	return vector, nil
}

// TestConnection probes the Ollama tags endpoint.
func (c *OllamaClient) TestConnection(ctx context.Context) (bool, error) {
	url := strings.TrimRight(c.serverURL, "/") + "/api/tags"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, errs.Network("build request: %v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, errs.Network("connect to ollama: %v", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
