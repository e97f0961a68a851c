// Package config loads application configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/raphaelgruber/recordroute/internal/errs"
)

// Config holds all configuration values.
type Config struct {
	// Storage layout
	DBBasePath      string
	UploadDir       string
	VectorIndexPath string

	// Models
	WhisperModel   string
	LLMModel       string
	EmbeddingModel string
	EmbeddingDim   int

	// Ollama backend
	OllamaBaseURL string

	// LLM call retries
	MaxRetries int

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables, with a best-effort
// .env file load first. Defaults match a local single-user setup.
func Load() Config {
	_ = godotenv.Load()

	dbBase := getEnv("DB_BASE_PATH", "./db")

	return Config{
		DBBasePath:      dbBase,
		UploadDir:       getEnv("UPLOAD_DIR", filepath.Join(dbBase, "uploads")),
		VectorIndexPath: getEnv("VECTOR_INDEX_PATH", filepath.Join(dbBase, "vector_index.json")),

		WhisperModel:   getEnv("WHISPER_MODEL", "base"),
		LLMModel:       getEnv("LLM_MODEL", "llama3.2:latest"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
		EmbeddingDim:   getEnvInt("EMBEDDING_DIM", 768),

		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),

		MaxRetries: getEnvInt("LLM_MAX_RETRIES", 3),

		LogFile:  getEnv("LOG_FILE", filepath.Join(dbBase, "log", "recordroute.log")),
		LogLevel: parseLogLevel(getEnv("LOG_LEVEL", "INFO")),
	}
}

// WhisperOutputDir is where transcripts, summaries and segment files land.
func (c Config) WhisperOutputDir() string {
	return filepath.Join(c.DBBasePath, "whisper_output")
}

// EmbeddingsDir is where per-document embedding vectors are stored.
func (c Config) EmbeddingsDir() string {
	return filepath.Join(c.DBBasePath, "embeddings")
}

// HistoryPath is the location of the history journal file.
func (c Config) HistoryPath() string {
	return filepath.Join(c.DBBasePath, "history.json")
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c Config) EnsureDirectories() error {
	dirs := []string{
		c.DBBasePath,
		c.UploadDir,
		c.WhisperOutputDir(),
		c.EmbeddingsDir(),
		filepath.Dir(c.LogFile),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.Config("create directory %s: %v", dir, err)
		}
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
