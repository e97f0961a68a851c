// Package errs defines the error taxonomy shared across the pipeline.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for the processing pipeline.
// Use errors.Is() to classify errors in calling code.
var (
	// ErrTranscription indicates a speech-to-text failure.
	ErrTranscription = errors.New("transcription error")

	// ErrGeneration indicates an LLM text-generation or embedding failure.
	ErrGeneration = errors.New("generation error")

	// ErrVectorSearch indicates a vector index or similarity-search failure.
	ErrVectorSearch = errors.New("vector search error")

	// ErrConfig indicates invalid or missing configuration.
	ErrConfig = errors.New("configuration error")

	// ErrFilesystem indicates a file read/write failure.
	ErrFilesystem = errors.New("filesystem error")

	// ErrNetwork indicates a transport-level failure talking to a backend.
	ErrNetwork = errors.New("network error")

	// ErrSerialization indicates a JSON encode/decode failure.
	ErrSerialization = errors.New("serialization error")

	// ErrInvalidInput indicates a caller-supplied value was rejected.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInternal indicates an unexpected internal failure.
	ErrInternal = errors.New("internal error")
)

// Transcription wraps a message as a transcription error.
func Transcription(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTranscription, fmt.Sprintf(format, args...))
}

// Generation wraps a message as a generation error.
func Generation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrGeneration, fmt.Sprintf(format, args...))
}

// VectorSearch wraps a message as a vector search error.
func VectorSearch(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrVectorSearch, fmt.Sprintf(format, args...))
}

// Config wraps a message as a configuration error.
func Config(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

// Filesystem wraps a message as a filesystem error.
func Filesystem(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFilesystem, fmt.Sprintf(format, args...))
}

// Network wraps a message as a network error.
func Network(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNetwork, fmt.Sprintf(format, args...))
}

// Serialization wraps a message as a serialization error.
func Serialization(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSerialization, fmt.Sprintf(format, args...))
}

// InvalidInput wraps a message as an invalid-input error.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFound wraps a message as a not-found error.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Internal wraps a message as an internal error.
func Internal(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInternal, fmt.Sprintf(format, args...))
}
