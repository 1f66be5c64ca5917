package llm

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the text-generation service failed (timeout,
// quota, malformed response). Calls are single-attempt from the core's
// perspective.
var ErrUnavailable = errors.New("generation service unavailable")

// Client is the interface for the external text-generation capability
type Client interface {
	Generate(ctx context.Context, prompt string, config ModelConfig) (string, error)
	Close() error
}

// ModelConfig holds configuration parameters for model generation
type ModelConfig struct {
	Temperature   float32
	TopP          float32
	MaxTokens     int
	StopSequences []string
}

// DefaultModelConfig returns the configuration used for grounded support
// answers: low temperature keeps the model close to the supplied context.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Temperature: 0.3,
		TopP:        0.9,
		MaxTokens:   500,
	}
}
