package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaClient is a client that uses the Ollama API to generate text
type OllamaClient struct {
	baseURL    string
	httpClient *http.Client
	modelName  string
}

// OllamaRequest represents a request to the Ollama API
type OllamaRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream,omitempty"`
	Options Options `json:"options,omitempty"`
}

// Options represents parameter options for the model
type Options struct {
	Temperature float32 `json:"temperature,omitempty"`
	TopP        float32 `json:"top_p,omitempty"`
	MaxTokens   int     `json:"num_predict,omitempty"`
}

// OllamaResponse represents a response from the Ollama API
type OllamaResponse struct {
	Response string `json:"response"`
	Model    string `json:"model"`
	Done     bool   `json:"done"`
}

// NewOllamaClient creates a new client for a local Ollama server
func NewOllamaClient(modelName string, baseURL string) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434/api"
	}

	return &OllamaClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: time.Minute * 5, // generations can take a while
		},
		modelName: modelName,
	}
}

// Generate processes a single prompt and returns the completion. Transport
// and API failures surface as ErrUnavailable.
func (c *OllamaClient) Generate(ctx context.Context, prompt string, config ModelConfig) (string, error) {
	req := OllamaRequest{
		Model:  c.modelName,
		Prompt: prompt,
		Options: Options{
			Temperature: config.Temperature,
			TopP:        config.TopP,
			MaxTokens:   config.MaxTokens,
		},
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/generate", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: Ollama API error (status %d): %s", ErrUnavailable, resp.StatusCode, body)
	}

	// Ollama returns a stream of JSON objects, one per line; concatenate
	// the response fragments into the full completion.
	var fullResponse strings.Builder
	scanner := bufio.NewScanner(resp.Body)

	for scanner.Scan() {
		line := scanner.Text()
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}

		var chunk OllamaResponse
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			return "", fmt.Errorf("%w: failed to parse Ollama response chunk: %v", ErrUnavailable, err)
		}
		fullResponse.WriteString(chunk.Response)
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("%w: error reading response stream: %v", ErrUnavailable, err)
	}

	return fullResponse.String(), nil
}

// Close is a no-op for the HTTP-based client.
func (c *OllamaClient) Close() error {
	return nil
}
