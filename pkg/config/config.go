package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfiguration is returned when the configuration fails
// validation. It is a startup failure, not a per-request condition.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ChunkingConfig configures how documents are split before indexing.
type ChunkingConfig struct {
	// Size is the maximum chunk length in characters.
	Size int `yaml:"size" validate:"gt=0"`
	// Overlap is how many trailing characters each chunk shares with the
	// next one, to preserve context across boundaries.
	Overlap int `yaml:"overlap" validate:"gte=0,ltfield=Size"`
}

// RetrievalConfig configures query-time retrieval.
type RetrievalConfig struct {
	// TopK is the number of passages requested from the vector index.
	TopK int `yaml:"top_k" validate:"gt=0"`
	// ScoreThreshold excludes passages scoring below it. Zero keeps everything.
	ScoreThreshold float32 `yaml:"score_threshold" validate:"gte=0"`
}

// ComplaintConfig holds the lexical vocabulary for complaint detection.
type ComplaintConfig struct {
	// Terms flag a query as a complaint when matched case-insensitively.
	Terms []string `yaml:"terms" validate:"min=1"`
	// SeverityTerms escalate a created ticket to high priority.
	SeverityTerms []string `yaml:"severity_terms"`
}

// EmbeddingConfig configures the embedding service.
type EmbeddingConfig struct {
	Model     string `yaml:"model" validate:"required"`
	Dimension int    `yaml:"dimension" validate:"gt=0"`
	OllamaURL string `yaml:"ollama_url"`
}

// GenerationConfig configures answer generation.
type GenerationConfig struct {
	Model     string `yaml:"model" validate:"required"`
	OllamaURL string `yaml:"ollama_url"`
	// SupportContact is mentioned in fallback answers when no context exists.
	SupportContact string `yaml:"support_contact"`
}

// QdrantConfig contains connection details for the Qdrant vector index.
type QdrantConfig struct {
	Addr       string `yaml:"addr" validate:"required"`
	Collection string `yaml:"collection" validate:"required"`
}

// TicketsConfig configures the ticket store.
type TicketsConfig struct {
	// Path is the directory holding the Badger database.
	Path string `yaml:"path" validate:"required"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0,lte=65535"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Config is the root application configuration structure.
type Config struct {
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Complaint  ComplaintConfig  `yaml:"complaint"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Qdrant     QdrantConfig     `yaml:"qdrant"`
	Tickets    TicketsConfig    `yaml:"tickets"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			Size:    500,
			Overlap: 50,
		},
		Retrieval: RetrievalConfig{
			TopK:           3,
			ScoreThreshold: 0.0,
		},
		Complaint: ComplaintConfig{
			Terms: []string{
				"frustrated", "angry", "upset", "terrible",
				"worst", "horrible", "unacceptable", "disappointed", "furious",
				"never received", "still waiting", "no response", "bad experience",
				"want to escalate", "speak to manager", "supervisor",
				"broken", "damaged", "wrong item", "not working",
				"this is ridiculous", "waste of time", "never again",
				"very unhappy", "extremely disappointed", "fed up",
				"demand", "lawsuit", "legal action", "complaint",
			},
			SeverityTerms: []string{
				"furious", "unacceptable", "lawsuit", "legal action",
				"demand", "want to escalate", "speak to manager",
			},
		},
		Embedding: EmbeddingConfig{
			Model:     "all-minilm",
			Dimension: 384,
			OllamaURL: "http://localhost:11434",
		},
		Generation: GenerationConfig{
			Model:          "llama3",
			OllamaURL:      "http://localhost:11434/api",
			SupportContact: "support@techmart.com",
		},
		Qdrant: QdrantConfig{
			Addr:       "localhost:6334",
			Collection: "support_docs",
		},
		Tickets: TicketsConfig{
			Path: "./data/tickets",
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a config from the given path. A missing file returns defaults;
// a present but invalid file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks structural constraints such as overlap < chunk size.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	return nil
}
