package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ternarybob/arbor"
	arbormodels "github.com/ternarybob/arbor/models"

	"github.com/andrew/support-rag/pkg/chunker"
	"github.com/andrew/support-rag/pkg/complaint"
	"github.com/andrew/support-rag/pkg/config"
	"github.com/andrew/support-rag/pkg/embedding"
	"github.com/andrew/support-rag/pkg/llm"
	"github.com/andrew/support-rag/pkg/models"
	"github.com/andrew/support-rag/pkg/rag"
	"github.com/andrew/support-rag/pkg/retrieval"
	"github.com/andrew/support-rag/pkg/synthesis"
	"github.com/andrew/support-rag/pkg/ticket"
	"github.com/andrew/support-rag/pkg/vector"
)

var (
	configPath = flag.String("config", "config.yaml", "Path to the YAML configuration file")
	docsDir    = flag.String("docs-dir", "data/docs", "Directory containing support documents (.txt/.md)")
	port       = flag.Int("port", 0, "Port to listen on (overrides config)")
)

type chatRequest struct {
	Query string `json:"query"`
}

type ingestRequest struct {
	Reset bool `json:"reset,omitempty"`
}

type ticketCreateRequest struct {
	CustomerQuery string `json:"customer_query"`
	Priority      string `json:"priority,omitempty"`
	Category      string `json:"category,omitempty"`
}

type ticketUpdateRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

func main() {
	flag.Parse()

	// Optional .env for local development; a missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	logger := newLogger(cfg.Logging.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		logger.Info().Msg("Shutting down...")
		cancel()
	}()

	pipeline, qdrantStore, ticketStore, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build pipeline")
	}
	defer qdrantStore.Close()
	defer ticketStore.Close()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /ingest", func(w http.ResponseWriter, r *http.Request) {
		var req ingestRequest
		if r.Body != nil {
			// An empty body means a plain, non-resetting ingest.
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		if err := qdrantStore.EnsureCollection(r.Context(), cfg.Embedding.Dimension, req.Reset); err != nil {
			writeError(w, err)
			return
		}

		docs, err := loadDocuments(*docsDir)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to read documents: %v", err), http.StatusInternalServerError)
			return
		}
		if len(docs) == 0 {
			http.Error(w, fmt.Sprintf("No documents found in %s", *docsDir), http.StatusBadRequest)
			return
		}

		summary, err := pipeline.Ingest(r.Context(), docs)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	})

	mux.HandleFunc("POST /chat", func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		resp, err := pipeline.AnswerQuery(r.Context(), req.Query)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})

	mux.HandleFunc("POST /tickets", func(w http.ResponseWriter, r *http.Request) {
		var req ticketCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.CustomerQuery) == "" {
			http.Error(w, "customer_query is required", http.StatusBadRequest)
			return
		}

		created, err := pipeline.Tickets().Create(r.Context(), req.CustomerQuery, "", req.Category, models.TicketPriority(req.Priority))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	})

	mux.HandleFunc("GET /tickets", func(w http.ResponseWriter, r *http.Request) {
		status := models.TicketStatus(r.URL.Query().Get("status"))
		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		tickets, err := pipeline.Tickets().List(r.Context(), status, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count":   len(tickets),
			"tickets": tickets,
		})
	})

	mux.HandleFunc("GET /tickets/{id}", func(w http.ResponseWriter, r *http.Request) {
		t, err := pipeline.Tickets().Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	})

	mux.HandleFunc("PATCH /tickets/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req ticketUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		t, err := pipeline.Tickets().UpdateStatus(r.Context(), r.PathValue("id"), models.TicketStatus(req.Status), req.Notes)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /stats", func(w http.ResponseWriter, r *http.Request) {
		indexed, err := pipeline.IndexedCount(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		ticketStats, err := pipeline.Tickets().Stats(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"collection":        cfg.Qdrant.Collection,
			"documents_indexed": indexed,
			"tickets":           ticketStats,
		})
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: mux,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting support service")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
}

// buildPipeline wires the orchestrator and its adapters from configuration.
func buildPipeline(ctx context.Context, cfg *config.Config, logger arbor.ILogger) (*rag.Pipeline, *vector.QdrantStore, *ticket.BadgerStore, error) {
	ch, err := chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		return nil, nil, nil, err
	}

	embedder, err := embedding.NewOllamaEmbedder(cfg.Embedding.OllamaURL, cfg.Embedding.Model, cfg.Embedding.Dimension)
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := vector.NewQdrantStore(cfg.Qdrant.Addr, cfg.Qdrant.Collection, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := store.EnsureCollection(ctx, cfg.Embedding.Dimension, false); err != nil {
		logger.Warn().Err(err).Msg("Could not verify Qdrant collection; run ingestion to create it")
	}

	retriever := retrieval.NewService(embedder, store, retrieval.Config{
		TopK:           cfg.Retrieval.TopK,
		ScoreThreshold: cfg.Retrieval.ScoreThreshold,
	})
	detector := complaint.NewDetector(cfg.Complaint.Terms, cfg.Complaint.SeverityTerms)

	generator := llm.NewOllamaClient(cfg.Generation.Model, cfg.Generation.OllamaURL)
	synthesizer := synthesis.NewSynthesizer(generator, llm.DefaultModelConfig(), cfg.Generation.SupportContact)

	ticketStore, err := ticket.NewBadgerStore(cfg.Tickets.Path, logger)
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}
	tickets := ticket.NewService(ticketStore, logger)

	pipeline := rag.NewPipeline(ch, embedder, store, retriever, detector, synthesizer, tickets, logger)
	return pipeline, store, ticketStore, nil
}

// loadDocuments enumerates the plain-text documents under dir. Binary
// formats are not parsed here; documents must already be extracted to text.
func loadDocuments(dir string) ([]models.Document, error) {
	var docs []models.Document
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".txt" && ext != ".md" {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		docs = append(docs, models.Document{
			Source:  filepath.Base(path),
			Content: string(content),
		})
		return nil
	})
	return docs, err
}

func newLogger(level string) arbor.ILogger {
	if level == "" {
		level = "info"
	}
	return arbor.NewLogger().WithConsoleWriter(arbormodels.WriterConfiguration{
		Type:       arbormodels.LogWriterTypeConsole,
		TimeFormat: "15:04:05",
		TextOutput: true,
	}).WithLevelFromString(level)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "Error encoding response", http.StatusInternalServerError)
	}
}

// writeError maps the error taxonomy onto HTTP statuses: caller errors get
// 4xx, degraded external dependencies get 503.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, retrieval.ErrEmptyQuery):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ticket.ErrInvalidStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ticket.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, retrieval.ErrUnavailable),
		errors.Is(err, embedding.ErrUnavailable),
		errors.Is(err, vector.ErrUnavailable),
		errors.Is(err, llm.ErrUnavailable),
		errors.Is(err, ticket.ErrPersistence):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
