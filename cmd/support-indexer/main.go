package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/ternarybob/arbor"
	arbormodels "github.com/ternarybob/arbor/models"

	"github.com/andrew/support-rag/pkg/chunker"
	"github.com/andrew/support-rag/pkg/config"
	"github.com/andrew/support-rag/pkg/embedding"
	"github.com/andrew/support-rag/pkg/models"
	"github.com/andrew/support-rag/pkg/vector"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML configuration file")
	docsDir := flag.String("docs-dir", "data/docs", "Directory containing support documents (.txt/.md)")
	recreate := flag.Bool("recreate", false, "Drop and recreate the collection before indexing")
	flag.Parse()

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldRed := color.New(color.FgRed, color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", boldRed("😡 Config error:"), err)
		os.Exit(1)
	}

	logger := arbor.NewLogger().WithConsoleWriter(arbormodels.WriterConfiguration{
		Type:       arbormodels.LogWriterTypeConsole,
		TimeFormat: "15:04:05",
		TextOutput: true,
	}).WithLevelFromString(cfg.Logging.Level)

	ctx := context.Background()

	embedder, err := embedding.NewOllamaEmbedder(cfg.Embedding.OllamaURL, cfg.Embedding.Model, cfg.Embedding.Dimension)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", boldRed("😡 Ollama setup failed:"), err)
		os.Exit(1)
	}

	store, err := vector.NewQdrantStore(cfg.Qdrant.Addr, cfg.Qdrant.Collection, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", boldRed("😡 Qdrant connection failed:"), err)
		os.Exit(1)
	}
	defer store.Close()
	fmt.Printf("✅ Connected to Qdrant at %s\n", cyan(cfg.Qdrant.Addr))

	if err := store.EnsureCollection(ctx, cfg.Embedding.Dimension, *recreate); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", boldRed("😡 Collection setup failed:"), err)
		os.Exit(1)
	}

	docs, err := loadDocuments(*docsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", boldRed("😡 Error reading documents:"), err)
		os.Exit(1)
	}
	if len(docs) == 0 {
		fmt.Fprintf(os.Stderr, "%s no .txt or .md files found in %s\n", boldRed("😡"), *docsDir)
		os.Exit(1)
	}
	fmt.Printf("📚 Processing %d documents from %s\n", len(docs), cyan(*docsDir))

	ch, err := chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", boldRed("😡 Chunker setup failed:"), err)
		os.Exit(1)
	}

	var indexed, failed int
	for i, doc := range docs {
		chunks := ch.Split(doc)
		fmt.Printf("📄 [%d/%d] %s (%d chunks)\n", i+1, len(docs), doc.Source, len(chunks))

		for _, chunk := range chunks {
			vec, err := embedder.Embed(ctx, chunk.Content)
			if err != nil {
				logger.Warn().Err(err).Str("source", chunk.Source).Int("chunk", chunk.Index).Msg("Embedding failed")
				failed++
				continue
			}
			if err := store.Upsert(ctx, vector.PointID(chunk.Source, chunk.Index), vec, chunk); err != nil {
				logger.Warn().Err(err).Str("source", chunk.Source).Int("chunk", chunk.Index).Msg("Upsert failed")
				failed++
				continue
			}
			indexed++
		}
	}

	if failed > 0 {
		fmt.Printf("⚠️  %d chunks failed to index\n", failed)
	}
	fmt.Printf("%s Indexed %d chunks from %d documents into %s\n",
		boldGreen("✅"), indexed, len(docs), cyan(cfg.Qdrant.Collection))
}

// loadDocuments enumerates the plain-text documents under dir.
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
