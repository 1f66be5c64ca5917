package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/andrew/support-rag/pkg/chunker"
	"github.com/andrew/support-rag/pkg/complaint"
	"github.com/andrew/support-rag/pkg/embedding"
	"github.com/andrew/support-rag/pkg/models"
	"github.com/andrew/support-rag/pkg/retrieval"
	"github.com/andrew/support-rag/pkg/synthesis"
	"github.com/andrew/support-rag/pkg/ticket"
	"github.com/andrew/support-rag/pkg/vector"
)

// Pipeline is the top-level orchestrator: it owns the ingestion flow
// (documents -> chunks -> embeddings -> index) and the query flow (query ->
// retrieval + complaint detection -> synthesis -> optional ticket). It is
// the only component that creates tickets.
type Pipeline struct {
	chunker     *chunker.Chunker
	embedder    embedding.Embedder
	store       vector.Store
	retriever   *retrieval.Service
	detector    *complaint.Detector
	synthesizer *synthesis.Synthesizer
	tickets     *ticket.Service
	logger      arbor.ILogger
}

// NewPipeline wires the orchestrator from its components.
func NewPipeline(
	chunker *chunker.Chunker,
	embedder embedding.Embedder,
	store vector.Store,
	retriever *retrieval.Service,
	detector *complaint.Detector,
	synthesizer *synthesis.Synthesizer,
	tickets *ticket.Service,
	logger arbor.ILogger,
) *Pipeline {
	return &Pipeline{
		chunker:     chunker,
		embedder:    embedder,
		store:       store,
		retriever:   retriever,
		detector:    detector,
		synthesizer: synthesizer,
		tickets:     tickets,
		logger:      logger,
	}
}

// Ingest chunks, embeds, and indexes the given documents. Ingestion is not
// transactional: a chunk that fails to embed or index is counted and skipped
// while the rest of the document continues, and the summary reports the
// first error encountered.
func (p *Pipeline) Ingest(ctx context.Context, docs []models.Document) (models.IngestionSummary, error) {
	summary := models.IngestionSummary{}

	for _, doc := range docs {
		chunks := p.chunker.Split(doc)
		p.logger.Info().Str("source", doc.Source).Int("chunks", len(chunks)).Msg("Ingesting document")

		for _, ch := range chunks {
			if err := p.indexChunk(ctx, ch); err != nil {
				summary.ChunksFailed++
				if summary.FirstError == "" {
					summary.FirstError = err.Error()
				}
				p.logger.Warn().
					Err(err).
					Str("source", ch.Source).
					Int("chunk_index", ch.Index).
					Msg("Failed to index chunk")
				continue
			}
			summary.ChunksIndexed++
		}
		summary.DocumentsProcessed++
	}

	summary.CompletedAt = time.Now().UTC()
	p.logger.Info().
		Int("documents", summary.DocumentsProcessed).
		Int("indexed", summary.ChunksIndexed).
		Int("failed", summary.ChunksFailed).
		Msg("Ingestion complete")

	return summary, nil
}

func (p *Pipeline) indexChunk(ctx context.Context, ch models.Chunk) error {
	vec, err := p.embedder.Embed(ctx, ch.Content)
	if err != nil {
		return fmt.Errorf("embedding chunk %d of %s: %w", ch.Index, ch.Source, err)
	}
	if err := p.store.Upsert(ctx, vector.PointID(ch.Source, ch.Index), vec, ch); err != nil {
		return fmt.Errorf("indexing chunk %d of %s: %w", ch.Index, ch.Source, err)
	}
	return nil
}

// AnswerQuery runs the full query flow and assembles the structured
// response. Complaint detection runs regardless of retrieval outcome. At
// most one ticket is created per invocation; if ticket creation fails, the
// synthesized answer is still returned with TicketCreated=false rather than
// discarded.
func (p *Pipeline) AnswerQuery(ctx context.Context, query string) (*models.QueryResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, retrieval.ErrEmptyQuery
	}

	results, err := p.retriever.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	isComplaint, matches := p.detector.Detect(query)

	answer, citations, err := p.synthesizer.Answer(ctx, query, results)
	if err != nil {
		return nil, err
	}

	resp := &models.QueryResponse{
		Query:        query,
		Answer:       answer,
		Citations:    citations,
		IsComplaint:  isComplaint,
		MatchedTerms: matches,
	}

	if isComplaint {
		created, err := p.tickets.Create(ctx, query, answer, "complaint", p.detector.Priority(matches))
		if err != nil {
			// Answering the user outranks ticketing: degrade instead of
			// discarding a successfully generated answer.
			p.logger.Error().Err(err).Msg("Failed to create complaint ticket")
		} else {
			resp.TicketCreated = true
			resp.TicketID = created.ID
		}
	}

	return resp, nil
}

// Tickets exposes the ticket service for callers that manage tickets
// directly, outside the query flow.
func (p *Pipeline) Tickets() *ticket.Service {
	return p.tickets
}

// IndexedCount reports the number of entries in the vector index.
func (p *Pipeline) IndexedCount(ctx context.Context) (int64, error) {
	return p.store.Count(ctx)
}
