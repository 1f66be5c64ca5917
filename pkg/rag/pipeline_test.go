package rag

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/andrew/support-rag/pkg/chunker"
	"github.com/andrew/support-rag/pkg/complaint"
	"github.com/andrew/support-rag/pkg/config"
	"github.com/andrew/support-rag/pkg/embedding"
	"github.com/andrew/support-rag/pkg/llm"
	"github.com/andrew/support-rag/pkg/models"
	"github.com/andrew/support-rag/pkg/retrieval"
	"github.com/andrew/support-rag/pkg/synthesis"
	"github.com/andrew/support-rag/pkg/ticket"
	"github.com/andrew/support-rag/pkg/vector"
)

// hashEmbedder is a deterministic stand-in for the embedding port: texts
// sharing words get similar vectors, so retrieval behaves realistically.
type hashEmbedder struct {
	failOn string
}

func (e *hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.failOn != "" && strings.Contains(text, e.failOn) {
		return nil, embedding.ErrUnavailable
	}
	vec := make([]float32, 16)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, "?!.,")
		var h uint32
		for _, r := range word {
			h = h*31 + uint32(r)
		}
		vec[h%16]++
	}
	return vec, nil
}

func (e *hashEmbedder) Dimension() int { return 16 }

type echoGenerator struct {
	err error
}

func (g *echoGenerator) Generate(_ context.Context, prompt string, _ llm.ModelConfig) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	if strings.Contains(prompt, "No relevant documentation was found") {
		return "I'm sorry, our documentation does not cover that.", nil
	}
	return "Based on our documentation: " + prompt[:40], nil
}

func (g *echoGenerator) Close() error { return nil }

type countingTicketStore struct {
	inserts int
	failAll bool
	tickets map[string]models.Ticket
}

func newCountingTicketStore() *countingTicketStore {
	return &countingTicketStore{tickets: make(map[string]models.Ticket)}
}

func (s *countingTicketStore) Insert(_ context.Context, t *models.Ticket) error {
	if s.failAll {
		return ticket.ErrPersistence
	}
	s.inserts++
	s.tickets[t.ID] = *t
	return nil
}

func (s *countingTicketStore) Get(_ context.Context, id string) (*models.Ticket, error) {
	t, ok := s.tickets[id]
	if !ok {
		return nil, ticket.ErrNotFound
	}
	return &t, nil
}

func (s *countingTicketStore) Update(_ context.Context, t *models.Ticket) error {
	if _, ok := s.tickets[t.ID]; !ok {
		return ticket.ErrNotFound
	}
	s.tickets[t.ID] = *t
	return nil
}

func (s *countingTicketStore) List(_ context.Context, status models.TicketStatus, limit int) ([]models.Ticket, error) {
	var out []models.Ticket
	for _, t := range s.tickets {
		if status == "" || t.Status == status {
			out = append(out, t)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *countingTicketStore) Close() error { return nil }

type pipelineFixture struct {
	pipeline    *Pipeline
	ticketStore *countingTicketStore
	embedder    *hashEmbedder
	generator   *echoGenerator
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	cfg := config.Default()
	logger := arbor.NewLogger()

	ch, err := chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap)
	require.NoError(t, err)

	embedder := &hashEmbedder{}
	store := vector.NewMemoryStore()
	retriever := retrieval.NewService(embedder, store, retrieval.Config{
		TopK:           cfg.Retrieval.TopK,
		ScoreThreshold: cfg.Retrieval.ScoreThreshold,
	})
	detector := complaint.NewDetector(cfg.Complaint.Terms, cfg.Complaint.SeverityTerms)
	generator := &echoGenerator{}
	synthesizer := synthesis.NewSynthesizer(generator, llm.DefaultModelConfig(), cfg.Generation.SupportContact)
	ticketStore := newCountingTicketStore()
	tickets := ticket.NewService(ticketStore, logger)

	return &pipelineFixture{
		pipeline:    NewPipeline(ch, embedder, store, retriever, detector, synthesizer, tickets, logger),
		ticketStore: ticketStore,
		embedder:    embedder,
		generator:   generator,
	}
}

func refundDocument() models.Document {
	return models.Document{
		Source:  "refund_policy.txt",
		Content: "Refunds are processed within 5 business days.",
	}
}

func TestIngestSingleShortDocument(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	summary, err := f.pipeline.Ingest(ctx, []models.Document{refundDocument()})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.DocumentsProcessed)
	assert.Equal(t, 1, summary.ChunksIndexed)
	assert.Equal(t, 0, summary.ChunksFailed)
	assert.Empty(t, summary.FirstError)

	count, err := f.pipeline.IndexedCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestIngestCollectsPartialFailures(t *testing.T) {
	f := newPipelineFixture(t)
	f.embedder.failOn = "shipping"
	ctx := context.Background()

	docs := []models.Document{
		refundDocument(),
		{Source: "shipping.txt", Content: "Standard shipping takes 5-7 days."},
	}
	summary, err := f.pipeline.Ingest(ctx, docs)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.DocumentsProcessed)
	assert.Equal(t, 1, summary.ChunksIndexed)
	assert.Equal(t, 1, summary.ChunksFailed)
	assert.Contains(t, summary.FirstError, "shipping.txt")
}

func TestIngestReplacesOnReingestion(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	_, err := f.pipeline.Ingest(ctx, []models.Document{refundDocument()})
	require.NoError(t, err)
	_, err = f.pipeline.Ingest(ctx, []models.Document{refundDocument()})
	require.NoError(t, err)

	count, err := f.pipeline.IndexedCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count, "re-ingestion must not duplicate entries")
}

func TestAnswerQueryCitesRetrievedSource(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	_, err := f.pipeline.Ingest(ctx, []models.Document{refundDocument()})
	require.NoError(t, err)

	resp, err := f.pipeline.AnswerQuery(ctx, "What is your refund policy?")

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Answer)
	assert.Contains(t, resp.Citations, "refund_policy.txt")
	assert.False(t, resp.IsComplaint)
	assert.False(t, resp.TicketCreated)
	assert.Empty(t, resp.TicketID)
}

func TestAnswerQueryComplaintCreatesSingleTicket(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	// The query matches several complaint terms; only one ticket may result.
	resp, err := f.pipeline.AnswerQuery(ctx, "My product is broken and I am very frustrated!")

	require.NoError(t, err)
	assert.True(t, resp.IsComplaint)
	assert.Contains(t, resp.MatchedTerms, "broken")
	assert.Contains(t, resp.MatchedTerms, "frustrated")
	assert.True(t, resp.TicketCreated)
	assert.NotEmpty(t, resp.TicketID)
	assert.Equal(t, 1, f.ticketStore.inserts)

	created, err := f.pipeline.Tickets().Get(ctx, resp.TicketID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusOpen, created.Status)
	assert.Equal(t, "My product is broken and I am very frustrated!", created.CustomerQuery)
	assert.Equal(t, "complaint", created.Category)
}

func TestAnswerQueryTicketLifecycle(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	resp, err := f.pipeline.AnswerQuery(ctx, "I'm furious, my order never arrived!")
	require.NoError(t, err)
	require.True(t, resp.TicketCreated)

	created, err := f.pipeline.Tickets().Get(ctx, resp.TicketID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketPriorityHigh, created.Priority)

	_, err = f.pipeline.Tickets().UpdateStatus(ctx, resp.TicketID, models.TicketStatusClosed, "")
	require.NoError(t, err)

	closed, err := f.pipeline.Tickets().Get(ctx, resp.TicketID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusClosed, closed.Status)
}

func TestAnswerQueryEmptyIndexStillAnswers(t *testing.T) {
	f := newPipelineFixture(t)

	resp, err := f.pipeline.AnswerQuery(context.Background(), "What is your refund policy?")

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Answer)
	assert.Empty(t, resp.Citations)
}

func TestAnswerQueryRejectsEmptyQuery(t *testing.T) {
	f := newPipelineFixture(t)

	_, err := f.pipeline.AnswerQuery(context.Background(), "   ")

	assert.ErrorIs(t, err, retrieval.ErrEmptyQuery)
	assert.Equal(t, 0, f.ticketStore.inserts, "an invalid query must cause no side effects")
}

func TestAnswerQueryTicketFailureStillReturnsAnswer(t *testing.T) {
	f := newPipelineFixture(t)
	f.ticketStore.failAll = true

	resp, err := f.pipeline.AnswerQuery(context.Background(), "My product arrived damaged, this is terrible")

	require.NoError(t, err)
	assert.True(t, resp.IsComplaint)
	assert.False(t, resp.TicketCreated)
	assert.Empty(t, resp.TicketID)
	assert.NotEmpty(t, resp.Answer)
}

func TestAnswerQueryGenerationFailurePropagates(t *testing.T) {
	f := newPipelineFixture(t)
	f.generator.err = llm.ErrUnavailable

	_, err := f.pipeline.AnswerQuery(context.Background(), "What is your refund policy?")

	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrUnavailable)
	assert.Equal(t, 0, f.ticketStore.inserts)
}
