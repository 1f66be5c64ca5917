package synthesis

import (
	"context"
	"fmt"
	"strings"

	"github.com/andrew/support-rag/pkg/llm"
	"github.com/andrew/support-rag/pkg/models"
)

const promptTemplate = `You are a helpful customer support assistant.
Your job is to answer customer questions using ONLY the information provided in the context below.

RULES:
1. Only use information from the provided context to answer
2. If the context doesn't contain the answer, say "I don't have information about that in our documentation"
3. Be friendly, professional, and concise
4. Always cite which document the information came from
5. If the customer seems frustrated or has a complaint, acknowledge their concern empathetically

CONTEXT (from company documents):
%s

CUSTOMER QUESTION: %s

Provide a helpful answer based on the context above. If citing information, mention the source document.`

const noContextTemplate = `You are a helpful customer support assistant.
No relevant documentation was found for the customer's question, so you have no context to answer from.
Politely explain that the documentation does not cover this topic and suggest contacting %s for further help.
Do not invent any policy, product, or order details.

CUSTOMER QUESTION: %s`

// Synthesizer turns a query and its retrieved passages into a grounded
// answer with citations. It owns prompt construction; the text generation
// itself is delegated to the llm client.
type Synthesizer struct {
	client         llm.Client
	modelConfig    llm.ModelConfig
	supportContact string
}

// NewSynthesizer creates a synthesizer over the given generation client.
// supportContact is offered in answers when no passages are available.
func NewSynthesizer(client llm.Client, modelConfig llm.ModelConfig, supportContact string) *Synthesizer {
	if supportContact == "" {
		supportContact = "our support team"
	}
	return &Synthesizer{client: client, modelConfig: modelConfig, supportContact: supportContact}
}

// Answer generates a response to the query grounded in the given passages,
// which must be in retrieval rank order. With no passages, generation still
// runs under an explicit no-context instruction and the citation list is
// empty. The citations are the distinct sources of the passages supplied as
// context, in rank order; they are never re-derived from the generated text.
func (s *Synthesizer) Answer(ctx context.Context, query string, results []models.SearchResult) (string, []string, error) {
	prompt := s.BuildPrompt(query, results)

	answer, err := s.client.Generate(ctx, prompt, s.modelConfig)
	if err != nil {
		return "", nil, fmt.Errorf("answer generation failed: %w", err)
	}

	return answer, citations(results), nil
}

// BuildPrompt renders the generation prompt for the query and passages.
func (s *Synthesizer) BuildPrompt(query string, results []models.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf(noContextTemplate, s.supportContact, query)
	}

	var contextParts []string
	for i, result := range results {
		contextParts = append(contextParts, fmt.Sprintf("[Document %d: %s]\n%s", i+1, result.Chunk.Source, result.Chunk.Content))
	}
	return fmt.Sprintf(promptTemplate, strings.Join(contextParts, "\n\n---\n\n"), query)
}

func citations(results []models.SearchResult) []string {
	cited := make([]string, 0, len(results))
	seen := make(map[string]bool, len(results))
	for _, result := range results {
		if seen[result.Chunk.Source] {
			continue
		}
		seen[result.Chunk.Source] = true
		cited = append(cited, result.Chunk.Source)
	}
	return cited
}
