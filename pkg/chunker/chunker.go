package chunker

import (
	"fmt"

	"github.com/andrew/support-rag/pkg/config"
	"github.com/andrew/support-rag/pkg/models"
)

// Chunker splits document text into fixed-size overlapping chunks. It is a
// pure function of its inputs: the same document and parameters always
// produce the same chunks.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker with the given maximum chunk size and overlap, both
// in characters. Overlap must be smaller than size.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", config.ErrInvalidConfiguration, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", config.ErrInvalidConfiguration, overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split produces the ordered chunks covering the document's content without
// gaps. Each chunk after the first repeats the previous chunk's trailing
// overlap. The final chunk may be shorter than the configured size. Empty
// content yields no chunks.
func (c *Chunker) Split(doc models.Document) []models.Chunk {
	runes := []rune(doc.Content)
	if len(runes) == 0 {
		return nil
	}

	stride := c.size - c.overlap
	var chunks []models.Chunk
	for start := 0; start < len(runes); start += stride {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, models.Chunk{
			Source:  doc.Source,
			Index:   len(chunks),
			Content: string(runes[start:end]),
		})
		if end == len(runes) {
			break
		}
	}
	return chunks
}
