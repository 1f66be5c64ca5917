package models

import "time"

// Document represents a source document that can be indexed for retrieval
type Document struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}

// Chunk represents a bounded segment of a document that can be vectorized.
// Index is the chunk's position within its source document.
type Chunk struct {
	Source  string `json:"source"`
	Index   int    `json:"index"`
	Content string `json:"content"`
}

// SearchResult represents a document chunk that matched a query
type SearchResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float32 `json:"score"`
}

// IngestionSummary reports the outcome of an ingestion run. Ingestion is not
// transactional: chunks that fail to embed or index are counted and the first
// error is kept while the rest of the document is still processed.
type IngestionSummary struct {
	DocumentsProcessed int       `json:"documents_processed"`
	ChunksIndexed      int       `json:"chunks_indexed"`
	ChunksFailed       int       `json:"chunks_failed"`
	FirstError         string    `json:"first_error,omitempty"`
	CompletedAt        time.Time `json:"completed_at"`
}
