package domain

import (
	"context"
	"errors"
)

// Document represents a single text file loaded from the corpus folder.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Chunk is a bounded window of a document's text used as the atomic unit
// of embedding and retrieval.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Text       string
	Index      int
}

// SearchResult represents a matching chunk with a similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float32
}

// ErrNoContent is returned when an indexing operation receives an empty
// chunk set. An empty store is never persisted.
var ErrNoContent = errors.New("no content to index")

// ErrStoreUnavailable is returned when a persisted vector store is missing
// or unreadable. Callers fall back to general-knowledge mode.
var ErrStoreUnavailable = errors.New("vector store unavailable")

// DegradedReply is shown to the user when the completion service is
// unavailable. The turn still succeeds from the caller's perspective; every
// front end shares this sentinel so the wording cannot drift.
const DegradedReply = "Sorry, I could not generate a response right now. Please try again."

// Loader reads the corpus folder into raw documents.
type Loader interface {
	Load() ([]Document, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// VectorStore persists embedded chunks and supports similarity search.
// Rebuild fully replaces any previous contents; there is no incremental
// upsert or delete of individual records.
type VectorStore interface {
	Rebuild(ctx context.Context, chunks []Chunk) error
	Search(ctx context.Context, query string, topK int) ([]SearchResult, error)
	Ready() bool
}

// Completer generates a reply from an ordered list of role-tagged messages.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
