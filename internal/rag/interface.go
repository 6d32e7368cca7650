// Package rag defines the interfaces for the retrieval-augmented generation
// pipeline: vector storage, embedding, and answer generation.
// Concrete implementations (Qdrant, in-memory) satisfy these interfaces so the
// server layer never depends on a specific backend.
package rag

import (
	"context"
)

// Document represents a unit of stored or retrieved knowledge — one chunk of
// an ingested document together with its provenance metadata.
type Document struct {
	// ID is the unique identifier for this chunk.
	ID string

	// Content is the raw text content of the chunk.
	Content string

	// Source is the origin label of the chunk (usually the source filename).
	Source string

	// Page is the 1-based page number the chunk was extracted from.
	// Zero means the page is unknown.
	Page int

	// Metadata holds arbitrary key-value pairs (filename, chunk index, etc.).
	Metadata map[string]string

	// Score is the similarity score assigned during retrieval.
	// Zero value means the score was not computed.
	Score float32
}

// CollectionInfo describes the current state of the knowledge base.
type CollectionInfo struct {
	// Name is the collection name.
	Name string

	// Count is the number of stored chunks. Zero when the collection does
	// not exist yet.
	Count int

	// Metadata holds collection-level key-value pairs. Never nil.
	Metadata map[string]string
}

// VectorStore is the interface for persisting and searching document chunks.
// Implementations must be safe to call from multiple goroutines: a Search must
// never observe a partially applied Upsert, and a Clear running concurrently
// with a Search must present either the pre-clear or post-clear state.
type VectorStore interface {
	// Upsert stores a batch of documents with their pre-computed embeddings.
	// The embeddings slice must be parallel to docs — embeddings[i] is the
	// vector for docs[i]. The batch is applied atomically.
	Upsert(ctx context.Context, docs []Document, embeddings [][]float32) error

	// Search returns the top-k stored documents most similar to the query
	// embedding, ordered most-similar-first. An empty or missing collection
	// yields an empty slice, never an error.
	Search(ctx context.Context, queryEmbedding []float32, topK int) ([]Document, error)

	// Clear removes all stored documents, leaving an empty usable collection.
	// Calling Clear on an already-empty store is a no-op.
	Clear(ctx context.Context) error

	// Info reports the current chunk count and collection metadata. A missing
	// collection yields a zero count, never an error.
	Info(ctx context.Context) (CollectionInfo, error)

	// Close releases any resources held by the store.
	Close() error
}

// Embedder is the interface for converting text into dense vector embeddings.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
