package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// memoryRow is one stored (document, embedding) pair.
type memoryRow struct {
	doc       Document
	embedding []float32
}

// MemoryStore is an in-process VectorStore using brute-force cosine
// similarity. It is the default store for tests and for running the server
// without a Qdrant instance. All operations are guarded by a RWMutex, so a
// Search never observes a partially applied Upsert and a concurrent Clear
// presents either the pre-clear or post-clear state.
type MemoryStore struct {
	// mu serialises writers against readers.
	mu sync.RWMutex

	// rows holds the stored documents in insertion order.
	rows []memoryRow

	// name is the logical collection name reported by Info.
	name string
}

// NewMemoryStore constructs an empty MemoryStore with the given collection name.
func NewMemoryStore(name string) *MemoryStore {
	if name == "" {
		name = "memory"
	}
	return &MemoryStore{name: name}
}

// Upsert appends the batch under the write lock so the whole batch becomes
// visible to readers at once.
func (s *MemoryStore) Upsert(_ context.Context, docs []Document, embeddings [][]float32) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("memory: got %d docs but %d embeddings", len(docs), len(embeddings))
	}

	rows := make([]memoryRow, 0, len(docs))
	for i, doc := range docs {
		rows = append(rows, memoryRow{doc: doc, embedding: embeddings[i]})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
	return nil
}

// Search scores every stored row against the query embedding and returns the
// topK best matches, most similar first. An empty store yields an empty slice.
func (s *MemoryStore) Search(_ context.Context, queryEmbedding []float32, topK int) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.rows) == 0 || topK <= 0 {
		return []Document{}, nil
	}

	scored := make([]Document, 0, len(s.rows))
	for _, row := range s.rows {
		doc := row.doc
		doc.Score = cosineSimilarity(queryEmbedding, row.embedding)
		scored = append(scored, doc)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

// Clear drops every stored row. Idempotent.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = nil
	return nil
}

// Info reports the current row count.
func (s *MemoryStore) Info(_ context.Context) (CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CollectionInfo{
		Name:     s.name,
		Count:    len(s.rows),
		Metadata: map[string]string{"backend": "memory"},
	}, nil
}

// Ping always succeeds — the store is in-process.
func (s *MemoryStore) Ping(_ context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// cosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either vector is zero-length or the dimensions disagree.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
