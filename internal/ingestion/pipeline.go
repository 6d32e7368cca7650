package ingestion

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/ragbase/ragbase-go/internal/logging"
	"github.com/ragbase/ragbase-go/internal/rag"
)

// Config holds the configuration for the ingestion pipeline.
type Config struct {
	// ChunkSize is the maximum number of characters per document chunk.
	// Defaults to DefaultChunkSize if zero.
	ChunkSize int

	// ChunkOverlap is the number of characters shared between consecutive
	// chunks. Defaults to DefaultChunkOverlap if negative or >= ChunkSize.
	ChunkOverlap int
}

// Result summarises one completed ingestion.
type Result struct {
	// Filename is the name the document was ingested under.
	Filename string

	// Pages is the number of pages extracted from the PDF.
	Pages int

	// Chunks is the number of chunks embedded and stored.
	Chunks int
}

// Pipeline orchestrates the extract → chunk → embed → upsert flow for an
// uploaded PDF document.
type Pipeline struct {
	// embedder converts text chunks into dense vector embeddings.
	embedder rag.Embedder

	// store persists the embedded chunks.
	store rag.VectorStore

	// chunker splits page text into overlapping chunks.
	chunker *Chunker
}

// NewPipeline constructs a Pipeline from the provided dependencies and config.
func NewPipeline(embedder rag.Embedder, store rag.VectorStore, cfg *Config) (*Pipeline, error) {
	if embedder == nil {
		return nil, fmt.Errorf("ingestion: embedder must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("ingestion: store must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	size := cfg.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	overlap := cfg.ChunkOverlap
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = size / 5
		}
	}

	return &Pipeline{
		embedder: embedder,
		store:    store,
		chunker:  NewChunker(size, overlap),
	}, nil
}

// IngestBytes validates, extracts, chunks, embeds, and stores one PDF given as
// raw bytes. The store is only written after every chunk has embedded
// successfully, in a single batched upsert, so a mid-flight embedding failure
// leaves the knowledge base untouched.
func (p *Pipeline) IngestBytes(ctx context.Context, data []byte, filename string) (*Result, error) {
	if err := ValidatePDFName(filename); err != nil {
		return nil, err
	}

	pages, err := ExtractPages(data)
	if err != nil {
		return nil, err
	}

	return p.ingestPages(ctx, pages, filename)
}

// IngestFile reads a PDF from disk and ingests it under its base filename.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (*Result, error) {
	filename := filepath.Base(path)
	if err := ValidatePDFName(filename); err != nil {
		return nil, err
	}

	pages, err := ExtractPagesFromFile(path)
	if err != nil {
		return nil, err
	}

	return p.ingestPages(ctx, pages, filename)
}

// ingestPages runs the chunk → embed → upsert tail of the pipeline for
// already-extracted pages.
func (p *Pipeline) ingestPages(ctx context.Context, pages []PageText, filename string) (*Result, error) {
	log := logging.FromContext(ctx)

	docs := p.chunkPages(pages, filename)
	if len(docs) == 0 {
		return nil, fmt.Errorf("ingestion: no extractable text in %s", filename)
	}

	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		texts = append(texts, doc.Content)
	}

	embeddings, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("ingestion: embedding failed for %s: %w", filename, err)
	}
	if len(embeddings) != len(docs) {
		return nil, fmt.Errorf("ingestion: embedder returned %d vectors for %d chunks", len(embeddings), len(docs))
	}

	if err := p.store.Upsert(ctx, docs, embeddings); err != nil {
		return nil, fmt.Errorf("ingestion: upsert failed for %s: %w", filename, err)
	}

	log.Info("document ingested",
		slog.String("filename", filename),
		slog.Int("pages", len(pages)),
		slog.Int("chunks", len(docs)),
	)

	return &Result{Filename: filename, Pages: len(pages), Chunks: len(docs)}, nil
}

// chunkPages splits every page into chunks and attaches the provenance
// metadata later surfaced in answer sources.
func (p *Pipeline) chunkPages(pages []PageText, filename string) []rag.Document {
	var docs []rag.Document
	seq := 0
	for _, page := range pages {
		for _, chunk := range p.chunker.Chunk(page.Text) {
			docs = append(docs, rag.Document{
				ID:      chunkID(filename, page.Number, chunk.Index),
				Content: chunk.Text,
				Source:  filename,
				Page:    page.Number,
				Metadata: map[string]string{
					"filename":    filename,
					"chunk_index": strconv.Itoa(seq),
				},
			})
			seq++
		}
	}
	return docs
}

// chunkID generates a deterministic ID for a chunk from its filename, page
// number, and within-page index, so re-uploading the same document overwrites
// its previous chunks instead of duplicating them.
func chunkID(filename string, page, index int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s#%d#%d", filename, page, index)))
	return fmt.Sprintf("%x", h[:16])
}
