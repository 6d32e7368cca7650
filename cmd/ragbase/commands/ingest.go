package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ragbase/ragbase-go/internal/embedder"
	"github.com/ragbase/ragbase-go/internal/ingestion"
	"github.com/ragbase/ragbase-go/internal/logging"
)

// NewIngestCmd constructs the `ragbase ingest` command, which indexes one or
// more local PDF files into the vector store.
func NewIngestCmd() *cobra.Command {
	var chunkSize int
	var chunkOverlap int

	cmd := &cobra.Command{
		Use:   "ingest [file.pdf ...]",
		Short: "Ingest PDF documents into the knowledge base",
		Long: `Extract, chunk, embed, and index local PDF files into the vector store.

Each page is extracted, split into overlapping chunks, embedded, and stored
with its provenance (filename, page number, chunk index). A document is
indexed atomically: if any chunk fails to embed, nothing is stored.

Required environment variables:
  QDRANT_HOST          Qdrant server hostname (default: localhost)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  QDRANT_COLLECTION    Collection name (default: ragbase-docs)
  VECTOR_STORE         Store backend: qdrant, memory (default: qdrant)
  MODEL_PROVIDER       Embedding backend: ollama, openai, azure (default: ollama)
  EMBEDDING_*          Provider-specific overrides (see README)

Examples:
  ragbase ingest manual.pdf
  ragbase ingest --chunk-size 500 --chunk-overlap 100 report.pdf appendix.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			if err := embedder.ValidateForRAG(log); err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("ingest: failed to initialise embedder: %w", err)
			}
			log.Info("embedder initialised", slog.String("provider", getEnvOrDefault("EMBEDDING_PROVIDER", getEnvOrDefault("MODEL_PROVIDER", "ollama"))))

			kb, closeStore, err := buildStore(ctx, log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer closeStore()

			// Flags win over env; both fall back to the pipeline defaults.
			if chunkSize == 0 {
				chunkSize = getEnvInt("CHUNK_SIZE", 0)
			}
			if chunkOverlap == 0 {
				chunkOverlap = getEnvInt("CHUNK_OVERLAP", 0)
			}

			pipeline, err := ingestion.NewPipeline(emb, kb, &ingestion.Config{
				ChunkSize:    chunkSize,
				ChunkOverlap: chunkOverlap,
			})
			if err != nil {
				return fmt.Errorf("ingest: failed to create pipeline: %w", err)
			}

			for _, path := range args {
				result, err := pipeline.IngestFile(ctx, path)
				if err != nil {
					return fmt.Errorf("ingest: %s: %w", path, err)
				}
				log.Info("document indexed",
					slog.String("file", result.Filename),
					slog.Int("pages", result.Pages),
					slog.Int("chunks", result.Chunks),
				)
				fmt.Printf("%s: %d pages, %d chunks indexed\n", result.Filename, result.Pages, result.Chunks)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Maximum characters per chunk (default from CHUNK_SIZE or 1000)")
	cmd.Flags().IntVar(&chunkOverlap, "chunk-overlap", 0, "Characters shared between consecutive chunks (default from CHUNK_OVERLAP or 200)")

	return cmd
}
