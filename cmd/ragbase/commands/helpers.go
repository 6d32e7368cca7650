package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/ragbase/ragbase-go/internal/embedder"
	"github.com/ragbase/ragbase-go/internal/rag"
	"github.com/ragbase/ragbase-go/internal/server"
)

// buildStore constructs the knowledge-base vector store selected by the
// VECTOR_STORE environment variable: "qdrant" (default) or "memory".
// The returned cleanup function closes the store.
func buildStore(ctx context.Context, log *slog.Logger) (rag.VectorStore, func(), error) {
	backend := getEnvOrDefault("VECTOR_STORE", "qdrant")

	switch backend {
	case "memory":
		ms := rag.NewMemoryStore(getEnvOrDefault("QDRANT_COLLECTION", "ragbase-docs"))
		log.Info("vector store ready", slog.String("backend", "memory"))
		return ms, func() { _ = ms.Close() }, nil

	case "qdrant":
		host := getEnvOrDefault("QDRANT_HOST", "localhost")
		port := getEnvInt("QDRANT_PORT", 6334)
		collection := getEnvOrDefault("QDRANT_COLLECTION", "ragbase-docs")
		embBackend := getEnvOrDefault("EMBEDDING_PROVIDER", getEnvOrDefault("MODEL_PROVIDER", "ollama"))
		vectorSize := uint64(embedder.DefaultDimensions(embBackend)) //nolint:gosec // dimensions are bounded

		qs, err := rag.NewQdrantStore(ctx, &rag.QdrantConfig{
			Host:       host,
			Port:       port,
			Collection: collection,
			VectorSize: vectorSize,
			APIKey:     os.Getenv("QDRANT_API_KEY"),
			UseTLS:     os.Getenv("QDRANT_TLS") == "true",
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", host, port, err)
		}
		log.Info("vector store ready",
			slog.String("backend", "qdrant"),
			slog.String("host", host),
			slog.Int("port", port),
			slog.String("collection", collection),
		)
		return qs, func() { _ = qs.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown VECTOR_STORE %q — valid values: qdrant, memory", backend)
	}
}

// buildPingers assembles the readiness probes for the serve command: one for
// the vector store and one for the LLM endpoint when it is HTTP-reachable.
func buildPingers(kb rag.VectorStore, log *slog.Logger) []server.Pinger {
	var pingers []server.Pinger

	type pingable interface {
		Ping(ctx context.Context) error
	}
	if p, ok := kb.(pingable); ok {
		name := getEnvOrDefault("VECTOR_STORE", "qdrant")
		pingers = append(pingers, server.NewStorePinger(name, p.Ping))
	}

	// Only Ollama exposes a probe-friendly local endpoint; hosted providers
	// are exercised on first use instead.
	if getEnvOrDefault("MODEL_PROVIDER", "ollama") == "ollama" {
		host := getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434")
		p, err := server.NewHTTPPinger("ollama", host)
		if err != nil {
			log.Warn("skipping ollama readiness probe", slog.Any("error", err))
		} else {
			pingers = append(pingers, p)
		}
	}

	return pingers
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
