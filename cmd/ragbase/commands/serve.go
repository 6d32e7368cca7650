package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/ragbase/ragbase-go/internal/embedder"
	"github.com/ragbase/ragbase-go/internal/ingestion"
	"github.com/ragbase/ragbase-go/internal/logging"
	"github.com/ragbase/ragbase-go/internal/provider"
	"github.com/ragbase/ragbase-go/internal/rag"
	"github.com/ragbase/ragbase-go/internal/server"
	"github.com/ragbase/ragbase-go/internal/store"
	"github.com/ragbase/ragbase-go/internal/support"
	"github.com/ragbase/ragbase-go/internal/tracing"
)

// NewServeCmd constructs the `ragbase serve` command, which starts the HTTP
// API for document upload, chat, and email triage.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the RAGBase HTTP API",
		Long: `Start the RAGBase HTTP server on localhost.

The server exposes a REST API for uploading PDF documents, asking questions
against the resulting knowledge base, and triaging customer support emails.

Examples:
  ragbase serve
  ragbase serve --port 9090
  VECTOR_STORE=memory ragbase serve
  MODEL_PROVIDER=azure ragbase serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("serve: failed to initialise model provider: %w", err)
			}

			if err := embedder.ValidateForRAG(log); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("serve: failed to initialise embedder: %w", err)
			}

			kb, closeStore, err := buildStore(ctx, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer closeStore()

			pipeline, err := ingestion.NewPipeline(emb, kb, &ingestion.Config{
				ChunkSize:    getEnvInt("CHUNK_SIZE", ingestion.DefaultChunkSize),
				ChunkOverlap: getEnvInt("CHUNK_OVERLAP", ingestion.DefaultChunkOverlap),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create ingestion pipeline: %w", err)
			}

			answerer, err := rag.NewAnswerer(&rag.AnswererConfig{
				Store:            kb,
				Embedder:         emb,
				ChatModel:        chatModel,
				TopK:             getEnvInt("RAG_TOP_K", rag.DefaultTopK),
				ContextPreview:   getEnvInt("RAG_CONTEXT_PREVIEW", rag.DefaultContextPreview),
				MaxContextTokens: getEnvInt("RAG_MAX_CONTEXT_TOKENS", 0),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create answerer: %w", err)
			}

			triage, err := support.NewAgent(ctx, chatModel)
			if err != nil {
				log.Warn("triage agent unavailable, emails will be classified deterministically",
					slog.Any("error", err))
				triage = nil
			}

			// Open the ticket archive. RAGBASE_TICKETS_DB overrides the default
			// path (~/.ragbase/tickets.db). Set to "disabled" to turn it off.
			var tickets store.TicketStore
			dbPath := os.Getenv("RAGBASE_TICKETS_DB")
			if dbPath != "disabled" {
				if dbPath == "" {
					dbPath, err = store.DefaultDBPath()
					if err != nil {
						log.Warn("tickets: could not resolve default DB path, disabling", slog.Any("error", err))
					}
				}
				if dbPath != "" {
					ts, tsErr := store.Open(dbPath)
					if tsErr != nil {
						log.Warn("tickets: failed to open store, disabling", slog.Any("error", tsErr))
					} else {
						tickets = ts
						defer func() { _ = ts.Close() }()
						log.Info("tickets: store opened", slog.String("path", dbPath))
					}
				}
			} else {
				log.Info("tickets: disabled via RAGBASE_TICKETS_DB=disabled")
			}

			srv, err := server.New(answerer, pipeline, kb, &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: buildPingers(kb, log),
				APIKey:  os.Getenv("RAGBASE_API_KEY"),
				Triage:  triage,
				Tickets: tickets,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}
