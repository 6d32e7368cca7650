package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragbase/ragbase-go/internal/embedder"
	"github.com/ragbase/ragbase-go/internal/logging"
	"github.com/ragbase/ragbase-go/internal/provider"
	"github.com/ragbase/ragbase-go/internal/rag"
)

// NewAskCmd constructs the `ragbase ask` command, which answers a single
// question against the knowledge base and prints the answer with its sources.
func NewAskCmd() *cobra.Command {
	var topK int
	var showContext bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question against the ingested documents",
		Long: `Ask a natural language question about your ingested PDF documents.

The question is embedded, the most relevant chunks are retrieved from the
vector store, and an answer is generated from that context. If no document
has been ingested yet, the command says so instead of guessing.

Examples:
  ragbase ask "what does chapter 3 say about error budgets?"
  ragbase ask -k 5 "summarise the refund policy"
  VECTOR_STORE=memory ragbase ask "anything indexed yet?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("ask: failed to initialise model provider: %w", err)
			}

			if err := embedder.ValidateForRAG(log); err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("ask: failed to initialise embedder: %w", err)
			}

			kb, closeStore, err := buildStore(ctx, log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer closeStore()

			answerer, err := rag.NewAnswerer(&rag.AnswererConfig{
				Store:     kb,
				Embedder:  emb,
				ChatModel: chatModel,
			})
			if err != nil {
				return fmt.Errorf("ask: failed to create answerer: %w", err)
			}

			ans := answerer.Answer(ctx, args[0], topK)

			fmt.Println(ans.Response)

			if len(ans.Sources) > 0 {
				fmt.Println("\nSources:")
				for _, src := range ans.Sources {
					fmt.Printf("  - %s (page %d)\n", src.Filename, src.Page)
				}
			}
			if showContext {
				for i, c := range ans.Context {
					fmt.Printf("\nContext %d:\n%s\n", i+1, c)
				}
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of chunks to retrieve (default from RAG_TOP_K)")
	cmd.Flags().BoolVar(&showContext, "show-context", false, "Print the retrieved context preview")

	return cmd
}
