package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/ragbase/ragbase-go/internal/logging"
	"github.com/ragbase/ragbase-go/internal/provider"
	"github.com/ragbase/ragbase-go/internal/store"
	"github.com/ragbase/ragbase-go/internal/support"
	"github.com/ragbase/ragbase-go/internal/tracing"
)

// NewSupportCmd constructs the `ragbase support` command group for email
// triage: classify an email from stdin or a file, and list recent or
// escalated tickets from the archive.
func NewSupportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "support",
		Short: "Triage customer support emails",
		Long: `Classify customer support emails into tickets.

An email is analysed for sentiment, category, and urgency; a suggested
response is generated and the ticket is flagged for human escalation when
needed. With a model provider configured the analysis runs through an LLM
tool-calling loop; without one it falls back to deterministic keyword
classification.`,
	}

	cmd.AddCommand(
		newSupportTriageCmd(),
		newSupportTicketsCmd(),
	)

	return cmd
}

// newSupportTriageCmd constructs `ragbase support triage`, which reads one
// email as JSON and prints the resulting ticket.
func newSupportTriageCmd() *cobra.Command {
	var file string
	var noModel bool

	cmd := &cobra.Command{
		Use:   "triage",
		Short: "Triage a single email into a ticket",
		Long: `Read one email as JSON and print the triage ticket as JSON.

The email is read from --file, or from stdin when --file is omitted:

  {"from_name": "...", "from_email": "...", "subject": "...", "message": "..."}

Examples:
  ragbase support triage --file email.json
  cat email.json | ragbase support triage
  ragbase support triage --no-model --file email.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			var in io.Reader = os.Stdin
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("support: %w", err)
				}
				defer f.Close()
				in = f
			}

			var email support.Email
			if err := json.NewDecoder(in).Decode(&email); err != nil {
				return fmt.Errorf("support: invalid email JSON: %w", err)
			}

			var ticket *support.Ticket
			if noModel {
				ticket = support.Triage(&email)
			} else {
				handler, flush, ok := tracing.Setup()
				if ok {
					callbacks.AppendGlobalHandlers(handler)
					defer flush()
				}

				chatModel, err := provider.NewFromEnv(ctx)
				if err != nil {
					log.Warn("model provider unavailable, classifying deterministically",
						slog.Any("error", err))
					ticket = support.Triage(&email)
				} else {
					agent, err := support.NewAgent(ctx, chatModel)
					if err != nil {
						return fmt.Errorf("support: failed to create triage agent: %w", err)
					}
					ticket, err = agent.Process(ctx, &email)
					if err != nil {
						return fmt.Errorf("support: triage failed: %w", err)
					}
				}
			}

			if err := saveTicket(cmd, log, ticket); err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(ticket) //nolint:wrapcheck // CLI output
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the email JSON from this file instead of stdin")
	cmd.Flags().BoolVar(&noModel, "no-model", false, "Skip the LLM and classify deterministically")

	return cmd
}

// saveTicket archives the ticket unless persistence is disabled.
func saveTicket(cmd *cobra.Command, log *slog.Logger, ticket *support.Ticket) error {
	dbPath := os.Getenv("RAGBASE_TICKETS_DB")
	if dbPath == "disabled" {
		return nil
	}
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			log.Warn("tickets: could not resolve default DB path, not persisting", slog.Any("error", err))
			return nil
		}
	}

	ts, err := store.Open(dbPath)
	if err != nil {
		log.Warn("tickets: failed to open store, not persisting", slog.Any("error", err))
		return nil
	}
	defer ts.Close()

	if err := ts.Save(cmd.Context(), ticket); err != nil {
		return fmt.Errorf("support: failed to archive ticket: %w", err)
	}
	log.Info("ticket archived", slog.String("ticket_id", ticket.TicketID), slog.String("path", dbPath))
	return nil
}

// newSupportTicketsCmd constructs `ragbase support tickets`, which lists
// archived tickets.
func newSupportTicketsCmd() *cobra.Command {
	var limit int
	var escalated bool

	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "List archived triage tickets",
		Long: `List the most recent tickets from the archive, newest first.

Examples:
  ragbase support tickets
  ragbase support tickets --escalated
  ragbase support tickets -n 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()

			dbPath := os.Getenv("RAGBASE_TICKETS_DB")
			if dbPath == "" || dbPath == "disabled" {
				var err error
				dbPath, err = store.DefaultDBPath()
				if err != nil {
					return fmt.Errorf("support: %w", err)
				}
			}

			ts, err := store.Open(dbPath)
			if err != nil {
				return fmt.Errorf("support: failed to open ticket store: %w", err)
			}
			defer ts.Close()

			var tickets []support.Ticket
			if escalated {
				tickets, err = ts.Escalations(ctx, limit)
			} else {
				tickets, err = ts.Recent(ctx, limit)
			}
			if err != nil {
				return fmt.Errorf("support: %w", err)
			}

			if len(tickets) == 0 {
				fmt.Println("No tickets found.")
				return nil
			}

			for _, t := range tickets {
				escalation := ""
				if t.RequiresHuman {
					escalation = "  [needs human]"
				}
				fmt.Printf("%s  %-8s %-9s %-8s  %s <%s>%s\n",
					t.TicketID, t.Urgency, t.Category, t.Sentiment,
					t.CustomerName, t.CustomerEmail, escalation)
			}

			log.Debug("tickets listed", slog.Int("count", len(tickets)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of tickets to list")
	cmd.Flags().BoolVar(&escalated, "escalated", false, "Only list tickets that require human review")

	return cmd
}
