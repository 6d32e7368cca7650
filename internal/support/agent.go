package support

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"

	"github.com/ragbase/ragbase-go/internal/logging"
)

// agentPrompt steers the tool-calling loop through the four classifiers in
// order and asks for the results in a parseable form.
const agentPrompt = `Analyze this customer email and provide structured information:

From: %s (%s)
Subject: %s
Message: %s

Use the available tools to:
1. Analyze sentiment using analyze_sentiment
2. Categorize the issue using categorize_issue
3. Assess urgency using assess_urgency
4. Generate response using generate_response

Provide clear analysis results, including the sentiment, category, and urgency
labels, and the generated response prefixed with "Response:".`

// Email is one inbound customer message to triage.
type Email struct {
	// FromName is the customer's display name.
	FromName string `json:"from_name"`

	// FromEmail is the customer's email address.
	FromEmail string `json:"from_email"`

	// Subject is the email subject line.
	Subject string `json:"subject"`

	// Message is the email body.
	Message string `json:"message"`
}

// Ticket is the structured triage result for one email.
type Ticket struct {
	// TicketID is the generated ticket identifier (TKT-<timestamp>).
	TicketID string `json:"ticket_id"`

	// Urgency is one of critical, high, medium, low.
	Urgency string `json:"urgency"`

	// Category is one of order, billing, technical, general.
	Category string `json:"category"`

	// Sentiment is one of positive, negative, neutral.
	Sentiment string `json:"sentiment"`

	// SuggestedResponse is the reply proposed for the customer.
	SuggestedResponse string `json:"suggested_response"`

	// RequiresHuman reports whether the ticket needs human escalation.
	RequiresHuman bool `json:"requires_human"`

	// CustomerName echoes the sender's name.
	CustomerName string `json:"customer_name"`

	// CustomerEmail echoes the sender's address.
	CustomerEmail string `json:"customer_email"`

	// Timestamp is the triage time.
	Timestamp time.Time `json:"timestamp"`
}

// Triage classifies an email deterministically, without any model involvement.
// This is the ground truth the tool-calling agent orchestrates, and the
// fallback when no model is configured or the model call fails.
func Triage(email *Email) *Ticket {
	sentiment := AnalyzeSentiment(email.Message)
	category := CategorizeIssue(email.Subject, email.Message)
	urgency := AssessUrgency(email.Message, sentiment)

	return &Ticket{
		TicketID:          newTicketID(time.Now()),
		Urgency:           urgency,
		Category:          category,
		Sentiment:         sentiment,
		SuggestedResponse: GenerateResponse(category, sentiment, email.FromName),
		RequiresHuman:     RequiresHuman(urgency, sentiment),
		CustomerName:      email.FromName,
		CustomerEmail:     email.FromEmail,
		Timestamp:         time.Now(),
	}
}

// Agent runs the email triage through an LLM tool-calling loop. The model
// decides which classifiers to invoke and narrates the analysis; the labels in
// the final ticket are parsed back out of that narration, defaulting to the
// deterministic classification for anything the model omitted.
type Agent struct {
	reactAgent *react.Agent
}

// NewAgent constructs the triage agent around the given tool-calling model.
func NewAgent(ctx context.Context, chatModel model.ToolCallingChatModel) (*Agent, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("support: chat model must not be nil")
	}

	reactAgent, err := react.NewAgent(ctx, &react.AgentConfig{
		ToolCallingModel: chatModel,
		ToolsConfig: compose.ToolsNodeConfig{
			Tools: Tools(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("support: failed to create ReAct agent: %w", err)
	}

	return &Agent{reactAgent: reactAgent}, nil
}

// Process triages one email through the tool-calling loop. A model failure is
// non-fatal: the ticket falls back to the deterministic classification so the
// caller always receives a complete result.
func (a *Agent) Process(ctx context.Context, email *Email) (*Ticket, error) {
	log := logging.FromContext(ctx)

	prompt := fmt.Sprintf(agentPrompt, email.FromName, email.FromEmail, email.Subject, email.Message)
	msg, err := a.reactAgent.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		log.Warn("support: agent run failed, falling back to deterministic triage",
			slog.Any("error", err))
		return Triage(email), nil
	}

	analysis := ""
	if msg != nil {
		analysis = msg.Content
	}

	fallback := Triage(email)
	ticket := &Ticket{
		TicketID:      fallback.TicketID,
		Urgency:       extractLabel(analysis, urgencyLabels, fallback.Urgency),
		Category:      extractLabel(analysis, categoryLabels, fallback.Category),
		Sentiment:     extractLabel(analysis, sentimentLabels, fallback.Sentiment),
		CustomerName:  email.FromName,
		CustomerEmail: email.FromEmail,
		Timestamp:     fallback.Timestamp,
	}
	ticket.RequiresHuman = RequiresHuman(ticket.Urgency, ticket.Sentiment)

	ticket.SuggestedResponse = extractResponse(analysis)
	if ticket.SuggestedResponse == "" {
		ticket.SuggestedResponse = fallbackResponse(email.FromName)
	}

	return ticket, nil
}

// Label enumerations scanned for in the model's analysis, in extraction
// priority order.
var (
	sentimentLabels = []string{SentimentPositive, SentimentNegative, SentimentNeutral}
	categoryLabels  = []string{CategoryOrder, CategoryBilling, CategoryTechnical, CategoryGeneral}
	urgencyLabels   = []string{UrgencyCritical, UrgencyHigh, UrgencyMedium, UrgencyLow}
)

// extractLabel returns the first enumerated label found in the analysis text,
// or the fallback when none appears.
func extractLabel(analysis string, labels []string, fallback string) string {
	text := strings.ToLower(analysis)
	for _, label := range labels {
		if strings.Contains(text, label) {
			return label
		}
	}
	return fallback
}

// extractResponse pulls the suggested reply out of the analysis: everything
// from a "Response:"/"Reply:"/"Message:" marker up to the next blank line.
// Returns "" when no marker is present.
func extractResponse(analysis string) string {
	markers := []string{"response:", "reply:", "message:"}

	var out []string
	capture := false
	for _, line := range strings.Split(analysis, "\n") {
		lower := strings.ToLower(line)

		started := false
		for _, marker := range markers {
			if strings.Contains(lower, marker) {
				started = true
				break
			}
		}
		if started && !capture {
			capture = true
			if _, rest, ok := strings.Cut(line, ":"); ok {
				if trimmed := strings.TrimSpace(rest); trimmed != "" {
					out = append(out, trimmed)
				}
			}
			continue
		}

		if capture {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				break
			}
			out = append(out, trimmed)
		}
	}

	return strings.Join(out, "\n")
}

// fallbackResponse is the reply used when the model's analysis carried no
// extractable response section.
func fallbackResponse(customerName string) string {
	return fmt.Sprintf("Hi %s,\n\n"+
		"Thank you for contacting us. We have received your message and will respond shortly.\n\n"+
		"Best regards,\nCustomer Support Team", customerName)
}

// newTicketID derives the ticket identifier from the triage timestamp.
func newTicketID(t time.Time) string {
	return "TKT-" + t.Format("20060102150405")
}
