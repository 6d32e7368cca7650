package store

import (
	"context"
	"testing"
	"time"

	"github.com/ragbase/ragbase-go/internal/support"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTicket(id string, at time.Time, requiresHuman bool) *support.Ticket {
	return &support.Ticket{
		TicketID:          id,
		Urgency:           support.UrgencyHigh,
		Category:          support.CategoryBilling,
		Sentiment:         support.SentimentNegative,
		SuggestedResponse: "Hi,\n\nWe are looking into it.",
		RequiresHuman:     requiresHuman,
		CustomerName:      "Sarah Johnson",
		CustomerEmail:     "sarah@example.com",
		Timestamp:         at,
	}
}

func TestSaveAndRecent(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)

	for i, id := range []string{"TKT-1", "TKT-2", "TKT-3"} {
		ticket := sampleTicket(id, base.Add(time.Duration(i)*time.Minute), false)
		if err := s.Save(ctx, ticket); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	tickets, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(tickets) != 2 {
		t.Fatalf("got %d tickets, want 2", len(tickets))
	}
	if tickets[0].TicketID != "TKT-3" || tickets[1].TicketID != "TKT-2" {
		t.Errorf("order = %s, %s; want TKT-3, TKT-2", tickets[0].TicketID, tickets[1].TicketID)
	}

	got := tickets[0]
	if got.Urgency != support.UrgencyHigh || got.Category != support.CategoryBilling ||
		got.Sentiment != support.SentimentNegative {
		t.Errorf("labels not round-tripped: %+v", got)
	}
	if got.CustomerName != "Sarah Johnson" || got.CustomerEmail != "sarah@example.com" {
		t.Errorf("customer fields not round-tripped: %+v", got)
	}
	if got.RequiresHuman {
		t.Error("requires_human = true, want false")
	}
}

func TestEscalationsFilters(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	base := time.Now().Truncate(time.Second)

	if err := s.Save(ctx, sampleTicket("TKT-calm", base, false)); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, sampleTicket("TKT-hot", base.Add(time.Minute), true)); err != nil {
		t.Fatal(err)
	}

	tickets, err := s.Escalations(ctx, 10)
	if err != nil {
		t.Fatalf("escalations: %v", err)
	}
	if len(tickets) != 1 {
		t.Fatalf("got %d escalations, want 1", len(tickets))
	}
	if tickets[0].TicketID != "TKT-hot" || !tickets[0].RequiresHuman {
		t.Errorf("unexpected escalation: %+v", tickets[0])
	}
}

func TestRecentEmptyStore(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	tickets, err := s.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(tickets) != 0 {
		t.Errorf("got %d tickets from empty store", len(tickets))
	}
}

func TestRejectsInvalidLabels(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	bad := sampleTicket("TKT-bad", time.Now(), false)
	bad.Urgency = "catastrophic"
	if err := s.Save(context.Background(), bad); err == nil {
		t.Error("expected CHECK constraint violation for invalid urgency")
	}
}
