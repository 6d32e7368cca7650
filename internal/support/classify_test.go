package support

import (
	"strings"
	"testing"
)

func TestAnalyzeSentiment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"negative majority", "I am angry and frustrated, this is terrible", SentimentNegative},
		{"positive majority", "Great service, I love it, really excellent", SentimentPositive},
		{"no keywords", "Where can I find the manual?", SentimentNeutral},
		{"tie is neutral", "I love it but the box arrived broken and I am angry", SentimentNeutral},
		{"case insensitive", "This is UNACCEPTABLE", SentimentNegative},
		{"each keyword counts once", "angry angry angry but great love amazing", SentimentPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := AnalyzeSentiment(tt.message); got != tt.want {
				t.Errorf("AnalyzeSentiment(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestCategorizeIssue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		subject string
		message string
		want    string
	}{
		{"order keyword", "Where is it", "my order has not arrived", CategoryOrder},
		{"charge without order keywords", "Question", "I was charged twice", CategoryBilling},
		{"keyword in subject only", "Refund request", "please see attached", CategoryBilling},
		{"technical", "Help", "the app is not working after the update", CategoryTechnical},
		{"order wins over billing", "Problem", "the charge for my order is wrong", CategoryOrder},
		{"billing wins over technical", "Problem", "a bug in my bill", CategoryBilling},
		{"no keywords", "Hello", "just saying thanks", CategoryGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CategorizeIssue(tt.subject, tt.message); got != tt.want {
				t.Errorf("CategorizeIssue(%q, %q) = %q, want %q", tt.subject, tt.message, got, tt.want)
			}
		})
	}
}

func TestAssessUrgency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		message   string
		sentiment string
		want      string
	}{
		{"urgent is critical despite positive sentiment", "this is urgent, please help", SentimentPositive, UrgencyCritical},
		{"asap is critical", "need this fixed ASAP", SentimentNeutral, UrgencyCritical},
		{"high keyword", "this is important to me", SentimentNeutral, UrgencyHigh},
		{"negative sentiment is high", "everything failed", SentimentNegative, UrgencyHigh},
		{"positive sentiment is low", "just a small thing", SentimentPositive, UrgencyLow},
		{"neutral default is medium", "a question about my account", SentimentNeutral, UrgencyMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := AssessUrgency(tt.message, tt.sentiment); got != tt.want {
				t.Errorf("AssessUrgency(%q, %q) = %q, want %q", tt.message, tt.sentiment, got, tt.want)
			}
		})
	}
}

func TestRequiresHuman(t *testing.T) {
	t.Parallel()

	tests := []struct {
		urgency   string
		sentiment string
		want      bool
	}{
		{UrgencyCritical, SentimentPositive, true},
		{UrgencyCritical, SentimentNeutral, true},
		{UrgencyCritical, SentimentNegative, true},
		{UrgencyHigh, SentimentNegative, true},
		{UrgencyHigh, SentimentNeutral, false},
		{UrgencyHigh, SentimentPositive, false},
		{UrgencyMedium, SentimentNegative, false},
		{UrgencyLow, SentimentNegative, false},
	}

	for _, tt := range tests {
		if got := RequiresHuman(tt.urgency, tt.sentiment); got != tt.want {
			t.Errorf("RequiresHuman(%q, %q) = %v, want %v", tt.urgency, tt.sentiment, got, tt.want)
		}
	}
}

func TestGenerateResponse(t *testing.T) {
	t.Parallel()

	got := GenerateResponse(CategoryBilling, SentimentNegative, "Sarah")
	if !strings.HasPrefix(got, "Hi Sarah,") {
		t.Errorf("response missing greeting: %q", got)
	}
	if !strings.Contains(got, "I understand your frustration") {
		t.Errorf("negative sentiment missing empathy line: %q", got)
	}
	if !strings.Contains(got, "billing inquiry") {
		t.Errorf("billing category missing solution line: %q", got)
	}
	if !strings.HasSuffix(got, "Best regards,\nCustomer Support Team") {
		t.Errorf("response missing sign-off: %q", got)
	}

	neutral := GenerateResponse(CategoryGeneral, SentimentNeutral, "Mike")
	if !strings.Contains(neutral, "Thank you for reaching out to us.") {
		t.Errorf("neutral sentiment missing default empathy line: %q", neutral)
	}
	if !strings.Contains(neutral, "review your request") {
		t.Errorf("general category missing default solution line: %q", neutral)
	}
}
