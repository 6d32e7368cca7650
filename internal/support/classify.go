// Package support implements the email support triage agent. Classification
// is deterministic keyword matching over fixed tables; an LLM tool-calling
// loop may orchestrate the classifiers, but the decisions themselves never
// depend on the model.
package support

import (
	"fmt"
	"strings"
)

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Category labels.
const (
	CategoryOrder     = "order"
	CategoryBilling   = "billing"
	CategoryTechnical = "technical"
	CategoryGeneral   = "general"
)

// Urgency labels.
const (
	UrgencyCritical = "critical"
	UrgencyHigh     = "high"
	UrgencyMedium   = "medium"
	UrgencyLow      = "low"
)

// Keyword tables. Matching is case-insensitive substring containment; each
// keyword counts at most once per message.
var (
	negativeWords = []string{"angry", "frustrated", "terrible", "awful", "hate", "unacceptable"}
	positiveWords = []string{"happy", "satisfied", "great", "excellent", "amazing", "love"}

	orderWords     = []string{"order", "shipping", "delivery", "tracking"}
	billingWords   = []string{"bill", "charge", "payment", "refund", "money"}
	technicalWords = []string{"bug", "error", "not working", "broken", "technical"}

	criticalWords = []string{"urgent", "emergency", "critical", "immediately", "asap"}
	highWords     = []string{"important", "priority", "soon", "quickly"}
)

// AnalyzeSentiment classifies a message as positive, negative, or neutral by
// majority vote between the two keyword sets. Ties, including zero matches on
// both sides, are neutral.
func AnalyzeSentiment(message string) string {
	text := strings.ToLower(message)

	negative := countMatches(text, negativeWords)
	positive := countMatches(text, positiveWords)

	switch {
	case negative > positive:
		return SentimentNegative
	case positive > negative:
		return SentimentPositive
	default:
		return SentimentNeutral
	}
}

// CategorizeIssue assigns the issue category by scanning subject and message
// together, in fixed priority order: order, then billing, then technical.
// No match falls back to general.
func CategorizeIssue(subject, message string) string {
	text := strings.ToLower(subject + " " + message)

	switch {
	case anyMatch(text, orderWords):
		return CategoryOrder
	case anyMatch(text, billingWords):
		return CategoryBilling
	case anyMatch(text, technicalWords):
		return CategoryTechnical
	default:
		return CategoryGeneral
	}
}

// AssessUrgency derives the urgency level from the message text and the
// already-computed sentiment. Critical keywords dominate everything else.
func AssessUrgency(message, sentiment string) string {
	text := strings.ToLower(message)

	switch {
	case anyMatch(text, criticalWords):
		return UrgencyCritical
	case anyMatch(text, highWords) || sentiment == SentimentNegative:
		return UrgencyHigh
	case sentiment == SentimentPositive:
		return UrgencyLow
	default:
		return UrgencyMedium
	}
}

// GenerateResponse renders the suggested reply from the category and
// sentiment templates, personalised with the customer's name.
func GenerateResponse(category, sentiment, customerName string) string {
	greeting := fmt.Sprintf("Hi %s,", customerName)

	empathy := "Thank you for reaching out to us."
	if sentiment == SentimentNegative {
		empathy = "I understand your frustration and I'm here to help resolve this issue."
	}

	var solution string
	switch category {
	case CategoryOrder:
		solution = "I'll check your order status and provide you with an update shortly."
	case CategoryBilling:
		solution = "I'll review your billing inquiry and get back to you with clarification."
	case CategoryTechnical:
		solution = "I'll investigate this technical issue and work on a solution."
	default:
		solution = "I'll review your request and provide assistance."
	}

	closing := "Please let me know if you have any other questions."

	return fmt.Sprintf("%s\n\n%s %s\n\n%s\n\nBest regards,\nCustomer Support Team",
		greeting, empathy, solution, closing)
}

// RequiresHuman reports whether a ticket needs human escalation: critical
// urgency always does, high urgency only when the customer is negative.
func RequiresHuman(urgency, sentiment string) bool {
	return urgency == UrgencyCritical ||
		(urgency == UrgencyHigh && sentiment == SentimentNegative)
}

func countMatches(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

func anyMatch(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
