package support

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// SentimentTool exposes AnalyzeSentiment to the tool-calling loop.
type SentimentTool struct{}

type sentimentInput struct {
	// Message is the customer's email message text.
	Message string `json:"message"`
}

// NewSentimentTool constructs a SentimentTool.
func NewSentimentTool() *SentimentTool { return &SentimentTool{} }

// Info returns the Eino tool metadata including the JSON input schema.
func (t *SentimentTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "analyze_sentiment",
		Desc: "Analyze customer sentiment from an email message. " +
			"Returns 'positive', 'negative', or 'neutral'.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"message": {
				Type:     schema.String,
				Desc:     "The customer's email message text.",
				Required: true,
			},
		}),
	}, nil
}

// InvokableRun runs the sentiment classifier.
func (t *SentimentTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var input sentimentInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return "", fmt.Errorf("analyze_sentiment: invalid input: %w", err)
	}
	return AnalyzeSentiment(input.Message), nil
}

// CategoryTool exposes CategorizeIssue to the tool-calling loop.
type CategoryTool struct{}

type categoryInput struct {
	// Subject is the email subject line.
	Subject string `json:"subject"`

	// Message is the customer's email message text.
	Message string `json:"message"`
}

// NewCategoryTool constructs a CategoryTool.
func NewCategoryTool() *CategoryTool { return &CategoryTool{} }

// Info returns the Eino tool metadata including the JSON input schema.
func (t *CategoryTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "categorize_issue",
		Desc: "Categorize the customer issue from subject and message. " +
			"Returns 'order', 'billing', 'technical', or 'general'.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"subject": {
				Type:     schema.String,
				Desc:     "The email subject line.",
				Required: true,
			},
			"message": {
				Type:     schema.String,
				Desc:     "The customer's email message text.",
				Required: true,
			},
		}),
	}, nil
}

// InvokableRun runs the category classifier.
func (t *CategoryTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var input categoryInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return "", fmt.Errorf("categorize_issue: invalid input: %w", err)
	}
	return CategorizeIssue(input.Subject, input.Message), nil
}

// UrgencyTool exposes AssessUrgency to the tool-calling loop.
type UrgencyTool struct{}

type urgencyInput struct {
	// Message is the customer's email message text.
	Message string `json:"message"`

	// Sentiment is the classification produced by analyze_sentiment.
	Sentiment string `json:"sentiment"`
}

// NewUrgencyTool constructs an UrgencyTool.
func NewUrgencyTool() *UrgencyTool { return &UrgencyTool{} }

// Info returns the Eino tool metadata including the JSON input schema.
func (t *UrgencyTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "assess_urgency",
		Desc: "Assess the urgency level of the issue from the message and sentiment. " +
			"Returns 'critical', 'high', 'medium', or 'low'.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"message": {
				Type:     schema.String,
				Desc:     "The customer's email message text.",
				Required: true,
			},
			"sentiment": {
				Type:     schema.String,
				Desc:     "The sentiment classification from analyze_sentiment.",
				Required: true,
			},
		}),
	}, nil
}

// InvokableRun runs the urgency classifier.
func (t *UrgencyTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var input urgencyInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return "", fmt.Errorf("assess_urgency: invalid input: %w", err)
	}
	return AssessUrgency(input.Message, input.Sentiment), nil
}

// ResponseTool exposes GenerateResponse to the tool-calling loop.
type ResponseTool struct{}

type responseInput struct {
	// Category is the classification produced by categorize_issue.
	Category string `json:"category"`

	// Sentiment is the classification produced by analyze_sentiment.
	Sentiment string `json:"sentiment"`

	// CustomerName is the customer's name used to personalise the reply.
	CustomerName string `json:"customer_name"`
}

// NewResponseTool constructs a ResponseTool.
func NewResponseTool() *ResponseTool { return &ResponseTool{} }

// Info returns the Eino tool metadata including the JSON input schema.
func (t *ResponseTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "generate_response",
		Desc: "Generate an appropriate customer reply from the category, sentiment, " +
			"and customer name.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"category": {
				Type:     schema.String,
				Desc:     "The issue category from categorize_issue.",
				Required: true,
			},
			"sentiment": {
				Type:     schema.String,
				Desc:     "The sentiment classification from analyze_sentiment.",
				Required: true,
			},
			"customer_name": {
				Type:     schema.String,
				Desc:     "The customer's name for personalization.",
				Required: true,
			},
		}),
	}, nil
}

// InvokableRun renders the templated reply.
func (t *ResponseTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var input responseInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return "", fmt.Errorf("generate_response: invalid input: %w", err)
	}
	return GenerateResponse(input.Category, input.Sentiment, input.CustomerName), nil
}

// Tools returns the full triage tool set in registration order.
func Tools() []tool.BaseTool {
	return []tool.BaseTool{
		NewSentimentTool(),
		NewCategoryTool(),
		NewUrgencyTool(),
		NewResponseTool(),
	}
}
