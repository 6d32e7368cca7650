package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/ragbase/ragbase-go/internal/budget"
	"github.com/ragbase/ragbase-go/internal/logging"
)

// systemPrompt instructs the model to answer strictly from the retrieved
// context and to decline politely when the context is insufficient.
const systemPrompt = `You are a helpful AI assistant that answers questions based on the provided document context.
Use the context below to answer the user's question accurately and comprehensively.
If the context doesn't contain enough information to answer the question, say so politely.
Always be concise, helpful, and cite relevant information from the context.`

// NoKnowledgeBaseMessage is returned verbatim when a question arrives before
// any document has been ingested. The model is never invoked in that case.
const NoKnowledgeBaseMessage = "No PDF document has been uploaded yet. " +
	"Please upload a PDF file first to start chatting."

// DefaultTopK is the number of chunks retrieved per question when the caller
// does not specify one.
const DefaultTopK = 3

// DefaultContextPreview is the number of context chunks echoed back to the
// caller for transparency. The full retrieved context still conditions the
// answer; only the echo is truncated to keep responses small.
const DefaultContextPreview = 2

// SourceRef identifies where a context chunk came from.
type SourceRef struct {
	// Source is the origin label of the chunk. "Unknown" when absent.
	Source string `json:"source"`
	// Page is the 1-based page number. Zero when unknown.
	Page int `json:"page"`
	// Filename is the original upload filename. "Unknown" when absent.
	Filename string `json:"filename"`
}

// Answer is the result of one question against the knowledge base.
type Answer struct {
	// Query is the verbatim user question.
	Query string `json:"query"`
	// Response is the generated answer text.
	Response string `json:"response"`
	// ContextUsed is the number of chunks that conditioned the answer.
	ContextUsed int `json:"context_used"`
	// Context is the truncated preview of the chunks used. Never nil.
	Context []string `json:"context"`
	// Sources describes the provenance of each chunk used. Never nil.
	Sources []SourceRef `json:"sources"`
}

// AnswererConfig holds the dependencies and tuning for an Answerer.
type AnswererConfig struct {
	// Store is the vector store holding the knowledge base.
	Store VectorStore
	// Embedder converts the question into a query vector.
	Embedder Embedder
	// ChatModel generates the final answer. Sampling parameters are fixed at
	// model construction time, not per request.
	ChatModel model.BaseChatModel
	// TopK is the default number of chunks retrieved per question.
	// Defaults to DefaultTopK if zero.
	TopK int
	// ContextPreview is the number of context chunks echoed to the caller.
	// Defaults to DefaultContextPreview if zero.
	ContextPreview int
	// MaxContextTokens is the estimated token budget for the assembled prompt.
	// Retrieved chunks beyond the budget are dropped least-relevant-first.
	// Defaults to budget.DefaultMaxContextTokens if zero.
	MaxContextTokens int
}

// Answerer turns a question into an answer by retrieving relevant chunks and
// conditioning an LLM on them. It is safe for concurrent use.
type Answerer struct {
	store            VectorStore
	embedder         Embedder
	chatModel        model.BaseChatModel
	topK             int
	contextPreview   int
	maxContextTokens int
}

// NewAnswerer constructs an Answerer from the given config.
func NewAnswerer(cfg *AnswererConfig) (*Answerer, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("rag: store must not be nil")
	}
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("rag: embedder must not be nil")
	}
	if cfg.ChatModel == nil {
		return nil, fmt.Errorf("rag: chat model must not be nil")
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	preview := cfg.ContextPreview
	if preview <= 0 {
		preview = DefaultContextPreview
	}
	maxCtx := cfg.MaxContextTokens
	if maxCtx <= 0 {
		maxCtx = budget.DefaultMaxContextTokens
	}

	return &Answerer{
		store:            cfg.Store,
		embedder:         cfg.Embedder,
		chatModel:        cfg.ChatModel,
		topK:             topK,
		contextPreview:   preview,
		maxContextTokens: maxCtx,
	}, nil
}

// Answer runs the full retrieve-and-generate flow for one question.
// topK <= 0 selects the configured default. External failures (embedding,
// search, generation) never escape as errors: the response text carries an
// apology embedding the cause, matching the service's failure policy.
func (a *Answerer) Answer(ctx context.Context, query string, topK int) *Answer {
	log := logging.FromContext(ctx)

	if topK <= 0 {
		topK = a.topK
	}

	ans := &Answer{
		Query:   query,
		Context: []string{},
		Sources: []SourceRef{},
	}

	info, err := a.store.Info(ctx)
	if err != nil {
		log.Error("answer: knowledge base info failed", slog.Any("error", err))
		ans.Response = apology(err)
		return ans
	}
	if info.Count == 0 {
		ans.Response = NoKnowledgeBaseMessage
		return ans
	}

	docs, err := a.retrieve(ctx, query, topK)
	if err != nil {
		log.Error("answer: retrieval failed", slog.Any("error", err))
		ans.Response = apology(err)
		return ans
	}

	contexts := make([]string, 0, len(docs))
	for _, doc := range docs {
		contexts = append(contexts, doc.Content)
	}

	// Trim least-relevant chunks so the assembled prompt stays within the
	// token budget.
	fixedTokens := budget.Estimate(systemPrompt) + budget.Estimate(query)
	contexts = budget.TrimContext(fixedTokens, contexts, a.maxContextTokens)
	docs = docs[:len(contexts)]

	response, err := a.generate(ctx, query, contexts)
	if err != nil {
		log.Error("answer: generation failed", slog.Any("error", err))
		response = apology(err)
	}

	ans.Response = response
	ans.ContextUsed = len(contexts)
	ans.Context = previewOf(contexts, a.contextPreview)
	ans.Sources = sourcesOf(docs)
	return ans
}

// retrieve embeds the query and returns the topK most similar stored chunks.
func (a *Answerer) retrieve(ctx context.Context, query string, topK int) ([]Document, error) {
	embeddings, err := a.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("rag: embedding query failed: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("rag: embedder returned empty result for query")
	}

	docs, err := a.store.Search(ctx, embeddings[0], topK)
	if err != nil {
		return nil, fmt.Errorf("rag: vector search failed: %w", err)
	}
	return docs, nil
}

// generate assembles the prompt from the numbered context chunks and invokes
// the chat model synchronously.
func (a *Answerer) generate(ctx context.Context, query string, contexts []string) (string, error) {
	var sb strings.Builder
	for i, c := range contexts {
		fmt.Fprintf(&sb, "Context %d: %s\n\n", i+1, c)
	}

	user := fmt.Sprintf("Context from document:\n%s\nQuestion: %s\n\n"+
		"Please provide a helpful answer based on the context above.", sb.String(), query)

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(user),
	}

	resp, err := a.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("rag: generate failed: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("rag: model returned nil response")
	}
	return resp.Content, nil
}

// apology renders an external failure as a user-facing message embedding the
// cause, so the caller always receives an answer-shaped result.
func apology(err error) string {
	return fmt.Sprintf("I'm sorry, I encountered an error while processing your question: %v", err)
}

// previewOf returns at most n leading entries of contexts, never nil.
func previewOf(contexts []string, n int) []string {
	if n > len(contexts) {
		n = len(contexts)
	}
	out := make([]string, n)
	copy(out, contexts[:n])
	return out
}

// sourcesOf derives a SourceRef per document, defaulting missing fields to
// "Unknown" so the response shape is stable for clients.
func sourcesOf(docs []Document) []SourceRef {
	refs := make([]SourceRef, 0, len(docs))
	for _, doc := range docs {
		ref := SourceRef{Source: doc.Source, Page: doc.Page, Filename: doc.Metadata["filename"]}
		if ref.Source == "" {
			ref.Source = "Unknown"
		}
		if ref.Filename == "" {
			ref.Filename = "Unknown"
		}
		refs = append(refs, ref)
	}
	return refs
}
