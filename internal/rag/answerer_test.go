package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

// fakeChatModel counts Generate calls and returns a canned reply or error.
type fakeChatModel struct {
	calls int
	reply string
	err   error
}

func (f *fakeChatModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

// unitEmbedder maps every text to the same unit vector, or fails with err.
type unitEmbedder struct {
	err error
}

func (e unitEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

// newTestAnswerer wires an Answerer around a seeded MemoryStore.
func newTestAnswerer(t *testing.T, chat model.BaseChatModel, emb Embedder, docs ...Document) *Answerer {
	t.Helper()

	store := NewMemoryStore("test")
	if len(docs) > 0 {
		embeddings := make([][]float32, len(docs))
		for i := range docs {
			embeddings[i] = []float32{1, 0, 0}
		}
		if err := store.Upsert(context.Background(), docs, embeddings); err != nil {
			t.Fatalf("seed upsert: %v", err)
		}
	}

	a, err := NewAnswerer(&AnswererConfig{
		Store:     store,
		Embedder:  emb,
		ChatModel: chat,
	})
	if err != nil {
		t.Fatalf("NewAnswerer: %v", err)
	}
	return a
}

// ---------------------------------------------------------------------------
// Empty knowledge base
// ---------------------------------------------------------------------------

// TestAnswer_EmptyStoreShortCircuits verifies that a question against an empty
// knowledge base returns the fixed message without ever invoking the model.
func TestAnswer_EmptyStoreShortCircuits(t *testing.T) {
	t.Parallel()

	chat := &fakeChatModel{reply: "should never be seen"}
	a := newTestAnswerer(t, chat, unitEmbedder{})

	ans := a.Answer(context.Background(), "what is in the manual?", 0)

	if ans.Response != NoKnowledgeBaseMessage {
		t.Errorf("response: got %q, want the fixed no-knowledge-base message", ans.Response)
	}
	if ans.ContextUsed != 0 {
		t.Errorf("context_used: got %d, want 0", ans.ContextUsed)
	}
	if chat.calls != 0 {
		t.Errorf("model must not be invoked on an empty store, got %d calls", chat.calls)
	}
	if ans.Context == nil || ans.Sources == nil {
		t.Error("context and sources must be empty slices, never nil")
	}
	if len(ans.Context) != 0 || len(ans.Sources) != 0 {
		t.Errorf("expected empty context/sources, got %d/%d", len(ans.Context), len(ans.Sources))
	}
}

// ---------------------------------------------------------------------------
// Retrieval and generation
// ---------------------------------------------------------------------------

func TestAnswer_UsesRetrievedContext(t *testing.T) {
	t.Parallel()

	chat := &fakeChatModel{reply: "refunds take 5 business days"}
	a := newTestAnswerer(t, chat, unitEmbedder{}, Document{
		ID:       "c1",
		Content:  "Refunds are processed within 5 business days.",
		Source:   "policy.pdf",
		Page:     3,
		Metadata: map[string]string{"filename": "policy.pdf"},
	})

	ans := a.Answer(context.Background(), "how long do refunds take?", 0)

	if ans.Response != "refunds take 5 business days" {
		t.Errorf("response: got %q", ans.Response)
	}
	if chat.calls != 1 {
		t.Errorf("expected exactly 1 model call, got %d", chat.calls)
	}
	if ans.ContextUsed != 1 {
		t.Errorf("context_used: got %d, want 1", ans.ContextUsed)
	}
	if len(ans.Context) != 1 || ans.Context[0] != "Refunds are processed within 5 business days." {
		t.Errorf("context preview: got %v", ans.Context)
	}
	if len(ans.Sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(ans.Sources))
	}
	src := ans.Sources[0]
	if src.Source != "policy.pdf" || src.Page != 3 || src.Filename != "policy.pdf" {
		t.Errorf("source: got %+v", src)
	}
}

// TestAnswer_ContextPreviewTruncation verifies that the echoed context is
// capped at the configured preview size while context_used reports the full
// retrieval count.
func TestAnswer_ContextPreviewTruncation(t *testing.T) {
	t.Parallel()

	chat := &fakeChatModel{reply: "ok"}
	a := newTestAnswerer(t, chat, unitEmbedder{},
		Document{ID: "c1", Content: "first"},
		Document{ID: "c2", Content: "second"},
		Document{ID: "c3", Content: "third"},
	)

	ans := a.Answer(context.Background(), "anything", 3)

	if ans.ContextUsed != 3 {
		t.Errorf("context_used: got %d, want 3", ans.ContextUsed)
	}
	if len(ans.Context) != DefaultContextPreview {
		t.Errorf("context preview length: got %d, want %d", len(ans.Context), DefaultContextPreview)
	}
}

// ---------------------------------------------------------------------------
// Failure policy: apologies, never errors
// ---------------------------------------------------------------------------

func TestAnswer_GenerateFailureReturnsApology(t *testing.T) {
	t.Parallel()

	chat := &fakeChatModel{err: errors.New("model exploded")}
	a := newTestAnswerer(t, chat, unitEmbedder{}, Document{ID: "c1", Content: "some context"})

	ans := a.Answer(context.Background(), "a question", 0)

	if !strings.HasPrefix(ans.Response, "I'm sorry, I encountered an error while processing your question:") {
		t.Errorf("response should be the apology message, got %q", ans.Response)
	}
	if !strings.Contains(ans.Response, "model exploded") {
		t.Errorf("apology should embed the cause, got %q", ans.Response)
	}
	if chat.calls != 1 {
		t.Errorf("expected 1 model call, got %d", chat.calls)
	}
	// The retrieved context is still reported even though generation failed.
	if ans.ContextUsed != 1 {
		t.Errorf("context_used: got %d, want 1", ans.ContextUsed)
	}
}

func TestAnswer_EmbedFailureReturnsApology(t *testing.T) {
	t.Parallel()

	chat := &fakeChatModel{reply: "unused"}

	// Seed through the store directly so only the query-time embedding fails.
	store := NewMemoryStore("test")
	if err := store.Upsert(context.Background(),
		[]Document{{ID: "c1", Content: "seeded"}},
		[][]float32{{1, 0, 0}},
	); err != nil {
		t.Fatalf("seed upsert: %v", err)
	}

	a, err := NewAnswerer(&AnswererConfig{
		Store:     store,
		Embedder:  unitEmbedder{err: errors.New("embedding service down")},
		ChatModel: chat,
	})
	if err != nil {
		t.Fatalf("NewAnswerer: %v", err)
	}

	ans := a.Answer(context.Background(), "a question", 0)

	if !strings.Contains(ans.Response, "embedding service down") {
		t.Errorf("apology should embed the cause, got %q", ans.Response)
	}
	if chat.calls != 0 {
		t.Errorf("model must not be invoked when retrieval fails, got %d calls", chat.calls)
	}
	if ans.ContextUsed != 0 {
		t.Errorf("context_used: got %d, want 0", ans.ContextUsed)
	}
}

// ---------------------------------------------------------------------------
// Source metadata defaults
// ---------------------------------------------------------------------------

// TestAnswer_SourceDefaults verifies that missing provenance fields are
// reported as "Unknown" rather than empty strings.
func TestAnswer_SourceDefaults(t *testing.T) {
	t.Parallel()

	chat := &fakeChatModel{reply: "ok"}
	a := newTestAnswerer(t, chat, unitEmbedder{}, Document{ID: "c1", Content: "orphan chunk"})

	ans := a.Answer(context.Background(), "a question", 0)

	if len(ans.Sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(ans.Sources))
	}
	src := ans.Sources[0]
	if src.Source != "Unknown" {
		t.Errorf("source: got %q, want %q", src.Source, "Unknown")
	}
	if src.Filename != "Unknown" {
		t.Errorf("filename: got %q, want %q", src.Filename, "Unknown")
	}
	if src.Page != 0 {
		t.Errorf("page: got %d, want 0", src.Page)
	}
}

func TestPreviewOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		contexts []string
		n        int
		wantLen  int
	}{
		{"fewer than n", []string{"a"}, 2, 1},
		{"exactly n", []string{"a", "b"}, 2, 2},
		{"more than n", []string{"a", "b", "c"}, 2, 2},
		{"empty", nil, 2, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := previewOf(tc.contexts, tc.n)
			if got == nil {
				t.Fatal("previewOf must never return nil")
			}
			if len(got) != tc.wantLen {
				t.Errorf("len: got %d, want %d", len(got), tc.wantLen)
			}
		})
	}
}
