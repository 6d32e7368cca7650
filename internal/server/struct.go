package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ragbase/ragbase-go/internal/ingestion"
	"github.com/ragbase/ragbase-go/internal/rag"
	"github.com/ragbase/ragbase-go/internal/store"
	"github.com/ragbase/ragbase-go/internal/support"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// MaxUploadBytes caps the accepted size of PDF uploads. Defaults to 32 MiB.
	MaxUploadBytes int64
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /ready.
	// If empty, /ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all mutating and query routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// Triage is the optional LLM triage agent for POST /support/email.
	// If nil, emails are classified deterministically.
	Triage *support.Agent
	// Tickets is the optional ticket archive. If nil, tickets are returned to
	// the caller but not persisted.
	Tickets store.TicketStore
	// MetricsRegistry receives the server's Prometheus metrics. Defaults to
	// prometheus.DefaultRegisterer.
	MetricsRegistry prometheus.Registerer
	// MetricsGatherer backs GET /metrics. Defaults to prometheus.DefaultGatherer.
	MetricsGatherer prometheus.Gatherer
}

// answerer is the interface handleChat calls to answer a question.
// *rag.Answerer satisfies it; tests inject a fake.
type answerer interface {
	Answer(ctx context.Context, query string, topK int) *rag.Answer
}

// ingestor is the interface the upload handlers call to ingest a document.
// *ingestion.Pipeline satisfies it; tests inject a fake.
type ingestor interface {
	IngestBytes(ctx context.Context, data []byte, filename string) (*ingestion.Result, error)
	IngestFile(ctx context.Context, path string) (*ingestion.Result, error)
}

// triager is the interface handleSupportEmail calls to triage an email.
// *support.Agent satisfies it; the deterministic fallback is used when nil.
type triager interface {
	Process(ctx context.Context, email *support.Email) (*support.Ticket, error)
}

// Server is the HTTP server exposing the knowledge base and triage API.
type Server struct {
	// answerer handles POST /chat.
	answerer answerer
	// ingestor handles the upload endpoints.
	ingestor ingestor
	// kb is the vector store backing the knowledge-base endpoints.
	kb rag.VectorStore
	// triage handles POST /support/email; nil selects deterministic triage.
	triage triager
	// tickets is the optional ticket archive.
	tickets store.TicketStore
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /ready.
	pingers []Pinger
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
	// metrics holds the server's Prometheus instruments.
	metrics *serverMetrics
}

// chatRequest is the JSON body for POST /chat.
type chatRequest struct {
	// Query is the user's question.
	Query string `json:"query"`
	// K is the number of context chunks to retrieve. Zero selects the default.
	K int `json:"k,omitempty"`
}

// uploadPathRequest is the JSON body for POST /upload-pdf-from-path.
type uploadPathRequest struct {
	// Path is the filesystem path of the PDF to ingest.
	Path string `json:"path"`
}

// uploadResponse is the JSON response for both upload endpoints.
type uploadResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	Filename       string `json:"filename"`
	PagesProcessed int    `json:"pages_processed"`
	ChunksCreated  int    `json:"chunks_created"`
}

// clearResponse is the JSON response for DELETE /knowledge-base/clear.
type clearResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// infoResponse is the JSON response for GET /knowledge-base/info.
type infoResponse struct {
	Count    int               `json:"count"`
	Metadata map[string]string `json:"metadata"`
}

// errorResponse is the JSON body for all error statuses.
type errorResponse struct {
	Error string `json:"error"`
}
