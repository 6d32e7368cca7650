package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ragbase/ragbase-go/internal/ingestion"
	"github.com/ragbase/ragbase-go/internal/logging"
	"github.com/ragbase/ragbase-go/internal/support"
)

// handleChat handles POST /chat. It answers the question against the current
// knowledge base. The answerer never returns a transport error — external
// failures surface inside the response text — so this handler only rejects
// malformed requests.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := logging.FromContext(r.Context())

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	ans := s.answerer.Answer(r.Context(), req.Query, req.K)

	s.metrics.chatDuration.Observe(time.Since(start).Seconds())
	s.metrics.chatTotal.Inc()

	log.Info("chat answered",
		slog.Int("context_used", ans.ContextUsed),
		slog.Duration("duration", time.Since(start)),
	)
	writeJSON(w, http.StatusOK, ans)
}

// handleUploadPDF handles POST /upload-pdf. It accepts a multipart form with
// a "file" field, validates and ingests the PDF, and reports how many pages
// and chunks were indexed.
func (s *Server) handleUploadPDF(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds %d byte limit", s.cfg.MaxUploadBytes)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form: %v", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field: %v", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload: %v", err)
		return
	}

	result, err := s.ingestor.IngestBytes(r.Context(), data, header.Filename)
	if err != nil {
		s.metrics.uploadFailures.Inc()
		s.writeIngestError(w, log, err)
		return
	}

	s.metrics.uploadTotal.Inc()
	s.metrics.chunksIndexed.Add(float64(result.Chunks))

	writeJSON(w, http.StatusOK, uploadResponse{
		Success:        true,
		Message:        fmt.Sprintf("Successfully processed %s", result.Filename),
		Filename:       result.Filename,
		PagesProcessed: result.Pages,
		ChunksCreated:  result.Chunks,
	})
}

// handleUploadPDFFromPath handles POST /upload-pdf-from-path. It ingests a
// PDF already present on the server's filesystem.
func (s *Server) handleUploadPDFFromPath(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req uploadPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, "path must not be empty")
		return
	}

	if _, err := os.Stat(req.Path); err != nil {
		writeError(w, http.StatusNotFound, "file not found: %s", req.Path)
		return
	}

	result, err := s.ingestor.IngestFile(r.Context(), req.Path)
	if err != nil {
		s.metrics.uploadFailures.Inc()
		s.writeIngestError(w, log, err)
		return
	}

	s.metrics.uploadTotal.Inc()
	s.metrics.chunksIndexed.Add(float64(result.Chunks))

	writeJSON(w, http.StatusOK, uploadResponse{
		Success:        true,
		Message:        fmt.Sprintf("Successfully processed %s", result.Filename),
		Filename:       result.Filename,
		PagesProcessed: result.Pages,
		ChunksCreated:  result.Chunks,
	})
}

// writeIngestError maps ingestion failures to HTTP statuses: validation
// failures (wrong extension, empty upload, no extractable text) are the
// client's fault; everything else is a server-side failure.
func (s *Server) writeIngestError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, ingestion.ErrNotPDF), errors.Is(err, ingestion.ErrEmptyFile):
		writeError(w, http.StatusBadRequest, "%v", err)
	default:
		log.Error("ingestion failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to process PDF: %v", err)
	}
}

// handleKnowledgeBaseClear handles DELETE /knowledge-base/clear. Clearing an
// already-empty knowledge base succeeds.
func (s *Server) handleKnowledgeBaseClear(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	if err := s.kb.Clear(r.Context()); err != nil {
		log.Error("knowledge base clear failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to clear knowledge base: %v", err)
		return
	}

	log.Info("knowledge base cleared")
	writeJSON(w, http.StatusOK, clearResponse{
		Success: true,
		Message: "Knowledge base cleared successfully",
	})
}

// handleKnowledgeBaseInfo handles GET /knowledge-base/info.
func (s *Server) handleKnowledgeBaseInfo(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	info, err := s.kb.Info(r.Context())
	if err != nil {
		log.Error("knowledge base info failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to read knowledge base info: %v", err)
		return
	}

	meta := info.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	writeJSON(w, http.StatusOK, infoResponse{Count: info.Count, Metadata: meta})
}

// handleSupportEmail handles POST /support/email. The email is triaged by the
// LLM agent when one is configured, falling back to deterministic
// classification otherwise, and the resulting ticket is archived when a
// ticket store is attached.
func (s *Server) handleSupportEmail(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := logging.FromContext(r.Context())

	var email support.Email
	if err := json.NewDecoder(r.Body).Decode(&email); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	if strings.TrimSpace(email.Message) == "" {
		writeError(w, http.StatusBadRequest, "message must not be empty")
		return
	}

	var (
		ticket *support.Ticket
		err    error
	)
	if s.triage != nil {
		ticket, err = s.triage.Process(r.Context(), &email)
	} else {
		ticket = support.Triage(&email)
	}
	if err != nil {
		log.Error("email triage failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to triage email: %v", err)
		return
	}

	if s.tickets != nil {
		if err := s.tickets.Save(r.Context(), ticket); err != nil {
			// The ticket is still returned — persistence is best effort here.
			log.Error("ticket save failed",
				slog.String("ticket_id", ticket.TicketID),
				slog.Any("error", err),
			)
		}
	}

	s.metrics.ticketsTotal.WithLabelValues(ticket.Urgency).Inc()

	log.Info("email triaged",
		slog.String("ticket_id", ticket.TicketID),
		slog.String("urgency", ticket.Urgency),
		slog.String("category", ticket.Category),
		slog.Bool("requires_human", ticket.RequiresHuman),
		slog.Duration("duration", time.Since(start)),
	)
	writeJSON(w, http.StatusOK, ticket)
}
