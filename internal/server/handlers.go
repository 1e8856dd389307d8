package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/intellecta/intellecta/internal/models"
	"github.com/intellecta/intellecta/internal/orchestrator"
)

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SecurityClearance == "" && s.config.Security.DefaultClearance != "" {
		req.SecurityClearance = models.SecurityLevel(s.config.Security.DefaultClearance)
	}
	s.logger.Debug("query request",
		zap.String("language", string(req.Language)),
		zap.String("clearance", string(req.SecurityClearance)))

	resp, err := s.orch.Process(r.Context(), &req)
	if err != nil {
		s.logger.Error("query failed", zap.Error(err))
		s.respondError(w, queryStatus(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// queryStatus maps the orchestrator error taxonomy to HTTP status codes.
// Anything outside the taxonomy is a request problem.
func queryStatus(err error) int {
	switch {
	case errors.Is(err, orchestrator.ErrRetrievalUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, orchestrator.ErrGenerationTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, orchestrator.ErrGenerationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

type autoDetectRequest struct {
	DocumentIDs []string `json:"document_ids"`
}

func (s *Server) handleAutoDetect(w http.ResponseWriter, r *http.Request) {
	var req autoDetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.DocumentIDs) == 0 {
		s.respondError(w, http.StatusBadRequest, "document_ids is required")
		return
	}

	var content strings.Builder
	found := 0
	for _, id := range req.DocumentIDs {
		chunks, err := s.storage.GetChunksByDocumentID(r.Context(), id)
		if err != nil {
			s.logger.Error("auto-detect: load chunks failed", zap.String("doc_id", id), zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if len(chunks) > 0 {
			found++
		}
		for _, c := range chunks {
			content.WriteString(c.Content)
			content.WriteString("\n")
		}
	}
	if found == 0 {
		s.respondError(w, http.StatusNotFound, "no content found for the given document ids")
		return
	}
	s.respondJSON(w, http.StatusOK, s.classifier.AutoDetect(content.String()))
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	s.respondJSON(w, http.StatusOK, &models.QueryHistoryResponse{
		History: s.history.List(limit),
		Total:   s.history.Len(),
	})
}

func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.history.Delete(id)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "history entry deleted",
	})
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	s.history.Clear()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "history cleared",
	})
}

func (s *Server) handleQueryMetrics(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.orch.MetricsStats())
}

func (s *Server) handleIngestDocument(w http.ResponseWriter, r *http.Request) {
	var input models.DocumentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Filename == "" || input.Content == "" {
		s.respondError(w, http.StatusBadRequest, "filename and content are required")
		return
	}
	s.logger.Debug("ingest document request", zap.String("filename", input.Filename))
	resp, err := s.ingestor.Ingest(r.Context(), &input)
	if err != nil {
		s.logger.Error("ingestion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	offset := 0
	limit := 100
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	docs, err := s.storage.ListDocuments(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("list documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"total":     len(docs),
	})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete document request", zap.String("id", id))
	if _, err := s.storage.GetDocument(r.Context(), id); err != nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	if err := s.ingestor.Delete(r.Context(), id); err != nil {
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.storage.GetDataStats(r.Context())
	if err != nil {
		s.logger.Error("stats failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docCount, err := s.storage.CountDocuments(ctx)
	if err != nil {
		s.logger.Error("status: count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	chunkCount, err := s.storage.CountChunks(ctx)
	if err != nil {
		s.logger.Error("status: count chunks failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"documents":         docCount,
		"chunks":            chunkCount,
		"vector_index_size": s.index.Size(),
		"history_entries":   s.history.Len(),
	})
}

// handleConfig exposes the effective runtime configuration. Credentials are
// never included.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"vector_index_type":    s.config.Vector.IndexType,
		"embedding_provider":   s.config.Embedding.Provider,
		"embedding_model":      s.config.Embedding.Model,
		"embedding_dimensions": s.config.Embedding.Dimensions,
		"generation_provider":  s.config.Generation.Provider,
		"generation_model":     s.config.Generation.Model,
		"top_k":                s.config.Retrieval.TopK,
		"overfetch_factor":     s.config.Retrieval.OverfetchFactor,
		"chunk_size":           s.config.Ingest.ChunkSize,
		"chunk_overlap":        s.config.Ingest.ChunkOverlap,
		"history_capacity":     s.config.History.Capacity,
		"default_clearance":    s.config.Security.DefaultClearance,
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
