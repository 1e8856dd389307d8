// Package server provides the HTTP API for Intellecta.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/intellecta/intellecta/internal/config"
	"github.com/intellecta/intellecta/internal/history"
	"github.com/intellecta/intellecta/internal/ingest"
	"github.com/intellecta/intellecta/internal/orchestrator"
	"github.com/intellecta/intellecta/internal/security"
	"github.com/intellecta/intellecta/internal/storage"
	"github.com/intellecta/intellecta/internal/vector"
)

// Server is the HTTP server for the Intellecta API.
type Server struct {
	orch       *orchestrator.Orchestrator
	ingestor   *ingest.Ingestor
	storage    storage.Storage
	index      vector.VectorIndex
	classifier *security.Classifier
	history    *history.Store
	config     *config.Config
	logger     *zap.Logger
	server     *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	orch *orchestrator.Orchestrator,
	ingestor *ingest.Ingestor,
	store storage.Storage,
	index vector.VectorIndex,
	classifier *security.Classifier,
	historyStore *history.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		orch:       orch,
		ingestor:   ingestor,
		storage:    store,
		index:      index,
		classifier: classifier,
		history:    historyStore,
		config:     cfg,
		logger:     logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/query", s.handleQuery)
	r.Get("/query/history", s.handleHistoryList)
	r.Delete("/query/history/{id}", s.handleHistoryDelete)
	r.Delete("/query/history", s.handleHistoryClear)
	r.Get("/query/metrics", s.handleQueryMetrics)
	r.Post("/security/auto-detect", s.handleAutoDetect)
	r.Post("/documents", s.handleIngestDocument)
	r.Get("/documents", s.handleListDocuments)
	r.Delete("/documents/{id}", s.handleDeleteDocument)
	r.Get("/stats", s.handleStats)
	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Get("/config", s.handleConfig)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
