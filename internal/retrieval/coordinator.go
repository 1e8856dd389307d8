// Package retrieval implements the two-stage dense-then-rerank pipeline with
// clearance filtering between the stages.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/intellecta/intellecta/internal/config"
	"github.com/intellecta/intellecta/internal/embedding"
	"github.com/intellecta/intellecta/internal/metrics"
	"github.com/intellecta/intellecta/internal/models"
	"github.com/intellecta/intellecta/internal/rerank"
	"github.com/intellecta/intellecta/internal/security"
	"github.com/intellecta/intellecta/internal/vector"
)

// ChunkStore is the slice of the storage layer the coordinator needs.
type ChunkStore interface {
	GetChunksByIDs(ctx context.Context, ids []string) (map[string]*models.Chunk, error)
}

// Request describes one retrieval run.
type Request struct {
	Query       string
	DocumentIDs []string
	Clearance   models.SecurityLevel
	TopK        int
}

// Result is the outcome of one retrieval run. Candidates are ordered by
// rerank score descending, with dense distance and then chunk ID as
// tie-breakers.
type Result struct {
	Candidates     []models.RerankedCandidate
	BlockedCount   int
	ChunksAnalyzed int
	// DenseElapsed covers embedding, dense search, and clearance filtering.
	// Elapsed additionally includes the rerank stage and feeds throughput.
	DenseElapsed time.Duration
	Elapsed      time.Duration
	Metrics      *models.RetrievalMetrics
}

// Coordinator runs dense search with overfetch, filters by clearance, and
// reranks the survivors. Blocked chunks never reach the reranker.
type Coordinator struct {
	embedder  embedding.Embedder
	index     vector.VectorIndex
	store     ChunkStore
	reranker  rerank.Reranker
	computer  *metrics.Computer
	topK      int
	overfetch int
	logger    *zap.Logger
}

// NewCoordinator wires the retrieval pipeline.
func NewCoordinator(
	embedder embedding.Embedder,
	index vector.VectorIndex,
	store ChunkStore,
	reranker rerank.Reranker,
	cfg config.RetrievalConfig,
	logger *zap.Logger,
) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = 10
	}
	overfetch := cfg.OverfetchFactor
	if overfetch <= 0 {
		overfetch = 3
	}
	return &Coordinator{
		embedder:  embedder,
		index:     index,
		store:     store,
		reranker:  reranker,
		computer:  metrics.NewComputer(cfg),
		topK:      topK,
		overfetch: overfetch,
		logger:    logger,
	}
}

// Retrieve runs the full pipeline for one query.
func (c *Coordinator) Retrieve(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	topK := req.TopK
	if topK <= 0 {
		topK = c.topK
	}

	queryVec, err := c.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := c.index.Search(ctx, queryVec, topK*c.overfetch, req.DocumentIDs)
	if err != nil {
		return nil, fmt.Errorf("dense search: %w", err)
	}

	result := &Result{Candidates: []models.RerankedCandidate{}}
	if len(hits) == 0 {
		result.DenseElapsed = time.Since(start)
		result.Elapsed = result.DenseElapsed
		result.Metrics = c.computer.Score(nil, 0, result.Elapsed)
		return result, nil
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	chunks, err := c.store.GetChunksByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}

	candidates := make([]models.RetrievalCandidate, 0, len(hits))
	fetched := make([]*models.Chunk, 0, len(hits))
	distances := make(map[string]float64, len(hits))
	for _, h := range hits {
		chunk, ok := chunks[h.ID]
		if !ok {
			c.logger.Warn("indexed chunk missing from storage", zap.String("chunk_id", h.ID))
			continue
		}
		fetched = append(fetched, chunk)
		distances[h.ID] = h.Distance
	}

	allowed, blocked := security.FilterByClearance(fetched, req.Clearance)
	result.BlockedCount = blocked
	result.ChunksAnalyzed = len(allowed)
	for _, chunk := range allowed {
		candidates = append(candidates, models.RetrievalCandidate{
			Chunk:    chunk,
			Distance: distances[chunk.ID],
		})
	}

	if len(candidates) == 0 {
		result.DenseElapsed = time.Since(start)
		result.Elapsed = result.DenseElapsed
		result.Metrics = c.computer.Score(nil, 0, result.Elapsed)
		c.logger.Debug("all candidates blocked by clearance",
			zap.Int("blocked", blocked),
			zap.String("clearance", string(req.Clearance)))
		return result, nil
	}

	result.DenseElapsed = time.Since(start)

	docs := make([]string, len(candidates))
	for i, cand := range candidates {
		docs[i] = cand.Chunk.Content
	}
	scores, err := c.reranker.Rerank(ctx, req.Query, docs)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}

	reranked := make([]models.RerankedCandidate, len(candidates))
	for i, cand := range candidates {
		reranked[i] = models.RerankedCandidate{
			RetrievalCandidate: cand,
			RerankScore:        scores[i],
		}
	}
	sort.Slice(reranked, func(i, j int) bool {
		if reranked[i].RerankScore != reranked[j].RerankScore {
			return reranked[i].RerankScore > reranked[j].RerankScore
		}
		if reranked[i].Distance != reranked[j].Distance {
			return reranked[i].Distance < reranked[j].Distance
		}
		return reranked[i].Chunk.ID < reranked[j].Chunk.ID
	})
	if topK < len(reranked) {
		reranked = reranked[:topK]
	}

	result.Candidates = reranked
	result.Elapsed = time.Since(start)
	result.Metrics = c.computer.Score(reranked, result.ChunksAnalyzed, result.Elapsed)

	c.logger.Debug("retrieval complete",
		zap.Int("dense_hits", len(hits)),
		zap.Int("analyzed", result.ChunksAnalyzed),
		zap.Int("blocked", blocked),
		zap.Int("returned", len(reranked)),
		zap.Duration("elapsed", result.Elapsed))

	return result, nil
}
