// Package orchestrator drives a query through retrieval, access filtering,
// metrics, and answer generation, and records the turn in history.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/intellecta/intellecta/internal/history"
	"github.com/intellecta/intellecta/internal/llm"
	"github.com/intellecta/intellecta/internal/models"
	"github.com/intellecta/intellecta/internal/retrieval"
	"github.com/intellecta/intellecta/internal/security"
)

// queryState tracks a query turn through its lifecycle.
type queryState string

const (
	stateReceived   queryState = "received"
	stateRetrieving queryState = "retrieving"
	stateGenerating queryState = "generating"
	stateComplete   queryState = "complete"
	stateFailed     queryState = "failed"
)

// Retriever is the retrieval pipeline as seen by the orchestrator.
type Retriever interface {
	Retrieve(ctx context.Context, req retrieval.Request) (*retrieval.Result, error)
}

// Orchestrator is the top-level query driver.
type Orchestrator struct {
	retriever  Retriever
	generator  llm.Client
	classifier *security.Classifier
	history    *history.Store
	keywords   *KeywordTable
	genTimeout time.Duration
	logger     *zap.Logger
}

// New wires a query orchestrator. genTimeout bounds each generation call;
// zero means no budget.
func New(
	retriever Retriever,
	generator llm.Client,
	classifier *security.Classifier,
	historyStore *history.Store,
	keywords *KeywordTable,
	genTimeout time.Duration,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if keywords == nil {
		keywords = DefaultKeywordTable()
	}
	return &Orchestrator{
		retriever:  retriever,
		generator:  generator,
		classifier: classifier,
		history:    historyStore,
		keywords:   keywords,
		genTimeout: genTimeout,
		logger:     logger,
	}
}

// Process runs one query turn: received -> retrieving -> generating ->
// complete, or failed. An empty accessible result set is a valid complete
// state with zero chunks used, not a failure.
func (o *Orchestrator) Process(ctx context.Context, req *models.QueryRequest) (*models.QueryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	state := stateReceived
	turnID := uuid.New().String()
	log := o.logger.With(zap.String("query_id", turnID))
	log.Info("query received",
		zap.String("language", string(req.Language)),
		zap.String("clearance", string(req.SecurityClearance)),
		zap.Bool("fast_mode", req.Fast()))

	mode := modeFor(req.Fast())
	langCfg := languageTable[req.Language]
	keywords := o.keywords.Match(req.Query)

	// Non-English queries are translated for retrieval; the corpus is
	// indexed in English. Translation failures degrade to the raw query.
	retrievalQuery := req.Query
	if langCfg.Translate {
		translated, err := o.translate(ctx, req.Query, langCfg.Name, "English")
		if err != nil {
			log.Warn("query translation failed, using original text", zap.Error(err))
		} else if translated != "" {
			retrievalQuery = translated
		}
	}

	state = stateRetrieving
	result, err := o.retriever.Retrieve(ctx, retrieval.Request{
		Query:       retrievalQuery,
		DocumentIDs: req.DocumentIDs,
		Clearance:   req.SecurityClearance,
	})
	if err != nil {
		state = stateFailed
		log.Error("retrieval failed", zap.String("state", string(state)), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err)
	}
	// Reported retrieval time covers the dense stage only; the full elapsed
	// figure including rerank stays inside the metrics computation.
	retrievalMS := float64(result.DenseElapsed.Microseconds()) / 1000

	resp := &models.QueryResponse{
		Sources:         []string{},
		RetrievalTimeMS: retrievalMS,
		FastMode:        req.Fast(),
		ModelUsed:       o.generator.Model(),
		Keywords:        keywords,
		ChunksUsed:      len(result.Candidates),
		ChunksBlocked:   result.BlockedCount,
		Metrics:         result.Metrics,
	}

	contentLevel := models.LevelPublic
	for _, cand := range result.Candidates {
		if cand.Chunk.SecurityLevel.Value() > contentLevel.Value() {
			contentLevel = cand.Chunk.SecurityLevel
		}
	}
	resp.Security = o.classifier.DualCheck(req.Query, contentLevel, req.SecurityClearance)

	if len(result.Candidates) == 0 {
		state = stateComplete
		resp.Answer = "No accessible documents matched the query."
		log.Info("query complete with empty result set",
			zap.String("state", string(state)),
			zap.Int("chunks_blocked", result.BlockedCount))
		o.record(turnID, req, resp)
		return resp, nil
	}
	resp.Sources = collectSources(result.Candidates)

	state = stateGenerating
	genStart := time.Now()
	answer, err := o.generate(ctx, req.Query, result.Candidates, mode, langCfg)
	resp.GenerationTimeMS = float64(time.Since(genStart).Microseconds()) / 1000
	if err != nil {
		state = stateFailed
		log.Error("generation failed", zap.String("state", string(state)), zap.Error(err))
		return nil, err
	}
	resp.Answer = answer

	state = stateComplete
	log.Info("query complete",
		zap.String("state", string(state)),
		zap.Int("chunks_used", resp.ChunksUsed),
		zap.Int("chunks_blocked", resp.ChunksBlocked),
		zap.Float64("retrieval_time_ms", resp.RetrievalTimeMS),
		zap.Float64("generation_time_ms", resp.GenerationTimeMS))

	o.record(turnID, req, resp)
	return resp, nil
}

func (o *Orchestrator) generate(ctx context.Context, query string, candidates []models.RerankedCandidate, mode Mode, langCfg languageSettings) (string, error) {
	settings := modeTable[mode]

	genCtx := ctx
	if o.genTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, o.genTimeout)
		defer cancel()
	}

	messages := buildMessages(query, buildContext(candidates), langCfg, settings.ChainOfThought)
	completion, err := o.generator.Generate(genCtx, messages, settings.Options)
	if err != nil {
		return "", classifyGenError(genCtx, err)
	}

	answer := completion
	if settings.ChainOfThought {
		answer = extractFinalAnswer(completion)
	}

	// Quality mode answers in English and spends an extra pass translating;
	// fast mode asks for the target language directly.
	if settings.ChainOfThought && langCfg.Translate {
		translated, err := o.generator.Generate(genCtx,
			translationMessages(answer, "English", langCfg.Name), settings.Options)
		if err != nil {
			return "", classifyGenError(genCtx, err)
		}
		answer = translated
	}
	return answer, nil
}

func classifyGenError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrGenerationTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
}

func (o *Orchestrator) translate(ctx context.Context, text, from, to string) (string, error) {
	tctx := ctx
	if o.genTimeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, o.genTimeout)
		defer cancel()
	}
	return o.generator.Generate(tctx, translationMessages(text, from, to), modeTable[ModeFast].Options)
}

func collectSources(candidates []models.RerankedCandidate) []string {
	seen := make(map[string]bool)
	sources := make([]string, 0, len(candidates))
	for _, cand := range candidates {
		name := cand.Chunk.Filename
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		sources = append(sources, name)
	}
	return sources
}

func (o *Orchestrator) record(id string, req *models.QueryRequest, resp *models.QueryResponse) {
	if o.history == nil {
		return
	}
	o.history.Append(&models.QueryHistoryEntry{
		ID:               id,
		Query:            req.Query,
		Language:         string(req.Language),
		Answer:           resp.Answer,
		Sources:          resp.Sources,
		RetrievalTimeMS:  resp.RetrievalTimeMS,
		GenerationTimeMS: resp.GenerationTimeMS,
		Timestamp:        time.Now(),
		FastMode:         resp.FastMode,
		SecurityLevel:    req.SecurityClearance,
		Metrics:          resp.Metrics,
	})
}

// MetricsStats aggregates headline scores over the retained history.
func (o *Orchestrator) MetricsStats() *models.QueryMetricsStats {
	stats := &models.QueryMetricsStats{}
	if o.history == nil {
		return stats
	}
	entries := o.history.List(0)
	scored := 0
	for _, e := range entries {
		if e.Metrics == nil {
			continue
		}
		scored++
		stats.AvgAccuracy += e.Metrics.Accuracy
		stats.AvgPrecision += e.Metrics.Precision
		stats.AvgEfficiency += e.Metrics.Efficiency
		stats.AvgThroughput += e.Metrics.Throughput
	}
	stats.TotalQueries = len(entries)
	if scored > 0 {
		stats.AvgAccuracy /= float64(scored)
		stats.AvgPrecision /= float64(scored)
		stats.AvgEfficiency /= float64(scored)
		stats.AvgThroughput /= float64(scored)
	}
	return stats
}
