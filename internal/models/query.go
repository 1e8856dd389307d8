package models

import (
	"fmt"
	"time"
)

// Language selects the response language. Closed set: en, ko, vi.
type Language string

const (
	LangEnglish    Language = "en"
	LangKorean     Language = "ko"
	LangVietnamese Language = "vi"
)

// Valid reports whether the language tag is one of the supported values.
func (l Language) Valid() bool {
	switch l {
	case LangEnglish, LangKorean, LangVietnamese:
		return true
	}
	return false
}

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query             string        `json:"query"`
	Language          Language      `json:"language,omitempty"`
	SecurityClearance SecurityLevel `json:"security_clearance,omitempty"`
	DocumentIDs       []string      `json:"document_ids,omitempty"`
	FastMode          *bool         `json:"fast_mode,omitempty"`
}

// Validate normalizes the request and rejects empty or malformed fields.
func (q *QueryRequest) Validate() error {
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.Language == "" {
		q.Language = LangEnglish
	}
	if !q.Language.Valid() {
		return fmt.Errorf("unsupported language: %q", q.Language)
	}
	if q.SecurityClearance == "" {
		q.SecurityClearance = LevelPublic
	}
	if _, err := ParseSecurityLevel(string(q.SecurityClearance)); err != nil {
		return err
	}
	return nil
}

// Fast reports the execution mode, defaulting to fast when unset.
func (q *QueryRequest) Fast() bool {
	if q.FastMode == nil {
		return true
	}
	return *q.FastMode
}

// RetrievalCandidate pairs a chunk with its dense-stage cosine distance
// (smaller is better).
type RetrievalCandidate struct {
	Chunk    *Chunk
	Distance float64
}

// RerankedCandidate adds the second-stage relevance score
// (larger is better).
type RerankedCandidate struct {
	RetrievalCandidate
	RerankScore float64
}

// RetrievalMetrics are derived quality/performance scores for one query turn.
// The four headline scores are percentages in [0,100].
type RetrievalMetrics struct {
	Accuracy         float64 `json:"accuracy"`
	Precision        float64 `json:"precision"`
	Efficiency       float64 `json:"efficiency"`
	Throughput       float64 `json:"throughput"`
	AvgDistance      float64 `json:"avg_distance"`
	MinDistance      float64 `json:"min_distance"`
	MaxDistance      float64 `json:"max_distance"`
	HighQualityRatio float64 `json:"high_quality_ratio"`
	ChunksAnalyzed   int     `json:"chunks_analyzed"`
	ChunksPerSecond  float64 `json:"chunks_per_second"`
}

// KeywordMapping maps a domain term found in a query to a structured lookup.
type KeywordMapping struct {
	Keyword     string `json:"keyword"`
	SQL         string `json:"sql"`
	Description string `json:"description"`
	DataFormat  string `json:"data_format"`
}

// KeywordInfo carries the structured-query mappings matched in a query.
// Auxiliary metadata only; never a substitute for retrieval.
type KeywordInfo struct {
	Count    int              `json:"count"`
	Mappings []KeywordMapping `json:"mappings"`
}

// QueryResponse is the body of a successful POST /query.
type QueryResponse struct {
	Answer           string            `json:"answer"`
	Sources          []string          `json:"sources"`
	RetrievalTimeMS  float64           `json:"retrieval_time_ms"`
	GenerationTimeMS float64           `json:"generation_time_ms"`
	FastMode         bool              `json:"fast_mode"`
	ModelUsed        string            `json:"model_used,omitempty"`
	Security         *SecurityInfo     `json:"security,omitempty"`
	Keywords         *KeywordInfo      `json:"keywords,omitempty"`
	ChunksUsed       int               `json:"chunks_used"`
	ChunksBlocked    int               `json:"chunks_blocked"`
	Metrics          *RetrievalMetrics `json:"metrics,omitempty"`
}

// QueryHistoryEntry is an immutable snapshot of a completed query turn.
type QueryHistoryEntry struct {
	ID               string            `json:"id"`
	Query            string            `json:"query"`
	Language         string            `json:"language"`
	Answer           string            `json:"answer"`
	Sources          []string          `json:"sources"`
	RetrievalTimeMS  float64           `json:"retrieval_time_ms"`
	GenerationTimeMS float64           `json:"generation_time_ms"`
	Timestamp        time.Time         `json:"timestamp"`
	FastMode         bool              `json:"fast_mode"`
	SecurityLevel    SecurityLevel     `json:"security_level"`
	Metrics          *RetrievalMetrics `json:"metrics,omitempty"`
}

// QueryHistoryResponse is the body of GET /query/history.
type QueryHistoryResponse struct {
	History []*QueryHistoryEntry `json:"history"`
	Total   int                  `json:"total"`
}

// QueryMetricsStats aggregates headline scores over retained history.
type QueryMetricsStats struct {
	TotalQueries  int     `json:"total_queries"`
	AvgAccuracy   float64 `json:"avg_accuracy"`
	AvgPrecision  float64 `json:"avg_precision"`
	AvgEfficiency float64 `json:"avg_efficiency"`
	AvgThroughput float64 `json:"avg_throughput"`
}
