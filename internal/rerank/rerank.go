// Package rerank scores candidate passages against a query for the second
// retrieval stage.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Reranker assigns a relevance score (larger is better) to each document
// for the given query. The returned slice is positionally aligned with docs.
type Reranker interface {
	Rerank(ctx context.Context, query string, docs []string) ([]float64, error)
}

// HTTPReranker calls an external cross-encoder service.
// Request: {"query": ..., "documents": [...]}. Response: {"scores": [...]}.
type HTTPReranker struct {
	url    string
	client *http.Client
}

// NewHTTPReranker creates a reranker client for the given endpoint.
func NewHTTPReranker(url string, timeout time.Duration) *HTTPReranker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPReranker{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type rerankRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Scores []float64 `json:"scores"`
}

// Rerank scores docs against query via the remote service.
func (r *HTTPReranker) Rerank(ctx context.Context, query string, docs []string) ([]float64, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	body, err := json.Marshal(rerankRequest{Query: query, Documents: docs})
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rerank request failed with status %d: %s", resp.StatusCode, data)
	}

	var out rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}
	if len(out.Scores) != len(docs) {
		return nil, fmt.Errorf("rerank returned %d scores for %d documents", len(out.Scores), len(docs))
	}
	return out.Scores, nil
}

// LexicalReranker scores documents by term overlap with the query. It is the
// built-in fallback when no external rerank service is configured. Scores
// are in [0,1] and deterministic for a given query and document.
type LexicalReranker struct{}

// NewLexicalReranker returns the built-in term-overlap reranker.
func NewLexicalReranker() *LexicalReranker {
	return &LexicalReranker{}
}

// Rerank computes, per document, the fraction of distinct query terms that
// appear in the document.
func (r *LexicalReranker) Rerank(ctx context.Context, query string, docs []string) ([]float64, error) {
	terms := tokenize(query)
	scores := make([]float64, len(docs))
	if len(terms) == 0 {
		return scores, nil
	}
	for i, doc := range docs {
		docTerms := tokenize(doc)
		matched := 0
		for term := range terms {
			if docTerms[term] {
				matched++
			}
		}
		scores[i] = float64(matched) / float64(len(terms))
	}
	return scores, nil
}

func tokenize(s string) map[string]bool {
	out := make(map[string]bool)
	for _, f := range strings.Fields(strings.ToLower(s)) {
		f = strings.Trim(f, ".,;:!?\"'()[]{}")
		if len(f) > 1 {
			out[f] = true
		}
	}
	return out
}
