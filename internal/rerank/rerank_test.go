package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPReranker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rerankRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Query != "grid load" {
			t.Errorf("unexpected query %q", req.Query)
		}
		scores := make([]float64, len(req.Documents))
		for i := range scores {
			scores[i] = float64(len(req.Documents) - i)
		}
		json.NewEncoder(w).Encode(rerankResponse{Scores: scores})
	}))
	defer srv.Close()

	r := NewHTTPReranker(srv.URL, 5*time.Second)
	scores, err := r.Rerank(context.Background(), "grid load", []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 3 || scores[0] != 3 || scores[2] != 1 {
		t.Errorf("unexpected scores %v", scores)
	}
}

func TestHTTPRerankerScoreCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(rerankResponse{Scores: []float64{1}})
	}))
	defer srv.Close()

	r := NewHTTPReranker(srv.URL, 5*time.Second)
	if _, err := r.Rerank(context.Background(), "q", []string{"a", "b"}); err == nil {
		t.Error("expected error on score count mismatch")
	}
}

func TestHTTPRerankerEmptyDocs(t *testing.T) {
	r := NewHTTPReranker("http://127.0.0.1:0", time.Second)
	scores, err := r.Rerank(context.Background(), "q", nil)
	if err != nil || scores != nil {
		t.Errorf("empty docs should short-circuit: %v %v", scores, err)
	}
}

func TestLexicalReranker(t *testing.T) {
	r := NewLexicalReranker()
	docs := []string{
		"The power grid balances load with spinning reserves.",
		"Solar output peaks at noon.",
		"",
	}
	scores, err := r.Rerank(context.Background(), "grid load", docs)
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(scores))
	}
	if scores[0] != 1 {
		t.Errorf("both terms present, expected 1, got %f", scores[0])
	}
	if scores[1] != 0 || scores[2] != 0 {
		t.Errorf("no terms present, expected 0: %v", scores[1:])
	}

	again, _ := r.Rerank(context.Background(), "grid load", docs)
	for i := range scores {
		if scores[i] != again[i] {
			t.Fatal("lexical scores must be deterministic")
		}
	}
}
