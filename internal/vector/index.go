// Package vector provides vector index backends for dense retrieval.
package vector

import (
	"context"
	"fmt"
)

// IndexType selects a vector index backend.
type IndexType string

const (
	IndexTypeMemory  IndexType = "memory"
	IndexTypeChromem IndexType = "chromem"
)

// Entry is one indexed vector tagged with its owning document.
type Entry struct {
	ID         string
	DocumentID string
	Vector     []float32
}

// VectorResult is a single search hit. Distance is cosine distance
// (1 - similarity), smaller is better.
type VectorResult struct {
	ID         string
	DocumentID string
	Distance   float64
}

// VectorIndex defines vector storage and nearest-neighbor search.
// documentIDs, when non-empty, restricts the search to those documents.
type VectorIndex interface {
	Add(ctx context.Context, entries []Entry) error
	Search(ctx context.Context, query []float32, k int, documentIDs []string) ([]*VectorResult, error)
	Remove(ctx context.Context, ids []string) error
	RemoveDocument(ctx context.Context, documentID string) error
	Save(path string) error
	Load(path string) error
	Size() int
	Close() error
}

// NewVectorIndex creates the configured index backend. path is only used by
// persistent backends.
func NewVectorIndex(indexType IndexType, dimensions int, path string) (VectorIndex, error) {
	switch indexType {
	case IndexTypeMemory, "":
		return NewMemoryIndex(dimensions)
	case IndexTypeChromem:
		return NewChromemIndex(path, dimensions)
	default:
		return nil, fmt.Errorf("unknown vector index type: %q", indexType)
	}
}
