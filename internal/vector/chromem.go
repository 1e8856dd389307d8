package vector

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/philippgille/chromem-go"
)

const chromemCollection = "chunks"

// ChromemIndex stores vectors in an embedded chromem-go database persisted
// under a directory. Writes reach disk immediately, so Save and Load are
// no-ops.
type ChromemIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
	dimensions int
	mu         sync.Mutex
}

// NewChromemIndex opens (or creates) a persistent chromem database at path.
func NewChromemIndex(path string, dimensions int) (*ChromemIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open chromem db: %w", err)
	}
	coll, err := db.GetOrCreateCollection(chromemCollection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("open chromem collection: %w", err)
	}
	return &ChromemIndex{db: db, collection: coll, dimensions: dimensions}, nil
}

// Type returns the index type identifier.
func (c *ChromemIndex) Type() string {
	return string(IndexTypeChromem)
}

// Add stores entries as chromem documents carrying the owning document ID
// as metadata.
func (c *ChromemIndex) Add(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	docs := make([]chromem.Document, 0, len(entries))
	for _, e := range entries {
		if len(e.Vector) != c.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(e.Vector), c.dimensions)
		}
		docs = append(docs, chromem.Document{
			ID:        e.ID,
			Content:   e.ID,
			Metadata:  map[string]string{"document_id": e.DocumentID},
			Embedding: e.Vector,
		})
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	return nil
}

// Search queries by embedding. chromem only supports single-value metadata
// filters, so multi-document filters query the whole collection and filter
// afterwards.
func (c *ChromemIndex) Search(ctx context.Context, query []float32, k int, documentIDs []string) ([]*VectorResult, error) {
	if len(query) != c.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), c.dimensions)
	}
	count := c.collection.Count()
	if k <= 0 || count == 0 {
		return nil, nil
	}

	opts := chromem.QueryOptions{
		QueryEmbedding: query,
		NResults:       k,
	}
	switch len(documentIDs) {
	case 0:
		if opts.NResults > count {
			opts.NResults = count
		}
	case 1:
		opts.Where = map[string]string{"document_id": documentIDs[0]}
		opts.NResults = count
	default:
		opts.NResults = count
	}

	hits, err := c.collection.QueryWithOptions(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	var filter map[string]bool
	if len(documentIDs) > 1 {
		filter = make(map[string]bool, len(documentIDs))
		for _, id := range documentIDs {
			filter[id] = true
		}
	}

	results := make([]*VectorResult, 0, k)
	for _, hit := range hits {
		docID := hit.Metadata["document_id"]
		if filter != nil && !filter[docID] {
			continue
		}
		results = append(results, &VectorResult{
			ID:         hit.ID,
			DocumentID: docID,
			Distance:   1 - float64(hit.Similarity),
		})
		if len(results) == k {
			break
		}
	}
	return results, nil
}

// Remove deletes entries by chunk ID.
func (c *ChromemIndex) Remove(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.collection.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}
	return nil
}

// RemoveDocument deletes all entries belonging to a document.
func (c *ChromemIndex) RemoveDocument(ctx context.Context, documentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	where := map[string]string{"document_id": documentID}
	if err := c.collection.Delete(ctx, where, nil); err != nil {
		return fmt.Errorf("delete document entries: %w", err)
	}
	return nil
}

// Save is a no-op; the persistent database writes through on every mutation.
func (c *ChromemIndex) Save(path string) error { return nil }

// Load is a no-op; contents are read from disk when the database opens.
func (c *ChromemIndex) Load(path string) error { return nil }

// Size returns the number of vectors in the index.
func (c *ChromemIndex) Size() int {
	return c.collection.Count()
}

// Close is a no-op for ChromemIndex.
func (c *ChromemIndex) Close() error { return nil }
