package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/intellecta/intellecta/internal/embedding"
	"github.com/intellecta/intellecta/internal/models"
	"github.com/intellecta/intellecta/internal/security"
	"github.com/intellecta/intellecta/internal/storage"
	"github.com/intellecta/intellecta/internal/vector"
)

// Ingestor runs the document pipeline: classify, chunk, embed, index, persist.
type Ingestor struct {
	store      storage.Storage
	index      vector.VectorIndex
	embedder   embedding.Embedder
	classifier *security.Classifier
	chunker    *Chunker
	logger     *zap.Logger
}

// NewIngestor wires the ingestion pipeline.
func NewIngestor(
	store storage.Storage,
	index vector.VectorIndex,
	embedder embedding.Embedder,
	classifier *security.Classifier,
	chunker *Chunker,
	logger *zap.Logger,
) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		store:      store,
		index:      index,
		embedder:   embedder,
		classifier: classifier,
		chunker:    chunker,
		logger:     logger,
	}
}

// Ingest processes one document. When no security level is supplied the
// classifier's detected level is used. The document is visible with status
// "processing" while chunks are built and flips to "ready" (or "error") at
// the end.
func (g *Ingestor) Ingest(ctx context.Context, input *models.DocumentInput) (*models.IngestResponse, error) {
	if input.Filename == "" {
		return nil, fmt.Errorf("filename cannot be empty")
	}
	if input.Content == "" {
		return nil, fmt.Errorf("content cannot be empty")
	}

	level := models.LevelPublic
	if input.SecurityLevel != nil {
		parsed, err := models.ParseSecurityLevel(string(*input.SecurityLevel))
		if err != nil {
			return nil, err
		}
		level = parsed
	} else {
		detected, confidence, _ := g.classifier.Classify(input.Content)
		level = detected
		g.logger.Info("auto-classified document",
			zap.String("filename", input.Filename),
			zap.String("level", string(level)),
			zap.Float64("confidence", confidence))
	}

	doc := &models.Document{
		ID:            uuid.New().String(),
		Filename:      input.Filename,
		Size:          int64(len(input.Content)),
		Status:        models.StatusProcessing,
		SecurityLevel: level,
		Source:        input.Source,
	}
	if err := g.store.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	chunks := g.chunker.Chunk(doc, input.Content, input.Domain)
	if err := g.indexChunks(ctx, chunks); err != nil {
		if statusErr := g.store.UpdateDocumentStatus(ctx, doc.ID, models.StatusError, 0); statusErr != nil {
			g.logger.Error("failed to mark document as errored",
				zap.String("doc_id", doc.ID), zap.Error(statusErr))
		}
		return nil, err
	}

	if err := g.store.UpdateDocumentStatus(ctx, doc.ID, models.StatusReady, len(chunks)); err != nil {
		return nil, fmt.Errorf("finalize document: %w", err)
	}

	g.logger.Info("document ingested",
		zap.String("doc_id", doc.ID),
		zap.String("filename", doc.Filename),
		zap.Int("chunks", len(chunks)),
		zap.String("level", string(level)))

	return &models.IngestResponse{
		Success:       true,
		DocID:         doc.ID,
		Filename:      doc.Filename,
		ChunksCreated: len(chunks),
		SecurityLevel: level,
		Message:       fmt.Sprintf("ingested %d chunks at %s", len(chunks), level),
	}, nil
}

func (g *Ingestor) indexChunks(ctx context.Context, chunks []*models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	embeddings, err := g.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	entries := make([]vector.Entry, len(chunks))
	for i, c := range chunks {
		c.Embedding = embeddings[i]
		entries[i] = vector.Entry{ID: c.ID, DocumentID: c.DocumentID, Vector: embeddings[i]}
	}
	if err := g.index.Add(ctx, entries); err != nil {
		return fmt.Errorf("index chunks: %w", err)
	}

	if err := g.store.BatchCreateChunks(ctx, chunks); err != nil {
		// Keep index and storage consistent if persistence fails.
		ids := make([]string, len(chunks))
		for i, c := range chunks {
			ids[i] = c.ID
		}
		if rmErr := g.index.Remove(ctx, ids); rmErr != nil {
			g.logger.Error("failed to roll back index entries", zap.Error(rmErr))
		}
		return fmt.Errorf("persist chunks: %w", err)
	}
	return nil
}

// Delete removes a document, its chunks, and its index entries.
func (g *Ingestor) Delete(ctx context.Context, docID string) error {
	if _, err := g.store.GetDocument(ctx, docID); err != nil {
		return err
	}
	if err := g.index.RemoveDocument(ctx, docID); err != nil {
		return fmt.Errorf("remove index entries: %w", err)
	}
	if err := g.store.DeleteDocument(ctx, docID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	g.logger.Info("document deleted", zap.String("doc_id", docID))
	return nil
}
