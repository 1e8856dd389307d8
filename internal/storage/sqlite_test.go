package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/intellecta/intellecta/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStorage_Documents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := &models.Document{
		ID:            "doc1",
		Filename:      "report.txt",
		Size:          1024,
		Status:        models.StatusProcessing,
		SecurityLevel: models.LevelConfidential,
		Source:        "finance",
	}
	if err := store.CreateDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}
	if doc.IngestedAt.IsZero() {
		t.Error("IngestedAt should be set")
	}

	got, err := store.GetDocument(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Filename != "report.txt" || got.SecurityLevel != models.LevelConfidential {
		t.Errorf("got %+v", got)
	}

	if err := store.UpdateDocumentStatus(ctx, "doc1", models.StatusReady, 7); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetDocument(ctx, "doc1")
	if got.Status != models.StatusReady || got.Chunks != 7 {
		t.Errorf("status update: %+v", got)
	}

	if err := store.UpdateDocumentStatus(ctx, "missing", models.StatusReady, 0); err == nil {
		t.Error("expected error updating missing document")
	}

	list, err := store.ListDocuments(ctx, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 doc, got %d", len(list))
	}

	if err := store.DeleteDocument(ctx, "doc1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetDocument(ctx, "doc1"); err == nil {
		t.Error("expected error after delete")
	}
}

func TestSQLiteStorage_Chunks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := &models.Document{ID: "d1", Filename: "f.txt", Status: models.StatusProcessing}
	if err := store.CreateDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}

	chunks := []*models.Chunk{
		{ID: "d1_c0", DocumentID: "d1", Content: "chunk0", ChunkIndex: 0,
			SecurityLevel: models.LevelPublic, Filename: "f.txt", Source: "ops", Domain: "energy", FileType: "txt"},
		{ID: "d1_c1", DocumentID: "d1", Content: "chunk1", ChunkIndex: 1,
			SecurityLevel: models.LevelInternal, Filename: "f.txt", Source: "ops", Domain: "energy", FileType: "txt"},
	}
	if err := store.BatchCreateChunks(ctx, chunks); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetChunk(ctx, "d1_c1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "chunk1" || got.SecurityLevel != models.LevelInternal {
		t.Errorf("got %+v", got)
	}

	byIDs, err := store.GetChunksByIDs(ctx, []string{"d1_c0", "d1_c1", "missing"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byIDs) != 2 {
		t.Errorf("expected 2 chunks, got %d", len(byIDs))
	}
	if byIDs["d1_c0"].Domain != "energy" {
		t.Errorf("domain = %q", byIDs["d1_c0"].Domain)
	}

	list, err := store.GetChunksByDocumentID(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ChunkIndex != 0 {
		t.Errorf("unexpected chunks %v", list)
	}

	// Deleting the document cascades to its chunks.
	if err := store.DeleteDocument(ctx, "d1"); err != nil {
		t.Fatal(err)
	}
	n, _ := store.CountChunks(ctx)
	if n != 0 {
		t.Errorf("expected cascade delete, %d chunks remain", n)
	}
}

func TestSQLiteStorage_GetChunksByIDsEmpty(t *testing.T) {
	store := newTestStore(t)
	out, err := store.GetChunksByIDs(context.Background(), nil)
	if err != nil || len(out) != 0 {
		t.Errorf("empty input: %v %v", out, err)
	}
}

func TestSQLiteStorage_DataStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	stats, err := store.GetDataStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalChunks != 0 || stats.TotalDocuments != 0 {
		t.Errorf("empty db stats: %+v", stats)
	}
	if stats.ChunksBySource == nil || stats.Documents == nil {
		t.Error("group slices should be empty, not nil")
	}

	for _, d := range []string{"d1", "d2"} {
		if err := store.CreateDocument(ctx, &models.Document{ID: d, Filename: d + ".txt", Status: models.StatusReady}); err != nil {
			t.Fatal(err)
		}
	}
	chunks := []*models.Chunk{
		{ID: "c1", DocumentID: "d1", Content: "x", ChunkIndex: 0, Source: "grid", Domain: "energy", FileType: "txt"},
		{ID: "c2", DocumentID: "d1", Content: "x", ChunkIndex: 1, Source: "grid", Domain: "energy", FileType: "txt"},
		{ID: "c3", DocumentID: "d2", Content: "x", ChunkIndex: 0, Source: "hr", Domain: "people", FileType: "csv"},
	}
	if err := store.BatchCreateChunks(ctx, chunks); err != nil {
		t.Fatal(err)
	}

	stats, err = store.GetDataStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalChunks != 3 || stats.TotalDocuments != 2 || stats.TotalDatasets != 2 {
		t.Errorf("totals: %+v", stats)
	}
	if len(stats.ChunksBySource) != 2 || stats.ChunksBySource[0].Source != "grid" || stats.ChunksBySource[0].Chunks != 2 {
		t.Errorf("by source: %+v", stats.ChunksBySource)
	}
	if len(stats.ChunksByDomain) != 2 || len(stats.ChunksByType) != 2 {
		t.Errorf("groupings: %+v %+v", stats.ChunksByDomain, stats.ChunksByType)
	}
	if len(stats.Documents) != 2 || len(stats.ChunksByDocument) != 2 {
		t.Errorf("documents: %+v", stats.Documents)
	}
	if stats.DateRange.Earliest == "" || stats.DateRange.Latest == "" {
		t.Error("date range should be populated")
	}
}
