package vector

import (
	"context"
	"math"
	"path/filepath"
	"testing"
)

func unit(x, y, z float64) []float32 {
	n := math.Sqrt(x*x + y*y + z*z)
	return []float32{float32(x / n), float32(y / n), float32(z / n)}
}

func seedIndex(t *testing.T) *MemoryIndex {
	t.Helper()
	idx, err := NewMemoryIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	entries := []Entry{
		{ID: "c1", DocumentID: "doc-a", Vector: unit(1, 0, 0)},
		{ID: "c2", DocumentID: "doc-a", Vector: unit(0.9, 0.1, 0)},
		{ID: "c3", DocumentID: "doc-b", Vector: unit(0, 1, 0)},
		{ID: "c4", DocumentID: "doc-b", Vector: unit(0, 0, 1)},
	}
	if err := idx.Add(context.Background(), entries); err != nil {
		t.Fatal(err)
	}
	return idx
}

func TestMemorySearchOrdering(t *testing.T) {
	idx := seedIndex(t)

	results, err := idx.Search(context.Background(), unit(1, 0, 0), 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].ID != "c1" || results[1].ID != "c2" {
		t.Errorf("unexpected order: %s, %s", results[0].ID, results[1].ID)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Distance < results[i-1].Distance {
			t.Errorf("distances not ascending at %d", i)
		}
	}
	if results[0].Distance > 1e-6 {
		t.Errorf("identical vector should have distance ~0, got %f", results[0].Distance)
	}
}

func TestMemorySearchDocumentFilter(t *testing.T) {
	idx := seedIndex(t)

	results, err := idx.Search(context.Background(), unit(1, 0, 0), 10, []string{"doc-b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.DocumentID != "doc-b" {
			t.Errorf("filter leaked document %s", r.DocumentID)
		}
	}
}

func TestMemorySearchTieBreak(t *testing.T) {
	idx, err := NewMemoryIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	v := unit(1, 0, 0)
	err = idx.Add(context.Background(), []Entry{
		{ID: "zz", DocumentID: "d", Vector: v},
		{ID: "aa", DocumentID: "d", Vector: v},
	})
	if err != nil {
		t.Fatal(err)
	}
	results, err := idx.Search(context.Background(), v, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].ID != "aa" || results[1].ID != "zz" {
		t.Errorf("equal distances should order by ID: got %s, %s", results[0].ID, results[1].ID)
	}
}

func TestMemoryDimensionMismatch(t *testing.T) {
	idx := seedIndex(t)
	if err := idx.Add(context.Background(), []Entry{{ID: "x", Vector: []float32{1, 0}}}); err == nil {
		t.Error("expected error adding wrong-dimension vector")
	}
	if _, err := idx.Search(context.Background(), []float32{1, 0}, 1, nil); err == nil {
		t.Error("expected error searching with wrong-dimension query")
	}
}

func TestMemoryRemove(t *testing.T) {
	idx := seedIndex(t)

	if err := idx.Remove(context.Background(), []string{"c1"}); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 3 {
		t.Errorf("expected size 3 after remove, got %d", idx.Size())
	}

	if err := idx.RemoveDocument(context.Background(), "doc-b"); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 1 {
		t.Errorf("expected size 1 after document remove, got %d", idx.Size())
	}
	results, _ := idx.Search(context.Background(), unit(1, 0, 0), 10, nil)
	if len(results) != 1 || results[0].ID != "c2" {
		t.Errorf("unexpected survivors: %+v", results)
	}
}

func TestMemorySaveLoad(t *testing.T) {
	idx := seedIndex(t)
	path := filepath.Join(t.TempDir(), "index.bin")

	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := NewMemoryIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	if err := loaded.Load(path); err != nil {
		t.Fatal(err)
	}
	if loaded.Size() != idx.Size() {
		t.Fatalf("loaded size %d, want %d", loaded.Size(), idx.Size())
	}
	results, err := loaded.Search(context.Background(), unit(1, 0, 0), 1, []string{"doc-a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "c1" || results[0].DocumentID != "doc-a" {
		t.Errorf("loaded index search mismatch: %+v", results)
	}
}

func TestMemoryLoadMissingFile(t *testing.T) {
	idx, _ := NewMemoryIndex(3)
	if err := idx.Load(filepath.Join(t.TempDir(), "nope.bin")); err != nil {
		t.Errorf("missing file should not error: %v", err)
	}
}

func TestNewVectorIndexUnknownType(t *testing.T) {
	if _, err := NewVectorIndex("faiss", 3, ""); err == nil {
		t.Error("expected error for unknown index type")
	}
}
