package embedding

import (
	"testing"
)

func TestEmbeddingCache_GetSet(t *testing.T) {
	c := NewEmbeddingCache(2)
	if v, ok := c.Get("a"); ok || v != nil {
		t.Fatal("expected miss")
	}
	c.Set("a", []float32{1, 2, 3})
	v, ok := c.Get("a")
	if !ok || len(v) != 3 || v[0] != 1 {
		t.Errorf("Get: got %v, %v", v, ok)
	}
	c.Set("b", []float32{4, 5})
	c.Set("c", []float32{6}) // evicts a
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected b to remain")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c to be present")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestEmbeddingCache_LRUTouch(t *testing.T) {
	c := NewEmbeddingCache(2)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	c.Get("a") // a becomes most recent
	c.Set("c", []float32{3})
	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to remain after touch")
	}
}

func TestEmbeddingCache_OverwriteUpdatesRecency(t *testing.T) {
	c := NewEmbeddingCache(2)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	c.Set("a", []float32{9}) // overwrite, a becomes most recent
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2 after overwrite", c.Len())
	}
	v, ok := c.Get("a")
	if !ok || len(v) != 1 || v[0] != 9 {
		t.Errorf("overwritten vector: got %v, %v", v, ok)
	}
	c.Set("c", []float32{3})
	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted after a was rewritten")
	}
}

func TestEmbeddingCache_CapacityFloor(t *testing.T) {
	c := NewEmbeddingCache(0)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1 with floored capacity", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be evicted at capacity one")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected the latest entry to remain")
	}
}
