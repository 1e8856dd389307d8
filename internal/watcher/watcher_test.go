package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/intellecta/intellecta/internal/models"
)

type drop struct {
	path  string
	level models.SecurityLevel
}

type dropRecorder struct {
	mu    sync.Mutex
	drops []drop
}

func (r *dropRecorder) handle(path string, level models.SecurityLevel) {
	r.mu.Lock()
	r.drops = append(r.drops, drop{path, level})
	r.mu.Unlock()
}

func (r *dropRecorder) snapshot() []drop {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]drop(nil), r.drops...)
}

func TestStartCreatesLevelDirectories(t *testing.T) {
	root := filepath.Join(t.TempDir(), "drop")

	w := New(root, []string{".txt"}, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	for dir := range levelDirs {
		if _, err := os.Stat(filepath.Join(root, dir)); err != nil {
			t.Errorf("level directory %s should exist after Start: %v", dir, err)
		}
	}
}

func TestDroppedFileIngestedAtDirectoryLevel(t *testing.T) {
	root := t.TempDir()
	rec := &dropRecorder{}

	w := New(root, []string{".txt"}, rec.handle, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	path := filepath.Join(root, "confidential", "report.txt")
	if err := os.WriteFile(path, []byte("q3 revenue"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "public", "skip.xyz"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	time.Sleep(400 * time.Millisecond)

	drops := rec.snapshot()
	if len(drops) != 1 {
		t.Fatalf("expected one drop, got %v", drops)
	}
	if !strings.HasSuffix(drops[0].path, "report.txt") || drops[0].level != models.LevelConfidential {
		t.Errorf("drop = %+v", drops[0])
	}
}

func TestLevelFor(t *testing.T) {
	root := t.TempDir()
	w := New(root, nil, nil)

	tests := []struct {
		path  string
		level models.SecurityLevel
		ok    bool
	}{
		{filepath.Join(root, "public", "a.txt"), models.LevelPublic, true},
		{filepath.Join(root, "top_secret", "b.txt"), models.LevelTopSecret, true},
		{filepath.Join(root, "restricted", "c.txt"), models.LevelRestricted, true},
		{filepath.Join(root, "unknown", "d.txt"), models.LevelPublic, false},
		{filepath.Join(root, "orphan.txt"), models.LevelPublic, false},
		{"/elsewhere/public/e.txt", models.LevelPublic, false},
	}
	for _, tt := range tests {
		level, ok := w.levelFor(tt.path)
		if ok != tt.ok || (ok && level != tt.level) {
			t.Errorf("levelFor(%q) = %v, %v; want %v, %v", tt.path, level, ok, tt.level, tt.ok)
		}
	}
}

func TestMatchExtension(t *testing.T) {
	tests := []struct {
		path       string
		extensions []string
		want       bool
	}{
		{"/a/b.txt", []string{".txt"}, true},
		{"/a/b.TXT", []string{".txt"}, true},
		{"/a/b.md", []string{".txt"}, false},
		{"/a/b", nil, true},
		{"/a/b", []string{}, true},
	}
	for _, tt := range tests {
		w := New("/tmp", tt.extensions, nil)
		if got := w.matchExtension(tt.path); got != tt.want {
			t.Errorf("matchExtension(%q, %v) = %v, want %v", tt.path, tt.extensions, got, tt.want)
		}
	}
}

func TestSyncExisting(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"public", "restricted"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "public", "a.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "restricted", "b.txt"), []byte("y"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "public", "ignore.xyz"), []byte("z"), 0600); err != nil {
		t.Fatal(err)
	}

	rec := &dropRecorder{}
	w := New(root, []string{".txt"}, rec.handle)
	w.SyncExisting()

	drops := rec.snapshot()
	if len(drops) != 2 {
		t.Fatalf("expected 2 drops, got %v", drops)
	}
	byLevel := make(map[models.SecurityLevel]string)
	for _, d := range drops {
		byLevel[d.level] = d.path
	}
	if !strings.HasSuffix(byLevel[models.LevelPublic], "a.txt") {
		t.Errorf("public drop = %q", byLevel[models.LevelPublic])
	}
	if !strings.HasSuffix(byLevel[models.LevelRestricted], "b.txt") {
		t.Errorf("restricted drop = %q", byLevel[models.LevelRestricted])
	}
}

func TestStopIsIdempotent(t *testing.T) {
	w := New(t.TempDir(), nil, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}
