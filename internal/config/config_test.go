package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "test.db"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("loading a missing file should fail")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "localhost"
  port: 8080
storage:
  database_path: "./data/documents.db"
  vector_index_path: "./data/vectors"
ingest:
  watch_dir: "./drop"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantDB := filepath.Join(dir, "data", "documents.db")
	if cfg.Storage.DatabasePath != wantDB {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, wantDB)
	}
	wantDrop := filepath.Join(dir, "drop")
	if cfg.Ingest.WatchDir != wantDrop {
		t.Errorf("watch_dir = %s, want %s", cfg.Ingest.WatchDir, wantDrop)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Vector.IndexType != "memory" {
		t.Errorf("default index type: got %s", cfg.Vector.IndexType)
	}
	if cfg.Retrieval.TopK != 10 || cfg.Retrieval.OverfetchFactor != 3 {
		t.Errorf("retrieval defaults: %+v", cfg.Retrieval)
	}
	if cfg.Retrieval.DistanceCeiling != 0.8 || cfg.Retrieval.HighQualityThreshold != 0.35 {
		t.Errorf("metric calibration defaults: %+v", cfg.Retrieval)
	}
	if cfg.Security.DefaultClearance != "PUBLIC" {
		t.Errorf("default clearance: got %s", cfg.Security.DefaultClearance)
	}
	if cfg.History.Capacity != 200 {
		t.Errorf("default history capacity: got %d", cfg.History.Capacity)
	}
	if len(cfg.Ingest.Extensions) == 0 || cfg.Ingest.Extensions[0] != ".txt" {
		t.Errorf("ingest extensions: got %v", cfg.Ingest.Extensions)
	}
}

func TestApplyDefaults_preservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Retrieval: RetrievalConfig{TopK: 5, DistanceCeiling: 0.5},
		History:   HistoryConfig{Capacity: 50},
	}
	ApplyDefaults(cfg)
	if cfg.Retrieval.TopK != 5 || cfg.Retrieval.DistanceCeiling != 0.5 {
		t.Errorf("explicit retrieval values overwritten: %+v", cfg.Retrieval)
	}
	if cfg.History.Capacity != 50 {
		t.Errorf("explicit history capacity overwritten: %d", cfg.History.Capacity)
	}
}
