// Package config provides configuration loading and structs for the Intellecta server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Vector     VectorConfig     `yaml:"vector"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Generation GenerationConfig `yaml:"generation"`
	Security   SecurityConfig   `yaml:"security"`
	History    HistoryConfig    `yaml:"history"`
	Ingest     IngestConfig     `yaml:"ingest"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database and the vector index.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path"`
	VectorIndexPath string `yaml:"vector_index_path"`
}

// VectorConfig selects the vector index backend.
type VectorConfig struct {
	IndexType string `yaml:"index_type"` // "memory" or "chromem"
}

// EmbeddingConfig holds embedding service settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // "ollama" or "mock"
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	CacheSize  int    `yaml:"cache_size"`
}

// RetrievalConfig holds two-stage retrieval tuning and metric calibration.
type RetrievalConfig struct {
	TopK                 int     `yaml:"top_k"`
	OverfetchFactor      int     `yaml:"overfetch_factor"`
	DistanceCeiling      float64 `yaml:"distance_ceiling"`
	HighQualityThreshold float64 `yaml:"high_quality_threshold"`
	LatencyBudgetMS      int     `yaml:"latency_budget_ms"`
	ReferenceRate        float64 `yaml:"reference_rate"` // chunks/s mapping to throughput 100
	RerankURL            string  `yaml:"rerank_url"`     // empty = built-in lexical reranker
	RerankTimeoutMS      int     `yaml:"rerank_timeout_ms"`
}

// GenerationConfig holds answer-generation settings.
type GenerationConfig struct {
	Provider      string `yaml:"provider"` // "ollama" or "openai"
	Model         string `yaml:"model"`
	OllamaHost    string `yaml:"ollama_host"`
	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	TimeoutMS     int    `yaml:"timeout_ms"`
}

// SecurityConfig holds access-control defaults.
type SecurityConfig struct {
	DefaultClearance string `yaml:"default_clearance"`
}

// HistoryConfig bounds the query history store.
type HistoryConfig struct {
	Capacity int `yaml:"capacity"`
}

// IngestConfig holds chunking and drop-directory settings.
type IngestConfig struct {
	ChunkSize    int      `yaml:"chunk_size"`    // words per chunk
	ChunkOverlap int      `yaml:"chunk_overlap"` // overlapping words
	WatchDir     string   `yaml:"watch_dir"`     // empty = drop-dir ingestion disabled
	Extensions   []string `yaml:"extensions"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.VectorIndexPath = expandPath(cfg.Storage.VectorIndexPath, configDir)
	if cfg.Ingest.WatchDir != "" {
		cfg.Ingest.WatchDir = expandPath(cfg.Ingest.WatchDir, configDir)
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
