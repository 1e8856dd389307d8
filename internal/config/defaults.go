package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/intellecta/data/db/documents.db"
	}
	if cfg.Storage.VectorIndexPath == "" {
		cfg.Storage.VectorIndexPath = "/usr/local/var/intellecta/data/indices/vectors"
	}
	if cfg.Vector.IndexType == "" {
		cfg.Vector.IndexType = "memory"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "ollama"
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "http://localhost:11434"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "nomic-embed-text"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 768
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 10
	}
	if cfg.Retrieval.OverfetchFactor == 0 {
		cfg.Retrieval.OverfetchFactor = 3
	}
	if cfg.Retrieval.DistanceCeiling == 0 {
		cfg.Retrieval.DistanceCeiling = 0.8
	}
	if cfg.Retrieval.HighQualityThreshold == 0 {
		cfg.Retrieval.HighQualityThreshold = 0.35
	}
	if cfg.Retrieval.LatencyBudgetMS == 0 {
		cfg.Retrieval.LatencyBudgetMS = 500
	}
	if cfg.Retrieval.ReferenceRate == 0 {
		cfg.Retrieval.ReferenceRate = 200
	}
	if cfg.Retrieval.RerankTimeoutMS == 0 {
		cfg.Retrieval.RerankTimeoutMS = 10000
	}
	if cfg.Generation.Provider == "" {
		cfg.Generation.Provider = "ollama"
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = "llama3.2:latest"
	}
	if cfg.Generation.OllamaHost == "" {
		cfg.Generation.OllamaHost = "http://localhost:11434"
	}
	if cfg.Generation.TimeoutMS == 0 {
		cfg.Generation.TimeoutMS = 120000
	}
	if cfg.Security.DefaultClearance == "" {
		cfg.Security.DefaultClearance = "PUBLIC"
	}
	if cfg.History.Capacity == 0 {
		cfg.History.Capacity = 200
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = 512
	}
	if cfg.Ingest.ChunkOverlap == 0 {
		cfg.Ingest.ChunkOverlap = 50
	}
	if cfg.Ingest.Extensions == nil {
		cfg.Ingest.Extensions = []string{".txt", ".md", ".csv", ".json"}
	}
}
