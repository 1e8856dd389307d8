package models

// ChunksBySource groups chunk counts by dataset source.
type ChunksBySource struct {
	Source string `json:"source"`
	Chunks int    `json:"chunks"`
}

// ChunksByDomain groups chunk counts by domain tag.
type ChunksByDomain struct {
	Domain string `json:"domain"`
	Chunks int    `json:"chunks"`
}

// ChunksByType groups chunk counts by file type.
type ChunksByType struct {
	Type   string `json:"type"`
	Chunks int    `json:"chunks"`
}

// ChunksByDocument groups chunk counts by owning document.
type ChunksByDocument struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Chunks     int    `json:"chunks"`
}

// DocumentStats summarizes a single document for the stats endpoint.
type DocumentStats struct {
	ID            string        `json:"id"`
	Filename      string        `json:"filename"`
	Chunks        int           `json:"chunks"`
	Size          int64         `json:"size"`
	SecurityLevel SecurityLevel `json:"security_level"`
}

// DateRange bounds ingestion timestamps across the corpus.
type DateRange struct {
	Earliest string `json:"earliest,omitempty"`
	Latest   string `json:"latest,omitempty"`
}

// DataStats is the body of GET /stats.
type DataStats struct {
	TotalChunks      int                `json:"total_chunks"`
	TotalDocuments   int                `json:"total_documents"`
	TotalDatasets    int                `json:"total_datasets"`
	ChunksBySource   []ChunksBySource   `json:"chunks_by_source"`
	ChunksByDomain   []ChunksByDomain   `json:"chunks_by_domain"`
	ChunksByType     []ChunksByType     `json:"chunks_by_type"`
	ChunksByDocument []ChunksByDocument `json:"chunks_by_document"`
	DateRange        DateRange          `json:"date_range"`
	Documents        []DocumentStats    `json:"documents"`
}
