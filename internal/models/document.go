// Package models defines core data structures for documents, chunks, queries,
// and the wire contract of the HTTP API.
package models

import "time"

// DocumentStatus is the lifecycle state of an ingested document.
type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusError      DocumentStatus = "error"
)

// Document represents an ingested document with its classification.
type Document struct {
	ID            string         `json:"id" db:"id"`
	Filename      string         `json:"filename" db:"filename"`
	Size          int64          `json:"size" db:"size"`
	Chunks        int            `json:"chunks" db:"chunk_count"`
	IngestedAt    time.Time      `json:"ingestedAt" db:"ingested_at"`
	Status        DocumentStatus `json:"status" db:"status"`
	SecurityLevel SecurityLevel  `json:"security_level" db:"security_level"`
	Source        string         `json:"source,omitempty" db:"source"`
}

// Chunk is the minimal retrievable unit: a slice of document text with an
// inherited security level and analytics tags. Immutable once created.
type Chunk struct {
	ID            string        `json:"id" db:"id"`
	DocumentID    string        `json:"document_id" db:"document_id"`
	Content       string        `json:"content" db:"content"`
	ChunkIndex    int           `json:"chunk_index" db:"chunk_index"`
	SecurityLevel SecurityLevel `json:"security_level" db:"security_level"`
	Filename      string        `json:"filename" db:"filename"`
	Source        string        `json:"source,omitempty" db:"source"`
	Domain        string        `json:"domain,omitempty" db:"domain"`
	FileType      string        `json:"file_type,omitempty" db:"file_type"`
	Embedding     []float32     `json:"-" db:"-"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// DocumentInput is the body of POST /documents.
type DocumentInput struct {
	Filename      string         `json:"filename"`
	Content       string         `json:"content"`
	SecurityLevel *SecurityLevel `json:"security_level,omitempty"`
	Source        string         `json:"source,omitempty"`
	Domain        string         `json:"domain,omitempty"`
}

// IngestResponse reports the outcome of a document ingestion.
type IngestResponse struct {
	Success       bool          `json:"success"`
	DocID         string        `json:"doc_id"`
	Filename      string        `json:"filename"`
	ChunksCreated int           `json:"chunks_created"`
	SecurityLevel SecurityLevel `json:"security_level"`
	Message       string        `json:"message"`
}
