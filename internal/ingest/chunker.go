// Package ingest turns raw documents into classified, embedded, indexed chunks.
package ingest

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/intellecta/intellecta/internal/models"
)

// Chunker splits text into overlapping word-based chunks. Every chunk
// inherits the owning document's security level and analytics tags.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in words).
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 512
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Chunk splits text into chunks with overlapping windows, tagged from doc.
func (c *Chunker) Chunk(doc *models.Document, text, domain string) []*models.Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	chunks := make([]*models.Chunk, 0)
	chunkIndex := 0
	step := c.chunkSize - c.chunkOverlap
	if step <= 0 {
		step = 1
	}
	for i := 0; i < len(words); i += step {
		end := i + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunk := &models.Chunk{
			ID:            fmt.Sprintf("%s_%s", doc.ID, uuid.New().String()[:8]),
			DocumentID:    doc.ID,
			Content:       strings.Join(words[i:end], " "),
			ChunkIndex:    chunkIndex,
			SecurityLevel: doc.SecurityLevel,
			Filename:      doc.Filename,
			Source:        doc.Source,
			Domain:        domain,
			FileType:      fileType(doc.Filename),
		}
		chunks = append(chunks, chunk)
		chunkIndex++
		if end >= len(words) {
			break
		}
	}
	return chunks
}

func fileType(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 && i < len(filename)-1 {
		return strings.ToLower(filename[i+1:])
	}
	return ""
}
