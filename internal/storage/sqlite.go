// Package storage provides SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/intellecta/intellecta/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		size INTEGER NOT NULL DEFAULT 0,
		chunk_count INTEGER NOT NULL DEFAULT 0,
		ingested_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		status TEXT NOT NULL DEFAULT 'processing',
		security_level TEXT NOT NULL DEFAULT 'PUBLIC',
		source TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_documents_ingested_at ON documents(ingested_at);

	CREATE TABLE IF NOT EXISTS document_chunks (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		content TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		security_level TEXT NOT NULL DEFAULT 'PUBLIC',
		filename TEXT,
		source TEXT,
		domain TEXT,
		file_type TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON document_chunks(document_id);
	CREATE INDEX IF NOT EXISTS idx_chunks_security_level ON document_chunks(security_level);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateDocument inserts a document.
func (s *SQLiteStorage) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc.IngestedAt.IsZero() {
		doc.IngestedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, filename, size, chunk_count, ingested_at, status, security_level, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Filename, doc.Size, doc.Chunks, doc.IngestedAt, doc.Status, doc.SecurityLevel, doc.Source,
	)
	return err
}

// GetDocument returns a document by ID.
func (s *SQLiteStorage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := s.db.QueryRowContext(ctx,
		`SELECT id, filename, size, chunk_count, ingested_at, status, security_level, COALESCE(source, '')
		 FROM documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.Filename, &doc.Size, &doc.Chunks, &doc.IngestedAt, &doc.Status, &doc.SecurityLevel, &doc.Source)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpdateDocumentStatus records the lifecycle transition and final chunk count
// of a document.
func (s *SQLiteStorage) UpdateDocumentStatus(ctx context.Context, id string, status models.DocumentStatus, chunkCount int) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE documents SET status = ?, chunk_count = ? WHERE id = ?`,
		status, chunkCount, id,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

// DeleteDocument removes a document by ID; chunks cascade.
func (s *SQLiteStorage) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	return err
}

// ListDocuments returns documents newest first with offset and limit.
func (s *SQLiteStorage) ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, size, chunk_count, ingested_at, status, security_level, COALESCE(source, '')
		 FROM documents ORDER BY ingested_at DESC, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.Size, &doc.Chunks, &doc.IngestedAt, &doc.Status, &doc.SecurityLevel, &doc.Source); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

const chunkColumns = `id, document_id, content, chunk_index, security_level,
	COALESCE(filename, ''), COALESCE(source, ''), COALESCE(domain, ''), COALESCE(file_type, ''), created_at`

func scanChunk(scan func(...any) error) (*models.Chunk, error) {
	var chunk models.Chunk
	err := scan(&chunk.ID, &chunk.DocumentID, &chunk.Content, &chunk.ChunkIndex, &chunk.SecurityLevel,
		&chunk.Filename, &chunk.Source, &chunk.Domain, &chunk.FileType, &chunk.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// GetChunk returns a chunk by ID.
func (s *SQLiteStorage) GetChunk(ctx context.Context, id string) (*models.Chunk, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+chunkColumns+` FROM document_chunks WHERE id = ?`, id)
	chunk, err := scanChunk(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("chunk not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// GetChunksByIDs returns the chunks for the given IDs keyed by ID. Missing
// IDs are simply absent from the map.
func (s *SQLiteStorage) GetChunksByIDs(ctx context.Context, ids []string) (map[string]*models.Chunk, error) {
	out := make(map[string]*models.Chunk, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+chunkColumns+` FROM document_chunks WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		chunk, err := scanChunk(rows.Scan)
		if err != nil {
			return nil, err
		}
		out[chunk.ID] = chunk
	}
	return out, rows.Err()
}

// GetChunksByDocumentID returns all chunks for a document ordered by chunk_index.
func (s *SQLiteStorage) GetChunksByDocumentID(ctx context.Context, docID string) ([]*models.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+chunkColumns+` FROM document_chunks WHERE document_id = ? ORDER BY chunk_index`, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*models.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows.Scan)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// DeleteChunksByDocumentID removes all chunks for a document.
func (s *SQLiteStorage) DeleteChunksByDocumentID(ctx context.Context, docID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = ?`, docID)
	return err
}

// BatchCreateChunks inserts multiple chunks in a transaction.
func (s *SQLiteStorage) BatchCreateChunks(ctx context.Context, chunks []*models.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO document_chunks (id, document_id, content, chunk_index, security_level, filename, source, domain, file_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, chunk := range chunks {
		chunk.CreatedAt = now
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.Content, chunk.ChunkIndex,
			chunk.SecurityLevel, chunk.Filename, chunk.Source, chunk.Domain, chunk.FileType, chunk.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CountDocuments returns the total number of documents.
func (s *SQLiteStorage) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// CountChunks returns the total number of chunks.
func (s *SQLiteStorage) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document_chunks`).Scan(&count)
	return count, err
}

// GetDataStats builds the corpus summary for the stats endpoint.
func (s *SQLiteStorage) GetDataStats(ctx context.Context) (*models.DataStats, error) {
	stats := &models.DataStats{
		ChunksBySource:   []models.ChunksBySource{},
		ChunksByDomain:   []models.ChunksByDomain{},
		ChunksByType:     []models.ChunksByType{},
		ChunksByDocument: []models.ChunksByDocument{},
		Documents:        []models.DocumentStats{},
	}

	chunkCount, err := s.CountChunks(ctx)
	if err != nil {
		return nil, err
	}
	docCount, err := s.CountDocuments(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalChunks = int(chunkCount)
	stats.TotalDocuments = int(docCount)

	if err := s.groupCounts(ctx, "source", func(key string, n int) {
		stats.ChunksBySource = append(stats.ChunksBySource, models.ChunksBySource{Source: key, Chunks: n})
	}); err != nil {
		return nil, err
	}
	stats.TotalDatasets = len(stats.ChunksBySource)

	if err := s.groupCounts(ctx, "domain", func(key string, n int) {
		stats.ChunksByDomain = append(stats.ChunksByDomain, models.ChunksByDomain{Domain: key, Chunks: n})
	}); err != nil {
		return nil, err
	}
	if err := s.groupCounts(ctx, "file_type", func(key string, n int) {
		stats.ChunksByType = append(stats.ChunksByType, models.ChunksByType{Type: key, Chunks: n})
	}); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT d.id, d.filename, COUNT(c.id), d.size, d.security_level
		 FROM documents d LEFT JOIN document_chunks c ON c.document_id = d.id
		 GROUP BY d.id ORDER BY d.ingested_at DESC, d.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ds models.DocumentStats
		if err := rows.Scan(&ds.ID, &ds.Filename, &ds.Chunks, &ds.Size, &ds.SecurityLevel); err != nil {
			return nil, err
		}
		stats.Documents = append(stats.Documents, ds)
		stats.ChunksByDocument = append(stats.ChunksByDocument, models.ChunksByDocument{
			DocumentID: ds.ID, Filename: ds.Filename, Chunks: ds.Chunks,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var earliest, latest sql.NullString
	err = s.db.QueryRowContext(ctx,
		`SELECT MIN(ingested_at), MAX(ingested_at) FROM documents`).Scan(&earliest, &latest)
	if err != nil {
		return nil, err
	}
	if earliest.Valid {
		stats.DateRange.Earliest = earliest.String
	}
	if latest.Valid {
		stats.DateRange.Latest = latest.String
	}

	return stats, nil
}

func (s *SQLiteStorage) groupCounts(ctx context.Context, column string, add func(key string, n int)) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(`+column+`, ''), COUNT(*) FROM document_chunks
		 WHERE COALESCE(`+column+`, '') != '' GROUP BY `+column+` ORDER BY COUNT(*) DESC, `+column)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		add(key, n)
	}
	return rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
