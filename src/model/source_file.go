package model

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrStorageQuotaExceeded means the source-file cache is full. Callers treat it as non-fatal.
var ErrStorageQuotaExceeded = errors.New("source file cache quota exceeded")

// SourceFile is the cached copy of the last upload of one kind.
type SourceFile struct {
	Kind        string    `json:"kind"`
	FileName    string    `json:"file_name"`
	ContentHash string    `json:"content_hash"`
	RowCount    int       `json:"row_count"`
	Payload     []byte    `json:"-"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// SaveSourceFile replaces the cached file of f.Kind. quotaBytes bounds the total payload
// size across all kinds; zero or less disables the check.
func SaveSourceFile(db *sql.DB, f *SourceFile, quotaBytes int64) error {
	if quotaBytes > 0 {
		var others int64
		err := db.QueryRow(`SELECT COALESCE(SUM(LENGTH(payload)), 0) FROM source_files WHERE kind != ?`, f.Kind).Scan(&others)
		if err != nil {
			return fmt.Errorf("measuring source file cache: %w", err)
		}
		if others+int64(len(f.Payload)) > quotaBytes {
			return fmt.Errorf("%w: %d bytes needed, %d allowed", ErrStorageQuotaExceeded, others+int64(len(f.Payload)), quotaBytes)
		}
	}

	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO source_files (kind, file_name, content_hash, row_count, payload, uploaded_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(kind) DO UPDATE SET
		file_name = excluded.file_name,
		content_hash = excluded.content_hash,
		row_count = excluded.row_count,
		payload = excluded.payload,
		uploaded_at = excluded.uploaded_at`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if _, err := stmt.Exec(f.Kind, f.FileName, f.ContentHash, f.RowCount, f.Payload, f.UploadedAt); err != nil {
		if isStorageFull(err) {
			return fmt.Errorf("%w: %v", ErrStorageQuotaExceeded, err)
		}
		return err
	}
	return nil
}

// isStorageFull recognizes SQLITE_FULL without depending on the driver's error type.
func isStorageFull(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database or disk is full") || strings.Contains(msg, "sqlite_full")
}

// LoadSourceFiles returns every cached file ordered by kind.
func LoadSourceFiles(db *sql.DB) ([]SourceFile, error) {
	rows, err := db.Query(`
	SELECT kind, file_name, content_hash, row_count, payload, uploaded_at
	FROM source_files
	ORDER BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []SourceFile
	for rows.Next() {
		var f SourceFile
		if err := rows.Scan(&f.Kind, &f.FileName, &f.ContentHash, &f.RowCount, &f.Payload, &f.UploadedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// ClearSourceFiles empties the cache.
func ClearSourceFiles(db *sql.DB) error {
	_, err := db.Exec(`DELETE FROM source_files`)
	return err
}
