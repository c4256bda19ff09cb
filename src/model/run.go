package model

import (
	"database/sql"
	"time"
)

const (
	RunStatusOK     = "ok"
	RunStatusFailed = "failed"
)

// Run is one entry of the reconciliation audit log.
type Run struct {
	ID           string    `json:"id"`
	ContentHash  string    `json:"content_hash"`
	CreatorCount int       `json:"creator_count"`
	ProductCount int       `json:"product_count"`
	NotFoundSkus int       `json:"not_found_skus"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// LogRun inserts a run.
func LogRun(db *sql.DB, r *Run) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	query := `
	INSERT INTO reconciliation_runs (id, content_hash, creator_count, product_count, not_found_skus, status, error, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	var errText sql.NullString
	if r.Error != "" {
		errText = sql.NullString{String: r.Error, Valid: true}
	}
	_, err = stmt.Exec(r.ID, r.ContentHash, r.CreatorCount, r.ProductCount, r.NotFoundSkus, r.Status, errText, r.CreatedAt)
	return err
}

// RecentRuns returns up to limit runs, newest first.
func RecentRuns(db *sql.DB, limit int) ([]Run, error) {
	rows, err := db.Query(`
	SELECT id, content_hash, creator_count, product_count, not_found_skus, status, error, created_at
	FROM reconciliation_runs
	ORDER BY created_at DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		var errText sql.NullString
		if err := rows.Scan(&r.ID, &r.ContentHash, &r.CreatorCount, &r.ProductCount, &r.NotFoundSkus, &r.Status, &errText, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Error = errText.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
