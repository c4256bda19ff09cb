package database

import (
	"database/sql"
	"fmt"
	stdlog "log"

	_ "modernc.org/sqlite"

	"github.com/LinhLe223/GMV-MAX/src/logger"
)

var DB *sql.DB

const schema = `
	CREATE TABLE IF NOT EXISTS source_files (
		kind TEXT PRIMARY KEY,
		file_name TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		row_count INTEGER DEFAULT 0,
		payload BLOB NOT NULL,
		uploaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS reconciliation_runs (
		id TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL,
		creator_count INTEGER DEFAULT 0,
		product_count INTEGER DEFAULT 0,
		not_found_skus INTEGER DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_reconciliation_runs_created_at ON reconciliation_runs(created_at);
	`

// columnMigration adds a column that older databases may lack.
type columnMigration struct {
	column string
	ddl    string
}

var migrations = map[string][]columnMigration{
	"source_files": {
		{"row_count", "ALTER TABLE source_files ADD COLUMN row_count INTEGER DEFAULT 0"},
		{"uploaded_at", "ALTER TABLE source_files ADD COLUMN uploaded_at TIMESTAMP"},
	},
	"reconciliation_runs": {
		{"not_found_skus", "ALTER TABLE reconciliation_runs ADD COLUMN not_found_skus INTEGER DEFAULT 0"},
		{"error", "ALTER TABLE reconciliation_runs ADD COLUMN error TEXT"},
	},
}

// InitDB opens the database, migrates existing tables and creates missing ones.
// It exits the process on failure.
func InitDB(databasePath string) {
	db, err := Open(databasePath)
	if err != nil {
		stdlog.Fatalf("failed to initialize database at %s: %v", databasePath, err)
	}
	DB = db
}

// Open returns a ready-to-use handle without touching the package-level DB.
func Open(databasePath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", databasePath, err)
	}
	// A single connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	logger.L.Info("Checking database migrations", "databasePath", databasePath)
	for _, table := range []string{"source_files", "reconciliation_runs"} {
		migrateTable(db, table)
	}

	if _, err := db.Exec(schema); err != nil {
		logger.L.Error("failed to create tables", "error", err)
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	logger.L.Info("Database tables ensured/created.")
	return db, nil
}

func migrateTable(db *sql.DB, table string) {
	var tableName string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			logger.L.Info("table does not exist, no migration needed as table will be created.", "table", table)
			return
		}
		logger.L.Error("Error checking for table", "table", table, "error", err)
		return
	}

	columnExists, err := tableColumns(db, table)
	if err != nil {
		logger.L.Error("Error querying table schema", "table", table, "error", err)
		return
	}

	for _, m := range migrations[table] {
		if columnExists[m.column] {
			continue
		}
		if _, err := db.Exec(m.ddl); err != nil {
			logger.L.Error("Error adding column", "table", table, "column", m.column, "error", err)
			continue
		}
		logger.L.Info("Added column", "table", table, "column", m.column)
	}
}

func tableColumns(db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			return nil, err
		}
		columnExists[name] = true
	}
	return columnExists, rows.Err()
}
