package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open connects to the SQLite database at DB_PATH (default
// "./data/laskutus.db"), creating the parent directory as needed. WAL mode
// and foreign keys are switched on, and a busy timeout covers the retried
// document-number transactions racing each other for the write lock.
func Open() (*sql.DB, error) {
	path := os.Getenv("DB_PATH")
	if path == "" {
		path = "./data/laskutus.db"
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating directory for %s: %w", path, err)
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("pinging %s: %w", path, err)
	}

	slog.Info("database connected", "path", path)
	return database, nil
}
