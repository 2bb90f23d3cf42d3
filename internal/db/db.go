package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mutecomm/go-sqlcipher/v4"
)

type DB struct {
	*sql.DB
}

// Open opens an encrypted SQLite database with the given key.
// dbPath is the full path to the database file.
func Open(dbPath, key string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if key == "" {
		return nil, fmt.Errorf("database key cannot be empty")
	}

	// The driver issues PRAGMA key = "<key>", so embedded quotes are doubled
	pragmaKey := strings.ReplaceAll(key, `"`, `""`)
	connStr := fmt.Sprintf("%s?_pragma_key=%s", dbPath, url.QueryEscape(pragmaKey))

	sqlDB, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer keeps collection replacement strictly ordered
	sqlDB.SetMaxOpenConns(1)

	// Reading the schema decrypts the first page; a wrong key fails here
	var tables int
	if err := sqlDB.QueryRow("SELECT count(*) FROM sqlite_master").Scan(&tables); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to read database (wrong key?): %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA journal_mode = WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &DB{DB: sqlDB}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
