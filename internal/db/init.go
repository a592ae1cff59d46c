package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SchemaVersion is the current on-disk layout version
const SchemaVersion = 3

// tasksTableV3 is the current task table shape. The table name is a
// format verb so migrations can build the replacement table beside the
// live one.
const tasksTableV3 = `
CREATE TABLE %s (
    id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    phoneNumber TEXT NOT NULL DEFAULT '',
    priority INTEGER NOT NULL DEFAULT 1,
    dueDate INTEGER,
    done INTEGER NOT NULL DEFAULT 0,
    createdAt INTEGER NOT NULL DEFAULT 0,
    completedAt INTEGER,
    color INTEGER NOT NULL DEFAULT %d
)`

// tasksTableV2 carries the short-lived category column
const tasksTableV2 = `
CREATE TABLE %s (
    id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    phoneNumber TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT 'Personal',
    priority INTEGER NOT NULL DEFAULT 1,
    dueDate INTEGER,
    done INTEGER NOT NULL DEFAULT 0,
    createdAt INTEGER NOT NULL DEFAULT 0,
    completedAt INTEGER,
    color INTEGER NOT NULL DEFAULT %d
)`

func tasksTableSQL(shape, name string) string {
	return fmt.Sprintf(shape, name, colorValue(DefaultColor))
}

// colorValue stores ARGB colors as signed 32-bit integers, matching
// databases written by earlier versions of the app.
func colorValue(c uint32) int64 {
	return int64(int32(c))
}

// createSchema creates the current schema inside tx
func createSchema(tx *sql.Tx) error {
	if _, err := tx.Exec(tasksTableSQL(tasksTableV3, "tasks")); err != nil {
		return fmt.Errorf("creating tasks table: %w", err)
	}
	return setUserVersion(tx, SchemaVersion)
}

// Initialize creates a new database with the complete schema
func Initialize(dbPath string) error {
	// Check if database already exists
	if _, err := os.Stat(dbPath); err == nil {
		return fmt.Errorf("database already exists at %s", dbPath)
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	defer conn.Close()

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := createSchema(tx); err != nil {
		return err
	}

	return tx.Commit()
}
