package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrUnsupportedVersion is returned when the database was written by a newer schema
var ErrUnsupportedVersion = errors.New("unsupported schema version")

// migration upgrades the tasks table by one schema version
type migration struct {
	to    int
	name  string
	apply func(tx *sql.Tx, now time.Time) error
}

var migrations = []migration{
	{to: 2, name: "widen tasks to the full task shape", apply: migrateV1ToV2},
	{to: 3, name: "drop the category column", apply: migrateV2ToV3},
}

type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

// RunMigrations applies any pending schema migrations. Each step runs in
// its own transaction together with the version bump, so a failed step
// leaves the previous table in place.
func (db *DB) RunMigrations() error {
	version, err := detectVersion(db.conn)
	if err != nil {
		return err
	}

	if version > SchemaVersion {
		return fmt.Errorf("%w: %d (newest known is %d)", ErrUnsupportedVersion, version, SchemaVersion)
	}

	if version == 0 {
		return db.inTx("creating schema", func(tx *sql.Tx) error {
			return createSchema(tx)
		})
	}

	for _, m := range migrations {
		if version >= m.to {
			continue
		}

		m := m
		db.logger.Printf("Running migration %d -> %d: %s...", m.to-1, m.to, m.name)
		err := db.inTx(fmt.Sprintf("migrating to version %d", m.to), func(tx *sql.Tx) error {
			if err := m.apply(tx, db.now()); err != nil {
				return err
			}
			return setUserVersion(tx, m.to)
		})
		if err != nil {
			return err
		}
		version = m.to
		db.logger.Println("Migration completed successfully")
	}

	// Tables from before version tracking already have the current shape
	// but still read user_version 0.
	current, err := userVersion(db.conn)
	if err != nil {
		return err
	}
	if current != SchemaVersion {
		return db.inTx("recording schema version", func(tx *sql.Tx) error {
			return setUserVersion(tx, SchemaVersion)
		})
	}

	return nil
}

// SchemaVersion reports the schema version of the open database
func (db *DB) SchemaVersion() (int, error) {
	return detectVersion(db.conn)
}

func (db *DB) inTx(what string, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: committing: %w", what, err)
	}
	return nil
}

// detectVersion reads user_version, falling back to the table's columns for
// databases that predate version tracking. 0 means there is no tasks table.
func detectVersion(q querier) (int, error) {
	version, err := userVersion(q)
	if err != nil {
		return 0, err
	}
	if version != 0 {
		return version, nil
	}

	var tables int
	err = q.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'tasks'`).Scan(&tables)
	if err != nil {
		return 0, fmt.Errorf("checking for tasks table: %w", err)
	}
	if tables == 0 {
		return 0, nil
	}

	hasCategory, err := hasColumn(q, "category")
	if err != nil {
		return 0, err
	}
	if hasCategory {
		return 2, nil
	}

	hasDescription, err := hasColumn(q, "description")
	if err != nil {
		return 0, err
	}
	if hasDescription {
		return 3, nil
	}

	return 1, nil
}

func hasColumn(q querier, name string) (bool, error) {
	var count int
	err := q.QueryRow(`
		SELECT COUNT(*)
		FROM pragma_table_info('tasks')
		WHERE name = ?
	`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking for %s column: %w", name, err)
	}
	return count > 0, nil
}

func userVersion(q querier) (int, error) {
	var version int
	if err := q.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

func setUserVersion(tx *sql.Tx, version int) error {
	// PRAGMA doesn't take bind parameters
	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, version)); err != nil {
		return fmt.Errorf("setting schema version: %w", err)
	}
	return nil
}

// swapTasksTable replaces tasks with tasks_new. The AUTOINCREMENT counter
// moves with the rows so ids deleted before the migration stay retired.
func swapTasksTable(tx *sql.Tx) error {
	if err := carrySequence(tx); err != nil {
		return err
	}
	if _, err := tx.Exec(`DROP TABLE tasks`); err != nil {
		return fmt.Errorf("dropping old tasks table: %w", err)
	}
	if _, err := tx.Exec(`ALTER TABLE tasks_new RENAME TO tasks`); err != nil {
		return fmt.Errorf("renaming tasks_new: %w", err)
	}
	return nil
}

// carrySequence sets the tasks_new counter to the larger of the old tasks
// counter and the highest copied id. tasks_new is AUTOINCREMENT, so
// sqlite_sequence exists by now.
func carrySequence(tx *sql.Tx) error {
	var seq int64
	err := tx.QueryRow(`
		SELECT MAX(
			COALESCE((SELECT MAX(seq) FROM sqlite_sequence WHERE name = 'tasks'), 0),
			COALESCE((SELECT MAX(id) FROM tasks_new), 0)
		)
	`).Scan(&seq)
	if err != nil {
		return fmt.Errorf("reading id sequence: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM sqlite_sequence WHERE name = 'tasks_new'`); err != nil {
		return fmt.Errorf("resetting id sequence: %w", err)
	}
	if seq == 0 {
		return nil
	}
	if _, err := tx.Exec(`INSERT INTO sqlite_sequence (name, seq) VALUES ('tasks_new', ?)`, seq); err != nil {
		return fmt.Errorf("writing id sequence: %w", err)
	}
	return nil
}

func migrateV1ToV2(tx *sql.Tx, now time.Time) error {
	if _, err := tx.Exec(tasksTableSQL(tasksTableV2, "tasks_new")); err != nil {
		return fmt.Errorf("creating tasks_new: %w", err)
	}

	_, err := tx.Exec(`
		INSERT INTO tasks_new (id, title, phoneNumber, done, createdAt)
		SELECT id, title, phoneNumber, done, ?
		FROM tasks
	`, now.UnixMilli())
	if err != nil {
		return fmt.Errorf("copying tasks: %w", err)
	}

	return swapTasksTable(tx)
}

func migrateV2ToV3(tx *sql.Tx, now time.Time) error {
	if _, err := tx.Exec(tasksTableSQL(tasksTableV3, "tasks_new")); err != nil {
		return fmt.Errorf("creating tasks_new: %w", err)
	}

	_, err := tx.Exec(`
		INSERT INTO tasks_new (id, title, description, phoneNumber, priority, dueDate, done, createdAt, completedAt, color)
		SELECT id, title, description, phoneNumber, priority, dueDate, done, createdAt, completedAt, color
		FROM tasks
	`)
	if err != nil {
		return fmt.Errorf("copying tasks: %w", err)
	}

	return swapTasksTable(tx)
}
