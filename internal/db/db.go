package db

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when no task has the requested id
var ErrNotFound = errors.New("task not found")

// Options configures how the database is opened
type Options struct {
	// Logger receives migration progress. If nil, log.Default() is used.
	Logger *log.Logger

	// Now is the clock used for migration backfills. If nil, time.Now is used.
	Now func() time.Time
}

// DB wraps the database connection
type DB struct {
	conn   *sql.DB
	logger *log.Logger
	now    func() time.Time

	// mu serializes writes together with the emission that follows them
	mu sync.Mutex

	subMu   sync.Mutex
	nextSub int
	subs    []subscriber
}

type subscriber struct {
	id int
	fn func([]Task)
}

// DiscardLogger is a logger that drops everything
func DiscardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// Open opens the database at dbPath, creating it if needed, and runs any
// pending migrations. A failed migration is fatal.
func Open(dbPath string, opts Options) (*DB, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps :memory: databases alive and writes in order
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, logger: opts.Logger, now: opts.Now}

	if err := db.RunMigrations(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

const taskColumns = `id, title, description, phoneNumber, priority, dueDate, done, createdAt, completedAt, color`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var (
		t           Task
		priority    int
		dueDate     sql.NullInt64
		createdAt   int64
		completedAt sql.NullInt64
		color       int64
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.PhoneNumber, &priority,
		&dueDate, &t.Done, &createdAt, &completedAt, &color,
	)
	if err != nil {
		return Task{}, err
	}

	t.Priority = PriorityFromValue(priority)
	t.DueDate = fromMillis(dueDate)
	t.CreatedAt = time.UnixMilli(createdAt)
	t.CompletedAt = fromMillis(completedAt)
	t.Color = uint32(color)

	return t, nil
}

// ListTasks returns every task ordered by id
func (db *DB) ListTasks() ([]Task, error) {
	rows, err := db.conn.Query(`SELECT ` + taskColumns + ` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// GetTask retrieves a single task by ID
func (db *DB) GetTask(id int64) (*Task, error) {
	row := db.conn.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying task %d: %w", id, err)
	}
	return &t, nil
}

// Insert creates a new task and returns its id. task.ID is ignored.
func (db *DB) Insert(task Task) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if task.CreatedAt.IsZero() {
		task.CreatedAt = db.now()
	}

	query := `
		INSERT INTO tasks (
			title, description, phoneNumber, priority,
			dueDate, done, createdAt, completedAt, color
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.conn.Exec(query,
		task.Title,
		task.Description,
		task.PhoneNumber,
		int(task.Priority),
		toMillis(task.DueDate),
		task.Done,
		task.CreatedAt.UnixMilli(),
		toMillis(task.CompletedAt),
		colorValue(task.Color),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting insert ID: %w", err)
	}

	db.emit()
	return id, nil
}

// Update replaces every field of the task with the matching id
func (db *DB) Update(task Task) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	query := `
		UPDATE tasks
		SET title = ?,
		    description = ?,
		    phoneNumber = ?,
		    priority = ?,
		    dueDate = ?,
		    done = ?,
		    createdAt = ?,
		    completedAt = ?,
		    color = ?
		WHERE id = ?
	`

	result, err := db.conn.Exec(query,
		task.Title,
		task.Description,
		task.PhoneNumber,
		int(task.Priority),
		toMillis(task.DueDate),
		task.Done,
		task.CreatedAt.UnixMilli(),
		toMillis(task.CompletedAt),
		colorValue(task.Color),
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("updating task %d: %w", task.ID, ErrNotFound)
	}

	db.emit()
	return nil
}

// Delete removes the task with the given id. Deleting a missing task is a no-op.
func (db *DB) Delete(id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	result, err := db.conn.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n > 0 {
		db.emit()
	}
	return nil
}

// Subscribe registers fn to receive the full task list now and after every
// mutation. Calls are synchronous and in mutation order; fn must not write
// to the store. The returned func cancels the subscription.
func (db *DB) Subscribe(fn func([]Task)) func() {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.subMu.Lock()
	db.nextSub++
	id := db.nextSub
	db.subs = append(db.subs, subscriber{id: id, fn: fn})
	db.subMu.Unlock()

	if tasks, err := db.ListTasks(); err != nil {
		db.logger.Printf("loading tasks for subscriber: %v", err)
	} else {
		fn(tasks)
	}

	return func() {
		db.subMu.Lock()
		defer db.subMu.Unlock()
		for i, s := range db.subs {
			if s.id == id {
				db.subs = append(db.subs[:i], db.subs[i+1:]...)
				return
			}
		}
	}
}

// emit sends the current row set to every subscriber. Callers hold db.mu.
func (db *DB) emit() {
	db.subMu.Lock()
	subs := make([]subscriber, len(db.subs))
	copy(subs, db.subs)
	db.subMu.Unlock()

	if len(subs) == 0 {
		return
	}

	tasks, err := db.ListTasks()
	if err != nil {
		db.logger.Printf("reloading tasks after write: %v", err)
		return
	}

	for _, s := range subs {
		// Each subscriber gets its own slice so one can't reorder another's view
		own := make([]Task, len(tasks))
		copy(own, tasks)
		s.fn(own)
	}
}
