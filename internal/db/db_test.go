package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// setupTestDB opens a fresh database in a temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "tasks.db")
	database, err := Open(dbPath, Options{Logger: DiscardLogger()})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestInsertAndGet(t *testing.T) {
	database := setupTestDB(t)

	due := time.UnixMilli(1700000000000)
	task := NewTask("Buy milk")
	task.Description = "2 liters"
	task.PhoneNumber = "555-0100"
	task.Priority = PriorityHigh
	task.DueDate = &due

	id, err := database.Insert(task)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a non-zero id")
	}

	got, err := database.GetTask(id)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Title != "Buy milk" || got.Description != "2 liters" || got.PhoneNumber != "555-0100" {
		t.Errorf("unexpected text fields: %+v", got)
	}
	if got.Priority != PriorityHigh {
		t.Errorf("expected priority High, got %v", got.Priority)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("expected due date %v, got %v", due, got.DueDate)
	}
	if got.Done || got.CompletedAt != nil {
		t.Errorf("expected an open task, got done=%v completedAt=%v", got.Done, got.CompletedAt)
	}
	if got.Color != DefaultColor {
		t.Errorf("expected color %#x, got %#x", DefaultColor, got.Color)
	}
	if got.CreatedAt.UnixMilli() != task.CreatedAt.UnixMilli() {
		t.Errorf("expected createdAt %v, got %v", task.CreatedAt, got.CreatedAt)
	}
}

func TestInsertSetsCreatedAtWhenMissing(t *testing.T) {
	now := time.UnixMilli(1650000000000)
	database, err := Open(filepath.Join(t.TempDir(), "tasks.db"), Options{
		Logger: DiscardLogger(),
		Now:    func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer database.Close()

	id, err := database.Insert(Task{Title: "no timestamp", Priority: PriorityLow})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := database.GetTask(id)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("expected createdAt %v, got %v", now, got.CreatedAt)
	}
}

func TestUpdateReplacesRow(t *testing.T) {
	database := setupTestDB(t)

	id, err := database.Insert(NewTask("draft"))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	task, err := database.GetTask(id)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	completed := time.UnixMilli(1700000100000)
	task.Title = "final"
	task.Done = true
	task.CompletedAt = &completed
	task.Priority = PriorityLow

	if err := database.Update(*task); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := database.GetTask(id)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Title != "final" || !got.Done || got.Priority != PriorityLow {
		t.Errorf("update not applied: %+v", got)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(completed) {
		t.Errorf("expected completedAt %v, got %v", completed, got.CompletedAt)
	}
}

func TestUpdateMissingTask(t *testing.T) {
	database := setupTestDB(t)

	task := NewTask("ghost")
	task.ID = 42
	err := database.Update(task)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetMissingTask(t *testing.T) {
	database := setupTestDB(t)

	_, err := database.GetTask(7)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	database := setupTestDB(t)

	id, err := database.Insert(NewTask("temporary"))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := database.Delete(id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := database.GetTask(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected task to be gone, got %v", err)
	}

	// Deleting again is a no-op
	if err := database.Delete(id); err != nil {
		t.Errorf("second Delete returned error: %v", err)
	}
}

func TestIDsAreNotReused(t *testing.T) {
	database := setupTestDB(t)

	first, err := database.Insert(NewTask("one"))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	second, err := database.Insert(NewTask("two"))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := database.Delete(second); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	third, err := database.Insert(NewTask("three"))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if third == second || third == first {
		t.Errorf("id %d was reused (first=%d, second=%d)", third, first, second)
	}
}

func TestUnknownPriorityDecodesToMedium(t *testing.T) {
	database := setupTestDB(t)

	_, err := database.conn.Exec(`INSERT INTO tasks (title, priority, createdAt) VALUES ('odd', 9, 0)`)
	if err != nil {
		t.Fatalf("raw insert failed: %v", err)
	}

	tasks, err := database.ListTasks()
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Priority != PriorityMedium {
		t.Errorf("expected Medium, got %v", tasks[0].Priority)
	}
}

func TestListTasksOrderedByID(t *testing.T) {
	database := setupTestDB(t)

	for _, title := range []string{"a", "b", "c"} {
		if _, err := database.Insert(NewTask(title)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	tasks, err := database.ListTasks()
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	for i := 1; i < len(tasks); i++ {
		if tasks[i-1].ID >= tasks[i].ID {
			t.Errorf("tasks not ordered by id: %d before %d", tasks[i-1].ID, tasks[i].ID)
		}
	}
}

func TestSubscribeEmitsFullRowSet(t *testing.T) {
	database := setupTestDB(t)

	if _, err := database.Insert(NewTask("existing")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	var emissions [][]Task
	cancel := database.Subscribe(func(tasks []Task) {
		emissions = append(emissions, tasks)
	})

	if len(emissions) != 1 || len(emissions[0]) != 1 {
		t.Fatalf("expected an initial emission with 1 task, got %v", emissions)
	}

	id, err := database.Insert(NewTask("new"))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	task, _ := database.GetTask(id)
	task.Done = true
	if err := database.Update(*task); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := database.Delete(id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	wantSizes := []int{1, 2, 2, 1}
	if len(emissions) != len(wantSizes) {
		t.Fatalf("expected %d emissions, got %d", len(wantSizes), len(emissions))
	}
	for i, want := range wantSizes {
		if len(emissions[i]) != want {
			t.Errorf("emission %d: expected %d tasks, got %d", i, want, len(emissions[i]))
		}
	}
	if !emissions[2][1].Done {
		t.Error("expected the update emission to carry the new done state")
	}

	cancel()
	if _, err := database.Insert(NewTask("after cancel")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if len(emissions) != len(wantSizes) {
		t.Errorf("expected no emission after cancel, got %d total", len(emissions))
	}
}

func TestNoEmissionForFailedOrNoopWrites(t *testing.T) {
	database := setupTestDB(t)

	count := 0
	database.Subscribe(func([]Task) { count++ })

	missing := NewTask("missing")
	missing.ID = 99
	_ = database.Update(missing)
	_ = database.Delete(99)

	if count != 1 {
		t.Errorf("expected only the initial emission, got %d", count)
	}
}

func TestPriorityLookup(t *testing.T) {
	tests := []struct {
		value int
		want  Priority
		label string
	}{
		{0, PriorityLow, "Low"},
		{1, PriorityMedium, "Medium"},
		{2, PriorityHigh, "High"},
		{-1, PriorityMedium, "Medium"},
		{3, PriorityMedium, "Medium"},
	}

	for _, tt := range tests {
		got := PriorityFromValue(tt.value)
		if got != tt.want {
			t.Errorf("PriorityFromValue(%d) = %v, want %v", tt.value, got, tt.want)
		}
		if got.String() != tt.label {
			t.Errorf("PriorityFromValue(%d).String() = %q, want %q", tt.value, got.String(), tt.label)
		}
	}

	if PriorityHigh.Info().Color != 0xFFF44336 {
		t.Errorf("unexpected high priority color %#x", PriorityHigh.Info().Color)
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{"low", PriorityLow, false},
		{"HIGH", PriorityHigh, false},
		{" Medium ", PriorityMedium, false},
		{"2", PriorityHigh, false},
		{"0", PriorityLow, false},
		{"urgent", PriorityMedium, true},
		{"7", PriorityMedium, true},
	}

	for _, tt := range tests {
		got, err := ParsePriority(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePriority(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePriority(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"no due date", Task{}, false},
		{"past due", Task{DueDate: &past}, true},
		{"future due", Task{DueDate: &future}, false},
		{"past due but done", Task{DueDate: &past, Done: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.IsOverdue(now); got != tt.want {
				t.Errorf("IsOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateFixturesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fixtures.db")
	if err := CreateFixturesDatabase(dbPath); err != nil {
		t.Fatalf("CreateFixturesDatabase failed: %v", err)
	}

	database, err := Open(dbPath, Options{Logger: DiscardLogger()})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer database.Close()

	tasks, err := database.ListTasks()
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != len(Fixtures(time.Now())) {
		t.Errorf("expected %d fixture tasks, got %d", len(Fixtures(time.Now())), len(tasks))
	}
	for _, task := range tasks {
		if task.Done != (task.CompletedAt != nil) {
			t.Errorf("fixture %q breaks done/completedAt pairing", task.Title)
		}
	}

	if err := CreateFixturesDatabase(dbPath); err == nil {
		t.Error("expected an error when the database already exists")
	}
}
