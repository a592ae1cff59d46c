package view

import (
	"testing"
	"time"

	"github.com/pdxmph/todo-tui/internal/db"
)

func priorityPtr(p db.Priority) *db.Priority {
	return &p
}

func task(id int64, title string, p db.Priority) db.Task {
	return db.Task{ID: id, Title: title, Priority: p, Color: db.DefaultColor}
}

func ids(tasks []db.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMatch(t *testing.T) {
	groceries := task(1, "Buy Groceries", db.PriorityLow)
	groceries.Description = "milk and EGGS"
	done := task(2, "Water plants", db.PriorityHigh)
	done.Done = true

	tests := []struct {
		name   string
		filter Filter
		task   db.Task
		want   bool
	}{
		{"empty query matches", DefaultFilter(), groceries, true},
		{"title case-insensitive", Filter{Query: "groceries", ShowCompleted: true}, groceries, true},
		{"description case-insensitive", Filter{Query: "eggs", ShowCompleted: true}, groceries, true},
		{"query miss", Filter{Query: "bread", ShowCompleted: true}, groceries, false},
		{"priority hit", Filter{Priority: priorityPtr(db.PriorityLow), ShowCompleted: true}, groceries, true},
		{"priority miss", Filter{Priority: priorityPtr(db.PriorityHigh), ShowCompleted: true}, groceries, false},
		{"completed shown", DefaultFilter(), done, true},
		{"completed hidden", Filter{}, done, false},
		{"open shown when completed hidden", Filter{}, groceries, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(tt.task); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTogglePriority(t *testing.T) {
	f := DefaultFilter()

	f = f.TogglePriority(priorityPtr(db.PriorityHigh))
	if f.Priority == nil || *f.Priority != db.PriorityHigh {
		t.Fatalf("expected High selected, got %v", f.Priority)
	}

	f = f.TogglePriority(priorityPtr(db.PriorityLow))
	if f.Priority == nil || *f.Priority != db.PriorityLow {
		t.Fatalf("expected Low to replace High, got %v", f.Priority)
	}

	f = f.TogglePriority(priorityPtr(db.PriorityLow))
	if f.Priority != nil {
		t.Errorf("expected re-selecting Low to clear the filter, got %v", *f.Priority)
	}

	f = f.TogglePriority(priorityPtr(db.PriorityMedium)).TogglePriority(nil)
	if f.Priority != nil {
		t.Errorf("expected nil to clear the filter, got %v", *f.Priority)
	}
}

func TestSortOrder(t *testing.T) {
	day := 24 * time.Hour
	base := time.UnixMilli(1700000000000)
	early := base
	late := base.Add(day)

	rows := []db.Task{
		func() db.Task { t := task(1, "done high", db.PriorityHigh); t.Done = true; return t }(),
		task(2, "low undated", db.PriorityLow),
		func() db.Task { t := task(3, "medium late", db.PriorityMedium); t.DueDate = &late; return t }(),
		task(4, "medium undated", db.PriorityMedium),
		func() db.Task { t := task(5, "medium early", db.PriorityMedium); t.DueDate = &early; return t }(),
		task(6, "high undated", db.PriorityHigh),
		func() db.Task { t := task(7, "done low", db.PriorityLow); t.Done = true; return t }(),
	}

	got := ids(Apply(rows, DefaultFilter()))
	want := []int64{6, 5, 3, 4, 2, 1, 7}
	if !equalIDs(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}

	// Apply must not reorder its input
	if !equalIDs(ids(rows), []int64{1, 2, 3, 4, 5, 6, 7}) {
		t.Errorf("input was reordered: %v", ids(rows))
	}
}

func TestSortIsStable(t *testing.T) {
	due := time.UnixMilli(1700000000000)
	var rows []db.Task
	for i := int64(1); i <= 6; i++ {
		tk := task(i, "same", db.PriorityMedium)
		if i%2 == 0 {
			tk.DueDate = &due
		}
		rows = append(rows, tk)
	}

	got := ids(Apply(rows, DefaultFilter()))
	want := []int64{2, 4, 6, 1, 3, 5}
	if !equalIDs(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	rows := []db.Task{
		task(1, "alpha", db.PriorityLow),
		task(2, "beta", db.PriorityHigh),
		task(3, "alphabet", db.PriorityHigh),
	}
	f := Filter{Query: "alp", ShowCompleted: true}

	first := Apply(rows, f)
	second := Apply(first, f)
	if !equalIDs(ids(first), ids(second)) {
		t.Errorf("second pass changed the list: %v vs %v", ids(first), ids(second))
	}
	if !equalIDs(ids(first), []int64{3, 1}) {
		t.Errorf("unexpected list %v", ids(first))
	}
}

func TestCompute(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	rows := []db.Task{
		func() db.Task { t := task(1, "overdue high", db.PriorityHigh); t.DueDate = &past; return t }(),
		func() db.Task { t := task(2, "future", db.PriorityLow); t.DueDate = &future; return t }(),
		func() db.Task {
			t := task(3, "done overdue high", db.PriorityHigh)
			t.DueDate = &past
			t.Done = true
			return t
		}(),
		task(4, "undated medium", db.PriorityMedium),
	}

	got := Compute(rows, now)
	want := Stats{Total: 4, Completed: 1, Pending: 3, Overdue: 1, HighPriority: 1}
	if got != want {
		t.Errorf("Compute() = %+v, want %+v", got, want)
	}
	if got.Total != got.Completed+got.Pending {
		t.Error("total != completed + pending")
	}
	if got.CompletionRate() != 25 {
		t.Errorf("CompletionRate() = %d, want 25", got.CompletionRate())
	}
}

func TestCompletionRateEmpty(t *testing.T) {
	if rate := (Stats{}).CompletionRate(); rate != 0 {
		t.Errorf("CompletionRate() = %d, want 0", rate)
	}
}
