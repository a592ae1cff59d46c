// Package view derives the visible task list and the task statistics from
// the store's current row set.
//
// The list is a pure function of (rows, Filter); the statistics are a pure
// function of the rows alone and ignore the filter. Pipeline keeps both in
// sync with a store subscription.
package view

import (
	"slices"
	"strings"
	"time"

	"github.com/pdxmph/todo-tui/internal/db"
)

// Filter holds the user-controlled list controls
type Filter struct {
	Query         string
	Priority      *db.Priority // nil shows every priority
	ShowCompleted bool
}

// DefaultFilter shows everything
func DefaultFilter() Filter {
	return Filter{ShowCompleted: true}
}

// Match reports whether a task passes every active control
func (f Filter) Match(t db.Task) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}

	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}

	if !f.ShowCompleted && t.Done {
		return false
	}

	return true
}

// TogglePriority selects p, or clears the filter when p is already selected
func (f Filter) TogglePriority(p *db.Priority) Filter {
	if p == nil || (f.Priority != nil && *f.Priority == *p) {
		f.Priority = nil
		return f
	}
	selected := *p
	f.Priority = &selected
	return f
}

// Apply returns the tasks that match f in display order. rows is not modified.
func Apply(rows []db.Task, f Filter) []db.Task {
	visible := make([]db.Task, 0, len(rows))
	for _, t := range rows {
		if f.Match(t) {
			visible = append(visible, t)
		}
	}
	Sort(visible)
	return visible
}

// Sort orders tasks in place: open before done, then higher priority, then
// earlier due date with undated tasks last. Ties keep their input order.
func Sort(tasks []db.Task) {
	slices.SortStableFunc(tasks, compareTasks)
}

func compareTasks(a, b db.Task) int {
	if a.Done != b.Done {
		if !a.Done {
			return -1
		}
		return 1
	}

	if a.Priority != b.Priority {
		if a.Priority > b.Priority {
			return -1
		}
		return 1
	}

	return compareDue(a.DueDate, b.DueDate)
}

func compareDue(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}
