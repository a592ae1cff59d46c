package view

import (
	"time"

	"github.com/pdxmph/todo-tui/internal/db"
)

// Stats are aggregate counts over every task, regardless of the filter
type Stats struct {
	Total        int
	Completed    int
	Pending      int
	Overdue      int
	HighPriority int // open high-priority tasks
}

// Compute aggregates rows as of now
func Compute(rows []db.Task, now time.Time) Stats {
	s := Stats{Total: len(rows)}
	for _, t := range rows {
		if t.Done {
			s.Completed++
			continue
		}
		s.Pending++
		if t.IsOverdue(now) {
			s.Overdue++
		}
		if t.Priority == db.PriorityHigh {
			s.HighPriority++
		}
	}
	return s
}

// CompletionRate returns the completed share as a whole percentage
func (s Stats) CompletionRate() int {
	if s.Total == 0 {
		return 0
	}
	return s.Completed * 100 / s.Total
}
