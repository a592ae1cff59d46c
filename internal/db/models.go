package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DefaultColor is the ARGB display color given to tasks that don't pick one
const DefaultColor uint32 = 0xFF6200EE

// Priority is the urgency level of a task
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

// PriorityInfo holds the display metadata attached to a priority level
type PriorityInfo struct {
	Label string
	Color uint32 // ARGB
	Hex   string // terminal color for the same hue
}

var priorityTable = map[Priority]PriorityInfo{
	PriorityLow:    {Label: "Low", Color: 0xFF4CAF50, Hex: "#4CAF50"},
	PriorityMedium: {Label: "Medium", Color: 0xFFFF9800, Hex: "#FF9800"},
	PriorityHigh:   {Label: "High", Color: 0xFFF44336, Hex: "#F44336"},
}

// Priorities returns every priority level from lowest to highest
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// PriorityFromValue decodes a stored priority. Unknown values fall back to medium.
func PriorityFromValue(v int) Priority {
	p := Priority(v)
	if _, ok := priorityTable[p]; ok {
		return p
	}
	return PriorityMedium
}

// ParsePriority reads a priority label ("high") or its stored value ("2")
func ParsePriority(s string) (Priority, error) {
	s = strings.TrimSpace(s)
	for _, p := range Priorities() {
		if strings.EqualFold(s, p.String()) || s == fmt.Sprint(int(p)) {
			return p, nil
		}
	}
	return PriorityMedium, fmt.Errorf("unknown priority %q (want low, medium or high)", s)
}

// Info returns the display metadata for the priority
func (p Priority) Info() PriorityInfo {
	if info, ok := priorityTable[p]; ok {
		return info
	}
	return priorityTable[PriorityMedium]
}

// String returns the display label
func (p Priority) String() string {
	return p.Info().Label
}

// Task represents a single to-do item
type Task struct {
	ID          int64
	Title       string
	Description string
	PhoneNumber string
	Priority    Priority
	DueDate     *time.Time
	Done        bool
	CreatedAt   time.Time
	CompletedAt *time.Time
	Color       uint32
}

// NewTask returns a task with the default field values
func NewTask(title string) Task {
	return Task{
		Title:     title,
		Priority:  PriorityMedium,
		CreatedAt: time.Now(),
		Color:     DefaultColor,
	}
}

// IsOverdue reports whether an open task's due date has passed
func (t Task) IsOverdue(now time.Time) bool {
	return !t.Done && t.DueDate != nil && t.DueDate.Before(now)
}

// HasPhoneNumber reports whether the task can trigger an SMS reminder
func (t Task) HasPhoneNumber() bool {
	return t.PhoneNumber != ""
}

// toMillis converts an optional time to a nullable millisecond column value
func toMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{Valid: false}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

// fromMillis converts a nullable millisecond column value back to a time
func fromMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64)
	return &t
}

// TimePtr returns a pointer to t
func TimePtr(t time.Time) *time.Time {
	return &t
}
