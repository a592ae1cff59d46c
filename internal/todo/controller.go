// Package todo applies user mutations to the task store and tracks the
// single in-progress edit session.
package todo

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdxmph/todo-tui/internal/db"
	"github.com/pdxmph/todo-tui/internal/view"
)

// Store is the write side of the task store
type Store interface {
	Insert(task db.Task) (int64, error)
	Update(task db.Task) error
	Delete(id int64) error
}

// Messenger sends a text message. *sms.Manager implements it.
type Messenger interface {
	Send(number, body string) error
}

// State is the edit session state
type State int

const (
	Idle State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "idle"
}

// Draft is the staged input buffer
type Draft struct {
	Title       string
	Description string
	PhoneNumber string
	Priority    db.Priority
	DueDate     *time.Time
}

// EmptyDraft returns a cleared buffer
func EmptyDraft() Draft {
	return Draft{Priority: db.PriorityMedium}
}

// DraftFrom stages every editable field of t
func DraftFrom(t db.Task) Draft {
	d := Draft{
		Title:       t.Title,
		Description: t.Description,
		PhoneNumber: t.PhoneNumber,
		Priority:    t.Priority,
	}
	if t.DueDate != nil {
		d.DueDate = db.TimePtr(*t.DueDate)
	}
	return d
}

// Notice is a transient message for the user
type Notice struct {
	Message string
	OK      bool
}

// Controller is the mutation API. It is not safe for concurrent use; the
// TUI and CLI drive it from a single goroutine.
type Controller struct {
	store     Store
	view      *view.Pipeline
	messenger Messenger
	now       func() time.Time

	draft   Draft
	editing *db.Task
}

// Option configures a Controller
type Option func(*Controller)

// WithClock sets the clock used for createdAt and completedAt
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithMessenger sets the SMS backend used by SendReminder
func WithMessenger(m Messenger) Option {
	return func(c *Controller) { c.messenger = m }
}

// New creates a controller writing to store and reading through pipeline
func New(store Store, pipeline *view.Pipeline, opts ...Option) *Controller {
	c := &Controller{
		store: store,
		view:  pipeline,
		now:   time.Now,
		draft: EmptyDraft(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Draft returns a copy of the staged input
func (c *Controller) Draft() Draft {
	return c.draft
}

// SetTitle stages the title
func (c *Controller) SetTitle(title string) { c.draft.Title = title }

// SetDescription stages the description
func (c *Controller) SetDescription(description string) { c.draft.Description = description }

// SetPhoneNumber stages the number SendReminder texts
func (c *Controller) SetPhoneNumber(number string) { c.draft.PhoneNumber = number }

// SetPriority stages the priority
func (c *Controller) SetPriority(p db.Priority) { c.draft.Priority = p }

// SetDueDate stages a due date; nil clears it
func (c *Controller) SetDueDate(due *time.Time) {
	if due == nil {
		c.draft.DueDate = nil
		return
	}
	c.draft.DueDate = db.TimePtr(*due)
}

// SetDraft replaces the whole staged buffer
func (c *Controller) SetDraft(d Draft) {
	c.draft = d
	c.SetDueDate(d.DueDate)
}

// State reports whether an edit session is active
func (c *Controller) State() State {
	if c.editing != nil {
		return Editing
	}
	return Idle
}

// Editing returns the task being edited, if any
func (c *Controller) Editing() (db.Task, bool) {
	if c.editing == nil {
		return db.Task{}, false
	}
	return *c.editing, true
}

// StartEditing stages task and makes it the edit target, replacing any
// session already in progress
func (c *Controller) StartEditing(task db.Task) {
	c.editing = &task
	c.draft = DraftFrom(task)
}

// CancelEditing discards the staged input, ends the session and clears the
// search query
func (c *Controller) CancelEditing() {
	c.reset()
}

// ClearDraft discards the staged input and ends any session. Unlike
// CancelEditing it leaves the search query alone.
func (c *Controller) ClearDraft() {
	c.draft = EmptyDraft()
	c.editing = nil
}

func (c *Controller) reset() {
	c.ClearDraft()
	c.view.SetSearchQuery("")
}

// Add commits the draft. With a blank title it does nothing and returns
// false. In an edit session it replaces the edited task's fields, keeping
// its id, completion state, creation time and color; otherwise it inserts a
// new task. On success the draft is cleared and the session ends. On a
// store error both are kept so the user can retry.
func (c *Controller) Add() (bool, error) {
	title := strings.TrimSpace(c.draft.Title)
	if title == "" {
		return false, nil
	}

	if c.editing != nil {
		t := *c.editing
		c.applyDraft(&t, title)
		if err := c.store.Update(t); err != nil {
			return false, fmt.Errorf("updating task %d: %w", t.ID, err)
		}
	} else {
		t := db.NewTask(title)
		c.applyDraft(&t, title)
		t.CreatedAt = c.now()
		if _, err := c.store.Insert(t); err != nil {
			return false, fmt.Errorf("adding task: %w", err)
		}
	}

	c.reset()
	return true, nil
}

func (c *Controller) applyDraft(t *db.Task, title string) {
	t.Title = title
	t.Description = c.draft.Description
	t.PhoneNumber = c.draft.PhoneNumber
	t.Priority = c.draft.Priority
	t.DueDate = nil
	if c.draft.DueDate != nil {
		t.DueDate = db.TimePtr(*c.draft.DueDate)
	}
}

// ToggleDone flips task's completion. completedAt is set to now when it
// becomes done and cleared when it is reopened.
func (c *Controller) ToggleDone(task db.Task) error {
	task.Done = !task.Done
	if task.Done {
		task.CompletedAt = db.TimePtr(c.now())
	} else {
		task.CompletedAt = nil
	}

	if err := c.store.Update(task); err != nil {
		return fmt.Errorf("toggling task %d: %w", task.ID, err)
	}
	return nil
}

// Delete removes task. Deleting the task under edit ends the session.
func (c *Controller) Delete(task db.Task) error {
	if err := c.store.Delete(task.ID); err != nil {
		return fmt.Errorf("deleting task %d: %w", task.ID, err)
	}
	if c.editing != nil && c.editing.ID == task.ID {
		c.reset()
	}
	return nil
}

// SendReminder texts the task title to its phone number. The result is
// only reported; task state is never changed.
func (c *Controller) SendReminder(task db.Task) Notice {
	if !task.HasPhoneNumber() {
		return Notice{Message: "No phone number set"}
	}
	if c.messenger == nil {
		return Notice{Message: "Failed to send SMS: no SMS backend configured"}
	}
	if err := c.messenger.Send(task.PhoneNumber, task.Title); err != nil {
		return Notice{Message: fmt.Sprintf("Failed to send SMS: %v", err)}
	}
	return Notice{Message: "SMS sent successfully", OK: true}
}

// View returns the derivation pipeline the controller reads through
func (c *Controller) View() *view.Pipeline {
	return c.view
}

// SetSearchQuery filters the visible list by title and description
func (c *Controller) SetSearchQuery(q string) { c.view.SetSearchQuery(q) }

// SetPriorityFilter selects a priority; selecting the active one clears it
func (c *Controller) SetPriorityFilter(p *db.Priority) { c.view.SetPriorityFilter(p) }

// ClearPriorityFilter shows every priority
func (c *Controller) ClearPriorityFilter() { c.view.ClearPriorityFilter() }

// SetShowCompleted controls whether done tasks are listed
func (c *Controller) SetShowCompleted(show bool) { c.view.SetShowCompleted(show) }

// Tasks returns the visible list
func (c *Controller) Tasks() []db.Task {
	return c.view.Tasks()
}

// Stats returns statistics over every task
func (c *Controller) Stats() view.Stats {
	return c.view.Stats()
}
