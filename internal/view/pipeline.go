package view

import (
	"sync"
	"time"

	"github.com/pdxmph/todo-tui/internal/db"
)

// Source delivers the full task list now and after every change
type Source interface {
	Subscribe(fn func([]db.Task)) (cancel func())
}

// Snapshot is the pipeline output after one recomputation
type Snapshot struct {
	Tasks  []db.Task
	Stats  Stats
	Filter Filter
}

// Pipeline recomputes the visible list and statistics whenever the source
// emits or a filter control changes. Observers are called synchronously, in
// registration order, after each recomputation.
type Pipeline struct {
	mu     sync.Mutex
	now    func() time.Time
	rows   []db.Task
	filter Filter
	out    Snapshot

	nextObserver int
	observers    []observer

	cancel func()
}

type observer struct {
	id int
	fn func(Snapshot)
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithClock sets the clock used for overdue counts
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithFilter sets the starting filter
func WithFilter(f Filter) Option {
	return func(p *Pipeline) { p.filter = f }
}

// New subscribes a pipeline to src
func New(src Source, opts ...Option) *Pipeline {
	p := &Pipeline{
		now:    time.Now,
		filter: DefaultFilter(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.out = Snapshot{Tasks: []db.Task{}, Filter: p.filter}
	p.cancel = src.Subscribe(p.onRows)
	return p
}

// Close stops listening to the source
func (p *Pipeline) Close() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *Pipeline) onRows(rows []db.Task) {
	p.mu.Lock()
	p.rows = rows
	p.mu.Unlock()
	p.recompute()
}

func (p *Pipeline) update(fn func(f Filter) Filter) {
	p.mu.Lock()
	p.filter = fn(p.filter)
	p.mu.Unlock()
	p.recompute()
}

func (p *Pipeline) recompute() {
	p.mu.Lock()
	snap := Snapshot{
		Tasks:  Apply(p.rows, p.filter),
		Stats:  Compute(p.rows, p.now()),
		Filter: p.filter,
	}
	p.out = snap
	observers := make([]observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.Unlock()

	for _, o := range observers {
		o.fn(snap)
	}
}

// Refresh recomputes without new rows, e.g. when overdue counts may have
// moved with the clock
func (p *Pipeline) Refresh() {
	p.recompute()
}

// SetSearchQuery replaces the free-text query
func (p *Pipeline) SetSearchQuery(q string) {
	p.update(func(f Filter) Filter {
		f.Query = q
		return f
	})
}

// SetPriorityFilter selects a priority; selecting the active one clears it
func (p *Pipeline) SetPriorityFilter(pr *db.Priority) {
	p.update(func(f Filter) Filter {
		return f.TogglePriority(pr)
	})
}

// ClearPriorityFilter shows every priority
func (p *Pipeline) ClearPriorityFilter() {
	p.update(func(f Filter) Filter {
		f.Priority = nil
		return f
	})
}

// SetShowCompleted controls whether done tasks are listed
func (p *Pipeline) SetShowCompleted(show bool) {
	p.update(func(f Filter) Filter {
		f.ShowCompleted = show
		return f
	})
}

// Snapshot returns the latest outputs
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out
}

// Tasks returns the visible list
func (p *Pipeline) Tasks() []db.Task {
	return p.Snapshot().Tasks
}

// Stats returns the statistics over every task
func (p *Pipeline) Stats() Stats {
	return p.Snapshot().Stats
}

// SearchQuery returns the current query
func (p *Pipeline) SearchQuery() string {
	return p.Snapshot().Filter.Query
}

// PriorityFilter returns the selected priority, or nil
func (p *Pipeline) PriorityFilter() *db.Priority {
	pr := p.Snapshot().Filter.Priority
	if pr == nil {
		return nil
	}
	selected := *pr
	return &selected
}

// ShowCompleted reports whether done tasks are listed
func (p *Pipeline) ShowCompleted() bool {
	return p.Snapshot().Filter.ShowCompleted
}

// OnChange registers fn to receive every new snapshot. It is called once
// immediately with the current one.
func (p *Pipeline) OnChange(fn func(Snapshot)) (cancel func()) {
	p.mu.Lock()
	p.nextObserver++
	id := p.nextObserver
	p.observers = append(p.observers, observer{id: id, fn: fn})
	snap := p.out
	p.mu.Unlock()

	fn(snap)

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, o := range p.observers {
			if o.id == id {
				p.observers = append(p.observers[:i], p.observers[i+1:]...)
				return
			}
		}
	}
}
