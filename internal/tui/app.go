package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/pdxmph/todo-tui/internal/db"
	"github.com/pdxmph/todo-tui/internal/todo"
)

// DueDateLayout is the form input layout for due dates
const DueDateLayout = "2006-01-02"

// Form field indices
const (
	FieldTitle = iota
	FieldDescription
	FieldPhone
	FieldDueDate
	FieldPriority
	FieldCount // Total number of fields
)

// Styles
var (
	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230"))

	overdueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Strikethrough(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
)

type tickMsg time.Time

// Model represents the main application state
type Model struct {
	c          *todo.Controller
	dateFormat string
	now        func() time.Time

	selected int
	width    int
	height   int
	notice   string

	// Search mode
	searchMode bool
	search     textinput.Model

	// Add/edit form
	formMode     bool
	formField    int
	formInputs   [FieldCount]textinput.Model
	formPriority db.Priority
	formErr      string

	// Delete confirmation mode
	deleteConfirmMode bool
	deleteTask        db.Task

	statsMode bool
}

// New creates a new application model over c. Due dates are shown with
// dateFormat.
func New(c *todo.Controller, dateFormat string) Model {
	// Setup search input
	ti := textinput.New()
	ti.Placeholder = "Search tasks..."
	ti.Width = 30
	ti.CharLimit = 100
	ti.Prompt = "> "
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230"))
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	m := Model{
		c:          c,
		dateFormat: dateFormat,
		now:        time.Now,
		search:     ti,
	}

	// Setup form inputs
	for i := range m.formInputs {
		in := textinput.New()
		in.Width = 40
		in.CharLimit = 200
		switch i {
		case FieldTitle:
			in.Placeholder = "Title"
		case FieldDescription:
			in.Placeholder = "Description"
		case FieldPhone:
			in.Placeholder = "Phone number for SMS reminder"
		case FieldDueDate:
			in.Placeholder = DueDateLayout
			in.CharLimit = len(DueDateLayout)
		}
		m.formInputs[i] = in
	}

	return m
}

// Init starts the clock that keeps overdue counts current
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.width > 0 {
			m.search.Width = m.width/3 - 6
		}
		return m, nil

	case tickMsg:
		m.c.View().Refresh()
		return m, tick()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		switch {
		case m.statsMode:
			// Any key closes the statistics overlay
			m.statsMode = false
			return m, nil
		case m.deleteConfirmMode:
			return m.updateDeleteConfirm(msg)
		case m.formMode:
			return m.updateForm(msg)
		case m.searchMode:
			return m.updateSearch(msg)
		}
		return m.updateNormal(msg)
	}

	return m, nil
}

func (m Model) updateDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if err := m.c.Delete(m.deleteTask); err != nil {
			m.notice = fmt.Sprintf("Delete failed: %v", err)
		} else {
			m.notice = fmt.Sprintf("Deleted %q", m.deleteTask.Title)
		}
		m.selected = m.ensureValidSelection()
	}
	// Any other key cancels
	m.deleteConfirmMode = false
	m.deleteTask = db.Task{}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchMode = false
		m.search.Reset()
		m.c.SetSearchQuery("")
		m.selected = m.ensureValidSelection()
		return m, nil
	case "enter":
		m.searchMode = false
		m.search.Blur()
		m.selected = m.ensureValidSelection()
		return m, nil
	case "up":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down":
		if m.selected < len(m.c.Tasks())-1 {
			m.selected++
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.c.SetSearchQuery(m.search.Value())
	m.selected = m.ensureValidSelection()
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.c.CancelEditing()
		m.search.Reset()
		m.closeForm()
		return m, nil

	case "enter":
		return m.submitForm()

	case "tab", "down":
		m.focusField(m.formField + 1)
		return m, textinput.Blink

	case "shift+tab", "up":
		m.focusField(m.formField - 1)
		return m, textinput.Blink

	case "left", "right":
		if m.formField == FieldPriority {
			step := 1
			if msg.String() == "left" {
				step = -1
			}
			n := len(db.Priorities())
			m.formPriority = db.PriorityFromValue((int(m.formPriority) + step + n) % n)
			return m, nil
		}
	}

	// Update the active text input
	if m.formField != FieldPriority {
		var cmd tea.Cmd
		m.formInputs[m.formField], cmd = m.formInputs[m.formField].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	var due *time.Time
	if v := strings.TrimSpace(m.formInputs[FieldDueDate].Value()); v != "" {
		t, err := time.ParseInLocation(DueDateLayout, v, time.Local)
		if err != nil {
			m.formErr = fmt.Sprintf("Due date must look like %s", DueDateLayout)
			return m, nil
		}
		due = &t
	}

	m.c.SetDraft(todo.Draft{
		Title:       m.formInputs[FieldTitle].Value(),
		Description: m.formInputs[FieldDescription].Value(),
		PhoneNumber: strings.TrimSpace(m.formInputs[FieldPhone].Value()),
		Priority:    m.formPriority,
		DueDate:     due,
	})

	editing := m.c.State() == todo.Editing
	added, err := m.c.Add()
	if err != nil {
		m.formErr = err.Error()
		return m, nil
	}
	if !added {
		m.formErr = "Title is required"
		return m, nil
	}

	if editing {
		m.notice = "Task updated"
	} else {
		m.notice = "Task added"
	}
	// Add resets the search query
	m.search.Reset()
	m.closeForm()
	m.selected = m.ensureValidSelection()
	return m, nil
}

func (m *Model) openForm() tea.Cmd {
	d := m.c.Draft()
	m.formMode = true
	m.formErr = ""
	m.formInputs[FieldTitle].SetValue(d.Title)
	m.formInputs[FieldDescription].SetValue(d.Description)
	m.formInputs[FieldPhone].SetValue(d.PhoneNumber)
	m.formInputs[FieldDueDate].SetValue("")
	if d.DueDate != nil {
		m.formInputs[FieldDueDate].SetValue(d.DueDate.Format(DueDateLayout))
	}
	m.formPriority = d.Priority

	if m.width > 0 {
		for i := range m.formInputs {
			m.formInputs[i].Width = min(m.width-30, 50)
		}
	}

	m.formField = -1
	m.focusField(FieldTitle)
	return textinput.Blink
}

func (m *Model) closeForm() {
	m.formMode = false
	m.formErr = ""
	for i := range m.formInputs {
		m.formInputs[i].Blur()
		m.formInputs[i].Reset()
	}
}

func (m *Model) focusField(field int) {
	if field < 0 || field >= FieldCount {
		return
	}
	if m.formField >= 0 && m.formField != FieldPriority {
		m.formInputs[m.formField].Blur()
	}
	m.formField = field
	if field != FieldPriority {
		m.formInputs[field].Focus()
	}
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	tasks := m.c.Tasks()

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "j", "down":
		if m.selected < len(tasks)-1 {
			m.selected++
		}

	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}

	case "/":
		m.searchMode = true
		m.search.SetValue(m.c.View().SearchQuery())
		m.search.Focus()
		return m, textinput.Blink

	case "esc":
		// Clear search and return to full list
		if m.c.View().SearchQuery() != "" {
			m.search.Reset()
			m.c.SetSearchQuery("")
			m.selected = m.ensureValidSelection()
		}

	case "p":
		next := nextPriorityFilter(m.c.View().PriorityFilter())
		if next == nil {
			m.c.ClearPriorityFilter()
		} else {
			m.c.SetPriorityFilter(next)
		}
		m.selected = m.ensureValidSelection()

	case "1", "2", "3":
		// Selecting the active priority again clears it
		p := db.PriorityFromValue(int(msg.String()[0] - '1'))
		m.c.SetPriorityFilter(&p)
		m.selected = m.ensureValidSelection()

	case "h":
		m.c.SetShowCompleted(!m.c.View().ShowCompleted())
		m.selected = m.ensureValidSelection()

	case "a":
		m.c.ClearDraft()
		return m, m.openForm()

	case "e":
		if task, ok := m.current(tasks); ok {
			m.c.StartEditing(task)
			return m, m.openForm()
		}

	case " ", "x":
		if task, ok := m.current(tasks); ok {
			if err := m.c.ToggleDone(task); err != nil {
				m.notice = fmt.Sprintf("Update failed: %v", err)
			}
			m.selected = m.ensureValidSelection()
		}

	case "d":
		if task, ok := m.current(tasks); ok {
			m.deleteConfirmMode = true
			m.deleteTask = task
		}

	case "m":
		if task, ok := m.current(tasks); ok {
			m.notice = m.c.SendReminder(task).Message
		}

	case "s":
		m.statsMode = true
	}

	return m, nil
}

// nextPriorityFilter cycles none, High, Medium, Low, none
func nextPriorityFilter(cur *db.Priority) *db.Priority {
	var next db.Priority
	switch {
	case cur == nil:
		next = db.PriorityHigh
	case *cur == db.PriorityHigh:
		next = db.PriorityMedium
	case *cur == db.PriorityMedium:
		next = db.PriorityLow
	default:
		return nil
	}
	return &next
}

func (m Model) current(tasks []db.Task) (db.Task, bool) {
	if len(tasks) == 0 || m.selected < 0 || m.selected >= len(tasks) {
		return db.Task{}, false
	}
	return tasks[m.selected], true
}

// ensureValidSelection ensures the current selection is within bounds
func (m Model) ensureValidSelection() int {
	tasks := m.c.Tasks()
	if len(tasks) == 0 {
		return 0
	}
	if m.selected >= len(tasks) {
		return len(tasks) - 1
	}
	if m.selected < 0 {
		return 0
	}
	return m.selected
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.formMode {
		return m.renderForm()
	}
	if m.deleteConfirmMode {
		return m.renderDeleteConfirmation()
	}
	if m.statsMode {
		return m.renderStats()
	}

	// Calculate pane widths
	listWidth := m.width / 3
	detailWidth := m.width - listWidth - 3 // account for borders

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		borderStyle.Width(listWidth).Height(m.height-3).Render(m.renderList(listWidth, m.height-3)),
		borderStyle.Width(detailWidth).Height(m.height-3).Render(m.renderDetail(detailWidth)),
	)

	return lipgloss.JoinVertical(lipgloss.Left, content, m.renderHelp())
}

func priorityStyle(p db.Priority) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(p.Info().Hex))
}

// renderList renders the task list
func (m Model) renderList(width, height int) string {
	var lines []string

	if m.searchMode {
		lines = append(lines, m.search.View(), "")
		height -= 2
	}

	tasks := m.c.Tasks()
	now := m.now()

	// Calculate visible range
	visibleHeight := height - 2 // account for header
	startIdx := 0
	if m.selected >= visibleHeight {
		startIdx = m.selected - visibleHeight + 1
	}

	header := fmt.Sprintf("Tasks (%d)", len(tasks))
	var indicators []string
	if q := m.c.View().SearchQuery(); q != "" && !m.searchMode {
		indicators = append(indicators, fmt.Sprintf("search:%q", q))
	}
	if p := m.c.View().PriorityFilter(); p != nil {
		indicators = append(indicators, "priority:"+p.String())
	}
	if !m.c.View().ShowCompleted() {
		indicators = append(indicators, "open only")
	}
	if len(indicators) > 0 {
		header += " [" + strings.Join(indicators, ", ") + "]"
	}

	lines = append(lines, header, strings.Repeat("─", max(width-2, 0)))

	for i := startIdx; i < len(tasks) && i < startIdx+visibleHeight; i++ {
		t := tasks[i]

		check := "[ ] "
		if t.Done {
			check = "[x] "
		}
		title := truncate.StringWithTail(t.Title, uint(max(width-10, 1)), "…")

		if i == m.selected {
			lines = append(lines, selectedStyle.Render(check+"● "+title))
			continue
		}

		line := check + priorityStyle(t.Priority).Render("●") + " "
		switch {
		case t.Done:
			line += doneStyle.Render(title)
		case t.IsOverdue(now):
			line += overdueStyle.Render(title + " !")
		default:
			line += title
		}
		lines = append(lines, line)
	}

	if len(tasks) == 0 {
		lines = append(lines, labelStyle.Render("No tasks. Press a to add one."))
	}

	return strings.Join(lines, "\n")
}

// renderDetail renders the selected task
func (m Model) renderDetail(width int) string {
	t, ok := m.current(m.c.Tasks())
	if !ok {
		return "No task selected"
	}

	var lines []string
	lines = append(lines, t.Title, strings.Repeat("─", max(width-2, 0)), "")

	lines = append(lines, labelStyle.Render("Priority:  ")+priorityStyle(t.Priority).Render(t.Priority.String()))
	status := "Open"
	if t.Done {
		status = "Done"
		if t.CompletedAt != nil {
			status += " (" + t.CompletedAt.Format(m.dateFormat) + ")"
		}
	}
	lines = append(lines, labelStyle.Render("Status:    ")+status)

	if t.DueDate != nil {
		due := t.DueDate.Format(m.dateFormat)
		if t.IsOverdue(m.now()) {
			due = overdueStyle.Render(due + " (overdue)")
		}
		lines = append(lines, labelStyle.Render("Due:       ")+due)
	}
	if t.HasPhoneNumber() {
		lines = append(lines, labelStyle.Render("Phone:     ")+t.PhoneNumber)
	}
	lines = append(lines, labelStyle.Render("Created:   ")+t.CreatedAt.Format(m.dateFormat))

	if t.Description != "" {
		lines = append(lines, "", wordwrap.String(t.Description, max(width-4, 10)))
	}

	return strings.Join(lines, "\n")
}

// renderHelp renders the help line
func (m Model) renderHelp() string {
	if m.notice != "" {
		return " " + noticeStyle.Render(m.notice)
	}

	if m.searchMode {
		return " Type to search • ↑/↓: navigate • Enter: confirm • Esc: clear"
	}

	help := " j/k: navigate • /: search • a: add • e: edit • space: done • d: delete • m: sms"
	help += " • p/1/2/3: priority • h: completed • s: stats"
	if m.c.View().SearchQuery() != "" {
		help += " • Esc: clear search"
	}
	help += " • q: quit"

	return help
}

func (m Model) overlay(box string) string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(box)
}

// renderForm renders the add/edit overlay
func (m Model) renderForm() string {
	var lines []string
	if t, ok := m.c.Editing(); ok {
		lines = append(lines, fmt.Sprintf("Edit Task: %s", t.Title))
	} else {
		lines = append(lines, "New Task")
	}
	lines = append(lines, strings.Repeat("─", 40), "")

	fieldLabels := []string{
		"Title:        ",
		"Description:  ",
		"Phone:        ",
		"Due date:     ",
		"Priority:     ",
	}

	for i, label := range fieldLabels {
		var fieldView string
		if i == FieldPriority {
			name := priorityStyle(m.formPriority).Render(m.formPriority.String())
			if i == m.formField {
				fieldView = label + "< " + name + " >"
			} else {
				fieldView = label + "  " + name
			}
		} else if i == m.formField {
			fieldView = label + m.formInputs[i].View()
		} else {
			value := m.formInputs[i].Value()
			if value == "" {
				value = labelStyle.Render(m.formInputs[i].Placeholder)
			}
			fieldView = label + value
		}
		lines = append(lines, fieldView, "")
	}

	if m.formErr != "" {
		lines = append(lines, overdueStyle.Render(m.formErr), "")
	}
	lines = append(lines, "Tab/↓: next field • Shift+Tab/↑: previous • ←/→: priority • Enter: save • Esc: cancel")

	box := borderStyle.
		Padding(1).
		Width(70).
		Render(strings.Join(lines, "\n"))
	return m.overlay(box)
}

// renderDeleteConfirmation renders the delete confirmation prompt
func (m Model) renderDeleteConfirmation() string {
	width := 60
	height := 7

	prompt := fmt.Sprintf("Delete task '%s'? (y/n)", truncate.StringWithTail(m.deleteTask.Title, 40, "…"))

	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-4).
		Align(lipgloss.Center, lipgloss.Center).
		Render(prompt)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(width).
		Height(height).
		Render(content)

	return m.overlay(box)
}

// renderStats renders the statistics overlay
func (m Model) renderStats() string {
	s := m.c.Stats()

	lines := []string{
		"Statistics",
		strings.Repeat("─", 30),
		"",
		fmt.Sprintf("Total tasks:     %d", s.Total),
		fmt.Sprintf("Completed:       %d", s.Completed),
		fmt.Sprintf("Pending:         %d", s.Pending),
		overdueStyle.Render(fmt.Sprintf("Overdue:         %d", s.Overdue)),
		priorityStyle(db.PriorityHigh).Render(fmt.Sprintf("High priority:   %d", s.HighPriority)),
		"",
		fmt.Sprintf("Completion rate: %d%%", s.CompletionRate()),
		"",
		labelStyle.Render("Press any key to close"),
	}

	box := borderStyle.
		Padding(1).
		Render(strings.Join(lines, "\n"))
	return m.overlay(box)
}
