// Package tui is the interactive task browser. It renders the filtered view
// published by a filter pipeline and sends status changes and deletions to
// the task store.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atinyakov/GophTasks/internal/client/api"
	"github.com/atinyakov/GophTasks/internal/models"
)

// TaskStore is the part of the task store the browser mutates.
type TaskStore interface {
	Load(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	UpdateStatus(ctx context.Context, id int64, status models.Status) (models.Task, error)
	Delete(ctx context.Context, id int64) error
}

// Pipeline is the filtered view the browser renders.
type Pipeline interface {
	SetSearch(raw string)
	SetStatus(status models.Status)
	ClearFilters()
	Filter() models.TaskFilter
	View() []models.Task
	Subscribe(fn func([]models.Task)) (unsubscribe func())
}

// ViewMsg carries a freshly published view into the program.
type ViewMsg []models.Task

type errMsg struct{ err error }

type noticeMsg string

// statusCycle is the order tab steps through; "" means any status.
var statusCycle = []models.Status{"", models.StatusOpen, models.StatusInProgress, models.StatusDone}

// Model is the bubbletea model of the browser.
type Model struct {
	ctx      context.Context
	store    TaskStore
	pipeline Pipeline

	search    textinput.Model
	searching bool

	tasks  []models.Task
	cursor int

	notice string
	err    error
}

// New returns a browser over store and pipeline.
func New(ctx context.Context, store TaskStore, pipeline Pipeline) Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search title or description"
	ti.CharLimit = 200

	return Model{
		ctx:      ctx,
		store:    store,
		pipeline: pipeline,
		search:   ti,
		tasks:    pipeline.View(),
	}
}

// Run starts the browser and blocks until the user quits. Views published by
// the pipeline are forwarded to the program while it runs.
func Run(ctx context.Context, store TaskStore, pipeline Pipeline, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(ctx, store, pipeline), opts...)

	unsubscribe := pipeline.Subscribe(func(v []models.Task) { p.Send(ViewMsg(v)) })
	defer unsubscribe()

	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && api.IsUnauthorized(m.err) {
		return m.err
	}
	return nil
}

// Init loads the task list.
func (m Model) Init() tea.Cmd { return m.load() }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ViewMsg:
		m.setTasks(msg)
		return m, nil
	case errMsg:
		m.err = msg.err
		m.notice = ""
		if api.IsUnauthorized(msg.err) {
			return m, tea.Quit
		}
		m.setTasks(m.pipeline.View())
		return m, nil
	case noticeMsg:
		m.err = nil
		m.notice = string(msg)
		m.setTasks(m.pipeline.View())
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.pipeline.SetSearch("")
		m.setTasks(m.pipeline.View())
		return m, nil
	}

	var cmd tea.Cmd
	before := m.search.Value()
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.pipeline.SetSearch(m.search.Value())
		m.setTasks(m.pipeline.View())
	}
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "tab":
		m.pipeline.SetStatus(nextStatus(m.pipeline.Filter().Status))
		m.setTasks(m.pipeline.View())
	case "c":
		m.search.SetValue("")
		m.pipeline.ClearFilters()
		m.setTasks(m.pipeline.View())
	case "r":
		m.notice = "loading..."
		return m, m.load()
	case "o":
		return m, m.setStatus(models.StatusOpen)
	case "i":
		return m, m.setStatus(models.StatusInProgress)
	case "d":
		return m, m.setStatus(models.StatusDone)
	case "x":
		return m, m.delete()
	}
	return m, nil
}

func (m *Model) setTasks(list []models.Task) {
	m.tasks = list
	if m.cursor >= len(list) {
		m.cursor = max(0, len(list)-1)
	}
}

func (m Model) selected() (models.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return models.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m Model) load() tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		list, err := store.Load(ctx, models.TaskFilter{})
		if err != nil {
			return errMsg{err}
		}
		return noticeMsg(fmt.Sprintf("%d tasks", len(list)))
	}
}

func (m Model) setStatus(status models.Status) tea.Cmd {
	task, ok := m.selected()
	if !ok || task.Status == status {
		return nil
	}
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		if _, err := store.UpdateStatus(ctx, task.ID, status); err != nil {
			return errMsg{err}
		}
		return noticeMsg(fmt.Sprintf("#%d is now %s", task.ID, status))
	}
}

func (m Model) delete() tea.Cmd {
	task, ok := m.selected()
	if !ok {
		return nil
	}
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		if err := store.Delete(ctx, task.ID); err != nil {
			return errMsg{err}
		}
		return noticeMsg(fmt.Sprintf("deleted #%d", task.ID))
	}
}

func nextStatus(current models.Status) models.Status {
	for i, s := range statusCycle {
		if s == current {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return ""
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	f := m.pipeline.Filter()
	fmt.Fprintf(&b, "%s   %s %d   status %s\n",
		titleStyle.Render("Tasks"), mutedStyle.Render("shown"), len(m.tasks), StatusLabel(f.Status))

	switch {
	case m.searching:
		b.WriteString(m.search.View())
	case f.Search != "":
		b.WriteString(mutedStyle.Render("/ " + f.Search))
	}
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		b.WriteString(mutedStyle.Render("  no tasks match"))
		b.WriteString("\n")
	}
	for i, t := range m.tasks {
		title := t.Title
		if t.Status == models.StatusDone {
			title = doneTextStyle.Render(title)
		}
		line := fmt.Sprintf("#%-4d %-22s %s  %s", t.ID, StatusLabel(t.Status), title, mutedStyle.Render(t.Description))
		prefix := "  "
		if i == m.cursor {
			prefix = selectedStyle.Render(">") + " "
		}
		b.WriteString(prefix + line + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(errorText(m.err)))
		b.WriteString("\n")
	case m.notice != "":
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("/ search  tab status  c clear  o/i/d set status  x delete  r reload  q quit"))
	return b.String()
}

func errorText(err error) string {
	var verr *api.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}
