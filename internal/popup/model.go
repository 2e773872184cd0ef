package popup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leetdoist/internal/calendar"
	"leetdoist/internal/due"
	"leetdoist/internal/options"
	"leetdoist/internal/problem"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type view int

const (
	viewLoading view = iota
	viewError
	viewContent
)

type focus int

const (
	focusDue focus = iota
	focusDate
	focusSubmit
)

type problemLoadedMsg struct {
	data   problem.Data
	status Status
	ok     bool
}

type taskCreatedMsg struct {
	status Status
	err    error
}

// Model is the bubbletea popup.
type Model struct {
	ctrl    *Controller
	ctx     context.Context
	timeout time.Duration

	view     view
	errText  string
	showHelp bool

	problem   problem.Data
	option    int
	focus     focus
	dateInput textinput.Model
	cal       *calendar.Widget
	cursor    int
	busy      bool
	status    Status
}

// NewModel builds the popup. timeout bounds loading the problem.
func NewModel(ctx context.Context, ctrl *Controller, timeout time.Duration, now func() time.Time) Model {
	ti := textinput.New()
	ti.Placeholder = "YYYY-MM-DD"
	ti.CharLimit = 10
	ti.Width = 12

	return Model{
		ctrl:      ctrl,
		ctx:       ctx,
		timeout:   timeout,
		view:      viewLoading,
		dateInput: ti,
		cal:       calendar.New(now),
	}
}

// Run starts the popup on the terminal.
func Run(ctx context.Context, ctrl *Controller, timeout time.Duration) error {
	_, err := tea.NewProgram(NewModel(ctx, ctrl, timeout, time.Now), tea.WithContext(ctx)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.loadProblem()
}

func (m Model) loadProblem() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
		defer cancel()
		data, status, ok := m.ctrl.LoadProblem(ctx)
		return problemLoadedMsg{data: data, status: status, ok: ok}
	}
}

// submit runs without the load timeout: a task request that reached the
// background must report its own outcome.
func (m Model) submit() tea.Cmd {
	p, option, date := m.problem, m.selectedToken(), m.dateInput.Value()
	return func() tea.Msg {
		status, err := m.ctrl.Submit(m.ctx, p, option, date)
		return taskCreatedMsg{status: status, err: err}
	}
}

func (m Model) selectedToken() string {
	return due.Options[m.option].Token
}

func (m Model) customSelected() bool {
	return m.selectedToken() == due.CustomToken
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case problemLoadedMsg:
		if !msg.ok {
			m.view = viewError
			m.errText = msg.status.Text
			return m, nil
		}
		m.problem = msg.data
		m.resetForm()
		m.view = viewContent
		return m, nil

	case taskCreatedMsg:
		if msg.err != nil {
			// ErrBusy: the in-flight submit will report.
			return m, nil
		}
		m.busy = false
		m.status = msg.status
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.view {
		case viewLoading:
			if msg.String() == "q" || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
		case viewError:
			return m.updateError(msg)
		case viewContent:
			return m.updateContent(msg)
		}
	}
	return m, nil
}

func (m Model) updateError(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		m.view = viewLoading
		m.showHelp = false
		return m, m.loadProblem()
	case "c":
		m.showHelp = true
	case "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) resetForm() {
	m.option = 0
	m.focus = focusDue
	m.dateInput.SetValue("")
	m.dateInput.Blur()
	m.cal.Reset()
	m.cursor = 0
	m.status = Status{}
	m.busy = false
}

func (m Model) updateContent(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	if m.cal.IsOpen() {
		return m.updateCalendar(msg)
	}

	switch msg.String() {
	case "tab", "shift+tab":
		m.moveFocus(msg.String() == "tab")
		return m, nil
	case "esc":
		return m, tea.Quit
	case "ctrl+s":
		return m.startSubmit()
	}

	switch m.focus {
	case focusDue:
		switch msg.String() {
		case "up", "k", "left", "h":
			m.setOption(m.option - 1)
		case "down", "j", "right", "l":
			m.setOption(m.option + 1)
		case "enter":
			return m.startSubmit()
		case "q":
			return m, tea.Quit
		}
	case focusDate:
		if msg.String() == "enter" || msg.String() == "ctrl+o" {
			m.openCalendar()
			return m, nil
		}
		var cmd tea.Cmd
		m.dateInput, cmd = m.dateInput.Update(msg)
		return m, cmd
	case focusSubmit:
		switch msg.String() {
		case "enter", " ":
			return m.startSubmit()
		case "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) setOption(i int) {
	n := len(due.Options)
	m.option = (i + n) % n
	if !m.customSelected() {
		m.cal.Reset()
		m.cursor = 0
	}
}

func (m *Model) moveFocus(forward bool) {
	order := []focus{focusDue}
	if m.customSelected() {
		order = append(order, focusDate)
	}
	order = append(order, focusSubmit)

	idx := 0
	for i, f := range order {
		if f == m.focus {
			idx = i
		}
	}
	if forward {
		idx = (idx + 1) % len(order)
	} else {
		idx = (idx - 1 + len(order)) % len(order)
	}
	m.focus = order[idx]

	if m.focus == focusDate {
		m.dateInput.Focus()
	} else {
		m.dateInput.Blur()
	}
}

func (m *Model) openCalendar() {
	value := m.dateInput.Value()
	m.cal.Open(value)
	m.cursor = 1
	if d, ok := due.ParseDate(value); ok {
		m.cursor = d.Day()
	}
}

func (m Model) updateCalendar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		m.moveCursor(-1)
	case "right", "l":
		m.moveCursor(1)
	case "up", "k":
		m.moveCursor(-7)
	case "down", "j":
		m.moveCursor(7)
	case "[", "pgup":
		m.cal.Prev()
		m.clampCursor()
	case "]", "pgdown":
		m.cal.Next()
		m.clampCursor()
	case "enter", " ":
		value, err := m.cal.Select(m.cursor)
		if err == nil {
			m.dateInput.SetValue(value)
		}
	case "esc", "ctrl+o":
		m.cal.Close()
	case "tab", "shift+tab":
		// Leaving the field is a press outside the widget.
		m.cal.ClickOutside(false, false)
		m.moveFocus(msg.String() == "tab")
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	next := m.cursor + delta
	switch {
	case next < 1:
		m.cal.Prev()
		next += m.cal.DaysInMonth()
	case next > m.cal.DaysInMonth():
		next -= m.cal.DaysInMonth()
		m.cal.Next()
	}
	m.cursor = next
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if days := m.cal.DaysInMonth(); m.cursor > days {
		m.cursor = days
	}
	if m.cursor < 1 {
		m.cursor = 1
	}
}

func (m Model) startSubmit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	if _, err := due.Resolve(m.selectedToken(), m.dateInput.Value()); err != nil {
		m.status = Status{Text: msgPickDue, Tone: options.ToneError}
		return m, nil
	}
	m.busy = true
	m.status = Status{}
	return m, m.submit()
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString("leetdoist\n\n")

	switch m.view {
	case viewLoading:
		sb.WriteString("Reading problem from the page...\n")
	case viewError:
		sb.WriteString(m.errText + "\n\n")
		sb.WriteString("[r] retry  [c] configure  [q] quit\n")
		if m.showHelp {
			sb.WriteString("\nSet your Todoist API token with: leetdoist token set <token>\n")
		}
	case viewContent:
		m.viewContent(&sb)
	}
	return sb.String()
}

func (m Model) viewContent(sb *strings.Builder) {
	sb.WriteString(m.problem.Title + "\n")
	sb.WriteString(m.problem.URL + "\n\n")

	sb.WriteString(fmt.Sprintf("%s Due: < %s >\n", marker(m.focus == focusDue), due.Options[m.option].Label))
	if m.customSelected() {
		sb.WriteString(fmt.Sprintf("%s Date: %s\n", marker(m.focus == focusDate), m.dateInput.View()))
		if m.cal.IsOpen() {
			sb.WriteString("\n" + m.cal.Render(m.dateInput.Value(), m.cursor))
			sb.WriteString("arrows move  [ ] month  enter pick  esc close\n")
		}
	}

	button := "[ Add to Todoist ]"
	if m.busy {
		button = "[ Adding... ]"
	}
	sb.WriteString(fmt.Sprintf("\n%s %s\n", marker(m.focus == focusSubmit), button))

	if m.status.Text != "" {
		sb.WriteString(fmt.Sprintf("\n(%s) %s\n", m.status.Tone, m.status.Text))
	}
	sb.WriteString("\ntab next field  ctrl+s submit  esc quit\n")
}

func marker(focused bool) string {
	if focused {
		return ">"
	}
	return " "
}
