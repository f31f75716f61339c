// Package ui provides optional terminal interfaces.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/dayplan/internal/plan"
)

// dayLayout renders a date the way the day headers show it.
const dayLayout = "Monday, January 02, 2006"

// RunTUI starts a read-only viewer on the given planner file. The file
// is reloaded every second, so edits made from a shell session in
// another terminal show up while the viewer is open.
func RunTUI(ctx context.Context, dataPath string) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	return runProgram(ctx, newTUIModel(dataPath))
}

func runProgram(ctx context.Context, model *tuiModel) error {
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type tuiModel struct {
	dataPath     string
	day          time.Time
	weekView     bool
	hideDone     bool
	showHelp     bool
	loadErr      error
	data         *tuiData
	tickInterval time.Duration
}

// tuiData is a point-in-time snapshot of the planner file, with each
// day's tasks already sorted for display.
type tuiData struct {
	days map[string][]plan.Task
}

type tickMsg time.Time

func newTUIModel(dataPath string) *tuiModel {
	return &tuiModel{
		dataPath:     dataPath,
		day:          time.Now(),
		tickInterval: time.Second,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.tickInterval)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
			return m, nil
		case "left", "p":
			m.day = m.day.AddDate(0, 0, -m.step())
			return m, nil
		case "right", "n":
			m.day = m.day.AddDate(0, 0, m.step())
			return m, nil
		case "t":
			m.day = time.Now()
			return m, nil
		case "w":
			m.weekView = !m.weekView
			return m, nil
		case "c":
			m.hideDone = !m.hideDone
			return m, nil
		case "h", "?":
			m.showHelp = !m.showHelp
			return m, nil
		}
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tickInterval)
	}

	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	if m.loadErr != nil {
		b.WriteString("Error loading planner file:\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}
	if m.data == nil {
		b.WriteString("Loading...\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	if m.hideDone {
		b.WriteString("Hiding completed tasks (c to show)\n\n")
	}

	m.writeOverview(&b)
	for _, day := range m.visibleDays() {
		m.writeDay(&b, day)
	}
	writeFooter(&b, m.tickInterval)
	return b.String()
}

// step is how far the arrow keys move: a day in day view, a week in
// week view.
func (m *tuiModel) step() int {
	if m.weekView {
		return 7
	}
	return 1
}

// visibleDays lists the dates the current view shows. Week view always
// starts on Monday, whichever day is focused.
func (m *tuiModel) visibleDays() []time.Time {
	if !m.weekView {
		return []time.Time{m.day}
	}
	start := plan.WeekStart(m.day)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *tuiModel) refresh() {
	store := plan.New(m.dataPath)
	if err := store.Load(); err != nil {
		m.loadErr = err
		m.data = nil
		return
	}
	m.loadErr = nil
	m.data = buildTUIData(store)
}

func buildTUIData(store *plan.Store) *tuiData {
	data := &tuiData{days: make(map[string][]plan.Task)}
	for _, key := range store.Dates() {
		date, err := plan.ParseDate(key)
		if err != nil {
			continue
		}
		tasks := store.Tasks(date)
		plan.SortByTime(tasks)
		day := make([]plan.Task, 0, len(tasks))
		for _, task := range tasks {
			day = append(day, *task)
		}
		data.days[key] = day
	}
	return data
}

func (m *tuiModel) writeOverview(b *strings.Builder) {
	var open, done int
	for _, day := range m.visibleDays() {
		for _, task := range m.data.days[plan.DateKey(day)] {
			if task.Completed {
				done++
			} else {
				open++
			}
		}
	}
	b.WriteString(fmt.Sprintf("Open: %d  Done: %d\n\n", open, done))
}

func (m *tuiModel) writeDay(b *strings.Builder, day time.Time) {
	b.WriteString(day.Format(dayLayout) + "\n\n")

	shown := 0
	for _, task := range m.data.days[plan.DateKey(day)] {
		if m.hideDone && task.Completed {
			continue
		}
		b.WriteString(formatTask(task))
		b.WriteString("\n")
		shown++
	}
	if shown == 0 {
		b.WriteString("  No tasks scheduled.\n")
	}
	b.WriteString("\n")
}

func writeTitle(b *strings.Builder) {
	title := "Daily Planner"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  r, F5        Reload the planner file\n")
	b.WriteString("  left, p      Previous day (previous week in week view)\n")
	b.WriteString("  right, n     Next day (next week in week view)\n")
	b.WriteString("  t            Jump to today\n")
	b.WriteString("  w            Toggle week view\n")
	b.WriteString("  c            Hide or show completed tasks\n")
	b.WriteString("  h, ?         Toggle this help screen\n\n")
}

func writeFooter(b *strings.Builder, interval time.Duration) {
	b.WriteString(fmt.Sprintf("Press h for help | q to quit | Refreshing every %s\n", interval))
}

func formatTask(t plan.Task) string {
	mark := " "
	if t.Completed {
		mark = "✓"
	}
	if t.Scheduled() {
		return fmt.Sprintf("  [%s] %s - %s (ID: %d)", mark, t.Time, t.Description, t.ID)
	}
	return fmt.Sprintf("  [%s] %s (ID: %d)", mark, t.Description, t.ID)
}

// IsTTY returns true if stdout is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, _ := f.Stat()
	return (info.Mode() & os.ModeCharDevice) != 0
}
