package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"playerload/internal/runner"
	"playerload/internal/storage"
	"playerload/internal/tui/styles"
)

// HistoryLimit caps how many past runs the table loads.
const HistoryLimit = 200

type HistoryView struct {
	Store *storage.Store
	Table table.Model

	items   []storage.HistoryItem
	loadErr error

	SelectedConfig *runner.Config // Output for parent to grab

	Width  int
	Height int
}

func NewHistoryView(store *storage.Store) HistoryView {
	columns := []table.Column{
		{Title: "Time", Width: 20},
		{Title: "URL", Width: 36},
		{Title: "Players", Width: 8},
		{Title: "OK", Width: 6},
		{Title: "Fail", Width: 6},
		{Title: "Median", Width: 9},
		{Title: "P95", Width: 9},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10), // Will resize
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.ColorBorder).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.ColorAccent)

	s.Selected = s.Selected.
		Foreground(styles.ColorBg).
		Background(styles.ColorAccent).
		Bold(true)

	t.SetStyles(s)

	m := HistoryView{
		Store: store,
		Table: t,
	}
	m.Refresh()
	return m
}

// Refresh reloads the newest runs from the store.
func (m *HistoryView) Refresh() {
	if m.Store == nil {
		return
	}

	m.items, m.loadErr = m.Store.List(HistoryLimit)
	rows := make([]table.Row, len(m.items))
	for i, item := range m.items {
		r := item.Report
		median, p95 := "-", "-"
		if r.SuccessCount > 0 {
			median = fmt.Sprintf("%d ms", r.P50Ms)
			p95 = fmt.Sprintf("%d ms", r.P95Ms)
		}
		players := fmt.Sprintf("%d", r.Concurrency)
		if r.Cancelled {
			players += "*"
		}
		rows[i] = table.Row{
			item.Timestamp.Local().Format("2006-01-02 15:04:05"),
			r.BaseURL,
			players,
			fmt.Sprintf("%d", r.SuccessCount),
			fmt.Sprintf("%d", r.FailCount),
			median,
			p95,
		}
	}
	m.Table.SetRows(rows)
}

func (m HistoryView) Init() tea.Cmd {
	return nil
}

func (m HistoryView) Update(msg tea.Msg) (HistoryView, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Table.SetWidth(msg.Width - 4)
		m.Table.SetHeight(msg.Height - 6) // Reserve space for header

	case tea.KeyMsg:
		if msg.String() == "enter" {
			if item := m.GetSelectedItem(); item != nil {
				cfg := item.Config
				m.SelectedConfig = &cfg // Signal parent
				return m, nil
			}
		}
	}

	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m HistoryView) View() string {
	s := strings.Builder{}
	s.WriteString(styles.Title.Render("📜 Past Runs"))
	s.WriteString("\n\n")

	switch {
	case m.Store == nil:
		s.WriteString(styles.Subtle.Render("History unavailable (see log)."))
	case m.loadErr != nil:
		s.WriteString(styles.Fail.Render("Could not load history: " + m.loadErr.Error()))
	case len(m.Table.Rows()) == 0:
		s.WriteString(styles.Subtle.Render("No history found.\nRun a test to generate data."))
	default:
		s.WriteString(styles.Box.Render(m.Table.View()))
	}
	s.WriteString("\n\n")
	s.WriteString(styles.Subtle.Render("[Enter] Load into form  [Ctrl+P] Export selected  * stopped early"))
	return s.String()
}

func (m HistoryView) GetSelectedItem() *storage.HistoryItem {
	idx := m.Table.Cursor()
	if idx >= 0 && idx < len(m.items) {
		return &m.items[idx]
	}
	return nil
}
