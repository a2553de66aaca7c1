package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"playerload/internal/export"
	"playerload/internal/runner"
	"playerload/internal/stats"
	"playerload/internal/storage"
	"playerload/internal/tui/styles"
	"playerload/internal/tui/views"
)

type ClearStatusMsg struct{}

func clearStatusCmd() tea.Cmd {
	return tea.Tick(3*time.Second, func(_ time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

// View Enum
type ViewID int

const (
	ViewRunner ViewID = iota
	ViewDashboard
	ViewHistory
)

type StatsMsg runner.StatsSnapshot

// RunFinishedMsg carries the result of a RunOnce started with Ctrl+R.
type RunFinishedMsg struct {
	Config runner.Config
	Report *stats.RunReport
	Err    error
	At     time.Time
}

type Model struct {
	Runner  *runner.Runner
	Store   *storage.Store
	Updates runner.StatsUpdateChan
	Logger  *zap.Logger

	// Core State
	RunActive  bool
	LastReport *stats.RunReport

	// Layout
	Width  int
	Height int

	CurrentView ViewID
	MenuItems   []string

	RunnerView  views.RunnerView
	DashView    views.DashboardView
	HistoryView views.HistoryView

	// Feedback
	StatusMsg string
}

// NewModel builds the TUI around r, which must have been created with
// updates as its update channel. store may be nil.
func NewModel(r *runner.Runner, updates runner.StatsUpdateChan, store *storage.Store, initial runner.Config, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	return Model{
		Runner:      r,
		Updates:     updates,
		Store:       store,
		Logger:      log,
		CurrentView: ViewRunner,
		MenuItems:   []string{"[1] New Run", "[2] Dashboard", "[3] History"},
		RunnerView:  views.NewRunnerView(initial),
		HistoryView: views.NewHistoryView(store),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.RunnerView.Init(),
		waitForUpdate(m.Updates),
	)
}

func waitForUpdate(sub runner.StatsUpdateChan) tea.Cmd {
	return func() tea.Msg {
		return StatsMsg(<-sub)
	}
}

func runCmd(r *runner.Runner, cfg runner.Config) tea.Cmd {
	return func() tea.Msg {
		report, err := r.RunOnce(context.Background(), cfg)
		return RunFinishedMsg{Config: cfg, Report: report, Err: err, At: time.Now()}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case ClearStatusMsg:
		m.StatusMsg = ""
		return m, nil

	case tea.KeyMsg:
		// 1. GLOBAL NAVIGATION & CONTROL (Prioritized)
		switch msg.String() {
		case "ctrl+c", "ctrl+q":
			m.Runner.Cancel()
			return m, tea.Quit

		case "ctrl+d":
			m.CurrentView = ViewDashboard
			return m, nil

		case "ctrl+h":
			m.HistoryView.Refresh()
			m.CurrentView = ViewHistory
			return m, nil

		case "ctrl+right":
			m.CurrentView++
			if m.CurrentView > ViewHistory {
				m.CurrentView = ViewRunner
			}
			return m, nil
		case "ctrl+left":
			m.CurrentView--
			if m.CurrentView < ViewRunner {
				m.CurrentView = ViewHistory
			}
			return m, nil

		// 2. ACTIONS
		case "ctrl+r":
			if m.CurrentView == ViewRunner {
				cmd := m.startRun()
				return m, cmd
			}
			return m, nil

		case "ctrl+s":
			if m.RunActive {
				m.Runner.Cancel()
				m.StatusMsg = "Stopping: waiting for players to be collected..."
				return m, clearStatusCmd()
			}
			return m, nil

		case "ctrl+p":
			if m.CurrentView == ViewDashboard || m.CurrentView == ViewHistory {
				m.exportCurrent()
				return m, clearStatusCmd()
			}
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		contentHeight := m.Height - 7

		m.RunnerView.Width = m.Width
		m.RunnerView.Height = contentHeight

		m.DashView.Width = m.Width
		m.DashView.Height = contentHeight

		m.HistoryView.Width = m.Width
		m.HistoryView.Height = contentHeight

		m.DashView, _ = m.DashView.Update(msg)
		m.HistoryView, _ = m.HistoryView.Update(msg)

	case StatsMsg:
		var c tea.Cmd
		m.DashView, c = m.DashView.Update(runner.StatsSnapshot(msg))
		cmds = append(cmds, c, waitForUpdate(m.Updates))
		return m, tea.Batch(cmds...)

	case RunFinishedMsg:
		cmd := m.finishRun(msg)
		return m, cmd
	}

	// Forward everything else (bubbles need their frame and blink messages).
	var defaultCmd tea.Cmd
	switch m.CurrentView {
	case ViewRunner:
		m.RunnerView, defaultCmd = m.RunnerView.Update(msg)
	case ViewDashboard:
		m.DashView, defaultCmd = m.DashView.Update(msg)
	case ViewHistory:
		m.HistoryView, defaultCmd = m.HistoryView.Update(msg)
		if m.HistoryView.SelectedConfig != nil {
			m.RunnerView = views.NewRunnerView(*m.HistoryView.SelectedConfig)
			m.RunnerView.Width, m.RunnerView.Height = m.Width, m.Height-7
			m.HistoryView.SelectedConfig = nil
			m.CurrentView = ViewRunner
			m.StatusMsg = "Loaded past run into the form."
			cmds = append(cmds, clearStatusCmd())
		}
	}
	cmds = append(cmds, defaultCmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) startRun() tea.Cmd {
	if m.RunActive {
		m.StatusMsg = runner.ErrRunInProgress.Error()
		return clearStatusCmd()
	}

	cfg, err := m.RunnerView.GetConfig()
	if err == nil {
		var params runner.TestParameters
		if params, err = cfg.Validate(); err == nil {
			m.DashView = views.NewDashboardView(params, m.Width, m.Height-7)
		}
	}
	if err != nil {
		m.StatusMsg = fmt.Sprintf("Cannot start: %v", err)
		return clearStatusCmd()
	}

	m.RunActive = true
	m.LastReport = nil
	m.CurrentView = ViewDashboard
	return runCmd(m.Runner, cfg)
}

func (m *Model) finishRun(msg RunFinishedMsg) tea.Cmd {
	m.RunActive = false
	if msg.Err != nil {
		if errors.Is(msg.Err, runner.ErrRunInProgress) {
			m.StatusMsg = msg.Err.Error()
		} else {
			m.StatusMsg = fmt.Sprintf("Run failed: %v", msg.Err)
		}
		return clearStatusCmd()
	}

	m.LastReport = msg.Report
	var cmd tea.Cmd
	m.DashView, cmd = m.DashView.Update(msg.Report)

	m.StatusMsg = fmt.Sprintf("Run finished: %d succeeded, %d failed.", msg.Report.SuccessCount, msg.Report.FailCount)
	m.saveHistory(msg)
	return tea.Batch(cmd, clearStatusCmd())
}

func (m *Model) saveHistory(msg RunFinishedMsg) {
	if m.Store == nil {
		return
	}
	item := storage.NewHistoryItem(msg.Config, *msg.Report, msg.At)
	if err := m.Store.Save(item); err != nil {
		m.Logger.Error("saving run history failed", zap.String("run_id", item.ID), zap.Error(err))
		m.StatusMsg = fmt.Sprintf("Error saving history: %v", err)
		return
	}
	m.HistoryView.Refresh()
}

func (m *Model) exportCurrent() {
	var report *stats.RunReport
	switch m.CurrentView {
	case ViewDashboard:
		report = m.LastReport
	case ViewHistory:
		if item := m.HistoryView.GetSelectedItem(); item != nil {
			report = &item.Report
		}
	}
	if report == nil {
		m.StatusMsg = "No results to export yet."
		return
	}

	base := "playerload_" + report.RunID
	if err := export.ExportAll(*report, base); err != nil {
		m.StatusMsg = fmt.Sprintf("Export Failed: %v", err)
		return
	}
	m.StatusMsg = fmt.Sprintf("Exported to %s.{csv,json}", base)
}

func (m Model) View() string {
	if m.Width == 0 {
		return "Loading..."
	}

	nav := strings.Builder{}
	for i, item := range m.MenuItems {
		if ViewID(i) == m.CurrentView {
			nav.WriteString(styles.TabActive.Render(item))
		} else {
			nav.WriteString(styles.TabBase.Render(item))
		}
	}
	navBar := styles.FooterBase.Width(m.Width).Render(nav.String())

	contentStr := ""
	switch m.CurrentView {
	case ViewRunner:
		contentStr = m.RunnerView.View()
	case ViewDashboard:
		contentStr = m.DashView.View()
	case ViewHistory:
		contentStr = m.HistoryView.View()
	}

	content := styles.Panel.Width(m.Width - 2).Height(m.Height - 6).Render(contentStr)

	// Row 1: Navigation
	keys1 := []string{
		styles.RenderKey("Ctrl+<->", "View"),
		styles.RenderKey("Tab", "Field"),
		styles.RenderKey("Enter", "Next/Load"),
	}

	// Row 2: Actions
	keys2 := []string{
		styles.RenderKey("Ctrl+R", "Run"),
		styles.RenderKey("Ctrl+S", "Stop"),
		styles.RenderKey("Ctrl+P", "Export"),
		styles.RenderKey("Ctrl+Q", "Quit"),
	}

	// Row 3: Shortcuts
	keys3 := []string{
		styles.RenderKey("Ctrl+D", "Dash"),
		styles.RenderKey("Ctrl+H", "Hist"),
	}

	helpRow1 := styles.FooterBase.Width(m.Width).Render(strings.Join(keys1, "   "))
	helpRow2 := styles.FooterBase.Width(m.Width).Render(strings.Join(keys2, "   "))
	helpRow3 := styles.FooterBase.Width(m.Width).Render(strings.Join(keys3, "   "))

	footer := lipgloss.JoinVertical(lipgloss.Left, helpRow1, helpRow2, helpRow3)

	if m.StatusMsg != "" {
		status := styles.Box.BorderForeground(styles.ColorHighlight).Render(m.StatusMsg)
		return lipgloss.JoinVertical(lipgloss.Left, navBar, content, status, footer)
	}

	return lipgloss.JoinVertical(lipgloss.Left, navBar, content, footer)
}
