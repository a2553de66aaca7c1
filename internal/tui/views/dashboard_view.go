package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"playerload/internal/cli"
	"playerload/internal/runner"
	"playerload/internal/stats"
	"playerload/internal/tui/components"
	"playerload/internal/tui/styles"
)

type DashboardView struct {
	Stats    runner.StatsSnapshot
	Viewport viewport.Model
	Progress progress.Model
	P95      components.Sparkline
	Params   runner.TestParameters

	// Report is set once the run has returned.
	Report *stats.RunReport

	StartTime  time.Time
	LastUpdate time.Time

	Width  int
	Height int
}

func NewDashboardView(params runner.TestParameters, width, height int) DashboardView {
	// Gradient Progress Bar
	prog := progress.New(
		progress.WithGradient("#7D56F4", "#04B575"),
		progress.WithWidth(width-10),
		progress.WithoutPercentage(),
	)

	return DashboardView{
		Viewport:   viewport.New(width-6, height-8),
		Progress:   prog,
		P95:        components.NewSparkline(40, "Probe p95", "ms", styles.Warn),
		Params:     params,
		Stats:      runner.StatsSnapshot{Concurrency: params.Concurrency},
		StartTime:  time.Now(),
		LastUpdate: time.Now(),
		Width:      width,
		Height:     height,
	}
}

func (m DashboardView) Init() tea.Cmd {
	return nil
}

func (m DashboardView) Update(msg tea.Msg) (DashboardView, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case runner.StatsSnapshot:
		if m.Report != nil {
			break
		}
		m.LastUpdate = time.Now()
		m.Stats = msg
		m.P95.Add(msg.P95ProbeMs)
		cmds = append(cmds, m.Progress.SetPercent(donePct(msg)))

	case *stats.RunReport:
		m.Report = msg
		pct := 1.0
		if msg.Cancelled && msg.Concurrency > 0 {
			pct = float64(len(msg.Outcomes)) / float64(msg.Concurrency)
		}
		cmds = append(cmds, m.Progress.SetPercent(pct))

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Progress.Width = msg.Width - 10
		m.Viewport.Width = msg.Width - 6
		m.Viewport.Height = msg.Height - 8

	case progress.FrameMsg:
		newModel, cmd := m.Progress.Update(msg)
		if newModel, ok := newModel.(progress.Model); ok {
			m.Progress = newModel
		}
		cmds = append(cmds, cmd)
	}

	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func donePct(s runner.StatsSnapshot) float64 {
	if s.Concurrency <= 0 {
		return 0
	}
	pct := float64(s.Players) / float64(s.Concurrency)
	if pct > 1.0 {
		pct = 1.0
	}
	return pct
}

func (m DashboardView) View() string {
	if m.StartTime.IsZero() {
		return styles.Subtle.Render("No run yet. Fill in the form and press Ctrl+R.")
	}

	s := strings.Builder{}

	// --- Header ---
	elapsed := time.Since(m.StartTime)
	title := "⚡ Testing in Progress"
	state := "[Running]"
	switch {
	case m.Report != nil && m.Report.Cancelled:
		title, state = "⏹  Run Stopped", "[Partial]"
		elapsed = m.Report.TotalElapsed
	case m.Report != nil:
		title, state = "✅ Run Finished", "[Done]"
		elapsed = m.Report.TotalElapsed
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		styles.Title.Render(title),
		lipgloss.NewStyle().MarginLeft(2).Foreground(styles.ColorSubtle).Render(elapsed.Round(100*time.Millisecond).String()),
		lipgloss.NewStyle().MarginLeft(4).Foreground(styles.ColorAccent).Bold(true).Render(state),
		lipgloss.NewStyle().MarginLeft(4).Foreground(styles.ColorSubtle).Render(m.Params.BaseURL),
	)
	s.WriteString(header)
	s.WriteString("\n\n")

	// --- Progress ---
	s.WriteString(m.Progress.View())
	s.WriteString("\n\n")

	// Row 1: Players
	failColor := styles.Text
	if m.Stats.Failed > 0 {
		failColor = styles.Fail
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top,
		MakeCard("Players Done", styles.Metric.Render(fmt.Sprintf("%d / %d", m.Stats.Players, m.Params.Concurrency))),
		MakeCard("Inflight", styles.Active.Render(fmt.Sprintf("%d", m.Stats.Inflight))),
		MakeCard("Succeeded", styles.Pass.Render(fmt.Sprintf("%d", m.Stats.Succeeded))),
		MakeCard("Failed", failColor.Render(fmt.Sprintf("%d", m.Stats.Failed))),
	)
	s.WriteString(row1)
	s.WriteString("\n")

	// Row 2: Live probe latency
	row2 := lipgloss.JoinHorizontal(lipgloss.Top,
		MakeCard("Probes", styles.Text.Render(fmt.Sprintf("%d (%d fail)", m.Stats.Probes, m.Stats.ProbeFail))),
		MakeCard("Probe P50", styles.Text.Render(fmt.Sprintf("%.1f ms", m.Stats.P50ProbeMs))),
		MakeCard("Probe P95", styles.Warn.Render(fmt.Sprintf("%.1f ms", m.Stats.P95ProbeMs))),
		MakeCard("Probe Max", styles.Text.Render(fmt.Sprintf("%d ms", m.Stats.MaxProbeMs))),
	)
	s.WriteString(row2)
	s.WriteString("\n\n")
	s.WriteString(m.P95.View())
	s.WriteString("\n\n")

	if m.Report != nil {
		s.WriteString(m.reportView())
	}

	content := styles.Panel.Width(m.Width - 6).Render(s.String())
	m.Viewport.SetContent(content)

	return m.Viewport.View()
}

func (m DashboardView) reportView() string {
	r := m.Report
	s := strings.Builder{}
	s.WriteString(styles.Subtle.Render("Result (successful players, all paths)"))
	s.WriteString("\n")

	if r.SuccessCount > 0 {
		s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			MakeCard("Average", styles.Metric.Render(fmt.Sprintf("%d ms", r.AvgMs))),
			MakeCard("Median", styles.Metric.Render(fmt.Sprintf("%d ms", r.P50Ms))),
			MakeCard("P95", styles.Warn.Render(fmt.Sprintf("%d ms", r.P95Ms))),
		))
		s.WriteString("\n")
	} else {
		s.WriteString(styles.Fail.Render("No player completed every path."))
		s.WriteString("\n")
	}

	if f, ok := r.FirstFailure(); ok {
		reason := f.Error
		if reason == "" {
			reason = fmt.Sprintf("status %d", f.StatusCode)
		}
		if len(reason) > 60 {
			reason = reason[:57] + "..."
		}
		s.WriteString(fmt.Sprintf("%s %s at %s\n", styles.Fail.Render("Example failure:"), reason, f.Path))
	}
	for _, tip := range cli.Tips(*r) {
		s.WriteString(styles.Warn.Render(tip))
		s.WriteString("\n")
	}
	return s.String()
}

func MakeCard(title, value string) string {
	return styles.Box.Width(18).Align(lipgloss.Center).Render(
		fmt.Sprintf("%s\n%s", styles.Subtle.Render(title), value),
	)
}
