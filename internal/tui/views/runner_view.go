package views

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"playerload/internal/runner"
	"playerload/internal/tui/styles"
)

// Field Indices
const (
	FieldURL = iota
	FieldPlayers
	FieldTimeout
	FieldPaths
	fieldCount
)

type RunnerView struct {
	Inputs []textinput.Model
	Focus  int

	// Insecure is not editable in the form; it rides along from the flags
	// or from a reloaded history entry.
	Insecure bool

	Viewport viewport.Model

	Width  int
	Height int
}

func (m RunnerView) GetHelp() string {
	switch m.Focus {
	case FieldURL:
		return "Base URL of the server under test.\nExample: http://raspberrypi.local:3001\n\nTrailing slashes are removed."
	case FieldPlayers:
		return "Number of simultaneous players.\nEach one walks every path once, in order.\n\nClamped to 1-500."
	case FieldTimeout:
		return "Per-request timeout in seconds.\nA request that takes longer fails the player.\n\nClamped to 5-120, empty means 15."
	case FieldPaths:
		return "Comma separated paths, visited in order.\nEmpty means the default game visit:\n  /, /games/zebras.html,\n  /api/leaderboard/zebras\n\nTemplates:\n• {{playerID}}: the player's number.\n• {{uuid}}: a fresh UUID per player."
	}
	return ""
}

func NewRunnerView(initialCfg runner.Config) RunnerView {
	inputs := make([]textinput.Model, fieldCount)

	// Base settings for all inputs
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].PromptStyle = styles.Subtle
		inputs[i].TextStyle = styles.Subtle
	}

	inputs[FieldURL].Placeholder = "http://raspberrypi.local:3001"
	inputs[FieldURL].SetValue(initialCfg.URL)
	inputs[FieldURL].Prompt = "URL: "
	inputs[FieldURL].Width = 40

	inputs[FieldPlayers].Placeholder = strconv.Itoa(runner.DefaultConcurrency)
	if initialCfg.Concurrency > 0 {
		inputs[FieldPlayers].SetValue(strconv.Itoa(initialCfg.Concurrency))
	}
	inputs[FieldPlayers].Prompt = "Players: "
	inputs[FieldPlayers].Width = 10

	inputs[FieldTimeout].Placeholder = "15"
	if initialCfg.TimeoutSec > 0 {
		inputs[FieldTimeout].SetValue(strconv.Itoa(initialCfg.TimeoutSec))
	}
	inputs[FieldTimeout].Prompt = "Timeout (s): "
	inputs[FieldTimeout].Width = 10

	inputs[FieldPaths].Placeholder = strings.Join(runner.DefaultPaths, ", ")
	inputs[FieldPaths].SetValue(strings.Join(initialCfg.Paths, ", "))
	inputs[FieldPaths].Prompt = "Paths: "
	inputs[FieldPaths].Width = 40

	m := RunnerView{
		Inputs:   inputs,
		Insecure: initialCfg.Insecure,
		Viewport: viewport.New(0, 0),
	}
	m, _ = m.focusCmd()
	return m
}

func (m RunnerView) Init() tea.Cmd {
	return textinput.Blink
}

func (m RunnerView) Update(msg tea.Msg) (RunnerView, tea.Cmd) {
	var cmds []tea.Cmd

	dir := 0
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down", "enter":
			dir = 1
		case "shift+tab", "up":
			dir = -1
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Viewport.Width = msg.Width - 4
		m.Viewport.Height = msg.Height - 8
	}

	if dir != 0 {
		m.Focus = (m.Focus + dir + fieldCount) % fieldCount
		var cmd tea.Cmd
		m, cmd = m.focusCmd()
		cmds = append(cmds, cmd)
	} else {
		for i := range m.Inputs {
			var cmd tea.Cmd
			m.Inputs[i], cmd = m.Inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var vpCmd tea.Cmd
	m.Viewport, vpCmd = m.Viewport.Update(msg)
	cmds = append(cmds, vpCmd)

	return m, tea.Batch(cmds...)
}

func (m RunnerView) focusCmd() (RunnerView, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, len(m.Inputs))
	for i := range m.Inputs {
		if i == m.Focus {
			cmds = append(cmds, m.Inputs[i].Focus())
			m.Inputs[i].PromptStyle = styles.Active
			m.Inputs[i].TextStyle = styles.Text
		} else {
			m.Inputs[i].Blur()
			m.Inputs[i].PromptStyle = styles.Subtle
			m.Inputs[i].TextStyle = styles.Subtle
		}
	}
	return m, tea.Batch(cmds...)
}

func (m RunnerView) renderInput(idx int) string {
	style := styles.InputNormal
	if idx == m.Focus {
		style = styles.InputActive
	}
	return style.Render(m.Inputs[idx].View())
}

func (m RunnerView) View() string {
	inputCol := strings.Builder{}
	inputCol.WriteString("\n")
	for i := range m.Inputs {
		inputCol.WriteString(m.renderInput(i))
		inputCol.WriteString("\n")
	}

	helpBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.ColorBorder).
		Padding(1, 2).
		Width(45).
		Height(15)

	helpCol := strings.Builder{}
	helpCol.WriteString(styles.Subtle.Bold(true).Render("Information"))
	helpCol.WriteString("\n\n")
	helpCol.WriteString(styles.Text.Foreground(styles.ColorPass).Render(m.GetHelp()))

	mainRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(55).Render(inputCol.String()),
		helpBox.Render(helpCol.String()),
	)

	m.Viewport.SetContent(mainRow)
	return m.Viewport.View()
}

// GetConfig reads the form. Only non-numeric players or timeout fail here;
// range clamping happens when the run starts.
func (m RunnerView) GetConfig() (runner.Config, error) {
	cfg, err := runner.ParseConfig(
		m.Inputs[FieldURL].Value(),
		m.Inputs[FieldPlayers].Value(),
		m.Inputs[FieldTimeout].Value(),
		runner.SplitPaths(m.Inputs[FieldPaths].Value()),
	)
	if err != nil {
		return runner.Config{}, err
	}
	cfg.Insecure = m.Insecure
	return cfg, nil
}
