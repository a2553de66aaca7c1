package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var levels = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline is a one-row scrolling chart of the last Width samples, scaled
// to the largest visible value.
type Sparkline struct {
	Data  []float64
	Width int
	Max   float64
	Style lipgloss.Style
	Label string
	Unit  string
}

func NewSparkline(width int, label, unit string, style lipgloss.Style) Sparkline {
	return Sparkline{
		Width: width,
		Label: label,
		Unit:  unit,
		Style: style,
		Data:  make([]float64, 0, width),
	}
}

func (s *Sparkline) Add(val float64) {
	if s.Width <= 0 {
		return
	}
	s.Data = append(s.Data, val)
	if len(s.Data) > s.Width {
		s.Data = s.Data[len(s.Data)-s.Width:]
	}

	s.Max = 0
	for _, v := range s.Data {
		if v > s.Max {
			s.Max = v
		}
	}
}

// Last is the most recent sample, or 0 when empty.
func (s Sparkline) Last() float64 {
	if len(s.Data) == 0 {
		return 0
	}
	return s.Data[len(s.Data)-1]
}

func (s Sparkline) graph() string {
	var b strings.Builder
	for _, v := range s.Data {
		idx := 0
		if s.Max > 0 && v > 0 {
			idx = int(v / s.Max * float64(len(levels)-1))
			if idx < 1 {
				idx = 1
			}
			if idx >= len(levels) {
				idx = len(levels) - 1
			}
		}
		b.WriteRune(levels[idx])
	}
	if pad := s.Width - len(s.Data); pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	return b.String()
}

func (s Sparkline) View() string {
	if s.Width <= 0 {
		return ""
	}
	label := fmt.Sprintf("%s  %.0f%s (max %.0f%s)", s.Label, s.Last(), s.Unit, s.Max, s.Unit)
	return s.Style.Render(label) + "\n" + s.Style.Render(s.graph())
}
