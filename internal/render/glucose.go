// Package render shapes CGM readings for terminal display.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"lluview/internal/llu"
)

var (
	InRangeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#32CD32"))
	LowStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4040")).Bold(true)
	HighStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Bold(true)
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders values as a row of unicode bars scaled to the
// min/max of the window. At most width values are shown, newest last.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	var sb strings.Builder
	for _, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkRunes)-1))
		}
		sb.WriteRune(sparkRunes[idx])
	}
	return sb.String()
}

// TrendGlyph maps the API's TrendArrow codes to arrows. 3 is steady;
// lower is falling, higher is rising.
func TrendGlyph(arrow int) string {
	switch arrow {
	case 1:
		return "↓↓"
	case 2:
		return "↘"
	case 3:
		return "→"
	case 4:
		return "↗"
	case 5:
		return "↑↑"
	default:
		return "·"
	}
}

// FormatValue renders a reading value with its unit. GlucoseUnits 1 is
// mg/dL, 0 is mmol/L.
func FormatValue(value float64, units int) string {
	if units == 1 {
		return fmt.Sprintf("%.0f mg/dL", value)
	}
	return fmt.Sprintf("%.1f mmol/L", value)
}

// FormatReading renders a measurement's value, unit and trend.
func FormatReading(m llu.GlucoseMeasurement) string {
	s := FormatValue(m.Value, m.GlucoseUnits)
	if g := TrendGlyph(m.TrendArrow); g != "·" {
		s += " " + g
	}
	return s
}

// LevelStyle picks the colour for a reading against a target range. A
// zero range falls back to the reading's own high/low flags.
func LevelStyle(m llu.GlucoseMeasurement, targetLow, targetHigh float64) lipgloss.Style {
	v := m.ValueInMgPerDl
	switch {
	case m.IsLow, targetLow > 0 && v > 0 && v < targetLow:
		return LowStyle
	case m.IsHigh, targetHigh > 0 && v > targetHigh:
		return HighStyle
	default:
		return InRangeStyle
	}
}

// TimeAgo renders a duration since t in compact form.
func TimeAgo(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
