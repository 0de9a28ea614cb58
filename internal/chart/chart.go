// Package chart renders sparklines, timeline labels and the threshold
// scale of the fan monitor.
package chart

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/tpfancontrol/internal/fan"
	"github.com/luki/tpfancontrol/internal/history"
	"github.com/luki/tpfancontrol/internal/policy"
	"github.com/luki/tpfancontrol/internal/sensor"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Bands are the temperatures, in Celsius, where readings turn orange (High)
// and red (Crit).
type Bands struct {
	High, Crit float64
}

// DefaultBands is used when the threshold table has no full-speed entry.
var DefaultBands = Bands{High: 65, Crit: 80}

// BandsFor derives colour bands from a threshold table: Crit is the first
// bound that asks for full speed, High the bound before it.
func BandsFor(t policy.Table) Bands {
	entries := t.Entries()
	for i, e := range entries {
		if e.Level != fan.LevelFullSpeed {
			continue
		}
		b := Bands{Crit: float64(e.Above), High: float64(e.Above) - 15}
		if i > 0 {
			b.High = float64(entries[i-1].Above)
		}
		return b
	}
	return DefaultBands
}

// Color returns the colour of a temperature in Celsius.
func (b Bands) Color(c float64) lipgloss.Color {
	switch {
	case c >= b.Crit:
		return lipgloss.Color("196") // red
	case c >= b.High:
		return lipgloss.Color("208") // orange
	case c >= b.High*0.85:
		return lipgloss.Color("220") // yellow
	default:
		return lipgloss.Color("78") // soft green
	}
}

// Solid colours every value with c.
func Solid(c lipgloss.Color) func(float64) lipgloss.Color {
	return func(float64) lipgloss.Color { return c }
}

// RenderSparkline renders a sparkline with a pipe at each minute boundary.
// color picks the colour of each block from its value.
func RenderSparkline(points []history.Point, width int, rangeMin, rangeMax float64, color func(float64) lipgloss.Color) string {
	if width <= 0 {
		return ""
	}

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	if len(points) == 0 {
		return dim.Render(strings.Repeat("╌", width))
	}

	if len(points) > width {
		points = points[len(points)-width:]
	}

	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}

	var sb strings.Builder
	for i := 0; i < width-len(points); i++ {
		sb.WriteString(dim.Render("╌"))
	}

	tickStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	for i, p := range points {
		if minuteTick(points, i) {
			sb.WriteString(tickStyle.Render("│"))
			continue
		}
		norm := math.Max(0, math.Min(1, (p.Value-rangeMin)/span))
		idx := int(norm * 7)
		style := lipgloss.NewStyle().Foreground(color(p.Value))
		sb.WriteString(style.Render(string(sparkBlocks[idx])))
	}

	return sb.String()
}

func minuteTick(points []history.Point, i int) bool {
	p := points[i]
	if p.Time.IsZero() {
		return false
	}
	if p.Time.Second() == 0 {
		return true
	}
	return i > 0 && !points[i-1].Time.IsZero() && p.Time.Minute() != points[i-1].Time.Minute()
}

// RenderTimeline renders HH:MM labels under the minute ticks of a sparkline
// of the same width.
func RenderTimeline(points []history.Point, width int) string {
	if len(points) == 0 || width <= 0 {
		return ""
	}
	if len(points) > width {
		points = points[len(points)-width:]
	}
	padLen := width - len(points)

	line := []rune(strings.Repeat(" ", width))
	lastEnd := -1
	for i, p := range points {
		if !minuteTick(points, i) {
			continue
		}
		label := p.Time.Format("15:04")
		start := padLen + i - 2
		if start < 0 {
			start = 0
		}
		end := start + len(label)
		if end > width || start <= lastEnd+1 {
			continue
		}
		copy(line[start:], []rune(label))
		lastEnd = end
	}

	return lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Render(string(line))
}

// RenderThresholdScale draws a bar from rangeMin to rangeMax Celsius with a
// mark at each table bound and a diamond at current.
func RenderThresholdScale(current float64, t policy.Table, rangeMin, rangeMax float64, bands Bands, width int) string {
	if width <= 0 {
		return ""
	}
	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}
	pos := func(v float64) int {
		p := int(float64(width-1) * (v - rangeMin) / span)
		return max(0, min(width-1, p))
	}

	marks := make(map[int]fan.Level)
	for _, e := range t.Entries() {
		if float64(e.Above) >= rangeMin && float64(e.Above) <= rangeMax {
			marks[pos(float64(e.Above))] = e.Level
		}
	}
	cur := pos(current)

	var sb strings.Builder
	for i := 0; i < width; i++ {
		level, marked := marks[i]
		switch {
		case i == cur:
			sb.WriteString(lipgloss.NewStyle().Foreground(bands.Color(current)).Bold(true).Render("◆"))
		case marked && level == fan.LevelFullSpeed:
			sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("▪"))
		case marked:
			sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("▪"))
		default:
			sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("236")).Render("·"))
		}
	}
	return sb.String()
}

// RenderTemp renders a temperature in scale, coloured by its Celsius value.
func RenderTemp(t sensor.Temperature, scale sensor.Scale, bands Bands) string {
	style := lipgloss.NewStyle().Foreground(bands.Color(float64(t)))
	if float64(t) >= bands.Crit {
		style = style.Bold(true)
	}
	return style.Render(t.Display(scale))
}
