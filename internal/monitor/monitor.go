// Package monitor is the terminal front end of the fan controller. It shows
// the snapshots published by the control loop and sends the user's mode and
// level choices back as control.Selection values.
package monitor

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luki/tpfancontrol/internal/chart"
	"github.com/luki/tpfancontrol/internal/control"
	"github.com/luki/tpfancontrol/internal/fan"
	"github.com/luki/tpfancontrol/internal/history"
	"github.com/luki/tpfancontrol/internal/sensor"
)

// historySpan is how far back the sparklines reach.
const historySpan = 10 * time.Minute

const labelW = 22

const (
	seriesTemp = "temp"
	seriesRPM  = "rpm"
)

// ── Messages ─────────────────────────────────────────────────────────

type snapshotMsg control.State

func waitForSnapshot(ch <-chan control.State) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(<-ch)
	}
}

// ── Model ────────────────────────────────────────────────────────────

// Options configure a Model.
type Options struct {
	Snapshots  <-chan control.State
	Selections *control.Mailbox[control.Selection]

	// Interval is the control tick, used to size the sparklines.
	Interval time.Duration

	Selection  control.Selection
	Scale      sensor.Scale
	Visibility sensor.Visibility
}

// Model is the BubbleTea model of the fan monitor.
type Model struct {
	snapshots  <-chan control.State
	selections *control.Mailbox[control.Selection]

	state     control.State
	have      bool
	sel       control.Selection
	scale     sensor.Scale
	vis       sensor.Visibility
	history   *history.Store
	width     int
	height    int
	scroll    int
	startTime time.Time
}

// New creates the initial model.
func New(opts Options) Model {
	return Model{
		snapshots:  opts.Snapshots,
		selections: opts.Selections,
		sel:        opts.Selection,
		scale:      opts.Scale,
		vis:        opts.Visibility,
		history:    history.NewStore(history.CapacityFor(historySpan, opts.Interval)),
		startTime:  time.Now(),
	}
}

// Selection is the choice currently shown to the user.
func (m Model) Selection() control.Selection { return m.sel }

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return waitForSnapshot(m.snapshots)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.scroll > 0 {
				m.scroll--
			}
		case "down", "j":
			m.scroll++
		case "home":
			m.scroll = 0
		case "s":
			m.scale = m.scale.Toggle()
		case "v":
			m.vis = m.vis.Toggle()
		case "1":
			m.choose(control.ModeBIOS, m.sel.ManualLevel)
		case "2":
			m.choose(control.ModeSmart, m.sel.ManualLevel)
		case "3":
			m.choose(control.ModeManual, m.sel.ManualLevel)
		case "+", "=":
			if m.sel.ManualLevel < fan.LevelFullSpeed {
				m.choose(m.sel.Mode, m.sel.ManualLevel+1)
			}
		case "-":
			if m.sel.ManualLevel > 0 {
				m.choose(m.sel.Mode, m.sel.ManualLevel-1)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case snapshotMsg:
		st := control.State(msg)
		m.state = st
		m.have = true
		if hottest, ok := st.Hottest(); ok && st.TempErr == nil {
			m.history.Record(seriesTemp, float64(hottest), st.Updated)
		}
		if st.FanErr == nil {
			m.history.Record(seriesRPM, float64(st.Fan.Speed), st.Updated)
		}
		return m, waitForSnapshot(m.snapshots)
	}

	return m, nil
}

// choose updates the selection and sends it to the control loop. Nothing
// changes while the fan is read-only.
func (m *Model) choose(mode control.Mode, level fan.Level) {
	if !m.state.Writable {
		return
	}
	next := control.Selection{Mode: mode, ManualLevel: level}
	if next == m.sel {
		return
	}
	m.sel = next
	if m.selections != nil {
		m.selections.Put(next)
	}
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorHeading  = lipgloss.Color("147")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorOk       = lipgloss.Color("78")
	colorWarn     = lipgloss.Color("220")
	colorHigh     = lipgloss.Color("208")
	colorCrit     = lipgloss.Color("196")
	colorRPM      = lipgloss.Color("75")
	colorActive   = lipgloss.Color("51")
)

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}

	contentWidth := max(m.width-2, 40)

	var sections []string
	sections = append(sections, m.renderTitleBar(contentWidth))

	if err := m.state.Err(); err != nil {
		errBox := lipgloss.NewStyle().
			Foreground(colorCrit).
			Bold(true).
			Width(contentWidth).
			Padding(0, 1).
			Render(fmt.Sprintf(" ERROR: %v", err))
		sections = append(sections, errBox)
	}

	if !m.have {
		waiting := lipgloss.NewStyle().
			Foreground(colorDim).
			Width(contentWidth).
			Align(lipgloss.Center).
			Padding(2, 0).
			Render("Waiting for sensor data...")
		sections = append(sections, waiting)
	} else {
		sections = append(sections, m.renderTemperatures(contentWidth), m.renderFan(contentWidth))
	}

	sections = append(sections, m.renderFooter(contentWidth))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	lines := strings.Split(content, "\n")
	visibleLines := max(m.height, 5)
	maxScroll := max(len(lines)-visibleLines, 0)
	start := min(m.scroll, maxScroll)
	end := min(start+visibleLines, len(lines))

	return strings.Join(lines[start:end], "\n")
}

func (m Model) renderTitleBar(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("THINKPAD FAN CONTROL")

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	statusParts := []string{dimS.Render(fmt.Sprintf("up %s", fmtDuration(time.Since(m.startTime))))}

	if !m.state.Updated.IsZero() {
		statusParts = append(statusParts, dimS.Render(m.state.Updated.Format("15:04:05")))
	}

	if m.have {
		if m.state.Writable {
			statusParts = append(statusParts, lipgloss.NewStyle().Foreground(colorOk).Bold(true).Render("RW"))
		} else {
			statusParts = append(statusParts, lipgloss.NewStyle().Foreground(colorCrit).Bold(true).Render("RO"))
		}
	}

	sep := dimS.Render(" │ ")
	right := strings.Join(statusParts, sep)

	gap := max(width-lipgloss.Width(logo)-lipgloss.Width(right)-4, 1)

	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + strings.Repeat(" ", gap) + right)
}

// chartWidth leaves room for the row label and the statistics.
func (m Model) chartWidth(totalWidth int) int {
	return min(max(totalWidth-4-labelW-45, 15), 140)
}

func (m Model) renderTemperatures(totalWidth int) string {
	bands := chart.BandsFor(m.state.Config.Thresholds)
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	valS := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))

	heading := lipgloss.NewStyle().Bold(true).Foreground(colorHeading).Render("Temperatures") +
		dimS.Render(fmt.Sprintf("  %s, %s", m.scale, m.vis))
	rows := []string{heading}

	for i, ch := range m.state.Channels {
		label := m.state.Label(i + 1)
		if !m.vis.Shown(label, ch) {
			continue
		}
		name := lipgloss.NewStyle().Foreground(colorLabel).Width(labelW).Render(truncate(label, labelW))
		value := dimS.Render("n/a")
		if ch.Present {
			value = chart.RenderTemp(ch.Temp, m.scale, bands)
		}
		rows = append(rows, name+" "+value)
	}

	if hist := m.history.Get(seriesTemp); hist != nil && hist.Len() > 0 {
		width := m.chartWidth(totalWidth)
		pts := hist.LastNPoints(width)
		lo := math.Max(0, hist.Min-5)
		hi := math.Max(hist.Peak+5, bands.Crit+5)

		frameL := lipgloss.NewStyle().Foreground(colorBorder).Render("▕")
		frameR := lipgloss.NewStyle().Foreground(colorBorder).Render("▏")
		name := lipgloss.NewStyle().Foreground(colorLabel).Width(labelW).Render("Hottest")
		stats := dimS.Render(" avg ") + valS.Render(m.degrees(hist.Avg())) +
			dimS.Render(" lo ") + valS.Render(m.degrees(hist.Min)) +
			dimS.Render(" pk ") + valS.Render(m.degrees(hist.Peak))
		rows = append(rows, "", name+" "+frameL+chart.RenderSparkline(pts, width, lo, hi, bands.Color)+frameR+stats)
		if timeline := chart.RenderTimeline(pts, width); strings.TrimSpace(timeline) != "" {
			rows = append(rows, strings.Repeat(" ", labelW+2)+timeline)
		}

		if m.state.Config.Thresholds.Len() > 0 {
			scale := chart.RenderThresholdScale(hist.Last(), m.state.Config.Thresholds, lo, hi, bands, width)
			rows = append(rows, lipgloss.NewStyle().Foreground(colorLabel).Width(labelW).Render("Thresholds")+"  "+scale)
		}
	}

	return m.panel(totalWidth, rows)
}

func (m Model) degrees(c float64) string {
	return sensor.Temperature(c).Display(m.scale)
}

func (m Model) renderFan(totalWidth int) string {
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	labelS := lipgloss.NewStyle().Foreground(colorLabel).Width(labelW)
	valS := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))

	rows := []string{lipgloss.NewStyle().Bold(true).Foreground(colorHeading).Render("Fan")}

	if m.state.FanErr != nil {
		rows = append(rows, labelS.Render("Current")+" "+dimS.Render("unavailable"))
	} else {
		rows = append(rows,
			labelS.Render("Current")+" "+valS.Render(m.state.Fan.Mode.String()),
			labelS.Render("Speed")+" "+valS.Render(m.state.Fan.Speed.String()),
		)
	}

	if !m.state.Writable {
		rows = append(rows, labelS.Render("Control")+" "+
			lipgloss.NewStyle().Foreground(colorWarn).Render("read-only, controls disabled"))
	} else {
		var chips []string
		for i, mode := range control.Modes() {
			text := fmt.Sprintf("%d %s", i+1, mode)
			style := dimS
			if mode == m.sel.Mode {
				style = lipgloss.NewStyle().Foreground(colorActive).Bold(true).Reverse(true)
			}
			chips = append(chips, style.Render(" "+text+" "))
		}
		rows = append(rows, labelS.Render("Mode")+" "+strings.Join(chips, " "))

		levelStyle := dimS
		if m.sel.Mode == control.ModeManual {
			levelStyle = valS
		}
		rows = append(rows, labelS.Render("Manual level")+" "+levelStyle.Render(m.sel.ManualLevel.String()))

		applied := dimS.Render("pending")
		if m.state.Actuated {
			applied = valS.Render(m.state.Applied.String())
		}
		rows = append(rows, labelS.Render("Applied")+" "+applied)
	}

	if hist := m.history.Get(seriesRPM); hist != nil && hist.Len() > 0 {
		width := m.chartWidth(totalWidth)
		pts := hist.LastNPoints(width)
		frameL := lipgloss.NewStyle().Foreground(colorBorder).Render("▕")
		frameR := lipgloss.NewStyle().Foreground(colorBorder).Render("▏")
		stats := dimS.Render(" avg ") + valS.Render(fmt.Sprintf("%.0f", hist.Avg())) +
			dimS.Render(" pk ") + valS.Render(fmt.Sprintf("%.0f", hist.Peak))
		rows = append(rows, "", labelS.Render("RPM")+" "+frameL+
			chart.RenderSparkline(pts, width, 0, math.Max(hist.Peak*1.1, 1), chart.Solid(colorRPM))+frameR+stats)
	}

	return m.panel(totalWidth, rows)
}

func (m Model) panel(width int, rows []string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderFooter(width int) string {
	okS := lipgloss.NewStyle().Foreground(colorOk).Render("██")
	warnS := lipgloss.NewStyle().Foreground(colorWarn).Render("██")
	highS := lipgloss.NewStyle().Foreground(colorHigh).Render("██")
	critS := lipgloss.NewStyle().Foreground(colorCrit).Render("██")
	tickS := lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Render("│")

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	keyS := lipgloss.NewStyle().Foreground(colorLabel)
	legend := okS + dimS.Render(" ok ") +
		warnS + dimS.Render(" warm ") +
		highS + dimS.Render(" high ") +
		critS + dimS.Render(" crit ") +
		tickS + dimS.Render(" 1min")

	keys := dimS.Render("q") + keyS.Render(":quit") +
		dimS.Render("  s") + keyS.Render(":°C/°F") +
		dimS.Render("  v") + keyS.Render(":all/active")
	if m.state.Writable {
		keys += dimS.Render("  1-3") + keyS.Render(":mode") +
			dimS.Render("  +/-") + keyS.Render(":level")
	}

	gap := max(width-lipgloss.Width(legend)-lipgloss.Width(keys)-4, 1)

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(legend + strings.Repeat(" ", gap) + keys)
}

func truncate(s string, w int) string {
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w <= 3 {
		return string(r[:w])
	}
	return string(r[:w-1]) + "…"
}

func fmtDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
