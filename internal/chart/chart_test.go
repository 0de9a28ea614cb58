package chart

import (
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/luki/tpfancontrol/internal/fan"
	"github.com/luki/tpfancontrol/internal/history"
	"github.com/luki/tpfancontrol/internal/policy"
	"github.com/luki/tpfancontrol/internal/sensor"
)

func TestSparkline(t *testing.T) {
	var pts []history.Point
	for _, v := range []float64{30, 35, 40, 50, 60, 70, 80, 90, 100} {
		pts = append(pts, history.Point{Value: v})
	}
	result := RenderSparkline(pts, 20, 20, 110, DefaultBands.Color)
	assert.NotEmpty(t, result)
	assert.NotContains(t, result, "│", "points without timestamps have no ticks")
}

func TestSparklineMinuteTicks(t *testing.T) {
	base := time.Date(2026, 2, 21, 14, 0, 50, 0, time.Local)
	var pts []history.Point
	for i := 0; i < 20; i++ {
		pts = append(pts, history.Point{
			Value: float64(2800 + 50*(i%5)),
			Time:  base.Add(time.Duration(i) * time.Second),
		})
	}

	assert.Contains(t, RenderSparkline(pts, 20, 0, 5000, Solid(lipgloss.Color("75"))), "│")
	assert.Contains(t, RenderTimeline(pts, 20), "14:01")
}

func TestBandsFor(t *testing.T) {
	table := policy.MustTable(
		policy.Threshold{Above: 40, Level: fan.Step(2)},
		policy.Threshold{Above: 60, Level: fan.Step(5)},
		policy.Threshold{Above: 80, Level: fan.LevelFullSpeed},
	)
	assert.Equal(t, Bands{High: 60, Crit: 80}, BandsFor(table))

	noFull := policy.MustTable(policy.Threshold{Above: 50, Level: fan.Step(7)})
	assert.Equal(t, DefaultBands, BandsFor(noFull))

	assert.Equal(t, lipgloss.Color("196"), DefaultBands.Color(85))
	assert.Equal(t, lipgloss.Color("78"), DefaultBands.Color(30))
}

func TestThresholdScale(t *testing.T) {
	table := policy.MustTable(
		policy.Threshold{Above: 50, Level: fan.Step(3)},
		policy.Threshold{Above: 80, Level: fan.LevelFullSpeed},
	)
	result := RenderThresholdScale(65, table, 30, 100, BandsFor(table), 40)
	assert.Equal(t, 2, countRune(result, '▪'), "bound marks in %q", result)
	assert.Equal(t, 1, countRune(result, '◆'), "current marker in %q", result)
}

func TestRenderTemp(t *testing.T) {
	assert.Contains(t, RenderTemp(36.6, sensor.Fahrenheit, DefaultBands), "98 °F")
}

func countRune(s string, r rune) int {
	n := 0
	for _, c := range s {
		if c == r {
			n++
		}
	}
	return n
}
