package plot

import (
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	labelGap = 6
	// approximate advance of one glyph at tickFontSize, in font size units
	glyphWidth = 0.75
)

// dateLabels draws the x tick labels rotated by tickRotation, each ending under its tick.
// The x axis itself carries blank labels; a rotated TickStyle collapses the go-chart canvas.
type dateLabels struct {
	ticks    []chart.Tick
	min, max float64
}

func newDateLabels(ticks []chart.Tick) dateLabels {
	l := dateLabels{ticks: ticks}
	if len(ticks) > 0 {
		l.min, l.max = ticks[0].Value, ticks[len(ticks)-1].Value
	}
	return l
}

func (l dateLabels) render(r chart.Renderer, canvasBox chart.Box, defaults chart.Style) {
	if l.max <= l.min {
		return
	}
	style := chart.Style{
		FontSize:  tickFontSize,
		FontColor: drawing.ColorBlack,
	}.InheritFrom(defaults)

	r.SetFont(style.GetFont())
	r.SetFontSize(style.GetFontSize())
	r.SetFontColor(style.GetFontColor())

	xrange := &chart.ContinuousRange{Min: l.min, Max: l.max, Domain: canvasBox.Width()}
	angle := chart.DegreesToRadians(tickRotation)
	cos, sin := math.Cos(angle), math.Sin(angle)

	for _, tick := range l.ticks {
		if tick.Label == "" {
			continue
		}
		r.ClearTextRotation()
		box := r.MeasureText(tick.Label)
		w, h := float64(box.Width()), box.Height()

		x := canvasBox.Left + xrange.Translate(tick.Value) - int(w*cos)
		y := canvasBox.Bottom + labelGap + h + int(w*sin)
		// negative is counter-clockwise on screen: the text rises towards its tick
		r.SetTextRotation(-angle)
		r.Text(tick.Label, x, y)
	}
	r.ClearTextRotation()
}

// labelRoom estimates the height the rotated labels need below the axis
func labelRoom(ticks []chart.Tick) int {
	longest := 0
	for _, tick := range ticks {
		longest = max(longest, len([]rune(tick.Label)))
	}
	if longest == 0 {
		return 0
	}
	width := float64(longest) * tickFontSize * glyphWidth
	return int(math.Ceil(width*math.Sin(chart.DegreesToRadians(tickRotation)))) + labelGap + tickFontSize
}

// blankLabels keeps tick positions but drops their text
func blankLabels(ticks []chart.Tick) []chart.Tick {
	blank := make([]chart.Tick, len(ticks))
	for i, tick := range ticks {
		blank[i] = chart.Tick{Value: tick.Value}
	}
	return blank
}
