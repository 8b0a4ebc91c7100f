package plot

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/bbernstein/airquality/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/wcharczuk/go-chart/v2"
)

const (
	defaultWidth      = 1280
	defaultHeight     = 720
	defaultMaxXLabels = 48
	yTickTarget       = 8
	tickFontSize      = 6
	tickRotation      = 45.0
)

type Options struct {
	Width  int
	Height int
	// MaxXLabels caps how many date labels are printed; ticks beyond it are left blank
	MaxXLabels int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = defaultWidth
	}
	if o.Height <= 0 {
		o.Height = defaultHeight
	}
	if o.MaxXLabels <= 0 {
		o.MaxXLabels = defaultMaxXLabels
	}
	return o
}

// Renderer draws the readings of every sensor of a station as a PNG
type Renderer struct {
	fetcher models.Fetcher
	opts    Options
}

func NewRenderer(fetcher models.Fetcher, opts Options) *Renderer {
	return &Renderer{
		fetcher: fetcher,
		opts:    opts.withDefaults(),
	}
}

// Render expands the station if it has not been expanded yet and returns the plot as PNG bytes
func (r *Renderer) Render(ctx context.Context, station *models.Station) ([]byte, error) {
	if err := station.Expand(ctx, r.fetcher); err != nil {
		return nil, err
	}

	graph := NewChart(station, r.opts)

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering chart for station %d: %w", station.ID(), err)
	}

	log.Debug().
		Int("station_id", station.ID()).
		Int("series", len(graph.Series)).
		Int("bytes", buf.Len()).
		Msg("Chart rendered")
	return buf.Bytes(), nil
}

// NewChart builds one line per sensor. Dates are categories in first-seen order
// across all sensors, so the x position of a date is shared between sensors.
func NewChart(station *models.Station, opts Options) *chart.Chart {
	opts = opts.withDefaults()

	categories := make(map[string]int)
	var dates []string
	var series []chart.Series
	yMin, yMax := math.Inf(1), math.Inf(-1)

	for i, sensor := range station.Sensors() {
		s := newSensorSeries(sensor.ParamFormula(), chart.Style{
			StrokeColor: chart.GetDefaultColor(i),
			StrokeWidth: 1.5,
		})
		for _, reading := range sensor.Readings() {
			x, seen := categories[reading.Date()]
			if !seen {
				x = len(dates)
				categories[reading.Date()] = x
				dates = append(dates, reading.Date())
			}
			value, ok := reading.Value()
			s.add(float64(x), value, ok)
			if ok {
				yMin = math.Min(yMin, value)
				yMax = math.Max(yMax, value)
			}
		}
		series = append(series, s)
	}

	xTicks := dateTicks(dates, opts.MaxXLabels)
	yTicks := valueTicks(yMin, yMax, yTickTarget)
	labels := newDateLabels(xTicks)

	graph := &chart.Chart{
		Title:  station.Name(),
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20 + labelRoom(xTicks)},
		},
		XAxis: chart.XAxis{
			Ticks:     blankLabels(xTicks),
			TickStyle: chart.Style{FontSize: tickFontSize},
		},
		// series are drawn against the secondary axis, which go-chart puts on the left
		YAxis: chart.YAxis{
			Style: chart.Style{Hidden: true},
			Ticks: yTicks,
		},
		YAxisSecondary: chart.YAxis{
			AxisType: chart.YAxisSecondary,
			Ticks:    yTicks,
		},
		Series: series,
	}
	if len(series) == 0 {
		// go-chart refuses to render without a series; draw empty axes instead
		graph.Series = []chart.Series{newSensorSeries("", chart.Style{})}
		graph.Elements = []chart.Renderable{labels.render}
		return graph
	}
	graph.Elements = []chart.Renderable{labels.render, chart.Legend(graph)}
	return graph
}

// dateTicks places one tick per category. Blank ticks half a step outside the
// first and last date keep the range non-degenerate and leave a margin.
func dateTicks(dates []string, maxLabels int) []chart.Tick {
	last := math.Max(float64(len(dates)-1), 0)
	ticks := make([]chart.Tick, 0, len(dates)+2)
	ticks = append(ticks, chart.Tick{Value: -0.5})

	every := 1
	if len(dates) > maxLabels {
		every = int(math.Ceil(float64(len(dates)) / float64(maxLabels)))
	}
	for i, date := range dates {
		label := ""
		if i%every == 0 {
			label = date
		}
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: label})
	}

	return append(ticks, chart.Tick{Value: last + 0.5})
}

// valueTicks returns round ticks covering [lo, hi]. With no data the axis spans 0..1,
// and a flat series is widened so the range never collapses.
func valueTicks(lo, hi float64, target int) []chart.Tick {
	if math.IsInf(lo, 1) || math.IsInf(hi, -1) {
		lo, hi = 0, 1
	}
	if hi == lo {
		pad := math.Max(math.Abs(lo)*0.1, 1)
		lo, hi = lo-pad, hi+pad
	}

	step := niceStep((hi - lo) / float64(target))
	start := math.Floor(lo/step) * step
	end := math.Ceil(hi/step) * step
	decimals := int(math.Max(0, -math.Floor(math.Log10(step))))

	var ticks []chart.Tick
	for i := 0; ; i++ {
		v := start + float64(i)*step
		if v > end+step/2 {
			break
		}
		ticks = append(ticks, chart.Tick{Value: v, Label: strconv.FormatFloat(v, 'f', decimals, 64)})
	}
	return ticks
}

func niceStep(raw float64) float64 {
	exp := math.Floor(math.Log10(raw))
	base := math.Pow(10, exp)
	switch f := raw / base; {
	case f <= 1:
		return base
	case f <= 2:
		return 2 * base
	case f <= 5:
		return 5 * base
	default:
		return 10 * base
	}
}
