package plot

import (
	"github.com/wcharczuk/go-chart/v2"
)

type point struct {
	x, y float64
}

// segment is a run of consecutive non-missing readings
type segment []point

func (s segment) Len() int {
	return len(s)
}

func (s segment) GetValues(index int) (float64, float64) {
	return s[index].x, s[index].y
}

// sensorSeries is a line series over categorical x positions that breaks at missing values
type sensorSeries struct {
	name     string
	style    chart.Style
	points   segment
	segments []segment
}

func newSensorSeries(name string, style chart.Style) *sensorSeries {
	return &sensorSeries{name: name, style: style}
}

// add appends a value at x; ok=false starts a new segment
func (s *sensorSeries) add(x, y float64, ok bool) {
	if !ok {
		if n := len(s.segments); n > 0 && len(s.segments[n-1]) > 0 {
			s.segments = append(s.segments, nil)
		}
		return
	}
	if len(s.segments) == 0 {
		s.segments = append(s.segments, nil)
	}
	p := point{x: x, y: y}
	s.points = append(s.points, p)
	last := len(s.segments) - 1
	s.segments[last] = append(s.segments[last], p)
}

func (s *sensorSeries) GetName() string {
	return s.name
}

func (s *sensorSeries) GetYAxis() chart.YAxisType {
	return chart.YAxisSecondary
}

func (s *sensorSeries) GetStyle() chart.Style {
	return s.style
}

// Validate accepts empty series so a sensor without readings still gets a legend entry
func (s *sensorSeries) Validate() error {
	return nil
}

func (s *sensorSeries) Len() int {
	return len(s.points)
}

func (s *sensorSeries) GetValues(index int) (float64, float64) {
	return s.points.GetValues(index)
}

func (s *sensorSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	style := s.style.InheritFrom(defaults)
	for _, seg := range s.segments {
		if len(seg) == 0 {
			continue
		}
		chart.Draw.LineSeries(r, canvasBox, xrange, yrange, style, seg)
	}
}
