package chart

import (
	"math"

	"kakeibo/internal/core"
)

const (
	trendSteps    = 4
	markerRadius  = 4
	xLabelSpacing = 8
)

// GridLine is a horizontal rule with its value label at the left edge.
type GridLine struct {
	From  Point   `json:"from"`
	To    Point   `json:"to"`
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// TrendPoint is one month plotted on the line.
type TrendPoint struct {
	Point
	Value int64  `json:"value"`
	Label string `json:"label"`
}

// AxisLabel is text anchored at its top center.
type AxisLabel struct {
	Point
	Text string `json:"text"`
}

// TrendChart describes the monthly line chart.
type TrendChart struct {
	Empty        bool         `json:"empty"`
	Message      string       `json:"message,omitempty"`
	Plot         Rect         `json:"plot"`
	ScaleMax     float64      `json:"scaleMax"`
	GridLines    []GridLine   `json:"gridLines"`
	Points       []TrendPoint `json:"points"`
	Area         []Point      `json:"area"`
	Line         []Point      `json:"line"`
	MarkerRadius float64      `json:"markerRadius"`
	XLabels      []AxisLabel  `json:"xLabels"`
}

// Trend lays out one point per month, left to right. With no positive value
// the chart is empty: only the message and the month labels are emitted.
func Trend(series []core.MonthTotal, surface Surface, pad Padding) TrendChart {
	plot := Rect{
		X:      pad.Left,
		Y:      pad.Top,
		Width:  math.Max(surface.Width-pad.Left-pad.Right, 0),
		Height: math.Max(surface.Height-pad.Top-pad.Bottom, 0),
	}

	var maxValue int64
	for _, m := range series {
		maxValue = max(maxValue, m.Total)
	}
	scaleMax := math.Max(float64(maxValue), 1)

	xStep := 0.0
	if len(series) > 1 {
		xStep = plot.Width / float64(len(series)-1)
	}

	chart := TrendChart{
		Plot:      plot,
		ScaleMax:  scaleMax,
		GridLines: []GridLine{},
		Points:    []TrendPoint{},
		Area:      []Point{},
		Line:      []Point{},
		XLabels:   make([]AxisLabel, 0, len(series)),
	}
	for i, m := range series {
		chart.XLabels = append(chart.XLabels, AxisLabel{
			Point: Point{X: plot.X + xStep*float64(i), Y: plot.Bottom() + xLabelSpacing},
			Text:  m.Label,
		})
	}

	if maxValue <= 0 {
		chart.Empty = true
		chart.Message = TrendEmptyMessage
		return chart
	}

	for i := 0; i <= trendSteps; i++ {
		y := plot.Y + plot.Height/trendSteps*float64(i)
		value := scaleMax * (1 - float64(i)/trendSteps)
		chart.GridLines = append(chart.GridLines, GridLine{
			From:  Point{X: plot.X, Y: y},
			To:    Point{X: plot.X + plot.Width, Y: y},
			Value: value,
			Label: core.FormatYen(int64(math.Round(value))),
		})
	}

	for i, m := range series {
		p := Point{
			X: plot.X + xStep*float64(i),
			Y: plot.Y + plot.Height - float64(m.Total)/scaleMax*plot.Height,
		}
		chart.Points = append(chart.Points, TrendPoint{Point: p, Value: m.Total, Label: m.Label})
		chart.Line = append(chart.Line, p)
	}

	first, last := chart.Line[0], chart.Line[len(chart.Line)-1]
	chart.Area = append(chart.Area, Point{X: first.X, Y: plot.Bottom()})
	chart.Area = append(chart.Area, chart.Line...)
	chart.Area = append(chart.Area, Point{X: last.X, Y: plot.Bottom()})
	chart.MarkerRadius = markerRadius

	return chart
}
