package chart

import (
	"math"

	"kakeibo/internal/core"
)

const (
	// StartAngle is 12 o'clock, in degrees clockwise from 3 o'clock.
	StartAngle = -90.0

	pieMargin     = 12
	donutRatio    = 0.6
	placeholderOn = 6
)

// Slice is one wedge of the pie. Angles are in degrees.
type Slice struct {
	Category   core.Category `json:"category"`
	Amount     int64         `json:"amount"`
	StartAngle float64       `json:"startAngle"`
	EndAngle   float64       `json:"endAngle"`
	Color      string        `json:"color"`
}

// Sweep returns the angular width of the slice in degrees.
func (s Slice) Sweep() float64 { return s.EndAngle - s.StartAngle }

// StartRadians and EndRadians convert for canvas-style APIs.
func (s Slice) StartRadians() float64 { return s.StartAngle * math.Pi / 180 }

func (s Slice) EndRadians() float64 { return s.EndAngle * math.Pi / 180 }

// Ring is a dashed circle drawn in place of the pie when there is no data.
type Ring struct {
	Center Point     `json:"center"`
	Radius float64   `json:"radius"`
	Dash   []float64 `json:"dash"`
}

// PieChart describes a donut chart of category totals.
type PieChart struct {
	Empty       bool    `json:"empty"`
	Message     string  `json:"message,omitempty"`
	Center      Point   `json:"center"`
	Radius      float64 `json:"radius"`
	InnerRadius float64 `json:"innerRadius"`
	Placeholder *Ring   `json:"placeholder,omitempty"`
	Slices      []Slice `json:"slices"`
	Total       int64   `json:"total"`
	CenterLabel string  `json:"centerLabel,omitempty"`
	SubLabel    string  `json:"subLabel,omitempty"`
}

// Pie lays out totals clockwise from 12 o'clock in the order given. Entries
// with a zero or negative amount are skipped. The last slice always ends at
// exactly StartAngle+360 so rounding never leaves a gap.
func Pie(totals []core.CategoryAmount, surface Surface) PieChart {
	center := Point{X: surface.Width / 2, Y: surface.Height / 2}
	radius := math.Max(math.Min(surface.Width, surface.Height)/2-pieMargin, 0)

	included := make([]core.CategoryAmount, 0, len(totals))
	var total int64
	for _, t := range totals {
		if t.Amount > 0 {
			included = append(included, t)
			total += t.Amount
		}
	}

	pie := PieChart{
		Center: center,
		Radius: radius,
		Slices: []Slice{},
	}
	if total == 0 {
		pie.Empty = true
		pie.Message = PieEmptyMessage
		pie.Placeholder = &Ring{Center: center, Radius: radius, Dash: []float64{placeholderOn, placeholderOn}}
		return pie
	}

	pie.Total = total
	pie.InnerRadius = radius * donutRatio
	pie.CenterLabel = core.FormatYen(total)
	pie.SubLabel = PieSubLabel

	start := StartAngle
	for i, t := range included {
		end := start + float64(t.Amount)/float64(total)*360
		if i == len(included)-1 {
			end = StartAngle + 360
		}
		pie.Slices = append(pie.Slices, Slice{
			Category:   t.Category,
			Amount:     t.Amount,
			StartAngle: start,
			EndAngle:   end,
			Color:      Palette[i%len(Palette)],
		})
		start = end
	}
	return pie
}
