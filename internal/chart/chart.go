// Package chart turns aggregates into drawable geometry. It never draws:
// callers get coordinates, angles, colors and label text and render them on
// whatever surface they have.
package chart

// Surface is the drawable area in logical pixels.
type Surface struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Padding reserves room around the plot for axis labels.
type Padding struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// DefaultPadding leaves space for yen labels on the left and month labels
// below.
func DefaultPadding() Padding {
	return Padding{Top: 24, Right: 24, Bottom: 44, Left: 64}
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bottom returns the y coordinate of the lower edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Palette is applied to pie slices by position, wrapping around.
var Palette = []string{
	"#1d4ed8",
	"#0ea5e9",
	"#22c55e",
	"#d97706",
	"#d946ef",
	"#ef4444",
	"#10b981",
	"#8b5cf6",
	"#f97316",
}

// Empty-state and label text.
const (
	PieEmptyMessage   = "データがありません。"
	PieSubLabel       = "合計"
	TrendEmptyMessage = "直近6か月のデータがありません。"
)
