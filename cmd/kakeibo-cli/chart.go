package main

import (
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"

	"kakeibo/internal/chart"
	"kakeibo/internal/core"
	"kakeibo/internal/services"
)

const barWidth = 30

func chartCmd(open opener) *cobra.Command {
	var f viewFlags

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Draw the category breakdown and the six-month trend",
		Args:  cobra.NoArgs,
		RunE: withApp(open, func(cmd *cobra.Command, _ []string, a *app) error {
			criteria, err := f.criteria()
			if err != nil {
				return err
			}
			v := a.tracker.View(cmd.Context(), criteria, services.DefaultSurfaces())
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, titleStyle.Render("カテゴリ別"))
			renderPie(out, v.Pie)
			fmt.Fprintln(out)
			fmt.Fprintln(out, titleStyle.Render("月別推移"))
			renderTrend(out, v.TrendChart)
			return nil
		}),
	}
	f.register(cmd)
	return cmd
}

// renderPie prints one bar per slice, sized by its share of the circle.
func renderPie(w io.Writer, pie chart.PieChart) {
	if pie.Empty {
		fmt.Fprintln(w, subtleStyle.Render(pie.Message))
		return
	}
	for _, s := range pie.Slices {
		share := s.Sweep() / 360
		fmt.Fprintf(w, "%-6s %s %5.1f%% %s\n",
			s.Category,
			swatch(s.Color, int(math.Round(share*barWidth))),
			share*100,
			core.FormatYen(s.Amount))
	}
	fmt.Fprintf(w, "%s %s\n", pie.SubLabel, pie.CenterLabel)
}

// renderTrend prints one bar per month scaled to the chart maximum.
func renderTrend(w io.Writer, trend chart.TrendChart) {
	if trend.Empty {
		for _, l := range trend.XLabels {
			fmt.Fprintf(w, "%s ", l.Text)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, subtleStyle.Render(trend.Message))
		return
	}
	for _, p := range trend.Points {
		width := 0
		if trend.ScaleMax > 0 {
			width = int(math.Round(float64(p.Value) / trend.ScaleMax * barWidth))
		}
		fmt.Fprintf(w, "%-4s %s %s\n", p.Label, swatch(chart.Palette[0], width), core.FormatYen(p.Value))
	}
}
