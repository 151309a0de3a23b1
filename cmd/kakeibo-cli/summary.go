package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"kakeibo/internal/services"
)

func summaryCmd(open opener) *cobra.Command {
	var f viewFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the month header and totals by category",
		Args:  cobra.NoArgs,
		RunE: withApp(open, func(cmd *cobra.Command, _ []string, a *app) error {
			criteria, err := f.criteria()
			if err != nil {
				return err
			}
			v := a.tracker.View(cmd.Context(), criteria, services.DefaultSurfaces())
			out := cmd.OutOrStdout()

			header := fmt.Sprintf("%s の支出  %s", v.Header.MonthLabel, v.Header.MonthTotalText)
			fmt.Fprintln(out, boxStyle.Render(titleStyle.Render(header)))

			if len(v.Summary) == 0 {
				fmt.Fprintln(out, subtleStyle.Render(v.SummaryEmptyMessage))
				return nil
			}

			var b strings.Builder
			w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
			for _, s := range v.Summary {
				fmt.Fprintf(w, "%s\t%s\n", s.Category, s.AmountText)
			}
			fmt.Fprintf(w, "%s\t%s\n", titleStyle.Render("合計"), v.FilteredTotalText)
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprint(out, b.String())
			return nil
		}),
	}
	f.register(cmd)
	return cmd
}
