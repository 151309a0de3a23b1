package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"kakeibo/internal/services"
	"kakeibo/internal/view"
)

// viewFlags are the filter flags shared by list, summary and chart.
type viewFlags struct {
	period   string
	category string
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.period, "period", "p", "all", "period filter (all, week, month)")
	cmd.Flags().StringVarP(&f.category, "category", "c", "all", "category filter (all, label or English alias)")
}

func (f *viewFlags) criteria() (view.Criteria, error) {
	return view.ParseCriteria(f.period, f.category)
}

func listCmd(open opener) *cobra.Command {
	var f viewFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: withApp(open, func(cmd *cobra.Command, _ []string, a *app) error {
			criteria, err := f.criteria()
			if err != nil {
				return err
			}
			v := a.tracker.View(cmd.Context(), criteria, services.DefaultSurfaces())
			out := cmd.OutOrStdout()

			if len(v.Rows) == 0 {
				fmt.Fprintln(out, subtleStyle.Render(v.EmptyMessage))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				headerStyle.Render("日付"),
				headerStyle.Render("カテゴリ"),
				headerStyle.Render("金額"),
				headerStyle.Render("メモ"),
				headerStyle.Render("ID"))
			for _, r := range v.Rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					r.DisplayDate, r.Category, r.AmountText, r.DisplayMemo, subtleStyle.Render(r.ID))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%s %s (%d件)\n", titleStyle.Render("合計"), amountStyle.Render(v.FilteredTotalText), len(v.Rows))
			return nil
		}),
	}
	f.register(cmd)
	return cmd
}
