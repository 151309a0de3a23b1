package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kakeibo/internal/chart"
	"kakeibo/internal/core"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the expense categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for i, c := range core.Categories() {
				fmt.Fprintf(out, "%s %s\n", swatch(chart.Palette[i%len(chart.Palette)], 2), c)
			}
			return nil
		},
	}
}
