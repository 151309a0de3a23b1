package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"kakeibo/internal/core"
	"kakeibo/internal/ledger"
)

func addCmd(open opener) *cobra.Command {
	var c ledger.Candidate

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Long: `Record one expense. The date defaults to today.

Example:
  kakeibo add --amount 1500 --category 食費 --memo ランチ`,
		Args: cobra.NoArgs,
		RunE: withApp(open, func(cmd *cobra.Command, _ []string, a *app) error {
			if !cmd.Flags().Changed("date") {
				c.Date = core.DateOf(time.Now()).String()
			}

			e, err := a.tracker.AddExpense(cmd.Context(), c)
			var verr *ledger.ValidationError
			if errors.As(err, &verr) {
				msg := verr.Message
				if verr.Suggestion != "" {
					msg += fmt.Sprintf(" (もしかして: %s)", verr.Suggestion)
				}
				return errors.New(msg)
			}
			if err != nil && !errors.Is(err, ledger.ErrPersist) {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s %s %s\n",
				successStyle.Render("✓ 登録しました"),
				e.DisplayDate(),
				e.Category,
				amountStyle.Render(core.FormatYen(e.Amount.Int64())))
			fmt.Fprintln(out, subtleStyle.Render("ID: "+e.ID))

			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), warningStyle.Render(ledger.PersistWarning))
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&c.Date, "date", "d", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&c.Amount, "amount", "a", "", "amount in whole yen")
	cmd.Flags().StringVarP(&c.Category, "category", "c", "", "category label or English alias")
	cmd.Flags().StringVarP(&c.Memo, "memo", "m", "", "optional memo, up to 100 characters")
	return cmd
}
