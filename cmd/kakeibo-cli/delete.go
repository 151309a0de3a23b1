package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"kakeibo/internal/ledger"
)

// ConfirmDeletePrompt is asked before removing an expense.
const ConfirmDeletePrompt = "この支出を削除しますか？"

func deleteCmd(open opener) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense by ID",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(open, func(cmd *cobra.Command, args []string, a *app) error {
			id := strings.TrimSpace(args[0])
			out := cmd.OutOrStdout()

			if !yes {
				ok, err := confirm(cmd.InOrStdin(), out, ConfirmDeletePrompt)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, subtleStyle.Render("キャンセルしました。"))
					return nil
				}
			}

			removed, err := a.tracker.DeleteExpense(cmd.Context(), id)
			if !removed {
				return fmt.Errorf("支出が見つかりません: %s", id)
			}
			fmt.Fprintln(out, successStyle.Render("✓ 削除しました"), id)
			if errors.Is(err, ledger.ErrPersist) {
				fmt.Fprintln(cmd.ErrOrStderr(), warningStyle.Render(ledger.PersistWarning))
				return nil
			}
			return err
		}),
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}

// confirm asks prompt and reads a yes/no answer; anything but y/yes is no.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "はい":
		return true, nil
	default:
		return false, nil
	}
}
