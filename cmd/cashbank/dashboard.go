package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/bizledger/cashbank/internal/client"
	"github.com/bizledger/cashbank/internal/models"
)

func newDashboardCmd(c *cli) *cobra.Command {
	var rangeName, start, end string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show balances and transactions for a period",
		Long: `Dashboard shows every account balance and the transactions of a period.
Use --range with a name such as "Today" or "This Month", or --start/--end
for a custom range. Without either the server default applies.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := client.DashboardQuery{Range: rangeName}
			var err error
			if q.Start, err = optionalDateFlag(start); err != nil {
				return err
			}
			if q.End, err = optionalDateFlag(end); err != nil {
				return err
			}

			ctx, cancel := c.context()
			defer cancel()

			summary, err := c.api.Dashboard(ctx, q)
			if err != nil {
				return err
			}
			renderDashboard(summary, c.currency)
			return nil
		},
	}

	cmd.Flags().StringVar(&rangeName, "range", "", `named range, e.g. "Last 7 Days"`)
	cmd.Flags().StringVar(&start, "start", "", "custom range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "custom range end (YYYY-MM-DD)")

	return cmd
}

func renderDashboard(s *models.DashboardSummary, currency string) {
	title := s.Range.Name
	if s.Range.Bounded() {
		title += " (" + s.Range.Start.String() + " to " + s.Range.End.String() + ")"
	}
	pterm.DefaultSection.Println(title)

	list := &models.AccountList{Cash: s.Cash, BankAccounts: s.BankAccounts}
	pterm.DefaultTable.WithHasHeader().WithData(accountTable(list, currency)).Render()
	pterm.Info.Printf("Total balance: %s\n", formatMoney(s.TotalBalance, currency))
	if !s.UnlinkedTransactions.IsZero() {
		pterm.Info.Printf("Unlinked transactions: %s\n", formatMoney(s.UnlinkedTransactions, currency))
	}

	pterm.DefaultTable.WithHasHeader().WithData(transactionTable(s, currency)).Render()
}

func transactionTable(s *models.DashboardSummary, currency string) pterm.TableData {
	data := pterm.TableData{{"Date", "Type", "Name", "Mode", "Paid", "Received", "Balance", "Remarks"}}
	for _, row := range s.Transactions {
		balance := "-"
		if row.Balance != nil {
			balance = formatMoney(*row.Balance, currency)
		}
		data = append(data, []string{
			row.Date.String(),
			string(row.Type),
			row.Name,
			row.Mode,
			amountCell(row.Paid, currency),
			amountCell(row.Received, currency),
			balance,
			dash(row.Remarks),
		})
	}
	data = append(data, []string{
		"", "", "Total", "",
		formatMoney(s.Totals.Paid, currency),
		formatMoney(s.Totals.Received, currency),
		formatMoney(s.Totals.Balance, currency),
		"",
	})
	return data
}
