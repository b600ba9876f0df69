package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/bizledger/cashbank/internal/models"
)

func newAccountsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List, create and verify cash and bank accounts",
	}
	cmd.AddCommand(newAccountsListCmd(c))
	cmd.AddCommand(newAccountsCreateCmd(c))
	cmd.AddCommand(newAccountsVerifyCmd(c))
	return cmd
}

func newAccountsListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the cash account and all bank accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context()
			defer cancel()

			list, err := c.api.ListAccounts(ctx)
			if err != nil {
				return err
			}

			pterm.DefaultSection.Println("Accounts")
			pterm.DefaultTable.WithHasHeader().WithData(accountTable(list, c.currency)).Render()
			pterm.Info.Printf("Total balance: %s\n", formatMoney(list.Total(), c.currency))
			return nil
		},
	}
}

func accountTable(list *models.AccountList, currency string) pterm.TableData {
	data := pterm.TableData{{"ID", "Name", "Type", "Balance", "IFSC", "UPI"}}
	data = append(data, []string{
		strconv.FormatInt(list.Cash.ID, 10), list.Cash.Name, "Cash",
		formatMoney(list.Cash.Balance, currency), "-", "-",
	})
	for _, a := range list.BankAccounts {
		name := a.Name
		if a.IsMain {
			name += " (main)"
		}
		ifsc, upi := "", ""
		if a.BankDetails != nil {
			ifsc, upi = a.BankDetails.IFSCCode, a.BankDetails.UPIID
		}
		data = append(data, []string{
			strconv.FormatInt(a.ID, 10), name, "Bank",
			formatMoney(a.Balance, currency), dash(ifsc), dash(upi),
		})
	}
	return data
}

type createAccountFlags struct {
	name          string
	opening       string
	asOf          string
	accountNumber string
	ifsc          string
	branch        string
	holder        string
	upi           string
}

func newAccountsCreateCmd(c *cli) *cobra.Command {
	flags := &createAccountFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a bank account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(time.Now())
			if err != nil {
				return err
			}

			ctx, cancel := c.context()
			defer cancel()

			account, err := c.api.CreateBankAccount(ctx, req)
			if err != nil {
				return err
			}
			pterm.Success.Printf("Created %s (#%d) with balance %s\n",
				account.Name, account.ID, formatMoney(account.Balance, c.currency))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.name, "name", "", "account name")
	cmd.Flags().StringVar(&flags.opening, "opening", "0", "opening balance")
	cmd.Flags().StringVar(&flags.asOf, "as-of", "", "opening balance date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&flags.accountNumber, "account-number", "", "bank account number")
	cmd.Flags().StringVar(&flags.ifsc, "ifsc", "", "IFSC code")
	cmd.Flags().StringVar(&flags.branch, "branch", "", "branch name")
	cmd.Flags().StringVar(&flags.holder, "holder", "", "account holder name")
	cmd.Flags().StringVar(&flags.upi, "upi", "", "UPI ID")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func (f *createAccountFlags) request(now time.Time) (models.CreateBankAccountRequest, error) {
	opening, err := parseAmount(f.opening)
	if err != nil {
		return models.CreateBankAccountRequest{}, err
	}
	asOf, err := parseDateFlag(f.asOf, now)
	if err != nil {
		return models.CreateBankAccountRequest{}, err
	}

	return models.CreateBankAccountRequest{
		AccountName:          f.name,
		AccountType:          models.MoneyTypeBank,
		OpeningBalance:       opening,
		AsOfDate:             asOf,
		BankAccountNumber:    f.accountNumber,
		ConfirmAccountNumber: f.accountNumber,
		IFSCCode:             f.ifsc,
		BankBranchName:       f.branch,
		AccountHolderName:    f.holder,
		UPIID:                f.upi,
	}, nil
}

func newAccountsVerifyCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <account-id>",
		Short: "Check an account balance against its ledger entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid account id %q", args[0])
			}

			ctx, cancel := c.context()
			defer cancel()

			report, err := c.api.VerifyAccount(ctx, id)
			if err != nil {
				return err
			}
			if report.Consistent {
				pterm.Success.Printf("Account #%d is consistent: %s over %d entries\n",
					id, formatMoney(report.StoredBalance, c.currency), report.EntryCount)
				return nil
			}
			pterm.Warning.Printf("Account #%d drifted: stored %s, ledger %s\n",
				id, formatMoney(report.StoredBalance, c.currency), formatMoney(report.LedgerBalance, c.currency))
			return nil
		},
	}
}
