package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/bizledger/cashbank/internal/models"
)

type adjustFlags struct {
	bankID  int64
	amount  string
	date    string
	remarks string
	key     string
}

func newAdjustCmd(c *cli) *cobra.Command {
	flags := &adjustFlags{}

	cmd := &cobra.Command{
		Use:   "adjust <add|reduce>",
		Short: "Add money to or reduce money from cash or a bank account",
		Long: `Adjust records one balance change. Without --bank the cash account is
adjusted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(args[0], time.Now())
			if err != nil {
				return err
			}

			ctx, cancel := c.context()
			defer cancel()

			result, err := c.api.Adjust(ctx, req, flags.key)
			if err != nil {
				return err
			}
			printEntry(result.Transaction, result.Replayed, c.currency)
			return nil
		},
	}

	cmd.Flags().Int64Var(&flags.bankID, "bank", 0, "bank account id (omit to adjust cash)")
	cmd.Flags().StringVar(&flags.amount, "amount", "", "amount, e.g. 500 or 99.50")
	cmd.Flags().StringVar(&flags.date, "date", "", "adjustment date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&flags.remarks, "remarks", "", "free text note")
	cmd.Flags().StringVar(&flags.key, "idempotency-key", "", "reuse a key to retry a submission safely")

	return cmd
}

func (f *adjustFlags) request(direction string, now time.Time) (models.AdjustmentRequest, error) {
	direction = strings.ToLower(direction)
	if direction != models.DirectionAdd && direction != models.DirectionReduce {
		return models.AdjustmentRequest{}, fmt.Errorf("direction must be add or reduce, got %q", direction)
	}
	amount, err := parseAmount(f.amount)
	if err != nil {
		return models.AdjustmentRequest{}, err
	}
	date, err := parseDateFlag(f.date, now)
	if err != nil {
		return models.AdjustmentRequest{}, err
	}

	req := models.AdjustmentRequest{
		Type:      direction,
		MoneyType: models.MoneyTypeCash,
		Date:      date,
		Amount:    amount,
		Remarks:   f.remarks,
	}
	if f.bankID > 0 {
		id := f.bankID
		req.MoneyType = models.MoneyTypeBank
		req.AccountID = &id
	}
	return req, nil
}

type transferFlags struct {
	from    string
	to      string
	amount  string
	date    string
	remarks string
	key     string
}

func newTransferCmd(c *cli) *cobra.Command {
	flags := &transferFlags{}

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move money between cash and bank accounts",
		Long: `Transfer moves money between two accounts. Endpoints are "cash" or
"bank:<id>", for example --from cash --to bank:2.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(time.Now())
			if err != nil {
				return err
			}

			ctx, cancel := c.context()
			defer cancel()

			result, err := c.api.Transfer(ctx, req, flags.key)
			if err != nil {
				return err
			}
			for _, t := range result.Transactions {
				printEntry(t, result.Replayed, c.currency)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.from, "from", "", `source: "cash" or "bank:<id>"`)
	cmd.Flags().StringVar(&flags.to, "to", "", `destination: "cash" or "bank:<id>"`)
	cmd.Flags().StringVar(&flags.amount, "amount", "", "amount to move")
	cmd.Flags().StringVar(&flags.date, "date", "", "transfer date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&flags.remarks, "remarks", "", "free text note")
	cmd.Flags().StringVar(&flags.key, "idempotency-key", "", "reuse a key to retry a submission safely")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func (f *transferFlags) request(now time.Time) (models.TransferRequest, error) {
	from, fromID, err := parseEndpoint(f.from)
	if err != nil {
		return models.TransferRequest{}, fmt.Errorf("--from: %w", err)
	}
	to, toID, err := parseEndpoint(f.to)
	if err != nil {
		return models.TransferRequest{}, fmt.Errorf("--to: %w", err)
	}
	amount, err := parseAmount(f.amount)
	if err != nil {
		return models.TransferRequest{}, err
	}
	date, err := parseDateFlag(f.date, now)
	if err != nil {
		return models.TransferRequest{}, err
	}

	return models.TransferRequest{
		From:          from,
		FromAccountID: fromID,
		To:            to,
		ToAccountID:   toID,
		Amount:        amount,
		Date:          date,
		Remarks:       f.remarks,
	}, nil
}

// parseEndpoint accepts "cash" or "bank:<id>".
func parseEndpoint(raw string) (string, *int64, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == models.EndpointCash {
		return models.EndpointCash, nil, nil
	}
	idPart, ok := strings.CutPrefix(raw, models.EndpointBank+":")
	if !ok {
		return "", nil, errors.New(`expected "cash" or "bank:<id>"`)
	}
	var id int64
	if _, err := fmt.Sscanf(idPart, "%d", &id); err != nil || id <= 0 {
		return "", nil, fmt.Errorf("invalid bank account id %q", idPart)
	}
	return models.EndpointBank, &id, nil
}

func printEntry(t models.LedgerTransaction, replayed bool, currency string) {
	verb := "Recorded"
	if replayed {
		verb = "Already recorded"
	}
	account := t.AccountName
	if account == "" && t.AccountID != nil {
		account = fmt.Sprintf("#%d", *t.AccountID)
	}
	pterm.Success.Printf("%s %s on %s: %s (%s)\n", verb, t.Type, dash(account), formatMoney(t.Amount, currency), t.Date)
}
