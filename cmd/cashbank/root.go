package main

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bizledger/cashbank/internal/client"
)

// cli carries what every subcommand needs once flags are parsed.
type cli struct {
	v        *viper.Viper
	api      *client.Client
	currency string
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "cashbank",
		Short:         "cashbank manages cash and bank balances of a business",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("server", "http://localhost:8080", "ledger server base URL")
	flags.String("token", "", "bearer token (or CASHBANK_TOKEN)")
	flags.String("currency", "INR", "currency used when printing amounts")
	flags.Duration("timeout", 30*time.Second, "request timeout")

	c.v.SetEnvPrefix("CASHBANK")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()
	for _, name := range []string{"server", "token", "currency", "timeout"} {
		_ = c.v.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(newAccountsCmd(c))
	rootCmd.AddCommand(newAdjustCmd(c))
	rootCmd.AddCommand(newTransferCmd(c))
	rootCmd.AddCommand(newDashboardCmd(c))

	return rootCmd
}

func (c *cli) init() error {
	c.currency = strings.ToUpper(c.v.GetString("currency"))
	c.api = client.New(c.v.GetString("server"), client.StaticToken(c.v.GetString("token")))
	return nil
}

func (c *cli) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.v.GetDuration("timeout"))
}
