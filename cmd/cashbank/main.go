package main

import (
	"os"

	"github.com/pterm/pterm"
)

func main() {
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " ERROR ",
		Style: pterm.NewStyle(pterm.BgLightRed, pterm.FgBlack),
	}

	if err := newRootCmd().Execute(); err != nil {
		pterm.Error.Println(describeError(err))
		os.Exit(1)
	}
}
