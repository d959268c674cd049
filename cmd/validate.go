package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/ssrwatch"
	"github.com/google/subcommands"
)

type validateCmd struct {
	stocks string
}

func (*validateCmd) Name() string     { return "validate" }
func (*validateCmd) Synopsis() string { return "checks the configuration, the environment and the positions file" }
func (*validateCmd) Usage() string {
	return `ssrwatch validate [-stocks <file>]

Runs the checks 'check' performs before downloading anything: configuration,
user, required commands and positions file. Nothing is downloaded or sent.
`
}

func (c *validateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.stocks, "stocks", "", "Override the positions file")
}

func (c *validateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig(func(cfg *ssrwatch.Config) error {
		if c.stocks == "" {
			return nil
		}
		abs, err := filepath.Abs(c.stocks)
		if err != nil {
			return err
		}
		cfg.StocksPath = abs
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	positions, err := ssrwatch.Preflight(ssrwatch.PreflightInput{
		UID:              geteuid(),
		RequiredCommands: cfg.RequiredCommands(),
		StocksPath:       cfg.StocksPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "OK: %d positions in %s, notifications to %s (%s)\n", len(positions), cfg.StocksPath, cfg.MailTo, cfg.SendStyle)
	return subcommands.ExitSuccess
}
