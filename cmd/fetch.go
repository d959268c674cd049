package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/etnz/ssrwatch"
	"github.com/etnz/ssrwatch/date"
	"github.com/etnz/ssrwatch/nasdaq"
	"github.com/google/subcommands"
)

type fetchCmd struct {
	day    string
	output string
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "downloads a NASDAQ SSR list" }
func (*fetchCmd) Usage() string {
	return `ssrwatch fetch [-date <YYYY-MM-DD>] [-o <file>]

Downloads the NASDAQ short sale restriction list of a day, the same way
'check' does, and writes it to stdout or to a file.

Upstream overrides of the configuration file are honored when it exists.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.day, "date", "", "Day of the list (default today, in New York)")
	f.StringVar(&c.output, "o", "", "Write the list to this file instead of stdout")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logger := toolLogger()

	// The configuration is optional here.
	cfg, err := ssrwatch.LoadConfig(*configPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = &ssrwatch.Config{}, nil
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	cfg.ApplyDefaults()

	var day date.Date
	if c.day != "" {
		day, err = date.Parse(c.day)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	} else {
		loc, err := cfg.Location()
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		day = date.TodayIn(loc)
	}

	client := nasdaq.New(logger, nasdaq.WithURLs(cfg.Upstream.PrimeURL, cfg.Upstream.BaseURL))
	if err := client.Prime(ctx); err != nil {
		logger.Warn().Err(err).Msg("session priming failed, downloading anyway")
	}
	doc, err := client.Download(ctx, day)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if ssrwatch.IsSoftBlocked(doc) {
		fmt.Fprintln(stderr, "Warning: NASDAQ returned a web page instead of the list, the download was likely rate-limited.")
	}
	if c.output == "" {
		if _, err := stdout.Write(doc); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(c.output, doc, 0644); err != nil {
		fmt.Fprintf(stderr, "Error: cannot write list: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stderr, "%s written to %s (%d bytes)\n", client.ListURL(day), c.output, len(doc))
	return subcommands.ExitSuccess
}
