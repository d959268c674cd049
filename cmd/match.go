package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/ssrwatch"
	"github.com/etnz/ssrwatch/date"
	"github.com/etnz/ssrwatch/renderer"
	"github.com/google/subcommands"
)

type matchCmd struct {
	stocks string
	day    string
}

func (*matchCmd) Name() string     { return "match" }
func (*matchCmd) Synopsis() string { return "matches positions against a saved SSR list" }
func (*matchCmd) Usage() string {
	return `ssrwatch match [-stocks <file>] [-date <YYYY-MM-DD>] <list-file>

Applies the positions of the stocks file to a list previously saved with
'ssrwatch fetch' and prints the matching lines. Nothing is sent.

Without -stocks, the positions file of the configuration is used.
`
}

func (c *matchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.stocks, "stocks", "", "Positions file (default: the one of the configuration)")
	f.StringVar(&c.day, "date", "", "Day shown in the report (default: read from the list file name, or today)")
}

func (c *matchCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one list file is required.")
		f.Usage()
		return subcommands.ExitUsageError
	}
	listPath := f.Arg(0)

	stocks := c.stocks
	if stocks == "" {
		cfg, err := loadConfig(nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		stocks = cfg.StocksPath
	}
	positions, err := ssrwatch.LoadPositions(stocks)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	day, err := c.reportDate(listPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	doc, err := os.ReadFile(listPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read list: %v\n", err)
		return subcommands.ExitFailure
	}
	matches, err := ssrwatch.Match(doc, positions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	lines := make([]string, len(matches))
	for i, l := range matches {
		lines[i] = strings.TrimRight(l, "\r")
	}
	printMarkdown(stdout, renderer.RenderReport(&renderer.Report{
		Date:  day,
		Count: matches.Len(),
		Lines: lines,
	}))
	return subcommands.ExitSuccess
}

// reportDate uses -date, then the shorthalts<YYYYMMDD>.txt file name, then today.
func (c *matchCmd) reportDate(listPath string) (date.Date, error) {
	if c.day != "" {
		return date.Parse(c.day)
	}
	name := filepath.Base(listPath)
	if strings.HasPrefix(name, "shorthalts") && strings.HasSuffix(name, ".txt") {
		compact := strings.TrimSuffix(strings.TrimPrefix(name, "shorthalts"), ".txt")
		if d, err := date.ParseCompact(compact); err == nil {
			return d, nil
		}
	}
	return date.Today(), nil
}
