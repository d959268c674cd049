package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/ssrwatch"
	"github.com/etnz/ssrwatch/date"
	"github.com/etnz/ssrwatch/mailer"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

type checkCmd struct {
	dryRun    bool
	mailTo    string
	sendStyle string
	stocks    string
	day       string
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "checks positions against today's NASDAQ SSR list" }
func (*checkCmd) Usage() string {
	return `ssrwatch check [-dry-run] [-mail-to <addr>] [-send-style attachment|body] [-stocks <file>] [-date <YYYY-MM-DD>]

Downloads today's NASDAQ short sale restriction list, looks for every ticker
of the positions file and sends an email if any of them is on the list.

Nothing is sent when no position matches. When the list cannot be downloaded,
or NASDAQ refused the download, a failure email is sent instead and the
command exits with a non-zero status.

Meant to be run daily before market open, from a systemd timer or cron.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dryRun, "dry-run", false, "Print the notifications instead of sending them")
	f.StringVar(&c.mailTo, "mail-to", "", "Override the recipient address")
	f.StringVar(&c.sendStyle, "send-style", "", "Override the send style: attachment or body")
	f.StringVar(&c.stocks, "stocks", "", "Override the positions file")
	f.StringVar(&c.day, "date", "", "Check the list of another day (default today, in the configured time zone)")
}

func (c *checkCmd) override(cfg *ssrwatch.Config) error {
	if c.mailTo != "" {
		cfg.MailTo = c.mailTo
	}
	if c.sendStyle != "" {
		style, err := ssrwatch.ParseSendStyle(c.sendStyle)
		if err != nil {
			return err
		}
		cfg.SendStyle = style
	}
	if c.stocks != "" {
		abs, err := filepath.Abs(c.stocks)
		if err != nil {
			return err
		}
		cfg.StocksPath = abs
	}
	return nil
}

func (c *checkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig(c.override)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeLog()

	day, err := c.runDate(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("invalid date")
		return subcommands.ExitUsageError
	}
	if day.IsWeekend() {
		logger.Warn().Str("date", day.String()).Msg("NASDAQ publishes no list on weekends")
	}

	res, err := c.check(ctx, cfg, day, logger)

	if cfg.PushgatewayURL != "" {
		m := ssrwatch.NewMetrics()
		m.Observe(res, err, time.Now())
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if perr := m.Push(pushCtx, cfg.PushgatewayURL); perr != nil {
			logger.Warn().Err(perr).Msg("metrics not pushed")
		}
	}

	if err != nil {
		logger.Error().Err(err).Str("reason", ssrwatch.Reason(err)).Msg("check failed")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// runDate returns -date, or today in the configured time zone. Future days are rejected.
func (c *checkCmd) runDate(cfg *ssrwatch.Config) (date.Date, error) {
	loc, err := cfg.Location()
	if err != nil {
		return date.Date{}, err
	}
	today := date.TodayIn(loc)
	if c.day == "" {
		return today, nil
	}
	day, err := date.Parse(c.day)
	if err != nil {
		return date.Date{}, err
	}
	if today.Before(day) {
		return date.Date{}, fmt.Errorf("date %s is in the future, today is %s", day, today)
	}
	return day, nil
}

// check runs preflight and the pipeline. The run directory is removed on every return path.
func (c *checkCmd) check(ctx context.Context, cfg *ssrwatch.Config, day date.Date, logger zerolog.Logger) (ssrwatch.Result, error) {
	required := cfg.RequiredCommands()
	if c.dryRun {
		required = nil
	}
	positions, err := ssrwatch.Preflight(ssrwatch.PreflightInput{
		UID:              geteuid(),
		RequiredCommands: required,
		StocksPath:       cfg.StocksPath,
	})
	if err != nil {
		return ssrwatch.Result{Date: day}, err
	}
	logger.Debug().Strs("positions", positions).Msg("preflight ok")

	run, err := ssrwatch.NewRun(cfg.WorkDir, day)
	if err != nil {
		return ssrwatch.Result{Date: day}, err
	}
	defer func() {
		if err := run.Close(); err != nil {
			logger.Warn().Err(err).Msg("cleanup failed")
		}
	}()

	var notifier ssrwatch.Notifier = printNotifier{w: stdout}
	if !c.dryRun {
		notifier = mailer.New(cfg.MailFrom, cfg.MailTo, newTransport(cfg), logger)
	}
	p := &ssrwatch.Pipeline{
		Style:    cfg.SendStyle,
		Fetcher:  newFetcher(cfg, logger),
		Notifier: notifier,
		Logger:   logger,
	}
	return p.Run(ctx, run, positions)
}
