// Package cmd implements the CLI application that checks positions against the NASDAQ SSR list.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/ssrwatch"
	"github.com/etnz/ssrwatch/mailer"
	"github.com/etnz/ssrwatch/nasdaq"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&checkCmd{}, "")
	c.Register(&initCmd{}, "setup")
	c.Register(&validateCmd{}, "setup")
	c.Register(&fetchCmd{}, "tools")
	c.Register(&matchCmd{}, "tools")
	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configPath = flag.String("config", ssrwatch.DefaultConfigPath(), "Path to the YAML configuration file")
var verbose = flag.Bool("v", false, "Log debug messages")

// stdout receives reports; replaced in tests.
var stdout io.Writer = os.Stdout

// stderr receives the messages of the tools commands.
var stderr io.Writer = os.Stderr

// geteuid is replaced in tests, which may run as root.
var geteuid = os.Geteuid

// loadConfig loads the configuration file, lets override adjust it, then
// applies defaults and validates.
func loadConfig(override func(*ssrwatch.Config) error) (*ssrwatch.Config, error) {
	cfg, err := ssrwatch.LoadConfig(*configPath)
	if err != nil {
		return nil, fmt.Errorf("%w (run 'ssrwatch init' to create one)", err)
	}
	if override != nil {
		if err := override(cfg); err != nil {
			return nil, err
		}
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newFetcher returns the NASDAQ client, honoring upstream overrides.
func newFetcher(cfg *ssrwatch.Config, logger zerolog.Logger) *nasdaq.Client {
	return nasdaq.New(logger, nasdaq.WithURLs(cfg.Upstream.PrimeURL, cfg.Upstream.BaseURL))
}

// newTransport selects SMTP when a relay is configured, sendmail otherwise.
func newTransport(cfg *ssrwatch.Config) mailer.Transport {
	if cfg.SMTP.Host != "" {
		return mailer.SMTP{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
		}
	}
	return mailer.Sendmail{Path: cfg.Sendmail}
}
