package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/etnz/ssrwatch"
	"github.com/google/subcommands"
)

// initCmd writes a starter configuration and positions file.
type initCmd struct {
	workDir   string
	mailTo    string
	sendStyle string
	force     bool
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "creates the configuration and positions files" }
func (*initCmd) Usage() string {
	return `ssrwatch init -mail-to <addr> [-work-dir <dir>] [-send-style attachment|body] [-force]

Writes the configuration file (see the global -config flag) and, if missing,
a positions file with example tickers in the work directory.

Edit the positions file, then try the setup with 'ssrwatch check -dry-run'.
`
}

func defaultWorkDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "ssrwatch"
	}
	return filepath.Join(home, ".local", "share", "ssrwatch")
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.workDir, "work-dir", defaultWorkDir(), "Working directory for the positions file and the run files")
	f.StringVar(&c.mailTo, "mail-to", "", "Recipient address of the notifications (required)")
	f.StringVar(&c.sendStyle, "send-style", string(ssrwatch.Attachment), "How matches are sent: attachment or body")
	f.BoolVar(&c.force, "force", false, "Overwrite an existing configuration file")
}

func (c *initCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.mailTo == "" {
		fmt.Fprintln(os.Stderr, "Error: -mail-to is required.")
		f.Usage()
		return subcommands.ExitUsageError
	}
	style, err := ssrwatch.ParseSendStyle(c.sendStyle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	workDir, err := filepath.Abs(c.workDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	cfg := &ssrwatch.Config{
		WorkDir:    workDir,
		MailTo:     c.mailTo,
		SendStyle:  style,
		StocksPath: ssrwatch.DefaultStocksFile,
	}
	resolved := *cfg
	resolved.ApplyDefaults()
	if err := resolved.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := writeConfig(*configPath, cfg, c.force); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Configuration written to %s\n", *configPath)

	if err := ssrwatch.WritePositionsTemplate(resolved.StocksPath); err != nil {
		if !errors.Is(err, fs.ErrExist) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(stdout, "Keeping existing positions file %s\n", resolved.StocksPath)
	} else {
		fmt.Fprintf(stdout, "Positions template written to %s, edit it with your tickers\n", resolved.StocksPath)
	}
	return subcommands.ExitSuccess
}

func writeConfig(path string, cfg *ssrwatch.Config, force bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0600)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("config file %q already exists, use -force to overwrite it", path)
	}
	if err != nil {
		return fmt.Errorf("cannot create config file: %w", err)
	}
	if err := cfg.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("cannot write config file: %w", err)
	}
	return f.Close()
}
