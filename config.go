package ssrwatch

import (
	"fmt"
	"io"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // the run date zone must resolve on hosts without a tz database

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// SendStyle selects how matches are delivered.
type SendStyle string

const (
	// Attachment sends a one-line summary with the matching lines attached as a file.
	Attachment SendStyle = "attachment"
	// Body places the matching lines directly in the email body.
	Body SendStyle = "body"
)

// ParseSendStyle parses s into a SendStyle.
func ParseSendStyle(s string) (SendStyle, error) {
	switch SendStyle(s) {
	case Attachment, Body:
		return SendStyle(s), nil
	}
	return "", fmt.Errorf("%w: invalid send style %q, want %q or %q", ErrEnvironment, s, Attachment, Body)
}

func (s SendStyle) String() string { return string(s) }

// UnmarshalYAML rejects unknown send styles at load time.
func (s *SendStyle) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}
	if str == "" {
		*s = ""
		return nil
	}
	v, err := ParseSendStyle(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// SMTPConfig configures delivery through an SMTP relay instead of the local sendmail.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// UpstreamConfig overrides the NASDAQ endpoints, for mirrors and tests.
type UpstreamConfig struct {
	PrimeURL string `yaml:"prime_url"`
	BaseURL  string `yaml:"base_url"`
}

// Config is the on-disk configuration shape (YAML).
type Config struct {
	WorkDir    string    `yaml:"work_dir"`
	MailTo     string    `yaml:"mail_to"`
	MailFrom   string    `yaml:"mail_from,omitempty"`
	SendStyle  SendStyle `yaml:"send_style"`
	StocksPath string    `yaml:"stocks_path"`

	Timezone string `yaml:"timezone,omitempty"`
	LogFile  string `yaml:"log_file,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`

	Sendmail       string         `yaml:"sendmail,omitempty"`
	SMTP           SMTPConfig     `yaml:"smtp,omitempty"`
	PushgatewayURL string         `yaml:"pushgateway_url,omitempty"`
	Upstream       UpstreamConfig `yaml:"upstream,omitempty"`
}

// Defaults.
const (
	DefaultTimezone   = "America/New_York"
	DefaultSendmail   = "sendmail"
	DefaultStocksFile = "stocks.txt"
	DefaultLogLevel   = "info"
)

// DefaultConfigPath returns $XDG_CONFIG_HOME/ssrwatch/config.yaml or its usual fallback.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "ssrwatch", "config.yaml")
}

// LoadConfig reads a YAML config file and expands ${VAR} environment variables.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read config file: %w", ErrEnvironment, err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse config yaml %q: %w", ErrEnvironment, path, err)
	}
	return &cfg, nil
}

// LoadAndValidateConfig loads config, applies defaults, and validates.
func LoadAndValidateConfig(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields and resolves paths: "~" is expanded and
// relative stocks_path and log_file are interpreted relative to work_dir.
func (c *Config) ApplyDefaults() {
	c.WorkDir = expandHome(c.WorkDir)
	if c.SendStyle == "" {
		c.SendStyle = Attachment
	}
	if c.StocksPath == "" {
		c.StocksPath = DefaultStocksFile
	}
	c.StocksPath = c.underWorkDir(expandHome(c.StocksPath))
	if c.LogFile != "" {
		c.LogFile = c.underWorkDir(expandHome(c.LogFile))
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Sendmail == "" {
		c.Sendmail = DefaultSendmail
	}
	if c.SMTP.Host != "" && c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.WorkDir == "" {
		return fmt.Errorf("%w: work_dir is required", ErrEnvironment)
	}
	if c.MailTo == "" {
		return fmt.Errorf("%w: mail_to is required", ErrEnvironment)
	}
	if _, err := mail.ParseAddress(c.MailTo); err != nil {
		return fmt.Errorf("%w: invalid mail_to %q: %w", ErrEnvironment, c.MailTo, err)
	}
	if c.MailFrom != "" {
		if _, err := mail.ParseAddress(c.MailFrom); err != nil {
			return fmt.Errorf("%w: invalid mail_from %q: %w", ErrEnvironment, c.MailFrom, err)
		}
	}
	if _, err := ParseSendStyle(string(c.SendStyle)); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("%w: invalid log_level %q: %w", ErrEnvironment, c.LogLevel, err)
	}
	if c.SMTP.Host != "" && (c.SMTP.Port <= 0 || c.SMTP.Port > 65535) {
		return fmt.Errorf("%w: invalid smtp port %d", ErrEnvironment, c.SMTP.Port)
	}
	return nil
}

// Location returns the time zone used to compute the run date.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid timezone %q: %w", ErrEnvironment, c.Timezone, err)
	}
	return loc, nil
}

// RequiredCommands lists the external commands a run depends on.
func (c *Config) RequiredCommands() []string {
	if c.SMTP.Host != "" {
		return nil
	}
	return []string{c.Sendmail}
}

// Encode writes c as YAML.
func (c *Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

func (c *Config) underWorkDir(path string) string {
	if path == "" || filepath.IsAbs(path) || c.WorkDir == "" {
		return path
	}
	return filepath.Join(c.WorkDir, path)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
