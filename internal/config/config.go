// Package config loads auradm settings from the TOML config file, a .env
// file, the environment and command-line overrides, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration written as a string ("1s", "250ms") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type ServerConfig struct {
	BaseURL   string   `toml:"base_url"`
	StreamURL string   `toml:"stream_url,omitempty"`
	Timeout   Duration `toml:"timeout"`
}

type AuthConfig struct {
	Token     string `toml:"token,omitempty"`
	TokenFile string `toml:"token_file,omitempty"`
	Account   string `toml:"account,omitempty"`
}

type PollConfig struct {
	MessagesInterval Duration `toml:"messages_interval"`
	CommentsInterval Duration `toml:"comments_interval"`
	SearchDebounce   Duration `toml:"search_debounce"`
	SearchMinChars   int      `toml:"search_min_chars"`
}

type LogConfig struct {
	Mode string `toml:"mode"`
	File string `toml:"file,omitempty"`
}

type NotifyConfig struct {
	Desktop bool `toml:"desktop"`
}

type MetricsConfig struct {
	Addr string `toml:"addr,omitempty"`
}

// Config is the full client configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Auth    AuthConfig    `toml:"auth"`
	Poll    PollConfig    `toml:"poll"`
	Log     LogConfig     `toml:"log"`
	Notify  NotifyConfig  `toml:"notify"`
	Metrics MetricsConfig `toml:"metrics"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: ServerConfig{
			BaseURL: "http://localhost:8000/api",
			Timeout: Duration{20 * time.Second},
		},
		Poll: PollConfig{
			MessagesInterval: Duration{time.Second},
			CommentsInterval: Duration{3 * time.Second},
			SearchDebounce:   Duration{250 * time.Millisecond},
			SearchMinChars:   2,
		},
		Log:    LogConfig{Mode: "production"},
		Notify: NotifyConfig{Desktop: true},
	}
}

// Path returns the config file location, honoring XDG_CONFIG_HOME.
func Path() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "auradm", "config.toml"), nil
}

// Overrides are values given on the command line.
type Overrides struct {
	BaseURL string
	Token   string
	LogFile string
}

// Options controls Load.
type Options struct {
	// Path of the TOML file; empty uses Path().
	Path string
	// EnvFile is a dotenv file loaded into the environment when present;
	// empty means ".env" in the working directory.
	EnvFile   string
	Overrides Overrides
}

// Load resolves the configuration.
func Load(opts Options) (Config, error) {
	path := opts.Path
	if path == "" {
		var err error
		if path, err = Path(); err != nil {
			return Config{}, err
		}
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if opts.Overrides.BaseURL != "" {
		cfg.Server.BaseURL = opts.Overrides.BaseURL
	}
	if opts.Overrides.Token != "" {
		cfg.Auth.Token = opts.Overrides.Token
	}
	if opts.Overrides.LogFile != "" {
		cfg.Log.File = opts.Overrides.LogFile
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads path over the defaults. A missing file yields the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("cannot read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("cannot parse config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path atomically with owner-only permissions.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("cannot write config: %w", err)
	}
	return os.Rename(tmp, path)
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("AURADM_BASE_URL"); ok {
		c.Server.BaseURL = v
	}
	if v, ok := os.LookupEnv("AURADM_STREAM_URL"); ok {
		c.Server.StreamURL = v
	}
	if v, ok := os.LookupEnv("AURADM_TOKEN"); ok {
		c.Auth.Token = v
	}
	if v, ok := os.LookupEnv("AURADM_TOKEN_FILE"); ok {
		c.Auth.TokenFile = v
	}
	if v, ok := os.LookupEnv("AURADM_ACCOUNT"); ok {
		c.Auth.Account = v
	}
	if v, ok := os.LookupEnv("AURADM_LOG_MODE"); ok {
		c.Log.Mode = v
	}
	if v, ok := os.LookupEnv("AURADM_MESSAGES_INTERVAL"); ok {
		if err := c.Poll.MessagesInterval.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("AURADM_MESSAGES_INTERVAL: %w", err)
		}
	}
	return nil
}

// Validate checks intervals and modes.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.BaseURL) == "" {
		return fmt.Errorf("server.base_url is required")
	}
	checks := []struct {
		name  string
		value time.Duration
	}{
		{"server.timeout", c.Server.Timeout.Duration},
		{"poll.messages_interval", c.Poll.MessagesInterval.Duration},
		{"poll.comments_interval", c.Poll.CommentsInterval.Duration},
		{"poll.search_debounce", c.Poll.SearchDebounce.Duration},
	}
	for _, check := range checks {
		if check.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", check.name, check.value)
		}
	}
	if c.Poll.SearchMinChars < 1 {
		return fmt.Errorf("poll.search_min_chars must be at least 1")
	}
	switch c.Log.Mode {
	case "production", "development":
	default:
		return fmt.Errorf("log.mode must be production or development, got %q", c.Log.Mode)
	}
	return nil
}

// Set assigns a field using dot notation (e.g. "auth.token").
func (c *Config) Set(key, value string) error {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) != 2 {
		return fmt.Errorf("key must use dot notation: section.field (e.g. server.base_url)")
	}
	section, field := parts[0], parts[1]

	unknown := func() error {
		return fmt.Errorf("unknown field %q in section [%s]", field, section)
	}
	setDuration := func(d *Duration) error {
		if err := d.UnmarshalText([]byte(value)); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	}

	switch section {
	case "server":
		switch field {
		case "base_url":
			c.Server.BaseURL = value
		case "stream_url":
			c.Server.StreamURL = value
		case "timeout":
			return setDuration(&c.Server.Timeout)
		default:
			return unknown()
		}
	case "auth":
		switch field {
		case "token":
			c.Auth.Token = value
		case "token_file":
			c.Auth.TokenFile = value
		case "account":
			c.Auth.Account = value
		default:
			return unknown()
		}
	case "poll":
		switch field {
		case "messages_interval":
			return setDuration(&c.Poll.MessagesInterval)
		case "comments_interval":
			return setDuration(&c.Poll.CommentsInterval)
		case "search_debounce":
			return setDuration(&c.Poll.SearchDebounce)
		case "search_min_chars":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			c.Poll.SearchMinChars = n
		default:
			return unknown()
		}
	case "log":
		switch field {
		case "mode":
			c.Log.Mode = value
		case "file":
			c.Log.File = value
		default:
			return unknown()
		}
	case "notify":
		if field != "desktop" {
			return unknown()
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		c.Notify.Desktop = b
	case "metrics":
		if field != "addr" {
			return unknown()
		}
		c.Metrics.Addr = value
	default:
		return fmt.Errorf("unknown section %q", section)
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Auth.Token != "" {
		token := c.Auth.Token
		if len(token) > 8 {
			c.Auth.Token = token[:4] + "…" + token[len(token)-4:]
		} else {
			c.Auth.Token = "****"
		}
	}
	return c
}

// Encode renders cfg as TOML.
func Encode(cfg Config) (string, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
