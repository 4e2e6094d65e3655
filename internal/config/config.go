package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override (DUETMON_PRINTER_HOST, ...).
	EnvPrefix = "DUETMON"

	DefaultPort         = 80
	DefaultPollInterval = 10 * time.Second
	DefaultListen       = "127.0.0.1:7480"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"

	defaultConfigPath = "~/.config/duetmon/config.toml"
)

// Printer holds the connection settings for a single Duet board.
type Printer struct {
	Host     string
	Port     int
	Username string
	Password string
	APIKey   string
	Name     string
	PollPSU  bool
}

// Log configures the process logger.
type Log struct {
	Level  string
	Format string
	File   string
}

// Config is the resolved duetmon configuration.
type Config struct {
	Path         string // config file that was looked up, whether or not it existed
	Printer      Printer
	PollInterval time.Duration
	Listen       string
	Log          Log
}

// Load reads the TOML config at path (or the default location when empty),
// applies DUETMON_* environment overrides and falls back to defaults for
// anything unset. A missing file is not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	v := newViper()
	v.SetConfigFile(resolved)
	v.SetConfigType("toml")

	if _, err := os.Stat(resolved); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	cfg := Config{
		Path: resolved,
		Printer: Printer{
			Host:     strings.TrimSpace(v.GetString("printer.host")),
			Port:     v.GetInt("printer.port"),
			Username: v.GetString("printer.username"),
			Password: v.GetString("printer.password"),
			APIKey:   v.GetString("printer.api_key"),
			Name:     strings.TrimSpace(v.GetString("printer.name")),
			PollPSU:  v.GetBool("printer.poll_psu"),
		},
		Listen: strings.TrimSpace(v.GetString("server.listen")),
		Log: Log{
			Level:  strings.ToLower(strings.TrimSpace(v.GetString("log.level"))),
			Format: strings.ToLower(strings.TrimSpace(v.GetString("log.format"))),
			File:   strings.TrimSpace(v.GetString("log.file")),
		},
	}

	interval, err := parseInterval(v.GetString("poll.interval"))
	if err != nil {
		return Config{}, err
	}
	cfg.PollInterval = interval

	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.File != "" {
		cfg.Log.File = mustExpand(cfg.Log.File)
	}

	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment without overriding variables that are already set. A missing
// file is ignored.
func LoadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	resolved, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := godotenv.Load(resolved); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// Validate checks the settings every command needs.
func (c Config) Validate() error {
	if c.Printer.Host == "" {
		return errors.New("printer.host is not set")
	}
	if c.Printer.Port < 1 || c.Printer.Port > 65535 {
		return fmt.Errorf("printer.port %d is out of range", c.Printer.Port)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll.interval must be positive, got %s", c.PollInterval)
	}
	return nil
}

// DisplayName returns the configured printer name, or host:port when unset.
func (c Config) DisplayName() string {
	if c.Printer.Name != "" {
		return c.Printer.Name
	}
	return fmt.Sprintf("%s:%d", c.Printer.Host, c.Printer.Port)
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("printer.host", "")
	v.SetDefault("printer.port", DefaultPort)
	v.SetDefault("printer.username", "")
	v.SetDefault("printer.password", "")
	v.SetDefault("printer.api_key", "")
	v.SetDefault("printer.name", "")
	v.SetDefault("printer.poll_psu", false)
	v.SetDefault("poll.interval", int(DefaultPollInterval/time.Second))
	v.SetDefault("server.listen", DefaultListen)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("log.file", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// parseInterval accepts whole seconds ("10") or a Go duration ("1m30s").
func parseInterval(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultPollInterval, nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	d, err := time.ParseDuration(raw + "s")
	if err != nil {
		return 0, fmt.Errorf("parse poll.interval %q: %w", raw, err)
	}
	return d, nil
}

// DefaultPath returns the expanded default config file location.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
