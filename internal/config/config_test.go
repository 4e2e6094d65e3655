package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every override Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DUETMON_PRINTER_HOST", "DUETMON_PRINTER_PORT", "DUETMON_PRINTER_USERNAME",
		"DUETMON_PRINTER_PASSWORD", "DUETMON_PRINTER_API_KEY", "DUETMON_PRINTER_NAME",
		"DUETMON_PRINTER_POLL_PSU", "DUETMON_POLL_INTERVAL", "DUETMON_SERVER_LISTEN",
		"DUETMON_LOG_LEVEL", "DUETMON_LOG_FORMAT", "DUETMON_LOG_FILE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Printer.Port != DefaultPort {
		t.Fatalf("Port = %d, want %d", cfg.Printer.Port, DefaultPort)
	}
	if cfg.PollInterval != DefaultPollInterval {
		t.Fatalf("PollInterval = %s, want %s", cfg.PollInterval, DefaultPollInterval)
	}
	if cfg.Listen != DefaultListen {
		t.Fatalf("Listen = %q, want %q", cfg.Listen, DefaultListen)
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Fatalf("Log = %+v, want defaults", cfg.Log)
	}
	if cfg.Printer.Host != "" {
		t.Fatalf("Host = %q, want empty", cfg.Printer.Host)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	path := writeConfig(t, `
[printer]
host = "  192.168.1.50  "
port = 8080
username = "admin"
password = "s3cret"
name = "  Voron  "
poll_psu = true

[poll]
interval = 5

[server]
listen = "0.0.0.0:9000"

[log]
level = "DEBUG"
format = "json"
file = "~/logs/duetmon.log"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Printer.Host != "192.168.1.50" || cfg.Printer.Port != 8080 {
		t.Fatalf("Printer = %+v", cfg.Printer)
	}
	if cfg.Printer.Username != "admin" || cfg.Printer.Password != "s3cret" {
		t.Fatalf("credentials = %q/%q", cfg.Printer.Username, cfg.Printer.Password)
	}
	if cfg.Printer.Name != "Voron" || !cfg.Printer.PollPSU {
		t.Fatalf("Name/PollPSU = %q/%v", cfg.Printer.Name, cfg.Printer.PollPSU)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Fatalf("PollInterval = %s, want 5s", cfg.PollInterval)
	}
	if cfg.Listen != "0.0.0.0:9000" {
		t.Fatalf("Listen = %q", cfg.Listen)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("Log = %+v", cfg.Log)
	}
	if !strings.HasPrefix(cfg.Log.File, home) {
		t.Fatalf("Log.File = %q, want it under HOME %q", cfg.Log.File, home)
	}
	if cfg.Path != path {
		t.Fatalf("Path = %q, want %q", cfg.Path, path)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)

	path := writeConfig(t, `
[printer]
host = "10.0.0.1"
port = 80
`)
	t.Setenv("DUETMON_PRINTER_HOST", "10.0.0.2")
	t.Setenv("DUETMON_PRINTER_PORT", "8081")
	t.Setenv("DUETMON_POLL_INTERVAL", "1m30s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Printer.Host != "10.0.0.2" || cfg.Printer.Port != 8081 {
		t.Fatalf("Printer = %+v, want env overrides", cfg.Printer)
	}
	if cfg.PollInterval != 90*time.Second {
		t.Fatalf("PollInterval = %s, want 1m30s", cfg.PollInterval)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `[printer`)
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_InvalidIntervalFails(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[poll]\ninterval = \"soon\"\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "poll.interval") {
		t.Fatalf("Load error = %v, want poll.interval error", err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("DUETMON_PRINTER_HOST=printer.local\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := LoadEnvFile(envPath); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	cfg, err := Load(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Printer.Host != "printer.local" {
		t.Fatalf("Host = %q, want value from env file", cfg.Printer.Host)
	}

	if err := LoadEnvFile(filepath.Join(dir, "nope.env")); err != nil {
		t.Fatalf("missing env file should be ignored, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{Printer: Printer{Host: "h", Port: 80}, PollInterval: time.Second}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no host", func(c *Config) { c.Printer.Host = "" }, "printer.host"},
		{"port zero", func(c *Config) { c.Printer.Port = 0 }, "printer.port"},
		{"port too big", func(c *Config) { c.Printer.Port = 70000 }, "printer.port"},
		{"interval", func(c *Config) { c.PollInterval = 0 }, "poll.interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	cfg := Config{Printer: Printer{Host: "10.0.0.9", Port: 80}}
	if got := cfg.DisplayName(); got != "10.0.0.9:80" {
		t.Fatalf("DisplayName() = %q", got)
	}
	cfg.Printer.Name = "Workshop"
	if got := cfg.DisplayName(); got != "Workshop" {
		t.Fatalf("DisplayName() = %q", got)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
