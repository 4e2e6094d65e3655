// Package auth resolves the Duet board password.
//
// Passwords are sourced in the following priority order:
//  1. Environment variable: DUETMON_PASSWORD
//  2. OS keyring (service "duetmon", account "<username>@<host>")
//  3. The printer.password config value
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "duetmon"
	envVarName     = "DUETMON_PASSWORD"
)

// ErrNotFound is returned by DeletePassword when nothing is stored.
var ErrNotFound = errors.New("no stored password found")

// Source indicates where a password was found.
type Source string

const (
	SourceEnv     Source = "environment variable"
	SourceKeyring Source = "keyring"
	SourceConfig  Source = "config file"
	SourceNone    Source = ""
)

// Account returns the keyring account name for a board login.
func Account(username, host string) string {
	return strings.TrimSpace(username) + "@" + strings.TrimSpace(host)
}

// ResolvePassword returns the password for username@host and where it came
// from. configured is the value from the config file, used last.
func ResolvePassword(username, host, configured string) (Source, string) {
	if pw := os.Getenv(envVarName); pw != "" {
		return SourceEnv, pw
	}

	if strings.TrimSpace(username) != "" {
		if pw, err := keyring.Get(keyringService, Account(username, host)); err == nil && pw != "" {
			return SourceKeyring, pw
		}
	}

	if configured != "" {
		return SourceConfig, configured
	}
	return SourceNone, ""
}

// StorePassword saves the password in the OS keyring.
func StorePassword(username, host, password string) error {
	if strings.TrimSpace(username) == "" {
		return errors.New("username is required to store a password")
	}
	if err := keyring.Set(keyringService, Account(username, host), password); err != nil {
		return fmt.Errorf("store password in keyring: %w", err)
	}
	return nil
}

// DeletePassword removes the stored password for username@host.
func DeletePassword(username, host string) error {
	err := keyring.Delete(keyringService, Account(username, host))
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete password from keyring: %w", err)
	}
	return nil
}
