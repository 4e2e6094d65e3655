package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/five82/duetmon/internal/auth"
	clierrors "github.com/five82/duetmon/internal/errors"
)

func newLoginCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Store the board password in the OS keyring",
		Long: `Prompt for the password of printer.username on printer.host and store
it in the OS keyring (macOS Keychain, Windows Credential Manager, or
Linux Secret Service).

The DUETMON_PASSWORD environment variable takes precedence over the
keyring; the printer.password config value is used last.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireConfig(); err != nil {
				return err
			}
			user, host := c.cfg.Printer.Username, c.cfg.Printer.Host
			if strings.TrimSpace(user) == "" {
				return clierrors.Wrap(clierrors.ExitConfig, "No username configured", nil).
					WithHint("Set printer.username; boards without a username need no password")
			}

			if os.Getenv("DUETMON_PASSWORD") != "" {
				c.out.Info("DUETMON_PASSWORD is set and takes precedence over the keyring")
			}

			fd := int(os.Stdin.Fd())
			if !term.IsTerminal(fd) {
				return clierrors.CannotPrompt("DUETMON_PASSWORD")
			}

			fmt.Fprintf(c.out.Err, "Password for %s: ", auth.Account(user, host))
			raw, err := term.ReadPassword(fd)
			fmt.Fprintln(c.out.Err)
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}

			if err := auth.StorePassword(user, host, string(raw)); err != nil {
				return clierrors.CredentialStore("store password", err)
			}
			c.out.Success("Stored password for %s", auth.Account(user, host))
			return nil
		},
	}
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored board password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, host := c.cfg.Printer.Username, c.cfg.Printer.Host
			err := auth.DeletePassword(user, host)
			if errors.Is(err, auth.ErrNotFound) {
				c.out.Warning("No stored password for %s", auth.Account(user, host))
				return nil
			}
			if err != nil {
				return clierrors.CredentialStore("remove password", err)
			}
			c.out.Success("Removed password for %s", auth.Account(user, host))
			return nil
		},
	}
}
