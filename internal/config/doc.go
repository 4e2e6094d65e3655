// Package config loads duetmon settings.
//
// # Sources
//
// Values are resolved in this order, highest first:
//
//  1. DUETMON_* environment variables (DUETMON_PRINTER_HOST, DUETMON_POLL_INTERVAL, ...)
//  2. A dotenv file loaded with LoadEnvFile (never overrides the real environment)
//  3. ~/.config/duetmon/config.toml, or the path passed to Load
//  4. Built-in defaults
//
// A missing config file is not an error.
//
// # TOML Format
//
//	[printer]
//	host = "192.168.1.50"
//	port = 80
//	username = ""
//	password = ""
//	name = "Workshop"
//	poll_psu = false
//
//	[poll]
//	interval = 10        # seconds, or a duration string such as "1m"
//
//	[server]
//	listen = "127.0.0.1:7480"
//
//	[log]
//	level = "info"       # debug, info, warn, error
//	format = "text"      # text or json
//	file = ""            # tilde is expanded
//
// Passwords are better kept out of this file; see package auth.
package config
