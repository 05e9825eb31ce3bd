// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Sources

Settings are read in order, later sources winning:

 1. Defaults from the Config struct tags
 2. A .env file in the working directory, if present (never overriding
    variables already set)
 3. Environment variables
 4. CLI flags

# CLI Flags and Environment Variables

	-p           PORT            Server port (default 3318)
	-d           DATABASE_URL    Database URL or SQLite path (required)
	-t           DATABASE_TYPE   sqlite or postgres (default sqlite)
	-admin-salt  ADMIN_KEY_SALT  Admin key salt (required)
	-log-level   LOG_LEVEL       debug, info, warn or error (default info)
	-log-format  LOG_FORMAT      text or json (default text)
	-view-ttl    VIEW_TTL        Idle time before a live view expires (default 30m)
*/
package cliparse
