// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Seed API server.

Quickly Seed runs tournament stages: players are seeded by dragging them
into order, standings are ranked by a configurable list of criteria, and
both lists are edited through server-side drag and drop views.

# Starting the Server

The server reads environment variables (and a .env file) or CLI flags:

	DATABASE_URL=file:seed.db ADMIN_KEY_SALT=secret go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -admin-salt secret

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file URL or PostgreSQL connection string
  - ADMIN_KEY_SALT (-admin-salt): Secret for admin key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - LOG_LEVEL (-log-level): debug, info, warn, error (default: info)
  - LOG_FORMAT (-log-format): text or json (default: text)
  - VIEW_TTL (-view-ttl): idle time before a live view expires (default: 30m)

# Architecture

  - dom: live HTML tree with event dispatch and drag replay
  - reorder: generic drag and drop reorderable list
  - seeding, ranking: the two list specializations
  - live: registry of open views
  - pages: server-rendered pages
  - handlers: HTTP request handlers (tournaments, seeding, criteria, matches, standings, views)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON and HTML helpers
  - models: Request/response types
  - auth: ID generation and admin keys
  - db: Connection, placeholder rebinding, schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
