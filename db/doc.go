// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Connections

Open accepts "sqlite" (modernc.org/sqlite, the default) or "postgres"
(lib/pq):

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

SQLite connections get foreign keys and a busy timeout through DSN pragmas
and a single open connection.

Queries are written with ? placeholders. DB and Tx rewrite them to $1, $2,
... when the driver is postgres.

# Schema Creation

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - tournament: Tournament metadata
  - stage: Main stage and optional playoff stage per tournament
  - player: Tournament entrants, unique by name
  - stage_player: A player's entry into a stage, with a unique seed
  - stage_ranking_criteria: Enabled standings criteria in rank order
  - match_result: Reported matches, byes and ties

# Relationships

	tournament 1──* stage
	tournament 1──* player
	stage 1──* stage_player *──1 player
	stage 1──* stage_ranking_criteria
	stage 1──* match_result

All foreign keys use ON DELETE CASCADE.
*/
package db
