// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *DB) error {
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Tournaments
CREATE TABLE IF NOT EXISTS tournament (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

-- Stages (1 = main, 2 = playoff)
CREATE TABLE IF NOT EXISTS stage (
    id TEXT PRIMARY KEY,
    tournament_id TEXT NOT NULL REFERENCES tournament(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    stage_order INTEGER NOT NULL,
    pairing_strategy TEXT NOT NULL DEFAULT 'swiss',
    UNIQUE (tournament_id, stage_order)
);

CREATE INDEX IF NOT EXISTS idx_stage_tournament_id ON stage(tournament_id);

-- Players
CREATE TABLE IF NOT EXISTS player (
    id TEXT PRIMARY KEY,
    tournament_id TEXT NOT NULL REFERENCES tournament(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (tournament_id, name)
);

-- Stage entries; seed is the player's position in the seeding list
CREATE TABLE IF NOT EXISTS stage_player (
    id TEXT PRIMARY KEY,
    stage_id TEXT NOT NULL REFERENCES stage(id) ON DELETE CASCADE,
    player_id TEXT NOT NULL REFERENCES player(id) ON DELETE CASCADE,
    seed INTEGER NOT NULL,
    UNIQUE (stage_id, player_id),
    UNIQUE (stage_id, seed)
);

CREATE INDEX IF NOT EXISTS idx_stage_player_stage_id ON stage_player(stage_id);

-- Enabled ranking criteria, one row per criterion in rank order
CREATE TABLE IF NOT EXISTS stage_ranking_criteria (
    stage_id TEXT NOT NULL REFERENCES stage(id) ON DELETE CASCADE,
    criterion_key TEXT NOT NULL,
    criterion_order INTEGER NOT NULL,
    PRIMARY KEY (stage_id, criterion_key)
);

-- Reported matches; player_two_id is NULL for a bye, winner_id NULL for a tie
CREATE TABLE IF NOT EXISTS match_result (
    id TEXT PRIMARY KEY,
    stage_id TEXT NOT NULL REFERENCES stage(id) ON DELETE CASCADE,
    round_number INTEGER NOT NULL,
    player_one_id TEXT NOT NULL REFERENCES stage_player(id) ON DELETE CASCADE,
    player_two_id TEXT REFERENCES stage_player(id) ON DELETE CASCADE,
    winner_id TEXT REFERENCES stage_player(id) ON DELETE CASCADE,
    player_one_score INTEGER,
    player_two_score INTEGER,
    reported_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_match_result_stage_id ON match_result(stage_id);
`
