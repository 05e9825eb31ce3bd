// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package seeding specializes reorder for a stage's seeding list.
//
// Rows are ".seeding-item" elements identified by data-player-id. Every
// successful reorder submits player_order (the comma-joined ids) to the
// update URL without waiting for the answer. A Dispatcher delivers the
// submission and hands the response to ApplySwap, which replaces the
// "#seeding-list" region and rewires the list over the new rows.
package seeding
