// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Seed API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - TournamentHandler: Tournament creation, details, players
  - SeedingHandler: Stage seeding as JSON, HTML partials and a live page
  - CriteriaHandler: Ranking criteria storage and the live editor page
  - MatchHandler: Match reports
  - StandingsHandler: Standings ranked by the stage's criteria
  - ViewHandler: Gestures replayed against open live views

Handlers are created via constructor functions that accept *db.DB and Config:

	tournamentHandler := handlers.NewTournamentHandler(db, cfg)

Admin operations require the X-Admin-Key header (or a key query parameter).

# Seeding

Seeds are rewritten in two phases inside one transaction: every seed is
bumped past the current maximum, then 1..n is written in the new order.
Seeding is locked once the stage has a reported match.

	POST /stages/{id}/seeding           → UpdateSeeding (player_order form field)
	POST /stages/{id}/seeding/randomize → RandomizeSeeding

Both answer with the #seeding-list partial.

# Standings

ComputeStandings tallies reported matches and sorts players
lexicographically by the stage's enabled criteria:

	keys, standings, err := ComputeStandings(ctx, db, stageID, stageOrder, nil)

Ties left after every criterion fall back to seed, then stage player ID.

# Live Views

The edit pages open a view holding the rendered document. The browser posts
gestures to the view and receives the updated region:

	POST   /views/{id}/events → Event (drop, click, hover)
	POST   /views/{id}/submit → Submit (criteria views)
	DELETE /views/{id}        → Close
*/
package handlers
