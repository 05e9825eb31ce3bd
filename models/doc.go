// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateTournamentRequest: name, with_playoff
  - AddPlayerRequest: name
  - RecordMatchRequest: round, players, winner, optional scores
  - ViewEventRequest: type, source, target selectors for a live view

Seeding and criteria updates arrive as form posts, not JSON.

# Response Types

  - CreateTournamentResponse: tournament_id, admin_key, stages
  - AddPlayerResponse: player_id, stage_player_id, seed
  - RecordMatchResponse: match_id
  - SeedingResponse: players in seed order
  - CriteriaResponse: configured and available criteria
  - StandingsResponse: ranked standings and the criteria used
  - ErrorResponse: error, message

# Domain Types

Tournament, Stage, Player, StagePlayer and Match mirror the database rows.
Standing is one computed row of a stage's standings.
*/
package models
