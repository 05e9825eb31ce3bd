// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Seed API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, views)

# Endpoints

Health:

	GET /health

Tournaments (admin, requires X-Admin-Key after creation):

	POST /tournaments              - Create tournament and stages
	GET  /tournaments/{id}         - Tournament, stages and players
	POST /tournaments/{id}/players - Add player to the main stage

Stages (admin):

	GET  /stages/{id}/seeding           - Seeding as JSON
	POST /stages/{id}/seeding           - Reorder seeds
	POST /stages/{id}/seeding/randomize - Shuffle seeds
	GET  /stages/{id}/seeding/edit      - Live seeding page
	GET  /stages/{id}/criteria          - Ranking criteria
	POST /stages/{id}/criteria          - Save ranking criteria
	GET  /stages/{id}/criteria/edit     - Live criteria editor
	POST /stages/{id}/matches           - Report a match
	GET  /stages/{id}/standings         - Standings

Live views (admin):

	POST   /views/{id}/events - Replay a gesture
	POST   /views/{id}/submit - Save a criteria view
	DELETE /views/{id}        - Close a view

# Handler Initialization

The seeding handler receives the mux itself so live views can submit
reorders in process.
*/
package router
