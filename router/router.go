// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quickly-seed/cliparse"
	"github.com/danielhkuo/quickly-seed/db"
	"github.com/danielhkuo/quickly-seed/handlers"
	"github.com/danielhkuo/quickly-seed/live"
	"github.com/danielhkuo/quickly-seed/middleware"
)

func NewRouter(conn *db.DB, cfg cliparse.Config, views *live.Registry) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	tournamentHandler := handlers.NewTournamentHandler(conn, cfg)
	seedingHandler := handlers.NewSeedingHandler(conn, cfg, views, mux)
	criteriaHandler := handlers.NewCriteriaHandler(conn, cfg, views)
	matchHandler := handlers.NewMatchHandler(conn, cfg)
	standingsHandler := handlers.NewStandingsHandler(conn, cfg)
	viewHandler := handlers.NewViewHandler(conn, cfg, views)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Tournament management (admin, requires X-Admin-Key after creation)
	mux.HandleFunc("POST /tournaments", middleware.WithLogging(tournamentHandler.CreateTournament))
	mux.HandleFunc("GET /tournaments/{id}", middleware.WithLogging(tournamentHandler.GetTournament))
	mux.HandleFunc("POST /tournaments/{id}/players", middleware.WithLogging(tournamentHandler.AddPlayer))

	// Seeding
	mux.HandleFunc("GET /stages/{id}/seeding", middleware.WithLogging(seedingHandler.GetSeeding))
	mux.HandleFunc("POST /stages/{id}/seeding", middleware.WithLogging(seedingHandler.UpdateSeeding))
	mux.HandleFunc("POST /stages/{id}/seeding/randomize", middleware.WithLogging(seedingHandler.RandomizeSeeding))
	mux.HandleFunc("POST /stages/{id}/seeding/prepare", middleware.WithLogging(seedingHandler.PrepareSeeding))
	mux.HandleFunc("GET /stages/{id}/seeding/edit", middleware.WithLogging(seedingHandler.SeedingPage))

	// Ranking criteria
	mux.HandleFunc("GET /stages/{id}/criteria", middleware.WithLogging(criteriaHandler.GetCriteria))
	mux.HandleFunc("POST /stages/{id}/criteria", middleware.WithLogging(criteriaHandler.SaveCriteria))
	mux.HandleFunc("GET /stages/{id}/criteria/edit", middleware.WithLogging(criteriaHandler.CriteriaPage))

	// Matches and standings
	mux.HandleFunc("POST /stages/{id}/matches", middleware.WithLogging(matchHandler.RecordMatch))
	mux.HandleFunc("GET /stages/{id}/standings", middleware.WithLogging(standingsHandler.GetStandings))

	// Live views
	mux.HandleFunc("POST /views/{id}/events", middleware.WithLogging(viewHandler.Event))
	mux.HandleFunc("POST /views/{id}/submit", middleware.WithLogging(viewHandler.Submit))
	mux.HandleFunc("DELETE /views/{id}", middleware.WithLogging(viewHandler.Close))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-seed API v1"))
	})

	return mux
}
