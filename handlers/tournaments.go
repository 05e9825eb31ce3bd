// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-seed/auth"
	"github.com/danielhkuo/quickly-seed/cliparse"
	"github.com/danielhkuo/quickly-seed/db"
	"github.com/danielhkuo/quickly-seed/middleware"
	"github.com/danielhkuo/quickly-seed/models"
	"github.com/danielhkuo/quickly-seed/ranking"
)

type TournamentHandler struct {
	db  *db.DB
	cfg cliparse.Config
}

func NewTournamentHandler(db *db.DB, cfg cliparse.Config) *TournamentHandler {
	return &TournamentHandler{db: db, cfg: cfg}
}

// CreateTournament handles POST /tournaments
func (h *TournamentHandler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTournamentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	tournamentID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate tournament ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create tournament")
		return
	}

	stages := []models.Stage{{
		TournamentID:    tournamentID,
		Name:            "Main Stage",
		Order:           models.StageMain,
		PairingStrategy: models.PairingSwiss,
	}}
	if req.WithPlayoff {
		stages = append(stages, models.Stage{
			TournamentID:    tournamentID,
			Name:            "Playoffs",
			Order:           models.StagePlayoff,
			PairingStrategy: models.PairingElimination,
		})
	}

	err = h.createTournament(r.Context(), tournamentID, req.Name, stages)
	if err != nil {
		slog.Error("failed to create tournament", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create tournament")
		return
	}

	slog.Info("tournament created", "tournament_id", tournamentID, "stages", len(stages))

	middleware.JSONResponse(w, http.StatusCreated, models.CreateTournamentResponse{
		TournamentID: tournamentID,
		AdminKey:     auth.GenerateAdminKey(tournamentID, h.cfg.AdminKeySalt),
		Stages:       stages,
	})
}

// createTournament inserts the tournament and its stages with their default
// criteria. Stage IDs are filled in.
func (h *TournamentHandler) createTournament(ctx context.Context, id, name string, stages []models.Stage) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tournament (id, name, created_at)
		VALUES (?, ?, ?)
	`, id, name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert tournament: %w", err)
	}

	for i := range stages {
		stageID, err := auth.GenerateID(12)
		if err != nil {
			return err
		}
		stages[i].ID = stageID

		_, err = tx.ExecContext(ctx, `
			INSERT INTO stage (id, tournament_id, name, stage_order, pairing_strategy)
			VALUES (?, ?, ?, ?, ?)
		`, stageID, id, stages[i].Name, stages[i].Order, stages[i].PairingStrategy)
		if err != nil {
			return fmt.Errorf("insert stage: %w", err)
		}

		if err := saveCriteria(ctx, tx, stageID, ranking.DefaultsForStage(stages[i].Order)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetTournament handles GET /tournaments/{id}
func (h *TournamentHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID := r.PathValue("id")
	if err := auth.ValidateAdminKey(tournamentID, auth.AdminKeyFromRequest(r), h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	detail, err := h.loadTournament(r.Context(), tournamentID)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Tournament not found")
		return
	}
	if err != nil {
		slog.Error("failed to load tournament", "tournament_id", tournamentID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, detail)
}

func (h *TournamentHandler) loadTournament(ctx context.Context, id string) (models.TournamentDetail, error) {
	var d models.TournamentDetail
	err := h.db.QueryRowContext(ctx, `
		SELECT id, name, created_at FROM tournament WHERE id = ?
	`, id).Scan(&d.Tournament.ID, &d.Tournament.Name, &d.Tournament.CreatedAt)
	if err != nil {
		return d, err
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, tournament_id, name, stage_order, pairing_strategy
		FROM stage WHERE tournament_id = ? ORDER BY stage_order
	`, id)
	if err != nil {
		return d, fmt.Errorf("query stages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s models.Stage
		if err := rows.Scan(&s.ID, &s.TournamentID, &s.Name, &s.Order, &s.PairingStrategy); err != nil {
			return d, fmt.Errorf("scan stage: %w", err)
		}
		d.Stages = append(d.Stages, s)
	}
	if err := rows.Err(); err != nil {
		return d, err
	}

	prows, err := h.db.QueryContext(ctx, `
		SELECT id, tournament_id, name FROM player
		WHERE tournament_id = ? ORDER BY created_at, name
	`, id)
	if err != nil {
		return d, fmt.Errorf("query players: %w", err)
	}
	defer prows.Close()
	d.Players = []models.Player{}
	for prows.Next() {
		var p models.Player
		if err := prows.Scan(&p.ID, &p.TournamentID, &p.Name); err != nil {
			return d, fmt.Errorf("scan player: %w", err)
		}
		d.Players = append(d.Players, p)
	}
	return d, prows.Err()
}

// AddPlayer handles POST /tournaments/{id}/players
func (h *TournamentHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	tournamentID := r.PathValue("id")
	if err := auth.ValidateAdminKey(tournamentID, auth.AdminKeyFromRequest(r), h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	var req models.AddPlayerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	resp, err := h.addPlayer(r.Context(), tournamentID, req.Name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		middleware.ErrorResponse(w, http.StatusNotFound, "Tournament not found")
		return
	case errors.Is(err, errNameTaken):
		middleware.ErrorResponse(w, http.StatusConflict, "Player name already taken")
		return
	case errors.Is(err, ErrSeedingLocked):
		middleware.ErrorResponse(w, http.StatusConflict, "Main stage has already started")
		return
	case err != nil:
		slog.Error("failed to add player", "tournament_id", tournamentID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add player")
		return
	}

	slog.Info("player added", "tournament_id", tournamentID, "player_id", resp.PlayerID, "seed", resp.Seed)
	middleware.JSONResponse(w, http.StatusCreated, resp)
}

var errNameTaken = errors.New("player name taken")

func (h *TournamentHandler) addPlayer(ctx context.Context, tournamentID, name string) (models.AddPlayerResponse, error) {
	var resp models.AddPlayerResponse

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return resp, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var mainStageID string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM stage WHERE tournament_id = ? AND stage_order = ?
	`, tournamentID, models.StageMain).Scan(&mainStageID)
	if err != nil {
		return resp, err
	}

	locked, err := hasReportedMatches(ctx, tx, mainStageID)
	if err != nil {
		return resp, err
	}
	if locked {
		return resp, ErrSeedingLocked
	}

	var taken int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM player WHERE tournament_id = ? AND name = ?
	`, tournamentID, name).Scan(&taken)
	if err != nil {
		return resp, fmt.Errorf("check player name: %w", err)
	}
	if taken > 0 {
		return resp, errNameTaken
	}

	if resp.PlayerID, err = auth.GenerateID(12); err != nil {
		return resp, err
	}
	if resp.StagePlayerID, err = auth.GenerateID(12); err != nil {
		return resp, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO player (id, tournament_id, name, created_at)
		VALUES (?, ?, ?, ?)
	`, resp.PlayerID, tournamentID, name, time.Now().UTC())
	if err != nil {
		return resp, fmt.Errorf("insert player: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seed), 0) + 1 FROM stage_player WHERE stage_id = ?
	`, mainStageID).Scan(&resp.Seed)
	if err != nil {
		return resp, fmt.Errorf("next seed: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO stage_player (id, stage_id, player_id, seed)
		VALUES (?, ?, ?, ?)
	`, resp.StagePlayerID, mainStageID, resp.PlayerID, resp.Seed)
	if err != nil {
		return resp, fmt.Errorf("insert stage player: %w", err)
	}

	return resp, tx.Commit()
}
