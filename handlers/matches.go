// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
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
)

var errNotInStage = errors.New("player is not part of this stage")

type MatchHandler struct {
	db  *db.DB
	cfg cliparse.Config
}

func NewMatchHandler(db *db.DB, cfg cliparse.Config) *MatchHandler {
	return &MatchHandler{db: db, cfg: cfg}
}

// RecordMatch handles POST /stages/{id}/matches
func (h *MatchHandler) RecordMatch(w http.ResponseWriter, r *http.Request) {
	stage, ok := stageForAdmin(w, r, h.db, h.cfg.AdminKeySalt)
	if !ok {
		return
	}

	var req models.RecordMatchRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if msg := validateMatch(&req); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	matchID, err := h.recordMatch(r.Context(), stage.ID, req)
	if errors.Is(err, errNotInStage) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Players must belong to this stage")
		return
	}
	if err != nil {
		slog.Error("failed to record match", "stage_id", stage.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record match")
		return
	}

	slog.Info("match recorded", "stage_id", stage.ID, "match_id", matchID, "round", req.Round)
	middleware.JSONResponse(w, http.StatusCreated, models.RecordMatchResponse{MatchID: matchID})
}

// validateMatch normalizes req in place and returns a message when it is
// invalid. A bye goes to player one.
func validateMatch(req *models.RecordMatchRequest) string {
	req.PlayerOne = strings.TrimSpace(req.PlayerOne)
	req.PlayerTwo = strings.TrimSpace(req.PlayerTwo)
	req.Winner = strings.TrimSpace(req.Winner)

	if req.PlayerOne == "" {
		return "player_one is required"
	}
	if req.PlayerOne == req.PlayerTwo {
		return "A player cannot play themselves"
	}
	if req.Round == 0 {
		req.Round = 1
	}
	if req.Round < 0 {
		return "round must be positive"
	}
	if req.PlayerTwo == "" {
		if req.Winner != "" && req.Winner != req.PlayerOne {
			return "A bye can only be won by player_one"
		}
		req.Winner = req.PlayerOne
		req.PlayerTwoScore = nil
	}
	if req.Winner != "" && req.Winner != req.PlayerOne && req.Winner != req.PlayerTwo {
		return "winner must be one of the players"
	}
	for _, score := range []*int{req.PlayerOneScore, req.PlayerTwoScore} {
		if score != nil && *score < 0 {
			return "Scores cannot be negative"
		}
	}
	return ""
}

func (h *MatchHandler) recordMatch(ctx context.Context, stageID string, req models.RecordMatchRequest) (string, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	players := []string{req.PlayerOne}
	if req.PlayerTwo != "" {
		players = append(players, req.PlayerTwo)
	}
	for _, id := range players {
		var n int
		err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM stage_player WHERE id = ? AND stage_id = ?
		`, id, stageID).Scan(&n)
		if err != nil {
			return "", fmt.Errorf("check stage player: %w", err)
		}
		if n == 0 {
			return "", errNotInStage
		}
	}

	matchID, err := auth.GenerateID(12)
	if err != nil {
		return "", err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO match_result
			(id, stage_id, round_number, player_one_id, player_two_id, winner_id,
			 player_one_score, player_two_score, reported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, matchID, stageID, req.Round, req.PlayerOne, nullable(req.PlayerTwo), nullable(req.Winner),
		req.PlayerOneScore, req.PlayerTwoScore, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("insert match: %w", err)
	}

	return matchID, tx.Commit()
}

// nullable maps an empty id to SQL NULL
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
