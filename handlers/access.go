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

	"github.com/danielhkuo/quickly-seed/auth"
	"github.com/danielhkuo/quickly-seed/db"
	"github.com/danielhkuo/quickly-seed/middleware"
	"github.com/danielhkuo/quickly-seed/models"
)

var (
	ErrStageNotFound = errors.New("stage not found")
	ErrSeedingLocked = errors.New("seeding is locked once matches are reported")
)

// stageInfo is a stage joined with its tournament's name
type stageInfo struct {
	models.Stage
	TournamentName string
}

func loadStage(ctx context.Context, conn *db.DB, stageID string) (stageInfo, error) {
	var s stageInfo
	err := conn.QueryRowContext(ctx, `
		SELECT s.id, s.tournament_id, s.name, s.stage_order, s.pairing_strategy, t.name
		FROM stage s
		JOIN tournament t ON t.id = s.tournament_id
		WHERE s.id = ?
	`, stageID).Scan(&s.ID, &s.TournamentID, &s.Name, &s.Order, &s.PairingStrategy, &s.TournamentName)
	if errors.Is(err, sql.ErrNoRows) {
		return stageInfo{}, ErrStageNotFound
	}
	if err != nil {
		return stageInfo{}, fmt.Errorf("query stage: %w", err)
	}
	return s, nil
}

// stageForAdmin loads the stage named by the {id} path value and checks the
// admin key against its tournament. On failure it writes the response and
// returns false.
func stageForAdmin(w http.ResponseWriter, r *http.Request, conn *db.DB, salt string) (stageInfo, bool) {
	stageID := r.PathValue("id")
	if stageID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "stage_id is required")
		return stageInfo{}, false
	}

	stage, err := loadStage(r.Context(), conn, stageID)
	if errors.Is(err, ErrStageNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Stage not found")
		return stageInfo{}, false
	}
	if err != nil {
		slog.Error("failed to query stage", "stage_id", stageID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return stageInfo{}, false
	}

	if err := auth.ValidateAdminKey(stage.TournamentID, auth.AdminKeyFromRequest(r), salt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return stageInfo{}, false
	}
	return stage, true
}

// hasReportedMatches reports whether any match was recorded for the stage
func hasReportedMatches(ctx context.Context, q querier, stageID string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM match_result WHERE stage_id = ?`, stageID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count matches: %w", err)
	}
	return n > 0, nil
}

// querier is satisfied by *db.DB and *db.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
