// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/danielhkuo/quickly-seed/auth"
	"github.com/danielhkuo/quickly-seed/cliparse"
	"github.com/danielhkuo/quickly-seed/db"
	"github.com/danielhkuo/quickly-seed/dom"
	"github.com/danielhkuo/quickly-seed/live"
	"github.com/danielhkuo/quickly-seed/middleware"
	"github.com/danielhkuo/quickly-seed/models"
	"github.com/danielhkuo/quickly-seed/pages"
	"github.com/danielhkuo/quickly-seed/seeding"
)

// ViewKindSeeding marks live views editing a seeding list.
const ViewKindSeeding = "seeding"

var (
	errNoStagePlayers  = errors.New("player order names no player of the stage")
	errNoPreviousStage = errors.New("stage has no previous stage")
)

type SeedingHandler struct {
	db    *db.DB
	cfg   cliparse.Config
	views *live.Registry
	// app serves the seeding updates submitted by live views
	app http.Handler
	// shuffle reorders players for RandomizeSeeding
	shuffle func(n int, swap func(i, j int))
	// random feeds the previous stage's random tiebreaker; nil uses math/rand/v2
	random func() float64
}

func NewSeedingHandler(db *db.DB, cfg cliparse.Config, views *live.Registry, app http.Handler) *SeedingHandler {
	return &SeedingHandler{db: db, cfg: cfg, views: views, app: app, shuffle: rand.Shuffle}
}

// GetSeeding handles GET /stages/{id}/seeding as JSON
func (h *SeedingHandler) GetSeeding(w http.ResponseWriter, r *http.Request) {
	stage, ok := stageForAdmin(w, r, h.db, h.cfg.AdminKeySalt)
	if !ok {
		return
	}

	players, err := loadStagePlayers(r.Context(), h.db, stage.ID)
	if err != nil {
		slog.Error("failed to load stage players", "stage_id", stage.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SeedingResponse{StageID: stage.ID, Players: players})
}

// SeedingPage handles GET /stages/{id}/seeding/edit
// The rendered page is also kept as a live view whose seeding list submits
// reorders back through the app handler.
func (h *SeedingHandler) SeedingPage(w http.ResponseWriter, r *http.Request) {
	stage, ok := stageForAdmin(w, r, h.db, h.cfg.AdminKeySalt)
	if !ok {
		return
	}

	data, err := h.pageData(r.Context(), stage)
	if err != nil {
		slog.Error("failed to load seeding page", "stage_id", stage.ID, "error", err)
		middleware.HTMLResponse(w, r, http.StatusInternalServerError, pages.ErrorPage(http.StatusInternalServerError, "Database error"))
		return
	}

	view := h.views.Open(ViewKindSeeding, stage.ID, pages.SeedingRegion, nil)
	data.ViewID = view.ID

	markup, err := renderString(r.Context(), pages.SeedingPage(data))
	if err == nil {
		err = h.attach(view, markup, data.UpdateURL, auth.AdminKeyFromRequest(r))
	}
	if err != nil {
		_ = h.views.Close(view.ID)
		slog.Error("failed to open seeding view", "stage_id", stage.ID, "error", err)
		middleware.HTMLResponse(w, r, http.StatusInternalServerError, pages.ErrorPage(http.StatusInternalServerError, "Failed to render page"))
		return
	}

	slog.Info("seeding view opened", "stage_id", stage.ID, "view_id", view.ID)
	middleware.HTMLFragment(w, http.StatusOK, view.HTML())
}

// attach parses the page into the view and builds the seeding list over it.
// Submissions run in the background; their responses are swapped into the
// view under its lock.
func (h *SeedingHandler) attach(view *live.View, markup, updateURL, adminKey string) error {
	doc, err := dom.ParseString(markup)
	if err != nil {
		return fmt.Errorf("parse page: %w", err)
	}

	dispatcher := &seeding.Dispatcher{
		Handler: h.app,
		Header:  http.Header{auth.HeaderAdminKey: {adminKey}},
	}
	view.OnClose(dispatcher.Wait)

	return view.Replace(doc, func(doc *dom.Document) error {
		list := seeding.New(doc, pages.SeedingContainer, updateURL, dispatcher)
		dispatcher.Swap = func(req seeding.Request, body string) {
			err := view.Do(func(doc *dom.Document) error {
				return seeding.ApplySwap(doc, list, req, body)
			})
			if err != nil {
				slog.Warn("seeding swap failed", "view_id", view.ID, "error", err)
			}
		}
		view.Attach(list)
		return nil
	})
}

func (h *SeedingHandler) pageData(ctx context.Context, stage stageInfo) (pages.SeedingPageData, error) {
	players, err := loadStagePlayers(ctx, h.db, stage.ID)
	if err != nil {
		return pages.SeedingPageData{}, err
	}
	locked, err := hasReportedMatches(ctx, h.db, stage.ID)
	if err != nil {
		return pages.SeedingPageData{}, err
	}
	return pages.SeedingPageData{
		TournamentName: stage.TournamentName,
		Stage:          stage.Stage,
		Players:        players,
		UpdateURL:      "/stages/" + stage.ID + "/seeding",
		RandomizeURL:   "/stages/" + stage.ID + "/seeding/randomize",
		PrepareURL:     prepareURL(stage),
		Locked:         locked,
	}, nil
}

func prepareURL(stage stageInfo) string {
	if stage.Order <= 1 {
		return ""
	}
	return "/stages/" + stage.ID + "/seeding/prepare"
}

// UpdateSeeding handles POST /stages/{id}/seeding
func (h *SeedingHandler) UpdateSeeding(w http.ResponseWriter, r *http.Request) {
	stage, ok := stageForAdmin(w, r, h.db, h.cfg.AdminKeySalt)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid form")
		return
	}
	order := splitOrder(r.PostForm.Get(seeding.FieldPlayerOrder))

	err := h.reseed(r.Context(), stage.ID, func(current []string) ([]string, error) {
		return mergeOrder(current, order)
	})
	h.respondSeeding(w, r, stage, err)
}

// RandomizeSeeding handles POST /stages/{id}/seeding/randomize
func (h *SeedingHandler) RandomizeSeeding(w http.ResponseWriter, r *http.Request) {
	stage, ok := stageForAdmin(w, r, h.db, h.cfg.AdminKeySalt)
	if !ok {
		return
	}

	err := h.reseed(r.Context(), stage.ID, func(current []string) ([]string, error) {
		h.shuffle(len(current), func(i, j int) {
			current[i], current[j] = current[j], current[i]
		})
		return current, nil
	})
	h.respondSeeding(w, r, stage, err)
}

// PrepareSeeding handles POST /stages/{id}/seeding/prepare
// The stage is refilled with every player of the previous stage, seeded by
// that stage's current standings, ready to be reordered before play starts.
func (h *SeedingHandler) PrepareSeeding(w http.ResponseWriter, r *http.Request) {
	stage, ok := stageForAdmin(w, r, h.db, h.cfg.AdminKeySalt)
	if !ok {
		return
	}

	err := h.prepare(r.Context(), stage)
	h.respondSeeding(w, r, stage, err)
}

func (h *SeedingHandler) prepare(ctx context.Context, stage stageInfo) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	locked, err := hasReportedMatches(ctx, tx, stage.ID)
	if err != nil {
		return err
	}
	if locked {
		return ErrSeedingLocked
	}

	var previousID string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM stage WHERE tournament_id = ? AND stage_order = ?
	`, stage.TournamentID, stage.Order-1).Scan(&previousID)
	if errors.Is(err, sql.ErrNoRows) {
		return errNoPreviousStage
	}
	if err != nil {
		return fmt.Errorf("query previous stage: %w", err)
	}

	_, standings, err := ComputeStandings(ctx, tx, previousID, stage.Order-1, h.random)
	if err != nil {
		return err
	}

	// Any earlier preparation is replaced
	if _, err := tx.ExecContext(ctx, `DELETE FROM stage_player WHERE stage_id = ?`, stage.ID); err != nil {
		return fmt.Errorf("clear stage players: %w", err)
	}
	for i, s := range standings {
		id, err := auth.GenerateID(12)
		if err != nil {
			return fmt.Errorf("generate stage player id: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO stage_player (id, stage_id, player_id, seed)
			VALUES (?, ?, ?, ?)
		`, id, stage.ID, s.PlayerID, i+1)
		if err != nil {
			return fmt.Errorf("insert stage player: %w", err)
		}
	}

	slog.Info("stage seeding prepared", "stage_id", stage.ID, "from_stage_id", previousID, "players", len(standings))
	return tx.Commit()
}

func (h *SeedingHandler) respondSeeding(w http.ResponseWriter, r *http.Request, stage stageInfo, err error) {
	switch {
	case errors.Is(err, ErrSeedingLocked):
		middleware.ErrorResponse(w, http.StatusConflict, "Seeding is locked once matches are reported")
		return
	case errors.Is(err, errNoStagePlayers):
		middleware.ErrorResponse(w, http.StatusBadRequest, "player_order names no player of this stage")
		return
	case errors.Is(err, errNoPreviousStage):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Stage has no previous stage to seed from")
		return
	case err != nil:
		slog.Error("failed to update seeding", "stage_id", stage.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update seeding")
		return
	}

	data, err := h.pageData(r.Context(), stage)
	if err != nil {
		slog.Error("failed to reload seeding", "stage_id", stage.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("seeding updated", "stage_id", stage.ID, "players", len(data.Players))
	middleware.HTMLResponse(w, r, http.StatusOK, pages.SeedingList(data))
}

// reseed rewrites the stage's seeds in the order returned by arrange, which
// receives the stage player ids in current seed order.
func (h *SeedingHandler) reseed(ctx context.Context, stageID string, arrange func(current []string) ([]string, error)) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	locked, err := hasReportedMatches(ctx, tx, stageID)
	if err != nil {
		return err
	}
	if locked {
		return ErrSeedingLocked
	}

	players, err := loadStagePlayers(ctx, tx, stageID)
	if err != nil {
		return err
	}
	current := make([]string, len(players))
	for i, p := range players {
		current[i] = p.ID
	}

	next, err := arrange(current)
	if err != nil {
		return err
	}
	if err := writeSeeds(ctx, tx, stageID, next); err != nil {
		return err
	}
	return tx.Commit()
}

// writeSeeds assigns seeds 1..n in order. Every seed is first moved out of
// the way so UNIQUE(stage_id, seed) holds after each statement.
func writeSeeds(ctx context.Context, q querier, stageID string, order []string) error {
	var maxSeed int
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seed), 0) FROM stage_player WHERE stage_id = ?
	`, stageID).Scan(&maxSeed)
	if err != nil {
		return fmt.Errorf("max seed: %w", err)
	}

	bump := max(100, maxSeed+100)
	_, err = q.ExecContext(ctx, `
		UPDATE stage_player SET seed = seed + ? WHERE stage_id = ?
	`, bump, stageID)
	if err != nil {
		return fmt.Errorf("bump seeds: %w", err)
	}

	for i, id := range order {
		_, err := q.ExecContext(ctx, `
			UPDATE stage_player SET seed = ? WHERE id = ? AND stage_id = ?
		`, i+1, id, stageID)
		if err != nil {
			return fmt.Errorf("write seed %d: %w", i+1, err)
		}
	}
	return nil
}

// splitOrder parses a comma-joined id list, dropping empty entries
func splitOrder(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// mergeOrder puts the requested ids that belong to the stage first, then the
// stage players the request did not name, in their current order.
func mergeOrder(current, requested []string) ([]string, error) {
	inStage := make(map[string]bool, len(current))
	for _, id := range current {
		inStage[id] = true
	}

	placed := make(map[string]bool, len(current))
	out := make([]string, 0, len(current))
	for _, id := range requested {
		if inStage[id] && !placed[id] {
			placed[id] = true
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return nil, errNoStagePlayers
	}
	for _, id := range current {
		if !placed[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func loadStagePlayers(ctx context.Context, q querier, stageID string) ([]models.StagePlayer, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT sp.id, sp.player_id, p.name, sp.seed
		FROM stage_player sp
		JOIN player p ON p.id = sp.player_id
		WHERE sp.stage_id = ?
		ORDER BY sp.seed
	`, stageID)
	if err != nil {
		return nil, fmt.Errorf("query stage players: %w", err)
	}
	defer rows.Close()

	players := []models.StagePlayer{}
	for rows.Next() {
		var p models.StagePlayer
		if err := rows.Scan(&p.ID, &p.PlayerID, &p.Name, &p.Seed); err != nil {
			return nil, fmt.Errorf("scan stage player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
