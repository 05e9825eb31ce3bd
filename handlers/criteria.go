// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/danielhkuo/quickly-seed/cliparse"
	"github.com/danielhkuo/quickly-seed/db"
	"github.com/danielhkuo/quickly-seed/dom"
	"github.com/danielhkuo/quickly-seed/live"
	"github.com/danielhkuo/quickly-seed/middleware"
	"github.com/danielhkuo/quickly-seed/models"
	"github.com/danielhkuo/quickly-seed/pages"
	"github.com/danielhkuo/quickly-seed/ranking"
)

// ViewKindCriteria marks live views editing ranking criteria.
const ViewKindCriteria = "criteria"

type CriteriaHandler struct {
	db    *db.DB
	cfg   cliparse.Config
	views *live.Registry
}

func NewCriteriaHandler(db *db.DB, cfg cliparse.Config, views *live.Registry) *CriteriaHandler {
	return &CriteriaHandler{db: db, cfg: cfg, views: views}
}

// GetCriteria handles GET /stages/{id}/criteria
func (h *CriteriaHandler) GetCriteria(w http.ResponseWriter, r *http.Request) {
	stage, ok := stageForAdmin(w, r, h.db, h.cfg.AdminKeySalt)
	if !ok {
		return
	}

	criteria, err := loadCriteria(r.Context(), h.db, stage.ID, stage.Order)
	if err != nil {
		slog.Error("failed to load criteria", "stage_id", stage.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, criteriaResponse(stage.ID, criteria))
}

// SaveCriteria handles POST /stages/{id}/criteria with the editor's form
// fields.
func (h *CriteriaHandler) SaveCriteria(w http.ResponseWriter, r *http.Request) {
	stage, ok := stageForAdmin(w, r, h.db, h.cfg.AdminKeySalt)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid form")
		return
	}

	criteria, err := storeCriteria(r.Context(), h.db, stage.ID, ranking.ParseForm(r.PostForm))
	if err != nil {
		slog.Error("failed to save criteria", "stage_id", stage.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save criteria")
		return
	}

	slog.Info("criteria saved", "stage_id", stage.ID, "enabled", ranking.EnabledKeys(criteria))
	middleware.JSONResponse(w, http.StatusOK, criteriaResponse(stage.ID, criteria))
}

// CriteriaPage handles GET /stages/{id}/criteria/edit
func (h *CriteriaHandler) CriteriaPage(w http.ResponseWriter, r *http.Request) {
	stage, ok := stageForAdmin(w, r, h.db, h.cfg.AdminKeySalt)
	if !ok {
		return
	}

	criteria, err := loadCriteria(r.Context(), h.db, stage.ID, stage.Order)
	if err != nil {
		slog.Error("failed to load criteria", "stage_id", stage.ID, "error", err)
		middleware.HTMLResponse(w, r, http.StatusInternalServerError, pages.ErrorPage(http.StatusInternalServerError, "Database error"))
		return
	}

	view := h.views.Open(ViewKindCriteria, stage.ID, pages.CriteriaRegion, nil)
	markup, err := renderString(r.Context(), pages.CriteriaPage(pages.CriteriaPageData{
		TournamentName: stage.TournamentName,
		Stage:          stage.Stage,
		Criteria:       criteria,
		SaveURL:        "/views/" + view.ID + "/submit",
		ViewID:         view.ID,
	}))
	if err == nil {
		err = attachCriteria(view, markup, criteria)
	}
	if err != nil {
		_ = h.views.Close(view.ID)
		slog.Error("failed to open criteria view", "stage_id", stage.ID, "error", err)
		middleware.HTMLResponse(w, r, http.StatusInternalServerError, pages.ErrorPage(http.StatusInternalServerError, "Failed to render page"))
		return
	}

	slog.Info("criteria view opened", "stage_id", stage.ID, "view_id", view.ID)
	middleware.HTMLFragment(w, http.StatusOK, view.HTML())
}

func attachCriteria(view *live.View, markup string, criteria []ranking.Descriptor) error {
	doc, err := dom.ParseString(markup)
	if err != nil {
		return fmt.Errorf("parse page: %w", err)
	}
	return view.Replace(doc, func(doc *dom.Document) error {
		m := ranking.New(doc, pages.CriteriaContainer, criteria)
		m.OnChange = func(list []ranking.Descriptor) {
			slog.Debug("criteria edited", "view_id", view.ID, "enabled", ranking.EnabledKeys(list))
		}
		view.Attach(m)
		return nil
	})
}

func criteriaResponse(stageID string, criteria []ranking.Descriptor) models.CriteriaResponse {
	return models.CriteriaResponse{
		StageID:   stageID,
		Criteria:  ranking.Complete(criteria),
		Available: ranking.Available(),
	}
}

// loadCriteria returns the stage's stored criteria completed with the rest of
// the catalog. A stage with nothing stored gets its defaults.
func loadCriteria(ctx context.Context, q querier, stageID string, stageOrder int) ([]ranking.Descriptor, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT criterion_key FROM stage_ranking_criteria
		WHERE stage_id = ?
		ORDER BY criterion_order
	`, stageID)
	if err != nil {
		return nil, fmt.Errorf("query criteria: %w", err)
	}
	defer rows.Close()

	var stored []ranking.Descriptor
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan criterion: %w", err)
		}
		stored = append(stored, ranking.Descriptor{Key: key, Enabled: true})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(stored) == 0 {
		stored = ranking.DefaultsForStage(stageOrder)
	}
	return ranking.Complete(stored), nil
}

// saveCriteria replaces the stage's stored criteria with the enabled entries
// of list, ranked 1..k.
func saveCriteria(ctx context.Context, q querier, stageID string, list []ranking.Descriptor) error {
	_, err := q.ExecContext(ctx, `DELETE FROM stage_ranking_criteria WHERE stage_id = ?`, stageID)
	if err != nil {
		return fmt.Errorf("clear criteria: %w", err)
	}
	for i, key := range ranking.EnabledKeys(ranking.Normalize(list)) {
		_, err := q.ExecContext(ctx, `
			INSERT INTO stage_ranking_criteria (stage_id, criterion_key, criterion_order)
			VALUES (?, ?, ?)
		`, stageID, key, i+1)
		if err != nil {
			return fmt.Errorf("insert criterion %s: %w", key, err)
		}
	}
	return nil
}

// storeCriteria saves list in one transaction and returns what was stored.
func storeCriteria(ctx context.Context, conn *db.DB, stageID string, list []ranking.Descriptor) ([]ranking.Descriptor, error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveCriteria(ctx, tx, stageID, list); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ranking.Normalize(list), nil
}

func renderString(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
