// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/andybalholm/cascadia"

	"github.com/danielhkuo/quickly-seed/auth"
	"github.com/danielhkuo/quickly-seed/cliparse"
	"github.com/danielhkuo/quickly-seed/db"
	"github.com/danielhkuo/quickly-seed/dom"
	"github.com/danielhkuo/quickly-seed/live"
	"github.com/danielhkuo/quickly-seed/middleware"
	"github.com/danielhkuo/quickly-seed/models"
	"github.com/danielhkuo/quickly-seed/pages"
	"github.com/danielhkuo/quickly-seed/ranking"
)

// Gesture types accepted by POST /views/{id}/events
const (
	EventDrop  = "drop"
	EventClick = "click"
	EventHover = "hover"
)

// errBadEvent wraps every client mistake in an event request
var errBadEvent = errors.New("invalid event")

type ViewHandler struct {
	db    *db.DB
	cfg   cliparse.Config
	views *live.Registry
}

func NewViewHandler(db *db.DB, cfg cliparse.Config, views *live.Registry) *ViewHandler {
	return &ViewHandler{db: db, cfg: cfg, views: views}
}

// viewForAdmin loads the view named by the {id} path value and checks the
// admin key against the tournament owning the view's stage. On failure it
// writes the response and returns nil.
func (h *ViewHandler) viewForAdmin(w http.ResponseWriter, r *http.Request) *live.View {
	view, err := h.views.Get(r.PathValue("id"))
	if errors.Is(err, live.ErrViewNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "View not found or expired")
		return nil
	}

	stage, err := loadStage(r.Context(), h.db, view.StageID)
	if errors.Is(err, ErrStageNotFound) {
		_ = h.views.Close(view.ID)
		middleware.ErrorResponse(w, http.StatusNotFound, "Stage not found")
		return nil
	}
	if err != nil {
		slog.Error("failed to query stage", "stage_id", view.StageID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return nil
	}

	if err := auth.ValidateAdminKey(stage.TournamentID, auth.AdminKeyFromRequest(r), h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return nil
	}
	return view
}

// Event handles POST /views/{id}/events and returns the view's region
func (h *ViewHandler) Event(w http.ResponseWriter, r *http.Request) {
	view := h.viewForAdmin(w, r)
	if view == nil {
		return
	}

	var req models.ViewEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var delivered bool
	err := view.Do(func(doc *dom.Document) error {
		var err error
		delivered, err = replay(doc, req)
		return err
	})
	if errors.Is(err, errBadEvent) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to replay event", "view_id", view.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to replay event")
		return
	}

	slog.Debug("view event", "view_id", view.ID, "type", req.Type, "delivered", delivered)
	middleware.HTMLFragment(w, http.StatusOK, view.RegionHTML())
}

// replay performs one gesture on doc and reports whether it reached its
// target. A drop without a target is an abandoned drag.
func replay(doc *dom.Document, req models.ViewEventRequest) (bool, error) {
	switch req.Type {
	case EventDrop:
		source, err := find(doc, "source", req.Source)
		if err != nil {
			return false, err
		}
		if req.Target == "" {
			return dom.Drag(source, dom.Element{}), nil
		}
		if _, err := cascadia.Compile(req.Target); err != nil {
			return false, fmt.Errorf("%w: bad target selector %q", errBadEvent, req.Target)
		}
		target, _ := doc.QuerySelector(req.Target)
		return dom.Drag(source, target), nil
	case EventClick:
		target, err := find(doc, "target", req.Target)
		if err != nil {
			return false, err
		}
		return dom.Click(target), nil
	case EventHover:
		target, err := find(doc, "target", req.Target)
		if err != nil {
			return false, err
		}
		dom.Hover(target)
		return true, nil
	}
	return false, fmt.Errorf("%w: unknown type %q", errBadEvent, req.Type)
}

func find(doc *dom.Document, role, sel string) (dom.Element, error) {
	if sel == "" {
		return dom.Element{}, fmt.Errorf("%w: %s is required", errBadEvent, role)
	}
	if _, err := cascadia.Compile(sel); err != nil {
		return dom.Element{}, fmt.Errorf("%w: bad %s selector %q", errBadEvent, role, sel)
	}
	el, ok := doc.QuerySelector(sel)
	if !ok {
		return dom.Element{}, fmt.Errorf("%w: %s %q not found", errBadEvent, role, sel)
	}
	return el, nil
}

// Submit handles POST /views/{id}/submit for criteria views: the live form
// values are saved as the stage's criteria.
func (h *ViewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	view := h.viewForAdmin(w, r)
	if view == nil {
		return
	}
	if view.Kind != ViewKindCriteria {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Only criteria views can be submitted")
		return
	}

	var values url.Values
	_ = view.Do(func(doc *dom.Document) error {
		values = doc.FormValues(pages.CriteriaForm)
		return nil
	})

	criteria, err := storeCriteria(r.Context(), h.db, view.StageID, ranking.ParseForm(values))
	if err != nil {
		slog.Error("failed to save criteria", "view_id", view.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save criteria")
		return
	}

	slog.Info("criteria saved", "stage_id", view.StageID, "view_id", view.ID, "enabled", ranking.EnabledKeys(criteria))
	middleware.JSONResponse(w, http.StatusOK, criteriaResponse(view.StageID, criteria))
}

// Close handles DELETE /views/{id}
func (h *ViewHandler) Close(w http.ResponseWriter, r *http.Request) {
	view := h.viewForAdmin(w, r)
	if view == nil {
		return
	}
	if err := h.views.Close(view.ID); err != nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "View not found or expired")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
