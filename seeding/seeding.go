// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package seeding

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/danielhkuo/quickly-seed/dom"
	"github.com/danielhkuo/quickly-seed/reorder"
)

const (
	// ItemSelector matches one seeded player row.
	ItemSelector = ".seeding-item"
	// IDAttribute carries the stage player id of a row.
	IDAttribute = "data-player-id"
	// FieldPlayerOrder is the form field holding the comma-joined order.
	FieldPlayerOrder = "player_order"
	// Target is the region an update response replaces.
	Target = "#seeding-list"
	// SwapInnerHTML replaces the children of the target.
	SwapInnerHTML = "innerHTML"
)

// Request is one order submission.
type Request struct {
	Method string
	URL    string
	Values url.Values
	Target string
	Swap   string
}

// OrderRequest builds the submission for a new order.
func OrderRequest(updateURL string, ids []string) Request {
	return Request{
		Method: http.MethodPost,
		URL:    updateURL,
		Values: url.Values{FieldPlayerOrder: {strings.Join(ids, ",")}},
		Target: Target,
		Swap:   SwapInnerHTML,
	}
}

// Submitter persists an order. Submit must return without waiting for the
// outcome; failures are the Submitter's own business.
type Submitter interface {
	Submit(req Request)
}

// SubmitFunc adapts a function to Submitter.
type SubmitFunc func(Request)

func (f SubmitFunc) Submit(req Request) { f(req) }

// New builds the seeding list over the container. A nil Submitter makes
// reorders purely visual.
func New(doc *dom.Document, containerSelector, updateURL string, sub Submitter) *reorder.List {
	return reorder.New(doc, containerSelector, reorder.Options{
		ItemSelector: ItemSelector,
		IDAttribute:  IDAttribute,
		OnReorder: func(ids []string) {
			if sub == nil {
				return
			}
			slog.Debug("submitting seeding order", "url", updateURL, "players", len(ids))
			sub.Submit(OrderRequest(updateURL, ids))
		},
	})
}

// ApplySwap writes a response body into the request's target and rewires
// list over whatever the swap rendered.
func ApplySwap(doc *dom.Document, list *reorder.List, req Request, body string) error {
	target, ok := doc.QuerySelector(req.Target)
	if !ok {
		slog.Debug("swap target not found", "target", req.Target)
		return nil
	}
	switch req.Swap {
	case "", SwapInnerHTML:
		if err := target.SetInnerHTML(body); err != nil {
			return err
		}
	default:
		slog.Warn("unsupported swap style", "swap", req.Swap)
		return nil
	}
	if list != nil {
		list.Refresh()
	}
	return nil
}
