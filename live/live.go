// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-seed/dom"
)

// ErrViewNotFound is returned for unknown or expired view ids.
var ErrViewNotFound = errors.New("view not found")

// View is one open page: a document plus whatever widgets were built over
// it. All access to the document goes through Do, one caller at a time.
type View struct {
	ID      string
	Kind    string
	StageID string
	// Region is the selector of the element returned after an event.
	Region string

	mu       sync.Mutex
	doc      *dom.Document
	state    any
	lastSeen atomic.Int64
	closers  []func()
}

// Do runs fn with exclusive access to the document and marks the view as
// recently used.
func (v *View) Do(fn func(doc *dom.Document) error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.touch()
	return fn(v.doc)
}

// Replace installs doc as the view's document and runs fn over it.
func (v *View) Replace(doc *dom.Document, fn func(doc *dom.Document) error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.touch()
	v.doc = doc
	return fn(doc)
}

// Attach stores the widget state built over the document. Call it inside Do.
func (v *View) Attach(state any) {
	v.state = state
}

// State returns what Attach stored. Call it inside Do.
func (v *View) State() any {
	return v.state
}

// OnClose registers fn to run when the view is closed or expires.
func (v *View) OnClose(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closers = append(v.closers, fn)
}

// RegionHTML returns the markup of the view's region, or the whole document
// when the region is missing.
func (v *View) RegionHTML() string {
	var out string
	_ = v.Do(func(doc *dom.Document) error {
		if doc == nil {
			return nil
		}
		if el, ok := doc.QuerySelector(v.Region); ok {
			out = el.OuterHTML()
			return nil
		}
		out = doc.String()
		return nil
	})
	return out
}

// HTML returns the whole document.
func (v *View) HTML() string {
	var out string
	_ = v.Do(func(doc *dom.Document) error {
		if doc != nil {
			out = doc.String()
		}
		return nil
	})
	return out
}

func (v *View) touch() {
	v.lastSeen.Store(time.Now().UnixNano())
}

func (v *View) idle(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, v.lastSeen.Load()))
}

func (v *View) close() {
	v.mu.Lock()
	closers := v.closers
	v.closers = nil
	v.mu.Unlock()
	for _, fn := range closers {
		fn()
	}
}

// Registry tracks open views and expires idle ones.
type Registry struct {
	ttl time.Duration

	mu    sync.Mutex
	views map[string]*View
}

// NewRegistry returns a Registry expiring views idle for longer than ttl.
// A zero ttl disables expiry.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{ttl: ttl, views: make(map[string]*View)}
}

// Open registers a new view over doc.
func (r *Registry) Open(kind, stageID, region string, doc *dom.Document) *View {
	v := &View{
		ID:      uuid.NewString(),
		Kind:    kind,
		StageID: stageID,
		Region:  region,
		doc:     doc,
	}
	v.touch()

	r.mu.Lock()
	r.views[v.ID] = v
	r.mu.Unlock()

	slog.Debug("view opened", "view_id", v.ID, "kind", kind, "stage_id", stageID)
	return v
}

// Get returns the view with id.
func (r *Registry) Get(id string) (*View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.views[id]
	if !ok {
		return nil, ErrViewNotFound
	}
	return v, nil
}

// Close removes the view and runs its close hooks.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	v, ok := r.views[id]
	delete(r.views, id)
	r.mu.Unlock()
	if !ok {
		return ErrViewNotFound
	}
	v.close()
	slog.Debug("view closed", "view_id", id)
	return nil
}

// CloseAll closes every view.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	views := r.views
	r.views = make(map[string]*View)
	r.mu.Unlock()
	for _, v := range views {
		v.close()
	}
}

// Len reports the number of open views.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// Sweep closes views idle for longer than the ttl and returns how many.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	now := time.Now()
	var expired []*View

	r.mu.Lock()
	for id, v := range r.views {
		if v.idle(now) > r.ttl {
			expired = append(expired, v)
			delete(r.views, id)
		}
	}
	r.mu.Unlock()

	for _, v := range expired {
		slog.Info("view expired",
			"view_id", v.ID,
			"kind", v.Kind,
			"last_seen", humanize.Time(now.Add(-v.idle(now))))
		v.close()
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done, then closes every view.
func (r *Registry) Run(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.CloseAll()
			return nil
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.Debug("swept idle views", "expired", n, "open", r.Len())
			}
		}
	}
}
