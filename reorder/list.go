// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reorder

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"

	"github.com/danielhkuo/quickly-seed/dom"
)

// Default option values.
const (
	DefaultItemSelector         = ".drag-drop-item"
	DefaultHandleSelector       = ".drag-handle"
	DefaultDropIndicatorClass   = "drop-indicator"
	DefaultDraggingClass        = "dragging"
	DefaultActiveIndicatorClass = "active"
	DefaultIDAttribute          = "data-id"

	// PositionAttribute holds an indicator's insert position.
	PositionAttribute = "data-position"
	handleHint        = "Drag to reorder"
)

// Options customizes a List. Zero fields take the defaults above.
type Options struct {
	ItemSelector         string
	HandleSelector       string
	DropIndicatorClass   string
	DraggingClass        string
	ActiveIndicatorClass string
	IDAttribute          string

	OnReorder   func(ids []string)
	OnDragStart func(item dom.Element, ev *dom.Event)
	OnDragEnd   func(item dom.Element, ev *dom.Event)
}

func (o Options) withDefaults() Options {
	if o.ItemSelector == "" {
		o.ItemSelector = DefaultItemSelector
	}
	if o.HandleSelector == "" {
		o.HandleSelector = DefaultHandleSelector
	}
	if o.DropIndicatorClass == "" {
		o.DropIndicatorClass = DefaultDropIndicatorClass
	}
	if o.DraggingClass == "" {
		o.DraggingClass = DefaultDraggingClass
	}
	if o.ActiveIndicatorClass == "" {
		o.ActiveIndicatorClass = DefaultActiveIndicatorClass
	}
	if o.IDAttribute == "" {
		o.IDAttribute = DefaultIDAttribute
	}
	return o
}

// List is a reorderable list bound to one container of a document.
type List struct {
	doc       *dom.Document
	selector  string
	container dom.Element
	opts      Options

	items      cascadia.Matcher
	handles    cascadia.Matcher
	indicators cascadia.Matcher
}

// New compiles the selectors, locates the container and wires every item.
// It never fails: a missing container or a bad selector leaves an inert List.
func New(doc *dom.Document, containerSelector string, opts Options) *List {
	l := &List{doc: doc, selector: containerSelector, opts: opts.withDefaults()}

	items, err := cascadia.Compile(l.opts.ItemSelector)
	if err != nil {
		slog.Warn("invalid item selector", "selector", l.opts.ItemSelector, "error", err)
		return l
	}
	handles, err := cascadia.Compile(l.opts.HandleSelector)
	if err != nil {
		slog.Warn("invalid handle selector", "selector", l.opts.HandleSelector, "error", err)
		return l
	}
	indicators, err := cascadia.Compile("." + l.opts.DropIndicatorClass)
	if err != nil {
		slog.Warn("invalid drop indicator class", "class", l.opts.DropIndicatorClass, "error", err)
		return l
	}
	l.items, l.handles, l.indicators = items, handles, indicators

	l.locate()
	l.SetupDragAndDrop()
	return l
}

// locate binds the container, which may have been replaced by a re-render.
func (l *List) locate() {
	if l.doc == nil || l.items == nil {
		return
	}
	container, ok := l.doc.QuerySelector(l.selector)
	if !ok {
		slog.Debug("reorderable list container not found", "selector", l.selector)
		l.container = dom.Element{}
		return
	}
	l.container = container
}

// Active reports whether the container was found and the List is wired.
func (l *List) Active() bool {
	return !l.container.IsZero()
}

// Container returns the bound container element.
func (l *List) Container() dom.Element {
	return l.container
}

// Options returns the effective options.
func (l *List) Options() Options {
	return l.opts
}

// ItemID returns the identity attribute of item.
func (l *List) ItemID(item dom.Element) string {
	return strings.TrimSpace(item.Attr(l.opts.IDAttribute))
}

// SetupDragAndDrop attaches item and indicator handlers. Listeners are owned
// by l, so running it again replaces rather than duplicates them.
func (l *List) SetupDragAndDrop() {
	if !l.Active() {
		return
	}
	for _, item := range l.container.QueryAll(l.items) {
		if l.ItemID(item) == "" {
			slog.Warn("reorderable item has no id", "attribute", l.opts.IDAttribute)
			continue
		}
		l.wireItem(item)
	}
	l.setupDropIndicators()
}

func (l *List) wireItem(item dom.Element) {
	item.SetDraggable(true)
	for _, handle := range item.QueryAll(l.handles) {
		if _, ok := handle.LookupAttr("title"); !ok {
			handle.SetAttr("title", handleHint)
		}
	}

	item.AddEventListener(dom.EventDragStart, l, func(ev *dom.Event) {
		item.AddClass(l.opts.DraggingClass)
		if ev.DataTransfer != nil {
			ev.DataTransfer.SetData(dom.MIMEText, l.ItemID(item))
		}
		if l.opts.OnDragStart != nil {
			l.opts.OnDragStart(item, ev)
		}
	})

	item.AddEventListener(dom.EventDragEnd, l, func(ev *dom.Event) {
		// Cleanup runs even if OnDragEnd panics; the dispatcher recovers it.
		item.RemoveClass(l.opts.DraggingClass)
		l.HideAllDropIndicators()
		if l.opts.OnDragEnd != nil {
			l.opts.OnDragEnd(item, ev)
		}
	})

	item.AddEventListener(dom.EventDragOver, l, func(ev *dom.Event) {
		ev.PreventDefault()
	})

	item.AddEventListener(dom.EventDrop, l, func(ev *dom.Event) {
		ev.PreventDefault()
		// Drop events bubble; only the innermost item handles them.
		ev.StopPropagation()
		draggedID := ev.DataTransfer.GetData(dom.MIMEText)
		targetID := l.ItemID(item)
		if draggedID != targetID {
			l.ReorderItems(draggedID, targetID)
		}
	})
}

func (l *List) setupDropIndicators() {
	for _, indicator := range l.container.QueryAll(l.indicators) {
		indicator.AddEventListener(dom.EventDragOver, l, func(ev *dom.Event) {
			ev.PreventDefault()
			indicator.AddClass(l.opts.ActiveIndicatorClass)
		})

		indicator.AddEventListener(dom.EventDragLeave, l, func(*dom.Event) {
			indicator.RemoveClass(l.opts.ActiveIndicatorClass)
		})

		indicator.AddEventListener(dom.EventDrop, l, func(ev *dom.Event) {
			ev.PreventDefault()
			ev.StopPropagation()
			position, err := strconv.Atoi(strings.TrimSpace(indicator.Attr(PositionAttribute)))
			if err != nil {
				slog.Warn("drop indicator has no usable position", "value", indicator.Attr(PositionAttribute))
				return
			}
			l.ReorderToPosition(ev.DataTransfer.GetData(dom.MIMEText), position)
		})
	}
}

// Items returns the identified items in current document order.
func (l *List) Items() []dom.Element {
	if !l.Active() {
		return nil
	}
	var out []dom.Element
	for _, item := range l.container.QueryAll(l.items) {
		if l.ItemID(item) != "" {
			out = append(out, item)
		}
	}
	return out
}

// Indicators returns the drop indicators in document order.
func (l *List) Indicators() []dom.Element {
	if !l.Active() {
		return nil
	}
	return l.container.QueryAll(l.indicators)
}

// OrderedItems reads the current id order from the document.
func (l *List) OrderedItems() []string {
	items := l.Items()
	if items == nil {
		return nil
	}
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = l.ItemID(item)
	}
	return ids
}

// find returns the index of the unique item with id, or -1 when the id is
// missing or ambiguous.
func (l *List) find(items []dom.Element, id string) int {
	if id == "" {
		return -1
	}
	found := -1
	for i, item := range items {
		if l.ItemID(item) != id {
			continue
		}
		if found >= 0 {
			slog.Warn("duplicate item id, reorder abandoned", "id", id)
			return -1
		}
		found = i
	}
	return found
}

// ReorderItems moves draggedID next to targetID and reports whether the
// order changed.
func (l *List) ReorderItems(draggedID, targetID string) bool {
	items := l.Items()
	draggedIndex := l.find(items, draggedID)
	targetIndex := l.find(items, targetID)
	if draggedIndex < 0 || targetIndex < 0 || draggedIndex == targetIndex {
		return false
	}

	dragged, target := items[draggedIndex], items[targetIndex]
	ref := target
	if draggedIndex < targetIndex {
		ref = target.NextSibling()
	}
	return l.move(dragged, target.Parent(), ref)
}

// ReorderToPosition moves draggedID into the gap named by position and
// reports whether the order changed.
func (l *List) ReorderToPosition(draggedID string, position int) bool {
	items := l.Items()
	draggedIndex := l.find(items, draggedID)
	if draggedIndex < 0 {
		return false
	}

	if position <= draggedIndex {
		if position < 0 || position >= len(items) {
			return false
		}
		target := items[position]
		return l.move(items[draggedIndex], target.Parent(), target)
	}

	// Positions after the dragged item are counted before it is lifted out.
	if position-1 >= len(items) {
		return false
	}
	target := items[position-1]
	return l.move(items[draggedIndex], target.Parent(), target.NextSibling())
}

func (l *List) move(dragged, parent, ref dom.Element) bool {
	before := l.OrderedItems()
	if err := parent.InsertBefore(dragged, ref); err != nil {
		slog.Warn("reorder move failed", "error", err)
		return false
	}
	after := l.OrderedItems()
	if slices.Equal(before, after) {
		return false
	}
	if l.opts.OnReorder != nil {
		l.opts.OnReorder(after)
	}
	return true
}

// HideAllDropIndicators clears the active marker from every indicator.
func (l *List) HideAllDropIndicators() {
	for _, indicator := range l.Indicators() {
		indicator.RemoveClass(l.opts.ActiveIndicatorClass)
	}
}

// Refresh re-locates the container and rewires it. Call it after the items
// under the container were replaced.
func (l *List) Refresh() {
	l.locate()
	l.SetupDragAndDrop()
}
