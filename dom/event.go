// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dom

import (
	"log/slog"
	"slices"
)

// Event types used by the drag-and-drop protocol and toggles.
const (
	EventDragStart = "dragstart"
	EventDragEnd   = "dragend"
	EventDragOver  = "dragover"
	EventDragLeave = "dragleave"
	EventDrop      = "drop"
	EventClick     = "click"
)

// MIMEText is the only transfer format the drag protocol uses.
const MIMEText = "text/plain"

// Event is a dispatched DOM-style event.
type Event struct {
	Type          string
	Target        Element
	CurrentTarget Element
	DataTransfer  *DataTransfer

	defaultPrevented bool
	stopped          bool
}

// NewEvent creates an event of the given type with no transfer payload.
func NewEvent(typ string) *Event {
	return &Event{Type: typ}
}

// PreventDefault marks the event's default action as cancelled. For
// dragover this is what makes an element accept a drop.
func (ev *Event) PreventDefault() {
	ev.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (ev *Event) DefaultPrevented() bool {
	return ev.defaultPrevented
}

// StopPropagation stops bubbling after the current element's listeners.
func (ev *Event) StopPropagation() {
	ev.stopped = true
}

// DataTransfer is the drag payload channel.
type DataTransfer struct {
	data map[string]string
}

// NewDataTransfer returns an empty payload.
func NewDataTransfer() *DataTransfer {
	return &DataTransfer{data: make(map[string]string)}
}

// SetData stores value under format.
func (dt *DataTransfer) SetData(format, value string) {
	dt.data[format] = value
}

// GetData returns the value stored under format, or "".
func (dt *DataTransfer) GetData(format string) string {
	if dt == nil {
		return ""
	}
	return dt.data[format]
}

type listener struct {
	typ   string
	owner any
	fn    func(*Event)
}

// AddEventListener registers fn for typ on e. owner must be comparable; a
// second registration with the same (typ, owner) replaces the first.
func (e Element) AddEventListener(typ string, owner any, fn func(*Event)) {
	if e.node == nil || e.doc == nil {
		return
	}
	ls := e.doc.listeners[e.node]
	for i, l := range ls {
		if l.typ == typ && l.owner == owner {
			ls[i].fn = fn
			return
		}
	}
	e.doc.listeners[e.node] = append(ls, listener{typ: typ, owner: owner, fn: fn})
}

// RemoveEventListeners drops every listener registered by owner on e.
func (e Element) RemoveEventListeners(owner any) {
	if e.node == nil || e.doc == nil {
		return
	}
	ls := slices.DeleteFunc(e.doc.listeners[e.node], func(l listener) bool { return l.owner == owner })
	if len(ls) == 0 {
		delete(e.doc.listeners, e.node)
		return
	}
	e.doc.listeners[e.node] = ls
}

// ListenerCount returns how many listeners of typ e has.
func (e Element) ListenerCount(typ string) int {
	if e.node == nil || e.doc == nil {
		return 0
	}
	n := 0
	for _, l := range e.doc.listeners[e.node] {
		if l.typ == typ {
			n++
		}
	}
	return n
}

// Dispatch delivers ev to e and then to each ancestor until propagation is
// stopped. It reports whether the default action is still allowed.
func (e Element) Dispatch(ev *Event) bool {
	if e.node == nil || e.doc == nil {
		return true
	}
	ev.Target = e
	for n := e.node; n != nil; n = n.Parent {
		ls := slices.Clone(e.doc.listeners[n])
		if len(ls) == 0 {
			continue
		}
		ev.CurrentTarget = Element{doc: e.doc, node: n}
		for _, l := range ls {
			if l.typ == ev.Type {
				invoke(l.fn, ev)
			}
		}
		if ev.stopped {
			break
		}
	}
	ev.CurrentTarget = Element{}
	return !ev.defaultPrevented
}

func invoke(fn func(*Event), ev *Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event listener panicked", "type", ev.Type, "panic", r)
		}
	}()
	fn(ev)
}
