// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dom

// Drag replays one native drag gesture from source to target and reports
// whether a drop was delivered. A zero target, or a target whose dragover is
// not accepted, abandons the gesture. dragend always reaches the source once
// dragstart was not cancelled, even when the drop re-rendered the source out
// of the tree.
func Drag(source, target Element) bool {
	if source.IsZero() || source.doc == nil {
		return false
	}
	dt := NewDataTransfer()
	start := &Event{Type: EventDragStart, DataTransfer: dt}
	if !source.Dispatch(start) {
		return false
	}
	doc := source.doc
	prev := doc.dragging
	doc.dragging = source.node
	defer func() {
		source.Dispatch(&Event{Type: EventDragEnd, DataTransfer: dt})
		doc.dragging = prev
		if !doc.attached(source.node) {
			doc.forget(source.node)
		}
	}()

	if target.IsZero() {
		return false
	}
	over := &Event{Type: EventDragOver, DataTransfer: dt}
	if target.Dispatch(over) {
		target.Dispatch(&Event{Type: EventDragLeave, DataTransfer: dt})
		return false
	}
	target.Dispatch(&Event{Type: EventDrop, DataTransfer: dt})
	return true
}

// Hover delivers dragover then dragleave to target, as when the pointer
// crosses an element mid-gesture without releasing.
func Hover(target Element) {
	dt := NewDataTransfer()
	target.Dispatch(&Event{Type: EventDragOver, DataTransfer: dt})
	target.Dispatch(&Event{Type: EventDragLeave, DataTransfer: dt})
}

// Click delivers a click to e.
func Click(e Element) bool {
	return e.Dispatch(NewEvent(EventClick))
}
