// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package dom is a small server-side live document built on golang.org/x/net/html.

A Document owns an html.Node tree parsed from rendered markup. Elements are
lightweight handles onto nodes of that tree, so two Elements wrapping the same
node compare equal with ==. The tree is live: queries always walk the current
node order, and InsertBefore moves real nodes.

# Querying

Selectors are CSS selectors compiled with cascadia:

	doc, err := dom.ParseString(page)
	list, ok := doc.QuerySelector("#sortable-seeding")
	items := list.QuerySelectorAll(".seeding-item")

An invalid selector matches nothing.

# Events

Listeners are keyed by (type, owner). Registering again with the same owner
replaces the earlier listener, so wiring code can run any number of times:

	item.AddEventListener("drop", list, func(ev *dom.Event) { ... })

Dispatch bubbles from the target up through its ancestors. A listener that
panics is recovered and logged; the remaining listeners still run.

# Drag and drop

Drag replays the browser's native drag-and-drop protocol for one gesture:
dragstart on the source, dragover on the target, drop if the dragover was
accepted (PreventDefault), and dragend on the source no matter what.

# Not safe for concurrent use

A Document has no locking. Callers serialize access (see package live).
*/
package dom
