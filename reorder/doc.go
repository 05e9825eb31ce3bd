// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package reorder turns an ordered run of elements in a live document into a
drag-and-drop sortable list.

# Construction

	list := reorder.New(doc, "#sortable-seeding", reorder.Options{
		ItemSelector: ".seeding-item",
		IDAttribute:  "data-player-id",
		OnReorder:    func(ids []string) { ... },
	})

If the container is not in the document, or a selector does not compile, the
List is inert: every method is a safe no-op and OrderedItems returns nil.

# Identity

Every item carries one identity attribute (IDAttribute, default "data-id").
Items with an empty id are not wired and are not part of the order. Ids must
be unique; a reorder that finds an id twice is abandoned.

# Reorder rules

Dropping on an item: a forward drag lands immediately after the target, a
backward drag immediately before it.

Dropping on an indicator at position p (the index "insert here" names in the
pre-move sequence): if p <= the dragged index the item goes before the item at
p, otherwise after the item at p-1. A position with no such neighbour is
ignored.

After a successful move OnReorder receives the order read back from the
document.

# Specializations

Specializations are factory functions building a List with tailored Options;
see packages seeding and ranking.
*/
package reorder
