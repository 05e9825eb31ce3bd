// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ranking holds the standings tiebreaker catalog and the reorderable
// editor for a stage's criteria.
//
// A stage configures an ordered subset of the catalog. Enabled criteria carry
// ranks 1..k in list order; disabled ones carry 0. The editor renders every
// catalog criterion as a draggable row with a toggle and mirrors the state
// into criterion_<key>_enabled and criterion_<key>_order form fields, which
// ParseForm reads back.
package ranking
