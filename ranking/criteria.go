// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranking

import (
	"cmp"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Criterion keys.
const (
	Wins               = "wins"
	Losses             = "losses"
	Points             = "points"
	StrengthOfSchedule = "strength_of_schedule"
	HeadToHead         = "head_to_head"
	Seed               = "seed"
	Random             = "random"
	PlayerScore        = "player_score"
	OpponentScore      = "opponent_score"
	ScoreDifferential  = "score_differential"
	GamesPlayed        = "games_played"
)

// Criterion is one entry of the catalog.
type Criterion struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Descending means a larger value ranks higher.
	Descending bool `json:"descending"`
}

var catalog = []Criterion{
	{Wins, "Wins", "Number of match wins", true},
	{Losses, "Losses", "Number of match losses (fewer is better)", false},
	{Points, "Points", "Number of points (2 for win, 1 for tie)", true},
	{StrengthOfSchedule, "SoS", "Average points of opponents faced", true},
	{HeadToHead, "H2H", "Wins against tied opponents", true},
	{Seed, "Seed", "Original tournament seed (lower is better)", false},
	{Random, "Random", "Random tiebreaker", false},
	{PlayerScore, "Player Score", "Sum of player scores in current stage", true},
	{OpponentScore, "Opponent Score", "Sum of opponent scores (lower is better)", false},
	{ScoreDifferential, "Score Differential", "Player score minus opponent score", true},
	{GamesPlayed, "Games Played", "Total number of games played (higher is better)", true},
}

// Available returns the catalog in display order.
func Available() []Criterion {
	return slices.Clone(catalog)
}

// Lookup finds a criterion by key.
func Lookup(key string) (Criterion, bool) {
	for _, c := range catalog {
		if c.Key == key {
			return c, true
		}
	}
	return Criterion{}, false
}

// Descriptor is a criterion's place in a stage's configuration. Order is 1..k
// across enabled criteria and 0 when disabled.
type Descriptor struct {
	Key     string `json:"key"`
	Enabled bool   `json:"enabled"`
	Order   int    `json:"order"`
}

// DefaultMainStage is the configuration a new main stage starts with.
func DefaultMainStage() []Descriptor {
	return Ranks([]Descriptor{
		{Key: Wins, Enabled: true},
		{Key: StrengthOfSchedule, Enabled: true},
		{Key: HeadToHead, Enabled: true},
		{Key: Random, Enabled: true},
	})
}

// DefaultPlayoffStage is the configuration a new playoff stage starts with.
func DefaultPlayoffStage() []Descriptor {
	return Ranks([]Descriptor{
		{Key: Wins, Enabled: true},
		{Key: Seed, Enabled: true},
	})
}

// DefaultsForStage picks the defaults by stage position (1 is the main stage).
func DefaultsForStage(stageOrder int) []Descriptor {
	if stageOrder <= 1 {
		return DefaultMainStage()
	}
	return DefaultPlayoffStage()
}

// Complete keeps the known, first-seen entries of current in order and
// appends every other catalog criterion disabled.
func Complete(current []Descriptor) []Descriptor {
	seen := make(map[string]bool, len(catalog))
	out := make([]Descriptor, 0, len(catalog))
	for _, d := range current {
		if _, ok := Lookup(d.Key); !ok || seen[d.Key] {
			continue
		}
		seen[d.Key] = true
		out = append(out, Descriptor{Key: d.Key, Enabled: d.Enabled})
	}
	for _, c := range catalog {
		if !seen[c.Key] {
			out = append(out, Descriptor{Key: c.Key})
		}
	}
	return Ranks(out)
}

// Ranks numbers the enabled entries 1..k in list order and zeroes the rest.
func Ranks(list []Descriptor) []Descriptor {
	out := slices.Clone(list)
	rank := 0
	for i := range out {
		if out[i].Enabled {
			rank++
			out[i].Order = rank
		} else {
			out[i].Order = 0
		}
	}
	return out
}

// EnabledField names the form field carrying key's enabled flag.
func EnabledField(key string) string {
	return "criterion_" + key + "_enabled"
}

// OrderField names the form field carrying key's rank.
func OrderField(key string) string {
	return "criterion_" + key + "_order"
}

// ParseForm reads the criterion fields for the whole catalog. A missing or
// unparsable order on an enabled criterion counts as 1. The result is
// normalized.
func ParseForm(values url.Values) []Descriptor {
	out := make([]Descriptor, 0, len(catalog))
	for _, c := range catalog {
		d := Descriptor{Key: c.Key, Enabled: values.Get(EnabledField(c.Key)) == "on"}
		if d.Enabled {
			order, err := strconv.Atoi(strings.TrimSpace(values.Get(OrderField(c.Key))))
			if err != nil {
				order = 1
			}
			d.Order = order
		}
		out = append(out, d)
	}
	return Normalize(out)
}

// Normalize stably sorts enabled entries by Order, renumbers them 1..k and
// lists disabled entries after them with Order 0, keeping their relative
// order.
func Normalize(list []Descriptor) []Descriptor {
	var enabled, disabled []Descriptor
	for _, d := range list {
		if d.Enabled {
			enabled = append(enabled, d)
		} else {
			disabled = append(disabled, d)
		}
	}
	slices.SortStableFunc(enabled, func(a, b Descriptor) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return Ranks(append(enabled, disabled...))
}

// EnabledKeys returns the keys of enabled entries in rank order.
func EnabledKeys(list []Descriptor) []string {
	var keys []string
	for _, d := range Normalize(list) {
		if d.Enabled {
			keys = append(keys, d.Key)
		}
	}
	return keys
}
