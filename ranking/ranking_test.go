// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranking

import (
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielhkuo/quickly-seed/dom"
)

func TestCatalog(t *testing.T) {
	all := Available()
	if len(all) != 11 {
		t.Fatalf("Expected 11 criteria, got %d", len(all))
	}
	tests := []struct {
		key        string
		descending bool
	}{
		{Wins, true},
		{Losses, false},
		{Seed, false},
		{OpponentScore, false},
		{GamesPlayed, true},
	}
	for _, tt := range tests {
		c, ok := Lookup(tt.key)
		if !ok {
			t.Errorf("Lookup(%q) not found", tt.key)
			continue
		}
		if c.Descending != tt.descending {
			t.Errorf("%s descending = %v, want %v", tt.key, c.Descending, tt.descending)
		}
	}
	if _, ok := Lookup("elo"); ok {
		t.Error("Expected unknown key to miss")
	}
}

func TestDefaults(t *testing.T) {
	want := []Descriptor{
		{Key: Wins, Enabled: true, Order: 1},
		{Key: StrengthOfSchedule, Enabled: true, Order: 2},
		{Key: HeadToHead, Enabled: true, Order: 3},
		{Key: Random, Enabled: true, Order: 4},
	}
	if diff := cmp.Diff(want, DefaultsForStage(1)); diff != "" {
		t.Errorf("main stage defaults mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{Wins, Seed}, EnabledKeys(DefaultsForStage(2))); diff != "" {
		t.Errorf("playoff defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete(t *testing.T) {
	got := Complete([]Descriptor{
		{Key: Seed, Enabled: true},
		{Key: "bogus", Enabled: true},
		{Key: Wins, Enabled: false},
		{Key: Seed, Enabled: false},
	})
	if len(got) != 11 {
		t.Fatalf("Expected every criterion, got %d", len(got))
	}
	if diff := cmp.Diff([]Descriptor{{Key: Seed, Enabled: true, Order: 1}, {Key: Wins}}, got[:2]); diff != "" {
		t.Errorf("leading entries mismatch (-want +got):\n%s", diff)
	}
	for _, d := range got[2:] {
		if d.Enabled || d.Order != 0 {
			t.Errorf("Expected appended %s to be disabled, got %+v", d.Key, d)
		}
	}
}

func TestParseForm(t *testing.T) {
	values := url.Values{
		EnabledField(Wins):             {"on"},
		OrderField(Wins):               {"3"},
		EnabledField(Seed):             {"on"},
		OrderField(Seed):               {"oops"},
		EnabledField(Points):           {"on"},
		OrderField(Points):             {"2"},
		EnabledField(Random):           {""},
		OrderField(Random):             {"1"},
		EnabledField(GamesPlayed):      {"on"},
		OrderField(OpponentScore):      {"5"},
		EnabledField(HeadToHead):       {"yes"},
		OrderField(StrengthOfSchedule): {"4"},
	}

	got := ParseForm(values)

	// Seed's bad order counts as 1; games_played has no order and counts as 1
	// too, and the stable sort keeps catalog order between them.
	if diff := cmp.Diff([]string{Seed, GamesPlayed, Points, Wins}, EnabledKeys(got)); diff != "" {
		t.Errorf("enabled order mismatch (-want +got):\n%s", diff)
	}
	for i, d := range got[:4] {
		if d.Order != i+1 {
			t.Errorf("%s order = %d, want %d", d.Key, d.Order, i+1)
		}
	}
	for _, d := range got[4:] {
		if d.Enabled || d.Order != 0 {
			t.Errorf("Expected %s disabled with order 0, got %+v", d.Key, d)
		}
	}
	if len(got) != 11 {
		t.Errorf("Expected all 11 criteria, got %d", len(got))
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	in := []Descriptor{
		{Key: Wins, Enabled: true, Order: 7},
		{Key: Losses},
		{Key: Seed, Enabled: true, Order: 2},
	}
	once := Normalize(in)
	if diff := cmp.Diff(once, Normalize(once)); diff != "" {
		t.Errorf("Normalize not idempotent (-first +second):\n%s", diff)
	}
	want := []Descriptor{
		{Key: Seed, Enabled: true, Order: 1},
		{Key: Wins, Enabled: true, Order: 2},
		{Key: Losses},
	}
	if diff := cmp.Diff(want, once); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func criteriaPage(t *testing.T) *dom.Document {
	t.Helper()
	var b strings.Builder
	b.WriteString(`<html><body><form id="criteria-form"><div id="ranking-criteria"></div>`)
	for _, c := range Available() {
		b.WriteString(`<input type="hidden" name="` + EnabledField(c.Key) + `" value="">`)
		b.WriteString(`<input type="hidden" name="` + OrderField(c.Key) + `" value="">`)
	}
	b.WriteString(`</form></body></html>`)
	doc, err := dom.ParseString(b.String())
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return doc
}

func rowKeys(doc *dom.Document) []string {
	var keys []string
	for _, el := range doc.QuerySelectorAll(ItemSelector) {
		keys = append(keys, el.Attr(IDAttribute))
	}
	return keys
}

func formKeys(doc *dom.Document) []string {
	return EnabledKeys(ParseForm(doc.FormValues("#criteria-form")))
}

func TestManagerRendersAndSyncsForm(t *testing.T) {
	doc := criteriaPage(t)
	m := New(doc, "#ranking-criteria", DefaultMainStage())

	keys := rowKeys(doc)
	if len(keys) != 11 {
		t.Fatalf("Expected 11 rows, got %d", len(keys))
	}
	if diff := cmp.Diff([]string{Wins, StrengthOfSchedule, HeadToHead, Random}, keys[:4]); diff != "" {
		t.Errorf("row order mismatch (-want +got):\n%s", diff)
	}
	if n := len(doc.QuerySelectorAll(".drop-indicator")); n != 10 {
		t.Errorf("Expected 10 indicators between rows, got %d", n)
	}
	if diff := cmp.Diff([]string{Wins, StrengthOfSchedule, HeadToHead, Random}, formKeys(doc)); diff != "" {
		t.Errorf("form state mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(m.Criteria(), Ranks(m.Criteria())); diff != "" {
		t.Errorf("Criteria() not ranked:\n%s", diff)
	}
}

func TestManagerReorderByGesture(t *testing.T) {
	doc := criteriaPage(t)
	changes := 0
	m := New(doc, "#ranking-criteria", DefaultMainStage())
	m.OnChange = func([]Descriptor) { changes++ }

	random, _ := doc.QuerySelector(`[data-key="random"]`)
	wins, _ := doc.QuerySelector(`[data-key="wins"]`)
	if !dom.Drag(random, wins) {
		t.Fatal("Expected drop to be accepted")
	}

	if diff := cmp.Diff([]string{Random, Wins, StrengthOfSchedule, HeadToHead}, formKeys(doc)); diff != "" {
		t.Errorf("form order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{Random, Wins, StrengthOfSchedule, HeadToHead}, rowKeys(doc)[:4]); diff != "" {
		t.Errorf("rendered order mismatch (-want +got):\n%s", diff)
	}
	if changes != 1 {
		t.Errorf("Expected 1 change, got %d", changes)
	}

	// The re-rendered rows are wired again.
	random, _ = doc.QuerySelector(`[data-key="random"]`)
	indicator, _ := doc.QuerySelector(`.drop-indicator[data-position="2"]`)
	if !dom.Drag(random, indicator) {
		t.Fatal("Expected indicator drop to be accepted")
	}
	if diff := cmp.Diff([]string{Wins, Random, StrengthOfSchedule, HeadToHead}, formKeys(doc)); diff != "" {
		t.Errorf("form order after indicator drop mismatch (-want +got):\n%s", diff)
	}
}

func TestManagerToggle(t *testing.T) {
	doc := criteriaPage(t)
	m := New(doc, "#ranking-criteria", DefaultPlayoffStage())

	toggle, ok := doc.QuerySelector(`.toggle-switch[data-key="wins"]`)
	if !ok {
		t.Fatal("toggle for wins not rendered")
	}
	dom.Click(toggle)
	if diff := cmp.Diff([]string{Seed}, formKeys(doc)); diff != "" {
		t.Errorf("form after disabling wins mismatch (-want +got):\n%s", diff)
	}
	row, _ := doc.QuerySelector(`.ranking-criteria-item[data-key="wins"]`)
	if !row.HasClass("disabled") {
		t.Error("Expected disabled row to carry the disabled class")
	}

	// Re-enabling keeps the row's place in the list.
	if !m.Toggle(Wins) {
		t.Fatal("Toggle(wins) reported missing key")
	}
	if diff := cmp.Diff([]string{Wins, Seed}, formKeys(doc)); diff != "" {
		t.Errorf("form after re-enabling wins mismatch (-want +got):\n%s", diff)
	}
	if m.Toggle("elo") {
		t.Error("Expected unknown key to report false")
	}
}

func TestManagerReEnableRanksByPosition(t *testing.T) {
	doc := criteriaPage(t)
	m := New(doc, "#ranking-criteria", DefaultPlayoffStage())

	// Move disabled losses between wins and seed, then switch it on
	losses, _ := doc.QuerySelector(`[data-key="losses"]`)
	seed, _ := doc.QuerySelector(`[data-key="seed"]`)
	if !dom.Drag(losses, seed) {
		t.Fatal("Expected drop to be accepted")
	}
	if diff := cmp.Diff([]string{Wins, Seed}, formKeys(doc)); diff != "" {
		t.Errorf("form before re-enabling mismatch (-want +got):\n%s", diff)
	}

	toggle, _ := doc.QuerySelector(`.toggle-switch[data-key="losses"]`)
	dom.Click(toggle)

	if diff := cmp.Diff([]string{Wins, Losses, Seed}, formKeys(doc)); diff != "" {
		t.Errorf("form after re-enabling mismatch (-want +got):\n%s", diff)
	}
	for _, d := range m.Criteria() {
		if d.Key == Losses && d.Order != 2 {
			t.Errorf("Expected losses to rank 2, got %d", d.Order)
		}
	}
	order, _ := doc.QuerySelector(`input[name="` + OrderField(Losses) + `"]`)
	if order.Value() != "2" {
		t.Errorf("Expected order field 2, got %q", order.Value())
	}
}

func TestManagerWithoutContainer(t *testing.T) {
	doc, err := dom.ParseString(`<html><body></body></html>`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	m := New(doc, "#ranking-criteria", nil)
	if m.List().Active() {
		t.Error("Expected inert list without container")
	}
	m.Toggle(Wins)
	if diff := cmp.Diff([]string{Wins}, EnabledKeys(m.Criteria())); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderEscapes(t *testing.T) {
	out, err := renderItems([]Descriptor{{Key: Wins, Enabled: true, Order: 1}, {Key: "<script>"}})
	if err != nil {
		t.Fatalf("renderItems() error = %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("Expected unknown keys to be skipped, got %q", out)
	}
	if !strings.Contains(out, `data-key="wins"`) {
		t.Errorf("Expected wins row, got %q", out)
	}
}
