// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pages

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/google/go-cmp/cmp"

	"github.com/danielhkuo/quickly-seed/dom"
	"github.com/danielhkuo/quickly-seed/models"
	"github.com/danielhkuo/quickly-seed/ranking"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return b.String()
}

func parse(t *testing.T, markup string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(markup)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return doc
}

func seedingData() SeedingPageData {
	return SeedingPageData{
		TournamentName: "Spring <Open>",
		Stage:          models.Stage{ID: "s1", Name: "Main Stage"},
		Players: []models.StagePlayer{
			{ID: "sp1", Name: "Alice", Seed: 1},
			{ID: "sp2", Name: "Bob & Co", Seed: 2},
			{ID: "sp3", Name: "Cara", Seed: 3},
		},
		UpdateURL:    "/stages/s1/seeding",
		RandomizeURL: "/stages/s1/seeding/randomize",
		ViewID:       "view-1",
	}
}

func TestSeedingPage(t *testing.T) {
	doc := parse(t, render(t, SeedingPage(seedingData())))

	var ids, seeds []string
	for _, el := range doc.QuerySelectorAll(SeedingContainer + " .seeding-item") {
		ids = append(ids, el.Attr("data-player-id"))
		seed, _ := el.QuerySelector(".seed")
		seeds = append(seeds, seed.Text())
	}
	if diff := cmp.Diff([]string{"sp1", "sp2", "sp3"}, ids); diff != "" {
		t.Errorf("row order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"1st", "2nd", "3rd"}, seeds); diff != "" {
		t.Errorf("seed labels mismatch (-want +got):\n%s", diff)
	}
	if body := doc.Body(); body.Attr("data-view-id") != "view-1" {
		t.Errorf("Expected data-view-id on body, got %q", body.Attr("data-view-id"))
	}
	if _, ok := doc.QuerySelector(SeedingRegion + " > " + SeedingContainer); !ok {
		t.Error("Expected the sortable container inside the seeding region")
	}
	title, _ := doc.QuerySelector("h1")
	if title.Text() != "Spring <Open> - Main Stage" {
		t.Errorf("Unexpected title %q", title.Text())
	}
	if _, ok := doc.QuerySelector(`form[action="/stages/s1/seeding/randomize"]`); !ok {
		t.Error("Expected randomize form")
	}
}

func TestSeedingPageLocked(t *testing.T) {
	d := seedingData()
	d.Locked = true
	doc := parse(t, render(t, SeedingPage(d)))

	if n := len(doc.QuerySelectorAll(".seeding-item")); n != 0 {
		t.Errorf("Expected no draggable rows when locked, got %d", n)
	}
	if n := len(doc.QuerySelectorAll(".drag-handle")); n != 0 {
		t.Errorf("Expected no handles when locked, got %d", n)
	}
	if _, ok := doc.QuerySelector("form"); ok {
		t.Error("Expected no randomize form when locked")
	}
}

func TestSeedingListEmpty(t *testing.T) {
	out := render(t, SeedingList(SeedingPageData{UpdateURL: "/u"}))
	if !strings.Contains(out, "No players yet.") {
		t.Errorf("Expected empty notice, got %q", out)
	}
}

func TestCriteriaPage(t *testing.T) {
	doc := parse(t, render(t, CriteriaPage(CriteriaPageData{
		TournamentName: "Spring Open",
		Stage:          models.Stage{ID: "s1", Name: "Playoffs"},
		Criteria:       ranking.DefaultPlayoffStage(),
		SaveURL:        "/stages/s1/criteria",
	})))

	if _, ok := doc.QuerySelector(CriteriaRegion + " " + CriteriaForm + " " + CriteriaContainer); !ok {
		t.Fatal("Expected criteria container inside the form")
	}
	got := ranking.EnabledKeys(ranking.ParseForm(doc.FormValues(CriteriaForm)))
	if diff := cmp.Diff([]string{ranking.Wins, ranking.Seed}, got); diff != "" {
		t.Errorf("form fields mismatch (-want +got):\n%s", diff)
	}
	if n := len(doc.QuerySelectorAll(`input[type="hidden"]`)); n != 22 {
		t.Errorf("Expected two fields per criterion, got %d", n)
	}
}

func TestErrorPage(t *testing.T) {
	out := render(t, ErrorPage(404, "stage <x> not found"))
	if !strings.Contains(out, "404 Not Found") {
		t.Errorf("Expected status line, got %q", out)
	}
	if !strings.Contains(out, "stage &lt;x&gt; not found") {
		t.Errorf("Expected escaped message, got %q", out)
	}
}

func TestSeedingPageEscapesPlayerNames(t *testing.T) {
	d := seedingData()
	d.Players = []models.StagePlayer{{ID: `sp"1`, Name: `<img src=x onerror=alert(1)>`, Seed: 1}}
	out := render(t, SeedingList(d))

	if strings.Contains(out, "<img") {
		t.Errorf("Expected player name to be escaped, got %q", out)
	}
	doc := parse(t, `<html><body>`+out+`</body></html>`)
	row, ok := doc.QuerySelector(".seeding-item")
	if !ok {
		t.Fatalf("Expected a seeding row, got %q", out)
	}
	if row.Attr("data-player-id") != `sp"1` {
		t.Errorf("Expected the id to round-trip, got %q", row.Attr("data-player-id"))
	}
	name, _ := row.QuerySelector(".player-name")
	if name.Text() != `<img src=x onerror=alert(1)>` {
		t.Errorf("Unexpected player name %q", name.Text())
	}
}

func TestSeedingPagePrepareForm(t *testing.T) {
	d := seedingData()
	d.PrepareURL = "/stages/s1/seeding/prepare"
	doc := parse(t, render(t, SeedingPage(d)))
	if _, ok := doc.QuerySelector(`form[action="/stages/s1/seeding/prepare"]`); !ok {
		t.Error("Expected prepare form")
	}

	d.Locked = true
	doc = parse(t, render(t, SeedingPage(d)))
	if _, ok := doc.QuerySelector(`form[action="/stages/s1/seeding/prepare"]`); ok {
		t.Error("Expected no prepare form when locked")
	}
}
