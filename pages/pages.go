// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pages

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-seed/models"
	"github.com/danielhkuo/quickly-seed/ranking"
)

//go:embed templates/*.html
var files embed.FS

var templates = template.Must(template.New("pages").Funcs(template.FuncMap{
	"ordinal":      humanize.Ordinal,
	"statusText":   http.StatusText,
	"complete":     ranking.Complete,
	"enabledField": ranking.EnabledField,
	"orderField":   ranking.OrderField,
}).ParseFS(files, "templates/*.html"))

// component binds one named template to its data.
func component(name string, data any) templ.Component {
	return templ.FromGoHTML(templates.Lookup(name), data)
}

// Selectors shared with the live views built over these pages.
const (
	SeedingRegion     = "#seeding-list"
	SeedingContainer  = "#sortable-seeding"
	CriteriaRegion    = "#criteria-editor"
	CriteriaContainer = "#ranking-criteria"
	CriteriaForm      = "#criteria-form"
)

type SeedingPageData struct {
	TournamentName string
	Stage          models.Stage
	Players        []models.StagePlayer
	UpdateURL      string
	RandomizeURL   string
	// PrepareURL, when set, refills the stage from the previous stage's
	// standings.
	PrepareURL string
	ViewID     string
	// Locked disables reordering once matches were reported.
	Locked bool
}

type CriteriaPageData struct {
	TournamentName string
	Stage          models.Stage
	Criteria       []ranking.Descriptor
	SaveURL        string
	ViewID         string
}

func stageTitle(tournament string, stage models.Stage) string {
	return tournament + " - " + stage.Name
}

// Heading is the page's h1.
func (d SeedingPageData) Heading() string {
	return stageTitle(d.TournamentName, d.Stage)
}

func (d SeedingPageData) Title() string {
	return d.Heading() + " seeding"
}

// SeedingPage is the full seeding editor for a stage.
func SeedingPage(d SeedingPageData) templ.Component {
	return component("seeding-page", d)
}

// SeedingList renders the contents of the seeding region: the sortable
// container and one row per player in seed order.
func SeedingList(d SeedingPageData) templ.Component {
	return component("seeding-list", d)
}

func (d CriteriaPageData) Heading() string {
	return stageTitle(d.TournamentName, d.Stage)
}

func (d CriteriaPageData) Title() string {
	return d.Heading() + " ranking criteria"
}

// CriteriaPage is the standings criteria editor for a stage. The list itself
// is filled in by the ranking editor; the page carries the form fields it
// writes to.
func CriteriaPage(d CriteriaPageData) templ.Component {
	return component("criteria-page", d)
}

type errorPageData struct {
	Status  int
	Message string
	ViewID  string
}

func (errorPageData) Title() string { return "Error" }

// ErrorPage renders a minimal error document.
func ErrorPage(status int, message string) templ.Component {
	return component("error-page", errorPageData{Status: status, Message: message})
}
