// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranking

import (
	"context"
	_ "embed"
	"html/template"
	"strings"

	"github.com/a-h/templ"
)

// Markup hooks used by the rendered list.
const (
	ItemSelector   = ".ranking-criteria-item"
	IDAttribute    = "data-key"
	ToggleSelector = ".toggle-switch"
)

//go:embed items.html
var itemsHTML string

var itemsTemplate = template.Must(template.New("items").Parse(itemsHTML))

// row is one rendered criterion.
type row struct {
	Criterion
	Enabled bool
}

// itemsComponent renders the criteria as draggable rows with a drop
// indicator in every gap between two rows. Unknown keys are skipped.
func itemsComponent(criteria []Descriptor) templ.Component {
	rows := make([]row, 0, len(criteria))
	for _, d := range criteria {
		if c, ok := Lookup(d.Key); ok {
			rows = append(rows, row{Criterion: c, Enabled: d.Enabled})
		}
	}
	return templ.FromGoHTML(itemsTemplate, rows)
}

// renderItems returns the list markup as a string.
func renderItems(criteria []Descriptor) (string, error) {
	var b strings.Builder
	if err := itemsComponent(criteria).Render(context.Background(), &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
