// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dom

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a live element tree plus its event listeners.
type Document struct {
	root      *html.Node
	listeners map[*html.Node][]listener

	// dragging is the source of the gesture in flight. It keeps its
	// listeners when re-rendered away until dragend has been delivered.
	dragging *html.Node
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &Document{root: root, listeners: make(map[*html.Node][]listener)}, nil
}

// ParseString is Parse for markup already held in memory.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// Root returns the document node.
func (d *Document) Root() Element {
	return Element{doc: d, node: d.root}
}

// Body returns the <body> element, or the root if the tree has none.
func (d *Document) Body() Element {
	if n := cascadia.Query(d.root, bodySelector); n != nil {
		return Element{doc: d, node: n}
	}
	return d.Root()
}

var bodySelector = cascadia.Selector(func(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.Body
})

// QuerySelector returns the first element in document order matching sel.
func (d *Document) QuerySelector(sel string) (Element, bool) {
	return d.Root().QuerySelector(sel)
}

// QuerySelectorAll returns every element matching sel in document order.
func (d *Document) QuerySelectorAll(sel string) []Element {
	return d.Root().QuerySelectorAll(sel)
}

// Render writes the whole document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, returning "" on error.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// FormValues collects name/value pairs from the inputs inside the element
// matched by formSel. Checkboxes and radios only contribute when checked.
// A missing form yields empty values.
func (d *Document) FormValues(formSel string) url.Values {
	values := url.Values{}
	form, ok := d.QuerySelector(formSel)
	if !ok {
		return values
	}
	for _, input := range form.QuerySelectorAll("input[name], textarea[name], select[name]") {
		if _, disabled := input.LookupAttr("disabled"); disabled {
			continue
		}
		switch strings.ToLower(input.Attr("type")) {
		case "checkbox", "radio":
			if _, checked := input.LookupAttr("checked"); !checked {
				continue
			}
			value, ok := input.LookupAttr("value")
			if !ok {
				value = "on"
			}
			values.Add(input.Attr("name"), value)
		default:
			if input.Tag() == "textarea" {
				values.Add(input.Attr("name"), input.Text())
				continue
			}
			values.Add(input.Attr("name"), input.Value())
		}
	}
	return values
}

// forget drops listeners registered on n and its descendants, except for the
// subtree of a node being dragged.
func (d *Document) forget(n *html.Node) {
	if n == d.dragging {
		return
	}
	delete(d.listeners, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.forget(c)
	}
}

// attached reports whether n is still reachable from the root.
func (d *Document) attached(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == d.root {
			return true
		}
	}
	return false
}
