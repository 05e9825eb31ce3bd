// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dom

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var (
	ErrNotChild     = errors.New("reference node is not a child of this element")
	ErrDetached     = errors.New("element is not attached to a document")
	ErrHierarchy    = errors.New("cannot insert an element into its own subtree")
	ErrNotContainer = errors.New("element cannot hold children")
)

// Element is a handle onto one node of a Document. The zero Element is
// "no element": a missing query result or the end of a sibling list.
type Element struct {
	doc  *Document
	node *html.Node
}

// IsZero reports whether e refers to no node.
func (e Element) IsZero() bool {
	return e.node == nil
}

// Node exposes the underlying html.Node.
func (e Element) Node() *html.Node {
	return e.node
}

// Tag returns the lower-case element name.
func (e Element) Tag() string {
	if e.node == nil {
		return ""
	}
	return e.node.Data
}

// LookupAttr returns an attribute value and whether it is present.
func (e Element) LookupAttr(name string) (string, bool) {
	if e.node == nil {
		return "", false
	}
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// Attr returns an attribute value or "".
func (e Element) Attr(name string) string {
	v, _ := e.LookupAttr(name)
	return v
}

// SetAttr adds or replaces an attribute.
func (e Element) SetAttr(name, value string) {
	if e.node == nil {
		return
	}
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes an attribute if present.
func (e Element) RemoveAttr(name string) {
	if e.node == nil {
		return
	}
	e.node.Attr = slices.DeleteFunc(e.node.Attr, func(a html.Attribute) bool {
		return a.Namespace == "" && a.Key == name
	})
}

// Value is the value attribute, which is where form state lives in this tree.
func (e Element) Value() string {
	return e.Attr("value")
}

// SetValue writes the value attribute.
func (e Element) SetValue(v string) {
	e.SetAttr("value", v)
}

// Classes returns the class list.
func (e Element) Classes() []string {
	return strings.Fields(e.Attr("class"))
}

// HasClass reports whether class is in the class list.
func (e Element) HasClass(class string) bool {
	return slices.Contains(e.Classes(), class)
}

// AddClass appends class unless already present.
func (e Element) AddClass(class string) {
	if class == "" || e.HasClass(class) {
		return
	}
	e.SetAttr("class", strings.Join(append(e.Classes(), class), " "))
}

// RemoveClass removes every occurrence of class.
func (e Element) RemoveClass(class string) {
	if !e.HasClass(class) {
		return
	}
	classes := slices.DeleteFunc(e.Classes(), func(c string) bool { return c == class })
	if len(classes) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(classes, " "))
}

// Draggable reports the draggable attribute.
func (e Element) Draggable() bool {
	return e.Attr("draggable") == "true"
}

// SetDraggable writes the draggable attribute.
func (e Element) SetDraggable(on bool) {
	if on {
		e.SetAttr("draggable", "true")
		return
	}
	e.SetAttr("draggable", "false")
}

// Parent returns the parent node, or the zero Element at the root.
func (e Element) Parent() Element {
	if e.node == nil || e.node.Parent == nil {
		return Element{}
	}
	return Element{doc: e.doc, node: e.node.Parent}
}

// NextSibling returns the next node of any type, like the DOM property of
// the same name. The zero Element means e is the last child.
func (e Element) NextSibling() Element {
	if e.node == nil || e.node.NextSibling == nil {
		return Element{}
	}
	return Element{doc: e.doc, node: e.node.NextSibling}
}

// Children returns the element children in order.
func (e Element) Children() []Element {
	if e.node == nil {
		return nil
	}
	var out []Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, Element{doc: e.doc, node: c})
		}
	}
	return out
}

// Contains reports whether other is e or one of its descendants.
func (e Element) Contains(other Element) bool {
	if e.node == nil {
		return false
	}
	for n := other.node; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}
	return false
}

// InsertBefore moves child so it sits immediately before ref inside e. A zero
// ref appends. child is detached from wherever it was first, so this is also
// how elements are moved.
func (e Element) InsertBefore(child, ref Element) error {
	if e.node == nil || child.node == nil {
		return ErrDetached
	}
	if e.node.Type != html.ElementNode && e.node.Type != html.DocumentNode {
		return ErrNotContainer
	}
	if !ref.IsZero() && ref.node.Parent != e.node {
		return ErrNotChild
	}
	if child.Contains(e) {
		return ErrHierarchy
	}
	if child.node == ref.node {
		return nil
	}
	if p := child.node.Parent; p != nil {
		p.RemoveChild(child.node)
	}
	e.node.InsertBefore(child.node, ref.node)
	return nil
}

// QuerySelector returns the first descendant matching sel.
func (e Element) QuerySelector(sel string) (Element, bool) {
	m, err := cascadia.Compile(sel)
	if err != nil {
		return Element{}, false
	}
	return e.QueryMatcher(m)
}

// QueryMatcher is QuerySelector for a precompiled matcher.
func (e Element) QueryMatcher(m cascadia.Matcher) (Element, bool) {
	if e.node == nil {
		return Element{}, false
	}
	n := cascadia.Query(e.node, m)
	if n == nil {
		return Element{}, false
	}
	return Element{doc: e.doc, node: n}, true
}

// QuerySelectorAll returns every descendant matching sel in document order.
func (e Element) QuerySelectorAll(sel string) []Element {
	m, err := cascadia.Compile(sel)
	if err != nil {
		return nil
	}
	return e.QueryAll(m)
}

// QueryAll is QuerySelectorAll for a precompiled matcher.
func (e Element) QueryAll(m cascadia.Matcher) []Element {
	if e.node == nil {
		return nil
	}
	nodes := cascadia.QueryAll(e.node, m)
	out := make([]Element, len(nodes))
	for i, n := range nodes {
		out[i] = Element{doc: e.doc, node: n}
	}
	return out
}

// Text returns the concatenated text content.
func (e Element) Text() string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if e.node != nil {
		walk(e.node)
	}
	return b.String()
}

// OuterHTML renders e including its own tag.
func (e Element) OuterHTML() string {
	if e.node == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, e.node); err != nil {
		return ""
	}
	return buf.String()
}

// InnerHTML renders the children of e.
func (e Element) InnerHTML() string {
	if e.node == nil {
		return ""
	}
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

// SetInnerHTML replaces the children of e with a parsed fragment. Listeners on
// the replaced subtree are dropped along with the nodes.
func (e Element) SetInnerHTML(fragment string) error {
	if e.node == nil || e.doc == nil {
		return ErrDetached
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), e.node)
	if err != nil {
		return fmt.Errorf("failed to parse fragment: %w", err)
	}
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.doc.forget(c)
		e.node.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}
