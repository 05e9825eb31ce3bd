// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranking

import (
	"log/slog"
	"strconv"

	"github.com/andybalholm/cascadia"

	"github.com/danielhkuo/quickly-seed/dom"
	"github.com/danielhkuo/quickly-seed/reorder"
)

var toggles = cascadia.MustCompile(ToggleSelector)

// Manager keeps a stage's criteria list and its form fields in step with
// drags and toggles. The in-memory list is the source of truth; the
// container is re-rendered from it after every change.
type Manager struct {
	doc      *dom.Document
	criteria []Descriptor
	list     *reorder.List

	// OnChange, when set, receives the ranked criteria after every change.
	OnChange func([]Descriptor)
}

// New renders current (completed with the rest of the catalog) into the
// container and wires it. A missing container leaves the Manager holding
// state without markup.
func New(doc *dom.Document, containerSelector string, current []Descriptor) *Manager {
	m := &Manager{doc: doc, criteria: Complete(current)}
	m.list = reorder.New(doc, containerSelector, reorder.Options{
		ItemSelector: ItemSelector,
		IDAttribute:  IDAttribute,
		OnReorder:    m.onReorder,
	})
	m.render()
	return m
}

// List exposes the underlying reorderable list.
func (m *Manager) List() *reorder.List {
	return m.list
}

// Criteria returns the ranked criteria in list order.
func (m *Manager) Criteria() []Descriptor {
	return Ranks(m.criteria)
}

// Toggle flips key's enabled flag and reports whether key was found.
func (m *Manager) Toggle(key string) bool {
	for i := range m.criteria {
		if m.criteria[i].Key == key {
			m.criteria[i].Enabled = !m.criteria[i].Enabled
			m.changed()
			return true
		}
	}
	return false
}

// onReorder rebuilds the list in the order the document now shows.
func (m *Manager) onReorder(ids []string) {
	byKey := make(map[string]Descriptor, len(m.criteria))
	for _, d := range m.criteria {
		byKey[d.Key] = d
	}
	next := make([]Descriptor, 0, len(m.criteria))
	for _, id := range ids {
		if d, ok := byKey[id]; ok {
			next = append(next, d)
			delete(byKey, id)
		}
	}
	for _, d := range m.criteria {
		if _, ok := byKey[d.Key]; ok {
			next = append(next, d)
		}
	}
	m.criteria = next
	m.changed()
}

func (m *Manager) changed() {
	m.criteria = Ranks(m.criteria)
	m.render()
	if m.OnChange != nil {
		m.OnChange(m.Criteria())
	}
}

func (m *Manager) render() {
	m.list.Refresh()
	container := m.list.Container()
	if container.IsZero() {
		return
	}
	markup, err := renderItems(m.criteria)
	if err != nil {
		slog.Error("render ranking criteria", "error", err)
		return
	}
	if err := container.SetInnerHTML(markup); err != nil {
		slog.Error("replace ranking criteria", "error", err)
		return
	}
	m.list.Refresh()
	m.setupToggles(container)
	m.UpdateCriteriaInput()
}

func (m *Manager) setupToggles(container dom.Element) {
	for _, toggle := range container.QueryAll(toggles) {
		key := toggle.Attr(IDAttribute)
		toggle.AddEventListener(dom.EventClick, m, func(*dom.Event) {
			m.Toggle(key)
		})
	}
}

// UpdateCriteriaInput writes each criterion's enabled flag and rank into the
// page's form fields. Missing fields are skipped.
func (m *Manager) UpdateCriteriaInput() {
	if m.doc == nil {
		return
	}
	for _, d := range Ranks(m.criteria) {
		enabled, order := "", ""
		if d.Enabled {
			enabled, order = "on", strconv.Itoa(d.Order)
		}
		if field, ok := m.doc.QuerySelector(`input[name="` + EnabledField(d.Key) + `"]`); ok {
			field.SetValue(enabled)
		}
		if field, ok := m.doc.QuerySelector(`input[name="` + OrderField(d.Key) + `"]`); ok {
			field.SetValue(order)
		}
	}
}
