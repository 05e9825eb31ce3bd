// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dom

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const listPage = `<!DOCTYPE html><html><body>
<div id="list">
  <div class="item" id="a">A</div>
  <div class="item" id="b">B</div>
  <div class="item" id="c">C</div>
</div>
<form id="f">
  <input name="title" value="Spring">
  <input type="checkbox" name="open" checked>
  <input type="checkbox" name="closed">
  <input name="skip" value="x" disabled>
  <textarea name="notes">hello</textarea>
</form>
</body></html>`

func mustParse(t *testing.T, markup string) *Document {
	t.Helper()
	doc, err := ParseString(markup)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return doc
}

func ids(els []Element) []string {
	out := make([]string, len(els))
	for i, e := range els {
		out[i] = e.Attr("id")
	}
	return out
}

func TestQuerySelectorAll(t *testing.T) {
	doc := mustParse(t, listPage)

	got := ids(doc.QuerySelectorAll("#list .item"))
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("QuerySelectorAll() mismatch (-want +got):\n%s", diff)
	}

	if _, ok := doc.QuerySelector("#missing"); ok {
		t.Error("Expected no match for #missing")
	}

	if got := doc.QuerySelectorAll("[[["); got != nil {
		t.Errorf("Expected invalid selector to match nothing, got %d elements", len(got))
	}
}

func TestClassList(t *testing.T) {
	doc := mustParse(t, `<div id="x" class="one two"></div>`)
	el, _ := doc.QuerySelector("#x")

	el.AddClass("three")
	el.AddClass("two")
	if diff := cmp.Diff([]string{"one", "two", "three"}, el.Classes()); diff != "" {
		t.Errorf("Classes() after AddClass mismatch (-want +got):\n%s", diff)
	}

	el.RemoveClass("one")
	el.RemoveClass("two")
	el.RemoveClass("three")
	if _, ok := el.LookupAttr("class"); ok {
		t.Error("Expected class attribute to be removed once empty")
	}
}

func TestInsertBeforeMovesNode(t *testing.T) {
	doc := mustParse(t, listPage)
	list, _ := doc.QuerySelector("#list")
	a, _ := doc.QuerySelector("#a")
	c, _ := doc.QuerySelector("#c")

	if err := list.InsertBefore(c, a); err != nil {
		t.Fatalf("InsertBefore() error = %v", err)
	}
	if diff := cmp.Diff([]string{"c", "a", "b"}, ids(list.QuerySelectorAll(".item"))); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	// Zero ref appends.
	if err := list.InsertBefore(c, Element{}); err != nil {
		t.Fatalf("InsertBefore(append) error = %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, ids(list.QuerySelectorAll(".item"))); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertBeforeErrors(t *testing.T) {
	doc := mustParse(t, listPage)
	list, _ := doc.QuerySelector("#list")
	form, _ := doc.QuerySelector("#f")
	a, _ := doc.QuerySelector("#a")

	if err := list.InsertBefore(a, form); err != ErrNotChild {
		t.Errorf("Expected ErrNotChild, got %v", err)
	}
	if err := a.InsertBefore(list, Element{}); err != ErrHierarchy {
		t.Errorf("Expected ErrHierarchy, got %v", err)
	}
	if err := list.InsertBefore(Element{}, a); err != ErrDetached {
		t.Errorf("Expected ErrDetached, got %v", err)
	}
}

func TestSetInnerHTMLDropsListeners(t *testing.T) {
	doc := mustParse(t, listPage)
	list, _ := doc.QuerySelector("#list")
	a, _ := doc.QuerySelector("#a")
	a.AddEventListener(EventClick, "owner", func(*Event) {})

	if err := list.SetInnerHTML(`<div class="item" id="z">Z</div>`); err != nil {
		t.Fatalf("SetInnerHTML() error = %v", err)
	}
	if diff := cmp.Diff([]string{"z"}, ids(list.QuerySelectorAll(".item"))); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
	if _, ok := doc.listeners[a.Node()]; ok {
		t.Error("Expected listeners of replaced nodes to be forgotten")
	}
	if !strings.Contains(list.OuterHTML(), `id="z"`) {
		t.Errorf("OuterHTML() = %q, want the new child", list.OuterHTML())
	}
}

func TestFormValues(t *testing.T) {
	doc := mustParse(t, listPage)
	values := doc.FormValues("#f")

	if got := values.Get("title"); got != "Spring" {
		t.Errorf("title = %q, want Spring", got)
	}
	if got := values.Get("open"); got != "on" {
		t.Errorf("open = %q, want on", got)
	}
	if values.Has("closed") {
		t.Error("Expected unchecked checkbox to be skipped")
	}
	if values.Has("skip") {
		t.Error("Expected disabled input to be skipped")
	}
	if got := values.Get("notes"); got != "hello" {
		t.Errorf("notes = %q, want hello", got)
	}

	if got := doc.FormValues("#nope"); len(got) != 0 {
		t.Errorf("Expected empty values for missing form, got %v", got)
	}
}

func TestListenerReplacedByOwner(t *testing.T) {
	doc := mustParse(t, listPage)
	a, _ := doc.QuerySelector("#a")

	calls := 0
	for i := 0; i < 3; i++ {
		a.AddEventListener(EventClick, "wiring", func(*Event) { calls++ })
	}
	if n := a.ListenerCount(EventClick); n != 1 {
		t.Fatalf("ListenerCount() = %d, want 1", n)
	}
	Click(a)
	if calls != 1 {
		t.Errorf("Expected one call, got %d", calls)
	}

	a.RemoveEventListeners("wiring")
	if n := a.ListenerCount(EventClick); n != 0 {
		t.Errorf("ListenerCount() after removal = %d, want 0", n)
	}
}

func TestDispatchBubblesAndRecovers(t *testing.T) {
	doc := mustParse(t, listPage)
	list, _ := doc.QuerySelector("#list")
	a, _ := doc.QuerySelector("#a")

	var seen []string
	a.AddEventListener(EventClick, 1, func(*Event) { panic("broken widget") })
	a.AddEventListener(EventClick, 2, func(ev *Event) { seen = append(seen, "a") })
	list.AddEventListener(EventClick, 1, func(ev *Event) {
		if ev.Target != a {
			t.Errorf("Target = %v, want #a", ev.Target.Attr("id"))
		}
		if ev.CurrentTarget != list {
			t.Errorf("CurrentTarget = %v, want #list", ev.CurrentTarget.Attr("id"))
		}
		seen = append(seen, "list")
	})

	Click(a)
	if diff := cmp.Diff([]string{"a", "list"}, seen); diff != "" {
		t.Errorf("dispatch order mismatch (-want +got):\n%s", diff)
	}

	seen = nil
	a.AddEventListener(EventClick, 2, func(ev *Event) {
		seen = append(seen, "a")
		ev.StopPropagation()
	})
	Click(a)
	if diff := cmp.Diff([]string{"a"}, seen); diff != "" {
		t.Errorf("StopPropagation mismatch (-want +got):\n%s", diff)
	}
}

func TestDragProtocol(t *testing.T) {
	doc := mustParse(t, listPage)
	a, _ := doc.QuerySelector("#a")
	b, _ := doc.QuerySelector("#b")

	var events []string
	record := func(name string) func(*Event) {
		return func(ev *Event) { events = append(events, name+":"+ev.Type) }
	}
	a.AddEventListener(EventDragStart, "t", func(ev *Event) {
		events = append(events, "a:dragstart")
		ev.DataTransfer.SetData(MIMEText, "a")
	})
	a.AddEventListener(EventDragEnd, "t", record("a"))
	b.AddEventListener(EventDragLeave, "t", record("b"))
	b.AddEventListener(EventDrop, "t", func(ev *Event) {
		events = append(events, "b:drop:"+ev.DataTransfer.GetData(MIMEText))
	})

	// b does not accept drops yet.
	if Drag(a, b) {
		t.Error("Expected drop to be refused without dragover acceptance")
	}
	if diff := cmp.Diff([]string{"a:dragstart", "b:dragleave", "a:dragend"}, events); diff != "" {
		t.Errorf("refused gesture mismatch (-want +got):\n%s", diff)
	}

	events = nil
	b.AddEventListener(EventDragOver, "t", func(ev *Event) { ev.PreventDefault() })
	if !Drag(a, b) {
		t.Error("Expected drop to be delivered")
	}
	if diff := cmp.Diff([]string{"a:dragstart", "b:drop:a", "a:dragend"}, events); diff != "" {
		t.Errorf("accepted gesture mismatch (-want +got):\n%s", diff)
	}

	events = nil
	if Drag(a, Element{}) {
		t.Error("Expected abandoned gesture to report no drop")
	}
	if diff := cmp.Diff([]string{"a:dragstart", "a:dragend"}, events); diff != "" {
		t.Errorf("abandoned gesture mismatch (-want +got):\n%s", diff)
	}
}

func TestDragEndReachesReplacedSource(t *testing.T) {
	doc := mustParse(t, listPage)
	list, _ := doc.QuerySelector("#list")
	a, _ := doc.QuerySelector("#a")
	b, _ := doc.QuerySelector("#b")

	ended := 0
	a.AddEventListener(EventDragEnd, "t", func(*Event) { ended++ })
	b.AddEventListener(EventDragOver, "t", func(ev *Event) { ev.PreventDefault() })
	b.AddEventListener(EventDrop, "t", func(*Event) {
		if err := list.SetInnerHTML(`<div class="item" id="z">Z</div>`); err != nil {
			t.Errorf("SetInnerHTML() error = %v", err)
		}
	})

	if !Drag(a, b) {
		t.Fatal("Expected drop to be delivered")
	}
	if ended != 1 {
		t.Errorf("Expected dragend on the replaced source once, got %d", ended)
	}
	if _, ok := doc.listeners[a.Node()]; ok {
		t.Error("Expected listeners of the detached source to be forgotten after dragend")
	}
	if doc.dragging != nil {
		t.Error("Expected no gesture in flight")
	}
}
