package ui

import (
	"reflect"
	"testing"

	"aoedash/internal/pages"

	tea "github.com/charmbracelet/bubbletea"
)

func singleDef() pages.FilterDef {
	return pages.FilterDef{Column: "civ", Label: "Civ", Placeholder: "Choose a civ", Kind: pages.SingleSelect, DefaultIndex: 1}
}

func multiDef() pages.FilterDef {
	return pages.FilterDef{Column: "map", Label: "Map", Placeholder: "All maps", Kind: pages.MultiSelect}
}

func TestFilterWidgetSingleSelectDefault(t *testing.T) {
	w := NewFilterWidget(singleDef())

	got := w.Sync([]string{"Aztecs", "Britons", "Franks"}, 0)
	if !reflect.DeepEqual(got, []string{"Britons"}) {
		t.Fatalf("expected default option, got %v", got)
	}

	if !w.Toggle("Franks") {
		t.Fatal("picking a new option should report a change")
	}
	if w.Toggle("Franks") {
		t.Fatal("picking the held option should not report a change")
	}
	if got := w.Sync([]string{"Aztecs", "Britons", "Franks"}, 0); !reflect.DeepEqual(got, []string{"Franks"}) {
		t.Fatalf("selection lost across passes: %v", got)
	}
}

func TestFilterWidgetClearsOnNewGeneration(t *testing.T) {
	single := NewFilterWidget(singleDef())
	single.Sync([]string{"Aztecs", "Britons"}, 0)
	single.Toggle("Aztecs")
	if got := single.Sync([]string{"Aztecs", "Britons"}, 1); !reflect.DeepEqual(got, []string{"Britons"}) {
		t.Errorf("single-select should restart from its default, got %v", got)
	}

	multi := NewFilterWidget(multiDef())
	multi.Sync([]string{"Arabia", "Arena"}, 0)
	multi.Toggle("Arena")
	if got := multi.Sync([]string{"Arabia", "Arena"}, 1); got != nil {
		t.Errorf("multi-select should be empty after reset, got %v", got)
	}
}

func TestFilterWidgetMultiToggle(t *testing.T) {
	w := NewFilterWidget(multiDef())
	if got := w.Sync([]string{"Arabia", "Arena", "Nomad"}, 0); got != nil {
		t.Fatalf("multi-select starts empty, got %v", got)
	}
	if w.Summary() != "All maps" {
		t.Errorf("empty widget should show placeholder, got %q", w.Summary())
	}

	w.Toggle("Nomad")
	w.Toggle("Arabia")
	if got := w.Values(); !reflect.DeepEqual(got, []string{"Nomad", "Arabia"}) {
		t.Fatalf("values should keep pick order, got %v", got)
	}
	w.Toggle("Nomad")
	if got := w.Values(); !reflect.DeepEqual(got, []string{"Arabia"}) {
		t.Fatalf("toggle should remove, got %v", got)
	}
}

func TestFilterWidgetDropsVanishedOptions(t *testing.T) {
	w := NewFilterWidget(multiDef())
	w.Sync([]string{"Arabia", "Arena"}, 0)
	w.Toggle("Arena")
	w.Toggle("Arabia")

	if got := w.Sync([]string{"Arabia"}, 0); !reflect.DeepEqual(got, []string{"Arabia"}) {
		t.Errorf("expected only surviving options, got %v", got)
	}
}

func TestFilterWidgetPickerKeys(t *testing.T) {
	w := NewFilterWidget(multiDef())
	w.Sync([]string{"Arabia", "Arena"}, 0)
	w.Open()
	if !w.IsOpen() {
		t.Fatal("picker should be open")
	}

	w.Update(tea.KeyMsg{Type: tea.KeyDown})
	changed, _ := w.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !changed {
		t.Fatal("space should toggle the highlighted option")
	}
	if got := w.Values(); !reflect.DeepEqual(got, []string{"Arena"}) {
		t.Fatalf("expected Arena toggled, got %v", got)
	}

	changed, _ = w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if changed {
		t.Error("enter on a multi-select only closes the picker")
	}
	if w.IsOpen() {
		t.Error("enter should close the picker")
	}
}

func TestFilterWidgetPickerEnterPicksSingle(t *testing.T) {
	w := NewFilterWidget(singleDef())
	w.Sync([]string{"Aztecs", "Britons"}, 0)
	w.Open()

	changed, _ := w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !changed {
		t.Fatal("enter should pick the highlighted option")
	}
	if got := w.Values(); !reflect.DeepEqual(got, []string{"Aztecs"}) {
		t.Fatalf("expected Aztecs, got %v", got)
	}

	w.Open()
	w.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if w.IsOpen() {
		t.Error("esc should close the picker")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Aoe2 Weekly Leaderboard", 8); got != "Aoe2 We…" {
		t.Errorf("got %q", got)
	}
	if got := truncate("Arena", 8); got != "Arena" {
		t.Errorf("got %q", got)
	}
	if got := truncate("Arena", 0); got != "" {
		t.Errorf("got %q", got)
	}
}
