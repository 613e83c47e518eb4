package ui

import (
	"strings"

	"aoedash/internal/pages"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

var pickKey = key.NewBinding(key.WithKeys("enter"))

type optionItem struct {
	value    string
	selected bool
	single   bool
}

func (i optionItem) FilterValue() string { return i.value }
func (i optionItem) Description() string { return "" }

func (i optionItem) Title() string {
	mark := "[ ] "
	switch {
	case i.single && i.selected:
		mark = "(•) "
	case i.single:
		mark = "( ) "
	case i.selected:
		mark = "[x] "
	}
	return mark + i.value
}

// FilterWidget holds the value of one filter column. It is the terminal
// counterpart of a multiselect or selectbox: on every render pass it is
// handed the column's options and the filter generation, and it answers
// with the values it currently holds.
type FilterWidget struct {
	def        pages.FilterDef
	options    []string
	selected   []string
	generation uint64
	synced     bool

	open   bool
	picker list.Model
}

// NewFilterWidget creates an empty widget for def.
func NewFilterWidget(def pages.FilterDef) *FilterWidget {
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	d.SetSpacing(0)

	l := list.New(nil, d, PickerWidth, PickerHeight)
	l.Title = def.Label
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	return &FilterWidget{def: def, picker: l}
}

// Def returns the filter definition.
func (w *FilterWidget) Def() pages.FilterDef {
	return w.def
}

// Sync takes the options for this pass and returns the submitted values.
// A generation the widget has not seen yet means the filters were reset,
// so the widget drops its selection and starts over from its default.
func (w *FilterWidget) Sync(options []string, generation uint64) []string {
	if w.synced && generation != w.generation {
		w.Clear()
	}
	w.generation = generation
	w.synced = true

	w.options = append([]string(nil), options...)
	w.selected = retain(w.selected, w.options)
	if len(w.selected) == 0 && w.def.Kind == pages.SingleSelect {
		w.selected = w.def.Default(w.options)
	}
	w.refreshItems()
	return w.Values()
}

// Values returns the selected values in pick order. Nil means nothing is
// selected.
func (w *FilterWidget) Values() []string {
	if len(w.selected) == 0 {
		return nil
	}
	return append([]string(nil), w.selected...)
}

// Options returns the options seen on the last pass.
func (w *FilterWidget) Options() []string {
	return w.options
}

// Toggle flips v in a multi-select and picks v in a single-select. It
// reports whether the held values changed.
func (w *FilterWidget) Toggle(v string) bool {
	if w.def.Kind == pages.SingleSelect {
		if len(w.selected) == 1 && w.selected[0] == v {
			return false
		}
		w.selected = []string{v}
		w.refreshItems()
		return true
	}
	for i, s := range w.selected {
		if s == v {
			w.selected = append(w.selected[:i:i], w.selected[i+1:]...)
			w.refreshItems()
			return true
		}
	}
	w.selected = append(w.selected, v)
	w.refreshItems()
	return true
}

// Clear drops the selection.
func (w *FilterWidget) Clear() {
	w.selected = nil
	w.refreshItems()
}

// Open shows the option picker.
func (w *FilterWidget) Open() {
	w.open = true
	w.picker.ResetFilter()
}

// Close hides the option picker.
func (w *FilterWidget) Close() {
	w.open = false
}

// IsOpen reports whether the picker is showing.
func (w *FilterWidget) IsOpen() bool {
	return w.open
}

// SetSize resizes the picker.
func (w *FilterWidget) SetSize(width, height int) {
	w.picker.SetSize(width, height)
}

// Update routes a message to the open picker and reports whether the
// held values changed.
func (w *FilterWidget) Update(msg tea.Msg) (bool, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && w.picker.FilterState() != list.Filtering {
		switch {
		case key.Matches(km, keys.Toggle):
			return w.toggleCurrent(), nil
		case key.Matches(km, pickKey):
			changed := false
			if w.def.Kind == pages.SingleSelect {
				changed = w.toggleCurrent()
			}
			w.Close()
			return changed, nil
		case key.Matches(km, keys.Close):
			if w.picker.FilterState() == list.FilterApplied {
				w.picker.ResetFilter()
				return false, nil
			}
			w.Close()
			return false, nil
		}
	}

	var cmd tea.Cmd
	w.picker, cmd = w.picker.Update(msg)
	return false, cmd
}

func (w *FilterWidget) toggleCurrent() bool {
	item, ok := w.picker.SelectedItem().(optionItem)
	if !ok {
		return false
	}
	return w.Toggle(item.value)
}

func (w *FilterWidget) refreshItems() {
	held := make(map[string]bool, len(w.selected))
	for _, s := range w.selected {
		held[s] = true
	}
	items := make([]list.Item, len(w.options))
	for i, o := range w.options {
		items[i] = optionItem{value: o, selected: held[o], single: w.def.Kind == pages.SingleSelect}
	}
	w.picker.SetItems(items)
}

// Summary is the one-line text shown in the filter bar.
func (w *FilterWidget) Summary() string {
	if len(w.selected) == 0 {
		return w.def.Placeholder
	}
	return strings.Join(w.selected, ", ")
}

// View renders the collapsed widget.
func (w *FilterWidget) View(styles Styles, focused bool, width int) string {
	box := styles.Filter
	if focused {
		box = styles.FocusedFilter
	}
	// Width excludes the border and includes the padding.
	inner := width - 2
	if inner < MinColumnWidth+2 {
		inner = MinColumnWidth + 2
	}
	text := styles.Body
	if len(w.selected) == 0 {
		text = styles.Muted
	}
	label := styles.Bold.Render(truncate(w.def.Label, inner-2))
	return box.Width(inner).Render(label + "\n" + text.Render(truncate(w.Summary(), inner-2)))
}

// PickerView renders the open option list.
func (w *FilterWidget) PickerView(styles Styles) string {
	return styles.Card.Render(w.picker.View())
}

func retain(values, options []string) []string {
	if len(values) == 0 {
		return nil
	}
	known := make(map[string]bool, len(options))
	for _, o := range options {
		known[o] = true
	}
	var out []string
	for _, v := range values {
		if known[v] {
			out = append(out, v)
		}
	}
	return out
}

func truncate(s string, width int) string {
	if width < 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return string(r[:1])
	}
	return string(r[:width-1]) + "…"
}
