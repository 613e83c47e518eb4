package ui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"aoedash/internal/dashboard"
	"aoedash/internal/filter"
	"aoedash/internal/pages"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// SubView selects what the body of a page shows.
type SubView int

const (
	ViewData SubView = iota
	ViewChart
	ViewInfo
	ViewBackend
)

func (v SubView) String() string {
	switch v {
	case ViewData:
		return "Data"
	case ViewChart:
		return "Chart"
	case ViewInfo:
		return "Info"
	case ViewBackend:
		return "Backend"
	default:
		return "?"
	}
}

// PageModel is one dashboard tab: its filter widgets, the data table and
// the alternate chart, info and backend views.
type PageModel struct {
	page    *pages.Page
	styles  Styles
	widgets []*FilterWidget
	focus   int
	sub     SubView

	table table.Model
	body  viewport.Model
	info  string

	view    *dashboard.View
	loading bool
	layout  LayoutConfig
}

// NewPageModel creates the tab for p.
func NewPageModel(p *pages.Page, styles Styles) *PageModel {
	widgets := make([]*FilterWidget, len(p.Filters))
	for i, def := range p.Filters {
		widgets[i] = NewFilterWidget(def)
	}

	t := table.New(table.WithFocused(true), table.WithHeight(10))
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Theme.Border).
		BorderBottom(true).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(styles.Theme.Card).
		Background(styles.Theme.Primary)
	t.SetStyles(ts)

	pm := &PageModel{
		page:    p,
		styles:  styles,
		widgets: widgets,
		table:   t,
		body:    viewport.New(80, 10),
		loading: true,
		layout:  NewLayoutConfig(80, 24),
	}
	pm.renderInfo()
	return pm
}

// Page returns the page definition.
func (p *PageModel) Page() *pages.Page {
	return p.page
}

// Widgets returns the filter widgets in display order.
func (p *PageModel) Widgets() []*FilterWidget {
	return p.widgets
}

// Submit answers one render pass with the values the widgets hold.
func (p *PageModel) Submit(_ *pages.Page, options map[string][]string, generation uint64) filter.Spec {
	spec := make(filter.Spec, len(p.widgets))
	for _, w := range p.widgets {
		spec[w.def.Column] = w.Sync(options[w.def.Column], generation)
	}
	return spec
}

// SetView installs a settled render.
func (p *PageModel) SetView(v *dashboard.View) {
	p.view = v
	p.loading = false
	p.refreshTable()
	p.refreshBody()
}

// LastView returns the last settled render, nil before the first one.
func (p *PageModel) LastView() *dashboard.View {
	return p.view
}

// SetLoading marks the page as waiting on its dataset.
func (p *PageModel) SetLoading(loading bool) {
	p.loading = loading
}

// Loading reports whether the page is waiting on its dataset.
func (p *PageModel) Loading() bool {
	return p.loading
}

// SetSize lays the page out for the terminal size.
func (p *PageModel) SetSize(layout LayoutConfig) {
	p.layout = layout
	p.table.SetHeight(layout.TableHeight())
	p.table.SetWidth(layout.ContentWidth())
	p.body.Width = layout.ContentWidth()
	p.body.Height = layout.BodyHeight()
	pw, ph := PickerWidth, PickerHeight
	if ph > layout.BodyHeight() {
		ph = layout.BodyHeight()
	}
	for _, w := range p.widgets {
		w.SetSize(pw, ph)
	}
	p.renderInfo()
	p.refreshBody()
}

// SubView returns the active sub-view.
func (p *PageModel) SubView() SubView {
	return p.sub
}

// NextSubView cycles the body between data, chart, info and backend. Pages
// without a chart skip the chart view.
func (p *PageModel) NextSubView() {
	p.sub = (p.sub + 1) % 4
	if p.sub == ViewChart && !p.page.HasChart() {
		p.sub = ViewInfo
	}
	p.body.GotoTop()
	p.refreshBody()
}

// FocusNext moves the filter focus right.
func (p *PageModel) FocusNext() {
	if len(p.widgets) > 0 {
		p.focus = (p.focus + 1) % len(p.widgets)
	}
}

// FocusPrev moves the filter focus left.
func (p *PageModel) FocusPrev() {
	if len(p.widgets) > 0 {
		p.focus = (p.focus + len(p.widgets) - 1) % len(p.widgets)
	}
}

// Focused returns the focused widget, nil for a page without filters.
func (p *PageModel) Focused() *FilterWidget {
	if len(p.widgets) == 0 {
		return nil
	}
	return p.widgets[p.focus]
}

// Picker returns the widget whose picker is open, if any.
func (p *PageModel) Picker() *FilterWidget {
	for _, w := range p.widgets {
		if w.IsOpen() {
			return w
		}
	}
	return nil
}

// Update scrolls the body.
func (p *PageModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if p.sub == ViewData {
		p.table, cmd = p.table.Update(msg)
		return cmd
	}
	p.body, cmd = p.body.Update(msg)
	return cmd
}

func (p *PageModel) refreshTable() {
	// Rows must go before columns shrink or the table indexes past them.
	p.table.SetRows(nil)
	if p.view == nil || p.view.Table == nil {
		p.table.SetColumns(nil)
		return
	}
	tbl := p.view.Table

	widths := make([]int, len(tbl.Columns))
	for i, c := range tbl.Columns {
		widths[i] = lipgloss.Width(c)
	}
	for _, r := range tbl.Rows {
		for i, cell := range r {
			if i < len(widths) {
				if w := lipgloss.Width(cell); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}
	cols := make([]table.Column, len(tbl.Columns))
	for i, c := range tbl.Columns {
		cols[i] = table.Column{Title: c, Width: ColumnWidth(widths[i])}
	}
	rows := make([]table.Row, len(tbl.Rows))
	for i, r := range tbl.Rows {
		rows[i] = table.Row(r)
	}
	p.table.SetColumns(cols)
	p.table.SetRows(rows)
	p.table.GotoTop()
}

func (p *PageModel) refreshBody() {
	switch p.sub {
	case ViewChart:
		p.body.SetContent(p.chartView())
	case ViewInfo:
		p.body.SetContent(p.info)
	case ViewBackend:
		p.body.SetContent(p.backendView())
	}
}

func (p *PageModel) renderInfo() {
	md := fmt.Sprintf("# %s\n\n%s\n", p.page.Heading, p.page.Info)
	style := "light"
	if p.styles.Theme.IsDark {
		style = "dark"
	}
	width := p.layout.ContentWidth() - 4
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		p.info = md
		return
	}
	out, err := r.Render(md)
	if err != nil {
		p.info = md
		return
	}
	p.info = out
}

func (p *PageModel) chartView() string {
	if p.view == nil || len(p.view.Series) == 0 {
		return p.styles.Muted.Render("No data points for the selected filters.")
	}
	var sb strings.Builder
	sb.WriteString(p.styles.Title.Render(p.page.ChartTitle))
	sb.WriteString("\n\n")

	barWidth := p.layout.ContentWidth() - 22
	if barWidth < 10 {
		barWidth = 10
	}
	for _, pt := range p.view.Series {
		n := int(math.Round(pt.Value / 100 * float64(barWidth)))
		if n < 0 {
			n = 0
		}
		if n > barWidth {
			n = barWidth
		}
		bar := p.styles.Bar.Render(strings.Repeat("█", n)) +
			p.styles.Divider.Render(strings.Repeat("·", barWidth-n))
		fmt.Fprintf(&sb, "%s %s %6.2f%%\n", pt.Date.Format("2006-01-02"), bar, pt.Value)
	}
	return sb.String()
}

func (p *PageModel) backendView() string {
	if p.view == nil {
		return p.styles.Muted.Render("Nothing rendered yet.")
	}
	b := p.view.Backend()

	state := NewSimpleTable("Backend", "Key", "Value")
	state.AddRow("Source", b.Source)
	state.AddRow("Rows", fmt.Sprint(b.Rows))
	state.AddRow("Selected", fmt.Sprint(b.Selected))
	state.AddRow("Columns", strings.Join(b.Columns, ", "))
	state.AddRow("Phase", b.Phase.String())
	state.AddRow("Generation", fmt.Sprint(b.Generation))
	state.AddRow("Passes", fmt.Sprint(b.Passes))

	committed := NewSimpleTable("Committed filters", "Column", "Values")
	cols := make([]string, 0, len(b.Committed))
	for c := range b.Committed {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	for _, c := range cols {
		vals := b.Committed[c]
		if len(vals) == 0 {
			committed.AddRow(c, "(all)")
			continue
		}
		committed.AddRow(c, strings.Join(vals, ", "))
	}
	return state.View(p.styles) + "\n" + committed.View(p.styles)
}

// View renders the filter bar, the sub-view tabs and the body.
func (p *PageModel) View() string {
	var sb strings.Builder

	sb.WriteString(p.styles.Title.Render(p.page.Heading))
	sb.WriteString("\n")

	if len(p.widgets) > 0 {
		width := p.layout.ContentWidth() / len(p.widgets)
		boxes := make([]string, len(p.widgets))
		for i, w := range p.widgets {
			boxes[i] = w.View(p.styles, i == p.focus, width)
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
		sb.WriteString("\n")
	}

	if w := p.Picker(); w != nil {
		sb.WriteString(w.PickerView(p.styles))
		return sb.String()
	}

	sb.WriteString(p.subViewBar())
	sb.WriteString("\n")

	switch {
	case p.loading:
		sb.WriteString(p.styles.Muted.Render("Loading " + p.page.Title + "..."))
	case p.view != nil && p.view.FetchErr != nil && p.sub != ViewInfo:
		sb.WriteString(p.styles.Error.Render("Could not load data: "))
		sb.WriteString(p.styles.Body.Render(p.view.FetchErr.Error()))
		sb.WriteString("\n")
		sb.WriteString(p.styles.Muted.Render("Press r to try again."))
	case p.sub == ViewData:
		if p.view != nil && p.view.Table != nil && p.view.Table.Len() == 0 {
			sb.WriteString(p.styles.Muted.Render("No rows match the selected filters."))
		} else {
			sb.WriteString(p.table.View())
		}
	default:
		sb.WriteString(p.body.View())
	}
	return sb.String()
}

func (p *PageModel) subViewBar() string {
	var parts []string
	for v := ViewData; v <= ViewBackend; v++ {
		if v == ViewChart && !p.page.HasChart() {
			continue
		}
		if v == p.sub {
			parts = append(parts, p.styles.Badge.Render(v.String()))
			continue
		}
		parts = append(parts, p.styles.Muted.Render(v.String()))
	}
	return strings.Join(parts, " ")
}
