package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"aoedash/internal/chart"
	"aoedash/internal/dashboard"
	"aoedash/internal/logging"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Allows tests to replace the system clipboard.
var clipboardWriteAll = clipboard.WriteAll

// Options configures the dashboard model.
type Options struct {
	Context   context.Context
	Dashboard *dashboard.Dashboard
	// Changes delivers snapshot paths that changed on disk. Optional.
	Changes  <-chan string
	ChartDir string
	Theme    string
	// Prefetch loads every page at startup instead of on first visit.
	Prefetch bool
}

type loadedMsg struct {
	namespace string
	err       error
}

type changedMsg struct {
	path string
}

// Model is the top-level bubbletea model: a tab per page, the "Last
// Updated" card, and a reset action shared by every tab.
type Model struct {
	ctx      context.Context
	dash     *dashboard.Dashboard
	changes  <-chan string
	chartDir string
	prefetch bool

	styles   Styles
	tabs     []*PageModel
	active   int
	inflight map[string]bool
	layout   LayoutConfig

	help    help.Model
	spinner spinner.Model
	status  string
	err     error
}

// New creates the model for opts.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	styles := NewStyles(ThemeByName(opts.Theme))

	var tabs []*PageModel
	for _, p := range opts.Dashboard.Pages() {
		tabs = append(tabs, NewPageModel(p, styles))
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	h := help.New()
	h.Styles.ShortKey = styles.Bold
	h.Styles.ShortDesc = styles.Muted
	h.Styles.FullKey = styles.Bold
	h.Styles.FullDesc = styles.Muted

	return Model{
		ctx:      ctx,
		dash:     opts.Dashboard,
		changes:  opts.Changes,
		chartDir: opts.ChartDir,
		prefetch: opts.Prefetch,
		styles:   styles,
		tabs:     tabs,
		inflight: make(map[string]bool),
		layout:   NewLayoutConfig(MinimumTerminalWidth, MinimumTerminalHeight),
		help:     h,
		spinner:  sp,
	}
}

// Init starts the first downloads and the disk watcher listener.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if len(m.tabs) > 0 {
		if m.prefetch {
			for _, t := range m.tabs {
				cmds = append(cmds, m.load(t))
			}
		} else {
			cmds = append(cmds, m.load(m.tabs[m.active]))
		}
	}
	if m.changes != nil {
		cmds = append(cmds, waitForChange(m.changes))
	}
	return tea.Batch(cmds...)
}

// load fetches a page's dataset off the UI goroutine.
func (m Model) load(t *PageModel) tea.Cmd {
	ns := t.page.Namespace
	if m.inflight[ns] {
		return nil
	}
	m.inflight[ns] = true
	t.SetLoading(true)
	ctx, dash := m.ctx, m.dash
	return func() tea.Msg {
		return loadedMsg{namespace: ns, err: dash.Load(ctx, ns)}
	}
}

func waitForChange(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return changedMsg{path: p}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = NewLayoutConfig(msg.Width, msg.Height)
		m.help.Width = msg.Width
		for _, t := range m.tabs {
			t.SetSize(m.layout)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		delete(m.inflight, msg.namespace)
		t := m.tab(msg.namespace)
		if t == nil {
			return m, nil
		}
		if msg.err != nil {
			logging.UI("load %s failed: %v", msg.namespace, msg.err)
			t.SetView(&dashboard.View{Page: t.page, Source: m.source(msg.namespace), FetchErr: msg.err})
			return m, nil
		}
		m.render(t)
		return m, nil

	case changedMsg:
		var cmds []tea.Cmd
		for _, t := range m.tabs {
			if m.source(t.page.Namespace) == msg.path {
				m.status = fmt.Sprintf("%s changed on disk, reloading", msg.path)
				cmds = append(cmds, m.load(t))
			}
		}
		cmds = append(cmds, waitForChange(m.changes))
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.tabs) == 0 {
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}
	t := m.tabs[m.active]

	if w := t.Picker(); w != nil {
		changed, cmd := w.Update(msg)
		if changed {
			m.render(t)
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.NextPage):
		return m, m.switchTab(1)
	case key.Matches(msg, keys.PrevPage):
		return m, m.switchTab(-1)
	case key.Matches(msg, keys.Left):
		t.FocusPrev()
	case key.Matches(msg, keys.Right):
		t.FocusNext()
	case key.Matches(msg, keys.Open):
		v := t.LastView()
		if w := t.Focused(); w != nil && v != nil && v.Dataset != nil {
			w.Open()
		}
	case key.Matches(msg, keys.NextView):
		t.NextSubView()
	case key.Matches(msg, keys.Reset):
		m.resetFilters()
	case key.Matches(msg, keys.Reload):
		m.dash.Invalidate(t.page.Namespace)
		m.status = "Reloading " + t.page.Title
		return m, m.load(t)
	case key.Matches(msg, keys.Copy):
		m.copyTable(t)
	case key.Matches(msg, keys.Export):
		m.exportChart(t)
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	default:
		return m, t.Update(msg)
	}
	return m, nil
}

// render runs the page's render cycle to a settled view.
func (m *Model) render(t *PageModel) {
	v, err := m.dash.Render(m.ctx, t.page.Namespace, t.Submit)
	if err != nil {
		logging.UI("render %s failed: %v", t.page.Namespace, err)
		m.err = err
		return
	}
	m.err = nil
	t.SetView(v)
}

func (m *Model) switchTab(delta int) tea.Cmd {
	m.active = (m.active + delta + len(m.tabs)) % len(m.tabs)
	t := m.tabs[m.active]
	m.status = ""
	if t.LastView() == nil {
		return m.load(t)
	}
	if t.LastView().FetchErr == nil && !m.inflight[t.page.Namespace] {
		// Pick up resets made on other tabs.
		m.render(t)
	}
	return nil
}

// resetFilters clears the committed filters of every page and re-renders
// the pages that have data so their widgets start over.
func (m *Model) resetFilters() {
	m.dash.Reset()
	for _, t := range m.tabs {
		if v := t.LastView(); v != nil && v.FetchErr == nil && !m.inflight[t.page.Namespace] {
			m.render(t)
		}
	}
	m.status = "All filters reset"
}

func (m *Model) copyTable(t *PageModel) {
	v := t.LastView()
	if v == nil || v.Table == nil {
		m.status = "Nothing to copy"
		return
	}
	if err := clipboardWriteAll(v.Table.CSV()); err != nil {
		m.status = "Copy failed: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("Copied %d row(s) as CSV", v.Table.Len())
}

func (m *Model) exportChart(t *PageModel) {
	v := t.LastView()
	if !t.page.HasChart() || v == nil {
		m.status = "This page has no chart"
		return
	}
	var parts []string
	for _, w := range t.widgets {
		parts = append(parts, v.Committed[w.def.Column]...)
	}
	path := filepath.Join(m.chartDir, chart.FileName(t.page.Namespace, parts...))
	err := chart.WriteFile(path, v.Series, chart.Options{Title: t.page.ChartTitle})
	switch {
	case errors.Is(err, chart.ErrNoData):
		m.status = "No data points to chart"
	case err != nil:
		m.status = "Export failed: " + err.Error()
	default:
		m.status = "Chart written to " + path
	}
}

func (m Model) source(namespace string) string {
	src, _ := m.dash.Source(namespace)
	return src
}

func (m Model) tab(namespace string) *PageModel {
	for _, t := range m.tabs {
		if t.page.Namespace == namespace {
			return t
		}
	}
	return nil
}

// View renders the dashboard.
func (m Model) View() string {
	var sb strings.Builder

	updated := "Last Updated: never"
	var t *PageModel
	if len(m.tabs) > 0 {
		t = m.tabs[m.active]
		if v := t.LastView(); v != nil {
			updated = v.LastUpdated()
		}
	}
	card := m.styles.Card.Render(updated)
	title := m.styles.Header.Render("⚔ " + dashboard.Title + " ⚔")
	reset := m.styles.Muted.Render("R: Reset All filters")
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, card, " ", title, " ", reset))
	sb.WriteString("\n")

	sb.WriteString(m.tabBar())
	sb.WriteString("\n")

	if m.err != nil {
		sb.WriteString(m.styles.Error.Render("Error: " + m.err.Error()))
		sb.WriteString("\n")
	}

	if t == nil {
		sb.WriteString(m.styles.Muted.Render("No pages configured."))
		sb.WriteString("\n")
	} else {
		sb.WriteString(m.styles.Content.Render(t.View()))
		sb.WriteString("\n")
	}

	if len(m.inflight) > 0 {
		sb.WriteString(m.spinner.View() + " ")
	}
	if m.status != "" {
		sb.WriteString(m.styles.Info.Render(m.status))
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.Footer.Render(m.help.View(keys)))
	return sb.String()
}

func (m Model) tabBar() string {
	parts := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		if i == m.active {
			parts[i] = m.styles.ActiveTab.Render(t.page.Title)
			continue
		}
		parts[i] = m.styles.Tab.Render(t.page.Title)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...) + "\n" + m.styles.RenderDivider(m.layout.ContentWidth())
}
