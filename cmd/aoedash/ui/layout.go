// Package ui layout constants for consistent spacing and dimensions
package ui

// Layout constants for panel sizing
const (
	// Chrome around the page body: title, last updated card, tabs, filters,
	// sub-view bar, status and help lines.
	HeaderHeight    = 4
	TabBarHeight    = 2
	FilterBarHeight = 4
	SubViewHeight   = 1
	StatusBarHeight = 1
	HelpPaneHeight  = 1

	// Table dimensions
	TableHeaderHeight = 2
	MaxColumnWidth    = 32
	MinColumnWidth    = 6

	// Picker overlay
	PickerWidth  = 40
	PickerHeight = 16

	// Responsive breakpoints
	MinimumTerminalWidth  = 60
	MinimumTerminalHeight = 20
	CompactModeWidth      = 100
)

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
	IsCompact      bool
}

// NewLayoutConfig creates a layout configuration for the given terminal size
func NewLayoutConfig(width, height int) LayoutConfig {
	if width < MinimumTerminalWidth {
		width = MinimumTerminalWidth
	}
	if height < MinimumTerminalHeight {
		height = MinimumTerminalHeight
	}
	return LayoutConfig{
		TerminalWidth:  width,
		TerminalHeight: height,
		IsCompact:      width < CompactModeWidth,
	}
}

// ContentWidth returns the usable width for a page body
func (l LayoutConfig) ContentWidth() int {
	return l.TerminalWidth - 2
}

// BodyHeight returns the rows left for a page's sub-view once the chrome
// has been drawn.
func (l LayoutConfig) BodyHeight() int {
	h := l.TerminalHeight - HeaderHeight - TabBarHeight - FilterBarHeight -
		SubViewHeight - StatusBarHeight - HelpPaneHeight
	if h < 3 {
		h = 3
	}
	return h
}

// TableHeight returns the visible row count of a data table in the body.
func (l LayoutConfig) TableHeight() int {
	h := l.BodyHeight() - TableHeaderHeight
	if h < 1 {
		h = 1
	}
	return h
}

// ColumnWidth clamps a measured column width to the table bounds.
func ColumnWidth(measured int) int {
	switch {
	case measured < MinColumnWidth:
		return MinColumnWidth
	case measured > MaxColumnWidth:
		return MaxColumnWidth
	default:
		return measured
	}
}
