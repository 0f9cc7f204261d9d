package tui

import "time"

// UI Layout Constants

const (
	// Charts are sized in pixels; one terminal cell stands for 8×16 px
	CellWidthPx  = 8
	CellHeightPx = 16

	// History pane takes 30% of the width, never less than 28 columns
	HistoryPaneWidthRatio = 0.3
	MinHistoryPaneWidth   = 28

	// Fixed rows: header, input box (3), suggestion line, status bar
	HeaderHeight     = 1
	InputBoxHeight   = 3
	SuggestionHeight = 1
	StatusBarHeight  = 1

	PanelBorderWidth  = 2 // left + right border
	PanelBorderHeight = 2 // top + bottom border
	PanelPadding      = 2 // left + right padding inside panels

	// The chart never takes more than this share of the result panel
	MaxChartShare = 0.6

	// Bar rows reserve this many columns for the category label
	ChartLabelWidth = 14

	// Status and error messages clear after this long
	MessageTimeout = 5 * time.Second

	// Messages longer than this are truncated in the status bar
	MaxStatusLength = 100
)
