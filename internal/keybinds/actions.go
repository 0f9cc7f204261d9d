package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	ContextGlobal  Context = "global"  // Available everywhere
	ContextInput   Context = "input"   // Query input focused
	ContextResult  Context = "result"  // Result and chart pane focused
	ContextHistory Context = "history" // History list focused
	ContextFilter  Context = "filter"  // History filter input
	ContextRaw     Context = "raw"     // Raw JSON viewer
	ContextHelp    Context = "help"    // Help viewer
)

const (
	// Global actions
	ActionQuit      Action = "quit"
	ActionQuitForce Action = "quit_force"

	// Focus
	ActionSwitchFocus  Action = "switch_focus"
	ActionFocusInput   Action = "focus_input"
	ActionFocusHistory Action = "focus_history"

	// Query input
	ActionSubmit         Action = "submit"
	ActionSubmitAdvanced Action = "submit_advanced"
	ActionNextSuggestion Action = "next_suggestion"
	ActionClearInput     Action = "clear_input"

	// Navigation
	ActionNavigateUp     Action = "navigate_up"
	ActionNavigateDown   Action = "navigate_down"
	ActionPageUp         Action = "page_up"
	ActionPageDown       Action = "page_down"
	ActionGoToTop        Action = "go_to_top"
	ActionGoToTopPrepare Action = "go_to_top_prepare" // first 'g' of 'gg'
	ActionGoToBottom     Action = "go_to_bottom"

	// Chart
	ActionNextScheme  Action = "next_scheme"
	ActionToggleChart Action = "toggle_chart"
	ActionChartMenu   Action = "chart_menu" // digit selects the menu entry
	ActionExportChart Action = "export_chart"

	// Result
	ActionCopyResult Action = "copy_result"
	ActionShowRaw    Action = "show_raw"
	ActionCloseModal Action = "close_modal"

	// History
	ActionHistorySelect Action = "history_select"
	ActionHistoryPrev   Action = "history_prev"
	ActionHistoryNext   Action = "history_next"
	ActionHistoryReload Action = "history_reload"
	ActionHistoryFilter Action = "history_filter"

	// Filter input
	ActionFilterApply  Action = "filter_apply"
	ActionFilterCancel Action = "filter_cancel"

	ActionOpenHelp Action = "open_help"
)

// ActionInfo contains metadata about an action
type ActionInfo struct {
	Action      Action
	Description string
	Category    string
}

var actionInfos = map[Action]ActionInfo{
	ActionQuit:           {ActionQuit, "Quit", "Global"},
	ActionQuitForce:      {ActionQuitForce, "Force quit", "Global"},
	ActionSwitchFocus:    {ActionSwitchFocus, "Switch focus", "Focus"},
	ActionFocusInput:     {ActionFocusInput, "Focus query input", "Focus"},
	ActionFocusHistory:   {ActionFocusHistory, "Focus history", "Focus"},
	ActionSubmit:         {ActionSubmit, "Analyze", "Query"},
	ActionSubmitAdvanced: {ActionSubmitAdvanced, "Advanced analysis", "Query"},
	ActionNextSuggestion: {ActionNextSuggestion, "Cycle suggestions", "Query"},
	ActionClearInput:     {ActionClearInput, "Clear input", "Query"},
	ActionNavigateUp:     {ActionNavigateUp, "Move up", "Navigation"},
	ActionNavigateDown:   {ActionNavigateDown, "Move down", "Navigation"},
	ActionPageUp:         {ActionPageUp, "Page up", "Navigation"},
	ActionPageDown:       {ActionPageDown, "Page down", "Navigation"},
	ActionGoToTop:        {ActionGoToTop, "Go to top", "Navigation"},
	ActionGoToTopPrepare: {ActionGoToTopPrepare, "Go to top (first key)", "Navigation"},
	ActionGoToBottom:     {ActionGoToBottom, "Go to bottom", "Navigation"},
	ActionNextScheme:     {ActionNextScheme, "Next color scheme", "Chart"},
	ActionToggleChart:    {ActionToggleChart, "Toggle chart", "Chart"},
	ActionChartMenu:      {ActionChartMenu, "Chart menu entry", "Chart"},
	ActionExportChart:    {ActionExportChart, "Export chart", "Chart"},
	ActionCopyResult:     {ActionCopyResult, "Copy result", "Result"},
	ActionShowRaw:        {ActionShowRaw, "Show raw JSON", "Result"},
	ActionCloseModal:     {ActionCloseModal, "Close", "Result"},
	ActionHistorySelect:  {ActionHistorySelect, "Rerun entry", "History"},
	ActionHistoryPrev:    {ActionHistoryPrev, "Previous page", "History"},
	ActionHistoryNext:    {ActionHistoryNext, "Next page", "History"},
	ActionHistoryReload:  {ActionHistoryReload, "Reload page", "History"},
	ActionHistoryFilter:  {ActionHistoryFilter, "Filter entries", "History"},
	ActionFilterApply:    {ActionFilterApply, "Apply filter", "History"},
	ActionFilterCancel:   {ActionFilterCancel, "Cancel filter", "History"},
	ActionOpenHelp:       {ActionOpenHelp, "Help", "Global"},
}

// GetActionInfo returns human-readable information about an action
func GetActionInfo(action Action) ActionInfo {
	if info, ok := actionInfos[action]; ok {
		return info
	}
	return ActionInfo{action, string(action), "Unknown"}
}

// IsKnownAction reports whether the action is handled by the UI
func IsKnownAction(action Action) bool {
	_, ok := actionInfos[action]
	return ok
}

// IsGlobalAction returns true if the action is available in all contexts
func IsGlobalAction(action Action) bool {
	return action == ActionQuit || action == ActionQuitForce
}
