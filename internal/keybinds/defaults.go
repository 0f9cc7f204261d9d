package keybinds

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	registerGlobalBindings(r)
	registerInputBindings(r)
	registerResultBindings(r)
	registerHistoryBindings(r)
	registerFilterBindings(r)
	registerViewerBindings(r, ContextRaw)
	registerViewerBindings(r, ContextHelp)

	return r
}

func registerGlobalBindings(r *Registry) {
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
	r.Register(ContextGlobal, "tab", ActionSwitchFocus)
}

// The input context only binds modifier keys so typing is never captured.
func registerInputBindings(r *Registry) {
	r.Register(ContextInput, "enter", ActionSubmit)
	r.Register(ContextInput, "ctrl+a", ActionSubmitAdvanced)
	r.Register(ContextInput, "ctrl+n", ActionNextSuggestion)
	r.Register(ContextInput, "ctrl+u", ActionClearInput)
	r.Register(ContextInput, "ctrl+h", ActionFocusHistory)
	r.Register(ContextInput, "esc", ActionFocusHistory)
}

func registerResultBindings(r *Registry) {
	r.Register(ContextResult, "q", ActionQuit)
	r.Register(ContextResult, "i", ActionFocusInput)
	r.RegisterMultiple(ContextResult, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextResult, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextResult, "pgup", ActionPageUp)
	r.Register(ContextResult, "pgdown", ActionPageDown)
	r.Register(ContextResult, "g", ActionGoToTopPrepare)
	r.Register(ContextResult, "gg", ActionGoToTop)
	r.RegisterMultiple(ContextResult, []string{"G", "end"}, ActionGoToBottom)
	r.Register(ContextResult, "home", ActionGoToTop)
	r.Register(ContextResult, "c", ActionNextScheme)
	r.Register(ContextResult, "t", ActionToggleChart)
	r.RegisterMultiple(ContextResult, []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"}, ActionChartMenu)
	r.Register(ContextResult, "e", ActionExportChart)
	r.Register(ContextResult, "y", ActionCopyResult)
	r.Register(ContextResult, "r", ActionShowRaw)
	r.Register(ContextResult, "?", ActionOpenHelp)
}

func registerHistoryBindings(r *Registry) {
	r.Register(ContextHistory, "q", ActionQuit)
	r.Register(ContextHistory, "i", ActionFocusInput)
	r.RegisterMultiple(ContextHistory, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextHistory, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextHistory, "enter", ActionHistorySelect)
	r.RegisterMultiple(ContextHistory, []string{"[", "left", "h"}, ActionHistoryPrev)
	r.RegisterMultiple(ContextHistory, []string{"]", "right", "l"}, ActionHistoryNext)
	r.Register(ContextHistory, "R", ActionHistoryReload)
	r.Register(ContextHistory, "/", ActionHistoryFilter)
	r.Register(ContextHistory, "c", ActionNextScheme)
	r.Register(ContextHistory, "t", ActionToggleChart)
	r.Register(ContextHistory, "?", ActionOpenHelp)
}

func registerFilterBindings(r *Registry) {
	r.Register(ContextFilter, "enter", ActionFilterApply)
	r.Register(ContextFilter, "esc", ActionFilterCancel)
}

func registerViewerBindings(r *Registry, ctx Context) {
	r.RegisterMultiple(ctx, []string{"esc", "q"}, ActionCloseModal)
	r.RegisterMultiple(ctx, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ctx, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ctx, "pgup", ActionPageUp)
	r.Register(ctx, "pgdown", ActionPageDown)
	r.Register(ctx, "g", ActionGoToTopPrepare)
	r.Register(ctx, "gg", ActionGoToTop)
	r.Register(ctx, "G", ActionGoToBottom)
}
