package tui

import (
	"sort"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/chart"
)

// termWindow is the chart.Window of the terminal; WindowSizeMsg drives it
type termWindow struct {
	width     int // cells
	height    int
	listeners map[int]func()
	nextID    int
}

func newTermWindow() *termWindow {
	return &termWindow{listeners: make(map[int]func())}
}

func (w *termWindow) Viewport() chart.Size {
	return chart.Size{Width: w.width * CellWidthPx, Height: w.height * CellHeightPx}
}

func (w *termWindow) OnResize(fn func()) func() {
	id := w.nextID
	w.nextID++
	w.listeners[id] = fn
	return func() {
		delete(w.listeners, id)
	}
}

// resize records the new terminal size and notifies listeners in
// registration order
func (w *termWindow) resize(width, height int) {
	w.width = width
	w.height = height

	ids := make([]int, 0, len(w.listeners))
	for id := range w.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := w.listeners[id]; ok {
			fn()
		}
	}
}

func (w *termWindow) listenerCount() int {
	return len(w.listeners)
}
