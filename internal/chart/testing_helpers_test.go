package chart

// fakeSurface records what the renderer draws
type fakeSurface struct {
	width   int
	draws   []Figure
	sizes   []Size
	cleared int
	failDraw error // returned by Draw when set
}

func (s *fakeSurface) ContentWidth() int { return s.width }

func (s *fakeSurface) Draw(fig Figure, size Size) error {
	if s.failDraw != nil {
		return s.failDraw
	}
	s.draws = append(s.draws, fig)
	s.sizes = append(s.sizes, size)
	return nil
}

func (s *fakeSurface) Clear() { s.cleared++ }

func (s *fakeSurface) last() Figure { return s.draws[len(s.draws)-1] }

func (s *fakeSurface) lastSize() Size { return s.sizes[len(s.sizes)-1] }

// fakeWindow keeps resize listeners by id
type fakeWindow struct {
	viewport  Size
	listeners map[int]func()
	nextID    int
}

func newFakeWindow(w, h int) *fakeWindow {
	return &fakeWindow{viewport: Size{Width: w, Height: h}, listeners: make(map[int]func())}
}

func (w *fakeWindow) Viewport() Size { return w.viewport }

func (w *fakeWindow) OnResize(fn func()) func() {
	id := w.nextID
	w.nextID++
	w.listeners[id] = fn
	return func() { delete(w.listeners, id) }
}

func (w *fakeWindow) resize(width, height int) {
	w.viewport = Size{Width: width, Height: height}
	for _, fn := range w.listeners {
		fn()
	}
}

const singleChart = `{
	"data": [
		{"name": "Completed", "type": "bar", "x": ["Apollo 11"], "y": [1969], "marker": {"color": "#123456"}},
		{"name": "Ongoing", "type": "bar", "x": ["Mars Rover", "Hubble Telescope"], "y": [2012, 1990], "marker": {"color": "#654321"}},
		{"name": "Other", "type": "bar", "x": ["Voyager"], "y": [1977], "marker": {"color": "#999999"}}
	],
	"layout": {"title": {"text": "Missions by year"}, "xaxis": {"title": "Mission"}, "yaxis": {"title": {"text": "Year"}}}
}`
