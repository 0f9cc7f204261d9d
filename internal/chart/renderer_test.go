package chart

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func mustParse(t *testing.T, raw string) *Payload {
	t.Helper()
	p, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return p
}

func TestResizePolicy(t *testing.T) {
	policy := DefaultResizePolicy()

	tests := []struct {
		name     string
		width    int
		viewport int
		want     Size
	}{
		{name: "floor applies", width: 800, viewport: 400, want: Size{Width: 800, Height: 300}},
		{name: "fraction applies", width: 1200, viewport: 1000, want: Size{Width: 1200, Height: 600}},
		{name: "exactly at floor", width: 640, viewport: 500, want: Size{Width: 640, Height: 300}},
		{name: "zero viewport", width: 100, viewport: 0, want: Size{Width: 100, Height: 300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Size(tt.width, tt.viewport)
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestRenderer_PlotDrawsAtPolicySize(t *testing.T) {
	surface := &fakeSurface{width: 900}
	window := newFakeWindow(1280, 1000)
	r := NewRenderer(surface, window, DefaultResizePolicy())

	if err := r.Plot(mustParse(t, singleChart), DefaultOptions()); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}

	if len(surface.draws) != 1 {
		t.Fatalf("Expected 1 draw, got %d", len(surface.draws))
	}
	if got := surface.lastSize(); got != (Size{Width: 900, Height: 600}) {
		t.Errorf("Expected 900x600, got %+v", got)
	}
	if len(window.listeners) != 1 {
		t.Errorf("Expected 1 resize listener, got %d", len(window.listeners))
	}
}

func TestRenderer_ReplotKeepsOneListener(t *testing.T) {
	surface := &fakeSurface{width: 500}
	window := newFakeWindow(800, 600)
	r := NewRenderer(surface, window, DefaultResizePolicy())

	for i := 0; i < 5; i++ {
		if err := r.Plot(mustParse(t, singleChart), DefaultOptions()); err != nil {
			t.Fatalf("Plot %d failed: %v", i, err)
		}
	}

	if len(window.listeners) != 1 {
		t.Errorf("Expected exactly 1 resize listener after re-plotting, got %d", len(window.listeners))
	}
	if surface.cleared != 4 {
		t.Errorf("Expected previous chart cleared 4 times, got %d", surface.cleared)
	}
}

func TestRenderer_ResizeFollowsWindow(t *testing.T) {
	surface := &fakeSurface{width: 700}
	window := newFakeWindow(800, 600)
	r := NewRenderer(surface, window, DefaultResizePolicy())

	if err := r.Plot(mustParse(t, singleChart), DefaultOptions()); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}

	surface.width = 1000
	window.resize(1100, 2000)

	if len(surface.draws) != 2 {
		t.Fatalf("Expected redraw on resize, got %d draws", len(surface.draws))
	}
	if got := surface.lastSize(); got != (Size{Width: 1000, Height: 1200}) {
		t.Errorf("Expected 1000x1200, got %+v", got)
	}
}

func TestRenderer_ResizeFailureLogged(t *testing.T) {
	surface := &fakeSurface{width: 700}
	window := newFakeWindow(800, 600)
	r := NewRenderer(surface, window, DefaultResizePolicy())

	var logs bytes.Buffer
	r.SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))

	if err := r.Plot(mustParse(t, singleChart), DefaultOptions()); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}

	surface.failDraw = errors.New("surface gone")
	window.resize(900, 700)

	if !strings.Contains(logs.String(), "chart redraw after resize failed") || !strings.Contains(logs.String(), "surface gone") {
		t.Errorf("Expected resize failure to be logged, got %q", logs.String())
	}
}

func TestRenderer_NotResponsive(t *testing.T) {
	surface := &fakeSurface{width: 700}
	window := newFakeWindow(800, 600)
	r := NewRenderer(surface, window, DefaultResizePolicy())

	if err := r.Plot(mustParse(t, singleChart), Options{Responsive: false}); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	if len(window.listeners) != 0 {
		t.Errorf("Expected no listener, got %d", len(window.listeners))
	}
}

func TestRenderer_Unmount(t *testing.T) {
	surface := &fakeSurface{width: 700}
	window := newFakeWindow(800, 600)
	r := NewRenderer(surface, window, DefaultResizePolicy())

	if err := r.Plot(mustParse(t, singleChart), DefaultOptions()); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	r.Unmount()

	if r.Mounted() {
		t.Error("Expected no chart mounted")
	}
	if len(window.listeners) != 0 {
		t.Errorf("Expected listener removed, got %d", len(window.listeners))
	}
	if surface.cleared != 1 {
		t.Errorf("Expected surface cleared once, got %d", surface.cleared)
	}

	// Resizing afterwards draws nothing
	window.resize(100, 100)
	if len(surface.draws) != 1 {
		t.Errorf("Expected no draw after unmount, got %d draws", len(surface.draws))
	}

	// Unmounting twice is harmless
	r.Unmount()
	if surface.cleared != 1 {
		t.Errorf("Expected no extra clear, got %d", surface.cleared)
	}
}

func TestRenderer_Restyle(t *testing.T) {
	surface := &fakeSurface{width: 700}
	r := NewRenderer(surface, nil, DefaultResizePolicy())

	if err := r.Restyle(Patch{}); !errors.Is(err, ErrNotMounted) {
		t.Errorf("Expected ErrNotMounted, got %v", err)
	}

	if err := r.Plot(mustParse(t, singleChart), DefaultOptions()); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	if err := r.Restyle(Patch{MarkerColors: []string{"#000000", "", "#ffffff", "#abcdef"}}); err != nil {
		t.Fatalf("Restyle failed: %v", err)
	}

	fig := surface.last()
	want := []string{"#000000", "#654321", "#ffffff"}
	for i, c := range want {
		if fig.Traces[i].Marker.Color != c {
			t.Errorf("Expected trace %d colour %s, got %s", i, c, fig.Traces[i].Marker.Color)
		}
	}
	if fig.Traces[1].Y[1] != 1990 {
		t.Error("Expected data untouched by restyle")
	}

	if r.Original().Traces[0].Marker.Color != "#123456" {
		t.Error("Expected original colours kept")
	}
}

func TestRenderer_Toggle(t *testing.T) {
	raw := `[
		{"data": [{"name": "a", "y": [1]}], "layout": {"title": "One", "updatemenus": [{"buttons": [{"label": "First"}, {"label": "Second"}]}]}},
		{"data": [{"name": "b", "y": [2]}, {"name": "c", "y": [3]}], "layout": {"title": "Two"}}
	]`
	surface := &fakeSurface{width: 700}
	r := NewRenderer(surface, nil, DefaultResizePolicy())

	if err := r.Plot(mustParse(t, raw), DefaultOptions()); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}

	menu := r.Menu()
	if len(menu) != 2 || menu[0].Label != "First" || menu[1].Label != "Second" {
		t.Errorf("Expected layout labels as menu, got %+v", menu)
	}

	if err := r.Toggle(); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if r.Active() != 1 || surface.last().Layout.Title != "Two" {
		t.Errorf("Expected second figure, got active %d title %s", r.Active(), surface.last().Layout.Title)
	}

	if err := r.Toggle(); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if r.Active() != 0 {
		t.Errorf("Expected toggle to wrap to 0, got %d", r.Active())
	}

	if err := r.ApplyMenu(1); err != nil {
		t.Fatalf("ApplyMenu failed: %v", err)
	}
	if len(surface.last().Traces) != 2 {
		t.Errorf("Expected 2 traces in second figure, got %d", len(surface.last().Traces))
	}
}

func TestRenderer_MergedMenu(t *testing.T) {
	raw := `[
		{"name": "Completed", "data": [{"type": "bar", "x": ["Apollo 11"], "y": [1969]}]},
		{"name": "Ongoing", "data": [{"type": "bar", "x": ["Mars Rover"], "y": [2012]}, {"type": "bar", "x": ["Hubble"], "y": [1990]}]}
	]`
	surface := &fakeSurface{width: 700}
	r := NewRenderer(surface, nil, DefaultResizePolicy())

	if err := r.Plot(mustParse(t, raw), DefaultOptions()); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}

	menu := r.Menu()
	if len(menu) != 3 || menu[0].Label != "All" || menu[2].Label != "Ongoing" {
		t.Fatalf("Expected All + one button per series, got %+v", menu)
	}

	if err := r.ApplyMenu(2); err != nil {
		t.Fatalf("ApplyMenu failed: %v", err)
	}
	visible := surface.last().VisibleTraces()
	if len(visible) != 2 || visible[0].X[0] != "Mars Rover" {
		t.Errorf("Expected only Ongoing traces visible, got %+v", visible)
	}

	if err := r.ApplyMenu(0); err != nil {
		t.Fatalf("ApplyMenu failed: %v", err)
	}
	if got := len(surface.last().VisibleTraces()); got != 3 {
		t.Errorf("Expected all traces visible, got %d", got)
	}

	if err := r.ApplyMenu(9); err == nil {
		t.Error("Expected out of range error")
	}

	// Toggle is a no-op outside toggle mode
	draws := len(surface.draws)
	if err := r.Toggle(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if len(surface.draws) != draws {
		t.Error("Expected no redraw")
	}
}

func TestRenderer_SetMenu(t *testing.T) {
	surface := &fakeSurface{width: 700}
	r := NewRenderer(surface, nil, DefaultResizePolicy())
	if err := r.Plot(mustParse(t, singleChart), DefaultOptions()); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}

	r.SetMenu([]Button{{Label: "Only first", Visible: []bool{true, false, false}}})
	if err := r.ApplyMenu(0); err != nil {
		t.Fatalf("ApplyMenu failed: %v", err)
	}
	if got := len(surface.last().VisibleTraces()); got != 1 {
		t.Errorf("Expected 1 visible trace, got %d", got)
	}
}
