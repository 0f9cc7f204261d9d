package chart

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// ErrNotMounted is returned by operations that need a mounted chart
var ErrNotMounted = errors.New("no chart mounted")

// Size is a drawing area in pixels
type Size struct {
	Width  int
	Height int
}

// Surface is the drawing area of the chart panel
type Surface interface {
	// ContentWidth is the current width of the panel's content box
	ContentWidth() int
	Draw(fig Figure, size Size) error
	Clear()
}

// Window is the host viewport
type Window interface {
	Viewport() Size
	// OnResize registers fn and returns a function that removes it
	OnResize(fn func()) (unsubscribe func())
}

// ResizePolicy derives the chart size from the container and viewport
type ResizePolicy struct {
	MinHeight      int
	HeightFraction float64
}

// DefaultResizePolicy is max(300, 0.6 × viewport height)
func DefaultResizePolicy() ResizePolicy {
	return ResizePolicy{MinHeight: 300, HeightFraction: 0.6}
}

// Size returns width = content width, height = max(MinHeight, HeightFraction × viewport height)
func (p ResizePolicy) Size(contentWidth, viewportHeight int) Size {
	h := int(p.HeightFraction * float64(viewportHeight))
	if h < p.MinHeight {
		h = p.MinHeight
	}
	return Size{Width: contentWidth, Height: h}
}

// Options are the per-plot settings
type Options struct {
	Responsive bool // follow window resizes
}

// DefaultOptions returns the options used for analysis charts
func DefaultOptions() Options {
	return Options{Responsive: true}
}

// Patch is a style-only change applied to the drawn figure
type Patch struct {
	MarkerColors []string // one per trace, "" keeps the current colour
}

// Renderer owns the single chart slot of a surface
type Renderer struct {
	surface Surface
	window  Window
	policy  ResizePolicy
	logger  *slog.Logger

	payload     *Payload
	active      int    // figure index in toggle mode
	visible     []bool // trace mask in single and merged mode
	menu        []Button
	figure      Figure // currently drawn, restyles applied
	unsubscribe func()
}

// NewRenderer creates a renderer drawing on surface. window may be nil,
// in which case charts never follow resizes.
func NewRenderer(surface Surface, window Window, policy ResizePolicy) *Renderer {
	return &Renderer{
		surface: surface,
		window:  window,
		policy:  policy,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger receives redraw failures that have no caller to return to,
// such as those triggered by a window resize.
func (r *Renderer) SetLogger(logger *slog.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// Plot mounts p, fully replacing any chart already shown
func (r *Renderer) Plot(p *Payload, opts Options) error {
	if p == nil || len(p.Figures) == 0 {
		return fmt.Errorf("chart has no figures")
	}

	r.Unmount()

	r.payload = p
	r.active = 0
	r.visible = initialMask(p.Figures[0])
	r.menu = defaultMenu(p)
	r.figure = r.compose()

	if opts.Responsive && r.window != nil {
		r.unsubscribe = r.window.OnResize(func() {
			if err := r.Resize(); err != nil {
				r.logger.Warn("chart redraw after resize failed", "error", err)
			}
		})
	}

	return r.draw()
}

// Mounted reports whether a chart is shown
func (r *Renderer) Mounted() bool {
	return r.payload != nil
}

// Payload returns the mounted payload, or nil
func (r *Renderer) Payload() *Payload {
	return r.payload
}

// Figure returns a copy of the figure currently drawn
func (r *Renderer) Figure() Figure {
	return r.figure.Clone()
}

// Original returns the drawn figure without any restyle applied
func (r *Renderer) Original() Figure {
	if r.payload == nil {
		return Figure{}
	}
	return r.compose()
}

// Active returns the figure index shown in toggle mode
func (r *Renderer) Active() int {
	return r.active
}

// Restyle changes marker colours of the drawn figure without touching its data
func (r *Renderer) Restyle(patch Patch) error {
	if r.payload == nil {
		return ErrNotMounted
	}
	for i, color := range patch.MarkerColors {
		if i < len(r.figure.Traces) && color != "" {
			r.figure.Traces[i].Marker.Color = color
		}
	}
	return r.draw()
}

// Resize redraws the mounted chart at the size derived from the current
// container width and viewport height.
func (r *Renderer) Resize() error {
	if r.payload == nil {
		return nil
	}
	return r.draw()
}

// Toggle shows the next figure of a toggle payload with a full redraw.
// It does nothing for other payload shapes.
func (r *Renderer) Toggle() error {
	if r.payload == nil {
		return ErrNotMounted
	}
	if r.payload.Mode != ModeToggle {
		return nil
	}
	return r.show((r.active + 1) % len(r.payload.Figures))
}

// Menu returns the selector buttons of the mounted chart
func (r *Renderer) Menu() []Button {
	return append([]Button(nil), r.menu...)
}

// SetMenu replaces the selector buttons
func (r *Renderer) SetMenu(buttons []Button) {
	r.menu = append([]Button(nil), buttons...)
}

// ApplyMenu activates button i: in toggle mode it shows figure i, in the
// other modes it applies the button's visibility mask.
func (r *Renderer) ApplyMenu(i int) error {
	if r.payload == nil {
		return ErrNotMounted
	}
	if i < 0 || i >= len(r.menu) {
		return fmt.Errorf("menu button %d out of range", i+1)
	}

	if r.payload.Mode == ModeToggle {
		if i >= len(r.payload.Figures) {
			return fmt.Errorf("chart %d out of range", i+1)
		}
		return r.show(i)
	}

	for j, v := range r.menu[i].Visible {
		if j < len(r.visible) {
			r.visible[j] = v
		}
	}
	colors := r.figure.Traces
	r.figure = r.compose()
	// keep restyled colours across visibility changes
	for j := range r.figure.Traces {
		if j < len(colors) {
			r.figure.Traces[j].Marker.Color = colors[j].Marker.Color
		}
	}
	return r.draw()
}

// Unmount clears the surface and removes the resize listener
func (r *Renderer) Unmount() {
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
	if r.payload != nil {
		r.surface.Clear()
	}
	r.payload = nil
	r.figure = Figure{}
	r.menu = nil
	r.visible = nil
	r.active = 0
}

// Size returns the size the chart is drawn at right now
func (r *Renderer) Size() Size {
	viewport := Size{}
	if r.window != nil {
		viewport = r.window.Viewport()
	}
	return r.policy.Size(r.surface.ContentWidth(), viewport.Height)
}

func (r *Renderer) show(i int) error {
	r.active = i
	r.visible = initialMask(r.payload.Figures[i])
	r.figure = r.compose()
	return r.draw()
}

func (r *Renderer) compose() Figure {
	idx := 0
	if r.payload.Mode == ModeToggle {
		idx = r.active
	}
	fig := r.payload.Figures[idx].Clone()
	for i := range fig.Traces {
		if i < len(r.visible) {
			fig.Traces[i].Visible = r.visible[i]
		}
	}
	return fig
}

func (r *Renderer) draw() error {
	return r.surface.Draw(r.figure.Clone(), r.Size())
}

func initialMask(fig Figure) []bool {
	mask := make([]bool, len(fig.Traces))
	for i, t := range fig.Traces {
		mask[i] = t.Visible
	}
	return mask
}

// defaultMenu returns the layout's buttons when they fit the payload,
// otherwise buttons generated from it.
func defaultMenu(p *Payload) []Button {
	switch p.Mode {
	case ModeToggle:
		menu := make([]Button, len(p.Figures))
		layoutMenu := p.Figures[0].Layout.Menu
		for i, fig := range p.Figures {
			label := fig.Layout.Title
			if len(layoutMenu) == len(p.Figures) && layoutMenu[i].Label != "" {
				label = layoutMenu[i].Label
			}
			if label == "" {
				label = fmt.Sprintf("Chart %d", i+1)
			}
			menu[i] = Button{Label: label}
		}
		return menu

	case ModeMerged:
		traces := len(p.Figures[0].Traces)
		menu := []Button{{Label: "All", Visible: fill(traces, true)}}
		for s, name := range p.Series {
			mask := make([]bool, traces)
			for t, owner := range p.SeriesOf {
				mask[t] = owner == s
			}
			menu = append(menu, Button{Label: name, Visible: mask})
		}
		return menu

	default:
		var menu []Button
		for _, b := range p.Figures[0].Layout.Menu {
			if len(b.Visible) > 0 {
				menu = append(menu, b)
			}
		}
		return menu
	}
}

func fill(n int, v bool) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = v
	}
	return out
}
