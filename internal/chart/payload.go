package chart

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Mode is the shape a chart payload arrived in
type Mode int

const (
	// ModeSingle is one {data, layout} figure
	ModeSingle Mode = iota
	// ModeToggle is a list of figures cycled by a toggle control
	ModeToggle
	// ModeMerged is a list of named series drawn as one figure with a
	// visibility mask
	ModeMerged
)

func (m Mode) String() string {
	switch m {
	case ModeToggle:
		return "toggle"
	case ModeMerged:
		return "merged"
	default:
		return "single"
	}
}

// Marker holds per-trace styling
type Marker struct {
	Color string
}

// Trace is one plotted series
type Trace struct {
	Name    string
	Type    string
	X       []string  // category labels, one per point
	XNum    []float64 // numeric x values when every x is a number
	Y       []float64
	Marker  Marker
	Visible bool
}

// Button is one selector control. Visible is the trace mask it applies;
// it is nil for buttons that switch between figures.
type Button struct {
	Label   string
	Visible []bool
}

// Layout is the subset of the layout description the renderer uses
type Layout struct {
	Title  string
	XTitle string
	YTitle string
	Menu   []Button
}

// Figure is a drawable set of traces
type Figure struct {
	Traces []Trace
	Layout Layout
}

// Clone returns a deep copy so restyles never touch parsed data
func (f Figure) Clone() Figure {
	out := Figure{Layout: f.Layout, Traces: make([]Trace, len(f.Traces))}
	out.Layout.Menu = append([]Button(nil), f.Layout.Menu...)
	for i, t := range f.Traces {
		t.X = append([]string(nil), t.X...)
		t.XNum = append([]float64(nil), t.XNum...)
		t.Y = append([]float64(nil), t.Y...)
		out.Traces[i] = t
	}
	return out
}

// VisibleTraces returns the traces currently shown
func (f Figure) VisibleTraces() []Trace {
	var out []Trace
	for _, t := range f.Traces {
		if t.Visible {
			out = append(out, t)
		}
	}
	return out
}

// Payload is a parsed chart description
type Payload struct {
	Mode     Mode
	Figures  []Figure // ModeMerged always holds exactly one figure
	Series   []string // series names, ModeMerged only
	SeriesOf []int    // series index per merged trace
}

// Parse decodes a JSON chart description in any of the three supported
// shapes.
func Parse(raw string) (*Payload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty chart description")
	}
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("invalid chart JSON")
	}

	doc := gjson.Parse(raw)
	switch {
	case doc.IsObject():
		fig, err := parseFigure(doc)
		if err != nil {
			return nil, err
		}
		return &Payload{Mode: ModeSingle, Figures: []Figure{fig}}, nil

	case doc.IsArray():
		elems := doc.Array()
		if len(elems) == 0 {
			return nil, fmt.Errorf("chart list is empty")
		}
		if elems[0].Get("layout.updatemenus").Exists() {
			return parseToggle(elems)
		}
		return parseMerged(elems)
	}

	return nil, fmt.Errorf("unsupported chart description")
}

func parseToggle(elems []gjson.Result) (*Payload, error) {
	p := &Payload{Mode: ModeToggle}
	for i, el := range elems {
		fig, err := parseFigure(el)
		if err != nil {
			return nil, fmt.Errorf("chart %d: %w", i+1, err)
		}
		p.Figures = append(p.Figures, fig)
	}
	return p, nil
}

func parseMerged(elems []gjson.Result) (*Payload, error) {
	p := &Payload{Mode: ModeMerged}
	merged := Figure{}

	for i, el := range elems {
		name := seriesName(el, i)
		var traces []Trace

		switch {
		case el.Get("data").IsArray():
			el.Get("data").ForEach(func(_, t gjson.Result) bool {
				traces = append(traces, parseTrace(t))
				return true
			})
			if i == 0 {
				merged.Layout = parseLayout(el.Get("layout"))
				merged.Layout.Menu = nil
			}
		case el.Get("x").Exists() || el.Get("y").Exists():
			traces = append(traces, parseTrace(el))
		default:
			return nil, fmt.Errorf("series %d has no data", i+1)
		}

		for _, t := range traces {
			if t.Name == "" {
				t.Name = name
			}
			t.Visible = true
			merged.Traces = append(merged.Traces, t)
			p.SeriesOf = append(p.SeriesOf, len(p.Series))
		}
		p.Series = append(p.Series, name)
	}

	p.Figures = []Figure{merged}
	return p, nil
}

func seriesName(el gjson.Result, i int) string {
	for _, path := range []string{"name", "layout.title.text", "layout.title"} {
		if v := el.Get(path); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return fmt.Sprintf("Series %d", i+1)
}

func parseFigure(el gjson.Result) (Figure, error) {
	data := el.Get("data")
	if !data.IsArray() {
		return Figure{}, fmt.Errorf("chart has no data")
	}

	fig := Figure{Layout: parseLayout(el.Get("layout"))}
	data.ForEach(func(_, t gjson.Result) bool {
		fig.Traces = append(fig.Traces, parseTrace(t))
		return true
	})
	return fig, nil
}

func parseTrace(t gjson.Result) Trace {
	tr := Trace{
		Name:    t.Get("name").String(),
		Type:    t.Get("type").String(),
		Visible: true,
	}
	if tr.Type == "" {
		tr.Type = "scatter"
	}

	numeric := true
	t.Get("x").ForEach(func(_, x gjson.Result) bool {
		tr.X = append(tr.X, x.String())
		if x.Type == gjson.Number {
			tr.XNum = append(tr.XNum, x.Num)
		} else {
			numeric = false
		}
		return true
	})
	t.Get("y").ForEach(func(_, y gjson.Result) bool {
		tr.Y = append(tr.Y, y.Float())
		return true
	})

	// Pad labels so every y value has one
	for i := len(tr.X); i < len(tr.Y); i++ {
		tr.X = append(tr.X, strconv.Itoa(i))
		if numeric {
			tr.XNum = append(tr.XNum, float64(i))
		}
	}
	if !numeric {
		tr.XNum = nil
	}

	color := t.Get("marker.color")
	if color.IsArray() {
		color = color.Get("0")
	}
	tr.Marker.Color = color.String()

	if v := t.Get("visible"); v.Type == gjson.False || (v.Type == gjson.String && v.Str == "legendonly") {
		tr.Visible = false
	}

	return tr
}

func parseLayout(l gjson.Result) Layout {
	layout := Layout{
		Title:  titleText(l.Get("title")),
		XTitle: titleText(l.Get("xaxis.title")),
		YTitle: titleText(l.Get("yaxis.title")),
	}

	l.Get("updatemenus").ForEach(func(_, menu gjson.Result) bool {
		menu.Get("buttons").ForEach(func(_, b gjson.Result) bool {
			btn := Button{Label: b.Get("label").String()}
			if mask := b.Get("args.0.visible"); mask.IsArray() {
				mask.ForEach(func(_, v gjson.Result) bool {
					btn.Visible = append(btn.Visible, v.Type == gjson.True)
					return true
				})
			}
			layout.Menu = append(layout.Menu, btn)
			return true
		})
		return true
	})

	return layout
}

func titleText(v gjson.Result) string {
	if v.IsObject() {
		return v.Get("text").String()
	}
	return v.String()
}
