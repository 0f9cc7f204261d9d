package chart

import (
	"fmt"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// SchemeTable maps a scheme name to category → colour
type SchemeTable map[string]map[string]string

// Built-in scheme names, in menu order
const (
	SchemeDefault      = "Default"
	SchemeHighContrast = "High Contrast"
	SchemePastel       = "Pastel"
)

var builtinOrder = []string{SchemeDefault, SchemeHighContrast, SchemePastel}

// DefaultSchemes returns the built-in schemes for the mission status
// categories.
func DefaultSchemes() SchemeTable {
	return SchemeTable{
		SchemeDefault:      {"Completed": "#1f77b4", "Ongoing": "#ff7f0e"},
		SchemeHighContrast: {"Completed": "#000000", "Ongoing": "#ff0000"},
		SchemePastel:       {"Completed": "#b3e2cd", "Ongoing": "#fdcdac"},
	}
}

// Merge returns a table with the schemes of other added or replacing
// those of t.
func (t SchemeTable) Merge(other SchemeTable) SchemeTable {
	out := SchemeTable{}
	for name, scheme := range t {
		out[name] = scheme
	}
	for name, scheme := range other {
		out[name] = scheme
	}
	return out
}

// Validate checks that every colour is a hex colour
func (t SchemeTable) Validate() error {
	for name, scheme := range t {
		for category, color := range scheme {
			if _, err := colorful.Hex(color); err != nil {
				return fmt.Errorf("scheme %q: invalid colour %q for %q", name, color, category)
			}
		}
	}
	return nil
}

// Names returns the scheme names, built-ins first, then alphabetical
func (t SchemeTable) Names() []string {
	var names []string
	seen := make(map[string]bool)
	for _, name := range builtinOrder {
		if _, ok := t[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range t {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// SchemeControl restyles a mounted chart from a scheme table
type SchemeControl struct {
	renderer *Renderer
	table    SchemeTable
	names    []string
	selected int
	chosen   bool // a scheme was picked; new charts are drawn with it
}

// Attach binds a scheme selector to r. The chart keeps its own colours
// until a scheme is selected.
func Attach(r *Renderer, table SchemeTable) (*SchemeControl, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	names := table.Names()
	if len(names) == 0 {
		return nil, fmt.Errorf("no colour schemes configured")
	}
	return &SchemeControl{
		renderer: r,
		table:    table,
		names:    names,
	}, nil
}

// Names returns the selectable scheme names
func (c *SchemeControl) Names() []string {
	return append([]string(nil), c.names...)
}

// Selected returns the current scheme name
func (c *SchemeControl) Selected() string {
	return c.names[c.selected]
}

// Select restyles the chart with the named scheme
func (c *SchemeControl) Select(name string) error {
	for i, n := range c.names {
		if n == name {
			c.selected = i
			c.chosen = true
			return c.apply()
		}
	}
	return fmt.Errorf("unknown colour scheme %q", name)
}

// Next selects the scheme after the current one
func (c *SchemeControl) Next() error {
	c.selected = (c.selected + 1) % len(c.names)
	c.chosen = true
	return c.apply()
}

// Plot mounts p on the renderer and, once a scheme has been picked,
// restyles it so every new chart keeps the selection.
func (c *SchemeControl) Plot(p *Payload, opts Options) error {
	if err := c.renderer.Plot(p, opts); err != nil {
		return err
	}
	if !c.chosen {
		return nil
	}
	return c.apply()
}

// Unmount clears the renderer; the selection is kept for the next chart
func (c *SchemeControl) Unmount() {
	c.renderer.Unmount()
}

// Reapply restyles with the current scheme, e.g. after the chart was
// toggled to another figure.
func (c *SchemeControl) Reapply() error {
	return c.apply()
}

// Colors returns the marker colour per trace for the selected scheme:
// the scheme colour for the trace's category, else the trace's own colour.
func (c *SchemeControl) Colors(fig Figure) []string {
	scheme := c.table[c.Selected()]
	colors := make([]string, len(fig.Traces))
	for i, t := range fig.Traces {
		if color, ok := scheme[t.Name]; ok {
			colors[i] = color
		} else {
			colors[i] = t.Marker.Color
		}
	}
	return colors
}

func (c *SchemeControl) apply() error {
	if !c.renderer.Mounted() {
		return ErrNotMounted
	}
	return c.renderer.Restyle(Patch{MarkerColors: c.Colors(c.renderer.Original())})
}
