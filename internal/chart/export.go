package chart

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format is an export image format
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// FormatFromPath picks the export format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".svg":
		return FormatSVG, nil
	}
	return "", fmt.Errorf("unsupported chart export format %q (use .png or .svg)", filepath.Ext(path))
}

// fallback colours for traces without a usable marker colour
var palette = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b"}

// Export renders the visible traces of fig as an image. Figures made only
// of bar traces become a bar chart, anything else a line chart.
func Export(w io.Writer, fig Figure, size Size, format Format) error {
	provider := gochart.PNG
	if format == FormatSVG {
		provider = gochart.SVG
	}

	traces := fig.VisibleTraces()
	if len(traces) == 0 {
		return fmt.Errorf("chart has no visible traces")
	}

	if allBars(traces) {
		bc := barChart(fig, traces, size)
		if err := bc.Render(provider, w); err != nil {
			return fmt.Errorf("failed to render bar chart: %w", err)
		}
		return nil
	}

	lc, err := lineChart(fig, traces, size)
	if err != nil {
		return err
	}
	if err := lc.Render(provider, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func allBars(traces []Trace) bool {
	for _, t := range traces {
		if t.Type != "bar" {
			return false
		}
	}
	return true
}

func barChart(fig Figure, traces []Trace, size Size) gochart.BarChart {
	var bars []gochart.Value
	for i, t := range traces {
		color := toDrawingColor(t.Marker.Color, i)
		for j, y := range t.Y {
			label := t.X[j]
			if len(traces) > 1 && t.Name != "" {
				label = fmt.Sprintf("%s (%s)", label, t.Name)
			}
			bars = append(bars, gochart.Value{
				Value: y,
				Label: label,
				Style: gochart.Style{FillColor: color, StrokeColor: color},
			})
		}
	}

	barWidth := 40
	if len(bars) > 0 {
		if fit := (size.Width - 120) / (2 * len(bars)); fit < barWidth {
			barWidth = fit
		}
	}
	if barWidth < 4 {
		barWidth = 4
	}

	return gochart.BarChart{
		Title:      fig.Layout.Title,
		Width:      size.Width,
		Height:     size.Height,
		BarWidth:   barWidth,
		BarSpacing: barWidth / 2,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Bars:       bars,
	}
}

func lineChart(fig Figure, traces []Trace, size Size) (*gochart.Chart, error) {
	var series []gochart.Series
	var ticks []gochart.Tick

	for i, t := range traces {
		if len(t.Y) == 0 {
			continue
		}
		xs := t.XNum
		if xs == nil {
			xs = make([]float64, len(t.Y))
			for j := range xs {
				xs[j] = float64(j)
			}
			if ticks == nil {
				for j, label := range t.X {
					ticks = append(ticks, gochart.Tick{Value: float64(j), Label: label})
				}
			}
		}
		ys := t.Y
		// a single point has no x range; draw it as a short flat segment
		if len(ys) == 1 {
			xs = []float64{xs[0], xs[0] + 1}
			ys = []float64{ys[0], ys[0]}
		}

		color := toDrawingColor(t.Marker.Color, i)
		series = append(series, gochart.ContinuousSeries{
			Name:    t.Name,
			XValues: xs[:len(ys)],
			YValues: ys,
			Style:   gochart.Style{StrokeColor: color, StrokeWidth: 2, DotColor: color, DotWidth: 3},
		})
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("chart has no data points")
	}

	ch := &gochart.Chart{
		Title:      fig.Layout.Title,
		Width:      size.Width,
		Height:     size.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: fig.Layout.XTitle, Ticks: ticks},
		YAxis:      gochart.YAxis{Name: fig.Layout.YTitle},
		Series:     series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(ch)}
	return ch, nil
}

func toDrawingColor(hex string, i int) drawing.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		c, _ = colorful.Hex(palette[i%len(palette)])
	}
	r, g, b := c.RGB255()
	return drawing.Color{R: r, G: g, B: b, A: 255}
}
