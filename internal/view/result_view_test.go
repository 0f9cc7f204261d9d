package view

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/chart"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/types"
)

type fakeTarget struct {
	blocks       []Block
	setCalls     int
	notice       Notice
	chartVisible bool
}

func (f *fakeTarget) SetBlocks(blocks []Block) {
	f.blocks = blocks
	f.setCalls++
}

func (f *fakeTarget) SetNotice(n Notice) { f.notice = n }

func (f *fakeTarget) SetChartVisible(v bool) { f.chartVisible = v }

type fakePlotter struct {
	plots    []*chart.Payload
	unmounts int
	err      error
}

func (f *fakePlotter) Plot(p *chart.Payload, opts chart.Options) error {
	f.plots = append(f.plots, p)
	return f.err
}

func (f *fakePlotter) Unmount() { f.unmounts++ }

const barChart = `{"data": [{"name": "Completed", "type": "bar", "x": ["Apollo 11"], "y": [1969]}], "layout": {}}`

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "two sentences", text: "Mars is red. It has two moons.", want: []string{"Mars is red.", "It has two moons."}},
		{name: "mixed punctuation", text: "Really?  Yes! Fine.", want: []string{"Really?", "Yes!", "Fine."}},
		{name: "no terminator", text: "Apollo 11", want: []string{"Apollo 11"}},
		{name: "decimal kept", text: "Version 2.5 launched. Done", want: []string{"Version 2.5 launched.", "Done"}},
		{name: "newline separator", text: "One.\nTwo.", want: []string{"One.", "Two."}},
		{name: "empty", text: "", want: []string{}},
		{name: "whitespace", text: "   ", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBlocks_Dispatch(t *testing.T) {
	tests := []struct {
		name   string
		result types.AnalysisResult
		want   []Block
	}{
		{
			name:   "text",
			result: types.NewTextResult("Mars is red. It has two moons."),
			want:   []Block{{Paragraphs: []string{"Mars is red.", "It has two moons."}}},
		},
		{
			name:   "mapping in order",
			result: types.MustParseResult(`{"Summary": "Short. Sweet.", "Count": 3}`),
			want: []Block{
				{Heading: "Summary", Paragraphs: []string{"Short.", "Sweet."}},
				{Heading: "Count", Paragraphs: []string{"3"}},
			},
		},
		{
			name:   "sequence",
			result: types.MustParseResult(`[{"name": "Apollo 11", "value": "Landed in 1969. First crewed landing."}, "Hubble", {"Mission": "Mars Rover"}]`),
			want: []Block{
				{Heading: "Apollo 11", Paragraphs: []string{"Landed in 1969. First crewed landing."}},
				{Heading: "Result", Paragraphs: []string{"Hubble"}},
				{Heading: "Result", Paragraphs: []string{`{"Mission": "Mars Rover"}`}},
			},
		},
		{
			name:   "empty sequence",
			result: types.MustParseResult(`[]`),
			want:   []Block{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Blocks(tt.result)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestRender_TextWithoutChart(t *testing.T) {
	target := &fakeTarget{chartVisible: true}
	plotter := &fakePlotter{}
	v := New(target, plotter, nil)

	if err := v.Render(types.NewTextResult("Mars is red. It has two moons."), ""); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if len(target.blocks) != 1 || len(target.blocks[0].Paragraphs) != 2 {
		t.Errorf("Expected one block with 2 paragraphs, got %+v", target.blocks)
	}
	if target.chartVisible {
		t.Error("Expected chart panel hidden")
	}
	if len(plotter.plots) != 0 {
		t.Errorf("Expected no plot, got %d", len(plotter.plots))
	}
}

func TestRender_Idempotent(t *testing.T) {
	target := &fakeTarget{}
	v := New(target, &fakePlotter{}, nil)
	result := types.MustParseResult(`["Apollo 11", "Mars Rover", "Hubble Telescope"]`)

	if err := v.Render(result, ""); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	first := target.blocks

	if err := v.Render(result, ""); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if !reflect.DeepEqual(first, target.blocks) {
		t.Errorf("Expected identical blocks, got %+v then %+v", first, target.blocks)
	}
	if len(target.blocks) != 3 {
		t.Errorf("Expected blocks replaced not appended, got %d", len(target.blocks))
	}
}

func TestRender_WithChart(t *testing.T) {
	target := &fakeTarget{}
	plotter := &fakePlotter{}
	v := New(target, plotter, nil)

	if err := v.Render(types.MustParseResult(`{"Completed": "1"}`), barChart); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if !target.chartVisible {
		t.Error("Expected chart panel visible")
	}
	if len(plotter.plots) != 1 {
		t.Fatalf("Expected 1 plot, got %d", len(plotter.plots))
	}
	if v.Chart() == nil || v.Chart().Mode != chart.ModeSingle {
		t.Error("Expected mounted single chart")
	}
}

func TestRender_BadChart(t *testing.T) {
	target := &fakeTarget{}
	plotter := &fakePlotter{}
	v := New(target, plotter, nil)

	err := v.Render(types.NewTextResult("Mars"), `{"data": [`)
	if !types.IsKind(err, types.RenderError) {
		t.Errorf("Expected render error, got %v", err)
	}
	if len(target.blocks) != 1 {
		t.Error("Expected textual result still shown")
	}
	if target.chartVisible {
		t.Error("Expected chart panel hidden")
	}
	if plotter.unmounts == 0 {
		t.Error("Expected previous chart unmounted")
	}
}

func TestRender_PlotFailure(t *testing.T) {
	target := &fakeTarget{}
	plotter := &fakePlotter{err: errors.New("surface gone")}
	v := New(target, plotter, nil)

	err := v.Render(types.NewTextResult("Mars"), barChart)
	if !types.IsKind(err, types.RenderError) {
		t.Errorf("Expected render error, got %v", err)
	}
	if target.chartVisible {
		t.Error("Expected chart panel hidden after plot failure")
	}
}

func TestNotices(t *testing.T) {
	target := &fakeTarget{}
	plotter := &fakePlotter{}
	v := New(target, plotter, nil)

	if err := v.Render(types.NewTextResult("Kept."), barChart); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	v.ShowValidation("Please enter a query")
	if target.notice.Kind != NoticeValidation {
		t.Errorf("Expected validation notice, got %v", target.notice.Kind)
	}
	if len(target.blocks) != 1 || !target.chartVisible {
		t.Error("Expected validation to leave result and chart untouched")
	}

	v.ShowLoading("Mars")
	if target.notice.Kind != NoticeLoading {
		t.Errorf("Expected loading notice, got %v", target.notice.Kind)
	}
	if target.chartVisible {
		t.Error("Expected chart hidden while loading")
	}

	v.ShowError(errors.New("Connection refused"))
	if target.notice.Kind != NoticeError || target.notice.Text != "Connection refused" {
		t.Errorf("Expected error notice, got %+v", target.notice)
	}
	if len(target.blocks) != 0 {
		t.Error("Expected result cleared on error")
	}

	if err := v.Render(types.NewTextResult("Back."), ""); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if target.notice.Kind != NoticeNone {
		t.Error("Expected notice cleared by render")
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown([]Block{
		{Heading: "Apollo 11", Paragraphs: []string{"Landed.", "Returned."}},
		{Paragraphs: []string{"Plain."}},
	})

	want := "### Apollo 11\n\nLanded.\n\nReturned.\n\n\nPlain.\n\n"
	if md != want {
		t.Errorf("Expected %q, got %q", want, md)
	}
}
