package mock

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Mission is one row of the sample data set
type Mission struct {
	Mission string `json:"Mission"`
	Year    int    `json:"Year"`
	Status  string `json:"Status"`
}

// SampleMissions is the data set answered by /analyze
var SampleMissions = []Mission{
	{Mission: "Apollo 11", Year: 1969, Status: "Completed"},
	{Mission: "Mars Rover", Year: 2012, Status: "Ongoing"},
	{Mission: "Hubble Telescope", Year: 1990, Status: "Ongoing"},
}

// Answer is the outcome of processing one basic query
type Answer struct {
	Result json.RawMessage
	Chart  string // empty when the answer has no chart
}

// Process answers a query from the sample table. The first keyword found
// decides the column: "mission", then "year", then "status"; anything
// else returns every record.
func Process(query string, missions []Mission) (Answer, error) {
	q := strings.ToLower(query)

	var result any
	withChart := false
	switch {
	case strings.Contains(q, "mission"):
		names := make([]string, len(missions))
		for i, m := range missions {
			names[i] = m.Mission
		}
		result = names
	case strings.Contains(q, "year"):
		years := make([]int, len(missions))
		for i, m := range missions {
			years[i] = m.Year
		}
		result = years
	case strings.Contains(q, "status"):
		statuses := make([]string, len(missions))
		for i, m := range missions {
			statuses[i] = m.Status
		}
		result = statuses
		withChart = true
	default:
		result = missions
		withChart = true
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return Answer{}, fmt.Errorf("failed to encode result: %w", err)
	}
	answer := Answer{Result: raw}

	if withChart {
		chart, err := StatusChart(missions)
		if err != nil {
			return Answer{}, err
		}
		answer.Chart = chart
	}
	return answer, nil
}

type chartTrace struct {
	Name   string      `json:"name"`
	Type   string      `json:"type"`
	X      []string    `json:"x"`
	Y      []int       `json:"y"`
	Marker chartMarker `json:"marker"`
}

type chartMarker struct {
	Color string `json:"color,omitempty"`
}

type chartTitle struct {
	Text string `json:"text"`
}

type chartAxis struct {
	Title chartTitle `json:"title"`
}

type chartLayout struct {
	Title chartTitle `json:"title"`
	XAxis chartAxis  `json:"xaxis"`
	YAxis chartAxis  `json:"yaxis"`
}

type chartDocument struct {
	Data   []chartTrace `json:"data"`
	Layout chartLayout  `json:"layout"`
}

// statusColors are the trace colours before any scheme is applied
var statusColors = map[string]string{
	"Completed": "#1f77b4",
	"Ongoing":   "#ff7f0e",
}

// StatusChart builds a bar chart of launch years with one trace per
// status, in order of first appearance, so colour schemes keyed by status
// apply to it.
func StatusChart(missions []Mission) (string, error) {
	var traces []chartTrace
	index := make(map[string]int)
	for _, m := range missions {
		i, ok := index[m.Status]
		if !ok {
			i = len(traces)
			index[m.Status] = i
			traces = append(traces, chartTrace{
				Name:   m.Status,
				Type:   "bar",
				Marker: chartMarker{Color: statusColors[m.Status]},
			})
		}
		traces[i].X = append(traces[i].X, m.Mission)
		traces[i].Y = append(traces[i].Y, m.Year)
	}

	doc := chartDocument{
		Data: traces,
		Layout: chartLayout{
			Title: chartTitle{Text: "Missions by status"},
			XAxis: chartAxis{Title: chartTitle{Text: "Mission"}},
			YAxis: chartAxis{Title: chartTitle{Text: "Launch year"}},
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode chart: %w", err)
	}
	return string(data), nil
}
