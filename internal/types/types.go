package types

import (
	"encoding/json"
	"strings"
)

// ItemsPerPage is the fixed size of one history page
const ItemsPerPage = 10

// AnalysisRequest is one submission to the analysis server
type AnalysisRequest struct {
	Query    string `json:"query" yaml:"query"`
	Advanced bool   `json:"advanced" yaml:"advanced"`
}

// Endpoint returns the server path the request is posted to
func (r AnalysisRequest) Endpoint() string {
	if r.Advanced {
		return "/advanced_analyze"
	}
	return "/analyze"
}

// AnalysisResponse is the decoded body of a 2xx analysis reply.
// Exactly one of Error or Result is meaningful.
type AnalysisResponse struct {
	Result AnalysisResult `json:"result" yaml:"result"`
	Chart  string         `json:"chart,omitempty" yaml:"chart,omitempty"` // JSON-encoded chart description
	Error  string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// HasChart reports whether the response carries a chart description
func (r *AnalysisResponse) HasChart() bool {
	return strings.TrimSpace(r.Chart) != ""
}

// HistoryEntry is one previously recorded query as returned by /history
type HistoryEntry struct {
	Query    string         `json:"query" yaml:"query"`
	Result   AnalysisResult `json:"result" yaml:"result"`
	Position int            `json:"-" yaml:"-"` // ordering within the fetched page
}

// RequestState is the lifecycle state of the analysis controller.
// Failed and Success both behave as Idle for the next Submit; Failed stays
// visible only so hosts can show the error until then.
type RequestState int

const (
	StateIdle RequestState = iota
	StateLoading
	StateSuccess
	StateFailed // terminal for one submission, never for the controller
)

func (s RequestState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the state by name
func (s RequestState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ValidateQuery trims the query and rejects empty or whitespace-only input
func ValidateQuery(query string) (string, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return "", &Error{Kind: ValidationError, Message: "query is empty"}
	}
	return trimmed, nil
}
