package mock

import (
	"encoding/json"
	"time"
)

// Entry is one stored query with the result that was returned for it
type Entry struct {
	ID        int64
	Query     string
	Advanced  bool
	Result    json.RawMessage
	RequestID string
	CreatedAt time.Time
}

// analysisReply is the body of a successful /analyze reply. Chart is a
// JSON document encoded as a string, as the browser client expects.
type analysisReply struct {
	Result json.RawMessage `json:"result"`
	Chart  string          `json:"chart,omitempty"`
}

// historyItem is one element of the /history array
type historyItem struct {
	Query  string          `json:"query"`
	Result json.RawMessage `json:"result"`
}

type errorReply struct {
	Error string `json:"error"`
}
