package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// ResultKind tags the shape of an AnalysisResult
type ResultKind int

const (
	ResultText ResultKind = iota
	ResultMapping
	ResultSequence
)

func (k ResultKind) String() string {
	switch k {
	case ResultMapping:
		return "mapping"
	case ResultSequence:
		return "sequence"
	default:
		return "text"
	}
}

// Pair is one key of a mapping result. Value holds display text:
// strings verbatim, anything else as its JSON text.
type Pair struct {
	Key   string
	Value string
}

// Item is one element of a sequence result.
// Name and Value are set only for {name, value} records; Text is the
// element itself as display text.
type Item struct {
	Name  string
	Value string
	Text  string
}

// AnalysisResult is a tagged union over the three result shapes the
// server returns. The shape is decided once when decoding.
type AnalysisResult struct {
	Kind     ResultKind
	Text     string
	Mapping  []Pair // insertion order, unique keys
	Sequence []Item
	Raw      json.RawMessage
}

// ParseResult decodes a result value. Object key order is preserved.
func ParseResult(raw []byte) (AnalysisResult, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return AnalysisResult{Kind: ResultText, Raw: json.RawMessage("null")}, nil
	}
	if !gjson.ValidBytes(trimmed) {
		return AnalysisResult{}, fmt.Errorf("invalid result JSON")
	}
	return ResultFromJSON(gjson.ParseBytes(trimmed)), nil
}

// ResultFromJSON builds a result from an already parsed gjson value
func ResultFromJSON(v gjson.Result) AnalysisResult {
	raw := v.Raw
	if raw == "" {
		raw = "null"
	}
	r := AnalysisResult{Raw: json.RawMessage(raw)}

	switch {
	case v.IsArray():
		r.Kind = ResultSequence
		r.Sequence = []Item{}
		v.ForEach(func(_, el gjson.Result) bool {
			r.Sequence = append(r.Sequence, itemFromJSON(el))
			return true
		})
	case v.IsObject():
		r.Kind = ResultMapping
		r.Mapping = []Pair{}
		index := make(map[string]int)
		v.ForEach(func(k, val gjson.Result) bool {
			key := k.String()
			if i, ok := index[key]; ok {
				r.Mapping[i].Value = displayText(val)
				return true
			}
			index[key] = len(r.Mapping)
			r.Mapping = append(r.Mapping, Pair{Key: key, Value: displayText(val)})
			return true
		})
	default:
		r.Kind = ResultText
		r.Text = displayText(v)
	}
	return r
}

// NewTextResult builds a scalar text result
func NewTextResult(text string) AnalysisResult {
	raw, _ := json.Marshal(text)
	return ResultFromJSON(gjson.ParseBytes(raw))
}

// MustParseResult is ParseResult for literals known to be valid
func MustParseResult(raw string) AnalysisResult {
	r, err := ParseResult([]byte(raw))
	if err != nil {
		panic(err)
	}
	return r
}

// MarshalJSON re-emits the original JSON
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	if len(r.Raw) == 0 {
		return []byte("null"), nil
	}
	return r.Raw, nil
}

// UnmarshalJSON decodes via ParseResult
func (r *AnalysisResult) UnmarshalJSON(data []byte) error {
	parsed, err := ParseResult(data)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Len is the number of blocks the result renders to
func (r AnalysisResult) Len() int {
	switch r.Kind {
	case ResultMapping:
		return len(r.Mapping)
	case ResultSequence:
		return len(r.Sequence)
	default:
		return 1
	}
}

func itemFromJSON(el gjson.Result) Item {
	item := Item{Text: displayText(el)}
	if !el.IsObject() {
		return item
	}
	if name := el.Get("name"); name.Exists() {
		item.Name = displayText(name)
	}
	if value := el.Get("value"); truthy(value) {
		item.Value = displayText(value)
	}
	return item
}

func displayText(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Null:
		return ""
	default:
		return v.Raw
	}
}

func truthy(v gjson.Result) bool {
	if !v.Exists() {
		return false
	}
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	default:
		return true
	}
}
