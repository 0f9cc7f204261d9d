package view

import (
	"strings"
	"unicode"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/types"
)

// DefaultHeading labels sequence items that carry no name
const DefaultHeading = "Result"

// Block is one rendered result section
type Block struct {
	Heading    string // empty for a plain text result
	Paragraphs []string
}

// Text joins the block's paragraphs for plain output
func (b Block) Text() string {
	return strings.Join(b.Paragraphs, "\n")
}

// Blocks converts a result into display blocks:
// sequence → one block per item, mapping → one block per key,
// text → a single headless block.
func Blocks(result types.AnalysisResult) []Block {
	switch result.Kind {
	case types.ResultSequence:
		blocks := make([]Block, 0, len(result.Sequence))
		for _, item := range result.Sequence {
			heading := item.Name
			if heading == "" {
				heading = DefaultHeading
			}
			body := item.Value
			if body == "" {
				body = item.Text
			}
			blocks = append(blocks, Block{Heading: heading, Paragraphs: []string{body}})
		}
		return blocks

	case types.ResultMapping:
		blocks := make([]Block, 0, len(result.Mapping))
		for _, pair := range result.Mapping {
			blocks = append(blocks, Block{Heading: pair.Key, Paragraphs: SplitSentences(pair.Value)})
		}
		return blocks

	default:
		return []Block{{Paragraphs: SplitSentences(result.Text)}}
	}
}

// SplitSentences breaks text after '.', '!' or '?' when followed by
// whitespace. Pieces are trimmed and empty ones dropped.
func SplitSentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			if i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}

	if out == nil {
		return []string{}
	}
	return out
}

// Markdown renders blocks as markdown, one section per block
func Markdown(blocks []Block) string {
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		if b.Heading != "" {
			sb.WriteString("### ")
			sb.WriteString(b.Heading)
			sb.WriteString("\n\n")
		}
		for _, p := range b.Paragraphs {
			sb.WriteString(p)
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
