// Package llmtext normalizes raw model output before it is parsed. Keeping the
// cleanup separate from the parsers keeps it independently testable.
package llmtext

import "strings"

// StripFences removes markdown code-fence markers anywhere in the text and
// trims surrounding whitespace. Text without fence markers passes through
// unchanged apart from the trim.
func StripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
