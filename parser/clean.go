package parser

import (
	"regexp"
	"strings"
)

// fenceLineRegex matches a fence that owns its line, with an optional
// language tag ("```go", "  ```bash").
var fenceLineRegex = regexp.MustCompile("(?m)^([ \\t]*)```[\\w+#.-]*[ \\t]*$")

const fence = "```"

// thinkingTokens are chat-template artifacts some models leak into replies.
var thinkingTokens = []string{
	"<|start|>assistant<|channel|>",
	"<|message|>",
	"<|end|>",
}

// StripFences removes markdown fence markers and their language tags.
// Fence content is kept; fences carry no meaning for the tool protocol.
func StripFences(text string) string {
	text = fenceLineRegex.ReplaceAllString(text, "$1")
	return strings.ReplaceAll(text, fence, "")
}

// CleanResponse removes leaked chat-template tokens and surrounding
// whitespace from a raw reply.
func CleanResponse(text string) string {
	for _, tok := range thinkingTokens {
		text = strings.ReplaceAll(text, tok, "")
	}
	return strings.TrimSpace(text)
}

// splitLines splits text into lines, tolerating CRLF endings.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
