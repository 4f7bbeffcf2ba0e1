package truncate

import (
	"fmt"
	"strings"

	"github.com/GeneralBots/botcoder/parser"
	"github.com/GeneralBots/botcoder/tokens"
)

// toolStrategies maps tool names to the part of their output worth keeping.
var toolStrategies = map[string]Strategy{
	parser.ToolReadFile:       KeepBoth,
	parser.ToolExecuteCommand: KeepBoth,
	parser.ToolWriteFileDelta: KeepHead,
}

// ForTool returns the strategy used for a tool's output. Unknown tools keep
// both ends.
func ForTool(name string) Strategy {
	if s, ok := toolStrategies[name]; ok {
		return s
	}
	return KeepBoth
}

// ToolOutput clips the output of tool to maxTokens using counter.
func ToolOutput(counter tokens.Counter, tool, output string, maxTokens int) string {
	clipped, _ := New(ForTool(tool)).WithCounter(counter).Truncate(output, maxTokens)
	return clipped
}

// Lines keeps the first and last lines of text when it has more than
// maxLines lines, noting how many were dropped between them.
func Lines(text string, maxLines int) string {
	if maxLines <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) <= maxLines {
		return text
	}

	head := maxLines / 2
	tail := maxLines - head
	omitted := len(lines) - head - tail

	return strings.Join(lines[:head], "\n") +
		fmt.Sprintf("\n[... %d lines omitted ...]\n", omitted) +
		strings.Join(lines[len(lines)-tail:], "\n")
}
