package session

import (
	"strings"

	"github.com/GeneralBots/botcoder/llm"
	"github.com/GeneralBots/botcoder/tools"
)

// trimBatch is how many of the oldest messages are dropped at once when the
// history outgrows its limit.
const trimBatch = 20

// trimHistory drops the oldest messages once len(history) exceeds max.
// Messages go in batches of trimBatch, or half the limit when that is
// smaller, so at least two messages always survive.
func trimHistory(history []llm.Message, max int) []llm.Message {
	if max < 2 || len(history) <= max {
		return history
	}
	batch := trimBatch
	if half := max / 2; half < batch {
		batch = half
	}
	for len(history) > max {
		history = history[batch:]
	}
	out := make([]llm.Message, len(history))
	copy(out, history)
	return out
}

// renderConversation renders history in "role: content" blocks followed by
// the assistant cue.
func renderConversation(project string, history []llm.Message) string {
	var sb strings.Builder
	sb.WriteString("Project: " + project + "\n\n")
	for _, m := range history {
		sb.WriteString(m.Role + ": " + m.Content + "\n\n")
	}
	sb.WriteString("Assistant:")
	return sb.String()
}

// BuildContext renders the full prompt text: the system prompt, the
// project line, every message and the assistant cue.
func BuildContext(system, project string, history []llm.Message) string {
	return system + "\n\n" + renderConversation(project, history)
}

// ToolResultsMessage renders executed tool results as the system message
// fed into the next turn.
func ToolResultsMessage(results []tools.Result) llm.Message {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, "Tool: "+r.Call.Name+"\nResult:\n"+r.Output)
	}
	return llm.Message{
		Role:    llm.RoleSystem,
		Content: "Tool Results:\n" + strings.Join(parts, "\n\n"),
	}
}
