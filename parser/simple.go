package parser

import "strings"

// commandQuirkMarker precedes the command text in a JSON-ish wrapper some
// models emit instead of the documented syntax: code{"command":"ls -la"}.
const commandQuirkMarker = `code{"command":"`

// isBlockDelimiter reports whether a trimmed line is a stray patch-block
// marker, which never carries a simple call.
func isBlockDelimiter(trimmed string) bool {
	return strings.HasPrefix(trimmed, MarkerChange) ||
		strings.HasPrefix(trimmed, "<<<<<<<") ||
		strings.HasPrefix(trimmed, MarkerDivider) ||
		strings.HasPrefix(trimmed, ">>>>>>>")
}

func scanSimple(lines []string) []ToolCall {
	var calls []ToolCall
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isBlockDelimiter(trimmed) {
			continue
		}
		if arg, ok := simpleArg(trimmed, ToolReadFile); ok {
			calls = append(calls, ToolCall{Name: ToolReadFile, Parameter: arg})
		}
		if arg, ok := simpleArg(trimmed, ToolExecuteCommand); ok {
			calls = append(calls, ToolCall{Name: ToolExecuteCommand, Parameter: arg})
		} else if arg, ok := quirkCommandArg(trimmed); ok {
			calls = append(calls, ToolCall{Name: ToolExecuteCommand, Parameter: arg})
		}
	}
	return calls
}

// simpleArg extracts the argument of tool on line, trying call syntax
// before label syntax. Empty arguments do not count as a match.
func simpleArg(line, tool string) (string, bool) {
	if !strings.Contains(line, tool) {
		return "", false
	}
	if arg, ok := callArg(line, tool); ok {
		return arg, true
	}
	return labelArg(line, tool)
}

// callArg handles tool("arg") and tool('arg'). A quoted argument ends at the
// quote that closes the parenthesis, so commands may contain ")" themselves;
// otherwise the first ")" closes the call.
func callArg(line, tool string) (string, bool) {
	i := strings.Index(line, tool+"(")
	if i < 0 {
		return "", false
	}
	rest := line[i+len(tool)+1:]

	if inner := strings.TrimLeft(rest, " \t"); inner != "" && (inner[0] == '"' || inner[0] == '\'') {
		if arg, ok := quotedBeforeParen(inner); ok {
			return arg, arg != ""
		}
	}

	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return "", false
	}
	arg := strings.TrimSpace(rest[:end])
	arg = strings.Trim(arg, `"`)
	arg = strings.Trim(arg, `'`)
	return arg, arg != ""
}

// quotedBeforeParen returns the text between s[0] and the first matching
// quote that is followed, after optional spaces, by ")".
func quotedBeforeParen(s string) (string, bool) {
	quote := s[0]
	for j := 1; j < len(s); j++ {
		if s[j] != quote {
			continue
		}
		if strings.HasPrefix(strings.TrimLeft(s[j+1:], " \t"), ")") {
			return s[1:j], true
		}
	}
	return "", false
}

// labelArg handles tool: "arg" and tool: 'arg'.
func labelArg(line, tool string) (string, bool) {
	i := strings.Index(line, tool+":")
	if i < 0 {
		return "", false
	}
	return leadingQuoted(strings.TrimSpace(line[i+len(tool)+1:]))
}

// leadingQuoted returns the first quoted token when s starts with a quote.
func leadingQuoted(s string) (string, bool) {
	if s == "" || (s[0] != '"' && s[0] != '\'') {
		return "", false
	}
	end := strings.IndexByte(s[1:], s[0])
	if end < 0 {
		return "", false
	}
	arg := s[1 : 1+end]
	return arg, arg != ""
}

func quirkCommandArg(line string) (string, bool) {
	i := strings.Index(line, commandQuirkMarker)
	if i < 0 {
		return "", false
	}
	rest := line[i+len(commandQuirkMarker):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", false
	}
	arg := rest[:end]
	return arg, arg != ""
}
