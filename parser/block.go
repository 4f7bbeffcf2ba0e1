package parser

import "strings"

// blockState is the position of the block scanner inside a patch block.
type blockState int

const (
	// stateSeeking is outside any block, looking for CHANGE:.
	stateSeeking blockState = iota
	// stateHeader has seen CHANGE: and waits for the CURRENT marker.
	stateHeader
	// stateInCurrent collects old content until the divider.
	stateInCurrent
	// stateInNew collects new content until the NEW marker.
	stateInNew
)

func (s blockState) String() string {
	switch s {
	case stateSeeking:
		return "seeking"
	case stateHeader:
		return "header"
	case stateInCurrent:
		return "in_current"
	case stateInNew:
		return "in_new"
	default:
		return "unknown"
	}
}

// blockScanner is a line-driven state machine over patch blocks.
// A CHANGE: line always starts a new block and abandons an open one, so a
// block missing its terminator never swallows the block after it.
type blockScanner struct {
	state   blockState
	path    string
	current []string
	next    []string
	calls   []ToolCall
}

func scanBlocks(lines []string) []ToolCall {
	s := &blockScanner{}
	for _, line := range lines {
		s.step(line)
	}
	// A block still open at EOF is malformed and dropped.
	return s.calls
}

func (s *blockScanner) step(line string) {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, MarkerChange) {
		s.begin(strings.TrimSpace(strings.TrimPrefix(trimmed, MarkerChange)))
		return
	}

	switch s.state {
	case stateSeeking:
	case stateHeader:
		if strings.Contains(line, MarkerCurrent) {
			s.state = stateInCurrent
		}
	case stateInCurrent:
		if strings.Contains(line, MarkerDivider) {
			s.state = stateInNew
			return
		}
		s.current = append(s.current, line)
	case stateInNew:
		if strings.Contains(line, MarkerNew) {
			s.emit()
			return
		}
		s.next = append(s.next, line)
	}
}

func (s *blockScanner) begin(path string) {
	s.state = stateHeader
	s.path = path
	s.current = s.current[:0]
	s.next = s.next[:0]
}

func (s *blockScanner) emit() {
	if s.path != "" {
		s.calls = append(s.calls, NewDeltaCall(DeltaSpec{
			Path: s.path,
			Old:  joinBlockLines(s.current),
			New:  joinBlockLines(s.next),
		}))
	}
	s.state = stateSeeking
	s.path = ""
	s.current = nil
	s.next = nil
}

// joinBlockLines joins collected lines, dropping one blank line at either
// edge. Stripped fences and padding around the markers leave them there.
func joinBlockLines(lines []string) string {
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
